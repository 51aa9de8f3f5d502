package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slabs-dev/slabs/internal/config"
	"github.com/slabs-dev/slabs/internal/registry"
	"github.com/slabs-dev/slabs/internal/types"
)

func testServer(t *testing.T) (*Server, *registry.BlockRegistry) {
	t.Helper()

	reg := registry.NewBlockRegistry()
	reg.Replace([]*types.BlockDefinition{
		{
			Name: "slabs/hero",
			Path: "/blocks/hero",
			Meta: &types.BlockMetadata{Name: "slabs/hero", Title: "Hero", Category: "layout"},
			Files: &types.BlockFiles{
				EditPath:    "/blocks/hero/edit.ts",
				SavePath:    "/blocks/hero/save.ts",
				RenderPath:  "/blocks/hero/render.ts",
				PreviewPath: "/blocks/hero/preview.png",
			},
		},
	})

	return New(config.ServerConfig{Host: "localhost", Port: 0}, reg, nil), reg
}

func TestHandleIndex(t *testing.T) {
	s, _ := testServer(t)

	rec := httptest.NewRecorder()
	s.handleIndex(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "1 blocks registered")
}

func TestHandleIndexUnknownPath(t *testing.T) {
	s, _ := testServer(t)

	rec := httptest.NewRecorder()
	s.handleIndex(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleModule(t *testing.T) {
	s, _ := testServer(t)

	rec := httptest.NewRecorder()
	s.handleModule(rec, httptest.NewRequest(http.MethodGet, "/registry.js", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/javascript; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "'slabs/hero': {")
	assert.Contains(t, body, "totalBlocks: 1,")
}

func TestHandleModuleReflectsRegistry(t *testing.T) {
	s, reg := testServer(t)

	reg.Replace(nil)

	rec := httptest.NewRecorder()
	s.handleModule(rec, httptest.NewRequest(http.MethodGet, "/registry.js", nil))

	assert.Contains(t, rec.Body.String(), "export const blocks = {\n\n};")
	assert.Contains(t, rec.Body.String(), "totalBlocks: 0,")
}

func TestHandleTypes(t *testing.T) {
	s, _ := testServer(t)

	rec := httptest.NewRecorder()
	s.handleTypes(rec, httptest.NewRequest(http.MethodGet, "/registry.d.ts", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "declare module 'virtual:slabs-registry'")
	assert.Contains(t, rec.Body.String(), "export type BlockName = 'slabs/hero';")
}

func TestHandleBlocks(t *testing.T) {
	s, _ := testServer(t)

	rec := httptest.NewRecorder()
	s.handleBlocks(rec, httptest.NewRequest(http.MethodGet, "/api/blocks", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var views []blockView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "slabs/hero", views[0].Name)
	assert.Equal(t, "Hero", views[0].Title)
	assert.True(t, views[0].Preview)
	assert.False(t, views[0].Style)
}

func TestWebSocketReloadPush(t *testing.T) {
	s, reg := testServer(t)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	ts := httptest.NewServer(mux)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events := reg.Watch()
	defer reg.Unwatch(events)
	go s.broadcastLoop(ctx, events)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	// Wait until the server has registered the client.
	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return len(s.clients) == 1
	}, 2*time.Second, 10*time.Millisecond)

	reg.Replace(nil)

	msgType, data, err := conn.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, websocket.MessageText, msgType)
	assert.Equal(t, "reload", string(data))
}
