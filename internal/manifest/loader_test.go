package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slabs-dev/slabs/internal/errors"
)

// writeBlock creates a block folder with the given manifest content and
// source files.
func writeBlock(t *testing.T, manifest string, files ...string) string {
	t.Helper()

	dir := t.TempDir()
	if manifest != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, Filename), []byte(manifest), 0o644))
	}
	for _, name := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("export {};\n"), 0o644))
	}

	return dir
}

func TestLoadManifest(t *testing.T) {
	dir := writeBlock(t, `{
		"name": "slabs/hero",
		"title": "Hero",
		"category": "layout",
		"keywords": ["banner"],
		"attributes": {"heading": {"type": "string", "default": "Hi"}},
		"supports": {"align": true},
		"dependencies": {"slabs/media": "^1.0.0"}
	}`)

	meta, err := LoadManifest(dir)
	require.NoError(t, err)
	assert.Equal(t, "slabs/hero", meta.Name)
	assert.Equal(t, "Hero", meta.Title)
	assert.Equal(t, "layout", meta.Category)
	assert.Equal(t, []string{"banner"}, meta.Keywords)
	assert.Equal(t, "string", meta.Attributes["heading"].Type)
	assert.Equal(t, "Hi", meta.Attributes["heading"].Default)
	assert.True(t, meta.Supports["align"])
	assert.Equal(t, "^1.0.0", meta.Dependencies["slabs/media"])
}

func TestLoadManifestMissingFile(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadManifest(dir)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeManifestRead))
}

func TestLoadManifestInvalidJSON(t *testing.T) {
	dir := writeBlock(t, `{"name": "slabs/hero",`)

	_, err := LoadManifest(dir)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeManifestParse))
}

func TestLoadManifestMissingRequiredFields(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
	}{
		{"missing name", `{"title": "Hero"}`},
		{"empty name", `{"name": "", "title": "Hero"}`},
		{"whitespace name", `{"name": "   ", "title": "Hero"}`},
		{"missing title", `{"name": "slabs/hero"}`},
		{"empty title", `{"name": "slabs/hero", "title": ""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeBlock(t, tt.manifest)

			_, err := LoadManifest(dir)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeManifestSchema))
		})
	}
}

func TestLoadManifestDoesNotCheckNamePattern(t *testing.T) {
	// Pattern conformance belongs to the validator; the loader only
	// requires name and title to be present.
	dir := writeBlock(t, `{"name": "NotKebab", "title": "Hero"}`)

	meta, err := LoadManifest(dir)
	require.NoError(t, err)
	assert.Equal(t, "NotKebab", meta.Name)
}

func TestResolveFiles(t *testing.T) {
	dir := writeBlock(t, "", "edit.ts", "save.tsx", "render.jsx", "preview.png", "style.css")

	files, err := ResolveFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "edit.ts"), files.EditPath)
	assert.Equal(t, filepath.Join(dir, "save.tsx"), files.SavePath)
	assert.Equal(t, filepath.Join(dir, "render.jsx"), files.RenderPath)
	assert.Equal(t, filepath.Join(dir, "preview.png"), files.PreviewPath)
	assert.Equal(t, filepath.Join(dir, "style.css"), files.StylePath)
}

func TestResolveFilesProbeOrder(t *testing.T) {
	// .ts comes before .js in the probe list; first match wins.
	dir := writeBlock(t, "", "edit.ts", "edit.js", "save.ts", "render.ts")

	files, err := ResolveFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "edit.ts"), files.EditPath)
}

func TestResolveFilesOptionalAssetsOmitted(t *testing.T) {
	dir := writeBlock(t, "", "edit.ts", "save.ts", "render.ts")

	files, err := ResolveFiles(dir)
	require.NoError(t, err)
	assert.Empty(t, files.PreviewPath)
	assert.Empty(t, files.StylePath)
}

func TestResolveFilesMissingRequiredRole(t *testing.T) {
	dir := writeBlock(t, "", "edit.ts", "save.ts")

	_, err := ResolveFiles(dir)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeFileRequired))
	assert.Contains(t, err.Error(), "render")
}

func TestLoad(t *testing.T) {
	dir := writeBlock(t, `{"name": "slabs/hero", "title": "Hero"}`,
		"edit.ts", "save.ts", "render.ts")

	def, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "slabs/hero", def.Name)
	assert.Equal(t, def.Meta.Name, def.Name)
	assert.True(t, filepath.IsAbs(def.Path))
	assert.NotEmpty(t, def.Files.EditPath)
	assert.NotEmpty(t, def.Files.SavePath)
	assert.NotEmpty(t, def.Files.RenderPath)
}

func TestLoadMissingRenderFails(t *testing.T) {
	dir := writeBlock(t, `{"name": "slabs/hero", "title": "Hero"}`, "edit.ts", "save.ts")

	_, err := Load(dir)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeFileRequired))
}

func TestProbeIgnoresDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "edit.ts"), 0o755))

	_, ok := Probe(dir, "edit", SourceExtensions)
	assert.False(t, ok)
}
