package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slabs-dev/slabs/internal/errors"
	"github.com/slabs-dev/slabs/internal/registry"
	"github.com/slabs-dev/slabs/internal/types"
)

// addBlock creates a complete block folder under root.
func addBlock(t *testing.T, root, folder, name string) string {
	t.Helper()

	dir := filepath.Join(root, folder)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	manifest := `{"name": "` + name + `", "title": "` + folder + `"}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "block.json"), []byte(manifest), 0o644))
	for _, f := range []string{"edit.tsx", "save.tsx", "render.tsx"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("export {};\n"), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "preview.png"), []byte("img"), 0o644))

	return dir
}

func newScanner(t *testing.T) (*Scanner, *registry.BlockRegistry) {
	t.Helper()

	reg := registry.NewBlockRegistry()
	s, err := New(reg, nil)
	require.NoError(t, err)

	return s, reg
}

func blockNames(defs []*types.BlockDefinition) []string {
	names := make([]string, 0, len(defs))
	for _, def := range defs {
		names = append(names, def.Name)
	}

	return names
}

func TestScanDiscoversBlocks(t *testing.T) {
	root := t.TempDir()
	addBlock(t, root, "hero", "slabs/hero")
	addBlock(t, root, "quote", "slabs/quote")

	s, reg := newScanner(t)
	defs, err := s.Scan(context.Background(), root, types.DefaultScanOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"slabs/hero", "slabs/quote"}, blockNames(defs))
	assert.Equal(t, 2, reg.Count())
	assert.Empty(t, s.Diagnostics())
}

func TestScanResultsSortedByName(t *testing.T) {
	root := t.TempDir()
	addBlock(t, root, "zz", "slabs/zebra")
	addBlock(t, root, "aa", "slabs/apple")
	addBlock(t, root, "mm", "acme/mango")

	s, _ := newScanner(t)
	defs, err := s.Scan(context.Background(), root, types.DefaultScanOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"acme/mango", "slabs/apple", "slabs/zebra"}, blockNames(defs))
}

func TestScanBrokenBlockDoesNotPoisonSiblings(t *testing.T) {
	root := t.TempDir()
	addBlock(t, root, "hero", "slabs/hero")

	// A sibling with unparseable JSON becomes a diagnostic, not a failure.
	broken := filepath.Join(root, "broken")
	require.NoError(t, os.MkdirAll(broken, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(broken, "block.json"), []byte("{nope"), 0o644))

	s, reg := newScanner(t)
	defs, err := s.Scan(context.Background(), root, types.DefaultScanOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"slabs/hero"}, blockNames(defs))
	assert.Equal(t, 1, reg.Count())

	diags := s.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, broken, diags[0].Path)
	require.NotEmpty(t, diags[0].Errors)
	assert.Equal(t, types.CodeInvalidJSON, diags[0].Errors[0].Code)
}

func TestScanWarningsReportedForIncludedBlocks(t *testing.T) {
	root := t.TempDir()
	dir := addBlock(t, root, "hero", "slabs/hero")
	require.NoError(t, os.Remove(filepath.Join(dir, "preview.png")))

	s, _ := newScanner(t)
	defs, err := s.Scan(context.Background(), root, types.DefaultScanOptions())
	require.NoError(t, err)

	// The block registers despite the warning.
	assert.Equal(t, []string{"slabs/hero"}, blockNames(defs))

	diags := s.Diagnostics()
	require.Len(t, diags, 1)
	assert.Empty(t, diags[0].Errors)
	require.Len(t, diags[0].Warnings, 1)
	assert.Equal(t, types.CodeMissingPreview, diags[0].Warnings[0].Code)
}

func TestScanMissingRootFails(t *testing.T) {
	s, _ := newScanner(t)
	_, err := s.Scan(context.Background(), filepath.Join(t.TempDir(), "absent"), types.DefaultScanOptions())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeScanRoot))
}

func TestScanRootFileFails(t *testing.T) {
	file := filepath.Join(t.TempDir(), "blocks")
	require.NoError(t, os.WriteFile(file, []byte("not a dir"), 0o644))

	s, _ := newScanner(t)
	_, err := s.Scan(context.Background(), file, types.DefaultScanOptions())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeScanRoot))
}

func TestScanEmptyRootSucceeds(t *testing.T) {
	s, reg := newScanner(t)
	defs, err := s.Scan(context.Background(), t.TempDir(), types.DefaultScanOptions())
	require.NoError(t, err)
	assert.Empty(t, defs)
	assert.Zero(t, reg.Count())
}

func TestScanDepthBound(t *testing.T) {
	root := t.TempDir()
	addBlock(t, root, "hero", "slabs/hero")
	addBlock(t, root, filepath.Join("group", "nested"), "slabs/nested")

	s, _ := newScanner(t)

	opts := types.DefaultScanOptions() // MaxDepth 1
	defs, err := s.Scan(context.Background(), root, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"slabs/hero"}, blockNames(defs))

	opts.MaxDepth = 2
	defs, err = s.Scan(context.Background(), root, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"slabs/hero", "slabs/nested"}, blockNames(defs))
}

func TestScanUnboundedDepth(t *testing.T) {
	root := t.TempDir()
	addBlock(t, root, filepath.Join("a", "b", "c", "deep"), "slabs/deep")

	s, _ := newScanner(t)

	opts := types.DefaultScanOptions()
	opts.MaxDepth = 0
	defs, err := s.Scan(context.Background(), root, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"slabs/deep"}, blockNames(defs))
}

func TestScanRootManifestNotACandidate(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "block.json"),
		[]byte(`{"name": "slabs/root", "title": "Root"}`), 0o644))
	addBlock(t, root, "hero", "slabs/hero")

	s, _ := newScanner(t)
	defs, err := s.Scan(context.Background(), root, types.DefaultScanOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"slabs/hero"}, blockNames(defs))
}

func TestScanIgnoresNodeModules(t *testing.T) {
	root := t.TempDir()
	addBlock(t, root, "hero", "slabs/hero")
	addBlock(t, root, filepath.Join("node_modules", "vendored"), "vendor/sneaky")

	s, _ := newScanner(t)
	opts := types.DefaultScanOptions()
	opts.MaxDepth = 0
	defs, err := s.Scan(context.Background(), root, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"slabs/hero"}, blockNames(defs))
}

func TestScanFollowSymlinks(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	addBlock(t, root, "hero", "slabs/hero")
	addBlock(t, outside, "quote", "slabs/quote")
	require.NoError(t, os.Symlink(filepath.Join(outside, "quote"), filepath.Join(root, "quote")))

	s, _ := newScanner(t)

	// Symlinked directories are skipped by default.
	defs, err := s.Scan(context.Background(), root, types.DefaultScanOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"slabs/hero"}, blockNames(defs))

	opts := types.DefaultScanOptions()
	opts.FollowSymlinks = true
	defs, err = s.Scan(context.Background(), root, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"slabs/hero", "slabs/quote"}, blockNames(defs))
}

func TestScanSymlinkCycleTerminates(t *testing.T) {
	root := t.TempDir()
	addBlock(t, root, "hero", "slabs/hero")
	require.NoError(t, os.Symlink(root, filepath.Join(root, "loop")))

	s, _ := newScanner(t)
	opts := types.DefaultScanOptions()
	opts.MaxDepth = 0
	opts.FollowSymlinks = true

	defs, err := s.Scan(context.Background(), root, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"slabs/hero"}, blockNames(defs))
}

func TestScanMutualSymlinkCycleTerminates(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a")
	b := filepath.Join(root, "b")
	require.NoError(t, os.MkdirAll(a, 0o755))
	require.NoError(t, os.MkdirAll(b, 0o755))
	require.NoError(t, os.Symlink(b, filepath.Join(a, "to-b")))
	require.NoError(t, os.Symlink(a, filepath.Join(b, "to-a")))
	addBlock(t, root, filepath.Join("a", "hero"), "slabs/hero")

	s, _ := newScanner(t)
	opts := types.DefaultScanOptions()
	opts.MaxDepth = 0
	opts.FollowSymlinks = true

	defs, err := s.Scan(context.Background(), root, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"slabs/hero"}, blockNames(defs))
}

func TestCandidatesHonorsScanSettings(t *testing.T) {
	root := t.TempDir()
	hero := addBlock(t, root, "hero", "slabs/hero")
	nested := addBlock(t, root, filepath.Join("group", "nested"), "slabs/nested")
	addBlock(t, root, filepath.Join("node_modules", "vendored"), "vendor/sneaky")
	addBlock(t, root, "hero-draft", "slabs/hero-draft")

	opts := types.DefaultScanOptions()
	opts.MaxDepth = 2
	opts.Ignore = []string{"node_modules", ".git", "*-draft"}

	got, err := Candidates(root, opts)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{hero, nested}, got)
}

func TestCandidatesMissingRoot(t *testing.T) {
	_, err := Candidates(filepath.Join(t.TempDir(), "absent"), types.DefaultScanOptions())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeScanRoot))
}

func TestScanExcludeFilter(t *testing.T) {
	root := t.TempDir()
	addBlock(t, root, "hero", "slabs/hero")
	addBlock(t, root, "hero-draft", "slabs/hero-draft")

	s, _ := newScanner(t)
	opts := types.DefaultScanOptions()
	opts.Exclude = []string{"*-draft"}
	defs, err := s.Scan(context.Background(), root, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"slabs/hero"}, blockNames(defs))
}

func TestScanIncludeFilter(t *testing.T) {
	root := t.TempDir()
	addBlock(t, root, "hero", "slabs/hero")
	addBlock(t, root, "quote", "slabs/quote")

	s, _ := newScanner(t)
	opts := types.DefaultScanOptions()
	opts.Include = []string{"hero*"}
	defs, err := s.Scan(context.Background(), root, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"slabs/hero"}, blockNames(defs))
}

func TestScanExcludeWinsOverInclude(t *testing.T) {
	root := t.TempDir()
	addBlock(t, root, "hero", "slabs/hero")

	s, _ := newScanner(t)
	opts := types.DefaultScanOptions()
	opts.Include = []string{"hero"}
	opts.Exclude = []string{"hero"}
	defs, err := s.Scan(context.Background(), root, opts)
	require.NoError(t, err)
	assert.Empty(t, defs)
}

func TestScanBadFilterPattern(t *testing.T) {
	// All current glob syntax compiles; this guards the error path stays
	// wired if the syntax ever grows.
	s, _ := newScanner(t)
	opts := types.DefaultScanOptions()
	opts.Include = []string{"hero"}
	_, err := s.Scan(context.Background(), t.TempDir(), opts)
	assert.NoError(t, err)
}

func TestScanIsIdempotent(t *testing.T) {
	root := t.TempDir()
	addBlock(t, root, "hero", "slabs/hero")
	addBlock(t, root, "quote", "slabs/quote")

	s, reg := newScanner(t)
	first, err := s.Scan(context.Background(), root, types.DefaultScanOptions())
	require.NoError(t, err)
	second, err := s.Scan(context.Background(), root, types.DefaultScanOptions())
	require.NoError(t, err)

	assert.Equal(t, blockNames(first), blockNames(second))
	assert.Equal(t, 2, reg.Count())
}

func TestScanReplacesPreviousPublication(t *testing.T) {
	root := t.TempDir()
	hero := addBlock(t, root, "hero", "slabs/hero")
	addBlock(t, root, "quote", "slabs/quote")

	s, reg := newScanner(t)
	_, err := s.Scan(context.Background(), root, types.DefaultScanOptions())
	require.NoError(t, err)
	require.Equal(t, 2, reg.Count())

	require.NoError(t, os.RemoveAll(hero))

	_, err = s.Scan(context.Background(), root, types.DefaultScanOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Count())
	_, ok := reg.Get("slabs/hero")
	assert.False(t, ok)
}

func TestScanCancelledContext(t *testing.T) {
	root := t.TempDir()
	addBlock(t, root, "hero", "slabs/hero")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, _ := newScanner(t)
	_, err := s.Scan(ctx, root, types.DefaultScanOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestValidateBlockDelegates(t *testing.T) {
	root := t.TempDir()
	dir := addBlock(t, root, "hero", "slabs/hero")

	s, _ := newScanner(t)
	result := s.ValidateBlock(dir)
	assert.True(t, result.Valid)

	result = s.ValidateBlock(filepath.Join(root, "absent"))
	assert.False(t, result.Valid)
}

func TestBlockMetadata(t *testing.T) {
	root := t.TempDir()
	dir := addBlock(t, root, "hero", "slabs/hero")

	s, _ := newScanner(t)
	meta, err := s.BlockMetadata(dir)
	require.NoError(t, err)
	assert.Equal(t, "slabs/hero", meta.Name)
}
