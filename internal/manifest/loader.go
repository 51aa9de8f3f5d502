// Package manifest loads block manifests and resolves block source files.
//
// A block folder contains a block.json manifest plus three mandatory source
// modules (edit, save, render) and optional preview/style assets. The loader
// probes a fixed, ordered list of extensions per file role; the probe order
// is part of the block-author contract and must stay deterministic. Deeper
// structural checks (name pattern, aggregated diagnostics) belong to the
// validate package so the loader stays usable outside strict validation
// contexts.
package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/slabs-dev/slabs/internal/errors"
	"github.com/slabs-dev/slabs/internal/types"
)

// Filename is the manifest file name expected in every block folder.
const Filename = "block.json"

// Source file roles resolved for every block.
const (
	RoleEdit   = "edit"
	RoleSave   = "save"
	RoleRender = "render"

	basePreview = "preview"
	baseStyle   = "style"
)

// SourceExtensions is the ordered probe list for edit/save/render modules.
// First existing match wins.
var SourceExtensions = []string{".ts", ".tsx", ".js", ".jsx", ".vue", ".svelte"}

// PreviewExtensions is the ordered probe list for the optional preview image.
var PreviewExtensions = []string{".png", ".jpg", ".jpeg", ".webp", ".svg", ".gif"}

// StyleExtensions is the ordered probe list for the optional stylesheet.
var StyleExtensions = []string{".css", ".scss", ".sass", ".less"}

// LoadManifest reads and parses block.json from blockPath. It fails with
// ERR_MANIFEST_READ when the file cannot be read, ERR_MANIFEST_PARSE when the
// content is not valid JSON, and ERR_MANIFEST_SCHEMA when name or title is
// missing or empty. No other field is checked here.
func LoadManifest(blockPath string) (*types.BlockMetadata, error) {
	path := filepath.Join(blockPath, Filename)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewManifestReadError(path, err)
	}

	var meta types.BlockMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, errors.NewManifestParseError(path, err)
	}

	if strings.TrimSpace(meta.Name) == "" {
		return nil, errors.NewManifestSchemaError(path, "name")
	}
	if strings.TrimSpace(meta.Title) == "" {
		return nil, errors.NewManifestSchemaError(path, "title")
	}

	return &meta, nil
}

// ResolveFiles resolves the absolute paths of a block's source modules.
// Each mandatory role (edit, save, render) is probed against SourceExtensions
// and must resolve; a missing role fails with ERR_FILE_REQUIRED naming the
// role. The optional preview and style assets are probed the same way, but
// absence only leaves the corresponding field empty.
func ResolveFiles(blockPath string) (*types.BlockFiles, error) {
	dir, err := filepath.Abs(blockPath)
	if err != nil {
		return nil, errors.NewInternalError("resolving block path", err)
	}

	files := &types.BlockFiles{}

	for _, role := range []struct {
		name string
		dest *string
	}{
		{RoleEdit, &files.EditPath},
		{RoleSave, &files.SavePath},
		{RoleRender, &files.RenderPath},
	} {
		path, ok := Probe(dir, role.name, SourceExtensions)
		if !ok {
			return nil, errors.NewRequiredFileError(dir, role.name, Candidates(role.name, SourceExtensions))
		}
		*role.dest = path
	}

	if path, ok := Probe(dir, basePreview, PreviewExtensions); ok {
		files.PreviewPath = path
	}
	if path, ok := Probe(dir, baseStyle, StyleExtensions); ok {
		files.StylePath = path
	}

	return files, nil
}

// Load builds a complete BlockDefinition for a block folder: parsed manifest
// plus resolved file paths. Callers wanting structural diagnostics should run
// the validator first; Load reports only the first failure it hits.
func Load(blockPath string) (*types.BlockDefinition, error) {
	meta, err := LoadManifest(blockPath)
	if err != nil {
		return nil, err
	}

	files, err := ResolveFiles(blockPath)
	if err != nil {
		return nil, err
	}

	dir, err := filepath.Abs(blockPath)
	if err != nil {
		return nil, errors.NewInternalError("resolving block path", err)
	}

	return &types.BlockDefinition{
		Name:  meta.Name,
		Path:  dir,
		Meta:  meta,
		Files: files,
	}, nil
}

// Probe returns the first existing regular file named base+ext in dir,
// trying extensions in order. Ties are impossible since candidates differ
// only by extension.
func Probe(dir, base string, extensions []string) (string, bool) {
	for _, ext := range extensions {
		candidate := filepath.Join(dir, base+ext)
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate, true
		}
	}

	return "", false
}

// Candidates lists the file names probed for a role, for error messages.
func Candidates(base string, extensions []string) []string {
	names := make([]string, len(extensions))
	for i, ext := range extensions {
		names[i] = base + ext
	}

	return names
}

// HasManifest reports whether dir contains a block.json file.
func HasManifest(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, Filename))

	return err == nil && info.Mode().IsRegular()
}
