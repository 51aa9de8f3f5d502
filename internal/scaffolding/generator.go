// Package scaffolding creates new block folders from built-in templates.
package scaffolding

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"github.com/slabs-dev/slabs/internal/errors"
	"github.com/slabs-dev/slabs/internal/manifest"
)

// namePattern is the manifest naming contract; scaffolding refuses to create
// a block the validator would reject.
var namePattern = regexp.MustCompile(`^[a-z0-9-]+/[a-z0-9-]+$`)

// Options configures one block scaffold.
type Options struct {
	// Name is the namespaced block name (e.g., "slabs/hero")
	Name string
	// Title is the human-readable title; defaults to the block name part
	Title string
	// Category groups the block in the editor
	Category string
	// Description is optional manifest documentation
	Description string
	// WithStyle also writes a style.css
	WithStyle bool
	// WithPreview also writes a placeholder preview.svg
	WithPreview bool
}

// BlockScaffolder writes block folders under a root directory.
type BlockScaffolder struct {
	root string
}

// New creates a scaffolder writing below root.
func New(root string) *BlockScaffolder {
	return &BlockScaffolder{root: root}
}

// templateContext is the data handed to every scaffold template.
type templateContext struct {
	Name        string
	Title       string
	Category    string
	Description string
	ShortName   string
	WithStyle   bool
}

// Generate creates the block folder and returns its path. The folder is
// named after the part of the name behind the namespace; an existing folder
// is never overwritten.
func (g *BlockScaffolder) Generate(opts Options) (string, error) {
	if !namePattern.MatchString(opts.Name) {
		return "", errors.NewConfigError(fmt.Sprintf(
			"block name %q must match namespace/block-name (lowercase letters, digits, hyphens)", opts.Name))
	}

	shortName := opts.Name[strings.Index(opts.Name, "/")+1:]
	if opts.Title == "" {
		opts.Title = titleFromName(shortName)
	}

	dir := filepath.Join(g.root, shortName)
	if _, err := os.Stat(dir); err == nil {
		return "", errors.NewConfigError(fmt.Sprintf("block folder %s already exists", dir))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.NewInternalError("creating block folder", err)
	}

	ctx := templateContext{
		Name:        opts.Name,
		Title:       opts.Title,
		Category:    opts.Category,
		Description: opts.Description,
		ShortName:   shortName,
		WithStyle:   opts.WithStyle,
	}

	files := map[string]string{
		manifest.Filename: manifestTemplate,
		"edit.tsx":        editTemplate,
		"save.tsx":        saveTemplate,
		"render.tsx":      renderTemplate,
	}
	if opts.WithStyle {
		files["style.css"] = styleTemplate
	}
	if opts.WithPreview {
		files["preview.svg"] = previewTemplate
	}

	for name, text := range files {
		if err := renderFile(filepath.Join(dir, name), text, ctx); err != nil {
			return "", err
		}
	}

	return dir, nil
}

func renderFile(path, text string, ctx templateContext) error {
	tmpl, err := template.New(filepath.Base(path)).Parse(text)
	if err != nil {
		return errors.NewInternalError("parsing scaffold template "+filepath.Base(path), err)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.NewInternalError("creating "+path, err)
	}
	defer f.Close()

	if err := tmpl.Execute(f, ctx); err != nil {
		return errors.NewInternalError("rendering "+path, err)
	}

	return nil
}

// titleFromName turns "simple-text" into "Simple Text".
func titleFromName(shortName string) string {
	words := strings.Split(shortName, "-")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}

	return strings.Join(words, " ")
}
