// Package types provides the shared block domain types used throughout the
// slabs CLI. This package contains only data definitions to avoid circular
// dependencies between the loader, validator, scanner, and registry packages.
package types

// BlockMetadata is the parsed content of a block's manifest (block.json).
//
// Only Name and Title are load-bearing for the pipeline: a manifest is
// considered valid once both are present and non-empty, and Name matches the
// `namespace/block-name` kebab-case pattern. Everything else is carried
// through to the generated registry verbatim.
type BlockMetadata struct {
	// Name is the namespaced block identifier (e.g., "slabs/hero")
	Name string `json:"name"`
	// Title is the human-readable block title shown in the editor
	Title string `json:"title"`
	// Category groups blocks in the editor's inserter
	Category string `json:"category,omitempty"`
	// Description is optional author-facing documentation
	Description string `json:"description,omitempty"`
	// Keywords aid block search in the editor
	Keywords []string `json:"keywords,omitempty"`
	// Version is the block's own version string
	Version string `json:"version,omitempty"`
	// Icon names an editor icon for the block
	Icon string `json:"icon,omitempty"`
	// Attributes declares the block's attribute schema
	Attributes map[string]Attribute `json:"attributes,omitempty"`
	// Supports holds editor capability flags (align, color, ...)
	Supports map[string]bool `json:"supports,omitempty"`
	// Dependencies maps required block names to version ranges
	Dependencies map[string]string `json:"dependencies,omitempty"`
	// PeerDependencies maps co-required block names to version ranges
	PeerDependencies map[string]string `json:"peerDependencies,omitempty"`
}

// Attribute describes a single declared block attribute.
type Attribute struct {
	// Type is the attribute's JSON type name ("string", "number", ...)
	Type string `json:"type"`
	// Default is the attribute's default value, if any
	Default any `json:"default,omitempty"`
}

// BlockFiles holds the resolved absolute paths of a block's source modules.
//
// The three mandatory paths are set only after the loader has confirmed the
// files exist; a missing mandatory file is a loader-level failure, never an
// empty string. PreviewPath and StylePath are empty when the optional asset
// is absent.
type BlockFiles struct {
	// EditPath is the editor-side module (exports `render`)
	EditPath string
	// SavePath is the serializer module (exports `save`)
	SavePath string
	// RenderPath is the front-end render module (exports `render`)
	RenderPath string
	// PreviewPath is the optional preview image, empty if absent
	PreviewPath string
	// StylePath is the optional stylesheet, empty if absent
	StylePath string
}

// BlockDefinition is a fully resolved block: constructed by the scanner only
// after validation passes, immutable afterwards, and rebuilt wholesale on
// every rescan.
type BlockDefinition struct {
	// Name mirrors Meta.Name
	Name string
	// Path is the absolute path of the block folder
	Path string
	// Meta is the parsed manifest content
	Meta *BlockMetadata
	// Files holds the resolved source and asset paths
	Files *BlockFiles
}

// DiagnosticCode identifies a validation rule outcome. These codes are part
// of the diagnostic contract surfaced to block authors.
type DiagnosticCode string

const (
	// CodeMissingFile marks an absent manifest or required source file
	CodeMissingFile DiagnosticCode = "MISSING_FILE"
	// CodeInvalidJSON marks a manifest that is not valid JSON
	CodeInvalidJSON DiagnosticCode = "INVALID_JSON"
	// CodeInvalidSchema marks a manifest violating the block.json schema
	CodeInvalidSchema DiagnosticCode = "INVALID_SCHEMA"
	// CodeMissingPreview marks an absent preview image (warning only)
	CodeMissingPreview DiagnosticCode = "MISSING_PREVIEW"
	// CodeLoadFailed marks a block that validated but failed to load
	CodeLoadFailed DiagnosticCode = "LOAD_FAILED"
)

// ValidationError is a blocking validation finding for a block folder.
type ValidationError struct {
	// Code identifies the violated rule
	Code DiagnosticCode
	// Message is a human-readable description naming the offending rule
	Message string
	// File is the file the finding refers to, relative to the block folder
	File string
	// Path is the absolute block folder path
	Path string
	// Value carries the offending value for schema violations
	Value string
}

// ValidationWarning is a non-blocking, advisory validation finding.
type ValidationWarning struct {
	// Code identifies the advisory rule
	Code DiagnosticCode
	// Message is a human-readable description
	Message string
	// File is the file the finding refers to, if any
	File string
	// Suggestion is an actionable hint for resolving the warning
	Suggestion string
}

// ValidationResult aggregates all findings for one block folder.
// Valid is true iff Errors is empty; warnings never gate validity.
type ValidationResult struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// AddError appends a blocking error and clears Valid.
func (r *ValidationResult) AddError(err ValidationError) {
	r.Errors = append(r.Errors, err)
	r.Valid = false
}

// AddWarning appends an advisory warning; validity is unaffected.
func (r *ValidationResult) AddWarning(w ValidationWarning) {
	r.Warnings = append(r.Warnings, w)
}

// ScanOptions configures a single scan invocation.
type ScanOptions struct {
	// Include lists name globs; when non-empty, only matching folder base
	// names survive the scan
	Include []string
	// Exclude lists name globs; a matching folder is dropped even if valid
	Exclude []string
	// MaxDepth bounds the manifest search depth relative to the scan root.
	// Depth 1 scans immediate children only; 0 means unbounded.
	MaxDepth int
	// FollowSymlinks enables traversal into symlinked directories
	FollowSymlinks bool
	// Ignore lists directory-name globs excluded from the walk
	Ignore []string
}

// DefaultScanOptions returns the options used when the caller provides none:
// immediate children only, symlinks not followed, dependency and VCS
// directories ignored.
func DefaultScanOptions() ScanOptions {
	return ScanOptions{
		MaxDepth: 1,
		Ignore:   []string{"node_modules", ".git"},
	}
}
