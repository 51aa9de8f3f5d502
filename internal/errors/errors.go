// Package errors defines the structured error type used across the slabs
// pipeline, with typed constructors for the loader, scanner, generator, and
// configuration failure modes.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType categorizes pipeline errors.
type ErrorType string

const (
	ErrorTypeManifest ErrorType = "manifest"
	ErrorTypeIO       ErrorType = "io"
	ErrorTypeScan     ErrorType = "scan"
	ErrorTypeGenerate ErrorType = "generate"
	ErrorTypeConfig   ErrorType = "config"
	ErrorTypeInternal ErrorType = "internal"
)

// Error codes surfaced in diagnostics and logs.
const (
	ErrCodeManifestRead   = "ERR_MANIFEST_READ"
	ErrCodeManifestParse  = "ERR_MANIFEST_PARSE"
	ErrCodeManifestSchema = "ERR_MANIFEST_SCHEMA"
	ErrCodeFileRequired   = "ERR_FILE_REQUIRED"
	ErrCodeScanRoot       = "ERR_SCAN_ROOT"
	ErrCodeIdentCollision = "ERR_IDENT_COLLISION"
	ErrCodeConfigInvalid  = "ERR_CONFIG_INVALID"
	ErrCodeInternal       = "ERR_INTERNAL"
)

// SlabsError is a structured error with block and path context.
type SlabsError struct {
	Type    ErrorType
	Code    string
	Message string
	Cause   error
	// Block is the namespaced block name, when known
	Block string
	// Path is the file or folder the error refers to
	Path string
	// Recoverable marks errors the scanner converts into per-block
	// diagnostics instead of aborting the scan
	Recoverable bool
}

// Error implements the error interface.
func (e *SlabsError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}
	if e.Block != "" {
		parts = append(parts, "block:"+e.Block)
	}
	if e.Path != "" {
		parts = append(parts, e.Path)
	}
	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")
	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *SlabsError) Unwrap() error {
	return e.Cause
}

// Is matches on type and code so sentinel comparisons work with errors.Is.
func (e *SlabsError) Is(target error) bool {
	var t *SlabsError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithBlock attaches the block name for diagnostics.
func (e *SlabsError) WithBlock(name string) *SlabsError {
	e.Block = name

	return e
}

// NewManifestReadError reports a manifest file that could not be read.
func NewManifestReadError(path string, cause error) *SlabsError {
	return &SlabsError{
		Type:        ErrorTypeManifest,
		Code:        ErrCodeManifestRead,
		Message:     "cannot read manifest",
		Cause:       cause,
		Path:        path,
		Recoverable: true,
	}
}

// NewManifestParseError reports a manifest whose content is not valid JSON.
func NewManifestParseError(path string, cause error) *SlabsError {
	return &SlabsError{
		Type:        ErrorTypeManifest,
		Code:        ErrCodeManifestParse,
		Message:     "manifest is not valid JSON",
		Cause:       cause,
		Path:        path,
		Recoverable: true,
	}
}

// NewManifestSchemaError reports a manifest missing a required field.
func NewManifestSchemaError(path, field string) *SlabsError {
	return &SlabsError{
		Type:        ErrorTypeManifest,
		Code:        ErrCodeManifestSchema,
		Message:     fmt.Sprintf("manifest field %q is missing or empty", field),
		Path:        path,
		Recoverable: true,
	}
}

// NewRequiredFileError reports a mandatory source role that could not be
// resolved against any candidate extension.
func NewRequiredFileError(path, role string, candidates []string) *SlabsError {
	return &SlabsError{
		Type: ErrorTypeIO,
		Code: ErrCodeFileRequired,
		Message: fmt.Sprintf("required %s source not found (expected one of: %s)",
			role, strings.Join(candidates, ", ")),
		Path:        path,
		Recoverable: true,
	}
}

// NewScanRootError reports a scan root that does not exist or is unreadable.
// This is the only scanner error that aborts a whole scan.
func NewScanRootError(dir string, cause error) *SlabsError {
	return &SlabsError{
		Type:        ErrorTypeScan,
		Code:        ErrCodeScanRoot,
		Message:     "scan root is not a readable directory",
		Cause:       cause,
		Path:        dir,
		Recoverable: false,
	}
}

// NewGenerateError reports a registry generation invariant violation.
func NewGenerateError(code, message string) *SlabsError {
	return &SlabsError{
		Type:        ErrorTypeGenerate,
		Code:        code,
		Message:     message,
		Recoverable: false,
	}
}

// NewConfigError reports an invalid configuration value.
func NewConfigError(message string) *SlabsError {
	return &SlabsError{
		Type:        ErrorTypeConfig,
		Code:        ErrCodeConfigInvalid,
		Message:     message,
		Recoverable: false,
	}
}

// NewInternalError wraps an unexpected failure.
func NewInternalError(message string, cause error) *SlabsError {
	return &SlabsError{
		Type:        ErrorTypeInternal,
		Code:        ErrCodeInternal,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// IsCode reports whether err carries the given slabs error code.
func IsCode(err error, code string) bool {
	var se *SlabsError
	if errors.As(err, &se) {
		return se.Code == code
	}

	return false
}

// IsManifestError reports whether err is any manifest-level failure.
func IsManifestError(err error) bool {
	var se *SlabsError
	if errors.As(err, &se) {
		return se.Type == ErrorTypeManifest
	}

	return false
}

// IsRecoverable reports whether the scanner may convert err into a per-block
// diagnostic rather than aborting the scan.
func IsRecoverable(err error) bool {
	var se *SlabsError
	if errors.As(err, &se) {
		return se.Recoverable
	}

	return false
}
