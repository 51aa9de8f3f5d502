// Package validate runs the structural rule set against block folders.
//
// Validation is advisory for the pipeline: the scanner consults the result to
// decide whether a folder becomes a BlockDefinition, but a failing folder
// never aborts a scan. Manifest field rules are expressed as a JSON Schema
// compiled once per Validator; file-presence rules share the loader's probe
// lists so the two packages can never disagree about what a block needs.
package validate

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/slabs-dev/slabs/internal/errors"
	"github.com/slabs-dev/slabs/internal/manifest"
	"github.com/slabs-dev/slabs/internal/types"
)

// blockSchema is the block.json contract. The name pattern and required
// title are the wire format of this subsystem; changing them breaks existing
// block authors.
const blockSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["name", "title"],
	"properties": {
		"name": {"type": "string", "pattern": "^[a-z0-9-]+/[a-z0-9-]+$"},
		"title": {"type": "string", "minLength": 1},
		"category": {"type": "string"},
		"description": {"type": "string"},
		"keywords": {"type": "array", "items": {"type": "string"}},
		"version": {"type": "string"},
		"icon": {"type": "string"},
		"attributes": {
			"type": "object",
			"additionalProperties": {
				"type": "object",
				"required": ["type"],
				"properties": {"type": {"type": "string"}}
			}
		},
		"supports": {"type": "object", "additionalProperties": {"type": "boolean"}},
		"dependencies": {"type": "object", "additionalProperties": {"type": "string"}},
		"peerDependencies": {"type": "object", "additionalProperties": {"type": "string"}}
	}
}`

const schemaURL = "slabs://block.schema.json"

// Validator validates block folders against the structural rule set.
// A Validator is immutable after construction and safe for concurrent use.
type Validator struct {
	schema  *jsonschema.Schema
	printer *message.Printer
}

// New compiles the embedded block.json schema and returns a Validator.
func New() (*Validator, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(blockSchema))
	if err != nil {
		return nil, errors.NewInternalError("parsing embedded block schema", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, doc); err != nil {
		return nil, errors.NewInternalError("registering block schema", err)
	}

	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, errors.NewInternalError("compiling block schema", err)
	}

	return &Validator{
		schema:  schema,
		printer: message.NewPrinter(language.English),
	}, nil
}

// Must returns a Validator or panics. The embedded schema is a compile-time
// constant, so failure here is a programming error.
func Must() *Validator {
	v, err := New()
	if err != nil {
		panic(err)
	}

	return v
}

// Validate runs the rule set against blockPath, in order:
//
//  1. manifest presence (missing manifest short-circuits: every downstream
//     check is meaningless without one)
//  2. JSON validity (invalid JSON skips schema checks, file checks still run)
//  3. schema conformance (required name with namespace pattern, required title)
//  4. presence of edit/save/render sources over the loader's probe lists
//  5. presence of a preview image (warning only)
//
// Warnings never affect Valid.
func (v *Validator) Validate(blockPath string) types.ValidationResult {
	result := types.ValidationResult{Valid: true}

	abs, err := filepath.Abs(blockPath)
	if err != nil {
		abs = blockPath
	}

	data, err := os.ReadFile(filepath.Join(blockPath, manifest.Filename))
	if err != nil {
		result.AddError(types.ValidationError{
			Code:    types.CodeMissingFile,
			Message: fmt.Sprintf("block manifest %s not found", manifest.Filename),
			File:    manifest.Filename,
			Path:    abs,
		})

		return result
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		result.AddError(types.ValidationError{
			Code:    types.CodeInvalidJSON,
			Message: fmt.Sprintf("%s is not valid JSON: %v", manifest.Filename, err),
			File:    manifest.Filename,
			Path:    abs,
		})
	} else if verr := v.schema.Validate(inst); verr != nil {
		v.appendSchemaErrors(&result, abs, inst, verr)
	}

	v.checkSourceFiles(&result, blockPath, abs)
	v.checkPreview(&result, blockPath)

	return result
}

// appendSchemaErrors flattens a jsonschema validation error into
// INVALID_SCHEMA entries, one per leaf cause, with required-property causes
// split so each missing field gets its own entry.
func (v *Validator) appendSchemaErrors(result *types.ValidationResult, abs string, inst any, err error) {
	var verr *jsonschema.ValidationError
	if !stderrors.As(err, &verr) {
		result.AddError(types.ValidationError{
			Code:    types.CodeInvalidSchema,
			Message: err.Error(),
			File:    manifest.Filename,
			Path:    abs,
		})

		return
	}

	for _, cause := range leafCauses(verr) {
		if req, ok := cause.ErrorKind.(*kind.Required); ok {
			for _, missing := range req.Missing {
				result.AddError(types.ValidationError{
					Code:    types.CodeInvalidSchema,
					Message: fmt.Sprintf("required field %q is missing", missing),
					File:    manifest.Filename,
					Path:    abs,
				})
			}

			continue
		}

		loc := strings.Join(cause.InstanceLocation, ".")
		msg := cause.ErrorKind.LocalizedString(v.printer)
		if loc != "" {
			msg = loc + ": " + msg
		}

		result.AddError(types.ValidationError{
			Code:    types.CodeInvalidSchema,
			Message: msg,
			File:    manifest.Filename,
			Path:    abs,
			Value:   instanceValue(inst, cause.InstanceLocation),
		})
	}
}

func (v *Validator) checkSourceFiles(result *types.ValidationResult, blockPath, abs string) {
	for _, role := range []string{manifest.RoleEdit, manifest.RoleSave, manifest.RoleRender} {
		if _, ok := manifest.Probe(blockPath, role, manifest.SourceExtensions); !ok {
			result.AddError(types.ValidationError{
				Code: types.CodeMissingFile,
				Message: fmt.Sprintf("missing %s source: expected one of %s",
					role, strings.Join(manifest.Candidates(role, manifest.SourceExtensions), ", ")),
				File: role + manifest.SourceExtensions[0],
				Path: abs,
			})
		}
	}
}

func (v *Validator) checkPreview(result *types.ValidationResult, blockPath string) {
	if _, ok := manifest.Probe(blockPath, "preview", manifest.PreviewExtensions); !ok {
		result.AddWarning(types.ValidationWarning{
			Code:       types.CodeMissingPreview,
			Message:    "block has no preview image",
			Suggestion: "add a preview.png (or .jpg/.webp/.svg) so editors can see the block before inserting it",
		})
	}
}

// leafCauses collects the leaf validation errors of a cause tree.
func leafCauses(verr *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(verr.Causes) == 0 {
		return []*jsonschema.ValidationError{verr}
	}

	var leaves []*jsonschema.ValidationError
	for _, cause := range verr.Causes {
		leaves = append(leaves, leafCauses(cause)...)
	}

	return leaves
}

// instanceValue resolves the offending scalar value at a schema error's
// instance location, for attachment to INVALID_SCHEMA diagnostics.
func instanceValue(inst any, location []string) string {
	current := inst
	for _, segment := range location {
		obj, ok := current.(map[string]any)
		if !ok {
			return ""
		}
		current, ok = obj[segment]
		if !ok {
			return ""
		}
	}

	switch v := current.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}
