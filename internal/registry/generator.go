package registry

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/slabs-dev/slabs/internal/errors"
	"github.com/slabs-dev/slabs/internal/types"
)

// ModuleID is the reserved virtual-module identifier under which the build
// tool serves the generated registry source.
const ModuleID = "virtual:slabs-registry"

// registryVersion is the version stamped into the generated metadata export.
const registryVersion = "1.0.0"

// DeriveIdentifier converts a namespaced block name into its camelCase
// import-binding prefix: "slabs/simple-text" becomes "slabsSimpleText".
//
// The derivation is deterministic but not injective over arbitrary strings
// ("a-b/c" and "a/b-c" both yield "aBC"), so the generator verifies
// uniqueness over each input set before emitting any source.
func DeriveIdentifier(name string) string {
	caser := cases.Title(language.Und)

	var b strings.Builder
	first := true
	for _, token := range strings.FieldsFunc(name, func(r rune) bool {
		return r == '/' || r == '-'
	}) {
		if first {
			b.WriteString(token)
			first = false
			continue
		}
		b.WriteString(caser.String(token))
	}

	ident := b.String()
	if ident == "" || ident[0] >= '0' && ident[0] <= '9' {
		ident = "block" + ident
	}

	return ident
}

// identifiers derives the binding prefix for every block and fails with
// ERR_IDENT_COLLISION if two names collide, including a name appearing twice
// (two folders may declare the same manifest name). Either case would emit
// duplicate const bindings and make the generated module syntactically
// invalid, so it fails loudly rather than silently renaming.
func identifiers(blocks []*types.BlockDefinition) (map[string]string, error) {
	idents := make(map[string]string, len(blocks))
	seen := make(map[string]string, len(blocks))

	for _, block := range blocks {
		ident := DeriveIdentifier(block.Name)
		if other, dup := seen[ident]; dup {
			if other == block.Name {
				return nil, errors.NewGenerateError(errors.ErrCodeIdentCollision,
					fmt.Sprintf("block name %q appears more than once", block.Name))
			}

			return nil, errors.NewGenerateError(errors.ErrCodeIdentCollision,
				fmt.Sprintf("blocks %q and %q derive the same identifier %q", other, block.Name, ident))
		}
		seen[ident] = block.Name
		idents[block.Name] = ident
	}

	return idents, nil
}

// GenerateModule produces the full virtual-module source for the given
// blocks: import statements, the keyed blocks export, and the metadata
// export. Empty input still yields syntactically valid output.
func GenerateModule(blocks []*types.BlockDefinition) (string, error) {
	idents, err := identifiers(blocks)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("// Generated by slabs. Do not edit.\n\n")
	b.WriteString(generateImports(blocks, idents))
	b.WriteString("\n")

	exports, err := generateExports(blocks, idents)
	if err != nil {
		return "", err
	}
	b.WriteString(exports)
	b.WriteString("\n")
	b.WriteString(generateMetadata(len(blocks), time.Now()))

	return b.String(), nil
}

// generateImports emits, per block, named imports of the edit/save/render
// bindings aliased to the block's identifier prefix, a default import for
// the preview image when present, and a side-effect import of the
// stylesheet when present.
func generateImports(blocks []*types.BlockDefinition, idents map[string]string) string {
	var b strings.Builder

	for _, block := range blocks {
		prefix := idents[block.Name]
		fmt.Fprintf(&b, "import { render as %sEdit } from '%s';\n", prefix, modulePath(block.Files.EditPath))
		fmt.Fprintf(&b, "import { save as %sSave } from '%s';\n", prefix, modulePath(block.Files.SavePath))
		fmt.Fprintf(&b, "import { render as %sRender } from '%s';\n", prefix, modulePath(block.Files.RenderPath))
		if block.Files.PreviewPath != "" {
			fmt.Fprintf(&b, "import %sPreview from '%s';\n", prefix, modulePath(block.Files.PreviewPath))
		}
		if block.Files.StylePath != "" {
			fmt.Fprintf(&b, "import '%s';\n", modulePath(block.Files.StylePath))
		}
	}

	return b.String()
}

// generateExports emits the keyed blocks mapping. Metadata is embedded as a
// literal JSON spread, not re-derived at runtime.
func generateExports(blocks []*types.BlockDefinition, idents map[string]string) (string, error) {
	var b strings.Builder
	b.WriteString("export const blocks = {\n")

	for _, block := range blocks {
		prefix := idents[block.Name]
		meta, err := json.Marshal(block.Meta)
		if err != nil {
			return "", errors.NewInternalError("serializing metadata for "+block.Name, err)
		}

		fmt.Fprintf(&b, "  '%s': {\n", block.Name)
		fmt.Fprintf(&b, "    edit: %sEdit,\n", prefix)
		fmt.Fprintf(&b, "    save: %sSave,\n", prefix)
		fmt.Fprintf(&b, "    render: %sRender,\n", prefix)
		if block.Files.PreviewPath != "" {
			fmt.Fprintf(&b, "    preview: %sPreview,\n", prefix)
		}
		fmt.Fprintf(&b, "    ...%s\n", string(meta))
		b.WriteString("  },\n")
	}

	b.WriteString("\n};\n")

	return b.String(), nil
}

// generateMetadata emits the registry summary export. The timestamp is real
// wall-clock time at generation.
func generateMetadata(totalBlocks int, now time.Time) string {
	var b strings.Builder
	b.WriteString("export const metadata = {\n")
	fmt.Fprintf(&b, "  totalBlocks: %d,\n", totalBlocks)
	fmt.Fprintf(&b, "  version: '%s',\n", registryVersion)
	fmt.Fprintf(&b, "  generatedAt: '%s'\n", now.UTC().Format(time.RFC3339))
	b.WriteString("};\n")

	return b.String()
}

// GenerateTypes produces the TypeScript declaration for the virtual module,
// including a union of all known block-name literals so editor tooling gets
// static completions over the registry.
func GenerateTypes(blocks []*types.BlockDefinition) string {
	var b strings.Builder

	fmt.Fprintf(&b, "declare module '%s' {\n", ModuleID)
	b.WriteString(`  export interface BlockMetadata {
    name: string;
    title: string;
    category?: string;
    description?: string;
    keywords?: string[];
    version?: string;
    icon?: string;
    attributes?: Record<string, { type: string; default?: unknown }>;
    supports?: Record<string, boolean>;
    dependencies?: Record<string, string>;
    peerDependencies?: Record<string, string>;
  }

  export interface BlockModules {
    edit: (...args: unknown[]) => unknown;
    save: (...args: unknown[]) => unknown;
    render: (...args: unknown[]) => unknown;
    preview?: string;
  }

  export type BlockDefinition = BlockModules & BlockMetadata;

`)

	if len(blocks) == 0 {
		b.WriteString("  export type BlockName = never;\n\n")
		b.WriteString("  export const blocks: Record<string, BlockDefinition>;\n")
	} else {
		names := make([]string, len(blocks))
		for i, block := range blocks {
			names[i] = fmt.Sprintf("'%s'", block.Name)
		}
		fmt.Fprintf(&b, "  export type BlockName = %s;\n\n", strings.Join(names, " | "))
		b.WriteString("  export const blocks: Record<BlockName, BlockDefinition>;\n")
	}

	b.WriteString(`
  export const metadata: {
    totalBlocks: number;
    version: string;
    generatedAt: string;
  };
}
`)

	return b.String()
}

// modulePath normalizes a resolved file path for use in a generated import
// statement.
func modulePath(path string) string {
	p := filepath.ToSlash(path)

	return strings.ReplaceAll(p, "'", "\\'")
}
