//go:build property

package registry

import (
	"regexp"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/slabs-dev/slabs/internal/errors"
	"github.com/slabs-dev/slabs/internal/types"
)

var (
	blockNameGen = gen.RegexMatch(`[a-z0-9]([a-z0-9-]{0,10}[a-z0-9])?/[a-z0-9]([a-z0-9-]{0,10}[a-z0-9])?`)
	jsIdentifier = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9]*$`)
)

func TestDeriveIdentifierProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("derived identifier is a valid JS identifier", prop.ForAll(
		func(name string) bool {
			return jsIdentifier.MatchString(DeriveIdentifier(name))
		},
		blockNameGen,
	))

	properties.Property("derivation is deterministic", prop.ForAll(
		func(name string) bool {
			return DeriveIdentifier(name) == DeriveIdentifier(name)
		},
		blockNameGen,
	))

	properties.Property("identifier never contains separators", prop.ForAll(
		func(name string) bool {
			ident := DeriveIdentifier(name)
			return !strings.ContainsAny(ident, "/-")
		},
		blockNameGen,
	))

	properties.TestingRun(t)
}

func TestGenerateModuleProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	namesGen := gen.SliceOf(blockNameGen).Map(func(names []string) []string {
		seen := make(map[string]bool, len(names))
		unique := names[:0]
		for _, name := range names {
			if !seen[name] {
				seen[name] = true
				unique = append(unique, name)
			}
		}
		return unique
	})

	properties.Property("module lists every block exactly once or fails loudly", prop.ForAll(
		func(names []string) bool {
			defs := make([]*types.BlockDefinition, len(names))
			for i, name := range names {
				defs[i] = def(name)
			}

			source, err := GenerateModule(defs)
			if err != nil {
				// Identifier collisions are the only legal failure.
				return errors.IsCode(err, errors.ErrCodeIdentCollision)
			}

			for _, name := range names {
				if strings.Count(source, "'"+name+"': {") != 1 {
					return false
				}
			}
			return strings.Contains(source, "export const blocks = {")
		},
		namesGen,
	))

	properties.Property("type union names every block", prop.ForAll(
		func(names []string) bool {
			defs := make([]*types.BlockDefinition, len(names))
			for i, name := range names {
				defs[i] = def(name)
			}

			declarations := GenerateTypes(defs)
			for _, name := range names {
				if !strings.Contains(declarations, "'"+name+"'") {
					return false
				}
			}
			return true
		},
		namesGen,
	))

	properties.TestingRun(t)
}
