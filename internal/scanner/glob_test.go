package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlobMatch(t *testing.T) {
	tests := []struct {
		pattern string
		name    string
		want    bool
	}{
		{"hero", "hero", true},
		{"hero", "hero-banner", false},
		{"hero*", "hero-banner", true},
		{"*-draft", "hero-draft", true},
		{"*-draft", "draft", false},
		{"*", "anything", true},
		{"he?o", "hero", true},
		{"he?o", "heo", false},
		// Anchored: no substring matching.
		{"ero", "hero", false},
		// Regex metacharacters are literal.
		{"a.b", "a.b", true},
		{"a.b", "axb", false},
		{"a+b", "a+b", true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.name, func(t *testing.T) {
			g, err := CompileGlob(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, g.Match(tt.name))
		})
	}
}

func TestGlobSetMatchAny(t *testing.T) {
	set, err := CompileGlobs([]string{"*-draft", "wip-*"})
	require.NoError(t, err)

	assert.True(t, set.MatchAny("hero-draft"))
	assert.True(t, set.MatchAny("wip-hero"))
	assert.False(t, set.MatchAny("hero"))
}

func TestEmptyGlobSetMatchesNothing(t *testing.T) {
	set, err := CompileGlobs(nil)
	require.NoError(t, err)

	assert.False(t, set.MatchAny("hero"))
	assert.False(t, set.MatchAny(""))
}
