package scanner

import (
	"fmt"
	"regexp"
	"strings"
)

// Glob is an anchored name pattern where `*` matches any run of characters
// and `?` matches exactly one. Matching is case-sensitive and covers the
// whole name; there is no substring matching. Regex metacharacters in the
// pattern are matched literally.
type Glob struct {
	pattern string
	re      *regexp.Regexp
}

// CompileGlob converts a glob pattern into its anchored regular expression.
func CompileGlob(pattern string) (*Glob, error) {
	quoted := regexp.QuoteMeta(pattern)
	quoted = strings.ReplaceAll(quoted, `\*`, `.*`)
	quoted = strings.ReplaceAll(quoted, `\?`, `.`)

	re, err := regexp.Compile("^" + quoted + "$")
	if err != nil {
		return nil, fmt.Errorf("compiling glob %q: %w", pattern, err)
	}

	return &Glob{pattern: pattern, re: re}, nil
}

// Match reports whether name matches the whole pattern.
func (g *Glob) Match(name string) bool {
	return g.re.MatchString(name)
}

// String returns the original pattern text.
func (g *Glob) String() string {
	return g.pattern
}

// GlobSet is a compiled list of globs.
type GlobSet []*Glob

// CompileGlobs compiles a list of patterns, failing on the first bad one.
func CompileGlobs(patterns []string) (GlobSet, error) {
	set := make(GlobSet, 0, len(patterns))
	for _, p := range patterns {
		g, err := CompileGlob(p)
		if err != nil {
			return nil, err
		}
		set = append(set, g)
	}

	return set, nil
}

// MatchAny reports whether any glob in the set matches name.
func (s GlobSet) MatchAny(name string) bool {
	for _, g := range s {
		if g.Match(name) {
			return true
		}
	}

	return false
}
