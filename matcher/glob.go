// Package matcher provides the glob matcher used by route tables.
//
// Patterns follow doublestar semantics ("*" within a segment, "**" across
// segments, "{a,b}" alternatives). A pattern without a slash is matched
// against the last path segment only, so "*.tmpl" matches "/app.tmpl" and
// "/views/app.tmpl" alike. Patterns with a slash match the whole path.
package matcher

import (
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Glob matches logical paths against doublestar patterns.
type Glob struct{}

// Match reports whether name matches pattern. Malformed patterns never match.
func (Glob) Match(pattern, name string) bool {
	if pattern == "**" {
		return true
	}

	pattern = strings.TrimPrefix(pattern, "/")
	name = strings.Trim(name, "/")

	if !strings.Contains(pattern, "/") {
		if name == "" {
			return false
		}
		name = path.Base(name)
	}

	ok, err := doublestar.Match(pattern, name)
	return err == nil && ok
}

// ValidatePattern rejects patterns doublestar cannot parse.
func (Glob) ValidatePattern(pattern string) error {
	if !doublestar.ValidatePattern(pattern) {
		return fmt.Errorf("invalid pattern %q", pattern)
	}
	return nil
}
