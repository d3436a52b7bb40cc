package adapter

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// MatchGlob reports whether the slash separated relative path rel matches
// pattern. `**` spans directories; `*`, `?`, `[...]` and `{a,b}` stay inside
// one segment. A pattern without a slash is also tried against the base name.
// Malformed patterns match nothing.
func MatchGlob(pattern, rel string) bool {
	if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
		return true
	}

	if !strings.Contains(pattern, "/") {
		ok, err := doublestar.Match(pattern, path.Base(rel))

		return err == nil && ok
	}

	return false
}

