// SPDX-License-Identifier: MPL-2.0

package pysource

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
)

// Discover returns the files under root matching any include pattern and no
// exclude pattern. Patterns use doublestar syntax relative to root; results
// are slash-separated relative paths, sorted and de-duplicated.
func Discover(root string, include, exclude []string) ([]string, error) {
	fsys := os.DirFS(root)
	var out []string
	for _, pat := range include {
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("invalid include pattern %q: %w", pat, doublestar.ErrBadPattern)
		}
		matches, err := doublestar.Glob(fsys, pat, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pat, err)
		}
		for _, m := range matches {
			if !Excluded(m, exclude) {
				out = append(out, m)
			}
		}
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

// Excluded reports whether a slash-separated relative path matches any of
// the patterns. Invalid patterns never match.
func Excluded(rel string, patterns []string) bool {
	rel = filepath.ToSlash(rel)
	for _, pat := range patterns {
		if ok, err := doublestar.Match(pat, rel); err == nil && ok {
			return true
		}
	}
	return false
}
