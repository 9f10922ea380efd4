package watch

import (
	"path/filepath"
)

// editorNoise matches the temporary files editors write next to the real one.
var editorNoise = []string{"*.swp", "*.swx", "*~", ".#*", "#*#", "*.tmp"}

// NameFilter accepts paths whose base name is one of the watched files and
// is not editor noise.
type NameFilter struct {
	names   map[string]bool
	exclude []string
}

func NewNameFilter(names ...string) *NameFilter {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return &NameFilter{names: set, exclude: editorNoise}
}

func (f *NameFilter) Matches(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range f.exclude {
		if matched, _ := filepath.Match(pattern, base); matched {
			return false
		}
	}
	return f.names[base]
}
