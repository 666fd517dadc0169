package textindex

import (
	"path/filepath"
	"strings"
)

// RelativePath returns path relative to base when it lies beneath base, and
// path unchanged otherwise.
func RelativePath(path, base string) string {
	if base == "" || !filepath.IsAbs(path) {
		return path
	}
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}

// ResolvePath turns a stored path back into a filesystem path. Relative
// paths are joined to the base directory recorded in meta; without metadata
// they are returned verbatim.
func ResolvePath(stored string, meta Metadata, ok bool) string {
	if filepath.IsAbs(stored) || !ok || meta.BaseDir == "" {
		return stored
	}
	return filepath.Join(meta.BaseDir, stored)
}
