package textindex

import (
	"path/filepath"
	"testing"
)

func TestRelativePath(t *testing.T) {
	base := filepath.FromSlash("/home/user/docs")

	tests := []struct {
		name string
		path string
		base string
		want string
	}{
		{"beneath base", "/home/user/docs/a.txt", base, "a.txt"},
		{"nested", "/home/user/docs/x/y.txt", base, "x/y.txt"},
		{"base itself", "/home/user/docs", base, "."},
		{"outside base", "/etc/hosts", base, "/etc/hosts"},
		{"sibling prefix", "/home/user/docs2/a.txt", base, "/home/user/docs2/a.txt"},
		{"dotdot-named file", "/home/user/docs/..a.txt", base, "..a.txt"},
		{"no base", "/x/a.txt", "", "/x/a.txt"},
		{"relative path", "a.txt", base, "a.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RelativePath(filepath.FromSlash(tt.path), tt.base)
			if want := filepath.FromSlash(tt.want); got != want {
				t.Errorf("RelativePath(%q, %q) = %q, want %q", tt.path, tt.base, got, want)
			}
		})
	}
}

func TestResolvePath(t *testing.T) {
	meta := Metadata{BaseDir: filepath.FromSlash("/srv/docs")}

	tests := []struct {
		name   string
		stored string
		meta   Metadata
		ok     bool
		want   string
	}{
		{"relative with base", "a.txt", meta, true, "/srv/docs/a.txt"},
		{"absolute with base", "/etc/hosts", meta, true, "/etc/hosts"},
		{"no metadata", "a.txt", Metadata{}, false, "a.txt"},
		{"empty base", "a.txt", Metadata{}, true, "a.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolvePath(filepath.FromSlash(tt.stored), tt.meta, tt.ok)
			if want := filepath.FromSlash(tt.want); got != want {
				t.Errorf("ResolvePath(%q) = %q, want %q", tt.stored, got, want)
			}
		})
	}
}
