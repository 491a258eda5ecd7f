package contract

import (
	"testing"
	"unicode/utf8"
)

// FuzzTruncatePath fuzzes TruncatePath with random labels and widths.
func FuzzTruncatePath(f *testing.F) {
	seeds := []struct {
		path  string
		width int
	}{
		{"all:sleeping", 8},
		{"age_15-24:personal care", 12},
		{"", 4},
		{"日本語の活動", 5},
		{"x", -1},
	}
	for _, seed := range seeds {
		f.Add(seed.path, seed.width)
	}

	f.Fuzz(func(t *testing.T, path string, width int) {
		out := TruncatePath(path, width)
		if width > 3 && utf8.ValidString(path) && utf8.RuneCountInString(out) > width {
			t.Errorf("TruncatePath(%q, %d) = %q is wider than %d", path, width, out, width)
		}
	})
}
