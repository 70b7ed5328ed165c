package layout

import (
	"strings"
	"unicode/utf8"
)

// Wrap breaks s into lines of at most width characters without splitting
// words. A single word longer than width is emitted on its own line
// unchanged. Whitespace-only input yields no lines.
func Wrap(s string, width int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}
	if width < 1 {
		width = 1
	}
	var (
		out []string
		cur strings.Builder
		n   int
	)
	for _, w := range words {
		wl := utf8.RuneCountInString(w)
		if n > 0 && n+1+wl > width {
			out = append(out, cur.String())
			cur.Reset()
			n = 0
		}
		if n > 0 {
			cur.WriteByte(' ')
			n++
		}
		cur.WriteString(w)
		n += wl
	}
	if n > 0 {
		out = append(out, cur.String())
	}
	return out
}
