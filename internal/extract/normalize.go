package extract

import "strings"

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Normalize produces canonical text: every line trimmed, empty lines
// dropped, lines joined with a single '\n'. Normalize(Normalize(s)) equals
// Normalize(s).
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	lines := strings.Split(lineBreaks.Replace(text), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if s := strings.TrimSpace(line); s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, "\n")
}
