package layout

import (
	"strings"
	"unicode/utf8"
)

// LineKind is the role a source line plays during layout.
type LineKind int

const (
	Body LineKind = iota
	Title
	SectionHeader
	Blank
)

func (k LineKind) String() string {
	switch k {
	case Title:
		return "title"
	case SectionHeader:
		return "header"
	case Blank:
		return "blank"
	default:
		return "body"
	}
}

// Classify decides how a line after the title is placed and returns the
// text to place. Markdown heading markers and bold wrappers are stripped;
// a '#' heading is always a header.
func (e *Engine) Classify(line string) (LineKind, string) {
	s := strings.TrimSpace(line)
	if s == "" {
		return Blank, ""
	}
	_, heading := headingText(s)
	s = stripMarkdown(s)
	if s == "" {
		return Blank, ""
	}
	if heading || IsHeader(s, e.HeaderMaxChars) {
		return SectionHeader, s
	}
	return Body, s
}

// IsHeader reports whether s looks like a section header: a short line
// ending in a colon.
func IsHeader(s string, maxChars int) bool {
	s = strings.TrimSpace(s)
	return strings.HasSuffix(s, ":") && utf8.RuneCountInString(s) < maxChars
}

// headingText reports whether s is a Markdown ATX heading ("#"
// repeated, then a space or nothing) and returns its text.
func headingText(s string) (string, bool) {
	rest := strings.TrimLeft(s, "#")
	if rest == s {
		return s, false
	}
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return s, false
	}
	return strings.TrimSpace(rest), true
}

// stripMarkdown removes heading markers and surrounding '**' or '__'.
func stripMarkdown(s string) string {
	s, _ = headingText(strings.TrimSpace(s))
	for _, w := range []string{"**", "__"} {
		if len(s) > 2*len(w) && strings.HasPrefix(s, w) && strings.HasSuffix(s, w) {
			if inner := s[len(w) : len(s)-len(w)]; !strings.Contains(inner, w) {
				s = strings.TrimSpace(inner)
			}
		}
	}
	// "**Objective:**" and "**Objective**:" both end up as "Objective:".
	if strings.HasPrefix(s, "**") && strings.HasSuffix(s, "**:") {
		s = strings.TrimSpace(s[2:len(s)-3]) + ":"
	}
	return s
}

var bulletMarkers = []string{"- ", "* ", "+ ", "• ", "· ", "– "}

func isBullet(s string) bool {
	for _, m := range bulletMarkers {
		if strings.HasPrefix(s, m) {
			return true
		}
	}
	// Numbered items: "1. " or "1) ".
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return i > 0 && i < 4 && i+1 < len(s) && (s[i] == '.' || s[i] == ')') && s[i+1] == ' '
}
