package brief

import (
	"bufio"
	"strings"

	"github.com/hyperifyio/gobrief/internal/layout"
)

// Brief is a generated creative brief split into its sections.
type Brief struct {
	Title    string    `json:"title"`
	Sections []Section `json:"sections"`
	// Raw is the brief text exactly as returned by the model.
	Raw string `json:"-"`
}

// Section is one headed part of a brief, e.g. "Objective" with its lines.
type Section struct {
	Heading string   `json:"heading"`
	Body    []string `json:"body"`
}

// Section looks a section up by heading, ignoring case and a trailing colon.
func (b Brief) Section(heading string) (Section, bool) {
	want := normalizeHeading(heading)
	for _, s := range b.Sections {
		if normalizeHeading(s.Heading) == want {
			return s, true
		}
	}
	return Section{}, false
}

func normalizeHeading(s string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimRight(strings.TrimSpace(s), ":")))
}

// Parse splits brief text into a title and sections using the same line
// classification as the layout engine, so the JSON view and the PDF agree.
// Body lines before the first header land in an untitled section.
func Parse(text string) Brief {
	b := Brief{Raw: text}
	e := layout.New()
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	var cur *Section
	for scanner.Scan() {
		line := scanner.Text()
		if b.Title == "" {
			if t := strings.TrimSpace(line); t != "" {
				_, b.Title = e.Classify(t)
				b.Title = strings.TrimRight(b.Title, ":")
			}
			continue
		}
		kind, content := e.Classify(line)
		switch kind {
		case layout.Blank:
			continue
		case layout.SectionHeader:
			b.Sections = append(b.Sections, Section{Heading: strings.TrimRight(content, ": ")})
			cur = &b.Sections[len(b.Sections)-1]
		default:
			if cur == nil {
				b.Sections = append(b.Sections, Section{})
				cur = &b.Sections[len(b.Sections)-1]
			}
			cur.Body = append(cur.Body, content)
		}
	}
	return b
}

// ParseSections returns only the sections of a brief.
func ParseSections(text string) []Section {
	return Parse(text).Sections
}
