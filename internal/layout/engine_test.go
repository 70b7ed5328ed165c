package layout

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"
)

// smallPage fits a title, one header with a body line and a blank line,
// but not a second header with its body.
func smallPage() *Engine {
	return New(WithPageSize(LetterWidth, 212))
}

func allLines(doc *Document) []PlacedLine {
	var out []PlacedLine
	for _, p := range doc.Pages {
		out = append(out, p.Lines...)
	}
	return out
}

func contents(p Page) []string {
	out := make([]string, 0, len(p.Lines))
	for _, l := range p.Lines {
		out = append(out, l.Content)
	}
	return out
}

func TestLayout_EmptyInputIsOneEmptyPage(t *testing.T) {
	for _, in := range []string{"", "\n\n", "   \n\t"} {
		doc := New().Layout(in)
		if len(doc.Pages) != 1 {
			t.Fatalf("input %q: expected 1 page, got %d", in, len(doc.Pages))
		}
		if n := len(doc.Pages[0].Lines); n != 0 {
			t.Fatalf("input %q: expected no lines, got %d", in, n)
		}
	}
}

func TestLayout_TitleIsFirstNonBlankLine(t *testing.T) {
	e := New()
	doc := e.Layout("\n\n  Creative Brief  \nObjective:\nGrow.")
	lines := allLines(doc)
	if lines[0].Kind != Title || lines[0].Content != "Creative Brief" {
		t.Fatalf("unexpected first line %+v", lines[0])
	}
	if lines[0].Font != e.TitleFont || lines[0].Y != e.Margins.Top {
		t.Fatalf("title font/position wrong: %+v", lines[0])
	}
	titles := 0
	for _, l := range lines {
		if l.Kind == Title {
			titles++
		}
	}
	if titles != 1 {
		t.Fatalf("expected exactly one title, got %d", titles)
	}
}

func TestLayout_LongTitleIsTruncated(t *testing.T) {
	e := New(WithTitleMaxChars(20))
	doc := e.Layout(strings.Repeat("Campaign ", 10))
	got := doc.Pages[0].Lines[0].Content
	if utf8.RuneCountInString(got) != 20 || !strings.HasSuffix(got, "...") {
		t.Fatalf("unexpected truncated title %q", got)
	}
}

func TestClassify(t *testing.T) {
	e := New()
	cases := []struct {
		in      string
		kind    LineKind
		content string
	}{
		{"Objective:", SectionHeader, "Objective:"},
		{"  Key Messages:  ", SectionHeader, "Key Messages:"},
		{"**Audience:**", SectionHeader, "Audience:"},
		{"**Audience**:", SectionHeader, "Audience:"},
		{"## Timeline", SectionHeader, "Timeline"},
		{"#Timeline", Body, "#Timeline"},
		{"#1 priority is reach", Body, "#1 priority is reach"},
		{"###", Blank, ""},
		{"", Blank, ""},
		{"   ", Blank, ""},
		{"Launch eco notebooks.", Body, "Launch eco notebooks."},
		{strings.Repeat("very long line ", 5) + "ending in colon:", Body, strings.Repeat("very long line ", 5) + "ending in colon:"},
		{"- bullet item", Body, "- bullet item"},
	}
	for _, c := range cases {
		kind, content := e.Classify(c.in)
		if kind != c.kind || content != c.content {
			t.Fatalf("Classify(%q) = %s %q, want %s %q", c.in, kind, content, c.kind, c.content)
		}
	}
}

func TestWrap_RespectsWidthWithoutSplittingWords(t *testing.T) {
	in := "Our spring campaign introduces recycled paper notebooks to university students across three regions"
	got := Wrap(in, 20)
	if len(got) < 2 {
		t.Fatalf("expected multiple lines, got %q", got)
	}
	for _, l := range got {
		if utf8.RuneCountInString(l) > 20 {
			t.Fatalf("line exceeds width: %q", l)
		}
	}
	if strings.Join(got, " ") != in {
		t.Fatalf("words lost or split: %q", got)
	}
}

func TestWrap_UnbreakableTokenOverflows(t *testing.T) {
	token := strings.Repeat("x", 50)
	got := Wrap("a "+token+" b", 10)
	want := []string{"a", token, "b"}
	if len(got) != len(want) {
		t.Fatalf("got %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %q, want %q", got, want)
		}
	}
	if Wrap("   ", 10) != nil {
		t.Fatal("whitespace should wrap to nothing")
	}
}

func TestLayout_BodyLinesStayWithinWrapWidth(t *testing.T) {
	e := New()
	body := strings.Repeat("sustainable stationery for students ", 20)
	doc := e.Layout("Title\n" + body)
	lines := allLines(doc)[1:]
	if len(lines) < 2 {
		t.Fatalf("expected body to wrap, got %d lines", len(lines))
	}
	for _, l := range lines {
		if utf8.RuneCountInString(l.Content) > e.WrapWidth() {
			t.Fatalf("line longer than wrap width %d: %q", e.WrapWidth(), l.Content)
		}
		if l.Kind != Body || l.Font != e.BodyFont {
			t.Fatalf("unexpected body line %+v", l)
		}
	}
}

func TestLayout_BulletsAreIndented(t *testing.T) {
	e := New()
	doc := e.Layout("Title\n- first point\nplain text\n2. second point")
	lines := allLines(doc)
	if lines[1].X != e.Margins.Left+e.BulletIndent {
		t.Fatalf("bullet not indented: %+v", lines[1])
	}
	if lines[2].X != e.Margins.Left {
		t.Fatalf("plain line indented: %+v", lines[2])
	}
	if lines[3].X != e.Margins.Left+e.BulletIndent {
		t.Fatalf("numbered item not indented: %+v", lines[3])
	}
}

func TestLayout_BlankLineAdvancesHalfLine(t *testing.T) {
	e := New()
	doc := e.Layout("Title\nfirst\n\nsecond")
	lines := allLines(doc)
	gap := lines[2].Y - lines[1].Y
	if gap != e.LineHeight*1.5 {
		t.Fatalf("gap=%v, want %v", gap, e.LineHeight*1.5)
	}
}

func TestLayout_HeaderMovesToNextPageWithItsBody(t *testing.T) {
	e := smallPage()
	// After the title and two body lines a header alone would still fit,
	// but header plus one body line would not.
	doc := e.Layout("Title\none\ntwo\nGoals:\nthree")
	if len(doc.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(doc.Pages))
	}
	p2 := doc.Pages[1].Lines
	if len(p2) != 2 || p2[0].Content != "Goals:" || p2[0].Kind != SectionHeader || p2[1].Content != "three" {
		t.Fatalf("unexpected page 2 %q", contents(doc.Pages[1]))
	}
	if p2[0].Y != e.Margins.Top {
		t.Fatalf("header should start at top margin, got %v", p2[0].Y)
	}
}

func TestLayout_HeaderNeverSeparatedFromFirstBodyLine(t *testing.T) {
	var stacked, gapped strings.Builder
	stacked.WriteString("Plan\n")
	gapped.WriteString("Plan\n")
	for i := 0; i < 12; i++ {
		stacked.WriteString("Section:\nbody line\n\n")
		gapped.WriteString("Section:\n\n\nbody line\n")
	}
	inputs := []string{
		stacked.String(),
		gapped.String(),
		"Title\nline\nGoals:\n\nthree",
		"Meeting Plan\nintro\nMeetings:\n\n1. Kickoff:\n\nWhen: soon",
	}
	for _, in := range inputs {
		doc := smallPage().Layout(in)
		for pi, p := range doc.Pages {
			for li, l := range p.Lines {
				if l.Kind != SectionHeader {
					continue
				}
				if li+1 >= len(p.Lines) {
					t.Fatalf("input %q: page %d ends with header %q", in, pi, l.Content)
				}
				if next := p.Lines[li+1].Kind; next != Body && next != SectionHeader {
					t.Fatalf("input %q: page %d header %q followed by %s", in, pi, l.Content, next)
				}
			}
		}
	}
}

func TestLayout_HeaderWithBlankGapMovesToNextPage(t *testing.T) {
	doc := smallPage().Layout("Title\nline\nGoals:\n\nthree")
	if len(doc.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(doc.Pages))
	}
	if got := contents(doc.Pages[0]); len(got) != 2 || got[1] != "line" {
		t.Fatalf("page 1: %q", got)
	}
	p2 := doc.Pages[1].Lines
	if len(p2) != 2 || p2[0].Content != "Goals:" || p2[1].Content != "three" {
		t.Fatalf("page 2: %q", contents(doc.Pages[1]))
	}
}

func TestLayout_TwoPageBrief(t *testing.T) {
	e := smallPage()
	doc := e.Layout("Creative Brief\nObjective:\nLaunch eco notebooks.\n\nAudience:\nStudents.")
	if len(doc.Pages) != 2 {
		t.Fatalf("expected exactly one page break, got %d pages", len(doc.Pages))
	}
	p1, p2 := doc.Pages[0].Lines, doc.Pages[1].Lines
	if len(p1) != 3 || len(p2) != 2 {
		t.Fatalf("page1=%q page2=%q", contents(doc.Pages[0]), contents(doc.Pages[1]))
	}
	if p1[0].Content != "Creative Brief" || p1[0].Kind != Title || p1[0].Font.Style != "B" {
		t.Fatalf("unexpected title %+v", p1[0])
	}
	if p1[1].Content != "Objective:" || p1[1].Kind != SectionHeader || p1[1].Font.Style != "B" {
		t.Fatalf("unexpected header %+v", p1[1])
	}
	if p1[2].Content != "Launch eco notebooks." || p1[2].Kind != Body {
		t.Fatalf("unexpected body %+v", p1[2])
	}
	if p2[0].Content != "Audience:" || p2[0].Kind != SectionHeader || p2[1].Content != "Students." {
		t.Fatalf("unexpected page 2 %q", contents(doc.Pages[1]))
	}
}

func TestLayout_PageBreakRestoresBodyStyle(t *testing.T) {
	e := smallPage()
	doc := e.Layout("Title\n" + strings.Repeat("line\n", 20))
	if len(doc.Pages) < 3 {
		t.Fatalf("expected several pages, got %d", len(doc.Pages))
	}
	for pi, p := range doc.Pages[1:] {
		first := p.Lines[0]
		if first.Font != e.BodyFont || first.Kind != Body || first.Y != e.Margins.Top {
			t.Fatalf("page %d starts with %+v", pi+2, first)
		}
	}
	for _, p := range doc.Pages {
		for _, l := range p.Lines {
			if l.Y+e.LineHeight > e.PageHeight-e.Margins.Bottom && l.Kind == Body {
				t.Fatalf("line below bottom margin: %+v", l)
			}
		}
	}
}

func TestLayout_TinyPageTerminates(t *testing.T) {
	e := New(WithPageSize(200, 150), WithMargins(Margins{Top: 70, Right: 10, Bottom: 70, Left: 10}))
	doc := e.Layout("T\nHeader:\nbody\nmore body")
	if len(doc.Pages) == 0 {
		t.Fatal("expected at least one page")
	}
	for i, p := range doc.Pages {
		if len(p.Lines) == 0 && len(doc.Pages) > 1 {
			t.Fatalf("page %d is empty", i)
		}
	}
}

func TestRender_WritesPDF(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "brief.pdf")
	path, err := New().Render("Creative Brief\nObjective:\n• Launch eco notebooks — fast.", out)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if path != out {
		t.Fatalf("path=%q, want %q", path, out)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF: %q", b[:8])
	}
}

func TestSerialize_EmptyDocumentIsValidPDF(t *testing.T) {
	var buf bytes.Buffer
	if err := Serialize(New().Layout(""), &buf); err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatal("expected PDF header")
	}
	if !bytes.Contains(buf.Bytes(), []byte("%%EOF")) {
		t.Fatal("expected PDF trailer")
	}
}
