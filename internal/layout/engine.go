// Package layout places brief text onto fixed-size pages and renders the
// result as PDF.
//
// Layout is purely geometric: it decides which page, coordinate and font
// every line gets. Serialize turns the placed lines into PDF bytes.
package layout

import "strings"

// FontSpec names a core PDF font.
type FontSpec struct {
	Family string
	// Style is "" for regular or "B" for bold, as understood by gofpdf.
	Style string
	Size  float64
}

// PlacedLine is one line of text at its final position. Y is the top of
// the line slot, measured from the top edge of the page.
type PlacedLine struct {
	Content string
	X, Y    float64
	Font    FontSpec
	Kind    LineKind
}

// Page is an ordered list of placed lines.
type Page struct {
	Lines []PlacedLine
}

// Document is the output of Layout. It always has at least one page.
type Document struct {
	Width, Height float64
	Pages         []Page
}

// Margins in points.
type Margins struct {
	Top, Right, Bottom, Left float64
}

// Engine holds page geometry and typography. The zero value is not usable;
// construct with New.
type Engine struct {
	PageWidth, PageHeight float64
	Margins               Margins

	TitleFont  FontSpec
	HeaderFont FontSpec
	BodyFont   FontSpec

	// LineHeight is the vertical advance of one body line.
	LineHeight float64
	// TitleLineHeight is the vertical advance of the title slot.
	TitleLineHeight float64
	// GlyphWidth is the average character width used to derive WrapWidth.
	GlyphWidth float64

	TitleMaxChars  int
	HeaderMaxChars int
	BulletIndent   float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithPageSize sets the page dimensions in points.
func WithPageSize(width, height float64) Option {
	return func(e *Engine) {
		e.PageWidth = width
		e.PageHeight = height
	}
}

// WithMargins sets all four page margins.
func WithMargins(m Margins) Option {
	return func(e *Engine) { e.Margins = m }
}

// WithLineHeight sets the body line advance.
func WithLineHeight(h float64) Option {
	return func(e *Engine) { e.LineHeight = h }
}

// WithGlyphWidth sets the average glyph width used for wrapping.
func WithGlyphWidth(w float64) Option {
	return func(e *Engine) { e.GlyphWidth = w }
}

// WithFonts overrides the title, header and body fonts.
func WithFonts(title, header, body FontSpec) Option {
	return func(e *Engine) {
		e.TitleFont = title
		e.HeaderFont = header
		e.BodyFont = body
	}
}

// WithTitleMaxChars caps the rendered title length, ellipsis included.
func WithTitleMaxChars(n int) Option {
	return func(e *Engine) { e.TitleMaxChars = n }
}

// WithHeaderMaxChars sets the length below which a line ending in ':'
// counts as a section header.
func WithHeaderMaxChars(n int) Option {
	return func(e *Engine) { e.HeaderMaxChars = n }
}

// US Letter in points.
const (
	LetterWidth  = 612.0
	LetterHeight = 792.0
)

// New returns an engine for US Letter pages with one-inch margins.
func New(opts ...Option) *Engine {
	e := &Engine{
		PageWidth:       LetterWidth,
		PageHeight:      LetterHeight,
		Margins:         Margins{Top: 72, Right: 72, Bottom: 72, Left: 72},
		TitleFont:       FontSpec{Family: "Helvetica", Style: "B", Size: 16},
		HeaderFont:      FontSpec{Family: "Helvetica", Style: "B", Size: 12},
		BodyFont:        FontSpec{Family: "Helvetica", Size: 11},
		LineHeight:      14,
		TitleLineHeight: 20,
		GlyphWidth:      5.5,
		TitleMaxChars:   80,
		HeaderMaxChars:  60,
		BulletIndent:    18,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WrapWidth is the target number of characters per body line.
func (e *Engine) WrapWidth() int {
	usable := e.PageWidth - e.Margins.Left - e.Margins.Right
	if e.GlyphWidth <= 0 || usable <= 0 {
		return 1
	}
	if n := int(usable / e.GlyphWidth); n > 0 {
		return n
	}
	return 1
}

func (e *Engine) bottom() float64 { return e.PageHeight - e.Margins.Bottom }

func (e *Engine) headerAdvance() float64 { return e.LineHeight * 1.2 }

// cursor is the placement state threaded through every step. A page break
// resets y and keeps style.
type cursor struct {
	page  int
	y     float64
	style FontSpec
}

// Layout paginates text. It never fails and always returns at least one page.
func (e *Engine) Layout(text string) *Document {
	doc := &Document{Width: e.PageWidth, Height: e.PageHeight, Pages: []Page{{}}}
	c := cursor{y: e.Margins.Top, style: e.BodyFont}
	titled := false
	lines := splitLines(text)
	for i, raw := range lines {
		if !titled {
			if strings.TrimSpace(raw) == "" {
				continue
			}
			c = e.placeTitle(doc, c, raw)
			titled = true
			continue
		}
		kind, content := e.Classify(raw)
		switch kind {
		case Blank:
			c = e.placeBlank(c)
		case SectionHeader:
			c = e.placeHeader(doc, c, content, e.blanksAfter(lines[i+1:]))
		default:
			c = e.placeBody(doc, c, content)
		}
	}
	return doc
}

// blanksAfter counts the lines at the start of rest that classify as Blank.
func (e *Engine) blanksAfter(rest []string) int {
	n := 0
	for _, l := range rest {
		if kind, _ := e.Classify(l); kind != Blank {
			break
		}
		n++
	}
	return n
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.NewReplacer("\r\n", "\n", "\r", "\n").Replace(text), "\n")
}

func (e *Engine) place(doc *Document, c cursor, line PlacedLine) {
	p := &doc.Pages[c.page]
	p.Lines = append(p.Lines, line)
}

// newPage starts a fresh page unless the current one is still empty.
func (e *Engine) newPage(doc *Document, c cursor) cursor {
	if len(doc.Pages[c.page].Lines) == 0 {
		c.y = e.Margins.Top
		return c
	}
	doc.Pages = append(doc.Pages, Page{})
	return cursor{page: len(doc.Pages) - 1, y: e.Margins.Top, style: c.style}
}

func (e *Engine) placeTitle(doc *Document, c cursor, raw string) cursor {
	title := truncate(stripMarkdown(strings.TrimSpace(raw)), e.TitleMaxChars)
	e.place(doc, c, PlacedLine{Content: title, X: e.Margins.Left, Y: c.y, Font: e.TitleFont, Kind: Title})
	c.y += e.TitleLineHeight
	c.style = e.BodyFont
	return c
}

func (e *Engine) placeBlank(c cursor) cursor {
	c.y += e.LineHeight / 2
	return c
}

// placeHeader keeps a header together with at least one following body
// line, plus the space taken by the blank lines in between.
func (e *Engine) placeHeader(doc *Document, c cursor, content string, blanks int) cursor {
	gap := float64(blanks) * e.LineHeight / 2
	if c.y+e.headerAdvance()+gap+e.LineHeight > e.bottom() {
		c = e.newPage(doc, c)
	}
	e.place(doc, c, PlacedLine{Content: content, X: e.Margins.Left, Y: c.y, Font: e.HeaderFont, Kind: SectionHeader})
	c.y += e.headerAdvance()
	c.style = e.BodyFont
	return c
}

func (e *Engine) placeBody(doc *Document, c cursor, content string) cursor {
	for _, sub := range Wrap(content, e.WrapWidth()) {
		if c.y+e.LineHeight > e.bottom() {
			c = e.newPage(doc, c)
		}
		x := e.Margins.Left
		if isBullet(sub) {
			x += e.BulletIndent
		}
		e.place(doc, c, PlacedLine{Content: sub, X: x, Y: c.y, Font: c.style, Kind: Body})
		c.y += e.LineHeight
	}
	return c
}

func truncate(s string, max int) string {
	const ellipsis = "..."
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	if max <= len(ellipsis) {
		return string(r[:max])
	}
	return string(r[:max-len(ellipsis)]) + ellipsis
}
