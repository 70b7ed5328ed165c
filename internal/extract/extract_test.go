package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/hyperifyio/gobrief/internal/format"
)

type fakeOCR struct {
	text  string
	err   error
	calls int
}

func (f *fakeOCR) Recognize(_ context.Context, img []byte) (string, error) {
	f.calls++
	if !bytes.HasPrefix(img, []byte("\x89PNG")) {
		return "", errors.New("expected png input")
	}
	return f.text, f.err
}

type panicOCR struct{}

func (panicOCR) Recognize(context.Context, []byte) (string, error) { panic("engine crashed") }

type fakeTranscriber struct{ gotName string }

func (f *fakeTranscriber) Transcribe(_ context.Context, name string, _ []byte) (string, error) {
	f.gotName = name
	return "  welcome to the launch call  \n\n", nil
}

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.White)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestRouteAndExtract_ZeroBytePDFIsEmptyContent(t *testing.T) {
	res := New(nil, nil).RouteAndExtract(context.Background(), Upload{Filename: "x.pdf"})
	if res.Success {
		t.Fatalf("expected failure")
	}
	if !errors.Is(res.Err, ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", res.Err)
	}
	if res.Reason() != "No text content found in PDF" {
		t.Fatalf("unexpected reason %q", res.Reason())
	}
	if res.Text != "" || res.Format != format.PDF || res.Filename != "x.pdf" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestRouteAndExtract_UnsupportedFormat(t *testing.T) {
	junk := []byte{0xde, 0xad, 0xbe, 0xef, 0x13, 0x37, 0x00, 0x42, 0x00, 0x99}
	res := New(nil, nil).RouteAndExtract(context.Background(), Upload{Filename: "blob.xyz", Data: junk})
	if res.Success || !errors.Is(res.Err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %+v", res)
	}
	if res.Format != format.Unknown {
		t.Fatalf("format=%s, want unknown", res.Format)
	}
	if Kind(res.Err) != ErrUnsupportedFormat {
		t.Fatalf("Kind mismatch: %v", Kind(res.Err))
	}
}

func TestRouteAndExtract_CorruptPDFIsDecodeError(t *testing.T) {
	res := New(nil, nil).RouteAndExtract(context.Background(), Upload{Filename: "bad.pdf", Data: []byte("%PDF-1.4 this is not a real pdf")})
	if res.Success || !errors.Is(res.Err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %+v", res)
	}
	if !strings.HasPrefix(res.Reason(), "Error processing PDF") {
		t.Fatalf("unexpected reason %q", res.Reason())
	}
}

func twoPagePDF(t *testing.T, first, second string) []byte {
	t.Helper()
	doc := gofpdf.New("P", "pt", "Letter", "")
	doc.SetFont("Helvetica", "", 12)
	for _, text := range []string{first, second} {
		doc.AddPage()
		doc.SetXY(72, 72)
		doc.Cell(400, 14, text)
	}
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	return buf.Bytes()
}

func TestExtractPDF_MarksPagesInOrder(t *testing.T) {
	data := twoPagePDF(t, "Launch eco notebooks", "Students audience")
	raw, err := extractPDF(context.Background(), New(nil, nil), Upload{Filename: "brief.pdf", Data: data})
	if err != nil {
		t.Fatalf("extractPDF: %v", err)
	}
	want := "--- Page 1 ---\n\nLaunch eco notebooks\n\n--- Page 2 ---\n\nStudents audience"
	if raw != want {
		t.Fatalf("got %q, want %q", raw, want)
	}

	res := New(nil, nil).RouteAndExtract(context.Background(), Upload{Filename: "brief.pdf", Data: data})
	if !res.Success || res.Format != format.PDF {
		t.Fatalf("expected pdf success, got %+v", res)
	}
	if res.Text != "--- Page 1 ---\nLaunch eco notebooks\n--- Page 2 ---\nStudents audience" {
		t.Fatalf("normalized text %q", res.Text)
	}
}

func TestRouteAndExtract_TextIsNormalized(t *testing.T) {
	res := New(nil, nil).RouteAndExtract(context.Background(), Upload{Filename: "notes.txt", Data: []byte("  Launch plan \n\n\n  - eco notebooks\n")})
	if !res.Success {
		t.Fatalf("unexpected failure: %v", res.Err)
	}
	if res.Text != "Launch plan\n- eco notebooks" {
		t.Fatalf("got %q", res.Text)
	}
}

func TestRouteAndExtract_WhitespaceOnlyTextIsEmpty(t *testing.T) {
	res := New(nil, nil).RouteAndExtract(context.Background(), Upload{Filename: "blank.txt", Data: []byte(" \n\t\n")})
	if res.Success || !errors.Is(res.Err, ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %+v", res)
	}
}

func TestDecodeText_Encodings(t *testing.T) {
	utf16 := []byte{0xff, 0xfe, 'H', 0, 'i', 0}
	if s, enc := DecodeText(utf16); s != "Hi" || enc != "utf-16" {
		t.Fatalf("utf-16: got %q via %s", s, enc)
	}
	latin := []byte("caf\xe9")
	if s, enc := DecodeText(latin); s != "café" || enc != "latin-1" {
		t.Fatalf("latin-1: got %q via %s", s, enc)
	}
	bom := append([]byte{0xef, 0xbb, 0xbf}, []byte("brief")...)
	if s, enc := DecodeText(bom); s != "brief" || enc != "utf-8" {
		t.Fatalf("utf-8 bom: got %q via %s", s, enc)
	}
}

func TestExtract_HTMLBecomesReadableText(t *testing.T) {
	page := `<!doctype html><html><head><title>Spring Campaign</title><script>var x=1;</script></head>
<body><nav>Home | About</nav><h2>Goals</h2><p>Grow   sign-ups.</p><ul><li>Email</li><li>Social</li></ul></body></html>`
	res := New(nil, nil).RouteAndExtract(context.Background(), Upload{Filename: "campaign.html", Data: []byte(page)})
	if !res.Success {
		t.Fatalf("unexpected failure: %v", res.Err)
	}
	want := "Spring Campaign\nGoals:\nGrow sign-ups.\n- Email\n- Social"
	if res.Text != want {
		t.Fatalf("got %q, want %q", res.Text, want)
	}
}

func TestExtract_CSVSummary(t *testing.T) {
	data := []byte("channel,budget,owner\nsocial,1200,ann\nemail,300,bob\nprint,,cy\n")
	res := New(nil, nil).RouteAndExtract(context.Background(), Upload{Filename: "plan.csv", Data: data})
	if !res.Success {
		t.Fatalf("unexpected failure: %v", res.Err)
	}
	for _, want := range []string{
		"CSV Data Summary:",
		"Rows: 3, Columns: 3",
		"Column Names: channel, budget, owner",
		"Sample Data (first 10 rows):",
		"Numeric Column Summary:",
		"budget: Mean=750.00, Min=300.00, Max=1200.00",
	} {
		if !strings.Contains(res.Text, want) {
			t.Fatalf("missing %q in:\n%s", want, res.Text)
		}
	}
	if strings.Contains(res.Text, "owner: Mean") {
		t.Fatalf("text column summarized as numeric:\n%s", res.Text)
	}
	if !strings.Contains(res.Text, "social") || !strings.Contains(res.Text, "email") {
		t.Fatalf("sample rows missing:\n%s", res.Text)
	}
}

func TestExtract_CSVSampleIsBounded(t *testing.T) {
	var b strings.Builder
	b.WriteString("id\n")
	for i := 0; i < 30; i++ {
		b.WriteString("row")
		b.WriteString(strings.Repeat("x", i))
		b.WriteString("\n")
	}
	res := New(nil, nil).RouteAndExtract(context.Background(), Upload{Filename: "many.csv", Data: []byte(b.String())})
	if !res.Success {
		t.Fatalf("unexpected failure: %v", res.Err)
	}
	if strings.Contains(res.Text, "row"+strings.Repeat("x", 10)+"\n") {
		t.Fatalf("row beyond sample limit rendered:\n%s", res.Text)
	}
	if !strings.Contains(res.Text, "Rows: 30, Columns: 1") {
		t.Fatalf("row count wrong:\n%s", res.Text)
	}
}

func TestExtract_ExcelSummarizesEverySheet(t *testing.T) {
	f := excelize.NewFile()
	if err := f.SetSheetRow("Sheet1", "A1", &[]interface{}{"channel", "budget"}); err != nil {
		t.Fatalf("set row: %v", err)
	}
	if err := f.SetSheetRow("Sheet1", "A2", &[]interface{}{"social", 1200}); err != nil {
		t.Fatalf("set row: %v", err)
	}
	if err := f.SetSheetRow("Sheet1", "A3", &[]interface{}{"email", 400}); err != nil {
		t.Fatalf("set row: %v", err)
	}
	if _, err := f.NewSheet("Timeline"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	if err := f.SetSheetRow("Timeline", "A1", &[]interface{}{"week", "task"}); err != nil {
		t.Fatalf("set row: %v", err)
	}
	if err := f.SetSheetRow("Timeline", "A2", &[]interface{}{1, "kickoff"}); err != nil {
		t.Fatalf("set row: %v", err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	res := New(nil, nil).RouteAndExtract(context.Background(), Upload{Filename: "plan.xlsx", Data: buf.Bytes()})
	if !res.Success {
		t.Fatalf("unexpected failure: %v", res.Err)
	}
	for _, want := range []string{
		"Excel File Summary:",
		"Number of sheets: 2",
		"=== Sheet: Sheet1 ===",
		"=== Sheet: Timeline ===",
		"Sample Data (first 5 rows):",
		"budget: Mean=800.00, Min=400.00, Max=1200.00",
		"week: Mean=1.00, Min=1.00, Max=1.00",
	} {
		if !strings.Contains(res.Text, want) {
			t.Fatalf("missing %q in:\n%s", want, res.Text)
		}
	}
}

func TestExtract_ImageUsesOCROnNormalizedPNG(t *testing.T) {
	ocr := &fakeOCR{text: "  SALE 50%  \n"}
	res := New(ocr, nil).RouteAndExtract(context.Background(), Upload{Filename: "flyer.png", Data: tinyPNG(t)})
	if !res.Success || res.Text != "SALE 50%" {
		t.Fatalf("unexpected result %+v", res)
	}
	if ocr.calls != 1 {
		t.Fatalf("ocr calls=%d", ocr.calls)
	}
}

func TestExtract_ImageWithoutTextIsEmpty(t *testing.T) {
	res := New(&fakeOCR{}, nil).RouteAndExtract(context.Background(), Upload{Filename: "blank.png", Data: tinyPNG(t)})
	if res.Success || res.Reason() != "No text found in image" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestExtract_PanickingDecoderIsCaptured(t *testing.T) {
	res := New(panicOCR{}, nil).RouteAndExtract(context.Background(), Upload{Filename: "flyer.png", Data: tinyPNG(t)})
	if res.Success || !errors.Is(res.Err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %+v", res)
	}
	if !strings.Contains(res.Reason(), "engine crashed") {
		t.Fatalf("reason should carry panic value, got %q", res.Reason())
	}
}

func TestExtract_MissingCapabilitiesAreDecodeErrors(t *testing.T) {
	ex := New(nil, nil)
	if res := ex.RouteAndExtract(context.Background(), Upload{Filename: "flyer.png", Data: tinyPNG(t)}); !errors.Is(res.Err, ErrDecode) {
		t.Fatalf("image without OCR: %+v", res)
	}
	if res := ex.RouteAndExtract(context.Background(), Upload{Filename: "call.mp3", Data: []byte("ID3")}); !errors.Is(res.Err, ErrDecode) {
		t.Fatalf("audio without transcriber: %+v", res)
	}
}

func TestExtract_MediaIsTranscribed(t *testing.T) {
	tr := &fakeTranscriber{}
	res := New(nil, tr).RouteAndExtract(context.Background(), Upload{Filename: "kickoff.mp4", Data: []byte("....ftypisom")})
	if !res.Success || res.Text != "welcome to the launch call" {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Format != format.Video || tr.gotName != "kickoff.mp4" {
		t.Fatalf("format=%s name=%q", res.Format, tr.gotName)
	}
}

func TestResult_JSON(t *testing.T) {
	res := New(nil, nil).RouteAndExtract(context.Background(), Upload{Filename: "x.pdf"})
	b, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got := string(b)
	want := `{"success":false,"error":"No text content found in PDF","format":"pdf","filename":"x.pdf"}`
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}
