package layout

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"
)

// Serialize writes doc as a PDF. Every placed line is drawn at its own
// coordinates with its own font; no reflow happens here.
func Serialize(doc *Document, w io.Writer) error {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: doc.Width, Ht: doc.Height},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	// Core fonts are cp1252; translate UTF-8 content before drawing.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pages := doc.Pages
	if len(pages) == 0 {
		pages = []Page{{}}
	}
	for _, page := range pages {
		pdf.AddPage()
		for _, line := range page.Lines {
			pdf.SetFont(line.Font.Family, line.Font.Style, line.Font.Size)
			// gofpdf positions text by baseline.
			pdf.Text(line.X, line.Y+line.Font.Size, tr(line.Content))
		}
	}
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return pdf.Output(w)
}

// Render lays out text and writes it as a PDF to outputName, creating the
// parent directory when needed. It returns the written path. Concurrent
// callers must use distinct output names.
func (e *Engine) Render(text, outputName string) (string, error) {
	doc := e.Layout(text)
	if dir := filepath.Dir(outputName); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(outputName)
	if err != nil {
		return "", fmt.Errorf("create output: %w", err)
	}
	if err := Serialize(doc, f); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close output: %w", err)
	}
	return outputName, nil
}
