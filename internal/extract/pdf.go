package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/gobrief/internal/format"
)

// extractPDF reads the text layer page by page. Each page with text is
// prefixed with a "--- Page N ---" marker; pages that fail are skipped.
func extractPDF(ctx context.Context, _ *Extractor, up Upload) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(up.Data), int64(len(up.Data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := pageText(r, i)
		if err != nil {
			log.Warn().Err(err).Int("page", i).Str("file", up.Filename).Msg("could not extract text from page")
			continue
		}
		if text == "" {
			continue
		}
		pages = append(pages, fmt.Sprintf("--- Page %d ---", i), text)
	}
	if len(pages) == 0 {
		return "", emptyError(format.PDF)
	}
	return strings.Join(pages, "\n\n"), nil
}

// pageText isolates panics raised by the decoder on a single broken page.
func pageText(r *pdf.Reader, n int) (text string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("page %d: %v", n, p)
		}
	}()
	page := r.Page(n)
	if page.V.IsNull() {
		return "", nil
	}
	text, err = page.GetPlainText(nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
