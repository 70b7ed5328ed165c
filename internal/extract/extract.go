package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/gobrief/internal/format"
)

// Error kinds carried by a failed Result. Callers classify with errors.Is.
var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrDecode            = errors.New("decode error")
	ErrEmptyContent      = errors.New("no content extracted")
)

// Upload is one buffered file as received from the caller.
type Upload struct {
	Filename string
	Data     []byte
}

// Result is the outcome of routing and extracting one upload. Success is
// true iff Text is non-empty; on failure Text is empty and Err is set.
type Result struct {
	Success  bool
	Text     string
	Err      error
	Format   format.Format
	Filename string
}

// Reason returns the human-readable failure message, or "" on success.
func (r Result) Reason() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

func (r Result) MarshalJSON() ([]byte, error) {
	out := struct {
		Success  bool   `json:"success"`
		Text     string `json:"text,omitempty"`
		Error    string `json:"error,omitempty"`
		Format   string `json:"format"`
		Filename string `json:"filename"`
	}{r.Success, r.Text, r.Reason(), r.Format.String(), r.Filename}
	return json.Marshal(out)
}

// emptyMessages are the per-format messages used when a decoder ran but
// produced nothing usable.
var emptyMessages = map[format.Format]string{
	format.PDF:   "No text content found in PDF",
	format.Image: "No text found in image",
	format.Text:  "No text content found in file",
	format.CSV:   "No rows found in CSV",
	format.Excel: "No sheets found in Excel file",
	format.Video: "No speech found in video",
	format.Audio: "No speech found in audio",
}

var labels = map[format.Format]string{
	format.PDF:   "PDF",
	format.Image: "image",
	format.Text:  "text file",
	format.CSV:   "CSV",
	format.Excel: "Excel",
	format.Video: "video",
	format.Audio: "audio",
}

type extractFunc func(ctx context.Context, e *Extractor, up Upload) (string, error)

var extractors = map[format.Format]extractFunc{
	format.PDF:   extractPDF,
	format.Image: extractImage,
	format.Text:  extractText,
	format.CSV:   extractCSV,
	format.Excel: extractExcel,
	format.Video: extractMedia,
	format.Audio: extractMedia,
}

// Extractor turns uploads into canonical text. OCR and Transcriber are
// optional; formats that need a missing capability fail with ErrDecode.
type Extractor struct {
	OCR         OCR
	Transcriber Transcriber
	// CSVSampleRows and ExcelSampleRows bound the rendered sample tables.
	CSVSampleRows   int
	ExcelSampleRows int
}

// New returns an Extractor with default sample sizes.
func New(ocr OCR, tr Transcriber) *Extractor {
	return &Extractor{OCR: ocr, Transcriber: tr, CSVSampleRows: 10, ExcelSampleRows: 5}
}

// RouteAndExtract detects the upload's format and extracts normalized text.
func (e *Extractor) RouteAndExtract(ctx context.Context, up Upload) Result {
	return e.Extract(ctx, up, format.Route(up.Filename, up.Data))
}

// Extract runs the extractor bound to f. Decoder errors and panics are
// captured in the returned Result and never propagated.
func (e *Extractor) Extract(ctx context.Context, up Upload, f format.Format) (res Result) {
	res = Result{Format: f, Filename: up.Filename}
	fn, ok := extractors[f]
	if !ok {
		res.Err = failure(ErrUnsupportedFormat, "Unsupported file format")
		return res
	}
	if len(up.Data) == 0 {
		res.Err = emptyError(f)
		return res
	}
	defer func() {
		if p := recover(); p != nil {
			log.Error().Str("file", up.Filename).Str("format", f.String()).Interface("panic", p).Msg("extractor panicked")
			res = Result{Format: f, Filename: up.Filename, Err: failure(ErrDecode, "Error processing %s: %v", labels[f], p)}
		}
	}()
	raw, err := fn(ctx, e, up)
	if err != nil {
		if errors.Is(err, ErrEmptyContent) {
			res.Err = err
			return res
		}
		log.Error().Err(err).Str("file", up.Filename).Str("format", f.String()).Msg("extraction failed")
		res.Err = failure(ErrDecode, "Error processing %s: %v", labels[f], err)
		return res
	}
	text := Normalize(raw)
	if text == "" {
		res.Err = emptyError(f)
		return res
	}
	res.Success = true
	res.Text = text
	return res
}

func emptyError(f format.Format) error {
	msg, ok := emptyMessages[f]
	if !ok {
		msg = "No content found"
	}
	return failure(ErrEmptyContent, "%s", msg)
}

// kindError carries a user-facing message while still matching its kind
// under errors.Is.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func failure(kind error, msgf string, args ...any) error {
	return &kindError{kind: kind, msg: fmt.Sprintf(msgf, args...)}
}

// Kind returns the sentinel error kind of err, or nil.
func Kind(err error) error {
	for _, k := range []error{ErrUnsupportedFormat, ErrDecode, ErrEmptyContent} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
