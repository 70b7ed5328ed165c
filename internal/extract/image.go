package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/hyperifyio/gobrief/internal/format"
)

// OCR recognizes text in a PNG-encoded RGBA image.
type OCR interface {
	Recognize(ctx context.Context, png []byte) (string, error)
}

var errNoOCR = errors.New("no OCR engine configured")

func extractImage(ctx context.Context, e *Extractor, up Upload) (string, error) {
	if e.OCR == nil {
		return "", errNoOCR
	}
	normalized, err := normalizeImage(up.Data)
	if err != nil {
		return "", err
	}
	text, err := e.OCR.Recognize(ctx, normalized)
	if err != nil {
		return "", fmt.Errorf("ocr: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", emptyError(format.Image)
	}
	return text, nil
}

// normalizeImage decodes any registered image format, converts it to the
// RGBA color model and re-encodes it as PNG for the OCR engine.
func normalizeImage(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	var rgba *image.RGBA
	if m, ok := src.(*image.RGBA); ok {
		rgba = m
	} else {
		bounds := src.Bounds()
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), src, bounds.Min, draw.Src)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, rgba); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
