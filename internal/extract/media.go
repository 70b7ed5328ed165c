package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Transcriber converts recorded speech to plain text. The filename is
// passed through because speech services infer the container from it.
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, data []byte) (string, error)
}

var errNoTranscriber = errors.New("no transcription service configured")

func extractMedia(ctx context.Context, e *Extractor, up Upload) (string, error) {
	if e.Transcriber == nil {
		return "", errNoTranscriber
	}
	text, err := e.Transcriber.Transcribe(ctx, up.Filename, up.Data)
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	return strings.TrimSpace(text), nil
}
