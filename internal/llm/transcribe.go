package llm

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	openai "github.com/sashabaranov/go-openai"
)

// WhisperTranscriber transcribes audio and video uploads through an
// OpenAI-compatible /audio/transcriptions endpoint.
type WhisperTranscriber struct {
	Client AudioClient
	// Model defaults to whisper-1.
	Model string
}

func (w *WhisperTranscriber) Transcribe(ctx context.Context, filename string, data []byte) (string, error) {
	if w == nil || w.Client == nil {
		return "", fmt.Errorf("%w: transcriber not configured", ErrService)
	}
	model := w.Model
	if model == "" {
		model = openai.Whisper1
	}
	resp, err := w.Client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    model,
		FilePath: filepath.Base(filename),
		Reader:   bytes.NewReader(data),
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrService, err)
	}
	return resp.Text, nil
}
