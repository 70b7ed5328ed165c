package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/gobrief/internal/cache"
)

// ErrService is the single error kind returned by an Oracle. Timeouts,
// transport failures, non-2xx responses and empty answers all wrap it.
var ErrService = errors.New("llm service error")

// Options tunes one completion request.
type Options struct {
	Temperature float32
	MaxTokens   int
}

// Oracle answers a single system+user prompt. Implementations must not
// retry; callers decide about retries.
type Oracle interface {
	Complete(ctx context.Context, system, user string, opts Options) (string, error)
}

// OracleFunc adapts a plain function to Oracle.
type OracleFunc func(ctx context.Context, system, user string, opts Options) (string, error)

func (f OracleFunc) Complete(ctx context.Context, system, user string, opts Options) (string, error) {
	return f(ctx, system, user, opts)
}

// ChatOracle implements Oracle on top of a chat completion Client.
type ChatOracle struct {
	Client Client
	Model  string
	// Cache, when set, serves repeated prompts from disk.
	Cache *cache.LLMCache
}

type cachedCompletion struct {
	Content string `json:"content"`
}

func (o *ChatOracle) Complete(ctx context.Context, system, user string, opts Options) (string, error) {
	if o == nil || o.Client == nil || strings.TrimSpace(o.Model) == "" {
		return "", fmt.Errorf("%w: oracle not configured", ErrService)
	}
	key := cache.KeyFrom(o.Model, fmt.Sprintf("%s\n\n%s\n\n%.2f/%d", system, user, opts.Temperature, opts.MaxTokens))
	if o.Cache != nil {
		if raw, ok, _ := o.Cache.Get(ctx, key); ok {
			var c cachedCompletion
			if err := json.Unmarshal(raw, &c); err == nil && strings.TrimSpace(c.Content) != "" {
				log.Debug().Str("model", o.Model).Msg("llm cache hit")
				return c.Content, nil
			}
		}
	}

	req := openai.ChatCompletionRequest{
		Model: o.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
		N:           1,
	}
	resp, err := o.Client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrService, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", ErrService)
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", fmt.Errorf("%w: empty completion", ErrService)
	}
	if o.Cache != nil {
		payload, _ := json.Marshal(cachedCompletion{Content: out})
		if err := o.Cache.Save(ctx, key, payload); err != nil {
			log.Warn().Err(err).Msg("llm cache save failed")
		}
	}
	return out, nil
}
