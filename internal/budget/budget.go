// Package budget estimates prompt sizes and trims document text so a brief
// prompt fits the model's context window.
package budget

import (
	"math"
	"strings"
)

// EstimateTokens returns a conservative token estimate for s, about four
// bytes per token. Non-empty input is at least one token.
func EstimateTokens(s string) int {
	if len(s) == 0 {
		return 0
	}
	return int(math.Ceil(float64(len(s)) / 4.0))
}

var knownModelMax = map[string]int{
	"gpt-4o":        128_000,
	"gpt-4o-mini":   128_000,
	"gpt-4-turbo":   128_000,
	"gpt-4":         8_192,
	"gpt-3.5-turbo": 16_384,
	"llama-3":       8_192,
	"llama-3.1":     128_000,
}

var suffixMax = []struct {
	suffix string
	tokens int
}{
	{"1m", 1_000_000},
	{"200k", 200_000},
	{"128k", 128_000},
	{"32k", 32_768},
	{"16k", 16_384},
}

// ModelContextTokens returns the estimated context window of a model.
// Unknown models get 8192.
func ModelContextTokens(model string) int {
	name := strings.ToLower(strings.TrimSpace(model))
	if v, ok := knownModelMax[name]; ok {
		return v
	}
	for _, s := range suffixMax {
		if strings.HasSuffix(name, s.suffix) {
			return s.tokens
		}
	}
	if strings.Contains(name, "-mini") {
		return 128_000
	}
	return 8192
}

// headroom covers tokenizer drift and message framing: 5% of the window,
// at least 512 tokens.
func headroom(window int) int {
	return max(int(math.Ceil(float64(window)*0.05)), 512)
}

// Available returns how many tokens of document text fit next to a prompt
// of promptTokens while reserving reservedForOutput. Never negative.
func Available(model string, reservedForOutput, promptTokens int) int {
	window := ModelContextTokens(model)
	return max(window-headroom(window)-max(reservedForOutput, 0)-promptTokens, 0)
}

// Fit trims text to at most maxTokens estimated tokens, cutting at a line
// boundary when one exists. It reports whether anything was dropped.
func Fit(text string, maxTokens int) (string, bool) {
	if EstimateTokens(text) <= maxTokens {
		return text, false
	}
	if maxTokens <= 0 {
		return "", true
	}
	limit := maxTokens * 4
	if limit > len(text) {
		limit = len(text)
	}
	cut := text[:limit]
	if i := strings.LastIndexByte(cut, '\n'); i > 0 {
		cut = cut[:i]
	}
	// Avoid splitting a multi-byte rune.
	return strings.ToValidUTF8(cut, ""), true
}
