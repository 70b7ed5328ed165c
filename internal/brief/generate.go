package brief

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/gobrief/internal/budget"
	"github.com/hyperifyio/gobrief/internal/llm"
)

// ErrNoInput is returned when there is no canonical text to brief.
var ErrNoInput = errors.New("no content to brief")

// DefaultSystemPrompt frames the model as a creative brief writer.
const DefaultSystemPrompt = "You are a creative brief writer for a marketing team. " +
	"Write plain text, no Markdown. Put the brief title on the first line. " +
	"Start every section with a short header line ending in a colon."

// Sections lists the sections every brief must include, in order.
var Sections = []string{"Objective", "Audience", "Messaging", "Content Suggestions", "KPIs"}

// Generator turns canonical document text into a creative brief.
type Generator struct {
	Oracle llm.Oracle
	// SystemPrompt overrides DefaultSystemPrompt when non-empty.
	SystemPrompt string
	Options      llm.Options
	// Model sizes the context budget; long documents are trimmed to fit.
	Model string
}

// Generate asks the oracle for a brief. Oracle failures wrap llm.ErrService.
func (g *Generator) Generate(ctx context.Context, canonical string) (string, error) {
	if strings.TrimSpace(canonical) == "" {
		return "", ErrNoInput
	}
	if g == nil || g.Oracle == nil {
		return "", fmt.Errorf("%w: brief generator not configured", llm.ErrService)
	}
	system := DefaultSystemPrompt
	if strings.TrimSpace(g.SystemPrompt) != "" {
		system = g.SystemPrompt
	}
	opts := g.Options
	if opts.Temperature == 0 && opts.MaxTokens == 0 {
		opts = llm.Options{Temperature: 0.7, MaxTokens: 1500}
	}
	promptTokens := budget.EstimateTokens(system) + budget.EstimateTokens(buildUserMessage(""))
	if avail := budget.Available(g.Model, opts.MaxTokens, promptTokens); avail > 0 {
		if trimmed, cut := budget.Fit(canonical, avail); cut {
			log.Warn().Int("chars", len(canonical)).Int("kept", len(trimmed)).Msg("document trimmed to fit model context")
			canonical = trimmed
		}
	}
	out, err := g.Oracle.Complete(ctx, system, buildUserMessage(canonical), opts)
	if err != nil {
		return "", fmt.Errorf("generate brief: %w", err)
	}
	return out, nil
}

func buildUserMessage(canonical string) string {
	var sb strings.Builder
	sb.WriteString("Based on the following input, return a structured creative brief.\n\n===\n")
	sb.WriteString(canonical)
	sb.WriteString("\n===\n\nInclude: ")
	sb.WriteString(strings.Join(Sections, ", "))
	return sb.String()
}
