package main

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

const stubBrief = `Creative Brief: Stub Campaign

Objective:
Raise awareness of the product described in the input.

Audience:
- Existing customers
- Prospects comparing alternatives

Messaging:
Simple, friendly and concrete.

Content Suggestions:
- Launch blog post
- Short explainer video

KPIs:
- Sign-ups per week
- Newsletter open rate`

const stubMeetings = `{
  "project_analysis": {"urgency": "medium", "complexity": "low", "key_requirements": ["brand_work"]},
  "meetings": [
    {"type": "kickoff", "priority": "high", "attendee_indices": [0, 1, 2], "title": "Campaign Kickoff",
     "agenda_bullets": ["Review the brief", "Agree on owners", "Set the timeline"], "duration_minutes": 45, "timing": "asap"},
    {"type": "creative_review", "priority": "medium", "attendee_indices": [2, 5], "title": "Creative Review",
     "agenda_bullets": ["Walk through concepts", "Pick a direction"], "duration_minutes": 60, "timing": "1_week"}
  ]
}`

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	model := os.Getenv("MODEL_ID")
	if strings.TrimSpace(model) == "" {
		model = "test-model"
	}
	addr := os.Getenv("ADDR")
	if strings.TrimSpace(addr) == "" {
		addr = ":8081"
	}

	log.Info().Str("addr", addr).Str("model", model).Msg("openai-stub listening")
	if err := http.ListenAndServe(addr, newMux(model)); err != nil {
		log.Fatal().Err(err).Msg("serve")
	}
}

func newMux(model string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"object": "list",
			"data":   []map[string]any{{"id": model, "object": "model"}},
		})
	})
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		sys, user := "", ""
		for _, m := range req.Messages {
			switch m.Role {
			case "system":
				sys = m.Content
			case "user":
				user = m.Content
			}
		}
		var content string
		switch {
		case strings.Contains(user, "AVAILABLE TEAM"):
			content = "```json\n" + stubMeetings + "\n```"
		case strings.Contains(sys, "creative brief writer") || strings.Contains(user, "creative brief"):
			content = stubBrief
		default:
			http.Error(w, "unexpected prompt", http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]any{
			"id":     "chatcmpl-stub",
			"object": "chat.completion",
			"model":  req.Model,
			"choices": []map[string]any{
				{"index": 0, "finish_reason": "stop", "message": map[string]string{"role": "assistant", "content": content}},
			},
		})
	})
	mux.HandleFunc("/v1/audio/transcriptions", func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "missing file", http.StatusBadRequest)
			return
		}
		defer f.Close()
		n, _ := io.Copy(io.Discard, f)
		if n == 0 {
			writeJSON(w, map[string]any{"text": ""})
			return
		}
		writeJSON(w, map[string]any{"text": "Transcript of " + hdr.Filename + ": we want to launch the campaign next month."})
	})
	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
