package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/hyperifyio/gobrief/internal/brief"
	"github.com/hyperifyio/gobrief/internal/extract"
	"github.com/hyperifyio/gobrief/internal/llm"
)

type requestError struct{ msg string }

func (e *requestError) Error() string { return e.msg }

func badRequest(msg string) error { return &requestError{msg: msg} }

// statusFor maps pipeline errors onto HTTP status codes.
func statusFor(err error) int {
	var re *requestError
	switch {
	case errors.Is(err, ErrSizeLimitExceeded):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &re), extract.Kind(err) != nil, errors.Is(err, brief.ErrNoInput):
		return http.StatusBadRequest
	case errors.Is(err, llm.ErrService):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage is the reason shown to clients. Extraction failures carry
// their user-facing reason; internal failures are not echoed.
func publicMessage(err error, status int) string {
	var re *requestError
	switch {
	case errors.As(err, &re):
		return re.msg
	case status == http.StatusRequestEntityTooLarge:
		return ErrSizeLimitExceeded.Error()
	case status == http.StatusBadGateway:
		return "language model service unavailable"
	case status == http.StatusInternalServerError:
		return "internal error"
	}
	if k := extract.Kind(err); k != nil {
		for e := err; e != nil; e = errors.Unwrap(e) {
			if errors.Unwrap(e) == k {
				return e.Error()
			}
		}
	}
	return err.Error()
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	ev := hlog.FromRequest(r).Warn()
	if status >= 500 {
		ev = hlog.FromRequest(r).Error()
	}
	ev.Err(err).Int("status", status).Msg("request failed")
	writeJSON(w, r, status, map[string]string{"error": publicMessage(err, status)})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("encode response failed")
	}
}
