package server

import (
	"net/http"
	"os"

	"github.com/rs/zerolog/hlog"

	"github.com/hyperifyio/gobrief/internal/app"
	"github.com/hyperifyio/gobrief/internal/brief"
	"github.com/hyperifyio/gobrief/internal/meeting"
)

type briefResponse struct {
	Brief    string          `json:"brief"`
	Sections []brief.Section `json:"sections"`
	Format   string          `json:"format"`
	Filename string          `json:"filename"`
	PDFPath  string          `json:"pdf_path"`
}

type meetingsResponse struct {
	Brief       string               `json:"brief"`
	Analysis    meeting.Analysis     `json:"analysis"`
	Meetings    []meeting.Meeting    `json:"meetings"`
	ActionItems []meeting.ActionItem `json:"action_items"`
	Fallback    bool                 `json:"fallback"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok", "version": app.BuildVersion})
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res := s.Pipeline.RouteAndExtract(r.Context(), up)
	status := http.StatusOK
	if !res.Success {
		status = http.StatusBadRequest
	}
	writeJSON(w, r, status, res)
}

func (s *Server) handleBrief(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := s.Pipeline.Brief(r.Context(), up)
	if err != nil {
		writeError(w, r, err)
		return
	}
	path, err := s.Pipeline.Render(out.BriefText, s.outputPath("brief"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, briefResponse{
		Brief:    out.BriefText,
		Sections: out.Brief.Sections,
		Format:   out.Extraction.Format.String(),
		Filename: up.Filename,
		PDFPath:  path,
	})
}

func (s *Server) handleBriefPDF(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := s.Pipeline.Brief(r.Context(), up)
	if err != nil {
		writeError(w, r, err)
		return
	}
	path, err := s.Pipeline.Render(out.BriefText, s.outputPath("brief"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := serveFile(w, path, attachmentName(up.Filename)); err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("path", path).Msg("send pdf failed")
	}
	// The streamed copy is the only one handed out.
	if err := os.Remove(path); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Str("path", path).Msg("remove pdf failed")
	}
}

func (s *Server) handleMeetings(w http.ResponseWriter, r *http.Request) {
	up, err := s.readUpload(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := s.Pipeline.Brief(r.Context(), up)
	if err != nil {
		writeError(w, r, err)
		return
	}
	plan, err := s.Pipeline.Meetings(r.Context(), out.BriefText)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, meetingsResponse{
		Brief:       out.BriefText,
		Analysis:    plan.Analysis,
		Meetings:    plan.Meetings,
		ActionItems: meeting.ActionItems(plan),
		Fallback:    plan.Fallback,
	})
}
