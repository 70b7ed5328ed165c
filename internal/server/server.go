// Package server exposes the brief pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/gobrief/internal/app"
	"github.com/hyperifyio/gobrief/internal/extract"
	"github.com/hyperifyio/gobrief/internal/meeting"
)

// ErrSizeLimitExceeded is returned when a request body is larger than the
// configured maximum upload size.
var ErrSizeLimitExceeded = errors.New("upload exceeds size limit")

// Pipeline is the subset of app.App the handlers use.
type Pipeline interface {
	RouteAndExtract(ctx context.Context, up extract.Upload) extract.Result
	Brief(ctx context.Context, up extract.Upload) (app.Outcome, error)
	Render(text, outputPath string) (string, error)
	Meetings(ctx context.Context, briefText string) (meeting.Plan, error)
}

// Server routes uploads to the pipeline.
type Server struct {
	Pipeline Pipeline
	// OutputDir receives rendered PDFs, one uniquely named file per request.
	OutputDir string
	// MaxUploadBytes bounds the request body. Zero means app.DefaultMaxUploadBytes.
	MaxUploadBytes int64
	Logger         zerolog.Logger
}

// New returns a Server with the global logger.
func New(p Pipeline, outputDir string, maxUploadBytes int64) *Server {
	return &Server{Pipeline: p, OutputDir: outputDir, MaxUploadBytes: maxUploadBytes, Logger: log.Logger}
}

func (s *Server) maxBytes() int64 {
	if s.MaxUploadBytes > 0 {
		return s.MaxUploadBytes
	}
	return app.DefaultMaxUploadBytes
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(hlog.NewHandler(s.Logger))
	r.Use(requestIDLogger)
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", d).
			Msg("request")
	}))
	r.Use(middleware.Recoverer)
	r.Use(s.limitBody)

	r.Get("/healthz", s.handleHealth)
	r.Post("/extract", s.handleExtract)
	r.Route("/brief", func(r chi.Router) {
		r.Post("/", s.handleBrief)
		r.Post("/pdf", s.handleBriefPDF)
	})
	r.Post("/meetings", s.handleMeetings)
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.Logger.Info().Str("addr", addr).Msg("listening")
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func requestIDLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			l := zerolog.Ctx(r.Context())
			l.UpdateContext(func(c zerolog.Context) zerolog.Context { return c.Str("req_id", id) })
		}
		next.ServeHTTP(w, r)
	})
}

// limitBody rejects bodies with a declared length over the limit and caps
// the rest with http.MaxBytesReader.
func (s *Server) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > s.maxBytes() {
			writeError(w, r, ErrSizeLimitExceeded)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, s.maxBytes())
		next.ServeHTTP(w, r)
	})
}

// readUpload buffers the multipart "file" field.
func (s *Server) readUpload(r *http.Request) (extract.Upload, error) {
	if err := r.ParseMultipartForm(s.maxBytes()); err != nil {
		return extract.Upload{}, uploadError(err)
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		return extract.Upload{}, badRequest("missing multipart field \"file\"")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return extract.Upload{}, uploadError(err)
	}
	return extract.Upload{Filename: filepath.Base(hdr.Filename), Data: data}, nil
}

func uploadError(err error) error {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return fmt.Errorf("%w (%d bytes)", ErrSizeLimitExceeded, mbe.Limit)
	}
	return badRequest("invalid multipart upload: " + err.Error())
}

// outputPath returns a fresh PDF path under OutputDir so concurrent requests
// never share a file.
func (s *Server) outputPath(prefix string) string {
	dir := s.OutputDir
	if dir == "" {
		dir = app.DefaultOutputDir
	}
	return filepath.Join(dir, prefix+"-"+uuid.NewString()+".pdf")
}

func attachmentName(filename string) string {
	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if stem == "" || stem == "." {
		stem = "upload"
	}
	return stem + "-brief.pdf"
}

func serveFile(w http.ResponseWriter, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, err = io.Copy(w, f)
	return err
}
