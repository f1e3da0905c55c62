package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"smrz/internal/database"
	"smrz/internal/domain"
	"smrz/internal/service"
	"smrz/internal/source"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

const readHeaderTimeout = 10 * time.Second

var errMissingScheme = errors.New("url must start with http:// or https://")

type Pipeline interface {
	Summarize(ctx context.Context, rawURL string) (*service.Result, error)
	Markdown(ctx context.Context, rawURL string) (*service.Result, error)
	Metadata(ctx context.Context, rawURL string) (domain.Metadata, error)
}

type UsageReader interface {
	UsageTotals(ctx context.Context) ([]database.ModelUsage, error)
}

type errorResponse struct {
	Error string `json:"error"`
}

type Server struct {
	http     *http.Server
	pipeline Pipeline
	usage    UsageReader
	log      *slog.Logger
}

func New(addr string, pipeline Pipeline, usage UsageReader, log *slog.Logger) *Server {
	s := &Server{
		pipeline: pipeline,
		usage:    usage,
		log:      log,
	}

	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return s
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/summarize", s.handleSummarize)
	r.Get("/markdown", s.handleMarkdown)
	r.Get("/metadata", s.handleMetadata)
	r.Get("/usage", s.handleUsage)

	return r
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	rawURL, ok := s.requestURL(w, r)
	if !ok {
		return
	}

	result, err := s.pipeline.Summarize(r.Context(), rawURL)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleMarkdown(w http.ResponseWriter, r *http.Request) {
	rawURL, ok := s.requestURL(w, r)
	if !ok {
		return
	}

	result, err := s.pipeline.Markdown(r.Context(), rawURL)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	rawURL, ok := s.requestURL(w, r)
	if !ok {
		return
	}

	meta, err := s.pipeline.Metadata(r.Context(), rawURL)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, meta)
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	totals, err := s.usage.UsageTotals(r.Context())
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}

	if totals == nil {
		totals = []database.ModelUsage{}
	}

	writeJSON(w, http.StatusOK, totals)
}

func (s *Server) requestURL(w http.ResponseWriter, r *http.Request) (string, bool) {
	rawURL := strings.TrimSpace(r.URL.Query().Get("url"))
	if !source.HasHTTPScheme(rawURL) {
		s.writeError(w, r, http.StatusBadRequest, errMissingScheme)
		return "", false
	}

	return rawURL, true
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	s.log.ErrorContext(r.Context(), "Failed to handle request",
		"error", err,
		"path", r.URL.Path,
		"status", status,
		"requestID", chimiddleware.GetReqID(r.Context()))

	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(data)
}
