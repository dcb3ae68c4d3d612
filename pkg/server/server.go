// Package server serves the artifacts of one pipeline run over HTTP.
//
// Artifacts are rendered once before the server starts; handlers only
// write immutable byte slices, so a Server is safe for concurrent use.
//
//	srv := server.New(result, logger)
//	err := srv.ListenAndServe(ctx, ":8080")
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/celltower/pkg/pipeline"
)

// Routes maps URL paths to artifact formats.
var Routes = map[string]string{
	"/":                   pipeline.FormatHTML,
	"/celltowers.json":    pipeline.FormatJSON,
	"/celltowers.geojson": pipeline.FormatGeoJSON,
	"/chart":              pipeline.FormatChart,
	"/plot.png":           pipeline.FormatPNG,
	"/plot.svg":           pipeline.FormatSVG,
	"/groups.svg":         pipeline.FormatGroups,
}

// ShutdownTimeout bounds graceful shutdown.
const ShutdownTimeout = 5 * time.Second

// Server holds the rendered artifacts of one run.
type Server struct {
	result *pipeline.Result
	logger *log.Logger
	router chi.Router
}

// New builds the router for result.
func New(result *pipeline.Result, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{result: result, logger: logger}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	for path, format := range Routes {
		r.Get(path, s.artifact(format))
	}
	r.Get("/healthz", s.health)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

func (s *Server) artifact(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, ok := s.result.Artifacts[format]
		if !ok {
			writeJSONError(w, http.StatusNotFound, format+" was not rendered")
			return
		}
		w.Header().Set("Content-Type", pipeline.ContentType(format))
		if s.result.DatasetHash != "" {
			w.Header().Set("ETag", `"`+s.result.DatasetHash+`"`)
		}
		w.Write(data)
	}
}

type healthResponse struct {
	Status  string   `json:"status"`
	RunID   string   `json:"run_id"`
	Sites   int      `json:"sites"`
	Anchors int      `json:"anchors"`
	Shifted int      `json:"shifted"`
	Formats []string `json:"formats"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:  "ok",
		RunID:   s.result.RunID,
		Sites:   s.result.Dataset.Len(),
		Anchors: s.result.Declutter.Anchors,
		Shifted: s.result.Declutter.Shifted(),
	}
	for _, f := range pipeline.AllFormats {
		if _, ok := s.result.Artifacts[f]; ok {
			resp.Formats = append(resp.Formats, f)
		}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// logRequests logs method, path, status and duration.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"id", middleware.GetReqID(r.Context()))
	})
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- hs.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
