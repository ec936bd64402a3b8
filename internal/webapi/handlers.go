package webapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/BuseDenizH/EssayEval-NLP/internal/models"
	"github.com/BuseDenizH/EssayEval-NLP/internal/orchestration"
	"github.com/BuseDenizH/EssayEval-NLP/internal/projection"
	"github.com/BuseDenizH/EssayEval-NLP/internal/reporting"
	"github.com/BuseDenizH/EssayEval-NLP/internal/tokens"
)

// Version is set at build time or defaults to dev.
var Version = "0.1.0-dev"

const (
	maxEssayBodyBytes    = 1 << 20
	maxSnapshotBodyBytes = 20 << 20
)

// Options configures the handlers.
type Options struct {
	// Delimiter is used by the csv export; empty means ",".
	Delimiter string
	// Now stamps exports; nil means time.Now.
	Now    func() time.Time
	Logger *slog.Logger
}

// Handlers holds the HTTP handler methods for the web API.
type Handlers struct {
	bench  Benchmarker
	opts   Options
	logger *slog.Logger
}

// NewHandlers creates a new Handlers serving bench.
func NewHandlers(bench Benchmarker, opts Options) *Handlers {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Handlers{bench: bench, opts: opts, logger: opts.Logger}
}

// HandleHealth returns a simple health check response.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: Version,
	})
}

// HandleModels returns the model reference catalog.
func (h *Handlers) HandleModels(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, models.Catalog())
}

// HandleBenchmark scores the posted essay and returns the new session.
func (h *Handlers) HandleBenchmark(w http.ResponseWriter, r *http.Request) {
	var req BenchmarkRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEssayBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	// An empty selection leaves the choice to the orchestrator's defaults.
	var ids []models.ModelID
	if len(req.Models) > 0 {
		resolved, err := orchestration.ResolveModels(req.Models, models.KnownModels)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		ids = resolved
	}

	session, err := h.bench.Run(r.Context(), orchestration.RunRequest{
		Topic:        req.Topic,
		DocumentText: req.Essay,
		Models:       ids,
	})
	if err != nil {
		h.writeRunError(w, session, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(session))
}

func (h *Handlers) writeRunError(w http.ResponseWriter, session *models.BenchmarkSession, err error) {
	var ve *models.ValidationError
	var te *models.TransportError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrRunInProgress):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, context.Canceled):
		writeError(w, http.StatusConflict, "benchmark run canceled")
	case errors.As(err, &te):
		msg := err.Error()
		if session != nil && session.Error != "" {
			msg = session.Error
		}
		writeError(w, http.StatusBadGateway, msg)
	default:
		h.logger.Error("benchmark run failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// HandleCancel aborts the run in flight, if any.
func (h *Handlers) HandleCancel(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, CancelResponse{Canceled: h.bench.Cancel()})
}

// HandleSession returns the current session with its projections.
func (h *Handlers) HandleSession(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, sessionResponse(h.bench.Snapshot()))
}

// HandleReset clears the session.
func (h *Handlers) HandleReset(w http.ResponseWriter, _ *http.Request) {
	if err := h.bench.Reset(); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleExport generates one artifact of the current session. A pdf export
// takes the results snapshot image as the request body.
func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	format := r.PathValue("format")
	exporters, err := reporting.ByFormat([]string{format}, h.opts.Delimiter)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	var snapshot []byte
	if r.Method == http.MethodPost && r.Body != nil {
		snapshot, err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxSnapshotBodyBytes))
		if err != nil {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("reading snapshot: %v", err))
			return
		}
	}

	in, err := reporting.NewInput(h.bench.Snapshot(), h.opts.Now(), snapshot)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	artifact, err := exporters[0].Export(in)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	h.logger.Debug("export generated", "format", format, "filename", artifact.Filename, "bytes", len(artifact.Data))

	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	w.WriteHeader(http.StatusOK)
	w.Write(artifact.Data) //nolint:errcheck
}

// HandleReportMarkdown returns the markdown summary of the session.
func (h *Handlers) HandleReportMarkdown(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	io.WriteString(w, reporting.FormatMarkdown(h.bench.Snapshot())) //nolint:errcheck
}

// HandleReportHTML returns the summary rendered as an HTML page.
func (h *Handlers) HandleReportHTML(w http.ResponseWriter, _ *http.Request) {
	page, err := reporting.RenderHTML(reporting.FormatMarkdown(h.bench.Snapshot()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page) //nolint:errcheck
}

func sessionResponse(s *models.BenchmarkSession) SessionResponse {
	resp := SessionResponse{Session: s}
	if s != nil {
		resp.Truncated = tokens.CheckWindows(s.DocumentText, s.Models)
	}
	if s.HasResults() {
		views := projection.All(s.Results)
		resp.Views = &views
	}
	return resp
}

// RegisterRoutes registers all web API routes on the given mux. limit wraps
// the benchmark endpoint; nil means no rate limiting.
func RegisterRoutes(mux *http.ServeMux, bench Benchmarker, opts Options, limit func(http.Handler) http.Handler) {
	h := NewHandlers(bench, opts)
	if limit == nil {
		limit = func(next http.Handler) http.Handler { return next }
	}
	mux.HandleFunc("GET /api/health", h.HandleHealth)
	mux.HandleFunc("GET /api/models", h.HandleModels)
	mux.Handle("POST /api/benchmark", limit(http.HandlerFunc(h.HandleBenchmark)))
	mux.HandleFunc("POST /api/benchmark/cancel", h.HandleCancel)
	mux.HandleFunc("GET /api/session", h.HandleSession)
	mux.HandleFunc("DELETE /api/session", h.HandleReset)
	mux.HandleFunc("GET /api/export/{format}", h.HandleExport)
	mux.HandleFunc("POST /api/export/{format}", h.HandleExport)
	mux.HandleFunc("GET /api/report.md", h.HandleReportMarkdown)
	mux.HandleFunc("GET /api/report.html", h.HandleReportHTML)
}

// CORSMiddleware wraps a handler with CORS headers.
// If allowedOrigins is empty, no CORS header is set (same-origin only).
// Otherwise, the request Origin is checked against the allowed list.
func CORSMiddleware(next http.Handler, allowedOrigins ...string) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if len(allowedOrigins) > 0 && origin != "" && allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, ErrorResponse{Error: msg, Code: code})
}
