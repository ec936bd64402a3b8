package webapi

import (
	"github.com/BuseDenizH/EssayEval-NLP/internal/models"
	"github.com/BuseDenizH/EssayEval-NLP/internal/projection"
	"github.com/BuseDenizH/EssayEval-NLP/internal/tokens"
)

// BenchmarkRequest is the body of POST /api/benchmark.
type BenchmarkRequest struct {
	Topic string `json:"topic"`
	Essay string `json:"essay"`
	// Models holds model ids or glob patterns; empty selects the defaults.
	Models []string `json:"models,omitempty"`
}

// SessionResponse is the current session with its projections. Views is
// nil until the session holds results.
type SessionResponse struct {
	Session *models.BenchmarkSession `json:"session"`
	Views   *projection.Views        `json:"views"`
	// Truncated lists the models whose input window the essay overflows.
	Truncated []tokens.Truncation `json:"truncated,omitempty"`
}

// CancelResponse reports whether a run in flight was canceled.
type CancelResponse struct {
	Canceled bool `json:"canceled"`
}

// HealthResponse is the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ErrorResponse is returned for errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}
