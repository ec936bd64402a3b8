package webapi

import (
	"context"

	"github.com/BuseDenizH/EssayEval-NLP/internal/models"
	"github.com/BuseDenizH/EssayEval-NLP/internal/orchestration"
)

// Benchmarker owns the session served by the API.
// *orchestration.Orchestrator implements it.
type Benchmarker interface {
	// Run scores one essay and returns the published session.
	Run(ctx context.Context, req orchestration.RunRequest) (*models.BenchmarkSession, error)
	// Cancel aborts the run in flight and reports whether there was one.
	Cancel() bool
	// Reset clears the session; it fails while a run is in flight.
	Reset() error
	// Snapshot returns the current immutable session.
	Snapshot() *models.BenchmarkSession
}

var _ Benchmarker = (*orchestration.Orchestrator)(nil)
