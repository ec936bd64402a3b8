// Package orchestration runs benchmark sessions: it validates a submission,
// calls the scoring service, normalizes the response and publishes the
// resulting session snapshot.
package orchestration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/BuseDenizH/EssayEval-NLP/internal/models"
	"github.com/BuseDenizH/EssayEval-NLP/internal/normalize"
	"github.com/BuseDenizH/EssayEval-NLP/internal/scoring"
	"github.com/google/uuid"
)

// ProgressListener receives progress updates
type ProgressListener func(event ProgressEvent)

// EventType represents the type of progress event
type EventType string

// EventType constants
const (
	EventRunStarted   EventType = "run_started"
	EventRunCompleted EventType = "run_completed"
	EventRunFailed    EventType = "run_failed"
	EventRunCanceled  EventType = "run_canceled"
	EventRunRejected  EventType = "run_rejected"
	EventSessionReset EventType = "session_reset"
)

// ProgressEvent represents a progress update
type ProgressEvent struct {
	EventType  EventType
	SessionID  string
	State      models.SessionState
	Models     []models.ModelID
	DurationMs int64
	Details    map[string]any
}

// RunRequest is one benchmark submission.
type RunRequest struct {
	Topic        string
	DocumentText string
	// Models defaults to the orchestrator's default models when empty.
	Models []models.ModelID
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger used for state transitions.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = l
	}
}

// WithDefaultModels sets the models scored when a request names none.
func WithDefaultModels(ids ...models.ModelID) Option {
	return func(o *Orchestrator) {
		o.defaultModels = ids
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// Orchestrator owns one benchmark session. At most one run is in flight at a
// time; readers take immutable snapshots and never block a run.
type Orchestrator struct {
	client        scoring.Client
	logger        *slog.Logger
	now           func() time.Time
	defaultModels []models.ModelID

	// mu guards the transition into and out of Running.
	mu     sync.Mutex
	cancel context.CancelFunc

	session atomic.Pointer[models.BenchmarkSession]

	progressMu sync.Mutex
	listeners  []ProgressListener
}

// New creates an Orchestrator with an idle session.
func New(client scoring.Client, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		client:        client,
		logger:        slog.Default(),
		now:           time.Now,
		defaultModels: models.KnownModels,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.session.Store(&models.BenchmarkSession{State: models.StateIdle})
	return o
}

// OnProgress registers a progress listener
func (o *Orchestrator) OnProgress(listener ProgressListener) {
	o.progressMu.Lock()
	defer o.progressMu.Unlock()
	o.listeners = append(o.listeners, listener)
}

func (o *Orchestrator) notifyProgress(event ProgressEvent) {
	o.progressMu.Lock()
	listeners := make([]ProgressListener, len(o.listeners))
	copy(listeners, o.listeners)
	o.progressMu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}

// Snapshot returns the current session. The value is never mutated; callers
// may hold it while later runs publish new snapshots.
func (o *Orchestrator) Snapshot() *models.BenchmarkSession {
	return o.session.Load()
}

// Running reports whether a run is in flight.
func (o *Orchestrator) Running() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cancel != nil
}

// Run scores req and returns the session it published.
//
// A blank document is rejected with a *models.ValidationError and a request
// made while another run is in flight with models.ErrRunInProgress; neither
// touches the session. A transport failure moves the session to Failed and
// returns the error. Cancellation, through Cancel or ctx, moves the session
// back to Idle with the previous results and returns an error wrapping
// context.Canceled.
func (o *Orchestrator) Run(ctx context.Context, req RunRequest) (*models.BenchmarkSession, error) {
	if strings.TrimSpace(req.DocumentText) == "" {
		return nil, &models.ValidationError{Field: "document", Err: models.ErrEmptyDocument}
	}
	ids := req.Models
	if len(ids) == 0 {
		ids = o.defaultModels
	}
	ids = append([]models.ModelID(nil), ids...)

	runCtx, prev, running, err := o.begin(ctx, req, ids)
	if err != nil {
		return nil, err
	}

	start := o.now()
	resp, err := o.client.Predict(runCtx, &scoring.PredictRequest{
		Essay:  req.DocumentText,
		Models: ids,
	})
	elapsed := o.now().Sub(start)

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(runCtx.Err(), context.Canceled) {
			return o.finishCanceled(prev, running), fmt.Errorf("benchmark run canceled: %w", err)
		}
		return o.finishFailed(running, err, elapsed), err
	}

	set := normalize.Normalize(resp.Results)
	return o.finishCompleted(running, set, elapsed), nil
}

// begin moves the session to Running, or rejects the request when a run is
// already in flight.
func (o *Orchestrator) begin(ctx context.Context, req RunRequest, ids []models.ModelID) (context.Context, *models.BenchmarkSession, *models.BenchmarkSession, error) {
	o.mu.Lock()
	prev := o.session.Load()
	if o.cancel != nil {
		o.mu.Unlock()
		o.logger.Warn("rejected benchmark run, another run is in flight", "session", prev.ID)
		o.notifyProgress(ProgressEvent{EventType: EventRunRejected, SessionID: prev.ID, State: prev.State, Models: ids})
		return nil, nil, nil, models.ErrRunInProgress
	}

	runCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	running := &models.BenchmarkSession{
		ID:           uuid.NewString(),
		Topic:        strings.TrimSpace(req.Topic),
		DocumentText: req.DocumentText,
		Models:       ids,
		State:        models.StateRunning,
		StartedAt:    o.now(),
	}
	o.session.Store(running)
	o.mu.Unlock()

	o.logger.Info("benchmark run started", "session", running.ID, "models", ids)
	o.notifyProgress(ProgressEvent{EventType: EventRunStarted, SessionID: running.ID, State: running.State, Models: ids})
	return runCtx, prev, running, nil
}

// publish stores next and leaves Running. It must be the only place that
// clears o.cancel after begin set it.
func (o *Orchestrator) publish(next *models.BenchmarkSession) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	o.session.Store(next)
}

func (o *Orchestrator) finishCompleted(running *models.BenchmarkSession, set *models.NormalizedSet, elapsed time.Duration) *models.BenchmarkSession {
	seconds := elapsed.Seconds()
	next := *running
	next.State = models.StateCompleted
	next.CompletedAt = o.now()
	next.ElapsedSeconds = &seconds
	next.Results = set
	o.publish(&next)

	o.logger.Info("benchmark run completed", "session", next.ID, "elapsed_s", seconds,
		"succeeded", len(set.Successes()), "failed", len(set.Failures()))
	o.notifyProgress(ProgressEvent{
		EventType:  EventRunCompleted,
		SessionID:  next.ID,
		State:      next.State,
		Models:     next.Models,
		DurationMs: elapsed.Milliseconds(),
		Details: map[string]any{
			"succeeded": len(set.Successes()),
			"failed":    len(set.Failures()),
		},
	})
	return &next
}

func (o *Orchestrator) finishFailed(running *models.BenchmarkSession, err error, elapsed time.Duration) *models.BenchmarkSession {
	next := *running
	next.State = models.StateFailed
	next.CompletedAt = o.now()
	next.Error = userMessage(err)
	o.publish(&next)

	o.logger.Error("benchmark run failed", "session", next.ID, "error", err)
	o.notifyProgress(ProgressEvent{
		EventType:  EventRunFailed,
		SessionID:  next.ID,
		State:      next.State,
		Models:     next.Models,
		DurationMs: elapsed.Milliseconds(),
		Details:    map[string]any{"error": next.Error},
	})
	return &next
}

// finishCanceled restores the session that preceded the run, as Idle. The
// elapsed time of the aborted call is discarded.
func (o *Orchestrator) finishCanceled(prev, running *models.BenchmarkSession) *models.BenchmarkSession {
	next := *prev
	next.State = models.StateIdle
	next.Error = ""
	o.publish(&next)

	o.logger.Info("benchmark run canceled", "session", running.ID)
	o.notifyProgress(ProgressEvent{EventType: EventRunCanceled, SessionID: running.ID, State: next.State, Models: running.Models})
	return &next
}

// Cancel aborts the run in flight, if any, and reports whether there was one.
// The aborted Run call publishes the Idle session.
func (o *Orchestrator) Cancel() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancel == nil {
		return false
	}
	o.cancel()
	return true
}

// Reset clears the session back to Idle. It fails with
// models.ErrRunInProgress while a run is in flight.
func (o *Orchestrator) Reset() error {
	o.mu.Lock()
	if o.cancel != nil {
		o.mu.Unlock()
		return models.ErrRunInProgress
	}
	o.session.Store(&models.BenchmarkSession{State: models.StateIdle})
	o.mu.Unlock()

	o.logger.Info("benchmark session reset")
	o.notifyProgress(ProgressEvent{EventType: EventSessionReset, State: models.StateIdle})
	return nil
}

// userMessage is the error indicator shown for a failed run.
func userMessage(err error) string {
	var te *models.TransportError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "The scoring service timed out. Please try again."
	case errors.As(err, &te) && te.Op == "decode":
		return "The scoring service returned an unusable response."
	case errors.As(err, &te) && te.StatusCode != 0:
		return fmt.Sprintf("The scoring service answered with status %d.", te.StatusCode)
	default:
		return "Could not reach the scoring service. Is the backend running?"
	}
}
