package models

import "time"

// SessionState is the lifecycle state of a BenchmarkSession.
type SessionState string

const (
	StateIdle      SessionState = "idle"
	StateRunning   SessionState = "running"
	StateCompleted SessionState = "completed"
	StateFailed    SessionState = "failed"
)

// BenchmarkSession is one immutable snapshot of the orchestrator's session.
// A new value replaces the old one on every transition, so ElapsedSeconds and
// Results always belong to the same run.
type BenchmarkSession struct {
	ID           string       `json:"id"`
	Topic        string       `json:"topic"`
	DocumentText string       `json:"document_text"`
	Models       []ModelID    `json:"models"`
	State        SessionState `json:"state"`
	Error        string       `json:"error,omitempty"`
	StartedAt    time.Time    `json:"started_at,omitzero"`
	CompletedAt  time.Time    `json:"completed_at,omitzero"`

	// ElapsedSeconds and Results are nil until a run completes.
	ElapsedSeconds *float64       `json:"elapsed_seconds"`
	Results        *NormalizedSet `json:"results"`
}

// Completed reports whether the snapshot carries results of a finished run.
func (s *BenchmarkSession) Completed() bool {
	return s != nil && s.State == StateCompleted && s.Results != nil
}

// HasResults reports whether the snapshot carries a normalized set, which is
// also the case for an idle session restored after a canceled run.
func (s *BenchmarkSession) HasResults() bool {
	return s != nil && s.Results != nil
}

// Meta returns the export metadata for this session, stamped at now.
func (s *BenchmarkSession) Meta(now time.Time) SessionMeta {
	meta := SessionMeta{GeneratedAt: now}
	if s == nil {
		return meta
	}
	meta.Topic = s.Topic
	if s.ElapsedSeconds != nil {
		elapsed := *s.ElapsedSeconds
		meta.ElapsedSeconds = &elapsed
	}
	return meta
}

// SessionMeta is the session information every export carries.
type SessionMeta struct {
	Topic          string    `json:"topic"`
	GeneratedAt    time.Time `json:"generated_at"`
	ElapsedSeconds *float64  `json:"elapsed_seconds"`
}
