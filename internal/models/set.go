package models

import (
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// RawResults is the "results" object of a scoring response: model id to an
// undecoded payload, in the order the keys arrived on the wire.
type RawResults = orderedmap.OrderedMap[string, json.RawMessage]

// NewRawResults returns an empty RawResults.
func NewRawResults() *RawResults {
	return orderedmap.New[string, json.RawMessage]()
}

// NormalizedSet is the immutable, ordered outcome of one benchmark run.
// Order is the arrival order of the raw response. A nil *NormalizedSet
// behaves as an empty set.
type NormalizedSet struct {
	entries []ModelResult
	index   map[ModelID]int
}

// NewNormalizedSet builds a set from results in the given order. A model id
// that appears twice keeps its first position and its last value.
func NewNormalizedSet(results ...ModelResult) *NormalizedSet {
	s := &NormalizedSet{
		entries: make([]ModelResult, 0, len(results)),
		index:   make(map[ModelID]int, len(results)),
	}
	for _, r := range results {
		if i, ok := s.index[r.Model()]; ok {
			s.entries[i] = r
			continue
		}
		s.index[r.Model()] = len(s.entries)
		s.entries = append(s.entries, r)
	}
	return s
}

// Len returns the number of models in the set.
func (s *NormalizedSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Results returns a copy of all entries in arrival order.
func (s *NormalizedSet) Results() []ModelResult {
	if s == nil {
		return []ModelResult{}
	}
	out := make([]ModelResult, len(s.entries))
	copy(out, s.entries)
	return out
}

// Get returns the result recorded for id.
func (s *NormalizedSet) Get(id ModelID) (ModelResult, bool) {
	if s == nil {
		return nil, false
	}
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.entries[i], true
}

// IDs returns every model id in arrival order, failed ones included.
func (s *NormalizedSet) IDs() []ModelID {
	ids := make([]ModelID, 0, s.Len())
	if s == nil {
		return ids
	}
	for _, r := range s.entries {
		ids = append(ids, r.Model())
	}
	return ids
}

// Successes returns the Success entries in arrival order.
func (s *NormalizedSet) Successes() []Success {
	out := []Success{}
	if s == nil {
		return out
	}
	for _, r := range s.entries {
		switch v := r.(type) {
		case Success:
			out = append(out, v)
		case Failure:
		}
	}
	return out
}

// Failures returns the Failure entries in arrival order.
func (s *NormalizedSet) Failures() []Failure {
	out := []Failure{}
	if s == nil {
		return out
	}
	for _, r := range s.entries {
		switch v := r.(type) {
		case Success:
		case Failure:
			out = append(out, v)
		}
	}
	return out
}

// MarshalJSON encodes the set as an ordered array of results.
func (s *NormalizedSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Results())
}
