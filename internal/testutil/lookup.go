// Package testutil provides shared test doubles: a scripted lookup client
// and logging helpers.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/stoichtab/stoichtab/internal/pubchem"
	"github.com/stoichtab/stoichtab/internal/sheet"
)

// LookupCall records one Lookup invocation.
type LookupCall struct {
	Kind  sheet.Kind
	Query string
}

type lookupResult struct {
	compound *pubchem.Compound
	err      error
}

// ScriptedLookup is a lookup client answering from a fixed script instead
// of the network. Queries without a scripted answer fail as not-found, so a
// scenario never silently hits an unplanned lookup.
//
// Thread-safe: completions arrive from lookup goroutines.
type ScriptedLookup struct {
	mu      sync.Mutex
	results map[string]lookupResult
	calls   []LookupCall

	// Gate, when set, is closed by the test to release all lookups.
	// Lets a test observe the searching state before completion lands.
	Gate chan struct{}
}

// NewScriptedLookup creates an empty scripted client.
func NewScriptedLookup() *ScriptedLookup {
	return &ScriptedLookup{results: make(map[string]lookupResult)}
}

func scriptKey(kind sheet.Kind, query string) string {
	return string(kind) + "\x00" + query
}

// Answer scripts a successful result for a (kind, query) pair.
func (s *ScriptedLookup) Answer(kind sheet.Kind, query string, c *pubchem.Compound) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[scriptKey(kind, query)] = lookupResult{compound: c}
}

// Fail scripts an error for a (kind, query) pair.
func (s *ScriptedLookup) Fail(kind sheet.Kind, query string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[scriptKey(kind, query)] = lookupResult{err: err}
}

// Lookup implements the engine's lookup capability.
func (s *ScriptedLookup) Lookup(ctx context.Context, kind sheet.Kind, query string) (*pubchem.Compound, error) {
	s.mu.Lock()
	s.calls = append(s.calls, LookupCall{Kind: kind, Query: query})
	res, ok := s.results[scriptKey(kind, query)]
	gate := s.Gate
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if !ok {
		return nil, &pubchem.LookupError{
			Code:    pubchem.CodeNotFound,
			Kind:    kind,
			Query:   query,
			Message: fmt.Sprintf("no scripted result for %q", query),
		}
	}
	return res.compound, res.err
}

// Calls returns a copy of the recorded invocations in order.
func (s *ScriptedLookup) Calls() []LookupCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]LookupCall, len(s.calls))
	copy(out, s.calls)
	return out
}
