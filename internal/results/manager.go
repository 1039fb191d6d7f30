// Package results holds the translation result of the current session.
package results

import (
	"sync"

	"github.com/Finnson11-star/pdf-translator/internal/logger"
	"github.com/Finnson11-star/pdf-translator/internal/pipeline"
)

// Store keeps the most recent finished result and the partial result of a
// run in progress. Readers always get copies.
type Store struct {
	mu          sync.RWMutex
	markerLabel string

	current *pipeline.Result

	// in-progress run
	runID   string
	partial *pipeline.Result
}

// NewStore creates an empty store. markerLabel is used for partial aggregates.
func NewStore(markerLabel string) *Store {
	if markerLabel == "" {
		markerLabel = pipeline.DefaultMarkerLabel
	}
	return &Store{markerLabel: markerLabel}
}

// Save replaces the current result wholesale.
func (s *Store) Save(result *pipeline.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = result.Clone()
}

// Current returns the last saved result.
func (s *Store) Current() (*pipeline.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, false
	}
	return s.current.Clone(), true
}

// Reset drops the saved result and any in-progress snapshot. Safe to call repeatedly.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	s.runID = ""
	s.partial = nil
	logger.Debug("result store reset")
}

// Begin starts tracking a new run. The saved result is left alone until Finish.
func (s *Store) Begin(runID string, totalPages int, targetLanguage string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runID = runID
	s.partial = &pipeline.Result{
		Pages:          make([]pipeline.PageResult, 0, totalPages),
		TargetLanguage: targetLanguage,
		TotalPages:     totalPages,
	}
}

// Append adds a page to the in-progress run. Pages of any other run are ignored.
func (s *Store) Append(runID string, page pipeline.PageResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.partial == nil || s.runID != runID {
		return false
	}
	s.partial.Pages = append(s.partial.Pages, page)
	return true
}

// Finish saves result as current if runID is still the tracked run.
// It reports false when a Reset or a newer run has taken over.
func (s *Store) Finish(runID string, result *pipeline.Result) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.runID != runID {
		logger.Debug("discarding result of a superseded run", logger.String("runID", runID))
		return false
	}
	s.current = result.Clone()
	s.runID = ""
	s.partial = nil
	return true
}

// Abandon stops tracking runID without touching the saved result.
func (s *Store) Abandon(runID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.runID == runID {
		s.runID = ""
		s.partial = nil
	}
}

// Snapshot returns the partial result of the run in progress.
// Its Termination is empty because the run is not over.
func (s *Store) Snapshot() (*pipeline.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.partial == nil {
		return nil, false
	}
	snap := s.partial.Clone()
	snap.AggregateText = pipeline.BuildAggregate(s.markerLabel, snap.Pages)
	return snap, true
}

// ActiveRun returns the id of the run being tracked, if any.
func (s *Store) ActiveRun() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runID, s.runID != ""
}
