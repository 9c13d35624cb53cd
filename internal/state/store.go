package state

import (
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/keybot/keybot/internal/keybot"
)

// Snapshot represents the latest dashboard data available to the UI.
type Snapshot struct {
	Summary             keybot.Summary
	HasSummary          bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive poll failures
}

// IsOffline returns true when the API has been unreachable for multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update replaces the stored summary. When err is non-nil the previous data is
// kept but the error is recorded for visibility.
func (s *Store) Update(summary *keybot.Summary, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.LastUpdated = time.Now()
		s.snapshot.ConsecutiveFailures++
		return
	}

	if summary != nil {
		s.snapshot.Summary = cloneSummary(*summary)
		s.snapshot.HasSummary = true
	} else {
		s.snapshot.Summary = keybot.Summary{}
		s.snapshot.HasSummary = false
	}
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Summary = cloneSummary(s.snapshot.Summary)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func cloneSummary(in keybot.Summary) keybot.Summary {
	out := in
	out.QuotesByStatus = maps.Clone(in.QuotesByStatus)
	out.Upcoming = slices.Clone(in.Upcoming)
	out.RecentCalls = slices.Clone(in.RecentCalls)
	return out
}
