package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/vidlift/internal/videoapi"
)

// Snapshot represents the latest library data available to front ends.
type Snapshot struct {
	Videos              []videoapi.VideoRecord
	HasList             bool // at least one fetch has succeeded
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // consecutive failed list fetches
}

// IsOffline returns true when the list endpoint has failed repeatedly.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Find returns the record with the given id.
func (s Snapshot) Find(id string) (videoapi.VideoRecord, bool) {
	for _, v := range s.Videos {
		if v.ID == id {
			return v, true
		}
	}
	return videoapi.VideoRecord{}, false
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update replaces the stored list wholesale. When err is non-nil the previous
// list is kept and the failure is recorded instead.
func (s *Store) Update(videos []videoapi.VideoRecord, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.LastUpdated = time.Now()
		s.snapshot.ConsecutiveFailures++
		return
	}

	s.snapshot.Videos = cloneVideos(videos)
	s.snapshot.HasList = true
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures = 0
}

// RecordError notes a failed mutation (such as a delete) without touching
// the list or the fetch failure counter.
func (s *Store) RecordError(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.LastError = err
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Videos = cloneVideos(s.snapshot.Videos)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func cloneVideos(items []videoapi.VideoRecord) []videoapi.VideoRecord {
	if len(items) == 0 {
		return nil
	}
	dup := make([]videoapi.VideoRecord, len(items))
	copy(dup, items)
	return dup
}
