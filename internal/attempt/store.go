// Package attempt implements the part-attempt save pipeline: optimistic
// attempt-record updates, parent/child state synchronization across a
// layered activity tree, scripting-environment updates, and the final
// write to the intrinsic state API (skipped in preview mode).
package attempt

import (
	"sync"

	"github.com/courseforge/adaptivity/internal/scripting"
)

// PartAttempt is the state of one part within an activity attempt.
type PartAttempt struct {
	AttemptGuid string                `json:"attemptGuid"`
	PartID      string                `json:"partId"`
	Response    scripting.ResponseMap `json:"response,omitempty"`
}

// ActivityAttempt is one activity's attempt record.
type ActivityAttempt struct {
	AttemptGuid string        `json:"attemptGuid"`
	ActivityID  int           `json:"activityId"`
	Parts       []PartAttempt `json:"parts"`
}

// Part returns the part attempt with the given guid, or nil.
func (a *ActivityAttempt) Part(partAttemptGuid string) *PartAttempt {
	for i := range a.Parts {
		if a.Parts[i].AttemptGuid == partAttemptGuid {
			return &a.Parts[i]
		}
	}
	return nil
}

// PartByID returns the part attempt for the given part id, or nil.
func (a *ActivityAttempt) PartByID(partID string) *PartAttempt {
	for i := range a.Parts {
		if a.Parts[i].PartID == partID {
			return &a.Parts[i]
		}
	}
	return nil
}

// Store is an ephemeral, thread-safe, in-memory collection of attempt
// records for one delivery session. Created fresh per session, never
// persisted; the intrinsic state API is the durable side.
type Store struct {
	mu         sync.RWMutex
	byGuid     map[string]*ActivityAttempt
	byActivity map[int]string
}

// NewStore creates an empty attempt store.
func NewStore() *Store {
	return &Store{
		byGuid:     make(map[string]*ActivityAttempt),
		byActivity: make(map[int]string),
	}
}

// Upsert stores a full replacement of the attempt record.
func (s *Store) Upsert(att *ActivityAttempt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byGuid[att.AttemptGuid] = att
	s.byActivity[att.ActivityID] = att.AttemptGuid
}

// ByGuid returns the attempt record with the given guid.
func (s *Store) ByGuid(guid string) (*ActivityAttempt, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	att, ok := s.byGuid[guid]
	return att, ok
}

// ByActivity returns the attempt record for the given activity id.
func (s *Store) ByActivity(activityID int) (*ActivityAttempt, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	guid, ok := s.byActivity[activityID]
	if !ok {
		return nil, false
	}
	att, ok := s.byGuid[guid]
	return att, ok
}
