// Package session tracks per-user queues of pending video references.
package session

import (
	"sync"
	"time"
)

// VideoRef is an opaque handle to an inbound video attachment. It is resolved
// to bytes only during a merge.
type VideoRef struct {
	ID         string
	URL        string
	ReceivedAt time.Time
}

// Store maps user identifiers to their queued video references. Entries are
// created lazily on the first video and removed when the queue drains, so the
// map never grows with idle users. All operations are atomic with respect to
// one another; a video enqueued while a snapshot is in progress lands in the
// next merge, never the current one.
type Store struct {
	mu     sync.Mutex
	queues map[string][]VideoRef
}

// NewStore builds an empty session store.
func NewStore() *Store {
	return &Store{queues: make(map[string][]VideoRef)}
}

// Enqueue appends ref to the user's queue, creating the session if absent,
// and returns the new queue length.
func (s *Store) Enqueue(user string, ref VideoRef) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queues[user] = append(s.queues[user], ref)
	return len(s.queues[user])
}

// SnapshotAndClear atomically returns the user's queue in arrival order and
// empties it. Videos arriving after the snapshot belong to the next merge.
func (s *Store) SnapshotAndClear(user string) []VideoRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	refs := s.queues[user]
	if len(refs) == 0 {
		delete(s.queues, user)
		return nil
	}
	delete(s.queues, user)
	return refs
}

// PeekCount reports the queued video count without mutating the queue.
func (s *Store) PeekCount(user string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queues[user])
}

// Clear drops the user's queue and session metadata. It reports whether a
// session existed. The user's stored artifact is untouched.
func (s *Store) Clear(user string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.queues[user]
	delete(s.queues, user)
	return ok
}

// Users returns the identifiers with a non-empty queue, for status output.
func (s *Store) Users() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]string, 0, len(s.queues))
	for user := range s.queues {
		users = append(users, user)
	}
	return users
}
