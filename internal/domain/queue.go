package domain

import (
	"fmt"
	"sync"
	"time"
)

// QueueEntryTTL is how long a queue entry stays live after enqueue.
const QueueEntryTTL = 48 * time.Hour

type QueueEntry struct {
	UserID     string    `json:"user_id"`
	Priority   int       `json:"priority"`
	EnqueuedAt time.Time `json:"enqueued_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Expired reports whether the entry is past its live window at now.
func (e QueueEntry) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// ranksBefore orders by priority desc, then enqueue time asc.
func (e QueueEntry) ranksBefore(other QueueEntry) bool {
	if e.Priority != other.Priority {
		return e.Priority > other.Priority
	}
	return e.EnqueuedAt.Before(other.EnqueuedAt)
}

// ReservationQueue is the ordered waiting list of a single physical copy.
// All operations are serialized by the queue's own lock.
type ReservationQueue struct {
	mu       sync.Mutex
	entries  []QueueEntry
	capacity int
}

func NewReservationQueue() *ReservationQueue {
	return &ReservationQueue{capacity: QueueCapacity}
}

// RestoreReservationQueue rebuilds a queue from persisted entries, which
// must already be in rank order.
func RestoreReservationQueue(entries []QueueEntry) *ReservationQueue {
	q := NewReservationQueue()
	q.entries = append(q.entries, entries...)
	return q
}

// Enqueue inserts userID in rank order and returns an opaque token.
// Entries of equal priority and time keep their insertion order.
func (q *ReservationQueue) Enqueue(userID string, priority int, now time.Time) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.purgeLocked(now)
	if len(q.entries) >= q.capacity {
		return "", ErrQueueFull
	}
	if q.indexLocked(userID) >= 0 {
		return "", ErrAlreadyQueued
	}

	entry := QueueEntry{
		UserID:     userID,
		Priority:   priority,
		EnqueuedAt: now,
		ExpiresAt:  now.Add(QueueEntryTTL),
	}
	at := len(q.entries)
	for i, existing := range q.entries {
		if entry.ranksBefore(existing) {
			at = i
			break
		}
	}
	q.entries = append(q.entries, QueueEntry{})
	copy(q.entries[at+1:], q.entries[at:])
	q.entries[at] = entry

	return fmt.Sprintf("%s_%d", userID, now.UnixMilli()), nil
}

// DequeueHead purges expired entries and pops the head.
func (q *ReservationQueue) DequeueHead(now time.Time) (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.purgeLocked(now)
	if len(q.entries) == 0 {
		return "", false
	}
	head := q.entries[0]
	q.entries = q.entries[1:]
	return head.UserID, true
}

// Cancel removes every entry for userID. It reports whether anything was removed.
func (q *ReservationQueue) Cancel(userID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	kept := make([]QueueEntry, 0, len(q.entries))
	for _, e := range q.entries {
		if e.UserID != userID {
			kept = append(kept, e)
		}
	}
	removed := len(kept) != len(q.entries)
	q.entries = kept
	return removed
}

// Position returns the 1-based rank of userID after purging, or 0.
func (q *ReservationQueue) Position(userID string, now time.Time) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.purgeLocked(now)
	return q.indexLocked(userID) + 1
}

// Purge drops expired entries and returns how many were dropped.
func (q *ReservationQueue) Purge(now time.Time) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.purgeLocked(now)
}

func (q *ReservationQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Entries returns a snapshot of the queue in rank order.
func (q *ReservationQueue) Entries() []QueueEntry {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]QueueEntry(nil), q.entries...)
}

func (q *ReservationQueue) purgeLocked(now time.Time) int {
	kept := q.entries[:0]
	for _, e := range q.entries {
		if !e.Expired(now) {
			kept = append(kept, e)
		}
	}
	dropped := len(q.entries) - len(kept)
	q.entries = kept
	return dropped
}

func (q *ReservationQueue) indexLocked(userID string) int {
	for i, e := range q.entries {
		if e.UserID == userID {
			return i
		}
	}
	return -1
}
