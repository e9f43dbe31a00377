// Package waitlist is the first-come-first-served queue of clients waiting
// for a free slot.
package waitlist

import (
	"context"
	"errors"
	"log/slog"

	"chairline/backend/internal/domain"
	"chairline/backend/internal/metrics"
	"chairline/backend/internal/store"
)

const StoreName = "waiting_queue"

var ErrEmpty = errors.New("waiting queue is empty")

// Queue holds waiting entries in insertion order. Enqueue and DequeueFront
// only change memory; Persist writes the whole queue. There is no capacity
// bound, expiry or duplicate suppression. Not safe for concurrent use.
type Queue struct {
	repo    *store.Repository[domain.WaitingEntry]
	seq     store.Sequencer
	entries []domain.WaitingEntry
	log     *slog.Logger
}

func New(sub store.Substrate, opts store.Options) *Queue {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Queue{
		repo: store.NewRepository[domain.WaitingEntry](sub, StoreName, opts),
		log:  log.With(slog.String("component", "waitlist")),
	}
}

func (q *Queue) Load(ctx context.Context) int {
	q.entries = q.repo.LoadAll(ctx)

	var max int64
	for _, e := range q.entries {
		if e.ID > max {
			max = e.ID
		}
	}
	if len(q.entries) > 0 {
		q.seq.Reseed(max)
	}
	metrics.SetWaitlistDepth(len(q.entries))
	q.log.Info("waiting queue loaded", slog.Int("count", len(q.entries)))
	return len(q.entries)
}

func (q *Queue) Sequencer() *store.Sequencer {
	return &q.seq
}

// Enqueue appends entry at the back with status WAITING and a fresh ID.
func (q *Queue) Enqueue(entry domain.WaitingEntry) domain.WaitingEntry {
	entry.ID = q.seq.Next()
	entry.Status = domain.StatusWaiting
	q.entries = append(q.entries, entry)
	metrics.SetWaitlistDepth(len(q.entries))

	q.log.Info("client added to waiting queue",
		slog.Int64("entry_id", entry.ID),
		slog.String("client", entry.Client.Name),
		slog.String("slot", entry.Slot),
		slog.Int("position", len(q.entries)),
	)
	return entry
}

func (q *Queue) DequeueFront() (domain.WaitingEntry, bool) {
	if len(q.entries) == 0 {
		q.log.Info("waiting queue is empty")
		return domain.WaitingEntry{}, false
	}

	entry := q.entries[0]
	q.entries = q.entries[1:]
	metrics.SetWaitlistDepth(len(q.entries))
	return entry, true
}

// PushFront returns an entry to the head of the queue, keeping its ID.
func (q *Queue) PushFront(entry domain.WaitingEntry) {
	entry.Status = domain.StatusWaiting
	q.entries = append([]domain.WaitingEntry{entry}, q.entries...)
	metrics.SetWaitlistDepth(len(q.entries))
}

func (q *Queue) Persist(ctx context.Context) error {
	return q.repo.SaveAll(ctx, q.entries)
}

func (q *Queue) List() []domain.WaitingEntry {
	out := make([]domain.WaitingEntry, len(q.entries))
	copy(out, q.entries)
	return out
}

func (q *Queue) Len() int {
	return len(q.entries)
}
