package appointments

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"chairline/backend/internal/domain"
	"chairline/backend/internal/metrics"
	"chairline/backend/internal/waitlist"
)

type WaitInput struct {
	ClientID  int64
	ServiceID int64
	Slot      string
}

// EnqueueWaiting resolves the client and service and appends them to the
// waiting queue. The queue is not persisted until PersistWaitingQueue.
func (s *Service) EnqueueWaiting(ctx context.Context, in WaitInput) (domain.WaitingEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	client, ok := s.clients.FindClientByID(ctx, in.ClientID)
	if !ok {
		return domain.WaitingEntry{}, &LookupError{Entity: EntityClient, ID: in.ClientID}
	}
	service, ok := s.services.FindServiceByID(ctx, in.ServiceID)
	if !ok {
		return domain.WaitingEntry{}, &LookupError{Entity: EntityService, ID: in.ServiceID}
	}
	if strings.TrimSpace(in.Slot) == "" {
		return domain.WaitingEntry{}, validationError("slot is required")
	}

	return s.queue.Enqueue(domain.WaitingEntry{
		Client:  client,
		Service: service,
		Slot:    in.Slot,
	}), nil
}

// EnqueueEntry appends a caller-built entry without resolving anything.
func (s *Service) EnqueueEntry(ctx context.Context, entry domain.WaitingEntry) domain.WaitingEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Enqueue(entry)
}

func (s *Service) DequeueWaitingFront(ctx context.Context) (domain.WaitingEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.DequeueFront()
}

// PersistWaitingQueue writes the whole queue and returns the number of
// entries written.
func (s *Service) PersistWaitingQueue(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.queue.Len()
	if err := s.queue.Persist(ctx); err != nil {
		return 0, fmt.Errorf("persist waiting queue: %w", err)
	}
	return n, nil
}

func (s *Service) ListWaiting(ctx context.Context) []domain.WaitingEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.List()
}

// PromoteNextWaiting books the entry at the head of the queue with the given
// staff member. If booking fails the entry goes back to the head and the
// error is returned. After a successful promotion the queue is persisted; a
// persist failure is returned alongside the booked appointment.
func (s *Service) PromoteNextWaiting(ctx context.Context, staffID int64) (domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.queue.DequeueFront()
	if !ok {
		metrics.RecordBooking("waitlist", metrics.OutcomeEmptyQueue)
		return domain.Appointment{}, waitlist.ErrEmpty
	}

	appt, err := s.book(ctx, BookInput{
		ClientID:  entry.Client.ID,
		StaffID:   staffID,
		ServiceID: entry.Service.ID,
		Slot:      entry.Slot,
	})
	metrics.RecordBooking("waitlist", outcomeOf(err))
	if err != nil {
		s.queue.PushFront(entry)
		s.log.Info("waiting entry not promoted",
			slog.Int64("entry_id", entry.ID),
			slog.String("reason", err.Error()),
		)
		return domain.Appointment{}, err
	}

	s.log.Info("waiting entry promoted",
		slog.Int64("entry_id", entry.ID),
		slog.Int64("appointment_id", appt.ID),
	)
	if err := s.queue.Persist(ctx); err != nil {
		return appt, fmt.Errorf("persist waiting queue: %w", err)
	}
	return appt, nil
}
