// Package schedule holds booked appointments and answers slot availability
// questions against them.
package schedule

import (
	"context"
	"log/slog"

	"chairline/backend/internal/domain"
	"chairline/backend/internal/store"
)

const StoreName = "appointments"

// Store is the appointment collection. It trusts its caller: Create performs
// no conflict check. Not safe for concurrent use.
type Store struct {
	items *store.Collection[domain.Appointment]
	log   *slog.Logger
}

func appointmentID(a *domain.Appointment) *int64 { return &a.ID }

func NewStore(sub store.Substrate, opts store.Options) *Store {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	repo := store.NewRepository[domain.Appointment](sub, StoreName, opts)
	return &Store{
		items: store.NewCollection(repo, appointmentID),
		log:   log.With(slog.String("component", "schedule")),
	}
}

func (s *Store) Load(ctx context.Context) int {
	n := s.items.Load(ctx)
	s.log.Info("appointments loaded", slog.Int("count", n), slog.Int64("last_id", s.items.Sequencer().Current()))
	return n
}

func (s *Store) Sequencer() *store.Sequencer {
	return s.items.Sequencer()
}

func (s *Store) Create(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	return s.items.Insert(ctx, appt)
}

// RemoveByID removes the first appointment with the given ID. The store is
// only rewritten when something was removed.
func (s *Store) RemoveByID(ctx context.Context, id int64) (bool, error) {
	return s.items.Remove(ctx, id)
}

func (s *Store) FindByID(id int64) (domain.Appointment, bool) {
	appt, ok := s.items.Find(id)
	if !ok {
		s.log.Info("appointment not found", slog.Int64("appointment_id", id))
	}
	return appt, ok
}

func (s *Store) List() []domain.Appointment {
	return s.items.All()
}

func (s *Store) Len() int {
	return s.items.Len()
}

func (s *Store) SetStatus(ctx context.Context, id int64, status domain.Status) (domain.Appointment, bool, error) {
	appt, ok := s.items.Find(id)
	if !ok {
		return domain.Appointment{}, false, nil
	}
	appt.Status = status
	if _, err := s.items.Replace(ctx, appt); err != nil {
		return domain.Appointment{}, true, err
	}
	return appt, true, nil
}
