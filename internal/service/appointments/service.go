package appointments

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"chairline/backend/internal/domain"
	"chairline/backend/internal/metrics"
	"chairline/backend/internal/schedule"
	"chairline/backend/internal/waitlist"
)

type ClientLookup interface {
	FindClientByID(ctx context.Context, id int64) (domain.Client, bool)
}

type StaffLookup interface {
	FindStaffByID(ctx context.Context, id int64) (domain.StaffMember, bool)
}

type ServiceLookup interface {
	FindServiceByID(ctx context.Context, id int64) (domain.Service, bool)
}

type Deps struct {
	Clients      ClientLookup
	Staff        StaffLookup
	Services     ServiceLookup
	Appointments *schedule.Store
	Waitlist     *waitlist.Queue
	Logger       *slog.Logger
}

// Service is the single writable entry point for appointments and the
// waiting queue. Every operation runs under one mutex so the availability
// check and the insert that follows it cannot interleave with another
// booking.
type Service struct {
	mu       sync.Mutex
	clients  ClientLookup
	staff    StaffLookup
	services ServiceLookup
	appts    *schedule.Store
	checker  *schedule.ConflictChecker
	queue    *waitlist.Queue
	log      *slog.Logger
}

func NewService(deps Deps) *Service {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		clients:  deps.Clients,
		staff:    deps.Staff,
		services: deps.Services,
		appts:    deps.Appointments,
		checker:  schedule.NewConflictChecker(deps.Appointments),
		queue:    deps.Waitlist,
		log:      log.With(slog.String("component", "booking")),
	}
}

type BookInput struct {
	ClientID  int64
	StaffID   int64
	ServiceID int64
	Slot      string
}

// BookByIdentifiers resolves client, staff member and service in that order,
// stopping at the first one that does not exist, then books the slot if the
// staff member is free.
func (s *Service) BookByIdentifiers(ctx context.Context, in BookInput) (domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	appt, err := s.book(ctx, in)
	metrics.RecordBooking("identifiers", outcomeOf(err))
	return appt, err
}

func (s *Service) book(ctx context.Context, in BookInput) (domain.Appointment, error) {
	client, ok := s.clients.FindClientByID(ctx, in.ClientID)
	if !ok {
		return domain.Appointment{}, &LookupError{Entity: EntityClient, ID: in.ClientID}
	}
	staff, ok := s.staff.FindStaffByID(ctx, in.StaffID)
	if !ok {
		return domain.Appointment{}, &LookupError{Entity: EntityStaff, ID: in.StaffID}
	}
	service, ok := s.services.FindServiceByID(ctx, in.ServiceID)
	if !ok {
		return domain.Appointment{}, &LookupError{Entity: EntityService, ID: in.ServiceID}
	}
	if strings.TrimSpace(in.Slot) == "" {
		return domain.Appointment{}, validationError("slot is required")
	}

	return s.insert(ctx, domain.Appointment{
		Slot:     in.Slot,
		Client:   client,
		Staff:    staff.Snapshot(),
		Services: []domain.Service{service},
		Status:   domain.StatusScheduled,
	})
}

// RegisterPrebuilt stores an appointment assembled by the caller. The slot is
// always re-checked and the appointment gets a fresh ID.
func (s *Service) RegisterPrebuilt(ctx context.Context, appt *domain.Appointment) (domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out, err := s.registerPrebuilt(ctx, appt)
	metrics.RecordBooking("prebuilt", outcomeOf(err))
	return out, err
}

func (s *Service) registerPrebuilt(ctx context.Context, appt *domain.Appointment) (domain.Appointment, error) {
	switch {
	case appt == nil:
		return domain.Appointment{}, validationError("appointment is required")
	case appt.Client.ID == 0:
		return domain.Appointment{}, validationError("client is required")
	case appt.Staff.ID == 0:
		return domain.Appointment{}, validationError("staff member is required")
	case len(appt.Services) == 0:
		return domain.Appointment{}, validationError("at least one service is required")
	case strings.TrimSpace(appt.Slot) == "":
		return domain.Appointment{}, validationError("slot is required")
	}
	for _, svc := range appt.Services {
		if svc.ID <= 0 {
			return domain.Appointment{}, validationError("service id is required")
		}
		if !svc.Entry.Valid() {
			return domain.Appointment{}, validationError(fmt.Sprintf("unknown catalog entry %q", svc.Entry))
		}
	}

	next := *appt
	next.Staff = appt.Staff.Snapshot()
	next.Services = append([]domain.Service(nil), appt.Services...)
	switch {
	case next.Status == "":
		next.Status = domain.StatusScheduled
	case next.Status == domain.StatusWaiting:
		return domain.Appointment{}, validationError("waiting entries cannot be registered as appointments")
	case !next.Status.Valid():
		return domain.Appointment{}, validationError(fmt.Sprintf("invalid status %q", next.Status))
	}

	return s.insert(ctx, next)
}

func (s *Service) insert(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	if !s.checker.IsSlotFree(appt.Slot, appt.Staff) {
		return domain.Appointment{}, &SlotConflictError{StaffID: appt.Staff.ID, StaffName: appt.Staff.Name, Slot: appt.Slot}
	}

	created, err := s.appts.Create(ctx, appt)
	if err != nil {
		return domain.Appointment{}, fmt.Errorf("save appointment: %w", err)
	}

	s.log.Info(ConfirmationMessage(created),
		slog.Int64("appointment_id", created.ID),
		slog.Int64("client_id", created.Client.ID),
		slog.Int64("staff_id", created.Staff.ID),
	)
	return created, nil
}

func ConfirmationMessage(appt domain.Appointment) string {
	return fmt.Sprintf("Appointment booked for %s at %s", appt.Client.Name, appt.Slot)
}

func (s *Service) List(ctx context.Context) []domain.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.appts.List()
	if len(out) == 0 {
		s.log.Info("no appointments booked")
	}
	return out
}

// Cancel removes the appointment. No record of the cancellation is kept.
func (s *Service) Cancel(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := s.appts.RemoveByID(ctx, id)
	switch {
	case err != nil:
		metrics.RecordCancellation(metrics.OutcomeFailed)
		return fmt.Errorf("cancel appointment %d: %w", id, err)
	case !removed:
		metrics.RecordCancellation(metrics.OutcomeNotFound)
		return &LookupError{Entity: EntityAppointment, ID: id}
	}

	metrics.RecordCancellation(metrics.OutcomeCancelled)
	s.log.Info("appointment cancelled", slog.Int64("appointment_id", id))
	return nil
}

func (s *Service) Find(ctx context.Context, id int64) (domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	appt, ok := s.appts.FindByID(id)
	if !ok {
		return domain.Appointment{}, &LookupError{Entity: EntityAppointment, ID: id}
	}
	return appt, nil
}

// Advance moves an appointment one step along SCHEDULED -> IN_PROGRESS ->
// SERVED.
func (s *Service) Advance(ctx context.Context, id int64) (domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	appt, ok := s.appts.FindByID(id)
	if !ok {
		return domain.Appointment{}, &LookupError{Entity: EntityAppointment, ID: id}
	}
	next, ok := appt.Status.Next()
	if !ok {
		return domain.Appointment{}, validationError(fmt.Sprintf("appointment %d cannot advance from %s", id, appt.Status))
	}

	updated, _, err := s.appts.SetStatus(ctx, id, next)
	if err != nil {
		return domain.Appointment{}, fmt.Errorf("advance appointment %d: %w", id, err)
	}
	s.log.Info("appointment advanced",
		slog.Int64("appointment_id", id),
		slog.String("from", string(appt.Status)),
		slog.String("to", string(next)),
	)
	return updated, nil
}
