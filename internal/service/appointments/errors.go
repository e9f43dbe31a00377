package appointments

import (
	"errors"
	"fmt"

	"chairline/backend/internal/metrics"
	"chairline/backend/internal/store"
	"chairline/backend/internal/waitlist"
)

const (
	EntityClient      = "client"
	EntityStaff       = "staff member"
	EntityService     = "service"
	EntityAppointment = "appointment"
)

var ErrForbidden = errors.New("forbidden")

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

// LookupError reports that a referenced entity does not exist.
type LookupError struct {
	Entity string
	ID     int64
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *LookupError) Unwrap() error {
	return store.ErrNotFound
}

// SlotConflictError reports that the staff member already has an appointment
// at the requested slot.
type SlotConflictError struct {
	StaffID   int64
	StaffName string
	Slot      string
}

func (e *SlotConflictError) Error() string {
	return fmt.Sprintf("staff member %s (%d) is already booked at %s", e.StaffName, e.StaffID, e.Slot)
}

func (e *SlotConflictError) Unwrap() error {
	return store.ErrConflict
}

func outcomeOf(err error) string {
	var vErr *ValidationError
	switch {
	case err == nil:
		return metrics.OutcomeBooked
	case errors.As(err, &vErr):
		return metrics.OutcomeInvalid
	case errors.Is(err, store.ErrNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, store.ErrConflict):
		return metrics.OutcomeConflict
	case errors.Is(err, ErrForbidden):
		return metrics.OutcomeForbidden
	case errors.Is(err, waitlist.ErrEmpty):
		return metrics.OutcomeEmptyQueue
	default:
		return metrics.OutcomeFailed
	}
}
