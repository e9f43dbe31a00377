package schedule

import (
	"log/slog"

	"chairline/backend/internal/domain"
)

type ConflictChecker struct {
	appointments *Store
	log          *slog.Logger
}

func NewConflictChecker(appointments *Store) *ConflictChecker {
	return &ConflictChecker{appointments: appointments, log: appointments.log}
}

// IsSlotFree reports whether staff has no appointment at exactly slot. Tokens
// are compared byte for byte: "14:00" and "14:00:00" are different slots.
func (c *ConflictChecker) IsSlotFree(slot string, staff domain.StaffMember) bool {
	for _, appt := range c.appointments.items.All() {
		if appt.Staff.ID == staff.ID && appt.Slot == slot {
			c.log.Info("slot unavailable",
				slog.String("staff", staff.Name),
				slog.Int64("staff_id", staff.ID),
				slog.String("slot", slot),
				slog.Int64("appointment_id", appt.ID),
			)
			return false
		}
	}
	c.log.Info("slot available",
		slog.String("staff", staff.Name),
		slog.Int64("staff_id", staff.ID),
		slog.String("slot", slot),
	)
	return true
}
