package appointments

import (
	"context"
	"fmt"
	"log/slog"

	"chairline/backend/internal/domain"
)

// Authorize checks that the operator exists and holds the permission.
func (s *Service) Authorize(ctx context.Context, operatorID int64, perm domain.Permission) error {
	operator, ok := s.staff.FindStaffByID(ctx, operatorID)
	if !ok {
		return &LookupError{Entity: EntityStaff, ID: operatorID}
	}
	if !operator.Can(perm) {
		s.log.Warn("operation denied",
			slog.Int64("operator_id", operatorID),
			slog.String("permission", string(perm)),
		)
		return fmt.Errorf("%w: %s lacks %s", ErrForbidden, operator.Username, perm)
	}
	return nil
}
