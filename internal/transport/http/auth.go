package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"chairline/backend/internal/domain"
)

// OperatorHeader identifies the staff member performing a request.
const OperatorHeader = "X-Operator-Id"

const operatorKey = "operator_id"

// requirePermission checks the X-Operator-Id header against perm. Requests
// without the header pass unless the router requires an operator; a header
// that is present is always checked.
func (h *Handler) requirePermission(perm domain.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(OperatorHeader))
		if raw == "" {
			if h.requireOperator {
				h.log.Warn("missing operator", slog.String("route", c.FullPath()), slog.String("permission", string(perm)))
				c.AbortWithStatusJSON(http.StatusUnauthorized, NewErrorResponse("X-Operator-Id header is required"))
				return
			}
			c.Next()
			return
		}

		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, NewErrorResponse("X-Operator-Id must be a positive integer"))
			return
		}

		operator, ok := h.staff.FindStaffByID(c.Request.Context(), id)
		if !ok {
			h.log.Warn("unknown operator", slog.Int64("operator_id", id), slog.String("route", c.FullPath()))
			c.AbortWithStatusJSON(http.StatusForbidden, NewErrorResponse("unknown operator"))
			return
		}
		if !operator.Can(perm) {
			h.log.Warn("operation denied",
				slog.Int64("operator_id", id),
				slog.String("route", c.FullPath()),
				slog.String("permission", string(perm)),
			)
			c.AbortWithStatusJSON(http.StatusForbidden, NewErrorResponse("operator lacks the required permission"))
			return
		}

		c.Set(operatorKey, id)
		c.Next()
	}
}
