package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"chairline/backend/internal/directory"
	"chairline/backend/internal/domain"
	"chairline/backend/internal/store"
)

type createServiceRequest struct {
	Entry domain.CatalogEntry `json:"entry" binding:"required"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) CreateClient(c *gin.Context) {
	var req directory.NewClient
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse("invalid request body"))
		return
	}

	client, err := h.clients.Create(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewSuccessResponse(client))
}

func (h *Handler) ListClients(c *gin.Context) {
	c.JSON(http.StatusOK, NewSuccessResponse(h.clients.List()))
}

func (h *Handler) GetClient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	client, found := h.clients.FindClientByID(c.Request.Context(), id)
	if !found {
		c.JSON(http.StatusNotFound, NewErrorResponse("client not found"))
		return
	}
	c.JSON(http.StatusOK, NewSuccessResponse(client))
}

func (h *Handler) CreateStaff(c *gin.Context) {
	var req directory.NewStaffMember
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse("invalid request body"))
		return
	}

	member, err := h.staff.Create(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewSuccessResponse(member))
}

func (h *Handler) ListStaff(c *gin.Context) {
	c.JSON(http.StatusOK, NewSuccessResponse(h.staff.List()))
}

func (h *Handler) GetStaff(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	member, found := h.staff.FindStaffByID(c.Request.Context(), id)
	if !found {
		c.JSON(http.StatusNotFound, NewErrorResponse("staff member not found"))
		return
	}
	c.JSON(http.StatusOK, NewSuccessResponse(member.Snapshot()))
}

// Login verifies staff credentials. No session or token is issued.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse("username and password are required"))
		return
	}

	member, err := h.staff.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewSuccessResponse(member))
}

func (h *Handler) CreateService(c *gin.Context) {
	var req createServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse("entry is required"))
		return
	}

	svc, err := h.services.Create(c.Request.Context(), req.Entry)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewSuccessResponse(serviceView(svc)))
}

func (h *Handler) ListServices(c *gin.Context) {
	services := h.services.List()
	out := make([]gin.H, 0, len(services))
	for _, s := range services {
		out = append(out, serviceView(s))
	}
	c.JSON(http.StatusOK, NewSuccessResponse(out))
}

func (h *Handler) GetService(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	svc, found := h.services.FindServiceByID(c.Request.Context(), id)
	if !found {
		c.JSON(http.StatusNotFound, NewErrorResponse("service not found"))
		return
	}
	c.JSON(http.StatusOK, NewSuccessResponse(serviceView(svc)))
}

func (h *Handler) Catalog(c *gin.Context) {
	c.JSON(http.StatusOK, NewSuccessResponse(domain.Catalog()))
}

func (h *Handler) ListAppointments(c *gin.Context) {
	c.JSON(http.StatusOK, NewSuccessResponse(h.appts.List(c.Request.Context())))
}

func serviceView(s domain.Service) gin.H {
	return gin.H{
		"id":          s.ID,
		"entry":       s.Entry,
		"name":        s.Name(),
		"price_cents": s.PriceCents(),
		"description": s.Description(),
	}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, NewErrorResponse("id must be a positive integer"))
		return 0, false
	}
	return id, true
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var vErr *directory.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, NewErrorResponse(vErr.Error()))
	case errors.Is(err, store.ErrConflict):
		c.JSON(http.StatusConflict, NewErrorResponse(err.Error()))
	case errors.Is(err, directory.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, NewErrorResponse(err.Error()))
	default:
		h.log.Error("request failed", slog.Any("err", err), slog.String("route", c.FullPath()))
		c.JSON(http.StatusInternalServerError, NewErrorResponse("internal error"))
	}
}
