// Package http serves the directory and admin API: clients, staff, services,
// the catalog, a read-only appointment listing, health and metrics.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"chairline/backend/internal/directory"
	"chairline/backend/internal/domain"
	"chairline/backend/internal/metrics"
)

type clientDirectory interface {
	Create(ctx context.Context, in directory.NewClient) (domain.Client, error)
	FindClientByID(ctx context.Context, id int64) (domain.Client, bool)
	List() []domain.Client
}

type staffDirectory interface {
	Create(ctx context.Context, in directory.NewStaffMember) (domain.StaffMember, error)
	FindStaffByID(ctx context.Context, id int64) (domain.StaffMember, bool)
	Authenticate(ctx context.Context, username, password string) (domain.StaffMember, error)
	List() []domain.StaffMember
}

type serviceDirectory interface {
	Create(ctx context.Context, entry domain.CatalogEntry) (domain.Service, error)
	FindServiceByID(ctx context.Context, id int64) (domain.Service, bool)
	List() []domain.Service
}

type appointmentLister interface {
	List(ctx context.Context) []domain.Appointment
}

type Deps struct {
	Clients      clientDirectory
	Staff        staffDirectory
	Services     serviceDirectory
	Appointments appointmentLister
	Logger       *slog.Logger
	// RequireOperator rejects guarded routes called without X-Operator-Id.
	RequireOperator bool
}

type Handler struct {
	clients  clientDirectory
	staff    staffDirectory
	services serviceDirectory
	appts    appointmentLister
	log      *slog.Logger

	requireOperator bool
}

func NewRouter(deps Deps) *gin.Engine {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	h := &Handler{
		clients:  deps.Clients,
		staff:    deps.Staff,
		services: deps.Services,
		appts:    deps.Appointments,
		log:      log.With(slog.String("component", "http")),

		requireOperator: deps.RequireOperator,
	}

	r := gin.New()
	r.Use(gin.Recovery(), h.requestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	h.RegisterRoutes(v1)
	return r
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	clients := r.Group("/clients", h.requirePermission(domain.PermissionManageClients))
	{
		clients.POST("", h.CreateClient)
		clients.GET("", h.ListClients)
		clients.GET("/:id", h.GetClient)
	}

	r.POST("/staff/login", h.Login)
	staff := r.Group("/staff", h.requirePermission(domain.PermissionManageStaff))
	{
		staff.POST("", h.CreateStaff)
		staff.GET("", h.ListStaff)
		staff.GET("/:id", h.GetStaff)
	}

	services := r.Group("/services")
	{
		services.POST("", h.requirePermission(domain.PermissionManageServices), h.CreateService)
		services.GET("", h.ListServices)
		services.GET("/:id", h.GetService)
	}

	r.GET("/catalog", h.Catalog)
	r.GET("/appointments", h.requirePermission(domain.PermissionViewAppointments), h.ListAppointments)
}

// requestLogger tags each request with an id, logs it once it completes and
// records it in the HTTP metrics.
func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-Id", requestID)

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		metrics.RecordHTTPRequest(c.Request.Method, route, strconv.Itoa(status), latency.Seconds())

		attrs := []any{
			slog.String("request_id", requestID),
			slog.String("method", c.Request.Method),
			slog.String("route", route),
			slog.Int("status", status),
			slog.Duration("latency", latency),
		}
		switch {
		case status >= 500:
			h.log.Error("request failed", attrs...)
		case status >= 400:
			h.log.Warn("request rejected", attrs...)
		default:
			h.log.Debug("request served", attrs...)
		}
	}
}
