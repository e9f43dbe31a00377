package grpc

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"chairline/backend/internal/domain"
	"chairline/backend/internal/service/appointments"
	"chairline/backend/internal/store"
	"chairline/backend/internal/waitlist"
)

const OperatorMetadataKey = "x-operator-id"

type bookingService interface {
	BookByIdentifiers(ctx context.Context, in appointments.BookInput) (domain.Appointment, error)
	RegisterPrebuilt(ctx context.Context, appt *domain.Appointment) (domain.Appointment, error)
	List(ctx context.Context) []domain.Appointment
	Find(ctx context.Context, id int64) (domain.Appointment, error)
	Cancel(ctx context.Context, id int64) error
	Advance(ctx context.Context, id int64) (domain.Appointment, error)
	EnqueueWaiting(ctx context.Context, in appointments.WaitInput) (domain.WaitingEntry, error)
	DequeueWaitingFront(ctx context.Context) (domain.WaitingEntry, bool)
	PersistWaitingQueue(ctx context.Context) (int, error)
	ListWaiting(ctx context.Context) []domain.WaitingEntry
	PromoteNextWaiting(ctx context.Context, staffID int64) (domain.Appointment, error)
	Authorize(ctx context.Context, operatorID int64, perm domain.Permission) error
}

type BookingServer struct {
	svc             bookingService
	requireOperator bool
	log             *slog.Logger
}

type BookingServerOptions struct {
	// RequireOperator rejects calls that carry no x-operator-id metadata.
	RequireOperator bool
	Logger          *slog.Logger
}

func NewBookingServer(svc bookingService, opts BookingServerOptions) *BookingServer {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &BookingServer{
		svc:             svc,
		requireOperator: opts.RequireOperator,
		log:             log.With(slog.String("component", "grpc.booking")),
	}
}

func (s *BookingServer) logger(ctx context.Context, rpc string) *slog.Logger {
	log := s.log.With(slog.String("rpc", rpc))
	if id := RequestIDFromContext(ctx); id != "" {
		log = log.With(slog.String("request_id", id))
	}
	return log
}

func (s *BookingServer) BookAppointment(ctx context.Context, req *BookAppointmentRequest) (*BookAppointmentResponse, error) {
	log := s.logger(ctx, "BookAppointment")
	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	if err := s.authorize(ctx, log, domain.PermissionBookAppointments); err != nil {
		return nil, err
	}

	appt, err := s.svc.BookByIdentifiers(ctx, appointments.BookInput{
		ClientID:  req.ClientID,
		StaffID:   req.StaffID,
		ServiceID: req.ServiceID,
		Slot:      req.Slot,
	})
	if err != nil {
		return nil, s.toStatus(log, err, slog.Int64("staff_id", req.StaffID), slog.String("slot", req.Slot))
	}

	log.Info("appointment booked", slog.Int64("appointment_id", appt.ID), slog.Int64("staff_id", appt.Staff.ID), slog.String("slot", appt.Slot))
	return &BookAppointmentResponse{
		Appointment:  toWireAppointment(appt),
		Confirmation: appointments.ConfirmationMessage(appt),
	}, nil
}

func (s *BookingServer) RegisterAppointment(ctx context.Context, req *RegisterAppointmentRequest) (*RegisterAppointmentResponse, error) {
	log := s.logger(ctx, "RegisterAppointment")
	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	if err := s.authorize(ctx, log, domain.PermissionBookAppointments); err != nil {
		return nil, err
	}

	appt, err := s.svc.RegisterPrebuilt(ctx, fromWireAppointment(req.Appointment))
	if err != nil {
		return nil, s.toStatus(log, err)
	}

	log.Info("appointment registered", slog.Int64("appointment_id", appt.ID))
	return &RegisterAppointmentResponse{
		Appointment:  toWireAppointment(appt),
		Confirmation: appointments.ConfirmationMessage(appt),
	}, nil
}

func (s *BookingServer) ListAppointments(ctx context.Context, req *ListAppointmentsRequest) (*ListAppointmentsResponse, error) {
	log := s.logger(ctx, "ListAppointments")
	if err := s.authorize(ctx, log, domain.PermissionViewAppointments); err != nil {
		return nil, err
	}

	appts := s.svc.List(ctx)
	out := make([]*Appointment, 0, len(appts))
	for _, a := range appts {
		out = append(out, toWireAppointment(a))
	}
	log.Debug("appointments listed", slog.Int("count", len(out)))
	return &ListAppointmentsResponse{Appointments: out}, nil
}

func (s *BookingServer) GetAppointment(ctx context.Context, req *GetAppointmentRequest) (*GetAppointmentResponse, error) {
	log := s.logger(ctx, "GetAppointment")
	if req == nil || req.ID <= 0 {
		log.Warn("invalid request", slog.String("reason", "missing_id"))
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	if err := s.authorize(ctx, log, domain.PermissionViewAppointments); err != nil {
		return nil, err
	}

	appt, err := s.svc.Find(ctx, req.ID)
	if err != nil {
		return nil, s.toStatus(log, err, slog.Int64("appointment_id", req.ID))
	}
	return &GetAppointmentResponse{Appointment: toWireAppointment(appt)}, nil
}

func (s *BookingServer) CancelAppointment(ctx context.Context, req *CancelAppointmentRequest) (*CancelAppointmentResponse, error) {
	log := s.logger(ctx, "CancelAppointment")
	if req == nil || req.ID <= 0 {
		log.Warn("invalid request", slog.String("reason", "missing_id"))
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	if err := s.authorize(ctx, log, domain.PermissionCancelAppointments); err != nil {
		return nil, err
	}

	if err := s.svc.Cancel(ctx, req.ID); err != nil {
		return nil, s.toStatus(log, err, slog.Int64("appointment_id", req.ID))
	}
	log.Info("appointment cancelled", slog.Int64("appointment_id", req.ID))
	return &CancelAppointmentResponse{}, nil
}

func (s *BookingServer) AdvanceAppointment(ctx context.Context, req *AdvanceAppointmentRequest) (*AdvanceAppointmentResponse, error) {
	log := s.logger(ctx, "AdvanceAppointment")
	if req == nil || req.ID <= 0 {
		log.Warn("invalid request", slog.String("reason", "missing_id"))
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	if err := s.authorize(ctx, log, domain.PermissionAdvanceAppointments); err != nil {
		return nil, err
	}

	appt, err := s.svc.Advance(ctx, req.ID)
	if err != nil {
		return nil, s.toStatus(log, err, slog.Int64("appointment_id", req.ID))
	}
	return &AdvanceAppointmentResponse{Appointment: toWireAppointment(appt)}, nil
}

func (s *BookingServer) EnqueueWaiting(ctx context.Context, req *EnqueueWaitingRequest) (*EnqueueWaitingResponse, error) {
	log := s.logger(ctx, "EnqueueWaiting")
	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	if err := s.authorize(ctx, log, domain.PermissionManageWaitlist); err != nil {
		return nil, err
	}

	entry, err := s.svc.EnqueueWaiting(ctx, appointments.WaitInput{
		ClientID:  req.ClientID,
		ServiceID: req.ServiceID,
		Slot:      req.Slot,
	})
	if err != nil {
		return nil, s.toStatus(log, err)
	}
	return &EnqueueWaitingResponse{Entry: toWireWaitingEntry(entry)}, nil
}

func (s *BookingServer) DequeueWaiting(ctx context.Context, req *DequeueWaitingRequest) (*DequeueWaitingResponse, error) {
	log := s.logger(ctx, "DequeueWaiting")
	if err := s.authorize(ctx, log, domain.PermissionManageWaitlist); err != nil {
		return nil, err
	}

	entry, ok := s.svc.DequeueWaitingFront(ctx)
	if !ok {
		return nil, s.toStatus(log, waitlist.ErrEmpty)
	}
	return &DequeueWaitingResponse{Entry: toWireWaitingEntry(entry)}, nil
}

func (s *BookingServer) PersistWaiting(ctx context.Context, req *PersistWaitingRequest) (*PersistWaitingResponse, error) {
	log := s.logger(ctx, "PersistWaiting")
	if err := s.authorize(ctx, log, domain.PermissionManageWaitlist); err != nil {
		return nil, err
	}

	n, err := s.svc.PersistWaitingQueue(ctx)
	if err != nil {
		return nil, s.toStatus(log, err)
	}
	return &PersistWaitingResponse{Count: n}, nil
}

func (s *BookingServer) ListWaiting(ctx context.Context, req *ListWaitingRequest) (*ListWaitingResponse, error) {
	log := s.logger(ctx, "ListWaiting")
	if err := s.authorize(ctx, log, domain.PermissionManageWaitlist); err != nil {
		return nil, err
	}

	entries := s.svc.ListWaiting(ctx)
	out := make([]*WaitingEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, toWireWaitingEntry(e))
	}
	return &ListWaitingResponse{Entries: out}, nil
}

func (s *BookingServer) PromoteWaiting(ctx context.Context, req *PromoteWaitingRequest) (*PromoteWaitingResponse, error) {
	log := s.logger(ctx, "PromoteWaiting")
	if req == nil || req.StaffID <= 0 {
		log.Warn("invalid request", slog.String("reason", "missing_staff_id"))
		return nil, status.Error(codes.InvalidArgument, "staff_id is required")
	}
	if err := s.authorize(ctx, log, domain.PermissionManageWaitlist); err != nil {
		return nil, err
	}

	appt, err := s.svc.PromoteNextWaiting(ctx, req.StaffID)
	switch {
	case err != nil && appt.ID > 0:
		// Booked, but the queue write failed; the next persist writes it.
		log.Error("waiting queue persist failed", slog.Any("err", err), slog.Int64("appointment_id", appt.ID))
	case err != nil:
		return nil, s.toStatus(log, err, slog.Int64("staff_id", req.StaffID))
	}
	return &PromoteWaitingResponse{
		Appointment:  toWireAppointment(appt),
		Confirmation: appointments.ConfirmationMessage(appt),
	}, nil
}

// authorize checks the x-operator-id metadata against perm. Calls without an
// operator pass unless the server requires one.
func (s *BookingServer) authorize(ctx context.Context, log *slog.Logger, perm domain.Permission) error {
	raw := operatorID(ctx)
	if raw == "" {
		if s.requireOperator {
			log.Warn("missing operator", slog.String("permission", string(perm)))
			return status.Error(codes.Unauthenticated, "x-operator-id metadata is required")
		}
		return nil
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		log.Warn("invalid operator", slog.String("operator_id", raw))
		return status.Error(codes.InvalidArgument, "x-operator-id must be a positive integer")
	}

	if err := s.svc.Authorize(ctx, id, perm); err != nil {
		var lookup *appointments.LookupError
		if errors.As(err, &lookup) {
			log.Warn("unknown operator", slog.Int64("operator_id", id))
			return status.Error(codes.PermissionDenied, "unknown operator")
		}
		return s.toStatus(log, err, slog.Int64("operator_id", id))
	}
	return nil
}

func operatorID(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(OperatorMetadataKey)
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}

func (s *BookingServer) toStatus(log *slog.Logger, err error, attrs ...any) error {
	var (
		vErr     *appointments.ValidationError
		lookup   *appointments.LookupError
		conflict *appointments.SlotConflictError
	)
	switch {
	case errors.As(err, &vErr):
		log.Warn("invalid request", append([]any{slog.Any("err", err)}, attrs...)...)
		return status.Error(codes.InvalidArgument, vErr.Error())
	case errors.As(err, &lookup):
		log.Info("not found", append([]any{slog.String("entity", lookup.Entity), slog.Int64("id", lookup.ID)}, attrs...)...)
		return status.Error(codes.NotFound, lookup.Error())
	case errors.As(err, &conflict):
		log.Info("slot conflict", append([]any{slog.Int64("staff_id", conflict.StaffID), slog.String("slot", conflict.Slot)}, attrs...)...)
		return status.Error(codes.FailedPrecondition, "That staff member is already booked for this slot. Pick a different slot.")
	case errors.Is(err, store.ErrConflict):
		log.Info("conflict", append([]any{slog.Any("err", err)}, attrs...)...)
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, appointments.ErrForbidden):
		log.Warn("permission denied", append([]any{slog.Any("err", err)}, attrs...)...)
		return status.Error(codes.PermissionDenied, "operator lacks the required permission")
	case errors.Is(err, waitlist.ErrEmpty):
		log.Info("waiting queue empty")
		return status.Error(codes.NotFound, waitlist.ErrEmpty.Error())
	default:
		log.Error("request failed", append([]any{slog.Any("err", err)}, attrs...)...)
		return status.Error(codes.Internal, "internal error")
	}
}
