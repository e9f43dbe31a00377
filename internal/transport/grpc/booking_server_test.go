package grpc

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"chairline/backend/internal/domain"
	"chairline/backend/internal/service/appointments"
	"chairline/backend/internal/waitlist"
)

type fakeBookingService struct {
	bookFn      func(ctx context.Context, in appointments.BookInput) (domain.Appointment, error)
	registerFn  func(ctx context.Context, appt *domain.Appointment) (domain.Appointment, error)
	listFn      func(ctx context.Context) []domain.Appointment
	findFn      func(ctx context.Context, id int64) (domain.Appointment, error)
	cancelFn    func(ctx context.Context, id int64) error
	advanceFn   func(ctx context.Context, id int64) (domain.Appointment, error)
	enqueueFn   func(ctx context.Context, in appointments.WaitInput) (domain.WaitingEntry, error)
	dequeueFn   func(ctx context.Context) (domain.WaitingEntry, bool)
	persistFn   func(ctx context.Context) (int, error)
	waitingFn   func(ctx context.Context) []domain.WaitingEntry
	promoteFn   func(ctx context.Context, staffID int64) (domain.Appointment, error)
	authorizeFn func(ctx context.Context, operatorID int64, perm domain.Permission) error
}

func (f *fakeBookingService) BookByIdentifiers(ctx context.Context, in appointments.BookInput) (domain.Appointment, error) {
	if f.bookFn == nil {
		panic("BookByIdentifiers not configured")
	}
	return f.bookFn(ctx, in)
}

func (f *fakeBookingService) RegisterPrebuilt(ctx context.Context, appt *domain.Appointment) (domain.Appointment, error) {
	if f.registerFn == nil {
		panic("RegisterPrebuilt not configured")
	}
	return f.registerFn(ctx, appt)
}

func (f *fakeBookingService) List(ctx context.Context) []domain.Appointment {
	if f.listFn == nil {
		panic("List not configured")
	}
	return f.listFn(ctx)
}

func (f *fakeBookingService) Find(ctx context.Context, id int64) (domain.Appointment, error) {
	if f.findFn == nil {
		panic("Find not configured")
	}
	return f.findFn(ctx, id)
}

func (f *fakeBookingService) Cancel(ctx context.Context, id int64) error {
	if f.cancelFn == nil {
		panic("Cancel not configured")
	}
	return f.cancelFn(ctx, id)
}

func (f *fakeBookingService) Advance(ctx context.Context, id int64) (domain.Appointment, error) {
	if f.advanceFn == nil {
		panic("Advance not configured")
	}
	return f.advanceFn(ctx, id)
}

func (f *fakeBookingService) EnqueueWaiting(ctx context.Context, in appointments.WaitInput) (domain.WaitingEntry, error) {
	if f.enqueueFn == nil {
		panic("EnqueueWaiting not configured")
	}
	return f.enqueueFn(ctx, in)
}

func (f *fakeBookingService) DequeueWaitingFront(ctx context.Context) (domain.WaitingEntry, bool) {
	if f.dequeueFn == nil {
		panic("DequeueWaitingFront not configured")
	}
	return f.dequeueFn(ctx)
}

func (f *fakeBookingService) PersistWaitingQueue(ctx context.Context) (int, error) {
	if f.persistFn == nil {
		panic("PersistWaitingQueue not configured")
	}
	return f.persistFn(ctx)
}

func (f *fakeBookingService) ListWaiting(ctx context.Context) []domain.WaitingEntry {
	if f.waitingFn == nil {
		panic("ListWaiting not configured")
	}
	return f.waitingFn(ctx)
}

func (f *fakeBookingService) PromoteNextWaiting(ctx context.Context, staffID int64) (domain.Appointment, error) {
	if f.promoteFn == nil {
		panic("PromoteNextWaiting not configured")
	}
	return f.promoteFn(ctx, staffID)
}

func (f *fakeBookingService) Authorize(ctx context.Context, operatorID int64, perm domain.Permission) error {
	if f.authorizeFn == nil {
		panic("Authorize not configured")
	}
	return f.authorizeFn(ctx, operatorID, perm)
}

func TestBookAppointment_MapsErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{name: "lookup", err: &appointments.LookupError{Entity: appointments.EntityClient, ID: 9}, want: codes.NotFound},
		{name: "conflict", err: &appointments.SlotConflictError{StaffID: 1, Slot: "13:30"}, want: codes.FailedPrecondition},
		{name: "unexpected", err: errors.New("boom"), want: codes.Internal},
		{name: "forbidden", err: appointments.ErrForbidden, want: codes.PermissionDenied},
		{name: "empty queue", err: waitlist.ErrEmpty, want: codes.NotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := NewBookingServer(&fakeBookingService{
				bookFn: func(ctx context.Context, in appointments.BookInput) (domain.Appointment, error) {
					return domain.Appointment{}, tt.err
				},
			}, BookingServerOptions{})

			_, err := srv.BookAppointment(context.Background(), &BookAppointmentRequest{ClientID: 1, StaffID: 1, ServiceID: 1, Slot: "13:30"})
			if status.Code(err) != tt.want {
				t.Fatalf("code = %s, want %s", status.Code(err), tt.want)
			}
		})
	}
}

func TestBookAppointment_ValidationIsInvalidArgument(t *testing.T) {
	svc, err := newRealService(t)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	srv := NewBookingServer(svc, BookingServerOptions{})

	_, err = srv.BookAppointment(context.Background(), &BookAppointmentRequest{ClientID: 1, StaffID: 1, ServiceID: 1, Slot: " "})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("code = %s, want InvalidArgument", status.Code(err))
	}
	if status.Convert(err).Message() != "slot is required" {
		t.Fatalf("message = %q, want %q", status.Convert(err).Message(), "slot is required")
	}
}

func TestBookAppointment_Success(t *testing.T) {
	var got appointments.BookInput
	srv := NewBookingServer(&fakeBookingService{
		bookFn: func(ctx context.Context, in appointments.BookInput) (domain.Appointment, error) {
			got = in
			return domain.Appointment{
				ID:       4,
				Slot:     in.Slot,
				Client:   domain.Client{ID: in.ClientID, Name: "Ana"},
				Staff:    domain.StaffMember{ID: in.StaffID, Name: "Rui"},
				Services: []domain.Service{{ID: in.ServiceID, Entry: domain.CatalogHaircutAndBeard}},
				Status:   domain.StatusScheduled,
			}, nil
		},
	}, BookingServerOptions{})

	resp, err := srv.BookAppointment(context.Background(), &BookAppointmentRequest{ClientID: 1, StaffID: 2, ServiceID: 3, Slot: "02/10/2032 13:30"})
	if err != nil {
		t.Fatalf("BookAppointment error: %v", err)
	}
	if got.ClientID != 1 || got.StaffID != 2 || got.ServiceID != 3 {
		t.Fatalf("input = %+v", got)
	}
	if resp.Appointment.TotalCents != 5500 {
		t.Fatalf("TotalCents = %d, want 5500", resp.Appointment.TotalCents)
	}
	if resp.Confirmation != "Appointment booked for Ana at 02/10/2032 13:30" {
		t.Fatalf("Confirmation = %q", resp.Confirmation)
	}
}

func TestBookAppointment_NilRequest(t *testing.T) {
	srv := NewBookingServer(&fakeBookingService{}, BookingServerOptions{})
	_, err := srv.BookAppointment(context.Background(), nil)
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("code = %s, want InvalidArgument", status.Code(err))
	}
}

func TestAuthorize_OperatorMetadata(t *testing.T) {
	var checked []domain.Permission
	fake := &fakeBookingService{
		listFn: func(ctx context.Context) []domain.Appointment { return nil },
		authorizeFn: func(ctx context.Context, operatorID int64, perm domain.Permission) error {
			checked = append(checked, perm)
			switch operatorID {
			case 1:
				return nil
			case 2:
				return appointments.ErrForbidden
			default:
				return &appointments.LookupError{Entity: appointments.EntityStaff, ID: operatorID}
			}
		},
	}

	withOperator := func(id string) context.Context {
		return metadata.NewIncomingContext(context.Background(), metadata.Pairs(OperatorMetadataKey, id))
	}

	tests := []struct {
		name    string
		require bool
		ctx     context.Context
		want    codes.Code
	}{
		{name: "anonymous allowed", ctx: context.Background(), want: codes.OK},
		{name: "anonymous rejected", require: true, ctx: context.Background(), want: codes.Unauthenticated},
		{name: "permitted", require: true, ctx: withOperator("1"), want: codes.OK},
		{name: "forbidden", ctx: withOperator("2"), want: codes.PermissionDenied},
		{name: "unknown operator", ctx: withOperator("3"), want: codes.PermissionDenied},
		{name: "malformed", ctx: withOperator("abc"), want: codes.InvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := NewBookingServer(fake, BookingServerOptions{RequireOperator: tt.require})
			_, err := srv.ListAppointments(tt.ctx, &ListAppointmentsRequest{})
			if status.Code(err) != tt.want {
				t.Fatalf("code = %s, want %s", status.Code(err), tt.want)
			}
		})
	}

	for _, p := range checked {
		if p != domain.PermissionViewAppointments {
			t.Fatalf("checked permission %q, want %q", p, domain.PermissionViewAppointments)
		}
	}
}

func TestDequeueWaiting_EmptyIsNotFound(t *testing.T) {
	srv := NewBookingServer(&fakeBookingService{
		dequeueFn: func(ctx context.Context) (domain.WaitingEntry, bool) { return domain.WaitingEntry{}, false },
	}, BookingServerOptions{})

	_, err := srv.DequeueWaiting(context.Background(), &DequeueWaitingRequest{})
	if status.Code(err) != codes.NotFound {
		t.Fatalf("code = %s, want NotFound", status.Code(err))
	}
}

func TestRegisterAppointment_ConvertsWireAppointment(t *testing.T) {
	var got *domain.Appointment
	srv := NewBookingServer(&fakeBookingService{
		registerFn: func(ctx context.Context, appt *domain.Appointment) (domain.Appointment, error) {
			got = appt
			out := *appt
			out.ID = 1
			return out, nil
		},
	}, BookingServerOptions{})

	_, err := srv.RegisterAppointment(context.Background(), &RegisterAppointmentRequest{
		Appointment: &Appointment{
			ID:       99,
			Slot:     "09:00",
			Client:   Client{ID: 1, Name: "Ana"},
			Staff:    Staff{ID: 2, Name: "Rui"},
			Services: []ServiceLine{{ID: 3, Entry: "HAIR_WASH"}},
		},
	})
	if err != nil {
		t.Fatalf("RegisterAppointment error: %v", err)
	}
	if got.ID != 0 {
		t.Fatalf("wire id leaked into domain appointment: %d", got.ID)
	}
	if len(got.Services) != 1 || got.Services[0].Entry != domain.CatalogHairWash {
		t.Fatalf("services = %+v", got.Services)
	}
	if got.Status != "" {
		t.Fatalf("status = %q, want empty", got.Status)
	}
}

func TestRegisterAppointment_NilAppointmentIsInvalid(t *testing.T) {
	svc, err := newRealService(t)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	srv := NewBookingServer(svc, BookingServerOptions{})

	_, err = srv.RegisterAppointment(context.Background(), &RegisterAppointmentRequest{})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("code = %s, want InvalidArgument", status.Code(err))
	}
}

func TestPromoteWaiting_PersistFailureKeepsBooking(t *testing.T) {
	srv := NewBookingServer(&fakeBookingService{
		promoteFn: func(ctx context.Context, staffID int64) (domain.Appointment, error) {
			return domain.Appointment{ID: 7, Slot: "15:00", Client: domain.Client{ID: 1, Name: "Bruno"}}, errors.New("persist waiting queue: disk full")
		},
	}, BookingServerOptions{})

	resp, err := srv.PromoteWaiting(context.Background(), &PromoteWaitingRequest{StaffID: 2})
	if err != nil {
		t.Fatalf("PromoteWaiting error: %v", err)
	}
	if resp.Appointment.ID != 7 {
		t.Fatalf("appointment id = %d, want 7", resp.Appointment.ID)
	}
}

func TestPromoteWaiting_BookingFailure(t *testing.T) {
	srv := NewBookingServer(&fakeBookingService{
		promoteFn: func(ctx context.Context, staffID int64) (domain.Appointment, error) {
			return domain.Appointment{}, waitlist.ErrEmpty
		},
	}, BookingServerOptions{})

	_, err := srv.PromoteWaiting(context.Background(), &PromoteWaitingRequest{StaffID: 2})
	if status.Code(err) != codes.NotFound {
		t.Fatalf("code = %s, want NotFound", status.Code(err))
	}
}

func TestPersistWaiting_ReportsWrittenCount(t *testing.T) {
	srv := NewBookingServer(&fakeBookingService{
		persistFn: func(ctx context.Context) (int, error) { return 3, nil },
		waitingFn: func(ctx context.Context) []domain.WaitingEntry {
			t.Fatalf("ListWaiting called; count must come from the persist itself")
			return nil
		},
	}, BookingServerOptions{})

	resp, err := srv.PersistWaiting(context.Background(), &PersistWaitingRequest{})
	if err != nil {
		t.Fatalf("PersistWaiting error: %v", err)
	}
	if resp.Count != 3 {
		t.Fatalf("Count = %d, want 3", resp.Count)
	}
}
