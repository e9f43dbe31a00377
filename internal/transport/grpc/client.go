package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// BookingClient calls chairline.v1.BookingService with the JSON codec.
type BookingClient struct {
	cc grpc.ClientConnInterface
}

func NewBookingClient(cc grpc.ClientConnInterface) *BookingClient {
	return &BookingClient{cc: cc}
}

// Dial opens an insecure connection suitable for local use.
func Dial(addr string, extra ...grpc.DialOption) (*grpc.ClientConn, error) {
	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithChainUnaryInterceptor(ClientRequestIDInterceptor()),
	}
	return grpc.NewClient(addr, append(opts, extra...)...)
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, fullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookingClient) BookAppointment(ctx context.Context, in *BookAppointmentRequest, opts ...grpc.CallOption) (*BookAppointmentResponse, error) {
	return invoke[BookAppointmentResponse](ctx, c.cc, "BookAppointment", in, opts)
}

func (c *BookingClient) RegisterAppointment(ctx context.Context, in *RegisterAppointmentRequest, opts ...grpc.CallOption) (*RegisterAppointmentResponse, error) {
	return invoke[RegisterAppointmentResponse](ctx, c.cc, "RegisterAppointment", in, opts)
}

func (c *BookingClient) ListAppointments(ctx context.Context, in *ListAppointmentsRequest, opts ...grpc.CallOption) (*ListAppointmentsResponse, error) {
	return invoke[ListAppointmentsResponse](ctx, c.cc, "ListAppointments", in, opts)
}

func (c *BookingClient) GetAppointment(ctx context.Context, in *GetAppointmentRequest, opts ...grpc.CallOption) (*GetAppointmentResponse, error) {
	return invoke[GetAppointmentResponse](ctx, c.cc, "GetAppointment", in, opts)
}

func (c *BookingClient) CancelAppointment(ctx context.Context, in *CancelAppointmentRequest, opts ...grpc.CallOption) (*CancelAppointmentResponse, error) {
	return invoke[CancelAppointmentResponse](ctx, c.cc, "CancelAppointment", in, opts)
}

func (c *BookingClient) AdvanceAppointment(ctx context.Context, in *AdvanceAppointmentRequest, opts ...grpc.CallOption) (*AdvanceAppointmentResponse, error) {
	return invoke[AdvanceAppointmentResponse](ctx, c.cc, "AdvanceAppointment", in, opts)
}

func (c *BookingClient) EnqueueWaiting(ctx context.Context, in *EnqueueWaitingRequest, opts ...grpc.CallOption) (*EnqueueWaitingResponse, error) {
	return invoke[EnqueueWaitingResponse](ctx, c.cc, "EnqueueWaiting", in, opts)
}

func (c *BookingClient) DequeueWaiting(ctx context.Context, in *DequeueWaitingRequest, opts ...grpc.CallOption) (*DequeueWaitingResponse, error) {
	return invoke[DequeueWaitingResponse](ctx, c.cc, "DequeueWaiting", in, opts)
}

func (c *BookingClient) PersistWaiting(ctx context.Context, in *PersistWaitingRequest, opts ...grpc.CallOption) (*PersistWaitingResponse, error) {
	return invoke[PersistWaitingResponse](ctx, c.cc, "PersistWaiting", in, opts)
}

func (c *BookingClient) ListWaiting(ctx context.Context, in *ListWaitingRequest, opts ...grpc.CallOption) (*ListWaitingResponse, error) {
	return invoke[ListWaitingResponse](ctx, c.cc, "ListWaiting", in, opts)
}

func (c *BookingClient) PromoteWaiting(ctx context.Context, in *PromoteWaitingRequest, opts ...grpc.CallOption) (*PromoteWaitingResponse, error) {
	return invoke[PromoteWaitingResponse](ctx, c.cc, "PromoteWaiting", in, opts)
}
