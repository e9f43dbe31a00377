package grpc

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "chairline.v1.BookingService"

// BookingServiceServer is the server API of chairline.v1.BookingService.
type BookingServiceServer interface {
	BookAppointment(context.Context, *BookAppointmentRequest) (*BookAppointmentResponse, error)
	RegisterAppointment(context.Context, *RegisterAppointmentRequest) (*RegisterAppointmentResponse, error)
	ListAppointments(context.Context, *ListAppointmentsRequest) (*ListAppointmentsResponse, error)
	GetAppointment(context.Context, *GetAppointmentRequest) (*GetAppointmentResponse, error)
	CancelAppointment(context.Context, *CancelAppointmentRequest) (*CancelAppointmentResponse, error)
	AdvanceAppointment(context.Context, *AdvanceAppointmentRequest) (*AdvanceAppointmentResponse, error)
	EnqueueWaiting(context.Context, *EnqueueWaitingRequest) (*EnqueueWaitingResponse, error)
	DequeueWaiting(context.Context, *DequeueWaitingRequest) (*DequeueWaitingResponse, error)
	PersistWaiting(context.Context, *PersistWaitingRequest) (*PersistWaitingResponse, error)
	ListWaiting(context.Context, *ListWaitingRequest) (*ListWaitingResponse, error)
	PromoteWaiting(context.Context, *PromoteWaitingRequest) (*PromoteWaitingResponse, error)
}

func fullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

func unaryHandler[Req, Resp any](name string, call func(BookingServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(BookingServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(BookingServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var BookingServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BookingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler("BookAppointment", BookingServiceServer.BookAppointment),
		unaryHandler("RegisterAppointment", BookingServiceServer.RegisterAppointment),
		unaryHandler("ListAppointments", BookingServiceServer.ListAppointments),
		unaryHandler("GetAppointment", BookingServiceServer.GetAppointment),
		unaryHandler("CancelAppointment", BookingServiceServer.CancelAppointment),
		unaryHandler("AdvanceAppointment", BookingServiceServer.AdvanceAppointment),
		unaryHandler("EnqueueWaiting", BookingServiceServer.EnqueueWaiting),
		unaryHandler("DequeueWaiting", BookingServiceServer.DequeueWaiting),
		unaryHandler("PersistWaiting", BookingServiceServer.PersistWaiting),
		unaryHandler("ListWaiting", BookingServiceServer.ListWaiting),
		unaryHandler("PromoteWaiting", BookingServiceServer.PromoteWaiting),
	},
	Streams: []grpc.StreamDesc{},
}

func RegisterBookingServiceServer(s grpc.ServiceRegistrar, srv BookingServiceServer) {
	s.RegisterService(&BookingServiceDesc, srv)
}
