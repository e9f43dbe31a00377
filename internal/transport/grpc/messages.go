package grpc

import "chairline/backend/internal/domain"

type Client struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	NationalID string `json:"national_id,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

type Staff struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

type ServiceLine struct {
	ID         int64  `json:"id"`
	Entry      string `json:"entry"`
	Name       string `json:"name,omitempty"`
	PriceCents int64  `json:"price_cents,omitempty"`
}

type Appointment struct {
	ID         int64         `json:"id"`
	Slot       string        `json:"slot"`
	Client     Client        `json:"client"`
	Staff      Staff         `json:"staff"`
	Services   []ServiceLine `json:"services"`
	Status     string        `json:"status"`
	TotalCents int64         `json:"total_cents"`
}

type WaitingEntry struct {
	ID      int64       `json:"id"`
	Client  Client      `json:"client"`
	Service ServiceLine `json:"service"`
	Slot    string      `json:"slot"`
	Status  string      `json:"status"`
}

type BookAppointmentRequest struct {
	ClientID  int64  `json:"client_id"`
	StaffID   int64  `json:"staff_id"`
	ServiceID int64  `json:"service_id"`
	Slot      string `json:"slot"`
}

type BookAppointmentResponse struct {
	Appointment  *Appointment `json:"appointment"`
	Confirmation string       `json:"confirmation"`
}

// RegisterAppointmentRequest carries a fully assembled appointment. Its ID is
// ignored; the server assigns a fresh one.
type RegisterAppointmentRequest struct {
	Appointment *Appointment `json:"appointment"`
}

type RegisterAppointmentResponse struct {
	Appointment  *Appointment `json:"appointment"`
	Confirmation string       `json:"confirmation"`
}

type ListAppointmentsRequest struct{}

type ListAppointmentsResponse struct {
	Appointments []*Appointment `json:"appointments"`
}

type GetAppointmentRequest struct {
	ID int64 `json:"id"`
}

type GetAppointmentResponse struct {
	Appointment *Appointment `json:"appointment"`
}

type CancelAppointmentRequest struct {
	ID int64 `json:"id"`
}

type CancelAppointmentResponse struct{}

type AdvanceAppointmentRequest struct {
	ID int64 `json:"id"`
}

type AdvanceAppointmentResponse struct {
	Appointment *Appointment `json:"appointment"`
}

type EnqueueWaitingRequest struct {
	ClientID  int64  `json:"client_id"`
	ServiceID int64  `json:"service_id"`
	Slot      string `json:"slot"`
}

type EnqueueWaitingResponse struct {
	Entry *WaitingEntry `json:"entry"`
}

type DequeueWaitingRequest struct{}

type DequeueWaitingResponse struct {
	Entry *WaitingEntry `json:"entry"`
}

type PersistWaitingRequest struct{}

type PersistWaitingResponse struct {
	Count int `json:"count"`
}

type ListWaitingRequest struct{}

type ListWaitingResponse struct {
	Entries []*WaitingEntry `json:"entries"`
}

type PromoteWaitingRequest struct {
	StaffID int64 `json:"staff_id"`
}

type PromoteWaitingResponse struct {
	Appointment  *Appointment `json:"appointment"`
	Confirmation string       `json:"confirmation"`
}

func toWireClient(c domain.Client) Client {
	return Client{ID: c.ID, Name: c.Name, NationalID: c.NationalID, Phone: c.Phone}
}

func toWireService(s domain.Service) ServiceLine {
	return ServiceLine{ID: s.ID, Entry: string(s.Entry), Name: s.Name(), PriceCents: s.PriceCents()}
}

func toWireAppointment(a domain.Appointment) *Appointment {
	services := make([]ServiceLine, 0, len(a.Services))
	for _, s := range a.Services {
		services = append(services, toWireService(s))
	}
	return &Appointment{
		ID:         a.ID,
		Slot:       a.Slot,
		Client:     toWireClient(a.Client),
		Staff:      Staff{ID: a.Staff.ID, Name: a.Staff.Name, Role: a.Staff.Role},
		Services:   services,
		Status:     string(a.Status),
		TotalCents: a.TotalCents(),
	}
}

func toWireWaitingEntry(e domain.WaitingEntry) *WaitingEntry {
	return &WaitingEntry{
		ID:      e.ID,
		Client:  toWireClient(e.Client),
		Service: toWireService(e.Service),
		Slot:    e.Slot,
		Status:  string(e.Status),
	}
}

func fromWireAppointment(a *Appointment) *domain.Appointment {
	if a == nil {
		return nil
	}
	var services []domain.Service
	for _, s := range a.Services {
		services = append(services, domain.Service{ID: s.ID, Entry: domain.CatalogEntry(s.Entry)})
	}
	return &domain.Appointment{
		Slot: a.Slot,
		Client: domain.Client{
			ID:         a.Client.ID,
			Name:       a.Client.Name,
			NationalID: a.Client.NationalID,
			Phone:      a.Client.Phone,
		},
		Staff:    domain.StaffMember{ID: a.Staff.ID, Name: a.Staff.Name, Role: a.Staff.Role},
		Services: services,
		Status:   domain.Status(a.Status),
	}
}
