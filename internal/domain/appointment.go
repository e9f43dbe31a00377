package domain

type Status string

const (
	StatusScheduled  Status = "SCHEDULED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusServed     Status = "SERVED"
	StatusWaiting    Status = "WAITING"
)

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusServed, StatusWaiting:
		return true
	}
	return false
}

// Next returns the status that follows s on the service path
// SCHEDULED -> IN_PROGRESS -> SERVED. SERVED and WAITING have no successor.
func (s Status) Next() (Status, bool) {
	switch s {
	case StatusScheduled:
		return StatusInProgress, true
	case StatusInProgress:
		return StatusServed, true
	}
	return "", false
}

// Appointment embeds snapshots of the client, staff member and services taken
// when it was booked. Slot is an opaque token compared by exact string match.
type Appointment struct {
	ID       int64       `json:"id"`
	Slot     string      `json:"slot"`
	Client   Client      `json:"client"`
	Staff    StaffMember `json:"staff"`
	Services []Service   `json:"services"`
	Status   Status      `json:"status"`
}

func (a Appointment) TotalCents() int64 {
	var total int64
	for _, s := range a.Services {
		total += s.PriceCents()
	}
	return total
}

// WaitingEntry is a client waiting for a service. Entries are served in the
// order they were enqueued.
type WaitingEntry struct {
	ID      int64   `json:"id"`
	Service Service `json:"service"`
	Client  Client  `json:"client"`
	Slot    string  `json:"slot"`
	Status  Status  `json:"status"`
}
