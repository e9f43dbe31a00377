package domain

import (
	"slices"
	"strings"
)

type Permission string

const (
	PermissionAll                 Permission = "*"
	PermissionBookAppointments    Permission = "appointments:book"
	PermissionCancelAppointments  Permission = "appointments:cancel"
	PermissionViewAppointments    Permission = "appointments:view"
	PermissionAdvanceAppointments Permission = "appointments:advance"
	PermissionManageWaitlist      Permission = "waitlist:manage"
	PermissionManageClients       Permission = "clients:manage"
	PermissionManageStaff         Permission = "staff:manage"
	PermissionManageServices      Permission = "services:manage"
)

var knownPermissions = []Permission{
	PermissionAll,
	PermissionBookAppointments,
	PermissionCancelAppointments,
	PermissionViewAppointments,
	PermissionAdvanceAppointments,
	PermissionManageWaitlist,
	PermissionManageClients,
	PermissionManageStaff,
	PermissionManageServices,
}

func (p Permission) Valid() bool {
	return slices.Contains(knownPermissions, p)
}

// PermissionSet is the list of capabilities granted to a staff member.
// A set holding PermissionAll grants every capability.
type PermissionSet []Permission

func AllPermissions() PermissionSet {
	return PermissionSet{PermissionAll}
}

func (ps PermissionSet) Has(p Permission) bool {
	for _, granted := range ps {
		if granted == PermissionAll || granted == p {
			return true
		}
	}
	return false
}

func (ps PermissionSet) Union(other PermissionSet) PermissionSet {
	out := make(PermissionSet, 0, len(ps)+len(other))
	for _, p := range append(slices.Clone(ps), other...) {
		if !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	return out
}

const (
	RoleAdministrator = "administrator"
	RoleReceptionist  = "receptionist"
	RoleBarber        = "barber"
)

// DefaultPermissions returns the capability set granted to a role title when
// none is given explicitly.
func DefaultPermissions(role string) PermissionSet {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case RoleAdministrator:
		return AllPermissions()
	case RoleReceptionist:
		return PermissionSet{
			PermissionBookAppointments,
			PermissionCancelAppointments,
			PermissionViewAppointments,
			PermissionManageWaitlist,
			PermissionManageClients,
		}
	case RoleBarber:
		return PermissionSet{
			PermissionViewAppointments,
			PermissionAdvanceAppointments,
		}
	default:
		return PermissionSet{PermissionViewAppointments}
	}
}

type StaffMember struct {
	ID           int64         `json:"id"`
	Name         string        `json:"name"`
	NationalID   string        `json:"national_id"`
	Role         string        `json:"role"`
	Username     string        `json:"username"`
	PasswordHash string        `json:"password_hash,omitempty"`
	Permissions  PermissionSet `json:"permissions"`
}

func (s StaffMember) Can(p Permission) bool {
	return s.Permissions.Has(p)
}

// Snapshot returns a copy of s without credentials, suitable for embedding in
// appointments.
func (s StaffMember) Snapshot() StaffMember {
	out := s
	out.PasswordHash = ""
	out.Permissions = slices.Clone(s.Permissions)
	return out
}
