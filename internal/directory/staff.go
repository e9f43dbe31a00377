package directory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"chairline/backend/internal/domain"
	"chairline/backend/internal/store"
)

const StaffStore = "staff"

type NewStaffMember struct {
	Name        string              `json:"name" validate:"required,max=120"`
	NationalID  string              `json:"national_id" validate:"required,max=32"`
	Role        string              `json:"role" validate:"required,max=64"`
	Username    string              `json:"username" validate:"required,alphanum,min=3,max=64"`
	Password    string              `json:"password" validate:"required,min=8,max=72"`
	Permissions []domain.Permission `json:"permissions"`
}

type Staff struct {
	mu     sync.RWMutex
	items  *store.Collection[domain.StaffMember]
	hasher PasswordHasher
	log    *slog.Logger
}

func staffID(s *domain.StaffMember) *int64 { return &s.ID }

func NewStaff(sub store.Substrate, opts store.Options, hasher PasswordHasher) *Staff {
	repo := store.NewRepository[domain.StaffMember](sub, StaffStore, opts)
	return &Staff{
		items:  store.NewCollection(repo, staffID),
		hasher: hasher,
		log:    componentLogger(opts.Logger, "staff"),
	}
}

func (s *Staff) Load(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.Load(ctx)
}

// Create registers a staff member with a hashed password. Without explicit
// permissions the role's default set applies. Usernames are unique.
func (s *Staff) Create(ctx context.Context, in NewStaffMember) (domain.StaffMember, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.NationalID = strings.TrimSpace(in.NationalID)
	in.Role = strings.ToLower(strings.TrimSpace(in.Role))
	in.Username = strings.TrimSpace(in.Username)
	if err := check(in); err != nil {
		return domain.StaffMember{}, err
	}

	perms := domain.PermissionSet(in.Permissions)
	for _, p := range perms {
		if !p.Valid() {
			return domain.StaffMember{}, validationError(fmt.Sprintf("unknown permission %q", p))
		}
	}
	if len(perms) == 0 {
		perms = domain.DefaultPermissions(in.Role)
	} else {
		perms = perms.Union(nil)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return domain.StaffMember{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byUsername(in.Username); ok {
		return domain.StaffMember{}, fmt.Errorf("username %s: %w", in.Username, store.ErrConflict)
	}

	member, err := s.items.Insert(ctx, domain.StaffMember{
		Name:         in.Name,
		NationalID:   in.NationalID,
		Role:         in.Role,
		Username:     in.Username,
		PasswordHash: hash,
		Permissions:  perms,
	})
	if err != nil {
		return domain.StaffMember{}, err
	}
	s.log.Info("staff member registered",
		slog.Int64("staff_id", member.ID),
		slog.String("username", member.Username),
		slog.String("role", member.Role),
	)
	return member.Snapshot(), nil
}

// Bootstrap registers in as an administrator holding every permission, but
// only while the directory has no staff at all. It reports whether a member
// was created.
func (s *Staff) Bootstrap(ctx context.Context, in NewStaffMember) (domain.StaffMember, bool, error) {
	s.mu.RLock()
	empty := s.items.Len() == 0
	s.mu.RUnlock()
	if !empty {
		return domain.StaffMember{}, false, nil
	}

	in.Role = domain.RoleAdministrator
	in.Permissions = []domain.Permission{domain.PermissionAll}
	member, err := s.Create(ctx, in)
	if err != nil {
		return domain.StaffMember{}, false, err
	}
	return member, true, nil
}

// FindStaffByID returns the member without credentials.
func (s *Staff) FindStaffByID(ctx context.Context, id int64) (domain.StaffMember, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	member, ok := s.items.Find(id)
	if !ok {
		return domain.StaffMember{}, false
	}
	return member.Snapshot(), true
}

// Authenticate checks a username/password pair. Unknown usernames and wrong
// passwords both yield ErrInvalidCredentials.
func (s *Staff) Authenticate(ctx context.Context, username, password string) (domain.StaffMember, error) {
	s.mu.RLock()
	member, ok := s.byUsername(strings.TrimSpace(username))
	s.mu.RUnlock()

	if !ok || s.hasher.Compare(member.PasswordHash, password) != nil {
		s.log.Warn("login rejected", slog.String("username", username))
		return domain.StaffMember{}, ErrInvalidCredentials
	}
	return member.Snapshot(), nil
}

func (s *Staff) List() []domain.StaffMember {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.items.All()
	for i := range all {
		all[i] = all[i].Snapshot()
	}
	return all
}

func (s *Staff) byUsername(username string) (domain.StaffMember, bool) {
	for _, m := range s.items.All() {
		if strings.EqualFold(m.Username, username) {
			return m, true
		}
	}
	return domain.StaffMember{}, false
}
