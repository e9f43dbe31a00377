package directory

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"chairline/backend/internal/domain"
	"chairline/backend/internal/store"
	"chairline/backend/internal/store/jsonfile"
)

func newSubstrate(t *testing.T) store.Substrate {
	t.Helper()
	sub, err := jsonfile.NewWithFs(afero.NewMemMapFs(), "data")
	require.NoError(t, err)
	return sub
}

func TestClients_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	sub := newSubstrate(t)
	clients := NewClients(sub, store.Options{})
	clients.Load(ctx)

	c, err := clients.Create(ctx, NewClient{Name: "  Ana Souza ", NationalID: "123", Phone: "5551234"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.ID)
	assert.Equal(t, "Ana Souza", c.Name)

	got, ok := clients.FindClientByID(ctx, c.ID)
	require.True(t, ok)
	assert.Equal(t, c, got)

	_, ok = clients.FindClientByID(ctx, 42)
	assert.False(t, ok)

	reloaded := NewClients(sub, store.Options{})
	assert.Equal(t, 1, reloaded.Load(ctx))
}

func TestClients_Validation(t *testing.T) {
	ctx := context.Background()
	clients := NewClients(newSubstrate(t), store.Options{})
	clients.Load(ctx)

	_, err := clients.Create(ctx, NewClient{Name: " ", NationalID: "1"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "name is required")

	_, err = clients.Create(ctx, NewClient{Name: "Ana", NationalID: "1", Phone: "12"})
	require.ErrorAs(t, err, &verr)
}

func TestClients_DuplicateNationalID(t *testing.T) {
	ctx := context.Background()
	clients := NewClients(newSubstrate(t), store.Options{})
	clients.Load(ctx)

	_, err := clients.Create(ctx, NewClient{Name: "Ana", NationalID: "1"})
	require.NoError(t, err)
	_, err = clients.Create(ctx, NewClient{Name: "Bia", NationalID: "1"})
	assert.ErrorIs(t, err, store.ErrConflict)
}

func newStaff(t *testing.T) *Staff {
	t.Helper()
	s := NewStaff(newSubstrate(t), store.Options{}, NewBcryptHasher(bcrypt.MinCost))
	s.Load(context.Background())
	return s
}

func TestStaff_CreateHashesAndStripsCredentials(t *testing.T) {
	ctx := context.Background()
	staff := newStaff(t)

	m, err := staff.Create(ctx, NewStaffMember{
		Name: "Rui", NationalID: "9", Role: "Barber", Username: "rui", Password: "clippers1",
	})
	require.NoError(t, err)
	assert.Empty(t, m.PasswordHash)
	assert.Equal(t, "barber", m.Role)
	assert.Equal(t, domain.DefaultPermissions(domain.RoleBarber), m.Permissions)

	found, ok := staff.FindStaffByID(ctx, m.ID)
	require.True(t, ok)
	assert.Empty(t, found.PasswordHash)

	for _, listed := range staff.List() {
		assert.Empty(t, listed.PasswordHash)
	}

	stored, ok := staff.items.Find(m.ID)
	require.True(t, ok)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("clippers1")))
}

func TestStaff_ExplicitPermissions(t *testing.T) {
	ctx := context.Background()
	staff := newStaff(t)

	m, err := staff.Create(ctx, NewStaffMember{
		Name: "Lia", NationalID: "10", Role: "receptionist", Username: "lia", Password: "frontdesk",
		Permissions: []domain.Permission{domain.PermissionViewAppointments, domain.PermissionViewAppointments},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PermissionSet{domain.PermissionViewAppointments}, m.Permissions)

	_, err = staff.Create(ctx, NewStaffMember{
		Name: "Max", NationalID: "11", Role: "barber", Username: "max", Password: "frontdesk",
		Permissions: []domain.Permission{"coffee:brew"},
	})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestStaff_UniqueUsername(t *testing.T) {
	ctx := context.Background()
	staff := newStaff(t)

	in := NewStaffMember{Name: "Rui", NationalID: "9", Role: "barber", Username: "rui", Password: "clippers1"}
	_, err := staff.Create(ctx, in)
	require.NoError(t, err)

	in.Username = "RUI"
	_, err = staff.Create(ctx, in)
	assert.ErrorIs(t, err, store.ErrConflict)
}

func TestStaff_Authenticate(t *testing.T) {
	ctx := context.Background()
	staff := newStaff(t)
	_, err := staff.Create(ctx, NewStaffMember{
		Name: "Ana", NationalID: "1", Role: "administrator", Username: "ana", Password: "s3cretpass",
	})
	require.NoError(t, err)

	m, err := staff.Authenticate(ctx, "ana", "s3cretpass")
	require.NoError(t, err)
	assert.True(t, m.Can(domain.PermissionManageStaff))
	assert.Empty(t, m.PasswordHash)

	_, err = staff.Authenticate(ctx, "ana", "wrong")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	_, err = staff.Authenticate(ctx, "nobody", "s3cretpass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestStaff_ShortPasswordRejected(t *testing.T) {
	staff := newStaff(t)
	_, err := staff.Create(context.Background(), NewStaffMember{
		Name: "Ana", NationalID: "1", Role: "barber", Username: "ana", Password: "short",
	})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestStaff_MultibytePasswordOverBcryptLimit(t *testing.T) {
	staff := newStaff(t)
	// 40 runes, 80 bytes: within the rune limit of the tag, over bcrypt's.
	password := strings.Repeat("é", 40)

	_, err := staff.Create(context.Background(), NewStaffMember{
		Name: "Ana", NationalID: "1", Role: "barber", Username: "ana", Password: password,
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "password must be at most 72 bytes", verr.Error())
	assert.Empty(t, staff.List())
}

func TestStaff_BootstrapOnlyWhenEmpty(t *testing.T) {
	ctx := context.Background()
	staff := newStaff(t)

	admin, created, err := staff.Bootstrap(ctx, NewStaffMember{
		Name: "Owner", NationalID: "000", Username: "owner", Password: "changeme1",
	})
	require.NoError(t, err)
	require.True(t, created)
	assert.Equal(t, domain.RoleAdministrator, admin.Role)
	assert.True(t, admin.Can(domain.PermissionManageStaff))

	_, created, err = staff.Bootstrap(ctx, NewStaffMember{
		Name: "Second", NationalID: "001", Username: "second", Password: "changeme2",
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Len(t, staff.List(), 1)
}

func TestServices_SeedCatalogIsIdempotent(t *testing.T) {
	ctx := context.Background()
	sub := newSubstrate(t)
	services := NewServices(sub, store.Options{})
	services.Load(ctx)

	added, err := services.SeedCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(domain.Catalog()), added)

	added, err = services.SeedCatalog(ctx)
	require.NoError(t, err)
	assert.Zero(t, added)

	reloaded := NewServices(sub, store.Options{})
	reloaded.Load(ctx)
	svc, ok := reloaded.FindServiceByID(ctx, 1)
	require.True(t, ok)
	assert.Equal(t, domain.CatalogHaircut, svc.Entry)
	assert.Equal(t, int64(3500), svc.PriceCents())
}

func TestServices_Create(t *testing.T) {
	ctx := context.Background()
	services := NewServices(newSubstrate(t), store.Options{})
	services.Load(ctx)

	svc, err := services.Create(ctx, domain.CatalogBeardTrim)
	require.NoError(t, err)
	assert.Equal(t, "Beard trim", svc.Name())

	_, err = services.Create(ctx, domain.CatalogBeardTrim)
	assert.ErrorIs(t, err, store.ErrConflict)

	_, err = services.Create(ctx, "MANICURE")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}
