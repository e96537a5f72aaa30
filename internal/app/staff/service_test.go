package staff

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-system/internal/app/audit"
	"pos-system/internal/domain"
)

type fakeStaffRepo struct {
	byName map[string]*domain.Employee
	byID   map[string]*domain.Employee
}

func newFakeStaffRepo() *fakeStaffRepo {
	return &fakeStaffRepo{
		byName: map[string]*domain.Employee{},
		byID:   map[string]*domain.Employee{},
	}
}

func (f *fakeStaffRepo) GetByName(_ context.Context, name string) (domain.Employee, error) {
	e, ok := f.byName[name]
	if !ok {
		return domain.Employee{}, &domain.NotFoundError{Entity: "employee", ID: name}
	}
	return *e, nil
}

func (f *fakeStaffRepo) GetByID(_ context.Context, id string) (domain.Employee, error) {
	e, ok := f.byID[id]
	if !ok {
		return domain.Employee{}, &domain.NotFoundError{Entity: "employee", ID: id}
	}
	return *e, nil
}

func (f *fakeStaffRepo) List(_ context.Context, includeInactive bool) ([]domain.Employee, error) {
	var out []domain.Employee
	for _, e := range f.byID {
		if !includeInactive && e.Status != domain.EmployeeActive {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

func (f *fakeStaffRepo) Insert(_ context.Context, e domain.Employee) error {
	stored := e
	f.byName[e.Name] = &stored
	f.byID[e.ID] = &stored
	return nil
}

func (f *fakeStaffRepo) Update(_ context.Context, e domain.Employee) error {
	old, ok := f.byID[e.ID]
	if !ok {
		return &domain.NotFoundError{Entity: "employee", ID: e.ID}
	}
	delete(f.byName, old.Name)
	stored := e
	f.byName[e.Name] = &stored
	f.byID[e.ID] = &stored
	return nil
}

func (f *fakeStaffRepo) SetStatus(_ context.Context, id string, status domain.EmployeeStatus) error {
	e, ok := f.byID[id]
	if !ok {
		return &domain.NotFoundError{Entity: "employee", ID: id}
	}
	e.Status = status
	return nil
}

func (f *fakeStaffRepo) CountAll(_ context.Context) (int, error) {
	return len(f.byID), nil
}

func newStaffService(repo RepositoryInterface) *Service {
	return NewService(repo, audit.NopRecorder{}, "test-secret")
}

func TestLoginRoundTrip(t *testing.T) {
	repo := newFakeStaffRepo()
	svc := newStaffService(repo)
	ctx := context.Background()

	created, err := svc.CreateEmployee(ctx, "ana", "1234", domain.RoleWaiter)
	require.NoError(t, err)
	assert.NotEqual(t, "1234", created.PasswordHash, "passwords are stored hashed")

	token, e, err := svc.Login(ctx, "ana", "1234")
	require.NoError(t, err)
	assert.Equal(t, created.ID, e.ID)

	claims, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.EmployeeID)
	assert.Equal(t, domain.RoleWaiter, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newFakeStaffRepo()
	svc := newStaffService(repo)
	ctx := context.Background()

	_, err := svc.CreateEmployee(ctx, "ana", "1234", domain.RoleWaiter)
	require.NoError(t, err)

	var denied *domain.AccessDeniedError
	_, _, err = svc.Login(ctx, "ana", "9999")
	require.ErrorAs(t, err, &denied)

	_, _, err = svc.Login(ctx, "nobody", "1234")
	require.ErrorAs(t, err, &denied)
}

func TestDeactivatedAccountCannotLogin(t *testing.T) {
	repo := newFakeStaffRepo()
	svc := newStaffService(repo)
	ctx := context.Background()

	e, err := svc.CreateEmployee(ctx, "ana", "1234", domain.RoleWaiter)
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(ctx, e.ID))

	var denied *domain.AccessDeniedError
	_, _, err = svc.Login(ctx, "ana", "1234")
	require.ErrorAs(t, err, &denied)

	// the row is still there, just inactive
	all, err := svc.ListEmployees(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, domain.EmployeeInactive, all[0].Status)

	active, err := svc.ListEmployees(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, active)

	require.NoError(t, svc.Reactivate(ctx, e.ID))
	_, _, err = svc.Login(ctx, "ana", "1234")
	require.NoError(t, err)
}

func TestCreateEmployeeValidation(t *testing.T) {
	svc := newStaffService(newFakeStaffRepo())
	ctx := context.Background()

	var validation *domain.ValidationError
	_, err := svc.CreateEmployee(ctx, "", "1234", domain.RoleWaiter)
	require.ErrorAs(t, err, &validation)

	_, err = svc.CreateEmployee(ctx, "ana", "123", domain.RoleWaiter)
	require.ErrorAs(t, err, &validation)

	_, err = svc.CreateEmployee(ctx, "ana", "1234", domain.Role("manager"))
	require.ErrorAs(t, err, &validation)
}

func TestCreateEmployeeDuplicateName(t *testing.T) {
	svc := newStaffService(newFakeStaffRepo())
	ctx := context.Background()

	_, err := svc.CreateEmployee(ctx, "ana", "1234", domain.RoleWaiter)
	require.NoError(t, err)

	var conflict *domain.ConflictError
	_, err = svc.CreateEmployee(ctx, "ana", "5678", domain.RoleChef)
	require.ErrorAs(t, err, &conflict)
}

func TestUpdateEmployeeKeepsPasswordWhenEmpty(t *testing.T) {
	repo := newFakeStaffRepo()
	svc := newStaffService(repo)
	ctx := context.Background()

	e, err := svc.CreateEmployee(ctx, "ana", "1234", domain.RoleWaiter)
	require.NoError(t, err)

	_, err = svc.UpdateEmployee(ctx, e.ID, "ana maria", "", domain.RoleCashier)
	require.NoError(t, err)

	_, got, err := svc.Login(ctx, "ana maria", "1234")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCashier, got.Role)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	svc := newStaffService(newFakeStaffRepo())
	var denied *domain.AccessDeniedError
	_, err := svc.ParseToken("not-a-jwt")
	require.ErrorAs(t, err, &denied)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	repo := newFakeStaffRepo()
	issuer := newStaffService(repo)
	ctx := context.Background()

	_, err := issuer.CreateEmployee(ctx, "ana", "1234", domain.RoleWaiter)
	require.NoError(t, err)
	token, _, err := issuer.Login(ctx, "ana", "1234")
	require.NoError(t, err)

	verifier := NewService(repo, audit.NopRecorder{}, "other-secret")
	var denied *domain.AccessDeniedError
	_, err = verifier.ParseToken(token)
	require.ErrorAs(t, err, &denied)
}

func TestEnsureAdminBootstrapsOnce(t *testing.T) {
	repo := newFakeStaffRepo()
	svc := newStaffService(repo)
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, "secret"))
	_, admin, err := svc.Login(ctx, "admin", "secret")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, admin.Role)

	// second boot on a populated database must not touch anything
	require.NoError(t, svc.EnsureAdmin(ctx, "different"))
	_, _, err = svc.Login(ctx, "admin", "secret")
	require.NoError(t, err)
}
