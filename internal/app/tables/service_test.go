package tables

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-system/internal/app/staff"
	"pos-system/internal/common/logger"
	"pos-system/internal/domain"
)

type fakeTableRepo struct {
	tables     map[string]*domain.Table
	pending    map[string]*domain.Order // tableID -> open order
	itemCounts map[string]int           // orderID -> item count
	aggregates map[string]domain.OrderAggregate

	resetCalls int
}

func newFakeTableRepo() *fakeTableRepo {
	return &fakeTableRepo{
		tables:     map[string]*domain.Table{},
		pending:    map[string]*domain.Order{},
		itemCounts: map[string]int{},
		aggregates: map[string]domain.OrderAggregate{},
	}
}

func (f *fakeTableRepo) List(_ context.Context, status domain.TableStatus, visibleTo string) ([]domain.Table, error) {
	var out []domain.Table
	for _, t := range f.tables {
		if status != "" && t.Status != status {
			continue
		}
		if visibleTo != "" && t.Status != domain.TableAvailable {
			if t.AssignedEmployee == nil || *t.AssignedEmployee != visibleTo {
				continue
			}
		}
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeTableRepo) Get(_ context.Context, id string) (domain.Table, error) {
	t, ok := f.tables[id]
	if !ok {
		return domain.Table{}, &domain.NotFoundError{Entity: "table", ID: id}
	}
	return *t, nil
}

func (f *fakeTableRepo) Insert(_ context.Context, t domain.Table) error {
	f.tables[t.ID] = &t
	return nil
}

func (f *fakeTableRepo) FindPendingOrder(_ context.Context, tableID string) (domain.Order, bool, error) {
	o, ok := f.pending[tableID]
	if !ok {
		return domain.Order{}, false, nil
	}
	return *o, true, nil
}

func (f *fakeTableRepo) CountItems(_ context.Context, orderID string) (int, error) {
	return f.itemCounts[orderID], nil
}

func (f *fakeTableRepo) ResetTx(_ context.Context, tableID, orderID string) error {
	f.resetCalls++
	delete(f.pending, tableID)
	if t, ok := f.tables[tableID]; ok {
		t.Status = domain.TableAvailable
		t.AssignedEmployee = nil
	}
	return nil
}

func (f *fakeTableRepo) GetAggregate(_ context.Context, tableID string) (domain.OrderAggregate, error) {
	agg, ok := f.aggregates[tableID]
	if !ok {
		return domain.OrderAggregate{}, &domain.NotFoundError{Entity: "open order for table", ID: tableID}
	}
	return agg, nil
}

func (f *fakeTableRepo) ListAssignable(_ context.Context) ([]domain.Employee, error) {
	return []domain.Employee{{ID: "w1", Name: "ana", Role: domain.RoleWaiter}}, nil
}

// fakeLedger only implements OpenOrder meaningfully; the rest is unused here.
type fakeLedger struct {
	opened []string // tableIDs
	err    error
}

func (f *fakeLedger) OpenOrder(_ context.Context, tableID, waiterID string) (domain.Order, error) {
	if f.err != nil {
		return domain.Order{}, f.err
	}
	f.opened = append(f.opened, tableID)
	return domain.Order{ID: "o-" + tableID, TableID: tableID, WaiterID: waiterID, Status: domain.OrderPending}, nil
}

func (f *fakeLedger) AddOrIncrementItem(context.Context, string, domain.CatalogRef) (domain.OrderItem, error) {
	return domain.OrderItem{}, nil
}
func (f *fakeLedger) RemoveItem(context.Context, string, string) error { return nil }
func (f *fakeLedger) Totals(context.Context, string) (domain.Totals, error) {
	return domain.Totals{}, nil
}
func (f *fakeLedger) ConfirmPayment(context.Context, string, string, float64, float64) (domain.PaymentResult, error) {
	return domain.PaymentResult{}, nil
}
func (f *fakeLedger) MarkBillPrinted(context.Context, string, string) error    { return nil }
func (f *fakeLedger) MarkKitchenPrinted(context.Context, string, string) error { return nil }
func (f *fakeLedger) GetOrder(context.Context, string) (domain.Order, error) {
	return domain.Order{}, nil
}
func (f *fakeLedger) ListItems(context.Context, string) ([]domain.OrderItem, error) {
	return nil, nil
}

func newTablesService(repo RepositoryInterface, ldg *fakeLedger) *Service {
	if ldg == nil {
		ldg = &fakeLedger{}
	}
	return NewService(repo, ldg, nil, logger.New("test"))
}

func waiter(id string) staff.Identity {
	return staff.Identity{EmployeeID: id, Name: "waiter-" + id, Role: domain.RoleWaiter}
}

func admin() staff.Identity {
	return staff.Identity{EmployeeID: "a1", Name: "boss", Role: domain.RoleAdmin}
}

func TestListTablesWaiterVisibility(t *testing.T) {
	repo := newFakeTableRepo()
	w1 := "w1"
	w2 := "w2"
	repo.tables["t1"] = &domain.Table{ID: "t1", TableNo: "1", Status: domain.TableAvailable}
	repo.tables["t2"] = &domain.Table{ID: "t2", TableNo: "2", Status: domain.TableOccupied, AssignedEmployee: &w1}
	repo.tables["t3"] = &domain.Table{ID: "t3", TableNo: "3", Status: domain.TableOccupied, AssignedEmployee: &w2}
	svc := newTablesService(repo, nil)
	ctx := context.Background()

	mine, err := svc.ListTables(ctx, FilterAll, waiter("w1"))
	require.NoError(t, err)
	assert.Len(t, mine, 2, "waiter sees available tables plus their own")

	all, err := svc.ListTables(ctx, FilterAll, admin())
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestListTablesRejectsUnknownFilter(t *testing.T) {
	svc := newTablesService(newFakeTableRepo(), nil)
	_, err := svc.ListTables(context.Background(), Filter("weird"), admin())
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestAssignWaiterAssignsSelf(t *testing.T) {
	repo := newFakeTableRepo()
	ldg := &fakeLedger{}
	svc := newTablesService(repo, ldg)

	order, err := svc.Assign(context.Background(), "t1", waiter("w1"), "ignored")
	require.NoError(t, err)
	assert.Equal(t, "w1", order.WaiterID, "waiter assignment always targets the caller")
	assert.Equal(t, []string{"t1"}, ldg.opened)
}

func TestAssignAdminRequiresWaiterID(t *testing.T) {
	svc := newTablesService(newFakeTableRepo(), nil)
	ctx := context.Background()

	_, err := svc.Assign(ctx, "t1", admin(), "")
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)

	order, err := svc.Assign(ctx, "t1", admin(), "w2")
	require.NoError(t, err)
	assert.Equal(t, "w2", order.WaiterID)
}

func TestAssignRejectsOtherRoles(t *testing.T) {
	svc := newTablesService(newFakeTableRepo(), nil)
	_, err := svc.Assign(context.Background(), "t1",
		staff.Identity{EmployeeID: "c1", Role: domain.RoleChef}, "")
	var denied *domain.AccessDeniedError
	require.ErrorAs(t, err, &denied)
}

func TestResetEmptySessionFreesTable(t *testing.T) {
	repo := newFakeTableRepo()
	w1 := "w1"
	repo.tables["t1"] = &domain.Table{ID: "t1", TableNo: "1", Status: domain.TableOccupied, AssignedEmployee: &w1}
	repo.pending["t1"] = &domain.Order{ID: "o1", TableID: "t1", Status: domain.OrderPending}
	svc := newTablesService(repo, nil)

	require.NoError(t, svc.Reset(context.Background(), "t1"))
	assert.Equal(t, 1, repo.resetCalls)
	assert.Equal(t, domain.TableAvailable, repo.tables["t1"].Status)
}

func TestResetRejectsSessionWithItems(t *testing.T) {
	repo := newFakeTableRepo()
	w1 := "w1"
	repo.tables["t1"] = &domain.Table{ID: "t1", TableNo: "1", Status: domain.TableOccupied, AssignedEmployee: &w1}
	repo.pending["t1"] = &domain.Order{ID: "o1", TableID: "t1", Status: domain.OrderPending}
	repo.itemCounts["o1"] = 2
	svc := newTablesService(repo, nil)

	err := svc.Reset(context.Background(), "t1")
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Zero(t, repo.resetCalls)
}

func TestResetAvailableTableIsNoop(t *testing.T) {
	repo := newFakeTableRepo()
	repo.tables["t1"] = &domain.Table{ID: "t1", TableNo: "1", Status: domain.TableAvailable}
	svc := newTablesService(repo, nil)

	require.NoError(t, svc.Reset(context.Background(), "t1"))
	assert.Zero(t, repo.resetCalls)
}

func TestResetOccupiedWithoutOrderConflicts(t *testing.T) {
	repo := newFakeTableRepo()
	repo.tables["t1"] = &domain.Table{ID: "t1", TableNo: "1", Status: domain.TableOccupied}
	svc := newTablesService(repo, nil)

	err := svc.Reset(context.Background(), "t1")
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestOpenOccupiedEnforcesOwnership(t *testing.T) {
	repo := newFakeTableRepo()
	repo.aggregates["t1"] = domain.OrderAggregate{
		Order:   domain.Order{ID: "o1", WaiterID: "w1"},
		TableNo: "1",
	}
	svc := newTablesService(repo, nil)
	ctx := context.Background()

	_, err := svc.OpenOccupied(ctx, "t1", waiter("w2"))
	var denied *domain.AccessDeniedError
	require.ErrorAs(t, err, &denied)

	agg, err := svc.OpenOccupied(ctx, "t1", waiter("w1"))
	require.NoError(t, err)
	assert.Equal(t, "o1", agg.Order.ID)

	// admins bypass the ownership check
	_, err = svc.OpenOccupied(ctx, "t1", admin())
	require.NoError(t, err)
}

func TestCreateTableRejectsDuplicateNumber(t *testing.T) {
	repo := newFakeTableRepo()
	svc := newTablesService(repo, nil)
	ctx := context.Background()

	created, err := svc.CreateTable(ctx, " T1 ")
	require.NoError(t, err)
	assert.Equal(t, "T1", created.TableNo)

	_, err = svc.CreateTable(ctx, "t1")
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)

	_, err = svc.CreateTable(ctx, "  ")
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
}
