package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-system/internal/app/audit"
	"pos-system/internal/common/logger"
	"pos-system/internal/domain"
)

// fakeRepo is an in-memory RepositoryInterface good enough for service tests.
type fakeRepo struct {
	orders map[string]*domain.Order
	items  map[string]*domain.OrderItem

	versionConflict bool   // force UpdateItemQuantity to fail once
	beforeConfirm   func() // runs at the start of ConfirmPaymentTx
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		orders: map[string]*domain.Order{},
		items:  map[string]*domain.OrderItem{},
	}
}

func (f *fakeRepo) addOrder(o domain.Order) *domain.Order {
	if o.Version == 0 {
		o.Version = 1
	}
	f.orders[o.ID] = &o
	return f.orders[o.ID]
}

func (f *fakeRepo) OpenOrderTx(_ context.Context, order domain.Order) (domain.Order, error) {
	for _, o := range f.orders {
		if o.TableID == order.TableID && o.Status == domain.OrderPending {
			return domain.Order{}, domain.Conflictf("table already has an open order")
		}
	}
	order.Version = 1
	f.orders[order.ID] = &order
	return order, nil
}

func (f *fakeRepo) GetOrder(_ context.Context, orderID string) (domain.Order, error) {
	o, ok := f.orders[orderID]
	if !ok {
		return domain.Order{}, &domain.NotFoundError{Entity: "order", ID: orderID}
	}
	return *o, nil
}

func (f *fakeRepo) ListItems(_ context.Context, orderID string) ([]domain.OrderItem, error) {
	var out []domain.OrderItem
	for _, i := range f.items {
		if i.OrderID == orderID {
			out = append(out, *i)
		}
	}
	return out, nil
}

func (f *fakeRepo) FindItemByCatalog(_ context.Context, orderID string, kind domain.ItemKind, catalogID string) (domain.OrderItem, bool, error) {
	for _, i := range f.items {
		if i.OrderID != orderID || i.Kind() != kind {
			continue
		}
		switch kind {
		case domain.KindFood:
			if i.MenuItemID != nil && *i.MenuItemID == catalogID {
				return *i, true, nil
			}
		case domain.KindDrink:
			if i.DrinkID != nil && *i.DrinkID == catalogID {
				return *i, true, nil
			}
		}
	}
	return domain.OrderItem{}, false, nil
}

func (f *fakeRepo) InsertItem(_ context.Context, item domain.OrderItem) (domain.OrderItem, error) {
	item.Version = 1
	f.items[item.ID] = &item
	return item, nil
}

func (f *fakeRepo) UpdateItemQuantity(_ context.Context, itemID string, version int64, quantity int, total float64) (domain.OrderItem, error) {
	if f.versionConflict {
		f.versionConflict = false
		return domain.OrderItem{}, domain.ErrVersionConflict
	}
	i, ok := f.items[itemID]
	if !ok || i.Version != version {
		return domain.OrderItem{}, domain.ErrVersionConflict
	}
	i.Quantity = quantity
	i.Total = total
	i.Version++
	return *i, nil
}

func (f *fakeRepo) DeleteItem(_ context.Context, orderID, itemID string) error {
	i, ok := f.items[itemID]
	if !ok || i.OrderID != orderID {
		return &domain.NotFoundError{Entity: "order item", ID: itemID}
	}
	delete(f.items, itemID)
	return nil
}

func (f *fakeRepo) SetBillPrinted(_ context.Context, orderID string, printed bool) error {
	o, ok := f.orders[orderID]
	if !ok {
		return &domain.NotFoundError{Entity: "order", ID: orderID}
	}
	o.BillPrinted = printed
	return nil
}

func (f *fakeRepo) SetKitchenPrinted(_ context.Context, orderID string, printed bool) error {
	o, ok := f.orders[orderID]
	if !ok {
		return &domain.NotFoundError{Entity: "order", ID: orderID}
	}
	o.Printed = printed
	return nil
}

func (f *fakeRepo) ConfirmPaymentTx(_ context.Context, orderID string, version int64, cash, card, balance, total float64) (domain.Order, error) {
	if f.beforeConfirm != nil {
		f.beforeConfirm()
	}
	o, ok := f.orders[orderID]
	if !ok || o.Version != version || o.Status != domain.OrderPending {
		return domain.Order{}, domain.ErrVersionConflict
	}
	// mirrors the real store: the line sum is re-read under the order lock
	var sum float64
	for _, i := range f.items {
		if i.OrderID == orderID {
			sum += i.Total
		}
	}
	if domain.RoundCents(sum) != total {
		return domain.Order{}, domain.ErrVersionConflict
	}
	o.Status = domain.OrderServed
	o.Cash, o.Card, o.Balance, o.Total = cash, card, balance, total
	o.Version++
	return *o, nil
}

// recordingAudit captures the actions sent to the recorder.
type recordingAudit struct {
	actions []string
}

func (r *recordingAudit) Record(_ context.Context, _ string, action string, _ map[string]any) {
	r.actions = append(r.actions, action)
}

func newTestService(repo RepositoryInterface, rec audit.Recorder) *Service {
	if rec == nil {
		rec = audit.NopRecorder{}
	}
	return NewService(repo, rec, logger.New("test"))
}

func foodRef(id, name string, price float64) domain.CatalogRef {
	return domain.CatalogRef{Kind: domain.KindFood, ID: id, Name: name, Price: price}
}

func TestOpenOrderRejectsSecondSession(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	first, err := svc.OpenOrder(ctx, "t1", "w1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderPending, first.Status)

	_, err = svc.OpenOrder(ctx, "t1", "w2")
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestAddSameItemTwiceIncrementsQuantity(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	order, err := svc.OpenOrder(ctx, "t1", "w1")
	require.NoError(t, err)

	ref := foodRef("m1", "Margherita", 8.99)
	first, err := svc.AddOrIncrementItem(ctx, order.ID, ref)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Quantity)
	assert.Equal(t, 8.99, first.Total)

	second, err := svc.AddOrIncrementItem(ctx, order.ID, ref)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "same catalog item must reuse the line")
	assert.Equal(t, 2, second.Quantity)
	assert.Equal(t, 17.98, second.Total)

	items, err := svc.ListItems(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestAddDistinctItemsCreatesSeparateLines(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	order, err := svc.OpenOrder(ctx, "t1", "w1")
	require.NoError(t, err)

	_, err = svc.AddOrIncrementItem(ctx, order.ID, foodRef("m1", "Margherita", 8.99))
	require.NoError(t, err)
	_, err = svc.AddOrIncrementItem(ctx, order.ID, domain.CatalogRef{Kind: domain.KindDrink, ID: "d1", Name: "Cola", Price: 2.5})
	require.NoError(t, err)

	totals, err := svc.Totals(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, totals.Quantity)
	assert.Equal(t, 11.49, totals.Price)
}

func TestAddAfterBillPrintedResetsFlag(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	order, err := svc.OpenOrder(ctx, "t1", "w1")
	require.NoError(t, err)
	require.NoError(t, svc.MarkBillPrinted(ctx, "w1", order.ID))

	_, err = svc.AddOrIncrementItem(ctx, order.ID, foodRef("m1", "Margherita", 8.99))
	require.NoError(t, err)

	got, err := svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.False(t, got.BillPrinted, "adding an item must invalidate the printed bill")
}

func TestServedOrderRejectsMutation(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	served := repo.addOrder(domain.Order{ID: "o1", TableID: "t1", Status: domain.OrderServed})

	_, err := svc.AddOrIncrementItem(ctx, served.ID, foodRef("m1", "Margherita", 8.99))
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)

	err = svc.RemoveItem(ctx, served.ID, "whatever")
	require.ErrorAs(t, err, &conflict)

	_, err = svc.ConfirmPayment(ctx, "w1", served.ID, 10, 0)
	require.ErrorAs(t, err, &conflict)
}

func TestRemoveItemSurfacesMissingLine(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	order, err := svc.OpenOrder(ctx, "t1", "w1")
	require.NoError(t, err)

	err = svc.RemoveItem(ctx, order.ID, "nope")
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestConfirmPaymentHappyPath(t *testing.T) {
	repo := newFakeRepo()
	rec := &recordingAudit{}
	svc := newTestService(repo, rec)
	ctx := context.Background()

	order, err := svc.OpenOrder(ctx, "t1", "w1")
	require.NoError(t, err)
	_, err = svc.AddOrIncrementItem(ctx, order.ID, foodRef("m1", "Margherita", 8.99))
	require.NoError(t, err)

	res, err := svc.ConfirmPayment(ctx, "cashier", order.ID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderServed, res.Order.Status)
	assert.Equal(t, 1.01, res.Balance)
	assert.Equal(t, 8.99, res.Order.Total)
	assert.Contains(t, rec.actions, audit.ActionPaymentConfirmed)
}

func TestConfirmPaymentSplitTender(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	order, err := svc.OpenOrder(ctx, "t1", "w1")
	require.NoError(t, err)
	_, err = svc.AddOrIncrementItem(ctx, order.ID, foodRef("m1", "Margherita", 8.99))
	require.NoError(t, err)

	res, err := svc.ConfirmPayment(ctx, "cashier", order.ID, 4, 4.99)
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Balance)
	assert.Equal(t, 4.0, res.Order.Cash)
	assert.Equal(t, 4.99, res.Order.Card)
}

func TestConfirmPaymentInsufficient(t *testing.T) {
	repo := newFakeRepo()
	rec := &recordingAudit{}
	svc := newTestService(repo, rec)
	ctx := context.Background()

	order, err := svc.OpenOrder(ctx, "t1", "w1")
	require.NoError(t, err)
	_, err = svc.AddOrIncrementItem(ctx, order.ID, foodRef("m1", "Margherita", 8.99))
	require.NoError(t, err)

	_, err = svc.ConfirmPayment(ctx, "cashier", order.ID, 5, 0)
	var insufficient *domain.InsufficientPaymentError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 8.99, insufficient.Required)
	assert.Equal(t, 5.0, insufficient.Offered)
	assert.Contains(t, rec.actions, audit.ActionPaymentFailed)

	// the order must still be open
	got, err := svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderPending, got.Status)
}

func TestConfirmPaymentRejectsZeroAndNegative(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	order, err := svc.OpenOrder(ctx, "t1", "w1")
	require.NoError(t, err)
	_, err = svc.AddOrIncrementItem(ctx, order.ID, foodRef("m1", "Margherita", 8.99))
	require.NoError(t, err)

	_, err = svc.ConfirmPayment(ctx, "cashier", order.ID, -1, 10)
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)

	_, err = svc.ConfirmPayment(ctx, "cashier", order.ID, 0, 0)
	var insufficient *domain.InsufficientPaymentError
	require.ErrorAs(t, err, &insufficient)
}

func TestConfirmPaymentRejectsLineAddedDuringClose(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	order, err := svc.OpenOrder(ctx, "t1", "w1")
	require.NoError(t, err)
	_, err = svc.AddOrIncrementItem(ctx, order.ID, foodRef("m1", "Margherita", 8.99))
	require.NoError(t, err)

	// a second waiter slips in one more line after the cashier priced the
	// order but before the close commits
	repo.beforeConfirm = func() {
		repo.beforeConfirm = nil
		menuID := "m2"
		repo.items["late"] = &domain.OrderItem{
			ID: "late", OrderID: order.ID, MenuItemID: &menuID,
			Name: "Calzone", Quantity: 1, UnitPrice: 5, Total: 5,
			Status: domain.ItemPending, Version: 1,
		}
	}

	_, err = svc.ConfirmPayment(ctx, "cashier", order.ID, 8.99, 0)
	require.ErrorIs(t, err, domain.ErrVersionConflict)

	// nothing closed: the order is still open and every line still owed
	got, err := svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderPending, got.Status)
	totals, err := svc.Totals(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 13.99, totals.Price)
}

func TestIncrementVersionConflictSurfaces(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil)
	ctx := context.Background()

	order, err := svc.OpenOrder(ctx, "t1", "w1")
	require.NoError(t, err)
	ref := foodRef("m1", "Margherita", 8.99)
	_, err = svc.AddOrIncrementItem(ctx, order.ID, ref)
	require.NoError(t, err)

	repo.versionConflict = true
	_, err = svc.AddOrIncrementItem(ctx, order.ID, ref)
	require.ErrorIs(t, err, domain.ErrVersionConflict)
}

func TestSumItemsRoundsAggregate(t *testing.T) {
	items := []domain.OrderItem{
		{Quantity: 3, Total: domain.LineTotal(0.1, 3)},
		{Quantity: 1, Total: 2.5},
	}
	totals := SumItems(items)
	assert.Equal(t, 4, totals.Quantity)
	assert.Equal(t, 2.8, totals.Price)
}
