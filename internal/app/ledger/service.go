package ledger

import (
	"context"

	"github.com/google/uuid"

	"pos-system/internal/app/audit"
	"pos-system/internal/common/logger"
	"pos-system/internal/domain"
)

type ServiceInterface interface {
	OpenOrder(ctx context.Context, tableID, waiterID string) (domain.Order, error)
	AddOrIncrementItem(ctx context.Context, orderID string, ref domain.CatalogRef) (domain.OrderItem, error)
	RemoveItem(ctx context.Context, orderID, itemID string) error
	Totals(ctx context.Context, orderID string) (domain.Totals, error)
	ConfirmPayment(ctx context.Context, actor, orderID string, cash, card float64) (domain.PaymentResult, error)
	MarkBillPrinted(ctx context.Context, actor, orderID string) error
	MarkKitchenPrinted(ctx context.Context, actor, orderID string) error
	GetOrder(ctx context.Context, orderID string) (domain.Order, error)
	ListItems(ctx context.Context, orderID string) ([]domain.OrderItem, error)
}

type Service struct {
	repo     RepositoryInterface
	recorder audit.Recorder
	lg       *logger.Logger
}

func NewService(repo RepositoryInterface, recorder audit.Recorder, lg *logger.Logger) *Service {
	return &Service{repo: repo, recorder: recorder, lg: lg}
}

// OpenOrder starts the billing session for a table. The table flip and the
// order insert happen in one transaction so a crash cannot leave an occupied
// table without an order.
func (s *Service) OpenOrder(ctx context.Context, tableID, waiterID string) (domain.Order, error) {
	order, err := s.repo.OpenOrderTx(ctx, domain.Order{
		ID:       uuid.NewString(),
		TableID:  tableID,
		WaiterID: waiterID,
		Status:   domain.OrderPending,
	})
	if err != nil {
		return domain.Order{}, err
	}
	s.lg.Info("order_opened", map[string]any{"order_id": order.ID, "table_id": tableID, "waiter_id": waiterID})
	return order, nil
}

// AddOrIncrementItem adds one unit of a catalog item. A repeat add of the
// same catalog item bumps the quantity of the existing line instead of
// creating a second row. Adding anything after the bill was printed
// invalidates that printed bill.
func (s *Service) AddOrIncrementItem(ctx context.Context, orderID string, ref domain.CatalogRef) (domain.OrderItem, error) {
	order, err := s.mutableOrder(ctx, orderID)
	if err != nil {
		return domain.OrderItem{}, err
	}

	existing, found, err := s.repo.FindItemByCatalog(ctx, orderID, ref.Kind, ref.ID)
	if err != nil {
		return domain.OrderItem{}, err
	}

	var item domain.OrderItem
	if found {
		qty := existing.Quantity + 1
		item, err = s.repo.UpdateItemQuantity(ctx, existing.ID, existing.Version,
			qty, domain.LineTotal(existing.UnitPrice, qty))
	} else {
		next := domain.OrderItem{
			ID:        uuid.NewString(),
			OrderID:   orderID,
			Name:      ref.Name,
			Quantity:  1,
			UnitPrice: ref.Price,
			Total:     domain.LineTotal(ref.Price, 1),
			Status:    domain.ItemPending,
		}
		if ref.Kind == domain.KindDrink {
			id := ref.ID
			next.DrinkID = &id
		} else {
			id := ref.ID
			next.MenuItemID = &id
		}
		item, err = s.repo.InsertItem(ctx, next)
	}
	if err != nil {
		return domain.OrderItem{}, err
	}

	if order.BillPrinted {
		if err := s.repo.SetBillPrinted(ctx, orderID, false); err != nil {
			return domain.OrderItem{}, err
		}
	}
	return item, nil
}

// RemoveItem deletes a line. Failures surface to the caller; the in-memory
// view is never updated as if a failed delete had succeeded.
func (s *Service) RemoveItem(ctx context.Context, orderID, itemID string) error {
	if _, err := s.mutableOrder(ctx, orderID); err != nil {
		return err
	}
	return s.repo.DeleteItem(ctx, orderID, itemID)
}

func (s *Service) Totals(ctx context.Context, orderID string) (domain.Totals, error) {
	items, err := s.repo.ListItems(ctx, orderID)
	if err != nil {
		return domain.Totals{}, err
	}
	return SumItems(items), nil
}

// SumItems is the single reduction both the ledger and the printers use.
func SumItems(items []domain.OrderItem) domain.Totals {
	var t domain.Totals
	for _, i := range items {
		t.Quantity += i.Quantity
		t.Price += i.Total
	}
	t.Price = domain.RoundCents(t.Price)
	return t
}

// ConfirmPayment is the terminal transition of an order. The payment must
// cover the full price and at least one of cash/card must be nonzero. On
// success the order closes and its table frees atomically.
func (s *Service) ConfirmPayment(ctx context.Context, actor, orderID string, cash, card float64) (domain.PaymentResult, error) {
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return domain.PaymentResult{}, err
	}
	if !domain.CanTransitionOrder(order.Status, domain.OrderServed) {
		return domain.PaymentResult{}, domain.Conflictf("order is already served")
	}
	if cash < 0 || card < 0 {
		return domain.PaymentResult{}, domain.Validationf("payment amounts cannot be negative")
	}

	totals, err := s.Totals(ctx, orderID)
	if err != nil {
		return domain.PaymentResult{}, err
	}

	offered := domain.RoundCents(cash + card)
	if offered <= 0 || offered < totals.Price {
		s.recorder.Record(ctx, actor, audit.ActionPaymentFailed, map[string]any{
			"order_id": orderID, "offered": offered, "required": totals.Price,
		})
		return domain.PaymentResult{}, &domain.InsufficientPaymentError{
			Required: totals.Price, Offered: offered,
		}
	}

	balance := domain.RoundCents(offered - totals.Price)
	closed, err := s.repo.ConfirmPaymentTx(ctx, orderID, order.Version,
		domain.RoundCents(cash), domain.RoundCents(card), balance, totals.Price)
	if err != nil {
		return domain.PaymentResult{}, err
	}

	s.recorder.Record(ctx, actor, audit.ActionPaymentConfirmed, map[string]any{
		"order_id": orderID, "total": totals.Price, "cash": closed.Cash,
		"card": closed.Card, "balance": balance,
	})
	s.lg.Info("payment_confirmed", map[string]any{"order_id": orderID, "total": totals.Price})
	return domain.PaymentResult{Order: closed, Balance: balance}, nil
}

func (s *Service) MarkBillPrinted(ctx context.Context, actor, orderID string) error {
	if err := s.repo.SetBillPrinted(ctx, orderID, true); err != nil {
		return err
	}
	s.recorder.Record(ctx, actor, audit.ActionBillPrinted, map[string]any{"order_id": orderID})
	return nil
}

func (s *Service) MarkKitchenPrinted(ctx context.Context, actor, orderID string) error {
	if err := s.repo.SetKitchenPrinted(ctx, orderID, true); err != nil {
		return err
	}
	s.recorder.Record(ctx, actor, audit.ActionKitchenTicketPrinted, map[string]any{"order_id": orderID})
	return nil
}

func (s *Service) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	return s.repo.GetOrder(ctx, orderID)
}

func (s *Service) ListItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	return s.repo.ListItems(ctx, orderID)
}

// mutableOrder loads an order and rejects mutation once it is served.
func (s *Service) mutableOrder(ctx context.Context, orderID string) (domain.Order, error) {
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if order.Status != domain.OrderPending {
		return domain.Order{}, domain.Conflictf("order is already served")
	}
	return order, nil
}
