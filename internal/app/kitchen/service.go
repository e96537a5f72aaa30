package kitchen

import (
	"context"
	"encoding/json"
	"time"

	"pos-system/internal/common/logger"
	"pos-system/internal/connections/redisx"
	"pos-system/internal/domain"
)

// servedWindow is the rolling window of the served board; older served
// items drop off the view (not out of the database).
const servedWindow = 24 * time.Hour

type ServiceInterface interface {
	Pending(ctx context.Context) ([]domain.Ticket, error)
	Ready(ctx context.Context) ([]domain.Ticket, error)
	Served(ctx context.Context) ([]domain.Ticket, error)
	StartCooking(ctx context.Context, actor, itemID string) (domain.Ticket, error)
	MarkReady(ctx context.Context, actor, itemID string) (domain.Ticket, error)
	Serve(ctx context.Context, actor, itemID string) (domain.Ticket, error)
	CancelPendingItem(ctx context.Context, itemID string) error
}

type Service struct {
	repo     RepositoryInterface
	notifier Notifier
	cache    *redisx.Cache
	lg       *logger.Logger
	now      func() time.Time
}

// NewService builds the queue. cache may be nil (tests); notifier must not
// be nil (use NopNotifier).
func NewService(repo RepositoryInterface, notifier Notifier, cache *redisx.Cache, lg *logger.Logger) *Service {
	return &Service{repo: repo, notifier: notifier, cache: cache, lg: lg, now: time.Now}
}

func (s *Service) Pending(ctx context.Context) ([]domain.Ticket, error) {
	return s.cachedView(ctx, "pending", func() ([]domain.Ticket, error) {
		return s.repo.PendingTickets(ctx)
	})
}

func (s *Service) Ready(ctx context.Context) ([]domain.Ticket, error) {
	return s.cachedView(ctx, "ready", func() ([]domain.Ticket, error) {
		return s.repo.ReadyTickets(ctx)
	})
}

func (s *Service) Served(ctx context.Context) ([]domain.Ticket, error) {
	return s.cachedView(ctx, "served", func() ([]domain.Ticket, error) {
		return s.repo.ServedTickets(ctx, s.now().UTC().Add(-servedWindow))
	})
}

func (s *Service) cachedView(ctx context.Context, name string, load func() ([]domain.Ticket, error)) ([]domain.Ticket, error) {
	key := redisx.KeyKitchenView + name
	if b, ok := s.cache.Get(ctx, key); ok {
		var cached []domain.Ticket
		if json.Unmarshal(b, &cached) == nil {
			return cached, nil
		}
	}
	out, err := load()
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(out); err == nil {
		s.cache.Set(ctx, key, b, redisx.TTLBoard)
	}
	return out, nil
}

// StartCooking advances pending -> cooking. Re-requesting a transition on an
// item that already moved on is a no-op, not an error.
func (s *Service) StartCooking(ctx context.Context, actor, itemID string) (domain.Ticket, error) {
	return s.advance(ctx, actor, itemID, domain.ItemPending, domain.ItemCooking, "pending", "ready")
}

func (s *Service) MarkReady(ctx context.Context, actor, itemID string) (domain.Ticket, error) {
	return s.advance(ctx, actor, itemID, domain.ItemCooking, domain.ItemReady, "pending", "ready")
}

func (s *Service) Serve(ctx context.Context, actor, itemID string) (domain.Ticket, error) {
	return s.advance(ctx, actor, itemID, domain.ItemReady, domain.ItemServed, "ready", "served")
}

func (s *Service) advance(ctx context.Context, actor, itemID string, from, to domain.ItemStatus, views ...string) (domain.Ticket, error) {
	if !domain.CanTransitionItem(from, to) {
		return domain.Ticket{}, domain.Conflictf("cannot move a kitchen item from %s to %s", from, to)
	}
	moved, err := s.repo.AdvanceStatus(ctx, itemID, from, to)
	if err != nil {
		return domain.Ticket{}, err
	}

	ticket, err := s.repo.GetTicket(ctx, itemID)
	if err != nil {
		return domain.Ticket{}, err
	}
	if !moved {
		// idempotent re-request: the item was no longer in `from`
		return ticket, nil
	}

	keys := make([]string, 0, len(views))
	for _, v := range views {
		keys = append(keys, redisx.KeyKitchenView+v)
	}
	s.cache.Del(ctx, keys...)

	s.notifier.StatusChanged(ctx, StatusChange{
		ItemID:    ticket.ID,
		OrderID:   ticket.OrderID,
		TableNo:   ticket.TableNo,
		Name:      ticket.Name,
		OldStatus: string(from),
		NewStatus: string(to),
		ChangedBy: actor,
		Timestamp: s.now().UTC(),
	})
	s.lg.Debug("kitchen_transition", map[string]any{
		"item_id": itemID, "from": string(from), "to": string(to), "by": actor,
	})
	return ticket, nil
}

// CancelPendingItem removes an item that cooking never started on. Once a
// cook picked it up the cancel path is closed.
func (s *Service) CancelPendingItem(ctx context.Context, itemID string) error {
	deleted, err := s.repo.DeleteIfPending(ctx, itemID)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.Conflictf("item is no longer pending and cannot be canceled")
	}
	s.cache.Del(ctx, redisx.KeyKitchenView+"pending")
	s.lg.Info("kitchen_item_canceled", map[string]any{"item_id": itemID})
	return nil
}
