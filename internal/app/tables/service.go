package tables

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"pos-system/internal/app/ledger"
	"pos-system/internal/app/staff"
	"pos-system/internal/common/logger"
	"pos-system/internal/connections/redisx"
	"pos-system/internal/domain"
)

type Filter string

const (
	FilterAll       Filter = "all"
	FilterAvailable Filter = "available"
	FilterOccupied  Filter = "occupied"
)

type ServiceInterface interface {
	ListTables(ctx context.Context, filter Filter, caller staff.Identity) ([]domain.Table, error)
	AssignableEmployees(ctx context.Context) ([]domain.Employee, error)
	Assign(ctx context.Context, tableID string, caller staff.Identity, waiterID string) (domain.Order, error)
	Reset(ctx context.Context, tableID string) error
	OpenOccupied(ctx context.Context, tableID string, caller staff.Identity) (domain.OrderAggregate, error)
	CreateTable(ctx context.Context, tableNo string) (domain.Table, error)
}

type Service struct {
	repo   RepositoryInterface
	ledger ledger.ServiceInterface
	cache  *redisx.Cache
	lg     *logger.Logger
}

// NewService wires the registry with the ledger it opens orders through.
// cache may be nil (tests).
func NewService(repo RepositoryInterface, ldg ledger.ServiceInterface, cache *redisx.Cache, lg *logger.Logger) *Service {
	return &Service{repo: repo, ledger: ldg, cache: cache, lg: lg}
}

// ListTables applies the role visibility rule: a waiter only sees tables
// that are available or assigned to them; everyone else sees everything.
func (s *Service) ListTables(ctx context.Context, filter Filter, caller staff.Identity) ([]domain.Table, error) {
	var status domain.TableStatus
	switch filter {
	case FilterAvailable:
		status = domain.TableAvailable
	case FilterOccupied:
		status = domain.TableOccupied
	case FilterAll, "":
	default:
		return nil, domain.Validationf("unknown filter %q", filter)
	}

	visibleTo := ""
	if caller.Role == domain.RoleWaiter {
		visibleTo = caller.EmployeeID
	}

	key := redisx.KeyTableBoard + string(filter) + ":" + visibleTo
	if b, ok := s.cache.Get(ctx, key); ok {
		var cached []domain.Table
		if json.Unmarshal(b, &cached) == nil {
			return cached, nil
		}
	}

	out, err := s.repo.List(ctx, status, visibleTo)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(out); err == nil {
		s.cache.Set(ctx, key, b, redisx.TTLBoard)
	}
	return out, nil
}

func (s *Service) AssignableEmployees(ctx context.Context) ([]domain.Employee, error) {
	return s.repo.ListAssignable(ctx)
}

// Assign opens a table for a waiter. A waiter always assigns to themselves;
// an admin picks the waiter out of AssignableEmployees first and passes
// their id here.
func (s *Service) Assign(ctx context.Context, tableID string, caller staff.Identity, waiterID string) (domain.Order, error) {
	switch caller.Role {
	case domain.RoleWaiter:
		waiterID = caller.EmployeeID
	case domain.RoleAdmin:
		if waiterID == "" {
			return domain.Order{}, domain.Validationf("waiter_id is required when an admin assigns a table")
		}
	default:
		return domain.Order{}, domain.AccessDeniedf("role %s cannot assign tables", caller.Role)
	}

	order, err := s.ledger.OpenOrder(ctx, tableID, waiterID)
	if err != nil {
		return domain.Order{}, err
	}
	s.lg.Info("table_assigned", map[string]any{"table_id": tableID, "waiter_id": waiterID, "order_id": order.ID})
	return order, nil
}

// Reset abandons an empty session: deletes the open order outright and frees
// the table. An order that already has items must be paid or have its items
// removed first.
func (s *Service) Reset(ctx context.Context, tableID string) error {
	table, err := s.repo.Get(ctx, tableID)
	if err != nil {
		return err
	}

	order, found, err := s.repo.FindPendingOrder(ctx, tableID)
	if err != nil {
		return err
	}
	if !found {
		if table.Status == domain.TableAvailable {
			return nil
		}
		return domain.Conflictf("table is occupied but has no open order; contact an administrator")
	}

	n, err := s.repo.CountItems(ctx, order.ID)
	if err != nil {
		return err
	}
	if n > 0 {
		return domain.Validationf("cannot reset a table with ordered items")
	}

	if err := s.repo.ResetTx(ctx, tableID, order.ID); err != nil {
		return err
	}
	s.lg.Info("table_reset", map[string]any{"table_id": tableID, "order_id": order.ID})
	return nil
}

// OpenOccupied loads the running session of a table. Waiters cannot open
// each other's tables.
func (s *Service) OpenOccupied(ctx context.Context, tableID string, caller staff.Identity) (domain.OrderAggregate, error) {
	agg, err := s.repo.GetAggregate(ctx, tableID)
	if err != nil {
		return domain.OrderAggregate{}, err
	}
	if caller.Role == domain.RoleWaiter && agg.Order.WaiterID != caller.EmployeeID {
		return domain.OrderAggregate{}, domain.AccessDeniedf("table is assigned to another waiter")
	}
	return agg, nil
}

func (s *Service) CreateTable(ctx context.Context, tableNo string) (domain.Table, error) {
	tableNo = strings.TrimSpace(tableNo)
	if tableNo == "" {
		return domain.Table{}, domain.Validationf("table number is required")
	}

	existing, err := s.repo.List(ctx, "", "")
	if err != nil {
		return domain.Table{}, err
	}
	for _, t := range existing {
		if strings.EqualFold(t.TableNo, tableNo) {
			return domain.Table{}, domain.Conflictf("table %s already exists", tableNo)
		}
	}

	t := domain.Table{ID: uuid.NewString(), TableNo: tableNo, Status: domain.TableAvailable}
	if err := s.repo.Insert(ctx, t); err != nil {
		return domain.Table{}, err
	}
	return t, nil
}
