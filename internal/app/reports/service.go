package reports

import (
	"context"
	"time"

	"pos-system/internal/domain"
)

type ServiceInterface interface {
	DailySales(ctx context.Context, from, to time.Time) ([]DailySalesRow, error)
	WaiterTotals(ctx context.Context, from, to time.Time) ([]WaiterTotalsRow, error)
	ItemSales(ctx context.Context, from, to time.Time) ([]ItemSalesRow, error)
}

type Service struct {
	repo RepositoryInterface
}

func NewService(repo RepositoryInterface) *Service { return &Service{repo: repo} }

func checkWindow(from, to time.Time) error {
	if !to.After(from) {
		return domain.Validationf("report window end must be after start")
	}
	return nil
}

func (s *Service) DailySales(ctx context.Context, from, to time.Time) ([]DailySalesRow, error) {
	if err := checkWindow(from, to); err != nil {
		return nil, err
	}
	return s.repo.DailySales(ctx, from, to)
}

func (s *Service) WaiterTotals(ctx context.Context, from, to time.Time) ([]WaiterTotalsRow, error) {
	if err := checkWindow(from, to); err != nil {
		return nil, err
	}
	return s.repo.WaiterTotals(ctx, from, to)
}

func (s *Service) ItemSales(ctx context.Context, from, to time.Time) ([]ItemSalesRow, error) {
	if err := checkWindow(from, to); err != nil {
		return nil, err
	}
	return s.repo.ItemSales(ctx, from, to)
}
