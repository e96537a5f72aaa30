package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"pos-system/internal/domain"
)

type ServiceInterface interface {
	ListMenuItems(ctx context.Context, category string) ([]domain.MenuItem, error)
	ListDrinks(ctx context.Context, category string) ([]domain.Drink, error)
	Resolve(ctx context.Context, kind domain.ItemKind, id string) (domain.CatalogRef, error)
	CreateMenuItem(ctx context.Context, m domain.MenuItem) (domain.MenuItem, error)
	CreateDrink(ctx context.Context, d domain.Drink) (domain.Drink, error)
	UpdateMenuItem(ctx context.Context, m domain.MenuItem) error
	UpdateDrink(ctx context.Context, d domain.Drink) error
}

type Service struct {
	repo RepositoryInterface
}

func NewService(repo RepositoryInterface) *Service { return &Service{repo: repo} }

func (s *Service) ListMenuItems(ctx context.Context, category string) ([]domain.MenuItem, error) {
	return s.repo.ListMenuItems(ctx, category)
}

func (s *Service) ListDrinks(ctx context.Context, category string) ([]domain.Drink, error) {
	return s.repo.ListDrinks(ctx, category)
}

// Resolve turns (kind, id) into a priced reference. The unit price is always
// read here, server-side; client-supplied prices are ignored everywhere.
func (s *Service) Resolve(ctx context.Context, kind domain.ItemKind, id string) (domain.CatalogRef, error) {
	switch kind {
	case domain.KindFood:
		m, err := s.repo.GetMenuItem(ctx, id)
		if err != nil {
			return domain.CatalogRef{}, err
		}
		return domain.CatalogRef{Kind: domain.KindFood, ID: m.ID, Name: m.Name, Price: m.Price}, nil
	case domain.KindDrink:
		d, err := s.repo.GetDrink(ctx, id)
		if err != nil {
			return domain.CatalogRef{}, err
		}
		return domain.CatalogRef{Kind: domain.KindDrink, ID: d.ID, Name: d.ItemName, Price: d.Price}, nil
	default:
		return domain.CatalogRef{}, domain.Validationf("unknown item kind %q", kind)
	}
}

func (s *Service) CreateMenuItem(ctx context.Context, m domain.MenuItem) (domain.MenuItem, error) {
	if strings.TrimSpace(m.Name) == "" {
		return domain.MenuItem{}, domain.Validationf("menu item name is required")
	}
	if m.Price <= 0 {
		return domain.MenuItem{}, domain.Validationf("menu item price must be positive")
	}
	m.ID = uuid.NewString()
	m.Price = domain.RoundCents(m.Price)
	if err := s.repo.InsertMenuItem(ctx, m); err != nil {
		return domain.MenuItem{}, err
	}
	return m, nil
}

func (s *Service) CreateDrink(ctx context.Context, d domain.Drink) (domain.Drink, error) {
	if strings.TrimSpace(d.ItemName) == "" {
		return domain.Drink{}, domain.Validationf("drink name is required")
	}
	if d.Price <= 0 {
		return domain.Drink{}, domain.Validationf("drink price must be positive")
	}
	d.ID = uuid.NewString()
	d.Price = domain.RoundCents(d.Price)
	if err := s.repo.InsertDrink(ctx, d); err != nil {
		return domain.Drink{}, err
	}
	return d, nil
}

func (s *Service) UpdateMenuItem(ctx context.Context, m domain.MenuItem) error {
	if m.Price <= 0 {
		return domain.Validationf("menu item price must be positive")
	}
	m.Price = domain.RoundCents(m.Price)
	return s.repo.UpdateMenuItem(ctx, m)
}

func (s *Service) UpdateDrink(ctx context.Context, d domain.Drink) error {
	if d.Price <= 0 {
		return domain.Validationf("drink price must be positive")
	}
	d.Price = domain.RoundCents(d.Price)
	return s.repo.UpdateDrink(ctx, d)
}
