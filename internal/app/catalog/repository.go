package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pos-system/internal/domain"
)

type RepositoryInterface interface {
	ListMenuItems(ctx context.Context, category string) ([]domain.MenuItem, error)
	ListDrinks(ctx context.Context, category string) ([]domain.Drink, error)
	GetMenuItem(ctx context.Context, id string) (domain.MenuItem, error)
	GetDrink(ctx context.Context, id string) (domain.Drink, error)
	InsertMenuItem(ctx context.Context, m domain.MenuItem) error
	InsertDrink(ctx context.Context, d domain.Drink) error
	UpdateMenuItem(ctx context.Context, m domain.MenuItem) error
	UpdateDrink(ctx context.Context, d domain.Drink) error
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository { return &Repository{db: db} }

func (r *Repository) ListMenuItems(ctx context.Context, category string) ([]domain.MenuItem, error) {
	q := `SELECT id, name, description, price, category FROM menu_items`
	args := []any{}
	if category != "" {
		q += ` WHERE category = $1`
		args = append(args, category)
	}
	q += ` ORDER BY category, name`

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}
	defer rows.Close()

	var out []domain.MenuItem
	for rows.Next() {
		var m domain.MenuItem
		if err := rows.Scan(&m.ID, &m.Name, &m.Description, &m.Price, &m.Category); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *Repository) ListDrinks(ctx context.Context, category string) ([]domain.Drink, error) {
	q := `SELECT id, item_name, description, price, category FROM drinks`
	args := []any{}
	if category != "" {
		q += ` WHERE category = $1`
		args = append(args, category)
	}
	q += ` ORDER BY category, item_name`

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list drinks: %w", err)
	}
	defer rows.Close()

	var out []domain.Drink
	for rows.Next() {
		var d domain.Drink
		if err := rows.Scan(&d.ID, &d.ItemName, &d.Description, &d.Price, &d.Category); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *Repository) GetMenuItem(ctx context.Context, id string) (domain.MenuItem, error) {
	var m domain.MenuItem
	err := r.db.QueryRow(ctx,
		`SELECT id, name, description, price, category FROM menu_items WHERE id=$1`, id,
	).Scan(&m.ID, &m.Name, &m.Description, &m.Price, &m.Category)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.MenuItem{}, &domain.NotFoundError{Entity: "menu item", ID: id}
	}
	return m, err
}

func (r *Repository) GetDrink(ctx context.Context, id string) (domain.Drink, error) {
	var d domain.Drink
	err := r.db.QueryRow(ctx,
		`SELECT id, item_name, description, price, category FROM drinks WHERE id=$1`, id,
	).Scan(&d.ID, &d.ItemName, &d.Description, &d.Price, &d.Category)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Drink{}, &domain.NotFoundError{Entity: "drink", ID: id}
	}
	return d, err
}

func (r *Repository) InsertMenuItem(ctx context.Context, m domain.MenuItem) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO menu_items (id, name, description, price, category)
		VALUES ($1, $2, $3, $4, $5)
	`, m.ID, m.Name, m.Description, m.Price, m.Category)
	return err
}

func (r *Repository) InsertDrink(ctx context.Context, d domain.Drink) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO drinks (id, item_name, description, price, category)
		VALUES ($1, $2, $3, $4, $5)
	`, d.ID, d.ItemName, d.Description, d.Price, d.Category)
	return err
}

func (r *Repository) UpdateMenuItem(ctx context.Context, m domain.MenuItem) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE menu_items SET name=$2, description=$3, price=$4, category=$5 WHERE id=$1
	`, m.ID, m.Name, m.Description, m.Price, m.Category)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{Entity: "menu item", ID: m.ID}
	}
	return nil
}

func (r *Repository) UpdateDrink(ctx context.Context, d domain.Drink) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE drinks SET item_name=$2, description=$3, price=$4, category=$5 WHERE id=$1
	`, d.ID, d.ItemName, d.Description, d.Price, d.Category)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{Entity: "drink", ID: d.ID}
	}
	return nil
}
