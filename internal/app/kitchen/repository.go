package kitchen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pos-system/internal/domain"
)

type RepositoryInterface interface {
	PendingTickets(ctx context.Context) ([]domain.Ticket, error)
	ReadyTickets(ctx context.Context) ([]domain.Ticket, error)
	ServedTickets(ctx context.Context, since time.Time) ([]domain.Ticket, error)
	GetTicket(ctx context.Context, itemID string) (domain.Ticket, error)
	// AdvanceStatus is a conditional single-row update: it only fires when
	// the item is still in the expected source state, and reports whether
	// anything changed.
	AdvanceStatus(ctx context.Context, itemID string, from, to domain.ItemStatus) (bool, error)
	DeleteIfPending(ctx context.Context, itemID string) (bool, error)
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository { return &Repository{db: db} }

const ticketQuery = `
	SELECT i.id, i.order_id, i.menu_item_id, i.drink_id, i.name, i.quantity,
	       i.unit_price, i.total, i.status, i.version, i.created_at, i.updated_at,
	       t.table_no
	FROM order_items i
	JOIN orders o ON o.id = i.order_id
	JOIN tables t ON t.id = o.table_id
	WHERE i.menu_item_id IS NOT NULL`

func (r *Repository) queryTickets(ctx context.Context, cond, order string, args ...any) ([]domain.Ticket, error) {
	rows, err := r.db.Query(ctx, ticketQuery+cond+order, args...)
	if err != nil {
		return nil, fmt.Errorf("query tickets: %w", err)
	}
	defer rows.Close()

	var out []domain.Ticket
	for rows.Next() {
		var tk domain.Ticket
		err := rows.Scan(&tk.ID, &tk.OrderID, &tk.MenuItemID, &tk.DrinkID, &tk.Name,
			&tk.Quantity, &tk.UnitPrice, &tk.Total, &tk.Status, &tk.Version,
			&tk.CreatedAt, &tk.UpdatedAt, &tk.TableNo)
		if err != nil {
			return nil, err
		}
		out = append(out, tk)
	}
	return out, rows.Err()
}

func (r *Repository) PendingTickets(ctx context.Context) ([]domain.Ticket, error) {
	return r.queryTickets(ctx,
		` AND i.status NOT IN ('ready', 'served')`,
		` ORDER BY i.created_at DESC`)
}

func (r *Repository) ReadyTickets(ctx context.Context) ([]domain.Ticket, error) {
	return r.queryTickets(ctx,
		` AND i.status = 'ready'`,
		` ORDER BY i.updated_at DESC`)
}

func (r *Repository) ServedTickets(ctx context.Context, since time.Time) ([]domain.Ticket, error) {
	return r.queryTickets(ctx,
		` AND i.status = 'served' AND i.created_at >= $1`,
		` ORDER BY i.updated_at DESC`, since)
}

func (r *Repository) GetTicket(ctx context.Context, itemID string) (domain.Ticket, error) {
	rows, err := r.queryTickets(ctx, ` AND i.id = $1`, ``, itemID)
	if err != nil {
		return domain.Ticket{}, err
	}
	if len(rows) == 0 {
		return domain.Ticket{}, &domain.NotFoundError{Entity: "kitchen ticket", ID: itemID}
	}
	return rows[0], nil
}

func (r *Repository) AdvanceStatus(ctx context.Context, itemID string, from, to domain.ItemStatus) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE order_items
		SET status=$3, version=version+1, updated_at=now()
		WHERE id=$1 AND status=$2 AND menu_item_id IS NOT NULL
	`, itemID, from, to)
	if err != nil {
		return false, fmt.Errorf("advance status: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	// distinguish "wrong state, no-op" from "no such item"
	var current domain.ItemStatus
	err = r.db.QueryRow(ctx,
		`SELECT status FROM order_items WHERE id=$1 AND menu_item_id IS NOT NULL`, itemID,
	).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, &domain.NotFoundError{Entity: "kitchen ticket", ID: itemID}
	}
	return false, err
}

func (r *Repository) DeleteIfPending(ctx context.Context, itemID string) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM order_items WHERE id=$1 AND status='pending' AND menu_item_id IS NOT NULL`, itemID)
	if err != nil {
		return false, fmt.Errorf("cancel item: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
