package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DailySalesRow is one calendar day of served orders.
type DailySalesRow struct {
	Day        time.Time `json:"day"`
	OrderCount int       `json:"order_count"`
	CashTotal  float64   `json:"cash_total"`
	CardTotal  float64   `json:"card_total"`
	GrossTotal float64   `json:"gross_total"`
}

// WaiterTotalsRow aggregates served orders per waiter over a window.
type WaiterTotalsRow struct {
	WaiterID   string  `json:"waiter_id"`
	WaiterName string  `json:"waiter_name"`
	OrderCount int     `json:"order_count"`
	GrossTotal float64 `json:"gross_total"`
}

// ItemSalesRow aggregates quantities per catalog entry over a window.
type ItemSalesRow struct {
	Name       string  `json:"name"`
	Kind       string  `json:"kind"`
	Quantity   int     `json:"quantity"`
	GrossTotal float64 `json:"gross_total"`
}

type RepositoryInterface interface {
	DailySales(ctx context.Context, from, to time.Time) ([]DailySalesRow, error)
	WaiterTotals(ctx context.Context, from, to time.Time) ([]WaiterTotalsRow, error)
	ItemSales(ctx context.Context, from, to time.Time) ([]ItemSalesRow, error)
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository { return &Repository{pool: pool} }

func (r *Repository) DailySales(ctx context.Context, from, to time.Time) ([]DailySalesRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT date_trunc('day', updated_at) AS day,
		       COUNT(*),
		       COALESCE(SUM(cash), 0),
		       COALESCE(SUM(card), 0),
		       COALESCE(SUM(total), 0)
		FROM orders
		WHERE status = 'served' AND updated_at >= $1 AND updated_at < $2
		GROUP BY day
		ORDER BY day`, from, to)
	if err != nil {
		return nil, fmt.Errorf("query daily sales: %w", err)
	}
	defer rows.Close()

	var out []DailySalesRow
	for rows.Next() {
		var row DailySalesRow
		if err := rows.Scan(&row.Day, &row.OrderCount, &row.CashTotal, &row.CardTotal, &row.GrossTotal); err != nil {
			return nil, fmt.Errorf("scan daily sales: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *Repository) WaiterTotals(ctx context.Context, from, to time.Time) ([]WaiterTotalsRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT o.waiter_id,
		       e.name,
		       COUNT(*),
		       COALESCE(SUM(o.total), 0)
		FROM orders o
		JOIN employees e ON e.id = o.waiter_id
		WHERE o.status = 'served' AND o.updated_at >= $1 AND o.updated_at < $2
		GROUP BY o.waiter_id, e.name
		ORDER BY SUM(o.total) DESC`, from, to)
	if err != nil {
		return nil, fmt.Errorf("query waiter totals: %w", err)
	}
	defer rows.Close()

	var out []WaiterTotalsRow
	for rows.Next() {
		var row WaiterTotalsRow
		if err := rows.Scan(&row.WaiterID, &row.WaiterName, &row.OrderCount, &row.GrossTotal); err != nil {
			return nil, fmt.Errorf("scan waiter totals: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *Repository) ItemSales(ctx context.Context, from, to time.Time) ([]ItemSalesRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT i.name,
		       CASE WHEN i.menu_item_id IS NOT NULL THEN 'food' ELSE 'drink' END AS kind,
		       COALESCE(SUM(i.quantity), 0),
		       COALESCE(SUM(i.total), 0)
		FROM order_items i
		JOIN orders o ON o.id = i.order_id
		WHERE o.status = 'served' AND o.updated_at >= $1 AND o.updated_at < $2
		GROUP BY i.name, kind
		ORDER BY SUM(i.quantity) DESC`, from, to)
	if err != nil {
		return nil, fmt.Errorf("query item sales: %w", err)
	}
	defer rows.Close()

	var out []ItemSalesRow
	for rows.Next() {
		var row ItemSalesRow
		if err := rows.Scan(&row.Name, &row.Kind, &row.Quantity, &row.GrossTotal); err != nil {
			return nil, fmt.Errorf("scan item sales: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
