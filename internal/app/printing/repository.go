package printing

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pos-system/internal/domain"
)

type RepositoryInterface interface {
	// GetOrderAggregate loads any order (pending or served) with its items,
	// table number and waiter name in one round trip.
	GetOrderAggregate(ctx context.Context, orderID string) (domain.OrderAggregate, error)
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository { return &Repository{db: db} }

func (r *Repository) GetOrderAggregate(ctx context.Context, orderID string) (domain.OrderAggregate, error) {
	var agg domain.OrderAggregate
	err := r.db.QueryRow(ctx, `
		SELECT o.id, o.table_id, o.waiter_id, o.status, o.cash, o.card, o.balance, o.total,
		       o.printed, o.bill_printed, o.version, o.created_at, o.updated_at,
		       t.table_no, e.name
		FROM orders o
		JOIN tables t ON t.id = o.table_id
		JOIN employees e ON e.id = o.waiter_id
		WHERE o.id = $1
	`, orderID).Scan(&agg.Order.ID, &agg.Order.TableID, &agg.Order.WaiterID, &agg.Order.Status,
		&agg.Order.Cash, &agg.Order.Card, &agg.Order.Balance, &agg.Order.Total,
		&agg.Order.Printed, &agg.Order.BillPrinted, &agg.Order.Version,
		&agg.Order.CreatedAt, &agg.Order.UpdatedAt, &agg.TableNo, &agg.WaiterName)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.OrderAggregate{}, &domain.NotFoundError{Entity: "order", ID: orderID}
	}
	if err != nil {
		return domain.OrderAggregate{}, fmt.Errorf("load order: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, menu_item_id, drink_id, name, quantity,
		       unit_price, total, status, version, created_at, updated_at
		FROM order_items WHERE order_id=$1 ORDER BY created_at
	`, orderID)
	if err != nil {
		return domain.OrderAggregate{}, fmt.Errorf("load items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var i domain.OrderItem
		err := rows.Scan(&i.ID, &i.OrderID, &i.MenuItemID, &i.DrinkID, &i.Name, &i.Quantity,
			&i.UnitPrice, &i.Total, &i.Status, &i.Version, &i.CreatedAt, &i.UpdatedAt)
		if err != nil {
			return domain.OrderAggregate{}, err
		}
		agg.Items = append(agg.Items, i)
		agg.Totals.Quantity += i.Quantity
		agg.Totals.Price += i.Total
	}
	if err := rows.Err(); err != nil {
		return domain.OrderAggregate{}, err
	}
	agg.Totals.Price = domain.RoundCents(agg.Totals.Price)
	return agg, nil
}
