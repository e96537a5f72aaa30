package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pos-system/internal/domain"
)

type RepositoryInterface interface {
	// OpenOrderTx inserts the order and flips its table to occupied in one
	// transaction. ConflictError if the table is not available.
	OpenOrderTx(ctx context.Context, order domain.Order) (domain.Order, error)
	GetOrder(ctx context.Context, orderID string) (domain.Order, error)
	ListItems(ctx context.Context, orderID string) ([]domain.OrderItem, error)
	FindItemByCatalog(ctx context.Context, orderID string, kind domain.ItemKind, catalogID string) (domain.OrderItem, bool, error)
	InsertItem(ctx context.Context, item domain.OrderItem) (domain.OrderItem, error)
	// UpdateItemQuantity bumps quantity/total with an optimistic version
	// check; domain.ErrVersionConflict on mismatch.
	UpdateItemQuantity(ctx context.Context, itemID string, version int64, quantity int, total float64) (domain.OrderItem, error)
	DeleteItem(ctx context.Context, orderID, itemID string) error
	SetBillPrinted(ctx context.Context, orderID string, printed bool) error
	SetKitchenPrinted(ctx context.Context, orderID string, printed bool) error
	// ConfirmPaymentTx closes the order and frees its table in one
	// transaction. The line sum is re-read under the order lock;
	// domain.ErrVersionConflict when the version moved or the sum no
	// longer matches total (a line changed after the caller priced the
	// order).
	ConfirmPaymentTx(ctx context.Context, orderID string, version int64, cash, card, balance, total float64) (domain.Order, error)
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository { return &Repository{db: db} }

const orderCols = `id, table_id, waiter_id, status, cash, card, balance, total,
	printed, bill_printed, version, created_at, updated_at`

func scanOrder(row pgx.Row) (domain.Order, error) {
	var o domain.Order
	err := row.Scan(&o.ID, &o.TableID, &o.WaiterID, &o.Status, &o.Cash, &o.Card,
		&o.Balance, &o.Total, &o.Printed, &o.BillPrinted, &o.Version, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

const itemCols = `id, order_id, menu_item_id, drink_id, name, quantity,
	unit_price, total, status, version, created_at, updated_at`

func scanItem(row pgx.Row) (domain.OrderItem, error) {
	var i domain.OrderItem
	err := row.Scan(&i.ID, &i.OrderID, &i.MenuItemID, &i.DrinkID, &i.Name, &i.Quantity,
		&i.UnitPrice, &i.Total, &i.Status, &i.Version, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

func (r *Repository) OpenOrderTx(ctx context.Context, order domain.Order) (domain.Order, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Order{}, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var status domain.TableStatus
	err = tx.QueryRow(ctx,
		`SELECT status FROM tables WHERE id=$1 FOR UPDATE`, order.TableID,
	).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, &domain.NotFoundError{Entity: "table", ID: order.TableID}
	}
	if err != nil {
		return domain.Order{}, err
	}
	if status != domain.TableAvailable {
		return domain.Order{}, domain.Conflictf("table already has an open order")
	}

	if _, err := tx.Exec(ctx, `
		UPDATE tables SET status='occupied', assigned_employee=$2, version=version+1
		WHERE id=$1
	`, order.TableID, order.WaiterID); err != nil {
		return domain.Order{}, err
	}

	created, err := scanOrder(tx.QueryRow(ctx, `
		INSERT INTO orders (id, table_id, waiter_id, status)
		VALUES ($1, $2, $3, 'pending')
		RETURNING `+orderCols,
		order.ID, order.TableID, order.WaiterID))
	if err != nil {
		return domain.Order{}, fmt.Errorf("insert order: %w", err)
	}

	return created, tx.Commit(ctx)
}

func (r *Repository) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx,
		`SELECT `+orderCols+` FROM orders WHERE id=$1`, orderID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, &domain.NotFoundError{Entity: "order", ID: orderID}
	}
	return o, err
}

func (r *Repository) ListItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+itemCols+` FROM order_items WHERE order_id=$1 ORDER BY created_at`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var out []domain.OrderItem
	for rows.Next() {
		i, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (r *Repository) FindItemByCatalog(ctx context.Context, orderID string, kind domain.ItemKind, catalogID string) (domain.OrderItem, bool, error) {
	col := "menu_item_id"
	if kind == domain.KindDrink {
		col = "drink_id"
	}
	i, err := scanItem(r.db.QueryRow(ctx,
		`SELECT `+itemCols+` FROM order_items WHERE order_id=$1 AND `+col+`=$2`,
		orderID, catalogID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.OrderItem{}, false, nil
	}
	if err != nil {
		return domain.OrderItem{}, false, err
	}
	return i, true, nil
}

func (r *Repository) InsertItem(ctx context.Context, item domain.OrderItem) (domain.OrderItem, error) {
	created, err := scanItem(r.db.QueryRow(ctx, `
		INSERT INTO order_items (id, order_id, menu_item_id, drink_id, name, quantity, unit_price, total, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'pending')
		RETURNING `+itemCols,
		item.ID, item.OrderID, item.MenuItemID, item.DrinkID, item.Name,
		item.Quantity, item.UnitPrice, item.Total))
	if err != nil {
		return domain.OrderItem{}, fmt.Errorf("insert item: %w", err)
	}
	return created, nil
}

func (r *Repository) UpdateItemQuantity(ctx context.Context, itemID string, version int64, quantity int, total float64) (domain.OrderItem, error) {
	updated, err := scanItem(r.db.QueryRow(ctx, `
		UPDATE order_items
		SET quantity=$3, total=$4, version=version+1, updated_at=now()
		WHERE id=$1 AND version=$2
		RETURNING `+itemCols,
		itemID, version, quantity, total))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.OrderItem{}, domain.ErrVersionConflict
	}
	return updated, err
}

func (r *Repository) DeleteItem(ctx context.Context, orderID, itemID string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM order_items WHERE id=$1 AND order_id=$2`, itemID, orderID)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{Entity: "order item", ID: itemID}
	}
	return nil
}

func (r *Repository) SetBillPrinted(ctx context.Context, orderID string, printed bool) error {
	return r.setFlag(ctx, orderID, "bill_printed", printed)
}

func (r *Repository) SetKitchenPrinted(ctx context.Context, orderID string, printed bool) error {
	return r.setFlag(ctx, orderID, "printed", printed)
}

func (r *Repository) setFlag(ctx context.Context, orderID, col string, v bool) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE orders SET `+col+`=$2, version=version+1, updated_at=now() WHERE id=$1`,
		orderID, v)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{Entity: "order", ID: orderID}
	}
	return nil
}

func (r *Repository) ConfirmPaymentTx(ctx context.Context, orderID string, version int64, cash, card, balance, total float64) (domain.Order, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Order{}, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// lock the order, then re-check the line sum under the lock: a line
	// added after the caller computed its total must fail the close
	var lockedVersion int64
	err = tx.QueryRow(ctx,
		`SELECT version FROM orders WHERE id=$1 FOR UPDATE`, orderID,
	).Scan(&lockedVersion)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, &domain.NotFoundError{Entity: "order", ID: orderID}
	}
	if err != nil {
		return domain.Order{}, err
	}
	if lockedVersion != version {
		return domain.Order{}, domain.ErrVersionConflict
	}

	var sum float64
	err = tx.QueryRow(ctx,
		`SELECT COALESCE(SUM(total), 0) FROM order_items WHERE order_id=$1`, orderID,
	).Scan(&sum)
	if err != nil {
		return domain.Order{}, fmt.Errorf("sum items: %w", err)
	}
	if domain.RoundCents(sum) != total {
		return domain.Order{}, domain.ErrVersionConflict
	}

	closed, err := scanOrder(tx.QueryRow(ctx, `
		UPDATE orders
		SET status='served', cash=$3, card=$4, balance=$5, total=$6,
		    printed=true, version=version+1, updated_at=now()
		WHERE id=$1 AND version=$2 AND status='pending'
		RETURNING `+orderCols,
		orderID, version, cash, card, balance, total))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, domain.ErrVersionConflict
	}
	if err != nil {
		return domain.Order{}, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE tables SET status='available', assigned_employee=NULL, version=version+1
		WHERE id=$1
	`, closed.TableID); err != nil {
		return domain.Order{}, fmt.Errorf("free table: %w", err)
	}

	return closed, tx.Commit(ctx)
}
