package tables

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
	// List returns tables, optionally filtered by status. A non-empty
	// visibleTo restricts occupied tables to the given employee (waiter
	// visibility rule); available tables always pass.
	List(ctx context.Context, status domain.TableStatus, visibleTo string) ([]domain.Table, error)
	Get(ctx context.Context, id string) (domain.Table, error)
	Insert(ctx context.Context, t domain.Table) error
	FindPendingOrder(ctx context.Context, tableID string) (domain.Order, bool, error)
	CountItems(ctx context.Context, orderID string) (int, error)
	// ResetTx hard-deletes the abandoned order (items cascade) and frees
	// the table in one transaction.
	ResetTx(ctx context.Context, tableID, orderID string) error
	// GetAggregate loads the open order with its items, table number and
	// waiter name in a single round trip.
	GetAggregate(ctx context.Context, tableID string) (domain.OrderAggregate, error)
	ListAssignable(ctx context.Context) ([]domain.Employee, error)
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository { return &Repository{db: db} }

func (r *Repository) List(ctx context.Context, status domain.TableStatus, visibleTo string) ([]domain.Table, error) {
	q := `SELECT id, table_no, status, assigned_employee, version, created_at FROM tables`
	args := []any{}
	where := ""

	if status != "" {
		args = append(args, status)
		where = fmt.Sprintf(` WHERE status = $%d`, len(args))
	}
	if visibleTo != "" {
		args = append(args, visibleTo)
		cond := fmt.Sprintf(`(assigned_employee = $%d OR status = 'available')`, len(args))
		if where == "" {
			where = ` WHERE ` + cond
		} else {
			where += ` AND ` + cond
		}
	}

	rows, err := r.db.Query(ctx, q+where+` ORDER BY table_no`, args...)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var out []domain.Table
	for rows.Next() {
		var t domain.Table
		if err := rows.Scan(&t.ID, &t.TableNo, &t.Status, &t.AssignedEmployee, &t.Version, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id string) (domain.Table, error) {
	var t domain.Table
	err := r.db.QueryRow(ctx,
		`SELECT id, table_no, status, assigned_employee, version, created_at FROM tables WHERE id=$1`, id,
	).Scan(&t.ID, &t.TableNo, &t.Status, &t.AssignedEmployee, &t.Version, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Table{}, &domain.NotFoundError{Entity: "table", ID: id}
	}
	return t, err
}

func (r *Repository) Insert(ctx context.Context, t domain.Table) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO tables (id, table_no, status) VALUES ($1, $2, 'available')`,
		t.ID, t.TableNo)
	return err
}

func (r *Repository) FindPendingOrder(ctx context.Context, tableID string) (domain.Order, bool, error) {
	var o domain.Order
	err := r.db.QueryRow(ctx, `
		SELECT id, table_id, waiter_id, status, cash, card, balance, total,
		       printed, bill_printed, version, created_at, updated_at
		FROM orders WHERE table_id=$1 AND status='pending'
	`, tableID).Scan(&o.ID, &o.TableID, &o.WaiterID, &o.Status, &o.Cash, &o.Card,
		&o.Balance, &o.Total, &o.Printed, &o.BillPrinted, &o.Version, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, false, nil
	}
	if err != nil {
		return domain.Order{}, false, err
	}
	return o, true, nil
}

func (r *Repository) CountItems(ctx context.Context, orderID string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM order_items WHERE order_id=$1`, orderID,
	).Scan(&n)
	return n, err
}

func (r *Repository) ResetTx(ctx context.Context, tableID, orderID string) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// order_items cascade on the order delete
	if _, err := tx.Exec(ctx, `DELETE FROM orders WHERE id=$1`, orderID); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		UPDATE tables SET status='available', assigned_employee=NULL, version=version+1
		WHERE id=$1
	`, tableID); err != nil {
		return fmt.Errorf("free table: %w", err)
	}
	return tx.Commit(ctx)
}

func (r *Repository) GetAggregate(ctx context.Context, tableID string) (domain.OrderAggregate, error) {
	rows, err := r.db.Query(ctx, `
		SELECT o.id, o.table_id, o.waiter_id, o.status, o.cash, o.card, o.balance, o.total,
		       o.printed, o.bill_printed, o.version, o.created_at, o.updated_at,
		       t.table_no, e.name,
		       i.id, i.menu_item_id, i.drink_id, i.name, i.quantity,
		       i.unit_price, i.total, i.status, i.version, i.created_at, i.updated_at
		FROM orders o
		JOIN tables t ON t.id = o.table_id
		JOIN employees e ON e.id = o.waiter_id
		LEFT JOIN order_items i ON i.order_id = o.id
		WHERE o.table_id = $1 AND o.status = 'pending'
		ORDER BY i.created_at
	`, tableID)
	if err != nil {
		return domain.OrderAggregate{}, fmt.Errorf("load aggregate: %w", err)
	}
	defer rows.Close()

	var (
		agg   domain.OrderAggregate
		found bool
	)
	for rows.Next() {
		var (
			o domain.Order
			// LEFT JOIN: item columns are NULL for an order with no items
			itemID     *string
			menuItemID *string
			drinkID    *string
			itemName   *string
			quantity   *int
			unitPrice  *float64
			total      *float64
			itemStatus *domain.ItemStatus
			version    *int64
			createdAt  *time.Time
			updatedAt  *time.Time
		)
		err := rows.Scan(&o.ID, &o.TableID, &o.WaiterID, &o.Status, &o.Cash, &o.Card,
			&o.Balance, &o.Total, &o.Printed, &o.BillPrinted, &o.Version, &o.CreatedAt, &o.UpdatedAt,
			&agg.TableNo, &agg.WaiterName,
			&itemID, &menuItemID, &drinkID, &itemName, &quantity,
			&unitPrice, &total, &itemStatus, &version, &createdAt, &updatedAt)
		if err != nil {
			return domain.OrderAggregate{}, err
		}
		agg.Order = o
		found = true
		if itemID != nil {
			agg.Items = append(agg.Items, domain.OrderItem{
				ID:         *itemID,
				OrderID:    o.ID,
				MenuItemID: menuItemID,
				DrinkID:    drinkID,
				Name:       *itemName,
				Quantity:   *quantity,
				UnitPrice:  *unitPrice,
				Total:      *total,
				Status:     *itemStatus,
				Version:    *version,
				CreatedAt:  *createdAt,
				UpdatedAt:  *updatedAt,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return domain.OrderAggregate{}, err
	}
	if !found {
		return domain.OrderAggregate{}, &domain.NotFoundError{Entity: "open order for table", ID: tableID}
	}

	for _, i := range agg.Items {
		agg.Totals.Quantity += i.Quantity
		agg.Totals.Price += i.Total
	}
	agg.Totals.Price = domain.RoundCents(agg.Totals.Price)
	return agg, nil
}

func (r *Repository) ListAssignable(ctx context.Context) ([]domain.Employee, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, password_hash, role, status, created_at, updated_at
		FROM employees
		WHERE status='active' AND role IN ('waiter', 'admin')
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("list assignable: %w", err)
	}
	defer rows.Close()

	var out []domain.Employee
	for rows.Next() {
		var e domain.Employee
		if err := rows.Scan(&e.ID, &e.Name, &e.PasswordHash, &e.Role, &e.Status, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
