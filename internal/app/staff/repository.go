package staff

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pos-system/internal/domain"
)

type RepositoryInterface interface {
	GetByName(ctx context.Context, name string) (domain.Employee, error)
	GetByID(ctx context.Context, id string) (domain.Employee, error)
	List(ctx context.Context, includeInactive bool) ([]domain.Employee, error)
	Insert(ctx context.Context, e domain.Employee) error
	Update(ctx context.Context, e domain.Employee) error
	SetStatus(ctx context.Context, id string, status domain.EmployeeStatus) error
	CountAll(ctx context.Context) (int, error)
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository { return &Repository{db: db} }

const employeeCols = `id, name, password_hash, role, status, created_at, updated_at`

func scanEmployee(row pgx.Row) (domain.Employee, error) {
	var e domain.Employee
	err := row.Scan(&e.ID, &e.Name, &e.PasswordHash, &e.Role, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func (r *Repository) GetByName(ctx context.Context, name string) (domain.Employee, error) {
	e, err := scanEmployee(r.db.QueryRow(ctx,
		`SELECT `+employeeCols+` FROM employees WHERE name=$1`, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Employee{}, &domain.NotFoundError{Entity: "employee", ID: name}
	}
	return e, err
}

func (r *Repository) GetByID(ctx context.Context, id string) (domain.Employee, error) {
	e, err := scanEmployee(r.db.QueryRow(ctx,
		`SELECT `+employeeCols+` FROM employees WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Employee{}, &domain.NotFoundError{Entity: "employee", ID: id}
	}
	return e, err
}

func (r *Repository) List(ctx context.Context, includeInactive bool) ([]domain.Employee, error) {
	q := `SELECT ` + employeeCols + ` FROM employees`
	if !includeInactive {
		q += ` WHERE status = 'active'`
	}
	q += ` ORDER BY name`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	var out []domain.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *Repository) Insert(ctx context.Context, e domain.Employee) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO employees (id, name, password_hash, role, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
	`, e.ID, e.Name, e.PasswordHash, e.Role, e.Status)
	return err
}

func (r *Repository) Update(ctx context.Context, e domain.Employee) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE employees SET name=$2, password_hash=$3, role=$4, updated_at=now()
		WHERE id=$1
	`, e.ID, e.Name, e.PasswordHash, e.Role)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{Entity: "employee", ID: e.ID}
	}
	return nil
}

func (r *Repository) SetStatus(ctx context.Context, id string, status domain.EmployeeStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE employees SET status=$2, updated_at=now() WHERE id=$1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &domain.NotFoundError{Entity: "employee", ID: id}
	}
	return nil
}

func (r *Repository) CountAll(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM employees`).Scan(&n)
	return n, err
}
