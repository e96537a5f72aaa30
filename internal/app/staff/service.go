package staff

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"pos-system/internal/app/audit"
	"pos-system/internal/domain"
)

const tokenTTL = 12 * time.Hour

type Claims struct {
	EmployeeID string      `json:"employee_id"`
	Name       string      `json:"name"`
	Role       domain.Role `json:"role"`
	jwt.RegisteredClaims
}

type ServiceInterface interface {
	Login(ctx context.Context, name, password string) (string, domain.Employee, error)
	ParseToken(token string) (Claims, error)
	CreateEmployee(ctx context.Context, name, password string, role domain.Role) (domain.Employee, error)
	UpdateEmployee(ctx context.Context, id, name, password string, role domain.Role) (domain.Employee, error)
	Deactivate(ctx context.Context, id string) error
	Reactivate(ctx context.Context, id string) error
	ListEmployees(ctx context.Context, includeInactive bool) ([]domain.Employee, error)
	EnsureAdmin(ctx context.Context, password string) error
}

type Service struct {
	repo     RepositoryInterface
	recorder audit.Recorder
	secret   []byte
	now      func() time.Time
}

func NewService(repo RepositoryInterface, recorder audit.Recorder, jwtSecret string) *Service {
	return &Service{repo: repo, recorder: recorder, secret: []byte(jwtSecret), now: time.Now}
}

// Login verifies the staff PIN against its bcrypt hash and issues a JWT
// carrying the employee id and role. Inactive accounts cannot log in.
func (s *Service) Login(ctx context.Context, name, password string) (string, domain.Employee, error) {
	e, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return "", domain.Employee{}, domain.AccessDeniedf("invalid name or password")
	}
	if e.Status != domain.EmployeeActive {
		return "", domain.Employee{}, domain.AccessDeniedf("account is deactivated")
	}
	if bcrypt.CompareHashAndPassword([]byte(e.PasswordHash), []byte(password)) != nil {
		return "", domain.Employee{}, domain.AccessDeniedf("invalid name or password")
	}

	now := s.now().UTC()
	claims := Claims{
		EmployeeID: e.ID,
		Name:       e.Name,
		Role:       e.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", domain.Employee{}, err
	}

	s.recorder.Record(ctx, e.Name, audit.ActionLogin, map[string]any{"role": string(e.Role)})
	return token, e, nil
}

func (s *Service) ParseToken(token string) (Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.AccessDeniedf("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Claims{}, domain.AccessDeniedf("invalid token")
	}
	return claims, nil
}

func (s *Service) CreateEmployee(ctx context.Context, name, password string, role domain.Role) (domain.Employee, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Employee{}, domain.Validationf("employee name is required")
	}
	if len(password) < 4 {
		return domain.Employee{}, domain.Validationf("password must be at least 4 characters")
	}
	if !role.Valid() {
		return domain.Employee{}, domain.Validationf("unknown role %q", role)
	}
	if _, err := s.repo.GetByName(ctx, name); err == nil {
		return domain.Employee{}, domain.Conflictf("employee %q already exists", name)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.Employee{}, err
	}
	e := domain.Employee{
		ID:           uuid.NewString(),
		Name:         name,
		PasswordHash: string(hash),
		Role:         role,
		Status:       domain.EmployeeActive,
	}
	if err := s.repo.Insert(ctx, e); err != nil {
		return domain.Employee{}, err
	}
	return e, nil
}

// UpdateEmployee changes name/role and, when password is non-empty, rehashes
// it. An empty password keeps the current one.
func (s *Service) UpdateEmployee(ctx context.Context, id, name, password string, role domain.Role) (domain.Employee, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Employee{}, err
	}
	if name = strings.TrimSpace(name); name != "" {
		e.Name = name
	}
	if role != "" {
		if !role.Valid() {
			return domain.Employee{}, domain.Validationf("unknown role %q", role)
		}
		e.Role = role
	}
	if password != "" {
		if len(password) < 4 {
			return domain.Employee{}, domain.Validationf("password must be at least 4 characters")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return domain.Employee{}, err
		}
		e.PasswordHash = string(hash)
	}
	if err := s.repo.Update(ctx, e); err != nil {
		return domain.Employee{}, err
	}
	return e, nil
}

// Deactivate is the only removal path for employees. Rows are never hard
// deleted so historical orders keep a valid waiter reference.
func (s *Service) Deactivate(ctx context.Context, id string) error {
	return s.repo.SetStatus(ctx, id, domain.EmployeeInactive)
}

func (s *Service) Reactivate(ctx context.Context, id string) error {
	return s.repo.SetStatus(ctx, id, domain.EmployeeActive)
}

func (s *Service) ListEmployees(ctx context.Context, includeInactive bool) ([]domain.Employee, error) {
	return s.repo.List(ctx, includeInactive)
}

// EnsureAdmin bootstraps the first admin account on an empty database.
func (s *Service) EnsureAdmin(ctx context.Context, password string) error {
	n, err := s.repo.CountAll(ctx)
	if err != nil {
		return err
	}
	if n > 0 || password == "" {
		return nil
	}
	_, err = s.CreateEmployee(ctx, "admin", password, domain.RoleAdmin)
	return err
}
