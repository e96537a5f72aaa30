package staff

import (
	"context"
	"net/http"
	"strings"

	"pos-system/internal/common/httpx"
	"pos-system/internal/domain"
)

type ctxKey int

const identityKey ctxKey = 0

// Identity is the authenticated caller, placed in the request context by
// Authenticate.
type Identity struct {
	EmployeeID string
	Name       string
	Role       domain.Role
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// Authenticate parses the bearer token and rejects requests without a valid
// one.
func Authenticate(svc ServiceInterface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httpx.WriteProblem(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
				return
			}
			claims, err := svc.ParseToken(token)
			if err != nil {
				httpx.WriteProblem(w, http.StatusUnauthorized, "unauthorized", "invalid token")
				return
			}
			identity := Identity{EmployeeID: claims.EmployeeID, Name: claims.Name, Role: claims.Role}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, identity)))
		})
	}
}

// RequireRole gates a route to the given roles.
func RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	allowed := make(map[domain.Role]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFrom(r.Context())
			if !ok || !allowed[id.Role] {
				httpx.WriteProblem(w, http.StatusForbidden, "access_denied", "role not permitted")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
