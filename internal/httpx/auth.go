package httpx

import (
	"context"
	"net/http"

	"github.com/anigawade45/grocery-market/internal/market"
)

// Identity is resolved by the auth layer in front of this service. The core
// trusts the resolved identity but re-validates ownership per operation.
type Identity struct {
	UserID string
	Role   market.Role
}

type ctxKey int

const identityKey ctxKey = iota

func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// RequireIdentity rejects requests the auth layer did not annotate.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("X-User-Id")
		role := market.Role(r.Header.Get("X-User-Role"))
		if userID == "" || (role != market.RoleBuyer && role != market.RoleSupplier) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing identity"})
			return
		}
		ctx := context.WithValue(r.Context(), identityKey, Identity{UserID: userID, Role: role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requireRole(w http.ResponseWriter, r *http.Request, role market.Role) (Identity, bool) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing identity"})
		return Identity{}, false
	}
	if id.Role != role {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "role " + string(role) + " required"})
		return Identity{}, false
	}
	return id, true
}
