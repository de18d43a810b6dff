package http

import (
	"context"
	"net/http"

	"library-circulation/internal/domain"
)

type contextKey int

const callerKey contextKey = iota

func withCaller(ctx context.Context, u *domain.User) context.Context {
	return context.WithValue(ctx, callerKey, u)
}

// CallerFromContext returns the authenticated user the middleware loaded,
// or nil on public routes.
func CallerFromContext(ctx context.Context) *domain.User {
	u, _ := ctx.Value(callerKey).(*domain.User)
	return u
}

// isStaff reports whether u may act on other users' records.
func isStaff(u *domain.User) bool {
	return u != nil && u.HasPermission(domain.PermissionManageUsers)
}

// actingFor resolves which user a request acts for. An empty target means
// the caller; acting for someone else needs staff rights.
func actingFor(r *http.Request, target string) (string, error) {
	caller := CallerFromContext(r.Context())
	if caller == nil {
		return "", errUnauthenticated
	}
	if target == "" || target == caller.ID {
		return caller.ID, nil
	}
	if !isStaff(caller) {
		return "", errForbidden
	}
	return target, nil
}

// ownedBy checks that the caller owns a record or is staff.
func ownedBy(r *http.Request, ownerID string) error {
	_, err := actingFor(r, ownerID)
	return err
}
