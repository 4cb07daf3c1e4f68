package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jorgenomente/GestockMultitenant-sub000/api/responses"
	"github.com/jorgenomente/GestockMultitenant-sub000/internal/orders"
	pkgerrors "github.com/jorgenomente/GestockMultitenant-sub000/pkg/errors"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/logger"
)

const (
	tenantHeader = "X-Tenant-Id"
	branchHeader = "X-Branch-Id"
)

type contextKey string

const ctxScope contextKey = "scope"

// Scope parses the tenant and branch headers into the request context. The
// tenant header is mandatory, the branch header is optional.
func Scope(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(tenantHeader))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeMissingScope, "missing tenant header"))
				return
			}

			tenantID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeMissingScope, err, "invalid tenant header"))
				return
			}

			scope := orders.Scope{TenantID: tenantID}
			if rawBranch := strings.TrimSpace(r.Header.Get(branchHeader)); rawBranch != "" {
				branchID, err := uuid.Parse(rawBranch)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeMissingScope, err, "invalid branch header"))
					return
				}
				scope.BranchID = &branchID
			}

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithTenantID(ctx, tenantID.String())
			}
			ctx = context.WithValue(ctx, ctxScope, scope)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ScopeFromContext returns the scope seeded by the Scope middleware. The zero
// scope is returned when the middleware did not run.
func ScopeFromContext(ctx context.Context) orders.Scope {
	if ctx == nil {
		return orders.Scope{}
	}
	if v, ok := ctx.Value(ctxScope).(orders.Scope); ok {
		return v
	}
	return orders.Scope{}
}

// WithScope injects a scope directly, used by tests and the feed worker.
func WithScope(ctx context.Context, scope orders.Scope) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxScope, scope)
}
