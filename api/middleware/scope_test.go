package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	ordersvc "github.com/jorgenomente/GestockMultitenant-sub000/internal/orders"
)

func TestScopeRequiresTenantHeader(t *testing.T) {
	handler := Scope(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run without a tenant header")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", rec.Code)
	}
}

func TestScopeRejectsMalformedTenant(t *testing.T) {
	handler := Scope(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run with a malformed tenant header")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("X-Tenant-Id", "not-a-uuid")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", rec.Code)
	}
}

func TestScopeSeedsContext(t *testing.T) {
	tenantID := uuid.New()
	branchID := uuid.New()

	var got ordersvc.Scope
	handler := Scope(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ScopeFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("X-Tenant-Id", tenantID.String())
	req.Header.Set("X-Branch-Id", branchID.String())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", rec.Code)
	}
	if got.TenantID != tenantID {
		t.Fatalf("tenant not seeded, got %s", got.TenantID)
	}
	if got.BranchID == nil || *got.BranchID != branchID {
		t.Fatalf("branch not seeded, got %v", got.BranchID)
	}
}

func TestScopeBranchOptional(t *testing.T) {
	tenantID := uuid.New()

	var got ordersvc.Scope
	handler := Scope(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ScopeFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("X-Tenant-Id", tenantID.String())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got.BranchID != nil {
		t.Fatalf("expected nil branch, got %v", got.BranchID)
	}
}
