package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jorgenomente/GestockMultitenant-sub000/api/middleware"
	ordersvc "github.com/jorgenomente/GestockMultitenant-sub000/internal/orders"
	"github.com/jorgenomente/GestockMultitenant-sub000/internal/stats"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/db/models"
	pkgerrors "github.com/jorgenomente/GestockMultitenant-sub000/pkg/errors"
)

type stubOrderService struct {
	detail    *ordersvc.OrderDetail
	view      *ordersvc.ItemView
	result    *ordersvc.BulkResult
	clipboard string
	err       error

	gotScope  ordersvc.Scope
	gotPeriod stats.Period
}

func (s *stubOrderService) GetOrCreateOrder(ctx context.Context, providerID uuid.UUID, scope ordersvc.Scope) (*ordersvc.OrderDetail, error) {
	s.gotScope = scope
	return s.detail, s.err
}

func (s *stubOrderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*ordersvc.OrderDetail, error) {
	return s.detail, s.err
}

func (s *stubOrderService) UpdateOrderHeader(ctx context.Context, orderID uuid.UUID, input ordersvc.UpdateOrderInput) error {
	return s.err
}

func (s *stubOrderService) AddItem(ctx context.Context, orderID uuid.UUID, scope ordersvc.Scope, input ordersvc.AddItemInput) (*ordersvc.ItemView, error) {
	s.gotScope = scope
	return s.view, s.err
}

func (s *stubOrderService) AddGroupPlaceholder(ctx context.Context, orderID uuid.UUID, scope ordersvc.Scope, group string) (*models.OrderItem, error) {
	return &models.OrderItem{ID: uuid.New()}, s.err
}

func (s *stubOrderService) UpdateItem(ctx context.Context, orderID, itemID uuid.UUID, input ordersvc.UpdateItemInput) (*models.OrderItem, error) {
	return &models.OrderItem{ID: itemID}, s.err
}

func (s *stubOrderService) DeleteItem(ctx context.Context, orderID, itemID uuid.UUID) error {
	return s.err
}

func (s *stubOrderService) DeleteGroup(ctx context.Context, orderID uuid.UUID, group string) (int, error) {
	return 2, s.err
}

func (s *stubOrderService) BulkAddItems(ctx context.Context, orderID uuid.UUID, scope ordersvc.Scope, names []string, group string) (*ordersvc.BulkResult, error) {
	s.gotScope = scope
	return s.result, s.err
}

func (s *stubOrderService) BulkRemoveByNames(ctx context.Context, orderID uuid.UUID, names []string, group string) error {
	return s.err
}

func (s *stubOrderService) ApplySuggested(ctx context.Context, orderID uuid.UUID, period stats.Period) (*ordersvc.ApplySuggestedResult, error) {
	s.gotPeriod = period
	return s.result, s.err
}

func (s *stubOrderService) ZeroAllQuantities(ctx context.Context, orderID uuid.UUID) error {
	return s.err
}

func (s *stubOrderService) SavePreviousQuantities(ctx context.Context, orderID uuid.UUID) error {
	return s.err
}

func (s *stubOrderService) ReplaceAll(ctx context.Context, orderID uuid.UUID, scope ordersvc.Scope, items []ordersvc.ReplaceItem) error {
	return s.err
}

func (s *stubOrderService) RecomputeTotal(ctx context.Context, orderID uuid.UUID) (int, error) {
	return 0, s.err
}

func (s *stubOrderService) ClipboardText(ctx context.Context, orderID uuid.UUID, groupOrder []string) (string, error) {
	return s.clipboard, s.err
}

func requestWithParam(method, target, name, value string, body []byte) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(name, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestOrderGetOrCreatePassesScope(t *testing.T) {
	providerID := uuid.New()
	tenantID := uuid.New()
	svc := &stubOrderService{detail: &ordersvc.OrderDetail{Order: models.ProviderOrder{ID: uuid.New(), ProviderID: providerID}}}

	req := requestWithParam(http.MethodGet, "/api/v1/providers/"+providerID.String()+"/order", "providerId", providerID.String(), nil)
	req = req.WithContext(middleware.WithScope(req.Context(), ordersvc.Scope{TenantID: tenantID}))

	rec := httptest.NewRecorder()
	OrderGetOrCreate(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.gotScope.TenantID != tenantID {
		t.Fatalf("scope not forwarded, got tenant %s", svc.gotScope.TenantID)
	}

	var envelope struct {
		Data ordersvc.OrderDetail `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Order.ProviderID != providerID {
		t.Fatalf("unexpected provider id: %s", envelope.Data.Order.ProviderID)
	}
}

func TestOrderGetOrCreateInvalidProviderID(t *testing.T) {
	svc := &stubOrderService{}
	req := requestWithParam(http.MethodGet, "/api/v1/providers/nope/order", "providerId", "nope", nil)

	rec := httptest.NewRecorder()
	OrderGetOrCreate(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestOrderGetMissingScopeBubblesUp(t *testing.T) {
	orderID := uuid.New()
	svc := &stubOrderService{err: pkgerrors.New(pkgerrors.CodeMissingScope, "tenant scope required for item mutation")}

	req := requestWithParam(http.MethodGet, "/api/v1/orders/"+orderID.String(), "orderId", orderID.String(), nil)
	rec := httptest.NewRecorder()
	OrderGet(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", rec.Code)
	}
}

func TestItemAddRejectsMissingProductKey(t *testing.T) {
	orderID := uuid.New()
	svc := &stubOrderService{}

	req := requestWithParam(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/items", "orderId", orderID.String(), []byte(`{"qty": 3}`))
	rec := httptest.NewRecorder()
	ItemAdd(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestItemAddCreated(t *testing.T) {
	orderID := uuid.New()
	itemID := uuid.New()
	svc := &stubOrderService{view: &ordersvc.ItemView{OrderItem: models.OrderItem{ID: itemID, ProductKey: "apple"}}}

	req := requestWithParam(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/items", "orderId", orderID.String(), []byte(`{"product_key": "apple"}`))
	rec := httptest.NewRecorder()
	ItemAdd(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", rec.Code)
	}

	var envelope struct {
		Data ordersvc.ItemView `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != itemID {
		t.Fatalf("unexpected item id: %s", envelope.Data.ID)
	}
}

func TestApplySuggestedForwardsPeriod(t *testing.T) {
	orderID := uuid.New()
	svc := &stubOrderService{result: &ordersvc.BulkResult{ItemsTargeted: 4, ChunksTotal: 2, ChunksApplied: 2}}

	req := requestWithParam(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/apply-suggested", "orderId", orderID.String(), []byte(`{"period": "2w"}`))
	rec := httptest.NewRecorder()
	ApplySuggested(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.gotPeriod != stats.Period2W {
		t.Fatalf("expected period 2w, got %q", svc.gotPeriod)
	}
}

func TestApplySuggestedRejectsUnknownPeriod(t *testing.T) {
	orderID := uuid.New()
	svc := &stubOrderService{}

	req := requestWithParam(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/apply-suggested", "orderId", orderID.String(), []byte(`{"period": "quarter"}`))
	rec := httptest.NewRecorder()
	ApplySuggested(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestApplySuggestedPartialFailureSurfacesDetails(t *testing.T) {
	orderID := uuid.New()
	result := &ordersvc.BulkResult{ItemsTargeted: 4, ChunksTotal: 2, ChunksApplied: 1}
	svc := &stubOrderService{err: pkgerrors.New(pkgerrors.CodeBulkPartial, "applied 1 of 2 chunks").WithDetails(map[string]any{"chunks_applied": result.ChunksApplied})}

	req := requestWithParam(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/apply-suggested", "orderId", orderID.String(), []byte(`{"period": "week"}`))
	rec := httptest.NewRecorder()
	ApplySuggested(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 got %d", rec.Code)
	}

	var envelope struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeBulkPartial) {
		t.Fatalf("unexpected error code: %s", envelope.Error.Code)
	}
	if envelope.Error.Details["chunks_applied"] != float64(1) {
		t.Fatalf("expected chunk progress in details, got %v", envelope.Error.Details)
	}
}

func TestOrderClipboardServesPlainText(t *testing.T) {
	orderID := uuid.New()
	svc := &stubOrderService{clipboard: "fruit\n3 apple\n"}

	req := requestWithParam(http.MethodGet, "/api/v1/orders/"+orderID.String()+"/clipboard", "orderId", orderID.String(), nil)
	rec := httptest.NewRecorder()
	OrderClipboard(svc, nil, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/plain; charset=utf-8" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if rec.Body.String() != "fruit\n3 apple\n" {
		t.Fatalf("unexpected clipboard text: %q", rec.Body.String())
	}
}
