package uistate

import (
	"context"
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/db/models"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/logger"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type stubStateRepo struct {
	state   *models.OrderUIState
	upserts int
}

func (r *stubStateRepo) Find(ctx context.Context, orderID uuid.UUID) (*models.OrderUIState, error) {
	if r.state == nil {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *r.state
	copied.GroupOrder = append([]string(nil), r.state.GroupOrder...)
	copied.Confirmed = make(map[string]bool, len(r.state.Confirmed))
	for k, v := range r.state.Confirmed {
		copied.Confirmed[k] = v
	}
	return &copied, nil
}

func (r *stubStateRepo) Upsert(ctx context.Context, state *models.OrderUIState) error {
	r.state = state
	r.upserts++
	return nil
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo, logger.New(logger.Options{Level: zerolog.ErrorLevel}))
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}
	return svc
}

func TestLoadReturnsDefaultsWhenMissing(t *testing.T) {
	svc := newTestService(t, &stubStateRepo{})
	orderID := uuid.New()

	state, err := svc.Load(context.Background(), orderID)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if state.OrderID != orderID {
		t.Fatalf("expected order %s got %s", orderID, state.OrderID)
	}
	if len(state.GroupOrder) != 0 || len(state.Confirmed) != 0 {
		t.Fatalf("expected empty defaults got %+v", state)
	}
}

func TestMoveGroupSeedsFromVisible(t *testing.T) {
	repo := &stubStateRepo{}
	svc := newTestService(t, repo)
	visible := []string{"fruit", "dairy", "bakery"}

	state, err := svc.MoveGroup(context.Background(), uuid.New(), "bakery", 0, visible)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	want := []string{"bakery", "fruit", "dairy"}
	if !reflect.DeepEqual(state.GroupOrder, want) {
		t.Fatalf("expected %v got %v", want, state.GroupOrder)
	}
	if repo.upserts != 1 {
		t.Fatalf("expected one upsert got %d", repo.upserts)
	}
}

func TestMoveGroupSplicesPersistedOrder(t *testing.T) {
	repo := &stubStateRepo{state: &models.OrderUIState{
		OrderID:    uuid.New(),
		GroupOrder: []string{"a", "b", "c", "d"},
	}}
	svc := newTestService(t, repo)

	state, err := svc.MoveGroup(context.Background(), repo.state.OrderID, "a", 2, nil)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	want := []string{"b", "c", "a", "d"}
	if !reflect.DeepEqual(state.GroupOrder, want) {
		t.Fatalf("expected %v got %v", want, state.GroupOrder)
	}
}

func TestMoveGroupClampsIndex(t *testing.T) {
	repo := &stubStateRepo{state: &models.OrderUIState{
		OrderID:    uuid.New(),
		GroupOrder: []string{"a", "b"},
	}}
	svc := newTestService(t, repo)

	state, err := svc.MoveGroup(context.Background(), repo.state.OrderID, "a", 99, nil)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	want := []string{"b", "a"}
	if !reflect.DeepEqual(state.GroupOrder, want) {
		t.Fatalf("expected %v got %v", want, state.GroupOrder)
	}
}

func TestMoveUpAndDown(t *testing.T) {
	repo := &stubStateRepo{}
	svc := newTestService(t, repo)
	orderID := uuid.New()
	visible := []string{"a", "b", "c"}

	state, err := svc.MoveUp(context.Background(), orderID, "b", visible)
	if err != nil {
		t.Fatalf("move up failed: %v", err)
	}
	if !reflect.DeepEqual(state.GroupOrder, []string{"b", "a", "c"}) {
		t.Fatalf("unexpected order after up: %v", state.GroupOrder)
	}

	state, err = svc.MoveDown(context.Background(), orderID, "b", nil)
	if err != nil {
		t.Fatalf("move down failed: %v", err)
	}
	if !reflect.DeepEqual(state.GroupOrder, []string{"a", "b", "c"}) {
		t.Fatalf("unexpected order after down: %v", state.GroupOrder)
	}
}

func TestMoveUpAtTopStays(t *testing.T) {
	repo := &stubStateRepo{state: &models.OrderUIState{
		OrderID:    uuid.New(),
		GroupOrder: []string{"a", "b"},
	}}
	svc := newTestService(t, repo)

	state, err := svc.MoveUp(context.Background(), repo.state.OrderID, "a", nil)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if !reflect.DeepEqual(state.GroupOrder, []string{"a", "b"}) {
		t.Fatalf("top group must stay put, got %v", state.GroupOrder)
	}
}

func TestRenameGroupKeepsPosition(t *testing.T) {
	repo := &stubStateRepo{state: &models.OrderUIState{
		OrderID:    uuid.New(),
		GroupOrder: []string{"a", "old", "c"},
		Confirmed:  map[string]bool{"item-1": true},
	}}
	svc := newTestService(t, repo)

	state, err := svc.RenameGroup(context.Background(), repo.state.OrderID, "old", "new")
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if !reflect.DeepEqual(state.GroupOrder, []string{"a", "new", "c"}) {
		t.Fatalf("unexpected order %v", state.GroupOrder)
	}
	if !state.Confirmed["item-1"] {
		t.Fatal("rename must not touch confirmed flags")
	}
}

func TestSetConfirmedToggles(t *testing.T) {
	repo := &stubStateRepo{}
	svc := newTestService(t, repo)
	orderID := uuid.New()

	state, err := svc.SetConfirmed(context.Background(), orderID, "item-1", true)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if !state.Confirmed["item-1"] {
		t.Fatal("expected item confirmed")
	}

	state, err = svc.SetConfirmed(context.Background(), orderID, "item-1", false)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if _, ok := state.Confirmed["item-1"]; ok {
		t.Fatal("unconfirming must drop the key")
	}
}

func TestSetAllConfirmed(t *testing.T) {
	repo := &stubStateRepo{}
	svc := newTestService(t, repo)
	orderID := uuid.New()
	ids := []string{"a", "b", "c"}

	state, err := svc.SetAllConfirmed(context.Background(), orderID, ids, true)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if len(state.Confirmed) != 3 {
		t.Fatalf("expected 3 confirmed got %d", len(state.Confirmed))
	}

	state, err = svc.SetAllConfirmed(context.Background(), orderID, nil, false)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if len(state.Confirmed) != 0 {
		t.Fatalf("select none must clear the map, got %d", len(state.Confirmed))
	}
}
