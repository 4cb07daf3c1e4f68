// Package uistate stores presentation-only state per order: the custom group
// display order and the per-item confirmed checkmarks. Nothing here ever
// feeds totals, statistics or exports; losing a row only resets presentation
// defaults.
package uistate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/db/models"
	pkgerrors "github.com/jorgenomente/GestockMultitenant-sub000/pkg/errors"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/logger"
	"gorm.io/gorm"
)

// Service exposes UI-state reads and the reorder/confirm mutations. Every
// mutation persists the whole row in one upsert.
type Service interface {
	Load(ctx context.Context, orderID uuid.UUID) (*models.OrderUIState, error)
	SaveGroupOrder(ctx context.Context, orderID uuid.UUID, groups []string) (*models.OrderUIState, error)
	MoveGroup(ctx context.Context, orderID uuid.UUID, name string, toIndex int, visible []string) (*models.OrderUIState, error)
	MoveUp(ctx context.Context, orderID uuid.UUID, name string, visible []string) (*models.OrderUIState, error)
	MoveDown(ctx context.Context, orderID uuid.UUID, name string, visible []string) (*models.OrderUIState, error)
	RenameGroup(ctx context.Context, orderID uuid.UUID, oldName, newName string) (*models.OrderUIState, error)
	SetConfirmed(ctx context.Context, orderID uuid.UUID, itemID string, confirmed bool) (*models.OrderUIState, error)
	SetAllConfirmed(ctx context.Context, orderID uuid.UUID, itemIDs []string, confirmed bool) (*models.OrderUIState, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ui state repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) Load(ctx context.Context, orderID uuid.UUID) (*models.OrderUIState, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	state, err := s.repo.Find(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return defaultState(orderID), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ui state")
	}
	if state.Confirmed == nil {
		state.Confirmed = make(map[string]bool)
	}
	return state, nil
}

func (s *service) SaveGroupOrder(ctx context.Context, orderID uuid.UUID, groups []string) (*models.OrderUIState, error) {
	return s.mutate(ctx, orderID, func(state *models.OrderUIState) {
		state.GroupOrder = dedupe(groups)
	})
}

// MoveGroup splices the named group out of the order array and reinserts it
// at toIndex. With no persisted order yet, the array is seeded from the
// currently visible groups so every group has a position to move from.
func (s *service) MoveGroup(ctx context.Context, orderID uuid.UUID, name string, toIndex int, visible []string) (*models.OrderUIState, error) {
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "group name required")
	}
	return s.mutate(ctx, orderID, func(state *models.OrderUIState) {
		order := seedOrder(state.GroupOrder, visible)
		state.GroupOrder = splice(order, name, toIndex)
	})
}

func (s *service) MoveUp(ctx context.Context, orderID uuid.UUID, name string, visible []string) (*models.OrderUIState, error) {
	return s.step(ctx, orderID, name, visible, -1)
}

func (s *service) MoveDown(ctx context.Context, orderID uuid.UUID, name string, visible []string) (*models.OrderUIState, error) {
	return s.step(ctx, orderID, name, visible, +1)
}

func (s *service) step(ctx context.Context, orderID uuid.UUID, name string, visible []string, delta int) (*models.OrderUIState, error) {
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "group name required")
	}
	return s.mutate(ctx, orderID, func(state *models.OrderUIState) {
		order := seedOrder(state.GroupOrder, visible)
		at := indexOf(order, name)
		if at < 0 {
			order = append(order, name)
			at = len(order) - 1
		}
		state.GroupOrder = splice(order, name, at+delta)
	})
}

// RenameGroup rewrites the name inside the order array in place so ordering
// survives a rename. Confirmed flags key on item ids and are untouched.
func (s *service) RenameGroup(ctx context.Context, orderID uuid.UUID, oldName, newName string) (*models.OrderUIState, error) {
	if oldName == "" || newName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "both group names required")
	}
	return s.mutate(ctx, orderID, func(state *models.OrderUIState) {
		for i, g := range state.GroupOrder {
			if g == oldName {
				state.GroupOrder[i] = newName
			}
		}
	})
}

func (s *service) SetConfirmed(ctx context.Context, orderID uuid.UUID, itemID string, confirmed bool) (*models.OrderUIState, error) {
	if itemID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	return s.mutate(ctx, orderID, func(state *models.OrderUIState) {
		if confirmed {
			state.Confirmed[itemID] = true
			return
		}
		delete(state.Confirmed, itemID)
	})
}

func (s *service) SetAllConfirmed(ctx context.Context, orderID uuid.UUID, itemIDs []string, confirmed bool) (*models.OrderUIState, error) {
	return s.mutate(ctx, orderID, func(state *models.OrderUIState) {
		if !confirmed {
			state.Confirmed = make(map[string]bool)
			return
		}
		for _, id := range itemIDs {
			if id != "" {
				state.Confirmed[id] = true
			}
		}
	})
}

func (s *service) mutate(ctx context.Context, orderID uuid.UUID, apply func(*models.OrderUIState)) (*models.OrderUIState, error) {
	state, err := s.Load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	apply(state)
	state.UpdatedAt = time.Now().UTC()
	if err := s.repo.Upsert(ctx, state); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeWriteFailed, err, "save ui state")
	}
	return state, nil
}

func defaultState(orderID uuid.UUID) *models.OrderUIState {
	return &models.OrderUIState{
		OrderID:    orderID,
		GroupOrder: nil,
		Confirmed:  make(map[string]bool),
	}
}

// seedOrder returns the persisted order when present, otherwise the visible
// groups deduped in first-seen order.
func seedOrder(persisted, visible []string) []string {
	if len(persisted) > 0 {
		return append([]string(nil), persisted...)
	}
	return dedupe(visible)
}

// splice removes name from the array and reinserts it at toIndex, clamped to
// the array bounds. A name not present is appended first.
func splice(order []string, name string, toIndex int) []string {
	out := make([]string, 0, len(order)+1)
	for _, g := range order {
		if g != name {
			out = append(out, g)
		}
	}
	if toIndex < 0 {
		toIndex = 0
	}
	if toIndex > len(out) {
		toIndex = len(out)
	}
	out = append(out, "")
	copy(out[toIndex+1:], out[toIndex:])
	out[toIndex] = name
	return out
}

func indexOf(order []string, name string) int {
	for i, g := range order {
		if g == name {
			return i
		}
	}
	return -1
}

func dedupe(groups []string) []string {
	seen := make(map[string]bool, len(groups))
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		if g == "" || seen[g] {
			continue
		}
		seen[g] = true
		out = append(out, g)
	}
	return out
}
