package uistate

import (
	"context"

	"github.com/google/uuid"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists one UI-state row per order.
type Repository interface {
	Find(ctx context.Context, orderID uuid.UUID) (*models.OrderUIState, error)
	Upsert(ctx context.Context, state *models.OrderUIState) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Find(ctx context.Context, orderID uuid.UUID) (*models.OrderUIState, error) {
	var state models.OrderUIState
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&state).Error
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (r *repository) Upsert(ctx context.Context, state *models.OrderUIState) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"group_order", "confirmed", "updated_at"}),
		}).
		Create(state).Error
}
