package snapshots

import (
	"context"

	"github.com/google/uuid"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists order snapshots. Snapshots are write-once rows.
type Repository interface {
	Create(ctx context.Context, snapshot *models.OrderSnapshot) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.OrderSnapshot, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID, limit int) ([]models.OrderSnapshot, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, snapshot *models.OrderSnapshot) error {
	return r.db.WithContext(ctx).Create(snapshot).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.OrderSnapshot, error) {
	var snapshot models.OrderSnapshot
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&snapshot).Error
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (r *repository) ListByOrder(ctx context.Context, orderID uuid.UUID, limit int) ([]models.OrderSnapshot, error) {
	q := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var snapshots []models.OrderSnapshot
	if err := q.Find(&snapshots).Error; err != nil {
		return nil, err
	}
	return snapshots, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.OrderSnapshot{})
	return res.RowsAffected, res.Error
}
