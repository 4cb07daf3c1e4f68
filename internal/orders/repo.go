package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jorgenomente/GestockMultitenant-sub000/internal/schema"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db  *gorm.DB
	res schema.Resolution
}

// NewRepository builds an orders repository bound to the provided DB and the
// pinned schema resolution.
func NewRepository(db *gorm.DB, res schema.Resolution) Repository {
	return &repository{db: db, res: res}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx, res: r.res}
}

func (r *repository) items(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table(r.res.Table)
}

func (r *repository) FindOrderByID(ctx context.Context, orderID uuid.UUID) (*models.ProviderOrder, error) {
	var order models.ProviderOrder
	err := r.db.WithContext(ctx).Where("id = ?", orderID).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindLatestOrder(ctx context.Context, providerID uuid.UUID, scope Scope) (*models.ProviderOrder, error) {
	q := r.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Where("tenant_id = ?", scope.TenantID)
	if scope.BranchID != nil {
		q = q.Where("branch_id = ?", *scope.BranchID)
	} else {
		q = q.Where("branch_id IS NULL")
	}

	var order models.ProviderOrder
	err := q.Order("created_at DESC").First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) CreateOrder(ctx context.Context, order *models.ProviderOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.ProviderOrder{}).
		Where("id = ?", orderID).
		Updates(updates).Error
}

func (r *repository) FindItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := r.items(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// itemRow flattens an item to a column map honoring the resolved scoping:
// scope columns the table does not carry are never written, which is what
// lets one binary talk to both migrated and unmigrated stores.
func (r *repository) itemRow(item models.OrderItem) map[string]any {
	row := map[string]any{
		"id":               item.ID,
		"order_id":         item.OrderID,
		"product_key":      item.ProductKey,
		"display_name":     item.DisplayName,
		"qty":              item.Qty,
		"unit_price_cents": item.UnitPriceCents,
		"price_changed_at": item.PriceChangedAt,
		"pack_size":        item.PackSize,
		"group_name":       item.GroupName,
		"stock_count":      item.StockCount,
		"stock_changed_at": item.StockChangedAt,
		"prev_qty":         item.PrevQty,
		"prev_qty_at":      item.PrevQtyAt,
		"created_at":       item.CreatedAt,
		"updated_at":       item.UpdatedAt,
	}
	switch r.res.Scoping {
	case schema.ScopeTenantBranch:
		row["tenant_id"] = item.TenantID
		row["branch_id"] = item.BranchID
	case schema.ScopeTenant:
		row["tenant_id"] = item.TenantID
	}
	return row
}

func (r *repository) InsertItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	rows := make([]map[string]any, 0, len(items))
	for _, item := range items {
		rows = append(rows, r.itemRow(item))
	}
	return r.items(ctx).Create(rows).Error
}

func (r *repository) UpdateItem(ctx context.Context, itemID uuid.UUID, updates map[string]any) error {
	return r.items(ctx).Where("id = ?", itemID).Updates(updates).Error
}

func (r *repository) UpdateQuantities(ctx context.Context, updates []QtyUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, u := range updates {
			err := tx.Table(r.res.Table).
				Where("id = ?", u.ItemID).
				Updates(map[string]any{"qty": u.Qty, "updated_at": time.Now().UTC()}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repository) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	return r.items(ctx).Where("id = ?", itemID).Delete(&models.OrderItem{}).Error
}

func (r *repository) DeleteByGroup(ctx context.Context, orderID uuid.UUID, group string) ([]uuid.UUID, error) {
	q := r.items(ctx).Where("order_id = ?", orderID)
	if group == "" {
		q = q.Where("group_name IS NULL OR group_name = ''")
	} else {
		q = q.Where("group_name = ?", group)
	}

	var ids []uuid.UUID
	if err := q.Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	if err := r.items(ctx).Where("id IN ?", ids).Delete(&models.OrderItem{}).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repository) DeleteByNames(ctx context.Context, orderID uuid.UUID, names []string, group string) error {
	if len(names) == 0 {
		return nil
	}
	q := r.items(ctx).
		Where("order_id = ?", orderID).
		Where("product_key IN ?", names)
	if group == "" {
		q = q.Where("group_name IS NULL OR group_name = ''")
	} else {
		q = q.Where("group_name = ?", group)
	}
	return q.Delete(&models.OrderItem{}).Error
}

func (r *repository) DeleteAllItems(ctx context.Context, orderID uuid.UUID) error {
	return r.items(ctx).Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error
}

func (r *repository) ZeroAllQuantities(ctx context.Context, orderID uuid.UUID) error {
	return r.items(ctx).
		Where("order_id = ?", orderID).
		Where("product_key <> ?", models.PlaceholderProductKey).
		Updates(map[string]any{"qty": 0, "updated_at": time.Now().UTC()}).Error
}

func (r *repository) SnapshotPrevQuantities(ctx context.Context, orderID uuid.UUID, at time.Time) error {
	return r.items(ctx).
		Where("order_id = ?", orderID).
		Updates(map[string]any{
			"prev_qty":    gorm.Expr("qty"),
			"prev_qty_at": at,
			"updated_at":  at,
		}).Error
}

func (r *repository) UpsertSummary(ctx context.Context, summary *models.ProviderSummary) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "provider_id"}, {Name: "tenant_id"}, {Name: "branch_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"total_cents", "item_count", "updated_at"}),
		}).
		Create(summary).Error
}

func (r *repository) UpsertWeekSummary(ctx context.Context, summary *models.ProviderWeekSummary) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "provider_id"}, {Name: "tenant_id"}, {Name: "branch_id"}, {Name: "week_start"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"total_cents", "item_count", "updated_at"}),
		}).
		Create(summary).Error
}
