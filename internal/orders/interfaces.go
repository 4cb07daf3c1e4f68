package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jorgenomente/GestockMultitenant-sub000/internal/stats"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/db/models"
	pkgerrors "github.com/jorgenomente/GestockMultitenant-sub000/pkg/errors"
	"gorm.io/gorm"
)

// Scope is the (tenant, branch) pair an order and its items are segmented
// under. Branch may be nil for tenant-wide orders.
type Scope struct {
	TenantID uuid.UUID
	BranchID *uuid.UUID
}

// Validate rejects scope-less writes: rows written without a tenant would be
// invisible to every scoped query later.
func (s Scope) Validate() error {
	if s.TenantID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeMissingScope, "tenant scope required for item mutation")
	}
	return nil
}

// QtyUpdate pairs an item with its target quantity for chunked bulk writes.
type QtyUpdate struct {
	ItemID uuid.UUID
	Qty    int
}

// Repository defines persistence for orders, items and the denormalized
// summaries. The item table name comes from the schema resolution pinned at
// construction time.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	FindOrderByID(ctx context.Context, orderID uuid.UUID) (*models.ProviderOrder, error)
	FindLatestOrder(ctx context.Context, providerID uuid.UUID, scope Scope) (*models.ProviderOrder, error)
	CreateOrder(ctx context.Context, order *models.ProviderOrder) error
	UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error

	FindItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error)
	InsertItems(ctx context.Context, items []models.OrderItem) error
	UpdateItem(ctx context.Context, itemID uuid.UUID, updates map[string]any) error
	UpdateQuantities(ctx context.Context, updates []QtyUpdate) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	DeleteByGroup(ctx context.Context, orderID uuid.UUID, group string) ([]uuid.UUID, error)
	DeleteByNames(ctx context.Context, orderID uuid.UUID, names []string, group string) error
	DeleteAllItems(ctx context.Context, orderID uuid.UUID) error
	ZeroAllQuantities(ctx context.Context, orderID uuid.UUID) error
	SnapshotPrevQuantities(ctx context.Context, orderID uuid.UUID, at time.Time) error

	UpsertSummary(ctx context.Context, summary *models.ProviderSummary) error
	UpsertWeekSummary(ctx context.Context, summary *models.ProviderWeekSummary) error
}

// HistoryProvider returns the session's historical sales feed.
type HistoryProvider interface {
	History(ctx context.Context) ([]stats.SalesRecord, error)
}
