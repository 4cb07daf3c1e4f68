package orders

import (
	"github.com/jorgenomente/GestockMultitenant-sub000/internal/stats"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/db/models"
)

// ItemView is an item row enriched with its derived replenishment metrics.
// Placeholder rows carry zero-valued stats.
type ItemView struct {
	models.OrderItem
	Stats stats.Stats `json:"stats"`
}

// OrderDetail is the full screen payload: the order header plus every item
// with stats attached.
type OrderDetail struct {
	Order models.ProviderOrder `json:"order"`
	Items []ItemView           `json:"items"`
}

// AddItemInput adds a product line to an order. Qty and UnitPriceCents are
// optional; when absent they are seeded from the product's sales metrics.
type AddItemInput struct {
	ProductKey     string  `json:"product_key" validate:"required"`
	DisplayName    *string `json:"display_name,omitempty"`
	GroupName      *string `json:"group_name,omitempty"`
	PackSize       *int    `json:"pack_size,omitempty" validate:"omitempty,gt=0"`
	Qty            *int    `json:"qty,omitempty" validate:"omitempty,gte=0"`
	UnitPriceCents *int    `json:"unit_price_cents,omitempty" validate:"omitempty,gte=0"`
}

// UpdateItemInput patches a single item. Nil fields are left untouched.
type UpdateItemInput struct {
	Qty            *int    `json:"qty,omitempty" validate:"omitempty,gte=0"`
	UnitPriceCents *int    `json:"unit_price_cents,omitempty" validate:"omitempty,gte=0"`
	DisplayName    *string `json:"display_name,omitempty"`
	GroupName      *string `json:"group_name,omitempty"`
	PackSize       *int    `json:"pack_size,omitempty" validate:"omitempty,gt=0"`
	StockCount     *int    `json:"stock_count,omitempty" validate:"omitempty,gte=0"`
}

// IsEmpty reports whether the patch changes nothing.
func (in UpdateItemInput) IsEmpty() bool {
	return in.Qty == nil && in.UnitPriceCents == nil && in.DisplayName == nil &&
		in.GroupName == nil && in.PackSize == nil && in.StockCount == nil
}

// ApplySuggestedInput selects the metric period bulk quantity seeding uses.
type ApplySuggestedInput struct {
	Period stats.Period `json:"period" validate:"required,oneof=week 2w 30d"`
}

// BulkResult reports how far a chunked bulk write got.
type BulkResult struct {
	ItemsTargeted int `json:"items_targeted"`
	ChunksTotal   int `json:"chunks_total"`
	ChunksApplied int `json:"chunks_applied"`
}

// ApplySuggestedResult is the bulk report for suggested-quantity seeding.
type ApplySuggestedResult = BulkResult

// ReplaceItem is one incoming row for a full item-list replacement. It is
// the shape snapshots and workbook imports hand to the store.
type ReplaceItem struct {
	ProductKey     string  `json:"product_key" validate:"required"`
	DisplayName    *string `json:"display_name,omitempty"`
	Qty            int     `json:"qty" validate:"gte=0"`
	UnitPriceCents int     `json:"unit_price_cents" validate:"gte=0"`
	GroupName      *string `json:"group_name,omitempty"`
	PackSize       *int    `json:"pack_size,omitempty"`
}

// UpdateOrderInput patches the order header.
type UpdateOrderInput struct {
	Status *models.OrderStatus `json:"status,omitempty" validate:"omitempty,oneof=PENDING CONFIRMED RECEIVED"`
	Notes  *string             `json:"notes,omitempty"`
}
