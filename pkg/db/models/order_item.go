package models

import (
	"time"

	"github.com/google/uuid"
)

// PlaceholderProductKey marks zero-quantity rows that exist only to keep an
// otherwise-empty group visible and orderable. Placeholders are excluded from
// totals, statistics, export rows and selection counts.
const PlaceholderProductKey = "__group__"

// OrderItem is one product line within a provider order. The item table name
// is not fixed: the schema resolver picks it at start-up, so this model never
// declares TableName and repositories always address it via Table(...).
type OrderItem struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID        uuid.UUID  `gorm:"column:order_id;type:uuid;not null;index" json:"order_id"`
	ProductKey     string     `gorm:"column:product_key;not null" json:"product_key"`
	DisplayName    *string    `gorm:"column:display_name" json:"display_name,omitempty"`
	Qty            int        `gorm:"column:qty;not null;default:0" json:"qty"`
	UnitPriceCents int        `gorm:"column:unit_price_cents;not null;default:0" json:"unit_price_cents"`
	PriceChangedAt *time.Time `gorm:"column:price_changed_at" json:"price_changed_at,omitempty"`
	PackSize       *int       `gorm:"column:pack_size" json:"pack_size,omitempty"`
	GroupName      *string    `gorm:"column:group_name" json:"group_name,omitempty"`
	StockCount     *int       `gorm:"column:stock_count" json:"stock_count,omitempty"`
	StockChangedAt *time.Time `gorm:"column:stock_changed_at" json:"stock_changed_at,omitempty"`
	PrevQty        *int       `gorm:"column:prev_qty" json:"prev_qty,omitempty"`
	PrevQtyAt      *time.Time `gorm:"column:prev_qty_at" json:"prev_qty_at,omitempty"`
	TenantID       uuid.UUID  `gorm:"column:tenant_id;type:uuid" json:"tenant_id,omitempty"`
	BranchID       *uuid.UUID `gorm:"column:branch_id;type:uuid" json:"branch_id,omitempty"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// IsPlaceholder reports whether the row is a group placeholder.
func (i OrderItem) IsPlaceholder() bool {
	return i.ProductKey == PlaceholderProductKey
}

// Label returns the display name, falling back to the canonical product key.
func (i OrderItem) Label() string {
	if i.DisplayName != nil && *i.DisplayName != "" {
		return *i.DisplayName
	}
	return i.ProductKey
}

// Group returns the group name; nil means "ungrouped".
func (i OrderItem) Group() string {
	if i.GroupName != nil {
		return *i.GroupName
	}
	return ""
}
