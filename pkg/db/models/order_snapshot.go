package models

import (
	"time"

	"github.com/google/uuid"
)

// SnapshotItem is the portion of an item captured by a snapshot. Live item
// identifiers are deliberately absent: a restore inserts fresh rows.
type SnapshotItem struct {
	ProductKey     string `json:"product_key"`
	DisplayName    string `json:"display_name"`
	Qty            int    `json:"qty"`
	UnitPriceCents int    `json:"unit_price_cents"`
	GroupName      string `json:"group_name"`
}

// OrderSnapshot is an immutable named capture of an order's item list.
type OrderSnapshot struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID   uuid.UUID      `gorm:"column:order_id;type:uuid;not null;index" json:"order_id"`
	Title     string         `gorm:"column:title;not null" json:"title"`
	Items     []SnapshotItem `gorm:"column:items;type:jsonb;serializer:json" json:"items"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (OrderSnapshot) TableName() string { return "order_snapshots" }
