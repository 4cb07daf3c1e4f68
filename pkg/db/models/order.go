package models

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusReceived  OrderStatus = "RECEIVED"
)

// ProviderOrder is the open order for one provider within a tenant/branch
// scope. Lazily created on first visit; at most one is considered current per
// scope, resolved by most-recent-created lookup.
type ProviderOrder struct {
	ID         uuid.UUID   `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProviderID uuid.UUID   `gorm:"column:provider_id;type:uuid;not null;index" json:"provider_id"`
	TenantID   uuid.UUID   `gorm:"column:tenant_id;type:uuid;not null" json:"tenant_id"`
	BranchID   *uuid.UUID  `gorm:"column:branch_id;type:uuid" json:"branch_id,omitempty"`
	Status     OrderStatus `gorm:"column:status;not null;default:'PENDING'" json:"status"`
	Notes      *string     `gorm:"column:notes" json:"notes,omitempty"`
	TotalCents int         `gorm:"column:total_cents;not null;default:0" json:"total_cents"`
	CreatedAt  time.Time   `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time   `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (ProviderOrder) TableName() string { return "provider_orders" }
