package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderUIState holds presentation-only state for one order: the custom group
// display order and the per-item confirmed checkmarks. It is persisted
// independently of business data; losing it only resets presentation
// defaults, never item or order content.
type OrderUIState struct {
	OrderID    uuid.UUID       `gorm:"column:order_id;type:uuid;primaryKey" json:"order_id"`
	GroupOrder []string        `gorm:"column:group_order;type:jsonb;serializer:json" json:"group_order"`
	Confirmed  map[string]bool `gorm:"column:confirmed;type:jsonb;serializer:json" json:"confirmed"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (OrderUIState) TableName() string { return "order_ui_states" }
