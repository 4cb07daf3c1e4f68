package models

import (
	"time"

	"github.com/google/uuid"
)

// ProviderSummary is the denormalized per-provider aggregate kept in sync by
// the order total recompute, so list views never re-read every item.
//
// BranchID uses uuid.Nil for tenant-wide orders rather than NULL so the
// scope columns stay a plain unique index the upsert can target.
type ProviderSummary struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProviderID uuid.UUID `gorm:"column:provider_id;type:uuid;not null;uniqueIndex:idx_provider_summary_scope" json:"provider_id"`
	TenantID   uuid.UUID `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:idx_provider_summary_scope" json:"tenant_id"`
	BranchID   uuid.UUID `gorm:"column:branch_id;type:uuid;not null;uniqueIndex:idx_provider_summary_scope" json:"branch_id"`
	TotalCents int       `gorm:"column:total_cents;not null;default:0" json:"total_cents"`
	ItemCount  int       `gorm:"column:item_count;not null;default:0" json:"item_count"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (ProviderSummary) TableName() string { return "provider_summaries" }

// ProviderWeekSummary mirrors ProviderSummary per ISO week when the week
// scope is active.
type ProviderWeekSummary struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProviderID uuid.UUID `gorm:"column:provider_id;type:uuid;not null;uniqueIndex:idx_provider_week_summary_scope" json:"provider_id"`
	TenantID   uuid.UUID `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:idx_provider_week_summary_scope" json:"tenant_id"`
	BranchID   uuid.UUID `gorm:"column:branch_id;type:uuid;not null;uniqueIndex:idx_provider_week_summary_scope" json:"branch_id"`
	WeekStart  time.Time `gorm:"column:week_start;not null;uniqueIndex:idx_provider_week_summary_scope" json:"week_start"`
	TotalCents int       `gorm:"column:total_cents;not null;default:0" json:"total_cents"`
	ItemCount  int       `gorm:"column:item_count;not null;default:0" json:"item_count"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (ProviderWeekSummary) TableName() string { return "provider_week_summaries" }
