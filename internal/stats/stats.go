// Package stats computes replenishment metrics for a product from raw
// historical sale records. Everything here is pure: identical inputs yield
// identical outputs regardless of record order.
//
// All rolling windows are anchored at the product's most recent sale date
// rather than wall-clock "now", so the metrics stay stable when the
// historical feed itself is stale relative to real time.
package stats

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesRecord is one historical sale, day granularity. Read-only input;
// never mutated by this package.
type SalesRecord struct {
	ProductKey    string
	Date          time.Time
	Qty           int
	SubtotalCents *int
	Category      *string
}

// Stats are the derived replenishment metrics for one product.
type Stats struct {
	Avg4w             int        `json:"avg_4w"`
	Sum2w             int        `json:"sum_2w"`
	Sum30d            int        `json:"sum_30d"`
	LastSaleQty       int        `json:"last_sale_qty"`
	LastSaleDate      *time.Time `json:"last_sale_date,omitempty"`
	UnitRetailCents   int        `json:"unit_retail_cents"`
	Retail30dAvgCents int        `json:"retail_30d_avg_cents"`
}

// Period selects which metric ApplySuggested seeds quantities from.
type Period string

const (
	PeriodWeek Period = "week"
	Period2W   Period = "2w"
	Period30D  Period = "30d"
)

// QtyFor returns the metric for the chosen period.
func (s Stats) QtyFor(period Period) int {
	switch period {
	case Period2W:
		return s.Sum2w
	case Period30D:
		return s.Sum30d
	default:
		return s.Avg4w
	}
}

// AnchorFor returns the most recent sale date for the product, and whether
// the product has any history at all.
func AnchorFor(history []SalesRecord, productKey string) (time.Time, bool) {
	var anchor time.Time
	found := false
	for _, rec := range history {
		if rec.ProductKey != productKey {
			continue
		}
		if !found || rec.Date.After(anchor) {
			anchor = rec.Date
			found = true
		}
	}
	return anchor, found
}

// Compute derives Stats for productKey from history, with all windows ending
// at anchor (inclusive). Records after anchor are ignored.
func Compute(history []SalesRecord, productKey string, anchor time.Time) Stats {
	anchor = day(anchor)
	from2w := anchor.AddDate(0, 0, -14)
	from28 := anchor.AddDate(0, 0, -28)
	from30 := anchor.AddDate(0, 0, -30)

	var out Stats
	var sum28 int
	var last *SalesRecord
	var weightedSubtotal, weightedQty int64

	for i := range history {
		rec := history[i]
		if rec.ProductKey != productKey {
			continue
		}
		d := day(rec.Date)
		if d.After(anchor) {
			continue
		}

		if !d.Before(from2w) {
			out.Sum2w += rec.Qty
		}
		if !d.Before(from28) {
			sum28 += rec.Qty
		}
		if !d.Before(from30) {
			out.Sum30d += rec.Qty
			if rec.Qty > 0 && rec.SubtotalCents != nil {
				weightedSubtotal += int64(*rec.SubtotalCents)
				weightedQty += int64(rec.Qty)
			}
		}

		if last == nil || betterLastSale(rec, *last) {
			last = &history[i]
		}
	}

	out.Avg4w = roundDiv(sum28, 4)

	if weightedQty > 0 {
		out.Retail30dAvgCents = int(decimal.NewFromInt(weightedSubtotal).
			DivRound(decimal.NewFromInt(weightedQty), 0).IntPart())
	}

	if last != nil {
		d := day(last.Date)
		out.LastSaleDate = &d
		out.LastSaleQty = last.Qty
		if last.SubtotalCents != nil && last.Qty > 0 {
			out.UnitRetailCents = int(decimal.NewFromInt(int64(*last.SubtotalCents)).
				DivRound(decimal.NewFromInt(int64(last.Qty)), 0).IntPart())
		}
	}
	if out.UnitRetailCents == 0 {
		out.UnitRetailCents = out.Retail30dAvgCents
	}

	return out
}

// EstimatedCostCents derives a seed purchase price from a retail price and a
// margin percentage. Display/seed value only, never authoritative pricing.
func EstimatedCostCents(unitRetailCents, marginPercent int) int {
	if unitRetailCents <= 0 {
		return 0
	}
	retail := decimal.NewFromInt(int64(unitRetailCents))
	factor := decimal.NewFromInt(int64(100 - marginPercent)).
		Div(decimal.NewFromInt(100))
	cost := retail.Mul(factor).Round(0).IntPart()
	if cost < 0 {
		return 0
	}
	return int(cost)
}

// SnapToPack snaps qty to the nearest multiple of pack. Pack sizes of one or
// less leave the quantity untouched; the result is never negative.
func SnapToPack(qty, pack int) int {
	if qty < 0 {
		qty = 0
	}
	if pack <= 1 {
		return qty
	}
	snapped := roundDiv(qty, pack) * pack
	if snapped < 0 {
		return 0
	}
	return snapped
}

// betterLastSale prefers the later date; on equal days the comparison falls
// back to record content so the choice does not depend on input order.
func betterLastSale(a, b SalesRecord) bool {
	da, db := day(a.Date), day(b.Date)
	if !da.Equal(db) {
		return da.After(db)
	}
	if a.Qty != b.Qty {
		return a.Qty > b.Qty
	}
	return subtotalOrZero(a) > subtotalOrZero(b)
}

func subtotalOrZero(r SalesRecord) int {
	if r.SubtotalCents == nil {
		return 0
	}
	return *r.SubtotalCents
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func roundDiv(n, d int) int {
	if d == 0 {
		return 0
	}
	return (n + d/2) / d
}
