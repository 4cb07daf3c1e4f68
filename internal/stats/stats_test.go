package stats

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr(v int) *int { return &v }

func TestComputeWindows(t *testing.T) {
	anchor := date(2025, 6, 30)
	history := []SalesRecord{
		{ProductKey: "yerba-1kg", Date: anchor, Qty: 3, SubtotalCents: ptr(9000)},
		{ProductKey: "yerba-1kg", Date: anchor.AddDate(0, 0, -10), Qty: 5},
		{ProductKey: "yerba-1kg", Date: anchor.AddDate(0, 0, -20), Qty: 7},
		{ProductKey: "yerba-1kg", Date: anchor.AddDate(0, 0, -29), Qty: 11},
		// outside every window
		{ProductKey: "yerba-1kg", Date: anchor.AddDate(0, 0, -40), Qty: 100},
		// other product, must be filtered out
		{ProductKey: "azucar", Date: anchor, Qty: 50, SubtotalCents: ptr(1000)},
	}

	s := Compute(history, "yerba-1kg", anchor)

	require.Equal(t, 8, s.Sum2w)              // 3 + 5
	require.Equal(t, 26, s.Sum30d)            // 3 + 5 + 7 + 11
	require.Equal(t, 4, s.Avg4w)              // (3+5+7)/4 = 3.75 -> 4
	require.Equal(t, 3, s.LastSaleQty)        // newest record
	require.Equal(t, 3000, s.UnitRetailCents) // 9000/3
	require.NotNil(t, s.LastSaleDate)
	require.True(t, s.LastSaleDate.Equal(anchor))
}

func TestComputeWindowOrderingHoldsForRandomHistories(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	anchor := date(2025, 1, 31)
	for i := 0; i < 200; i++ {
		var history []SalesRecord
		n := rng.Intn(30)
		for j := 0; j < n; j++ {
			rec := SalesRecord{
				ProductKey: "p",
				Date:       anchor.AddDate(0, 0, -rng.Intn(60)),
				Qty:        rng.Intn(20),
			}
			if rng.Intn(2) == 0 {
				rec.SubtotalCents = ptr(rng.Intn(10000))
			}
			history = append(history, rec)
		}

		s := Compute(history, "p", anchor)
		require.GreaterOrEqual(t, s.Sum2w, 0)
		require.GreaterOrEqual(t, s.Sum30d, s.Sum2w, "sum30d >= sum2w")
		// avg4w*4 is within rounding of the 28-day window sum
		require.LessOrEqual(t, absInt(s.Avg4w*4-window28(history, anchor)), 2)
	}
}

func window28(history []SalesRecord, anchor time.Time) int {
	from := anchor.AddDate(0, 0, -28)
	sum := 0
	for _, r := range history {
		if r.ProductKey == "p" && !r.Date.Before(from) && !r.Date.After(anchor) {
			sum += r.Qty
		}
	}
	return sum
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func TestComputeIsOrderInsensitive(t *testing.T) {
	anchor := date(2025, 3, 15)
	history := []SalesRecord{
		{ProductKey: "p", Date: anchor, Qty: 2, SubtotalCents: ptr(400)},
		{ProductKey: "p", Date: anchor, Qty: 9, SubtotalCents: ptr(1800)},
		{ProductKey: "p", Date: anchor.AddDate(0, 0, -5), Qty: 4},
		{ProductKey: "p", Date: anchor.AddDate(0, 0, -25), Qty: 6, SubtotalCents: ptr(600)},
	}

	want := Compute(history, "p", anchor)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]SalesRecord(nil), history...)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		require.Equal(t, want, Compute(shuffled, "p", anchor))
	}
}

func TestUnitRetailFallsBackToWeightedAverage(t *testing.T) {
	anchor := date(2025, 2, 1)
	history := []SalesRecord{
		// last sale has no subtotal, so the 30-day weighted average applies
		{ProductKey: "p", Date: anchor, Qty: 5},
		{ProductKey: "p", Date: anchor.AddDate(0, 0, -3), Qty: 2, SubtotalCents: ptr(600)},
		{ProductKey: "p", Date: anchor.AddDate(0, 0, -10), Qty: 6, SubtotalCents: ptr(1200)},
	}

	s := Compute(history, "p", anchor)
	// (600+1200)/(2+6) = 225
	require.Equal(t, 225, s.Retail30dAvgCents)
	require.Equal(t, 225, s.UnitRetailCents)
}

func TestComputeEmptyHistory(t *testing.T) {
	s := Compute(nil, "p", date(2025, 1, 1))
	require.Zero(t, s.Sum2w)
	require.Zero(t, s.Sum30d)
	require.Zero(t, s.Avg4w)
	require.Nil(t, s.LastSaleDate)
	require.Zero(t, s.UnitRetailCents)
}

func TestAnchorFor(t *testing.T) {
	history := []SalesRecord{
		{ProductKey: "p", Date: date(2025, 1, 10), Qty: 1},
		{ProductKey: "p", Date: date(2025, 1, 20), Qty: 1},
		{ProductKey: "q", Date: date(2025, 2, 1), Qty: 1},
	}
	anchor, ok := AnchorFor(history, "p")
	require.True(t, ok)
	require.True(t, anchor.Equal(date(2025, 1, 20)))

	_, ok = AnchorFor(history, "missing")
	require.False(t, ok)
}

func TestEstimatedCostCents(t *testing.T) {
	require.Equal(t, 700, EstimatedCostCents(1000, 30))
	require.Equal(t, 0, EstimatedCostCents(0, 30))
	require.Equal(t, 1000, EstimatedCostCents(1000, 0))
	// rounds to nearest
	require.Equal(t, 667, EstimatedCostCents(953, 30))
}

func TestSnapToPack(t *testing.T) {
	// pack 6 with avg 20 snaps to 18, never stays at 20
	require.Equal(t, 18, SnapToPack(20, 6))
	require.Equal(t, 24, SnapToPack(21, 6))
	require.Equal(t, 0, SnapToPack(-3, 6))
	require.Equal(t, 20, SnapToPack(20, 1))
	require.Equal(t, 20, SnapToPack(20, 0))
}

func TestQtyFor(t *testing.T) {
	s := Stats{Avg4w: 4, Sum2w: 8, Sum30d: 26}
	require.Equal(t, 4, s.QtyFor(PeriodWeek))
	require.Equal(t, 8, s.QtyFor(Period2W))
	require.Equal(t, 26, s.QtyFor(Period30D))
	require.Equal(t, 4, s.QtyFor("unknown"))
}
