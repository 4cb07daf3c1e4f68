package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/db/models"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/realtime"
)

func TestMirrorsRefreshSummariesFromFeed(t *testing.T) {
	order := &models.ProviderOrder{ID: uuid.New(), ProviderID: uuid.New(), TenantID: uuid.New()}
	item := models.OrderItem{ID: uuid.New(), OrderID: order.ID, ProductKey: "apple", Qty: 2, UnitPriceCents: 100}
	placeholder := models.OrderItem{ID: uuid.New(), OrderID: order.ID, ProductKey: models.PlaceholderProductKey, GroupName: strPtr("fruit"), Qty: 9, UnitPriceCents: 100}
	repo := newStubRepo(order, item, placeholder)
	feed := realtime.NewMemoryFeed()

	pool := NewMirrors(repo, feed, testLogger(), nil, true)
	defer pool.Close()

	if err := pool.Observe(context.Background(), order.ID); err != nil {
		t.Fatalf("observe: %v", err)
	}
	if len(repo.summaries) != 1 {
		t.Fatalf("expected one summary refresh got %d", len(repo.summaries))
	}
	if got := repo.summaries[0]; got.TotalCents != 200 || got.ItemCount != 1 {
		t.Fatalf("placeholder must not count, got %+v", got)
	}
	if got := repo.summaries[0]; got.BranchID != uuid.Nil {
		t.Fatalf("tenant-wide order must use the zero branch, got %s", got.BranchID)
	}
	if len(repo.weekSummaries) != 1 {
		t.Fatalf("expected week summary refresh got %d", len(repo.weekSummaries))
	}

	item.Qty = 5
	if err := feed.Publish(context.Background(), order.ID, realtime.ItemEvent{Type: realtime.EventUpdate, Item: item}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	// the mirror applies the event asynchronously; keep refreshing until the
	// summary reflects it
	waitFor(t, func() bool {
		if err := pool.Observe(context.Background(), order.ID); err != nil {
			t.Fatalf("observe: %v", err)
		}
		return repo.summaries[len(repo.summaries)-1].TotalCents == 500
	})

	if pool.Len() != 1 {
		t.Fatalf("expected a single reused mirror got %d", pool.Len())
	}
}

func TestMirrorsObserveUnknownOrderFails(t *testing.T) {
	repo := newStubRepo(nil)
	feed := realtime.NewMemoryFeed()

	pool := NewMirrors(repo, feed, testLogger(), nil, false)
	defer pool.Close()

	if err := pool.Observe(context.Background(), uuid.New()); err == nil {
		t.Fatal("expected failure for unknown order")
	}
}
