package orders

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/db/models"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/logger"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/metrics"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/realtime"
)

// Session mirrors one order's item list in memory and keeps it converged
// with other writers through the realtime feed. Local writes land in the
// mirror immediately; remote events merge last writer wins in arrival order.
// There is no version check: a later-arriving event overwrites the held row
// even when its timestamp is older. This is an accepted lost-update race;
// a stricter rule (compare-and-swap on a revision column) would replace
// Apply without touching callers.
type Session struct {
	orderID uuid.UUID
	logg    *logger.Logger
	metrics *metrics.StoreMetrics

	mu    sync.RWMutex
	items map[uuid.UUID]models.OrderItem
	order []uuid.UUID

	cancel func()
	done   chan struct{}
}

// NewSession seeds the mirror from an initial item load and starts consuming
// the order's feed. Close releases the subscription.
func NewSession(ctx context.Context, orderID uuid.UUID, seed []models.OrderItem, feed realtime.Feed, logg *logger.Logger, m *metrics.StoreMetrics) (*Session, error) {
	if feed == nil {
		return nil, fmt.Errorf("realtime feed required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}

	s := &Session{
		orderID: orderID,
		logg:    logg,
		metrics: m,
		items:   make(map[uuid.UUID]models.OrderItem, len(seed)),
		done:    make(chan struct{}),
	}
	for _, item := range seed {
		s.items[item.ID] = item
		s.order = append(s.order, item.ID)
	}

	events, cancel, err := feed.Subscribe(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("subscribing order feed: %w", err)
	}
	s.cancel = cancel

	go func() {
		defer close(s.done)
		for ev := range events {
			s.Apply(ev)
		}
	}()
	return s, nil
}

// Apply merges one event into the mirror in arrival order. The latest event
// for an id overwrites unconditionally; deletes remove the row.
func (s *Session) Apply(ev realtime.ItemEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Type {
	case realtime.EventDelete:
		if _, ok := s.items[ev.Item.ID]; !ok {
			return
		}
		delete(s.items, ev.Item.ID)
		for i, id := range s.order {
			if id == ev.Item.ID {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	case realtime.EventInsert, realtime.EventUpdate:
		if _, ok := s.items[ev.Item.ID]; !ok {
			s.order = append(s.order, ev.Item.ID)
		}
		s.items[ev.Item.ID] = ev.Item
	default:
		return
	}

	if s.metrics != nil {
		s.metrics.IncFeedApplied(string(ev.Type))
	}
}

// Items returns the mirrored rows in stable insertion order.
func (s *Session) Items() []models.OrderItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.OrderItem, 0, len(s.order))
	for _, id := range s.order {
		if item, ok := s.items[id]; ok {
			out = append(out, item)
		}
	}
	return out
}

// Item returns one mirrored row by id.
func (s *Session) Item(id uuid.UUID) (models.OrderItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	return item, ok
}

// TotalCents sums the mirror the same way the store does, placeholders
// excluded.
func (s *Session) TotalCents() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, item := range s.items {
		if item.IsPlaceholder() {
			continue
		}
		total += item.Qty * item.UnitPriceCents
	}
	return total
}

// Close stops consuming the feed and waits for the pump to drain.
func (s *Session) Close() {
	if s.cancel != nil {
		s.cancel()
	}
	<-s.done
}
