package realtime

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryFeed is an in-process Feed used by tests and the sqlite/local mode.
// Delivery order matches publish order per order id.
type MemoryFeed struct {
	mu   sync.Mutex
	subs map[uuid.UUID][]chan ItemEvent
}

func NewMemoryFeed() *MemoryFeed {
	return &MemoryFeed{subs: make(map[uuid.UUID][]chan ItemEvent)}
}

func (f *MemoryFeed) Publish(ctx context.Context, orderID uuid.UUID, ev ItemEvent) error {
	f.mu.Lock()
	targets := append([]chan ItemEvent(nil), f.subs[orderID]...)
	f.mu.Unlock()
	for _, ch := range targets {
		select {
		case ch <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (f *MemoryFeed) Subscribe(ctx context.Context, orderID uuid.UUID) (<-chan ItemEvent, func(), error) {
	ch := make(chan ItemEvent, 64)
	f.mu.Lock()
	f.subs[orderID] = append(f.subs[orderID], ch)
	f.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			f.mu.Lock()
			chans := f.subs[orderID]
			for i, c := range chans {
				if c == ch {
					f.subs[orderID] = append(chans[:i], chans[i+1:]...)
					break
				}
			}
			f.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel, nil
}
