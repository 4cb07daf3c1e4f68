package uistate

import (
	"context"
	"time"
)

// Viewport is the scrollable region a drag happens over, in the same
// coordinate space as the pointer.
type Viewport struct {
	Top    int
	Height int
}

// Autoscroll tuning. EdgeZone is how deep the hot zones at either end reach;
// MaxVelocity is the per-tick scroll delta at the very edge.
const (
	EdgeZone    = 48
	MaxVelocity = 24
)

// Velocity maps a pointer position to a scroll velocity: negative above the
// top hot zone boundary, positive below the bottom one, zero in the middle.
// Magnitude scales linearly with how deep the pointer sits in the zone and
// saturates at MaxVelocity outside the viewport.
func Velocity(pointerY int, vp Viewport) int {
	if vp.Height <= 0 {
		return 0
	}
	bottom := vp.Top + vp.Height

	if pointerY < vp.Top+EdgeZone {
		depth := vp.Top + EdgeZone - pointerY
		return -scale(depth)
	}
	if pointerY > bottom-EdgeZone {
		depth := pointerY - (bottom - EdgeZone)
		return scale(depth)
	}
	return 0
}

func scale(depth int) int {
	if depth >= EdgeZone {
		return MaxVelocity
	}
	v := depth * MaxVelocity / EdgeZone
	if v < 1 {
		v = 1
	}
	return v
}

// Scroller runs a ticker loop that keeps emitting the velocity for the most
// recent pointer position. It is decoupled from reordering: callers feed
// pointer moves in and consume scroll deltas, nothing here touches the
// persisted group order.
type Scroller struct {
	vp      Viewport
	ticks   *time.Ticker
	pointer chan int
	out     chan int
	done    chan struct{}
}

// NewScroller starts the loop; Close the returned scroller to stop it.
func NewScroller(ctx context.Context, vp Viewport, interval time.Duration) *Scroller {
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	s := &Scroller{
		vp:      vp,
		ticks:   time.NewTicker(interval),
		pointer: make(chan int, 1),
		out:     make(chan int, 1),
		done:    make(chan struct{}),
	}
	go s.loop(ctx)
	return s
}

// Move records the latest pointer position, dropping older unprocessed ones.
func (s *Scroller) Move(pointerY int) {
	select {
	case s.pointer <- pointerY:
	default:
		select {
		case <-s.pointer:
		default:
		}
		s.pointer <- pointerY
	}
}

// Deltas returns the channel of per-tick scroll deltas. Zero velocities are
// not emitted.
func (s *Scroller) Deltas() <-chan int {
	return s.out
}

// Close stops the ticker and unparks the loop goroutine. Safe to call once.
func (s *Scroller) Close() {
	s.ticks.Stop()
	close(s.done)
}

func (s *Scroller) loop(ctx context.Context) {
	defer close(s.out)
	current := 0
	have := false
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case p := <-s.pointer:
			current = p
			have = true
		case <-s.ticks.C:
			if !have {
				continue
			}
			if v := Velocity(current, s.vp); v != 0 {
				select {
				case s.out <- v:
				default:
				}
			}
		}
	}
}
