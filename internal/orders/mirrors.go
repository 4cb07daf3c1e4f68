package orders

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/db/models"
	pkgerrors "github.com/jorgenomente/GestockMultitenant-sub000/pkg/errors"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/logger"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/metrics"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/realtime"
)

// Mirrors keeps one feed-backed Session per observed order and folds each
// mirror's totals back into the denormalized provider summaries. The feed
// worker runs one pool so summaries stay fresh even when rows are written by
// a process that never recomputes them, such as a second replica or a manual
// backfill.
type Mirrors struct {
	repo    Repository
	feed    realtime.Feed
	logg    *logger.Logger
	metrics *metrics.StoreMetrics
	week    bool

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

func NewMirrors(repo Repository, feed realtime.Feed, logg *logger.Logger, m *metrics.StoreMetrics, week bool) *Mirrors {
	return &Mirrors{
		repo:     repo,
		feed:     feed,
		logg:     logg,
		metrics:  m,
		week:     week,
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Observe ensures orderID has a live mirror, seeding it from storage on
// first sight, then refreshes the order's summary rows from the mirror. A
// refresh can run before the session's pump has applied the triggering
// event; the next event for the order closes the gap.
func (p *Mirrors) Observe(ctx context.Context, orderID uuid.UUID) error {
	sess, err := p.session(ctx, orderID)
	if err != nil {
		return err
	}
	return p.refresh(ctx, orderID, sess)
}

func (p *Mirrors) session(ctx context.Context, orderID uuid.UUID) (*Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if sess, ok := p.sessions[orderID]; ok {
		return sess, nil
	}
	seed, err := p.repo.FindItems(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "seed order mirror")
	}
	sess, err := NewSession(ctx, orderID, seed, p.feed, p.logg, p.metrics)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open order mirror")
	}
	p.sessions[orderID] = sess
	return sess, nil
}

func (p *Mirrors) refresh(ctx context.Context, orderID uuid.UUID, sess *Session) error {
	order, err := p.repo.FindOrderByID(ctx, orderID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order for summary refresh")
	}

	total := 0
	count := 0
	for _, item := range sess.Items() {
		if item.IsPlaceholder() {
			continue
		}
		total += item.Qty * item.UnitPriceCents
		count++
	}

	branch := uuid.Nil
	if order.BranchID != nil {
		branch = *order.BranchID
	}
	now := time.Now().UTC()
	summary := &models.ProviderSummary{
		ID:         uuid.New(),
		ProviderID: order.ProviderID,
		TenantID:   order.TenantID,
		BranchID:   branch,
		TotalCents: total,
		ItemCount:  count,
		UpdatedAt:  now,
	}
	if err := p.repo.UpsertSummary(ctx, summary); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeWriteFailed, err, "refresh provider summary")
	}
	if p.week {
		weekSummary := &models.ProviderWeekSummary{
			ID:         uuid.New(),
			ProviderID: order.ProviderID,
			TenantID:   order.TenantID,
			BranchID:   branch,
			WeekStart:  weekStart(now),
			TotalCents: total,
			ItemCount:  count,
			UpdatedAt:  now,
		}
		if err := p.repo.UpsertWeekSummary(ctx, weekSummary); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeWriteFailed, err, "refresh provider week summary")
		}
	}
	return nil
}

// Len reports how many orders currently hold a live mirror.
func (p *Mirrors) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sessions)
}

// Close shuts down every mirror and its feed subscription.
func (p *Mirrors) Close() {
	p.mu.Lock()
	sessions := make([]*Session, 0, len(p.sessions))
	for _, sess := range p.sessions {
		sessions = append(sessions, sess)
	}
	p.sessions = make(map[uuid.UUID]*Session)
	p.mu.Unlock()

	for _, sess := range sessions {
		sess.Close()
	}
}
