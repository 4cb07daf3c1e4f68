package orders

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jorgenomente/GestockMultitenant-sub000/internal/stats"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/db/models"
	pkgerrors "github.com/jorgenomente/GestockMultitenant-sub000/pkg/errors"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/logger"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/metrics"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/realtime"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

// Service drives the provider order screen: order lifecycle, item mutations,
// bulk quantity seeding and total maintenance.
type Service interface {
	GetOrCreateOrder(ctx context.Context, providerID uuid.UUID, scope Scope) (*OrderDetail, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderDetail, error)
	UpdateOrderHeader(ctx context.Context, orderID uuid.UUID, input UpdateOrderInput) error

	AddItem(ctx context.Context, orderID uuid.UUID, scope Scope, input AddItemInput) (*ItemView, error)
	AddGroupPlaceholder(ctx context.Context, orderID uuid.UUID, scope Scope, group string) (*models.OrderItem, error)
	UpdateItem(ctx context.Context, orderID, itemID uuid.UUID, input UpdateItemInput) (*models.OrderItem, error)
	DeleteItem(ctx context.Context, orderID, itemID uuid.UUID) error
	DeleteGroup(ctx context.Context, orderID uuid.UUID, group string) (int, error)

	BulkAddItems(ctx context.Context, orderID uuid.UUID, scope Scope, names []string, group string) (*BulkResult, error)
	BulkRemoveByNames(ctx context.Context, orderID uuid.UUID, names []string, group string) error
	ApplySuggested(ctx context.Context, orderID uuid.UUID, period stats.Period) (*ApplySuggestedResult, error)
	ZeroAllQuantities(ctx context.Context, orderID uuid.UUID) error
	SavePreviousQuantities(ctx context.Context, orderID uuid.UUID) error
	ReplaceAll(ctx context.Context, orderID uuid.UUID, scope Scope, items []ReplaceItem) error
	RecomputeTotal(ctx context.Context, orderID uuid.UUID) (int, error)

	ClipboardText(ctx context.Context, orderID uuid.UUID, groupOrder []string) (string, error)
}

// Config carries the service dependencies. Feed and Metrics are optional;
// everything else is required.
type Config struct {
	Repo          Repository
	History       HistoryProvider
	Feed          realtime.Feed
	Metrics       *metrics.StoreMetrics
	Logger        *logger.Logger
	MarginPercent int
	ChunkSize     int
	WeekScope     bool
}

type service struct {
	repo    Repository
	history HistoryProvider
	feed    realtime.Feed
	metrics *metrics.StoreMetrics
	logg    *logger.Logger
	margin  int
	chunk   int
	week    bool

	// serializes find-or-create so one session never races itself into
	// duplicate pending orders for the same provider.
	createMu sync.Mutex
}

// NewService builds the order service with the required dependencies.
func NewService(cfg Config) (Service, error) {
	if cfg.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if cfg.History == nil {
		return nil, fmt.Errorf("sales history provider required")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 25
	}
	return &service{
		repo:    cfg.Repo,
		history: cfg.History,
		feed:    cfg.Feed,
		metrics: cfg.Metrics,
		logg:    cfg.Logger,
		margin:  cfg.MarginPercent,
		chunk:   cfg.ChunkSize,
		week:    cfg.WeekScope,
	}, nil
}

func (s *service) GetOrCreateOrder(ctx context.Context, providerID uuid.UUID, scope Scope) (*OrderDetail, error) {
	if providerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "provider id required")
	}
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	s.createMu.Lock()
	order, err := s.repo.FindLatestOrder(ctx, providerID, scope)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.createMu.Unlock()
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load latest order")
	}
	if order == nil {
		order = &models.ProviderOrder{
			ID:         uuid.New(),
			ProviderID: providerID,
			TenantID:   scope.TenantID,
			BranchID:   scope.BranchID,
			Status:     models.OrderStatusPending,
		}
		if err := s.repo.CreateOrder(ctx, order); err != nil {
			s.createMu.Unlock()
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		s.logg.Info(s.logg.WithOrderID(ctx, order.ID.String()), "created pending order")
	}
	s.createMu.Unlock()

	return s.detail(ctx, order)
}

func (s *service) GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderDetail, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, order)
}

func (s *service) UpdateOrderHeader(ctx context.Context, orderID uuid.UUID, input UpdateOrderInput) error {
	if _, err := s.loadOrder(ctx, orderID); err != nil {
		return err
	}
	updates := map[string]any{"updated_at": time.Now().UTC()}
	if input.Status != nil {
		updates["status"] = *input.Status
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}
	if len(updates) == 1 {
		return nil
	}
	if err := s.repo.UpdateOrder(ctx, orderID, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order header")
	}
	return nil
}

func (s *service) AddItem(ctx context.Context, orderID uuid.UUID, scope Scope, input AddItemInput) (*ItemView, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if input.ProductKey == "" || input.ProductKey == models.PlaceholderProductKey {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product key required")
	}
	if _, err := s.loadOrder(ctx, orderID); err != nil {
		return nil, err
	}

	history, err := s.history.History(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sales history")
	}
	st := statsFor(history, input.ProductKey)

	now := time.Now().UTC()
	item := models.OrderItem{
		ID:          uuid.New(),
		OrderID:     orderID,
		ProductKey:  input.ProductKey,
		DisplayName: input.DisplayName,
		GroupName:   input.GroupName,
		PackSize:    input.PackSize,
		TenantID:    scope.TenantID,
		BranchID:    scope.BranchID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if input.Qty != nil {
		item.Qty = *input.Qty
	} else {
		item.Qty = snap(st.Avg4w, input.PackSize)
	}
	if input.UnitPriceCents != nil {
		item.UnitPriceCents = *input.UnitPriceCents
	} else {
		item.UnitPriceCents = stats.EstimatedCostCents(st.UnitRetailCents, s.margin)
	}

	start := time.Now()
	if err := s.repo.InsertItems(ctx, []models.OrderItem{item}); err != nil {
		s.observe("add_item", start, err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeWriteFailed, err, "insert item")
	}
	s.observe("add_item", start, nil)

	s.publish(ctx, orderID, realtime.ItemEvent{Type: realtime.EventInsert, Item: item})
	if _, err := s.RecomputeTotal(ctx, orderID); err != nil {
		s.logg.Error(ctx, "total recompute after add", err)
	}
	return &ItemView{OrderItem: item, Stats: st}, nil
}

func (s *service) AddGroupPlaceholder(ctx context.Context, orderID uuid.UUID, scope Scope, group string) (*models.OrderItem, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if group == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "group name required")
	}
	if _, err := s.loadOrder(ctx, orderID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	item := models.OrderItem{
		ID:         uuid.New(),
		OrderID:    orderID,
		ProductKey: models.PlaceholderProductKey,
		GroupName:  &group,
		TenantID:   scope.TenantID,
		BranchID:   scope.BranchID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.InsertItems(ctx, []models.OrderItem{item}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeWriteFailed, err, "insert group placeholder")
	}
	s.publish(ctx, orderID, realtime.ItemEvent{Type: realtime.EventInsert, Item: item})
	return &item, nil
}

func (s *service) UpdateItem(ctx context.Context, orderID, itemID uuid.UUID, input UpdateItemInput) (*models.OrderItem, error) {
	if input.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "empty item patch")
	}
	current, err := s.findItem(ctx, orderID, itemID)
	if err != nil {
		return nil, err
	}
	if current.IsPlaceholder() && (input.Qty != nil || input.UnitPriceCents != nil || input.StockCount != nil) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "group placeholders carry no quantity, price or stock")
	}

	now := time.Now().UTC()
	updates := map[string]any{"updated_at": now}
	totalsDirty := false

	if input.Qty != nil && *input.Qty != current.Qty {
		updates["qty"] = *input.Qty
		current.Qty = *input.Qty
		totalsDirty = true
	}
	if input.UnitPriceCents != nil && *input.UnitPriceCents != current.UnitPriceCents {
		updates["unit_price_cents"] = *input.UnitPriceCents
		updates["price_changed_at"] = now
		current.UnitPriceCents = *input.UnitPriceCents
		current.PriceChangedAt = &now
		totalsDirty = true
	}
	if input.StockCount != nil && (current.StockCount == nil || *input.StockCount != *current.StockCount) {
		updates["stock_count"] = *input.StockCount
		updates["stock_changed_at"] = now
		current.StockCount = input.StockCount
		current.StockChangedAt = &now
	}
	if input.DisplayName != nil {
		updates["display_name"] = *input.DisplayName
		current.DisplayName = input.DisplayName
	}
	if input.GroupName != nil {
		updates["group_name"] = *input.GroupName
		current.GroupName = input.GroupName
	}
	if input.PackSize != nil {
		updates["pack_size"] = *input.PackSize
		current.PackSize = input.PackSize
	}
	if len(updates) == 1 {
		return current, nil
	}

	start := time.Now()
	if err := s.repo.UpdateItem(ctx, itemID, updates); err != nil {
		s.observe("update_item", start, err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeWriteFailed, err, "update item")
	}
	s.observe("update_item", start, nil)
	current.UpdatedAt = now

	s.publish(ctx, orderID, realtime.ItemEvent{Type: realtime.EventUpdate, Item: *current})
	if totalsDirty {
		if _, err := s.RecomputeTotal(ctx, orderID); err != nil {
			s.logg.Error(ctx, "total recompute after update", err)
		}
	}
	return current, nil
}

func (s *service) DeleteItem(ctx context.Context, orderID, itemID uuid.UUID) error {
	item, err := s.findItem(ctx, orderID, itemID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteItem(ctx, itemID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeWriteFailed, err, "delete item")
	}
	s.publish(ctx, orderID, realtime.ItemEvent{Type: realtime.EventDelete, Item: models.OrderItem{ID: itemID, OrderID: orderID}})
	if !item.IsPlaceholder() {
		if _, err := s.RecomputeTotal(ctx, orderID); err != nil {
			s.logg.Error(ctx, "total recompute after delete", err)
		}
	}
	return nil
}

func (s *service) DeleteGroup(ctx context.Context, orderID uuid.UUID, group string) (int, error) {
	if _, err := s.loadOrder(ctx, orderID); err != nil {
		return 0, err
	}
	ids, err := s.repo.DeleteByGroup(ctx, orderID, group)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeWriteFailed, err, "delete group")
	}
	for _, id := range ids {
		s.publish(ctx, orderID, realtime.ItemEvent{Type: realtime.EventDelete, Item: models.OrderItem{ID: id, OrderID: orderID}})
	}
	if len(ids) > 0 {
		if _, err := s.RecomputeTotal(ctx, orderID); err != nil {
			s.logg.Error(ctx, "total recompute after group delete", err)
		}
	}
	return len(ids), nil
}

// BulkAddItems inserts one row per name in fixed-size chunks, each seeded
// from the product's sales metrics. Chunks already inserted stay inserted
// when a later chunk fails; re-running the same bulk add is safe because the
// caller dedupes name+group before calling.
func (s *service) BulkAddItems(ctx context.Context, orderID uuid.UUID, scope Scope, names []string, group string) (*BulkResult, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.loadOrder(ctx, orderID); err != nil {
		return nil, err
	}
	history, err := s.history.History(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sales history")
	}

	var groupName *string
	if group != "" {
		groupName = &group
	}
	now := time.Now().UTC()
	rows := make([]models.OrderItem, 0, len(names))
	for _, name := range names {
		if name == "" || name == models.PlaceholderProductKey {
			continue
		}
		st := statsFor(history, name)
		rows = append(rows, models.OrderItem{
			ID:             uuid.New(),
			OrderID:        orderID,
			ProductKey:     name,
			Qty:            st.Avg4w,
			UnitPriceCents: stats.EstimatedCostCents(st.UnitRetailCents, s.margin),
			GroupName:      groupName,
			TenantID:       scope.TenantID,
			BranchID:       scope.BranchID,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}

	result := &BulkResult{
		ItemsTargeted: len(rows),
		ChunksTotal:   (len(rows) + s.chunk - 1) / s.chunk,
	}
	for off := 0; off < len(rows); off += s.chunk {
		end := off + s.chunk
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[off:end]

		start := time.Now()
		if err := s.repo.InsertItems(ctx, chunk); err != nil {
			s.observe("bulk_add_chunk", start, err)
			if s.metrics != nil {
				s.metrics.IncBulkChunkFailure("bulk_add")
			}
			return result, pkgerrors.Wrap(pkgerrors.CodeBulkPartial, err,
				fmt.Sprintf("inserted %d of %d chunks", result.ChunksApplied, result.ChunksTotal)).
				WithDetails(result)
		}
		s.observe("bulk_add_chunk", start, nil)
		result.ChunksApplied++

		for _, row := range chunk {
			s.publish(ctx, orderID, realtime.ItemEvent{Type: realtime.EventInsert, Item: row})
		}
	}

	if result.ItemsTargeted > 0 {
		if _, err := s.RecomputeTotal(ctx, orderID); err != nil {
			s.logg.Error(ctx, "total recompute after bulk add", err)
		}
	}
	return result, nil
}

// BulkRemoveByNames deletes every row matching one of the names within the
// group. Items are matched on product key; the group's placeholder survives.
func (s *service) BulkRemoveByNames(ctx context.Context, orderID uuid.UUID, names []string, group string) error {
	if _, err := s.loadOrder(ctx, orderID); err != nil {
		return err
	}
	if len(names) == 0 {
		return nil
	}

	items, err := s.repo.FindItems(ctx, orderID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load items")
	}
	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = true
	}
	var removed []uuid.UUID
	for _, item := range items {
		if wanted[item.ProductKey] && item.Group() == group {
			removed = append(removed, item.ID)
		}
	}

	if err := s.repo.DeleteByNames(ctx, orderID, names, group); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeWriteFailed, err, "bulk remove")
	}
	for _, id := range removed {
		s.publish(ctx, orderID, realtime.ItemEvent{Type: realtime.EventDelete, Item: models.OrderItem{ID: id, OrderID: orderID}})
	}
	if len(removed) > 0 {
		if _, err := s.RecomputeTotal(ctx, orderID); err != nil {
			s.logg.Error(ctx, "total recompute after bulk remove", err)
		}
	}
	return nil
}

// ApplySuggested rewrites every non-placeholder quantity from the chosen
// sales metric in fixed-size chunks. Chunks already written stay written when
// a later chunk fails. It never touches prev_qty; only SavePreviousQuantities
// records the operator's restore point.
func (s *service) ApplySuggested(ctx context.Context, orderID uuid.UUID, period stats.Period) (*ApplySuggestedResult, error) {
	if _, err := s.loadOrder(ctx, orderID); err != nil {
		return nil, err
	}
	items, err := s.repo.FindItems(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load items")
	}
	history, err := s.history.History(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sales history")
	}

	now := time.Now().UTC()
	var updates []QtyUpdate
	byID := make(map[uuid.UUID]models.OrderItem, len(items))
	for _, item := range items {
		if item.IsPlaceholder() {
			continue
		}
		target := snap(statsFor(history, item.ProductKey).QtyFor(period), item.PackSize)
		if target == item.Qty {
			continue
		}
		updates = append(updates, QtyUpdate{ItemID: item.ID, Qty: target})
		item.Qty = target
		item.UpdatedAt = now
		byID[item.ID] = item
	}

	result := &ApplySuggestedResult{
		ItemsTargeted: len(updates),
		ChunksTotal:   (len(updates) + s.chunk - 1) / s.chunk,
	}
	if len(updates) == 0 {
		return result, nil
	}

	for off := 0; off < len(updates); off += s.chunk {
		end := off + s.chunk
		if end > len(updates) {
			end = len(updates)
		}
		chunk := updates[off:end]

		start := time.Now()
		if err := s.repo.UpdateQuantities(ctx, chunk); err != nil {
			s.observe("apply_suggested_chunk", start, err)
			if s.metrics != nil {
				s.metrics.IncBulkChunkFailure("apply_suggested")
			}
			return result, pkgerrors.Wrap(pkgerrors.CodeBulkPartial, err,
				fmt.Sprintf("applied %d of %d chunks", result.ChunksApplied, result.ChunksTotal)).
				WithDetails(result)
		}
		s.observe("apply_suggested_chunk", start, nil)
		result.ChunksApplied++

		for _, u := range chunk {
			if item, ok := byID[u.ItemID]; ok {
				s.publish(ctx, orderID, realtime.ItemEvent{Type: realtime.EventUpdate, Item: item})
			}
		}
	}

	if _, err := s.RecomputeTotal(ctx, orderID); err != nil {
		s.logg.Error(ctx, "total recompute after apply suggested", err)
	}
	return result, nil
}

// ZeroAllQuantities drops the displayed total to zero before touching rows,
// then restores it if the row write fails. Local clients see zero instantly
// either way; the restore keeps the stored header honest.
func (s *service) ZeroAllQuantities(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return err
	}
	oldTotal := order.TotalCents

	if err := s.repo.UpdateOrder(ctx, orderID, map[string]any{"total_cents": 0, "updated_at": time.Now().UTC()}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeWriteFailed, err, "push zero total")
	}
	if err := s.repo.ZeroAllQuantities(ctx, orderID); err != nil {
		if restoreErr := s.repo.UpdateOrder(ctx, orderID, map[string]any{"total_cents": oldTotal, "updated_at": time.Now().UTC()}); restoreErr != nil {
			s.logg.Error(ctx, "restore total after failed zeroing", restoreErr)
			err = multierr.Append(err, restoreErr)
		}
		return pkgerrors.Wrap(pkgerrors.CodeWriteFailed, err, "zero quantities")
	}

	items, err := s.repo.FindItems(ctx, orderID)
	if err == nil {
		for _, item := range items {
			if item.IsPlaceholder() {
				continue
			}
			s.publish(ctx, orderID, realtime.ItemEvent{Type: realtime.EventUpdate, Item: item})
		}
	}
	if _, err := s.RecomputeTotal(ctx, orderID); err != nil {
		s.logg.Error(ctx, "total recompute after zeroing", err)
	}
	return nil
}

func (s *service) SavePreviousQuantities(ctx context.Context, orderID uuid.UUID) error {
	if _, err := s.loadOrder(ctx, orderID); err != nil {
		return err
	}
	if err := s.repo.SnapshotPrevQuantities(ctx, orderID, time.Now().UTC()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeWriteFailed, err, "snapshot previous quantities")
	}
	return nil
}

// ReplaceAll swaps the whole item list: delete everything, insert the
// incoming rows under fresh ids. Snapshot restores and workbook imports go
// through here.
func (s *service) ReplaceAll(ctx context.Context, orderID uuid.UUID, scope Scope, items []ReplaceItem) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	if _, err := s.loadOrder(ctx, orderID); err != nil {
		return err
	}

	now := time.Now().UTC()
	rows := make([]models.OrderItem, 0, len(items))
	for _, in := range items {
		if in.ProductKey == "" {
			continue
		}
		rows = append(rows, models.OrderItem{
			ID:             uuid.New(),
			OrderID:        orderID,
			ProductKey:     in.ProductKey,
			DisplayName:    in.DisplayName,
			Qty:            in.Qty,
			UnitPriceCents: in.UnitPriceCents,
			GroupName:      in.GroupName,
			PackSize:       in.PackSize,
			TenantID:       scope.TenantID,
			BranchID:       scope.BranchID,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}

	start := time.Now()
	if err := s.repo.DeleteAllItems(ctx, orderID); err != nil {
		s.observe("replace_all", start, err)
		return pkgerrors.Wrap(pkgerrors.CodeWriteFailed, err, "clear items")
	}
	if err := s.repo.InsertItems(ctx, rows); err != nil {
		s.observe("replace_all", start, err)
		return pkgerrors.Wrap(pkgerrors.CodeWriteFailed, err, "insert replacement items")
	}
	s.observe("replace_all", start, nil)

	for _, row := range rows {
		s.publish(ctx, orderID, realtime.ItemEvent{Type: realtime.EventInsert, Item: row})
	}
	if _, err := s.RecomputeTotal(ctx, orderID); err != nil {
		s.logg.Error(ctx, "total recompute after replace", err)
	}
	return nil
}

// RecomputeTotal sums price times quantity over non-placeholder rows, writes
// it back to the order header and refreshes the denormalized summaries.
func (s *service) RecomputeTotal(ctx context.Context, orderID uuid.UUID) (int, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return 0, err
	}
	items, err := s.repo.FindItems(ctx, orderID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load items")
	}

	total := 0
	count := 0
	for _, item := range items {
		if item.IsPlaceholder() {
			continue
		}
		total += item.Qty * item.UnitPriceCents
		count++
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateOrder(ctx, orderID, map[string]any{"total_cents": total, "updated_at": now}); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeWriteFailed, err, "write order total")
	}

	summaryBranch := uuid.Nil
	if order.BranchID != nil {
		summaryBranch = *order.BranchID
	}
	summary := &models.ProviderSummary{
		ID:         uuid.New(),
		ProviderID: order.ProviderID,
		TenantID:   order.TenantID,
		BranchID:   summaryBranch,
		TotalCents: total,
		ItemCount:  count,
		UpdatedAt:  now,
	}
	if err := s.repo.UpsertSummary(ctx, summary); err != nil {
		s.logg.Error(ctx, "provider summary upsert", err)
	}
	if s.week {
		weekSummary := &models.ProviderWeekSummary{
			ID:         uuid.New(),
			ProviderID: order.ProviderID,
			TenantID:   order.TenantID,
			BranchID:   summaryBranch,
			WeekStart:  weekStart(now),
			TotalCents: total,
			ItemCount:  count,
			UpdatedAt:  now,
		}
		if err := s.repo.UpsertWeekSummary(ctx, weekSummary); err != nil {
			s.logg.Error(ctx, "provider week summary upsert", err)
		}
	}
	return total, nil
}

func (s *service) detail(ctx context.Context, order *models.ProviderOrder) (*OrderDetail, error) {
	items, err := s.repo.FindItems(ctx, order.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load items")
	}
	history, err := s.history.History(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sales history")
	}

	views := make([]ItemView, 0, len(items))
	for _, item := range items {
		view := ItemView{OrderItem: item}
		if !item.IsPlaceholder() {
			view.Stats = statsFor(history, item.ProductKey)
		}
		views = append(views, view)
	}
	return &OrderDetail{Order: *order, Items: views}, nil
}

func (s *service) loadOrder(ctx context.Context, orderID uuid.UUID) (*models.ProviderOrder, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) findItem(ctx context.Context, orderID, itemID uuid.UUID) (*models.OrderItem, error) {
	items, err := s.repo.FindItems(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load items")
	}
	for i := range items {
		if items[i].ID == itemID {
			return &items[i], nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
}

// publish is best effort: a dropped event never fails the write that caused
// it, clients reconcile on the next full load.
func (s *service) publish(ctx context.Context, orderID uuid.UUID, ev realtime.ItemEvent) {
	if s.feed == nil {
		return
	}
	if err := s.feed.Publish(ctx, orderID, ev); err != nil {
		s.logg.Error(ctx, "publish item event", err)
	}
}

func (s *service) observe(op string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveDuration(op, time.Since(start))
	if err != nil {
		s.metrics.IncFailure(op)
		return
	}
	s.metrics.IncSuccess(op)
}

func statsFor(history []stats.SalesRecord, productKey string) stats.Stats {
	anchor, ok := stats.AnchorFor(history, productKey)
	if !ok {
		return stats.Stats{}
	}
	return stats.Compute(history, productKey, anchor)
}

func snap(qty int, pack *int) int {
	if pack == nil {
		return qty
	}
	return stats.SnapToPack(qty, *pack)
}

// weekStart returns the UTC Monday of t's ISO week.
func weekStart(t time.Time) time.Time {
	t = t.UTC()
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -(weekday - 1))
}
