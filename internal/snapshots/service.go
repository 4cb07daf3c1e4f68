// Package snapshots captures and restores named versions of an order's item
// list. A snapshot stores item content only, never item identifiers, so a
// restore always inserts fresh rows.
package snapshots

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jorgenomente/GestockMultitenant-sub000/internal/orders"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/db/models"
	pkgerrors "github.com/jorgenomente/GestockMultitenant-sub000/pkg/errors"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/logger"
	"gorm.io/gorm"
)

// ItemSource reads the live order and its items. orders.Repository satisfies
// it.
type ItemSource interface {
	FindOrderByID(ctx context.Context, orderID uuid.UUID) (*models.ProviderOrder, error)
	FindItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error)
}

// Replacer performs the destructive restore and the summary re-sync.
// orders.Service satisfies it.
type Replacer interface {
	ReplaceAll(ctx context.Context, orderID uuid.UUID, scope orders.Scope, items []orders.ReplaceItem) error
	RecomputeTotal(ctx context.Context, orderID uuid.UUID) (int, error)
}

// Service manages snapshot lifecycle: save, list newest first, open
// (destructive replace) and delete.
type Service interface {
	Save(ctx context.Context, orderID uuid.UUID, providerName string) (*models.OrderSnapshot, error)
	List(ctx context.Context, orderID uuid.UUID) ([]models.OrderSnapshot, error)
	Open(ctx context.Context, snapshotID uuid.UUID) error
	Delete(ctx context.Context, snapshotID uuid.UUID) error
}

type service struct {
	repo     Repository
	source   ItemSource
	replacer Replacer
	logg     *logger.Logger
	listCap  int
}

func NewService(repo Repository, source ItemSource, replacer Replacer, logg *logger.Logger, listCap int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("snapshots repository required")
	}
	if source == nil {
		return nil, fmt.Errorf("item source required")
	}
	if replacer == nil {
		return nil, fmt.Errorf("item replacer required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if listCap <= 0 {
		listCap = 20
	}
	return &service{repo: repo, source: source, replacer: replacer, logg: logg, listCap: listCap}, nil
}

// Save captures the order's non-placeholder items and re-syncs the
// denormalized summaries so the save reflects the latest totals.
func (s *service) Save(ctx context.Context, orderID uuid.UUID, providerName string) (*models.OrderSnapshot, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	items, err := s.source.FindItems(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load items")
	}

	rows := make([]models.SnapshotItem, 0, len(items))
	for _, item := range items {
		if item.IsPlaceholder() {
			continue
		}
		rows = append(rows, models.SnapshotItem{
			ProductKey:     item.ProductKey,
			DisplayName:    item.Label(),
			Qty:            item.Qty,
			UnitPriceCents: item.UnitPriceCents,
			GroupName:      item.Group(),
		})
	}

	now := time.Now().UTC()
	snapshot := &models.OrderSnapshot{
		ID:        uuid.New(),
		OrderID:   orderID,
		Title:     buildTitle(providerName, order.ProviderID, now),
		Items:     rows,
		CreatedAt: now,
	}
	if err := s.repo.Create(ctx, snapshot); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeWriteFailed, err, "save snapshot")
	}

	if _, err := s.replacer.RecomputeTotal(ctx, orderID); err != nil {
		s.logg.Error(ctx, "summary re-sync on snapshot save", err)
	}
	return snapshot, nil
}

func (s *service) List(ctx context.Context, orderID uuid.UUID) ([]models.OrderSnapshot, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	snapshots, err := s.repo.ListByOrder(ctx, orderID, s.listCap)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list snapshots")
	}
	return snapshots, nil
}

// Open replaces the order's current items with the snapshot's. Restored rows
// get fresh identifiers; the snapshot itself stays untouched.
func (s *service) Open(ctx context.Context, snapshotID uuid.UUID) error {
	snapshot, err := s.loadSnapshot(ctx, snapshotID)
	if err != nil {
		return err
	}
	order, err := s.loadOrder(ctx, snapshot.OrderID)
	if err != nil {
		return err
	}

	items := make([]orders.ReplaceItem, 0, len(snapshot.Items))
	for _, row := range snapshot.Items {
		item := orders.ReplaceItem{
			ProductKey:     row.ProductKey,
			Qty:            row.Qty,
			UnitPriceCents: row.UnitPriceCents,
		}
		if row.DisplayName != "" && row.DisplayName != row.ProductKey {
			name := row.DisplayName
			item.DisplayName = &name
		}
		if row.GroupName != "" {
			group := row.GroupName
			item.GroupName = &group
		}
		items = append(items, item)
	}

	scope := orders.Scope{TenantID: order.TenantID, BranchID: order.BranchID}
	if err := s.replacer.ReplaceAll(ctx, order.ID, scope, items); err != nil {
		return err
	}
	s.logg.Info(s.logg.WithOrderID(ctx, order.ID.String()), "snapshot restored")
	return nil
}

func (s *service) Delete(ctx context.Context, snapshotID uuid.UUID) error {
	if snapshotID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "snapshot id required")
	}
	affected, err := s.repo.Delete(ctx, snapshotID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeWriteFailed, err, "delete snapshot")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "snapshot not found")
	}
	return nil
}

func (s *service) loadOrder(ctx context.Context, orderID uuid.UUID) (*models.ProviderOrder, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.source.FindOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) loadSnapshot(ctx context.Context, snapshotID uuid.UUID) (*models.OrderSnapshot, error) {
	if snapshotID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "snapshot id required")
	}
	snapshot, err := s.repo.FindByID(ctx, snapshotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "snapshot not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load snapshot")
	}
	return snapshot, nil
}

func buildTitle(providerName string, providerID uuid.UUID, at time.Time) string {
	name := strings.TrimSpace(providerName)
	if name == "" {
		name = providerID.String()[:8]
	}
	return fmt.Sprintf("%s %s", name, at.Format("2006-01-02"))
}
