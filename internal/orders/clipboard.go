package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	pkgerrors "github.com/jorgenomente/GestockMultitenant-sub000/pkg/errors"
)

// ClipboardText renders the order as plain "<qty> <label>" lines, one group
// per block in the given group order. Groups missing from groupOrder are
// appended in first-seen item order; placeholder rows and zero-quantity rows
// are skipped.
func (s *service) ClipboardText(ctx context.Context, orderID uuid.UUID, groupOrder []string) (string, error) {
	if _, err := s.loadOrder(ctx, orderID); err != nil {
		return "", err
	}
	items, err := s.repo.FindItems(ctx, orderID)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load items")
	}

	lines := make(map[string][]string)
	var seen []string
	for _, item := range items {
		if item.IsPlaceholder() || item.Qty == 0 {
			continue
		}
		group := item.Group()
		if _, ok := lines[group]; !ok {
			seen = append(seen, group)
		}
		lines[group] = append(lines[group], fmt.Sprintf("%d %s", item.Qty, item.Label()))
	}

	ordered := make([]string, 0, len(lines))
	listed := make(map[string]bool, len(groupOrder))
	for _, group := range groupOrder {
		if _, ok := lines[group]; ok && !listed[group] {
			ordered = append(ordered, group)
			listed[group] = true
		}
	}
	for _, group := range seen {
		if !listed[group] {
			ordered = append(ordered, group)
		}
	}

	var b strings.Builder
	for i, group := range ordered {
		if i > 0 {
			b.WriteString("\n")
		}
		if group != "" {
			b.WriteString(group)
			b.WriteString("\n")
		}
		for _, line := range lines[group] {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}
