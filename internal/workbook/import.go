package workbook

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/jorgenomente/GestockMultitenant-sub000/internal/orders"
	pkgerrors "github.com/jorgenomente/GestockMultitenant-sub000/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// headerTokens mark a first row as a header rather than data.
var headerTokens = []string{
	"group", "product", "qty", "quantity", "price", "stock",
	"grupo", "producto", "cantidad", "precio",
}

// Import reads the first sheet and maps rows positionally to
// {group, product, qty, price}. Rows with an empty product cell are
// discarded. The whole file is parsed before anything is returned, so a
// caller can run the destructive replace only on a fully valid result.
func Import(r io.Reader) ([]orders.ReplaceItem, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeImportFormat, err, "unreadable workbook")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeImportFormat, "workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeImportFormat, err, "read first sheet")
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeImportFormat, "workbook is empty")
	}

	start := 0
	if isHeaderRow(rows[0]) {
		start = 1
	}

	items := make([]orders.ReplaceItem, 0, len(rows)-start)
	for i := start; i < len(rows); i++ {
		row := rows[i]
		product := strings.TrimSpace(cellAt(row, 1))
		if product == "" {
			continue
		}

		item := orders.ReplaceItem{ProductKey: product}
		if group := strings.TrimSpace(cellAt(row, 0)); group != "" {
			item.GroupName = &group
		}

		qty, err := parseQty(cellAt(row, 2))
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeImportFormat,
				fmt.Sprintf("row %d: bad quantity %q", i+1, cellAt(row, 2)))
		}
		item.Qty = qty

		price, err := parsePriceCents(cellAt(row, 3))
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeImportFormat,
				fmt.Sprintf("row %d: bad price %q", i+1, cellAt(row, 3)))
		}
		item.UnitPriceCents = price

		items = append(items, item)
	}

	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeImportFormat, "no rows with a product column")
	}
	return items, nil
}

func isHeaderRow(row []string) bool {
	for _, cell := range row {
		lowered := strings.ToLower(strings.TrimSpace(cell))
		for _, token := range headerTokens {
			if lowered == token || strings.Contains(lowered, token) {
				return true
			}
		}
	}
	return false
}

func cellAt(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return row[idx]
}

func parseQty(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(raw); err == nil {
		if n < 0 {
			return 0, nil
		}
		return n, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, nil
	}
	return int(math.Round(v)), nil
}

func parsePriceCents(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, nil
	}
	return int(math.Round(v * 100)), nil
}
