// Package workbook encodes an order to a formatted spreadsheet and decodes
// one back. The two directions are deliberately asymmetric: export carries
// the full reporting shape (stats, stock, formulas), import reads only the
// four-column {group, product, qty, price} core and is a bulk reseed, so
// stock, pack size and previous quantities do not survive a roundtrip.
package workbook

import (
	"fmt"
	"io"
	"sort"

	"github.com/jorgenomente/GestockMultitenant-sub000/internal/orders"
	pkgerrors "github.com/jorgenomente/GestockMultitenant-sub000/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// MIMEXLSX is the content type served with exported workbooks.
const MIMEXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const sheetName = "Order"

var headers = []string{
	"Group", "Product", "Qty", "Unit Price", "Stock", "Subtotal",
	"Last Sale", "Avg 4w", "Sum 2w", "Sum 30d", "Prev Qty",
}

// Export renders the order as one sheet: fixed columns, rows sorted by group
// then product, a totals row with native SUM formulas, frozen header and an
// autofilter over the data extent. Subtotals are formulas over the qty and
// price cells so the workbook stays consistent under external edits.
func Export(detail *orders.OrderDetail, w io.Writer) error {
	if detail == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order detail required")
	}

	rows := make([]orders.ItemView, 0, len(detail.Items))
	for _, item := range detail.Items {
		if item.IsPlaceholder() {
			continue
		}
		rows = append(rows, item)
	}
	sort.Slice(rows, func(i, j int) bool {
		gi, gj := rows[i].Group(), rows[j].Group()
		if gi != gj {
			return gi < gj
		}
		return rows[i].Label() < rows[j].Label()
	})

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rename sheet")
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "header style")
	}

	for col, title := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheetName, cell, title); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write header")
		}
	}
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	if err := f.SetCellStyle(sheetName, "A1", lastCol+"1", headerStyle); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "style header")
	}

	for i, item := range rows {
		rowNum := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, rowNum)
			_ = f.SetCellValue(sheetName, cell, value)
		}
		set(1, item.Group())
		set(2, item.Label())
		set(3, item.Qty)
		set(4, centsToUnits(item.UnitPriceCents))
		if item.StockCount != nil {
			set(5, *item.StockCount)
		}
		subtotalCell, _ := excelize.CoordinatesToCellName(6, rowNum)
		_ = f.SetCellFormula(sheetName, subtotalCell, fmt.Sprintf("C%d*D%d", rowNum, rowNum))
		if item.Stats.LastSaleDate != nil {
			set(7, fmt.Sprintf("%s (%s)", item.Stats.LastSaleDate.Format("2006-01-02"), item.Stats.LastSaleDate.Weekday()))
		}
		set(8, item.Stats.Avg4w)
		set(9, item.Stats.Sum2w)
		set(10, item.Stats.Sum30d)
		if item.PrevQty != nil {
			set(11, *item.PrevQty)
		}
	}

	totalsRow := len(rows) + 2
	totalCell, _ := excelize.CoordinatesToCellName(1, totalsRow)
	_ = f.SetCellValue(sheetName, totalCell, "TOTAL")
	for _, col := range []string{"C", "E", "F"} {
		cell := fmt.Sprintf("%s%d", col, totalsRow)
		formula := fmt.Sprintf("SUM(%s2:%s%d)", col, col, totalsRow-1)
		if len(rows) == 0 {
			formula = "0"
		}
		_ = f.SetCellFormula(sheetName, cell, formula)
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "freeze header")
	}
	if len(rows) > 0 {
		filterRange := fmt.Sprintf("A1:%s%d", lastCol, len(rows)+1)
		if err := f.AutoFilter(sheetName, filterRange, nil); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "autofilter")
		}
	}

	if err := f.Write(w); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write workbook")
	}
	return nil
}

func centsToUnits(cents int) float64 {
	return float64(cents) / 100
}
