// Package saleshistory loads the operator-supplied historical sales file
// into memory once per process. The file location comes from configuration;
// the rest of the system only sees a function returning sales records.
package saleshistory

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jorgenomente/GestockMultitenant-sub000/internal/stats"
	pkgerrors "github.com/jorgenomente/GestockMultitenant-sub000/pkg/errors"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/logger"
	"github.com/xuri/excelize/v2"
)

// Columns, positional: product key, date, qty, subtotal (optional),
// category (optional).
const (
	colProduct = iota
	colDate
	colQty
	colSubtotal
	colCategory
)

var dateLayouts = []string{"2006-01-02", "02/01/2006", "2006-01-02 15:04:05"}

// Loader reads the sales file lazily on first use and caches the result for
// the process lifetime. It satisfies the orders HistoryProvider contract.
type Loader struct {
	path string
	logg *logger.Logger

	once    sync.Once
	records []stats.SalesRecord
	err     error
}

func NewLoader(path string, logg *logger.Logger) (*Loader, error) {
	if path == "" {
		return nil, fmt.Errorf("sales history path required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Loader{path: path, logg: logg}, nil
}

// History returns the cached records, reading the file on the first call.
func (l *Loader) History(ctx context.Context) ([]stats.SalesRecord, error) {
	l.once.Do(func() {
		l.records, l.err = l.load(ctx)
	})
	return l.records, l.err
}

func (l *Loader) load(ctx context.Context) ([]stats.SalesRecord, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(l.path)) {
	case ".csv":
		rows, err = readCSV(l.path)
	case ".xlsx":
		rows, err = readXLSX(l.path)
	default:
		return nil, pkgerrors.New(pkgerrors.CodeImportFormat,
			fmt.Sprintf("unsupported sales file %q, want .csv or .xlsx", filepath.Base(l.path)))
	}
	if err != nil {
		return nil, err
	}

	records, err := Parse(rows)
	if err != nil {
		return nil, err
	}
	l.logg.Info(l.logg.WithField(ctx, "records", len(records)), "sales history loaded")
	return records, nil
}

// Parse maps raw rows to sales records. An optional header row is detected
// by a non-parsable date cell in the first row; any later bad row aborts
// with its row number.
func Parse(rows [][]string) ([]stats.SalesRecord, error) {
	start := 0
	if len(rows) > 0 && looksLikeHeader(rows[0]) {
		start = 1
	}

	records := make([]stats.SalesRecord, 0, len(rows))
	for i := start; i < len(rows); i++ {
		row := rows[i]
		product := strings.TrimSpace(cell(row, colProduct))
		if product == "" {
			continue
		}

		date, err := parseDate(cell(row, colDate))
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeImportFormat,
				fmt.Sprintf("row %d: bad date %q", i+1, cell(row, colDate)))
		}
		qty, err := strconv.Atoi(strings.TrimSpace(cell(row, colQty)))
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeImportFormat,
				fmt.Sprintf("row %d: bad quantity %q", i+1, cell(row, colQty)))
		}

		rec := stats.SalesRecord{ProductKey: product, Date: date, Qty: qty}
		if raw := strings.TrimSpace(cell(row, colSubtotal)); raw != "" {
			v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
			if err != nil {
				return nil, pkgerrors.New(pkgerrors.CodeImportFormat,
					fmt.Sprintf("row %d: bad subtotal %q", i+1, raw))
			}
			cents := int(math.Round(v * 100))
			rec.SubtotalCents = &cents
		}
		if category := strings.TrimSpace(cell(row, colCategory)); category != "" {
			rec.Category = &category
		}
		records = append(records, rec)
	}
	return records, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open sales file")
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeImportFormat, err, "read sales csv")
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeImportFormat, err, "open sales workbook")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeImportFormat, "sales workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeImportFormat, err, "read sales sheet")
	}
	return rows, nil
}

func looksLikeHeader(row []string) bool {
	if _, err := parseDate(cell(row, colDate)); err == nil {
		return false
	}
	return true
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return row[idx]
}
