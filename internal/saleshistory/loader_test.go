package saleshistory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	pkgerrors "github.com/jorgenomente/GestockMultitenant-sub000/pkg/errors"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{Level: zerolog.ErrorLevel})
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales.csv")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func TestHistoryParsesCSVWithHeader(t *testing.T) {
	path := writeCSV(t, "product,date,qty,subtotal,category\napple,2026-03-22,5,12.50,fruit\nmilk,2026-03-21,2,,\n")
	loader, err := NewLoader(path, testLogger())
	if err != nil {
		t.Fatalf("loader constructor failed: %v", err)
	}

	records, err := loader.History(context.Background())
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records got %d", len(records))
	}

	apple := records[0]
	if apple.ProductKey != "apple" || apple.Qty != 5 {
		t.Fatalf("unexpected record %+v", apple)
	}
	if apple.SubtotalCents == nil || *apple.SubtotalCents != 1250 {
		t.Fatalf("expected subtotal 1250 got %v", apple.SubtotalCents)
	}
	if apple.Category == nil || *apple.Category != "fruit" {
		t.Fatalf("expected category fruit got %v", apple.Category)
	}
	if records[1].SubtotalCents != nil {
		t.Fatal("empty subtotal must stay nil")
	}
}

func TestHistoryParsesHeaderlessCSV(t *testing.T) {
	path := writeCSV(t, "apple,2026-03-22,5\n")
	loader, _ := NewLoader(path, testLogger())

	records, err := loader.History(context.Background())
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record got %d", len(records))
	}
}

func TestHistoryNamesBadRow(t *testing.T) {
	path := writeCSV(t, "product,date,qty\napple,2026-03-22,5\npear,not-a-date,2\n")
	loader, _ := NewLoader(path, testLogger())

	_, err := loader.History(context.Background())
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeImportFormat {
		t.Fatalf("expected IMPORT_FORMAT got %v", err)
	}
	if got := coded.Message(); got != "row 3: bad date \"not-a-date\"" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestHistoryCachesFirstRead(t *testing.T) {
	path := writeCSV(t, "apple,2026-03-22,5\n")
	loader, _ := NewLoader(path, testLogger())

	first, err := loader.History(context.Background())
	if err != nil {
		t.Fatalf("first read failed: %v", err)
	}

	// the file is gone, the cache is not
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	second, err := loader.History(context.Background())
	if err != nil {
		t.Fatalf("cached read failed: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("cache mismatch: %d vs %d", len(first), len(second))
	}
}

func TestHistoryReadsXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.xlsx")
	f := excelize.NewFile()
	_ = f.SetCellValue("Sheet1", "A1", "product")
	_ = f.SetCellValue("Sheet1", "B1", "date")
	_ = f.SetCellValue("Sheet1", "C1", "qty")
	_ = f.SetCellValue("Sheet1", "A2", "apple")
	_ = f.SetCellValue("Sheet1", "B2", "2026-03-22")
	_ = f.SetCellValue("Sheet1", "C2", 5)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}

	loader, _ := NewLoader(path, testLogger())
	records, err := loader.History(context.Background())
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if len(records) != 1 || records[0].ProductKey != "apple" {
		t.Fatalf("unexpected records %+v", records)
	}
}

func TestLoaderRejectsUnknownExtension(t *testing.T) {
	loader, _ := NewLoader(filepath.Join(t.TempDir(), "sales.txt"), testLogger())

	_, err := loader.History(context.Background())
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeImportFormat {
		t.Fatalf("expected IMPORT_FORMAT got %v", err)
	}
}
