package schema

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jorgenomente/GestockMultitenant-sub000/pkg/db"
	pkgerrors "github.com/jorgenomente/GestockMultitenant-sub000/pkg/errors"
)

type stubProber struct {
	calls     []string
	responses map[string]error
}

func key(table string, columns []string) string {
	return fmt.Sprintf("%s/%d", table, len(columns))
}

func (s *stubProber) Probe(ctx context.Context, table string, columns []string) error {
	k := key(table, columns)
	s.calls = append(s.calls, k)
	return s.responses[k]
}

var (
	errNoTable  = &pgconn.PgError{Code: "42P01", Message: "relation does not exist"}
	errNoColumn = &pgconn.PgError{Code: "42703", Message: "column does not exist"}
)

func TestResolveFallsThroughMissingTable(t *testing.T) {
	prober := &stubProber{responses: map[string]error{
		"items_v2/2": errNoTable,
		"items_v1/2": nil,
	}}
	r, err := NewResolver(prober, []string{"items_v2", "items_v1"}, nil)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}

	res, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Table != "items_v1" || res.Scoping != ScopeTenantBranch {
		t.Fatalf("unexpected resolution %+v", res)
	}
	// a missing table must not waste probes on reduced scoping variants
	if len(prober.calls) != 2 {
		t.Fatalf("expected 2 probes, got %v", prober.calls)
	}
}

func TestResolveDowngradesScopingOnMissingColumn(t *testing.T) {
	prober := &stubProber{responses: map[string]error{
		"items/2": errNoColumn,
		"items/1": errNoColumn,
		"items/0": nil,
	}}
	r, _ := NewResolver(prober, []string{"items"}, nil)

	res, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Scoping != ScopeNone {
		t.Fatalf("expected unscoped resolution, got %v", res.Scoping)
	}
}

func TestResolveSurfacesTransientErrors(t *testing.T) {
	boom := errors.New("connection refused")
	prober := &stubProber{responses: map[string]error{
		"items/2": boom,
	}}
	r, _ := NewResolver(prober, []string{"items"}, nil)

	_, err := r.Resolve(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, boom) {
		t.Fatalf("transient error should be preserved, got %v", err)
	}
	if len(prober.calls) != 1 {
		t.Fatalf("transient error must abort the cascade, got %v", prober.calls)
	}
}

func TestResolveExhaustedReportsSchemaDrift(t *testing.T) {
	prober := &stubProber{responses: map[string]error{
		"a/2": errNoTable,
		"b/2": errNoTable,
	}}
	r, _ := NewResolver(prober, []string{"a", "b"}, nil)

	_, err := r.Resolve(context.Background())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeSchemaDrift {
		t.Fatalf("expected schema drift error, got %v", err)
	}
}

func TestResolutionIsPinnedNotReprobed(t *testing.T) {
	// Resolution is a value handed to constructors; verify a second Resolve
	// is the only way to trigger more probes.
	prober := &stubProber{responses: map[string]error{"items/2": nil}}
	r, _ := NewResolver(prober, []string{"items"}, nil)

	res, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	probesAfterResolve := len(prober.calls)

	// consumers read the pinned value; no probes happen
	for i := 0; i < 5; i++ {
		_ = res.Table
		_ = res.Scoping.Columns()
	}
	if len(prober.calls) != probesAfterResolve {
		t.Fatalf("pinned resolution must not re-probe")
	}
}

func TestProbeWriteRollsBack(t *testing.T) {
	client, err := db.NewSQLite(filepath.Join(t.TempDir(), "schema.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	ddl := `CREATE TABLE probe_items (
		id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL,
		product_key TEXT NOT NULL,
		qty INTEGER NOT NULL DEFAULT 0,
		unit_price_cents INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);`
	if err := client.Exec(context.Background(), ddl).Error; err != nil {
		t.Fatalf("create table: %v", err)
	}

	prober := &GormProber{DB: client.DB()}
	if err := prober.ProbeWrite(context.Background(), Resolution{Table: "probe_items"}); err != nil {
		t.Fatalf("ProbeWrite: %v", err)
	}

	var count int64
	if err := client.DB().Table("probe_items").Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("probe row leaked, count=%d", count)
	}
}

func TestProbeWriteRejectsMissingTable(t *testing.T) {
	client, err := db.NewSQLite(filepath.Join(t.TempDir(), "schema.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	prober := &GormProber{DB: client.DB()}
	err = prober.ProbeWrite(context.Background(), Resolution{Table: "missing_items"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeSchemaDrift {
		t.Fatalf("expected schema drift error, got %v", err)
	}
}
