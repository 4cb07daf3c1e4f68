package errors

import (
	stdErrors "errors"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected"},
		{code: CodeMissingScope, status: http.StatusUnprocessableEntity, publicMsg: "no tenant/branch scope resolvable", detailsOK: true},
		{code: CodeSchemaDrift, status: http.StatusServiceUnavailable, publicMsg: "no compatible item table available", retryable: true, detailsOK: true},
		{code: CodeWriteFailed, status: http.StatusBadGateway, publicMsg: "write failed; local edits kept", retryable: true, detailsOK: true},
		{code: CodeBulkPartial, status: http.StatusBadGateway, publicMsg: "bulk operation partially applied", retryable: true, detailsOK: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing foo")
	if base.Code() != CodeValidation {
		t.Fatalf("expected validation code, got %s", base.Code())
	}
	if base.Message() != "missing foo" {
		t.Fatalf("unexpected message %q", base.Message())
	}
	if base.Details() != nil {
		t.Fatalf("details should be nil by default")
	}

	detail := map[string]any{"field": "foo"}
	base.WithDetails(detail)
	if base.Details() == nil {
		t.Fatalf("details should be preserved")
	}

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
}

func TestAsReturnsTypedError(t *testing.T) {
	err := New(CodeImportFormat, "no product column")
	if got := As(err); got == nil || got.Code() != CodeImportFormat {
		t.Fatalf("As failed to return typed error")
	}
	if As(nil) != nil {
		t.Fatalf("As(nil) should return nil")
	}
}

func TestDumpFlagsDriftSQLStates(t *testing.T) {
	base := &pgconn.PgError{Code: "42703", ColumnName: "branch_id", Message: "column does not exist"}
	err := Wrap(CodeSchemaDrift, base, "probe item table")

	d := Dump(err)
	if !d.SchemaDrift {
		t.Fatal("undefined column must flag drift")
	}
	if d.PGCode != "42703" || d.PGColumn != "branch_id" {
		t.Fatalf("unexpected pg fields %+v", d)
	}
	if d.Code != CodeSchemaDrift {
		t.Fatalf("expected SCHEMA_DRIFT got %s", d.Code)
	}
	if len(d.Chain) < 2 {
		t.Fatalf("expected wrapped chain got %v", d.Chain)
	}
}

func TestDumpPlainError(t *testing.T) {
	d := Dump(stdErrors.New("boom"))
	if d.TopMessage != "boom" {
		t.Fatalf("unexpected top message %q", d.TopMessage)
	}
	if d.SchemaDrift || d.PGCode != "" {
		t.Fatalf("plain error must not carry pg fields, got %+v", d)
	}
	if Dump(nil).TopMessage != "" {
		t.Fatal("nil dump must be empty")
	}
}
