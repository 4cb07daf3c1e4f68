package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// ErrorDump flattens a wrapped error chain into loggable fields. The PG
// fields surface the SQLSTATE details behind storage failures, so drift
// reports in production logs carry the offending table or column instead of
// a bare "write failed".
type ErrorDump struct {
	TopMessage string   `json:"top_message"`
	Code       Code     `json:"code,omitempty"`
	Chain      []string `json:"chain,omitempty"`

	PGCode    string `json:"pg_code,omitempty"`
	PGTable   string `json:"pg_table,omitempty"`
	PGColumn  string `json:"pg_column,omitempty"`
	PGMessage string `json:"pg_message,omitempty"`

	// SchemaDrift is set for the undefined-table and undefined-column
	// SQLSTATEs the item-table resolver cascades on. Seeing it outside of
	// startup means the table moved under a running process.
	SchemaDrift bool `json:"schema_drift,omitempty"`
}

// Dump walks err top to bottom and extracts everything worth logging.
func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error()}
	if typed := As(err); typed != nil {
		d.Code = typed.Code()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		d.PGCode = pgxErr.Code
		d.PGTable = pgxErr.TableName
		d.PGColumn = pgxErr.ColumnName
		d.PGMessage = pgxErr.Message
	} else {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			d.PGCode = string(pqErr.Code)
			d.PGTable = pqErr.Table
			d.PGColumn = pqErr.Column
			d.PGMessage = pqErr.Message
		}
	}

	d.SchemaDrift = d.PGCode == "42P01" || d.PGCode == "42703"
	return d
}
