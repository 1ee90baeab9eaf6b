package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"hackmaster/internal/domain"
)

// ============================================================================
// Time Helpers
// ============================================================================

// timeLayout is fixed width so text order matches time order
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// ============================================================================
// JSON Marshaling Helpers
// ============================================================================

// unmarshalJSONField safely unmarshals JSON from nullable string into target
func unmarshalJSONField(ns sql.NullString, target interface{}) error {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(ns.String), target)
}

// marshalToNull marshals interface to nullable JSON string
// Returns empty NullString for nil or empty slices
func marshalToNull(v interface{}) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}

	if s, ok := v.([]string); ok && len(s) == 0 {
		return sql.NullString{}, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// ============================================================================
// Run Row Scanner
// ============================================================================
//
// Column order must match between runColumns, scanArgs() and
// runInsertArgs().

const runColumns = `id, filename, path, facts, emitted, accepted, rejected, line_count, sample, created_at`

// runRow holds all columns from a run query for scanning
type runRow struct {
	ID         string
	Filename   string
	Path       string
	FactsJSON  sql.NullString
	Emitted    int
	Accepted   int
	Rejected   int
	LineCount  int
	SampleJSON sql.NullString
	CreatedAt  string
}

// scanArgs returns pointers for rows.Scan in runColumns order
func (r *runRow) scanArgs() []interface{} {
	return []interface{}{
		&r.ID,
		&r.Filename,
		&r.Path,
		&r.FactsJSON,
		&r.Emitted,
		&r.Accepted,
		&r.Rejected,
		&r.LineCount,
		&r.SampleJSON,
		&r.CreatedAt,
	}
}

// toDomain converts the scanned row into a domain.Run
func (r *runRow) toDomain() (*domain.Run, error) {
	run := &domain.Run{
		ID:        r.ID,
		Filename:  r.Filename,
		Path:      r.Path,
		Emitted:   r.Emitted,
		Accepted:  r.Accepted,
		Rejected:  r.Rejected,
		LineCount: r.LineCount,
	}

	if err := unmarshalJSONField(r.FactsJSON, &run.Facts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal facts for run %s: %w", r.ID, err)
	}
	if err := unmarshalJSONField(r.SampleJSON, &run.Sample); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sample for run %s: %w", r.ID, err)
	}

	created, err := parseTime(r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at for run %s: %w", r.ID, err)
	}
	run.CreatedAt = created

	return run, nil
}

// runInsertArgs returns values in runColumns order
func runInsertArgs(run *domain.Run) ([]interface{}, error) {
	facts, err := marshalToNull(run.Facts)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal facts: %w", err)
	}
	sample, err := marshalToNull(run.Sample)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sample: %w", err)
	}

	return []interface{}{
		run.ID,
		run.Filename,
		run.Path,
		facts,
		run.Emitted,
		run.Accepted,
		run.Rejected,
		run.LineCount,
		sample,
		formatTime(run.CreatedAt),
	}, nil
}
