package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"fitment_chat_backend/platform/apperr"
)

// Ping verifies the catalog connection.
func (r *Repo) Ping(ctx context.Context) error {
	var ok int
	if err := r.pool.QueryRow(ctx, `SELECT 1`).Scan(&ok); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Version returns the server version string.
func (r *Repo) Version(ctx context.Context) (string, error) {
	var version string
	if err := r.pool.QueryRow(ctx, `SELECT version()`).Scan(&version); err != nil {
		return "", fmt.Errorf("version: %w", err)
	}
	return version, nil
}

// ListTables lists the tables visible in the public schema.
func (r *Repo) ListTables(ctx context.Context) ([]string, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public'
		ORDER BY table_name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return tables, nil
}

// catalogTables are the tables the row-count diagnostic inspects.
var catalogTables = []string{
	"car_manufacturers",
	"car_models",
	"car_versions",
	"am_wheel_models",
	"am_wheels",
	"am_wheel_versions",
	"applications",
}

// ListTableCounts returns row counts for the known catalog tables.
func (r *Repo) ListTableCounts(ctx context.Context) ([]TableCountRow, error) {
	counts := make([]TableCountRow, 0, len(catalogTables))
	for _, table := range catalogTables {
		// Table names come from the fixed list above, never from input.
		var count int64
		if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM `+table).Scan(&count); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		counts = append(counts, TableCountRow{Name: table, Count: count})
	}
	return counts, nil
}

// SampleApplications returns raw applications rows for inspection.
func (r *Repo) SampleApplications(ctx context.Context, limit int) ([]map[string]interface{}, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.pool.Query(ctx, `SELECT * FROM applications LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("sample applications: %w", err)
	}
	defer rows.Close()

	return collectRawRows(rows)
}

// GetRawFitment echoes the raw applications row for one combination.
func (r *Repo) GetRawFitment(ctx context.Context, carVersionID, wheelID int64) (map[string]interface{}, error) {
	rows, err := r.pool.Query(ctx, `SELECT * FROM applications WHERE car = $1 AND am_wheel = $2 LIMIT 1`, carVersionID, wheelID)
	if err != nil {
		return nil, fmt.Errorf("get raw fitment: %w", err)
	}
	defer rows.Close()

	raw, err := collectRawRows(rows)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, apperr.NotFound(fitmentNotFoundMessage)
	}
	return raw[0], nil
}

// collectRawRows converts a result set into generic maps keyed by column name.
func collectRawRows(rows pgx.Rows) ([]map[string]interface{}, error) {
	fields := rows.FieldDescriptions()

	var results []map[string]interface{}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read raw row: %w", err)
		}
		row := make(map[string]interface{}, len(fields))
		for i, field := range fields {
			row[field.Name] = values[i]
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("collect raw rows: %w", err)
	}
	return results, nil
}
