// Package datasets is a reference implementation of the dataset service: rows
// stored in SQLite, sealed wire queries executed in memory, sealed tables returned.
package datasets

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aristath/chartpresets/internal/database"
	"github.com/aristath/chartpresets/internal/modules/charts/dataset"
	"github.com/aristath/chartpresets/internal/modules/charts/fields"
	"github.com/rs/zerolog"
)

// keyFields make up a row's natural key inside one dataset and ticker.
var keyFields = []string{
	fields.Date,
	fields.FiscalYear,
	fields.FiscalPeriod,
	fields.Sector,
	fields.HoldingTicker,
}

// Repository stores dataset rows, in the internal field vocabulary, as JSON.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a dataset row repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "datasets").Logger(),
	}
}

func rowKey(r dataset.Row) string {
	parts := make([]string, 0, len(keyFields))
	for _, f := range keyFields {
		if v, ok := r[f]; ok && v != nil {
			parts = append(parts, dataset.String(v))
		}
	}
	return strings.Join(parts, "|")
}

// Upsert stores rows for a dataset, replacing rows with the same natural key.
func (r *Repository) Upsert(dt dataset.Type, rows []dataset.Row) error {
	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT INTO dataset_rows (dataset_type, ticker, row_key, data)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (dataset_type, ticker, row_key) DO UPDATE SET data = excluded.data
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare upsert: %w", err)
		}
		defer stmt.Close()

		for _, row := range rows {
			data, err := json.Marshal(row)
			if err != nil {
				return fmt.Errorf("failed to marshal row: %w", err)
			}
			ticker := strings.ToUpper(dataset.String(row[fields.Ticker]))
			if _, err := stmt.Exec(string(dt), ticker, rowKey(row), string(data)); err != nil {
				return fmt.Errorf("failed to upsert row: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.log.Debug().Str("dataset", string(dt)).Int("rows", len(rows)).Msg("Dataset rows stored")
	return nil
}

// Rows loads a dataset's rows. An empty ticker list loads every ticker.
func (r *Repository) Rows(dt dataset.Type, tickers []string) ([]dataset.Row, error) {
	query := "SELECT data FROM dataset_rows WHERE dataset_type = ?"
	args := []interface{}{string(dt)}
	if len(tickers) > 0 {
		query += " AND ticker IN (?" + strings.Repeat(", ?", len(tickers)-1) + ")"
		for _, t := range tickers {
			args = append(args, strings.ToUpper(t))
		}
	}
	query += " ORDER BY id"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query dataset rows: %w", err)
	}
	defer rows.Close()

	var out []dataset.Row
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan dataset row: %w", err)
		}
		var row dataset.Row
		if err := json.Unmarshal([]byte(data), &row); err != nil {
			return nil, fmt.Errorf("failed to unmarshal dataset row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// SetColumns stores the column descriptors (unit, scale) of a dataset.
func (r *Repository) SetColumns(dt dataset.Type, columns []dataset.Column) error {
	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		for _, c := range columns {
			scale := c.Scale
			if scale == 0 {
				scale = 1
			}
			_, err := tx.Exec(`
				INSERT INTO dataset_columns (dataset_type, field, unit, scale) VALUES (?, ?, ?, ?)
				ON CONFLICT (dataset_type, field) DO UPDATE SET unit = excluded.unit, scale = excluded.scale
			`, string(dt), c.Field, c.Unit, scale)
			if err != nil {
				return fmt.Errorf("failed to store column %s: %w", c.Field, err)
			}
		}
		return nil
	})
}

// Columns loads the column descriptors of a dataset. Scale 1 is reported as 0
// (unset) to keep payloads small.
func (r *Repository) Columns(dt dataset.Type) ([]dataset.Column, error) {
	rows, err := r.db.Query("SELECT field, unit, scale FROM dataset_columns WHERE dataset_type = ? ORDER BY field", string(dt))
	if err != nil {
		return nil, fmt.Errorf("failed to query dataset columns: %w", err)
	}
	defer rows.Close()

	var out []dataset.Column
	for rows.Next() {
		var c dataset.Column
		if err := rows.Scan(&c.Field, &c.Unit, &c.Scale); err != nil {
			return nil, fmt.Errorf("failed to scan dataset column: %w", err)
		}
		if c.Scale == 1 {
			c.Scale = 0
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Count returns the number of stored rows of a dataset.
func (r *Repository) Count(dt dataset.Type) (int, error) {
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM dataset_rows WHERE dataset_type = ?", string(dt)).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count dataset rows: %w", err)
	}
	return n, nil
}
