package charts

import (
	"database/sql"
	"fmt"
	"time"
)

// RenderLogEntry records one pipeline run.
type RenderLogEntry struct {
	ID            int64         `json:"id"`
	PresetKey     string        `json:"presetKey"`
	Ticker        string        `json:"ticker,omitempty"`
	Visualization string        `json:"visualization,omitempty"`
	Status        string        `json:"status"`
	Renderer      string        `json:"renderer,omitempty"`
	Error         string        `json:"error,omitempty"`
	Duration      time.Duration `json:"durationMs"`
	RenderedAt    time.Time     `json:"renderedAt"`
}

// RenderLogRepository stores render history for diagnostics.
type RenderLogRepository struct {
	db *sql.DB
}

// NewRenderLogRepository creates a render log repository.
func NewRenderLogRepository(db *sql.DB) *RenderLogRepository {
	return &RenderLogRepository{db: db}
}

// Record appends an entry.
func (r *RenderLogRepository) Record(e RenderLogEntry) error {
	_, err := r.db.Exec(`
		INSERT INTO render_log (preset_key, ticker, visualization, status, renderer, error, duration_ms, rendered_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.PresetKey, e.Ticker, e.Visualization, e.Status, e.Renderer, e.Error,
		e.Duration.Milliseconds(), e.RenderedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to record render: %w", err)
	}
	return nil
}

// Recent returns the latest entries, newest first.
func (r *RenderLogRepository) Recent(limit int) ([]RenderLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(`
		SELECT id, preset_key, ticker, visualization, status, renderer, error, duration_ms, rendered_at
		FROM render_log ORDER BY rendered_at DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query render log: %w", err)
	}
	defer rows.Close()

	out := []RenderLogEntry{}
	for rows.Next() {
		var (
			e          RenderLogEntry
			durationMs int64
			renderedAt int64
		)
		if err := rows.Scan(&e.ID, &e.PresetKey, &e.Ticker, &e.Visualization, &e.Status, &e.Renderer,
			&e.Error, &durationMs, &renderedAt); err != nil {
			return nil, fmt.Errorf("failed to scan render log: %w", err)
		}
		e.Duration = time.Duration(durationMs) * time.Millisecond
		e.RenderedAt = time.Unix(renderedAt, 0).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

// CountByStatus returns the number of entries per status.
func (r *RenderLogRepository) CountByStatus() (map[string]int, error) {
	rows, err := r.db.Query("SELECT status, COUNT(*) FROM render_log GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("failed to count render log: %w", err)
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan render log count: %w", err)
		}
		out[status] = n
	}
	return out, rows.Err()
}

// DeleteOlderThan removes entries rendered before cutoff and returns how many.
func (r *RenderLogRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	res, err := r.db.Exec("DELETE FROM render_log WHERE rendered_at < ?", cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete old render log entries: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}
