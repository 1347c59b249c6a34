package charts

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aristath/chartpresets/internal/modules/charts/domain"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

var (
	// ErrSavedChartNotFound is returned for unknown saved chart IDs.
	ErrSavedChartNotFound = errors.New("saved chart not found")
	// ErrInvalidSavedChart is returned when a saved chart fails validation.
	ErrInvalidSavedChart = errors.New("invalid saved chart")
)

// SavedChart is an operator-named chart configuration.
type SavedChart struct {
	ID            string                   `json:"id"`
	Name          string                   `json:"name"`
	PresetKey     domain.PresetKey         `json:"presetKey"`
	Target        domain.Target            `json:"target"`
	Options       domain.OptionValue       `json:"options"`
	Visualization domain.VisualizationKind `json:"visualization,omitempty"`
	CreatedAt     time.Time                `json:"createdAt"`
	UpdatedAt     time.Time                `json:"updatedAt"`
}

// Config returns the chart configuration anchored at ref.
func (s SavedChart) Config(ref time.Time) domain.ChartConfig {
	return domain.ChartConfig{
		PresetKey:     s.PresetKey,
		Target:        s.Target,
		OptionValue:   s.Options.Merge(nil),
		ReferenceTime: ref,
	}
}

// SavedChartRepository persists saved charts. Options are stored msgpack-encoded.
type SavedChartRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSavedChartRepository creates a saved chart repository.
func NewSavedChartRepository(db *sql.DB) *SavedChartRepository {
	return &SavedChartRepository{db: db, now: time.Now}
}

// Create stores a new saved chart and assigns its ID and timestamps.
func (r *SavedChartRepository) Create(c SavedChart) (*SavedChart, error) {
	if _, err := domain.ParsePresetKey(string(c.PresetKey)); err != nil {
		return nil, err
	}
	if c.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidSavedChart)
	}

	options, err := msgpack.Marshal(c.Options)
	if err != nil {
		return nil, fmt.Errorf("failed to encode options: %w", err)
	}

	now := r.now().UTC().Truncate(time.Second)
	c.ID = uuid.New().String()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err = r.db.Exec(`
		INSERT INTO saved_charts
			(id, name, preset_key, target_id, target_name, ticker, country, visualization, options, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.Name, string(c.PresetKey), c.Target.ID, c.Target.Name, c.Target.Ticker, c.Target.Country,
		string(c.Visualization), options, now.Unix(), now.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to insert saved chart: %w", err)
	}
	return &c, nil
}

const savedColumns = `id, name, preset_key, target_id, target_name, ticker, country, visualization, options, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSaved(row rowScanner) (*SavedChart, error) {
	var (
		c                    SavedChart
		preset, kind         string
		options              []byte
		createdAt, updatedAt int64
	)
	err := row.Scan(&c.ID, &c.Name, &preset, &c.Target.ID, &c.Target.Name, &c.Target.Ticker,
		&c.Target.Country, &kind, &options, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if err := msgpack.Unmarshal(options, &c.Options); err != nil {
		return nil, fmt.Errorf("failed to decode options of %s: %w", c.ID, err)
	}
	c.PresetKey = domain.PresetKey(preset)
	c.Visualization = domain.VisualizationKind(kind)
	c.CreatedAt = time.Unix(createdAt, 0).UTC()
	c.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &c, nil
}

// Get returns a saved chart by ID.
func (r *SavedChartRepository) Get(id string) (*SavedChart, error) {
	c, err := scanSaved(r.db.QueryRow("SELECT "+savedColumns+" FROM saved_charts WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSavedChartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get saved chart %s: %w", id, err)
	}
	return c, nil
}

// List returns every saved chart, most recently updated first.
func (r *SavedChartRepository) List() ([]SavedChart, error) {
	rows, err := r.db.Query("SELECT " + savedColumns + " FROM saved_charts ORDER BY updated_at DESC, name")
	if err != nil {
		return nil, fmt.Errorf("failed to list saved charts: %w", err)
	}
	defer rows.Close()

	out := []SavedChart{}
	for rows.Next() {
		c, err := scanSaved(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan saved chart: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// Update replaces name, target, options and visualization of a saved chart.
func (r *SavedChartRepository) Update(c SavedChart) (*SavedChart, error) {
	existing, err := r.Get(c.ID)
	if err != nil {
		return nil, err
	}
	if _, err := domain.ParsePresetKey(string(c.PresetKey)); err != nil {
		return nil, err
	}

	options, err := msgpack.Marshal(c.Options)
	if err != nil {
		return nil, fmt.Errorf("failed to encode options: %w", err)
	}

	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = r.now().UTC().Truncate(time.Second)
	_, err = r.db.Exec(`
		UPDATE saved_charts
		SET name = ?, preset_key = ?, target_id = ?, target_name = ?, ticker = ?, country = ?,
			visualization = ?, options = ?, updated_at = ?
		WHERE id = ?
	`, c.Name, string(c.PresetKey), c.Target.ID, c.Target.Name, c.Target.Ticker, c.Target.Country,
		string(c.Visualization), options, c.UpdatedAt.Unix(), c.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update saved chart %s: %w", c.ID, err)
	}
	return &c, nil
}

// Delete removes a saved chart.
func (r *SavedChartRepository) Delete(id string) error {
	res, err := r.db.Exec("DELETE FROM saved_charts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete saved chart %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrSavedChartNotFound
	}
	return nil
}
