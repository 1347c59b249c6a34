// Package charts ties the preset pipeline to persistence: preset metadata for UIs,
// one-shot renders, saved charts and the render log.
package charts

import (
	"context"
	"time"

	"github.com/aristath/chartpresets/internal/modules/charts/dataset"
	"github.com/aristath/chartpresets/internal/modules/charts/domain"
	"github.com/aristath/chartpresets/internal/modules/charts/fields"
	"github.com/aristath/chartpresets/internal/modules/charts/instance"
	"github.com/aristath/chartpresets/internal/modules/charts/pipeline"
	"github.com/aristath/chartpresets/internal/modules/charts/presets"
	"github.com/aristath/chartpresets/internal/modules/charts/query"
	"github.com/aristath/chartpresets/internal/modules/charts/renderer"
	"github.com/rs/zerolog"
)

// PresetInfo describes a preset to UIs.
type PresetInfo struct {
	Key                  domain.PresetKey           `json:"key"`
	DatasetType          dataset.Type               `json:"datasetType,omitempty"`
	Bypass               bool                       `json:"bypass"`
	DefaultVisualization domain.VisualizationKind   `json:"defaultVisualization"`
	Visualizations       []domain.VisualizationKind `json:"visualizations"`
	Options              []presets.OptionSpec       `json:"options"`
	SelectFields         []string                   `json:"selectFields"`
}

// BuiltQuery is a query in both vocabularies.
type BuiltQuery struct {
	Config domain.ChartConfig `json:"config"`
	Query  *dataset.Query     `json:"query"`
	Wire   *dataset.Query     `json:"wire"`
}

// RenderRequest is a one-shot render.
type RenderRequest struct {
	Config domain.ChartConfig       `json:"config"`
	Kind   domain.VisualizationKind `json:"kind,omitempty"`
	Inline pipeline.Inline          `json:"inline"`
}

// Service is the entry point of the charts module.
type Service struct {
	builder   *query.Builder
	pipeline  *pipeline.Pipeline
	manager   *instance.Manager
	saved     *SavedChartRepository
	renderLog *RenderLogRepository
	now       func() time.Time
	log       zerolog.Logger
}

// NewService creates the charts service.
func NewService(
	builder *query.Builder,
	pipe *pipeline.Pipeline,
	manager *instance.Manager,
	saved *SavedChartRepository,
	renderLog *RenderLogRepository,
	log zerolog.Logger,
) *Service {
	return &Service{
		builder:   builder,
		pipeline:  pipe,
		manager:   manager,
		saved:     saved,
		renderLog: renderLog,
		now:       time.Now,
		log:       log.With().Str("service", "charts").Logger(),
	}
}

// Manager returns the live chart instance manager.
func (s *Service) Manager() *instance.Manager {
	return s.manager
}

// Presets describes every declared preset in declaration order.
func (s *Service) Presets() ([]PresetInfo, error) {
	keys := domain.AllPresets()
	out := make([]PresetInfo, 0, len(keys))
	for _, key := range keys {
		info, err := describe(key)
		if err != nil {
			return nil, err
		}
		out = append(out, *info)
	}
	return out, nil
}

// Preset describes one preset.
func (s *Service) Preset(raw string) (*PresetInfo, error) {
	key, err := domain.ParsePresetKey(raw)
	if err != nil {
		return nil, err
	}
	return describe(key)
}

func describe(key domain.PresetKey) (*PresetInfo, error) {
	dt, err := presets.DatasetType(key)
	if err != nil {
		return nil, err
	}
	def, err := presets.DefaultVisualization(key)
	if err != nil {
		return nil, err
	}
	opts, err := presets.OptionGroups(key)
	if err != nil {
		return nil, err
	}
	defaults, err := presets.DefaultOptions(key)
	if err != nil {
		return nil, err
	}
	selected, err := presets.SelectFields(key, defaults)
	if err != nil {
		return nil, err
	}
	return &PresetInfo{
		Key:                  key,
		DatasetType:          dt,
		Bypass:               presets.IsBypass(key),
		DefaultVisualization: def,
		Visualizations:       renderer.SupportedKinds(key),
		Options:              opts,
		SelectFields:         selected,
	}, nil
}

func (s *Service) anchor(cfg domain.ChartConfig) domain.ChartConfig {
	if cfg.ReferenceTime.IsZero() {
		cfg.ReferenceTime = s.now().UTC().Truncate(24 * time.Hour)
	}
	return cfg
}

// BuildQuery resolves a config and builds its query without fetching.
func (s *Service) BuildQuery(cfg domain.ChartConfig) (*BuiltQuery, error) {
	cfg = s.anchor(cfg)
	resolved, err := s.builder.Resolve(cfg)
	if err != nil {
		return nil, err
	}
	q, err := s.builder.Build(resolved)
	if err != nil {
		return nil, err
	}
	wire, err := fields.QueryToWire(q)
	if err != nil {
		return nil, err
	}
	return &BuiltQuery{Config: resolved, Query: q, Wire: wire}, nil
}

// Render runs one config through the pipeline and records the outcome.
// Bypass presets render the request's inline content.
func (s *Service) Render(ctx context.Context, req RenderRequest) pipeline.Outcome {
	start := s.now()
	cfg := s.anchor(req.Config)

	var out pipeline.Outcome
	if presets.IsBypass(cfg.PresetKey) {
		out = s.pipeline.RunInline(cfg, req.Kind, req.Inline)
	} else {
		out = s.pipeline.Run(ctx, cfg, req.Kind)
	}

	s.record(out, s.now().Sub(start))
	return out
}

// RenderSaved renders a saved chart. kind overrides the saved visualization.
func (s *Service) RenderSaved(ctx context.Context, id string, kind domain.VisualizationKind) (pipeline.Outcome, error) {
	c, err := s.saved.Get(id)
	if err != nil {
		return pipeline.Outcome{}, err
	}
	if kind == "" {
		kind = c.Visualization
	}
	return s.Render(ctx, RenderRequest{Config: c.Config(time.Time{}), Kind: kind}), nil
}

func (s *Service) record(out pipeline.Outcome, d time.Duration) {
	if s.renderLog == nil {
		return
	}
	entry := RenderLogEntry{
		PresetKey:     string(out.Config.PresetKey),
		Ticker:        out.Config.Target.Ticker,
		Visualization: string(out.Kind),
		Status:        string(out.Status),
		Renderer:      string(out.Output.Tag.Library) + "/" + out.Output.Tag.Kind,
		Duration:      d,
		RenderedAt:    s.now().UTC(),
	}
	if out.Err != nil {
		entry.Error = out.Err.Error()
	}
	if err := s.renderLog.Record(entry); err != nil {
		s.log.Warn().Err(err).Msg("Failed to record render")
	}
}

// RecentRenders returns the latest render log entries.
func (s *Service) RecentRenders(limit int) ([]RenderLogEntry, error) {
	return s.renderLog.Recent(limit)
}

// RenderStats counts render log entries per status.
func (s *Service) RenderStats() (map[string]int, error) {
	return s.renderLog.CountByStatus()
}

// SaveChart validates and stores a saved chart. Options are resolved first so
// invalid choices are rejected at save time.
func (s *Service) SaveChart(c SavedChart) (*SavedChart, error) {
	resolved, err := presets.ResolveOptions(c.PresetKey, c.Options)
	if err != nil {
		return nil, err
	}
	c.Options = resolved
	return s.saved.Create(c)
}

// UpdateSavedChart replaces a saved chart.
func (s *Service) UpdateSavedChart(c SavedChart) (*SavedChart, error) {
	resolved, err := presets.ResolveOptions(c.PresetKey, c.Options)
	if err != nil {
		return nil, err
	}
	c.Options = resolved
	return s.saved.Update(c)
}

// GetSavedChart returns a saved chart.
func (s *Service) GetSavedChart(id string) (*SavedChart, error) {
	return s.saved.Get(id)
}

// ListSavedCharts returns every saved chart.
func (s *Service) ListSavedCharts() ([]SavedChart, error) {
	return s.saved.List()
}

// DeleteSavedChart removes a saved chart.
func (s *Service) DeleteSavedChart(id string) error {
	return s.saved.Delete(id)
}
