// Package pipeline runs one chart configuration through query build, fetch,
// normalization, transformation and renderer dispatch.
package pipeline

import (
	"context"
	"errors"

	"github.com/aristath/chartpresets/internal/modules/charts/chartmodel"
	"github.com/aristath/chartpresets/internal/modules/charts/dataset"
	"github.com/aristath/chartpresets/internal/modules/charts/domain"
	"github.com/aristath/chartpresets/internal/modules/charts/fields"
	"github.com/aristath/chartpresets/internal/modules/charts/presets"
	"github.com/aristath/chartpresets/internal/modules/charts/query"
	"github.com/aristath/chartpresets/internal/modules/charts/renderer"
	"github.com/aristath/chartpresets/internal/utils"
	"github.com/rs/zerolog"
)

// Status classifies a run's outcome.
type Status string

const (
	StatusOK          Status = "ok"
	StatusNoData      Status = "no_data"
	StatusError       Status = "error"
	StatusUnsupported Status = "unsupported"
)

// Fetcher executes a wire-vocabulary query against the dataset service. Any
// failure is returned as a *domain.DatasetFetchError.
type Fetcher interface {
	FetchQuery(ctx context.Context, q *dataset.Query, sessionToken string) (*dataset.Table, error)
}

// Inline is the pre-supplied content of a bypass preset.
type Inline struct {
	Model    *chartmodel.ChartModel `json:"model,omitempty"`
	ImageURL string                 `json:"imageUrl,omitempty"`
}

// Outcome is the result of one run. Model is nil unless Status is StatusOK;
// Output is always set, to a placeholder when the run failed.
type Outcome struct {
	Status Status
	Config domain.ChartConfig
	Kind   domain.VisualizationKind
	Tag    renderer.Tag
	Query  *dataset.Query
	Model  *chartmodel.ChartModel
	Output renderer.Output
	Err    error
}

// Pipeline is stateless; every run is a function of the config and the fetched data.
type Pipeline struct {
	builder  *query.Builder
	fetcher  Fetcher
	registry *renderer.Registry
	log      zerolog.Logger
}

// New creates a pipeline.
func New(builder *query.Builder, fetcher Fetcher, registry *renderer.Registry, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		builder:  builder,
		fetcher:  fetcher,
		registry: registry,
		log:      log.With().Str("service", "chart_pipeline").Logger(),
	}
}

// VisualizationFor picks the visualization of a run: the explicit kind, else the
// VISUALIZATION option, else the preset default.
func VisualizationFor(cfg domain.ChartConfig, kind domain.VisualizationKind) domain.VisualizationKind {
	if kind != "" {
		return kind
	}
	if v := cfg.OptionValue.Value(domain.OptionVisualization); v != "" {
		return domain.VisualizationKind(v)
	}
	def, err := presets.DefaultVisualization(cfg.PresetKey)
	if err != nil {
		return domain.VisualizationLine
	}
	return def
}

// Run executes the full pipeline for a dataset preset. Bypass presets must be
// routed to RunInline by the caller.
func (p *Pipeline) Run(ctx context.Context, cfg domain.ChartConfig, kind domain.VisualizationKind) Outcome {
	timer := utils.NewStageTimer(p.log)
	out := Outcome{Config: cfg, Kind: VisualizationFor(cfg, kind)}

	resolved, err := p.builder.Resolve(cfg)
	if err != nil {
		return p.fail(out, err)
	}
	out.Config = resolved
	out.Kind = VisualizationFor(resolved, kind)

	out.Tag = renderer.Resolve(resolved.PresetKey, out.Kind)
	if out.Tag.IsFallback() {
		return p.unsupported(out)
	}

	q, err := p.builder.Build(resolved)
	if err != nil {
		return p.fail(out, err)
	}
	out.Query = q
	wire, err := fields.QueryToWire(q)
	if err != nil {
		return p.fail(out, err)
	}
	timer.Mark("build")

	raw, err := p.fetcher.FetchQuery(ctx, wire, resolved.SessionToken)
	if err != nil {
		var fetchErr *domain.DatasetFetchError
		if !errors.As(err, &fetchErr) {
			err = &domain.DatasetFetchError{Cause: err}
		}
		return p.fail(out, err)
	}
	timer.Mark("fetch")

	table, err := fields.TableToInternal(raw)
	if err != nil {
		return p.fail(out, err)
	}
	timer.Mark("normalize")

	opts, err := presets.ChartDataOptions(resolved, out.Kind)
	if err != nil {
		return p.fail(out, err)
	}
	model := chartmodel.Transform(table, opts)
	timer.Mark("transform")
	if model.IsEmpty() {
		return p.fail(out, domain.ErrEmptyResult)
	}

	output, err := p.registry.Render(out.Tag, renderer.Input{Model: model})
	if err != nil {
		return p.fail(out, err)
	}
	timer.Mark("render")
	timer.Log("Chart pipeline completed")

	out.Status = StatusOK
	out.Model = model
	out.Output = output
	return out
}

// RunInline renders pre-supplied content for a bypass preset without touching
// the dataset service.
func (p *Pipeline) RunInline(cfg domain.ChartConfig, kind domain.VisualizationKind, content Inline) Outcome {
	out := Outcome{Config: cfg, Kind: VisualizationFor(cfg, kind)}
	if !presets.IsBypass(cfg.PresetKey) {
		return p.fail(out, &domain.ConfigurationError{
			Kind:    domain.BypassPreset,
			Subject: string(cfg.PresetKey),
			Detail:  "preset queries the dataset service",
		})
	}

	out.Tag = renderer.Resolve(cfg.PresetKey, out.Kind)
	if out.Tag.IsFallback() {
		return p.unsupported(out)
	}
	if out.Tag.Library != renderer.LibraryImage && content.Model.IsEmpty() {
		return p.fail(out, domain.ErrEmptyResult)
	}

	output, err := p.registry.Render(out.Tag, renderer.Input{Model: content.Model, ImageURL: content.ImageURL})
	if err != nil {
		return p.fail(out, err)
	}
	out.Status = StatusOK
	out.Model = content.Model
	out.Output = output
	return out
}

func (p *Pipeline) unsupported(out Outcome) Outcome {
	p.log.Info().
		Str("preset", string(out.Config.PresetKey)).
		Str("kind", string(out.Kind)).
		Msg("Unsupported preset and visualization")
	out.Status = StatusUnsupported
	out.Tag = renderer.FallbackTag
	out.Output = p.registry.Placeholder(renderer.FallbackTag, "")
	return out
}

// fail classifies err and renders the matching placeholder.
func (p *Pipeline) fail(out Outcome, err error) Outcome {
	out.Err = err
	out.Model = nil

	switch {
	case domain.IsConfigurationError(err), errors.Is(err, domain.ErrUnsupportedRenderer):
		out.Status = StatusUnsupported
		out.Tag = renderer.FallbackTag
	case errors.Is(err, domain.ErrEmptyResult):
		out.Status = StatusNoData
		out.Tag = renderer.NoDataTag
	default:
		out.Status = StatusError
		out.Tag = renderer.ErrorTag
	}
	out.Output = p.registry.Placeholder(out.Tag, "")

	event := p.log.Warn()
	if out.Status == StatusUnsupported && errors.Is(err, domain.ErrUnsupportedRenderer) {
		event = p.log.Error()
	}
	event.Err(err).
		Str("preset", string(out.Config.PresetKey)).
		Str("status", string(out.Status)).
		Msg("Chart pipeline did not produce a model")
	return out
}
