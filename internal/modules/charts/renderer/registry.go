package renderer

import (
	"fmt"

	"github.com/aristath/chartpresets/internal/modules/charts/chartmodel"
	"github.com/aristath/chartpresets/internal/modules/charts/domain"
	"github.com/rs/zerolog"
)

// Input is everything a strategy may consume. Model is nil for the image strategy
// and for placeholders.
type Input struct {
	Model    *chartmodel.ChartModel
	ImageURL string
	Message  string
}

// Output is a renderer-specific spec tagged with the strategy that produced it.
type Output struct {
	Tag  Tag `json:"tag"`
	Spec any `json:"spec"`
}

// Strategy renders one library's sub-kinds.
type Strategy interface {
	Render(kind string, in Input) (any, error)
}

// StrategyFunc adapts a function to Strategy.
type StrategyFunc func(kind string, in Input) (any, error)

// Render calls f.
func (f StrategyFunc) Render(kind string, in Input) (any, error) {
	return f(kind, in)
}

// Registry holds one strategy per library.
type Registry struct {
	strategies map[Library]Strategy
	log        zerolog.Logger
}

// NewRegistry creates a registry with every built-in strategy registered.
func NewRegistry(log zerolog.Logger) *Registry {
	r := &Registry{
		strategies: make(map[Library]Strategy),
		log:        log.With().Str("component", "renderer").Logger(),
	}
	r.Register(LibraryCandlestick, StrategyFunc(renderCandlestick))
	r.Register(LibraryGeneric, StrategyFunc(renderGeneric))
	r.Register(LibraryTable, StrategyFunc(renderTable))
	r.Register(LibraryImage, StrategyFunc(renderImage))
	r.Register(LibraryPlaceholder, StrategyFunc(renderPlaceholder))
	return r
}

// Register installs or replaces the strategy for a library.
func (r *Registry) Register(lib Library, s Strategy) {
	r.strategies[lib] = s
}

// Render runs the strategy a tag selects. A missing strategy is a defect and
// reports domain.ErrUnsupportedRenderer.
func (r *Registry) Render(tag Tag, in Input) (Output, error) {
	s, ok := r.strategies[tag.Library]
	if !ok {
		r.log.Error().Str("library", string(tag.Library)).Msg("No strategy registered")
		return Output{}, fmt.Errorf("%w: %s/%s", domain.ErrUnsupportedRenderer, tag.Library, tag.Kind)
	}
	spec, err := s.Render(tag.Kind, in)
	if err != nil {
		return Output{}, fmt.Errorf("failed to render %s/%s: %w", tag.Library, tag.Kind, err)
	}
	return Output{Tag: tag, Spec: spec}, nil
}

// Placeholder renders a placeholder output. It never fails.
func (r *Registry) Placeholder(tag Tag, message string) Output {
	return Output{Tag: tag, Spec: placeholderSpec(tag.Kind, message)}
}
