// Package instance owns the state of one displayed chart across option changes.
package instance

import (
	"context"
	"fmt"
	"image/png"
	"io"
	"sync"
	"time"

	"github.com/aristath/chartpresets/internal/modules/charts/chartmodel"
	"github.com/aristath/chartpresets/internal/modules/charts/domain"
	"github.com/aristath/chartpresets/internal/modules/charts/pipeline"
	"github.com/aristath/chartpresets/internal/modules/charts/presets"
	"github.com/aristath/chartpresets/internal/modules/charts/renderer"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Runner executes the chart pipeline. *pipeline.Pipeline satisfies it.
type Runner interface {
	Run(ctx context.Context, cfg domain.ChartConfig, kind domain.VisualizationKind) pipeline.Outcome
	RunInline(cfg domain.ChartConfig, kind domain.VisualizationKind, content pipeline.Inline) pipeline.Outcome
}

// State is an immutable snapshot of a chart instance.
type State struct {
	ID         string                   `json:"id"`
	Generation uint64                   `json:"generation"`
	Config     domain.ChartConfig       `json:"config"`
	Kind       domain.VisualizationKind `json:"kind"`
	Status     pipeline.Status          `json:"status"`
	Model      *chartmodel.ChartModel   `json:"model,omitempty"`
	Output     renderer.Output          `json:"output"`
	Error      string                   `json:"error,omitempty"`
	UpdatedAt  time.Time                `json:"updatedAt"`
}

// Options configures a chart instance.
type Options struct {
	Kind domain.VisualizationKind
	// Inline is the content of bypass presets.
	Inline pipeline.Inline
	// Settle is how long ChartCanvas waits before treating the surface as stable.
	Settle time.Duration
	// OnChange, when set, receives every state that becomes current.
	OnChange func(State)
	Width    int
	Height   int
}

// Chart is one chart instance. Option changes re-run the whole pipeline; a run
// superseded by a newer change is cancelled and its result discarded.
type Chart struct {
	id     string
	runner Runner
	opts   Options
	log    zerolog.Logger

	mu         sync.Mutex
	cfg        domain.ChartConfig
	generation uint64
	cancel     context.CancelFunc
	state      State

	// pushMu orders OnChange calls; lastPushed is the newest generation delivered.
	pushMu     sync.Mutex
	lastPushed uint64
}

// New creates a chart instance. A zero reference time is anchored at creation so
// every later run of this instance queries the same window.
func New(runner Runner, cfg domain.ChartConfig, opts Options, log zerolog.Logger) *Chart {
	if cfg.ReferenceTime.IsZero() {
		cfg.ReferenceTime = time.Now().UTC().Truncate(24 * time.Hour)
	}
	id := uuid.New().String()
	return &Chart{
		id:     id,
		runner: runner,
		opts:   opts,
		log:    log.With().Str("component", "chart_instance").Str("chart_id", id).Logger(),
		cfg:    cfg,
		state:  State{ID: id, Config: cfg, Kind: opts.Kind},
	}
}

// ID returns the instance identifier.
func (c *Chart) ID() string {
	return c.id
}

// State returns the current state.
func (c *Chart) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Load runs the pipeline for the current configuration.
func (c *Chart) Load(ctx context.Context) State {
	return c.UpdateOptions(ctx, nil)
}

// UpdateOptions merges partial into the current options and re-runs the pipeline.
// It is the only mutation entry point. The returned state is the current one,
// which is not this call's result when a newer call superseded it.
func (c *Chart) UpdateOptions(ctx context.Context, partial domain.OptionValue) State {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.generation++
	gen := c.generation
	c.cfg = c.cfg.WithOptions(partial)
	cfg := c.cfg
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	defer cancel()

	var outcome pipeline.Outcome
	if presets.IsBypass(cfg.PresetKey) {
		outcome = c.runner.RunInline(cfg, c.opts.Kind, c.opts.Inline)
	} else {
		outcome = c.runner.Run(runCtx, cfg, c.opts.Kind)
	}

	c.mu.Lock()
	if gen != c.generation {
		current := c.state
		c.mu.Unlock()
		c.log.Debug().
			Uint64("generation", gen).
			Uint64("current", current.Generation).
			Msg("Discarding superseded chart run")
		return current
	}
	c.state = c.next(gen, outcome)
	c.cancel = nil
	state := c.state
	c.mu.Unlock()

	c.push(state)
	return state
}

// push delivers state to OnChange unless a newer generation was already delivered.
func (c *Chart) push(state State) {
	if c.opts.OnChange == nil {
		return
	}
	c.pushMu.Lock()
	defer c.pushMu.Unlock()
	if state.Generation <= c.lastPushed {
		c.log.Debug().
			Uint64("generation", state.Generation).
			Uint64("pushed", c.lastPushed).
			Msg("Skipping superseded chart state")
		return
	}
	c.lastPushed = state.Generation
	c.opts.OnChange(state)
}

// next builds the state that follows an outcome. A successful run replaces the
// model; a configuration error replaces it with the placeholder; any other
// failure keeps the previous model on screen and only records the failure.
func (c *Chart) next(gen uint64, outcome pipeline.Outcome) State {
	prev := c.state
	s := State{
		ID:         c.id,
		Generation: gen,
		Config:     outcome.Config,
		Kind:       outcome.Kind,
		Status:     outcome.Status,
		UpdatedAt:  time.Now(),
	}
	if outcome.Err != nil {
		s.Error = outcome.Err.Error()
	}

	switch {
	case outcome.Status == pipeline.StatusOK:
		s.Model = outcome.Model
		s.Output = outcome.Output
	case outcome.Status == pipeline.StatusUnsupported:
		s.Output = outcome.Output
	case prev.Model != nil:
		s.Model = prev.Model
		s.Output = prev.Output
	default:
		s.Output = outcome.Output
	}
	return s
}

// ChartCanvas waits for the settle delay and returns a rasterizable surface of the
// current output. It returns false when nothing has been rendered yet.
func (c *Chart) ChartCanvas(ctx context.Context) (*renderer.Surface, bool) {
	if c.opts.Settle > 0 {
		t := time.NewTimer(c.opts.Settle)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil, false
		case <-t.C:
		}
	}

	state := c.State()
	if state.Generation == 0 || state.Output.Spec == nil {
		return nil, false
	}
	return &renderer.Surface{Output: state.Output, Width: c.opts.Width, Height: c.opts.Height}, true
}

// DownloadAsImage writes the current surface as PNG.
func (c *Chart) DownloadAsImage(ctx context.Context, w io.Writer) error {
	surface, ok := c.ChartCanvas(ctx)
	if !ok {
		return fmt.Errorf("chart %s has nothing rendered", c.id)
	}
	if err := png.Encode(w, surface.Image()); err != nil {
		return fmt.Errorf("failed to encode chart image: %w", err)
	}
	return nil
}

// Close cancels any in-flight run.
func (c *Chart) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}
