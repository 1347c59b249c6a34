package utils

import (
	"time"

	"github.com/rs/zerolog"
)

// SlowStageThreshold is the duration above which a pipeline stage is logged as slow.
const SlowStageThreshold = 2 * time.Second

// StageTimer measures the stages of one pipeline run.
type StageTimer struct {
	start  time.Time
	last   time.Time
	stages map[string]time.Duration
	log    zerolog.Logger
}

// NewStageTimer starts a timer.
func NewStageTimer(log zerolog.Logger) *StageTimer {
	now := time.Now()
	return &StageTimer{
		start:  now,
		last:   now,
		stages: make(map[string]time.Duration),
		log:    log,
	}
}

// Mark records the time spent since the previous mark under stage.
func (t *StageTimer) Mark(stage string) time.Duration {
	now := time.Now()
	d := now.Sub(t.last)
	t.last = now
	t.stages[stage] += d

	if d > SlowStageThreshold {
		t.log.Warn().
			Str("stage", stage).
			Dur("duration", d).
			Msg("Slow pipeline stage detected")
	}
	return d
}

// Stage returns the recorded duration for a stage.
func (t *StageTimer) Stage(stage string) time.Duration {
	return t.stages[stage]
}

// Total returns the time since the timer started.
func (t *StageTimer) Total() time.Duration {
	return time.Since(t.start)
}

// Log writes one debug line with every recorded stage.
func (t *StageTimer) Log(msg string) {
	event := t.log.Debug().Dur("total", t.Total())
	for stage, d := range t.stages {
		event = event.Dur(stage, d)
	}
	event.Msg(msg)
}

// OperationTimer provides a defer-friendly way to measure operation duration
//
// Usage:
//
//	func MyFunction() {
//	    defer utils.OperationTimer("my_function", log)()
//	}
func OperationTimer(operation string, log zerolog.Logger) func() {
	start := time.Now()

	return func() {
		duration := time.Since(start)

		log.Debug().
			Str("operation", operation).
			Dur("duration_ms", duration).
			Msg("Operation completed")

		if duration > SlowStageThreshold {
			log.Warn().
				Str("operation", operation).
				Dur("duration", duration).
				Msg("Slow operation detected")
		}
	}
}
