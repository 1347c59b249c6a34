package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/chartpresets/internal/database"
	"github.com/rs/zerolog"
)

// largeWALBytes is the WAL size above which the job truncates the log.
const largeWALBytes = 16 << 20

// CheckDatabasesJob verifies integrity of the SQLite databases and keeps their
// WAL files from growing unbounded.
type CheckDatabasesJob struct {
	log       zerolog.Logger
	databases []*database.DB
	timeout   time.Duration
}

// NewCheckDatabasesJob creates a new CheckDatabasesJob. Nil databases are skipped.
func NewCheckDatabasesJob(log zerolog.Logger, databases ...*database.DB) *CheckDatabasesJob {
	return &CheckDatabasesJob{
		log:       log.With().Str("job", "check_databases").Logger(),
		databases: databases,
		timeout:   30 * time.Second,
	}
}

// Name returns the job name
func (j *CheckDatabasesJob) Name() string {
	return "check_databases"
}

// Run executes the check databases job
func (j *CheckDatabasesJob) Run() error {
	checked := 0
	for _, db := range j.databases {
		if db == nil {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
		err := db.HealthCheck(ctx)
		cancel()
		if err != nil {
			j.log.Error().
				Err(err).
				Str("database", db.Name()).
				Msg("Database integrity check failed")
			return fmt.Errorf("database %s failed its integrity check: %w", db.Name(), err)
		}

		stats, err := db.GetStats()
		if err != nil {
			j.log.Warn().Err(err).Str("database", db.Name()).Msg("Failed to read database stats")
		} else if stats.WALSizeBytes > largeWALBytes {
			j.log.Warn().
				Str("database", db.Name()).
				Int64("wal_bytes", stats.WALSizeBytes).
				Msg("WAL file is large, truncating")
			if err := db.WALCheckpoint(); err != nil {
				j.log.Warn().Err(err).Str("database", db.Name()).Msg("Failed to checkpoint WAL")
			}
		}

		checked++
	}

	j.log.Info().Int("checked", checked).Msg("Database check completed")
	return nil
}
