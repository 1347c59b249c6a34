package charts

import (
	"time"

	"github.com/rs/zerolog"
)

// CleanupJob prunes render log entries older than the retention window.
type CleanupJob struct {
	repo      *RenderLogRepository
	retention time.Duration
	now       func() time.Time
	log       zerolog.Logger
}

// NewCleanupJob creates a render log cleanup job.
func NewCleanupJob(repo *RenderLogRepository, retention time.Duration, log zerolog.Logger) *CleanupJob {
	return &CleanupJob{
		repo:      repo,
		retention: retention,
		now:       time.Now,
		log:       log.With().Str("job", "render_log_cleanup").Logger(),
	}
}

// Run deletes expired entries.
func (j *CleanupJob) Run() error {
	cutoff := j.now().Add(-j.retention)
	deleted, err := j.repo.DeleteOlderThan(cutoff)
	if err != nil {
		j.log.Error().Err(err).Msg("Failed to prune render log")
		return err
	}

	if deleted > 0 {
		j.log.Info().
			Int64("deleted", deleted).
			Time("cutoff", cutoff).
			Msg("Render log cleanup completed")
	}
	return nil
}

// Name returns the job name for scheduling and logging.
func (j *CleanupJob) Name() string {
	return "render_log_cleanup"
}
