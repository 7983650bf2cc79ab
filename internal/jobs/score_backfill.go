package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Backfiller re-attempts missing score categories and reports how many
// interviews gained entries.
type Backfiller interface {
	Backfill(ctx context.Context) (int, error)
}

// ScoreBackfillJob periodically completes partially scored interviews.
type ScoreBackfillJob struct {
	backfiller Backfiller
	config     *BackfillConfig
	cron       *cron.Cron
	logger     *zap.Logger

	mu      sync.Mutex
	running bool
}

// BackfillConfig contains configuration for the backfill job
type BackfillConfig struct {
	Schedule string        // Cron spec or descriptor, e.g. "@every 5m"
	Enabled  bool          // Whether to schedule the job at all
	Timeout  time.Duration // Upper bound for a single run
}

func NewScoreBackfillJob(backfiller Backfiller, config *BackfillConfig, logger *zap.Logger) *ScoreBackfillJob {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScoreBackfillJob{
		backfiller: backfiller,
		config:     config,
		cron:       cron.New(),
		logger:     logger,
	}
}

// Start schedules the job. It is a no-op when the job is disabled.
func (j *ScoreBackfillJob) Start() error {
	if !j.config.Enabled {
		j.logger.Info("score backfill is disabled, skipping scheduler")
		return nil
	}

	_, err := j.cron.AddFunc(j.config.Schedule, func() {
		if _, err := j.RunOnce(context.Background()); err != nil {
			j.logger.Warn("score backfill run failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule score backfill job: %w", err)
	}

	j.cron.Start()
	j.logger.Info("score backfill started", zap.String("schedule", j.config.Schedule))
	return nil
}

// Stop halts scheduling and waits for a running pass to finish.
func (j *ScoreBackfillJob) Stop() {
	if j.cron != nil {
		<-j.cron.Stop().Done()
		j.logger.Info("score backfill stopped")
	}
}

// RunOnce performs a single pass. Overlapping passes are skipped.
func (j *ScoreBackfillJob) RunOnce(ctx context.Context) (int, error) {
	j.mu.Lock()
	if j.running {
		j.mu.Unlock()
		j.logger.Debug("score backfill already running, skipping")
		return 0, nil
	}
	j.running = true
	j.mu.Unlock()
	defer func() {
		j.mu.Lock()
		j.running = false
		j.mu.Unlock()
	}()

	if j.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.Timeout)
		defer cancel()
	}

	started := time.Now()
	filled, err := j.backfiller.Backfill(ctx)
	j.logger.Info("score backfill finished",
		zap.Int("interviews_filled", filled),
		zap.Duration("elapsed", time.Since(started)),
		zap.Error(err))
	return filled, err
}
