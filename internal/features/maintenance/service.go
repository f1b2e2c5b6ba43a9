package maintenance

import (
	"context"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"go-certify/internal/config"
	"go-certify/internal/features/job"
)

// Sweeper removes finished jobs past their retention window, recipients
// and generated files included.
type Sweeper struct {
	Jobs       job.JobRepository
	Recipients job.RecipientRepository
	Config     *config.Config
	Logger     *zap.Logger

	cron *cron.Cron
}

func NewSweeper(jobs job.JobRepository, recipients job.RecipientRepository, cfg *config.Config, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		Jobs:       jobs,
		Recipients: recipients,
		Config:     cfg,
		Logger:     logger,
	}
}

// Schedule registers the sweep on the configured cron expression and
// starts the scheduler.
func (s *Sweeper) Schedule() error {
	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.Config.CleanupCron, func() {
		s.Sweep(context.Background())
	}); err != nil {
		return err
	}
	s.cron.Start()
	s.Logger.Info("cleanup scheduled", zap.String("cron", s.Config.CleanupCron), zap.Int("retain_days", s.Config.RetainDays))
	return nil
}

// Stop halts the scheduler and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// Sweep runs one pass. It is safe to call directly, outside the schedule.
func (s *Sweeper) Sweep(ctx context.Context) {
	cutoff := time.Now().AddDate(0, 0, -s.Config.RetainDays)
	expired, err := s.Jobs.ListFinishedBefore(ctx, cutoff)
	if err != nil {
		s.Logger.Error("cleanup scan failed", zap.Error(err))
		return
	}

	removed := 0
	for _, j := range expired {
		id := j.ID.Hex()
		if err := s.Recipients.DeleteByJob(ctx, id); err != nil {
			s.Logger.Error("recipient cleanup failed", zap.String("job_id", id), zap.Error(err))
			continue
		}
		if err := s.Jobs.Delete(ctx, id); err != nil {
			s.Logger.Error("job cleanup failed", zap.String("job_id", id), zap.Error(err))
			continue
		}
		if j.OutputPath != "" {
			if err := os.RemoveAll(j.OutputPath); err != nil {
				s.Logger.Warn("output cleanup failed", zap.String("job_id", id), zap.String("path", j.OutputPath), zap.Error(err))
			}
		}
		removed++
	}
	if removed > 0 {
		s.Logger.Info("cleanup finished", zap.Int("removed", removed), zap.Time("cutoff", cutoff))
	}
}
