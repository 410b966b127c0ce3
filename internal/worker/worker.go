package worker

import (
	"context"
	"time"

	"github.com/clipforge/video-transcoder/internal/config"
	"github.com/clipforge/video-transcoder/internal/transcoding"
	"github.com/clipforge/video-transcoder/pkg/logger"
	"github.com/clipforge/video-transcoder/pkg/utils"
)

// Worker polls the job store, claims one job at a time and drives it through
// the transcoding pipeline. Multiple workers may run against the same store;
// safety comes from the atomic claim, not from coordination between workers.
type Worker struct {
	cfg       *config.Config
	jobRepo   transcoding.Repository
	processor *processor
	logger    logger.Logger
}

func NewWorker(
	cfg *config.Config,
	jobRepo transcoding.Repository,
	storageRepo transcoding.StorageRepository,
	encoder Encoder,
	log logger.Logger,
) *Worker {
	return &Worker{
		cfg:       cfg,
		jobRepo:   jobRepo,
		processor: NewProcessor(cfg, jobRepo, storageRepo, encoder, log),
		logger:    log,
	}
}

// Run blocks until ctx is cancelled. A fresh process resumes by polling, so
// restarts need no handover beyond the reaper.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Infof("starting worker: poll every %s, stale after %s, %d retries",
		w.cfg.Worker.PollInterval, w.cfg.Worker.StaleAfter, w.cfg.Worker.MaxRetries)

	w.reap(ctx)
	go w.reapLoop(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker stopping")
			return nil
		default:
		}

		if w.cfg.Worker.MaxCPUUsage > 0 {
			if ok, usage := utils.CheckCPUUsage(w.cfg.Worker.MaxCPUUsage); !ok {
				w.logger.Infof("CPU usage %.2f%% too high, backing off", usage)
				w.sleep(ctx)
				continue
			}
		}

		job, err := w.jobRepo.ClaimNext(ctx)
		if err != nil {
			w.logger.Errorf("failed to claim job: %v", err)
			w.sleep(ctx)
			continue
		}
		if job == nil {
			w.sleep(ctx)
			continue
		}

		if err := w.processor.Process(ctx, job); err != nil {
			w.logger.Errorf("job %s: %v", job.JobID, err)
		}
	}
}

// reapLoop periodically resets processing jobs whose owner stopped writing,
// so a crashed worker's claim does not strand work forever.
func (w *Worker) reapLoop(ctx context.Context) {
	interval := w.cfg.Worker.StaleAfter / 2
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.reap(ctx)
		}
	}
}

func (w *Worker) reap(ctx context.Context) {
	count, err := w.jobRepo.ReapStale(ctx, w.cfg.Worker.StaleAfter)
	if err != nil {
		w.logger.Errorf("failed to reap stale jobs: %v", err)
		return
	}
	if count > 0 {
		w.logger.Warnf("reset %d stale processing jobs back to pending", count)
	}
}

func (w *Worker) sleep(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(w.cfg.Worker.PollInterval):
	}
}
