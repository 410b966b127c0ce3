package worker

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/clipforge/video-transcoder/internal/config"
	"github.com/clipforge/video-transcoder/internal/models"
	"github.com/clipforge/video-transcoder/internal/transcoding"
	"github.com/clipforge/video-transcoder/pkg/logger"
	"github.com/clipforge/video-transcoder/pkg/utils"
)

// Progress split across pipeline phases: download accounts for the first
// 10%, encoding for the remaining 90%. Upload is implicit in reaching 100 at
// finalization. The split is a convention, not a measurement.
const (
	downloadProgressShare = 10
	encodeProgressShare   = 90

	retryBackoff = 2 * time.Second
)

type processor struct {
	cfg         *config.Config
	jobRepo     transcoding.Repository
	storageRepo transcoding.StorageRepository
	encoder     Encoder
	logger      logger.Logger
}

func NewProcessor(
	cfg *config.Config,
	jobRepo transcoding.Repository,
	storageRepo transcoding.StorageRepository,
	encoder Encoder,
	log logger.Logger,
) *processor {
	return &processor{
		cfg:         cfg,
		jobRepo:     jobRepo,
		storageRepo: storageRepo,
		encoder:     encoder,
		logger:      log,
	}
}

// Process drives one claimed job through fetch, encode, upload and
// finalization. It always leaves the job in a terminal state unless the
// context is cancelled; crashed runs are recovered by the staleness reaper.
func (p *processor) Process(ctx context.Context, job *models.TranscodingJob) error {
	start := time.Now()
	p.logger.Infof("processing job %s (source %s)", job.JobID, job.SourceFileID)

	tempDir, err := os.MkdirTemp("", "transcode_"+job.JobID.String()+"_")
	if err != nil {
		return p.fail(ctx, job, fmt.Errorf("failed to create temp dir: %w", err))
	}
	defer func() {
		if err := os.RemoveAll(tempDir); err != nil {
			p.logger.Warnf("failed to clean temp dir %s: %v", tempDir, err)
		}
	}()

	inputPath, err := p.fetchSource(ctx, job, tempDir)
	if err != nil {
		return p.fail(ctx, job, err)
	}
	p.reportProgress(ctx, job, downloadProgressShare)

	result, err := p.transcode(ctx, job, inputPath, tempDir)
	if err != nil {
		return p.fail(ctx, job, err)
	}
	for _, name := range result.FailedVariants {
		p.logger.Warnf("job %s: variant %s dropped from output", job.JobID, name)
	}

	manifestURL, err := p.uploadOutput(ctx, job, tempDir, inputPath)
	if err != nil {
		return p.fail(ctx, job, err)
	}

	if err := p.jobRepo.MarkCompleted(ctx, job.JobID, manifestURL); err != nil {
		return fmt.Errorf("failed to finalize job %s: %w", job.JobID, err)
	}
	p.logger.Infof("job %s completed in %s with %d variants", job.JobID, time.Since(start), len(result.Variants))
	return nil
}

func (p *processor) fetchSource(ctx context.Context, job *models.TranscodingJob, tempDir string) (string, error) {
	var inputPath string
	err := p.withRetries(ctx, "fetch", func() error {
		var err error
		inputPath, err = p.storageRepo.FetchToFile(ctx, p.cfg.S3.InputBucket, job.InputLocation, tempDir)
		return err
	})
	if err != nil {
		return "", err
	}
	return inputPath, nil
}

func (p *processor) transcode(ctx context.Context, job *models.TranscodingJob, inputPath, outputDir string) (*EncodeResult, error) {
	variants := utils.VariantsFromConfig(p.cfg)
	return p.encoder.Transcode(ctx, inputPath, outputDir, variants, func(encodePercent int) {
		overall := downloadProgressShare + encodePercent*encodeProgressShare/100
		if overall > 99 {
			overall = 99
		}
		p.reportProgress(ctx, job, overall)
	})
}

func (p *processor) uploadOutput(ctx context.Context, job *models.TranscodingJob, tempDir, inputPath string) (string, error) {
	// The downloaded source lives in the same temp dir as the encoder
	// output; drop it before the walk so it is not published.
	if err := os.Remove(inputPath); err != nil {
		p.logger.Warnf("failed to remove source file before upload: %v", err)
	}

	err := p.withRetries(ctx, "upload", func() error {
		count, err := p.storageRepo.UploadDir(ctx, tempDir, p.cfg.S3.OutputBucket, job.OutputPrefix)
		if err != nil {
			return err
		}
		p.logger.Debugf("job %s: uploaded %d objects", job.JobID, count)
		return nil
	})
	if err != nil {
		return "", err
	}

	manifestKey := job.OutputPrefix + "/" + MasterPlaylistName
	return p.storageRepo.PublicURL(p.cfg.S3.OutputBucket, manifestKey), nil
}

// withRetries retries transient failures up to the configured bound.
// Terminal errors and context cancellation abort immediately.
func (p *processor) withRetries(ctx context.Context, op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= p.cfg.Worker.MaxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if transcoding.IsTerminal(lastErr) || ctx.Err() != nil {
			return lastErr
		}
		p.logger.Warnf("%s attempt %d/%d failed: %v", op, attempt, p.cfg.Worker.MaxRetries, lastErr)
		if attempt < p.cfg.Worker.MaxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryBackoff):
			}
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", op, p.cfg.Worker.MaxRetries, lastErr)
}

// reportProgress drops write failures: a reaped job will be retried from
// scratch, and its progress writes must not abort the current pass.
func (p *processor) reportProgress(ctx context.Context, job *models.TranscodingJob, percent int) {
	if err := p.jobRepo.UpdateProgress(ctx, job.JobID, percent); err != nil {
		p.logger.Warnf("job %s: progress write failed: %v", job.JobID, err)
	}
}

func (p *processor) fail(ctx context.Context, job *models.TranscodingJob, cause error) error {
	detail := errorDetail(cause)
	p.logger.Errorf("job %s failed: %v", job.JobID, cause)
	if err := p.jobRepo.MarkFailed(ctx, job.JobID, detail); err != nil {
		return fmt.Errorf("failed to record failure for job %s: %w", job.JobID, err)
	}
	return cause
}

// errorDetail sanitizes internal errors into the caller-visible summary.
// Raw stderr and stack traces never leave the worker.
func errorDetail(err error) string {
	switch {
	case errors.Is(err, transcoding.ErrSourceUnavailable):
		return "source file unavailable"
	case errors.Is(err, transcoding.ErrBadInput):
		return "source file is not valid media"
	case errors.Is(err, transcoding.ErrAllVariantsFailed):
		return "encoding failed for all variants"
	default:
		return "transcoding failed: " + err.Error()
	}
}
