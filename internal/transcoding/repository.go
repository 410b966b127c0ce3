package transcoding

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/clipforge/video-transcoder/internal/models"
	"github.com/clipforge/video-transcoder/pkg/utils"
)

// Repository is the job store access layer. The transcoding_jobs row is the
// single source of truth for job state; every mutation goes through these
// primitives.
type Repository interface {
	CreateJob(ctx context.Context, job *models.TranscodingJob) (*models.TranscodingJob, error)

	// ClaimNext atomically moves one pending job to processing and returns
	// it. Returns (nil, nil) when there is no claimable work. Two concurrent
	// callers never receive the same job.
	ClaimNext(ctx context.Context) (*models.TranscodingJob, error)

	// UpdateProgress is a silent no-op when the job is no longer processing,
	// e.g. after the reaper reset it.
	UpdateProgress(ctx context.Context, jobID uuid.UUID, progress int) error

	// MarkCompleted and MarkFailed are idempotent: finalizing an already
	// terminal job changes nothing.
	MarkCompleted(ctx context.Context, jobID uuid.UUID, manifestLocation string) error
	MarkFailed(ctx context.Context, jobID uuid.UUID, errorDetail string) error

	GetJobByID(ctx context.Context, jobID uuid.UUID) (*models.TranscodingJob, error)
	GetJobs(ctx context.Context, pq *utils.Pagination) (*models.JobList, error)

	// ReapStale resets processing jobs with no writes for olderThan back to
	// pending so another worker may reclaim them.
	ReapStale(ctx context.Context, olderThan time.Duration) (int64, error)
}
