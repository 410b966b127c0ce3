package transcoding

import (
	"context"

	"github.com/google/uuid"

	"github.com/clipforge/video-transcoder/internal/models"
	"github.com/clipforge/video-transcoder/pkg/utils"
)

type UseCase interface {
	CreateJob(ctx context.Context, input *models.CreateJobInput) (*models.TranscodingJob, error)
	GetJob(ctx context.Context, jobID uuid.UUID) (*models.TranscodingJob, error)
	ListJobs(ctx context.Context, pq *utils.Pagination) (*models.JobList, error)
}
