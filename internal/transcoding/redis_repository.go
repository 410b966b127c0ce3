package transcoding

import (
	"context"

	"github.com/google/uuid"

	"github.com/clipforge/video-transcoder/internal/models"
)

// CacheRepository is a read-through cache over job rows for the status API.
// The job store stays the source of truth; entries carry a short TTL while a
// job is live and a longer one once it is terminal.
type CacheRepository interface {
	CacheJob(ctx context.Context, job *models.TranscodingJob) error
	GetCachedJob(ctx context.Context, jobID uuid.UUID) (*models.TranscodingJob, error)
	DeleteCachedJob(ctx context.Context, jobID uuid.UUID) error
}
