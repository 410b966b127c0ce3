package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/clipforge/video-transcoder/internal/models"
	"github.com/clipforge/video-transcoder/internal/transcoding"
)

const (
	jobCachePrefix = "transcoding:job:"

	// Live jobs change often, so their entries expire quickly. Terminal
	// jobs are immutable and can live longer.
	liveJobTTL     = 5 * time.Second
	terminalJobTTL = 10 * time.Minute
)

type jobCacheRepo struct {
	redisClient *redis.Client
}

func NewJobCacheRepo(redisClient *redis.Client) transcoding.CacheRepository {
	return &jobCacheRepo{
		redisClient: redisClient,
	}
}

func (c *jobCacheRepo) CacheJob(ctx context.Context, job *models.TranscodingJob) error {
	jobBytes, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job for cache: %w", err)
	}
	ttl := liveJobTTL
	if job.Status.Terminal() {
		ttl = terminalJobTTL
	}
	if err = c.redisClient.Set(ctx, c.key(job.JobID), jobBytes, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache job: %w", err)
	}
	return nil
}

func (c *jobCacheRepo) GetCachedJob(ctx context.Context, jobID uuid.UUID) (*models.TranscodingJob, error) {
	jobBytes, err := c.redisClient.Get(ctx, c.key(jobID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cached job: %w", err)
	}
	job := &models.TranscodingJob{}
	if err = json.Unmarshal(jobBytes, job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached job: %w", err)
	}
	return job, nil
}

func (c *jobCacheRepo) DeleteCachedJob(ctx context.Context, jobID uuid.UUID) error {
	if err := c.redisClient.Del(ctx, c.key(jobID)).Err(); err != nil {
		return fmt.Errorf("failed to delete cached job: %w", err)
	}
	return nil
}

func (c *jobCacheRepo) key(jobID uuid.UUID) string {
	return jobCachePrefix + jobID.String()
}
