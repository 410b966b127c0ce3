package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/clipforge/video-transcoder/internal/config"
	"github.com/clipforge/video-transcoder/internal/models"
	"github.com/clipforge/video-transcoder/internal/transcoding"
	"github.com/clipforge/video-transcoder/pkg/logger"
	"github.com/clipforge/video-transcoder/pkg/utils"
)

type transcodingUC struct {
	cfg       *config.Config
	jobRepo   transcoding.Repository
	cacheRepo transcoding.CacheRepository
	logger    logger.Logger
}

func NewTranscodingUseCase(
	cfg *config.Config,
	jobRepo transcoding.Repository,
	cacheRepo transcoding.CacheRepository,
	log logger.Logger,
) transcoding.UseCase {
	return &transcodingUC{
		cfg:       cfg,
		jobRepo:   jobRepo,
		cacheRepo: cacheRepo,
		logger:    log,
	}
}

func (u *transcodingUC) CreateJob(ctx context.Context, input *models.CreateJobInput) (*models.TranscodingJob, error) {
	if err := utils.ValidateStruct(ctx, input); err != nil {
		u.logger.Errorf("CreateJob - ValidateStruct error: %v", err)
		return nil, fmt.Errorf("invalid input: %v", err)
	}

	jobID := uuid.New()
	job := &models.TranscodingJob{
		JobID:         jobID,
		SourceFileID:  input.SourceFileID,
		Status:        models.JobStatusPending,
		InputLocation: fmt.Sprintf("uploads/%s", input.SourceFileID),
		OutputPrefix:  fmt.Sprintf("outputs/%s", jobID),
	}
	created, err := u.jobRepo.CreateJob(ctx, job)
	if err != nil {
		u.logger.Errorf("CreateJob - CreateJob error: %v", err)
		return nil, err
	}
	u.logger.Infof("Enqueued transcoding job %s for source %s", created.JobID, created.SourceFileID)
	return created, nil
}

func (u *transcodingUC) GetJob(ctx context.Context, jobID uuid.UUID) (*models.TranscodingJob, error) {
	if jobID == uuid.Nil {
		return nil, fmt.Errorf("invalid job id: cannot be empty")
	}

	cached, err := u.cacheRepo.GetCachedJob(ctx, jobID)
	if err != nil {
		u.logger.Warnf("GetJob - cache read error: %v", err)
	}
	if cached != nil {
		return cached, nil
	}

	job, err := u.jobRepo.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err = u.cacheRepo.CacheJob(ctx, job); err != nil {
		u.logger.Warnf("GetJob - cache write error: %v", err)
	}
	return job, nil
}

func (u *transcodingUC) ListJobs(ctx context.Context, pq *utils.Pagination) (*models.JobList, error) {
	if pq == nil {
		pq = &utils.Pagination{Page: 1, Size: 10}
	}
	jobs, err := u.jobRepo.GetJobs(ctx, pq)
	if err != nil {
		u.logger.Errorf("ListJobs - GetJobs error: %v", err)
		return nil, fmt.Errorf("failed to list jobs: %v", err)
	}
	return jobs, nil
}
