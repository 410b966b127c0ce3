package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/clipforge/video-transcoder/internal/models"
	"github.com/clipforge/video-transcoder/internal/transcoding"
	"github.com/clipforge/video-transcoder/pkg/utils"
)

type jobRepo struct {
	db *sqlx.DB
}

func NewJobRepo(db *sqlx.DB) transcoding.Repository {
	return &jobRepo{
		db: db,
	}
}

func (r *jobRepo) CreateJob(ctx context.Context, job *models.TranscodingJob) (*models.TranscodingJob, error) {
	created := &models.TranscodingJob{}
	if err := r.db.QueryRowxContext(
		ctx,
		createJobQuery,
		job.JobID,
		job.SourceFileID,
		models.JobStatusPending,
		job.InputLocation,
		job.OutputPrefix,
	).StructScan(created); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return created, nil
}

func (r *jobRepo) ClaimNext(ctx context.Context) (*models.TranscodingJob, error) {
	job := &models.TranscodingJob{}
	if err := r.db.QueryRowxContext(ctx, claimNextJobQuery).StructScan(job); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to claim job: %w", err)
	}
	return job, nil
}

func (r *jobRepo) UpdateProgress(ctx context.Context, jobID uuid.UUID, progress int) error {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	if _, err := r.db.ExecContext(ctx, updateProgressQuery, jobID, progress); err != nil {
		return fmt.Errorf("failed to update progress: %w", err)
	}
	// Zero rows affected means the job left processing underneath us
	// (reaped or finalized); the write is dropped on purpose.
	return nil
}

func (r *jobRepo) MarkCompleted(ctx context.Context, jobID uuid.UUID, manifestLocation string) error {
	if _, err := r.db.ExecContext(ctx, markCompletedQuery, jobID, manifestLocation); err != nil {
		return fmt.Errorf("failed to mark job completed: %w", err)
	}
	return nil
}

func (r *jobRepo) MarkFailed(ctx context.Context, jobID uuid.UUID, errorDetail string) error {
	if _, err := r.db.ExecContext(ctx, markFailedQuery, jobID, errorDetail); err != nil {
		return fmt.Errorf("failed to mark job failed: %w", err)
	}
	return nil
}

func (r *jobRepo) GetJobByID(ctx context.Context, jobID uuid.UUID) (*models.TranscodingJob, error) {
	job := &models.TranscodingJob{}
	if err := r.db.QueryRowxContext(ctx, getJobByIDQuery, jobID).StructScan(job); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transcoding.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job by id: %w", err)
	}
	return job, nil
}

func (r *jobRepo) GetJobs(ctx context.Context, pq *utils.Pagination) (*models.JobList, error) {
	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, getTotalJobsQuery); err != nil {
		return nil, fmt.Errorf("failed to get total jobs count: %w", err)
	}
	if totalCount == 0 {
		return &models.JobList{
			Jobs:       make([]*models.TranscodingJob, 0),
			TotalCount: 0,
			Page:       pq.GetPage(),
			PageSize:   pq.GetSize(),
			HasMore:    false,
		}, nil
	}
	rows, err := r.db.QueryxContext(ctx, getJobsQuery, pq.GetOffset(), pq.GetLimit())
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()
	jobs := make([]*models.TranscodingJob, 0, pq.GetSize())
	for rows.Next() {
		var job models.TranscodingJob
		if err = rows.StructScan(&job); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, &job)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan jobs: %w", err)
	}
	return &models.JobList{
		Jobs:       jobs,
		TotalCount: totalCount,
		Page:       pq.GetPage(),
		PageSize:   pq.GetSize(),
		HasMore:    utils.GetHasMore(pq.GetPage(), totalCount, pq.GetSize()),
	}, nil
}

func (r *jobRepo) ReapStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	res, err := r.db.ExecContext(ctx, reapStaleJobsQuery, olderThan.Seconds())
	if err != nil {
		return 0, fmt.Errorf("failed to reap stale jobs: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read reaped rows count: %w", err)
	}
	return count, nil
}
