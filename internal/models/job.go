package models

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// TranscodingJob is a row in transcoding_jobs. Once a job is terminal only
// external cleanup may touch it; the worker never deletes rows.
type TranscodingJob struct {
	JobID            uuid.UUID  `json:"job_id" db:"job_id" redis:"job_id" validate:"omitempty"`
	SourceFileID     string     `json:"source_file_id" db:"source_file_id" redis:"source_file_id" validate:"required,lte=255"`
	Status           JobStatus  `json:"status" db:"status" redis:"status" validate:"omitempty"`
	Progress         int        `json:"progress" db:"progress" redis:"progress" validate:"omitempty,gte=0,lte=100"`
	InputLocation    string     `json:"input_location" db:"input_location" redis:"input_location" validate:"required,lte=1024"`
	OutputPrefix     string     `json:"output_prefix" db:"output_prefix" redis:"output_prefix" validate:"required,lte=1024"`
	ManifestLocation *string    `json:"manifest_location,omitempty" db:"manifest_location" redis:"manifest_location" validate:"omitempty"`
	ErrorDetail      *string    `json:"error_detail,omitempty" db:"error_detail" redis:"error_detail" validate:"omitempty"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at" redis:"created_at" validate:"omitempty"`
	StartedAt        *time.Time `json:"started_at,omitempty" db:"started_at" redis:"started_at" validate:"omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty" db:"completed_at" redis:"completed_at" validate:"omitempty"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at" redis:"updated_at" validate:"omitempty"`
}

type JobList struct {
	Jobs       []*TranscodingJob `json:"jobs"`
	TotalCount int               `json:"total_count"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	HasMore    bool              `json:"has_more"`
}

type CreateJobInput struct {
	SourceFileID string `json:"source_file_id" validate:"required,lte=255"`
}

// JobStatusResponse is what GET /jobs/:job_id returns to upstream systems.
type JobStatusResponse struct {
	JobID            uuid.UUID `json:"job_id"`
	Status           JobStatus `json:"status"`
	Progress         int       `json:"progress"`
	ManifestLocation *string   `json:"manifest_location,omitempty"`
	ErrorDetail      *string   `json:"error_detail,omitempty"`
}

func (j *TranscodingJob) ToStatusResponse() *JobStatusResponse {
	return &JobStatusResponse{
		JobID:            j.JobID,
		Status:           j.Status,
		Progress:         j.Progress,
		ManifestLocation: j.ManifestLocation,
		ErrorDetail:      j.ErrorDetail,
	}
}
