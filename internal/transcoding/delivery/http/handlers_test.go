package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipforge/video-transcoder/internal/config"
	"github.com/clipforge/video-transcoder/internal/models"
	"github.com/clipforge/video-transcoder/internal/transcoding"
	"github.com/clipforge/video-transcoder/pkg/logger"
	"github.com/clipforge/video-transcoder/pkg/utils"
)

type fakeUseCase struct {
	createFn func(ctx context.Context, input *models.CreateJobInput) (*models.TranscodingJob, error)
	getFn    func(ctx context.Context, jobID uuid.UUID) (*models.TranscodingJob, error)
	listFn   func(ctx context.Context, pq *utils.Pagination) (*models.JobList, error)
}

func (f *fakeUseCase) CreateJob(ctx context.Context, input *models.CreateJobInput) (*models.TranscodingJob, error) {
	return f.createFn(ctx, input)
}

func (f *fakeUseCase) GetJob(ctx context.Context, jobID uuid.UUID) (*models.TranscodingJob, error) {
	return f.getFn(ctx, jobID)
}

func (f *fakeUseCase) ListJobs(ctx context.Context, pq *utils.Pagination) (*models.JobList, error) {
	return f.listFn(ctx, pq)
}

func newTestLogger(t *testing.T) logger.Logger {
	t.Helper()
	cfg := &config.Config{Logger: config.Logger{Development: true, Encoding: "console", Level: "error"}}
	apiLogger := logger.NewApiLogger(cfg)
	apiLogger.InitLogger()
	return apiLogger
}

func TestTranscodingHandler_CreateJob(t *testing.T) {
	jobID := uuid.New()
	uc := &fakeUseCase{
		createFn: func(_ context.Context, input *models.CreateJobInput) (*models.TranscodingJob, error) {
			assert.Equal(t, "file-42", input.SourceFileID)
			return &models.TranscodingJob{JobID: jobID, SourceFileID: input.SourceFileID, Status: models.JobStatusPending}, nil
		},
	}
	handler := NewTranscodingHandler(uc, newTestLogger(t))

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", strings.NewReader(`{"source_file_id":"file-42"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, handler.CreateJob()(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, jobID.String(), body["job_id"])
	assert.Equal(t, "pending", body["status"])
}

func TestTranscodingHandler_CreateJob_InvalidInput(t *testing.T) {
	uc := &fakeUseCase{
		createFn: func(context.Context, *models.CreateJobInput) (*models.TranscodingJob, error) {
			return nil, assert.AnError
		},
	}
	handler := NewTranscodingHandler(uc, newTestLogger(t))

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", strings.NewReader(`{"source_file_id":""}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, handler.CreateJob()(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTranscodingHandler_GetJob(t *testing.T) {
	jobID := uuid.New()
	manifest := "https://cdn.example.com/outputs/" + jobID.String() + "/master.m3u8"
	uc := &fakeUseCase{
		getFn: func(_ context.Context, id uuid.UUID) (*models.TranscodingJob, error) {
			assert.Equal(t, jobID, id)
			return &models.TranscodingJob{
				JobID:            jobID,
				SourceFileID:     "file-1",
				Status:           models.JobStatusCompleted,
				Progress:         100,
				ManifestLocation: &manifest,
			}, nil
		},
	}
	handler := NewTranscodingHandler(uc, newTestLogger(t))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("job_id")
	c.SetParamValues(jobID.String())

	require.NoError(t, handler.GetJob()(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body models.JobStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, jobID, body.JobID)
	assert.Equal(t, models.JobStatusCompleted, body.Status)
	assert.Equal(t, 100, body.Progress)
	require.NotNil(t, body.ManifestLocation)
	assert.Equal(t, manifest, *body.ManifestLocation)
}

func TestTranscodingHandler_GetJob_NotFound(t *testing.T) {
	uc := &fakeUseCase{
		getFn: func(context.Context, uuid.UUID) (*models.TranscodingJob, error) {
			return nil, transcoding.ErrJobNotFound
		},
	}
	handler := NewTranscodingHandler(uc, newTestLogger(t))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("job_id")
	c.SetParamValues(uuid.New().String())

	require.NoError(t, handler.GetJob()(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTranscodingHandler_GetJob_InvalidID(t *testing.T) {
	handler := NewTranscodingHandler(&fakeUseCase{}, newTestLogger(t))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("job_id")
	c.SetParamValues("not-a-uuid")

	require.NoError(t, handler.GetJob()(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTranscodingHandler_ListJobs(t *testing.T) {
	uc := &fakeUseCase{
		listFn: func(_ context.Context, pq *utils.Pagination) (*models.JobList, error) {
			return &models.JobList{
				Jobs:       []*models.TranscodingJob{{JobID: uuid.New(), Status: models.JobStatusPending}},
				TotalCount: 1,
				Page:       pq.GetPage(),
				PageSize:   pq.GetSize(),
			}, nil
		},
	}
	handler := NewTranscodingHandler(uc, newTestLogger(t))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?page=1&size=10", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, handler.ListJobs()(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body models.JobList
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.TotalCount)
	assert.Len(t, body.Jobs, 1)
}
