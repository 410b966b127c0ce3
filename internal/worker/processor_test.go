package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipforge/video-transcoder/internal/config"
	"github.com/clipforge/video-transcoder/internal/models"
	"github.com/clipforge/video-transcoder/internal/transcoding"
	"github.com/clipforge/video-transcoder/pkg/logger"
	"github.com/clipforge/video-transcoder/pkg/utils"
)

type recordingJobRepo struct {
	mu            sync.Mutex
	progress      []int
	completedURL  *string
	failureDetail *string
}

func (r *recordingJobRepo) CreateJob(_ context.Context, job *models.TranscodingJob) (*models.TranscodingJob, error) {
	return job, nil
}

func (r *recordingJobRepo) ClaimNext(context.Context) (*models.TranscodingJob, error) {
	return nil, nil
}

func (r *recordingJobRepo) UpdateProgress(_ context.Context, _ uuid.UUID, progress int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = append(r.progress, progress)
	return nil
}

func (r *recordingJobRepo) MarkCompleted(_ context.Context, _ uuid.UUID, manifestLocation string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completedURL = &manifestLocation
	return nil
}

func (r *recordingJobRepo) MarkFailed(_ context.Context, _ uuid.UUID, errorDetail string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failureDetail = &errorDetail
	return nil
}

func (r *recordingJobRepo) GetJobByID(context.Context, uuid.UUID) (*models.TranscodingJob, error) {
	return nil, transcoding.ErrJobNotFound
}

func (r *recordingJobRepo) GetJobs(context.Context, *utils.Pagination) (*models.JobList, error) {
	return nil, nil
}

func (r *recordingJobRepo) ReapStale(context.Context, time.Duration) (int64, error) {
	return 0, nil
}

type fakeStorage struct {
	fetchErr    error
	fetchFails  int
	uploadErr   error
	uploadCalls int
	fetchCalls  int
}

func (s *fakeStorage) FetchToFile(_ context.Context, _, _ string, destDir string) (string, error) {
	s.fetchCalls++
	if s.fetchErr != nil && (s.fetchFails == 0 || s.fetchCalls <= s.fetchFails) {
		return "", s.fetchErr
	}
	path := filepath.Join(destDir, "source.mp4")
	if err := os.WriteFile(path, []byte("fake video"), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (s *fakeStorage) UploadDir(_ context.Context, localDir, _, _ string) (int, error) {
	s.uploadCalls++
	if s.uploadErr != nil {
		return 0, s.uploadErr
	}
	count := 0
	filepath.Walk(localDir, func(_ string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			count++
		}
		return nil
	})
	return count, nil
}

func (s *fakeStorage) RemoveObject(context.Context, string, string) error { return nil }

func (s *fakeStorage) PublicURL(bucket, key string) string {
	return fmt.Sprintf("https://cdn.example.com/%s/%s", bucket, key)
}

type fakeEncoder struct {
	err            error
	failedVariants []string
	seenOutputDir  string
}

func (e *fakeEncoder) Transcode(_ context.Context, _, outputDir string, variants []models.Variant, onProgress ProgressFunc) (*EncodeResult, error) {
	e.seenOutputDir = outputDir
	if e.err != nil {
		return nil, e.err
	}
	if onProgress != nil {
		onProgress(50)
		onProgress(100)
	}
	kept := make([]models.Variant, 0, len(variants))
	for _, v := range variants {
		skipped := false
		for _, name := range e.failedVariants {
			if v.Name == name {
				skipped = true
				break
			}
		}
		if !skipped {
			kept = append(kept, v)
		}
	}
	manifestPath, err := WriteMasterPlaylist(outputDir, kept)
	if err != nil {
		return nil, err
	}
	return &EncodeResult{ManifestPath: manifestPath, Variants: kept, FailedVariants: e.failedVariants}, nil
}

func newWorkerTestLogger(t *testing.T) logger.Logger {
	t.Helper()
	cfg := &config.Config{Logger: config.Logger{Development: true, Encoding: "console", Level: "error"}}
	apiLogger := logger.NewApiLogger(cfg)
	apiLogger.InitLogger()
	return apiLogger
}

func workerTestConfig() *config.Config {
	return &config.Config{
		S3: config.S3Config{
			InputBucket:  "uploads",
			OutputBucket: "outputs",
		},
		Worker: config.WorkerConfig{
			MaxRetries: 2,
			Variants: []config.VariantConfig{
				{Name: "720p", Width: 1280, Height: 720, Bitrate: 2800},
				{Name: "480p", Width: 854, Height: 480, Bitrate: 1400},
			},
		},
	}
}

func testJob() *models.TranscodingJob {
	jobID := uuid.New()
	return &models.TranscodingJob{
		JobID:         jobID,
		SourceFileID:  "file-1",
		Status:        models.JobStatusProcessing,
		InputLocation: "uploads/file-1",
		OutputPrefix:  "outputs/" + jobID.String(),
	}
}

func TestProcessor_Process_Success(t *testing.T) {
	jobRepo := &recordingJobRepo{}
	storage := &fakeStorage{}
	encoder := &fakeEncoder{}
	p := NewProcessor(workerTestConfig(), jobRepo, storage, encoder, newWorkerTestLogger(t))

	job := testJob()
	require.NoError(t, p.Process(context.Background(), job))

	require.NotNil(t, jobRepo.completedURL)
	assert.Equal(t, "https://cdn.example.com/outputs/"+job.OutputPrefix+"/master.m3u8", *jobRepo.completedURL)
	assert.Nil(t, jobRepo.failureDetail)

	require.NotEmpty(t, jobRepo.progress)
	assert.Equal(t, 10, jobRepo.progress[0])
	for i := 1; i < len(jobRepo.progress); i++ {
		assert.GreaterOrEqual(t, jobRepo.progress[i], jobRepo.progress[i-1])
		assert.LessOrEqual(t, jobRepo.progress[i], 99)
	}

	// Temp workspace is removed once the job reaches a terminal state.
	_, err := os.Stat(encoder.seenOutputDir)
	assert.True(t, os.IsNotExist(err))
}

func TestProcessor_Process_SourceUnavailableFailsWithoutRetry(t *testing.T) {
	jobRepo := &recordingJobRepo{}
	storage := &fakeStorage{fetchErr: errors.Wrap(transcoding.ErrSourceUnavailable, "uploads/file-1")}
	p := NewProcessor(workerTestConfig(), jobRepo, storage, &fakeEncoder{}, newWorkerTestLogger(t))

	err := p.Process(context.Background(), testJob())
	assert.ErrorIs(t, err, transcoding.ErrSourceUnavailable)
	assert.Equal(t, 1, storage.fetchCalls)
	require.NotNil(t, jobRepo.failureDetail)
	assert.Equal(t, "source file unavailable", *jobRepo.failureDetail)
}

func TestProcessor_Process_TransientFetchIsRetried(t *testing.T) {
	jobRepo := &recordingJobRepo{}
	storage := &fakeStorage{fetchErr: fmt.Errorf("connection reset"), fetchFails: 1}
	p := NewProcessor(workerTestConfig(), jobRepo, storage, &fakeEncoder{}, newWorkerTestLogger(t))

	require.NoError(t, p.Process(context.Background(), testJob()))
	assert.Equal(t, 2, storage.fetchCalls)
	assert.NotNil(t, jobRepo.completedURL)
}

func TestProcessor_Process_TransientFetchExhaustsRetries(t *testing.T) {
	jobRepo := &recordingJobRepo{}
	storage := &fakeStorage{fetchErr: fmt.Errorf("connection reset")}
	p := NewProcessor(workerTestConfig(), jobRepo, storage, &fakeEncoder{}, newWorkerTestLogger(t))

	err := p.Process(context.Background(), testJob())
	require.Error(t, err)
	assert.Equal(t, 2, storage.fetchCalls)
	require.NotNil(t, jobRepo.failureDetail)
	assert.Contains(t, *jobRepo.failureDetail, "transcoding failed")
}

func TestProcessor_Process_BadInputFails(t *testing.T) {
	jobRepo := &recordingJobRepo{}
	encoder := &fakeEncoder{err: errors.Wrap(transcoding.ErrBadInput, "ffprobe")}
	p := NewProcessor(workerTestConfig(), jobRepo, &fakeStorage{}, encoder, newWorkerTestLogger(t))

	err := p.Process(context.Background(), testJob())
	assert.ErrorIs(t, err, transcoding.ErrBadInput)
	require.NotNil(t, jobRepo.failureDetail)
	assert.Equal(t, "source file is not valid media", *jobRepo.failureDetail)
}

func TestProcessor_Process_AllVariantsFailedFails(t *testing.T) {
	jobRepo := &recordingJobRepo{}
	encoder := &fakeEncoder{err: transcoding.ErrAllVariantsFailed}
	p := NewProcessor(workerTestConfig(), jobRepo, &fakeStorage{}, encoder, newWorkerTestLogger(t))

	err := p.Process(context.Background(), testJob())
	assert.ErrorIs(t, err, transcoding.ErrAllVariantsFailed)
	require.NotNil(t, jobRepo.failureDetail)
	assert.Equal(t, "encoding failed for all variants", *jobRepo.failureDetail)
}

func TestProcessor_Process_DegradedVariantsStillComplete(t *testing.T) {
	jobRepo := &recordingJobRepo{}
	encoder := &fakeEncoder{failedVariants: []string{"720p"}}
	p := NewProcessor(workerTestConfig(), jobRepo, &fakeStorage{}, encoder, newWorkerTestLogger(t))

	require.NoError(t, p.Process(context.Background(), testJob()))
	assert.NotNil(t, jobRepo.completedURL)
	assert.Nil(t, jobRepo.failureDetail)
}

func TestProcessor_Process_UploadFailureFailsJob(t *testing.T) {
	jobRepo := &recordingJobRepo{}
	storage := &fakeStorage{uploadErr: fmt.Errorf("service unavailable")}
	p := NewProcessor(workerTestConfig(), jobRepo, storage, &fakeEncoder{}, newWorkerTestLogger(t))

	err := p.Process(context.Background(), testJob())
	require.Error(t, err)
	assert.Equal(t, 2, storage.uploadCalls)
	require.NotNil(t, jobRepo.failureDetail)
	assert.Nil(t, jobRepo.completedURL)
}
