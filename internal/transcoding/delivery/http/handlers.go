package http

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clipforge/video-transcoder/internal/models"
	"github.com/clipforge/video-transcoder/internal/transcoding"
	"github.com/clipforge/video-transcoder/pkg/logger"
	"github.com/clipforge/video-transcoder/pkg/utils"
)

type transcodingHandler struct {
	transcodingUC transcoding.UseCase
	logger        logger.Logger
}

func NewTranscodingHandler(transcodingUC transcoding.UseCase, log logger.Logger) transcoding.Handler {
	return &transcodingHandler{
		transcodingUC: transcodingUC,
		logger:        log,
	}
}

func (h *transcodingHandler) CreateJob() echo.HandlerFunc {
	return func(c echo.Context) error {
		input := &models.CreateJobInput{}
		if err := c.Bind(input); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
		}
		job, err := h.transcodingUC.CreateJob(c.Request().Context(), input)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusCreated, map[string]string{
			"job_id": job.JobID.String(),
			"status": string(job.Status),
		})
	}
}

func (h *transcodingHandler) GetJob() echo.HandlerFunc {
	return func(c echo.Context) error {
		jobID, err := uuid.Parse(c.Param("job_id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid job id"})
		}
		job, err := h.transcodingUC.GetJob(c.Request().Context(), jobID)
		if err != nil {
			if errors.Is(err, transcoding.ErrJobNotFound) {
				return c.JSON(http.StatusNotFound, map[string]string{"error": "Job not found"})
			}
			h.logger.Errorf("GetJob - %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch job"})
		}
		return c.JSON(http.StatusOK, job.ToStatusResponse())
	}
}

func (h *transcodingHandler) ListJobs() echo.HandlerFunc {
	return func(c echo.Context) error {
		pagination, err := utils.GetPaginationFromCtx(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		jobs, err := h.transcodingUC.ListJobs(c.Request().Context(), pagination)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, jobs)
	}
}
