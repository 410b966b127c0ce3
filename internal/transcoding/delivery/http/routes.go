package http

import (
	"github.com/labstack/echo/v4"

	"github.com/clipforge/video-transcoder/internal/transcoding"
)

func MapTranscodingRoutes(jobGroup *echo.Group, h transcoding.Handler) {
	jobGroup.POST("", h.CreateJob())
	jobGroup.GET("", h.ListJobs())
	jobGroup.GET("/:job_id", h.GetJob())
}
