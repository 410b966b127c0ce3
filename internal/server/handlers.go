package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	transcodingHttp "github.com/clipforge/video-transcoder/internal/transcoding/delivery/http"
	transcodingRepository "github.com/clipforge/video-transcoder/internal/transcoding/repository"
	transcodingUsecase "github.com/clipforge/video-transcoder/internal/transcoding/usecase"
	"github.com/clipforge/video-transcoder/pkg/utils"
)

func (s *Server) MapHandlers(e *echo.Echo) error {
	jobRepo := transcodingRepository.NewJobRepo(s.db)
	cacheRepo := transcodingRepository.NewJobCacheRepo(s.redisClient)

	transcodingUC := transcodingUsecase.NewTranscodingUseCase(s.cfg, jobRepo, cacheRepo, s.logger)
	transcodingHandlers := transcodingHttp.NewTranscodingHandler(transcodingUC, s.logger)

	v1 := e.Group("/api/v1")
	health := v1.Group("/health")
	jobGroup := v1.Group("/jobs")

	transcodingHttp.MapTranscodingRoutes(jobGroup, transcodingHandlers)
	health.GET("", func(c echo.Context) error {
		s.logger.Infof("Health check RequestID: %s", utils.GetRequestID(c))
		return c.JSON(http.StatusOK, map[string]string{"status": "OK"})
	})
	return nil
}
