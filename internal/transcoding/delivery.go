package transcoding

import "github.com/labstack/echo/v4"

type Handler interface {
	CreateJob() echo.HandlerFunc
	GetJob() echo.HandlerFunc
	ListJobs() echo.HandlerFunc
}
