package utils

import (
	"math"
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	defaultSize = 10
	maxSize     = 100
)

type Pagination struct {
	Page int `json:"page"`
	Size int `json:"size"`
}

func (p *Pagination) GetPage() int {
	if p.Page < 1 {
		return 1
	}
	return p.Page
}

func (p *Pagination) GetSize() int {
	if p.Size < 1 || p.Size > maxSize {
		return defaultSize
	}
	return p.Size
}

func (p *Pagination) GetOffset() int {
	return (p.GetPage() - 1) * p.GetSize()
}

func (p *Pagination) GetLimit() int {
	return p.GetSize()
}

func GetPaginationFromCtx(c echo.Context) (*Pagination, error) {
	p := &Pagination{Page: 1, Size: defaultSize}
	if pageStr := c.QueryParam("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil {
			return nil, err
		}
		p.Page = page
	}
	if sizeStr := c.QueryParam("size"); sizeStr != "" {
		size, err := strconv.Atoi(sizeStr)
		if err != nil {
			return nil, err
		}
		p.Size = size
	}
	return p, nil
}

func GetTotalPages(totalCount, pageSize int) int {
	return int(math.Ceil(float64(totalCount) / float64(pageSize)))
}

func GetHasMore(currentPage, totalCount, pageSize int) bool {
	return currentPage*pageSize < totalCount
}
