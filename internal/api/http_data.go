package api

import (
	"context"
	"meteoapi/internal/entity/dto"
	"meteoapi/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// 聚合查询会并发访问传感器库，超时放宽
const dataRequestTimeout = 30 * time.Second

func (h *HTTPHandler) LatestData(c *gin.Context) {
	user := CurrentUser(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), dataRequestTimeout)
	defer cancel()

	views, err := h.resolver.GetLatestForUser(ctx, user.ID)
	if err != nil {
		ServiceError(c, err, "failed to load latest data")
		return
	}
	c.JSON(http.StatusOK, dto.LatestDataResponse{
		Stations:    views,
		GeneratedAt: time.Now().UTC(),
	})
}

func (h *HTTPHandler) StationLatestData(c *gin.Context) {
	user := CurrentUser(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), dataRequestTimeout)
	defer cancel()

	view, err := h.resolver.GetLatestForStation(ctx, user.ID, stationParam(c))
	if err != nil {
		ServiceError(c, err, "failed to load latest data")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *HTTPHandler) HistoryData(c *gin.Context) {
	user := CurrentUser(c)

	var query dto.HistoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		BadRequest(c, ErrCodeInvalidRequest, "invalid query parameters")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dataRequestTimeout)
	defer cancel()

	resp, err := h.resolver.GetHistory(ctx, user.ID, stationParam(c), codeParam(c), service.HistoryRangeFromQuery(query))
	if err != nil {
		ServiceError(c, err, "failed to load history")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *HTTPHandler) ExportHistory(c *gin.Context) {
	user := CurrentUser(c)

	var query dto.HistoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		BadRequest(c, ErrCodeInvalidRequest, "invalid query parameters")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dataRequestTimeout)
	defer cancel()

	resp, err := h.exporter.Export(ctx, user.ID, stationParam(c), codeParam(c), service.HistoryRangeFromQuery(query))
	if err != nil {
		ServiceError(c, err, "failed to export history")
		return
	}
	c.JSON(http.StatusCreated, resp)
}
