package api

import (
	"context"
	"meteoapi/internal/entity/dto"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

func (h *HTTPHandler) ListMyStations(c *gin.Context) {
	user := CurrentUser(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.stations.ListUserStations(ctx, user.ID)
	if err != nil {
		ServiceError(c, err, "failed to load stations")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *HTTPHandler) AddMyStation(c *gin.Context) {
	user := CurrentUser(c)

	var req dto.UserStationAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	// 首次关联时可能需要从传感器库注册站点及其参数
	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	item, err := h.stations.AddUserStation(ctx, user.ID, req)
	if err != nil {
		ServiceError(c, err, "failed to add station")
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *HTTPHandler) UpdateMyStation(c *gin.Context) {
	user := CurrentUser(c)

	var req dto.UserStationUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	item, err := h.stations.UpdateUserStation(ctx, user.ID, stationParam(c), req)
	if err != nil {
		ServiceError(c, err, "failed to update station")
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *HTTPHandler) RemoveMyStation(c *gin.Context) {
	user := CurrentUser(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.stations.RemoveUserStation(ctx, user.ID, stationParam(c)); err != nil {
		ServiceError(c, err, "failed to remove station")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HTTPHandler) ListStationParameterVisibility(c *gin.Context) {
	user := CurrentUser(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.resolver.ListParametersWithVisibility(ctx, user.ID, stationParam(c))
	if err != nil {
		ServiceError(c, err, "failed to load parameters")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *HTTPHandler) SetParameterVisibility(c *gin.Context) {
	user := CurrentUser(c)

	var req dto.VisibilityUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		MissingField(c, "is_visible")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	item, err := h.resolver.SetVisibility(ctx, user.ID, stationParam(c), codeParam(c), *req.IsVisible)
	if err != nil {
		ServiceError(c, err, "failed to update parameter visibility")
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *HTTPHandler) SetParameterVisibilityBulk(c *gin.Context) {
	user := CurrentUser(c)

	var req dto.BulkVisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.resolver.SetVisibilityBulk(ctx, user.ID, stationParam(c), req.Parameters)
	if err != nil {
		ServiceError(c, err, "failed to update parameter visibility")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func stationParam(c *gin.Context) string {
	return strings.TrimSpace(c.Param("number"))
}

func codeParam(c *gin.Context) string {
	return strings.TrimSpace(c.Param("code"))
}
