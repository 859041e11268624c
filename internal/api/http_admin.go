package api

import (
	"context"
	"meteoapi/internal/entity/converter"
	"meteoapi/internal/entity/dto"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func (h *HTTPHandler) Dashboard(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	stats, err := h.admin.Dashboard(ctx)
	if err != nil {
		ServiceError(c, err, "failed to load dashboard")
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *HTTPHandler) AdminListStations(c *gin.Context) {
	var query dto.StationQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		BadRequest(c, ErrCodeInvalidRequest, "invalid query parameters")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.stations.ListStations(ctx, &query)
	if err != nil {
		ServiceError(c, err, "failed to load stations")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *HTTPHandler) AdminGetStation(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	station, err := h.stations.GetStation(ctx, stationParam(c))
	if err != nil {
		ServiceError(c, err, "failed to load station")
		return
	}
	c.JSON(http.StatusOK, converter.StationToSummary(station))
}

func (h *HTTPHandler) AdminCreateStation(c *gin.Context) {
	var req dto.StationCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	summary, err := h.stations.CreateStation(ctx, req)
	if err != nil {
		ServiceError(c, err, "failed to create station")
		return
	}
	c.JSON(http.StatusCreated, summary)
}

func (h *HTTPHandler) AdminUpdateStation(c *gin.Context) {
	var req dto.StationUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	summary, err := h.stations.UpdateStation(ctx, stationParam(c), req)
	if err != nil {
		ServiceError(c, err, "failed to update station")
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *HTTPHandler) AdminDeleteStation(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.stations.DeleteStation(ctx, stationParam(c)); err != nil {
		ServiceError(c, err, "failed to delete station")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HTTPHandler) AdminListStationParameters(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.stations.ListStationParameters(ctx, stationParam(c))
	if err != nil {
		ServiceError(c, err, "failed to load station parameters")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *HTTPHandler) AdminAddStationParameter(c *gin.Context) {
	var req dto.StationParameterAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		MissingField(c, "code")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	resp, err := h.stations.AddStationParameter(ctx, stationParam(c), req.Code)
	if err != nil {
		ServiceError(c, err, "failed to add station parameter")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *HTTPHandler) AdminRemoveStationParameter(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.stations.RemoveStationParameter(ctx, stationParam(c), codeParam(c)); err != nil {
		ServiceError(c, err, "failed to remove station parameter")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HTTPHandler) AdminListParameters(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.stations.ListParameters(ctx)
	if err != nil {
		ServiceError(c, err, "failed to load parameters")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *HTTPHandler) AdminUpdateParameter(c *gin.Context) {
	var req dto.ParameterUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	item, err := h.stations.UpdateParameter(ctx, codeParam(c), req)
	if err != nil {
		ServiceError(c, err, "failed to update parameter")
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *HTTPHandler) AdminIngestReadings(c *gin.Context) {
	var req dto.ReadingIngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	resp, err := h.ingestor.Ingest(ctx, req)
	if err != nil {
		ServiceError(c, err, "failed to ingest readings")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// AdminRunSync 立即执行一次参数发现
func (h *HTTPHandler) AdminRunSync(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Minute)
	defer cancel()

	report, err := h.discovery.RunOnce(ctx)
	if err != nil {
		ServiceError(c, err, "failed to run parameter discovery")
		return
	}
	logrus.WithField("user_id", CurrentUser(c).ID).Info("parameter discovery triggered manually")
	c.JSON(http.StatusOK, report)
}
