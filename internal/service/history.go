package service

import (
	"context"
	"fmt"
	"meteoapi/internal/entity/db"
	"meteoapi/internal/entity/dto"
	"meteoapi/internal/metrics"
	"meteoapi/internal/sensor"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// HistoryRange bounds a history request. Zero Limit means the configured default.
type HistoryRange struct {
	Start *time.Time
	End   *time.Time
	Limit int
}

// HistoryRangeFromQuery converts unix-second query bounds.
func HistoryRangeFromQuery(q dto.HistoryQuery) HistoryRange {
	rng := HistoryRange{Limit: q.Limit}
	if q.StartTime != nil {
		start := time.Unix(*q.StartTime, 0).UTC()
		rng.Start = &start
	}
	if q.EndTime != nil {
		end := time.Unix(*q.EndTime, 0).UTC()
		rng.End = &end
	}
	return rng
}

func (r *Resolver) normaliseRange(rng HistoryRange) (sensor.Range, error) {
	if rng.Start != nil && rng.End != nil && rng.Start.After(*rng.End) {
		return sensor.Range{}, fmt.Errorf("%w: start_time is after end_time", ErrInvalidArgument)
	}
	limit := rng.Limit
	switch {
	case limit < 0:
		return sensor.Range{}, fmt.Errorf("%w: limit must be positive", ErrInvalidArgument)
	case limit == 0:
		limit = r.opts.HistoryDefaultLimit
	case limit > r.opts.HistoryMaxLimit:
		return sensor.Range{}, fmt.Errorf("%w: limit exceeds %d", ErrInvalidArgument, r.opts.HistoryMaxLimit)
	}
	return sensor.Range{Start: rng.Start, End: rng.End, Limit: limit}, nil
}

// requireVisibleParameter resolves the ownership chain down to one visible
// parameter: unknown link or code is ErrNotFound, a hidden code ErrForbidden.
func (r *Resolver) requireVisibleParameter(ctx context.Context, userID uint, stationNumber, code string) (*db.UserStation, *db.UserStationParameterDetail, error) {
	link, err := r.access.RequireStation(ctx, userID, stationNumber)
	if err != nil {
		return nil, nil, err
	}
	row, err := r.repo.GetUserStationParameter(ctx, link.ID, code)
	if err != nil {
		return nil, nil, translateStoreError(err, "parameter "+code)
	}
	if !row.IsVisible {
		return nil, nil, fmt.Errorf("%w: parameter %s is hidden", ErrForbidden, code)
	}
	return link, row, nil
}

// GetHistory returns the parameter's readings newest first.
func (r *Resolver) GetHistory(ctx context.Context, userID uint, stationNumber, code string, rng HistoryRange) (*dto.HistoryResponse, error) {
	code = strings.TrimSpace(code)
	link, row, err := r.requireVisibleParameter(ctx, userID, stationNumber, code)
	if err != nil {
		return nil, err
	}
	srcRange, err := r.normaliseRange(rng)
	if err != nil {
		return nil, err
	}

	number := link.Station.StationNumber
	readings, err := r.source.History(ctx, number, code, srcRange)
	if err != nil {
		metrics.SensorLookupsTotal.WithLabelValues("history", metrics.OutcomeError).Inc()
		logrus.WithError(err).WithFields(logrus.Fields{
			"station_number": number,
			"parameter":      code,
		}).Error("history lookup failed")
		return nil, fmt.Errorf("%w: %v", ErrExternalSourceUnavailable, err)
	}

	points := make([]dto.HistoryPoint, 0, len(readings))
	for _, reading := range readings {
		if reading.Value <= sensor.MinValidValue {
			continue
		}
		points = append(points, dto.HistoryPoint{Time: reading.ObservedAt, Value: reading.Value})
	}
	if len(points) == 0 {
		metrics.SensorLookupsTotal.WithLabelValues("history", metrics.OutcomeEmpty).Inc()
	} else {
		metrics.SensorLookupsTotal.WithLabelValues("history", metrics.OutcomeOK).Inc()
	}

	return &dto.HistoryResponse{
		StationNumber: number,
		Parameter: dto.ParameterItem{
			Code:        row.ParameterCode,
			Name:        row.Name,
			Unit:        row.Unit,
			Description: row.Description,
			Category:    row.Category,
		},
		Data:  points,
		Count: len(points),
	}, nil
}
