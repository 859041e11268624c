package service

import (
	"context"
	"fmt"
	"meteoapi/internal/entity/dto"
	"meteoapi/internal/sensor"
	"sort"
	"strings"
	"time"
)

// Ingestor stores pushed readings and registers parameters the station had
// not reported before.
type Ingestor struct {
	recorder sensor.Recorder
	stations *StationService
}

func NewIngestor(recorder sensor.Recorder, stations *StationService) *Ingestor {
	return &Ingestor{recorder: recorder, stations: stations}
}

func (i *Ingestor) Ingest(ctx context.Context, req dto.ReadingIngestRequest) (*dto.ReadingIngestResponse, error) {
	if i.recorder == nil {
		return nil, fmt.Errorf("%w: sensor store is read-only", ErrExternalSourceUnavailable)
	}
	if len(req.Values) == 0 {
		return nil, fmt.Errorf("%w: values are required", ErrInvalidArgument)
	}
	station, err := i.stations.GetStation(ctx, req.StationNumber)
	if err != nil {
		return nil, err
	}

	observedAt := time.Now().UTC()
	if req.ObservedAt != nil {
		observedAt = time.Unix(*req.ObservedAt, 0).UTC()
	}

	values := make(map[string]float64, len(req.Values))
	for code, value := range req.Values {
		code = strings.TrimSpace(code)
		if code == "" {
			return nil, fmt.Errorf("%w: empty parameter code", ErrInvalidArgument)
		}
		values[code] = value
	}
	codes := make([]string, 0, len(values))
	for code := range values {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	measurements := make([]sensor.Measurement, len(codes))
	// 哨兵值不算作站点上报了该参数
	reported := make([]string, 0, len(codes))
	for idx, code := range codes {
		measurements[idx] = sensor.Measurement{
			StationNumber: station.StationNumber,
			ParameterCode: code,
			ObservedAt:    observedAt,
			Value:         values[code],
		}
		if values[code] > sensor.MinValidValue {
			reported = append(reported, code)
		}
	}
	if err := i.recorder.Record(ctx, measurements); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalSourceUnavailable, err)
	}

	added, _, err := i.stations.RegisterParameters(ctx, station, reported)
	if err != nil {
		return nil, err
	}
	if added == nil {
		added = []string{}
	}
	return &dto.ReadingIngestResponse{Stored: len(measurements), NewParameters: added}, nil
}
