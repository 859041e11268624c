// Package sensor reads telemetry from the sensor data store.
package sensor

import (
	"context"
	"time"
)

// MinValidValue is the sentinel threshold: values at or below it mean "no data".
const MinValidValue = -100.0

// Reading is one observation of a parameter.
type Reading struct {
	ObservedAt time.Time `json:"observed_at"`
	Value      float64   `json:"value"`
}

// Range bounds a history query. Nil bounds are open.
type Range struct {
	Start *time.Time
	End   *time.Time
	Limit int
}

// Source is the read side of the sensor data store. Calls may be slow or fail.
type Source interface {
	// Latest returns the newest valid reading, or nil when there is none.
	Latest(ctx context.Context, stationNumber, parameterCode string) (*Reading, error)
	// History returns valid readings newest first.
	History(ctx context.Context, stationNumber, parameterCode string, rng Range) ([]Reading, error)
	// Parameters lists the codes the station has reported.
	Parameters(ctx context.Context, stationNumber string) ([]string, error)
	HasStation(ctx context.Context, stationNumber string) (bool, error)
}

// Measurement is a reading to be stored.
type Measurement struct {
	StationNumber string
	ParameterCode string
	ObservedAt    time.Time
	Value         float64
}

// Recorder is the write side used by ingestion.
type Recorder interface {
	Record(ctx context.Context, measurements []Measurement) error
}

// Store is a Source that also accepts new readings.
type Store interface {
	Source
	Recorder
}
