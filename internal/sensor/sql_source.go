package sensor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReadingRecord is a row of the sensor_readings table.
type ReadingRecord struct {
	ID            uint64    `gorm:"primarykey"`
	StationNumber string    `gorm:"column:station_number;type:varchar(64);not null;uniqueIndex:idx_sensor_reading,priority:1"`
	ParameterCode string    `gorm:"column:parameter_code;type:varchar(32);not null;uniqueIndex:idx_sensor_reading,priority:2"`
	ObservedAt    time.Time `gorm:"column:observed_at;not null;uniqueIndex:idx_sensor_reading,priority:3"`
	Value         float64   `gorm:"column:value;not null"`
}

func (ReadingRecord) TableName() string {
	return "sensor_readings"
}

// AutoMigrate creates the sensor_readings table.
func AutoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(&ReadingRecord{})
}

// SQLSource reads and writes readings through GORM.
type SQLSource struct {
	db *gorm.DB
}

func NewSQLSource(db *gorm.DB) *SQLSource {
	return &SQLSource{db: db}
}

func (s *SQLSource) readings(ctx context.Context, stationNumber, parameterCode string) *gorm.DB {
	return s.db.WithContext(ctx).
		Model(&ReadingRecord{}).
		Where("station_number = ? AND parameter_code = ? AND value > ?", stationNumber, parameterCode, MinValidValue)
}

func (s *SQLSource) Latest(ctx context.Context, stationNumber, parameterCode string) (*Reading, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sensor source not initialised")
	}
	var rec ReadingRecord
	err := s.readings(ctx, stationNumber, parameterCode).
		Order("observed_at DESC").
		Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &Reading{ObservedAt: rec.ObservedAt.UTC(), Value: rec.Value}, nil
}

func (s *SQLSource) History(ctx context.Context, stationNumber, parameterCode string, rng Range) ([]Reading, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sensor source not initialised")
	}
	query := s.readings(ctx, stationNumber, parameterCode)
	if rng.Start != nil {
		query = query.Where("observed_at >= ?", rng.Start.UTC())
	}
	if rng.End != nil {
		query = query.Where("observed_at <= ?", rng.End.UTC())
	}
	if rng.Limit > 0 {
		query = query.Limit(rng.Limit)
	}

	var records []ReadingRecord
	if err := query.Order("observed_at DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	out := make([]Reading, len(records))
	for i, rec := range records {
		out[i] = Reading{ObservedAt: rec.ObservedAt.UTC(), Value: rec.Value}
	}
	return out, nil
}

func (s *SQLSource) Parameters(ctx context.Context, stationNumber string) ([]string, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sensor source not initialised")
	}
	var codes []string
	err := s.db.WithContext(ctx).
		Model(&ReadingRecord{}).
		Where("station_number = ? AND value > ?", stationNumber, MinValidValue).
		Distinct("parameter_code").
		Order("parameter_code ASC").
		Pluck("parameter_code", &codes).Error
	if err != nil {
		return nil, err
	}
	return codes, nil
}

func (s *SQLSource) HasStation(ctx context.Context, stationNumber string) (bool, error) {
	if s == nil || s.db == nil {
		return false, fmt.Errorf("sensor source not initialised")
	}
	var rec ReadingRecord
	err := s.db.WithContext(ctx).
		Select("id").
		Where("station_number = ?", stationNumber).
		Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Record upserts measurements; a second reading for the same instant replaces the value.
func (s *SQLSource) Record(ctx context.Context, measurements []Measurement) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sensor source not initialised")
	}
	if len(measurements) == 0 {
		return nil
	}
	records := make([]ReadingRecord, len(measurements))
	for i, m := range measurements {
		records[i] = ReadingRecord{
			StationNumber: m.StationNumber,
			ParameterCode: m.ParameterCode,
			ObservedAt:    m.ObservedAt.UTC(),
			Value:         m.Value,
		}
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "station_number"}, {Name: "parameter_code"}, {Name: "observed_at"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&records).Error
}

var _ Store = (*SQLSource)(nil)
