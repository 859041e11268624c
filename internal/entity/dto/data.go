package dto

import "time"

// ParameterReading is the latest value of one visible parameter. Value and
// ObservedAt are nil when no reading is available.
type ParameterReading struct {
	Code       string     `json:"code"`
	Name       string     `json:"name"`
	Unit       string     `json:"unit"`
	Category   string     `json:"category"`
	Value      *float64   `json:"value"`
	ObservedAt *time.Time `json:"observed_at"`
}

// StationView is the aggregated latest-data view of one linked station.
type StationView struct {
	StationNumber string             `json:"station_number"`
	Name          string             `json:"name"`
	CustomName    *string            `json:"custom_name"`
	IsFavorite    bool               `json:"is_favorite"`
	IsActive      bool               `json:"is_active"`
	Location      *string            `json:"location"`
	Latitude      *float64           `json:"latitude"`
	Longitude     *float64           `json:"longitude"`
	Altitude      *float64           `json:"altitude"`
	Parameters    []ParameterReading `json:"parameters"`
}

type LatestDataResponse struct {
	Stations    []StationView `json:"stations"`
	GeneratedAt time.Time     `json:"generated_at"`
}

type HistoryPoint struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// HistoryQuery carries unix-second bounds and a row limit.
type HistoryQuery struct {
	StartTime *int64 `form:"start_time"`
	EndTime   *int64 `form:"end_time"`
	Limit     int    `form:"limit"`
}

type HistoryResponse struct {
	StationNumber string         `json:"station_number"`
	Parameter     ParameterItem  `json:"parameter"`
	Data          []HistoryPoint `json:"data"`
	Count         int            `json:"count"`
}

type ExportResponse struct {
	Key   string `json:"key"`
	URL   string `json:"url,omitempty"`
	Count int    `json:"count"`
}

// ReadingIngestRequest pushes one observation set for a station.
type ReadingIngestRequest struct {
	StationNumber string             `json:"station_number" binding:"required"`
	ObservedAt    *int64             `json:"observed_at"`
	Values        map[string]float64 `json:"values" binding:"required,min=1"`
}

type ReadingIngestResponse struct {
	Stored        int      `json:"stored"`
	NewParameters []string `json:"new_parameters"`
}
