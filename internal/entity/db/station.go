package db

import "time"

// Station is a physical weather station known to the service.
type Station struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	StationNumber string    `gorm:"column:station_number;type:varchar(64);uniqueIndex;not null" json:"station_number"`
	Name          string    `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Location      *string   `gorm:"column:location;type:varchar(255)" json:"location"`
	Latitude      *float64  `gorm:"column:latitude" json:"latitude"`
	Longitude     *float64  `gorm:"column:longitude" json:"longitude"`
	Altitude      *float64  `gorm:"column:altitude" json:"altitude"`
	IsActive      bool      `gorm:"column:is_active;index;not null" json:"is_active"`
}

func (Station) TableName() string {
	return "stations"
}

// StationParameter records that a station reports a parameter.
type StationParameter struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	StationID     uint      `gorm:"column:station_id;not null;uniqueIndex:idx_station_parameter,priority:1" json:"station_id"`
	ParameterCode string    `gorm:"column:parameter_code;type:varchar(32);not null;uniqueIndex:idx_station_parameter,priority:2" json:"parameter_code"`
	IsActive      bool      `gorm:"column:is_active;not null" json:"is_active"`

	Station *Station `gorm:"foreignKey:StationID;constraint:OnDelete:CASCADE" json:"-"`
}

func (StationParameter) TableName() string {
	return "station_parameters"
}
