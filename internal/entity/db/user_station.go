package db

import (
	"strings"
	"time"
)

// UserStation links a user to a station they follow.
type UserStation struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	UserID     uint      `gorm:"column:user_id;not null;uniqueIndex:idx_user_station,priority:1" json:"user_id"`
	StationID  uint      `gorm:"column:station_id;not null;uniqueIndex:idx_user_station,priority:2;index" json:"station_id"`
	CustomName *string   `gorm:"column:custom_name;type:varchar(255)" json:"custom_name"`
	IsFavorite bool      `gorm:"column:is_favorite;not null" json:"is_favorite"`

	User    *User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Station *Station `gorm:"foreignKey:StationID;constraint:OnDelete:CASCADE" json:"station,omitempty"`
}

func (UserStation) TableName() string {
	return "user_stations"
}

// DisplayName 返回自定义名称，未设置时回退到站点名称
func (us *UserStation) DisplayName() string {
	if us == nil {
		return ""
	}
	if us.CustomName != nil && strings.TrimSpace(*us.CustomName) != "" {
		return *us.CustomName
	}
	if us.Station != nil {
		return us.Station.Name
	}
	return ""
}

// UserStationParameter is the per-link visibility row of one parameter.
type UserStationParameter struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	UserStationID uint      `gorm:"column:user_station_id;not null;uniqueIndex:idx_user_station_parameter,priority:1" json:"user_station_id"`
	ParameterCode string    `gorm:"column:parameter_code;type:varchar(32);not null;uniqueIndex:idx_user_station_parameter,priority:2" json:"parameter_code"`
	IsVisible     bool      `gorm:"column:is_visible;not null" json:"is_visible"`
	DisplayOrder  int       `gorm:"column:display_order;not null" json:"display_order"`

	UserStation *UserStation `gorm:"foreignKey:UserStationID;constraint:OnDelete:CASCADE" json:"-"`
}

func (UserStationParameter) TableName() string {
	return "user_station_parameters"
}

// UserStationParameterDetail is a visibility row joined with its catalog entry.
type UserStationParameterDetail struct {
	UserStationParameter
	Name        string `json:"name"`
	Unit        string `json:"unit"`
	Description string `json:"description"`
	Category    string `json:"category"`
}
