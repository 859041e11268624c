package dto

import (
	"meteoapi/internal/entity/common"
	"time"
)

type StationSummary struct {
	ID            uint      `json:"id"`
	StationNumber string    `json:"station_number"`
	Name          string    `json:"name"`
	Location      *string   `json:"location"`
	Latitude      *float64  `json:"latitude"`
	Longitude     *float64  `json:"longitude"`
	Altitude      *float64  `json:"altitude"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type StationQuery struct {
	common.BaseParams
	Keyword string `json:"keyword" form:"keyword" query:"keyword"`
	Active  *bool  `json:"active" form:"active" query:"active"`
}

type StationCreateRequest struct {
	StationNumber string   `json:"station_number" binding:"required"`
	Name          string   `json:"name"`
	Location      *string  `json:"location"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	Altitude      *float64 `json:"altitude"`
	IsActive      *bool    `json:"is_active"`
}

type StationUpdateRequest struct {
	Name      *string  `json:"name,omitempty"`
	Location  *string  `json:"location,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Altitude  *float64 `json:"altitude,omitempty"`
	IsActive  *bool    `json:"is_active,omitempty"`
}

type StationListResponse struct {
	Stations []StationSummary `json:"stations"`
	Meta     *common.Meta     `json:"meta"`
}

// UserStationItem is one station as seen by the user who linked it.
type UserStationItem struct {
	StationNumber string    `json:"station_number"`
	Name          string    `json:"name"`
	CustomName    *string   `json:"custom_name"`
	DisplayName   string    `json:"display_name"`
	IsFavorite    bool      `json:"is_favorite"`
	IsActive      bool      `json:"is_active"`
	Location      *string   `json:"location"`
	Latitude      *float64  `json:"latitude"`
	Longitude     *float64  `json:"longitude"`
	Altitude      *float64  `json:"altitude"`
	LinkedAt      time.Time `json:"linked_at"`
}

type UserStationListResponse struct {
	Stations []UserStationItem `json:"stations"`
}

type UserStationAddRequest struct {
	StationNumber string  `json:"station_number" binding:"required"`
	CustomName    *string `json:"custom_name"`
}

type UserStationUpdateRequest struct {
	CustomName *string `json:"custom_name,omitempty"`
	IsFavorite *bool   `json:"is_favorite,omitempty"`
}

type StationParameterItem struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Unit     string `json:"unit"`
	Category string `json:"category"`
	IsActive bool   `json:"is_active"`
}

type StationParameterAddRequest struct {
	Code string `json:"code" binding:"required"`
}

type StationParameterListResponse struct {
	StationNumber string                 `json:"station_number"`
	Parameters    []StationParameterItem `json:"parameters"`
}
