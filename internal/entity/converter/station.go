package converter

import (
	"meteoapi/internal/entity/db"
	"meteoapi/internal/entity/dto"
)

func StationToSummary(s *db.Station) dto.StationSummary {
	if s == nil {
		return dto.StationSummary{}
	}
	return dto.StationSummary{
		ID:            s.ID,
		StationNumber: s.StationNumber,
		Name:          s.Name,
		Location:      s.Location,
		Latitude:      s.Latitude,
		Longitude:     s.Longitude,
		Altitude:      s.Altitude,
		IsActive:      s.IsActive,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

func StationsToSummaries(stations []db.Station) []dto.StationSummary {
	summaries := make([]dto.StationSummary, len(stations))
	for i := range stations {
		summaries[i] = StationToSummary(&stations[i])
	}
	return summaries
}

// UserStationToItem flattens a link with its preloaded station.
func UserStationToItem(link *db.UserStation) dto.UserStationItem {
	if link == nil {
		return dto.UserStationItem{}
	}
	item := dto.UserStationItem{
		CustomName:  link.CustomName,
		DisplayName: link.DisplayName(),
		IsFavorite:  link.IsFavorite,
		LinkedAt:    link.CreatedAt,
	}
	if s := link.Station; s != nil {
		item.StationNumber = s.StationNumber
		item.Name = s.Name
		item.IsActive = s.IsActive
		item.Location = s.Location
		item.Latitude = s.Latitude
		item.Longitude = s.Longitude
		item.Altitude = s.Altitude
	}
	return item
}

// UserStationToView builds the station part of an aggregated view; parameters
// are filled by the caller.
func UserStationToView(link *db.UserStation) dto.StationView {
	item := UserStationToItem(link)
	return dto.StationView{
		StationNumber: item.StationNumber,
		Name:          item.DisplayName,
		CustomName:    item.CustomName,
		IsFavorite:    item.IsFavorite,
		IsActive:      item.IsActive,
		Location:      item.Location,
		Latitude:      item.Latitude,
		Longitude:     item.Longitude,
		Altitude:      item.Altitude,
		Parameters:    []dto.ParameterReading{},
	}
}
