package converter

import (
	"meteoapi/internal/entity/db"
	"meteoapi/internal/entity/dto"
)

func ParameterToItem(p *db.Parameter) dto.ParameterItem {
	if p == nil {
		return dto.ParameterItem{}
	}
	return dto.ParameterItem{
		Code:        p.Code,
		Name:        p.Name,
		Unit:        p.Unit,
		Description: p.Description,
		Category:    p.Category,
	}
}

func ParametersToItems(params []db.Parameter) []dto.ParameterItem {
	items := make([]dto.ParameterItem, len(params))
	for i := range params {
		items[i] = ParameterToItem(&params[i])
	}
	return items
}

func VisibilityToItem(row *db.UserStationParameterDetail) dto.ParameterVisibilityItem {
	if row == nil {
		return dto.ParameterVisibilityItem{}
	}
	return dto.ParameterVisibilityItem{
		Code:         row.ParameterCode,
		Name:         row.Name,
		Unit:         row.Unit,
		Description:  row.Description,
		Category:     row.Category,
		IsVisible:    row.IsVisible,
		DisplayOrder: row.DisplayOrder,
	}
}

func VisibilityToItems(rows []db.UserStationParameterDetail) []dto.ParameterVisibilityItem {
	items := make([]dto.ParameterVisibilityItem, len(rows))
	for i := range rows {
		items[i] = VisibilityToItem(&rows[i])
	}
	return items
}

// StationParameterToItem merges a station parameter with its catalog entry, which may be nil.
func StationParameterToItem(sp *db.StationParameter, p *db.Parameter) dto.StationParameterItem {
	item := dto.StationParameterItem{}
	if sp != nil {
		item.Code = sp.ParameterCode
		item.IsActive = sp.IsActive
	}
	if p != nil {
		item.Name = p.Name
		item.Unit = p.Unit
		item.Category = p.Category
	}
	return item
}
