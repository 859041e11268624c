package dto

// ParameterItem describes a catalog parameter.
type ParameterItem struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Unit        string `json:"unit"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category"`
}

type ParameterListResponse struct {
	Parameters []ParameterItem `json:"parameters"`
}

type ParameterUpdateRequest struct {
	Name        *string `json:"name,omitempty"`
	Unit        *string `json:"unit,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
}

// ParameterVisibilityItem is a parameter of a linked station with its visibility state.
type ParameterVisibilityItem struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	Unit         string `json:"unit"`
	Description  string `json:"description,omitempty"`
	Category     string `json:"category"`
	IsVisible    bool   `json:"is_visible"`
	DisplayOrder int    `json:"display_order"`
}

type ParameterVisibilityListResponse struct {
	StationNumber string                    `json:"station_number"`
	Parameters    []ParameterVisibilityItem `json:"parameters"`
}

type VisibilityUpdateRequest struct {
	IsVisible *bool `json:"is_visible" binding:"required"`
}

type VisibilityChange struct {
	Code      string `json:"code" binding:"required"`
	IsVisible *bool  `json:"is_visible" binding:"required"`
}

type BulkVisibilityRequest struct {
	Parameters []VisibilityChange `json:"parameters" binding:"required,min=1,dive"`
}
