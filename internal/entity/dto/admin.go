package dto

type UserStats struct {
	Total  int64 `json:"total"`
	Active int64 `json:"active"`
	Admins int64 `json:"admins"`
}

type StationStats struct {
	Total  int64 `json:"total"`
	Active int64 `json:"active"`
}

type DashboardStats struct {
	Users      UserStats    `json:"users"`
	Stations   StationStats `json:"stations"`
	Links      int64        `json:"links"`
	Parameters int64        `json:"parameters"`
	Cache      string       `json:"cache"`
}

// SyncReport summarises one parameter discovery pass.
type SyncReport struct {
	Stations        int `json:"stations"`
	ParametersAdded int `json:"parameters_added"`
	RowsCreated     int `json:"rows_created"`
	Failures        int `json:"failures"`
}
