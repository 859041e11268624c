package db

import "time"

const DefaultParameterCategory = "sensor"

// Parameter is an entry of the global parameter catalog.
type Parameter struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Code        string    `gorm:"column:code;type:varchar(32);uniqueIndex;not null" json:"code"`
	Name        string    `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Unit        string    `gorm:"column:unit;type:varchar(50)" json:"unit"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	Category    string    `gorm:"column:category;type:varchar(50)" json:"category"`
}

func (Parameter) TableName() string {
	return "parameters"
}
