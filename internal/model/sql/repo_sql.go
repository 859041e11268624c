package sql

import (
	"meteoapi/internal/entity/common"
	"meteoapi/internal/entity/db"

	"gorm.io/gorm"
)

// GormRepository implements Repository using GORM
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a new repository instance
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Models lists every table owned by the repository, parents first.
func Models() []interface{} {
	return []interface{}{
		&db.User{},
		&db.Station{},
		&db.Parameter{},
		&db.StationParameter{},
		&db.UserStation{},
		&db.UserStationParameter{},
	}
}

// AutoMigrate creates or updates the repository schema.
func AutoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(Models()...)
}

// calculatePagination calculates pagination metrics
func (r *GormRepository) calculatePagination(totalCount int64, page, pageSize int) *common.Meta {
	if pageSize <= 0 {
		pageSize = 20
	}
	if page <= 0 {
		page = 1
	}

	return &common.Meta{
		Total:    totalCount,
		Page:     int64(page),
		PageSize: int64(pageSize),
	}
}

func pageBounds(params *common.BaseParams) (page, pageSize, offset int) {
	page, pageSize = 1, 20
	if params != nil {
		if params.Page > 0 {
			page = int(params.Page)
		}
		if params.PageSize > 0 {
			pageSize = int(params.PageSize)
		}
	}
	offset = (page - 1) * pageSize
	if offset < 0 {
		offset = 0
	}
	return page, pageSize, offset
}
