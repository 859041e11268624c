package sql

import (
	"context"
	"fmt"
	"meteoapi/internal/entity"
	"meteoapi/internal/entity/common"
	"meteoapi/internal/entity/db"
	"meteoapi/internal/entity/dto"
	"strings"

	"gorm.io/gorm"
)

// CreateStation inserts a new station.
func (r *GormRepository) CreateStation(ctx context.Context, station *db.Station) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if station == nil {
		return fmt.Errorf("station is nil")
	}
	return r.db.WithContext(ctx).Create(station).Error
}

// UpdateStation updates station fields.
func (r *GormRepository) UpdateStation(ctx context.Context, id uint, updates entity.StationUpdates) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid station id")
	}
	if updates.IsEmpty() {
		return nil
	}
	result := r.db.WithContext(ctx).Model(&db.Station{}).Where("id = ?", id).Updates(updates.ToMap())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteStation removes a station together with its links, station parameters
// and visibility rows.
func (r *GormRepository) DeleteStation(ctx context.Context, id uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid station id")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		links := tx.Model(&db.UserStation{}).Select("id").Where("station_id = ?", id)
		if err := tx.Where("user_station_id IN (?)", links).Delete(&db.UserStationParameter{}).Error; err != nil {
			return err
		}
		if err := tx.Where("station_id = ?", id).Delete(&db.UserStation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("station_id = ?", id).Delete(&db.StationParameter{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&db.Station{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// GetStationByID loads a station by ID.
func (r *GormRepository) GetStationByID(ctx context.Context, id uint) (*db.Station, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	var station db.Station
	if err := r.db.WithContext(ctx).First(&station, id).Error; err != nil {
		return nil, err
	}
	return &station, nil
}

// GetStationByNumber loads a station by its station number.
func (r *GormRepository) GetStationByNumber(ctx context.Context, number string) (*db.Station, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	trimmed := strings.TrimSpace(number)
	if trimmed == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var station db.Station
	if err := r.db.WithContext(ctx).Where("station_number = ?", trimmed).First(&station).Error; err != nil {
		return nil, err
	}
	return &station, nil
}

// ListStations returns paginated stations.
func (r *GormRepository) ListStations(ctx context.Context, params *dto.StationQuery) ([]db.Station, *common.Meta, error) {
	if r == nil || r.db == nil {
		return nil, nil, fmt.Errorf("repository not initialised")
	}

	query := r.db.WithContext(ctx).Model(&db.Station{})
	var base *common.BaseParams
	if params != nil {
		base = &params.BaseParams
		if keyword := strings.TrimSpace(params.Keyword); keyword != "" {
			kw := "%" + strings.ToLower(keyword) + "%"
			query = query.Where("LOWER(station_number) LIKE ? OR LOWER(name) LIKE ?", kw, kw)
		}
		if params.Active != nil {
			query = query.Where("is_active = ?", *params.Active)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, err
	}

	page, pageSize, offset := pageBounds(base)

	var stations []db.Station
	if err := query.Order("station_number ASC").Offset(offset).Limit(pageSize).Find(&stations).Error; err != nil {
		return nil, nil, err
	}

	return stations, r.calculatePagination(total, page, pageSize), nil
}

// ListActiveStations returns every active station.
func (r *GormRepository) ListActiveStations(ctx context.Context) ([]db.Station, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	var stations []db.Station
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("id ASC").Find(&stations).Error; err != nil {
		return nil, err
	}
	return stations, nil
}

// StationStats returns station counters for the admin dashboard.
func (r *GormRepository) StationStats(ctx context.Context) (dto.StationStats, error) {
	var stats dto.StationStats
	if r == nil || r.db == nil {
		return stats, fmt.Errorf("repository not initialised")
	}
	conn := r.db.WithContext(ctx)
	if err := conn.Model(&db.Station{}).Count(&stats.Total).Error; err != nil {
		return stats, err
	}
	if err := conn.Model(&db.Station{}).Where("is_active = ?", true).Count(&stats.Active).Error; err != nil {
		return stats, err
	}
	return stats, nil
}
