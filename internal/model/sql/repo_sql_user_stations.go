package sql

import (
	"context"
	"fmt"
	"meteoapi/internal/entity"
	"meteoapi/internal/entity/db"
	"strings"

	"gorm.io/gorm"
)

// CreateUserStation links a user to a station.
func (r *GormRepository) CreateUserStation(ctx context.Context, link *db.UserStation) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if link == nil {
		return fmt.Errorf("user station is nil")
	}
	return r.db.WithContext(ctx).Omit("User", "Station").Create(link).Error
}

// UpdateUserStation updates the custom name or favorite flag of a link.
func (r *GormRepository) UpdateUserStation(ctx context.Context, id uint, updates entity.UserStationUpdates) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if updates.IsEmpty() {
		return nil
	}
	result := r.db.WithContext(ctx).Model(&db.UserStation{}).Where("id = ?", id).Updates(updates.ToMap())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteUserStation removes a link and its visibility rows.
func (r *GormRepository) DeleteUserStation(ctx context.Context, id uint) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_station_id = ?", id).Delete(&db.UserStationParameter{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&db.UserStation{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// FindUserStation returns the user's link to the station with the given
// number, with the station preloaded.
func (r *GormRepository) FindUserStation(ctx context.Context, userID uint, stationNumber string) (*db.UserStation, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	number := strings.TrimSpace(stationNumber)
	if userID == 0 || number == "" {
		return nil, gorm.ErrRecordNotFound
	}

	var link db.UserStation
	err := r.db.WithContext(ctx).
		Select("user_stations.*").
		Joins("JOIN stations ON stations.id = user_stations.station_id").
		Where("user_stations.user_id = ? AND stations.station_number = ?", userID, number).
		Preload("Station").
		Take(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// ListUserStations returns the user's links ordered favorites first, then by
// effective name, then by station id.
func (r *GormRepository) ListUserStations(ctx context.Context, userID uint) ([]db.UserStation, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}

	var links []db.UserStation
	err := r.db.WithContext(ctx).
		Select("user_stations.*").
		Joins("JOIN stations ON stations.id = user_stations.station_id").
		Where("user_stations.user_id = ?", userID).
		Preload("Station").
		Order("user_stations.is_favorite DESC").
		Order("COALESCE(NULLIF(user_stations.custom_name, ''), stations.name) ASC").
		Order("stations.id ASC").
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	return links, nil
}

// CountUserStations returns the number of links across all users.
func (r *GormRepository) CountUserStations(ctx context.Context) (int64, error) {
	if r == nil || r.db == nil {
		return 0, fmt.Errorf("repository not initialised")
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&db.UserStation{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
