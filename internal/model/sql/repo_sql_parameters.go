package sql

import (
	"context"
	"errors"
	"fmt"
	"meteoapi/internal/entity"
	"meteoapi/internal/entity/db"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func defaultParameter(code string) db.Parameter {
	return db.Parameter{
		Code:     code,
		Name:     "Parameter " + code,
		Category: db.DefaultParameterCategory,
	}
}

// EnsureParameter returns the catalog entry for code, creating a placeholder when absent.
func (r *GormRepository) EnsureParameter(ctx context.Context, code string) (*db.Parameter, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return nil, fmt.Errorf("parameter code is empty")
	}
	if err := ensureParameter(r.db.WithContext(ctx), trimmed); err != nil {
		return nil, err
	}
	return r.GetParameter(ctx, trimmed)
}

func ensureParameter(tx *gorm.DB, code string) error {
	param := defaultParameter(code)
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoNothing: true,
	}).Create(&param).Error
}

// GetParameter loads a catalog entry by code.
func (r *GormRepository) GetParameter(ctx context.Context, code string) (*db.Parameter, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	var param db.Parameter
	if err := r.db.WithContext(ctx).Where("code = ?", strings.TrimSpace(code)).First(&param).Error; err != nil {
		return nil, err
	}
	return &param, nil
}

// ListParameters returns the whole catalog ordered by code.
func (r *GormRepository) ListParameters(ctx context.Context) ([]db.Parameter, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	var params []db.Parameter
	if err := r.db.WithContext(ctx).Order("code ASC").Find(&params).Error; err != nil {
		return nil, err
	}
	return params, nil
}

// UpdateParameter updates catalog fields.
func (r *GormRepository) UpdateParameter(ctx context.Context, code string, updates entity.ParameterUpdates) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if updates.IsEmpty() {
		return nil
	}
	result := r.db.WithContext(ctx).Model(&db.Parameter{}).Where("code = ?", strings.TrimSpace(code)).Updates(updates.ToMap())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountParameters returns the catalog size.
func (r *GormRepository) CountParameters(ctx context.Context) (int64, error) {
	if r == nil || r.db == nil {
		return 0, fmt.Errorf("repository not initialised")
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&db.Parameter{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ActivateStationParameter registers code as an active parameter of the
// station. It reports true when the parameter was absent or inactive before.
func (r *GormRepository) ActivateStationParameter(ctx context.Context, stationID uint, code string) (bool, error) {
	if r == nil || r.db == nil {
		return false, fmt.Errorf("repository not initialised")
	}
	trimmed := strings.TrimSpace(code)
	if stationID == 0 || trimmed == "" {
		return false, fmt.Errorf("invalid station parameter")
	}

	activated := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&db.Station{}, stationID).Error; err != nil {
			return err
		}
		if err := ensureParameter(tx, trimmed); err != nil {
			return err
		}

		var existing db.StationParameter
		err := tx.Where("station_id = ? AND parameter_code = ?", stationID, trimmed).Take(&existing).Error
		switch {
		case err == nil:
			if existing.IsActive {
				return nil
			}
			if err := tx.Model(&existing).Update("is_active", true).Error; err != nil {
				return err
			}
			activated = true
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			row := db.StationParameter{StationID: stationID, ParameterCode: trimmed, IsActive: true}
			result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
			if result.Error != nil {
				return result.Error
			}
			activated = result.RowsAffected > 0
			return nil
		default:
			return err
		}
	})
	if err != nil {
		return false, err
	}
	return activated, nil
}

// DeactivateStationParameter marks a station parameter inactive and prunes the
// visibility rows that referenced it.
func (r *GormRepository) DeactivateStationParameter(ctx context.Context, stationID uint, code string) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	trimmed := strings.TrimSpace(code)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&db.StationParameter{}).
			Where("station_id = ? AND parameter_code = ? AND is_active = ?", stationID, trimmed, true).
			Update("is_active", false)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		links := tx.Model(&db.UserStation{}).Select("id").Where("station_id = ?", stationID)
		return tx.Where("parameter_code = ? AND user_station_id IN (?)", trimmed, links).
			Delete(&db.UserStationParameter{}).Error
	})
}

// ListStationParameters returns the parameters registered for a station.
func (r *GormRepository) ListStationParameters(ctx context.Context, stationID uint, activeOnly bool) ([]db.StationParameter, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	query := r.db.WithContext(ctx).Where("station_id = ?", stationID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var params []db.StationParameter
	if err := query.Order("parameter_code ASC").Find(&params).Error; err != nil {
		return nil, err
	}
	return params, nil
}
