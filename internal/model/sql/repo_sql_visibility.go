package sql

import (
	"context"
	"fmt"
	"meteoapi/internal/entity"
	"meteoapi/internal/entity/db"
	"sort"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// insertVisibilityRows inserts default rows, leaving existing ones untouched.
func insertVisibilityRows(tx *gorm.DB, rows []db.UserStationParameter) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	result := tx.Omit("UserStation").Clauses(clause.OnConflict{DoNothing: true}).Create(&rows)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// SyncUserStationParameters creates a visible row for every active station
// parameter of the link's station that the link does not cover yet. It
// returns the number of rows created.
func (r *GormRepository) SyncUserStationParameters(ctx context.Context, userStationID uint) (int64, error) {
	if r == nil || r.db == nil {
		return 0, fmt.Errorf("repository not initialised")
	}
	var created int64
	// 差集查询与插入放在同一事务内，避免与停用站点参数交错
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var link db.UserStation
		if err := tx.Select("id", "station_id").Take(&link, userStationID).Error; err != nil {
			return err
		}

		var missing []string
		err := tx.Model(&db.StationParameter{}).
			Where("station_parameters.station_id = ? AND station_parameters.is_active = ?", link.StationID, true).
			Where("NOT EXISTS (SELECT 1 FROM user_station_parameters usp WHERE usp.user_station_id = ? AND usp.parameter_code = station_parameters.parameter_code)", link.ID).
			Order("station_parameters.parameter_code ASC").
			Pluck("station_parameters.parameter_code", &missing).Error
		if err != nil {
			return err
		}

		rows := make([]db.UserStationParameter, 0, len(missing))
		for _, code := range missing {
			rows = append(rows, db.UserStationParameter{
				UserStationID: link.ID,
				ParameterCode: code,
				IsVisible:     true,
				DisplayOrder:  0,
			})
		}
		created, err = insertVisibilityRows(tx, rows)
		return err
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

// SyncStationParameter creates a visible row for code on every link of the
// station that does not have one yet. The station parameter must be active.
func (r *GormRepository) SyncStationParameter(ctx context.Context, stationID uint, code string) (int64, error) {
	if r == nil || r.db == nil {
		return 0, fmt.Errorf("repository not initialised")
	}
	trimmed := strings.TrimSpace(code)
	var created int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sp db.StationParameter
		if err := tx.Select("id").
			Where("station_id = ? AND parameter_code = ? AND is_active = ?", stationID, trimmed, true).
			Take(&sp).Error; err != nil {
			return err
		}

		var linkIDs []uint
		err := tx.Model(&db.UserStation{}).
			Where("user_stations.station_id = ?", stationID).
			Where("NOT EXISTS (SELECT 1 FROM user_station_parameters usp WHERE usp.user_station_id = user_stations.id AND usp.parameter_code = ?)", trimmed).
			Order("user_stations.id ASC").
			Pluck("user_stations.id", &linkIDs).Error
		if err != nil {
			return err
		}

		rows := make([]db.UserStationParameter, 0, len(linkIDs))
		for _, id := range linkIDs {
			rows = append(rows, db.UserStationParameter{
				UserStationID: id,
				ParameterCode: trimmed,
				IsVisible:     true,
				DisplayOrder:  0,
			})
		}
		created, err = insertVisibilityRows(tx, rows)
		return err
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

func (r *GormRepository) visibilityQuery(ctx context.Context, userStationID uint) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("user_station_parameters AS usp").
		Select("usp.*, COALESCE(p.name, '') AS name, COALESCE(p.unit, '') AS unit, COALESCE(p.description, '') AS description, COALESCE(p.category, '') AS category").
		Joins("LEFT JOIN parameters p ON p.code = usp.parameter_code").
		Where("usp.user_station_id = ?", userStationID)
}

// ListUserStationParameters returns the link's visibility rows ordered by
// display order, then code.
func (r *GormRepository) ListUserStationParameters(ctx context.Context, userStationID uint, visibleOnly bool) ([]db.UserStationParameterDetail, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	query := r.visibilityQuery(ctx, userStationID)
	if visibleOnly {
		query = query.Where("usp.is_visible = ?", true)
	}
	rows := make([]db.UserStationParameterDetail, 0)
	if err := query.Order("usp.display_order ASC, usp.parameter_code ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetUserStationParameter returns one visibility row of the link.
func (r *GormRepository) GetUserStationParameter(ctx context.Context, userStationID uint, code string) (*db.UserStationParameterDetail, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	var rows []db.UserStationParameterDetail
	if err := r.visibilityQuery(ctx, userStationID).
		Where("usp.parameter_code = ?", strings.TrimSpace(code)).
		Limit(1).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

// SetParameterVisibility sets is_visible on one visibility row.
func (r *GormRepository) SetParameterVisibility(ctx context.Context, userStationID uint, code string, visible bool) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	trimmed := strings.TrimSpace(code)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row db.UserStationParameter
		if err := tx.Where("user_station_id = ? AND parameter_code = ?", userStationID, trimmed).Take(&row).Error; err != nil {
			return err
		}
		return tx.Model(&row).Update("is_visible", visible).Error
	})
}

// SetParameterVisibilityBulk applies all changes in one transaction. When any
// code has no row for the link nothing is written and an
// *entity.UnknownParametersError is returned.
func (r *GormRepository) SetParameterVisibilityBulk(ctx context.Context, userStationID uint, changes map[string]bool) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if len(changes) == 0 {
		return nil
	}

	var show, hide []string
	codes := make([]string, 0, len(changes))
	for code, visible := range changes {
		codes = append(codes, code)
		if visible {
			show = append(show, code)
		} else {
			hide = append(hide, code)
		}
	}
	sort.Strings(codes)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []string
		if err := tx.Model(&db.UserStationParameter{}).
			Where("user_station_id = ? AND parameter_code IN ?", userStationID, codes).
			Pluck("parameter_code", &existing).Error; err != nil {
			return err
		}

		if len(existing) != len(codes) {
			found := make(map[string]struct{}, len(existing))
			for _, code := range existing {
				found[code] = struct{}{}
			}
			var unknown []string
			for _, code := range codes {
				if _, ok := found[code]; !ok {
					unknown = append(unknown, code)
				}
			}
			return &entity.UnknownParametersError{Codes: unknown}
		}

		for visible, group := range map[bool][]string{true: show, false: hide} {
			if len(group) == 0 {
				continue
			}
			if err := tx.Model(&db.UserStationParameter{}).
				Where("user_station_id = ? AND parameter_code IN ?", userStationID, group).
				Update("is_visible", visible).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
