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

// CreateUser persists a new user record.
func (r *GormRepository) CreateUser(ctx context.Context, user *db.User) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if user == nil {
		return fmt.Errorf("user is nil")
	}
	return r.db.WithContext(ctx).Create(user).Error
}

// UpdateUser updates an existing user entry.
func (r *GormRepository) UpdateUser(ctx context.Context, id uint, updates entity.UserUpdates) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return fmt.Errorf("invalid user")
	}
	if updates.IsEmpty() {
		return nil
	}
	result := r.db.WithContext(ctx).Model(&db.User{}).Where("id = ?", id).Updates(updates.ToMap())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetUserByLogin loads a user by username or email, case-insensitively.
func (r *GormRepository) GetUserByLogin(ctx context.Context, login string) (*db.User, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	trimmed := strings.ToLower(strings.TrimSpace(login))
	if trimmed == "" {
		return nil, fmt.Errorf("login is empty")
	}

	var user db.User
	if err := r.db.WithContext(ctx).
		Where("LOWER(username) = ? OR LOWER(email) = ?", trimmed, trimmed).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByID loads a user by ID.
func (r *GormRepository) GetUserByID(ctx context.Context, id uint) (*db.User, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repository not initialised")
	}
	if id == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	var user db.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns paginated users.
func (r *GormRepository) ListUsers(ctx context.Context, params *dto.UserQuery) ([]db.User, *common.Meta, error) {
	if r == nil || r.db == nil {
		return nil, nil, fmt.Errorf("repository not initialised")
	}

	query := r.db.WithContext(ctx).Model(&db.User{})
	var base *common.BaseParams
	if params != nil {
		base = &params.BaseParams
		if trimmed := strings.TrimSpace(params.Role); trimmed != "" {
			query = query.Where("role = ?", trimmed)
		}
		if keyword := strings.TrimSpace(params.Keyword); keyword != "" {
			kw := "%" + strings.ToLower(keyword) + "%"
			query = query.Where("LOWER(email) LIKE ? OR LOWER(username) LIKE ?", kw, kw)
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

	var users []db.User
	if err := query.Order("id DESC").Offset(offset).Limit(pageSize).Find(&users).Error; err != nil {
		return nil, nil, err
	}

	meta := r.calculatePagination(total, page, pageSize)
	return users, meta, nil
}

// CountUsers returns total user count.
func (r *GormRepository) CountUsers(ctx context.Context) (int64, error) {
	if r == nil || r.db == nil {
		return 0, fmt.Errorf("repository not initialised")
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&db.User{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// HasAdmin reports whether an active admin account exists.
func (r *GormRepository) HasAdmin(ctx context.Context) (bool, error) {
	if r == nil || r.db == nil {
		return false, fmt.Errorf("repository not initialised")
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&db.User{}).
		Where("role = ? AND is_active = ?", db.UserRoleAdmin, true).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// UserStats returns user counters for the admin dashboard.
func (r *GormRepository) UserStats(ctx context.Context) (dto.UserStats, error) {
	var stats dto.UserStats
	if r == nil || r.db == nil {
		return stats, fmt.Errorf("repository not initialised")
	}
	conn := r.db.WithContext(ctx)
	if err := conn.Model(&db.User{}).Count(&stats.Total).Error; err != nil {
		return stats, err
	}
	if err := conn.Model(&db.User{}).Where("is_active = ?", true).Count(&stats.Active).Error; err != nil {
		return stats, err
	}
	if err := conn.Model(&db.User{}).Where("role = ?", db.UserRoleAdmin).Count(&stats.Admins).Error; err != nil {
		return stats, err
	}
	return stats, nil
}
