package entity

import "strings"

// UserUpdates 用户更新字段
type UserUpdates struct {
	Email        *string
	Role         *string
	PasswordHash *string
	IsActive     *bool
}

// ToMap 转换为 GORM 更新 map（内部使用）
func (u UserUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	if u.Email != nil {
		updates["email"] = *u.Email
	}
	if u.Role != nil {
		updates["role"] = *u.Role
	}
	if u.PasswordHash != nil {
		updates["password_hash"] = *u.PasswordHash
	}
	if u.IsActive != nil {
		updates["is_active"] = *u.IsActive
	}
	return updates
}

// IsEmpty 检查是否没有任何更新字段
func (u UserUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}

// StationUpdates 站点更新字段
type StationUpdates struct {
	Name      *string
	Location  *string
	Latitude  *float64
	Longitude *float64
	Altitude  *float64
	IsActive  *bool
}

// ToMap 转换为 GORM 更新 map（内部使用）
func (u StationUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	if u.Name != nil {
		updates["name"] = *u.Name
	}
	if u.Location != nil {
		updates["location"] = nullableString(*u.Location)
	}
	if u.Latitude != nil {
		updates["latitude"] = *u.Latitude
	}
	if u.Longitude != nil {
		updates["longitude"] = *u.Longitude
	}
	if u.Altitude != nil {
		updates["altitude"] = *u.Altitude
	}
	if u.IsActive != nil {
		updates["is_active"] = *u.IsActive
	}
	return updates
}

// IsEmpty 检查是否没有任何更新字段
func (u StationUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}

// UserStationUpdates 用户站点关联更新字段，空的 CustomName 表示清除
type UserStationUpdates struct {
	CustomName *string
	IsFavorite *bool
}

// ToMap 转换为 GORM 更新 map（内部使用）
func (u UserStationUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	if u.CustomName != nil {
		updates["custom_name"] = nullableString(*u.CustomName)
	}
	if u.IsFavorite != nil {
		updates["is_favorite"] = *u.IsFavorite
	}
	return updates
}

// IsEmpty 检查是否没有任何更新字段
func (u UserStationUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}

// ParameterUpdates 参数目录更新字段
type ParameterUpdates struct {
	Name        *string
	Unit        *string
	Description *string
	Category    *string
}

// ToMap 转换为 GORM 更新 map（内部使用）
func (u ParameterUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	if u.Name != nil {
		updates["name"] = *u.Name
	}
	if u.Unit != nil {
		updates["unit"] = *u.Unit
	}
	if u.Description != nil {
		updates["description"] = *u.Description
	}
	if u.Category != nil {
		updates["category"] = *u.Category
	}
	return updates
}

// IsEmpty 检查是否没有任何更新字段
func (u ParameterUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}

func nullableString(value string) interface{} {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return trimmed
}
