package model

import (
	"context"
	"meteoapi/internal/entity"
	"meteoapi/internal/entity/common"
	"meteoapi/internal/entity/db"
	"meteoapi/internal/entity/dto"
)

// Repository 定义数据库操作接口
type Repository interface {
	// 用户管理
	CreateUser(ctx context.Context, user *db.User) error
	UpdateUser(ctx context.Context, id uint, updates entity.UserUpdates) error
	GetUserByID(ctx context.Context, id uint) (*db.User, error)
	GetUserByLogin(ctx context.Context, login string) (*db.User, error)
	ListUsers(ctx context.Context, params *dto.UserQuery) ([]db.User, *common.Meta, error)
	CountUsers(ctx context.Context) (int64, error)
	HasAdmin(ctx context.Context) (bool, error)
	UserStats(ctx context.Context) (dto.UserStats, error)

	// 站点
	CreateStation(ctx context.Context, station *db.Station) error
	UpdateStation(ctx context.Context, id uint, updates entity.StationUpdates) error
	DeleteStation(ctx context.Context, id uint) error
	GetStationByID(ctx context.Context, id uint) (*db.Station, error)
	GetStationByNumber(ctx context.Context, number string) (*db.Station, error)
	ListStations(ctx context.Context, params *dto.StationQuery) ([]db.Station, *common.Meta, error)
	ListActiveStations(ctx context.Context) ([]db.Station, error)
	StationStats(ctx context.Context) (dto.StationStats, error)

	// 参数目录
	EnsureParameter(ctx context.Context, code string) (*db.Parameter, error)
	GetParameter(ctx context.Context, code string) (*db.Parameter, error)
	ListParameters(ctx context.Context) ([]db.Parameter, error)
	UpdateParameter(ctx context.Context, code string, updates entity.ParameterUpdates) error
	CountParameters(ctx context.Context) (int64, error)

	// 站点参数
	ActivateStationParameter(ctx context.Context, stationID uint, code string) (bool, error)
	DeactivateStationParameter(ctx context.Context, stationID uint, code string) error
	ListStationParameters(ctx context.Context, stationID uint, activeOnly bool) ([]db.StationParameter, error)

	// 用户站点关联
	CreateUserStation(ctx context.Context, link *db.UserStation) error
	UpdateUserStation(ctx context.Context, id uint, updates entity.UserStationUpdates) error
	DeleteUserStation(ctx context.Context, id uint) error
	FindUserStation(ctx context.Context, userID uint, stationNumber string) (*db.UserStation, error)
	ListUserStations(ctx context.Context, userID uint) ([]db.UserStation, error)
	CountUserStations(ctx context.Context) (int64, error)

	// 参数可见性
	SyncUserStationParameters(ctx context.Context, userStationID uint) (int64, error)
	SyncStationParameter(ctx context.Context, stationID uint, code string) (int64, error)
	ListUserStationParameters(ctx context.Context, userStationID uint, visibleOnly bool) ([]db.UserStationParameterDetail, error)
	GetUserStationParameter(ctx context.Context, userStationID uint, code string) (*db.UserStationParameterDetail, error)
	SetParameterVisibility(ctx context.Context, userStationID uint, code string, visible bool) error
	SetParameterVisibilityBulk(ctx context.Context, userStationID uint, changes map[string]bool) error
}
