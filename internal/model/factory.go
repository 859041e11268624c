package model

import (
	"fmt"
	"log"
	"meteoapi/internal/config"
	"meteoapi/internal/model/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DBTypeMySQL    = "mysql"
	DBTypeSQLite   = "sqlite"
	DBTypePostgres = "postgres"
)

// RepositoryFactory 根据数据库类型创建对应的连接与仓库实现
type RepositoryFactory struct{}

// NewRepositoryFactory 创建新的仓库工厂
func NewRepositoryFactory() *RepositoryFactory {
	return &RepositoryFactory{}
}

// InitRepository 打开主库、迁移表结构并返回仓库及其底层连接
func InitRepository(cfg *config.Config) (Repository, *gorm.DB, error) {
	factory := NewRepositoryFactory()

	conn, err := factory.Open(cfg.MainDatabase())
	if err != nil {
		return nil, nil, err
	}

	// 自动迁移数据库表结构
	if err := sql.AutoMigrate(conn); err != nil {
		return nil, nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return sql.NewGormRepository(conn), conn, nil
}

// InitSensorDatabase 打开传感器库；未单独配置时复用主库连接
func InitSensorDatabase(cfg *config.Config, mainDB *gorm.DB) (*gorm.DB, error) {
	settings, ok := cfg.SensorDatabase()
	if !ok {
		return mainDB, nil
	}
	return NewRepositoryFactory().Open(settings)
}

// Open 根据配置打开数据库连接
func (f *RepositoryFactory) Open(settings config.DatabaseSettings) (*gorm.DB, error) {
	switch strings.ToLower(strings.TrimSpace(settings.Type)) {
	case DBTypeMySQL:
		return f.openMySQL(settings)
	case DBTypeSQLite:
		return f.openSQLite(settings)
	case DBTypePostgres:
		return f.openPostgres(settings)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", settings.Type)
	}
}

func (f *RepositoryFactory) openMySQL(settings config.DatabaseSettings) (*gorm.DB, error) {
	dsn := settings.DSN
	if dsn == "" {
		// 从各个配置项构建 DSN
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			settings.User, settings.Password, settings.Addr, settings.Port, settings.Name)
	}

	db, err := f.openGormDB(mysql.Open(dsn))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
	}
	return db, nil
}

func (f *RepositoryFactory) openSQLite(settings config.DatabaseSettings) (*gorm.DB, error) {
	filePath := settings.DSN
	if filePath == "" {
		filePath = settings.Path
	}
	if filePath == "" {
		filePath = "datas/meteo.db" // 默认 SQLite 数据库文件
	}

	// SQLite 会在连接时自动创建 .db 文件，但前提是目录已存在
	if !strings.HasPrefix(filePath, "file:") {
		if dir := filepath.Dir(filePath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create directory %q: %w", dir, err)
			}
		}
	}

	db, err := OpenSQLite(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite: %w", err)
	}
	return db, nil
}

func (f *RepositoryFactory) openPostgres(settings config.DatabaseSettings) (*gorm.DB, error) {
	dsn := settings.DSN
	if dsn == "" {
		// 从各个配置项构建 DSN
		dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			settings.Addr, settings.User, settings.Password, settings.Name, settings.Port)
	}

	db, err := f.openGormDB(postgres.Open(dsn))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	return db, nil
}

// OpenSQLite 打开启用外键约束的 SQLite 连接。SQLite 只允许单个写连接。
func OpenSQLite(dsn string) (*gorm.DB, error) {
	if !strings.Contains(dsn, "_foreign_keys") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_foreign_keys=on"
	}
	db, err := NewRepositoryFactory().openGormDB(sqlite.Open(dsn))
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(0)
	return db, nil
}

func (f *RepositoryFactory) openGormDB(dialector gorm.Dialector) (*gorm.DB, error) {
	// 配置 GORM 日志
	gormLogger := logger.New(
		log.New(log.Writer(), "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second * 5,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	// 配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}
