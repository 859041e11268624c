package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/sirupsen/logrus"
)

const (
	InactiveStationSkip    = "skip"
	InactiveStationInclude = "include"
)

type Config struct {
	HTTPPort    string   `env:"HTTP_PORT" envDefault:"8080"`
	GinMode     string   `env:"GIN_MODE" envDefault:"release"`
	LogLevel    string   `env:"LOG_LEVEL" envDefault:"info"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`

	DBType     string `env:"DBType" envDefault:"sqlite"`
	DSNURL     string `env:"DSN_URL" envDefault:""`
	DBUser     string `env:"DBUser" envDefault:""`
	DBPassword string `env:"DBPassword" envDefault:""`
	DBAddr     string `env:"DBAddr" envDefault:""`
	DBName     string `env:"DBName" envDefault:"meteo"`
	DBPath     string `env:"DBPath" envDefault:"datas/meteo.db"`
	DBPort     string `env:"DBPort" envDefault:"3306"`

	// 传感器数据库，留空时与主库共用
	SensorDBType string `env:"SENSOR_DB_TYPE" envDefault:""`
	SensorDSNURL string `env:"SENSOR_DSN_URL" envDefault:""`
	SensorDBPath string `env:"SENSOR_DB_PATH" envDefault:"datas/sensors.db"`

	JWTSecret                   string `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`
	JWTIssuer                   string `env:"JWT_ISSUER" envDefault:"meteoapi"`
	JWTExpirationMinutes        int    `env:"JWT_EXPIRATION_MINUTES" envDefault:"1440"`
	JWTRefreshExpirationMinutes int    `env:"JWT_REFRESH_EXPIRATION_MINUTES" envDefault:"43200"`

	RegistrationEnabled    bool   `env:"REGISTRATION_ENABLED" envDefault:"true"`
	AuthRateLimitPerMinute int    `env:"AUTH_RATE_LIMIT_PER_MINUTE" envDefault:"30"`
	AdminUsername          string `env:"ADMIN_USERNAME" envDefault:""`
	AdminEmail             string `env:"ADMIN_EMAIL" envDefault:""`
	AdminPassword          string `env:"ADMIN_PASSWORD" envDefault:""`

	CacheType       string `env:"CACHE_TYPE" envDefault:"memory"`
	CacheTTLSeconds int    `env:"CACHE_TTL_SECONDS" envDefault:"300"`
	RedisAddr       string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword   string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB         int    `env:"REDIS_DB" envDefault:"0"`

	InactiveStationPolicy string `env:"INACTIVE_STATION_POLICY" envDefault:"skip"`
	SensorFanout          int    `env:"SENSOR_FANOUT" envDefault:"8"`
	SensorTimeoutSeconds  int    `env:"SENSOR_TIMEOUT_SECONDS" envDefault:"3"`
	HistoryDefaultLimit   int    `env:"HISTORY_DEFAULT_LIMIT" envDefault:"1000"`
	HistoryMaxLimit       int    `env:"HISTORY_MAX_LIMIT" envDefault:"10000"`

	StationNumberPattern  string `env:"STATION_NUMBER_PATTERN" envDefault:"^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$"`
	ParameterSyncSchedule string `env:"PARAMETER_SYNC_SCHEDULE" envDefault:"@every 10m"`

	ArchiveType          string `env:"ARCHIVE_TYPE" envDefault:"local"`
	ArchiveLocalDir      string `env:"ARCHIVE_LOCAL_DIR" envDefault:"datas/exports"`
	ArchivePublicBaseURL string `env:"ARCHIVE_PUBLIC_BASE_URL" envDefault:"/exports"`

	// S3 兼容存储配置
	ArchiveS3Region          string `env:"ARCHIVE_S3_REGION"`
	ArchiveS3Bucket          string `env:"ARCHIVE_S3_BUCKET"`
	ArchiveS3Prefix          string `env:"ARCHIVE_S3_PREFIX"`
	ArchiveS3Endpoint        string `env:"ARCHIVE_S3_ENDPOINT"`
	ArchiveS3AccessKeyID     string `env:"ARCHIVE_S3_ACCESS_KEY_ID"`
	ArchiveS3SecretAccessKey string `env:"ARCHIVE_S3_SECRET_ACCESS_KEY"`
	ArchiveS3SessionToken    string `env:"ARCHIVE_S3_SESSION_TOKEN"`
	ArchiveS3ForcePathStyle  bool   `env:"ARCHIVE_S3_FORCE_PATH_STYLE" envDefault:"false"`

	// 阿里云 OSS 存储配置
	ArchiveOSSEndpoint        string `env:"ARCHIVE_OSS_ENDPOINT"`
	ArchiveOSSBucket          string `env:"ARCHIVE_OSS_BUCKET"`
	ArchiveOSSPrefix          string `env:"ARCHIVE_OSS_PREFIX"`
	ArchiveOSSAccessKeyID     string `env:"ARCHIVE_OSS_ACCESS_KEY_ID"`
	ArchiveOSSAccessKeySecret string `env:"ARCHIVE_OSS_ACCESS_KEY_SECRET"`

	// 腾讯云 COS 存储配置
	ArchiveCOSBucketURL string `env:"ARCHIVE_COS_BUCKET_URL"`
	ArchiveCOSPrefix    string `env:"ARCHIVE_COS_PREFIX"`
	ArchiveCOSSecretID  string `env:"ARCHIVE_COS_SECRET_ID"`
	ArchiveCOSSecretKey string `env:"ARCHIVE_COS_SECRET_KEY"`

	// Cloudflare R2 存储配置
	ArchiveR2AccountID       string `env:"ARCHIVE_R2_ACCOUNT_ID"`
	ArchiveR2Endpoint        string `env:"ARCHIVE_R2_ENDPOINT"`
	ArchiveR2Region          string `env:"ARCHIVE_R2_REGION" envDefault:"auto"`
	ArchiveR2Bucket          string `env:"ARCHIVE_R2_BUCKET"`
	ArchiveR2Prefix          string `env:"ARCHIVE_R2_PREFIX"`
	ArchiveR2AccessKeyID     string `env:"ARCHIVE_R2_ACCESS_KEY_ID"`
	ArchiveR2SecretAccessKey string `env:"ARCHIVE_R2_SECRET_ACCESS_KEY"`
}

// DatabaseSettings 描述一个数据库连接
type DatabaseSettings struct {
	Type     string
	DSN      string
	User     string
	Password string
	Addr     string
	Name     string
	Port     string
	Path     string
}

// MainDatabase 返回主库连接配置
func (c Config) MainDatabase() DatabaseSettings {
	return DatabaseSettings{
		Type:     c.DBType,
		DSN:      c.DSNURL,
		User:     c.DBUser,
		Password: c.DBPassword,
		Addr:     c.DBAddr,
		Name:     c.DBName,
		Port:     c.DBPort,
		Path:     c.DBPath,
	}
}

// SensorDatabase 返回传感器库连接配置，ok 为 false 表示与主库共用
func (c Config) SensorDatabase() (DatabaseSettings, bool) {
	if strings.TrimSpace(c.SensorDBType) == "" {
		return DatabaseSettings{}, false
	}
	return DatabaseSettings{
		Type: c.SensorDBType,
		DSN:  c.SensorDSNURL,
		Path: c.SensorDBPath,
	}, true
}

func (c Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.JWTExpirationMinutes) * time.Minute
}

func (c Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.JWTRefreshExpirationMinutes) * time.Minute
}

func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

func (c Config) SensorTimeout() time.Duration {
	return time.Duration(c.SensorTimeoutSeconds) * time.Second
}

// Validate 校验取值范围
func (c Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.InactiveStationPolicy)) {
	case InactiveStationSkip, InactiveStationInclude:
	default:
		return fmt.Errorf("invalid INACTIVE_STATION_POLICY %q", c.InactiveStationPolicy)
	}
	if c.HistoryDefaultLimit <= 0 || c.HistoryMaxLimit <= 0 {
		return fmt.Errorf("history limits must be positive")
	}
	if c.HistoryDefaultLimit > c.HistoryMaxLimit {
		return fmt.Errorf("HISTORY_DEFAULT_LIMIT exceeds HISTORY_MAX_LIMIT")
	}
	if c.SensorFanout <= 0 {
		return fmt.Errorf("SENSOR_FANOUT must be positive")
	}
	return nil
}

func ParseConfig() (Config, error) {
	var Conf Config
	err := env.Parse(&Conf)
	if err != nil {
		logrus.WithError(err).Error("env.Parse error")
		return Config{}, err
	}
	if err := Conf.Validate(); err != nil {
		logrus.WithError(err).Error("invalid config")
		return Config{}, err
	}
	logrus.Debugf("%#v\n", Conf)
	return Conf, nil
}
