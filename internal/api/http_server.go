package api

import (
	"meteoapi/internal/auth"
	"meteoapi/internal/config"
	"meteoapi/internal/model"
	"meteoapi/internal/service"
	"strings"
)

// Services 汇总 HTTP 层依赖的服务
type Services struct {
	Resolver  *service.Resolver
	Stations  *service.StationService
	Discovery *service.Discovery
	Ingestor  *service.Ingestor
	Exporter  *service.Exporter
	Admin     *service.AdminService
}

// HTTPHandler HTTP 请求处理器
type HTTPHandler struct {
	cfg         config.Config
	repo        model.Repository
	authManager *auth.Manager

	// 服务层
	resolver  *service.Resolver
	stations  *service.StationService
	discovery *service.Discovery
	ingestor  *service.Ingestor
	exporter  *service.Exporter
	admin     *service.AdminService
}

// NewHTTPHandler 创建 HTTP 处理器实例
func NewHTTPHandler(cfg config.Config, repo model.Repository, services Services) (*HTTPHandler, error) {
	authManager, err := auth.NewManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTokenTTL(), cfg.RefreshTokenTTL())
	if err != nil {
		return nil, err
	}

	return &HTTPHandler{
		cfg:         cfg,
		repo:        repo,
		authManager: authManager,
		resolver:    services.Resolver,
		stations:    services.Stations,
		discovery:   services.Discovery,
		ingestor:    services.Ingestor,
		exporter:    services.Exporter,
		admin:       services.Admin,
	}, nil
}

// NormalisePublicBase 规范化公共 URL 基础路径
func NormalisePublicBase(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		trimmed = "/exports"
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return strings.TrimRight(trimmed, "/")
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	return strings.TrimRight(trimmed, "/")
}
