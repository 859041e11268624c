// Package app wires configuration, storage and services into one object
// shared by the server and the CLI.
package app

import (
	"context"
	"fmt"
	"io"
	"meteoapi/internal/api"
	"meteoapi/internal/archive"
	"meteoapi/internal/cache"
	"meteoapi/internal/config"
	"meteoapi/internal/model"
	"meteoapi/internal/sensor"
	"meteoapi/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type App struct {
	Config  config.Config
	Repo    model.Repository
	Cache   cache.Cache
	Archive archive.Archive
	Source  *sensor.Cached

	Access    *service.Access
	Sync      *service.Synchronizer
	Resolver  *service.Resolver
	Stations  *service.StationService
	Discovery *service.Discovery
	Ingestor  *service.Ingestor
	Exporter  *service.Exporter
	Admin     *service.AdminService

	conns []*gorm.DB
}

// New 打开数据库、缓存与归档后端，并组装服务层
func New(ctx context.Context, cfg config.Config) (*App, error) {
	repo, mainDB, err := model.InitRepository(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise repository: %w", err)
	}
	a := &App{Config: cfg, Repo: repo, conns: []*gorm.DB{mainDB}}

	if err := model.SeedAdmin(ctx, repo, cfg); err != nil {
		logrus.WithError(err).Warn("failed to seed admin user")
	}

	sensorDB, err := model.InitSensorDatabase(&cfg, mainDB)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open sensor database: %w", err)
	}
	if sensorDB != mainDB {
		a.conns = append(a.conns, sensorDB)
	}
	if err := sensor.AutoMigrate(sensorDB); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to migrate sensor schema: %w", err)
	}

	a.Cache, err = cache.New(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Archive, err = archive.New(cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialise archive: %w", err)
	}

	a.Source = sensor.NewCached(sensor.NewSQLSource(sensorDB), a.Cache, cfg.CacheTTL())
	a.Access = service.NewAccess(repo)
	a.Sync = service.NewSynchronizer(repo)
	a.Stations, err = service.NewStationService(repo, a.Source, a.Sync, a.Access, cfg.StationNumberPattern)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Resolver = service.NewResolver(repo, a.Source, a.Access, service.ResolverOptionsFromConfig(cfg))
	a.Discovery = service.NewDiscovery(repo, a.Source, a.Stations)
	a.Ingestor = service.NewIngestor(a.Source, a.Stations)
	a.Exporter = service.NewExporter(a.Resolver, a.Archive, api.NormalisePublicBase(cfg.ArchivePublicBaseURL))
	a.Admin = service.NewAdminService(repo, a.Cache.Name())

	logrus.WithFields(logrus.Fields{
		"db":      cfg.DBType,
		"cache":   a.Cache.Name(),
		"archive": a.Archive.Name(),
	}).Info("application initialised")
	return a, nil
}

// Services 返回 HTTP 层所需的服务集合
func (a *App) Services() api.Services {
	return api.Services{
		Resolver:  a.Resolver,
		Stations:  a.Stations,
		Discovery: a.Discovery,
		Ingestor:  a.Ingestor,
		Exporter:  a.Exporter,
		Admin:     a.Admin,
	}
}

// Close 停止定时任务并释放连接
func (a *App) Close() {
	if a.Discovery != nil {
		a.Discovery.Stop()
	}
	if closer, ok := a.Cache.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			logrus.WithError(err).Warn("failed to close cache")
		}
	}
	for _, conn := range a.conns {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	}
}
