package main

import (
	"context"
	"errors"
	"fmt"
	"meteoapi/internal/api"
	"meteoapi/internal/app"
	"meteoapi/internal/archive"
	"meteoapi/internal/config"
	"meteoapi/internal/metrics"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	// 初始化logger
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	// 初始化配置
	cfg, err := config.ParseConfig()
	if err != nil {
		logrus.WithError(err).Error("Failed to parse config")
		os.Exit(1)
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}

	application, err := app.New(context.Background(), cfg)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise application")
		os.Exit(1)
	}
	defer application.Close()

	httpHandler, err := api.NewHTTPHandler(cfg, application.Repo, application.Services())
	if err != nil {
		logrus.WithError(err).Error("failed to initialise http handler")
		return
	}

	if err := application.Discovery.Start(cfg.ParameterSyncSchedule); err != nil {
		logrus.WithError(err).Error("failed to schedule parameter discovery")
		return
	}

	// 设置Gin模式
	gin.SetMode(cfg.GinMode)
	r := gin.New()

	// 添加中间件
	r.Use(gin.Recovery())
	r.Use(api.RequestIDMiddleware())
	r.Use(api.LoggingMiddleware())
	r.Use(api.MetricsMiddleware())
	r.Use(corsMiddleware(cfg.CORSOrigins))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	httpHandler.RegisterRoutes(r)

	// 本地归档直接以静态文件提供下载
	if localProvider, ok := application.Archive.(archive.LocalBaseDirProvider); ok {
		publicPrefix := api.NormalisePublicBase(cfg.ArchivePublicBaseURL)
		if strings.HasPrefix(publicPrefix, "/") {
			r.Static(publicPrefix, localProvider.LocalBaseDir())
		}
	}

	serverHost := fmt.Sprintf("0.0.0.0:%s", cfg.HTTPPort)
	httpServer := &http.Server{
		Addr:         serverHost,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  180 * time.Second,
	}

	go func() {
		logrus.WithField("host", serverHost).Info("服务器启动")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("服务器启动失败")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logrus.WithField("signal", sig.String()).Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("server forced to shutdown")
	}
}

// corsMiddleware CORS跨域中间件
func corsMiddleware(origins []string) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	for _, origin := range origins {
		if strings.TrimSpace(origin) == "*" {
			corsConfig.AllowAllOrigins = true
			return cors.New(corsConfig)
		}
	}
	for _, origin := range origins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			corsConfig.AllowOrigins = append(corsConfig.AllowOrigins, trimmed)
		}
	}
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
		return cors.New(corsConfig)
	}
	corsConfig.AllowCredentials = true
	return cors.New(corsConfig)
}
