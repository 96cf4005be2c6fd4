package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"go-gin-gorm-users/internal/core/cache"
	"go-gin-gorm-users/internal/core/config"
	"go-gin-gorm-users/internal/core/database"
	"go-gin-gorm-users/internal/core/logger"
	"go-gin-gorm-users/internal/core/server"
	"go-gin-gorm-users/internal/domain"
	"go-gin-gorm-users/internal/feature/user"
	"go-gin-gorm-users/internal/repo"
	"go-gin-gorm-users/internal/service"
	"go-gin-gorm-users/internal/transport/http/handler"
	"go-gin-gorm-users/internal/transport/http/router"
	"go-gin-gorm-users/internal/validation"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))

	log, cleanup := logger.Build(logger.Options{
		Level:     cfg.Log.Level,
		JSON:      cfg.Log.JSON,
		AddCaller: true,
		Rotate: logger.FileRotate{
			Enable:     cfg.Log.File.Enable,
			Filename:   cfg.Log.File.Filename,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()
	gin.DefaultErrorWriter = logger.ToWriter(log, zapcore.ErrorLevel)

	// 数据库（失败会直接 Fatal）
	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver), zap.String("dsn", database.MaskDSN(cfg.DB.DSN)))

	if cfg.DB.AutoMigrate {
		if err := db.AutoMigrate(&user.UserModel{}); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	// 仓储（配置了 redis 才加缓存）
	var users domain.UserRepository = repo.NewUserRepo(db)
	if cfg.Redis.Addr != "" {
		c, rdb := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer func() { _ = rdb.Close() }()
		ttl := time.Duration(cfg.Redis.TTLSec) * time.Second
		users = repo.NewCachedUserRepo(users, c, ttl, log)
		log.Info("user cache enabled", zap.String("redis", cfg.Redis.Addr), zap.Duration("ttl", ttl))
	}

	svc := service.NewUserService(users, log)
	h := handler.NewUserHandler(log, svc, validation.New(time.Now))

	r := router.NewAPIEngine(log, h, router.Options{
		RequestTimeout: time.Duration(cfg.App.HTTP.RequestTimeoutSec) * time.Second,
		MaxBodyBytes:   cfg.App.HTTP.MaxBodyBytes,
		MaxInFlight:    cfg.App.HTTP.MaxInFlight,
	})

	// HTTP Server
	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)
	if el, err := logger.ToStdLogger(log, zapcore.ErrorLevel); err == nil {
		srv.ErrorLog = el
	}

	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("users api starting",
		zap.String("addr", addr),
		zap.String("health", baseURL+"/health"),
		zap.String("users", baseURL+"/users"),
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("users api start FAILED", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("shutdown", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("users api stopped gracefully")
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	w, err := logger.ToStdLogger(l.Named("gorm"), zapcore.InfoLevel)
	if err != nil {
		l.Fatal("gorm logger", zap.Error(err))
	}
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Writer:             w,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}
