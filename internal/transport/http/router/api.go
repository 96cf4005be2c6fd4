package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"go-gin-gorm-users/internal/core/server"
	"go-gin-gorm-users/internal/transport/http/handler"
	mdw "go-gin-gorm-users/internal/transport/http/middleware"
)

type Options struct {
	RequestTimeout time.Duration
	MaxBodyBytes   int64
	MaxInFlight    int64
}

func NewAPIEngine(l *zap.Logger, users *handler.UserHandler, opt Options) *gin.Engine {
	if l == nil {
		l = zap.NewNop()
	}
	// 中间件（顺序即执行顺序）
	r := server.NewRouter(
		mdw.Recovery(l),
		mdw.RequestID(),
		mdw.ConcurrencyLimit(opt.MaxInFlight),
		mdw.MaxBodyBytes(opt.MaxBodyBytes),
		mdw.Timeout(opt.RequestTimeout),
		mdw.Metrics(),
		mdw.AccessLog(l),
	)

	// 健康检查 + 指标
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	users.Mount(r)
	return r
}
