// Package router 提供 HTTP 路由配置
package router

import (
	"sparkgen-api/internal/config"
	"sparkgen-api/internal/interfaces/http/handler"
	"sparkgen-api/internal/interfaces/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router HTTP 路由器
type Router struct {
	engine *gin.Engine
	cfg    *config.Config

	verifier middleware.TokenVerifier
	limiter  middleware.RateLimiter

	generateHandler *handler.GenerateHandler
	accountHandler  *handler.AccountHandler
	healthHandler   *handler.HealthHandler
}

// New 创建新的路由器
func New(
	cfg *config.Config,
	verifier middleware.TokenVerifier,
	limiter middleware.RateLimiter,
	generateHandler *handler.GenerateHandler,
	accountHandler *handler.AccountHandler,
	healthHandler *handler.HealthHandler,
) *Router {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := &Router{
		engine:          gin.New(),
		cfg:             cfg,
		verifier:        verifier,
		limiter:         limiter,
		generateHandler: generateHandler,
		accountHandler:  accountHandler,
		healthHandler:   healthHandler,
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

// Engine 返回 Gin Engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// setupMiddleware 配置中间件
func (r *Router) setupMiddleware() {
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())

	r.engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: r.cfg.Security.CORS.AllowedOrigins,
		AllowedMethods: r.cfg.Security.CORS.AllowedMethods,
		AllowedHeaders: r.cfg.Security.CORS.AllowedHeaders,
	}))

	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name))
		r.engine.Use(middleware.TraceContext())
	}

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics())
	}
}

// setupRoutes 配置路由
func (r *Router) setupRoutes() {
	r.engine.GET("/health", r.healthHandler.Health)
	r.engine.GET("/ready", r.healthHandler.Ready)
	r.engine.GET("/live", r.healthHandler.Live)

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.GET(r.cfg.Observability.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	// 认证之后、处理器之前挂限流；当前配置下限流保持关闭
	v1 := r.engine.Group("/v1")
	v1.Use(middleware.Auth(r.verifier))
	v1.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Enabled:           r.cfg.Security.RateLimit.Enabled,
		RequestsPerSecond: r.cfg.Security.RateLimit.RequestsPerSecond,
		Burst:             r.cfg.Security.RateLimit.Burst,
	}, r.limiter))
	{
		v1.POST("/generate", r.generateHandler.Generate)
		v1.GET("/account/me", r.accountHandler.Me)
	}
}
