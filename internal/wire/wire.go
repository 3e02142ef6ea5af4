// Package wire 提供依赖注入装配
package wire

import (
	"context"
	"fmt"

	"sparkgen-api/internal/application/generation"
	"sparkgen-api/internal/application/generation/prompt"
	"sparkgen-api/internal/application/generation/provider"
	"sparkgen-api/internal/application/ledger"
	"sparkgen-api/internal/application/telemetry"
	"sparkgen-api/internal/config"
	"sparkgen-api/internal/infrastructure/gemini"
	"sparkgen-api/internal/infrastructure/llm"
	"sparkgen-api/internal/infrastructure/messaging"
	"sparkgen-api/internal/infrastructure/persistence/postgres"
	"sparkgen-api/internal/infrastructure/persistence/redis"
	"sparkgen-api/internal/interfaces/http/handler"
	"sparkgen-api/internal/interfaces/http/middleware"
	"sparkgen-api/internal/interfaces/http/router"
	"sparkgen-api/pkg/logger"
	"sparkgen-api/pkg/utils"
)

// DataLayer 数据层依赖容器
type DataLayer struct {
	PgClient      *postgres.Client
	TxManager     *postgres.TxManager
	AccountRepo   *postgres.AccountRepository
	CostEventRepo *postgres.CostEventRepository

	RedisClient *redis.Client
	RateLimiter *redis.RateLimiter

	Producer *messaging.Producer
}

// InitializeDataLayer 初始化数据层。
// Redis 不可用时遥测外发与限流降级，不阻塞启动。
func InitializeDataLayer(ctx context.Context, cfg *config.Config) (*DataLayer, func(), error) {
	pgClient, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres init failed: %w", err)
	}

	dl := &DataLayer{
		PgClient:      pgClient,
		TxManager:     postgres.NewTxManager(pgClient),
		AccountRepo:   postgres.NewAccountRepository(pgClient),
		CostEventRepo: postgres.NewCostEventRepository(pgClient),
	}

	redisClient, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		logger.Warn(ctx, "redis unavailable, cost event stream disabled", "error", err)
	} else {
		dl.RedisClient = redisClient
		dl.RateLimiter = redis.NewRateLimiter(redisClient)
		dl.Producer = messaging.NewProducer(redisClient.Redis(), cfg.Telemetry.Stream, cfg.Telemetry.MaxLen)
	}

	cleanup := func() {
		if dl.RedisClient != nil {
			_ = dl.RedisClient.Close()
		}
		_ = dl.PgClient.Close()
	}
	return dl, cleanup, nil
}

// InitializeApp 装配整个应用
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	dl, cleanup, err := InitializeDataLayer(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	mediaClient, err := gemini.NewClient(ctx, cfg.Vision.APIKey)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("gemini init failed: %w", err)
	}

	registry := prompt.NewRegistry()
	textClient := llm.NewEinoTextClient(llm.NewEinoFactory(cfg))
	recorder := telemetry.NewRecorder(dl.CostEventRepo, dl.Producer)

	adapter := provider.NewAdapter(textClient, mediaClient, registry, provider.Models{
		Light:          cfg.LLM.LightModel,
		Heavy:          cfg.LLM.HeavyModel,
		Vision:         cfg.Vision.Model,
		VisionFallback: cfg.Vision.FallbackModel,
		Strategist:     cfg.Image.StrategistModel,
		ImageGen:       cfg.Image.GenerationModel,
	}, recorder)

	creditLedger := ledger.New(dl.TxManager, dl.AccountRepo, cfg.Credits.StartingBalance)
	service := generation.NewService(creditLedger, generation.NewAssembler(registry), adapter)

	verifier := middleware.NewJWTVerifier(utils.NewJWTManager(cfg.Security.JWT.Secret, cfg.Security.JWT.Issuer))

	var limiter middleware.RateLimiter
	if dl.RateLimiter != nil {
		limiter = dl.RateLimiter
	}

	r := router.New(
		cfg,
		verifier,
		limiter,
		handler.NewGenerateHandler(service, cfg.Server.HTTP.RequestCeiling),
		handler.NewAccountHandler(creditLedger),
		handler.NewHealthHandler(dl.PgClient, dl.RedisClient, cfg.App.Version),
	)
	return r, cleanup, nil
}
