package bootstrap

import (
	"context"
	"time"

	"triage_server/adapter/out/messaging"
	"triage_server/adapter/out/mongodb"
	"triage_server/adapter/out/persistence"
	"triage_server/config"
	"triage_server/core/agent/llm"
	"triage_server/core/port/out"
	"triage_server/core/service/classification"
	"triage_server/core/service/history"
	"triage_server/core/service/settings"
	"triage_server/core/service/triage"
	"triage_server/infra/database"
	"triage_server/pkg/apperr"
	"triage_server/pkg/cache"
	"triage_server/pkg/logger"
	"triage_server/pkg/metrics"
	"triage_server/pkg/resilience"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

const redisStorePrefix = "triage:kv:"

type Dependencies struct {
	Config  *config.Config
	DB      *pgxpool.Pool
	SQLDB   *sqlx.DB
	Redis   *redis.Client
	MongoDB *mongo.Client

	// Persistence
	Store        out.KeyValueStore
	HistoryRepo  *persistence.HistoryRepository
	SettingsRepo *persistence.SettingsRepository

	// Cache
	L1Cache             *cache.L1Cache
	ClassificationCache *classification.TieredClassificationCache

	// Agent
	LLMClient *llm.Client

	// Messaging
	Escalations out.EscalationPublisher

	// Services
	ClassifierMetrics *metrics.ClassifierMetrics
	ClassifierService *classification.Service
	HistoryService    *history.Service
	SettingsService   *settings.Service
	AnalysisService   *triage.Service

	// Readiness checks by name
	Pingers map[string]out.Pinger
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// NewDependencies connects what cfg asks for and wires the services.
// A connection the store backend depends on is fatal; optional ones only log.
func NewDependencies(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Dependencies, func(), error) {
	deps := &Dependencies{Config: cfg, Pingers: map[string]out.Pinger{}}
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}
	fail := func(err error) (*Dependencies, func(), error) {
		cleanup()
		return nil, nil, err
	}

	// Postgres (pgxpool for readiness and pool stats, sqlx for the store)
	if cfg.DatabaseURL != "" {
		pool, err := database.NewPostgres(ctx, cfg.DatabaseURL)
		switch {
		case err != nil && cfg.StoreBackend == config.StorePostgres:
			return fail(apperr.ExternalError("postgres", err))
		case err != nil:
			log.WithError(err).Warn("postgres unavailable, continuing without it")
		default:
			deps.DB = pool
			cleanups = append(cleanups, pool.Close)
			deps.Pingers["postgres"] = pool
			log.Info("postgres connected")
		}
	}
	if cfg.StoreBackend == config.StorePostgres {
		sqlDB, err := database.NewSQLX(ctx, cfg.DatabaseURL, nil)
		if err != nil {
			return fail(apperr.ExternalError("postgres", err))
		}
		deps.SQLDB = sqlDB
		cleanups = append(cleanups, func() { _ = sqlDB.Close() })
	}

	// Redis
	if cfg.RedisURL != "" {
		client, err := database.NewRedis(ctx, cfg.RedisURL)
		switch {
		case err != nil && cfg.StoreBackend == config.StoreRedis:
			return fail(apperr.ExternalError("redis", err))
		case err != nil:
			log.WithError(err).Warn("redis unavailable, cache stays in-process and escalations are off")
		default:
			deps.Redis = client
			cleanups = append(cleanups, func() { _ = client.Close() })
			deps.Pingers["redis"] = pingerFunc(func(ctx context.Context) error { return client.Ping(ctx).Err() })
			log.Info("redis connected")
		}
	}

	// MongoDB
	if cfg.StoreBackend == config.StoreMongo {
		client, err := mongodb.NewClient(ctx, cfg.MongoDBURL)
		if err != nil {
			return fail(apperr.ExternalError("mongodb", err))
		}
		deps.MongoDB = client
		cleanups = append(cleanups, func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(dctx)
		})
	}

	store, err := newStore(ctx, cfg, deps)
	if err != nil {
		return fail(err)
	}
	deps.Store = store
	if p, ok := store.(out.Pinger); ok {
		deps.Pingers["store"] = p
	}
	deps.HistoryRepo = persistence.NewHistoryRepository(store, log)
	deps.SettingsRepo = persistence.NewSettingsRepository(store, log)

	// Classification cache: in-process L1, Redis L2 when connected
	deps.L1Cache = cache.NewL1Cache(cache.L1Config{
		MaxItems:   cfg.ClassifyCacheSize,
		DefaultTTL: cfg.ClassifyCacheTTL,
	})
	cleanups = append(cleanups, deps.L1Cache.Close)
	var l2 *cache.RedisCache
	if deps.Redis != nil {
		l2 = cache.NewRedisCache(deps.Redis, classification.CacheKeyPrefix)
	}
	deps.ClassificationCache = classification.NewTieredClassificationCache(cache.NewTieredCache(deps.L1Cache, l2))

	// Remote classifier only with a key
	var remote out.Classifier
	if cfg.LLMEnabled() {
		deps.LLMClient = llm.NewClientWithConfig(llm.ClientConfig{
			APIKey:      cfg.LLMAPIKey,
			BaseURL:     cfg.LLMBaseURL,
			Model:       cfg.LLMModel,
			MaxTokens:   cfg.LLMMaxTokens,
			Temperature: cfg.LLMTemperature,
			Timeout:     cfg.LLMTimeout,
		})
		remote = deps.LLMClient
		log.Info("remote classifier enabled: %s", deps.LLMClient.Model())
	} else {
		log.Info("no LLM key configured, classifying with local rules")
	}

	deps.Escalations = out.NopEscalationPublisher{}
	if cfg.EscalationStream != "" && deps.Redis != nil {
		deps.Escalations = messaging.NewEscalationProducer(deps.Redis, cfg.EscalationStream, log.Zerolog("escalations"))
		log.Info("publishing escalations to stream %s", cfg.EscalationStream)
	}

	clsCfg := classification.DefaultConfig()
	clsCfg.CacheTTL = cfg.ClassifyCacheTTL
	clsCfg.Retry = resilience.RetryConfig{
		Retries:  cfg.LLMMaxRetries,
		Base:     clsCfg.Retry.Base,
		MaxDelay: clsCfg.Retry.MaxDelay,
	}
	clsCfg.BulkMax = cfg.BulkMax
	clsCfg.BulkWorkers = cfg.BulkWorkers

	deps.ClassifierMetrics = metrics.NewClassifierMetrics()
	deps.ClassifierService = classification.NewService(remote, deps.ClassificationCache, deps.ClassifierMetrics, clsCfg, log.Zerolog("classifier"))
	deps.HistoryService = history.NewService(deps.HistoryRepo, log)
	deps.SettingsService = settings.NewService(deps.SettingsRepo)
	deps.AnalysisService = triage.NewService(
		deps.ClassifierService,
		deps.HistoryService,
		deps.SettingsService,
		deps.Escalations,
		triage.Config{BulkMax: cfg.BulkMax, BulkWorkers: cfg.BulkWorkers},
		log.Zerolog("triage"),
	)

	return deps, cleanup, nil
}

func newStore(ctx context.Context, cfg *config.Config, deps *Dependencies) (out.KeyValueStore, error) {
	switch cfg.StoreBackend {
	case config.StoreFile:
		s, err := persistence.NewFileStore(cfg.StoreFilePath)
		if err != nil {
			return nil, apperr.ConfigError("cannot open store file").WithError(err)
		}
		return s, nil
	case config.StoreRedis:
		return persistence.NewRedisStore(deps.Redis, redisStorePrefix), nil
	case config.StorePostgres:
		s, err := persistence.NewPostgresStore(deps.SQLDB, cfg.StoreTable)
		if err != nil {
			return nil, apperr.ConfigError("invalid STORE_TABLE").WithError(err)
		}
		if err := s.EnsureSchema(ctx); err != nil {
			return nil, apperr.StoreError("create table", err)
		}
		return s, nil
	case config.StoreMongo:
		return mongodb.NewKVAdapter(deps.MongoDB.Database(cfg.MongoDBName)), nil
	default:
		return persistence.NewMemoryStore(), nil
	}
}
