// Command server runs the evsim facade: an HTTP API over
// internal/simulation.Facade and internal/simulation.RunBatch, backed by
// a Postgres evaluation store, a Redis/local cache-through distance
// oracle, a NATS telemetry bus, and a RabbitMQ batch work queue.
// Grounded on the teacher's cmd/server/main.go wiring order (logger,
// config, tracer, storage, queues, HTTP app, graceful shutdown), rebuilt
// around this domain's own components.
package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"

	"github.com/nexabus/evsim/internal/adapter/cache"
	"github.com/nexabus/evsim/internal/adapter/http/fiber/handlers"
	customMiddleware "github.com/nexabus/evsim/internal/adapter/http/fiber/middleware"
	"github.com/nexabus/evsim/internal/adapter/oraclehttp"
	"github.com/nexabus/evsim/internal/adapter/queue"
	"github.com/nexabus/evsim/internal/adapter/storage/postgres"
	"github.com/nexabus/evsim/internal/adapter/vault"
	"github.com/nexabus/evsim/internal/observability/telemetry"
	"github.com/nexabus/evsim/internal/service/health"
	"github.com/nexabus/evsim/internal/service/runs"
	"github.com/nexabus/evsim/internal/simulation"
	"github.com/nexabus/evsim/pkg/config"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("loading config", zap.Error(err))
	}

	if cfg.OpenTelemetry.Enabled {
		tp, err := telemetry.InitTracer(cfg.OpenTelemetry.ServiceName, cfg.OpenTelemetry.JaegerEndpoint, cfg.App.Version)
		if err != nil {
			log.Error("tracer init failed, continuing without tracing", zap.Error(err))
		} else {
			defer tp.Shutdown(context.Background())
		}
	}

	dbCredentials := cfg.Database.URL
	queueCredentials := cfg.RabbitMQ.URL
	if cfg.Vault.Enabled {
		sm, err := vault.NewSecretManager(cfg.Vault.Address, cfg.Vault.Token)
		if err != nil {
			log.Fatal("vault init failed", zap.Error(err))
		}
		if url, err := sm.GetDatabaseCredentials(); err == nil {
			dbCredentials = url
		} else {
			log.Warn("vault: database credentials unavailable, using config default", zap.Error(err))
		}
		if url, err := sm.GetQueueCredentials(); err == nil {
			queueCredentials = url
		} else {
			log.Warn("vault: queue credentials unavailable, using config default", zap.Error(err))
		}
	}

	db, err := postgres.NewConnection(dbCredentials, log)
	if err != nil {
		log.Fatal("connecting to postgres failed", zap.Error(err))
	}
	evalRepo := postgres.NewEvaluationRepository(db)
	if err := evalRepo.Migrate(); err != nil {
		log.Fatal("migrating evaluation store failed", zap.Error(err))
	}

	cacheStore, err := cache.NewRedisCache(cfg.Redis.URL, log)
	if err != nil {
		log.Warn("redis unavailable, falling back to local cache", zap.Error(err))
		cacheStore = cache.NewLocalCache(time.Minute, log)
	}

	oracleClient := oraclehttp.NewClient(cfg.Oracle.BaseURL, log)
	oracle := cache.NewCachedOracle(cacheStore, oracleClient, cfg.Redis.CacheTTL, log)

	var telemetryBus *queue.TelemetryBus
	natsQueue, err := queue.NewNATSQueue(cfg.NATS.URL, log)
	if err != nil {
		log.Warn("nats unavailable, telemetry events will not be published", zap.Error(err))
	} else {
		telemetryBus = queue.NewTelemetryBus(natsQueue, log)
	}

	runsService := runs.NewService(log, oracle, evalRepo, telemetryBus)

	var batchQueue *queue.BatchQueue
	rabbitQueue, err := queue.NewRabbitMQQueue(queueCredentials, log)
	if err != nil {
		log.Warn("rabbitmq unavailable, batch submission disabled", zap.Error(err))
	} else {
		batchQueue = queue.NewBatchQueue(rabbitQueue, log)
		queue.RunWorkers(cfg.Batch.Workers, func() error {
			return batchQueue.Consume(func(env queue.CaseEnvelope) {
				runBatchCase(log, oracle, evalRepo, env)
			})
		}, log)
	}

	healthCfg := &health.Config{Version: cfg.App.Version, NatsURL: cfg.NATS.URL}
	if sqlDB, err := db.DB(); err == nil {
		healthCfg.DB = sqlDB
	}
	if opts, err := redis.ParseURL(cfg.Redis.URL); err == nil {
		healthCfg.Redis = redis.NewClient(opts)
	}
	healthSvc := health.NewService(healthCfg, log)

	var publisher runs.BatchPublisher
	if batchQueue != nil {
		publisher = batchQueue
	}
	runsHandler := handlers.NewRunsHandler(runsService, publisher)

	app := fiber.New(fiber.Config{
		ErrorHandler: customMiddleware.ErrorHandler(log),
	})

	if cfg.CORS.Enabled {
		app.Use(customMiddleware.NewCORS(cfg.CORS))
	}
	app.Use(customMiddleware.CircuitBreaker(cfg.CircuitBreaker, log))

	health.NewFiberHandler(healthSvc).RegisterRoutes(app)
	if cfg.Prometheus.Enabled {
		promHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
		app.Get(cfg.Prometheus.Path, func(c *fiber.Ctx) error {
			promHandler(c.Context())
			return nil
		})
	}

	v1 := app.Group("/v1")
	v1.Get("/runs/:id", runsHandler.GetRun)
	v1.Get("/runs/:id/evaluation", runsHandler.GetEvaluation)

	authed := v1.Group("", customMiddleware.BearerAuth(cfg.JWT.Secret))
	authed.Post("/runs", runsHandler.SubmitRun)
	authed.Post("/batches", runsHandler.SubmitBatch)

	go func() {
		addr := ":" + strconv.Itoa(cfg.HTTP.Port)
		log.Info("http server listening", zap.String("addr", addr))
		if err := app.Listen(addr); err != nil {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(shutdownCtx)

	if rabbitQueue != nil {
		_ = rabbitQueue.Close()
	}
	if natsQueue != nil {
		_ = natsQueue.Close()
	}
	_ = cacheStore.Close()
	_ = postgres.Close(db)
}

// runBatchCase runs one case a worker popped off the batch queue and
// persists its evaluation under the case name as run ID, mirroring the save
// step of runs.Service for cases submitted through POST /v1/batches.
func runBatchCase(log *zap.Logger, oracle *cache.CachedOracle, store *postgres.EvaluationRepository, env queue.CaseEnvelope) {
	f, err := simulation.New(log, env.Grid(), oracle, env.Params, env.SchedulerParams, env.Timetable)
	if err != nil {
		telemetry.RecordBatchCase(false)
		log.Error("batch case construction failed", zap.String("case", env.Name), zap.Error(err))
		return
	}

	ev, err := f.Run()
	telemetry.RecordBatchCase(err == nil)
	if err != nil {
		log.Error("batch case run failed", zap.String("case", env.Name), zap.Error(err))
		return
	}

	if err := store.Save(context.Background(), env.Name, env.Name, ev); err != nil {
		log.Error("persisting batch case evaluation failed", zap.String("case", env.Name), zap.Error(err))
	}
}
