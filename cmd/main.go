package main

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"audit-log-search/config"
	_ "audit-log-search/docs"
	"audit-log-search/internal/controller"
	"audit-log-search/internal/elasticsearch"
	"audit-log-search/internal/kafka"
	"audit-log-search/internal/model"
	"audit-log-search/internal/mysql"
	"audit-log-search/internal/repository"
	"audit-log-search/internal/scheduler"
	"audit-log-search/internal/service"
	"audit-log-search/internal/store"
	"audit-log-search/internal/timescaledb"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title           Audit Log Search API
// @version         1.0
// @description     Paginated search over object storage audit logs, with webhook ingest, console sessions and saved searches.

// @host      localhost:8080
// @BasePath  /
// @schemes   http https

// @tag.name         logs
// @tag.description  Paginated audit log search

// @tag.name         console
// @tag.description  Server-held search sessions

// @tag.name         audit
// @tag.description  Audit webhook ingest

// @tag.name         presets
// @tag.description  Saved searches

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Audit webhook token, raw or with the Bearer prefix.

func main() {
	var wg sync.WaitGroup

	app := fx.New(
		// Core Dependencies
		fx.Provide(
			NewConfig,
		),
		// Infrastructure Dependencies
		fx.Provide(
			NewGinEngine,
			NewAuditBackend,
			NewLogRepository,
			NewAuditWriter,
			NewAuditPruner,
			NewSessionStore,
			NewAuditPublisher,
			NewAuditConsumerService,
			NewPresetService,
			mysql.NewDB,
			service.NewLogQueryService,
			service.NewAuditIngestService,
			service.NewSessionService,
			service.NewRetentionService,
			controller.NewLogController,
			controller.NewSessionController,
			NewAuditController,
			NewPresetController,
		),
		fx.Invoke(RegisterAPIRoutes,
			RegisterScheduler,
			func(lc fx.Lifecycle, consumerService service.AuditConsumerService) {
				startAuditConsumer(lc, &wg, consumerService)
			},
		),
	)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelStart()
	if err := app.Start(startCtx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}
	<-app.Done()

	stopCtx, cancelStop := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStop()
	log.Info().Msg("Shutting down application...")
	if err := app.Stop(stopCtx); err != nil {
		log.Error().Err(err).Msg("Forced shutdown due to error or timeout")
	}

	// The consumer drains its last batch after OnStop cancels it.
	log.Info().Msg("Waiting for background goroutines to finish...")
	wg.Wait()
	log.Info().Msg("All background processes finished. Exiting.")
}

func NewConfig() (*config.Config, error) {
	return config.NewConfig()
}

func NewGinEngine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// --- Factory Functions ---

// NewAuditBackend picks the search backend named by LOG_SEARCH_BACKEND.
func NewAuditBackend(lc fx.Lifecycle, cfg *config.Config) (repository.AuditBackend, error) {
	switch cfg.Search.Backend {
	case config.BackendMemory, "":
		log.Warn().Msg("Using in-memory audit store, records are lost on restart")
		return store.NewInMemoryAuditStore(), nil
	case config.BackendElasticsearch:
		return elasticsearch.NewElasticAuditBackend(lc, cfg)
	case config.BackendTimescaleDB:
		return timescaledb.NewTimescaleAuditBackend(lc, cfg)
	default:
		return nil, fmt.Errorf("unknown search backend %q", cfg.Search.Backend)
	}
}

func NewLogRepository(backend repository.AuditBackend) repository.LogRepository {
	return backend
}

func NewAuditWriter(backend repository.AuditBackend) repository.AuditWriter {
	return backend
}

func NewAuditPruner(backend repository.AuditBackend) repository.AuditPruner {
	return backend
}

func NewSessionStore(cfg *config.Config) store.SessionStore {
	return store.NewInMemorySessionStore(cfg.Console.SessionTTL, cfg.Console.MaxSessions)
}

// NewAuditPublisher sends webhook records to Kafka when brokers are
// configured and straight to the backend otherwise.
func NewAuditPublisher(lc fx.Lifecycle, cfg *config.Config, writer repository.AuditWriter) (service.AuditPublisher, error) {
	if !cfg.KafkaEnabled() {
		log.Info().Msg("Kafka not configured, audit records are written directly")
		return service.AuditPublisherFunc(writer.StoreRecords), nil
	}
	producer, err := kafka.NewKafkaAuditProducer(lc, cfg)
	if err != nil {
		return nil, err
	}
	return service.AuditPublisherFunc(func(ctx context.Context, records []model.AuditRecord) error {
		return producer.Produce(ctx, records)
	}), nil
}

// NewAuditConsumerService returns nil when Kafka is not configured.
func NewAuditConsumerService(lc fx.Lifecycle, cfg *config.Config, writer repository.AuditWriter) (service.AuditConsumerService, error) {
	if !cfg.KafkaEnabled() {
		return nil, nil
	}
	consumer, err := kafka.NewKafkaAuditConsumer(lc, cfg)
	if err != nil {
		return nil, err
	}
	return service.NewAuditConsumerService(consumer, writer, cfg), nil
}

// NewPresetService returns nil when no MySQL database is configured.
func NewPresetService(db *gorm.DB) service.PresetService {
	if db == nil {
		return nil
	}
	return service.NewPresetService(mysql.NewPresetRepository(db))
}

func NewPresetController(presetService service.PresetService) *controller.PresetController {
	if presetService == nil {
		return nil
	}
	return controller.NewPresetController(presetService)
}

func NewAuditController(ingestService service.AuditIngestService, cfg *config.Config) *controller.AuditController {
	if cfg.APIKey == "" {
		log.Warn().Msg("API_KEY is empty, the audit webhook accepts unauthenticated requests")
	}
	return controller.NewAuditController(ingestService, cfg.APIKey)
}

// --- Invoker Functions ---

func RegisterAPIRoutes(
	lifecycle fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	logController *controller.LogController,
	sessionController *controller.SessionController,
	auditController *controller.AuditController,
	presetController *controller.PresetController,
) {
	controller.RegisterLogRoutes(router, logController)
	controller.RegisterSessionRoutes(router, sessionController)
	controller.RegisterAuditRoutes(router, auditController)

	if presetController != nil {
		controller.RegisterPresetRoutes(router, presetController)
	} else {
		log.Warn().Msg("DATABASE_HOST not set, skipping saved search routes")
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Starting HTTP server on port %s", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error().Err(err).Msg("HTTP server ListenAndServe error")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Shutting down HTTP server...")
			return server.Shutdown(ctx)
		},
	})
}

func RegisterScheduler(lc fx.Lifecycle, cfg *config.Config, retentionSvc service.RetentionService, sessionSvc service.SessionService) error {
	_, err := scheduler.NewScheduler(lc, cfg, retentionSvc, sessionSvc)
	return err
}

// startAuditConsumer runs the consumer in a goroutine tied to the fx lifecycle.
func startAuditConsumer(lc fx.Lifecycle, wg *sync.WaitGroup, consumerService service.AuditConsumerService) {
	if consumerService == nil {
		return
	}
	wg.Add(1)
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			log.Info().Msg("Starting audit consumer goroutine")
			go consumerService.Run(ctx, wg)
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			log.Info().Msg("Signaling audit consumer goroutine to stop...")
			cancel()
			return nil
		},
	})
}
