// Package bootstrap assembles the application graph from configuration.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"docvault-backend/internal/auth"
	"docvault-backend/internal/documents"
	"docvault-backend/internal/ingestion"
	"docvault-backend/internal/queue"
	"docvault-backend/internal/shared/config"
	"docvault-backend/internal/shared/server"
	"docvault-backend/internal/shared/storage/db"
	"docvault-backend/internal/shared/storage/object"
	localstore "docvault-backend/internal/shared/storage/object/local"
	s3store "docvault-backend/internal/shared/storage/object/s3"
	"docvault-backend/internal/users"
)

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore

	AsynqClient *asynq.Client

	UsersRepo      users.Repo
	DocumentsRepo  documents.Repo
	IngestionsRepo ingestion.Repo

	UsersService     *users.Service
	AuthService      *auth.Service
	DocumentsService *documents.Service
	IngestionService *ingestion.Service

	AuthHandler      *auth.Handler
	UsersHandler     *users.Handler
	DocumentsHandler *documents.Handler
	IngestionHandler *ingestion.Handler
}

// Build prepares shared dependencies and the route tree.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:      cfg,
		DB:          sqlDB,
		Store:       store,
		AsynqClient: buildQueueClient(cfg),
	}
	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:           app.Config,
		AuthHandler:      app.AuthHandler,
		DocumentHandler:  app.DocumentsHandler,
		IngestionHandler: app.IngestionHandler,
		UserHandler:      app.UsersHandler,
	})

	return app, nil
}

// Close releases held connections.
func (a *App) Close() {
	if a.AsynqClient != nil {
		_ = a.AsynqClient.Close()
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: migrations failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Endpoint) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_ENDPOINT")
		}
		return s3store.New(ctx, s3store.Options{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			UseSSL:    cfg.S3UseSSL,
		})
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

// buildQueueClient returns nil when no redis address is configured; triggered
// ingestion runs then stay queued without a task being submitted.
func buildQueueClient(cfg config.Config) *asynq.Client {
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		log.Printf("bootstrap: REDIS_ADDR empty; ingestion queue disabled")
		return nil
	}
	return asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

func buildServices(app *App) {
	if app.DB != nil {
		app.UsersRepo = &users.PGRepo{DB: app.DB}
		app.DocumentsRepo = &documents.PGRepo{DB: app.DB}
		app.IngestionsRepo = &ingestion.PGRepo{DB: app.DB}
	} else {
		app.UsersRepo = users.NewMemoryRepo()
		app.DocumentsRepo = documents.NewMemoryRepo()
		app.IngestionsRepo = ingestion.NewMemoryRepo()
	}

	app.UsersService = users.NewService(app.UsersRepo, app.Config.BcryptCost)
	app.AuthService = auth.NewService(app.UsersRepo, app.Config.BcryptCost, app.Config.JWTTTL)
	app.DocumentsService = documents.NewService(app.DocumentsRepo, app.Store)
	// Ingestion runs follow their document, matching the FK cascade.
	app.DocumentsService.OnRemove = app.IngestionsRepo.DeleteByDocument

	var enq queue.Enqueuer
	if app.AsynqClient != nil {
		enq = queue.NewAsynqEnqueuer(app.AsynqClient)
	}
	app.IngestionService = ingestion.NewService(app.IngestionsRepo, app.DocumentsService, enq)

	app.AuthHandler = auth.NewHandler(app.AuthService)
	app.UsersHandler = users.NewHandler(app.UsersService)
	app.DocumentsHandler = documents.NewHandler(app.DocumentsService, app.Store)
	app.IngestionHandler = ingestion.NewHandler(app.IngestionService)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
