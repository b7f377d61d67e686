// Package bootstrap assembles the application from configuration: storage,
// repositories, services, handlers and the HTTP router.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docproc-backend/internal/documents"
	"docproc-backend/internal/exports"
	"docproc-backend/internal/processing"
	"docproc-backend/internal/shared/config"
	"docproc-backend/internal/shared/server"
	"docproc-backend/internal/shared/storage/db"
	"docproc-backend/internal/shared/storage/object"
	localstore "docproc-backend/internal/shared/storage/object/local"
	s3store "docproc-backend/internal/shared/storage/object/s3"
	"docproc-backend/internal/tags"
	"docproc-backend/internal/users"
	"docproc-backend/internal/versions"
)

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore

	UsersRepo     users.Repo
	DocumentsRepo documents.Repo
	TagsRepo      tags.Repo
	VersionsRepo  versions.Repo

	UsersService     *users.Service
	TagsService      *tags.Service
	DocumentsService *documents.Service
	Dispatcher       *processing.Dispatcher

	UsersHandler    *users.Handler
	DocumentHandler *documents.Handler
	TagsHandler     *tags.Handler
	ExportsHandler  *exports.Handler
	CallbackHandler *processing.Handler
}

// Build prepares the full application. With an empty or unreachable
// DATABASE_URL in dev, it falls back to in-memory repositories.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
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
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
	}
	buildServices(app)

	localUploadsDir := ""
	if local, ok := store.(*localstore.Store); ok {
		localUploadsDir = local.BaseDir()
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		UsersHandler:    app.UsersHandler,
		DocumentHandler: app.DocumentHandler,
		TagsHandler:     app.TagsHandler,
		ExportsHandler:  app.ExportsHandler,
		CallbackHandler: app.CallbackHandler,
		ResolveUser:     app.UsersService.Exists,
		LocalUploadsDir: localUploadsDir,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: migrations failed; using in-memory repositories: %v", err)
			sqlDB.Close()
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildServices(app *App) {
	var userRepo users.Repo
	var docRepo documents.Repo
	var tagRepo tags.Repo
	var versionRepo versions.Repo

	if app.DB != nil {
		userRepo = &users.PGRepo{DB: app.DB}
		docRepo = &documents.PGRepo{DB: app.DB}
		tagRepo = &tags.PGRepo{DB: app.DB}
		versionRepo = &versions.PGRepo{DB: app.DB}
	} else {
		userRepo = users.NewMemoryRepo()
		docRepo = documents.NewMemoryRepo()
		tagRepo = tags.NewMemoryRepo()
		versionRepo = versions.NewMemoryRepo()
	}

	userSvc := users.NewService(userRepo, app.Config.SignupCode)
	tagSvc := tags.NewService(tagRepo)

	dispatcher := &processing.Dispatcher{
		Repo:          docRepo,
		Client:        &http.Client{},
		WebhookURL:    app.Config.WebhookURL,
		PublicBaseURL: app.Config.PublicBaseURL,
		Timeout:       app.Config.DispatchTimeout,
		MaxAttempts:   app.Config.DispatchMaxAttempts,
	}

	docSvc := &documents.Service{
		Store:            app.Store,
		Repo:             docRepo,
		Tags:             tagSvc,
		Versions:         versionRepo,
		Dispatcher:       dispatcher,
		CallbackTokenTTL: app.Config.CallbackTokenTTL,
	}

	app.UsersRepo = userRepo
	app.DocumentsRepo = docRepo
	app.TagsRepo = tagRepo
	app.VersionsRepo = versionRepo
	app.UsersService = userSvc
	app.TagsService = tagSvc
	app.DocumentsService = docSvc
	app.Dispatcher = dispatcher

	app.UsersHandler = users.NewHandler(userSvc, app.Config.AccessTokenTTL)
	app.DocumentHandler = documents.NewHandler(docSvc)
	app.TagsHandler = tags.NewHandler(tagSvc)
	app.ExportsHandler = exports.NewHandler(docSvc)
	app.CallbackHandler = processing.NewHandler(docRepo)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
