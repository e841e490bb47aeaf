package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"careplan-backend/internal/account"
	googleauth "careplan-backend/internal/auth"
	"careplan-backend/internal/export"
	"careplan-backend/internal/recommend"
	"careplan-backend/internal/sessions"
	"careplan-backend/internal/shared/config"
	"careplan-backend/internal/shared/server"
	"careplan-backend/internal/shared/storage/db"
	"careplan-backend/internal/shared/storage/object"
	localstore "careplan-backend/internal/shared/storage/object/local"
	s3store "careplan-backend/internal/shared/storage/object/s3"
	"careplan-backend/internal/shared/telemetry"
	"careplan-backend/internal/usage"
	"careplan-backend/internal/users"
)

// App holds shared dependencies built from configuration.
type App struct {
	Config         config.Config
	Router         *gin.Engine
	DB             *sql.DB
	Store          object.ObjectStore
	Questions      recommend.QuestionDefs
	Rules          recommend.RuleTable
	SessionRepo    sessions.Repo
	ExportRepo     export.Repo
	UserRepo       users.Repo
	SessionService *sessions.Service
	ExportService  *export.Service
	UsageService   *usage.Service
	AccountService *account.Service
	UserService    *users.Service
	SessionHandler *sessions.Handler
	ExportHandler  *export.Handler
	UsageHandler   *usage.Handler
	UserHandler    *users.Handler
	AccountHandler *account.Handler
	GoogleAuth     *googleauth.GoogleService
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	questions, rules, err := loadEngineConfig(cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if sqlDB != nil {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:    cfg,
		DB:        sqlDB,
		Store:     store,
		Questions: questions,
		Rules:     rules,
	}

	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:         app.Config,
		SessionHandler: app.SessionHandler,
		ExportHandler:  app.ExportHandler,
		UsageHandler:   app.UsageHandler,
		UserHandler:    app.UserHandler,
		AccountHandler: app.AccountHandler,
		GoogleAuth:     app.GoogleAuth,
	})

	return app, nil
}

func loadEngineConfig(cfg config.Config) (recommend.QuestionDefs, recommend.RuleTable, error) {
	questions, err := recommend.LoadQuestionDefs(cfg.QuestionsPath)
	if err != nil {
		return nil, recommend.RuleTable{}, fmt.Errorf("load questions config: %w", err)
	}
	rules, err := recommend.LoadRuleTable(cfg.RulesPath)
	if err != nil {
		return nil, recommend.RuleTable{}, fmt.Errorf("load rules config: %w", err)
	}
	warnings, err := rules.Validate(questions)
	if err != nil {
		return nil, recommend.RuleTable{}, fmt.Errorf("validate rules config: %w", err)
	}
	for _, w := range warnings {
		telemetry.Warn("rules.config_warning", map[string]any{"warning": w})
	}
	return questions, rules, nil
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

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) {
	var sessionRepo sessions.Repo
	var exportRepo export.Repo
	var userRepo users.Repo

	if app.DB != nil {
		sessionRepo = &sessions.PGRepo{DB: app.DB}
		exportRepo = &export.PGRepo{DB: app.DB}
		userRepo = &users.PGRepo{DB: app.DB}
	} else {
		sessionRepo = sessions.NewMemoryRepo()
		exportRepo = export.NewMemoryRepo()
		userRepo = users.NewMemoryRepo()
	}

	var usageSvc *usage.Service
	if app.DB != nil {
		usageSvc = usage.NewPostgresService(usage.NewPGStore(app.DB))
	} else {
		usageSvc = usage.NewService()
	}

	sessionSvc := sessions.NewService(sessionRepo, app.Questions, app.Rules)
	sessionSvc.Usage = usageSvc

	exportSvc := &export.Service{
		Repo:     exportRepo,
		Sessions: sessionSvc,
		Store:    app.Store,
		Usage:    usageSvc,
	}

	userSvc := users.NewService(userRepo)
	googleAuthSvc := googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
		userSvc,
	)

	app.SessionRepo = sessionRepo
	app.ExportRepo = exportRepo
	app.UserRepo = userRepo
	app.SessionService = sessionSvc
	app.ExportService = exportSvc
	app.UsageService = usageSvc
	app.AccountService = account.NewService(sessionRepo, exportRepo)
	app.UserService = userSvc
	app.SessionHandler = sessions.NewHandler(sessionSvc)
	app.ExportHandler = export.NewHandler(exportSvc)
	app.UsageHandler = usage.NewHandler(usageSvc)
	app.UserHandler = users.NewHandler(userSvc)
	app.AccountHandler = account.NewHandler(app.AccountService)
	app.GoogleAuth = googleAuthSvc
}
