package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/schooldir/internal/app/controllers"
	appMigrations "github.com/yigit/schooldir/internal/app/migrations"
	appRepos "github.com/yigit/schooldir/internal/app/repositories"
	appRoutes "github.com/yigit/schooldir/internal/app/routes"
	appServices "github.com/yigit/schooldir/internal/app/services"
	"github.com/yigit/schooldir/internal/config"
	"github.com/yigit/schooldir/internal/db"
	appMiddleware "github.com/yigit/schooldir/internal/middleware"
	"github.com/yigit/schooldir/internal/pkg/filestorage"
	"github.com/yigit/schooldir/internal/pkg/imageproc"
	"github.com/yigit/schooldir/internal/pkg/logger"
	"github.com/yigit/schooldir/internal/seed"
)

// maxMultipartMemory is how much of a multipart body gin keeps in memory
// before spilling parts to temporary files.
const maxMultipartMemory = 8 << 20

// Dependencies holds all the application dependencies
type Dependencies struct {
	Database         *db.PostgresDB
	Repos            *appRepos.Repositories
	FileStorage      *filestorage.LocalStorage
	SchoolService    appServices.SchoolService // Interface type
	SchoolController *appControllers.SchoolController
	HealthController *appControllers.HealthController
	Logger           zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	if configPath == "" {
		configPath = config.DefaultPath
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: strings.EqualFold(cfg.Logging.Format, "text"),
	})

	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase connects to PostgreSQL and applies the embedded migrations.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg, lgr)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	lgr.Info().Msg("Running database migrations...")
	if _, err := appMigrations.NewMigrator(database.Pool, lgr).Migrate(ctx, appMigrations.Embedded()); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}

	return database, nil
}

// NewFileStorage creates the image and scratch directories from the config.
func NewFileStorage(cfg *config.Config) (*filestorage.LocalStorage, error) {
	storage, err := filestorage.NewLocalStorage(cfg.ImageDirPath(), cfg.ImageURLPrefix(), cfg.Storage.TempDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}
	return storage, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(ctx context.Context, cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Database: database, Logger: lgr}

	deps.Repos = appRepos.NewRepositories(database.Pool)

	var err error
	deps.FileStorage, err = NewFileStorage(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, err
	}

	if cfg.Seed.DemoData {
		if _, err := seed.CreateDemoSchools(ctx, deps.Repos.SchoolRepository, deps.FileStorage, logger.WithComponent("seed")); err != nil {
			// Demo data is optional, the API works without it.
			lgr.Error().Err(err).Msg("Failed to create demo data, proceeding anyway...")
		}
	}

	deps.SchoolService = appServices.NewSchoolService(
		deps.Repos.SchoolRepository,
		deps.FileStorage,
		imageproc.NewJPEGTranscoder(),
	)

	deps.SchoolController = appControllers.NewSchoolController(deps.SchoolService)
	deps.HealthController = appControllers.NewHealthController(database)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	switch {
	case cfg.IsProduction():
		gin.SetMode(gin.ReleaseMode)
	case strings.EqualFold(cfg.Server.Mode, "test"):
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}
	lgr.Info().Str("mode", gin.Mode()).Msg("Gin mode set")

	router := gin.New()
	router.MaxMultipartMemory = maxMultipartMemory
	router.Use(
		appMiddleware.RequestID(),
		appMiddleware.RequestLogger(),
		appMiddleware.Recovery(),
		appMiddleware.CORS(cfg.Server.CORSOrigins),
	)

	appRoutes.SetupRouter(router, deps.SchoolController, deps.HealthController, appRoutes.Options{
		MaxUploadBytes:  cfg.Storage.MaxUploadBytes,
		CreateRateLimit: cfg.Server.RateLimit,
	})
	appRoutes.SetupSwagger(router)

	// Transcoded photos are served as-is; directory listings are disabled.
	router.StaticFS(cfg.ImageURLPrefix(), gin.Dir(cfg.ImageDirPath(), false))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
