package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/pressly/goose"
	redisClient "github.com/redis/go-redis/v9"

	"github.com/polasekp/strats/internal/adapter/handler/http"
	"github.com/polasekp/strats/internal/adapter/logger"
	"github.com/polasekp/strats/internal/adapter/postgres"
	"github.com/polasekp/strats/internal/adapter/prometheus"
	"github.com/polasekp/strats/internal/adapter/redis"
	"github.com/polasekp/strats/internal/adapter/strava"
	"github.com/polasekp/strats/internal/config"
	"github.com/polasekp/strats/internal/core/ports"
	"github.com/polasekp/strats/internal/core/services"
)

type App struct {
	Config       *config.Container
	Logger       ports.LoggerPort
	DB           *sql.DB
	RedisClient  *redisClient.Client
	RedisAdapter ports.CachePort
	HTTPRouter   *http.Router

	ImportService   *services.ImportService
	StatsService    *services.StatsService
	DownloadService *services.DownloadService
	TokenService    *strava.TokenService
}

func New(ctx context.Context, cfg *config.Container) (*App, error) {
	// Set logger
	loggerAdapter := logger.NewLoggerAdapter(cfg.App.Env)
	loggerAdapter.Info("Starting the application", map[string]interface{}{
		"app": cfg.App.Name,
		"env": cfg.App.Env,
	})

	// Set redis
	redisConn := redisClient.NewClient(&redisClient.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if _, err := redisConn.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	cacheAdapter := redis.NewRedisAdapter(redisConn)

	// Connect DB
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name)
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Migrate DB
	if err := goose.Up(db, "./internal/adapter/postgres/migrations"); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Validate
	validate := validator.New()

	// Observability
	metrics := prometheus.NewPrometheusAdapter()

	// Repositories
	activityRepo := postgres.NewActivityRepository(db)
	gearRepo := postgres.NewGearRepository(db)
	accessoryRepo := postgres.NewAccessoryRepository(db)
	tagRepo := postgres.NewTagRepository(db)
	athleteRepo := postgres.NewAthleteRepository(db)
	tokenRepo := postgres.NewTokenRepository(db)

	// Strava source
	tokenService := strava.NewTokenService(cfg.Strava.ClientID, cfg.Strava.ClientSecret, tokenRepo, loggerAdapter)
	source := strava.NewClient(tokenService, loggerAdapter)
	downloader := strava.NewDownloader(cfg.Import.TrackDir, tokenService, loggerAdapter)

	// Services
	mapper := services.NewMapper(loggerAdapter)
	classifier := services.NewClassifier(activityRepo, tagRepo, loggerAdapter)
	gearResolver := services.NewGearResolver(gearRepo, activityRepo, source, loggerAdapter)
	importService := services.NewImportService(activityRepo, source, mapper, classifier, gearResolver,
		loggerAdapter, validate, metrics, cacheAdapter)
	statsService := services.NewStatsService(activityRepo, loggerAdapter, cacheAdapter)
	activityService := services.NewActivityService(activityRepo, athleteRepo, loggerAdapter)
	gearService := services.NewGearService(gearRepo, activityRepo, loggerAdapter, validate, cacheAdapter)
	accessoryService := services.NewAccessoryService(accessoryRepo, gearRepo, activityRepo, loggerAdapter, validate)
	downloadService := services.NewDownloadService(activityRepo, downloader, loggerAdapter)

	// HTTP Handlers
	activityHandler := http.NewActivityHandler(activityService, loggerAdapter)
	gearHandler := http.NewGearHandler(gearService, accessoryService, loggerAdapter)
	statsHandler := http.NewStatsHandler(statsService, loggerAdapter)
	importHandler := http.NewImportHandler(importService, downloadService, tokenService, loggerAdapter)

	// Init HTTP router
	router, err := http.NewRouter(
		cfg.HTTP,
		metrics,
		activityHandler,
		gearHandler,
		statsHandler,
		importHandler,
	)
	if err != nil {
		db.Close()
		redisConn.Close()
		return nil, fmt.Errorf("failed to initialize router: %w", err)
	}

	return &App{
		Config:          cfg,
		Logger:          loggerAdapter,
		DB:              db,
		RedisClient:     redisConn,
		RedisAdapter:    cacheAdapter,
		HTTPRouter:      router,
		ImportService:   importService,
		StatsService:    statsService,
		DownloadService: downloadService,
		TokenService:    tokenService,
	}, nil
}

// Runs the HTTP server
func (a *App) Run() error {
	listenAddr := fmt.Sprintf("%s:%s", a.Config.HTTP.URL, a.Config.HTTP.Port)
	a.Logger.Info("Starting HTTP server", map[string]interface{}{
		"addr": listenAddr,
	})

	if err := a.HTTPRouter.Serve(listenAddr); err != nil {
		a.Logger.Error("HTTP server error", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}
	return nil
}

// Stops all services
func (a *App) Stop(ctx context.Context) error {
	a.Logger.Info("Shutting down gracefully...", nil)

	// Close database
	if err := a.DB.Close(); err != nil {
		a.Logger.Error("Database close error", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Close Redis
	if err := a.RedisClient.Close(); err != nil {
		a.Logger.Error("Redis close error", map[string]interface{}{
			"error": err.Error(),
		})
	}

	a.Logger.Info("Application stopped successfully", nil)
	return nil
}
