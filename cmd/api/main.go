package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mycrochip/trivia-api/internal/config"
	"github.com/mycrochip/trivia-api/internal/domain/repository"
	"github.com/mycrochip/trivia-api/internal/handler"
	"github.com/mycrochip/trivia-api/internal/logging"
	"github.com/mycrochip/trivia-api/internal/metrics"
	"github.com/mycrochip/trivia-api/internal/middleware"
	"github.com/mycrochip/trivia-api/internal/repository/postgres"
	redisrepo "github.com/mycrochip/trivia-api/internal/repository/redis"
	"github.com/mycrochip/trivia-api/internal/service"
	"github.com/mycrochip/trivia-api/internal/service/quizmanager"
	"github.com/mycrochip/trivia-api/pkg/database"
)

func main() {
	configPath := config.PathFromEnv()
	cfg, err := config.Load(configPath)
	if err != nil {
		// логгер ещё не настроен
		bootLog := logging.New("trivia-api", "development", "info")
		bootLog.Fatal().Err(err).Str("path", configPath).Msg("failed to load config")
	}

	log := logging.New("trivia-api", cfg.Log.Env, cfg.Log.Level)
	log.Info().Str("path", configPath).Msg("config loaded")

	gin.SetMode(cfg.Server.Mode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Подключаемся к базе данных
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString(), database.PoolOptions{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	sqlDB, err := database.GetSQLDB(db)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to get sql.DB")
	}
	defer sqlDB.Close()

	if err := database.MigrateDB(db, cfg.Database.MigrationsURL, log); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	// Redis необязателен: без него кеш категорий и rate limiting выключены
	var (
		redisClient redis.UniversalClient
		cacheRepo   repository.CacheRepository = redisrepo.NoopCache{}
	)
	if cfg.Redis.Enabled() {
		redisClient, err = database.NewUniversalRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, category cache and rate limiting disabled")
		} else {
			defer redisClient.Close()
			repo, err := redisrepo.NewCacheRepo(redisClient)
			if err != nil {
				log.Fatal().Err(err).Msg("failed to initialize cache repository")
			}
			cacheRepo = repo
			log.Info().Strs("addrs", cfg.Redis.Addresses()).Msg("connected to redis")
		}
	}

	// Метрики
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry)

	// Репозитории
	questionRepo := postgres.NewQuestionRepo(db)
	categoryRepo := postgres.NewCategoryRepo(db)

	// Сервисы
	categoryService := service.NewCategoryService(categoryRepo, cacheRepo, cfg.Cache.CategoriesTTL, log)
	questionService := service.NewQuestionService(questionRepo, categoryRepo, log)
	quizService := service.NewQuizService(questionRepo, categoryRepo, quizmanager.NewSelector(), appMetrics, log)

	var rateLimit gin.HandlerFunc
	if cfg.RateLimit.Enabled && redisClient != nil {
		limitCfg := middleware.DefaultRateLimitConfig()
		limitCfg.MaxRequests = cfg.RateLimit.MaxRequests
		limitCfg.Window = cfg.RateLimit.Window
		rateLimit = middleware.NewRateLimiter(redisClient).Limit(limitCfg)
		log.Info().Int("max_requests", limitCfg.MaxRequests).Dur("window", limitCfg.Window).Msg("rate limiting enabled")
	}

	router := handler.NewRouter(handler.RouterConfig{
		Logger:       log,
		Metrics:      appMetrics,
		Category:     handler.NewCategoryHandler(categoryService, questionService),
		Question:     handler.NewQuestionHandler(questionService, categoryService, appMetrics),
		Quiz:         handler.NewQuizHandler(quizService),
		Health:       handler.NewHealthHandler(sqlDB),
		RateLimit:    rateLimit,
		AllowOrigins: cfg.CORS.AllowOrigins,
	})

	// HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return
	}

	log.Info().Msg("server exited properly")
}
