// Package main is the entrypoint for the GlycoGuard API server.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/glycoguard/glycoguard/internal/auth"
	"github.com/glycoguard/glycoguard/internal/cache"
	"github.com/glycoguard/glycoguard/internal/config"
	"github.com/glycoguard/glycoguard/internal/handler"
	"github.com/glycoguard/glycoguard/internal/metrics"
	"github.com/glycoguard/glycoguard/internal/middleware"
	"github.com/glycoguard/glycoguard/internal/nutrition"
	"github.com/glycoguard/glycoguard/internal/oracle"
	"github.com/glycoguard/glycoguard/internal/repository"
	"github.com/glycoguard/glycoguard/internal/server"
	"github.com/glycoguard/glycoguard/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", config.SanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", config.RedactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	if cfg.DBAutoMigrate {
		if err := repo.Migrate(ctx); err != nil {
			logger.Error("failed to apply migrations", slog.String("error", config.SanitizeError(err, cfg.DatabaseURL)))
			repo.Close()
			os.Exit(1)
		}
		logger.Info("database schema up to date")
	}

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", config.SanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", config.RedactURL(cfg.RedisURL)),
		)
		repo.Close()
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	classifier := loadOracle(cfg, logger)

	formula, err := nutrition.ParseFormula(cfg.NutritionBMRFormula)
	if err != nil {
		logger.Error("invalid nutrition formula", "error", err)
		os.Exit(1)
	}

	// Initialize services
	recorder := metrics.NewPrometheus()
	tokens := auth.NewTokenIssuer([]byte(cfg.JWTSecret), cfg.JWTTTL, cfg.JWTIssuer)
	authService := service.NewAuthService(repo, cacheClient, tokens, logger, recorder)
	predictionService := service.NewPredictionService(classifier, repo, logger, recorder, cfg.HistoryWriteTimeout)
	nutritionService := service.NewNutritionService(nutrition.NewCalculator(formula))

	deps := routerDeps{
		root:       handler.New(logger),
		health:     handler.NewHealthHandler(logger, repo, cacheClient, classifier),
		auth:       handler.NewAuthHandler(authService, logger),
		prediction: handler.NewPredictionHandler(predictionService, logger),
		nutrition:  handler.NewNutritionHandler(nutritionService, logger),
		identity:   authService,
		limiter:    cacheClient,
		metrics:    recorder,
	}
	r := setupRouter(deps, cfg, logger)

	srv := server.New(r, server.Config{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// Registered first, closed last.
	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(context.Context) error {
		return cacheClient.Close()
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"model", classifier.Kind(),
		"bmr_formula", string(formula),
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// loadOracle loads the model artifacts. A missing or broken artifact is
// logged and the server keeps running; scoring endpoints answer 503.
func loadOracle(cfg *config.Config, logger *slog.Logger) *oracle.Oracle {
	classifier, err := oracle.Load(cfg.ModelPath, cfg.ModelAccuracyPath)
	if err != nil {
		logger.Warn("model artifacts incomplete",
			"model_path", cfg.ModelPath,
			"accuracy_path", cfg.ModelAccuracyPath,
			"error", err,
		)
	}

	if classifier.Ready() {
		p, err := classifier.ClassifyOne(oracle.SampleFeatures)
		if err != nil {
			logger.Warn("model smoke check failed", "error", err)
		} else {
			logger.Info("model loaded", "kind", classifier.Kind(), "sample_probability", p)
		}
	}

	return classifier
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type routerDeps struct {
	root       *handler.Handler
	health     *handler.HealthHandler
	auth       *handler.AuthHandler
	prediction *handler.PredictionHandler
	nutrition  *handler.NutritionHandler
	identity   middleware.IdentityResolver
	limiter    middleware.RateLimiter
	metrics    *metrics.PrometheusRecorder
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(d routerDeps, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()}))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()
	r.Use(middleware.CORS(corsCfg))

	if d.metrics != nil {
		r.Use(d.metrics.Instrument)
		r.Method(http.MethodGet, "/metrics", d.metrics.Handler())
	}

	// Health endpoints
	r.Get("/healthz", d.health.Healthz)
	r.Get("/readyz", d.health.Readyz)

	r.Get("/", d.root.Hello)

	rateLimit := func(scope string) func(http.Handler) http.Handler {
		return middleware.RateLimitIP(middleware.RateLimitConfig{
			Logger:  logger,
			Limiter: d.limiter,
			Enabled: cfg.RateLimitEnabled,
			Scope:   scope,
			RPS:     cfg.RateLimitRPS,
			Burst:   cfg.RateLimitBurst,
		})
	}
	identity := func(req auth.Requirement) func(http.Handler) http.Handler {
		return middleware.Identity(middleware.IdentityConfig{
			Logger:      logger,
			Resolver:    d.identity,
			Requirement: req,
		})
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

		r.With(rateLimit("auth")).Post("/register", d.auth.Register)
		r.With(rateLimit("auth")).Post("/login", d.auth.Login)

		r.With(rateLimit("predict"), identity(auth.Optional)).Post("/predict", d.prediction.Predict)
		r.With(identity(auth.Mandatory)).Get("/history", d.prediction.History)
		r.Get("/model_accuracy", d.prediction.Accuracy)

		r.Post("/recommend", d.nutrition.Recommend)
		r.Post("/health_plan", d.nutrition.HealthPlan)
		r.Get("/foods", d.nutrition.Foods)
	})

	// Batch uploads get their own, larger body limit.
	r.With(middleware.MaxBodySize(cfg.MaxUploadSize), rateLimit("predict")).
		Post("/predict_csv", d.prediction.PredictCSV)

	r.NotFound(d.root.NotFound)
	r.MethodNotAllowed(d.root.MethodNotAllowed)

	return r
}
