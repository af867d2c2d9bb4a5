package router

import (
	"context"
	"net/http"

	"app/internal/api/v1/handler"
	"app/internal/cache"
	"app/internal/config"
	"app/internal/database"
	"app/internal/media"
	"app/internal/middleware"
	"app/internal/repository"
	"app/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// New wires the full dependency graph and returns the root handler plus the
// database pool for the caller to close on shutdown.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (http.Handler, *pgxpool.Pool, error) {
	if err := database.Migrate(cfg.DBConnectionString); err != nil {
		return nil, nil, err
	}

	pool, err := database.Connect(ctx, cfg.DBConnectionString)
	if err != nil {
		return nil, nil, err
	}
	logger.Info().Msg("Database connection successful")

	mediaSvc, err := media.NewCloudinary(cfg.CloudinaryURL, cfg.CloudinaryFolder)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	pageCache := cache.NewNoop()
	if cfg.RedisAddr != "" {
		pageCache, err = cache.NewRedis(ctx, cfg.RedisAddr)
		if err != nil {
			// The cache is an optimization; run uncached rather than
			// refusing to start.
			logger.Warn().Err(err).Msg("Redis unavailable, page caching disabled")
			pageCache = cache.NewNoop()
		}
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepo(pool)
	imageRepo := repository.NewImageRepo(pool)

	userSvc := service.NewUserService(userRepo, cfg.StartingCredits, logger)
	imageSvc := service.NewImageService(imageRepo, userRepo, mediaSvc, pageCache, cfg.PageCacheTTL, logger)
	transformSvc := service.NewTransformationService(
		userSvc, imageSvc, mediaSvc,
		cfg.CreditFee, cfg.DebounceWindow, cfg.SessionTTL, logger)

	userHandler := handler.NewUserHandler(userSvc, imageSvc, validate, cfg.PageSize, logger)
	imageHandler := handler.NewImageHandler(imageSvc, userSvc, validate, cfg.PageSize, logger)
	transformHandler := handler.NewTransformationHandler(transformSvc, userSvc, mediaSvc, validate, logger)

	authMiddleware := middleware.AuthMiddleware(cfg.JWTKey)

	apiV1Mux := http.NewServeMux()
	userHandler.RegisterRoutes(apiV1Mux, authMiddleware)
	imageHandler.RegisterRoutes(apiV1Mux, authMiddleware)
	transformHandler.RegisterRoutes(apiV1Mux, authMiddleware)

	mux := http.NewServeMux()
	mux.Handle("/v1/", http.StripPrefix("/v1", apiV1Mux))
	mux.Handle("/metrics", middleware.MetricsHandler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := pool.Ping(r.Context()); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	root := middleware.MetricsMiddleware(c.Handler(mux))
	return middleware.LoggerMiddleware(logger, root), pool, nil
}
