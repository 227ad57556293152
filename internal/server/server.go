package server

import (
	"fmt"
	"net/http"
	"time"

	"serviprox/internal/config"
	"serviprox/internal/domain"
	custommiddleware "serviprox/internal/middleware"
	"serviprox/internal/repository"
	"serviprox/internal/service"
	"serviprox/internal/store"
	"serviprox/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	redis  *redis.Client
}

// NewServer wires the store, repositories, services and handlers into one
// HTTP server. redisClient may be nil when the Redis backend is not in use;
// rate limiting is only enabled when it is present.
func NewServer(cfg *config.Config, logger *zap.Logger, kv store.KV, redisClient *redis.Client) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.Server.Env == "development"))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))

	if redisClient != nil {
		router.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.RequestsPerWindow,
			Window:            time.Duration(cfg.RateLimit.WindowSeconds) * time.Second,
			KeyPrefix:         "ratelimit",
		}, logger))
	}

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Initialize repositories
	mutator := store.NewMutator(kv)
	listingRepo := repository.NewListingRepository(kv, mutator, domain.StaticListings(), logger)
	favoritesRepo := repository.NewFavoritesRepository(kv, mutator, logger)

	// Initialize services
	catalogService := service.NewCatalogService(listingRepo, favoritesRepo, logger)
	publisherService := service.NewPublisherService(listingRepo, logger)
	bookingService := service.NewBookingService(nil, cfg.Bookings.AssetURL, logger)
	accountService := service.NewAccountService(kv, logger)

	// Initialize handlers
	catalogHandler := transport.NewCatalogHandler(catalogService, logger)
	publishHandler := transport.NewPublishHandler(publisherService, logger)
	bookingHandler := transport.NewBookingHandler(bookingService, logger)
	accountHandler := transport.NewAccountHandler(accountService, logger)

	// Register routes
	catalogHandler.RegisterRoutes(router)
	publishHandler.RegisterRoutes(router)
	bookingHandler.RegisterRoutes(router)
	accountHandler.RegisterRoutes(router)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		redis:  redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
