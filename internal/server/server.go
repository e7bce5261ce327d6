package server

import (
	"fmt"
	"net/http"
	"time"

	"product-catalog/internal/config"
	custommiddleware "product-catalog/internal/middleware"
	"product-catalog/internal/service"
	"product-catalog/internal/transport"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config  *config.Config
	logger  *zap.Logger
	backend *Backend
}

func NewServer(cfg *config.Config, logger *zap.Logger, backend *Backend) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger, "/health"))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.IsDevelopment()))

	if limiter := rateLimiter(cfg, backend, logger); limiter != nil {
		router.Use(limiter)
	}

	router.NotFound(custommiddleware.NotFoundHandler)
	router.MethodNotAllowed(custommiddleware.MethodNotAllowedHandler)

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		report, healthy := backend.Health(r.Context())
		status := http.StatusOK
		report["status"] = "ok"
		if !healthy {
			status = http.StatusServiceUnavailable
			report["status"] = "unavailable"
		}
		custommiddleware.RespondWithJSON(w, status, report)
	})

	// Initialize services
	productService := service.NewProductService(backend.Products, backend.Publisher, logger)

	// Initialize handlers
	productHandler := transport.NewProductHandler(productService, logger)

	// Register routes
	productHandler.RegisterRoutes(router)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:  cfg,
		logger:  logger,
		backend: backend,
	}

	return server
}

// rateLimiter picks the Redis limiter when Redis is connected and the in-process one otherwise
func rateLimiter(cfg *config.Config, backend *Backend, logger *zap.Logger) func(http.Handler) http.Handler {
	if cfg.RateLimit.Requests <= 0 {
		return nil
	}

	limitConfig := custommiddleware.RateLimitConfig{
		RequestsPerWindow: cfg.RateLimit.Requests,
		Window:            cfg.RateLimit.Window,
		KeyPrefix:         "rate_limit",
	}

	if backend.Redis != nil {
		return custommiddleware.RateLimitMiddleware(backend.Redis, limitConfig, logger)
	}
	return custommiddleware.NewLocalRateLimiter(limitConfig).Middleware(logger)
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	s.backend.Close(s.logger)

	s.logger.Sync()
	return nil
}
