package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/masterblog/core/docs"
	httpHandlers "github.com/masterblog/core/internal/adapters/http"
	"github.com/masterblog/core/internal/application/services"
	"github.com/masterblog/core/internal/domain/entities"
	"github.com/masterblog/core/internal/infrastructure/config"
	"github.com/masterblog/core/internal/infrastructure/database"
	"github.com/masterblog/core/internal/infrastructure/logger"
	"github.com/masterblog/core/internal/infrastructure/metrics"
	"github.com/masterblog/core/internal/ports"
)

// Server represents the HTTP server
type Server struct {
	echo    *echo.Echo
	config  *config.Config
	logger  *logger.Logger
	repo    ports.PostRepository
	db      *database.DB
	metrics *metrics.Metrics
}

// CustomValidator wraps the validator
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates structs
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// New creates a new server instance. db is nil unless the postgres driver is in use.
func New(cfg *config.Config, repo ports.PostRepository, db *database.DB, appLogger *logger.Logger) (*Server, error) {
	e := echo.New()

	// Set custom validator
	e.Validator = &CustomValidator{validator: validator.New()}

	renderer, err := httpHandlers.NewTemplateRenderer(cfg.Templates.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	e.Renderer = renderer

	// Configure Echo
	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.App.Debug
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	e.Server.IdleTimeout = cfg.Server.IdleTimeout

	// Custom error handler
	e.HTTPErrorHandler = customErrorHandler(appLogger)

	server := &Server{
		echo:   e,
		config: cfg,
		logger: appLogger,
		repo:   repo,
		db:     db,
	}

	if cfg.Metrics.Enabled {
		server.metrics = metrics.New()
	}

	// Initialize services
	postService := services.NewPostService(repo, appLogger, server.metrics)
	bookService := services.NewBookService()

	// Initialize handlers
	postHandler := httpHandlers.NewPostHandler(postService, appLogger)
	bookHandler := httpHandlers.NewBookHandler(bookService, appLogger)

	// Setup middleware
	server.setupMiddleware()

	// Setup metrics
	if server.metrics != nil {
		server.setupMetrics()
	}

	// Setup routes
	server.setupRoutes(postHandler, bookHandler)

	return server, nil
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(postHandler *httpHandlers.PostHandler, bookHandler *httpHandlers.BookHandler) {
	// Health check routes
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/health/detailed", s.detailedHealthCheck)
	s.echo.GET("/ready", s.readinessCheck)

	// Swagger documentation
	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)

	s.echo.StaticFS("/static", httpHandlers.StaticFiles())

	// Blog pages
	s.echo.GET("/", postHandler.Index)
	s.echo.GET("/add", postHandler.AddForm)
	s.echo.POST("/add", postHandler.Add)
	s.echo.GET("/like/:id", postHandler.Like)
	s.echo.GET("/update/:id", postHandler.UpdateForm)
	s.echo.POST("/update/:id", postHandler.Update)
	s.echo.GET("/delete/:id", postHandler.Delete)

	// Books API
	api := s.echo.Group("/api")
	api.GET("/books", bookHandler.ListBooks)
	api.POST("/books", bookHandler.CreateBook)
}

// setupMetrics configures Prometheus metrics
func (s *Server) setupMetrics() {
	s.echo.Use(s.metrics.Middleware())
	s.echo.GET(s.config.Metrics.Path, echo.WrapHandler(s.metrics.Handler()))
}

// Health check handlers
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) detailedHealthCheck(c echo.Context) error {
	status := "ok"
	checks := make(map[string]interface{})

	if err := s.repo.Ping(c.Request().Context()); err != nil {
		status = "error"
		checks["storage"] = map[string]interface{}{
			"status": "error",
			"driver": s.config.Storage.Driver,
			"error":  err.Error(),
		}
	} else {
		checks["storage"] = map[string]interface{}{
			"status": "ok",
			"driver": s.config.Storage.Driver,
		}
	}

	if s.db != nil {
		if err := s.db.HealthCheck(c.Request().Context()); err != nil {
			status = "error"
			checks["database"] = map[string]interface{}{
				"status": "error",
				"error":  err.Error(),
			}
		} else {
			checks["database"] = map[string]interface{}{
				"status": "ok",
				"stats":  s.db.GetConnectionInfo(),
			}
		}
	}

	response := map[string]interface{}{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339),
		"checks": checks,
		"version": map[string]string{
			"app": s.config.App.Version,
		},
	}

	if status == "ok" {
		return c.JSON(http.StatusOK, response)
	}
	return c.JSON(http.StatusServiceUnavailable, response)
}

func (s *Server) readinessCheck(c echo.Context) error {
	if err := s.repo.Ping(c.Request().Context()); err != nil {
		s.logger.Warnw("Readiness check failed", "error", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"reason": "storage_not_ready",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Handler exposes the router, mainly for httptest
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start starts the HTTP server
func (s *Server) Start(address string) error {
	s.logger.Infow("Starting server", "address", address)
	return s.echo.Start(address)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Infow("Shutting down server")
	return s.echo.Shutdown(ctx)
}

// customErrorHandler maps domain and HTTP errors to responses. API routes
// get JSON bodies, pages get plain text.
func customErrorHandler(logger *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var (
			code       = http.StatusInternalServerError
			msg        = http.StatusText(http.StatusInternalServerError)
			he         *echo.HTTPError
			storageErr *entities.StorageError
		)

		switch {
		case errors.As(err, &he):
			code = he.Code
			msg = fmt.Sprint(he.Message)
			if he.Internal != nil {
				err = fmt.Errorf("%v, %v", err, he.Internal)
			}
		case errors.Is(err, entities.ErrPostNotFound):
			code = http.StatusNotFound
			msg = "Post not found"
		case errors.Is(err, context.DeadlineExceeded):
			code = http.StatusServiceUnavailable
			msg = http.StatusText(code)
		case errors.As(err, &storageErr):
			logger.Errorw("Storage failure",
				"op", storageErr.Op,
				"path", storageErr.Path,
				"error", storageErr.Err,
			)
		}

		if code >= http.StatusInternalServerError {
			logger.Errorw("Internal server error", "error", err, "path", c.Request().URL.Path)
		}

		// Send response
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else if strings.HasPrefix(c.Request().URL.Path, "/api/") {
			err = c.JSON(code, httpHandlers.ErrorResponse{Message: msg})
		} else {
			err = c.String(code, msg)
		}
		if err != nil {
			logger.Errorw("Error sending response", "error", err)
		}
	}
}
