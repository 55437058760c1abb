// routes.go - Route registration helpers
package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pdf-qa-gen/frontend/internal/config"
	"github.com/pdf-qa-gen/frontend/internal/storage"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Controller Controller
	Store      storage.Store
	Logger     *slog.Logger
	Version    string
	BackendURL string
}

// Handlers holds all handler instances
type Handlers struct {
	Health    HealthHandler
	Upload    UploadHandler
	State     StateHandler
	Export    ExportHandler
	WebSocket *WebSocketHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		Health:    NewHealthHandler(deps.Version, deps.BackendURL, deps.Controller),
		Upload:    NewUploadHandler(deps.Controller, deps.Store, logger),
		State:     NewStateHandler(deps.Controller),
		Export:    NewExportHandler(deps.Controller),
		WebSocket: NewWebSocketHandler(deps.Controller, logger),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	apiGroup := e.Group("/api")

	apiGroup.GET("/health", handlers.Health.HandleHealth)

	apiGroup.GET("/state", handlers.State.HandleState)
	apiGroup.GET("/progress", handlers.State.HandleProgress)
	apiGroup.GET("/ws", handlers.WebSocket.HandleWebSocket)

	apiGroup.POST("/upload", handlers.Upload.HandleUpload)
	apiGroup.POST("/reset", handlers.Upload.HandleReset)

	apiGroup.GET("/export", handlers.Export.HandleExport)
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo, cfg *config.AppConfig, logger *slog.Logger) {
	e.HTTPErrorHandler = ErrorHandler

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !cfg.Advanced.EnableRequestLogging {
				return true
			}
			path := c.Request().URL.Path
			return path == "/api/health" ||
				path == "/api/state" ||
				path == "/api/progress"
		},
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency}
			if v.Error != nil {
				logger.Warn("request failed", append(attrs, "error", v.Error)...)
				return nil
			}
			logger.Info("request", attrs...)
			return nil
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))

	if cfg.Advanced.EnableCompression {
		e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
			Level: cfg.Advanced.CompressionLevel,
			Skipper: func(c echo.Context) bool {
				return strings.HasSuffix(c.Request().URL.Path, "/ws")
			},
		}))
	}

	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}
}
