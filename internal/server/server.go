// Package server serves the contract upload UI and JSON API.
package server

import (
	"embed"
	"errors"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/template/html/v3"
	"go.uber.org/zap"

	"github.com/ppiankov/rainier/internal/metrics"
	"github.com/ppiankov/rainier/internal/model"
	"github.com/ppiankov/rainier/internal/pipeline"
)

//go:embed views
var viewsFS embed.FS

// multipartOverhead is allowed on top of the upload limit for form framing
const multipartOverhead = 64 << 10

// Server wraps the Fiber app and configuration.
type Server struct {
	App      *fiber.App
	Cfg      *model.Config
	pipeline *pipeline.Pipeline
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// New creates a new server with middleware and routes configured.
func New(cfg *model.Config, p *pipeline.Pipeline, m *metrics.Metrics, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}

	views, err := fs.Sub(viewsFS, "views")
	if err != nil {
		return nil, err
	}
	engine := html.NewFileSystem(http.FS(views), ".html")

	s := &Server{
		Cfg:      cfg,
		pipeline: p,
		metrics:  m,
		logger:   log,
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.Server.Title,
		Views:        engine,
		ViewsLayout:  "layouts/main",
		BodyLimit:    cfg.Server.MaxUploadBytes + multipartOverhead,
		ErrorHandler: s.errorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())

	// Rate limiting middleware, per client IP, for analysis endpoints only
	if cfg.Server.RequestsPerMin > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.Server.RequestsPerMin,
			Expiration: 1 * time.Minute,
			Next: func(c fiber.Ctx) bool {
				return c.Method() != fiber.MethodPost
			},
			KeyGenerator: func(c fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c fiber.Ctx) error {
				return jsonError(c, fiber.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			},
		}))
	}

	s.App = app
	s.RegisterRoutes()

	return s, nil
}

// errorHandler renders the error view, or the JSON envelope for API routes
func (s *Server) errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	} else {
		s.logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	}

	if strings.HasPrefix(c.Path(), "/api/") {
		return jsonError(c, code, message)
	}

	return c.Status(code).Render("error", fiber.Map{
		"Title":     "Error",
		"Message":   message,
		"SiteTitle": s.Cfg.Server.Title,
	})
}

// Start starts the server on the configured address.
func (s *Server) Start() error {
	s.logger.Info("starting server", zap.String("addr", s.Cfg.Server.Addr))
	return s.App.Listen(s.Cfg.Server.Addr, fiber.ListenConfig{DisableStartupMessage: !s.Cfg.Server.IsDev()})
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.App.Shutdown()
}
