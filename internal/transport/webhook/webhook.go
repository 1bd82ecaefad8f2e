// Package webhook exposes the attendance flow over HTTP with Fiber.
//
// Routes:
//
//	POST /events            one JSON event, responds with the outcome
//	GET  /reports/:date     day report for ?user_id=, gated like the report command
//	GET  /healthz           liveness plus backing-store ping
package webhook

import (
	"context"
	"io"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/roach88/presensi/internal/model"
	"github.com/roach88/presensi/internal/transport"
)

// Reporter serves day reports. *coordinator.Coordinator satisfies it.
type Reporter interface {
	Report(ctx context.Context, userID string, date model.Date) model.Outcome
}

// Options configures a Server.
type Options struct {
	Logger *slog.Logger
	// Reporter enables GET /reports/:date when set.
	Reporter Reporter
	// Health is called by GET /healthz; nil means always healthy.
	Health func(ctx context.Context) error
}

// Server wraps a Fiber app bound to a Handler.
type Server struct {
	app      *fiber.App
	handler  transport.Handler
	reporter Reporter
	health   func(ctx context.Context) error
	logger   *slog.Logger
}

// New builds the app and registers routes.
func New(h transport.Handler, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Server{
		app: fiber.New(fiber.Config{
			AppName:               "presensi",
			DisableStartupMessage: true,
		}),
		handler:  h,
		reporter: opts.Reporter,
		health:   opts.Health,
		logger:   logger,
	}

	s.app.Use(recover.New())
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	s.app.Post("/events", s.postEvent)
	s.app.Get("/healthz", s.getHealth)
	if s.reporter != nil {
		s.app.Get("/reports/:date", s.getReport)
	}
	return s
}

// App returns the underlying Fiber app, mainly for app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.logger.Info("webhook listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) postEvent(c *fiber.Ctx) error {
	var ev model.Event
	if err := c.BodyParser(&ev); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if err := ev.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	out := s.handler.Handle(c.UserContext(), ev)
	return c.Status(statusFor(out)).JSON(out)
}

func (s *Server) getReport(c *fiber.Ctx) error {
	date, err := model.ParseDate(c.Params("date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	userID := c.Query("user_id")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id is required"})
	}

	out := s.reporter.Report(c.UserContext(), userID, date)
	return c.Status(statusFor(out)).JSON(out)
}

func (s *Server) getHealth(c *fiber.Ctx) error {
	if s.health != nil {
		if err := s.health(c.UserContext()); err != nil {
			s.logger.Warn("health check failed", "error", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

// statusFor maps outcomes onto HTTP status codes. Expected negative
// results such as duplicate are still 200.
func statusFor(out model.Outcome) int {
	switch out.Kind {
	case model.OutcomeFailure:
		return fiber.StatusServiceUnavailable
	case model.OutcomeAccessDenied:
		return fiber.StatusForbidden
	default:
		return fiber.StatusOK
	}
}
