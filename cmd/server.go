package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudeforte/accounts/pkg/config"
	"github.com/cloudeforte/accounts/pkg/errx"
	"github.com/cloudeforte/accounts/pkg/logx"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

func main() {
	cfg := config.Load()

	logx.Info("Starting CloudeForte Accounts API...")

	container := NewContainer(cfg)
	defer container.Cleanup()

	app := fiber.New(fiber.Config{
		AppName:               "CloudeForte Accounts API",
		DisableStartupMessage: true,
		ErrorHandler:          globalErrorHandler,
		BodyLimit:             cfg.Server.BodyLimit,
		IdleTimeout:           120 * time.Second,
	})

	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return uuid.NewString()
		},
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.Server.CORSOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods:  "GET, POST, PUT, DELETE, PATCH, HEAD, OPTIONS",
		ExposeHeaders: "X-Request-ID",
	}))

	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path} | ${ip} | ${reqHeader:X-Request-ID}\n",
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Local",
	}))

	app.Get("/health", healthCheckHandler(container))

	container.AccountHandlers.RegisterRoutes(app)
	logx.Info("Account routes registered")

	app.Use(notFoundHandler)

	startServer(app, cfg.Server.Port)
}

// healthCheckHandler pings the stores the service cannot run without.
func healthCheckHandler(container *Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		health := fiber.Map{
			"status":  "healthy",
			"service": "cloudeforte-accounts",
		}

		if err := container.DB.Ping(); err != nil {
			health["db"] = "unhealthy"
			health["status"] = "degraded"
		} else {
			health["db"] = "healthy"
		}

		if err := container.Redis.Ping(c.Context()).Err(); err != nil {
			health["redis"] = "unhealthy"
			health["status"] = "degraded"
		} else {
			health["redis"] = "healthy"
		}

		status := fiber.StatusOK
		if health["status"] == "degraded" {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(health)
	}
}

func notFoundHandler(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"success":    false,
		"message":    "The requested endpoint does not exist",
		"path":       c.Path(),
		"request_id": c.Get("X-Request-ID"),
	})
}

// globalErrorHandler converts internal errors to the standard response
// envelope. Domain failures carry their own status; anything unclassified
// surfaces as a 500 without leaking internals.
func globalErrorHandler(c *fiber.Ctx, err error) error {
	logx.WithFields(logx.Fields{
		"path":       c.Path(),
		"method":     c.Method(),
		"ip":         c.IP(),
		"request_id": c.Get("X-Request-ID"),
	}).Errorf("Request error: %v", err)

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"success":    false,
			"message":    fiberErr.Message,
			"request_id": c.Get("X-Request-ID"),
		})
	}

	var domainErr *errx.Error
	if errors.As(err, &domainErr) {
		response := fiber.Map{
			"success":    false,
			"message":    domainErr.Message,
			"code":       domainErr.Code,
			"request_id": c.Get("X-Request-ID"),
		}
		if len(domainErr.Details) > 0 {
			response["details"] = domainErr.Details
		}
		return c.Status(domainErr.HTTPStatus).JSON(response)
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success":    false,
		"message":    "An unexpected error occurred",
		"request_id": c.Get("X-Request-ID"),
	})
}

func startServer(app *fiber.App, port string) {
	go func() {
		logx.Infof("Server listening on port %s", port)
		if err := app.Listen(":" + port); err != nil {
			logx.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logx.Info("Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logx.Errorf("Forced shutdown: %v", err)
	}
	logx.Info("Server stopped")
}
