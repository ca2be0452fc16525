package main

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/sirupsen/logrus"

	"stockbook/internal/config"
	"stockbook/internal/http/handlers"
	"stockbook/internal/idgen"
	applog "stockbook/internal/log"
	"stockbook/internal/repos"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			logrus.Warnf("could not open log file %s: %v", cfg.LogFile, err)
		} else {
			defer f.Close()
			applog.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	if err := idgen.Init(1); err != nil {
		logrus.Fatalf("idgen: %v", err)
	}

	db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		logrus.Fatal(err)
	}
	defer db.Close()
	if err := repos.Seed(context.Background(), db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		logrus.Fatal(err)
	}

	engine := html.New(cfg.TemplatesDir, ".html")

	app := fiber.New(fiber.Config{
		Views: engine,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			code := fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				code = fe.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": "Something went wrong. Please try again."})
		},
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{Output: applog.Writer()}))
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/healthz")
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	}))

	deps := handlers.NewDeps(db, cfg)
	handlers.Routes(app, deps)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	})

	logrus.Infof("stockbook listening on :%s", cfg.Port)
	logrus.Fatal(app.Listen(":" + cfg.Port))
}
