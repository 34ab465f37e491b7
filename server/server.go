package server

import (
	"errors"
	"time"

	"curator/cache"
	"curator/config"
	"curator/curation"
	"curator/feeds"
	"curator/models"
	"curator/rewrite"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

type ServerConfig struct {

	// AllowOrigins configures CORS for the dashboard frontend
	AllowOrigins string

	// The curation orchestrator backing the API
	Orchestrator *curation.Orchestrator

	// The live article cache
	Cache *cache.Live

	// The feed source registry
	Registry *feeds.Registry
}

// Returns a fiber.App instance to be used as the HTTP server for the
// curation API
func Server(cfg *ServerConfig) *fiber.App {

	app := fiber.New()

	// Middleware to track the latency of each request
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		log.WithFields(log.Fields{
			"method":  c.Method(),
			"route":   c.Route().Path,
			"status":  c.Response().StatusCode(),
			"latency": time.Since(start),
		}).Info("Request")
		return err
	})

	app.Use(requestid.New(requestid.ConfigDefault))
	app.Use(compress.New())

	if cfg.AllowOrigins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowOrigins,
			AllowHeaders:     "Content-Type",
			AllowCredentials: true,
		}))
	}

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	// The full curation view: pending, selected, rewritten, published
	api.Get("/curation", func(c *fiber.Ctx) error {
		view, err := cfg.Orchestrator.View(c.Context())
		if err != nil {
			return apiError(c, err)
		}
		return c.JSON(view)
	})

	api.Post("/articles/select", func(c *fiber.Ctx) error {
		var article models.Article
		if err := c.BodyParser(&article); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid article payload"})
		}
		if article.URL == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "article url is required"})
		}

		curated, err := cfg.Orchestrator.Select(c.Context(), article)
		if err != nil {
			return apiError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(curated)
	})

	api.Delete("/articles/:id", func(c *fiber.Ctx) error {
		if err := cfg.Orchestrator.Deselect(c.Context(), c.Params("id")); err != nil {
			return apiError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	api.Post("/articles/:id/rewrite", func(c *fiber.Ctx) error {
		var opts rewrite.Options
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&opts); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid rewrite options"})
			}
		}

		article, err := cfg.Orchestrator.Rewrite(c.Context(), c.Params("id"), opts)
		if err != nil {
			return apiError(c, err)
		}
		return c.JSON(article)
	})

	api.Post("/articles/:id/publish", func(c *fiber.Ctx) error {
		article, err := cfg.Orchestrator.Publish(c.Context(), c.Params("id"))
		if err != nil {
			return apiError(c, err)
		}
		return c.JSON(article)
	})

	api.Get("/cache/status", func(c *fiber.Ctx) error {
		return c.JSON(cfg.Cache.Status())
	})

	api.Post("/cache/invalidate", func(c *fiber.Ctx) error {
		cfg.Cache.Invalidate()
		return c.SendStatus(fiber.StatusNoContent)
	})

	api.Get("/feeds", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"origin": cfg.Registry.Origin(),
			"feeds":  cfg.Registry.Sources(),
		})
	})

	api.Post("/feeds", func(c *fiber.Ctx) error {
		var source config.FeedConfig
		if err := c.BodyParser(&source); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid feed payload"})
		}
		if err := cfg.Registry.Add(source); err != nil {
			return apiError(c, err)
		}
		// Stale results computed against the old feed set must not be served.
		cfg.Cache.Invalidate()
		return c.Status(fiber.StatusCreated).JSON(source)
	})

	api.Put("/feeds/:id", func(c *fiber.Ctx) error {
		var source config.FeedConfig
		if err := c.BodyParser(&source); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid feed payload"})
		}
		source.ID = c.Params("id")
		if err := cfg.Registry.Update(source); err != nil {
			return apiError(c, err)
		}
		cfg.Cache.Invalidate()
		return c.JSON(source)
	})

	api.Delete("/feeds/:id", func(c *fiber.Ctx) error {
		if err := cfg.Registry.Remove(c.Params("id")); err != nil {
			return apiError(c, err)
		}
		cfg.Cache.Invalidate()
		return c.SendStatus(fiber.StatusNoContent)
	})

	return app
}

// apiError maps the domain error types onto HTTP statuses.
func apiError(c *fiber.Ctx, err error) error {
	var notFound *models.NotFoundError
	var transition *models.InvalidTransitionError
	var validation *models.ValidationError

	switch {
	case errors.As(err, &notFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.As(err, &transition):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.As(err, &validation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		log.WithFields(log.Fields{
			"error": err,
		}).Error("Request failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
