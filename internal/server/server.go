package server

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	log "github.com/sirupsen/logrus"

	"github.com/yudiwiratama/central-news/internal/metrics"
	"github.com/yudiwiratama/central-news/internal/summary"
)

type ServerConfig struct {

	// Manager runs the refresh workflow. Nil when the API credential is
	// missing, which degrades every data endpoint to a 500.
	Manager *summary.Manager

	// Metrics collected by the refresh workflow.
	Metrics *metrics.Metrics

	// APIKeySet reports whether the external API credential is configured.
	APIKeySet bool
}

// Server returns a fiber.App serving the summary API.
func Server(config *ServerConfig) *fiber.App {

	app := fiber.New()

	// Middleware to track the latency of each request
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		log.WithFields(log.Fields{
			"method":  c.Method(),
			"route":   c.Route().Path,
			"latency": time.Since(start),
		}).Info("Request")
		return err
	})

	app.Use(requestid.New(requestid.ConfigDefault))

	// The client app may be served from anywhere (mobile webview, local dev)
	app.Use(cors.New())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"name":    "Central News - AI Summary API",
			"version": "1.0.0",
			"status":  "running",
			"endpoints": fiber.Map{
				"summaries": "/api/summaries (GET all summaries)",
				"category":  "/api/summary/<category> (GET single category)",
				"refresh":   "/api/refresh/<category> (POST refresh summary)",
				"health":    "/api/health (GET server health)",
				"cache":     "/api/cache/info (GET cache info)",
			},
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	app.Get("/api/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":        "ok",
			"manager_ready": config.Manager != nil,
			"api_key_set":   config.APIKeySet,
			"timestamp":     time.Now().Format(time.RFC3339),
		})
	})

	app.Get("/api/metrics", func(c *fiber.Ctx) error {
		return c.JSON(config.Metrics.Stats())
	})

	app.Get("/api/summaries", func(c *fiber.Ctx) error {
		if config.Manager == nil {
			return managerUnavailable(c)
		}

		forceRefresh := queryBool(c, "refresh")
		maxNews, err := queryInt(c, "max_news", 20)
		if err != nil {
			return internalError(c, err)
		}

		summaries, err := config.Manager.GetAllSummaries(c.UserContext(), forceRefresh, maxNews)
		if err != nil {
			return internalError(c, err)
		}

		return c.JSON(fiber.Map{
			"success":   true,
			"data":      summaries,
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	app.Get("/api/summary/:category", func(c *fiber.Ctx) error {
		if config.Manager == nil {
			return managerUnavailable(c)
		}

		forceRefresh := queryBool(c, "refresh")
		maxNews, err := queryInt(c, "max_news", 20)
		if err != nil {
			return internalError(c, err)
		}

		s, err := config.Manager.GetSummary(c.UserContext(), c.Params("category"), forceRefresh, maxNews)
		if err != nil {
			return internalError(c, err)
		}

		return c.JSON(fiber.Map{
			"success":   true,
			"data":      s,
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	app.Post("/api/refresh/:category", func(c *fiber.Ctx) error {
		if config.Manager == nil {
			return managerUnavailable(c)
		}

		category := c.Params("category")
		maxNews, err := queryInt(c, "max_news", 20)
		if err != nil {
			return internalError(c, err)
		}

		// Clear first so even a failed regeneration does not serve the
		// old entry.
		if err := config.Manager.ClearCache(category); err != nil {
			return internalError(c, err)
		}

		s, err := config.Manager.GetSummary(c.UserContext(), category, true, maxNews)
		if err != nil {
			return internalError(c, err)
		}

		return c.JSON(fiber.Map{
			"success":   true,
			"data":      s,
			"message":   fmt.Sprintf("Summary refreshed for %s", category),
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	app.Get("/api/cache/info", func(c *fiber.Ctx) error {
		if config.Manager == nil {
			return managerUnavailable(c)
		}

		return c.JSON(fiber.Map{
			"success":   true,
			"data":      config.Manager.GetCacheInfo(),
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	app.Post("/api/cache/clear", func(c *fiber.Ctx) error {
		if config.Manager == nil {
			return managerUnavailable(c)
		}

		category := c.Query("category")

		var err error
		message := "All cache cleared"
		if category != "" {
			err = config.Manager.ClearCache(category)
			message = fmt.Sprintf("Cache cleared for %s", category)
		} else {
			err = config.Manager.ClearAll()
		}
		if err != nil {
			return internalError(c, err)
		}

		return c.JSON(fiber.Map{
			"success":   true,
			"message":   message,
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	return app
}

func managerUnavailable(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Summary manager not initialized. Check API key.",
	})
}

func internalError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}

func queryBool(c *fiber.Ctx, name string) bool {
	return strings.EqualFold(c.Query(name, "false"), "true")
}

func queryInt(c *fiber.Ctx, name string, defaultValue int) (int, error) {
	raw := c.Query(name, strconv.Itoa(defaultValue))
	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s parameter: %q", name, raw)
	}
	return val, nil
}
