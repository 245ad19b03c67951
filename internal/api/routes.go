package api

import (
	"time"

	"github.com/bilgisen/addconnect/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// ServerConfig holds the fiber settings the server is built with
type ServerConfig struct {
	AdminAPIKey  string
	BodyLimit    int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	AllowOrigins string
}

// NewApp builds the fiber app with global middleware and all routes
func NewApp(h *Handlers, cfg ServerConfig) *fiber.App {
	if cfg.AllowOrigins == "" {
		cfg.AllowOrigins = "*"
	}

	app := fiber.New(fiber.Config{
		AppName:               "addconnect",
		BodyLimit:             cfg.BodyLimit,
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		IdleTimeout:           120 * time.Second,
		ErrorHandler:          middleware.ErrorHandler,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, X-API-Key",
	}))

	SetupRoutes(app, h, cfg.AdminAPIKey)
	return app
}

// SetupRoutes configures all the routes for the application
func SetupRoutes(app *fiber.App, h *Handlers, adminKey string) {
	app.Get("/health", h.HealthCheck)

	api := app.Group("/api")

	content := api.Group("/content")
	{
		content.Get("/preview", h.Preview)
		content.Post("", h.CreateContent)
		content.Post("/upload", h.UploadContent)
	}

	api.Get("/contents", middleware.ValidateQuery[ListQuery](), h.ListContents)
	api.Get("/contents/:id", h.GetContent)
	api.Get("/stats", h.Stats)

	admin := api.Group("/admin", middleware.AdminOnly(adminKey))
	{
		admin.Delete("/contents/:id", h.DeleteContent)
		admin.Delete("/previews", h.ClearPreviews)
	}

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Endpoint not found",
		})
	})
}
