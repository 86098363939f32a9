package main

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/dukex/campaigner/pkg/cmd"
	"github.com/dukex/campaigner/pkg/services"
	"github.com/dukex/campaigner/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

type API struct {
	logger   *slog.Logger
	runtime  *cmd.Runtime
	validate *validator.Validate
}

func NewAPI(logger *slog.Logger, runtime *cmd.Runtime) *API {
	return &API{
		logger:   logger,
		runtime:  runtime,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Subscribe drops cached campaign reads whenever any process publishes a
// campaign event.
func (a *API) Subscribe(ctx context.Context) error {
	if err := services.RegisterCacheInvalidation(a.runtime.EventBus, a.runtime.Cache, a.logger); err != nil {
		return err
	}

	return a.runtime.EventBus.Subscribe(ctx)
}

func (a *API) App() *fiber.App {
	r := a.runtime
	lifecycle := r.Lifecycle()

	handlers := web.NewAPIHandlers(
		services.NewCampaigns(r.Persistence, r.Remote, r.EventBus, r.Cache, a.logger),
		services.NewSegments(r.Persistence, a.logger),
		lifecycle,
		services.NewHealth(r.Persistence, r.Cache, lifecycle),
		a.validate,
	)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Campaigner API")
	})

	handlers.Register(app)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	a.logger.Info("Starting campaigner API", "port", port)

	return app.Listen(":" + strconv.Itoa(port))
}
