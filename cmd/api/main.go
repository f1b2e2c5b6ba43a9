package main

import (
	"context"
	"fmt"
	"log"

	common_api "go-certify/internal/common/api"
	"go-certify/internal/config"
	"go-certify/internal/database"
	"go-certify/internal/features/email_template"
	"go-certify/internal/features/importer"
	"go-certify/internal/features/job"
	"go-certify/internal/features/maintenance"
	"go-certify/internal/features/progress"
	"go-certify/internal/features/settings"
	"go-certify/internal/features/smtp"
	"go-certify/internal/features/system"
	"go-certify/internal/features/template"
	"go-certify/internal/logger"
	"go-certify/internal/mailer"
	"go-certify/internal/metrics"
	"go-certify/internal/middleware"
	"go-certify/internal/pdf"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             50 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(middleware.CORSMiddleware())

	return app
}

// AsRoute is a helper function to reduce boilerplate.
// It tags the constructor so Fx knows to add it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

// RegisterAllRoutes takes the group "routes" (slice of interfaces)
// and calls Setup() on each one.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route) {
	for _, route := range routes {
		route.Setup(app)
	}
}

var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// StartServer creates a lifecycle hook to start Fiber in a goroutine
// and shut it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

func main() {
	metrics.Init()

	app := fx.New(
		fx.Provide(
			config.LoadConfig,

			logger.NewLogger,

			NewFiberServer,

			database.NewDatabase,

			template.NewTemplateRepository,
			email_template.NewEmailTemplateRepository,
			smtp.NewSmtpConfigRepository,
			settings.NewSettingsRepository,
			job.NewJobRepository,
			job.NewRecipientRepository,

			pdf.NewRenderer,
			mailer.NewDispatcher,
			progress.NewHub,
			func(h *progress.Hub) progress.Publisher { return h },

			template.NewTemplateService,
			email_template.NewEmailTemplateService,
			smtp.NewSmtpConfigService,
			settings.NewSettingsService,
			importer.NewImporterService,
			job.NewJobService,
			maintenance.NewSweeper,

			template.NewTemplateController,
			email_template.NewEmailTemplateController,
			smtp.NewSmtpConfigController,
			settings.NewSettingsController,
			importer.NewImporterController,
			job.NewJobController,
			progress.NewProgressController,

			AsRoute(template.NewTemplateApi),
			AsRoute(email_template.NewEmailTemplateApi),
			AsRoute(smtp.NewSmtpConfigApi),
			AsRoute(settings.NewSettingsApi),
			AsRoute(importer.NewImporterApi),
			AsRoute(job.NewJobApi),
			AsRoute(progress.NewProgressApi),
			AsRoute(system.NewHealthApi),
			AsRoute(system.NewMetricsApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			RegisterAllRoutesWithAnnotation,
			StartServer,
			func(lc fx.Lifecycle, sweeper *maintenance.Sweeper) {
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						return sweeper.Schedule()
					},
					OnStop: func(ctx context.Context) error {
						sweeper.Stop()
						return nil
					},
				})
			},
		),
	)

	app.Run()
}
