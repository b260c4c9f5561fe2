package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/nihar004/spring-and-coil-manufacturing/internal/admin"
	"github.com/nihar004/spring-and-coil-manufacturing/internal/audit"
	"github.com/nihar004/spring-and-coil-manufacturing/internal/auth"
	"github.com/nihar004/spring-and-coil-manufacturing/internal/config"
	"github.com/nihar004/spring-and-coil-manufacturing/internal/database"
	"github.com/nihar004/spring-and-coil-manufacturing/internal/logging"
	"github.com/nihar004/spring-and-coil-manufacturing/internal/models"
	"github.com/nihar004/spring-and-coil-manufacturing/internal/production"
	"github.com/nihar004/spring-and-coil-manufacturing/internal/rejection"
	"github.com/nihar004/spring-and-coil-manufacturing/internal/setup"
	"github.com/nihar004/spring-and-coil-manufacturing/internal/verification"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck
	zap.ReplaceGlobals(log)

	for _, w := range cfg.Warnings {
		log.Warn(w)
	}

	if err := database.Init(cfg, log); err != nil {
		return err
	}

	app := newApp(cfg, log)

	log.Info("server listening", zap.String("port", cfg.HTTPPort))
	return app.Listen(":" + cfg.HTTPPort)
}

func newApp(cfg *config.Config, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var e *fiber.Error
			if errors.As(err, &e) {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Error("unexpected error", zap.String("path", c.Path()), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unexpected server error",
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.AllowedOrigins(), ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))
	app.Use(logging.RequestLogger(log))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler())
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Admin routes
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))

	adminRoutes.Post("/users", admin.CreateUserHandler())
	adminRoutes.Get("/users", admin.ListUsersHandler())

	supervisors := auth.RequireRole(models.RoleAdmin, models.RoleSupervisor)

	// Process cards
	protected.Post("/setups", setup.CreateSetupHandler())
	protected.Get("/setups", setup.ListSetupsHandler())
	protected.Get("/setups/:id", setup.GetSetupHandler())
	protected.Put("/setups/:id", setup.UpdateSetupHandler())
	protected.Patch("/setups/:id/fields", setup.PatchFieldHandler())
	protected.Delete("/setups/:id", supervisors, setup.DeleteSetupHandler())

	// Production entries
	protected.Get("/setups/:id/production", production.ListSetupProductionHandler())
	protected.Get("/setups/:id/production/export", production.ExportProductionHandler())
	protected.Post("/setups/:id/production", production.CreateProductionHandler())
	protected.Get("/production", production.ListProductionHandler())
	protected.Put("/production/:id", production.UpdateProductionHandler())
	protected.Delete("/production/:id", production.DeleteProductionHandler())

	// First-off / last-off verification
	protected.Get("/setups/:id/verification", verification.GetVerificationHandler())
	protected.Put("/setups/:id/verification", verification.UpdateVerificationHandler())

	// Rejections
	protected.Get("/setups/:id/rejections", rejection.ListRejectionsHandler())
	protected.Get("/setups/:id/rejections/summary", rejection.RejectionSummaryHandler())
	protected.Post("/setups/:id/rejections", rejection.CreateRejectionHandler())
	protected.Put("/rejections/:id", rejection.UpdateRejectionHandler())
	protected.Delete("/rejections/:id", rejection.DeleteRejectionHandler())

	// Audit logs
	protected.Get("/audit-logs", audit.ListAuditLogsHandler())
	protected.Post("/audit-logs/:id/undo", supervisors, audit.UndoAuditLogHandler())

	return app
}
