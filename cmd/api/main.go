package main

import (
	"context"
	"fmt"
	"log"

	common_api "campus-events/internal/common/api"
	"campus-events/internal/config"
	"campus-events/internal/database"
	"campus-events/internal/features/approval"
	"campus-events/internal/features/audit"
	"campus-events/internal/features/event"
	"campus-events/internal/features/system"
	"campus-events/internal/features/user"
	"campus-events/internal/logger"
	"campus-events/internal/middleware"
	"campus-events/internal/tenant"
	"campus-events/pkg/utils"

	_ "campus-events/docs" // Import swagger docs

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer(logger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
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
	for _, h := range middleware.RequestIDMiddleware() {
		app.Use(h)
	}
	app.Use(middleware.RequestLogger(logger))

	return app
}

// AsRoute tags the constructor so Fx adds it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

// AsSchemas adds a feature's collection schemas to the "schemas" group.
func AsSchemas(f any) any {
	return fx.Annotate(
		f,
		fx.ResultTags(`group:"schemas,flatten"`),
	)
}

// RegisterAllRoutes calls Setup() on each route of the "routes" group.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route, logger *zap.Logger) {
	logger.Info("Registering routes", zap.Int("count", len(routes)))
	for _, route := range routes {
		logger.Debug("Setting up route", zap.String("route", fmt.Sprintf("%T", route)))
		route.Setup(app)
	}
}

var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`, ``),
)

var NewCatalogWithAnnotation = fx.Annotate(
	tenant.NewCatalog,
	fx.ParamTags(`group:"schemas"`),
)

// StartServer starts Fiber in a goroutine and shuts it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			utils.SetSecret(cfg.JWTSecret)
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

// @title           Campus Events API
// @version         1.0
// @description     Multi-tenant campus event approvals.

// @host            localhost:8000
// @BasePath        /
func main() {
	app := fx.New(
		fx.Provide(
			// Load Config
			config.LoadConfig,

			// Platform database and logger
			database.NewDatabase,
			logger.NewLogger,

			// Initialize Fiber Server
			NewFiberServer,

			// Tenant data access
			tenant.NewDirectory,
			func(d *tenant.DirectoryImpl) tenant.Directory { return d },
			tenant.NewRegistry,
			AsSchemas(approval.Schemas),
			AsSchemas(event.Schemas),
			AsSchemas(audit.Schemas),
			AsSchemas(user.Schemas),
			NewCatalogWithAnnotation,
			tenant.NewResolver,
			tenant.NewRouter,
			func(r *tenant.Router) tenant.ModelSource { return r },

			// Initialize Repository
			approval.NewApprovalRepository,
			event.NewEventRepository,
			audit.NewAuditRepository,
			user.NewUserRepository,

			// Initialize Service
			audit.NewAuditService,
			approval.NewApprovalService,
			event.NewEventService,
			system.NewHub,

			// Interface Adapters to break circular dependencies and satisfy Fx
			func(s approval.ApprovalService) event.ApprovalTrigger { return s },
			func(r event.EventRepository) approval.EventStatusUpdater { return r },
			func(h *system.Hub) approval.Notifier { return h },
			func(r user.UserRepository) audit.UserFinder { return r },

			// Initialize Controller
			approval.NewApprovalController,
			event.NewEventController,
			audit.NewAuditController,
			system.NewWebSocketController,

			// Initialize API Routes
			AsRoute(approval.NewApprovalApi),
			AsRoute(event.NewEventApi),
			AsRoute(audit.NewAuditApi),
			AsRoute(system.NewHealthApi),
			AsRoute(system.NewSwaggerApi),
			AsRoute(system.NewWebSocketApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			// Register Routes & Start
			RegisterAllRoutesWithAnnotation,
			StartServer,
		),
	)

	app.Run()
}
