package main

import (
	"context"
	"encoding/json"
	"os"

	common_models "campus-events/internal/common/models"
	"campus-events/internal/config"
	"campus-events/internal/database"
	"campus-events/internal/features/approval"
	"campus-events/internal/features/audit"
	"campus-events/internal/features/event"
	"campus-events/internal/features/user"
	"campus-events/internal/logger"
	"campus-events/internal/tenant"
	"campus-events/pkg/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

type tenantSeed struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MongoURI string `json:"mongo_uri"`
}

func readJSON(path string, v interface{}) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// Seed registers the tenants in the platform directory and gives each one the
// default approval flow and the demo approvers.
func Seed(
	lc fx.Lifecycle,
	cfg *config.Config,
	directory *tenant.DirectoryImpl,
	approvalRepo approval.ApprovalRepository,
	userRepo user.UserRepository,
	logger *zap.Logger,
	shutdowner fx.Shutdowner,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer func() {
					if err := shutdowner.Shutdown(); err != nil {
						logger.Error("Failed to shutdown", zap.Error(err))
					}
				}()

				utils.SetSecret(cfg.JWTSecret)
				ctx := context.Background()

				// Data Paths (Assuming running from repository root)
				var (
					tenants []tenantSeed
					steps   []approval.FlowStep
					users   []common_models.User
				)
				if err := readJSON("cmd/seed/data/tenants.json", &tenants); err != nil {
					logger.Fatal("Failed to read tenants.json", zap.Error(err))
				}
				if err := readJSON("cmd/seed/data/flow.json", &steps); err != nil {
					logger.Fatal("Failed to read flow.json", zap.Error(err))
				}
				if err := readJSON("cmd/seed/data/users.json", &users); err != nil {
					logger.Fatal("Failed to read users.json", zap.Error(err))
				}

				ids := []string{cfg.DefaultTenant}
				for _, t := range tenants {
					cs, err := connstring.ParseAndValidate(t.MongoURI)
					if err != nil || cs.Database == "" {
						logger.Error("Skipping tenant with invalid uri", zap.String("tenant", t.ID), zap.Error(err))
						continue
					}
					rec := tenant.Record{ID: t.ID, Name: t.Name, MongoURI: t.MongoURI, Database: cs.Database}
					if err := directory.Upsert(ctx, rec); err != nil {
						logger.Error("Failed to register tenant", zap.String("tenant", t.ID), zap.Error(err))
						continue
					}
					logger.Info("Tenant registered", zap.String("tenant", t.ID), zap.String("database", cs.Database))
					ids = append(ids, t.ID)
				}

				for _, id := range ids {
					tctx := tenant.WithTenant(ctx, id)

					flow, err := approvalRepo.SaveFlow(tctx, &approval.FlowDefinition{Steps: steps, UpdatedBy: "seed"})
					if err != nil {
						logger.Error("Failed to save approval flow", zap.String("tenant", id), zap.Error(err))
						continue
					}
					logger.Info("Approval flow saved", zap.String("tenant", id), zap.Int("steps", len(flow.Steps)))

					for _, u := range users {
						u.ID = primitive.NilObjectID
						if err := userRepo.Create(tctx, &u); err != nil {
							logger.Info("User exists, skipping", zap.String("tenant", id), zap.String("username", u.Username))
							continue
						}
						token, err := utils.GenerateToken(u.ID.Hex(), id, u.Roles)
						if err != nil {
							logger.Error("Failed to sign token", zap.Error(err))
							continue
						}
						logger.Info("User created",
							zap.String("tenant", id),
							zap.String("username", u.Username),
							zap.Strings("roles", u.Roles),
							zap.String("token", token),
						)
					}
				}

				logger.Info("Seeding completed")
			}()
			return nil
		},
	})
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			database.NewDatabase,
			logger.NewLogger,

			tenant.NewDirectory,
			func(d *tenant.DirectoryImpl) tenant.Directory { return d },
			tenant.NewRegistry,
			func() ([]tenant.Schema, error) {
				var schemas []tenant.Schema
				schemas = append(schemas, approval.Schemas()...)
				schemas = append(schemas, event.Schemas()...)
				schemas = append(schemas, audit.Schemas()...)
				schemas = append(schemas, user.Schemas()...)
				return schemas, nil
			},
			tenant.NewCatalog,
			tenant.NewResolver,
			tenant.NewRouter,
			func(r *tenant.Router) tenant.ModelSource { return r },

			approval.NewApprovalRepository,
			user.NewUserRepository,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(Seed),
	)

	app.Run()
}
