package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/authflow/internal/api"
	"github.com/charlesng35/authflow/internal/app"
	"github.com/charlesng35/authflow/internal/app/maintenance"
	iauth "github.com/charlesng35/authflow/internal/auth"
	"github.com/charlesng35/authflow/internal/backend"
	"github.com/charlesng35/authflow/internal/database"
	"github.com/charlesng35/authflow/internal/flows"
	"github.com/charlesng35/authflow/internal/storage"
	"github.com/charlesng35/authflow/pkg/logger"
	"github.com/charlesng35/authflow/pkg/mail"
)

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	DB      *gorm.DB
	Store   storage.Store
	Redis   *storage.RedisStore
	Flows   *flows.Controller
	Cleaner *maintenance.Cleaner
	Router  *gin.Engine
}

// bootstrapRuntime initialises the database, client storage, simulated backend, flows and router.
func bootstrapRuntime(ctx context.Context, cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			stack.Shutdown(context.Background(), log)
		}
	}()

	// enable gin debug mod
	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.DB, err = initialiseDatabase(cfg)
	if err != nil {
		return nil, err
	}

	var purger maintenance.Purger
	switch cfg.StorageBackend() {
	case app.StorageRedis:
		stack.Redis, err = storage.NewRedisStore(ctx, cfg.Storage.RedisStoreConfig())
		if err != nil {
			return nil, fmt.Errorf("connect redis storage: %w", err)
		}
		log.Info("redis connected", zap.String("addr", cfg.Storage.Redis.Address))
		stack.Store = stack.Redis
	case app.StorageMemory:
		mem := storage.NewMemoryStore()
		stack.Store, purger = mem, mem
	default:
		dbStore := storage.NewDatabaseStore(stack.DB)
		stack.Store, purger = dbStore, dbStore
	}

	jwtSvc, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise jwt service: %w", err)
	}

	mailer, err := mail.NewMailer(cfg.MailSettings())
	if err != nil {
		return nil, fmt.Errorf("initialise mailer: %w", err)
	}

	sim, err := backend.NewSimulated(stack.DB, jwtSvc, mailer, cfg.BackendOptions()...)
	if err != nil {
		return nil, fmt.Errorf("initialise simulated backend: %w", err)
	}

	if cfg.Simulation.Demo.Enabled {
		account := cfg.Simulation.DemoAccount()
		created, err := backend.SeedDemoAccount(ctx, stack.DB, account)
		if err != nil {
			return nil, fmt.Errorf("seed demo account: %w", err)
		}
		if created {
			log.Info("demo account created", zap.String("email", account.Email))
		}
	}

	clientStorage, err := storage.NewClientStorage(stack.Store, storage.WithEntryTTL(cfg.Storage.EntryTTL))
	if err != nil {
		return nil, fmt.Errorf("initialise client storage: %w", err)
	}

	stack.Flows, err = flows.NewController(sim, clientStorage, flows.WithResendCooldown(cfg.Simulation.ResendCooldown))
	if err != nil {
		return nil, fmt.Errorf("initialise flows: %w", err)
	}

	if cfg.Maintenance.Enabled {
		stack.Cleaner = maintenance.NewCleaner(stack.DB, purger, maintenance.WithSchedule(cfg.Maintenance.Schedule))
		if err := stack.Cleaner.Start(); err != nil {
			return nil, fmt.Errorf("start maintenance jobs: %w", err)
		}
	}

	stack.Router, err = api.NewRouter(api.Dependencies{
		DB:     stack.DB,
		JWT:    jwtSvc,
		Flows:  stack.Flows,
		Config: cfg,
		Store:  stack.Store,
	})
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

// Shutdown gracefully stops background jobs and releases resources.
func (s *runtimeStack) Shutdown(ctx context.Context, log *zap.Logger) {
	if s == nil {
		return
	}

	if s.Cleaner != nil {
		select {
		case <-s.Cleaner.Stop().Done():
		case <-ctx.Done():
			log.Warn("maintenance jobs still running at shutdown", zap.Error(ctx.Err()))
		}
		if err := s.Cleaner.RunOnce(ctx); err != nil {
			log.Warn("maintenance shutdown cleanup failed", zap.Error(err))
		}
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			log.Warn("redis shutdown", zap.Error(err))
		}
	}

	if s.DB != nil {
		if err := database.Close(s.DB); err != nil {
			log.Warn("failed to close database", zap.Error(err))
		}
	}
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := cfg.Database.OpenConfig()
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.Migrate(db); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	log := logger.WithModule("database")
	log.Info("database connected", zap.String("driver", dbCfg.Driver))

	return db, nil
}
