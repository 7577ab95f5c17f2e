package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ticket-tracker/internal/api/http"
	"github.com/spec-kit/ticket-tracker/internal/api/http/handlers"
	"github.com/spec-kit/ticket-tracker/internal/auth"
	"github.com/spec-kit/ticket-tracker/internal/cache"
	"github.com/spec-kit/ticket-tracker/internal/config"
	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/events"
	"github.com/spec-kit/ticket-tracker/internal/observability"
	"github.com/spec-kit/ticket-tracker/internal/persistence"
	"github.com/spec-kit/ticket-tracker/internal/repository"
	"github.com/spec-kit/ticket-tracker/internal/service"
	"github.com/spec-kit/ticket-tracker/internal/worker"
)

var (
	defaultPriorities = []string{"Low", "Medium", "High", "Critical"}
	defaultCategories = []string{"Hardware", "Software", "Network", "Account"}
)

type repositories struct {
	users      repository.UserRepository
	tickets    repository.TicketRepository
	priorities repository.LabelRepository
	categories repository.LabelRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Name, cfg.App.Version)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	repos := buildRepositories(pg)

	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	if err != nil {
		logger.Fatal("invalid token configuration", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)
	statsCache := cache.NewStatsCache(redis.Client, cfg.Cache.StatsTTL())
	worker.StartTicketEventWorker(dispatcher, statsCache, metrics, logger)

	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo: repos.users,
		Tokens:   tokens,
		Hasher:   auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		Logger:   logger,
		Metrics:  metrics,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:   repos.tickets,
		UserRepo:     repos.users,
		PriorityRepo: repos.priorities,
		CategoryRepo: repos.categories,
		Dispatcher:   dispatcher,
		StatsCache:   statsCache,
		Logger:       logger,
	})
	priorityService := service.NewLabelService(repos.priorities, dispatcher, logger)
	categoryService := service.NewLabelService(repos.categories, dispatcher, logger)

	if !pg.Enabled() {
		seedLabels(ctx, logger, priorityService, defaultPriorities)
		seedLabels(ctx, logger, categoryService, defaultCategories)
	}

	validate := handlers.NewValidator()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler(logger),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Auth:       handlers.NewAuthHandler(authService, validate),
		Tickets:    handlers.NewTicketsHandler(ticketService, validate),
		Priorities: handlers.NewLabelsHandler(priorityService, validate),
		Categories: handlers.NewLabelsHandler(categoryService, validate),
		Identity:   auth.NewIdentityMiddleware(authService.TokenManager(), nil, logger),
		Metrics:    metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func buildRepositories(pg *persistence.Postgres) repositories {
	if !pg.Enabled() {
		store := repository.NewMemoryStore()
		return repositories{
			users:      store.Users(),
			tickets:    store.Tickets(),
			priorities: store.Priorities(),
			categories: store.Categories(),
		}
	}
	pool := pg.PoolHandle()
	return repositories{
		users:      repository.NewUserRepository(pool),
		tickets:    repository.NewTicketRepository(pool),
		priorities: repository.NewPriorityRepository(pool),
		categories: repository.NewCategoryRepository(pool),
	}
}

// seedLabels mirrors the label seed migration for the in-memory store.
func seedLabels(ctx context.Context, logger *zap.Logger, labels *service.LabelService, names []string) {
	for _, name := range names {
		if _, err := labels.Create(ctx, name); err != nil && !errors.Is(err, domain.ErrDuplicateName) {
			logger.Warn("seed label", zap.String("name", name), zap.Error(err))
		}
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
