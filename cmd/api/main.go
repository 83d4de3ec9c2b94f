package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/workforce-planner/internal/api/http"
	"github.com/spec-kit/workforce-planner/internal/api/http/handlers"
	"github.com/spec-kit/workforce-planner/internal/auth"
	"github.com/spec-kit/workforce-planner/internal/config"
	"github.com/spec-kit/workforce-planner/internal/events"
	"github.com/spec-kit/workforce-planner/internal/observability"
	"github.com/spec-kit/workforce-planner/internal/persistence"
	"github.com/spec-kit/workforce-planner/internal/repository"
	"github.com/spec-kit/workforce-planner/internal/service"
	"github.com/spec-kit/workforce-planner/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
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

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	organizationRepo := repository.NewOrganizationRepository(pool)
	subscriptionRepo := repository.NewSubscriptionRepository(pool)
	teamRepo := repository.NewTeamRepository(pool)
	employeeRepo := repository.NewEmployeeRepository(pool)
	accountRepo := repository.NewAccountRepository(pool)
	scheduleRepo := repository.NewScheduleRepository(pool)
	leaveRepo := repository.NewLeaveRepository(pool)
	taskRepo := repository.NewTaskRepository(pool)
	incidentRepo := repository.NewIncidentRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	locks := persistence.NewKeyLock(redis.ClientHandle(), cfg.Schedule.LockTTL())
	metrics := observability.NewMetrics()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		AccountRepo:  accountRepo,
		EmployeeRepo: employeeRepo,
	})
	scheduleService := service.NewScheduleService(cfg.Schedule, service.ScheduleDependencies{
		ScheduleRepo: scheduleRepo,
		EmployeeRepo: employeeRepo,
		TeamRepo:     teamRepo,
		Locks:        locks,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	cascadeService := service.NewCascadeService(service.CascadeDependencies{
		OrganizationRepo: organizationRepo,
		SubscriptionRepo: subscriptionRepo,
		TeamRepo:         teamRepo,
		EmployeeRepo:     employeeRepo,
		AccountRepo:      accountRepo,
		ScheduleRepo:     scheduleRepo,
		LeaveRepo:        leaveRepo,
		TaskRepo:         taskRepo,
		IncidentRepo:     incidentRepo,
		Locks:            locks,
		Dispatcher:       dispatcher,
		Logger:           logger,
	})
	directoryService := service.NewDirectoryService(service.DirectoryDependencies{
		OrganizationRepo: organizationRepo,
		SubscriptionRepo: subscriptionRepo,
		TeamRepo:         teamRepo,
		EmployeeRepo:     employeeRepo,
		AccountRepo:      accountRepo,
		Logger:           logger,
	})
	workItemService := service.NewWorkItemService(service.WorkItemDependencies{
		LeaveRepo:    leaveRepo,
		TaskRepo:     taskRepo,
		IncidentRepo: incidentRepo,
		EmployeeRepo: employeeRepo,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), accountRepo, employeeRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Accounts:       handlers.NewAccountsHandler(authService),
		Schedules:      handlers.NewSchedulesHandler(scheduleService),
		Directory:      handlers.NewDirectoryHandler(directoryService, cascadeService),
		WorkItems:      handlers.NewWorkItemsHandler(workItemService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
