package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	httptransport "github.com/codebyviral/irms-backend/internal/api/http"
	"github.com/codebyviral/irms-backend/internal/api/http/handlers"
	"github.com/codebyviral/irms-backend/internal/auth"
	"github.com/codebyviral/irms-backend/internal/config"
	"github.com/codebyviral/irms-backend/internal/events"
	"github.com/codebyviral/irms-backend/internal/observability"
	"github.com/codebyviral/irms-backend/internal/persistence"
	"github.com/codebyviral/irms-backend/internal/realtime"
	"github.com/codebyviral/irms-backend/internal/repository"
	"github.com/codebyviral/irms-backend/internal/service"
	"github.com/codebyviral/irms-backend/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Name)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := observability.NewMetrics("irms")

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.Pool, cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	pool := pg.Pool
	txManager := repository.NewTxManager(pool)
	userRepo := repository.NewUserRepository(pool)
	batchRepo := repository.NewBatchRepository(pool)
	associationRepo := repository.NewAssociationRepository(pool)
	attendanceRepo := repository.NewAttendanceRepository(pool)
	taskRepo := repository.NewTaskRepository(pool)

	dispatcher := events.NewInMemoryDispatcher(logger)
	publisher := realtime.NewRedisPublisher(redis.Client, cfg.Realtime.ChannelPrefix)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		TxManager:         txManager,
		UserRepo:          userRepo,
		PasswordResetRepo: repository.NewPasswordResetRepository(pool),
		VerificationRepo:  repository.NewEmailVerificationRepository(pool),
		Logger:            logger,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TxManager:   txManager,
		TicketRepo:  repository.NewTicketRepository(pool),
		MessageRepo: repository.NewTicketMessageRepository(pool),
		HistoryRepo: repository.NewTicketHistoryRepository(pool),
		UserRepo:    userRepo,
		Dispatcher:  dispatcher,
		Publisher:   publisher,
		Logger:      logger,
	})
	taskService := service.NewTaskService(service.TaskDependencies{
		TxManager:       txManager,
		TaskRepo:        taskRepo,
		SubmissionRepo:  repository.NewSubmissionRepository(pool),
		UserRepo:        userRepo,
		BatchRepo:       batchRepo,
		AssociationRepo: associationRepo,
		Dispatcher:      dispatcher,
		Recorder:        metrics,
		Logger:          logger,
	})
	membershipService := service.NewMembershipService(service.MembershipDependencies{
		TxManager:       txManager,
		UserRepo:        userRepo,
		BatchRepo:       batchRepo,
		TeamRepo:        repository.NewTeamRepository(pool),
		AssociationRepo: associationRepo,
		Dispatcher:      dispatcher,
		Logger:          logger,
		MaxInternsPerHR: cfg.Membership.MaxInternsPerHR,
	})
	notificationService := service.NewNotificationService(service.NotificationDependencies{
		NotificationRepo: repository.NewNotificationRepository(pool),
		UserRepo:         userRepo,
		BatchRepo:        batchRepo,
		AssociationRepo:  associationRepo,
		Dispatcher:       dispatcher,
		Publisher:        publisher,
		Logger:           logger,
		Config:           cfg.Notification,
	})
	notificationService.RegisterHandlers()
	chatService := service.NewChatService(service.ChatDependencies{
		MessageRepo: repository.NewDirectMessageRepository(pool),
		UserRepo:    userRepo,
		Dispatcher:  dispatcher,
		Publisher:   publisher,
		Logger:      logger,
	})
	attendanceService := service.NewAttendanceService(attendanceRepo, nil)
	leaveService := service.NewLeaveService(service.LeaveDependencies{
		TxManager:  txManager,
		LeaveRepo:  repository.NewLeaveRepository(pool),
		UserRepo:   userRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	reportService := service.NewReportService(service.ReportDependencies{
		WeeklyReportRepo: repository.NewWeeklyReportRepository(pool),
		UserRepo:         userRepo,
		AssociationRepo:  associationRepo,
		TaskRepo:         taskRepo,
		AttendanceRepo:   attendanceRepo,
		Logger:           logger,
	})

	maintenance := worker.NewMaintenance(cfg.Worker, worker.Dependencies{
		Tickets:        ticketService,
		Members:        membershipService,
		Notifier:       notificationService,
		UserRepo:       userRepo,
		AttendanceRepo: attendanceRepo,
		Leaves:         leaveService,
		Recorder:       metrics,
		Logger:         logger.Named("worker"),
	})

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout(), cfg.App.CORSOrigins)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Users:          handlers.NewUsersHandler(authService, membershipService, taskService, cfg.App.Env != "production"),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Tasks:          handlers.NewTasksHandler(taskService),
		Membership:     handlers.NewMembershipHandler(membershipService),
		Inbox:          handlers.NewInboxHandler(notificationService, chatService, attendanceService, authService),
		Leave:          handlers.NewLeaveHandler(leaveService),
		Reports:        handlers.NewReportsHandler(reportService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), userRepo),
		Metrics:        metrics.Handler(),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()))
		return app.Listen(cfg.App.Addr())
	})
	g.Go(func() error {
		return maintenance.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		return app.ShutdownWithTimeout(shutdownTimeout)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server stopped", zap.Error(err))
	}
}
