package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ticket-bot/internal/api/http"
	"github.com/spec-kit/ticket-bot/internal/api/http/handlers"
	"github.com/spec-kit/ticket-bot/internal/config"
	"github.com/spec-kit/ticket-bot/internal/events"
	"github.com/spec-kit/ticket-bot/internal/gateway"
	"github.com/spec-kit/ticket-bot/internal/observability"
	"github.com/spec-kit/ticket-bot/internal/persistence"
	"github.com/spec-kit/ticket-bot/internal/platform/discord"
	"github.com/spec-kit/ticket-bot/internal/repository"
	"github.com/spec-kit/ticket-bot/internal/service"
	"github.com/spec-kit/ticket-bot/internal/worker"
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

	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		logger.Fatal("failed to build discord session", zap.Error(err))
	}
	client := discord.NewClient(session)

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	addressRepo := repository.NewAddressRepository(pool)
	warningRepo := repository.NewWarningRepository(pool)
	autoResponseRepo := repository.NewAutoResponseRepository(pool)
	snipeStore := repository.NewSnipeStore(redis.Client)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()
	metrics.Register(dispatcher)

	factory := service.NewTicketFactory(ticketRepo, client, dispatcher, logger, cfg.Discord)
	transcripts := service.NewTranscriptBuilder(client, logger)
	archives := service.NewArchiveDispatcher(client, logger)
	scheduler := worker.NewDeletionScheduler(logger)
	defer scheduler.Stop()

	closer := service.NewClosureCoordinator(service.ClosureDependencies{
		TicketRepo:  ticketRepo,
		Transcripts: transcripts,
		Archives:    archives,
		Scheduler:   scheduler,
		Platform:    client,
		Dispatcher:  dispatcher,
		Logger:      logger,
		Discord:     cfg.Discord,
	})
	completion := service.NewCompletionMarker(ticketRepo, client, dispatcher, logger, cfg.Discord)
	autoresponses := service.NewAutoResponseService(autoResponseRepo, logger)

	notifications := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	notifications.RegisterHandlers()

	gw := gateway.New(session, gateway.Dependencies{
		Discord:       cfg.Discord,
		Logger:        logger,
		Factory:       factory,
		Closer:        closer,
		Completion:    completion,
		AutoResponses: autoresponses,
		TicketRepo:    ticketRepo,
		AddressRepo:   addressRepo,
		WarningRepo:   warningRepo,
		SnipeStore:    snipeStore,
		Platform:      client,
	})
	if err := gw.Open(); err != nil {
		logger.Fatal("failed to open gateway", zap.Error(err))
	}
	defer gw.Close() //nolint:errcheck

	presence := gateway.NewPresenceRotator(session, logger)
	if err := presence.Start(); err != nil {
		logger.Fatal("failed to start presence rotation", zap.Error(err))
	}
	defer presence.Stop()

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger)

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, func() bool {
		return session.DataReady
	})
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{Health: healthHandler, Metrics: metrics})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	logger.Info("bot running", zap.String("addr", cfg.App.Addr()))
	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
