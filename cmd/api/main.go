package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/exp/slog"

	"github.com/bahatiirene/xrpl-lottery-backend/api/routes"
	"github.com/bahatiirene/xrpl-lottery-backend/internal/config"
	"github.com/bahatiirene/xrpl-lottery-backend/internal/handlers"
	"github.com/bahatiirene/xrpl-lottery-backend/internal/repositories"
	mongorepo "github.com/bahatiirene/xrpl-lottery-backend/internal/repositories/mongodb"
	"github.com/bahatiirene/xrpl-lottery-backend/internal/scheduler"
	"github.com/bahatiirene/xrpl-lottery-backend/internal/services"
	"github.com/bahatiirene/xrpl-lottery-backend/pkg/mongodb"
	"github.com/bahatiirene/xrpl-lottery-backend/pkg/xrpl"
)

func main() {
	// A .env file is optional; real deployments use environment variables.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg.LogLevel)

	mongoClient, err := mongodb.NewClient(cfg.MongoDB.URI)
	if err != nil {
		slog.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			slog.Error("Error disconnecting from MongoDB", "error", err)
		}
	}()
	db := mongoClient.Database(cfg.MongoDB.Database)

	var categoryRepo repositories.CategoryRepository = mongorepo.NewCategoryRepository(db)
	var drawRepo repositories.DrawRepository = mongorepo.NewDrawRepository(db)
	var ticketRepo repositories.TicketRepository = mongorepo.NewTicketRepository(db)
	var rolloverEventRepo repositories.RolloverEventRepository = mongorepo.NewRolloverEventRepository(db)

	randomness := xrpl.NewClient(cfg.XRPL.RPCURL)
	bus := services.NewEventBus()

	drawService := services.NewDrawService(drawRepo, categoryRepo, ticketRepo, randomness, bus)
	rolloverService := services.NewRolloverService(categoryRepo, rolloverEventRepo)
	categoryService := services.NewCategoryService(categoryRepo, rolloverEventRepo)
	ticketService := services.NewTicketService(ticketRepo, drawRepo, categoryRepo)
	winnerService := services.NewWinnerService(drawRepo, categoryRepo)

	// Subscription order matters: the rollover ledger must update the
	// category before the follow-up draw snapshots its prize pool.
	bus.SubscribeDrawResolved(rolloverService.HandleDrawResolved)
	bus.SubscribeDrawResolved(drawService.ScheduleFollowUpDraw)

	handlerDeps := routes.HandlerDependencies{
		CategoryHandler: handlers.NewCategoryHandler(categoryService),
		DrawHandler:     handlers.NewDrawHandler(drawService),
		TicketHandler:   handlers.NewTicketHandler(ticketService),
		WinnerHandler:   handlers.NewWinnerHandler(winnerService),
	}
	router := routes.SetupRouter(cfg, handlerDeps)

	var drawScheduler *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		drawScheduler = scheduler.New(drawService, cfg.Scheduler.Spec)
		if err := drawScheduler.Start(); err != nil {
			slog.Error("Failed to start draw scheduler", "error", err)
			os.Exit(1)
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		slog.Info("Server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	if drawScheduler != nil {
		drawScheduler.Stop()
	}
	// Let in-flight rollover and follow-up scheduling work drain.
	bus.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exiting")
}

func setupLogger(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
