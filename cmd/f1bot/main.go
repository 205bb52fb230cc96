package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/omarshaarawi/f1bot/internal/aggregator"
	"github.com/omarshaarawi/f1bot/internal/api/ergast"
	"github.com/omarshaarawi/f1bot/internal/bot"
	"github.com/omarshaarawi/f1bot/internal/config"
	"github.com/omarshaarawi/f1bot/internal/repository/memory"
	"github.com/omarshaarawi/f1bot/internal/scheduler"
	"github.com/omarshaarawi/f1bot/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Error running application", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		slog.Error("Error loading .env file", "error", err)
	}

	cfg, err := config.New()
	if err != nil {
		return err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	order, err := aggregator.ParseCalendarOrder(cfg.Views.CalendarOrder)
	if err != nil {
		return err
	}

	ergastClient := ergast.NewClient(cfg.ErgastAPI)
	ergastAPI := ergast.NewAPI(ergastClient)
	agg := aggregator.New(ergastAPI, aggregator.Options{
		CalendarOrder:     order,
		LapChartTotalLaps: cfg.Views.LapChartTotalLaps,
		DeriveLapCount:    cfg.Views.LapChartDeriveLap,
	})

	repo := memory.NewRepository()
	f1Service := service.NewF1Service(agg, repo)

	telegramBot, err := bot.NewTelegramBot(cfg.TelegramBot.Token, cfg.TelegramBot.ChatID)
	if err != nil {
		return err
	}

	sched, err := scheduler.NewScheduler(f1Service, cfg.Schedule.Timezone, telegramBot.SendMessage)
	if err != nil {
		return err
	}

	countdowns := bot.NewCountdowns(sched.Cron(), clockwork.NewRealClock(), cfg.Views.CountdownInterval, telegramBot.API())
	telegramBot.SetHandler(bot.NewHandler(f1Service, countdowns))

	if err := sched.Start(); err != nil {
		return err
	}
	defer func() {
		countdowns.StopAll()
		err := sched.Stop()
		if err != nil {
			slog.Error("Error stopping scheduler", "error", err)
		}
	}()

	http.HandleFunc("/", healthCheckHandler)

	go func() {
		if err := http.ListenAndServe(cfg.HTTPAddr, nil); err != nil {
			slog.Error("Error starting HTTP server", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := telegramBot.Start(ctx); err != nil {
			slog.Error("Error running telegram bot", "error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down gracefully...")

	return nil
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
