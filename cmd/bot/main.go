package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/quran-assistant-bot/internal/app"
	"github.com/aliskhannn/quran-assistant-bot/internal/config"
	"github.com/aliskhannn/quran-assistant-bot/internal/delivery/httpapi"
	"github.com/aliskhannn/quran-assistant-bot/internal/delivery/telegram"
	"github.com/aliskhannn/quran-assistant-bot/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	lg, err := logger.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = lg.Sync() }()

	if err := cfg.RequireTelegram(); err != nil {
		lg.Fatal("telegram is not configured", zap.Error(err))
	}

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramAPIToken)
	if err != nil {
		lg.Fatal("failed to create bot", zap.Error(err))
	}

	// Set commands.
	commands := []tgbotapi.BotCommand{
		{Command: "start", Description: "شروع"},
		{Command: "help", Description: "راهنما"},
		{Command: "history", Description: "آخرین پیام‌های گفتگو"},
		{Command: "pending", Description: "سؤال‌های بی‌پاسخ"},
		{Command: "reset", Description: "پاک کردن گفتگو"},
		{Command: "fact", Description: "یک دانستنی قرآنی"},
		{Command: "facts", Description: "دانستنی روزانه: /facts on یا /facts off"},
	}

	if _, err = bot.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		lg.Warn("failed to set bot commands", zap.Error(err))
	}

	bot.Debug = cfg.Env != "production"
	lg.Info("authorized on account", zap.String("username", bot.Self.UserName))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, lg)
	if err != nil {
		lg.Fatal("failed to initialize", zap.Error(err))
	}
	defer a.Close()

	handler := telegram.NewHandler(bot, lg, a.Assistant, a.Facts)
	a.Facts.SetNotifier(handler)

	if cfg.Facts.Enabled {
		go a.Facts.Start(ctx)
	}

	var srv *http.Server
	if cfg.HTTP.Addr != "" {
		srv = &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           httpapi.NewRouter(httpapi.NewHandler(a.Assistant, lg)),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			lg.Info("http api listening", zap.String("addr", cfg.HTTP.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				lg.Error("http server error", zap.Error(err))
			}
		}()
	}

	if err := handler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		lg.Error("telegram handler stopped", zap.Error(err))
	}

	lg.Info("shutdown signal received")

	bot.StopReceivingUpdates()

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			lg.Error("http server shutdown", zap.Error(err))
		}
	}
}
