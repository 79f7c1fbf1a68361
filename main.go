package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/nvrzn/grabbot/bot"
	"github.com/nvrzn/grabbot/config"
	"github.com/nvrzn/grabbot/download"
	"github.com/nvrzn/grabbot/logger"
	"github.com/nvrzn/grabbot/middleware"
	"github.com/nvrzn/grabbot/session"
	"github.com/nvrzn/grabbot/utils"
)

func main() {
	godotenv.Load()
	cfg := config.LoadConfig()

	if err := config.ValidateConfig(cfg); err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}
	if err := logger.Init(cfg.LogDir); err != nil {
		logrus.WithError(err).Fatal("Failed to initialize logging")
	}
	if err := os.MkdirAll(cfg.TempDir, 0o755); err != nil {
		logrus.WithError(err).Fatal("Failed to create temp directory")
	}

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create Telegram client")
	}
	logrus.WithField("username", api.Self.UserName).Info("Authorized on Telegram")

	b := bot.New(api, cfg, session.NewStore(), download.NewService(cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		logrus.Info("Shutting down...")
		cancel()
	}()

	download.StartJanitor(ctx, cfg.TempDir, cfg.JanitorInterval, cfg.JanitorMaxAge)

	if cfg.WebhookBaseURL != "" {
		runWebhook(ctx, api, b, cfg)
	} else {
		runPolling(ctx, api, b)
	}
}

func runPolling(ctx context.Context, api *tgbotapi.BotAPI, b *bot.Bot) {
	// A webhook left over from a previous deployment blocks getUpdates.
	if _, err := api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		logrus.WithError(err).Warn("Failed to delete webhook")
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30
	updates := api.GetUpdatesChan(updateConfig)

	logrus.Info("Running in polling mode")
	b.Run(ctx, updates)
	api.StopReceivingUpdates()
}

func runWebhook(ctx context.Context, api *tgbotapi.BotAPI, b *bot.Bot, cfg *config.Config) {
	hookURL := strings.TrimRight(cfg.WebhookBaseURL, "/") + "/webhook"

	params := tgbotapi.Params{"url": hookURL}
	params.AddNonEmpty("secret_token", cfg.SecretToken)
	if _, err := api.MakeRequest("setWebhook", params); err != nil {
		logrus.WithError(err).Fatal("Failed to register webhook")
	}

	updates := make(chan tgbotapi.Update, 64)
	mux := http.NewServeMux()
	mux.Handle("/webhook", middleware.Chain(
		webhookHandler(api, updates),
		middleware.Logging,
		middleware.SecretToken(cfg.SecretToken),
	))

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	go b.Run(ctx, updates)

	go func() {
		logrus.WithFields(logrus.Fields{
			"port": cfg.ServerPort,
			"url":  hookURL,
		}).Info("Running in webhook mode")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("Webhook server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Server shutdown failed")
	}
}

func webhookHandler(api *tgbotapi.BotAPI, updates chan<- tgbotapi.Update) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		update, err := api.HandleUpdate(r)
		if err != nil {
			logrus.WithError(err).Warn("Rejecting malformed webhook update")
			utils.HandleError(w, "Bad request", http.StatusBadRequest)
			return
		}
		updates <- *update
		w.WriteHeader(http.StatusOK)
	})
}
