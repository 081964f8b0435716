package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sangkhep/internal/article"
	"sangkhep/internal/bot"
	"sangkhep/internal/config"
	"sangkhep/internal/database"
	"sangkhep/internal/httpapi"
	"sangkhep/internal/qa"
	"sangkhep/internal/scheduler"
	"sangkhep/internal/session"
	"sangkhep/internal/summarizer"

	"github.com/google/uuid"
)

const (
	httpReadHeaderTimeout = 10 * time.Second
	httpShutdownTimeout   = 30 * time.Second
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	start := time.Now()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.ErrorContext(ctx, "Failed to load config",
			"error", err)

		return
	}

	db, err := database.New(ctx, cfg.DBPath, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize db",
			"error", err,
			"dbPath", cfg.DBPath)

		return
	}
	defer func() {
		if err = db.Close(); err != nil {
			log.ErrorContext(ctx, "Failed to close db",
				"error", err,
				"dbPath", cfg.DBPath)
		}
	}()
	log.InfoContext(ctx, "DB is initialized",
		"dbPath", cfg.DBPath)

	if cfg.SummarizerURL == "" {
		log.WarnContext(ctx, "SUMMARIZER_URL is missing so requests must provide an endpoint",
			"envVar", "SUMMARIZER_URL")
	}

	if cfg.QAAPIKey == "" {
		log.WarnContext(ctx, "QA_API_KEY is missing so requests must provide an API key",
			"envVar", "QA_API_KEY")
	}

	service := session.NewService(
		db,
		article.NewFetcher(cfg.FetchTimeout, article.ParagraphExtractor{}, log),
		summarizer.NewClient(cfg.SummarizerTimeout, log),
		qa.NewOpenAIAsker(cfg.QABaseURL, cfg.QATimeout),
		session.Defaults{
			SummarizerURL: cfg.SummarizerURL,
			QAAPIKey:      cfg.QAAPIKey,
			QAModel:       cfg.QAModel,
		},
		log,
	)

	sched := scheduler.New(ctx, service, cfg.SessionTTL, log)

	if err = sched.Start(); err != nil {
		log.ErrorContext(ctx, "Failed to start scheduler",
			"error", err,
			"spec", scheduler.HourlyEvictionSpec)

		return
	}
	defer sched.Stop()
	log.InfoContext(ctx, "Scheduler is started",
		"spec", scheduler.HourlyEvictionSpec,
		"sessionTTL", cfg.SessionTTL)

	var botInst *bot.Bot
	if cfg.Token != "" {
		botInst, err = bot.New(
			cfg.Token,
			service,
			article.NewFeedLister(cfg.FetchTimeout),
			cfg.AllowedUsers,
			log,
		)
		if err != nil {
			log.ErrorContext(ctx, "Failed to initialize bot",
				"error", err,
				"allowedUsersCount", len(cfg.AllowedUsers))

			return
		}
		log.InfoContext(ctx, "Bot is initialized",
			"allowedUsersCount", len(cfg.AllowedUsers))

		go func() {
			botInst.Start(ctx)
		}()
		log.InfoContext(ctx, "Bot is started",
			"updateTimeoutSeconds", bot.BotUpdateTimeout)
	}

	var srv *http.Server
	if cfg.HTTPEnabled {
		srv = &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           httpapi.NewServer(service, uuid.NewString, log).Routes(),
			ReadHeaderTimeout: httpReadHeaderTimeout,
		}

		go func() {
			if serveErr := srv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
				log.ErrorContext(ctx, "HTTP server failed",
					"error", serveErr,
					"addr", cfg.HTTPAddr)
				cancel()
			}
		}()
		log.InfoContext(ctx, "HTTP server is started",
			"addr", cfg.HTTPAddr)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-c:
		log.InfoContext(ctx, "Shutdown signal is received",
			"signal", sig.String())
	case <-ctx.Done():
	}
	cancel()

	log.InfoContext(ctx, "Exiting...",
		"uptimeSeconds", time.Since(start).Seconds())

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
		defer shutdownCancel()

		if err = srv.Shutdown(shutdownCtx); err != nil {
			log.ErrorContext(shutdownCtx, "Failed to shut down HTTP server",
				"error", err)
		}
		log.InfoContext(shutdownCtx, "HTTP server is stopped")
	}

	if botInst != nil {
		botInst.Stop()
		log.InfoContext(ctx, "Bot is stopped",
			"uptimeSeconds", time.Since(start).Seconds())
	}
}
