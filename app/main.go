package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/rss-brief/app/api"
	"github.com/lysyi3m/rss-brief/app/cfg"
	"github.com/lysyi3m/rss-brief/app/delivery"
	"github.com/lysyi3m/rss-brief/app/digest"
	"github.com/lysyi3m/rss-brief/app/feed"
	"github.com/lysyi3m/rss-brief/app/history"
	"github.com/lysyi3m/rss-brief/app/tasks"
)

func main() {
	appConfig, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appConfig == nil {
		// Help was shown
		return
	}

	setupLogger(appConfig.Debug)

	slog.Info("Starting RSS Brief", "version", appConfig.Version)

	sourcesFile, err := feed.NewSourceLoader(appConfig.FeedsFile, appConfig.FetchTimeout).Run()
	if err != nil {
		fatal("Failed to load feeds", "path", appConfig.FeedsFile, "error", err)
	}
	slog.Info("Feeds loaded", "feeds", len(sourcesFile.Feeds), "categories", len(sourcesFile.Categories))

	rc, err := cfg.NewRunConfig(appConfig, sourcesFile.Categories)
	if err != nil {
		fatal("Failed to build run configuration", "error", err)
	}

	store, err := history.Open(rc.HistoryPath)
	if err != nil {
		fatal("Failed to open history", "path", rc.HistoryPath, "error", err)
	}
	defer store.Close()

	fetcher := feed.NewFetcher(feed.NewHTTPClient(), feed.NewParser(), rc.UserAgent)
	aggregator := digest.NewAggregator(fetcher).WithContentExtraction(fetcher, feed.NewContentExtractor())

	brief := tasks.NewBrief(rc, sourcesFile.Feeds, store, aggregator,
		delivery.NewMailer(rc.Email),
		delivery.NewTelegramNotifier(rc.Telegram, nil))

	if appConfig.Port == "" {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := tasks.RunOnce(ctx, brief); err != nil {
			store.Close()
			fatal("Run failed", "error", err)
		}
		return
	}

	serve(appConfig, brief, len(sourcesFile.Feeds))
}

func serve(appConfig *cfg.Cfg, brief *tasks.Brief, sourceCount int) {
	interval := time.Duration(appConfig.ScheduleInterval) * time.Second

	slog.Info("Starting scheduler", "interval", interval.String())
	scheduler := tasks.NewScheduler(brief, interval)
	scheduler.Start()
	defer scheduler.Stop()

	if err := scheduler.Trigger(tasks.TriggerStartup); err != nil {
		slog.Warn("Failed to enqueue startup run", "error", err)
	}

	handler := api.NewHandler(brief, scheduler, sourceCount)
	server := api.NewServer(handler, appConfig.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appConfig.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appConfig.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func fatal(msg string, args ...any) {
	slog.Error(msg, args...)
	os.Exit(1)
}
