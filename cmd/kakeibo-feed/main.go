package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"kakeibo/internal/amqp"
	"kakeibo/internal/config"
	"kakeibo/internal/feed"
	"kakeibo/internal/identity"
	applog "kakeibo/internal/log"
	"kakeibo/internal/mirror"
	"kakeibo/internal/services"
	"kakeibo/internal/store/sqlite"
)

// kakeibo-feed follows the shared ledger and keeps derived views fresh: it
// logs the standings after every change and mirrors them to Google Sheets
// when a spreadsheet is configured.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	logger := applog.New(applog.Config{Level: applog.ParseLevel(cfg.LogLevel), Format: "text"})
	applog.SetDefault(logger)

	logger.Info("Starting kakeibo-feed")

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	rules, err := cfg.Rules()
	if err != nil {
		logger.Error("Invalid contest rules", "error", err)
		os.Exit(1)
	}

	// The feed follows the persisted ledger; an in-process memory store would
	// never see the server's writes.
	repo, err := sqlite.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open SQLite store", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	var notifier feed.Notifier
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		notifier = client
		logger.Info("AMQP notifications enabled", "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - falling back to polling only", "poll_interval", cfg.PollInterval)
	}

	var (
		sheets  *mirror.Client
		tracker *mirror.Tracker
	)
	if cfg.GoogleSpreadsheetID != "" {
		sheets, err = mirror.New(context.Background(), cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets mirror", "error", err)
			os.Exit(1)
		}
		tracker = mirror.NewTracker(sheets)
		logger.Info("Google Sheets mirror enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets mirror disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	ident, err := identity.Load(cfg.SettingsPath)
	if err != nil {
		logger.Error("Failed to load local settings", "error", err, "path", cfg.SettingsPath)
		os.Exit(1)
	}
	logger.Info("Local identity loaded", "writer_id", ident.WriterID())

	svc := services.NewContestService(rules, repo, nil)
	sub := feed.NewSubscription(repo, notifier, cfg.PollInterval)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	events := sub.Start(gctx)

	feedLog := applog.WithComponent(logger, applog.ComponentFeed)

	g.Go(func() error {
		for ev := range events {
			if ev.Err != nil {
				feedLog.Error("Snapshot reload failed", "error", ev.Err)
				continue
			}
			sb := svc.Compute(ev.Ledger)
			feedLog.Info("Standings updated",
				"days", sb.Days,
				"total_a_cents", sb.TotalA.Cents,
				"total_b_cents", sb.TotalB.Cents,
				"overall", sb.Overall.String(),
				"wins_a", sb.Tally.WinsA,
				"wins_b", sb.Tally.WinsB,
				"draws", sb.Tally.Draws)

			if sheets != nil {
				// The mirror is best-effort; the next event retries.
				if err := tracker.Sync(gctx, ev.Ledger); err != nil {
					feedLog.Error("Ledger mirror failed", "error", err)
				}
				if err := sheets.WriteScoreboard(gctx, sb); err != nil {
					feedLog.Error("Scoreboard mirror failed", "error", err)
				}
			}
		}
		return nil
	})

	g.Go(func() error {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-gctx.Done():
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Feed worker error", "error", err)
		os.Exit(1)
	}
	logger.Info("Feed worker stopped gracefully")
}
