package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/ironlog/internal/config"
	"github.com/claude/ironlog/internal/ingest"
	"github.com/claude/ironlog/internal/ingest/alpha"
	"github.com/claude/ironlog/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	csvPath := flag.String("file", "", "path to an Alpha Progression CSV export (required)")
	dryRun := flag.Bool("dry-run", false, "parse and report counts without writing to the database")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *csvPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: ironlog-import -config config.yaml -file export.csv [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	f, err := os.Open(*csvPath)
	if err != nil {
		log.Error("cannot open export", "path", *csvPath, "error", err)
		os.Exit(1)
	}
	defer f.Close()

	if *dryRun {
		log.Info("DRY RUN mode, no data will be written to the database")
		sessions, err := alpha.Parse(f)
		if err != nil {
			log.Error("parse failed", "error", err)
			os.Exit(1)
		}
		result := &ingest.Result{SessionsReceived: len(sessions)}
		for _, s := range sessions {
			ws, warmups := alpha.ToWorkoutSession(s)
			result.WarmupsSkipped += warmups
			for _, ex := range ws.Exercises {
				result.SetsReceived += len(ex.Sets)
			}
		}
		printResult(log, result)
		return
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	store, err := storage.Open(ctx, cfg.Database)
	if err != nil {
		log.Error("failed to open database", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer store.Close()
	log.Info("database ready", "driver", cfg.Database.Driver)

	result, err := alpha.NewProvider(store, log).Ingest(ctx, f)
	if err != nil {
		log.Error("import failed", "error", err)
		os.Exit(1)
	}

	printResult(log, result)
	log.Info("import complete")
}

func printResult(log *slog.Logger, r *ingest.Result) {
	log.Info("import stats",
		"sessions_received", r.SessionsReceived,
		"sessions_inserted", r.SessionsInserted,
		"sessions_replaced", r.SessionsReplaced,
		"sets_received", r.SetsReceived,
		"warmups_skipped", r.WarmupsSkipped,
	)
}
