package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/claude/ironlog/internal/companion"
	"github.com/claude/ironlog/internal/models"
	"github.com/claude/ironlog/internal/notify"
	"github.com/claude/ironlog/internal/upload"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "IronLog server URL (e.g. https://ironlog.tail1234.ts.net)")
	apiKey := flag.String("api-key", os.Getenv("IRONLOG_AUTH_API_KEY"), "API key for the companion endpoint")
	routinePath := flag.String("routine", "", "path to a routine YAML file")
	routineID := flag.String("routine-id", "", "fetch the routine with this ID from the server instead")
	stateDir := flag.String("state-dir", "", "directory for the outbox database (default ~/.ironlog-watch)")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("ironlog-watch", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *serverURL == "" || (*routinePath == "") == (*routineID == "") {
		fmt.Fprintf(os.Stderr, "Usage: ironlog-watch -server <URL> -api-key <key> (-routine routine.yaml | -routine-id <uuid>) [-state-dir dir]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := upload.NewClient(*serverURL, *apiKey)

	routine, err := loadRoutine(ctx, client, *routinePath, *routineID)
	if err != nil {
		log.Error("failed to load routine", "error", err)
		os.Exit(1)
	}
	log.Info("routine loaded", "name", routine.Name, "exercises", len(routine.Exercises))

	// Open outbox
	dir := *stateDir
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Error("failed to get home directory", "error", err)
			os.Exit(1)
		}
		dir = filepath.Join(homeDir, ".ironlog-watch")
	}
	outbox, err := upload.OpenOutbox(dir)
	if err != nil {
		log.Error("failed to open outbox", "error", err)
		os.Exit(1)
	}
	defer outbox.Close()

	channel := upload.NewChannel(client, outbox, log)

	// Deliver anything left over from earlier runs.
	if n, err := channel.Flush(ctx); err != nil {
		log.Warn("flushing outbox", "delivered", n, "error", err)
	} else if n > 0 {
		log.Info("outbox flushed", "delivered", n)
	}

	notifier := notify.New(func(n companion.Notification) {
		fmt.Printf("\a*** %s: %s ***\n", n.Title, n.Body)
	}, log)
	defer notifier.Stop()

	engine := companion.New(companion.NewSimulatedSensor(time.Now), channel, notifier, log, companion.Options{})

	c := &console{engine: engine, routine: *routine, out: os.Stdout}
	if err := c.run(ctx, os.Stdin); err != nil {
		log.Error("reading commands", "error", err)
	}

	if engine.State() != companion.StateIdle && engine.State() != companion.StateEnded {
		log.Warn("workout still running, discarding")
		engine.DiscardWorkout()
	}
	channel.Wait()
}

func loadRoutine(ctx context.Context, client *upload.Client, path, id string) (*models.Routine, error) {
	if id != "" {
		routineID, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("parsing routine id: %w", err)
		}
		return client.FetchRoutine(ctx, routineID)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading routine file: %w", err)
	}
	var routine models.Routine
	if err := yaml.Unmarshal(data, &routine); err != nil {
		return nil, fmt.Errorf("parsing routine file: %w", err)
	}
	if routine.Name == "" || len(routine.Exercises) == 0 {
		return nil, fmt.Errorf("routine %s needs a name and at least one exercise", path)
	}
	return &routine, nil
}
