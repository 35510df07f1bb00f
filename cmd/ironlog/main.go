package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/claude/ironlog/internal/config"
	"github.com/claude/ironlog/internal/ingest/alpha"
	ironmcp "github.com/claude/ironlog/internal/mcp"
	"github.com/claude/ironlog/internal/server"
	"github.com/claude/ironlog/internal/storage"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	mcpRemote := flag.String("mcp-remote", "", "serve MCP over stdio against a remote IronLog server URL and exit")
	flag.Parse()

	// stdout carries the MCP protocol in remote mode.
	logOut := os.Stdout
	if *mcpRemote != "" {
		logOut = os.Stderr
	}
	log := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("IronLog starting", "version", Version)

	if *mcpRemote != "" {
		s := ironmcp.New(ironmcp.NewHTTPClient(*mcpRemote), Version, log)
		if err := mcpserver.ServeStdio(s); err != nil {
			log.Error("mcp stdio server failed", "error", err)
			os.Exit(1)
		}
		return
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if *migrateOnly {
		if cfg.Database.Driver != config.DriverPostgres {
			log.Info("migrate-only: nothing to do for driver", "driver", cfg.Database.Driver)
			return
		}
		version, err := storage.RunMigrations(cfg.Database.DSN(), cfg.Database.Migrations)
		if err != nil {
			log.Error("migration failed", "version", version, "error", err)
			os.Exit(1)
		}
		log.Info("migrations applied, exiting", "version", version)
		return
	}

	// Open store (applies migrations)
	ctx := context.Background()
	store, err := storage.Open(ctx, cfg.Database)
	if err != nil {
		log.Error("failed to open database", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer store.Close()
	log.Info("database ready", "driver", cfg.Database.Driver)

	// Create server
	srv := server.New(store, alpha.NewProvider(store, log), cfg.Auth.APIKey, log)
	mcpSrv := ironmcp.New(ironmcp.NewLocal(srv.Progress(), store), Version, log)
	srv.MountMCP(mcpserver.NewStreamableHTTPServer(mcpSrv))

	// Start server: tsnet or plain HTTP
	var listener net.Listener

	if cfg.Tailscale.Enabled {
		tsServer := &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}
