package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/codegangsta/zcommand/internal/config"
	"github.com/codegangsta/zcommand/internal/console"
	"github.com/codegangsta/zcommand/internal/prefs"
	"github.com/codegangsta/zcommand/internal/telegram"
	"github.com/codegangsta/zcommand/internal/zserver"
	"github.com/codegangsta/zcommand/internal/zulip"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	frontend := flag.String("frontend", "", "frontend to run: console or telegram (overrides config)")
	serve := flag.Bool("serve", false, "run the reference zcommand server instead of a client")
	flag.Parse()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to get home directory: %v\n", err)
		os.Exit(1)
	}

	if *configPath == "" {
		*configPath = homeDir + "/.config/zcommand/config.yaml"
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *frontend != "" {
		cfg.Frontend = *frontend
	}
	if cfg.PrefsFile == "" {
		cfg.PrefsFile = homeDir + "/.config/zcommand/prefs.yaml"
	}

	// The console owns stdout, so it only logs to the log file
	setupLogger(cfg, !*serve && cfg.Frontend == config.FrontendConsole)

	slog.Info("config loaded",
		"frontend", cfg.Frontend,
		"server", cfg.Server.URL,
		"serve", *serve,
		"debug", cfg.Debug,
	)

	settings := prefs.NewStore(cfg.PrefsFile, slog.Default())
	if err := settings.Load(); err != nil {
		slog.Warn("failed to load settings", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		slog.Info("shutdown signal received", "signal", sig.String())
		cancel()
	}()

	if *serve {
		runServer(ctx, cfg, settings)
		settings.Wait()
		return
	}

	if err := cfg.ValidateClient(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	client := zulip.NewClient(cfg.Server.URL, cfg.Server.Email, cfg.Server.APIKey, cfg.Server.Timeout)

	switch cfg.Frontend {
	case config.FrontendTelegram:
		runTelegram(ctx, cfg, client, settings)
	default:
		runConsole(ctx, cfg, client, settings)
	}
	settings.Wait()
}

func runServer(ctx context.Context, cfg *config.Config, settings *prefs.Store) {
	srv := zserver.New(settings, slog.Default())
	if err := srv.Start(cfg.Listen); err != nil {
		slog.Error("failed to start zcommand server", "error", err)
		os.Exit(1)
	}
	fmt.Printf("zcommand server listening on http://%s\n", srv.Addr())

	<-ctx.Done()
	srv.Stop()
	slog.Info("zcommand server stopped")
}

func runTelegram(ctx context.Context, cfg *config.Config, client *zulip.Client, settings *prefs.Store) {
	bot, err := telegram.New(client, client, telegram.Options{
		Token:     cfg.Telegram.Token,
		Allowlist: cfg.Allowlist,
		ServerURL: cfg.Server.URL,
		ComposeTo: cfg.Compose.To,
		Settings:  settings,
		Logger:    slog.Default(),
	})
	if err != nil {
		slog.Error("failed to create telegram bot", "error", err)
		os.Exit(1)
	}

	slog.Info("zcommand started, connecting to telegram")

	// Start the bot (blocks until context is cancelled)
	if err := bot.Start(ctx); err != nil {
		slog.Error("telegram bot error", "error", err)
		os.Exit(1)
	}
}

func runConsole(ctx context.Context, cfg *config.Config, client *zulip.Client, settings *prefs.Store) {
	c := console.New(client, client, console.Options{
		ServerURL: cfg.Server.URL,
		ComposeTo: cfg.Compose.To,
		Settings:  settings,
		Logger:    slog.Default(),
	})
	if err := c.Run(ctx); err != nil {
		slog.Error("console error", "error", err)
		os.Exit(1)
	}
}

// setupLogger configures slog based on config settings
func setupLogger(cfg *config.Config, quiet bool) {
	var level slog.Level
	if cfg.Debug {
		level = slog.LevelDebug
	} else {
		level = slog.LevelInfo
	}

	// Determine output destination
	var w io.Writer = os.Stdout
	if quiet {
		w = io.Discard
	}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
			os.Exit(1)
		}
		if quiet {
			w = f
		} else {
			// Write to both stdout and file
			w = io.MultiWriter(os.Stdout, f)
		}
	}

	opts := &slog.HandlerOptions{Level: level}
	handler := slog.NewTextHandler(w, opts)
	slog.SetDefault(slog.New(handler))
}
