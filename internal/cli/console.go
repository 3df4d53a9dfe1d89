package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/wiyan17/Notifwallet-bot/internal/control"
	"github.com/wiyan17/Notifwallet-bot/internal/core/config"
	"github.com/wiyan17/Notifwallet-bot/internal/infra/console"
)

var serveHTTP bool

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Run the bot with commands and alerts on stdin/stdout",
	Run:   runConsole,
}

func init() {
	consoleCmd.Flags().BoolVar(&serveHTTP, "http", false, "also serve health, metrics and webhook endpoints")
	rootCmd.AddCommand(consoleCmd)
}

func runConsole(cmd *cobra.Command, args []string) {
	_ = godotenv.Load()

	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	// Console sessions have no Telegram user id
	cfg.Telegram.AllowedUsers = nil
	setupLogging(cfg)

	front := console.New(os.Stdin, os.Stdout, nil)
	app, err := control.NewWatcher(control.Config{App: cfg, Transport: front, NoServer: !serveHTTP})
	if err != nil {
		slog.Error("Failed to initialize Watcher", "error", err)
		os.Exit(1)
	}
	front.SetRouter(app.Router())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		slog.Error("Failed to start Watcher", "error", err)
		os.Exit(1)
	}
	if err := front.Run(ctx); err != nil {
		slog.Error("Console input failed", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := app.Stop(shutdownCtx); err != nil {
		slog.Error("Error during shutdown", "error", err)
		os.Exit(1)
	}
}
