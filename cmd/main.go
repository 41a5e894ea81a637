/*
Package main is the entry point for the roomchat server.

It is responsible for loading configuration, initializing the global logging system,
setting up the HTTP server, creating the room registry (Chat Manager) and the name registry,
and gracefully handling operating system interrupt signals (SIGINT, SIGTERM)
to ensure a smooth server shutdown.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"roomchat/internal/app/chat"
	"roomchat/internal/app/user"
	"roomchat/internal/configs"
	"roomchat/internal/handler"
	"roomchat/internal/pkg/logx"
)

func main() {
	flags := newFlags()
	if err := flags.parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(2)
	}

	// Load configuration from defaults, config file and environment variables
	cfg, err := configs.LoadConfig(flags.configPath)
	if err == nil {
		err = flags.apply(cfg)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.LogLevel, cfg.IsDevelopment())
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Str("addr", cfg.Addr()).
		Str("ws_path", cfg.WSPath).
		Str("default_room", cfg.DefaultRoom).
		Str("envelope", cfg.Envelope).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize registries
	manager := chat.NewManager(cfg)
	names := user.NewRegistry()

	// Setup HTTP server and routes
	router := handler.Router(ctx, &handler.AppDeps{
		Manager: manager,
		Names:   names,
		Config:  cfg,
	})

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("roomchat server listening on ws://%s%s", cfg.Addr(), cfg.WSPath))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Server forced to shutdown")
	}

	// Upgraded connections are not tracked by the HTTP server; the manager ends them.
	if err := manager.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Sessions still running at shutdown deadline")
	}

	logx.Info("Server gracefully stopped.")
}
