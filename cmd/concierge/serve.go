package concierge

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/happyculture/soco-concierge/pkg/config"
	"github.com/happyculture/soco-concierge/pkg/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the concierge HTTP server",
	Long: `Start the HTTP server answering guest questions.

Endpoints:
  POST /chat    Answer a question
  GET  /health  Liveness check
  GET  /ready   Readiness check (knowledge store reachable)

Configuration comes from config files, environment variables, and flags.`,
	RunE: runServe,
}

var (
	serveHost string
	servePort int
	serveMode string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "", "Server host")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Server port")
	serveCmd.Flags().StringVar(&serveMode, "mode", "", "Server mode (debug, release, test)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serveHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = servePort
	}
	if cmd.Flags().Changed("mode") {
		cfg.Server.Mode = serveMode
	}
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", cfg.Server.Port)
	}

	log := newLogger(cfg)

	index, err := newIndex(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("failed to open knowledge store: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = index.Close(closeCtx)
	}()

	engine, err := buildEngine(cfg, index, log)
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}

	srv := server.New(cfg, engine, index)
	srv.Setup()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info("server listening", "host", cfg.Server.Host, "port", cfg.Server.Port)
		if err := srv.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		log.Info("shutting down", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		log.Info("server stopped")
		return nil
	}
}
