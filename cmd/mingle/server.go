package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/yanhann10/mingle/internal/aiserver"
	"github.com/yanhann10/mingle/internal/api"
	"github.com/yanhann10/mingle/internal/config"
	"github.com/yanhann10/mingle/internal/profile"
	"github.com/yanhann10/mingle/internal/ragsync"
	"github.com/yanhann10/mingle/internal/storage"
	"github.com/yanhann10/mingle/internal/voicenote"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the mingle server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve mingle tools over MCP stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMCP()
	},
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "mingle version %s\n", version)

	cfg := config.Load()

	// Initialize structured logging.
	logLevel := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open storage.
	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing storage: %v\n", err)
		}
	}()

	// The AI server is optional at startup; every endpoint that needs it
	// degrades or fails per-request, so its absence is only worth a warning.
	aiClient := aiserver.New(cfg.AI.BaseURL)
	if !aiClient.IsRunning(ctx) {
		printWarning("AI server not reachable at %s; voice notes and ranking will fail until it is up", cfg.AI.BaseURL)
	}

	manager := profile.NewManager(store)
	resolver := profile.NewResolver(manager)
	dispatcher := ragsync.NewDispatcher(aiClient, 0)
	defer dispatcher.Close()

	ingest := voicenote.NewIngest(filepath.Join(cfg.Storage.DataDir, "voice-notes"))
	pipeline := voicenote.NewPipeline(aiClient, aiClient, resolver)

	handler := api.NewRouter(api.Deps{
		Profiles: manager,
		RAG:      dispatcher,
		Ingest:   ingest,
		Pipeline: pipeline,
		Ranker:   aiClient,
		Drafter:  aiClient,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Start server in a goroutine.
	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "mingle listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for signal or server error.
	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	// Graceful shutdown with timeout.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runMCP() error {
	cfg := config.Load()

	// Logs must stay off stdout: the MCP transport owns it.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer store.Close()

	manager := profile.NewManager(store)
	mcpSrv := api.NewMCPServer(api.MCPDeps{
		Profiles: manager,
		Resolver: profile.NewResolver(manager),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.NewStdioServer(mcpSrv).Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("MCP stdio server: %w", err)
	}
	return nil
}
