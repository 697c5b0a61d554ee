// Package main is the entry point for the blog posts API.
//
// The main package stays minimal: it reads configuration, builds the logger
// and the store, then hands them to internal/server. All behaviour lives in
// the internal packages.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sakif/blog-api/internal/config"
	"github.com/sakif/blog-api/internal/fixtures"
	"github.com/sakif/blog-api/internal/logger"
	"github.com/sakif/blog-api/internal/server"
)

var seedCount int

func main() {
	rootCmd := &cobra.Command{
		Use:               "blog-api",
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		Short:             "Blog posts REST API",
		Long:              "blog-api serves list, fetch, create, update and delete operations on blog posts over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert random posts into the configured store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context())
		},
	}
	seedCmd.Flags().IntVarP(&seedCount, "count", "n", 10, "Number of posts to insert")

	rootCmd.AddCommand(serveCmd, seedCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads configuration and initialises the default logger.
func setup() (*config.ServerEnvironment, *slog.Logger) {
	cfg, err := config.NewServerConfig()
	if err != nil {
		log.Printf("failed to load configuration: %v", err.Error())
		os.Exit(1)
	}

	appLogger := logger.InitLogger(logger.ParseLogLevel(cfg.LogLevel), cfg.Environment)

	appLogger.Info("Configuration loaded",
		slog.String("ENVIRONMENT", cfg.Environment),
		slog.String("HOST", cfg.Host),
		slog.Int("PORT", cfg.Port),
		slog.String("LOG_LEVEL", cfg.LogLevel),
		slog.String("STORE", cfg.Store),
	)
	return cfg, appLogger
}

func runServe() error {
	cfg, appLogger := setup()

	openCtx, openCancel := context.WithTimeout(context.Background(), cfg.StoreConnectTimeout)
	defer openCancel()

	store, err := server.OpenStore(openCtx, cfg, appLogger)
	if err != nil {
		appLogger.Error("Unable to open store", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start closes the store on return.
	if err := server.New(cfg, store, appLogger).Start(ctx); err != nil {
		appLogger.Error("server error", slog.String("error", err.Error()))
		return err
	}
	return nil
}

func runSeed(ctx context.Context) error {
	if seedCount <= 0 {
		return fmt.Errorf("invalid count: %d (must be positive)", seedCount)
	}
	cfg, appLogger := setup()

	if ctx == nil {
		ctx = context.Background()
	}
	openCtx, openCancel := context.WithTimeout(ctx, cfg.StoreConnectTimeout)
	defer openCancel()

	store, err := server.OpenStore(openCtx, cfg, appLogger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	posts, err := fixtures.Seed(ctx, store, seedCount)
	if err != nil {
		return fmt.Errorf("seed posts: %w", err)
	}

	total, err := store.Count(ctx)
	if err != nil {
		return fmt.Errorf("count posts: %w", err)
	}
	appLogger.Info("seeded posts", slog.Int("inserted", len(posts)), slog.Int("total", total))
	return nil
}
