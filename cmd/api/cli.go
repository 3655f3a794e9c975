package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"bookshelf/internal/book"
	"bookshelf/internal/config"
	"bookshelf/internal/seed"

	"github.com/spf13/cobra"
)

const (
	Version = "1.0.0"
	appName = "bookshelf"
)

func rootCmd() *cobra.Command {
	var (
		addr     string
		logLevel string
		seedFile string
	)

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "In-memory bookshelf HTTP API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnvFiles()
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if cmd.Flags().Changed("seed") {
				cfg.SeedFile = seedFile
			}

			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
			slog.SetDefault(logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return newApp(cfg, logger).run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides APP_ADDR)")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")
	cmd.Flags().StringVar(&seedFile, "seed", "", "YAML fixture loaded at startup (overrides SEED_FILE)")

	cmd.AddCommand(versionCmd(), seedCheckCmd())
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
		},
	}
}

func seedCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-check <file>",
		Short: "Validate a seed fixture against an empty registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payloads, err := seed.LoadFile(args[0])
			if err != nil {
				return err
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))
			svc := book.NewService(book.NewRegistry())

			res, err := seed.Apply(context.Background(), svc, payloads, logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d accepted, %d rejected\n", len(res.Created), res.Rejected)
			return nil
		},
	}
}
