package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"smartbiz/internal/app"
	"smartbiz/internal/config"
	"smartbiz/pkg/logger"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "bizctl",
	Short: "bizctl - operator tools for the smartbiz document engine",
	Long: `bizctl runs maintenance tasks against the configured storage.

Configuration is read from the environment (and an optional .env file),
the same way the API server reads it. Most commands only make sense with
STORAGE_DRIVER=postgres.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		log, err := logger.New(logger.Config{Level: cfg.App.LogLevel, Development: true})
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		logger.SetDefault(log)
		cmd.SetContext(withConfig(cmd.Context(), cfg))
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logger.Default().Errorw("command failed", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type configKey struct{}

func withConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

func configFrom(cmd *cobra.Command) *config.Config {
	cfg, _ := cmd.Context().Value(configKey{}).(*config.Config)
	return cfg
}

// openBackend opens the configured backend; callers must Close it.
func openBackend(cmd *cobra.Command) (*app.Backend, error) {
	cfg := configFrom(cmd)
	if cfg.Storage.Driver == config.StorageMemory {
		logger.Warn(cmd.Context(), "memory storage: changes are lost when bizctl exits")
	}
	return app.NewBackend(cmd.Context(), cfg)
}
