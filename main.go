package main

import (
	"fmt"
	"os"

	"github.com/dondesang/appdon/config"
	"github.com/dondesang/appdon/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// App holds what every subcommand needs.
type App struct {
	cfg    *config.Config
	logger *zap.Logger
}

var app *App

func main() {
	rootCmd := &cobra.Command{
		Use:   "appdon",
		Short: "Don de Sang Togo - donor and admin API",
		Long:  `Serves the donor and admin APIs for blood donation coordination, and runs one-off catalogue and countries tasks.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil && app.logger != nil {
				_ = app.logger.Sync()
			}
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(countriesCmd())
	rootCmd.AddCommand(catalogCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp loads the configuration and sets up the logger.
func initApp() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := logging.InitLogger(cfg.LogEnv, cfg.LogDir)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	app = &App{cfg: cfg, logger: logger}
	app.logger.Debug("configuration loaded",
		zap.String("auth_mode", cfg.AuthMode),
		zap.Bool("database", cfg.DatabaseURL != ""),
		zap.Bool("redis", cfg.RedisAddr != ""),
	)
	return nil
}
