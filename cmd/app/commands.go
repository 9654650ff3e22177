package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/osse101/CropCycle_Go/internal/bootstrap"
	"github.com/osse101/CropCycle_Go/internal/config"
)

func serveCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			bootstrap.SetupLogger(cfg)

			app, err := bootstrap.Build(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			return app.Run(cmd.Context())
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides PORT)")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		Long:  "Applies the embedded goose migrations to the PostgreSQL database named by the DB_* variables.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfg.StorageBackend = config.StoragePostgres
			bootstrap.SetupLogger(cfg)

			storage, err := bootstrap.InitializeStorage(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			storage.Close()
			slog.Info("Migrations complete")
			return nil
		},
	}
}

func checkEnvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-env",
		Short: "Validate the environment against the expected .env schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			warnings, err := config.ValidateEnvWithWarnings()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, w := range warnings {
				fmt.Fprintln(out, "WARNING:", w)
			}
			fmt.Fprintln(out, "Environment OK")
			return nil
		},
	}
}
