package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/osse101/CropCycle_Go/internal/handler"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "cropcycle",
		Short:   "Crop cycle lifecycle and recommendation service",
		Version: handler.Version,
		Long: `cropcycle tracks crop cycles from planning to harvest and turns weather,
market and soil snapshots into ranked, actionable recommendations.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(checkEnvCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
