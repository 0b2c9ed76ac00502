package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Warky-Devs/backoffice/pkg/config"
	"github.com/Warky-Devs/backoffice/pkg/logger"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "backoffice",
	Short: "Back-office record search service",
	// errors are printed once by main
	SilenceErrors: true,
	SilenceUsage:  true,
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.IsDev())
	return cfg, nil
}

func main() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the environment")
	rootCmd.AddCommand(serveCmd(), migrateCmd(), seedCmd())

	err := rootCmd.Execute()
	logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
