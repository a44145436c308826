package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tendant/site-content/internal/logging"
	"github.com/tendant/site-content/pkg/sitecontent/config"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// .env is optional; real environment variables take precedence
	_ = godotenv.Load()

	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sitecontent-admin",
		Short: "Maintenance tasks for the site content store",
		Long: `Maintenance tasks for the site content store.

Reads the same configuration as the server (DATABASE_URL, translation
provider keys, JWT_SECRET) from the environment, an optional .env file
and an optional --config file.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (optional)")
	rootCmd.PersistentFlags().Bool("dry-run", false, "report changes without saving them")

	rootCmd.AddCommand(NewMigrateLanguagesCommand())
	rootCmd.AddCommand(NewTranslateBackfillCommand())
	rootCmd.AddCommand(NewCreateAdminCommand())

	return rootCmd
}

// loadConfig reads configuration for a command and installs the logger
func loadConfig(cmd *cobra.Command) (*config.ServerConfig, error) {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(config.WithConfigFile(configFile), config.WithEnv())
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logging.Setup(cfg.Environment)
	return cfg, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
