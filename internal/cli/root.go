package cli

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hairtrack/hairtrack-api/internal/app"
	"github.com/hairtrack/hairtrack-api/internal/config"
	"github.com/hairtrack/hairtrack-api/internal/pkg/logger"
)

type globalFlags struct {
	dbDriver    string
	databaseURL string
	logLevel    string
}

// NewRootCmd builds the hairctl command tree. opts are passed to every app.New call.
func NewRootCmd(opts ...app.Option) *cobra.Command {
	var g globalFlags

	cmd := &cobra.Command{
		Use:   "hairctl",
		Short: "HairTrack operator tool",
		Long: `hairctl runs HairTrack operations against the configured database, storage and AI provider.

It migrates the schema, drives a scalp analysis from local photos,
exports a user's history and renders session reports.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&g.dbDriver, "db", "", "Database driver (postgres or sqlite); defaults to DATABASE_DRIVER")
	cmd.PersistentFlags().StringVar(&g.databaseURL, "database-url", "", "Database URL or SQLite path; defaults to DATABASE_URL")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "Log level")

	cmd.AddCommand(newMigrateCmd(&g))
	cmd.AddCommand(newAnalyzeCmd(&g, opts))
	cmd.AddCommand(newExportCmd(&g, opts))
	cmd.AddCommand(newReportCmd(&g, opts))
	cmd.AddCommand(newRemindCmd(&g, opts))
	cmd.AddCommand(newServeCmd(&g, opts))

	return cmd
}

func (g *globalFlags) config() (*config.Config, error) {
	cfg := config.Load()
	if g.dbDriver != "" {
		cfg.DatabaseDriver = g.dbDriver
	}
	if g.databaseURL != "" {
		cfg.DatabaseURL = g.databaseURL
	}
	if err := logger.Init(logger.Config{Level: g.logLevel, Environment: cfg.Env}); err != nil {
		return nil, err
	}
	return cfg, nil
}
