// Command gj-server starts the gratitude journal HTTP API.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/and161185/gratitude-journal/internal/config"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// flagKeys maps command-line flags to config keys.
var flagKeys = map[string]string{
	"addr":             config.KeyAddr,
	"dsn":              config.KeyDSN,
	"env":              config.KeyEnv,
	"log-level":        config.KeyLogLevel,
	"migrate-on-start": config.KeyMigrateOnStart,
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "gj-server",
		Short:         "Gratitude journal API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	pf := root.PersistentFlags()
	pf.String("config", "", "config file (yaml)")
	pf.String("addr", ":8080", "listen address")
	pf.String("dsn", "", "PostgreSQL DSN")
	pf.String("env", "prod", "environment: dev or prod")
	pf.String("log-level", "info", "log level")
	pf.Bool("migrate-on-start", true, "apply migrations before serving")

	root.AddCommand(
		&cobra.Command{Use: "serve", Short: "Start the HTTP server", RunE: runServe},
		&cobra.Command{Use: "migrate", Short: "Apply database migrations and exit", RunE: runMigrate},
		&cobra.Command{
			Use:   "version",
			Short: "Print version",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "gj-server %s (%s)\n", version, buildDate)
			},
		},
	)
	return root
}

// loadViper reads the config file and env, then lets explicitly set flags win.
func loadViper(cmd *cobra.Command) (*viper.Viper, error) {
	file, _ := cmd.Flags().GetString("config")
	v, err := config.NewViper(file)
	if err != nil {
		return nil, err
	}
	for name, key := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return v, nil
}
