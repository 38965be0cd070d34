// Package cli implements dashctl, the command-line companion of the
// dashboard server.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lorrc/service-desk-dashboard/internal/config"
	"github.com/lorrc/service-desk-dashboard/internal/infrastructure/logging"
)

// Set by the linker at build time.
var (
	version = "dev"
	commit  = "none"
)

// app holds the state shared by every subcommand.
type app struct {
	v *viper.Viper
}

// NewRootCommand builds the dashctl command tree.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "dashctl",
		Short:         "Inspect and load service-desk dashboard data.",
		Long:          `dashctl runs the dashboard pipeline from the command line and manages its database.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.initConfig()
		},
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "Config file (default is ./.dashctl.yaml)")
	flags.String("data", "", "Records JSON file or http(s) URL (default from DASHBOARD_DATA_SOURCE)")
	flags.String("database-url", "", "Read records from PostgreSQL instead of --data")
	flags.String("group-field", "", "Field whose values form the agent groups")
	flags.String("value-field", "", "Numeric field that is averaged and summarised")
	flags.String("date-field", "", "Timestamp field used by the period window")
	flags.String("priority-field", "", "Field shown by the priority panel")
	flags.String("rating-field", "", "Field shown by the satisfaction panel")
	flags.String("log-level", "warn", "Log level: debug, info, warn, error")
	_ = a.v.BindPFlags(flags)

	root.AddCommand(
		a.newSummaryCommand(),
		a.newImportCommand(),
		a.newHashPasswordCommand(),
		a.newAddOperatorCommand(),
		newVersionCommand(),
	)
	return root
}

// initConfig merges the config file and DASHCTL_* environment variables
// under the flags.
func (a *app) initConfig() error {
	if file := a.v.GetString("config"); file != "" {
		a.v.SetConfigFile(file)
	} else {
		a.v.SetConfigName(".dashctl")
		a.v.SetConfigType("yaml")
		a.v.AddConfigPath(".")
		a.v.AddConfigPath("$HOME")
	}

	a.v.SetEnvPrefix("DASHCTL")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// settings returns the server configuration from the environment with
// command-line overrides applied.
func (a *app) settings() *config.Config {
	cfg := config.FromEnv()

	override := func(key string, dst *string) {
		if s := a.v.GetString(key); s != "" {
			*dst = s
		}
	}
	override("data", &cfg.Dashboard.DataSource)
	override("database-url", &cfg.Database.URL)
	override("group-field", &cfg.Dashboard.GroupField)
	override("value-field", &cfg.Dashboard.ValueField)
	override("date-field", &cfg.Dashboard.DateField)
	override("priority-field", &cfg.Dashboard.PriorityField)
	override("rating-field", &cfg.Dashboard.RatingField)

	// The CLI never migrates implicitly.
	cfg.Database.AutoMigrate = false
	return cfg
}

func (a *app) logger(w io.Writer) *slog.Logger {
	return logging.NewLogger(logging.Config{
		Level:       a.v.GetString("log-level"),
		Format:      "text",
		Output:      w,
		ServiceName: "dashctl",
		Environment: "cli",
	})
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of dashctl.",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("dashctl\n")
			cmd.Printf("  Version: %s\n", version)
			cmd.Printf("  Commit:  %s\n", commit)
		},
	}
}

// Execute runs the command tree.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}
