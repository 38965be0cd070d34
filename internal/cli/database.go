package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lorrc/service-desk-dashboard/internal/adapters/secondary/jsonfile"
	"github.com/lorrc/service-desk-dashboard/internal/adapters/secondary/postgres"
	"github.com/lorrc/service-desk-dashboard/internal/bootstrap"
	"github.com/lorrc/service-desk-dashboard/internal/core/domain"
)

// ErrDatabaseRequired is returned by commands that write to PostgreSQL.
var ErrDatabaseRequired = errors.New("--database-url (or DATABASE_URL) is required")

func (a *app) newImportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [file-or-url]",
		Short: "Load a records JSON document into PostgreSQL.",
		Long: `Read a JSON array of ticket records and upsert it into the database by
ticket code. Without an argument the configured data source is imported.

Examples:
  dashctl import dados_atendimento.json --database-url postgres://localhost/dashboard --migrate`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.settings()
			if cfg.Database.URL == "" {
				return ErrDatabaseRequired
			}
			location := cfg.Dashboard.DataSource
			if len(args) == 1 {
				location = args[0]
			}
			cfg.Database.AutoMigrate = a.v.GetBool("migrate")
			cfg.Database.MigrationsPath = a.v.GetString("migrations")

			ctx := cmd.Context()
			logger := a.logger(cmd.ErrOrStderr())

			records, err := jsonfile.NewSource(location, nil).LoadRecords(ctx)
			if err != nil {
				return err
			}

			pool, err := bootstrap.OpenDatabase(ctx, cfg.Database, logger)
			if err != nil {
				return err
			}
			defer pool.Close()

			written, err := postgres.NewRecordRepository(pool).ImportRecords(ctx, records)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d of %d records from %s\n", written, len(records), location)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.Bool("migrate", false, "Apply pending migrations first")
	flags.String("migrations", "migrations", "Migrations directory")
	_ = a.v.BindPFlags(flags)

	return cmd
}

func (a *app) newHashPasswordCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print the bcrypt hash of an operator password.",
		Long: `Hash a password for OPERATOR_PASSWORD_HASH. The password is read from the
argument, or from the first line of standard input when omitted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(cmd, args)
			if err != nil {
				return err
			}
			if problems := domain.ValidatePassword(password); len(problems) > 0 {
				return fmt.Errorf("weak password: %s", strings.Join(problems, "; "))
			}
			hash, err := domain.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func (a *app) newAddOperatorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-operator",
		Short: "Create or update an operator account in PostgreSQL.",
		Long: `Store an operator allowed to log in to the dashboard. An existing operator
with the same email gets the new password.

Examples:
  echo 'S3cretPass' | dashctl add-operator --email ops@example.com --database-url postgres://localhost/dashboard`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.settings()
			if cfg.Database.URL == "" {
				return ErrDatabaseRequired
			}

			password, err := readPassword(cmd, nil)
			if err != nil {
				return err
			}
			hash, err := domain.HashPassword(password)
			if err != nil {
				return err
			}
			op, err := domain.NewOperator(uuid.Nil, a.v.GetString("email"), hash)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			pool, err := bootstrap.OpenDatabase(ctx, cfg.Database, a.logger(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := postgres.NewOperatorRepository(pool).Save(ctx, op); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "operator %s saved\n", op.Email)
			return nil
		},
	}

	cmd.Flags().String("email", "", "Operator email")
	_ = cmd.MarkFlagRequired("email")
	_ = a.v.BindPFlags(cmd.Flags())

	return cmd
}

func readPassword(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	scanner := bufio.NewScanner(cmd.InOrStdin())
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", errors.New("no password given")
	}
	password := strings.TrimRight(scanner.Text(), "\r\n")
	if password == "" {
		return "", errors.New("no password given")
	}
	return password, nil
}
