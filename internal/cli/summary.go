package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/lorrc/service-desk-dashboard/internal/adapters/secondary/terminal"
	"github.com/lorrc/service-desk-dashboard/internal/bootstrap"
	"github.com/lorrc/service-desk-dashboard/internal/core/domain"
	"github.com/lorrc/service-desk-dashboard/internal/core/services"
)

// ErrIncompletePeriod is returned when only one bound of the period is given.
var ErrIncompletePeriod = errors.New("--from and --to must be given together")

func (a *app) newSummaryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the dashboard panels for a period and filters.",
		Long: `Load the records, apply the period window and field filters, and print
every dashboard panel as text tables or JSON.

Without --from and --to the dashboard shows its placeholder, as the web
dashboard does before a period is chosen.

Examples:
  # Summarise March 2024
  dashctl summary --from 2024-03-01 --to 2024-03-31

  # Only high-priority tickets of one agent, with the raw rows
  dashctl summary --from 2024-03-01 --to 2024-03-31 \
    --filter prioridade=Alta --filter atendente=Bruno --rows

  # Machine-readable output
  dashctl summary --from 2024-03-01 --to 2024-03-31 --format json`,
		Args: cobra.NoArgs,
		RunE: a.runSummary,
	}

	flags := cmd.Flags()
	flags.String("from", "", "Period start date (YYYY-MM-DD)")
	flags.String("to", "", "Period end date (YYYY-MM-DD), inclusive")
	flags.StringArray("filter", nil, "Field filter as field=value; repeatable")
	flags.String("format", terminal.TextOut, "Output format: text or json")
	flags.Int("precision", 2, "Decimal places for numeric columns")
	flags.Bool("rows", false, "Also print the raw data table")
	flags.Bool("no-color", false, "Disable coloured performance bands")
	_ = a.v.BindPFlags(flags)

	return cmd
}

func (a *app) runSummary(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	filters, err := parseFilters(a.v.GetStringSlice("filter"))
	if err != nil {
		return err
	}
	from, to := a.v.GetString("from"), a.v.GetString("to")
	if (from == "") != (to == "") {
		return ErrIncompletePeriod
	}

	cfg := a.settings()
	logger := a.logger(cmd.ErrOrStderr())

	var pool *pgxpool.Pool
	if cfg.Database.URL != "" {
		pool, err = bootstrap.OpenDatabase(ctx, cfg.Database, logger)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	svc := services.NewDashboardService(
		bootstrap.RecordSource(cfg, pool),
		services.NewDispatcher(logger),
		services.ImmediateScheduler{},
		nil,
		bootstrap.Dashboard(cfg),
		logger,
	)
	if err := svc.Load(ctx); err != nil {
		return err
	}

	if from != "" {
		start, ok := domain.ParseTimestamp(from)
		if !ok {
			return fmt.Errorf("invalid --from date %q", from)
		}
		end, ok := domain.ParseTimestamp(to)
		if !ok {
			return fmt.Errorf("invalid --to date %q", to)
		}
		if _, err := svc.SelectPeriod(ctx, start, end); err != nil {
			return err
		}
	}
	for _, f := range filters {
		if _, err := svc.ApplyFilter(ctx, f.field, f.value); err != nil {
			return err
		}
	}

	view, err := svc.Snapshot(ctx)
	if err != nil {
		return err
	}

	opts := terminal.DefaultOptions()
	opts.Format = strings.ToLower(a.v.GetString("format"))
	opts.Precision = a.v.GetInt("precision")
	opts.ShowRows = a.v.GetBool("rows")
	opts.UseColors = !a.v.GetBool("no-color") && !color.NoColor
	opts.Panels = bootstrap.Panels(cfg.Dashboard)

	return terminal.NewWriter(cmd.OutOrStdout(), opts).Write(view)
}

type fieldFilter struct {
	field string
	value string
}

// parseFilters reads field=value pairs. The last value of a repeated field
// wins, as with repeated clicks.
func parseFilters(raw []string) ([]fieldFilter, error) {
	filters := make([]fieldFilter, 0, len(raw))
	for _, r := range raw {
		field, value, ok := strings.Cut(r, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			return nil, fmt.Errorf("invalid --filter %q: want field=value", r)
		}
		filters = append(filters, fieldFilter{field: field, value: strings.TrimSpace(value)})
	}
	return filters, nil
}
