// Package bootstrap wires configuration onto the adapters shared by the API
// server and the command-line tool.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lorrc/service-desk-dashboard/internal/adapters/secondary/jsonfile"
	"github.com/lorrc/service-desk-dashboard/internal/adapters/secondary/memory"
	"github.com/lorrc/service-desk-dashboard/internal/adapters/secondary/panels"
	"github.com/lorrc/service-desk-dashboard/internal/adapters/secondary/postgres"
	"github.com/lorrc/service-desk-dashboard/internal/config"
	"github.com/lorrc/service-desk-dashboard/internal/core/domain"
	"github.com/lorrc/service-desk-dashboard/internal/core/ports"
	"github.com/lorrc/service-desk-dashboard/internal/core/services"
)

// Panels maps the dashboard settings onto the panel builders.
func Panels(d config.DashboardConfig) panels.Config {
	cfg := panels.DefaultConfig()
	cfg.StartField = d.StartField
	cfg.PriorityField = d.PriorityField
	cfg.RatingField = d.RatingField
	if len(d.PriorityLabels) > 0 {
		cfg.PriorityLabels = d.PriorityLabels
	}
	if len(d.RatingLabels) > 0 {
		cfg.RatingLabels = d.RatingLabels
	}
	if len(d.TableColumns) > 0 {
		cfg.TableColumns = d.TableColumns
	}
	cfg.Bands = panels.Bands{Good: d.GoodBand, Medium: d.MediumBand}
	return cfg
}

// Dashboard maps the dashboard settings onto the filter controller.
func Dashboard(cfg *config.Config) services.DashboardConfig {
	d := cfg.Dashboard
	return services.DashboardConfig{
		Roles:         cfg.Roles(),
		PriorityField: d.PriorityField,
		RatingField:   d.RatingField,
		Rules:         domain.NewSectionRules(d.GroupField, d.PriorityField, d.RatingField),
	}
}

// OpenDatabase connects to the configured database and applies pending
// migrations when enabled.
func OpenDatabase(ctx context.Context, db config.DatabaseConfig, logger *slog.Logger) (*pgxpool.Pool, error) {
	if db.AutoMigrate {
		if err := postgres.Migrate(db.URL, db.MigrationsPath); err != nil {
			return nil, err
		}
		logger.InfoContext(ctx, "database migrations applied", "path", db.MigrationsPath)
	}

	pool, err := postgres.NewPool(ctx, postgres.PoolConfig{
		URL:             db.URL,
		MaxConns:        db.MaxOpenConns,
		MinConns:        db.MaxIdleConns,
		ConnMaxLifetime: db.ConnMaxLifetime,
		ConnMaxIdleTime: db.ConnMaxIdleTime,
	})
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "database connection established")
	return pool, nil
}

// RecordSource returns the database when one is open, otherwise the
// configured JSON file or URL.
func RecordSource(cfg *config.Config, pool *pgxpool.Pool) ports.RecordSource {
	if pool != nil {
		return postgres.NewRecordRepository(pool)
	}
	client := &http.Client{Timeout: cfg.Dashboard.SourceTimeout}
	return jsonfile.NewSource(cfg.Dashboard.DataSource, client)
}

// Operators returns the operator directory. With a database the configured
// operator, if any, is upserted into it; without one it is held in memory.
func Operators(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) (ports.OperatorDirectory, error) {
	var seed *domain.Operator
	if cfg.Operator.Email != "" {
		id := uuid.Nil
		if cfg.Operator.ID != "" {
			parsed, err := uuid.Parse(cfg.Operator.ID)
			if err != nil {
				return nil, fmt.Errorf("parse operator id: %w", err)
			}
			id = parsed
		}
		op, err := domain.NewOperator(id, cfg.Operator.Email, cfg.Operator.PasswordHash)
		if err != nil {
			return nil, fmt.Errorf("configured operator: %w", err)
		}
		seed = op
	}

	if pool == nil {
		if seed == nil {
			return memory.NewOperatorDirectory(), nil
		}
		return memory.NewOperatorDirectory(seed), nil
	}

	repo := postgres.NewOperatorRepository(pool)
	if seed != nil {
		if err := repo.Save(ctx, seed); err != nil {
			return nil, fmt.Errorf("save configured operator: %w", err)
		}
	}
	return repo, nil
}
