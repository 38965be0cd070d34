package ports

import (
	"context"
	"time"

	"github.com/lorrc/service-desk-dashboard/internal/core/domain"
)

// AuthService defines the port for operator authentication.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*domain.Operator, error)
}

// DashboardService defines the filter controller of the shared dashboard
// session. Every interaction returns the ticket of the recompute it queued.
type DashboardService interface {
	Load(ctx context.Context) error
	Ready() bool
	Failure() error

	SelectPeriod(ctx context.Context, start, end time.Time) (*domain.RefreshTicket, error)
	ClearPeriod(ctx context.Context) (*domain.RefreshTicket, error)
	ClickFilter(ctx context.Context, field, value string) (*domain.RefreshTicket, error)
	ApplyFilter(ctx context.Context, field, value string) (*domain.RefreshTicket, error)
	ClearFilter(ctx context.Context, field string) (*domain.RefreshTicket, error)

	Snapshot(ctx context.Context) (*domain.DerivedView, error)
	Rules() domain.SectionRules
	Shutdown()
}
