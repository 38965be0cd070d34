package ports

import (
	"context"

	"github.com/lorrc/service-desk-dashboard/internal/core/domain"
)

// RecordSource loads the full ticket dataset once per session.
type RecordSource interface {
	LoadRecords(ctx context.Context) ([]domain.Record, error)
}

// OperatorDirectory resolves the operators allowed to log in.
type OperatorDirectory interface {
	FindByEmail(ctx context.Context, email string) (*domain.Operator, error)
}
