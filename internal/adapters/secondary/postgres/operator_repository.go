package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lorrc/service-desk-dashboard/internal/core/domain"
	apperrors "github.com/lorrc/service-desk-dashboard/internal/core/errors"
	"github.com/lorrc/service-desk-dashboard/internal/core/ports"
)

// OperatorRepository stores the operators allowed to drive the dashboard.
type OperatorRepository struct {
	pool *pgxpool.Pool
}

var _ ports.OperatorDirectory = (*OperatorRepository)(nil)

func NewOperatorRepository(pool *pgxpool.Pool) *OperatorRepository {
	return &OperatorRepository{pool: pool}
}

// Save inserts the operator or updates the password hash of an existing
// operator with the same email.
func (r *OperatorRepository) Save(ctx context.Context, op *domain.Operator) error {
	const query = `
INSERT INTO operators (id, email, password_hash)
VALUES ($1, $2, $3)
ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash
`
	_, err := GetDBTX(ctx, r.pool).Exec(ctx, query,
		pgtype.UUID{Bytes: op.ID, Valid: true},
		op.Email,
		op.HashedPassword,
	)
	return err
}

func (r *OperatorRepository) FindByEmail(ctx context.Context, email string) (*domain.Operator, error) {
	const query = `SELECT id, email, password_hash FROM operators WHERE email = $1`

	var (
		id   pgtype.UUID
		op   domain.Operator
		hash string
	)
	err := GetDBTX(ctx, r.pool).QueryRow(ctx, query, email).Scan(&id, &op.Email, &hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	op.ID = id.Bytes
	op.HashedPassword = hash
	return &op, nil
}
