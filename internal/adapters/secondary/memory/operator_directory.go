// Package memory holds in-process adapters used when no database is configured.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/lorrc/service-desk-dashboard/internal/core/domain"
	apperrors "github.com/lorrc/service-desk-dashboard/internal/core/errors"
	"github.com/lorrc/service-desk-dashboard/internal/core/ports"
)

// OperatorDirectory keeps operators in a map keyed by lower-cased email.
type OperatorDirectory struct {
	mu        sync.RWMutex
	operators map[string]*domain.Operator
}

var _ ports.OperatorDirectory = (*OperatorDirectory)(nil)

func NewOperatorDirectory(operators ...*domain.Operator) *OperatorDirectory {
	d := &OperatorDirectory{operators: make(map[string]*domain.Operator, len(operators))}
	for _, op := range operators {
		d.Save(op)
	}
	return d
}

// Save adds or replaces an operator.
func (d *OperatorDirectory) Save(op *domain.Operator) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.operators[strings.ToLower(op.Email)] = op
}

func (d *OperatorDirectory) FindByEmail(_ context.Context, email string) (*domain.Operator, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	op, ok := d.operators[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *op
	return &copied, nil
}
