package services

import (
	"context"
	"errors"
	"strings"

	"github.com/lorrc/service-desk-dashboard/internal/core/domain"
	apperrors "github.com/lorrc/service-desk-dashboard/internal/core/errors"
	"github.com/lorrc/service-desk-dashboard/internal/core/ports"
)

// AuthService implements operator authentication
type AuthService struct {
	operators ports.OperatorDirectory
}

var _ ports.AuthService = (*AuthService)(nil)

// NewAuthService creates a new authentication service
func NewAuthService(operators ports.OperatorDirectory) ports.AuthService {
	return &AuthService{operators: operators}
}

// Login authenticates an operator with email and password
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Operator, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperrors.ErrEmailRequired
	}
	if password == "" {
		return nil, apperrors.ErrPasswordRequired
	}

	op, err := s.operators.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Don't reveal whether email exists
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !op.CheckPassword(password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return op, nil
}
