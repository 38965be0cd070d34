package domain

import (
	"net/mail"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/lorrc/service-desk-dashboard/internal/core/errors"
)

// Password validation constants
const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
	MaxEmailLength    = 255
)

// Operator is the account allowed to drive the shared dashboard session.
type Operator struct {
	ID             uuid.UUID
	Email          string
	HashedPassword string
}

// NewOperator validates the email and password hash of a configured operator.
func NewOperator(id uuid.UUID, email, hashedPassword string) (*Operator, error) {
	errs := apperrors.NewValidationErrors()

	email = strings.TrimSpace(email)
	switch {
	case email == "":
		errs.Add("email", "Email is required")
	case len(email) > MaxEmailLength:
		errs.Add("email", "Email must be 255 characters or less")
	case !isValidEmail(email):
		errs.Add("email", "Invalid email format")
	}

	if hashedPassword == "" {
		errs.Add("passwordHash", "Password hash is required")
	} else if _, err := bcrypt.Cost([]byte(hashedPassword)); err != nil {
		errs.Add("passwordHash", "Password hash is not a bcrypt hash")
	}

	if errs.HasErrors() {
		return nil, errs
	}
	if id == uuid.Nil {
		id = uuid.New()
	}
	return &Operator{ID: id, Email: email, HashedPassword: hashedPassword}, nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (o *Operator) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(o.HashedPassword), []byte(password))
	return err == nil
}

// ValidatePassword checks if a password meets security requirements
// Returns a slice of error messages (empty if valid)
func ValidatePassword(password string) []string {
	var problems []string

	if len(password) < MinPasswordLength {
		problems = append(problems, "Password must be at least 8 characters long")
	}
	if len(password) > MaxPasswordLength {
		problems = append(problems, "Password must be 128 characters or less")
	}

	var hasUpper, hasLower, hasNumber bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		}
	}

	if !hasUpper {
		problems = append(problems, "Password must contain at least one uppercase letter")
	}
	if !hasLower {
		problems = append(problems, "Password must contain at least one lowercase letter")
	}
	if !hasNumber {
		problems = append(problems, "Password must contain at least one number")
	}

	return problems
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	if problems := ValidatePassword(password); len(problems) > 0 {
		return "", apperrors.ErrPasswordTooWeak
	}

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func isValidEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}
