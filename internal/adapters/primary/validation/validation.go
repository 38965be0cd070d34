package validation

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/lorrc/service-desk-dashboard/internal/core/domain"
	apperrors "github.com/lorrc/service-desk-dashboard/internal/core/errors"
)

// Common validation regex patterns
var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// maxBodyBytes caps request bodies; interaction payloads are tiny.
const maxBodyBytes = 64 << 10

// Validator validates request data
type Validator struct {
	errors *apperrors.ValidationErrors
}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{
		errors: apperrors.NewValidationErrors(),
	}
}

// HasErrors returns true if there are validation errors
func (v *Validator) HasErrors() bool {
	return v.errors.HasErrors()
}

// Errors returns the validation errors
func (v *Validator) Errors() *apperrors.ValidationErrors {
	return v.errors
}

// Err returns the collected errors, or nil when there are none.
func (v *Validator) Err() error {
	if !v.HasErrors() {
		return nil
	}
	return v.errors
}

// Required validates that a string is not empty
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.errors.Add(field, "This field is required")
	}
	return v
}

// MaxLength validates maximum string length
func (v *Validator) MaxLength(field, value string, max int) *Validator {
	if len(value) > max {
		v.errors.Add(field, "Must be at most "+strconv.Itoa(max)+" characters")
	}
	return v
}

// Email validates email format
func (v *Validator) Email(field, value string) *Validator {
	if value != "" && !emailRegex.MatchString(value) {
		v.errors.Add(field, "Must be a valid email address")
	}
	return v
}

// Date validates that value parses as a calendar date or timestamp and
// returns it. Empty values are left to Required.
func (v *Validator) Date(field, value string) time.Time {
	if strings.TrimSpace(value) == "" {
		return time.Time{}
	}
	t, ok := domain.ParseTimestamp(value)
	if !ok {
		v.errors.Add(field, "Must be a date in YYYY-MM-DD format")
	}
	return t
}

// Custom adds a custom validation
func (v *Validator) Custom(field string, valid bool, message string) *Validator {
	if !valid {
		v.errors.Add(field, message)
	}
	return v
}

// DecodeAndValidate decodes JSON request body and runs basic validation
func DecodeAndValidate[T any](r *http.Request) (*T, error) {
	var req T

	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, apperrors.NewBadRequestError(err, "Request body is required")
		}
		return nil, apperrors.NewBadRequestError(err, "Invalid request body")
	}

	return &req, nil
}

// --- Interaction payloads, shared by the HTTP and WebSocket adapters ---

// PeriodRequest selects the period window.
type PeriodRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Parse validates both bounds and returns them. Ordering is checked by the
// service.
func (r PeriodRequest) Parse() (start, end time.Time, err error) {
	v := NewValidator()
	v.Required("start", r.Start).Required("end", r.End)
	start = v.Date("start", r.Start)
	end = v.Date("end", r.End)
	if err := v.Err(); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// FilterRequest clicks or applies a field filter.
type FilterRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// Validate checks the field name and, for clicks, the value.
func (r FilterRequest) Validate(requireValue bool) error {
	v := NewValidator()
	v.Required("field", r.Field).MaxLength("field", r.Field, 128)
	if requireValue {
		v.Required("value", r.Value)
	}
	v.MaxLength("value", r.Value, 512)
	return v.Err()
}

// LoginRequest carries operator credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the presence and shape of the credentials.
func (r LoginRequest) Validate() error {
	v := NewValidator()
	v.Required("email", r.Email).
		Email("email", strings.TrimSpace(r.Email)).
		MaxLength("email", r.Email, domain.MaxEmailLength).
		Required("password", r.Password).
		MaxLength("password", r.Password, domain.MaxPasswordLength)
	return v.Err()
}
