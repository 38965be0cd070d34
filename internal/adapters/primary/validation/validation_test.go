package validation_test

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lorrc/service-desk-dashboard/internal/adapters/primary/validation"
	apperrors "github.com/lorrc/service-desk-dashboard/internal/core/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodRequest_Parse(t *testing.T) {
	tests := []struct {
		name      string
		req       validation.PeriodRequest
		wantErr   []string
		wantStart time.Time
	}{
		{
			name:      "dates",
			req:       validation.PeriodRequest{Start: "2024-03-01", End: "2024-03-31"},
			wantStart: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "timestamps",
			req:       validation.PeriodRequest{Start: "2024-03-01T10:00:00Z", End: "2024-03-31T00:00:00Z"},
			wantStart: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			name:    "missing bounds",
			req:     validation.PeriodRequest{},
			wantErr: []string{"start", "end"},
		},
		{
			name:    "unparseable end",
			req:     validation.PeriodRequest{Start: "2024-03-01", End: "31/03/2024"},
			wantErr: []string{"end"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, _, err := tt.req.Parse()

			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.True(t, tt.wantStart.Equal(start))
				return
			}
			var verrs *apperrors.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			for _, field := range tt.wantErr {
				assert.Contains(t, verrs.Errors, field)
			}
		})
	}
}

func TestFilterRequest_Validate(t *testing.T) {
	assert.NoError(t, validation.FilterRequest{Field: "prioridade", Value: "Alta"}.Validate(true))
	assert.NoError(t, validation.FilterRequest{Field: "prioridade"}.Validate(false))
	assert.Error(t, validation.FilterRequest{Field: "prioridade"}.Validate(true))
	assert.Error(t, validation.FilterRequest{Value: "Alta"}.Validate(false))
	assert.Error(t, validation.FilterRequest{Field: strings.Repeat("x", 129)}.Validate(false))
}

func TestLoginRequest_Validate(t *testing.T) {
	assert.NoError(t, validation.LoginRequest{Email: "ops@example.com", Password: "Secret123"}.Validate())

	err := validation.LoginRequest{Email: "not-an-email"}.Validate()
	var verrs *apperrors.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.Errors, "email")
	assert.Contains(t, verrs.Errors, "password")
}

func TestDecodeAndValidate(t *testing.T) {
	r := httptest.NewRequest("PUT", "/", strings.NewReader(`{"start":"2024-03-01","end":"2024-03-02"}`))
	req, err := validation.DecodeAndValidate[validation.PeriodRequest](r)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-02", req.End)

	r = httptest.NewRequest("PUT", "/", strings.NewReader(`{`))
	_, err = validation.DecodeAndValidate[validation.PeriodRequest](r)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.StatusCode)
}
