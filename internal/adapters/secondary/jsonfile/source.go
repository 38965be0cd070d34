// Package jsonfile loads ticket records from a JSON array, read either from
// the local filesystem or from an HTTP(S) URL.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/lorrc/service-desk-dashboard/internal/core/domain"
	"github.com/lorrc/service-desk-dashboard/internal/core/ports"
)

// ErrNotArray is returned when the document is not a JSON array of objects.
var ErrNotArray = errors.New("records document must be a JSON array of objects")

// Source is a ports.RecordSource over a JSON document.
type Source struct {
	location string
	client   *http.Client
}

var _ ports.RecordSource = (*Source)(nil)

// NewSource creates a source for location, a file path or an http(s) URL.
// client is only used for URLs; nil selects a client with a 30s timeout.
func NewSource(location string, client *http.Client) *Source {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Source{location: location, client: client}
}

// Location returns the configured path or URL.
func (s *Source) Location() string {
	return s.location
}

func (s *Source) LoadRecords(ctx context.Context) ([]domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if isURL(s.location) {
		return s.fetch(ctx)
	}

	f, err := os.Open(s.location)
	if err != nil {
		return nil, fmt.Errorf("open records file: %w", err)
	}
	defer f.Close()

	records, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.location, err)
	}
	return records, nil
}

func (s *Source) fetch(ctx context.Context) ([]domain.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.location, nil)
	if err != nil {
		return nil, fmt.Errorf("build records request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch records: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch records: unexpected status %d", resp.StatusCode)
	}

	records, err := Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.location, err)
	}
	return records, nil
}

// Decode reads a JSON array of objects. Numbers are kept as json.Number so
// that their textual form survives for grouping and display.
func Decode(r io.Reader) ([]domain.Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, ErrNotArray
		}
		return nil, err
	}
	if raw == nil {
		return nil, ErrNotArray
	}

	records := make([]domain.Record, 0, len(raw))
	for _, obj := range raw {
		if obj == nil {
			continue
		}
		records = append(records, domain.Record(obj))
	}
	return records, nil
}

func isURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}
