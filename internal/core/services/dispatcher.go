package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/lorrc/service-desk-dashboard/internal/core/domain"
	"github.com/lorrc/service-desk-dashboard/internal/core/ports"
)

// Dispatcher routes completed views to the renderers of the affected panels.
// It remembers the sequence of the last applied view and drops any view that
// was issued before it, so a slow recompute never overwrites a newer result.
// The panels a dropped view was meant for are brought up to the last applied
// view instead, so no panel is left behind the rest of the dashboard.
type Dispatcher struct {
	mu        sync.Mutex
	renderers map[domain.Section]ports.SectionRenderer
	order     []domain.Section
	applied   uint64
	last      *domain.DerivedView
	rendered  map[domain.Section]uint64
	logger    *slog.Logger
}

// NewDispatcher creates a dispatcher with the given renderers registered.
func NewDispatcher(logger *slog.Logger, renderers ...ports.SectionRenderer) *Dispatcher {
	d := &Dispatcher{
		renderers: make(map[domain.Section]ports.SectionRenderer),
		rendered:  make(map[domain.Section]uint64),
		logger:    logger.With("component", "dispatcher"),
	}
	for _, r := range renderers {
		d.Register(r)
	}
	return d
}

// Register adds or replaces the renderer of its panel.
func (d *Dispatcher) Register(r ports.SectionRenderer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	section := r.Section()
	if _, exists := d.renderers[section]; !exists {
		d.order = append(d.order, section)
	}
	d.renderers[section] = r
}

// Sections returns the registered panels in registration order.
func (d *Dispatcher) Sections() []domain.Section {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.order)
}

// Applied returns the sequence of the last view handed to the renderers.
func (d *Dispatcher) Applied() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.applied
}

// Dispatch refreshes exactly the named panels with view; an empty list
// refreshes every registered panel. A non-nil highlight is sent to its
// owning panel. Views older than the last applied one are discarded and
// Dispatch reports false; their panels that have not yet shown the last
// applied view are refreshed with it. Renderer failures do not stop the
// remaining panels; they are joined into the returned error.
func (d *Dispatcher) Dispatch(ctx context.Context, view *domain.DerivedView, sections []domain.Section, highlight *domain.Highlight) (bool, error) {
	if view == nil {
		return false, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if view.Sequence <= d.applied {
		d.logger.DebugContext(ctx, "discarding stale view",
			"sequence", view.Sequence,
			"applied", d.applied,
		)
		return false, d.catchUp(ctx, sections, highlight)
	}
	d.applied = view.Sequence
	d.last = view

	var errs []error
	refreshed := make(map[domain.Section]bool)
	for _, section := range d.targets(sections) {
		if refreshed[section] {
			continue
		}
		if _, ok := d.renderers[section]; !ok {
			continue
		}
		refreshed[section] = true
		if err := d.refresh(ctx, section, view); err != nil {
			errs = append(errs, err)
		}
	}

	if highlight != nil {
		h := *highlight
		h.Sequence = view.Sequence
		if err := d.highlight(ctx, view, h, refreshed); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		d.logger.ErrorContext(ctx, "section refresh failed", "sequence", view.Sequence, "error", err)
		return true, err
	}
	return true, nil
}

// catchUp refreshes, with the last applied view, the panels of a discarded
// view that have not shown it yet. It must be called with d.mu held.
func (d *Dispatcher) catchUp(ctx context.Context, sections []domain.Section, highlight *domain.Highlight) error {
	if d.last == nil {
		return nil
	}
	targets := d.targets(sections)
	if highlight != nil {
		targets = append(slices.Clone(targets), highlight.Section)
	}

	var errs []error
	for _, section := range targets {
		if _, ok := d.renderers[section]; !ok || d.rendered[section] >= d.applied {
			continue
		}
		if err := d.refresh(ctx, section, d.last); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		d.logger.ErrorContext(ctx, "section catch-up failed", "sequence", d.applied, "error", err)
		return err
	}
	return nil
}

func (d *Dispatcher) targets(sections []domain.Section) []domain.Section {
	if len(sections) == 0 {
		return d.order
	}
	return sections
}

// refresh must be called with d.mu held.
func (d *Dispatcher) refresh(ctx context.Context, section domain.Section, view *domain.DerivedView) error {
	d.rendered[section] = view.Sequence
	if err := d.renderers[section].Refresh(ctx, view); err != nil {
		return fmt.Errorf("refresh %s: %w", section, err)
	}
	return nil
}

func (d *Dispatcher) highlight(ctx context.Context, view *domain.DerivedView, h domain.Highlight, refreshed map[domain.Section]bool) error {
	r, ok := d.renderers[h.Section]
	if !ok {
		return nil
	}
	if hl, ok := r.(ports.SectionHighlighter); ok {
		if err := hl.Highlight(ctx, h); err != nil {
			return fmt.Errorf("highlight %s: %w", h.Section, err)
		}
		return nil
	}
	if refreshed[h.Section] {
		return nil
	}
	// Panels without a highlight path pick the selection up from the view.
	return d.refresh(ctx, h.Section, view)
}
