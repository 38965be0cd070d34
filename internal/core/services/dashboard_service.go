package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lorrc/service-desk-dashboard/internal/core/analytics"
	"github.com/lorrc/service-desk-dashboard/internal/core/domain"
	apperrors "github.com/lorrc/service-desk-dashboard/internal/core/errors"
	"github.com/lorrc/service-desk-dashboard/internal/core/ports"
)

// DashboardConfig is the static configuration of one dashboard session.
type DashboardConfig struct {
	Roles         domain.FieldRoles
	PriorityField string
	RatingField   string
	Rules         domain.SectionRules
}

// DefaultDashboardConfig returns the configuration of the ticket dashboard.
func DefaultDashboardConfig() DashboardConfig {
	return DashboardConfig{
		Roles:         domain.DefaultFieldRoles(),
		PriorityField: domain.FieldPriority,
		RatingField:   domain.FieldRating,
		Rules:         domain.DefaultSectionRules(),
	}
}

// DashboardService is the filter controller. It owns the filter state of the
// shared session, turns interactions into state transitions and queues a
// recompute for every transition. Recomputes run over a snapshot of the state
// taken at issue time, so later interactions never leak into them.
type DashboardService struct {
	source      ports.RecordSource
	dispatcher  *Dispatcher
	scheduler   Scheduler
	broadcaster ports.EventBroadcaster
	cfg         DashboardConfig
	logger      *slog.Logger
	now         func() time.Time

	mu      sync.Mutex
	state   *domain.FilterState
	records []domain.Record
	loaded  bool
	failure error
	pending []func()

	sequence atomic.Uint64
}

var _ ports.DashboardService = (*DashboardService)(nil)

// NewDashboardService creates a new dashboard service. broadcaster may be nil
// when no client needs to hear about a failed load.
func NewDashboardService(
	source ports.RecordSource,
	dispatcher *Dispatcher,
	scheduler Scheduler,
	broadcaster ports.EventBroadcaster,
	cfg DashboardConfig,
	logger *slog.Logger,
) *DashboardService {
	if cfg.Rules == nil {
		cfg.Rules = domain.DefaultSectionRules()
	}
	return &DashboardService{
		source:      source,
		dispatcher:  dispatcher,
		scheduler:   scheduler,
		broadcaster: broadcaster,
		cfg:         cfg,
		logger:      logger.With("component", "dashboard"),
		now:         time.Now,
		state:       domain.NewFilterState(),
	}
}

// Load fetches the dataset once. A failed fetch is terminal for the session:
// every later operation returns ErrSourceUnavailable.
func (s *DashboardService) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.failure != nil {
		s.mu.Unlock()
		return s.failure
	}
	if s.loaded {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	if err := s.cfg.Roles.Validate(); err != nil {
		// Not fatal: every recompute yields an empty placeholder view.
		s.logger.ErrorContext(ctx, "dashboard field roles incomplete",
			"missing", strings.Join(s.cfg.Roles.Missing(), ","),
			"error", apperrors.ErrConfiguration,
		)
	}

	records, err := s.source.LoadRecords(ctx)
	if err != nil {
		failure := fmt.Errorf("%w: %w", apperrors.ErrSourceUnavailable, err)

		s.mu.Lock()
		s.failure = failure
		s.mu.Unlock()

		s.logger.ErrorContext(ctx, "failed to load dashboard records", "error", err)
		if s.broadcaster != nil {
			s.broadcaster.Broadcast(domain.Event{
				Type:    domain.EventDashboardFailed,
				Payload: map[string]string{"error": apperrors.ErrSourceUnavailable.Error()},
			})
		}
		return failure
	}

	s.mu.Lock()
	s.records = records
	s.loaded = true
	ticket := s.queue(domain.TransitionNone, nil, nil)
	s.mu.Unlock()
	s.flush()

	s.logger.InfoContext(ctx, "dashboard records loaded",
		"records", len(records),
		"sequence", ticket.Sequence,
	)
	return nil
}

// Ready reports whether records are loaded and the session has not failed.
func (s *DashboardService) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded && s.failure == nil
}

// Failure returns the terminal load error, if any.
func (s *DashboardService) Failure() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failure
}

// SelectPeriod sets the mandatory period window and refreshes every panel.
func (s *DashboardService) SelectPeriod(ctx context.Context, start, end time.Time) (*domain.RefreshTicket, error) {
	if start.IsZero() || end.IsZero() {
		return nil, apperrors.ErrInvalidPeriod
	}
	window, err := domain.NewPeriodWindow(start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrInvalidPeriod, err)
	}

	defer s.flush()
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return nil, err
	}

	transition := domain.TransitionSelected
	if s.state.HasPeriod() {
		transition = domain.TransitionReplaced
	}
	s.state.SetPeriod(window)
	ticket := s.queue(transition, nil, nil)

	s.logger.InfoContext(ctx, "period selected",
		"start", window.Start.Format(time.DateOnly),
		"end", window.End.Format(time.DateOnly),
		"sequence", ticket.Sequence,
	)
	return ticket, nil
}

// ClearPeriod removes the period window and every field filter. The
// dashboard falls back to its placeholder presentation.
func (s *DashboardService) ClearPeriod(ctx context.Context) (*domain.RefreshTicket, error) {
	defer s.flush()
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return nil, err
	}

	s.state.ClearPeriod()
	ticket := s.queue(domain.TransitionCleared, nil, nil)

	s.logger.InfoContext(ctx, "period cleared", "sequence", ticket.Sequence)
	return ticket, nil
}

// ClickFilter toggles (field, value). The field's affected panels are
// refreshed and its owning panel receives the new selection state.
func (s *DashboardService) ClickFilter(ctx context.Context, field, value string) (*domain.RefreshTicket, error) {
	if err := validateFilter(field, value); err != nil {
		return nil, err
	}

	defer s.flush()
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return nil, err
	}

	transition := s.state.Toggle(field, value)
	ticket := s.queue(transition, s.cfg.Rules.Affected(field), s.highlightFor(field))

	s.logger.DebugContext(ctx, "filter clicked",
		"field", field,
		"value", value,
		"transition", transition,
		"sequence", ticket.Sequence,
	)
	return ticket, nil
}

// ApplyFilter sets (field, value) without toggle semantics. An empty or
// "all" value clears the field.
func (s *DashboardService) ApplyFilter(ctx context.Context, field, value string) (*domain.RefreshTicket, error) {
	if strings.TrimSpace(field) == "" {
		return nil, apperrors.ErrFieldRequired
	}

	defer s.flush()
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return nil, err
	}

	transition := s.state.Apply(field, value)
	ticket := s.queue(transition, s.cfg.Rules.Affected(field), s.highlightFor(field))

	s.logger.DebugContext(ctx, "filter applied",
		"field", field,
		"value", value,
		"transition", transition,
		"sequence", ticket.Sequence,
	)
	return ticket, nil
}

// ClearFilter removes the filter of one field. An empty field clears every
// field filter and refreshes every panel; the period window is kept.
func (s *DashboardService) ClearFilter(ctx context.Context, field string) (*domain.RefreshTicket, error) {
	field = strings.TrimSpace(field)

	defer s.flush()
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(); err != nil {
		return nil, err
	}

	var ticket *domain.RefreshTicket
	if field == "" {
		s.state.ClearFields()
		ticket = s.queue(domain.TransitionCleared, nil, nil)
	} else {
		transition := domain.TransitionNone
		if _, ok := s.state.Selection(field); ok {
			transition = domain.TransitionCleared
		}
		s.state.ClearField(field)
		ticket = s.queue(transition, s.cfg.Rules.Affected(field), s.highlightFor(field))
	}

	s.logger.DebugContext(ctx, "filter cleared", "field", field, "sequence", ticket.Sequence)
	return ticket, nil
}

// Snapshot derives a view of the current state synchronously. Its sequence
// is the last one issued.
func (s *DashboardService) Snapshot(ctx context.Context) (*domain.DerivedView, error) {
	s.mu.Lock()
	if err := s.guard(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	state := s.state.Clone()
	records := s.records
	seq := s.sequence.Load()
	s.mu.Unlock()

	view, err := s.derive(ctx, state, records, seq)
	if err != nil && !errors.Is(err, domain.ErrFieldRoleMissing) {
		return nil, err
	}
	return view, nil
}

// Rules returns the section rule table in use.
func (s *DashboardService) Rules() domain.SectionRules {
	return s.cfg.Rules
}

// Shutdown waits for queued recomputes to finish.
func (s *DashboardService) Shutdown() {
	s.scheduler.Shutdown()
}

// guard must be called with s.mu held.
func (s *DashboardService) guard() error {
	if s.failure != nil {
		return s.failure
	}
	if !s.loaded {
		return apperrors.ErrNotLoaded
	}
	return nil
}

// highlightFor must be called with s.mu held.
func (s *DashboardService) highlightFor(field string) *domain.Highlight {
	owner, ok := s.cfg.Rules.Owner(field)
	if !ok {
		return nil
	}
	value, active := s.state.Selection(field)
	return &domain.Highlight{
		Section: owner,
		Field:   field,
		Value:   value,
		Active:  active,
	}
}

// queue captures the state, issues the next sequence number and parks the
// recompute until flush. It must be called with s.mu held.
func (s *DashboardService) queue(transition domain.Transition, sections []domain.Section, highlight *domain.Highlight) *domain.RefreshTicket {
	state := s.state.Clone()
	records := s.records
	seq := s.sequence.Add(1)

	ticket := &domain.RefreshTicket{
		Sequence:   seq,
		Transition: transition,
		Sections:   sections,
	}
	if highlight != nil {
		ticket.Highlight = highlight.Section
	}

	s.pending = append(s.pending, func() {
		s.recompute(state, records, seq, sections, highlight)
	})
	return ticket
}

// flush hands the parked recomputes to the scheduler. It must be called
// without s.mu held: an ImmediateScheduler runs the renderers inline and
// they may call back into the service.
func (s *DashboardService) flush() {
	s.mu.Lock()
	tasks := s.pending
	s.pending = nil
	s.mu.Unlock()

	for _, task := range tasks {
		s.scheduler.Schedule(task)
	}
}

func (s *DashboardService) recompute(state *domain.FilterState, records []domain.Record, seq uint64, sections []domain.Section, highlight *domain.Highlight) {
	ctx := context.Background()

	view, err := s.derive(ctx, state, records, seq)
	if err != nil && !errors.Is(err, domain.ErrFieldRoleMissing) {
		s.logger.ErrorContext(ctx, "recompute failed", "sequence", seq, "error", err)
		return
	}

	applied, err := s.dispatcher.Dispatch(ctx, view, sections, highlight)
	if err != nil {
		return
	}
	if applied {
		s.logger.DebugContext(ctx, "view applied",
			"sequence", seq,
			"records", len(view.Records),
			"placeholder", view.Placeholder,
		)
	}
}

func (s *DashboardService) derive(ctx context.Context, state *domain.FilterState, records []domain.Record, seq uint64) (*domain.DerivedView, error) {
	view, err := analytics.Derive(analytics.DeriveInput{
		Records:       records,
		State:         state,
		Roles:         s.cfg.Roles,
		PriorityField: s.cfg.PriorityField,
		RatingField:   s.cfg.RatingField,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "dashboard configuration error", "sequence", seq, "error", err)
	}
	if view != nil {
		view.Sequence = seq
		view.ComputedAt = s.now().UTC()
		if view.Statistics.Excluded > 0 {
			s.logger.DebugContext(ctx, "unparseable values excluded",
				"field", s.cfg.Roles.ValueField,
				"count", view.Statistics.Excluded,
			)
		}
	}
	return view, err
}

func validateFilter(field, value string) error {
	if strings.TrimSpace(field) == "" {
		return apperrors.ErrFieldRequired
	}
	if value == "" {
		return apperrors.ErrValueRequired
	}
	return nil
}
