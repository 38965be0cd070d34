package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lorrc/service-desk-dashboard/internal/core/domain"
	apperrors "github.com/lorrc/service-desk-dashboard/internal/core/errors"
	"github.com/lorrc/service-desk-dashboard/internal/core/mocks"
	"github.com/lorrc/service-desk-dashboard/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type dashboardFixture struct {
	svc         *services.DashboardService
	source      *mocks.MockRecordSource
	broadcaster *mocks.MockEventBroadcaster
	renderers   map[domain.Section]*mocks.MockSectionRenderer
	priority    *mocks.MockHighlightRenderer
	dispatcher  *services.Dispatcher
}

func newDashboardFixture(t *testing.T, scheduler services.Scheduler, cfg services.DashboardConfig) *dashboardFixture {
	t.Helper()

	f := &dashboardFixture{
		source:      mocks.NewMockRecordSource(),
		broadcaster: mocks.NewMockEventBroadcaster(),
		renderers:   make(map[domain.Section]*mocks.MockSectionRenderer),
		dispatcher:  services.NewDispatcher(discardLogger()),
	}

	f.priority = mocks.NewMockHighlightRenderer(domain.SectionPriority)
	f.priority.On("Refresh", mock.Anything, mock.Anything).Return(nil).Maybe()
	f.priority.On("Highlight", mock.Anything, mock.Anything).Return(nil).Maybe()
	f.renderers[domain.SectionPriority] = f.priority.MockSectionRenderer
	f.dispatcher.Register(f.priority)

	for _, section := range domain.AllSections {
		if section == domain.SectionPriority {
			continue
		}
		r := mocks.NewMockSectionRenderer(section)
		r.On("Refresh", mock.Anything, mock.Anything).Return(nil).Maybe()
		f.renderers[section] = r
		f.dispatcher.Register(r)
	}

	f.svc = services.NewDashboardService(f.source, f.dispatcher, scheduler, f.broadcaster, cfg, discardLogger())
	return f
}

func (f *dashboardFixture) lastView(t *testing.T, section domain.Section) *domain.DerivedView {
	t.Helper()
	views := f.renderers[section].Views()
	require.NotEmpty(t, views, "section %s was never refreshed", section)
	return views[len(views)-1]
}

func (f *dashboardFixture) load(t *testing.T) {
	t.Helper()
	f.source.On("LoadRecords", mock.Anything).Return(ticketRecords(), nil).Once()
	require.NoError(t, f.svc.Load(context.Background()))
}

func march(t *testing.T, f *dashboardFixture) {
	t.Helper()
	_, err := f.svc.SelectPeriod(context.Background(),
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
}

func codesOf(view *domain.DerivedView) []string {
	out := make([]string, len(view.Records))
	for i, r := range view.Records {
		out[i] = r.Text(domain.FieldTicketCode)
	}
	return out
}

func TestDashboardService_LoadRendersPlaceholder(t *testing.T) {
	f := newDashboardFixture(t, services.ImmediateScheduler{}, services.DefaultDashboardConfig())

	f.load(t)

	assert.True(t, f.svc.Ready())
	for section := range f.renderers {
		view := f.lastView(t, section)
		assert.True(t, view.Placeholder)
		assert.Empty(t, view.Records)
	}
}

func TestDashboardService_LoadIsSingleShot(t *testing.T) {
	f := newDashboardFixture(t, services.ImmediateScheduler{}, services.DefaultDashboardConfig())
	f.load(t)

	require.NoError(t, f.svc.Load(context.Background()))
	f.source.AssertNumberOfCalls(t, "LoadRecords", 1)
}

func TestDashboardService_LoadFailureIsTerminal(t *testing.T) {
	ctx := context.Background()
	f := newDashboardFixture(t, services.ImmediateScheduler{}, services.DefaultDashboardConfig())

	f.source.On("LoadRecords", mock.Anything).Return(nil, errors.New("connection refused")).Once()
	f.broadcaster.On("Broadcast", mock.MatchedBy(func(e domain.Event) bool {
		return e.Type == domain.EventDashboardFailed
	})).Return().Once()

	err := f.svc.Load(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrSourceUnavailable)
	assert.False(t, f.svc.Ready())
	f.broadcaster.AssertExpectations(t)

	_, err = f.svc.ClickFilter(ctx, domain.FieldPriority, "Alta")
	assert.ErrorIs(t, err, apperrors.ErrSourceUnavailable)
	_, err = f.svc.Snapshot(ctx)
	assert.ErrorIs(t, err, apperrors.ErrSourceUnavailable)

	// no retry
	assert.ErrorIs(t, f.svc.Load(ctx), apperrors.ErrSourceUnavailable)
	f.source.AssertNumberOfCalls(t, "LoadRecords", 1)
}

func TestDashboardService_OperationsRequireLoad(t *testing.T) {
	f := newDashboardFixture(t, services.ImmediateScheduler{}, services.DefaultDashboardConfig())

	_, err := f.svc.ClearPeriod(context.Background())

	assert.ErrorIs(t, err, apperrors.ErrNotLoaded)
}

func TestDashboardService_SelectPeriod(t *testing.T) {
	f := newDashboardFixture(t, services.ImmediateScheduler{}, services.DefaultDashboardConfig())
	f.load(t)

	ticket, err := f.svc.SelectPeriod(context.Background(),
		time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC),
	)

	require.NoError(t, err)
	assert.Equal(t, domain.TransitionSelected, ticket.Transition)
	assert.Empty(t, ticket.Sections)

	view := f.lastView(t, domain.SectionTable)
	assert.False(t, view.Placeholder)
	assert.Equal(t, ticket.Sequence, view.Sequence)
	assert.Equal(t, []string{"AT-1", "AT-2", "AT-3"}, codesOf(view))
	assert.Equal(t, []string{"Ana", "Bruno"}, view.Groups)
}

func TestDashboardService_SelectPeriodValidation(t *testing.T) {
	f := newDashboardFixture(t, services.ImmediateScheduler{}, services.DefaultDashboardConfig())
	f.load(t)

	_, err := f.svc.SelectPeriod(context.Background(),
		time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	)
	assert.ErrorIs(t, err, apperrors.ErrInvalidPeriod)
	assert.ErrorIs(t, err, domain.ErrPeriodInverted)

	_, err = f.svc.SelectPeriod(context.Background(), time.Time{}, time.Now())
	assert.ErrorIs(t, err, apperrors.ErrInvalidPeriod)
}

func TestDashboardService_ClickFilterRefreshesAffectedAndHighlightsOwner(t *testing.T) {
	ctx := context.Background()
	f := newDashboardFixture(t, services.ImmediateScheduler{}, services.DefaultDashboardConfig())
	f.load(t)
	march(t, f)

	before := len(f.priority.Views())
	ticket, err := f.svc.ClickFilter(ctx, domain.FieldPriority, "Alta")

	require.NoError(t, err)
	assert.Equal(t, domain.TransitionSelected, ticket.Transition)
	assert.Equal(t, domain.DefaultSectionRules().Affected(domain.FieldPriority), ticket.Sections)
	assert.Equal(t, domain.SectionPriority, ticket.Highlight)

	// the owner gets selection state, not new data
	assert.Len(t, f.priority.Views(), before)
	f.priority.AssertCalled(t, "Highlight", mock.Anything, domain.Highlight{
		Section:  domain.SectionPriority,
		Field:    domain.FieldPriority,
		Value:    "Alta",
		Active:   true,
		Sequence: ticket.Sequence,
	})

	view := f.lastView(t, domain.SectionPerformance)
	assert.Equal(t, ticket.Sequence, view.Sequence)
	assert.Equal(t, []string{"AT-1", "AT-3"}, codesOf(view))
	selected, ok := view.Selected(domain.FieldPriority)
	assert.True(t, ok)
	assert.Equal(t, "Alta", selected)
}

func TestDashboardService_ClickSameValueClears(t *testing.T) {
	ctx := context.Background()
	f := newDashboardFixture(t, services.ImmediateScheduler{}, services.DefaultDashboardConfig())
	f.load(t)
	march(t, f)

	_, err := f.svc.ClickFilter(ctx, domain.FieldPriority, "Alta")
	require.NoError(t, err)
	ticket, err := f.svc.ClickFilter(ctx, domain.FieldPriority, "Alta")
	require.NoError(t, err)

	assert.Equal(t, domain.TransitionCleared, ticket.Transition)
	f.priority.AssertCalled(t, "Highlight", mock.Anything, domain.Highlight{
		Section:  domain.SectionPriority,
		Field:    domain.FieldPriority,
		Active:   false,
		Sequence: ticket.Sequence,
	})
	assert.Len(t, f.lastView(t, domain.SectionTable).Records, 3)
}

func TestDashboardService_ClickFilterValidation(t *testing.T) {
	f := newDashboardFixture(t, services.ImmediateScheduler{}, services.DefaultDashboardConfig())
	f.load(t)

	_, err := f.svc.ClickFilter(context.Background(), "", "Alta")
	assert.ErrorIs(t, err, apperrors.ErrFieldRequired)

	_, err = f.svc.ClickFilter(context.Background(), domain.FieldPriority, "")
	assert.ErrorIs(t, err, apperrors.ErrValueRequired)
}

func TestDashboardService_UnknownFieldRefreshesEverything(t *testing.T) {
	f := newDashboardFixture(t, services.ImmediateScheduler{}, services.DefaultDashboardConfig())
	f.load(t)
	march(t, f)

	ticket, err := f.svc.ClickFilter(context.Background(), domain.FieldCustomer, "ACME")

	require.NoError(t, err)
	assert.Equal(t, domain.AllSections, ticket.Sections)
	assert.Empty(t, ticket.Highlight)
	for section := range f.renderers {
		assert.Equal(t, ticket.Sequence, f.lastView(t, section).Sequence, "section %s", section)
	}
}

func TestDashboardService_ApplyFilterIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newDashboardFixture(t, services.ImmediateScheduler{}, services.DefaultDashboardConfig())
	f.load(t)
	march(t, f)

	first, err := f.svc.ApplyFilter(ctx, domain.FieldAgent, "Ana")
	require.NoError(t, err)
	once := codesOf(f.lastView(t, domain.SectionTable))

	second, err := f.svc.ApplyFilter(ctx, domain.FieldAgent, "Ana")
	require.NoError(t, err)
	twice := codesOf(f.lastView(t, domain.SectionTable))

	assert.Equal(t, domain.TransitionSelected, first.Transition)
	assert.Equal(t, domain.TransitionNone, second.Transition)
	assert.Equal(t, once, twice)
	assert.Equal(t, []string{"AT-1", "AT-2"}, twice)

	third, err := f.svc.ApplyFilter(ctx, domain.FieldAgent, domain.FilterAll)
	require.NoError(t, err)
	assert.Equal(t, domain.TransitionCleared, third.Transition)
	assert.Len(t, f.lastView(t, domain.SectionTable).Records, 3)
}

func TestDashboardService_ClearFilter(t *testing.T) {
	ctx := context.Background()
	f := newDashboardFixture(t, services.ImmediateScheduler{}, services.DefaultDashboardConfig())
	f.load(t)
	march(t, f)

	_, err := f.svc.ClickFilter(ctx, domain.FieldPriority, "Alta")
	require.NoError(t, err)
	_, err = f.svc.ClickFilter(ctx, domain.FieldAgent, "Ana")
	require.NoError(t, err)
	assert.Equal(t, []string{"AT-1"}, codesOf(f.lastView(t, domain.SectionTable)))

	ticket, err := f.svc.ClearFilter(ctx, domain.FieldAgent)
	require.NoError(t, err)
	assert.Equal(t, domain.TransitionCleared, ticket.Transition)
	assert.Equal(t, domain.DefaultSectionRules().Affected(domain.FieldAgent), ticket.Sections)
	assert.Equal(t, []string{"AT-1", "AT-3"}, codesOf(f.lastView(t, domain.SectionTable)))

	ticket, err = f.svc.ClearFilter(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, ticket.Sections)
	view := f.lastView(t, domain.SectionTable)
	assert.NotNil(t, view.Period)
	assert.Empty(t, view.Filters)
	assert.Empty(t, view.LastClicked)
	assert.Len(t, view.Records, 3)
}

func TestDashboardService_ClearPeriodResetsEverything(t *testing.T) {
	ctx := context.Background()
	f := newDashboardFixture(t, services.ImmediateScheduler{}, services.DefaultDashboardConfig())
	f.load(t)
	march(t, f)
	_, err := f.svc.ClickFilter(ctx, domain.FieldRating, "Bom")
	require.NoError(t, err)

	ticket, err := f.svc.ClearPeriod(ctx)

	require.NoError(t, err)
	assert.Empty(t, ticket.Sections)
	view := f.lastView(t, domain.SectionStatistics)
	assert.True(t, view.Placeholder)
	assert.Nil(t, view.Period)
	assert.Empty(t, view.Filters)
	assert.Empty(t, view.LastClicked)
}

func TestDashboardService_FilterWithoutPeriodStaysPlaceholder(t *testing.T) {
	f := newDashboardFixture(t, services.ImmediateScheduler{}, services.DefaultDashboardConfig())
	f.load(t)

	require.NotPanics(t, func() {
		_, err := f.svc.ClickFilter(context.Background(), domain.FieldAgent, "Ana")
		require.NoError(t, err)
	})

	view := f.lastView(t, domain.SectionTable)
	assert.True(t, view.Placeholder)
	assert.Empty(t, view.Records)
	assert.Equal(t, "Ana", view.Filters[domain.FieldAgent])
}

func TestDashboardService_StaleResultsAreDiscarded(t *testing.T) {
	ctx := context.Background()
	scheduler := &manualScheduler{}
	f := newDashboardFixture(t, scheduler, services.DefaultDashboardConfig())

	f.load(t)
	march(t, f)
	_, err := f.svc.ClickFilter(ctx, domain.FieldAgent, "Bruno")
	require.NoError(t, err)
	require.Equal(t, 3, scheduler.len())

	// the newest recompute finishes first; the older ones must not overwrite it
	scheduler.run(2)
	scheduler.run(1)
	scheduler.run(0)

	views := f.renderers[domain.SectionTable].Views()
	require.Len(t, views, 1)
	assert.Equal(t, uint64(3), views[0].Sequence)
	assert.Equal(t, []string{"AT-3"}, codesOf(views[0]))
	assert.Equal(t, uint64(3), f.dispatcher.Applied())
}

func TestDashboardService_SupersededPeriodStillReachesOwnerPanel(t *testing.T) {
	ctx := context.Background()
	scheduler := &manualScheduler{}
	f := newDashboardFixture(t, scheduler, services.DefaultDashboardConfig())

	f.load(t)
	scheduler.run(0)
	march(t, f)
	_, err := f.svc.ClickFilter(ctx, domain.FieldPriority, "Alta")
	require.NoError(t, err)

	// the click finishes before the full period refresh it follows
	scheduler.run(2)
	scheduler.run(1)

	for section := range f.renderers {
		view := f.lastView(t, section)
		assert.Equal(t, uint64(3), view.Sequence, "section %s", section)
		assert.False(t, view.Placeholder, "section %s", section)
		assert.Equal(t, []string{"AT-1", "AT-3"}, codesOf(view), "section %s", section)
	}
}

func TestDashboardService_RecomputeUsesStateAtIssueTime(t *testing.T) {
	ctx := context.Background()
	scheduler := &manualScheduler{}
	f := newDashboardFixture(t, scheduler, services.DefaultDashboardConfig())

	f.load(t)
	march(t, f)
	_, err := f.svc.ClickFilter(ctx, domain.FieldAgent, "Ana")
	require.NoError(t, err)
	_, err = f.svc.ClickFilter(ctx, domain.FieldAgent, "Bruno")
	require.NoError(t, err)

	scheduler.run(2)

	view := f.lastView(t, domain.SectionTable)
	assert.Equal(t, []string{"AT-1", "AT-2"}, codesOf(view))

	scheduler.run(3)
	assert.Equal(t, []string{"AT-3"}, codesOf(f.lastView(t, domain.SectionTable)))
}

func TestDashboardService_MissingRolesYieldEmptyViews(t *testing.T) {
	cfg := services.DefaultDashboardConfig()
	cfg.Roles.GroupField = ""
	f := newDashboardFixture(t, services.ImmediateScheduler{}, cfg)
	f.load(t)

	require.NotPanics(t, func() { march(t, f) })

	view := f.lastView(t, domain.SectionPerformance)
	assert.True(t, view.Placeholder)
	assert.Empty(t, view.Aggregates)

	snapshot, err := f.svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.True(t, snapshot.Placeholder)
}

func TestDashboardService_Snapshot(t *testing.T) {
	ctx := context.Background()
	f := newDashboardFixture(t, services.ImmediateScheduler{}, services.DefaultDashboardConfig())
	f.load(t)
	march(t, f)
	ticket, err := f.svc.ClickFilter(ctx, domain.FieldRating, "Bom")
	require.NoError(t, err)

	view, err := f.svc.Snapshot(ctx)

	require.NoError(t, err)
	assert.Equal(t, ticket.Sequence, view.Sequence)
	assert.Equal(t, []string{"AT-2"}, codesOf(view))
	require.NotNil(t, view.Statistics.Value)
	assert.Equal(t, 12.0, view.Statistics.Value.Mean)
	assert.False(t, view.ComputedAt.IsZero())
}

// snapshotRenderer reads the service back while it refreshes.
type snapshotRenderer struct {
	svc  *services.DashboardService
	seen []uint64
}

func (r *snapshotRenderer) Section() domain.Section { return domain.SectionTable }

func (r *snapshotRenderer) Refresh(ctx context.Context, _ *domain.DerivedView) error {
	view, err := r.svc.Snapshot(ctx)
	if err != nil {
		return err
	}
	r.seen = append(r.seen, view.Sequence)
	return nil
}

func TestDashboardService_InlineRendererMayReadService(t *testing.T) {
	source := mocks.NewMockRecordSource()
	source.On("LoadRecords", mock.Anything).Return(ticketRecords(), nil).Once()

	dispatcher := services.NewDispatcher(discardLogger())
	svc := services.NewDashboardService(source, dispatcher, services.ImmediateScheduler{}, nil,
		services.DefaultDashboardConfig(), discardLogger())
	renderer := &snapshotRenderer{svc: svc}
	dispatcher.Register(renderer)

	done := make(chan struct{})
	go func() {
		defer close(done)
		ctx := context.Background()
		assert.NoError(t, svc.Load(ctx))
		_, err := svc.SelectPeriod(ctx,
			time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		)
		assert.NoError(t, err)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("renderer calling back into the service deadlocked")
	}
	assert.Equal(t, []uint64{1, 2}, renderer.seen)
}
