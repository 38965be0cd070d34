package panels

import (
	"context"

	"github.com/lorrc/service-desk-dashboard/internal/core/domain"
	"github.com/lorrc/service-desk-dashboard/internal/core/ports"
)

// Config selects fields, labels and thresholds for the panel models.
type Config struct {
	StartField     string
	PriorityField  string
	RatingField    string
	PriorityLabels []string
	RatingLabels   []string
	TableColumns   []string
	Bands          Bands
}

// DefaultConfig returns the configuration of the ticket dashboard.
func DefaultConfig() Config {
	return Config{
		StartField:     domain.FieldStartHours,
		PriorityField:  domain.FieldPriority,
		RatingField:    domain.FieldRating,
		PriorityLabels: DefaultPriorityLabels,
		RatingLabels:   DefaultRatingLabels,
		TableColumns:   DefaultTableColumns,
		Bands:          DefaultBands(),
	}
}

// BuildFunc produces the view model of one section.
type BuildFunc func(view *domain.DerivedView) any

// Renderer publishes a section's view model as a SECTION_REFRESH event.
type Renderer struct {
	section     domain.Section
	build       BuildFunc
	broadcaster ports.EventBroadcaster
}

var _ ports.SectionRenderer = (*Renderer)(nil)

func NewRenderer(section domain.Section, build BuildFunc, broadcaster ports.EventBroadcaster) *Renderer {
	return &Renderer{section: section, build: build, broadcaster: broadcaster}
}

func (r *Renderer) Section() domain.Section {
	return r.section
}

// Refresh builds the model, or the placeholder while no period is set, and
// broadcasts it.
func (r *Renderer) Refresh(_ context.Context, view *domain.DerivedView) error {
	var payload any
	if view.Placeholder {
		payload = BuildPlaceholder(view)
	} else {
		payload = r.build(view)
	}
	r.broadcaster.Broadcast(domain.Event{
		Type:     domain.EventSectionRefresh,
		Section:  r.section,
		Sequence: view.Sequence,
		Payload:  payload,
	})
	return nil
}

// HighlightRenderer is a Renderer for a section that owns a filter field.
// Selection changes are pushed as SECTION_HIGHLIGHT events.
type HighlightRenderer struct {
	*Renderer
}

var _ ports.SectionHighlighter = (*HighlightRenderer)(nil)

func NewHighlightRenderer(section domain.Section, build BuildFunc, broadcaster ports.EventBroadcaster) *HighlightRenderer {
	return &HighlightRenderer{Renderer: NewRenderer(section, build, broadcaster)}
}

func (r *HighlightRenderer) Highlight(_ context.Context, h domain.Highlight) error {
	r.broadcaster.Broadcast(domain.Event{
		Type:     domain.EventSectionHighlight,
		Section:  r.section,
		Sequence: h.Sequence,
		Payload:  h,
	})
	return nil
}

// NewDashboardRenderers creates one renderer per dashboard section. The
// sections that own a filter field get highlight support.
func NewDashboardRenderers(cfg Config, broadcaster ports.EventBroadcaster) []ports.SectionRenderer {
	return []ports.SectionRenderer{
		NewRenderer(domain.SectionStatistics, func(v *domain.DerivedView) any {
			return BuildStatistics(v)
		}, broadcaster),
		NewRenderer(domain.SectionTimeline, func(v *domain.DerivedView) any {
			return BuildTimeline(v, cfg.StartField, v.Roles.ValueField)
		}, broadcaster),
		NewHighlightRenderer(domain.SectionPerformance, func(v *domain.DerivedView) any {
			return BuildPerformance(v, cfg.Bands)
		}, broadcaster),
		NewHighlightRenderer(domain.SectionPriority, func(v *domain.DerivedView) any {
			return BuildBreakdown(v, cfg.PriorityField, cfg.PriorityLabels)
		}, broadcaster),
		NewHighlightRenderer(domain.SectionSatisfaction, func(v *domain.DerivedView) any {
			return BuildBreakdown(v, cfg.RatingField, cfg.RatingLabels)
		}, broadcaster),
		NewRenderer(domain.SectionTable, func(v *domain.DerivedView) any {
			return BuildTable(v, cfg.TableColumns)
		}, broadcaster),
	}
}

// collector records broadcast events instead of sending them.
type collector struct {
	events []domain.Event
}

func (c *collector) Broadcast(e domain.Event) {
	c.events = append(c.events, e)
}

// Events returns the SECTION_REFRESH event of every section for view. It is
// used to bring a newly connected client up to date.
func Events(cfg Config, view *domain.DerivedView) []domain.Event {
	c := &collector{}
	for _, r := range NewDashboardRenderers(cfg, c) {
		_ = r.Refresh(context.Background(), view)
	}
	return c.events
}
