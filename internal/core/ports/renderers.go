package ports

import (
	"context"

	"github.com/lorrc/service-desk-dashboard/internal/core/domain"
)

// SectionRenderer redraws one dashboard panel from a complete view.
type SectionRenderer interface {
	Section() domain.Section
	Refresh(ctx context.Context, view *domain.DerivedView) error
}

// SectionHighlighter is implemented by renderers that can update the
// selection state of their panel without redrawing its data.
type SectionHighlighter interface {
	Highlight(ctx context.Context, h domain.Highlight) error
}

// EventBroadcaster defines the port for pushing events to connected clients.
type EventBroadcaster interface {
	Broadcast(event domain.Event)
}
