package domain

// EventType defines the type of real-time event.
type EventType string

const (
	EventSectionRefresh      EventType = "SECTION_REFRESH"
	EventSectionHighlight    EventType = "SECTION_HIGHLIGHT"
	EventDashboardFailed     EventType = "DASHBOARD_FAILED"
	EventInteractionAccepted EventType = "INTERACTION_ACCEPTED"
	EventInteractionError    EventType = "INTERACTION_ERROR"
	EventPong                EventType = "PONG"
)

// Event is the payload sent over WebSocket.
type Event struct {
	Type     EventType   `json:"type"`
	Section  Section     `json:"section,omitempty"`
	Sequence uint64      `json:"sequence,omitempty"`
	Payload  interface{} `json:"payload,omitempty"`
}
