package websocket

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/lorrc/service-desk-dashboard/internal/core/domain"
	"github.com/lorrc/service-desk-dashboard/internal/core/ports"
)

// Resync returns the events that rebuild every panel from the current state.
type Resync func() []domain.Event

// Hub maintains the set of active Clients and broadcasts dashboard events
// to every one of them.
type Hub struct {
	// Clients maps operator IDs to their active connections
	// An operator can have multiple connections (multiple tabs/screens)
	clients map[uuid.UUID]map[*Client]bool

	// Broadcast channel for events
	broadcast chan domain.Event

	// Register requests from clients
	Register chan *Client

	// Unregister requests from clients
	Unregister chan *Client

	// mu protects the clients map
	mu sync.RWMutex

	// resync rebuilds the panels after broadcasts were dropped
	resync  Resync
	dropped atomic.Bool

	// logger for the hub
	logger *slog.Logger
}

// Ensure Hub implements the EventBroadcaster interface.
var _ ports.EventBroadcaster = (*Hub)(nil)

// NewHub creates a new WebSocket hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		broadcast:  make(chan domain.Event, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		logger:     logger.With("component", "websocket_hub"),
	}
}

// SetResync installs the snapshot source used after dropped broadcasts.
// It must be called before Run.
func (h *Hub) SetResync(fn Resync) {
	h.resync = fn
}

// Broadcast queues an event for every connected client. It never blocks;
// when the queue is full the event is dropped and the clients are resynced
// once the queue drains.
func (h *Hub) Broadcast(event domain.Event) {
	select {
	case h.broadcast <- event:
	default:
		h.dropped.Store(true)
		h.logger.Warn("broadcast channel full, dropping event",
			"event_type", event.Type,
			"section", event.Section,
			"sequence", event.Sequence,
		)
	}
}

// Run starts the hub's event loop and blocks until ctx is cancelled, then
// disconnects every client.
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return nil

		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case event := <-h.broadcast:
			h.broadcastEvent(event)
			if len(h.broadcast) == 0 && h.dropped.Swap(false) {
				h.resyncClients()
			}
		}
	}
}

// registerClient adds a client to the hub
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.OperatorID] == nil {
		h.clients[client.OperatorID] = make(map[*Client]bool)
	}
	h.clients[client.OperatorID][client] = true

	h.logger.Info("client registered",
		"client_id", client.ID,
		"operator_id", client.OperatorID,
		"total_connections", len(h.clients[client.OperatorID]),
	)
}

// unregisterClient removes a client from the hub
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if operatorClients, ok := h.clients[client.OperatorID]; ok {
		if _, exists := operatorClients[client]; exists {
			delete(operatorClients, client)
			if len(operatorClients) == 0 {
				delete(h.clients, client.OperatorID)
			}
		}
	}

	client.CloseSend()

	h.logger.Info("client unregistered",
		"client_id", client.ID,
		"operator_id", client.OperatorID,
	)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for operatorID, operatorClients := range h.clients {
		for client := range operatorClients {
			client.CloseSend()
		}
		delete(h.clients, operatorID)
	}
}

// snapshot copies the client list so sends happen without the lock.
func (h *Hub) snapshot() []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := make([]*Client, 0, len(h.clients))
	for _, operatorClients := range h.clients {
		for client := range operatorClients {
			clients = append(clients, client)
		}
	}
	return clients
}

// broadcastEvent sends an event to all connected clients
func (h *Hub) broadcastEvent(event domain.Event) {
	clients := h.snapshot()

	h.logger.Debug("broadcasting event",
		"event_type", event.Type,
		"section", event.Section,
		"sequence", event.Sequence,
		"client_count", len(clients),
	)

	for _, client := range clients {
		if !client.Enqueue(event) {
			// Slow or stuck client; Run owns the loop so unregister inline.
			h.logger.Warn("client send buffer full, unregistering",
				"client_id", client.ID,
			)
			h.unregisterClient(client)
		}
	}
}

func (h *Hub) resyncClients() {
	if h.resync == nil {
		return
	}
	events := h.resync()
	h.logger.Info("resyncing clients after dropped events", "events", len(events))
	for _, event := range events {
		h.broadcastEvent(event)
	}
}

// GetClientCount returns the total number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, operatorClients := range h.clients {
		count += len(operatorClients)
	}
	return count
}

// IsOperatorConnected checks if an operator has any active connections
func (h *Hub) IsOperatorConnected(operatorID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.clients[operatorID]
	return ok && len(clients) > 0
}
