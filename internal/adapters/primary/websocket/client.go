package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/lorrc/service-desk-dashboard/internal/adapters/primary/validation"
	"github.com/lorrc/service-desk-dashboard/internal/core/domain"
	apperrors "github.com/lorrc/service-desk-dashboard/internal/core/errors"
	"github.com/lorrc/service-desk-dashboard/internal/core/ports"
	"github.com/lorrc/service-desk-dashboard/internal/infrastructure/logging"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	// Outbound buffer; a full snapshot is one event per section.
	sendBufferSize = 256
)

// Message types accepted from clients.
const (
	MsgSelectPeriod = "SELECT_PERIOD"
	MsgClearPeriod  = "CLEAR_PERIOD"
	MsgClickFilter  = "CLICK_FILTER"
	MsgApplyFilter  = "APPLY_FILTER"
	MsgClearFilter  = "CLEAR_FILTER"
	MsgPing         = "PING"
)

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	Hub *Hub

	// The websocket connection.
	Conn *websocket.Conn

	// Buffered channel of outbound messages.
	Send chan domain.Event

	// ID identifies this connection.
	ID uuid.UUID

	// OperatorID is the authenticated operator.
	OperatorID uuid.UUID

	// service receives the interactions sent by the browser.
	service ports.DashboardService

	// mu guards closed so Enqueue never sends on a closed channel
	mu     sync.Mutex
	closed bool

	// logger for this client
	logger *slog.Logger
}

// NewClient creates a new WebSocket client
func NewClient(hub *Hub, conn *websocket.Conn, operatorID uuid.UUID, service ports.DashboardService, logger *slog.Logger) *Client {
	id := uuid.New()
	return &Client{
		Hub:        hub,
		Conn:       conn,
		Send:       make(chan domain.Event, sendBufferSize),
		ID:         id,
		OperatorID: operatorID,
		service:    service,
		logger: logger.With(
			"client_id", id.String(),
			"operator_id", operatorID.String(),
		),
	}
}

// CloseSend safely closes the Send channel exactly once
func (c *Client) CloseSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

// Enqueue queues events without blocking. It reports false when the send
// buffer is full; events for a closed client are dropped silently.
func (c *Client) Enqueue(events ...domain.Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return true
	}
	for _, event := range events {
		select {
		case c.Send <- event:
		default:
			return false
		}
	}
	return true
}

// ReadPump pumps messages from the websocket connection to the dashboard
// service. This method runs in its own goroutine.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.Hub.Unregister <- c
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error("failed to set read deadline", "error", err)
		return
	}

	c.Conn.SetPongHandler(func(string) error {
		if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			c.logger.Error("failed to set read deadline in pong handler", "error", err)
		}
		return nil
	})

	ctx = logging.WithOperatorID(ctx, c.OperatorID.String())
	ctx = logging.WithClientID(ctx, c.ID.String())

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read error", "error", err)
			}
			break
		}

		c.handleIncomingMessage(ctx, message)
	}
}

// WritePump pumps messages from the hub to the websocket connection.
// This method runs in its own goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.Send:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error("failed to set write deadline", "error", err)
				return
			}

			if !ok {
				// The hub closed the channel. Send close message.
				if err := c.Conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.logger.Debug("failed to send close message", "error", err)
				}
				return
			}

			if err := c.writeJSON(event); err != nil {
				c.logger.Error("failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error("failed to set write deadline for ping", "error", err)
				return
			}

			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug("failed to send ping", "error", err)
				return
			}
		}
	}
}

// writeJSON writes a JSON message to the websocket connection
func (c *Client) writeJSON(event domain.Event) error {
	w, err := c.Conn.NextWriter(websocket.TextMessage)
	if err != nil {
		return err
	}

	if err := json.NewEncoder(w).Encode(event); err != nil {
		_ = w.Close()
		return err
	}

	return w.Close()
}

// --- Incoming Message Handling ---

// ClientMessage is the structure for messages sent from the client.
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// InteractionError is the payload of an INTERACTION_ERROR event.
type InteractionError struct {
	Request string                 `json:"request"`
	Code    string                 `json:"code"`
	Error   string                 `json:"error"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// handleIncomingMessage routes one client message to the dashboard service
// and answers with INTERACTION_ACCEPTED or INTERACTION_ERROR.
func (c *Client) handleIncomingMessage(ctx context.Context, message []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.logger.Warn("failed to unmarshal client message", "error", err)
		c.sendError("", apperrors.NewBadRequestError(err, "Invalid message"))
		return
	}

	var (
		ticket *domain.RefreshTicket
		err    error
	)
	switch msg.Type {
	case MsgSelectPeriod:
		var p validation.PeriodRequest
		if err = decodePayload(msg.Payload, &p); err != nil {
			break
		}
		var start, end time.Time
		if start, end, err = p.Parse(); err != nil {
			break
		}
		ticket, err = c.service.SelectPeriod(ctx, start, end)

	case MsgClearPeriod:
		ticket, err = c.service.ClearPeriod(ctx)

	case MsgClickFilter, MsgApplyFilter:
		var p validation.FilterRequest
		if err = decodePayload(msg.Payload, &p); err != nil {
			break
		}
		if err = p.Validate(msg.Type == MsgClickFilter); err != nil {
			break
		}
		if msg.Type == MsgClickFilter {
			ticket, err = c.service.ClickFilter(ctx, p.Field, p.Value)
		} else {
			ticket, err = c.service.ApplyFilter(ctx, p.Field, p.Value)
		}

	case MsgClearFilter:
		var p validation.FilterRequest
		if err = decodePayload(msg.Payload, &p); err != nil {
			break
		}
		ticket, err = c.service.ClearFilter(ctx, p.Field)

	case MsgPing:
		// Client-side keep-alive, respond with pong
		c.sendPong()
		return

	default:
		c.logger.Debug("received unknown message type", "type", msg.Type)
		return
	}

	if err != nil {
		c.sendError(msg.Type, err)
		return
	}
	c.Enqueue(domain.Event{
		Type:     domain.EventInteractionAccepted,
		Sequence: ticket.Sequence,
		Payload:  ticket,
	})
}

// decodePayload treats a missing payload as an empty object.
func decodePayload(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return apperrors.NewBadRequestError(err, "Invalid message payload")
	}
	return nil
}

func (c *Client) sendError(request string, err error) {
	appErr := apperrors.Classify(err)
	if appErr.StatusCode >= 500 {
		c.logger.Error("interaction failed", "request", request, "error", err)
	} else {
		c.logger.Debug("interaction rejected", "request", request, "error", err)
	}
	c.Enqueue(domain.Event{
		Type: domain.EventInteractionError,
		Payload: InteractionError{
			Request: request,
			Code:    appErr.Code,
			Error:   appErr.Message,
			Details: appErr.Details,
		},
	})
}

func (c *Client) sendPong() {
	c.Enqueue(domain.Event{Type: domain.EventPong})
}
