package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	wsAdapter "github.com/lorrc/service-desk-dashboard/internal/adapters/primary/websocket"
	"github.com/lorrc/service-desk-dashboard/internal/auth"
	"github.com/lorrc/service-desk-dashboard/internal/config"
	"github.com/lorrc/service-desk-dashboard/internal/core/domain"
	apperrors "github.com/lorrc/service-desk-dashboard/internal/core/errors"
	"github.com/lorrc/service-desk-dashboard/internal/core/ports"
)

// WebSocketHandler upgrades authenticated connections and attaches them to
// the hub and the dashboard service.
type WebSocketHandler struct {
	hub      *wsAdapter.Hub
	tm       *auth.TokenManager
	service  ports.DashboardService
	models   SectionModels
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(
	hub *wsAdapter.Hub,
	tm *auth.TokenManager,
	service ports.DashboardService,
	models SectionModels,
	cfg *config.Config,
	logger *slog.Logger,
) *WebSocketHandler {
	handler := &WebSocketHandler{
		hub:     hub,
		tm:      tm,
		service: service,
		models:  models,
		logger:  logger.With("handler", "websocket"),
	}

	handler.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.WebSocket.ReadBufferSize,
		WriteBufferSize: cfg.WebSocket.WriteBufferSize,
		CheckOrigin:     handler.makeOriginChecker(cfg),
	}

	return handler
}

// makeOriginChecker creates an origin checking function based on configuration
func (h *WebSocketHandler) makeOriginChecker(cfg *config.Config) func(r *http.Request) bool {
	allowedOrigins := cfg.WebSocket.AllowedOrigins

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")

		// In development mode, allow all origins (but log a warning)
		if cfg.IsDevelopment() {
			if origin != "" {
				h.logger.Warn("allowing websocket connection in development mode",
					"origin", origin,
					"remote_addr", r.RemoteAddr,
				)
			}
			return true
		}

		// No origin header (same-origin request or non-browser client)
		if origin == "" {
			return true
		}

		// Check against allowed origins
		parsedOrigin, err := url.Parse(origin)
		if err != nil {
			h.logger.Warn("failed to parse websocket origin",
				"origin", origin,
				"error", err,
			)
			return false
		}

		originHost := parsedOrigin.Host

		for _, allowed := range allowedOrigins {
			// Support wildcard subdomains like "*.example.com"
			if strings.HasPrefix(allowed, "*.") {
				suffix := allowed[1:] // Remove the "*", keep ".example.com"
				if strings.HasSuffix(originHost, suffix) || originHost == allowed[2:] {
					return true
				}
			} else if originHost == allowed {
				return true
			}
		}

		h.logger.Warn("websocket connection rejected due to origin",
			"origin", origin,
			"remote_addr", r.RemoteAddr,
			"allowed_origins", allowedOrigins,
		)
		return false
	}
}

// ServeHTTP handles WebSocket connection requests
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// 1. Authenticate the connection via query parameter
	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		h.logger.WarnContext(ctx, "websocket connection rejected: missing token",
			"remote_addr", r.RemoteAddr,
		)
		writeUnauthorized(w, "Missing authentication token")
		return
	}

	claims, err := h.tm.ValidateToken(tokenString)
	if err != nil {
		h.logger.WarnContext(ctx, "websocket connection rejected: invalid token",
			"remote_addr", r.RemoteAddr,
			"error", err,
		)
		writeUnauthorized(w, "Invalid or expired token")
		return
	}

	// 2. Upgrade the connection
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to upgrade websocket connection",
			"operator_id", claims.OperatorID,
			"error", err,
		)
		return
	}

	// 3. Create and register the new client. Registering before the snapshot
	// means no refresh is missed; clients order events by sequence.
	client := wsAdapter.NewClient(h.hub, conn, claims.OperatorID, h.service, h.logger)
	h.hub.Register <- client

	h.logger.InfoContext(ctx, "websocket connection established",
		"client_id", client.ID,
		"operator_id", claims.OperatorID,
		"remote_addr", r.RemoteAddr,
	)

	// 4. Bring the client up to date
	h.sendSnapshot(ctx, client)

	// 5. Start the I/O pumps in new goroutines. The request context ends
	// when this handler returns, so the pumps keep only its values.
	go client.WritePump()
	go client.ReadPump(context.WithoutCancel(ctx))
}

func (h *WebSocketHandler) sendSnapshot(ctx context.Context, client *wsAdapter.Client) {
	view, err := h.service.Snapshot(ctx)
	switch {
	case errors.Is(err, apperrors.ErrNotLoaded):
		// The load broadcast will follow.
		return
	case err != nil:
		client.Enqueue(domain.Event{
			Type:    domain.EventDashboardFailed,
			Payload: ErrorResponse{Error: err.Error(), Code: apperrors.Classify(err).Code},
		})
		return
	}
	if !client.Enqueue(h.models(view)...) {
		h.logger.WarnContext(ctx, "snapshot did not fit the send buffer", "client_id", client.ID)
	}
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	appErr := apperrors.NewUnauthorizedError(message)
	WriteJSON(w, appErr.StatusCode, ErrorResponse{Error: appErr.Message, Code: appErr.Code})
}
