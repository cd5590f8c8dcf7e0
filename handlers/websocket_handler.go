package handlers

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/Dosada05/academy-system/middleware"
	"github.com/Dosada05/academy-system/notifications"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub      *notifications.Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewWebSocketHandler accepts handshakes from the given origins; "*" allows
// any origin.
func NewWebSocketHandler(hub *notifications.Hub, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger,
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}

// ServeWs subscribes the client to its academy's events.
// Clients connect to /ws/academies/{academyID}?token=...
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	academyID, err := readIDParam(r, "academyID")
	if err != nil {
		badRequestResponse(w, r, h.logger, err)
		return
	}

	tokenAcademyID, err := middleware.GetAcademyIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, h.logger, "authentication required")
		return
	}
	if tokenAcademyID != academyID {
		forbiddenResponse(w, r, h.logger, "token does not belong to this academy")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.logger.Warn("websocket upgrade failed", slog.Int("academy_id", academyID), slog.Any("error", err))
		return
	}

	room := notifications.AcademyRoom(academyID)
	client := notifications.NewClient(h.hub, conn, room)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	h.logger.Debug("websocket client connected", slog.String("room", room))
}
