package realtime

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"

	"github.com/ashureev/careercompass/internal/assessment"
	"github.com/ashureev/careercompass/internal/identity"
)

// clientMessage is a client-to-server frame.
type clientMessage struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
}

// WebSocketHandler serves /ws/assessment.
type WebSocketHandler struct {
	mgr           *assessment.Manager
	hub           *Hub
	allowedOrigin string
	isDev         bool
}

// NewWebSocketHandler creates a new WebSocket handler.
func NewWebSocketHandler(mgr *assessment.Manager, hub *Hub, allowedOrigin string, isDev bool) *WebSocketHandler {
	return &WebSocketHandler{
		mgr:           mgr,
		hub:           hub,
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
	}
}

// ServeHTTP implements http.Handler for WebSocket upgrade. Every connection
// is one visit to the assessment page: it starts a fresh run, and the run is
// abandoned when the connection goes away.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	sessionID := identity.SessionIDFromContext(r.Context())
	if userID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	slog.Info("WebSocket connection request",
		"user_id", userID,
		"username", identity.UsernameFromContext(r.Context()),
		"session_id", sessionID,
		"ip", identity.IPFromRequest(r),
	)

	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "user_id", userID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr, "user_id", userID)
		}
	}()

	client := h.hub.Register(userID, sessionID, ws)
	defer h.hub.Unregister(userID, sessionID, client)

	snap := h.mgr.Start(userID, sessionID)
	runID := snap.RunID
	defer func() {
		h.mgr.EndRun(userID, sessionID, runID)
	}()
	client.Enqueue(Envelope{Type: FrameSnapshot, Assessment: &snap})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		select {
		case <-client.Done():
			cancel()
		case <-ctx.Done():
		}
	}()

	h.readLoop(ctx, ws, client, userID, sessionID, &runID)
	slog.Info("Realtime session ended", "user_id", userID, "session_id", sessionID)
}

func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "*" {
		return true
	}
	if origin == h.allowedOrigin {
		return true
	}
	slog.Warn("WebSocket origin rejected", "origin", origin, "allowed", h.allowedOrigin)
	return false
}

// readLoop handles client frames until the connection ends. runID tracks the
// run this connection owns across restarts.
func (h *WebSocketHandler) readLoop(ctx context.Context, ws *websocket.Conn, client *Client, userID, sessionID string, runID *string) {
	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("WebSocket closed by client", "user_id", userID)
			} else {
				slog.Debug("WebSocket read ended", "error", err, "user_id", userID)
			}
			return
		}

		msg, err := decodeClientMessage(data)
		if err != nil {
			slog.Debug("Rejected client frame", "error", err, "user_id", userID)
			client.Enqueue(Envelope{Type: FrameError, Error: err.Error()})
			continue
		}

		var reply *Envelope
		switch msg.Type {
		case "submit":
			// Accepted submissions are answered by the published events.
			if _, err := h.mgr.Submit(userID, sessionID, msg.Content); err != nil {
				reply = &Envelope{Type: FrameRejected, Reason: assessment.RejectReason(err)}
			}
		case "restart":
			snap := h.mgr.Start(userID, sessionID)
			*runID = snap.RunID
			reply = &Envelope{Type: FrameSnapshot, Assessment: &snap}
		case "snapshot":
			snap := h.mgr.Current(userID, sessionID)
			*runID = snap.RunID
			reply = &Envelope{Type: FrameSnapshot, Assessment: &snap}
		case "ping":
			reply = &Envelope{Type: FramePong}
		}

		if reply != nil && !client.Enqueue(*reply) {
			slog.Debug("WebSocket reply dropped", "user_id", userID, "frame", reply.Type)
			return
		}
	}
}
