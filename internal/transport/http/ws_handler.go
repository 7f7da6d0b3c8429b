package http

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"tryout-service/internal/app"
	"tryout-service/internal/domain"
)

// WSHandler streams live analytics for one try-out over a websocket.
type WSHandler struct {
	analytics *app.AnalyticsService
	log       *zap.Logger
	upgrader  websocket.Upgrader
}

func NewWSHandler(analytics *app.AnalyticsService, log *zap.Logger) *WSHandler {
	return &WSHandler{
		analytics: analytics,
		log:       log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ServeWS sends the current summary and then a fresh one after every attempt.
// Unknown try-outs are rejected before the upgrade.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	tryOutID := r.URL.Query().Get("tryoutId")
	if tryOutID == "" {
		writeMessage(w, http.StatusBadRequest, "missing tryoutId")
		return
	}

	updates, cancel, err := h.analytics.Subscribe(r.Context(), tryOutID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	defer cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	// The feed is read-only; reading only detects the client going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case stats, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(outboundMessage[domain.Stats]{Type: "stats", Payload: stats}); err != nil {
				h.log.Debug("ws write failed", zap.String("tryout_id", tryOutID), zap.Error(err))
				return
			}
		case <-closed:
			return
		}
	}
}
