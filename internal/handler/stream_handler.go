package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/repetit/testflow-backend/internal/middleware"
	"github.com/repetit/testflow-backend/internal/session"
	ws "github.com/repetit/testflow-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// StreamHandler handles the test-stage WebSocket: timer pushes downstream,
// answer autosaves upstream.
type StreamHandler struct {
	ctrl     *session.Controller
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(ctrl *session.Controller, log zerolog.Logger, allowedOrigins []string) *StreamHandler {
	return &StreamHandler{
		ctrl:     ctrl,
		log:      log.With().Str("component", "stream_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// SessionStream godoc
// WS /ws/v1/flow/stream
// Upgrades to WebSocket for real-time timer ticks and answer autosave.
func (h *StreamHandler) SessionStream(c *gin.Context) {
	userID := middleware.GetUserID(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	events, cancel, err := h.ctrl.Subscribe(c.Request.Context(), userID)
	if err != nil {
		ws.WriteError(conn, "no active session")
		return
	}
	defer cancel()

	wsLog := h.log.With().Str("user_id", userID).Logger()
	wsLog.Info().Msg("Taker connected")

	// Writer: session events flow down until the session closes the channel
	// or the reader loop exits.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range events {
			resp := ws.SessionResponse{
				Event:     ws.EventSession,
				Kind:      string(ev.Kind),
				Remaining: ev.Remaining,
				Answered:  ev.Answered,
				Status:    string(ev.Status),
			}
			if err := ws.WriteTyped(conn, resp); err != nil {
				wsLog.Debug().Err(err).Msg("Event write failed")
				return
			}
		}
	}()

	for {
		var msg ws.AutosaveRequest
		err := ws.ReadJSON(conn, &msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			break
		}

		switch msg.Action {
		case ws.ActionAutosave:
			h.handleAutosave(c, conn, wsLog, userID, &msg)
		case ws.ActionPing:
			ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
		default:
			ws.WriteError(conn, "unknown action")
		}
	}

	cancel()
	<-done
	wsLog.Info().Msg("Taker disconnected")
}

func (h *StreamHandler) handleAutosave(c *gin.Context, conn *websocket.Conn, log zerolog.Logger, userID string, msg *ws.AutosaveRequest) {
	_, err := h.ctrl.UpdateAnswer(c.Request.Context(), userID, msg.Index, msg.Answer)
	if err != nil {
		log.Warn().Err(err).Int("index", msg.Index).Msg("Autosave rejected")
		ws.WriteError(conn, "autosave failed: "+err.Error())
		return
	}

	ws.WriteTyped(conn, ws.AutosaveResponse{
		Event:  ws.EventSuccess,
		Status: "saved",
	})
}
