package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/ssc-prep/mocktest-backend/internal/engine"
	"github.com/ssc-prep/mocktest-backend/internal/middleware"
	"github.com/ssc-prep/mocktest-backend/internal/model"
	"github.com/ssc-prep/mocktest-backend/internal/service"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
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

// statePush is the server→client frame carrying the attempt view.
type statePush struct {
	Event string       `json:"event"`
	State engine.State `json:"state"`
}

// WSHandler streams the live attempt state to the client once per second,
// so the host UI renders the countdown without polling.
type WSHandler struct {
	attempts *service.AttemptService
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(attempts *service.AttemptService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		attempts: attempts,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// AttemptStream godoc
// WS /ws/v1/attempts/:test_id/stream
// Pushes the attempt state every second; closes after the attempt completes.
func (h *WSHandler) AttemptStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	testID := c.Param("test_id")

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Str("user_id", claims.UserID).
		Str("test_id", testID).
		Logger()
	wsLog.Info().Msg("Attempt stream connected")

	// Read pump: consume control frames and detect the client going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			conn.SetReadDeadline(time.Now().Add(5 * time.Minute))
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			wsLog.Debug().Msg("Attempt stream closed by client")
			return
		case <-ticker.C:
			state, err := h.attempts.State(c.Request.Context(), claims.UserID, testID)
			if err != nil {
				wsLog.Warn().Err(err).Msg("State read failed; closing stream")
				return
			}

			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(statePush{Event: "state", State: state}); err != nil {
				wsLog.Debug().Err(err).Msg("Attempt stream write failed")
				return
			}

			if state.Status == model.AttemptStatusCompleted {
				wsLog.Info().Msg("Attempt completed; closing stream")
				conn.WriteControl(
					websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "completed"),
					time.Now().Add(time.Second),
				)
				return
			}
		}
	}
}
