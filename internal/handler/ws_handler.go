package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/kelasid/ruangkelas-backend/internal/config"
	"github.com/kelasid/ruangkelas-backend/internal/response"
	"github.com/kelasid/ruangkelas-backend/internal/service"
	ws "github.com/kelasid/ruangkelas-backend/internal/websocket"
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

// WSHandler streams live quiz submission events to the owning teacher.
type WSHandler struct {
	rdb         *redis.Client
	quizService *service.QuizService
	log         zerolog.Logger
	upgrader    websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(rdb *redis.Client, quizService *service.QuizService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		rdb:         rdb,
		quizService: quizService,
		log:         log.With().Str("component", "ws_handler").Logger(),
		upgrader:    buildUpgrader(allowedOrigins),
	}
}

// MonitorQuizStream godoc
// GET /ws/v1/quizzes/:quiz_id/monitor
// Upgrades to a WebSocket and forwards every submission event for the quiz
// until the client disconnects.
func (h *WSHandler) MonitorQuizStream(c *gin.Context) {
	quizID := c.Param("quiz_id")

	// Reject before upgrading so the client gets a proper HTTP status.
	if _, err := h.quizService.Results(quizID); err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrQuizNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("quiz_id", quizID).Logger()
	wsLog.Info().Msg("Monitor connected")

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	pubsub := h.rdb.Subscribe(ctx, config.CacheKey.QuizMonitorChannel(quizID))
	defer pubsub.Close()

	// Reader goroutine: client frames are funneled into the select loop so
	// the connection has exactly one writer. A read error means disconnect.
	frames := make(chan ws.RequestEnvelope, 4)
	go func() {
		defer cancel()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				} else {
					wsLog.Debug().Msg("Monitor disconnected")
				}
				return
			}
			var frame ws.RequestEnvelope
			if err := json.Unmarshal(data, &frame); err != nil {
				frame = ws.RequestEnvelope{}
			}
			select {
			case frames <- frame:
			case <-ctx.Done():
				return
			}
		}
	}()

	events := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case frame := <-frames:
			switch frame.Action {
			case ws.ActionPing:
				if err := ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong}); err != nil {
					wsLog.Debug().Err(err).Msg("Pong write failed")
					return
				}
			default:
				wsLog.Warn().Str("action", string(frame.Action)).Msg("Unknown action")
				if err := ws.WriteError(conn, "unknown action: "+string(frame.Action)); err != nil {
					wsLog.Debug().Err(err).Msg("Error write failed")
					return
				}
			}
		case msg, ok := <-events:
			if !ok {
				return
			}
			if err := ws.WriteTyped(conn, ws.SubmissionEvent{
				Event:   ws.EventSubmission,
				Payload: msg.Payload,
			}); err != nil {
				wsLog.Debug().Err(err).Msg("Monitor write failed")
				return
			}
		}
	}
}
