package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/edustack/assess-backend/internal/config"
	"github.com/edustack/assess-backend/internal/middleware"
	"github.com/edustack/assess-backend/internal/response"
	"github.com/edustack/assess-backend/internal/service"
	ws "github.com/edustack/assess-backend/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const keepAliveInterval = 30 * time.Second

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

// MonitorHandler streams a test's live proctor feed to admins over WebSocket.
type MonitorHandler struct {
	rdb            *redis.Client
	catalogService *service.CatalogService
	sessionService *service.SessionService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewMonitorHandler creates a new MonitorHandler.
func NewMonitorHandler(rdb *redis.Client, catalogService *service.CatalogService, sessionService *service.SessionService, log zerolog.Logger, allowedOrigins []string) *MonitorHandler {
	return &MonitorHandler{
		rdb:            rdb,
		catalogService: catalogService,
		sessionService: sessionService,
		log:            log.With().Str("component", "monitor_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// MonitorTestStream godoc
// WS /ws/v1/admin/tests/:id/monitor
// Upgrades to WebSocket and streams session lifecycle and proctor flag
// events for a single test. The first frame is a snapshot of every live
// session; afterwards events from the test's monitor channel are forwarded
// as they arrive.
func (h *MonitorHandler) MonitorTestStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	testID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	test, err := h.catalogService.GetByID(c.Request.Context(), testID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	monLog := h.log.With().Str("test_id", testID.String()).Logger()
	monLog.Info().Msg("Admin attached to live monitor")

	snapshot := ws.SnapshotResponse{
		Event: ws.EventSnapshot,
		Test: map[string]interface{}{
			"id":               test.ID.String(),
			"title":            test.Title,
			"duration_minutes": test.DurationMinutes,
			"question_count":   len(test.Questions),
		},
		Sessions: h.sessionService.LiveForTest(testID),
	}
	if err := ws.WriteTyped(conn, snapshot); err != nil {
		monLog.Warn().Err(err).Msg("Snapshot write failed")
		return
	}

	reqCtx := c.Request.Context()

	channelName := config.CacheKey.TestMonitorChannel(testID.String())
	pubsub := h.rdb.Subscribe(reqCtx, channelName)
	defer pubsub.Close()

	events := pubsub.Channel()

	// Read pump: the client never sends application messages, but reading
	// is the only way to learn the peer hung up.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	keepAliveTicker := time.NewTicker(keepAliveInterval)
	defer keepAliveTicker.Stop()

	for {
		select {
		case <-reqCtx.Done():
			monLog.Info().Msg("Admin disconnected from live monitor")
			return

		case <-closed:
			monLog.Info().Msg("Admin closed live monitor connection")
			return

		case msg, ok := <-events:
			if !ok {
				return
			}
			update := ws.UpdateResponse{
				Event: ws.EventUpdate,
				Data:  []byte(msg.Payload),
			}
			if err := ws.WriteTyped(conn, update); err != nil {
				monLog.Warn().Err(err).Msg("Update write failed")
				return
			}

		case <-keepAliveTicker.C:
			if err := ws.WriteTyped(conn, ws.PingResponse{Event: ws.EventPing}); err != nil {
				return
			}
		}
	}
}
