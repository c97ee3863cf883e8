package handler

import (
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/leynos/wildside-sub003/internal/users/models"
	dErrors "github.com/leynos/wildside-sub003/pkg/domain-errors"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

// Socket accepts display name submissions over a WebSocket. Each text frame
// is answered with exactly one reply frame; a frame that is not a valid
// request closes the connection with a policy violation.
type Socket struct {
	service  Service
	origins  []string
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewSocket builds the /ws handler. Upgrades are accepted only from the listed
// origins; "*" allows any origin that is present.
func NewSocket(service Service, origins []string, logger zerolog.Logger) *Socket {
	s := &Socket{service: service, origins: origins, logger: logger}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      s.checkOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
	return s
}

func (s *Socket) Register(r chi.Router) {
	r.Get("/ws", s.HandleUpgrade)
}

func (s *Socket) checkOrigin(r *http.Request) bool {
	values := r.Header.Values("Origin")
	if len(values) != 1 || values[0] == "" {
		s.logger.Warn().Int("origins", len(values)).Msg("websocket upgrade rejected: missing or repeated Origin")
		return false
	}
	if slices.Contains(s.origins, "*") || slices.Contains(s.origins, values[0]) {
		return true
	}
	s.logger.Warn().Str("origin", values[0]).Msg("websocket upgrade rejected: origin not allowed")
	return false
}

// HandleUpgrade handles GET /ws. It blocks for the lifetime of the session.
func (s *Socket) HandleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go s.heartbeat(conn, done)

	ctx := r.Context()
	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug().Err(err).Msg("websocket closed unexpectedly")
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		if messageType != websocket.TextMessage {
			continue
		}

		var req models.SocketRequest
		if err := json.Unmarshal(data, &req); err != nil || !req.Valid() {
			s.logger.Warn().Err(err).Msg("rejected malformed websocket payload")
			s.closePolicy(conn)
			return
		}

		traceID := req.TraceID.String()
		var reply any
		event, err := s.service.Register(ctx, traceID, *req.DisplayName)
		if err != nil {
			s.logger.Error().Err(err).Str("trace_id", traceID).Msg("websocket registration failed")
			reply = socketFailure(traceID, err)
		} else {
			reply = models.SocketReply(event)
		}

		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(reply); err != nil {
			s.logger.Debug().Err(err).Msg("websocket write failed")
			return
		}
	}
}

// heartbeat pings the peer until done is closed. WriteControl is safe to call
// alongside the reader's writes.
func (s *Socket) heartbeat(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (s *Socket) closePolicy(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "invalid payload")
	if err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait)); err != nil {
		s.logger.Debug().Err(err).Msg("failed to write close frame")
	}
}

func socketFailure(traceID string, err error) models.SocketError {
	code := dErrors.CodeOf(err)
	message := "Internal server error"
	if de, ok := dErrors.As(err); ok && code != dErrors.CodeInternal {
		message = de.Message
	}
	return models.SocketError{TraceID: traceID, Code: string(code), Error: message}
}
