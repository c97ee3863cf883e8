package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/leynos/wildside-sub003/internal/domain"
	"github.com/leynos/wildside-sub003/internal/users/handler/mocks"
	id "github.com/leynos/wildside-sub003/pkg/domain"
	dErrors "github.com/leynos/wildside-sub003/pkg/domain-errors"
)

const allowedOrigin = "http://localhost:3000"

type SocketSuite struct {
	suite.Suite
	service *mocks.MockService
	server  *httptest.Server
	wsURL   string
}

func TestSocketSuite(t *testing.T) {
	suite.Run(t, new(SocketSuite))
}

func (s *SocketSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	r := chi.NewRouter()
	NewSocket(s.service, []string{allowedOrigin}, zerolog.Nop()).Register(r)
	s.server = httptest.NewServer(r)
	s.wsURL = "ws" + strings.TrimPrefix(s.server.URL, "http") + "/ws"
}

func (s *SocketSuite) TearDownTest() {
	s.server.Close()
}

func (s *SocketSuite) dial(origin string) (*websocket.Conn, *http.Response, error) {
	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	return websocket.DefaultDialer.Dial(s.wsURL, header)
}

func (s *SocketSuite) connect() *websocket.Conn {
	conn, _, err := s.dial(allowedOrigin)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func (s *SocketSuite) roundTrip(conn *websocket.Conn, frame string) map[string]any {
	s.Require().NoError(conn.WriteMessage(websocket.TextMessage, []byte(frame)))
	_, data, err := conn.ReadMessage()
	s.Require().NoError(err)
	var body map[string]any
	s.Require().NoError(json.Unmarshal(data, &body))
	return body
}

// =============================================================================
// Origin checks
// =============================================================================

func (s *SocketSuite) TestRejectsMissingOrigin() {
	_, resp, err := s.dial("")
	s.Require().Error(err)
	s.Require().NotNil(resp)
	s.Equal(http.StatusForbidden, resp.StatusCode)
}

func (s *SocketSuite) TestRejectsUnknownOrigin() {
	_, resp, err := s.dial("https://evil.example")
	s.Require().Error(err)
	s.Require().NotNil(resp)
	s.Equal(http.StatusForbidden, resp.StatusCode)
}

// =============================================================================
// Frames
// =============================================================================

func (s *SocketSuite) TestCreatedFrame() {
	traceID := uuid.Nil.String()
	user := domain.User{ID: id.NewUserID(), DisplayName: "Bob"}
	s.service.EXPECT().Register(gomock.Any(), traceID, "Bob").
		Return(domain.UserCreated{TraceID: traceID, User: user}, nil)

	body := s.roundTrip(s.connect(), `{"traceId":"`+traceID+`","displayName":"Bob"}`)

	s.Equal(traceID, body["traceId"])
	s.Equal(user.ID.String(), body["id"])
	s.Equal("Bob", body["displayName"])
}

func (s *SocketSuite) TestRejectedFrame() {
	traceID := uuid.New().String()
	s.service.EXPECT().Register(gomock.Any(), traceID, "bad$char").Return(domain.DisplayNameRejected{
		TraceID:       traceID,
		AttemptedName: "bad$char",
		Code:          domain.DisplayNameInvalidChars,
		Message:       domain.DisplayNamePolicyMessage,
	}, nil)

	body := s.roundTrip(s.connect(), `{"traceId":"`+traceID+`","displayName":"bad$char"}`)

	s.Equal(traceID, body["traceId"])
	s.Equal("invalid_chars", body["code"])
	s.Equal(domain.DisplayNamePolicyMessage, body["error"])
	details, ok := body["details"].(map[string]any)
	s.Require().True(ok)
	s.Equal("displayName", details["field"])
	s.Equal("bad$char", details["value"])
}

func (s *SocketSuite) TestStorageFailureFrame() {
	traceID := uuid.New().String()
	s.service.EXPECT().Register(gomock.Any(), traceID, "Bob").
		Return(nil, dErrors.Wrap(errors.New("refused"), dErrors.CodeServiceUnavailable, "user repository unavailable"))

	body := s.roundTrip(s.connect(), `{"traceId":"`+traceID+`","displayName":"Bob"}`)

	s.Equal("service_unavailable", body["code"])
	s.Equal("user repository unavailable", body["error"])
}

func (s *SocketSuite) TestSessionHandlesSeveralFrames() {
	conn := s.connect()
	for _, name := range []string{"Alice", "Carol"} {
		traceID := uuid.New().String()
		user := domain.User{ID: id.NewUserID(), DisplayName: domain.DisplayName(name)}
		s.service.EXPECT().Register(gomock.Any(), traceID, name).
			Return(domain.UserCreated{TraceID: traceID, User: user}, nil)

		body := s.roundTrip(conn, `{"traceId":"`+traceID+`","displayName":"`+name+`"}`)
		s.Equal(name, body["displayName"])
	}
}

func (s *SocketSuite) TestMalformedFrameClosesWithPolicyViolation() {
	frames := []string{
		`not json`,
		`{"displayName":"Bob"}`,
		`{"traceId":"not-a-uuid","displayName":"Bob"}`,
		`{"traceId":"` + uuid.New().String() + `"}`,
	}
	for _, frame := range frames {
		s.Run(frame, func() {
			conn := s.connect()
			s.Require().NoError(conn.WriteMessage(websocket.TextMessage, []byte(frame)))

			_, _, err := conn.ReadMessage()

			s.True(websocket.IsCloseError(err, websocket.ClosePolicyViolation), "got %v", err)
		})
	}
}
