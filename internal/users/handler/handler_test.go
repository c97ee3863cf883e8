package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/leynos/wildside-sub003/internal/domain"
	"github.com/leynos/wildside-sub003/internal/users/handler/mocks"
	"github.com/leynos/wildside-sub003/internal/users/models"
	id "github.com/leynos/wildside-sub003/pkg/domain"
	dErrors "github.com/leynos/wildside-sub003/pkg/domain-errors"
	"github.com/leynos/wildside-sub003/pkg/testutil"
)

type UsersHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
}

func TestUsersHandlerSuite(t *testing.T) {
	suite.Run(t, new(UsersHandlerSuite))
}

func (s *UsersHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	s.router = chi.NewRouter()
	New(s.service, zerolog.Nop()).Register(s.router)
}

// =============================================================================
// POST /api/v1/users
// =============================================================================

func (s *UsersHandlerSuite) TestRegisterCreated() {
	user := domain.User{ID: id.NewUserID(), DisplayName: "Ada Lovelace"}
	s.service.EXPECT().Register(gomock.Any(), "trace-7", "Ada Lovelace").
		Return(domain.UserCreated{TraceID: "trace-7", User: user}, nil)

	req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/api/v1/users", `{"displayName":"Ada Lovelace"}`)
	rr := testutil.DoRequest(s.router, testutil.WithTraceID(req, "trace-7"))

	testutil.AssertStatus(s.T(), rr, http.StatusCreated)
	got := testutil.UnmarshalResponse[models.User](s.T(), rr)
	s.Equal(user.ID.String(), got.ID)
	s.Equal("Ada Lovelace", got.DisplayName)
	s.Equal("trace-7", got.TraceID)
}

func (s *UsersHandlerSuite) TestRegisterRejected() {
	s.service.EXPECT().Register(gomock.Any(), gomock.Any(), "@da!").Return(domain.DisplayNameRejected{
		TraceID:       "trace-8",
		AttemptedName: "@da!",
		Code:          domain.DisplayNameInvalidChars,
		Message:       domain.DisplayNamePolicyMessage,
	}, nil)

	req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/api/v1/users", `{"displayName":"@da!"}`)
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeInvalidRequest))
	errResp := testutil.UnmarshalErrorResponse(s.T(), rr)
	s.Equal(domain.DisplayNamePolicyMessage, errResp.Message)
	s.Equal("displayName", errResp.Details["field"])
	s.Equal("@da!", errResp.Details["value"])
	s.Equal("invalid_chars", errResp.Details["code"])
}

func (s *UsersHandlerSuite) TestRegisterStorageUnavailable() {
	s.service.EXPECT().Register(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, dErrors.Wrap(errors.New("refused"), dErrors.CodeServiceUnavailable, "user repository unavailable"))

	req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/api/v1/users", `{"displayName":"Grace"}`)
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatusAndError(s.T(), rr, http.StatusServiceUnavailable, string(dErrors.CodeServiceUnavailable))
}

func (s *UsersHandlerSuite) TestRegisterRejectsUnknownFields() {
	req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/api/v1/users", `{"name":"Grace"}`)

	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeInvalidRequest))
}

// =============================================================================
// GET /api/v1/users/{userID}
// =============================================================================

func (s *UsersHandlerSuite) TestGetUser() {
	user := &domain.User{ID: id.NewUserID(), DisplayName: "Grace Hopper"}
	s.service.EXPECT().Find(gomock.Any(), user.ID).Return(user, nil)

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/api/v1/users/"+user.ID.String()))

	testutil.AssertStatusOK(s.T(), rr)
	got := testutil.UnmarshalResponse[models.User](s.T(), rr)
	s.Equal(user.ID.String(), got.ID)
	s.Empty(got.TraceID)
}

func (s *UsersHandlerSuite) TestGetUserNotFound() {
	userID := id.NewUserID()
	s.service.EXPECT().Find(gomock.Any(), userID).Return(nil, dErrors.New(dErrors.CodeNotFound, "user not found"))

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/api/v1/users/"+userID.String()))

	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, string(dErrors.CodeNotFound))
}

func (s *UsersHandlerSuite) TestGetUserBadID() {
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/api/v1/users/nope"))

	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeInvalidRequest))
}
