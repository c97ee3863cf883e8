package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/leynos/wildside-sub003/internal/annotations/handler/mocks"
	"github.com/leynos/wildside-sub003/internal/annotations/models"
	"github.com/leynos/wildside-sub003/internal/annotations/service"
	"github.com/leynos/wildside-sub003/internal/domain"
	"github.com/leynos/wildside-sub003/internal/platform/idempotency"
	id "github.com/leynos/wildside-sub003/pkg/domain"
	dErrors "github.com/leynos/wildside-sub003/pkg/domain-errors"
	"github.com/leynos/wildside-sub003/pkg/testutil"
)

type AnnotationsHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
	userID  id.UserID
	routeID id.RouteID
	now     time.Time
}

func TestAnnotationsHandlerSuite(t *testing.T) {
	suite.Run(t, new(AnnotationsHandlerSuite))
}

func (s *AnnotationsHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	s.router = chi.NewRouter()
	New(s.service, zerolog.Nop()).Register(s.router)
	s.userID = id.NewUserID()
	s.routeID = id.RouteID(uuid.New())
	s.now = time.Date(2026, 6, 12, 14, 0, 0, 0, time.UTC)
}

func (s *AnnotationsHandlerSuite) path(suffix string) string {
	return "/api/v1/routes/" + s.routeID.String() + suffix
}

func (s *AnnotationsHandlerSuite) as(req *http.Request) *http.Request {
	return testutil.WithUserID(req, s.userID.String())
}

// =============================================================================
// GET annotations
// =============================================================================

func (s *AnnotationsHandlerSuite) TestFetchAnnotations() {
	note := domain.RouteNote{ID: id.NewNoteID(), RouteID: s.routeID, UserID: s.userID, Body: "nice", Revision: 1}
	s.service.EXPECT().FetchAnnotations(gomock.Any(), s.routeID, s.userID).Return(&domain.RouteAnnotations{
		RouteID: s.routeID,
		Notes:   []domain.RouteNote{note},
	}, nil)

	rr := testutil.DoRequest(s.router, s.as(testutil.NewRequest(s.T(), http.MethodGet, s.path("/annotations"))))

	testutil.AssertStatusOK(s.T(), rr)
	got := testutil.UnmarshalResponse[models.Annotations](s.T(), rr)
	s.Equal(s.routeID, got.RouteID)
	s.Require().Len(got.Notes, 1)
	s.Equal(note.ID, got.Notes[0].ID)
	s.Nil(got.Progress)
}

func (s *AnnotationsHandlerSuite) TestFetchRequiresUser() {
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, s.path("/annotations")))

	testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, string(dErrors.CodeUnauthorized))
}

func (s *AnnotationsHandlerSuite) TestFetchRejectsBadRouteID() {
	req := testutil.NewRequest(s.T(), http.MethodGet, "/api/v1/routes/not-a-uuid/annotations")

	rr := testutil.DoRequest(s.router, s.as(req))

	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeInvalidRequest))
}

func (s *AnnotationsHandlerSuite) TestFetchServiceUnavailable() {
	s.service.EXPECT().FetchAnnotations(gomock.Any(), s.routeID, s.userID).
		Return(nil, dErrors.New(dErrors.CodeServiceUnavailable, "annotation repository unavailable: down"))

	rr := testutil.DoRequest(s.router, s.as(testutil.NewRequest(s.T(), http.MethodGet, s.path("/annotations"))))

	testutil.AssertStatusAndError(s.T(), rr, http.StatusServiceUnavailable, string(dErrors.CodeServiceUnavailable))
}

// =============================================================================
// PUT note
// =============================================================================

func (s *AnnotationsHandlerSuite) TestUpsertNote() {
	noteID := id.NewNoteID()
	key := uuid.New()
	s.service.EXPECT().UpsertNote(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req service.UpsertNoteRequest) (*service.NoteResponse, error) {
			s.Equal(noteID, req.NoteID)
			s.Equal(s.routeID, req.RouteID)
			s.Equal(s.userID, req.UserID)
			s.Equal("hello", req.Body)
			s.Require().NotNil(req.ExpectedRevision)
			s.Equal(uint32(2), *req.ExpectedRevision)
			s.Require().NotNil(req.IdempotencyKey)
			s.Equal(key.String(), req.IdempotencyKey.String())
			return &service.NoteResponse{Note: models.Note{ID: noteID, RouteID: s.routeID, Body: "hello", Revision: 3}}, nil
		})

	req := testutil.NewRequestWithBody(s.T(), http.MethodPut, s.path("/notes/"+noteID.String()),
		`{"body":"hello","expectedRevision":2}`)
	req.Header.Set(idempotency.Header, key.String())
	rr := testutil.DoRequest(s.router, s.as(req))

	testutil.AssertStatusOK(s.T(), rr)
	got := testutil.UnmarshalResponse[service.NoteResponse](s.T(), rr)
	s.Equal(uint32(3), got.Note.Revision)
	s.False(got.Replayed)
}

func (s *AnnotationsHandlerSuite) TestUpsertNoteConflict() {
	noteID := id.NewNoteID()
	s.service.EXPECT().UpsertNote(gomock.Any(), gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeConflict, "revision mismatch").WithDetails(map[string]any{"code": "revision_mismatch"}))

	req := testutil.NewRequestWithBody(s.T(), http.MethodPut, s.path("/notes/"+noteID.String()), `{"body":"x"}`)
	rr := testutil.DoRequest(s.router, s.as(req))

	testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, string(dErrors.CodeConflict))
	errResp := testutil.UnmarshalErrorResponse(s.T(), rr)
	s.Equal("revision_mismatch", errResp.Details["code"])
}

func (s *AnnotationsHandlerSuite) TestUpsertNoteRejectsUnknownFields() {
	req := testutil.NewRequestWithBody(s.T(), http.MethodPut, s.path("/notes/"+id.NewNoteID().String()), `{"text":"x"}`)

	rr := testutil.DoRequest(s.router, s.as(req))

	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeInvalidRequest))
}

func (s *AnnotationsHandlerSuite) TestUpsertNoteRejectsBadKey() {
	req := testutil.NewRequestWithBody(s.T(), http.MethodPut, s.path("/notes/"+id.NewNoteID().String()), `{"body":"x"}`)
	req.Header.Set(idempotency.Header, "nope")

	rr := testutil.DoRequest(s.router, s.as(req))

	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeInvalidRequest))
}

// =============================================================================
// DELETE note
// =============================================================================

func (s *AnnotationsHandlerSuite) TestDeleteNote() {
	noteID := id.NewNoteID()
	s.service.EXPECT().DeleteNote(gomock.Any(), noteID, s.userID).Return(true, nil)

	req := testutil.NewRequest(s.T(), http.MethodDelete, s.path("/notes/"+noteID.String()))
	rr := testutil.DoRequest(s.router, s.as(req))

	testutil.AssertStatus(s.T(), rr, http.StatusNoContent)
}

func (s *AnnotationsHandlerSuite) TestDeleteMissingNote() {
	noteID := id.NewNoteID()
	s.service.EXPECT().DeleteNote(gomock.Any(), noteID, s.userID).Return(false, nil)

	req := testutil.NewRequest(s.T(), http.MethodDelete, s.path("/notes/"+noteID.String()))
	rr := testutil.DoRequest(s.router, s.as(req))

	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, string(dErrors.CodeNotFound))
}

func (s *AnnotationsHandlerSuite) TestDeleteForbidden() {
	noteID := id.NewNoteID()
	s.service.EXPECT().DeleteNote(gomock.Any(), noteID, s.userID).
		Return(false, dErrors.New(dErrors.CodeForbidden, "not authorised to delete this note"))

	req := testutil.NewRequest(s.T(), http.MethodDelete, s.path("/notes/"+noteID.String()))
	rr := testutil.DoRequest(s.router, s.as(req))

	testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, string(dErrors.CodeForbidden))
}

// =============================================================================
// PUT progress
// =============================================================================

func (s *AnnotationsHandlerSuite) TestUpdateProgress() {
	stop := uuid.New()
	s.service.EXPECT().UpdateProgress(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req service.UpdateProgressRequest) (*service.ProgressResponse, error) {
			s.Equal([]uuid.UUID{stop}, req.VisitedStopIDs)
			s.Nil(req.ExpectedRevision)
			s.Nil(req.IdempotencyKey)
			return &service.ProgressResponse{Progress: models.Progress{
				RouteID: s.routeID, VisitedStopIDs: []uuid.UUID{stop}, UpdatedAt: s.now, Revision: 1,
			}}, nil
		})

	req := testutil.NewRequestWithBody(s.T(), http.MethodPut, s.path("/progress"),
		`{"visitedStopIds":["`+stop.String()+`"]}`)
	rr := testutil.DoRequest(s.router, s.as(req))

	testutil.AssertStatusOK(s.T(), rr)
	got := testutil.UnmarshalResponse[service.ProgressResponse](s.T(), rr)
	s.Equal([]uuid.UUID{stop}, got.Progress.VisitedStopIDs)
	s.True(s.now.Equal(got.Progress.UpdatedAt))
}
