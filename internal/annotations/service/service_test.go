package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/leynos/wildside-sub003/internal/annotations/models"
	"github.com/leynos/wildside-sub003/internal/domain"
	"github.com/leynos/wildside-sub003/internal/domain/ports"
	"github.com/leynos/wildside-sub003/internal/domain/ports/mocks"
	id "github.com/leynos/wildside-sub003/pkg/domain"
	dErrors "github.com/leynos/wildside-sub003/pkg/domain-errors"
	"github.com/leynos/wildside-sub003/pkg/requestcontext"
)

type AnnotationServiceSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	repo        *mocks.MockRouteAnnotationRepository
	idempotency *mocks.MockIdempotencyRepository
	service     *Service
	ctx         context.Context
	now         time.Time
	routeID     id.RouteID
	userID      id.UserID
}

func TestAnnotationServiceSuite(t *testing.T) {
	suite.Run(t, new(AnnotationServiceSuite))
}

func (s *AnnotationServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.repo = mocks.NewMockRouteAnnotationRepository(s.ctrl)
	s.idempotency = mocks.NewMockIdempotencyRepository(s.ctrl)

	var err error
	s.service, err = New(s.repo, s.idempotency)
	s.Require().NoError(err)

	s.now = time.Date(2026, 6, 12, 14, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.routeID = id.RouteID(uuid.New())
	s.userID = id.NewUserID()
}

func (s *AnnotationServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func rev(n uint32) *uint32 { return &n }

func (s *AnnotationServiceSuite) existingNote(revision uint32) *domain.RouteNote {
	return &domain.RouteNote{
		ID:        id.NewNoteID(),
		RouteID:   s.routeID,
		UserID:    s.userID,
		Body:      "draft",
		CreatedAt: s.now.Add(-time.Hour),
		UpdatedAt: s.now.Add(-time.Hour),
		Revision:  revision,
	}
}

func (s *AnnotationServiceSuite) requireCode(err error, code dErrors.Code) *dErrors.Error {
	s.Require().Error(err)
	de, ok := dErrors.As(err)
	s.Require().True(ok, "expected domain error, got %v", err)
	s.Require().Equal(code, de.Code)
	return de
}

func (s *AnnotationServiceSuite) TestNew() {
	_, err := New(nil, s.idempotency)
	s.ErrorContains(err, "annotation repository is required")
	_, err = New(s.repo, nil)
	s.ErrorContains(err, "idempotency repository is required")
}

// =============================================================================
// FetchAnnotations
// =============================================================================

func (s *AnnotationServiceSuite) TestFetchJoinsNotesAndProgress() {
	note := s.existingNote(1)
	progress := &domain.RouteProgress{RouteID: s.routeID, UserID: s.userID, Revision: 2}
	gomock.InOrder(
		s.repo.EXPECT().FindNotesByRouteAndUser(gomock.Any(), s.routeID, s.userID).Return([]domain.RouteNote{*note}, nil),
		s.repo.EXPECT().FindProgress(gomock.Any(), s.routeID, s.userID).Return(progress, nil),
	)

	got, err := s.service.FetchAnnotations(s.ctx, s.routeID, s.userID)

	s.Require().NoError(err)
	s.Equal(s.routeID, got.RouteID)
	s.Equal([]domain.RouteNote{*note}, got.Notes)
	s.Equal(progress, got.Progress)
}

func (s *AnnotationServiceSuite) TestFetchWithoutProgress() {
	s.repo.EXPECT().FindNotesByRouteAndUser(gomock.Any(), s.routeID, s.userID).Return(nil, nil)
	s.repo.EXPECT().FindProgress(gomock.Any(), s.routeID, s.userID).Return(nil, nil)

	got, err := s.service.FetchAnnotations(s.ctx, s.routeID, s.userID)

	s.Require().NoError(err)
	s.NotNil(got.Notes)
	s.Empty(got.Notes)
	s.Nil(got.Progress)
}

func (s *AnnotationServiceSuite) TestFetchNotesFailureSkipsProgress() {
	s.repo.EXPECT().FindNotesByRouteAndUser(gomock.Any(), s.routeID, s.userID).
		Return(nil, ports.NewRouteAnnotationConnectionError(errors.New("pool exhausted")))

	got, err := s.service.FetchAnnotations(s.ctx, s.routeID, s.userID)

	s.Nil(got)
	de := s.requireCode(err, dErrors.CodeServiceUnavailable)
	s.Contains(de.Message, "pool exhausted")
}

func (s *AnnotationServiceSuite) TestFetchErrorMapping() {
	tests := []struct {
		name string
		err  error
		code dErrors.Code
	}{
		{"query", ports.NewRouteAnnotationQueryError(errors.New("syntax")), dErrors.CodeInternal},
		{"revision", ports.NewRevisionMismatchError(1, 2), dErrors.CodeConflict},
		{"route", ports.NewRouteNotFoundError(s.routeID), dErrors.CodeNotFound},
		{"connection", ports.NewRouteAnnotationConnectionError(errors.New("down")), dErrors.CodeServiceUnavailable},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.repo.EXPECT().FindNotesByRouteAndUser(gomock.Any(), s.routeID, s.userID).Return([]domain.RouteNote{}, nil)
			s.repo.EXPECT().FindProgress(gomock.Any(), s.routeID, s.userID).Return(nil, tt.err)

			got, err := s.service.FetchAnnotations(s.ctx, s.routeID, s.userID)

			s.Nil(got)
			s.requireCode(err, tt.code)
		})
	}
}

func (s *AnnotationServiceSuite) TestRouteNotFoundCarriesDetails() {
	s.repo.EXPECT().FindNotesByRouteAndUser(gomock.Any(), s.routeID, s.userID).
		Return(nil, ports.NewRouteNotFoundError(s.routeID))

	_, err := s.service.FetchAnnotations(s.ctx, s.routeID, s.userID)

	de := s.requireCode(err, dErrors.CodeNotFound)
	s.Equal("route not found", de.Message)
	s.Equal(s.routeID.String(), de.Details["routeId"])
	s.Equal("route_not_found", de.Details["code"])
}

// =============================================================================
// UpsertNote
// =============================================================================

func (s *AnnotationServiceSuite) TestCreateNote() {
	noteID := id.NewNoteID()
	s.repo.EXPECT().FindNoteByID(gomock.Any(), noteID).Return(nil, nil)
	s.repo.EXPECT().SaveNote(gomock.Any(), gomock.Any(), (*uint32)(nil)).DoAndReturn(
		func(_ context.Context, note domain.RouteNote, _ *uint32) error {
			s.Equal(uint32(1), note.Revision)
			s.Equal(s.now, note.CreatedAt)
			s.Equal(s.now, note.UpdatedAt)
			s.Equal(s.userID, note.UserID)
			return nil
		})

	resp, err := s.service.UpsertNote(s.ctx, UpsertNoteRequest{
		UserID: s.userID, RouteID: s.routeID, NoteID: noteID, Body: "Lovely bench",
	})

	s.Require().NoError(err)
	s.False(resp.Replayed)
	s.Equal(noteID, resp.Note.ID)
	s.Equal("Lovely bench", resp.Note.Body)
	s.Equal(uint32(1), resp.Note.Revision)
}

func (s *AnnotationServiceSuite) TestUpdateNoteBumpsRevision() {
	existing := s.existingNote(3)
	s.repo.EXPECT().FindNoteByID(gomock.Any(), existing.ID).Return(existing, nil)
	s.repo.EXPECT().SaveNote(gomock.Any(), gomock.Any(), rev(3)).DoAndReturn(
		func(_ context.Context, note domain.RouteNote, _ *uint32) error {
			s.Equal(uint32(4), note.Revision)
			s.Equal(existing.CreatedAt, note.CreatedAt)
			s.Equal(s.now, note.UpdatedAt)
			return nil
		})

	resp, err := s.service.UpsertNote(s.ctx, UpsertNoteRequest{
		UserID: s.userID, RouteID: s.routeID, NoteID: existing.ID, Body: "final", ExpectedRevision: rev(3),
	})

	s.Require().NoError(err)
	s.Equal("final", resp.Note.Body)
	s.Equal(uint32(4), resp.Note.Revision)
}

func (s *AnnotationServiceSuite) TestUpsertNoteRevisionConflicts() {
	tests := []struct {
		name     string
		existing *domain.RouteNote
		expected *uint32
		actual   uint32
	}{
		{"create over existing", s.existingNote(2), nil, 2},
		{"update missing", nil, rev(1), 0},
		{"stale update", s.existingNote(5), rev(4), 5},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			noteID := id.NewNoteID()
			if tt.existing != nil {
				noteID = tt.existing.ID
			}
			s.repo.EXPECT().FindNoteByID(gomock.Any(), noteID).Return(tt.existing, nil)

			_, err := s.service.UpsertNote(s.ctx, UpsertNoteRequest{
				UserID: s.userID, RouteID: s.routeID, NoteID: noteID, Body: "x", ExpectedRevision: tt.expected,
			})

			de := s.requireCode(err, dErrors.CodeConflict)
			s.Equal("revision_mismatch", de.Details["code"])
			s.Equal(tt.actual, de.Details["actualRevision"])
		})
	}
}

func (s *AnnotationServiceSuite) TestUpsertNoteOwnedByAnotherUser() {
	existing := s.existingNote(1)
	existing.UserID = id.NewUserID()
	s.repo.EXPECT().FindNoteByID(gomock.Any(), existing.ID).Return(existing, nil)

	_, err := s.service.UpsertNote(s.ctx, UpsertNoteRequest{
		UserID: s.userID, RouteID: s.routeID, NoteID: existing.ID, Body: "mine now", ExpectedRevision: rev(1),
	})

	s.requireCode(err, dErrors.CodeForbidden)
}

func (s *AnnotationServiceSuite) TestUpsertNoteOnAnotherRoute() {
	existing := s.existingNote(1)
	s.repo.EXPECT().FindNoteByID(gomock.Any(), existing.ID).Return(existing, nil)

	_, err := s.service.UpsertNote(s.ctx, UpsertNoteRequest{
		UserID: s.userID, RouteID: id.RouteID(uuid.New()), NoteID: existing.ID, Body: "moved", ExpectedRevision: rev(1),
	})

	de := s.requireCode(err, dErrors.CodeConflict)
	s.Equal("note does not belong to this route", de.Message)
}

func (s *AnnotationServiceSuite) TestUpsertNoteRejectsBlankBody() {
	_, err := s.service.UpsertNote(s.ctx, UpsertNoteRequest{
		UserID: s.userID, RouteID: s.routeID, NoteID: id.NewNoteID(), Body: "   ",
	})

	s.requireCode(err, dErrors.CodeInvalidRequest)
}

func (s *AnnotationServiceSuite) TestStoreRaceSurfacesAsConflict() {
	noteID := id.NewNoteID()
	s.repo.EXPECT().FindNoteByID(gomock.Any(), noteID).Return(nil, nil)
	s.repo.EXPECT().SaveNote(gomock.Any(), gomock.Any(), (*uint32)(nil)).Return(ports.NewRevisionMismatchError(0, 1))

	_, err := s.service.UpsertNote(s.ctx, UpsertNoteRequest{
		UserID: s.userID, RouteID: s.routeID, NoteID: noteID, Body: "late",
	})

	de := s.requireCode(err, dErrors.CodeConflict)
	s.Equal(uint32(1), de.Details["actualRevision"])
}

// =============================================================================
// Idempotent note mutations
// =============================================================================

func (s *AnnotationServiceSuite) TestIdempotentCreateStoresSnapshot() {
	key := domain.IdempotencyKey(uuid.New())
	noteID := id.NewNoteID()
	s.idempotency.EXPECT().Find(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, q domain.IdempotencyLookupQuery) (domain.IdempotencyLookupResult, error) {
			s.Equal(domain.MutationNotes, q.MutationType)
			s.Equal(s.userID, q.UserID)
			return domain.IdempotencyLookupResult{Outcome: domain.IdempotencyNotFound}, nil
		})
	s.repo.EXPECT().FindNoteByID(gomock.Any(), noteID).Return(nil, nil)
	s.repo.EXPECT().SaveNote(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	s.idempotency.EXPECT().Store(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, record domain.IdempotencyRecord) error {
			var stored NoteResponse
			s.Require().NoError(json.Unmarshal(record.ResponseSnapshot, &stored))
			s.Equal(noteID, stored.Note.ID)
			s.False(stored.Replayed)
			s.Equal(s.now, record.CreatedAt)
			return nil
		})

	resp, err := s.service.UpsertNote(s.ctx, UpsertNoteRequest{
		IdempotencyKey: &key, UserID: s.userID, RouteID: s.routeID, NoteID: noteID, Body: "hello",
	})

	s.Require().NoError(err)
	s.False(resp.Replayed)
}

func (s *AnnotationServiceSuite) TestIdempotentReplayDoesNotTouchRepository() {
	key := domain.IdempotencyKey(uuid.New())
	noteID := id.NewNoteID()
	snapshot, err := json.Marshal(NoteResponse{Note: models.Note{ID: noteID, RouteID: s.routeID, Body: "hello", Revision: 1}})
	s.Require().NoError(err)
	s.idempotency.EXPECT().Find(gomock.Any(), gomock.Any()).Return(domain.IdempotencyLookupResult{
		Outcome: domain.IdempotencyMatchingPayload,
		Record:  &domain.IdempotencyRecord{Key: key, ResponseSnapshot: snapshot},
	}, nil)

	resp, err := s.service.UpsertNote(s.ctx, UpsertNoteRequest{
		IdempotencyKey: &key, UserID: s.userID, RouteID: s.routeID, NoteID: noteID, Body: "hello",
	})

	s.Require().NoError(err)
	s.True(resp.Replayed)
	s.Equal(noteID, resp.Note.ID)
}

func (s *AnnotationServiceSuite) TestIdempotentConflictingPayload() {
	key := domain.IdempotencyKey(uuid.New())
	s.idempotency.EXPECT().Find(gomock.Any(), gomock.Any()).Return(domain.IdempotencyLookupResult{
		Outcome: domain.IdempotencyConflictingPayload,
		Record:  &domain.IdempotencyRecord{Key: key},
	}, nil)

	_, err := s.service.UpsertNote(s.ctx, UpsertNoteRequest{
		IdempotencyKey: &key, UserID: s.userID, RouteID: s.routeID, NoteID: id.NewNoteID(), Body: "other",
	})

	de := s.requireCode(err, dErrors.CodeConflict)
	s.Equal("idempotency key already used with different payload", de.Message)
}

func (s *AnnotationServiceSuite) TestIdempotentDuplicateKeyRace() {
	key := domain.IdempotencyKey(uuid.New())
	noteID := id.NewNoteID()
	snapshot, err := json.Marshal(NoteResponse{Note: models.Note{ID: noteID, Body: "hello", Revision: 1}})
	s.Require().NoError(err)

	gomock.InOrder(
		s.idempotency.EXPECT().Find(gomock.Any(), gomock.Any()).
			Return(domain.IdempotencyLookupResult{Outcome: domain.IdempotencyNotFound}, nil),
		s.idempotency.EXPECT().Store(gomock.Any(), gomock.Any()).
			Return(ports.NewDuplicateIdempotencyKeyError(key)),
		s.idempotency.EXPECT().Find(gomock.Any(), gomock.Any()).Return(domain.IdempotencyLookupResult{
			Outcome: domain.IdempotencyMatchingPayload,
			Record:  &domain.IdempotencyRecord{Key: key, ResponseSnapshot: snapshot},
		}, nil),
	)
	s.repo.EXPECT().FindNoteByID(gomock.Any(), noteID).Return(nil, nil)
	s.repo.EXPECT().SaveNote(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	resp, err := s.service.UpsertNote(s.ctx, UpsertNoteRequest{
		IdempotencyKey: &key, UserID: s.userID, RouteID: s.routeID, NoteID: noteID, Body: "hello",
	})

	s.Require().NoError(err)
	s.True(resp.Replayed)
}

func (s *AnnotationServiceSuite) TestIdempotentLookupUnavailable() {
	key := domain.IdempotencyKey(uuid.New())
	s.idempotency.EXPECT().Find(gomock.Any(), gomock.Any()).
		Return(domain.IdempotencyLookupResult{}, ports.NewIdempotencyConnectionError(errors.New("timeout")))

	_, err := s.service.UpsertNote(s.ctx, UpsertNoteRequest{
		IdempotencyKey: &key, UserID: s.userID, RouteID: s.routeID, NoteID: id.NewNoteID(), Body: "x",
	})

	de := s.requireCode(err, dErrors.CodeServiceUnavailable)
	s.Contains(de.Message, "idempotency repository unavailable")
}

// =============================================================================
// UpdateProgress
// =============================================================================

func (s *AnnotationServiceSuite) TestCreateProgressDedupesStops() {
	stop := uuid.New()
	s.repo.EXPECT().FindProgress(gomock.Any(), s.routeID, s.userID).Return(nil, nil)
	s.repo.EXPECT().SaveProgress(gomock.Any(), gomock.Any(), (*uint32)(nil)).DoAndReturn(
		func(_ context.Context, p domain.RouteProgress, _ *uint32) error {
			s.Equal([]uuid.UUID{stop}, p.VisitedStopIDs)
			s.Equal(uint32(1), p.Revision)
			return nil
		})

	resp, err := s.service.UpdateProgress(s.ctx, UpdateProgressRequest{
		UserID: s.userID, RouteID: s.routeID, VisitedStopIDs: []uuid.UUID{stop, stop},
	})

	s.Require().NoError(err)
	s.Equal(uint32(1), resp.Progress.Revision)
	s.Equal(s.now, resp.Progress.UpdatedAt)
}

func (s *AnnotationServiceSuite) TestUpdateProgressStale() {
	s.repo.EXPECT().FindProgress(gomock.Any(), s.routeID, s.userID).
		Return(&domain.RouteProgress{RouteID: s.routeID, UserID: s.userID, Revision: 7}, nil)

	_, err := s.service.UpdateProgress(s.ctx, UpdateProgressRequest{
		UserID: s.userID, RouteID: s.routeID, ExpectedRevision: rev(6),
	})

	de := s.requireCode(err, dErrors.CodeConflict)
	s.Equal(uint32(6), de.Details["expectedRevision"])
	s.Equal(uint32(7), de.Details["actualRevision"])
}

func (s *AnnotationServiceSuite) TestUpdateProgressUnknownRoute() {
	s.repo.EXPECT().FindProgress(gomock.Any(), s.routeID, s.userID).Return(nil, nil)
	s.repo.EXPECT().SaveProgress(gomock.Any(), gomock.Any(), gomock.Any()).Return(ports.NewRouteNotFoundError(s.routeID))

	_, err := s.service.UpdateProgress(s.ctx, UpdateProgressRequest{UserID: s.userID, RouteID: s.routeID})

	s.requireCode(err, dErrors.CodeNotFound)
}

func (s *AnnotationServiceSuite) TestUpdateProgressRejectsNilStop() {
	_, err := s.service.UpdateProgress(s.ctx, UpdateProgressRequest{
		UserID: s.userID, RouteID: s.routeID, VisitedStopIDs: []uuid.UUID{uuid.Nil},
	})

	s.requireCode(err, dErrors.CodeInvalidRequest)
}

// =============================================================================
// DeleteNote
// =============================================================================

func (s *AnnotationServiceSuite) TestDeleteNote() {
	note := s.existingNote(1)
	s.repo.EXPECT().FindNoteByID(gomock.Any(), note.ID).Return(note, nil)
	s.repo.EXPECT().DeleteNote(gomock.Any(), note.ID).Return(true, nil)

	deleted, err := s.service.DeleteNote(s.ctx, note.ID, s.userID)

	s.Require().NoError(err)
	s.True(deleted)
}

func (s *AnnotationServiceSuite) TestDeleteMissingNote() {
	noteID := id.NewNoteID()
	s.repo.EXPECT().FindNoteByID(gomock.Any(), noteID).Return(nil, nil)

	deleted, err := s.service.DeleteNote(s.ctx, noteID, s.userID)

	s.Require().NoError(err)
	s.False(deleted)
}

func (s *AnnotationServiceSuite) TestDeleteSomeoneElsesNote() {
	note := s.existingNote(1)
	note.UserID = id.NewUserID()
	s.repo.EXPECT().FindNoteByID(gomock.Any(), note.ID).Return(note, nil)

	_, err := s.service.DeleteNote(s.ctx, note.ID, s.userID)

	s.requireCode(err, dErrors.CodeForbidden)
}
