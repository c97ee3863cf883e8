// Package service reads and updates a user's notes and progress on a route.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/leynos/wildside-sub003/internal/annotations/models"
	"github.com/leynos/wildside-sub003/internal/domain"
	"github.com/leynos/wildside-sub003/internal/domain/ports"
	id "github.com/leynos/wildside-sub003/pkg/domain"
	dErrors "github.com/leynos/wildside-sub003/pkg/domain-errors"
	"github.com/leynos/wildside-sub003/pkg/requestcontext"
)

// Transactor runs fn as one unit of work.
type Transactor interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}

type directTransactor struct{}

func (directTransactor) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// UpsertNoteRequest creates a note (ExpectedRevision nil) or replaces the body
// of an existing one at ExpectedRevision.
type UpsertNoteRequest struct {
	IdempotencyKey   *domain.IdempotencyKey
	UserID           id.UserID
	RouteID          id.RouteID
	NoteID           id.NoteID
	POIID            *id.POIID
	Body             string
	ExpectedRevision *uint32
}

type NoteResponse struct {
	Note     models.Note `json:"note"`
	Replayed bool        `json:"replayed"`
}

// UpdateProgressRequest replaces the visited stop list.
type UpdateProgressRequest struct {
	IdempotencyKey   *domain.IdempotencyKey
	UserID           id.UserID
	RouteID          id.RouteID
	VisitedStopIDs   []uuid.UUID
	ExpectedRevision *uint32
}

type ProgressResponse struct {
	Progress models.Progress `json:"progress"`
	Replayed bool            `json:"replayed"`
}

// Service implements annotation queries and commands.
type Service struct {
	repo        ports.RouteAnnotationRepository
	idempotency ports.IdempotencyRepository
	tx          Transactor
	logger      zerolog.Logger
}

type Option func(*Service)

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithTransactor makes a mutation and its idempotency record one unit.
func WithTransactor(tx Transactor) Option {
	return func(s *Service) {
		if tx != nil {
			s.tx = tx
		}
	}
}

func New(repo ports.RouteAnnotationRepository, idempotency ports.IdempotencyRepository, opts ...Option) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("annotation repository is required")
	}
	if idempotency == nil {
		return nil, fmt.Errorf("idempotency repository is required")
	}
	svc := &Service{
		repo:        repo,
		idempotency: idempotency,
		tx:          directTransactor{},
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// FetchAnnotations reads the user's notes, then their progress. Either failure
// fails the call; no partial result is returned.
func (s *Service) FetchAnnotations(ctx context.Context, routeID id.RouteID, userID id.UserID) (*domain.RouteAnnotations, error) {
	notes, err := s.repo.FindNotesByRouteAndUser(ctx, routeID, userID)
	if err != nil {
		return nil, mapAnnotationError(err)
	}
	progress, err := s.repo.FindProgress(ctx, routeID, userID)
	if err != nil {
		return nil, mapAnnotationError(err)
	}
	if notes == nil {
		notes = []domain.RouteNote{}
	}
	return &domain.RouteAnnotations{RouteID: routeID, Notes: notes, Progress: progress}, nil
}

// UpsertNote creates or revises a note owned by the caller.
func (s *Service) UpsertNote(ctx context.Context, req UpsertNoteRequest) (*NoteResponse, error) {
	if strings.TrimSpace(req.Body) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidRequest, "note body must not be empty")
	}
	payload := struct {
		RouteID          id.RouteID `json:"routeId"`
		NoteID           id.NoteID  `json:"noteId"`
		POIID            *id.POIID  `json:"poiId"`
		Body             string     `json:"body"`
		ExpectedRevision *uint32    `json:"expectedRevision"`
	}{req.RouteID, req.NoteID, req.POIID, req.Body, req.ExpectedRevision}

	scope := idempotencyScope{key: req.IdempotencyKey, userID: req.UserID, mutation: domain.MutationNotes, payload: payload}
	return runIdempotent(ctx, s, scope,
		func(ctx context.Context) (*NoteResponse, error) {
			note, err := s.upsertNote(ctx, req)
			if err != nil {
				return nil, err
			}
			return &NoteResponse{Note: models.NoteFromDomain(*note)}, nil
		},
		func(r *NoteResponse) { r.Replayed = true },
	)
}

func (s *Service) upsertNote(ctx context.Context, req UpsertNoteRequest) (*domain.RouteNote, error) {
	existing, err := s.repo.FindNoteByID(ctx, req.NoteID)
	if err != nil {
		return nil, mapAnnotationError(err)
	}
	if existing != nil {
		if existing.UserID != req.UserID {
			return nil, dErrors.New(dErrors.CodeForbidden, "not authorised to update this note")
		}
		if existing.RouteID != req.RouteID {
			return nil, dErrors.New(dErrors.CodeConflict, "note does not belong to this route")
		}
	}

	now := requestcontext.Now(ctx).UTC()
	var note domain.RouteNote
	switch {
	case existing == nil && req.ExpectedRevision == nil:
		note = domain.RouteNote{
			ID:        req.NoteID,
			RouteID:   req.RouteID,
			POIID:     req.POIID,
			UserID:    req.UserID,
			Body:      req.Body,
			CreatedAt: now,
			UpdatedAt: now,
			Revision:  1,
		}
	case existing == nil:
		return nil, revisionConflict(req.ExpectedRevision, 0)
	case req.ExpectedRevision == nil || existing.Revision != *req.ExpectedRevision:
		return nil, revisionConflict(req.ExpectedRevision, existing.Revision)
	default:
		note = *existing
		note.Body = req.Body
		if req.POIID != nil {
			note.POIID = req.POIID
		}
		note.UpdatedAt = now
		note.Revision = *req.ExpectedRevision + 1
	}

	if err := s.repo.SaveNote(ctx, note, req.ExpectedRevision); err != nil {
		return nil, mapAnnotationError(err)
	}
	s.logger.Info().
		Str("note_id", note.ID.String()).
		Str("route_id", note.RouteID.String()).
		Uint32("revision", note.Revision).
		Msg("route note saved")
	return &note, nil
}

// UpdateProgress replaces the caller's visited stops on a route.
func (s *Service) UpdateProgress(ctx context.Context, req UpdateProgressRequest) (*ProgressResponse, error) {
	for _, stop := range req.VisitedStopIDs {
		if stop == uuid.Nil {
			return nil, dErrors.New(dErrors.CodeInvalidRequest, "visited stop ids must not be nil")
		}
	}
	stops := dedupe(req.VisitedStopIDs)
	payload := struct {
		RouteID          id.RouteID  `json:"routeId"`
		VisitedStopIDs   []uuid.UUID `json:"visitedStopIds"`
		ExpectedRevision *uint32     `json:"expectedRevision"`
	}{req.RouteID, stops, req.ExpectedRevision}

	scope := idempotencyScope{key: req.IdempotencyKey, userID: req.UserID, mutation: domain.MutationProgress, payload: payload}
	return runIdempotent(ctx, s, scope,
		func(ctx context.Context) (*ProgressResponse, error) {
			progress, err := s.updateProgress(ctx, req, stops)
			if err != nil {
				return nil, err
			}
			return &ProgressResponse{Progress: models.ProgressFromDomain(*progress)}, nil
		},
		func(r *ProgressResponse) { r.Replayed = true },
	)
}

func (s *Service) updateProgress(ctx context.Context, req UpdateProgressRequest, stops []uuid.UUID) (*domain.RouteProgress, error) {
	existing, err := s.repo.FindProgress(ctx, req.RouteID, req.UserID)
	if err != nil {
		return nil, mapAnnotationError(err)
	}

	progress := domain.RouteProgress{
		RouteID:        req.RouteID,
		UserID:         req.UserID,
		VisitedStopIDs: stops,
		UpdatedAt:      requestcontext.Now(ctx).UTC(),
	}
	switch {
	case existing == nil && req.ExpectedRevision == nil:
		progress.Revision = 1
	case existing == nil:
		return nil, revisionConflict(req.ExpectedRevision, 0)
	case req.ExpectedRevision == nil || existing.Revision != *req.ExpectedRevision:
		return nil, revisionConflict(req.ExpectedRevision, existing.Revision)
	default:
		progress.Revision = *req.ExpectedRevision + 1
	}

	if err := s.repo.SaveProgress(ctx, progress, req.ExpectedRevision); err != nil {
		return nil, mapAnnotationError(err)
	}
	return &progress, nil
}

// DeleteNote removes a note owned by userID. A note that does not exist
// reports false.
func (s *Service) DeleteNote(ctx context.Context, noteID id.NoteID, userID id.UserID) (bool, error) {
	note, err := s.repo.FindNoteByID(ctx, noteID)
	if err != nil {
		return false, mapAnnotationError(err)
	}
	if note == nil {
		return false, nil
	}
	if note.UserID != userID {
		return false, dErrors.New(dErrors.CodeForbidden, "not authorised to delete this note")
	}
	deleted, err := s.repo.DeleteNote(ctx, noteID)
	if err != nil {
		return false, mapAnnotationError(err)
	}
	return deleted, nil
}

type idempotencyScope struct {
	key      *domain.IdempotencyKey
	userID   id.UserID
	mutation domain.MutationType
	payload  any
}

// runIdempotent runs op once per idempotency key. Without a key op always
// runs. A repeat with the same payload replays the stored response; a
// different payload under the same key is a conflict.
func runIdempotent[T any](ctx context.Context, s *Service, scope idempotencyScope, op func(context.Context) (*T, error), markReplayed func(*T)) (*T, error) {
	if scope.key == nil {
		return op(ctx)
	}

	raw, err := json.Marshal(scope.payload)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode request payload")
	}
	hash, err := domain.CanonicalizeAndHash(raw)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash request payload")
	}
	query := domain.IdempotencyLookupQuery{
		Key:          *scope.key,
		UserID:       scope.userID,
		MutationType: scope.mutation,
		PayloadHash:  hash,
	}

	result, err := s.idempotency.Find(ctx, query)
	if err != nil {
		return nil, mapIdempotencyError(err)
	}
	switch result.Outcome {
	case domain.IdempotencyMatchingPayload:
		return replay(result.Record, markReplayed)
	case domain.IdempotencyConflictingPayload:
		return nil, dErrors.New(dErrors.CodeConflict, "idempotency key already used with different payload")
	}

	var resp *T
	err = s.tx.Run(ctx, func(ctx context.Context) error {
		out, err := op(ctx)
		if err != nil {
			return err
		}
		snapshot, err := json.Marshal(out)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to serialize response")
		}
		if err := s.idempotency.Store(ctx, domain.IdempotencyRecord{
			Key:              query.Key,
			MutationType:     query.MutationType,
			PayloadHash:      hash,
			ResponseSnapshot: snapshot,
			UserID:           query.UserID,
			CreatedAt:        requestcontext.Now(ctx).UTC(),
		}); err != nil {
			return err
		}
		resp = out
		return nil
	})
	if err == nil {
		return resp, nil
	}

	var idemErr *ports.IdempotencyRepositoryError
	if errors.As(err, &idemErr) {
		if idemErr.Kind == ports.IdempotencyDuplicateKey {
			return resolveRace(ctx, s, query, markReplayed)
		}
		return nil, mapIdempotencyError(err)
	}
	if _, ok := dErrors.As(err); ok {
		return nil, err
	}
	return nil, dErrors.Wrap(err, dErrors.CodeInternal, "annotation update failed")
}

func resolveRace[T any](ctx context.Context, s *Service, query domain.IdempotencyLookupQuery, markReplayed func(*T)) (*T, error) {
	result, err := s.idempotency.Find(ctx, query)
	if err != nil {
		return nil, mapIdempotencyError(err)
	}
	switch result.Outcome {
	case domain.IdempotencyMatchingPayload:
		return replay(result.Record, markReplayed)
	case domain.IdempotencyConflictingPayload:
		return nil, dErrors.New(dErrors.CodeConflict, "idempotency key already used with different payload")
	default:
		return nil, dErrors.New(dErrors.CodeInternal, "idempotency record disappeared during race resolution")
	}
}

func replay[T any](record *domain.IdempotencyRecord, markReplayed func(*T)) (*T, error) {
	if record == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "idempotency record missing from lookup result")
	}
	var stored T
	if err := json.Unmarshal(record.ResponseSnapshot, &stored); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to deserialize response")
	}
	markReplayed(&stored)
	return &stored, nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, v := range ids {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
