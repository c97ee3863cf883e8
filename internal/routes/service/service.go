package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/leynos/wildside-sub003/internal/domain"
	"github.com/leynos/wildside-sub003/internal/domain/ports"
	"github.com/leynos/wildside-sub003/internal/routes/metrics"
	"github.com/leynos/wildside-sub003/internal/routes/models"
	id "github.com/leynos/wildside-sub003/pkg/domain"
	dErrors "github.com/leynos/wildside-sub003/pkg/domain-errors"
	"github.com/leynos/wildside-sub003/pkg/requestcontext"
)

// Type aliases for the ports this service drives.
type (
	Queue       = ports.RouteQueue[models.Plan]
	Repository  = ports.RouteRepository[models.Plan]
	Idempotency = ports.IdempotencyRepository
)

// Transactor runs fn as one unit of work.
type Transactor interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}

type directTransactor struct{}

func (directTransactor) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// SubmissionStatus says whether a submission was new or replayed.
type SubmissionStatus string

const (
	StatusAccepted SubmissionStatus = "accepted"
	StatusReplayed SubmissionStatus = "replayed"
)

// SubmissionRequest is a raw route request from a user. IdempotencyKey is
// optional; without it every call queues a new plan.
type SubmissionRequest struct {
	IdempotencyKey *domain.IdempotencyKey
	UserID         id.UserID
	Payload        json.RawMessage
}

// SubmissionResponse is returned to the client and stored for replays.
type SubmissionResponse struct {
	RequestID uuid.UUID        `json:"requestId"`
	Status    SubmissionStatus `json:"status"`
}

// Service accepts route requests and serves enriched plans.
type Service struct {
	queue       Queue
	repo        Repository
	idempotency Idempotency
	tx          Transactor
	logger      zerolog.Logger
	metrics     *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithTransactor makes storing the idempotency record and enqueueing the plan
// one unit: a failed enqueue rolls the record back.
func WithTransactor(tx Transactor) Option {
	return func(s *Service) {
		if tx != nil {
			s.tx = tx
		}
	}
}

func New(queue Queue, repo Repository, idempotency Idempotency, opts ...Option) (*Service, error) {
	if queue == nil {
		return nil, fmt.Errorf("route queue is required")
	}
	if repo == nil {
		return nil, fmt.Errorf("route repository is required")
	}
	if idempotency == nil {
		return nil, fmt.Errorf("idempotency repository is required")
	}
	svc := &Service{
		queue:       queue,
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

// Submit validates the payload and queues a pending plan. With an idempotency
// key, a repeat of the same payload replays the first response and a different
// payload under the same key is a conflict.
func (s *Service) Submit(ctx context.Context, req SubmissionRequest) (*SubmissionResponse, error) {
	routeReq, err := parseRouteRequest(req.Payload)
	if err != nil {
		s.metrics.IncrementSubmission("invalid")
		return nil, err
	}

	if req.IdempotencyKey == nil {
		requestID := uuid.New()
		if err := s.enqueue(ctx, requestID, req.UserID, routeReq); err != nil {
			s.metrics.IncrementSubmission("failed")
			return nil, err
		}
		s.metrics.IncrementSubmission("accepted")
		return &SubmissionResponse{RequestID: requestID, Status: StatusAccepted}, nil
	}

	resp, err := s.submitIdempotent(ctx, *req.IdempotencyKey, req, routeReq)
	switch {
	case err == nil:
		s.metrics.IncrementSubmission(string(resp.Status))
	case dErrors.HasCode(err, dErrors.CodeConflict):
		s.metrics.IncrementSubmission("conflict")
	default:
		s.metrics.IncrementSubmission("failed")
	}
	return resp, err
}

func (s *Service) submitIdempotent(ctx context.Context, key domain.IdempotencyKey, req SubmissionRequest, routeReq models.RouteRequest) (*SubmissionResponse, error) {
	hash, err := domain.CanonicalizeAndHash(req.Payload)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidRequest, "payload must be a JSON document")
	}
	query := domain.IdempotencyLookupQuery{
		Key:          key,
		UserID:       req.UserID,
		MutationType: domain.MutationRoutes,
		PayloadHash:  hash,
	}

	result, err := s.idempotency.Find(ctx, query)
	if err != nil {
		return nil, mapIdempotencyError(err)
	}
	switch result.Outcome {
	case domain.IdempotencyMatchingPayload:
		return replay(result.Record)
	case domain.IdempotencyConflictingPayload:
		return nil, dErrors.New(dErrors.CodeConflict, "idempotency key already used with different payload")
	}

	requestID := uuid.New()
	resp := &SubmissionResponse{RequestID: requestID, Status: StatusAccepted}
	snapshot, err := json.Marshal(resp)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to serialise response")
	}
	record := domain.IdempotencyRecord{
		Key:              key,
		MutationType:     domain.MutationRoutes,
		PayloadHash:      hash,
		ResponseSnapshot: snapshot,
		UserID:           req.UserID,
		CreatedAt:        requestcontext.Now(ctx).UTC(),
	}

	err = s.tx.Run(ctx, func(ctx context.Context) error {
		if err := s.idempotency.Store(ctx, record); err != nil {
			return err
		}
		return s.enqueue(ctx, requestID, req.UserID, routeReq)
	})
	if err == nil {
		return resp, nil
	}

	var idemErr *ports.IdempotencyRepositoryError
	if errors.As(err, &idemErr) && idemErr.Kind == ports.IdempotencyDuplicateKey {
		return s.resolveRace(ctx, query)
	}
	if _, ok := dErrors.As(err); ok {
		return nil, err
	}
	return nil, mapIdempotencyError(err)
}

// resolveRace re-reads a key another request stored between our lookup and insert.
func (s *Service) resolveRace(ctx context.Context, query domain.IdempotencyLookupQuery) (*SubmissionResponse, error) {
	result, err := s.idempotency.Find(ctx, query)
	if err != nil {
		return nil, mapIdempotencyError(err)
	}
	switch result.Outcome {
	case domain.IdempotencyMatchingPayload:
		return replay(result.Record)
	case domain.IdempotencyConflictingPayload:
		return nil, dErrors.New(dErrors.CodeConflict, "idempotency key already used with different payload")
	default:
		return nil, dErrors.New(dErrors.CodeInternal, "idempotency record disappeared during race resolution")
	}
}

func (s *Service) enqueue(ctx context.Context, requestID uuid.UUID, userID id.UserID, req models.RouteRequest) error {
	plan := models.NewPlan(requestID, userID, req, requestcontext.Now(ctx).UTC())
	if err := s.queue.Enqueue(ctx, plan); err != nil {
		s.logger.Error().Err(err).Str("request_id", requestID.String()).Msg("failed to enqueue route plan")
		return mapQueueError(err)
	}
	s.logger.Info().Str("request_id", requestID.String()).Msg("route plan queued")
	return nil
}

// GetPlan returns an enriched plan owned by userID. Plans still waiting for
// enrichment, and plans of other users, are not found.
func (s *Service) GetPlan(ctx context.Context, requestID uuid.UUID, userID id.UserID) (*models.Plan, error) {
	plan, found, err := s.repo.FindByRequestID(ctx, requestID)
	if err != nil {
		return nil, mapPersistenceError(err)
	}
	if !found || plan.UserID != userID {
		return nil, dErrors.New(dErrors.CodeNotFound, "route plan not found")
	}
	return &plan, nil
}

// PurgeExpired removes idempotency records older than ttl.
func (s *Service) PurgeExpired(ctx context.Context, now time.Time, ttl time.Duration) (int64, error) {
	n, err := s.idempotency.PurgeExpired(ctx, now.Add(-ttl))
	if err != nil {
		return 0, mapIdempotencyError(err)
	}
	return n, nil
}

func parseRouteRequest(payload json.RawMessage) (models.RouteRequest, error) {
	var req models.RouteRequest
	if len(payload) == 0 {
		return req, dErrors.New(dErrors.CodeInvalidRequest, "request body is required")
	}
	if err := json.Unmarshal(payload, &req); err != nil {
		return req, dErrors.Wrap(err, dErrors.CodeInvalidRequest, "invalid route request")
	}
	if err := req.Validate(); err != nil {
		return req, err
	}
	return req, nil
}

func replay(record *domain.IdempotencyRecord) (*SubmissionResponse, error) {
	if record == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "idempotency record missing from lookup result")
	}
	var stored SubmissionResponse
	if err := json.Unmarshal(record.ResponseSnapshot, &stored); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to deserialise stored response")
	}
	return &SubmissionResponse{RequestID: stored.RequestID, Status: StatusReplayed}, nil
}
