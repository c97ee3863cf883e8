// Package enrichment runs the Overpass enrichment worker: it looks up a cached
// plan, otherwise fetches points of interest from the Overpass source under a
// quota and a circuit breaker, merges them into the plan, persists the result
// with its provenance and refreshes the cache.
package enrichment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/leynos/wildside-sub003/internal/domain/ports"
	"github.com/leynos/wildside-sub003/internal/enrichment/metrics"
	"github.com/leynos/wildside-sub003/pkg/platform/circuit"
)

const tracerName = "github.com/leynos/wildside-sub003/internal/enrichment"

// Job is one plan awaiting enrichment. A zero Key skips the cache.
type Job[P ports.Plan] struct {
	RequestID uuid.UUID
	Key       ports.RouteCacheKey
	Query     ports.OverpassQuery
	Plan      P
}

// Outcome is a finished job. Duplicate means the plan had already been saved
// by an earlier delivery of the same job.
type Outcome[P ports.Plan] struct {
	Plan      P
	FromCache bool
	Duplicate bool
}

// StateChange reports a breaker transition.
type StateChange struct {
	Breaker string
	From    circuit.State
	To      circuit.State
	At      time.Time
}

// Merger folds enrichment into a job's plan. Merge applies a fresh fetch;
// Adopt copies the enrichment of a cached plan built for another request
// while keeping the job plan's identity.
type Merger[P ports.Plan] interface {
	Merge(plan P, result ports.EnrichmentResult) P
	Adopt(plan P, cached P) P
}

// Worker processes enrichment jobs. It is safe for concurrent use.
type Worker[P ports.Plan] struct {
	source       ports.OverpassEnrichmentSource
	repo         ports.RouteRepository[P]
	cache        ports.RouteCache[P]
	provenance   ports.EnrichmentProvenanceRepository
	routeMetrics ports.RouteMetrics
	merger       Merger[P]
	cfg          Config
	policy       *policy

	logger   zerolog.Logger
	clock    func() time.Time
	newTimer func() backoff.Timer
	observer func(StateChange)
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

// Option configures a Worker.
type Option func(*options)

type options struct {
	logger   zerolog.Logger
	clock    func() time.Time
	newTimer func() backoff.Timer
	observer func(StateChange)
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

// WithLogger sets the worker logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithClock injects the clock used by the quota window and the breaker.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithTimer injects the backoff timer. The factory is called once per job
// because backoff timers are stateful.
func WithTimer(newTimer func() backoff.Timer) Option {
	return func(o *options) { o.newTimer = newTimer }
}

// WithStateObserver is called after every breaker transition, outside the
// policy lock.
func WithStateObserver(fn func(StateChange)) Option {
	return func(o *options) { o.observer = fn }
}

// WithMetrics sets the prometheus collectors. Nil disables them.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithTracer sets the tracer used for per-attempt spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) {
		if tracer != nil {
			o.tracer = tracer
		}
	}
}

// New builds a worker.
func New[P ports.Plan](
	source ports.OverpassEnrichmentSource,
	repo ports.RouteRepository[P],
	cache ports.RouteCache[P],
	provenance ports.EnrichmentProvenanceRepository,
	routeMetrics ports.RouteMetrics,
	merger Merger[P],
	cfg Config,
	opts ...Option,
) (*Worker[P], error) {
	if source == nil {
		return nil, errors.New("enrichment source is required")
	}
	if repo == nil {
		return nil, errors.New("route repository is required")
	}
	if cache == nil {
		return nil, errors.New("route cache is required")
	}
	if provenance == nil {
		return nil, errors.New("enrichment provenance repository is required")
	}
	if routeMetrics == nil {
		return nil, errors.New("route metrics are required")
	}
	if merger == nil {
		return nil, errors.New("plan merger is required")
	}
	if err := cfg.Check(); err != nil {
		return nil, fmt.Errorf("invalid enrichment config: %w", err)
	}

	o := options{
		logger: zerolog.Nop(),
		clock:  time.Now,
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(&o)
	}

	w := &Worker[P]{
		source:       source,
		repo:         repo,
		cache:        cache,
		provenance:   provenance,
		routeMetrics: routeMetrics,
		merger:       merger,
		cfg:          cfg,
		policy:       newPolicy(cfg),
		logger:       o.logger.With().Str("component", "enrichment_worker").Logger(),
		clock:        o.clock,
		newTimer:     o.newTimer,
		observer:     o.observer,
		metrics:      o.metrics,
		tracer:       o.tracer,
	}
	w.metrics.SetCircuitState(w.policy.state.breaker.Name(), int(circuit.StateClosed))
	return w, nil
}

// Close stops admitting attempts. Jobs processed afterwards fail with
// KindStateUnavailable; attempts already admitted run to completion.
func (w *Worker[P]) Close() {
	w.policy.close()
}

// Process enriches one job. A cache hit is adopted into the job's own plan
// and persisted like a fetched one.
func (w *Worker[P]) Process(ctx context.Context, job Job[P]) (Outcome[P], error) {
	log := w.logger.With().
		Str("request_id", job.RequestID.String()).
		Str("cache_key", job.Key.String()).
		Logger()

	if cached, ok := w.lookup(ctx, log, job.Key); ok {
		plan := cached
		if cached.RequestID() != job.RequestID {
			plan = w.merger.Adopt(job.Plan, cached)
		}
		duplicate, err := w.persist(ctx, job.RequestID, plan)
		if err != nil {
			w.metrics.IncrementJob("failed")
			return Outcome[P]{}, err
		}
		w.metrics.IncrementJob("cached")
		log.Info().Bool("duplicate", duplicate).Msg("route plan served from cache")
		return Outcome[P]{Plan: plan, FromCache: true, Duplicate: duplicate}, nil
	}

	result, err := w.fetch(ctx, log, job)
	if err != nil {
		w.metrics.IncrementJob("failed")
		return Outcome[P]{}, err
	}

	plan := w.merger.Merge(job.Plan, result)
	duplicate, err := w.persist(ctx, job.RequestID, plan)
	if err != nil {
		w.metrics.IncrementJob("failed")
		return Outcome[P]{}, err
	}
	if err := w.recordProvenance(ctx, job, result); err != nil {
		w.metrics.IncrementJob("failed")
		return Outcome[P]{}, err
	}

	w.store(ctx, log, job.Key, plan)

	if duplicate {
		w.metrics.IncrementJob("duplicate")
	} else {
		w.metrics.IncrementJob("enriched")
	}
	log.Info().
		Int("pois", len(result.POIs)).
		Uint64("transfer_bytes", result.TransferBytes).
		Bool("duplicate", duplicate).
		Msg("route plan enriched")
	return Outcome[P]{Plan: plan, Duplicate: duplicate}, nil
}

func (w *Worker[P]) lookup(ctx context.Context, log zerolog.Logger, key ports.RouteCacheKey) (P, bool) {
	var zero P
	if key.IsZero() {
		return zero, false
	}

	plan, hit, err := w.cache.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Msg("route cache lookup failed, treating as miss")
		hit = false
	}
	if hit {
		if err := w.routeMetrics.RecordCacheHit(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to record cache hit")
		}
		return plan, true
	}
	if err := w.routeMetrics.RecordCacheMiss(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to record cache miss")
	}
	return zero, false
}

func (w *Worker[P]) store(ctx context.Context, log zerolog.Logger, key ports.RouteCacheKey, plan P) {
	if key.IsZero() {
		return
	}
	if err := w.cache.Put(ctx, key, plan); err != nil {
		log.Warn().Err(err).Msg("failed to refresh route cache")
	}
}

func (w *Worker[P]) persist(ctx context.Context, requestID uuid.UUID, plan P) (bool, error) {
	err := w.repo.Save(ctx, plan)
	if err == nil {
		return false, nil
	}

	var pe *ports.RoutePersistenceError
	if errors.As(err, &pe) {
		switch pe.Kind {
		case ports.RoutePersistenceConflict:
			return true, nil
		case ports.RoutePersistenceConnection:
			return false, &EnrichmentError{Kind: KindPersistence, RequestID: requestID, Retryable: true, Err: err}
		}
	}
	return false, &EnrichmentError{Kind: KindPersistence, RequestID: requestID, Err: err}
}

func (w *Worker[P]) recordProvenance(ctx context.Context, job Job[P], result ports.EnrichmentResult) error {
	err := w.provenance.Persist(ctx, ports.EnrichmentProvenanceRecord{
		SourceURL:  result.SourceURL,
		ImportedAt: w.clock().UTC(),
		BBox:       job.Query.BBox,
	})
	if err == nil {
		return nil
	}

	var pe *ports.EnrichmentProvenanceError
	retryable := errors.As(err, &pe) && pe.Kind == ports.EnrichmentProvenanceConnection
	return &EnrichmentError{Kind: KindPersistence, RequestID: job.RequestID, Retryable: retryable, Err: err}
}

// fetch runs attempts until one succeeds, a non-retryable outcome occurs or
// MaxAttempts is spent.
func (w *Worker[P]) fetch(ctx context.Context, log zerolog.Logger, job Job[P]) (ports.EnrichmentResult, error) {
	var (
		result  ports.EnrichmentResult
		attempt int
	)

	op := func() error {
		attempt++
		r, ae := w.attempt(ctx, job, attempt)
		if ae == nil {
			result = r
			return nil
		}
		if ae.kind == attemptRetryableSource {
			return ae
		}
		return backoff.Permanent(ae)
	}

	notify := func(err error, wait time.Duration) {
		log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", wait).Msg("overpass attempt failed, retrying")
	}

	var timer backoff.Timer
	if w.newTimer != nil {
		timer = w.newTimer()
	}

	err := backoff.RetryNotifyWithTimer(op, w.backOff(ctx), notify, timer)
	if err == nil {
		return result, nil
	}

	var ae *attemptError
	if !errors.As(err, &ae) {
		return result, fmt.Errorf("enrichment of request %s stopped: %w", job.RequestID, err)
	}
	if ae.kind == attemptAbandoned {
		return result, fmt.Errorf("enrichment of request %s abandoned: %w", job.RequestID, ae.err)
	}
	ee := fromAttempt(job.RequestID, ae)
	log.Warn().Err(ee).Str("kind", ee.Kind.String()).Bool("retryable", ee.Retryable).Int("attempts", attempt).Msg("enrichment failed")
	return result, ee
}

func (w *Worker[P]) backOff(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(w.cfg.InitialBackoff),
		backoff.WithMaxInterval(w.cfg.MaxBackoff),
		backoff.WithMultiplier(w.cfg.BackoffMultiplier),
		backoff.WithRandomizationFactor(w.cfg.BackoffJitter),
		backoff.WithMaxElapsedTime(0),
	)
	return backoff.WithContext(backoff.WithMaxRetries(eb, uint64(w.cfg.MaxAttempts-1)), ctx)
}

// attempt admits, fetches and settles a single call to the source.
func (w *Worker[P]) attempt(ctx context.Context, job Job[P], n int) (ports.EnrichmentResult, *attemptError) {
	ctx, span := w.tracer.Start(ctx, "overpass.fetch", trace.WithAttributes(
		attribute.String("request_id", job.RequestID.String()),
		attribute.Int("attempt", n),
	))
	defer span.End()

	admittedAt := w.clock()
	t, change, ae := w.policy.admit(admittedAt)
	w.observe(change, admittedAt)
	if ae != nil {
		return ports.EnrichmentResult{}, w.fail(span, ae)
	}

	result, err := w.source.Fetch(ctx, job.Query)
	finishedAt := w.clock()
	w.metrics.ObserveFetchLatency(finishedAt.Sub(admittedAt))

	if ctxErr := ctx.Err(); ctxErr != nil {
		w.policy.abandon(t)
		return ports.EnrichmentResult{}, w.fail(span, abandoned(ctxErr))
	}

	if err != nil {
		ae := classifySourceError(err)
		outcome := outcomeRetryableFailure
		if ae.kind == attemptSourceRejected {
			outcome = outcomeRejected
		}
		w.observe(w.policy.complete(t, finishedAt, outcome, 0), finishedAt)
		return ports.EnrichmentResult{}, w.fail(span, ae)
	}

	w.observe(w.policy.complete(t, finishedAt, outcomeSuccess, result.TransferBytes), finishedAt)
	w.metrics.IncrementAttempt("success")
	span.SetAttributes(
		attribute.Int("pois", len(result.POIs)),
		attribute.Int64("transfer_bytes", int64(result.TransferBytes)),
	)
	return result, nil
}

func (w *Worker[P]) fail(span trace.Span, ae *attemptError) *attemptError {
	w.metrics.IncrementAttempt(ae.label())
	span.SetStatus(codes.Error, ae.Error())
	span.SetAttributes(attribute.String("outcome", ae.label()))
	return ae
}

func (w *Worker[P]) observe(change circuit.Change, at time.Time) {
	if !change.Changed() {
		return
	}
	name := w.policy.state.breaker.Name()
	w.metrics.SetCircuitState(name, int(change.To))

	event := w.logger.Info()
	if change.To == circuit.StateOpen {
		event = w.logger.Warn()
	}
	event.Str("breaker", name).
		Str("from", change.From.String()).
		Str("to", change.To.String()).
		Msg("circuit breaker state changed")

	if w.observer != nil {
		w.observer(StateChange{Breaker: name, From: change.From, To: change.To, At: at})
	}
}
