package queue

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/leynos/wildside-sub003/internal/enrichment"
	"github.com/leynos/wildside-sub003/internal/platform/kafka"
	"github.com/leynos/wildside-sub003/internal/routes/metrics"
	"github.com/leynos/wildside-sub003/internal/routes/models"
	"github.com/leynos/wildside-sub003/pkg/requestcontext"
)

// Processor enriches one job.
type Processor interface {
	Process(ctx context.Context, job enrichment.Job[models.Plan]) (enrichment.Outcome[models.Plan], error)
}

// Requeuer publishes a plan for another delivery.
type Requeuer interface {
	Requeue(ctx context.Context, plan models.Plan, attempt int) error
}

// JobHandler runs consumed plans through the enrichment worker. Retryable
// failures are published again after a delay until MaxDeliveries is reached;
// anything else is logged and dropped so the batch can be committed.
type JobHandler struct {
	processor     Processor
	requeuer      Requeuer
	retryDelay    time.Duration
	maxDeliveries int
	logger        zerolog.Logger
	metrics       *metrics.Metrics
	sleep         func(ctx context.Context, d time.Duration) error
}

type HandlerOption func(*JobHandler)

func WithRetryDelay(d time.Duration) HandlerOption {
	return func(h *JobHandler) { h.retryDelay = d }
}

func WithMaxDeliveries(n int) HandlerOption {
	return func(h *JobHandler) {
		if n > 0 {
			h.maxDeliveries = n
		}
	}
}

func WithLogger(logger zerolog.Logger) HandlerOption {
	return func(h *JobHandler) { h.logger = logger }
}

func WithMetrics(m *metrics.Metrics) HandlerOption {
	return func(h *JobHandler) { h.metrics = m }
}

// WithSleep replaces the retry delay wait. Tests use it to skip real time.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) HandlerOption {
	return func(h *JobHandler) { h.sleep = sleep }
}

func NewJobHandler(processor Processor, requeuer Requeuer, opts ...HandlerOption) (*JobHandler, error) {
	if processor == nil {
		return nil, fmt.Errorf("processor is required")
	}
	if requeuer == nil {
		return nil, fmt.Errorf("requeuer is required")
	}
	h := &JobHandler{
		processor:     processor,
		requeuer:      requeuer,
		retryDelay:    30 * time.Second,
		maxDeliveries: 5,
		logger:        zerolog.Nop(),
		sleep:         sleepContext,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

var _ kafka.Handler = (*JobHandler)(nil)

func (h *JobHandler) Handle(ctx context.Context, msg *kafka.Message) error {
	attempt, _ := strconv.Atoi(msg.Header(HeaderAttempt))
	if traceID := msg.Header(HeaderTraceID); traceID != "" {
		ctx = requestcontext.WithTraceID(ctx, traceID)
	}
	log := h.logger.With().
		Str("topic", msg.Topic).
		Int64("offset", msg.Offset).
		Int("attempt", attempt).
		Logger()

	var plan models.Plan
	if err := json.Unmarshal(msg.Value, &plan); err != nil {
		log.Error().Err(err).Msg("dropping undecodable route job")
		h.metrics.IncrementDelivery("dropped")
		return nil
	}
	log = log.With().Str("request_id", plan.ID.String()).Logger()

	job := enrichment.Job[models.Plan]{
		RequestID: plan.ID,
		Query:     plan.Request.Query(plan.ID),
		Plan:      plan,
	}
	if key, err := models.DeriveCacheKey(plan.Request); err != nil {
		log.Warn().Err(err).Msg("route cache key unavailable, skipping cache")
	} else {
		job.Key = key
	}

	_, err := h.processor.Process(ctx, job)
	if err == nil {
		h.metrics.IncrementDelivery("enriched")
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if !enrichment.IsRetryable(err) || attempt+1 >= h.maxDeliveries {
		log.Error().Err(err).Msg("route job failed permanently")
		h.metrics.IncrementDelivery("dropped")
		return nil
	}

	log.Warn().Err(err).Dur("retry_delay", h.retryDelay).Msg("route job failed, scheduling retry")
	if err := h.sleep(ctx, h.retryDelay); err != nil {
		return err
	}
	if err := h.requeuer.Requeue(ctx, plan, attempt+1); err != nil {
		return fmt.Errorf("requeue route job %s: %w", plan.ID, err)
	}
	h.metrics.IncrementDelivery("retried")
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
