// Package queue moves route plans through Kafka: submission enqueues pending
// plans and the consumer hands them to the enrichment worker.
package queue

import (
	"context"
	"errors"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/twmb/franz-go/pkg/kerr"

	"github.com/leynos/wildside-sub003/internal/domain/ports"
	"github.com/leynos/wildside-sub003/internal/platform/kafka"
	"github.com/leynos/wildside-sub003/internal/routes/models"
	"github.com/leynos/wildside-sub003/pkg/requestcontext"
)

const (
	HeaderAttempt = "attempt"
	HeaderTraceID = "trace-id"
)

type publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// Queue is the Kafka RouteQueue. Messages are keyed by request id so
// redeliveries of one plan land on the same partition.
type Queue struct {
	producer publisher
}

var _ ports.RouteQueue[models.Plan] = (*Queue)(nil)

func New(producer publisher) *Queue {
	return &Queue{producer: producer}
}

// Enqueue publishes a first delivery of plan.
func (q *Queue) Enqueue(ctx context.Context, plan models.Plan) error {
	return q.Requeue(ctx, plan, 0)
}

// Requeue publishes plan again with the given delivery attempt number.
func (q *Queue) Requeue(ctx context.Context, plan models.Plan, attempt int) error {
	body, err := json.Marshal(plan)
	if err != nil {
		return ports.NewJobDispatchRejectedError(err)
	}
	headers := map[string]string{HeaderAttempt: strconv.Itoa(attempt)}
	if traceID := requestcontext.TraceID(ctx); traceID != "" {
		headers[HeaderTraceID] = traceID
	}
	err = q.producer.Publish(ctx, kafka.Message{
		Key:     []byte(plan.ID.String()),
		Value:   body,
		Headers: headers,
	})
	if err != nil {
		return dispatchError(err)
	}
	return nil
}

// dispatchError maps broker failures onto the queue port. Non-retriable
// broker errors such as an oversized message reject the job; everything
// else means the queue could not be reached.
func dispatchError(err error) error {
	var brokerErr *kerr.Error
	if errors.As(err, &brokerErr) && !brokerErr.Retriable {
		return ports.NewJobDispatchRejectedError(err)
	}
	return ports.NewJobDispatchUnavailableError(err)
}
