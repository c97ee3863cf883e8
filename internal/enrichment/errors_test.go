package enrichment

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/leynos/wildside-sub003/internal/domain/ports"
)

func TestFromAttemptClassification(t *testing.T) {
	requestID := uuid.New()
	tests := []struct {
		name      string
		attempt   *attemptError
		kind      ErrorKind
		retryable bool
	}{
		{"exhausted retries", retryableSource(errors.New("reset")), KindSourceUnavailable, true},
		{"rejected", sourceRejected(errors.New("bad bbox")), KindSourceRejected, false},
		{"quota", quotaDenied(CallBudgetExhausted), KindQuotaExhausted, true},
		{"circuit", circuitOpen(), KindCircuitOpen, true},
		{"state", stateUnavailable("worker is closed"), KindStateUnavailable, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fromAttempt(requestID, tt.attempt)
			assert.Equal(t, tt.kind, err.Kind)
			assert.Equal(t, tt.retryable, err.Retryable)
			assert.Equal(t, tt.retryable, IsRetryable(fmt.Errorf("wrapped: %w", err)))
			assert.Contains(t, err.Error(), requestID.String())
		})
	}
}

func TestIsRetryableIgnoresForeignErrors(t *testing.T) {
	assert.False(t, IsRetryable(errors.New("boom")))
	assert.False(t, IsRetryable(nil))
}

func TestClassifySourceError(t *testing.T) {
	assert.Equal(t, attemptRetryableSource, classifySourceError(ports.NewOverpassSourceError(ports.OverpassRateLimited, "429", nil)).kind)
	assert.Equal(t, attemptRetryableSource, classifySourceError(ports.NewOverpassSourceError(ports.OverpassTimeout, "slow", nil)).kind)
	assert.Equal(t, attemptSourceRejected, classifySourceError(ports.NewOverpassSourceError(ports.OverpassDecode, "bad json", nil)).kind)
	assert.Equal(t, attemptRetryableSource, classifySourceError(errors.New("unexpected")).kind)
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Check())

	cfg.MaxOpenCooldown = cfg.OpenCooldown / 2
	assert.Error(t, cfg.Check())
}
