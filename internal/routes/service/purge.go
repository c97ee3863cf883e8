package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Purger periodically deletes expired idempotency records. It satisfies
// suture.Service.
type Purger struct {
	svc      *Service
	ttl      time.Duration
	interval time.Duration
	clock    func() time.Time
	logger   zerolog.Logger
}

func NewPurger(svc *Service, ttl, interval time.Duration, logger zerolog.Logger) *Purger {
	return &Purger{svc: svc, ttl: ttl, interval: interval, clock: time.Now, logger: logger}
}

func (p *Purger) Serve(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.PurgeOnce(ctx)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// PurgeOnce runs one purge; failures are logged and retried on the next tick.
func (p *Purger) PurgeOnce(ctx context.Context) {
	n, err := p.svc.PurgeExpired(ctx, p.clock(), p.ttl)
	if err != nil {
		p.logger.Warn().Err(err).Msg("idempotency purge failed")
		return
	}
	if n > 0 {
		p.logger.Info().Int64("purged", n).Msg("expired idempotency records purged")
	}
}
