package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/leynos/wildside-sub003/internal/domain"
	"github.com/leynos/wildside-sub003/internal/domain/ports"
	id "github.com/leynos/wildside-sub003/pkg/domain"
	dErrors "github.com/leynos/wildside-sub003/pkg/domain-errors"
)

// Registrar runs onboarding and stores the users it creates.
type Registrar struct {
	onboarding ports.UserOnboarding
	repo       ports.UserRepository
	logger     zerolog.Logger
}

type Option func(*Registrar)

func WithLogger(logger zerolog.Logger) Option {
	return func(r *Registrar) { r.logger = logger }
}

func NewRegistrar(onboarding ports.UserOnboarding, repo ports.UserRepository, opts ...Option) (*Registrar, error) {
	if onboarding == nil {
		return nil, fmt.Errorf("user onboarding is required")
	}
	if repo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	r := &Registrar{onboarding: onboarding, repo: repo, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Register validates displayName and persists the created user. A rejected
// name is returned as an event, not an error; errors are reserved for storage
// failures.
func (r *Registrar) Register(ctx context.Context, traceID, displayName string) (domain.UserEvent, error) {
	event := r.onboarding.Register(traceID, displayName)
	created, ok := event.(domain.UserCreated)
	if !ok {
		r.logger.Debug().Str("trace_id", traceID).Msg("display name rejected")
		return event, nil
	}

	if err := r.repo.Upsert(ctx, created.User); err != nil {
		r.logger.Error().Err(err).Str("trace_id", traceID).Msg("failed to store user")
		return nil, mapUserError(err)
	}
	r.logger.Info().
		Str("trace_id", traceID).
		Str("user_id", created.User.ID.String()).
		Msg("user registered")
	return created, nil
}

// Find returns the user or a not_found error.
func (r *Registrar) Find(ctx context.Context, userID id.UserID) (*domain.User, error) {
	user, found, err := r.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, mapUserError(err)
	}
	if !found {
		return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	return user, nil
}

func mapUserError(err error) error {
	var userErr *ports.UserPersistenceError
	if errors.As(err, &userErr) && userErr.Kind == ports.UserPersistenceConnection {
		return dErrors.Wrap(err, dErrors.CodeServiceUnavailable, "user repository unavailable")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "user repository error")
}
