// Package service registers users from a submitted display name.
package service

import (
	"errors"

	"github.com/leynos/wildside-sub003/internal/domain"
	"github.com/leynos/wildside-sub003/internal/domain/ports"
	id "github.com/leynos/wildside-sub003/pkg/domain"
)

// Onboarding validates display names and produces the resulting event. It does
// no I/O.
type Onboarding struct {
	newID func() id.UserID
}

var _ ports.UserOnboarding = (*Onboarding)(nil)

type OnboardingOption func(*Onboarding)

// WithIDGenerator replaces the random user id source.
func WithIDGenerator(fn func() id.UserID) OnboardingOption {
	return func(o *Onboarding) {
		if fn != nil {
			o.newID = fn
		}
	}
}

func NewOnboarding(opts ...OnboardingOption) *Onboarding {
	o := &Onboarding{newID: id.NewUserID}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Register returns UserCreated for an acceptable name and DisplayNameRejected
// otherwise. Every rejection carries the same policy message.
func (o *Onboarding) Register(traceID, displayName string) domain.UserEvent {
	name, err := domain.NewDisplayName(displayName)
	if err != nil {
		reason := domain.DisplayNameInvalidChars
		var dnErr *domain.DisplayNameError
		if errors.As(err, &dnErr) {
			reason = dnErr.Reason
		}
		return domain.DisplayNameRejected{
			TraceID:       traceID,
			AttemptedName: displayName,
			Code:          reason,
			Message:       domain.DisplayNamePolicyMessage,
		}
	}
	return domain.UserCreated{
		TraceID: traceID,
		User:    domain.User{ID: o.newID(), DisplayName: name},
	}
}
