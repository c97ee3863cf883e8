package ports

import "strings"

// RouteCacheKeyValidationError describes why a cache key was refused.
type RouteCacheKeyValidationError struct {
	Reason string
}

func (e *RouteCacheKeyValidationError) Error() string { return e.Reason }

// RouteCacheKey identifies a cached plan. It is non-empty and carries no
// surrounding whitespace.
type RouteCacheKey struct {
	value string
}

// NewRouteCacheKey validates raw and wraps it.
func NewRouteCacheKey(raw string) (RouteCacheKey, error) {
	if strings.TrimSpace(raw) == "" {
		return RouteCacheKey{}, &RouteCacheKeyValidationError{Reason: "route cache key must not be empty"}
	}
	if strings.TrimSpace(raw) != raw {
		return RouteCacheKey{}, &RouteCacheKeyValidationError{Reason: "route cache key must not contain surrounding whitespace"}
	}
	return RouteCacheKey{value: raw}, nil
}

func (k RouteCacheKey) String() string { return k.value }

// IsZero reports whether the key was never constructed.
func (k RouteCacheKey) IsZero() bool { return k.value == "" }
