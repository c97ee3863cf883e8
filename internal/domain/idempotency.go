package domain

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	id "github.com/leynos/wildside-sub003/pkg/domain"
	"github.com/leynos/wildside-sub003/pkg/validate"
)

// DefaultIdempotencyTTL is how long a stored key protects against replays.
const DefaultIdempotencyTTL = 24 * time.Hour

var (
	ErrEmptyIdempotencyKey   = errors.New("idempotency key must not be empty")
	ErrInvalidIdempotencyKey = errors.New("idempotency key must be a valid UUID")
	ErrInvalidPayloadHash    = errors.New("payload hash must be 64 lowercase hex characters")
)

// IdempotencyKey is a client supplied UUID guarding a mutation against replays.
type IdempotencyKey uuid.UUID

// ParseIdempotencyKey validates a raw header value.
func ParseIdempotencyKey(raw string) (IdempotencyKey, error) {
	if raw == "" {
		return IdempotencyKey{}, ErrEmptyIdempotencyKey
	}
	u, err := uuid.Parse(raw)
	if err != nil {
		return IdempotencyKey{}, fmt.Errorf("%w: %v", ErrInvalidIdempotencyKey, err)
	}
	return IdempotencyKey(u), nil
}

func (k IdempotencyKey) String() string { return uuid.UUID(k).String() }

// MutationType scopes idempotency keys so the same key may be reused across endpoints.
type MutationType string

const (
	MutationRoutes   MutationType = "routes"
	MutationNotes    MutationType = "notes"
	MutationProgress MutationType = "progress"
)

// PayloadHash is the hex SHA-256 digest of a canonicalised request payload.
type PayloadHash string

// ParsePayloadHash validates a stored digest.
func ParsePayloadHash(s string) (PayloadHash, error) {
	if !validate.Digest(s) {
		return "", ErrInvalidPayloadHash
	}
	return PayloadHash(s), nil
}

// CanonicalizeAndHash hashes a JSON document independently of object key order
// and insignificant whitespace. Array order is preserved.
func CanonicalizeAndHash(payload []byte) (PayloadHash, error) {
	canonical, err := CanonicalJSON(payload)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return PayloadHash(hex.EncodeToString(sum[:])), nil
}

// CanonicalJSON re-encodes a JSON document with sorted object keys and no
// insignificant whitespace. Numbers keep their original text.
func CanonicalJSON(payload []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("canonicalize payload: %w", err)
	}
	out, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canonicalize payload: %w", err)
	}
	return out, nil
}

// IdempotencyRecord links a key to the payload it first carried and the
// response that was returned for it.
type IdempotencyRecord struct {
	Key              IdempotencyKey
	MutationType     MutationType
	PayloadHash      PayloadHash
	ResponseSnapshot json.RawMessage
	UserID           id.UserID
	CreatedAt        time.Time
}

// IdempotencyLookupQuery scopes a lookup to user and mutation type.
type IdempotencyLookupQuery struct {
	Key          IdempotencyKey
	UserID       id.UserID
	MutationType MutationType
	PayloadHash  PayloadHash
}

// IdempotencyLookupOutcome classifies a lookup.
type IdempotencyLookupOutcome int

const (
	IdempotencyNotFound IdempotencyLookupOutcome = iota
	IdempotencyMatchingPayload
	IdempotencyConflictingPayload
)

// IdempotencyLookupResult carries the stored record for the two found outcomes.
type IdempotencyLookupResult struct {
	Outcome IdempotencyLookupOutcome
	Record  *IdempotencyRecord
}

// ClassifyIdempotencyRecord compares a stored record with the incoming hash.
func ClassifyIdempotencyRecord(record *IdempotencyRecord, hash PayloadHash) IdempotencyLookupResult {
	if record == nil {
		return IdempotencyLookupResult{Outcome: IdempotencyNotFound}
	}
	if record.PayloadHash == hash {
		return IdempotencyLookupResult{Outcome: IdempotencyMatchingPayload, Record: record}
	}
	return IdempotencyLookupResult{Outcome: IdempotencyConflictingPayload, Record: record}
}
