package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/leynos/wildside-sub003/internal/domain"
	"github.com/leynos/wildside-sub003/internal/domain/ports"
	"github.com/leynos/wildside-sub003/internal/platform/sqldb"
	"github.com/leynos/wildside-sub003/pkg/platform/tx"
)

// IdempotencyStore is the SQL IdempotencyRepository. Keys are scoped by user
// and mutation type.
type IdempotencyStore struct {
	db *sql.DB
}

var _ ports.IdempotencyRepository = (*IdempotencyStore)(nil)

// NewIdempotencyStore constructs a SQL-backed idempotency repository.
func NewIdempotencyStore(db *sqldb.DB) *IdempotencyStore {
	return &IdempotencyStore{db: db.DB}
}

func (s *IdempotencyStore) Find(ctx context.Context, query domain.IdempotencyLookupQuery) (domain.IdempotencyLookupResult, error) {
	var (
		hash      string
		snapshot  string
		createdAt time.Time
	)
	err := tx.Exec(ctx, s.db).QueryRowContext(ctx, `
		SELECT payload_hash, response_snapshot, created_at
		FROM idempotency_keys
		WHERE key = $1 AND user_id = $2 AND mutation_type = $3`,
		query.Key.String(), query.UserID.String(), string(query.MutationType),
	).Scan(&hash, &snapshot, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ClassifyIdempotencyRecord(nil, query.PayloadHash), nil
	}
	if err != nil {
		return domain.IdempotencyLookupResult{}, idempotencyError(err)
	}

	stored, err := domain.ParsePayloadHash(hash)
	if err != nil {
		return domain.IdempotencyLookupResult{}, ports.NewIdempotencySerializationError(
			fmt.Errorf("stored hash for key %s: %w", query.Key, err))
	}
	record := &domain.IdempotencyRecord{
		Key:              query.Key,
		MutationType:     query.MutationType,
		PayloadHash:      stored,
		ResponseSnapshot: []byte(snapshot),
		UserID:           query.UserID,
		CreatedAt:        createdAt.UTC(),
	}
	return domain.ClassifyIdempotencyRecord(record, query.PayloadHash), nil
}

// Store inserts the record. A key already stored for the same user and
// mutation type fails with DuplicateKey.
func (s *IdempotencyStore) Store(ctx context.Context, record domain.IdempotencyRecord) error {
	snapshot := string(record.ResponseSnapshot)
	if snapshot == "" {
		snapshot = "null"
	}
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx, `
		INSERT INTO idempotency_keys (key, user_id, mutation_type, payload_hash, response_snapshot, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (key, user_id, mutation_type) DO NOTHING`,
		record.Key.String(), record.UserID.String(), string(record.MutationType),
		string(record.PayloadHash), snapshot, record.CreatedAt.UTC(),
	)
	if err != nil {
		if sqldb.IsUniqueViolation(err) {
			return ports.NewDuplicateIdempotencyKeyError(record.Key)
		}
		return idempotencyError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return idempotencyError(err)
	}
	if affected == 0 {
		return ports.NewDuplicateIdempotencyKeyError(record.Key)
	}
	return nil
}

// PurgeExpired deletes records created before olderThan and reports how many.
func (s *IdempotencyStore) PurgeExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx,
		`DELETE FROM idempotency_keys WHERE created_at < $1`, olderThan.UTC())
	if err != nil {
		return 0, idempotencyError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, idempotencyError(err)
	}
	return n, nil
}

func idempotencyError(err error) error {
	if sqldb.IsConnectionError(err) {
		return ports.NewIdempotencyConnectionError(err)
	}
	return ports.NewIdempotencyQueryError(err)
}

