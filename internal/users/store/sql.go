// Package store persists users in SQL.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/leynos/wildside-sub003/internal/domain"
	"github.com/leynos/wildside-sub003/internal/domain/ports"
	"github.com/leynos/wildside-sub003/internal/platform/sqldb"
	id "github.com/leynos/wildside-sub003/pkg/domain"
	"github.com/leynos/wildside-sub003/pkg/platform/tx"
	"github.com/leynos/wildside-sub003/pkg/requestcontext"
)

// Store is the SQL UserRepository.
type Store struct {
	db *sql.DB
}

var _ ports.UserRepository = (*Store)(nil)

func New(db *sqldb.DB) *Store {
	return &Store{db: db.DB}
}

// Upsert inserts the user or renames an existing one. created_at is kept from
// the first insert.
func (s *Store) Upsert(ctx context.Context, user domain.User) error {
	now := requestcontext.Now(ctx).UTC()
	_, err := tx.Exec(ctx, s.db).ExecContext(ctx, `
		INSERT INTO users (id, display_name, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (id) DO UPDATE
		SET display_name = excluded.display_name, updated_at = excluded.updated_at`,
		user.ID.String(), user.DisplayName.String(), now,
	)
	if err != nil {
		return userError(err)
	}
	return nil
}

func (s *Store) FindByID(ctx context.Context, userID id.UserID) (*domain.User, bool, error) {
	var name string
	err := tx.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT display_name FROM users WHERE id = $1`, userID.String(),
	).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, userError(err)
	}

	displayName, err := domain.NewDisplayName(name)
	if err != nil {
		return nil, false, ports.NewUserPersistenceQueryError(fmt.Errorf("stored display name for %s: %w", userID, err))
	}
	return &domain.User{ID: userID, DisplayName: displayName}, true, nil
}

func userError(err error) error {
	if sqldb.IsConnectionError(err) {
		return ports.NewUserPersistenceConnectionError(err)
	}
	return ports.NewUserPersistenceQueryError(err)
}
