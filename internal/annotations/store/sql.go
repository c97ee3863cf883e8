// Package store persists route notes and progress in SQL.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/leynos/wildside-sub003/internal/domain"
	"github.com/leynos/wildside-sub003/internal/domain/ports"
	"github.com/leynos/wildside-sub003/internal/platform/sqldb"
	id "github.com/leynos/wildside-sub003/pkg/domain"
	"github.com/leynos/wildside-sub003/pkg/platform/tx"
)

var errNoRowsUpdated = errors.New("update affected 0 rows")

// Store is the SQL RouteAnnotationRepository. Inserts are only accepted for
// routes present in the routes table; updates are guarded by revision.
type Store struct {
	db *sql.DB
}

var _ ports.RouteAnnotationRepository = (*Store)(nil)

// New constructs a SQL-backed annotation repository.
func New(db *sqldb.DB) *Store {
	return &Store{db: db.DB}
}

const noteColumns = `id, route_id, poi_id, user_id, body, created_at, updated_at, revision`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (domain.RouteNote, error) {
	var (
		noteID, routeID, userID string
		poiID                   sql.NullString
		note                    domain.RouteNote
		revision                int64
	)
	if err := row.Scan(&noteID, &routeID, &poiID, &userID, &note.Body, &note.CreatedAt, &note.UpdatedAt, &revision); err != nil {
		return domain.RouteNote{}, err
	}

	var err error
	if note.ID, err = id.ParseNoteID(noteID); err != nil {
		return domain.RouteNote{}, err
	}
	if note.RouteID, err = id.ParseRouteID(routeID); err != nil {
		return domain.RouteNote{}, err
	}
	if note.UserID, err = id.ParseUserID(userID); err != nil {
		return domain.RouteNote{}, err
	}
	if poiID.Valid {
		poi, err := id.ParsePOIID(poiID.String)
		if err != nil {
			return domain.RouteNote{}, err
		}
		note.POIID = &poi
	}
	note.CreatedAt = note.CreatedAt.UTC()
	note.UpdatedAt = note.UpdatedAt.UTC()
	note.Revision = uint32(revision)
	return note, nil
}

func (s *Store) FindNoteByID(ctx context.Context, noteID id.NoteID) (*domain.RouteNote, error) {
	row := tx.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM route_notes WHERE id = $1`, noteID.String())
	note, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, annotationError(err)
	}
	return &note, nil
}

// FindNotesByRouteAndUser returns the user's notes on a route, oldest first.
func (s *Store) FindNotesByRouteAndUser(ctx context.Context, routeID id.RouteID, userID id.UserID) ([]domain.RouteNote, error) {
	rows, err := tx.Exec(ctx, s.db).QueryContext(ctx, `
		SELECT `+noteColumns+`
		FROM route_notes
		WHERE route_id = $1 AND user_id = $2
		ORDER BY created_at ASC, id ASC`,
		routeID.String(), userID.String(),
	)
	if err != nil {
		return nil, annotationError(err)
	}
	defer rows.Close()

	notes := []domain.RouteNote{}
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, annotationError(err)
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, annotationError(err)
	}
	return notes, nil
}

// SaveNote inserts the note when expectedRevision is nil, otherwise updates it
// only if the stored revision still equals *expectedRevision.
func (s *Store) SaveNote(ctx context.Context, note domain.RouteNote, expectedRevision *uint32) error {
	var poiID any
	if note.POIID != nil {
		poiID = note.POIID.String()
	}

	return s.inTx(ctx, func(ctx context.Context) error {
		if expectedRevision == nil {
			if err := s.ensureRoute(ctx, note.RouteID); err != nil {
				return err
			}
			res, err := tx.Exec(ctx, s.db).ExecContext(ctx, `
				INSERT INTO route_notes (`+noteColumns+`)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				ON CONFLICT (id) DO NOTHING`,
				note.ID.String(), note.RouteID.String(), poiID, note.UserID.String(), note.Body,
				note.CreatedAt.UTC(), note.UpdatedAt.UTC(), int64(note.Revision),
			)
			if err := checkAffected(res, err); err != nil {
				if errors.Is(err, errNoRowsUpdated) {
					return s.noteUpdateFailure(ctx, note.ID, 0)
				}
				return err
			}
			return nil
		}

		res, err := tx.Exec(ctx, s.db).ExecContext(ctx, `
			UPDATE route_notes
			SET poi_id = $1, body = $2, updated_at = $3, revision = $4
			WHERE id = $5 AND revision = $6`,
			poiID, note.Body, note.UpdatedAt.UTC(), int64(note.Revision),
			note.ID.String(), int64(*expectedRevision),
		)
		if err := checkAffected(res, err); err != nil {
			if errors.Is(err, errNoRowsUpdated) {
				return s.noteUpdateFailure(ctx, note.ID, *expectedRevision)
			}
			return err
		}
		return nil
	})
}

// noteUpdateFailure tells a stale revision apart from a missing note.
func (s *Store) noteUpdateFailure(ctx context.Context, noteID id.NoteID, expected uint32) error {
	current, err := s.FindNoteByID(ctx, noteID)
	if err != nil {
		return err
	}
	if current == nil {
		return ports.NewRouteAnnotationQueryError(fmt.Errorf("note %s not found", noteID))
	}
	return ports.NewRevisionMismatchError(expected, current.Revision)
}

// DeleteNote reports whether a note was removed.
func (s *Store) DeleteNote(ctx context.Context, noteID id.NoteID) (bool, error) {
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx, `DELETE FROM route_notes WHERE id = $1`, noteID.String())
	if err != nil {
		return false, annotationError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, annotationError(err)
	}
	return n > 0, nil
}

func (s *Store) FindProgress(ctx context.Context, routeID id.RouteID, userID id.UserID) (*domain.RouteProgress, error) {
	var (
		visited  string
		revision int64
		progress = domain.RouteProgress{RouteID: routeID, UserID: userID}
	)
	err := tx.Exec(ctx, s.db).QueryRowContext(ctx, `
		SELECT visited_stop_ids, updated_at, revision
		FROM route_progress
		WHERE route_id = $1 AND user_id = $2`,
		routeID.String(), userID.String(),
	).Scan(&visited, &progress.UpdatedAt, &revision)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, annotationError(err)
	}

	if err := json.Unmarshal([]byte(visited), &progress.VisitedStopIDs); err != nil {
		return nil, ports.NewRouteAnnotationQueryError(fmt.Errorf("decode visited stops for route %s: %w", routeID, err))
	}
	if progress.VisitedStopIDs == nil {
		progress.VisitedStopIDs = []uuid.UUID{}
	}
	progress.UpdatedAt = progress.UpdatedAt.UTC()
	progress.Revision = uint32(revision)
	return &progress, nil
}

// SaveProgress follows the same insert-or-guarded-update rule as SaveNote,
// keyed by route and user.
func (s *Store) SaveProgress(ctx context.Context, progress domain.RouteProgress, expectedRevision *uint32) error {
	stops := progress.VisitedStopIDs
	if stops == nil {
		stops = []uuid.UUID{}
	}
	visited, err := json.Marshal(stops)
	if err != nil {
		return ports.NewRouteAnnotationQueryError(fmt.Errorf("encode visited stops: %w", err))
	}

	return s.inTx(ctx, func(ctx context.Context) error {
		if expectedRevision == nil {
			if err := s.ensureRoute(ctx, progress.RouteID); err != nil {
				return err
			}
			res, err := tx.Exec(ctx, s.db).ExecContext(ctx, `
				INSERT INTO route_progress (route_id, user_id, visited_stop_ids, updated_at, revision)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (route_id, user_id) DO NOTHING`,
				progress.RouteID.String(), progress.UserID.String(), string(visited),
				progress.UpdatedAt.UTC(), int64(progress.Revision),
			)
			if err := checkAffected(res, err); err != nil {
				if errors.Is(err, errNoRowsUpdated) {
					return s.progressUpdateFailure(ctx, progress.RouteID, progress.UserID, 0)
				}
				return err
			}
			return nil
		}

		res, err := tx.Exec(ctx, s.db).ExecContext(ctx, `
			UPDATE route_progress
			SET visited_stop_ids = $1, updated_at = $2, revision = $3
			WHERE route_id = $4 AND user_id = $5 AND revision = $6`,
			string(visited), progress.UpdatedAt.UTC(), int64(progress.Revision),
			progress.RouteID.String(), progress.UserID.String(), int64(*expectedRevision),
		)
		if err := checkAffected(res, err); err != nil {
			if errors.Is(err, errNoRowsUpdated) {
				return s.progressUpdateFailure(ctx, progress.RouteID, progress.UserID, *expectedRevision)
			}
			return err
		}
		return nil
	})
}

func (s *Store) progressUpdateFailure(ctx context.Context, routeID id.RouteID, userID id.UserID, expected uint32) error {
	current, err := s.FindProgress(ctx, routeID, userID)
	if err != nil {
		return err
	}
	if current == nil {
		return ports.NewRouteAnnotationQueryError(fmt.Errorf("progress for route %s not found", routeID))
	}
	return ports.NewRevisionMismatchError(expected, current.Revision)
}

func (s *Store) ensureRoute(ctx context.Context, routeID id.RouteID) error {
	var one int
	err := tx.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT 1 FROM routes WHERE request_id = $1`, routeID.String()).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.NewRouteNotFoundError(routeID)
	}
	if err != nil {
		return annotationError(err)
	}
	return nil
}

func (s *Store) inTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := tx.Run(ctx, s.db, fn); err != nil {
		return annotationError(err)
	}
	return nil
}

func checkAffected(res sql.Result, err error) error {
	if err != nil {
		return annotationError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return annotationError(err)
	}
	if n == 0 {
		return errNoRowsUpdated
	}
	return nil
}

func annotationError(err error) error {
	var repoErr *ports.RouteAnnotationRepositoryError
	if errors.As(err, &repoErr) {
		return err
	}
	if sqldb.IsConnectionError(err) {
		return ports.NewRouteAnnotationConnectionError(err)
	}
	return ports.NewRouteAnnotationQueryError(err)
}
