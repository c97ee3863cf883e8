// Package store persists route plans and idempotency records in SQL.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/leynos/wildside-sub003/internal/domain/ports"
	"github.com/leynos/wildside-sub003/internal/platform/sqldb"
	"github.com/leynos/wildside-sub003/internal/routes/models"
	"github.com/leynos/wildside-sub003/pkg/platform/tx"
)

// PlanStore is the SQL RouteRepository. The full plan is kept as JSON next to
// the columns the annotation queries join on.
type PlanStore struct {
	db *sql.DB
}

var _ ports.RouteRepository[models.Plan] = (*PlanStore)(nil)

// NewPlanStore constructs a SQL-backed plan repository.
func NewPlanStore(db *sqldb.DB) *PlanStore {
	return &PlanStore{db: db.DB}
}

// Save inserts the plan. A second save for the same request id is a conflict;
// the stored row is left untouched.
func (s *PlanStore) Save(ctx context.Context, plan models.Plan) error {
	body, err := json.Marshal(plan)
	if err != nil {
		return ports.NewRoutePersistenceWriteError(fmt.Errorf("encode plan: %w", err))
	}
	res, err := tx.Exec(ctx, s.db).ExecContext(ctx, `
		INSERT INTO routes (request_id, user_id, status, plan, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (request_id) DO NOTHING`,
		plan.ID.String(), plan.UserID.String(), string(plan.Status), string(body), plan.CreatedAt.UTC(),
	)
	if err != nil {
		return persistenceError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return persistenceError(err)
	}
	if affected == 0 {
		return ports.NewRouteConflictError(plan.ID)
	}
	return nil
}

// FindByRequestID loads a plan by its request id.
func (s *PlanStore) FindByRequestID(ctx context.Context, requestID uuid.UUID) (models.Plan, bool, error) {
	var body string
	err := tx.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT plan FROM routes WHERE request_id = $1`, requestID.String(),
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Plan{}, false, nil
	}
	if err != nil {
		return models.Plan{}, false, persistenceError(err)
	}

	var plan models.Plan
	if err := json.Unmarshal([]byte(body), &plan); err != nil {
		return models.Plan{}, false, ports.NewRoutePersistenceWriteError(fmt.Errorf("decode plan %s: %w", requestID, err))
	}
	return plan, true, nil
}

func persistenceError(err error) error {
	if sqldb.IsConnectionError(err) {
		return ports.NewRoutePersistenceConnectionError(err)
	}
	return ports.NewRoutePersistenceWriteError(err)
}
