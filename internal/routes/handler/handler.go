package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/leynos/wildside-sub003/internal/platform/idempotency"
	"github.com/leynos/wildside-sub003/internal/routes/models"
	"github.com/leynos/wildside-sub003/internal/routes/service"
	id "github.com/leynos/wildside-sub003/pkg/domain"
	dErrors "github.com/leynos/wildside-sub003/pkg/domain-errors"
	"github.com/leynos/wildside-sub003/pkg/platform/httputil"
	"github.com/leynos/wildside-sub003/pkg/requestcontext"
)

// Service defines the route operations the handler needs.
type Service interface {
	Submit(ctx context.Context, req service.SubmissionRequest) (*service.SubmissionResponse, error)
	GetPlan(ctx context.Context, requestID uuid.UUID, userID id.UserID) (*models.Plan, error)
}

//go:generate mockgen -source=handler.go -destination=mocks/service.go -package=mocks

// Handler serves route submission and plan retrieval.
type Handler struct {
	service Service
	logger  zerolog.Logger
}

func New(service Service, logger zerolog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts route endpoints on r.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/v1/routes", h.HandleSubmit)
	r.Get("/api/v1/routes/{requestID}", h.HandleGetPlan)
}

// HandleSubmit handles POST /api/v1/routes. New and replayed submissions both
// answer 202 with the request id to poll.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		httputil.WriteError(w, r, dErrors.New(dErrors.CodeUnauthorized, "user id is required"))
		return
	}

	key, err := idempotency.KeyFromHeader(r.Header)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	var payload json.RawMessage
	if err := httputil.DecodeJSON(w, r, &payload); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	resp, err := h.service.Submit(ctx, service.SubmissionRequest{
		IdempotencyKey: key,
		UserID:         userID,
		Payload:        payload,
	})
	if err != nil {
		h.logger.Warn().Err(err).
			Str("request_id", requestcontext.RequestID(ctx)).
			Str("user_id", userID.String()).
			Msg("route submission failed")
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, resp)
}

// HandleGetPlan handles GET /api/v1/routes/{requestID}.
func (h *Handler) HandleGetPlan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		httputil.WriteError(w, r, dErrors.New(dErrors.CodeUnauthorized, "user id is required"))
		return
	}

	requestID, err := id.ParseRequestID(chi.URLParam(r, "requestID"))
	if err != nil {
		httputil.WriteError(w, r, dErrors.Wrap(err, dErrors.CodeInvalidRequest, "invalid request id"))
		return
	}

	plan, err := h.service.GetPlan(ctx, requestID, userID)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, plan)
}
