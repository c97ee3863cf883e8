package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/leynos/wildside-sub003/internal/domain"
	"github.com/leynos/wildside-sub003/internal/users/models"
	id "github.com/leynos/wildside-sub003/pkg/domain"
	dErrors "github.com/leynos/wildside-sub003/pkg/domain-errors"
	"github.com/leynos/wildside-sub003/pkg/platform/httputil"
	"github.com/leynos/wildside-sub003/pkg/requestcontext"
)

// Service defines the user operations the handlers need.
type Service interface {
	Register(ctx context.Context, traceID, displayName string) (domain.UserEvent, error)
	Find(ctx context.Context, userID id.UserID) (*domain.User, error)
}

//go:generate mockgen -source=handler.go -destination=mocks/service.go -package=mocks

// Handler serves user onboarding over HTTP.
type Handler struct {
	service Service
	logger  zerolog.Logger
}

func New(service Service, logger zerolog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts user endpoints on r.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/v1/users", h.HandleRegister)
	r.Get("/api/v1/users/{userID}", h.HandleGet)
}

// HandleRegister handles POST /api/v1/users.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var body models.RegisterBody
	if err := httputil.DecodeJSON(w, r, &body); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	traceID := requestcontext.TraceID(r.Context())
	event, err := h.service.Register(r.Context(), traceID, body.DisplayName)
	if err != nil {
		h.logger.Error().Err(err).Str("trace_id", traceID).Msg("user registration failed")
		httputil.WriteError(w, r, err)
		return
	}

	switch e := event.(type) {
	case domain.UserCreated:
		httputil.WriteJSON(w, http.StatusCreated, models.UserFromDomain(e.User, e.TraceID))
	case domain.DisplayNameRejected:
		httputil.WriteError(w, r, dErrors.New(dErrors.CodeInvalidRequest, e.Message).
			WithDetails(models.RejectionDetailsFromDomain(e).Map()))
	default:
		httputil.WriteError(w, r, dErrors.Newf(dErrors.CodeInternal, "unexpected user event %T", event))
	}
}

// HandleGet handles GET /api/v1/users/{userID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, r, dErrors.Wrap(err, dErrors.CodeInvalidRequest, "invalid user id"))
		return
	}

	user, err := h.service.Find(r.Context(), userID)
	if err != nil {
		if dErrors.CodeOf(err) != dErrors.CodeNotFound {
			h.logger.Error().Err(err).Str("user_id", userID.String()).Msg("user lookup failed")
		}
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.UserFromDomain(*user, ""))
}
