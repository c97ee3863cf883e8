package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/leynos/wildside-sub003/internal/annotations/models"
	"github.com/leynos/wildside-sub003/internal/annotations/service"
	"github.com/leynos/wildside-sub003/internal/domain"
	"github.com/leynos/wildside-sub003/internal/platform/idempotency"
	id "github.com/leynos/wildside-sub003/pkg/domain"
	dErrors "github.com/leynos/wildside-sub003/pkg/domain-errors"
	"github.com/leynos/wildside-sub003/pkg/platform/httputil"
	"github.com/leynos/wildside-sub003/pkg/requestcontext"
)

// Service defines the annotation operations the handler needs.
type Service interface {
	FetchAnnotations(ctx context.Context, routeID id.RouteID, userID id.UserID) (*domain.RouteAnnotations, error)
	UpsertNote(ctx context.Context, req service.UpsertNoteRequest) (*service.NoteResponse, error)
	UpdateProgress(ctx context.Context, req service.UpdateProgressRequest) (*service.ProgressResponse, error)
	DeleteNote(ctx context.Context, noteID id.NoteID, userID id.UserID) (bool, error)
}

//go:generate mockgen -source=handler.go -destination=mocks/service.go -package=mocks

// Handler serves a user's notes and progress on a route.
type Handler struct {
	service Service
	logger  zerolog.Logger
}

func New(service Service, logger zerolog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts annotation endpoints on r.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api/v1/routes/{routeID}", func(r chi.Router) {
		r.Get("/annotations", h.HandleFetch)
		r.Put("/notes/{noteID}", h.HandleUpsertNote)
		r.Delete("/notes/{noteID}", h.HandleDeleteNote)
		r.Put("/progress", h.HandleUpdateProgress)
	})
}

// HandleFetch handles GET /api/v1/routes/{routeID}/annotations.
func (h *Handler) HandleFetch(w http.ResponseWriter, r *http.Request) {
	userID, routeID, ok := h.routeScope(w, r)
	if !ok {
		return
	}

	annotations, err := h.service.FetchAnnotations(r.Context(), routeID, userID)
	if err != nil {
		h.logFailure(r, err, "fetch annotations failed")
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.AnnotationsFromDomain(annotations))
}

// HandleUpsertNote handles PUT /api/v1/routes/{routeID}/notes/{noteID}.
func (h *Handler) HandleUpsertNote(w http.ResponseWriter, r *http.Request) {
	userID, routeID, ok := h.routeScope(w, r)
	if !ok {
		return
	}
	noteID, err := id.ParseNoteID(chi.URLParam(r, "noteID"))
	if err != nil {
		httputil.WriteError(w, r, dErrors.Wrap(err, dErrors.CodeInvalidRequest, "invalid note id"))
		return
	}
	key, err := idempotency.KeyFromHeader(r.Header)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	var body models.UpsertNoteBody
	if err := httputil.DecodeJSON(w, r, &body); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	resp, err := h.service.UpsertNote(r.Context(), service.UpsertNoteRequest{
		IdempotencyKey:   key,
		UserID:           userID,
		RouteID:          routeID,
		NoteID:           noteID,
		POIID:            body.POIID,
		Body:             body.Body,
		ExpectedRevision: body.ExpectedRevision,
	})
	if err != nil {
		h.logFailure(r, err, "note upsert failed")
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleDeleteNote handles DELETE /api/v1/routes/{routeID}/notes/{noteID}.
func (h *Handler) HandleDeleteNote(w http.ResponseWriter, r *http.Request) {
	userID := requestcontext.UserID(r.Context())
	if userID.IsNil() {
		httputil.WriteError(w, r, dErrors.New(dErrors.CodeUnauthorized, "user id is required"))
		return
	}
	noteID, err := id.ParseNoteID(chi.URLParam(r, "noteID"))
	if err != nil {
		httputil.WriteError(w, r, dErrors.Wrap(err, dErrors.CodeInvalidRequest, "invalid note id"))
		return
	}

	deleted, err := h.service.DeleteNote(r.Context(), noteID, userID)
	if err != nil {
		h.logFailure(r, err, "note delete failed")
		httputil.WriteError(w, r, err)
		return
	}
	if !deleted {
		httputil.WriteError(w, r, dErrors.New(dErrors.CodeNotFound, "note not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleUpdateProgress handles PUT /api/v1/routes/{routeID}/progress.
func (h *Handler) HandleUpdateProgress(w http.ResponseWriter, r *http.Request) {
	userID, routeID, ok := h.routeScope(w, r)
	if !ok {
		return
	}
	key, err := idempotency.KeyFromHeader(r.Header)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	var body models.UpdateProgressBody
	if err := httputil.DecodeJSON(w, r, &body); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	resp, err := h.service.UpdateProgress(r.Context(), service.UpdateProgressRequest{
		IdempotencyKey:   key,
		UserID:           userID,
		RouteID:          routeID,
		VisitedStopIDs:   body.VisitedStopIDs,
		ExpectedRevision: body.ExpectedRevision,
	})
	if err != nil {
		h.logFailure(r, err, "progress update failed")
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) routeScope(w http.ResponseWriter, r *http.Request) (id.UserID, id.RouteID, bool) {
	userID := requestcontext.UserID(r.Context())
	if userID.IsNil() {
		httputil.WriteError(w, r, dErrors.New(dErrors.CodeUnauthorized, "user id is required"))
		return id.UserID{}, id.RouteID{}, false
	}
	routeID, err := id.ParseRouteID(chi.URLParam(r, "routeID"))
	if err != nil {
		httputil.WriteError(w, r, dErrors.Wrap(err, dErrors.CodeInvalidRequest, "invalid route id"))
		return id.UserID{}, id.RouteID{}, false
	}
	return userID, routeID, true
}

func (h *Handler) logFailure(r *http.Request, err error, msg string) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal || dErrors.CodeOf(err) == dErrors.CodeServiceUnavailable {
		h.logger.Error().Err(err).Str("request_id", requestcontext.RequestID(r.Context())).Msg(msg)
		return
	}
	h.logger.Debug().Err(err).Str("request_id", requestcontext.RequestID(r.Context())).Msg(msg)
}
