// Package handler exposes the audit query operations over HTTP. The
// surface is read-only: log operations are called in-process by the
// graph mutation paths, never over the wire.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"graphtrail/internal/audit/models"
	"graphtrail/internal/platform/middleware"
	dErrors "graphtrail/pkg/domain-errors"
	"graphtrail/pkg/httputil"
)

// Service defines the audit operations the HTTP layer needs.
// Returns domain objects, not HTTP response DTOs.
type Service interface {
	GetEntityHistory(ctx context.Context, entityID, namespace string, limit int) ([]*models.AuditEvent, error)
	GetRecentChanges(ctx context.Context, namespace string, limit int) ([]*models.AuditEvent, error)
	GetChangesByTimeRange(ctx context.Context, namespace string, start, end time.Time) ([]*models.AuditEvent, error)
	CreateIndexes(ctx context.Context) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/audit/entities/{id}/history", h.HandleEntityHistory)
	r.Get("/audit/changes/recent", h.HandleRecentChanges)
	r.Get("/audit/changes", h.HandleChangesByTimeRange)
	r.Post("/audit/indexes", h.HandleCreateIndexes)
}

// HandleEntityHistory returns the event history of one entity, oldest first.
func (h *Handler) HandleEntityHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	entityID := chi.URLParam(r, "id")
	namespace, ok := h.requireNamespace(w, r)
	if !ok {
		return
	}
	limit, err := parseLimit(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	events, err := h.service.GetEntityHistory(ctx, entityID, namespace, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "entity history query failed", "error", err, "request_id", requestID, "entity_id", entityID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toEventsResponse(namespace, events))
}

// HandleRecentChanges returns the newest events in a namespace, newest first.
func (h *Handler) HandleRecentChanges(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	namespace, ok := h.requireNamespace(w, r)
	if !ok {
		return
	}
	limit, err := parseLimit(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	events, err := h.service.GetRecentChanges(ctx, namespace, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "recent changes query failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toEventsResponse(namespace, events))
}

// HandleChangesByTimeRange returns the events between the start and end
// query parameters (RFC 3339, inclusive bounds), oldest first.
func (h *Handler) HandleChangesByTimeRange(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	namespace, ok := h.requireNamespace(w, r)
	if !ok {
		return
	}
	start, err := parseTime(r, "start")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	end, err := parseTime(r, "end")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	events, err := h.service.GetChangesByTimeRange(ctx, namespace, start, end)
	if err != nil {
		h.logger.ErrorContext(ctx, "time range query failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toEventsResponse(namespace, events))
}

// HandleCreateIndexes triggers index setup. Restricted to tokens holding
// the all-namespaces claim since indexes are store-wide.
func (h *Handler) HandleCreateIndexes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	if middleware.GetNamespace(ctx) != middleware.NamespaceAll {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "index setup requires an all-namespaces token"))
		return
	}

	if err := h.service.CreateIndexes(ctx); err != nil {
		h.logger.ErrorContext(ctx, "index setup failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "indexes_ensured"})
}

// requireNamespace extracts the namespace query parameter and enforces
// that the caller's token is allowed to read it.
func (h *Handler) requireNamespace(w http.ResponseWriter, r *http.Request) (string, bool) {
	namespace := r.URL.Query().Get("namespace")
	if namespace == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "namespace query parameter is required"))
		return "", false
	}
	if !middleware.NamespaceAllowed(r.Context(), namespace) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "token does not grant access to this namespace"))
		return "", false
	}
	return namespace, true
}

func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "limit must be a non-negative integer")
	}
	return limit, nil
}

func parseTime(r *http.Request, param string) (time.Time, error) {
	raw := r.URL.Query().Get(param)
	if raw == "" {
		return time.Time{}, dErrors.New(dErrors.CodeBadRequest, param+" query parameter is required")
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, dErrors.New(dErrors.CodeBadRequest, param+" must be an RFC 3339 timestamp")
	}
	return t, nil
}
