// Package handler exposes the audit query endpoints. Routes are registered
// behind admin-only middleware; the handler itself does no role checks.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"folio/internal/audit"
	"folio/pkg/domainerrors"
	"folio/pkg/platform/httputil"
	"folio/pkg/platform/sentinel"
	platformstrings "folio/pkg/platform/strings"
)

// Service defines the interface for audit read operations.
type Service interface {
	Logs(ctx context.Context, q audit.Query) (*audit.Page, error)
	Get(ctx context.Context, id string) (*audit.Record, error)
}

// Handler handles audit query endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
}

// New creates a new audit Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
	}
}

// Register registers the audit routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/audits", h.handleList)
	r.Get("/api/audits/{id}", h.handleGet)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q, err := parseQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	page, err := h.service.Logs(ctx, q)
	if err != nil {
		if errors.Is(err, audit.ErrInvalidCursor) {
			httputil.WriteError(w, domainerrors.Wrap(domainerrors.CodeInvalidCursor, "invalid cursor format", err))
			return
		}
		h.logger.ErrorContext(ctx, "audit query failed", "error", err)
		httputil.WriteError(w, domainerrors.New(domainerrors.CodeInternal, "audit query failed"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	record, err := h.service.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			httputil.WriteError(w, domainerrors.New(domainerrors.CodeNotFound, "audit record not found"))
			return
		}
		h.logger.ErrorContext(ctx, "audit lookup failed", "error", err)
		httputil.WriteError(w, domainerrors.New(domainerrors.CodeInternal, "audit lookup failed"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, record)
}

// parseQuery maps the query string onto an audit.Query. Unknown parameters
// are ignored; malformed known parameters are a 400.
func parseQuery(r *http.Request) (audit.Query, error) {
	values := r.URL.Query()
	q := audit.Query{
		Entity:    values.Get("entity"),
		EntityID:  values.Get("entityId"),
		ActorID:   values.Get("actorId"),
		RequestID: values.Get("requestId"),
		Cursor:    values.Get("cursor"),
	}

	if raw := values.Get("action"); raw != "" {
		action := audit.Action(raw)
		if !action.Valid() {
			return q, domainerrors.New(domainerrors.CodeBadRequest, "unknown action")
		}
		q.Action = action
	}

	if raw := values.Get("fieldsChanged"); raw != "" {
		q.FieldsChanged = platformstrings.DedupeAndTrim(strings.Split(raw, ","))
	}

	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return q, domainerrors.New(domainerrors.CodeBadRequest, "limit must be a positive integer")
		}
		q.Limit = limit
	}

	var err error
	if q.From, err = parseTime(values.Get("from")); err != nil {
		return q, domainerrors.New(domainerrors.CodeBadRequest, "from must be an RFC 3339 timestamp")
	}
	if q.To, err = parseTime(values.Get("to")); err != nil {
		return q, domainerrors.New(domainerrors.CodeBadRequest, "to must be an RFC 3339 timestamp")
	}

	return q, nil
}

func parseTime(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
