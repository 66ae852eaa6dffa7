// Package handler exposes the book catalog endpoints.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"folio/internal/book"
	"folio/pkg/domainerrors"
	"folio/pkg/platform/httputil"
)

const (
	maxTitleLength       = 200
	maxAuthorsLength     = 500
	maxPublishedByLength = 100
)

// Service defines the interface for catalog operations.
type Service interface {
	Create(ctx context.Context, input book.CreateInput) (*book.Book, error)
	Get(ctx context.Context, id string) (*book.Book, error)
	Update(ctx context.Context, id string, input book.UpdateInput) (*book.Book, error)
	Delete(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) (*book.Book, error)
	List(ctx context.Context, limit int, cursor string) (*book.Page, error)
}

// Handler handles book catalog endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
}

// New creates a new book Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
	}
}

// Register registers the book routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api/books", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{id}", h.handleGet)
		r.Patch("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
		r.Post("/{id}/restore", h.handleRestore)
	})
}

type createRequest struct {
	Title       string `json:"title"`
	Authors     string `json:"authors"`
	PublishedBy string `json:"publishedBy"`
}

func (r createRequest) validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return errors.New("title is required")
	}
	if strings.TrimSpace(r.Authors) == "" {
		return errors.New("authors is required")
	}
	if strings.TrimSpace(r.PublishedBy) == "" {
		return errors.New("publishedBy is required")
	}
	return validateLengths(r.Title, r.Authors, r.PublishedBy)
}

func validateLengths(title, authors, publishedBy string) error {
	if len(title) > maxTitleLength {
		return fmt.Errorf("title must be at most %d characters", maxTitleLength)
	}
	if len(authors) > maxAuthorsLength {
		return fmt.Errorf("authors must be at most %d characters", maxAuthorsLength)
	}
	if len(publishedBy) > maxPublishedByLength {
		return fmt.Errorf("publishedBy must be at most %d characters", maxPublishedByLength)
	}
	return nil
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, domainerrors.New(domainerrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := req.validate(); err != nil {
		httputil.WriteError(w, domainerrors.New(domainerrors.CodeBadRequest, err.Error()))
		return
	}

	created, err := h.service.Create(ctx, book.CreateInput{
		Title:       strings.TrimSpace(req.Title),
		Authors:     strings.TrimSpace(req.Authors),
		PublishedBy: strings.TrimSpace(req.PublishedBy),
	})
	if err != nil {
		h.writeError(ctx, w, err, "create book")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, map[string]string{"id": created.ID})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	found, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(r.Context(), w, err, "get book")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, found)
}

type updateRequest struct {
	Title       *string `json:"title"`
	Authors     *string `json:"authors"`
	PublishedBy *string `json:"publishedBy"`
}

func (r updateRequest) validate() error {
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		return errors.New("title must not be empty")
	}
	if r.Authors != nil && strings.TrimSpace(*r.Authors) == "" {
		return errors.New("authors must not be empty")
	}
	if r.PublishedBy != nil && strings.TrimSpace(*r.PublishedBy) == "" {
		return errors.New("publishedBy must not be empty")
	}
	return validateLengths(deref(r.Title), deref(r.Authors), deref(r.PublishedBy))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, domainerrors.New(domainerrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := req.validate(); err != nil {
		httputil.WriteError(w, domainerrors.New(domainerrors.CodeBadRequest, err.Error()))
		return
	}

	updated, err := h.service.Update(ctx, chi.URLParam(r, "id"), book.UpdateInput{
		Title:       req.Title,
		Authors:     req.Authors,
		PublishedBy: req.PublishedBy,
	})
	if err != nil {
		h.writeError(ctx, w, err, "update book")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(r.Context(), w, err, "delete book")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) handleRestore(w http.ResponseWriter, r *http.Request) {
	restored, err := h.service.Restore(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(r.Context(), w, err, "restore book")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, restored)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			httputil.WriteError(w, domainerrors.New(domainerrors.CodeBadRequest, "limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	page, err := h.service.List(ctx, limit, r.URL.Query().Get("cursor"))
	if err != nil {
		h.writeError(ctx, w, err, "list books")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, page)
}

// writeError renders coded errors as-is and hides everything else behind a
// generic 500.
func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error, operation string) {
	var de *domainerrors.Error
	if errors.As(err, &de) {
		httputil.WriteError(w, de)
		return
	}
	h.logger.ErrorContext(ctx, operation+" failed", "error", err)
	httputil.WriteError(w, domainerrors.New(domainerrors.CodeInternal, operation+" failed"))
}
