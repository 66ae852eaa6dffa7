// Package handler exposes the authentication endpoints.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"folio/internal/auth"
	"folio/pkg/domainerrors"
	"folio/pkg/platform/httputil"
)

// Service defines the interface for auth operations.
type Service interface {
	Login(ctx context.Context, name, credentials string) (*auth.LoginResult, error)
	Seed(ctx context.Context) (map[string]auth.SeedResult, error)
}

// Handler handles authentication endpoints.
type Handler struct {
	logger      *slog.Logger
	auth        Service
	seedEnabled bool
}

// New creates a new auth Handler.
func New(auth Service, logger *slog.Logger, seedEnabled bool) *Handler {
	return &Handler{
		logger:      logger,
		auth:        auth,
		seedEnabled: seedEnabled,
	}
}

// Register registers the auth routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/auth/login", h.handleLogin)
	r.Post("/api/auth/seed", h.handleSeed)
}

type loginRequest struct {
	Name        string `json:"name"`
	Credentials string `json:"credentials"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, domainerrors.New(domainerrors.CodeBadRequest, "invalid request body"))
		return
	}
	if req.Name == "" || req.Credentials == "" {
		httputil.WriteError(w, domainerrors.New(domainerrors.CodeBadRequest, "name and credentials are required"))
		return
	}

	result, err := h.auth.Login(ctx, req.Name, req.Credentials)
	if err != nil {
		if domainerrors.Is(err, domainerrors.CodeUnauthorized) || domainerrors.Is(err, domainerrors.CodeRateLimited) {
			httputil.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "login failed", "error", err)
		httputil.WriteError(w, domainerrors.New(domainerrors.CodeInternal, "login failed"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleSeed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !h.seedEnabled {
		httputil.WriteError(w, domainerrors.New(domainerrors.CodeNotFound, "not found"))
		return
	}

	results, err := h.auth.Seed(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "seed failed", "error", err)
		httputil.WriteError(w, domainerrors.New(domainerrors.CodeInternal, "seed failed"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"results": results,
	})
}
