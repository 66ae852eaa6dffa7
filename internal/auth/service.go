package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"folio/internal/audit"
	"folio/internal/auth/throttle"
	"folio/internal/platform/metrics"
	"folio/pkg/domainerrors"
	"folio/pkg/platform/middleware/metadata"
	"folio/pkg/platform/sentinel"
	"folio/pkg/requestcontext"
)

// Service handles login, token issuance, and user seeding.
type Service struct {
	users   UserStore
	tokens  *TokenManager
	limiter throttle.Limiter
	audits  *audit.Service
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewService(
	users UserStore,
	tokens *TokenManager,
	limiter throttle.Limiter,
	audits *audit.Service,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		users:   users,
		tokens:  tokens,
		limiter: limiter,
		audits:  audits,
		logger:  logger,
		metrics: m,
	}
}

// LoginResult is returned to a successfully authenticated client.
type LoginResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Login verifies credentials and issues a bearer token. On success it
// establishes the request scope itself: the actor is only resolved here, so
// this is the authentication boundary for the login audit record.
func (s *Service) Login(ctx context.Context, name, credentials string) (*LoginResult, error) {
	clientIP := metadata.ClientIP(ctx)

	allowed, err := s.limiter.Allow(ctx, clientIP)
	if err != nil {
		// The throttle is protection, not a dependency: if its backend is
		// down we let the attempt through rather than locking everyone out.
		s.logger.WarnContext(ctx, "login throttle unavailable, allowing attempt",
			"error", err,
			"client_ip", clientIP,
		)
		allowed = true
	}
	if !allowed {
		s.metrics.LoginsTotal.WithLabelValues("throttled").Inc()
		return nil, domainerrors.New(domainerrors.CodeRateLimited, "too many login attempts")
	}

	user, err := s.users.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.LoginsTotal.WithLabelValues("failed").Inc()
			return nil, domainerrors.New(domainerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Credentials), []byte(credentials)); err != nil {
		s.metrics.LoginsTotal.WithLabelValues("failed").Inc()
		return nil, domainerrors.New(domainerrors.CodeUnauthorized, "invalid credentials")
	}

	now := requestcontext.Now(ctx)
	token, err := s.tokens.IssueToken(user, now)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	// The actor is resolved only now, so the login request gets its scope
	// here rather than from the auth middleware.
	ctx = requestcontext.With(ctx, requestcontext.New(user.ID, string(user.Role)))

	s.audits.RecordMutation(ctx, audit.Entry{
		Entity:   "User",
		EntityID: user.ID,
		Action:   audit.ActionLogin,
		Metadata: map[string]any{
			"ip":        clientIP,
			"userAgent": metadata.UserAgent(ctx),
		},
	})

	s.metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.logger.InfoContext(ctx, "user logged in",
		"user_id", user.ID,
		"user_name", user.Name,
		"role", user.Role,
		"request_id", requestcontext.RequestID(ctx),
	)

	return &LoginResult{Token: token, User: user}, nil
}

// SeedResult reports what Seed did for one account.
type SeedResult struct {
	Exists  bool `json:"exists"`
	Created bool `json:"created"`
}

// Seed idempotently creates the development admin and reviewer accounts.
// It runs outside any request scope, so no audit records are attributed to it.
func (s *Service) Seed(ctx context.Context) (map[string]SeedResult, error) {
	accounts := []struct {
		name     string
		role     Role
		password string
	}{
		{"admin", RoleAdmin, "admin123"},
		{"reviewer", RoleReviewer, "reviewer123"},
	}

	results := make(map[string]SeedResult, len(accounts))
	for _, account := range accounts {
		_, err := s.users.FindByName(ctx, account.name)
		if err == nil {
			results[account.name] = SeedResult{Exists: true}
			s.logger.InfoContext(ctx, "seed user already exists", "name", account.name)
			continue
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			return nil, fmt.Errorf("find seed user %s: %w", account.name, err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(account.password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash seed credentials: %w", err)
		}

		now := time.Now()
		user := &User{
			ID:          uuid.NewString(),
			Name:        account.name,
			Role:        account.role,
			Credentials: string(hash),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("create seed user %s: %w", account.name, err)
		}
		results[account.name] = SeedResult{Created: true}
		s.logger.InfoContext(ctx, "seed user created", "name", account.name, "role", account.role)
	}
	return results, nil
}
