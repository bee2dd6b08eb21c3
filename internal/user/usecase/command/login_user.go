package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tair/pos-ledger/internal/user/domain"
	"github.com/tair/pos-ledger/pkg/apperror"
	"github.com/tair/pos-ledger/pkg/auth"
	"github.com/tair/pos-ledger/pkg/dateutil"
	"github.com/tair/pos-ledger/pkg/idgen"
	"github.com/tair/pos-ledger/pkg/logger"
)

// SessionPolicy holds the session lifetimes
type SessionPolicy struct {
	TTL         time.Duration
	RememberTTL time.Duration
}

// DefaultSessionPolicy is 8 hours, or 7 days with remember-me
var DefaultSessionPolicy = SessionPolicy{TTL: 8 * time.Hour, RememberTTL: 7 * 24 * time.Hour}

func (p SessionPolicy) ttl(remember bool) time.Duration {
	if remember {
		if p.RememberTTL > 0 {
			return p.RememberTTL
		}
		return DefaultSessionPolicy.RememberTTL
	}
	if p.TTL > 0 {
		return p.TTL
	}
	return DefaultSessionPolicy.TTL
}

// LoginUserCommand represents the command to login a user
type LoginUserCommand struct {
	Username   string
	Password   string
	RememberMe bool
}

// LoginResponse represents the response after successful login
type LoginResponse struct {
	Token     string          `json:"token"`
	User      domain.UserView `json:"user"`
	ExpiresAt time.Time       `json:"expiresAt"`
}

// LoginUserHandler handles user login command
type LoginUserHandler struct {
	repo     domain.UserRepository
	sessions domain.SessionRepository
	tokens   *auth.TokenManager
	policy   SessionPolicy
	clock    dateutil.Clock
}

// NewLoginUserHandler creates a new login user handler
func NewLoginUserHandler(
	repo domain.UserRepository,
	sessions domain.SessionRepository,
	tokens *auth.TokenManager,
	policy SessionPolicy,
	clock dateutil.Clock,
) *LoginUserHandler {
	return &LoginUserHandler{repo: repo, sessions: sessions, tokens: tokens, policy: policy, clock: clock}
}

// Handle executes the login user command
func (h *LoginUserHandler) Handle(ctx context.Context, cmd LoginUserCommand) (*LoginResponse, error) {
	username := strings.TrimSpace(cmd.Username)
	if username == "" || cmd.Password == "" {
		return nil, apperror.Validation("username and password are required")
	}

	user, err := h.repo.FindByUsername(ctx, username)
	if errors.Is(err, apperror.ErrNotFound) {
		logger.Warn(ctx).Str("username", username).Msg("Login failed: unknown user")
		return nil, apperror.New(apperror.ErrInvalidCredentials, "invalid username or password")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, cmd.Password) {
		logger.Warn(ctx).Str("username", username).Msg("Login failed: wrong password")
		return nil, apperror.New(apperror.ErrInvalidCredentials, "invalid username or password")
	}
	if !user.Active {
		logger.Warn(ctx).Str("username", username).Msg("Login failed: account disabled")
		return nil, apperror.New(apperror.ErrAccountDisabled, "account is disabled")
	}

	now := h.clock.Now()
	err = h.repo.Mutate(ctx, func(users *[]domain.User) error {
		for i := range *users {
			if (*users)[i].ID == user.ID {
				(*users)[i].LastLogin = &now
				return nil
			}
		}
		return apperror.NotFound("user not found")
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update last login: %w", err)
	}
	user.LastLogin = &now

	ttl := h.policy.ttl(cmd.RememberMe)
	session := &domain.Session{
		ID:         idgen.New(),
		UserID:     user.ID,
		Username:   user.Username,
		Name:       user.Name,
		Role:       user.Role,
		LoggedInAt: now,
		ExpiresAt:  now.Add(ttl),
		TTL:        ttl,
	}

	token, err := h.tokens.GenerateToken(session.ID, user.ID, user.Username, user.Role, now)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	if err := h.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	logger.Info(ctx).
		Str("user_id", user.ID).
		Str("username", user.Username).
		Str("role", user.Role).
		Bool("remember_me", cmd.RememberMe).
		Msg("User logged in")

	return &LoginResponse{
		Token:     token,
		User:      user.View(),
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// CheckSessionHandler validates tokens against the stored session
type CheckSessionHandler struct {
	repo     domain.UserRepository
	sessions domain.SessionRepository
	tokens   *auth.TokenManager
	clock    dateutil.Clock
}

// NewCheckSessionHandler creates a new check session handler
func NewCheckSessionHandler(
	repo domain.UserRepository,
	sessions domain.SessionRepository,
	tokens *auth.TokenManager,
	clock dateutil.Clock,
) *CheckSessionHandler {
	return &CheckSessionHandler{repo: repo, sessions: sessions, tokens: tokens, clock: clock}
}

// Handle returns the live session of token and slides its expiry
func (h *CheckSessionHandler) Handle(ctx context.Context, token string) (*domain.Session, error) {
	claims, err := h.tokens.ValidateToken(token)
	if err != nil {
		return nil, apperror.New(apperror.ErrSessionExpired, "invalid session token")
	}

	session, err := h.sessions.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil || session.ID != claims.SessionID() {
		return nil, apperror.New(apperror.ErrSessionExpired, "session has ended")
	}

	now := h.clock.Now()
	if session.Expired(now) {
		if err := h.sessions.Clear(ctx); err != nil {
			logger.Warn(ctx).Err(err).Msg("Failed to clear expired session")
		}
		return nil, apperror.New(apperror.ErrSessionExpired, "session expired")
	}

	user, err := h.repo.FindByID(ctx, session.UserID)
	if err != nil || !user.Active {
		if clearErr := h.sessions.Clear(ctx); clearErr != nil {
			logger.Warn(ctx).Err(clearErr).Msg("Failed to clear session")
		}
		return nil, apperror.New(apperror.ErrAccountDisabled, "account is disabled")
	}

	session.ExpiresAt = now.Add(session.TTL)
	session.Role = user.Role
	session.Name = user.Name
	if err := h.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to refresh session: %w", err)
	}
	return session, nil
}

// LogoutUserHandler handles logout command
type LogoutUserHandler struct {
	sessions domain.SessionRepository
	tokens   *auth.TokenManager
}

// NewLogoutUserHandler creates a new logout handler
func NewLogoutUserHandler(sessions domain.SessionRepository, tokens *auth.TokenManager) *LogoutUserHandler {
	return &LogoutUserHandler{sessions: sessions, tokens: tokens}
}

// Handle removes the session of token. Logging out twice is not an error.
func (h *LogoutUserHandler) Handle(ctx context.Context, token string) error {
	claims, err := h.tokens.ValidateToken(token)
	if err != nil {
		return nil
	}

	session, err := h.sessions.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil || session.ID != claims.SessionID() {
		return nil
	}

	if err := h.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	logger.Info(ctx).Str("username", session.Username).Msg("User logged out")
	return nil
}
