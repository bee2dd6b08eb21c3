package httpx

import (
	"context"
	"net/http"
	"strings"

	auditdomain "github.com/tair/pos-ledger/internal/audit/domain"
	"github.com/tair/pos-ledger/pkg/apperror"
	"github.com/tair/pos-ledger/pkg/logger"
)

type contextKey string

const principalKey contextKey = "principal"

// Principal is the authenticated caller of a request
type Principal struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// Authenticator resolves a bearer token to a principal
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*Principal, error)
}

// Gate guards routes behind session authentication and role checks
type Gate struct {
	auth Authenticator
}

// NewGate creates a gate backed by auth
func NewGate(auth Authenticator) *Gate {
	return &Gate{auth: auth}
}

// BearerToken extracts the token from "Authorization: Bearer <token>"
func BearerToken(r *http.Request) (string, bool) {
	parts := strings.Split(r.Header.Get("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// PrincipalFrom returns the principal stored by the gate
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok
}

// WithPrincipal attaches p to ctx and makes it the audit actor
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	ctx = context.WithValue(ctx, principalKey, p)
	return auditdomain.WithActor(ctx, p.Username)
}

// Require authenticates the request and, when roles are given, checks that
// the caller holds one of them
func (g *Gate) Require(roles ...string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				logger.Warn(r.Context()).Msg("Missing or malformed authorization header")
				RespondMessage(w, http.StatusUnauthorized, "Authorization header required")
				return
			}

			principal, err := g.auth.Authenticate(r.Context(), token)
			if err != nil {
				logger.Warn(r.Context()).Err(err).Msg("Authentication failed")
				RespondError(w, r, err)
				return
			}

			if len(roles) > 0 && !hasRole(principal.Role, roles) {
				logger.Warn(r.Context()).
					Str("username", principal.Username).
					Str("role", principal.Role).
					Msg("Access denied")
				RespondError(w, r, apperror.New(apperror.ErrForbidden, "insufficient role"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		}
	}
}

func hasRole(role string, allowed []string) bool {
	for _, a := range allowed {
		if a == role {
			return true
		}
	}
	return false
}
