package http

import (
	"context"

	"github.com/tair/pos-ledger/internal/httpx"
	"github.com/tair/pos-ledger/internal/user/usecase/command"
)

// SessionAuthenticator resolves bearer tokens through the stored session
type SessionAuthenticator struct {
	check *command.CheckSessionHandler
}

// NewSessionAuthenticator creates a new session authenticator
func NewSessionAuthenticator(check *command.CheckSessionHandler) *SessionAuthenticator {
	return &SessionAuthenticator{check: check}
}

// Authenticate implements httpx.Authenticator
func (a *SessionAuthenticator) Authenticate(ctx context.Context, token string) (*httpx.Principal, error) {
	session, err := a.check.Handle(ctx, token)
	if err != nil {
		return nil, err
	}
	return &httpx.Principal{
		UserID:   session.UserID,
		Username: session.Username,
		Name:     session.Name,
		Role:     session.Role,
	}, nil
}
