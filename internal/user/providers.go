package user

import (
	"github.com/google/wire"

	"github.com/tair/pos-ledger/internal/httpx"
	"github.com/tair/pos-ledger/internal/user/delivery/http"
	"github.com/tair/pos-ledger/internal/user/domain"
	"github.com/tair/pos-ledger/internal/user/repository"
	"github.com/tair/pos-ledger/internal/user/usecase/command"
	"github.com/tair/pos-ledger/internal/user/usecase/query"
	"github.com/tair/pos-ledger/pkg/storage"
)

// Module is everything the rest of the application needs from users
type Module struct {
	Gate      *httpx.Gate
	Handler   *http.UserHandler
	SeedAdmin *command.SeedDefaultAdminHandler
}

// NewModule groups the user context outputs
func NewModule(gate *httpx.Gate, handler *http.UserHandler, seedAdmin *command.SeedDefaultAdminHandler) *Module {
	return &Module{Gate: gate, Handler: handler, SeedAdmin: seedAdmin}
}

// ProvideUserRepository provides the traced user repository
func ProvideUserRepository(store storage.Store) domain.UserRepository {
	return repository.NewUserRepositoryWithTracing(repository.NewKVUserRepository(store))
}

// ProvideSessionRepository provides the session repository
func ProvideSessionRepository(store storage.Store) domain.SessionRepository {
	return repository.NewKVSessionRepository(store)
}

// ProvideAuthenticator exposes session checks to the HTTP gate
func ProvideAuthenticator(check *command.CheckSessionHandler) httpx.Authenticator {
	return http.NewSessionAuthenticator(check)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideUserRepository,
	ProvideSessionRepository,
)

var GateSet = wire.NewSet(
	command.NewCheckSessionHandler,
	ProvideAuthenticator,
	httpx.NewGate,
)

var CommandHandlerSet = wire.NewSet(
	command.NewLoginUserHandler,
	command.NewLogoutUserHandler,
	command.NewCreateUserHandler,
	command.NewUpdateUserHandler,
	command.NewChangePasswordHandler,
	command.NewDeleteUserHandler,
	command.NewSeedDefaultAdminHandler,
)

var QueryHandlerSet = wire.NewSet(
	query.NewGetUserHandler,
	query.NewListUsersHandler,
)

var AllHandlersSet = wire.NewSet(
	RepositorySet,
	GateSet,
	CommandHandlerSet,
	QueryHandlerSet,
)
