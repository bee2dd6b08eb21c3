//go:build wireinject
// +build wireinject

package user

import (
	"github.com/google/wire"

	auditdomain "github.com/tair/pos-ledger/internal/audit/domain"
	"github.com/tair/pos-ledger/internal/httpx"
	"github.com/tair/pos-ledger/internal/user/delivery/http"
	"github.com/tair/pos-ledger/internal/user/usecase/command"
	"github.com/tair/pos-ledger/pkg/auth"
	"github.com/tair/pos-ledger/pkg/dateutil"
	"github.com/tair/pos-ledger/pkg/storage"
)

// InitializeModule initializes the auth gate, HTTP handler and admin seeder
// over one shared set of repositories
func InitializeModule(
	store storage.Store,
	tokens *auth.TokenManager,
	policy command.SessionPolicy,
	audit auditdomain.Recorder,
	clock dateutil.Clock,
	metrics *httpx.Metrics,
	loginLimiter *httpx.RateLimiter,
) (*Module, error) {
	wire.Build(
		AllHandlersSet,
		http.NewUserHandler,
		NewModule,
	)
	return nil, nil
}
