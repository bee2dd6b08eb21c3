package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tair/pos-ledger/internal/audit/usecase/query"
	"github.com/tair/pos-ledger/internal/httpx"
	userdomain "github.com/tair/pos-ledger/internal/user/domain"
)

// TransactionHandler exposes the audit log
type TransactionHandler struct {
	listHandler *query.ListTransactionsHandler
	gate        *httpx.Gate
	metrics     *httpx.Metrics
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(listHandler *query.ListTransactionsHandler, gate *httpx.Gate, metrics *httpx.Metrics) *TransactionHandler {
	return &TransactionHandler{listHandler: listHandler, gate: gate, metrics: metrics}
}

// RegisterRoutes registers the audit routes
func (h *TransactionHandler) RegisterRoutes(router *mux.Router) {
	manager := h.gate.Require(userdomain.RoleAdmin, userdomain.RoleManager)
	router.HandleFunc("/api/transactions", h.metrics.Wrap("/api/transactions", manager(h.ListTransactions))).Methods("GET")
}

// ListTransactions handles GET /api/transactions?start&end&actionType
func (h *TransactionHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	start, end, err := httpx.QueryRange(r)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	txs, err := h.listHandler.Handle(r.Context(), query.ListTransactionsQuery{
		Start:      start,
		End:        end,
		ActionType: r.URL.Query().Get("actionType"),
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondOK(w, http.StatusOK, "", txs)
}
