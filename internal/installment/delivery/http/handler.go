package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/tair/pos-ledger/internal/httpx"
	"github.com/tair/pos-ledger/internal/installment/domain"
	"github.com/tair/pos-ledger/internal/installment/usecase/command"
	"github.com/tair/pos-ledger/internal/installment/usecase/query"
	"github.com/tair/pos-ledger/pkg/apperror"
	"github.com/tair/pos-ledger/pkg/dateutil"
)

// InstallmentHandler handles HTTP requests for installment contracts
type InstallmentHandler struct {
	paymentHandler   *command.RecordPaymentHandler
	checkLateHandler *command.CheckLateContractsHandler

	getHandler  *query.GetContractHandler
	listHandler *query.ListContractsHandler

	gate    *httpx.Gate
	metrics *httpx.Metrics
}

// NewInstallmentHandler creates a new installment handler
func NewInstallmentHandler(
	paymentHandler *command.RecordPaymentHandler,
	checkLateHandler *command.CheckLateContractsHandler,
	getHandler *query.GetContractHandler,
	listHandler *query.ListContractsHandler,
	gate *httpx.Gate,
	metrics *httpx.Metrics,
) *InstallmentHandler {
	return &InstallmentHandler{
		paymentHandler:   paymentHandler,
		checkLateHandler: checkLateHandler,
		getHandler:       getHandler,
		listHandler:      listHandler,
		gate:             gate,
		metrics:          metrics,
	}
}

// RegisterRoutes registers all installment routes
func (h *InstallmentHandler) RegisterRoutes(router *mux.Router) {
	anyRole := h.gate.Require()

	router.HandleFunc("/api/installments", h.metrics.Wrap("/api/installments", anyRole(h.ListContracts))).Methods("GET")
	router.HandleFunc("/api/installments/due", h.metrics.Wrap("/api/installments/due", anyRole(h.DueContracts))).Methods("GET")
	router.HandleFunc("/api/installments/check-late", h.metrics.Wrap("/api/installments/check-late", anyRole(h.CheckLate))).Methods("POST")
	router.HandleFunc("/api/installments/sale/{saleId}", h.metrics.Wrap("/api/installments/sale/{saleId}", anyRole(h.GetBySale))).Methods("GET")
	router.HandleFunc("/api/installments/{id}", h.metrics.Wrap("/api/installments/{id}", anyRole(h.GetContract))).Methods("GET")
	router.HandleFunc("/api/installments/{id}/payments", h.metrics.Wrap("/api/installments/{id}/payments", anyRole(h.RecordPayment))).Methods("POST")
}

// ListContracts handles GET /api/installments
func (h *InstallmentHandler) ListContracts(w http.ResponseWriter, r *http.Request) {
	status := domain.Status(r.URL.Query().Get("status"))
	if status == "all" {
		status = ""
	}

	contracts, err := h.listHandler.Handle(r.Context(), query.ListContractsQuery{
		Status: status,
		Search: r.URL.Query().Get("search"),
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondOK(w, http.StatusOK, "", contracts)
}

// DueContracts handles GET /api/installments/due
func (h *InstallmentHandler) DueContracts(w http.ResponseWriter, r *http.Request) {
	day, err := httpx.QueryDate(r, "date")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	var contracts []domain.Contract
	if day.IsZero() {
		contracts, err = h.listHandler.DueToday(r.Context())
	} else {
		contracts, err = h.listHandler.Due(r.Context(), day)
	}
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondOK(w, http.StatusOK, "", contracts)
}

// CheckLate handles POST /api/installments/check-late
func (h *InstallmentHandler) CheckLate(w http.ResponseWriter, r *http.Request) {
	changed, err := h.checkLateHandler.Handle(r.Context())
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondOK(w, http.StatusOK, "", map[string]int{"changed": changed})
}

// GetContract handles GET /api/installments/{id}
func (h *InstallmentHandler) GetContract(w http.ResponseWriter, r *http.Request) {
	contract, err := h.getHandler.Handle(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondOK(w, http.StatusOK, "", contract)
}

// GetBySale handles GET /api/installments/sale/{saleId}
func (h *InstallmentHandler) GetBySale(w http.ResponseWriter, r *http.Request) {
	contract, err := h.getHandler.BySale(r.Context(), mux.Vars(r)["saleId"])
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondOK(w, http.StatusOK, "", contract)
}

// RecordPayment handles POST /api/installments/{id}/payments
func (h *InstallmentHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount  decimal.Decimal `json:"amount"`
		Date    string          `json:"date"`
		Notes   string          `json:"notes"`
		Confirm bool            `json:"confirm"`
	}
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}

	var date time.Time
	if req.Date != "" {
		d, err := dateutil.ParseDate(req.Date, time.Local)
		if err != nil {
			httpx.RespondError(w, r, apperror.Validation("date must be in YYYY-MM-DD format"))
			return
		}
		date = d
	}

	receipt, err := h.paymentHandler.Handle(r.Context(), command.RecordPaymentCommand{
		ContractID: mux.Vars(r)["id"],
		Amount:     req.Amount,
		Date:       date,
		Notes:      req.Notes,
		Confirm:    req.Confirm,
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondOK(w, http.StatusCreated, "Payment recorded successfully", receipt)
}
