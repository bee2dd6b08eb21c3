package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/tair/pos-ledger/internal/httpx"
	invoicedomain "github.com/tair/pos-ledger/internal/invoice/domain"
	invoiceusecase "github.com/tair/pos-ledger/internal/invoice/usecase"
	"github.com/tair/pos-ledger/internal/sale/usecase/command"
	"github.com/tair/pos-ledger/internal/sale/usecase/query"
)

// SaleHandler handles HTTP requests for checkout and the sale ledger
type SaleHandler struct {
	buildHandler       *invoiceusecase.BuildInvoiceHandler
	cashHandler        *command.FinalizeCashSaleHandler
	installmentHandler *command.FinalizeInstallmentSaleHandler

	getHandler        *query.GetSaleHandler
	listHandler       *query.ListSalesHandler
	nextNumberHandler *query.NextInvoiceNumberHandler

	gate    *httpx.Gate
	metrics *httpx.Metrics
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(
	buildHandler *invoiceusecase.BuildInvoiceHandler,
	cashHandler *command.FinalizeCashSaleHandler,
	installmentHandler *command.FinalizeInstallmentSaleHandler,
	getHandler *query.GetSaleHandler,
	listHandler *query.ListSalesHandler,
	nextNumberHandler *query.NextInvoiceNumberHandler,
	gate *httpx.Gate,
	metrics *httpx.Metrics,
) *SaleHandler {
	return &SaleHandler{
		buildHandler:       buildHandler,
		cashHandler:        cashHandler,
		installmentHandler: installmentHandler,
		getHandler:         getHandler,
		listHandler:        listHandler,
		nextNumberHandler:  nextNumberHandler,
		gate:               gate,
		metrics:            metrics,
	}
}

// RegisterRoutes registers all sale routes
func (h *SaleHandler) RegisterRoutes(router *mux.Router) {
	anyRole := h.gate.Require()

	router.HandleFunc("/api/invoices/quote", h.metrics.Wrap("/api/invoices/quote", anyRole(h.Quote))).Methods("POST")
	router.HandleFunc("/api/sales/cash", h.metrics.Wrap("/api/sales/cash", anyRole(h.CashCheckout))).Methods("POST")
	router.HandleFunc("/api/sales/installment", h.metrics.Wrap("/api/sales/installment", anyRole(h.InstallmentCheckout))).Methods("POST")

	router.HandleFunc("/api/sales", h.metrics.Wrap("/api/sales", anyRole(h.ListSales))).Methods("GET")
	router.HandleFunc("/api/sales/next-number", h.metrics.Wrap("/api/sales/next-number", anyRole(h.NextNumber))).Methods("GET")
	router.HandleFunc("/api/sales/by-product", h.metrics.Wrap("/api/sales/by-product", anyRole(h.ProductSales))).Methods("GET")
	router.HandleFunc("/api/sales/{id}", h.metrics.Wrap("/api/sales/{id}", anyRole(h.GetSale))).Methods("GET")
}

type cartRequest struct {
	Lines         []invoiceusecase.LineRequest `json:"lines"`
	DiscountType  invoicedomain.DiscountType   `json:"discountType"`
	DiscountValue decimal.Decimal              `json:"discountValue"`
	Customer      *invoicedomain.Customer      `json:"customer,omitempty"`
}

func (c cartRequest) command() invoiceusecase.BuildInvoiceCommand {
	return invoiceusecase.BuildInvoiceCommand{
		Lines:         c.Lines,
		DiscountType:  c.DiscountType,
		DiscountValue: c.DiscountValue,
		Customer:      c.Customer,
	}
}

// Quote handles POST /api/invoices/quote
func (h *SaleHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req cartRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}

	invoice, err := h.buildHandler.Handle(r.Context(), req.command())
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondOK(w, http.StatusOK, "", invoice)
}

// CashCheckout handles POST /api/sales/cash
func (h *SaleHandler) CashCheckout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		cartRequest
		PaidAmount decimal.Decimal `json:"paidAmount"`
	}
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}

	invoice, err := h.buildHandler.Handle(r.Context(), req.command())
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	sale, err := h.cashHandler.Handle(r.Context(), command.FinalizeCashSaleCommand{
		Invoice:    *invoice,
		PaidAmount: req.PaidAmount,
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondOK(w, http.StatusCreated, "Sale completed successfully", sale)
}

// InstallmentCheckout handles POST /api/sales/installment
func (h *SaleHandler) InstallmentCheckout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		cartRequest
		DownPayment  decimal.Decimal `json:"downPayment"`
		Period       int             `json:"period"`
		InterestRate decimal.Decimal `json:"interestRate"`
	}
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}

	invoice, err := h.buildHandler.Handle(r.Context(), req.command())
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	cmd := command.FinalizeInstallmentSaleCommand{
		Invoice:      *invoice,
		DownPayment:  req.DownPayment,
		Period:       req.Period,
		InterestRate: req.InterestRate,
	}
	if req.Customer != nil {
		cmd.Customer = *req.Customer
	}

	result, err := h.installmentHandler.Handle(r.Context(), cmd)
	if err != nil {
		// The sale may already be in the ledger when only the contract failed.
		if result != nil && result.Sale != nil {
			httpx.RespondJSON(w, http.StatusInternalServerError, httpx.Response{
				Success: false,
				Message: "Sale recorded but the installment contract could not be created",
				Data:    result,
			})
			return
		}
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondOK(w, http.StatusCreated, "Installment sale completed successfully", result)
}

// GetSale handles GET /api/sales/{id}
func (h *SaleHandler) GetSale(w http.ResponseWriter, r *http.Request) {
	sale, err := h.getHandler.Handle(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondOK(w, http.StatusOK, "", sale)
}

// ListSales handles GET /api/sales
func (h *SaleHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	start, end, err := httpx.QueryRange(r)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	sales, err := h.listHandler.Handle(r.Context(), query.ListSalesQuery{
		Start:         start,
		End:           end,
		PaymentMethod: invoicedomain.PaymentMethod(r.URL.Query().Get("paymentMethod")),
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	total := decimal.Zero
	for _, s := range sales {
		total = total.Add(s.Total)
	}

	httpx.RespondOK(w, http.StatusOK, "", map[string]interface{}{
		"sales": sales,
		"count": len(sales),
		"total": total,
	})
}

// ProductSales handles GET /api/sales/by-product
func (h *SaleHandler) ProductSales(w http.ResponseWriter, r *http.Request) {
	start, end, err := httpx.QueryRange(r)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	breakdown, err := h.listHandler.ProductSales(r.Context(), start, end)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondOK(w, http.StatusOK, "", breakdown)
}

// NextNumber handles GET /api/sales/next-number
func (h *SaleHandler) NextNumber(w http.ResponseWriter, r *http.Request) {
	number, err := h.nextNumberHandler.Handle(r.Context())
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondOK(w, http.StatusOK, "", map[string]string{"invoiceNumber": number})
}
