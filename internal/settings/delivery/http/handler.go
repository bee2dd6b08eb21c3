package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/tair/pos-ledger/internal/httpx"
	"github.com/tair/pos-ledger/internal/settings/usecase"
	userdomain "github.com/tair/pos-ledger/internal/user/domain"
)

// SettingsHandler handles HTTP requests for store settings
type SettingsHandler struct {
	settings *usecase.SettingsHandler
	gate     *httpx.Gate
	metrics  *httpx.Metrics
}

// NewSettingsHandler creates a new settings HTTP handler
func NewSettingsHandler(settings *usecase.SettingsHandler, gate *httpx.Gate, metrics *httpx.Metrics) *SettingsHandler {
	return &SettingsHandler{settings: settings, gate: gate, metrics: metrics}
}

// RegisterRoutes registers the settings routes
func (h *SettingsHandler) RegisterRoutes(router *mux.Router) {
	anyRole := h.gate.Require()
	editor := h.gate.Require(userdomain.RoleAdmin, userdomain.RoleManager)

	router.HandleFunc("/api/settings", h.metrics.Wrap("/api/settings", anyRole(h.GetSettings))).Methods("GET")
	router.HandleFunc("/api/settings", h.metrics.Wrap("/api/settings", editor(h.UpdateSettings))).Methods("PUT")
}

// GetSettings handles GET /api/settings
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings.Get(r.Context())
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondOK(w, http.StatusOK, "", s)
}

// UpdateSettings handles PUT /api/settings
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StoreName       string          `json:"storeName"`
		StorePhone      string          `json:"storePhone"`
		StoreAddress    string          `json:"storeAddress"`
		InvoiceMessage  string          `json:"invoiceMessage"`
		DefaultTax      decimal.Decimal `json:"defaultTax"`
		DefaultInterest decimal.Decimal `json:"defaultInterest"`
		StockAlert      int             `json:"stockAlert"`
	}
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}

	s, err := h.settings.Update(r.Context(), usecase.UpdateSettingsCommand{
		StoreName:       req.StoreName,
		StorePhone:      req.StorePhone,
		StoreAddress:    req.StoreAddress,
		InvoiceMessage:  req.InvoiceMessage,
		DefaultTax:      req.DefaultTax,
		DefaultInterest: req.DefaultInterest,
		StockAlert:      req.StockAlert,
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondOK(w, http.StatusOK, "Settings saved", s)
}
