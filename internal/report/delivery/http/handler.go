package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tair/pos-ledger/internal/httpx"
	"github.com/tair/pos-ledger/internal/report/usecase/query"
	userdomain "github.com/tair/pos-ledger/internal/user/domain"
	"github.com/tair/pos-ledger/pkg/dateutil"
)

// ReportHandler handles HTTP requests for reports
type ReportHandler struct {
	salesHandler        *query.SalesReportHandler
	inventoryHandler    *query.InventoryReportHandler
	installmentsHandler *query.InstallmentsReportHandler
	dailyHandler        *query.DailyReportHandler
	dashboardHandler    *query.DashboardHandler
	clock               dateutil.Clock

	gate    *httpx.Gate
	metrics *httpx.Metrics
}

// NewReportHandler creates a new report handler
func NewReportHandler(
	salesHandler *query.SalesReportHandler,
	inventoryHandler *query.InventoryReportHandler,
	installmentsHandler *query.InstallmentsReportHandler,
	dailyHandler *query.DailyReportHandler,
	dashboardHandler *query.DashboardHandler,
	clock dateutil.Clock,
	gate *httpx.Gate,
	metrics *httpx.Metrics,
) *ReportHandler {
	return &ReportHandler{
		salesHandler:        salesHandler,
		inventoryHandler:    inventoryHandler,
		installmentsHandler: installmentsHandler,
		dailyHandler:        dailyHandler,
		dashboardHandler:    dashboardHandler,
		clock:               clock,
		gate:                gate,
		metrics:             metrics,
	}
}

// RegisterRoutes registers all report routes
func (h *ReportHandler) RegisterRoutes(router *mux.Router) {
	anyRole := h.gate.Require()
	manager := h.gate.Require(userdomain.RoleAdmin, userdomain.RoleManager)

	router.HandleFunc("/api/dashboard", h.metrics.Wrap("/api/dashboard", anyRole(h.Dashboard))).Methods("GET")
	router.HandleFunc("/api/reports/daily", h.metrics.Wrap("/api/reports/daily", anyRole(h.Daily))).Methods("GET")
	router.HandleFunc("/api/reports/sales", h.metrics.Wrap("/api/reports/sales", manager(h.Sales))).Methods("GET")
	router.HandleFunc("/api/reports/inventory", h.metrics.Wrap("/api/reports/inventory", manager(h.Inventory))).Methods("GET")
	router.HandleFunc("/api/reports/installments", h.metrics.Wrap("/api/reports/installments", manager(h.Installments))).Methods("GET")
}

// Sales handles GET /api/reports/sales
func (h *ReportHandler) Sales(w http.ResponseWriter, r *http.Request) {
	start, end, err := httpx.QueryRange(r)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	report, err := h.salesHandler.Handle(r.Context(), start, end)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondOK(w, http.StatusOK, "", report)
}

// Inventory handles GET /api/reports/inventory
func (h *ReportHandler) Inventory(w http.ResponseWriter, r *http.Request) {
	report, err := h.inventoryHandler.Handle(r.Context())
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondOK(w, http.StatusOK, "", report)
}

// Installments handles GET /api/reports/installments
func (h *ReportHandler) Installments(w http.ResponseWriter, r *http.Request) {
	start, end, err := httpx.QueryRange(r)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	report, err := h.installmentsHandler.Handle(r.Context(), query.InstallmentsReportQuery{
		Start:  start,
		End:    end,
		Status: r.URL.Query().Get("status"),
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondOK(w, http.StatusOK, "", report)
}

// Daily handles GET /api/reports/daily
func (h *ReportHandler) Daily(w http.ResponseWriter, r *http.Request) {
	day, err := httpx.QueryDate(r, "date")
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	if day.IsZero() {
		day = h.clock.Now()
	}

	report, err := h.dailyHandler.Handle(r.Context(), day)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondOK(w, http.StatusOK, "", report)
}

// Dashboard handles GET /api/dashboard
func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.dashboardHandler.Handle(r.Context())
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondOK(w, http.StatusOK, "", summary)
}
