package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/tair/pos-ledger/internal/catalog/usecase/command"
	"github.com/tair/pos-ledger/internal/catalog/usecase/query"
	"github.com/tair/pos-ledger/internal/httpx"
	userdomain "github.com/tair/pos-ledger/internal/user/domain"
)

// CatalogHandler handles HTTP requests for products and categories
type CatalogHandler struct {
	// Command handlers
	createHandler         *command.CreateProductHandler
	updateHandler         *command.UpdateProductHandler
	deleteHandler         *command.DeleteProductHandler
	adjustStockHandler    *command.AdjustStockHandler
	saveCategoryHandler   *command.SaveCategoryHandler
	deleteCategoryHandler *command.DeleteCategoryHandler

	// Query handlers
	getProductHandler     *query.GetProductHandler
	listHandler           *query.ListProductsHandler
	lowStockHandler       *query.LowStockHandler
	topSellingHandler     *query.TopSellingHandler
	listCategoriesHandler *query.ListCategoriesHandler

	gate    *httpx.Gate
	metrics *httpx.Metrics
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(
	createHandler *command.CreateProductHandler,
	updateHandler *command.UpdateProductHandler,
	deleteHandler *command.DeleteProductHandler,
	adjustStockHandler *command.AdjustStockHandler,
	saveCategoryHandler *command.SaveCategoryHandler,
	deleteCategoryHandler *command.DeleteCategoryHandler,
	getProductHandler *query.GetProductHandler,
	listHandler *query.ListProductsHandler,
	lowStockHandler *query.LowStockHandler,
	topSellingHandler *query.TopSellingHandler,
	listCategoriesHandler *query.ListCategoriesHandler,
	gate *httpx.Gate,
	metrics *httpx.Metrics,
) *CatalogHandler {
	return &CatalogHandler{
		createHandler:         createHandler,
		updateHandler:         updateHandler,
		deleteHandler:         deleteHandler,
		adjustStockHandler:    adjustStockHandler,
		saveCategoryHandler:   saveCategoryHandler,
		deleteCategoryHandler: deleteCategoryHandler,
		getProductHandler:     getProductHandler,
		listHandler:           listHandler,
		lowStockHandler:       lowStockHandler,
		topSellingHandler:     topSellingHandler,
		listCategoriesHandler: listCategoriesHandler,
		gate:                  gate,
		metrics:               metrics,
	}
}

// RegisterRoutes registers all catalog routes
func (h *CatalogHandler) RegisterRoutes(router *mux.Router) {
	anyRole := h.gate.Require()
	editor := h.gate.Require(userdomain.RoleAdmin, userdomain.RoleManager)

	router.HandleFunc("/api/products", h.metrics.Wrap("/api/products", anyRole(h.ListProducts))).Methods("GET")
	router.HandleFunc("/api/products/low-stock", h.metrics.Wrap("/api/products/low-stock", anyRole(h.LowStock))).Methods("GET")
	router.HandleFunc("/api/products/top-selling", h.metrics.Wrap("/api/products/top-selling", anyRole(h.TopSelling))).Methods("GET")
	router.HandleFunc("/api/products/code/{code}", h.metrics.Wrap("/api/products/code/{code}", anyRole(h.GetProductByCode))).Methods("GET")
	router.HandleFunc("/api/products/{id}", h.metrics.Wrap("/api/products/{id}", anyRole(h.GetProduct))).Methods("GET")

	router.HandleFunc("/api/products", h.metrics.Wrap("/api/products", editor(h.CreateProduct))).Methods("POST")
	router.HandleFunc("/api/products/{id}", h.metrics.Wrap("/api/products/{id}", editor(h.UpdateProduct))).Methods("PUT")
	router.HandleFunc("/api/products/{id}", h.metrics.Wrap("/api/products/{id}", editor(h.DeleteProduct))).Methods("DELETE")
	router.HandleFunc("/api/products/{id}/stock", h.metrics.Wrap("/api/products/{id}/stock", editor(h.AdjustStock))).Methods("PATCH")

	router.HandleFunc("/api/categories", h.metrics.Wrap("/api/categories", anyRole(h.ListCategories))).Methods("GET")
	router.HandleFunc("/api/categories/{id}", h.metrics.Wrap("/api/categories/{id}", anyRole(h.GetCategory))).Methods("GET")
	router.HandleFunc("/api/categories", h.metrics.Wrap("/api/categories", editor(h.CreateCategory))).Methods("POST")
	router.HandleFunc("/api/categories/{id}", h.metrics.Wrap("/api/categories/{id}", editor(h.UpdateCategory))).Methods("PUT")
	router.HandleFunc("/api/categories/{id}", h.metrics.Wrap("/api/categories/{id}", editor(h.DeleteCategory))).Methods("DELETE")
}

type productRequest struct {
	Code       string          `json:"code"`
	Name       string          `json:"name"`
	CategoryID string          `json:"categoryId"`
	Price      decimal.Decimal `json:"price"`
	Cost       decimal.Decimal `json:"cost"`
	Quantity   int             `json:"quantity"`
}

// CreateProduct handles POST /api/products
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}

	product, err := h.createHandler.Handle(r.Context(), command.CreateProductCommand{
		Code:       req.Code,
		Name:       req.Name,
		CategoryID: req.CategoryID,
		Price:      req.Price,
		Cost:       req.Cost,
		Quantity:   req.Quantity,
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondOK(w, http.StatusCreated, "Product created successfully", product)
}

// ListProducts handles GET /api/products
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	q := query.ListProductsQuery{
		Search:     r.URL.Query().Get("search"),
		CategoryID: r.URL.Query().Get("category"),
		Limit:      limit,
		Offset:     offset,
	}

	products, err := h.listHandler.Handle(r.Context(), q)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondOK(w, http.StatusOK, "", map[string]interface{}{
		"products": products,
		"limit":    q.Limit,
		"offset":   q.Offset,
	})
}

// GetProduct handles GET /api/products/{id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.getProductHandler.Handle(r.Context(), query.GetProductQuery{ID: mux.Vars(r)["id"]})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondOK(w, http.StatusOK, "", product)
}

// GetProductByCode handles GET /api/products/code/{code}
func (h *CatalogHandler) GetProductByCode(w http.ResponseWriter, r *http.Request) {
	product, err := h.getProductHandler.Handle(r.Context(), query.GetProductQuery{Code: mux.Vars(r)["code"]})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondOK(w, http.StatusOK, "", product)
}

// UpdateProduct handles PUT /api/products/{id}
func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}

	product, err := h.updateHandler.Handle(r.Context(), command.UpdateProductCommand{
		ID:         mux.Vars(r)["id"],
		Code:       req.Code,
		Name:       req.Name,
		CategoryID: req.CategoryID,
		Price:      req.Price,
		Cost:       req.Cost,
		Quantity:   req.Quantity,
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondOK(w, http.StatusOK, "Product updated successfully", product)
}

// DeleteProduct handles DELETE /api/products/{id}
func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.deleteHandler.Handle(r.Context(), command.DeleteProductCommand{ID: mux.Vars(r)["id"]}); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondOK(w, http.StatusOK, "Product deleted successfully", nil)
}

// AdjustStock handles PATCH /api/products/{id}/stock
func (h *CatalogHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Delta int `json:"delta"`
	}
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}

	product, err := h.adjustStockHandler.Handle(r.Context(), command.AdjustStockCommand{
		ProductID: mux.Vars(r)["id"],
		Delta:     req.Delta,
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	httpx.RespondOK(w, http.StatusOK, "Stock updated successfully", product)
}

// LowStock handles GET /api/products/low-stock
func (h *CatalogHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	threshold, err := strconv.Atoi(r.URL.Query().Get("threshold"))
	if err != nil {
		threshold = 5
	}

	products, err := h.lowStockHandler.Handle(r.Context(), query.LowStockQuery{Threshold: threshold})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondOK(w, http.StatusOK, "", products)
}

// TopSelling handles GET /api/products/top-selling
func (h *CatalogHandler) TopSelling(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	products, err := h.topSellingHandler.Handle(r.Context(), query.TopSellingQuery{Limit: limit})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondOK(w, http.StatusOK, "", products)
}

// ListCategories handles GET /api/categories
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.listCategoriesHandler.Handle(r.Context())
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondOK(w, http.StatusOK, "", categories)
}

// GetCategory handles GET /api/categories/{id}
func (h *CatalogHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	category, err := h.listCategoriesHandler.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondOK(w, http.StatusOK, "", category)
}

type categoryRequest struct {
	Name string `json:"name"`
}

// CreateCategory handles POST /api/categories
func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}

	category, err := h.saveCategoryHandler.Handle(r.Context(), command.SaveCategoryCommand{Name: req.Name})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondOK(w, http.StatusCreated, "Category created successfully", category)
}

// UpdateCategory handles PUT /api/categories/{id}
func (h *CatalogHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}

	category, err := h.saveCategoryHandler.Handle(r.Context(), command.SaveCategoryCommand{
		ID:   mux.Vars(r)["id"],
		Name: req.Name,
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondOK(w, http.StatusOK, "Category updated successfully", category)
}

// DeleteCategory handles DELETE /api/categories/{id}
func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.deleteCategoryHandler.Handle(r.Context(), command.DeleteCategoryCommand{ID: mux.Vars(r)["id"]}); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.RespondOK(w, http.StatusOK, "Category deleted successfully", nil)
}
