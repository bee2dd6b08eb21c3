package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/tair/pos-ledger/docs"
	audithttp "github.com/tair/pos-ledger/internal/audit/delivery/http"
	auditrepo "github.com/tair/pos-ledger/internal/audit/repository"
	auditcommand "github.com/tair/pos-ledger/internal/audit/usecase/command"
	auditquery "github.com/tair/pos-ledger/internal/audit/usecase/query"
	backuphttp "github.com/tair/pos-ledger/internal/backup/delivery/http"
	backupusecase "github.com/tair/pos-ledger/internal/backup/usecase"
	cataloghttp "github.com/tair/pos-ledger/internal/catalog/delivery/http"
	catalogdomain "github.com/tair/pos-ledger/internal/catalog/domain"
	catalogrepo "github.com/tair/pos-ledger/internal/catalog/repository"
	catalogcommand "github.com/tair/pos-ledger/internal/catalog/usecase/command"
	catalogquery "github.com/tair/pos-ledger/internal/catalog/usecase/query"
	"github.com/tair/pos-ledger/internal/httpx"
	installmenthttp "github.com/tair/pos-ledger/internal/installment/delivery/http"
	installmentrepo "github.com/tair/pos-ledger/internal/installment/repository"
	installmentcommand "github.com/tair/pos-ledger/internal/installment/usecase/command"
	installmentquery "github.com/tair/pos-ledger/internal/installment/usecase/query"
	invoiceusecase "github.com/tair/pos-ledger/internal/invoice/usecase"
	reporthttp "github.com/tair/pos-ledger/internal/report/delivery/http"
	reportquery "github.com/tair/pos-ledger/internal/report/usecase/query"
	salehttp "github.com/tair/pos-ledger/internal/sale/delivery/http"
	salerepo "github.com/tair/pos-ledger/internal/sale/repository"
	salecommand "github.com/tair/pos-ledger/internal/sale/usecase/command"
	salequery "github.com/tair/pos-ledger/internal/sale/usecase/query"
	settingshttp "github.com/tair/pos-ledger/internal/settings/delivery/http"
	settingsrepo "github.com/tair/pos-ledger/internal/settings/repository"
	settingsusecase "github.com/tair/pos-ledger/internal/settings/usecase"
	"github.com/tair/pos-ledger/internal/user"
	usercommand "github.com/tair/pos-ledger/internal/user/usecase/command"
	"github.com/tair/pos-ledger/pkg/auth"
	"github.com/tair/pos-ledger/pkg/config"
	"github.com/tair/pos-ledger/pkg/dateutil"
	"github.com/tair/pos-ledger/pkg/logger"
	"github.com/tair/pos-ledger/pkg/storage"
)

// Options carries the collaborators that vary between deployments and tests
type Options struct {
	Store     storage.Store
	Publisher auditcommand.TransactionPublisher
	Clock     dateutil.Clock
	Registry  prometheus.Registerer
	Gatherer  prometheus.Gatherer
	// Redis backs the login rate limit; nil disables it
	Redis *redis.Client
}

// App is the assembled POS service
type App struct {
	Router *mux.Router

	cfg        *config.Config
	store      storage.Store
	seedAdmin  *usercommand.SeedDefaultAdminHandler
	categories catalogdomain.CategoryRepository
	checkLate  *installmentcommand.CheckLateContractsHandler
}

// New wires every bounded context onto one router
func New(cfg *config.Config, opts Options) (*App, error) {
	clock := opts.Clock
	if clock == nil {
		clock = dateutil.SystemClock{}
	}
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	store := opts.Store

	// Audit
	transactions := auditrepo.NewKVTransactionRepository(store)
	recorder := auditcommand.NewRecordTransactionHandler(transactions, opts.Publisher, clock)
	listTransactions := auditquery.NewListTransactionsHandler(transactions)

	// Settings
	settingsRepo := settingsrepo.NewKVSettingsRepository(store)
	settings := settingsusecase.NewSettingsHandler(settingsRepo, recorder)

	// Users and the auth gate
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.ServiceName)
	policy := usercommand.SessionPolicy{TTL: cfg.Auth.SessionTTL, RememberTTL: cfg.Auth.RememberTTL}
	metrics := httpx.NewMetrics(reg)
	loginLimiter := httpx.NewRateLimiter(opts.Redis, "login", cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow)

	users, err := user.InitializeModule(store, tokens, policy, recorder, clock, metrics, loginLimiter)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize users: %w", err)
	}
	gate := users.Gate

	// Catalog
	products := catalogrepo.NewProductRepositoryWithTracing(catalogrepo.NewKVProductRepository(store))
	categories := catalogrepo.NewKVCategoryRepository(store)
	catalogHandler := cataloghttp.NewCatalogHandler(
		catalogcommand.NewCreateProductHandler(products, categories, recorder, clock),
		catalogcommand.NewUpdateProductHandler(products, categories, recorder, clock),
		catalogcommand.NewDeleteProductHandler(products, recorder),
		catalogcommand.NewAdjustStockHandler(products),
		catalogcommand.NewSaveCategoryHandler(categories, recorder),
		catalogcommand.NewDeleteCategoryHandler(categories, products, recorder),
		catalogquery.NewGetProductHandler(products),
		catalogquery.NewListProductsHandler(products),
		catalogquery.NewLowStockHandler(products),
		catalogquery.NewTopSellingHandler(products),
		catalogquery.NewListCategoriesHandler(categories),
		gate,
		metrics,
	)

	// Installments
	contracts := installmentrepo.NewContractRepositoryWithTracing(installmentrepo.NewKVContractRepository(store))
	checkLate := installmentcommand.NewCheckLateContractsHandler(contracts, clock)
	listContracts := installmentquery.NewListContractsHandler(contracts, checkLate, clock)
	installmentHandler := installmenthttp.NewInstallmentHandler(
		installmentcommand.NewRecordPaymentHandler(contracts, settingsRepo, recorder, clock),
		checkLate,
		installmentquery.NewGetContractHandler(contracts),
		listContracts,
		gate,
		metrics,
	)

	// Sales
	sales := salerepo.NewKVSaleRepository(store)
	counter := salerepo.NewKVInvoiceCounter(store)
	listSales := salequery.NewListSalesHandler(sales)
	saleHandler := salehttp.NewSaleHandler(
		invoiceusecase.NewBuildInvoiceHandler(products, clock),
		salecommand.NewFinalizeCashSaleHandler(sales, counter, products, recorder, clock),
		salecommand.NewFinalizeInstallmentSaleHandler(
			sales, counter, products,
			installmentcommand.NewCreateContractHandler(contracts, clock),
			recorder, clock,
		),
		salequery.NewGetSaleHandler(sales),
		listSales,
		salequery.NewNextInvoiceNumberHandler(counter, clock),
		gate,
		metrics,
	)

	// Reports
	reportHandler := reporthttp.NewReportHandler(
		reportquery.NewSalesReportHandler(listSales),
		reportquery.NewInventoryReportHandler(products, settingsRepo),
		reportquery.NewInstallmentsReportHandler(contracts, clock),
		reportquery.NewDailyReportHandler(listSales, listTransactions),
		reportquery.NewDashboardHandler(listSales, products, settingsRepo, listContracts, clock),
		clock,
		gate,
		metrics,
	)

	// Backup
	backup := backupusecase.NewBackupHandler(backupusecase.Repositories{
		Products:     products,
		Categories:   categories,
		Sales:        sales,
		Counter:      counter,
		Contracts:    contracts,
		Transactions: transactions,
		Settings:     settingsRepo,
	}, recorder, clock)

	router := mux.NewRouter()
	httpx.RegisterMiddlewares(router, httpx.DefaultMiddlewareConfig(cfg.HTTPTimeout))

	users.Handler.RegisterRoutes(router)
	catalogHandler.RegisterRoutes(router)
	saleHandler.RegisterRoutes(router)
	installmentHandler.RegisterRoutes(router)
	reportHandler.RegisterRoutes(router)
	settingshttp.NewSettingsHandler(settings, gate, metrics).RegisterRoutes(router)
	audithttp.NewTransactionHandler(listTransactions, gate, metrics).RegisterRoutes(router)
	backuphttp.NewBackupHandler(backup, cfg.BackupDir, gate, metrics).RegisterRoutes(router)

	a := &App{
		Router:     router,
		cfg:        cfg,
		store:      store,
		seedAdmin:  users.SeedAdmin,
		categories: categories,
		checkLate:  checkLate,
	}

	router.HandleFunc("/health", a.health).Methods("GET")
	router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	router.PathPrefix("/swagger/").Handler(httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	return a, nil
}

// Handler returns the router behind CORS
func (a *App) Handler() http.Handler {
	return httpx.SetupCORS(httpx.DefaultMiddlewareConfig(a.cfg.HTTPTimeout))(a.Router)
}

// Seed creates the default administrator and the General category when absent
func (a *App) Seed(ctx context.Context) error {
	created, err := a.seedAdmin.Handle(ctx, a.cfg.Auth.DefaultAdminUsername, a.cfg.Auth.DefaultAdminPassword)
	if err != nil {
		return err
	}
	if created {
		logger.Warn(ctx).
			Str("username", a.cfg.Auth.DefaultAdminUsername).
			Msg("Default administrator created, change its password")
	}

	if _, err := a.categories.EnsureGeneral(ctx); err != nil {
		return err
	}
	return nil
}

// RunLateSweeper marks overdue contracts once now and then on every tick
// until ctx is cancelled
func (a *App) RunLateSweeper(ctx context.Context, interval time.Duration) {
	sweep := func() {
		if _, err := a.checkLate.Handle(ctx); err != nil && ctx.Err() == nil {
			logger.Error(ctx).Err(err).Msg("Late contract sweep failed")
		}
	}

	sweep()
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweep()
		}
	}
}

func (a *App) health(w http.ResponseWriter, r *http.Request) {
	if _, err := a.store.Get(r.Context(), storage.KeySettings); err != nil && !errors.Is(err, storage.ErrKeyNotFound) {
		logger.Error(r.Context()).Err(err).Msg("Health check failed")
		httpx.RespondMessage(w, http.StatusServiceUnavailable, "Storage unavailable")
		return
	}
	httpx.RespondOK(w, http.StatusOK, "Service is healthy", map[string]string{
		"service": a.cfg.ServiceName,
		"storage": a.cfg.StorageBackend,
	})
}
