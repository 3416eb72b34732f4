package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/Simplici0/controlcenter/internal/billing"
	"github.com/Simplici0/controlcenter/internal/catalog"
	"github.com/Simplici0/controlcenter/internal/customers"
	"github.com/Simplici0/controlcenter/internal/dashboard"
	"github.com/Simplici0/controlcenter/internal/equipment"
	"github.com/Simplici0/controlcenter/internal/finance"
	"github.com/Simplici0/controlcenter/internal/ledger"
	"github.com/Simplici0/controlcenter/internal/orders"
	"github.com/Simplici0/controlcenter/internal/pricing"
	"github.com/Simplici0/controlcenter/internal/settings"
	"github.com/Simplici0/controlcenter/internal/store"
	"github.com/Simplici0/controlcenter/internal/suppliers"
)

type server struct {
	auth      *authService
	settings  *settings.Service
	ledger    *ledger.Ledger
	calc      *pricing.Calculator
	orders    *orders.Manager
	catalog   *catalog.Catalog
	billing   *billing.Service
	finance   *finance.Ledger
	dashboard *dashboard.Service
	customers *customers.Directory
	suppliers *suppliers.Service
	equipment *equipment.Service
}

func newServer(repo *store.Repository, auth *authService) *server {
	st := settings.New(repo)
	l := ledger.New(repo)
	om := orders.NewManager(repo, l)
	return &server{
		auth:      auth,
		settings:  st,
		ledger:    l,
		calc:      pricing.NewCalculator(l, st),
		orders:    om,
		catalog:   catalog.New(repo),
		billing:   billing.New(repo, st, om),
		finance:   finance.New(repo),
		dashboard: dashboard.New(repo, l),
		customers: customers.New(repo),
		suppliers: suppliers.New(repo),
		equipment: equipment.New(repo),
	}
}

func (s *server) routes(logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(logger))
	r.Use(requestIDLogger)
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	}))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.auth.requireSession)

		r.Get("/settings", s.handleSettingsGet)
		r.Put("/settings", s.handleSettingsSave)
		r.Get("/dashboard", s.handleDashboard)

		r.Get("/materials", s.handleMaterialsList)
		r.Post("/materials", s.handleMaterialsCreate)
		r.Put("/materials/{id}", s.handleMaterialsUpdate)
		r.Delete("/materials/{id}", s.handleMaterialsDelete)

		r.Post("/calculations", s.handleCalculate)
		r.Get("/calculations/last", s.handleLastCalculation)
		r.Post("/calculations/last/product", s.handlePromoteToProduct)
		r.Post("/calculations/last/order", s.handlePromoteToOrder)

		r.Get("/consumption", s.handleConsumptionList)
		r.Post("/consumption", s.handleConsumptionRecord)
		r.Get("/consumption/summary", s.handleConsumptionSummary)

		r.Get("/orders", s.handleOrdersList)
		r.Post("/orders", s.handleOrdersCreate)
		r.Put("/orders/{id}", s.handleOrdersUpdate)
		r.Delete("/orders/{id}", s.handleOrdersDelete)
		r.Post("/orders/{id}/invoice", s.handleOrderInvoice)

		r.Get("/products", s.handleProductsList)
		r.Post("/products", s.handleProductsCreate)
		r.Put("/products/{id}", s.handleProductsUpdate)
		r.Delete("/products/{id}", s.handleProductsDelete)

		r.Get("/invoices", s.handleInvoicesList)
		r.Post("/invoices", s.handleInvoicesCreate)
		r.Get("/invoices/{id}", s.handleInvoiceGet)
		r.Get("/invoices/{id}/text", s.handleInvoiceText)
		r.Get("/invoices/{id}/pdf", s.handleInvoicePDF)

		r.Get("/quotes", s.handleQuotesList)
		r.Post("/quotes", s.handleQuotesCreate)
		r.Post("/quotes/{id}/order", s.handleQuoteConvert)

		r.Get("/finance", s.handleFinanceList)
		r.Post("/finance/income", s.handleFinanceIncome)
		r.Post("/finance/expenses", s.handleFinanceExpense)
		r.Get("/finance/summary", s.handleFinanceSummary)

		r.Get("/customers", s.handleCustomersList)
		r.Post("/customers", s.handleCustomersCreate)
		r.Get("/customers/summary", s.handleCustomersSummary)
		r.Get("/customers/{id}", s.handleCustomerGet)
		r.Put("/customers/{id}", s.handleCustomersUpdate)
		r.Delete("/customers/{id}", s.handleCustomersDelete)

		r.Get("/suppliers", s.handleSuppliersList)
		r.Post("/suppliers", s.handleSuppliersCreate)
		r.Put("/suppliers/{id}", s.handleSuppliersUpdate)
		r.Delete("/suppliers/{id}", s.handleSuppliersDelete)
		r.Get("/purchases", s.handlePurchasesList)
		r.Post("/purchases", s.handlePurchasesCreate)

		r.Get("/equipment", s.handleEquipmentList)
		r.Post("/equipment", s.handleEquipmentCreate)
		r.Get("/equipment/due", s.handleEquipmentDue)
		r.Put("/equipment/{id}", s.handleEquipmentUpdate)
		r.Delete("/equipment/{id}", s.handleEquipmentDelete)
		r.Get("/maintenances", s.handleMaintenancesList)
		r.Post("/maintenances", s.handleMaintenancesCreate)
	})

	return r
}

// requestIDLogger tags the request logger with the chi request id, so core
// packages logging through zerolog.Ctx carry it too.
func requestIDLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			zerolog.Ctx(r.Context()).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("request_id", id)
			})
		}
		next.ServeHTTP(w, r)
	})
}
