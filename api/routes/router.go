package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/huettenzauber/kiosk/api/controllers"
	billscontrollers "github.com/huettenzauber/kiosk/api/controllers/bills"
	cartcontrollers "github.com/huettenzauber/kiosk/api/controllers/cart"
	catalogcontrollers "github.com/huettenzauber/kiosk/api/controllers/catalog"
	"github.com/huettenzauber/kiosk/api/middleware"
	billssvc "github.com/huettenzauber/kiosk/internal/bills"
	catalogsvc "github.com/huettenzauber/kiosk/internal/catalog"
	checkoutsvc "github.com/huettenzauber/kiosk/internal/checkout"
	settingssvc "github.com/huettenzauber/kiosk/internal/settings"
	"github.com/huettenzauber/kiosk/pkg/config"
	"github.com/huettenzauber/kiosk/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	readiness map[string]controllers.Pinger,
	metricsHandler http.Handler,
	cartService cartcontrollers.Service,
	checkoutService checkoutsvc.Service,
	catalogService catalogsvc.Service,
	billsService billssvc.Service,
	settingsService settingssvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartcontrollers.CartFetch(cartService, logg))
			r.Delete("/", cartcontrollers.CartClear(cartService, logg))
			r.Post("/items", cartcontrollers.CartAddItem(cartService, logg))
			r.Put("/items/{id}", cartcontrollers.CartUpdateQuantity(cartService, logg))
			r.Delete("/items/{id}", cartcontrollers.CartRemoveItem(cartService, logg))
			r.Post("/items/{id}/increase", cartcontrollers.CartIncrease(cartService, logg))
			r.Post("/items/{id}/decrease", cartcontrollers.CartDecrease(cartService, logg))
			r.Post("/cleanup", cartcontrollers.CartCleanup(cartService, logg))
			r.Put("/deposit-return", cartcontrollers.CartSetDepositReturn(cartService, logg))
			r.Get("/quantity", cartcontrollers.CartItemQuantity(cartService, logg))
			r.Get("/summary", controllers.CheckoutSummary(checkoutService, logg))
			r.Get("/events", cartcontrollers.CartEvents(cartService, logg))
		})

		r.Post("/checkout", controllers.Checkout(checkoutService, logg))

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/", catalogcontrollers.CatalogFetch(catalogService, logg))
			r.Post("/reload", catalogcontrollers.CatalogReload(catalogService, logg))
			r.Route("/categories", func(r chi.Router) {
				r.Post("/", catalogcontrollers.CategoryCreate(catalogService, logg))
				r.Put("/order", catalogcontrollers.CategoryReorder(catalogService, logg))
				r.Put("/{id}", catalogcontrollers.CategoryUpdate(catalogService, logg))
				r.Delete("/{id}", catalogcontrollers.CategoryDelete(catalogService, logg))
			})
			r.Route("/stock-items", func(r chi.Router) {
				r.Post("/", catalogcontrollers.StockItemCreate(catalogService, logg))
				r.Put("/order", catalogcontrollers.StockItemReorder(catalogService, logg))
				r.Put("/{id}", catalogcontrollers.StockItemUpdate(catalogService, logg))
				r.Delete("/{id}", catalogcontrollers.StockItemDelete(catalogService, logg))
			})
			r.Route("/variants", func(r chi.Router) {
				r.Post("/", catalogcontrollers.VariantCreate(catalogService, logg))
				r.Put("/{id}", catalogcontrollers.VariantUpdate(catalogService, logg))
				r.Delete("/{id}", catalogcontrollers.VariantDelete(catalogService, logg))
			})
		})

		r.Route("/bills", func(r chi.Router) {
			r.Get("/", billscontrollers.BillsList(billsService, logg))
			r.Get("/export.csv", billscontrollers.BillsCSV(billsService, catalogService, logg))
			r.Get("/statistics", billscontrollers.BillsStatistics(billsService, logg))
			r.Get("/statistics/export.csv", billscontrollers.BillsStatisticsCSV(billsService, logg))
			r.Get("/{id}", billscontrollers.BillsGet(billsService, logg))
			r.Delete("/{id}", billscontrollers.BillsDelete(billsService, logg))
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/theme", controllers.SettingsGetTheme(settingsService, logg))
			r.Put("/theme", controllers.SettingsPutTheme(settingsService, logg))
			r.Get("/deposit-return-price", controllers.SettingsGetDepositReturnPrice(settingsService, logg))
			r.Put("/deposit-return-price", controllers.SettingsPutDepositReturnPrice(settingsService, logg))
		})
	})

	return r
}
