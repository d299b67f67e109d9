package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ladespensa/despensa-api/internal/application/analytics"
	"github.com/ladespensa/despensa-api/internal/application/auth"
	"github.com/ladespensa/despensa-api/internal/application/inventory"
	"github.com/ladespensa/despensa-api/internal/application/usecase"
	"github.com/ladespensa/despensa-api/internal/domain/rbac"
	"github.com/ladespensa/despensa-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	ProductUC   *usecase.ProductUseCase
	LotUC       *inventory.LotUseCase
	SaleUC      *inventory.SaleUseCase
	SupplierUC  *usecase.SupplierUseCase
	PayableUC   *usecase.PayableUseCase
	StatsUC     *analytics.StatsUseCase
	ReportUC    *usecase.ReportUseCase
	AssistantUC *usecase.AssistantUseCase

	Log          *logger.Logger
	Metrics      *Metrics // nil = sin /metrics
	Health       *HealthHandler
	JWTSecret    string
	SecureCookie bool
	UploadDir    string // se sirve como estático en UploadURL
	UploadURL    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	if deps.Metrics != nil {
		app.Use(deps.Metrics.Middleware())
		app.Get("/metrics", deps.Metrics.Handler())
	}
	if deps.Health != nil {
		app.Get("/health", deps.Health.Check)
	}
	if deps.UploadDir != "" && deps.UploadURL != "" {
		app.Static(deps.UploadURL, deps.UploadDir)
	}

	api := app.Group("/api")
	authMW := AuthMiddleware(deps.JWTSecret)
	can := RequirePermission

	// Auth
	authHandler := NewAuthHandler(deps.AuthUC, log.Named("auth"), deps.SecureCookie)
	authGroup := api.Group("/auth")
	authGroup.Post("/login", authHandler.Login)
	authGroup.Get("/refresh", authHandler.Refresh)
	authGroup.Post("/logout", authHandler.Logout)
	authGroup.Get("/me", authMW, authHandler.Me)
	authGroup.Get("/permissions", authMW, authHandler.Permissions)
	authGroup.Post("/register", authMW, can(rbac.UsersCreate), authHandler.Register)

	// Productos y lotes (rutas estáticas antes que /:id)
	productHandler := NewProductHandler(deps.ProductUC, log.Named("productos"))
	lotHandler := NewLotHandler(deps.LotUC, log.Named("lotes"))
	products := api.Group("/products", authMW)
	products.Get("/", can(rbac.ProductsView), productHandler.List)
	products.Post("/", can(rbac.ProductsCreate), productHandler.Create)
	products.Get("/categorias", can(rbac.ProductsView), productHandler.Categories)
	products.Get("/barcode/:codigo", can(rbac.ProductsView), productHandler.GetByBarcode)
	products.Get("/historial-stock/:id", can(rbac.ProductsView), productHandler.StockHistory)
	products.Get("/:id", can(rbac.ProductsView), productHandler.GetByID)
	products.Patch("/:id", can(rbac.ProductsEdit), productHandler.Update)
	products.Patch("/:id/desactivar", can(rbac.ProductsDisable), productHandler.Deactivate)
	products.Patch("/:id/activar", can(rbac.ProductsDisable), productHandler.Activate)
	products.Delete("/:id", can(rbac.ProductsDelete), productHandler.Delete)
	products.Get("/:id/historial-precios", can(rbac.ProductsView), productHandler.PriceHistory)
	products.Post("/:id/imagen", can(rbac.ProductsEdit), productHandler.UploadImage)
	products.Get("/:id/lotes", can(rbac.ProductsView), lotHandler.List)
	products.Post("/:id/lotes", can(rbac.LotsCreate), lotHandler.Add)
	products.Patch("/:id/lotes/:loteId", can(rbac.LotsEdit), lotHandler.Update)

	// Ventas
	saleHandler := NewSaleHandler(deps.SaleUC, log.Named("ventas"))
	sales := api.Group("/ventas", authMW)
	sales.Post("/", can(rbac.SalesCreate), saleHandler.Create)
	sales.Get("/tickets", can(rbac.SalesView), saleHandler.List)
	sales.Get("/ticket/:id", can(rbac.SalesView), saleHandler.GetByID)
	sales.Put("/ticket/:id", can(rbac.SalesReturn), saleHandler.Return)
	sales.Delete("/ticket/:id", can(rbac.SalesVoid), saleHandler.Void)

	// Proveedores
	supplierHandler := NewSupplierHandler(deps.SupplierUC, log.Named("proveedores"))
	suppliers := api.Group("/proveedores", authMW)
	suppliers.Get("/", can(rbac.SuppliersView), supplierHandler.List)
	suppliers.Post("/", can(rbac.SuppliersManage), supplierHandler.Create)
	suppliers.Get("/:id", can(rbac.SuppliersView), supplierHandler.GetByID)
	suppliers.Patch("/:id", can(rbac.SuppliersManage), supplierHandler.Update)
	suppliers.Patch("/:id/estado", can(rbac.SuppliersManage), supplierHandler.SetActive)
	suppliers.Delete("/:id", can(rbac.SuppliersManage), supplierHandler.Delete)

	// Cuentas por pagar
	payableHandler := NewPayableHandler(deps.PayableUC, log.Named("cuentas"))
	payables := api.Group("/cuentasPorPagar", authMW)
	payables.Get("/", can(rbac.PayablesView), payableHandler.List)
	payables.Post("/", can(rbac.PayablesManage), payableHandler.Create)
	payables.Get("/:id", can(rbac.PayablesView), payableHandler.GetByID)
	payables.Patch("/:id", can(rbac.PayablesManage), payableHandler.Update)
	payables.Patch("/:id/pagar", can(rbac.PayablesPay), payableHandler.MarkPaid)
	payables.Delete("/:id", can(rbac.PayablesManage), payableHandler.Delete)

	// Estadísticas, reportes y asistente
	statsHandler := NewStatsHandler(deps.StatsUC, log.Named("estadisticas"))
	api.Get("/estadisticas/resumen", authMW, can(rbac.StatsView), statsHandler.Summary)

	reportHandler := NewReportHandler(deps.ReportUC, log.Named("reportes"))
	api.Get("/reportes/:tipo", authMW, can(rbac.ReportsView), reportHandler.Download)

	assistantHandler := NewAssistantHandler(deps.AssistantUC, log.Named("asistente"))
	api.Post("/assistant/query", authMW, can(rbac.AssistantQuery), assistantHandler.Query)
}
