package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/stockerp/stockerp-api/internal/application/auth"
	appledger "github.com/stockerp/stockerp-api/internal/application/ledger"
	"github.com/stockerp/stockerp-api/internal/application/usecase"
	"github.com/stockerp/stockerp-api/internal/domain/entity"
	"github.com/stockerp/stockerp-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	ItemUC      *usecase.ItemUseCase
	LocationUC  *usecase.LocationUseCase
	UserUC      *usecase.UserUseCase
	AuditUC     *usecase.AuditUseCase
	SubmitUC    *appledger.SubmitMovementUseCase
	QueryUC     *appledger.StockQueryUseCase
	ReconcileUC *appledger.ReconcileUseCase
	JWTSecret   string
	Log         *logger.Logger
}

// Router registra las rutas de la API.
// Matriz de roles: lecturas viewer+, movimientos staff+, ajustes/maestros/usuarios admin+.
func Router(app *fiber.App, deps RouterDeps) {
	errorLog = deps.Log

	api := app.Group("/api")

	viewerPlus := RequireMinRole(entity.RoleViewer)
	staffPlus := RequireMinRole(entity.RoleStaff)
	adminPlus := RequireMinRole(entity.RoleAdmin)

	// Auth: login público, registro solo admin+
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/register", AuthMiddleware(deps.JWTSecret), adminPlus, authHandler.Register)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Items: lectura viewer+, escritura admin+
	items := protected.Group("/inventory/items")
	itemHandler := NewItemHandler(deps.ItemUC)
	items.Get("/", viewerPlus, itemHandler.List)
	items.Get("/:id", viewerPlus, itemHandler.GetByID)
	items.Post("/", adminPlus, itemHandler.Create)
	items.Put("/:id", adminPlus, itemHandler.Update)
	items.Delete("/:id", adminPlus, itemHandler.Delete)

	// Locations: lectura viewer+, escritura admin+
	locations := protected.Group("/inventory/locations")
	locationHandler := NewLocationHandler(deps.LocationUC)
	locations.Get("/", viewerPlus, locationHandler.List)
	locations.Get("/:id", viewerPlus, locationHandler.GetByID)
	locations.Post("/", adminPlus, locationHandler.Create)
	locations.Put("/:id", adminPlus, locationHandler.Update)
	locations.Delete("/:id", adminPlus, locationHandler.Delete)

	// Stock: movimientos staff+, ajustes admin+, consultas viewer+
	stock := protected.Group("/inventory/stock")
	stockHandler := NewStockHandler(deps.SubmitUC, deps.QueryUC, deps.ReconcileUC)
	stock.Post("/in", staffPlus, stockHandler.In)
	stock.Post("/out", staffPlus, stockHandler.Out)
	stock.Post("/transfer", staffPlus, stockHandler.Transfer)
	stock.Post("/adjustment", adminPlus, stockHandler.Adjustment)
	stock.Get("/current", viewerPlus, stockHandler.CurrentStock)
	stock.Get("/balance", viewerPlus, stockHandler.Balance)
	stock.Get("/ledger", viewerPlus, stockHandler.Ledger)
	stock.Post("/reconcile", adminPlus, stockHandler.Reconcile)

	// Users: solo admin+
	users := protected.Group("/users", adminPlus)
	userHandler := NewUserHandler(deps.UserUC)
	users.Get("/", userHandler.List)
	users.Get("/:id", userHandler.GetByID)
	users.Put("/:id", userHandler.Update)

	// Audit: solo admin+
	auditHandler := NewAuditHandler(deps.AuditUC)
	protected.Get("/audit", adminPlus, auditHandler.List)
}
