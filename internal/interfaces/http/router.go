package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/dukastock-api/internal/application/auth"
	"github.com/jhoicas/dukastock-api/internal/application/inventory"
	"github.com/jhoicas/dukastock-api/internal/application/lending"
	"github.com/jhoicas/dukastock-api/internal/application/sales"
	"github.com/jhoicas/dukastock-api/internal/application/usecase"
	"github.com/jhoicas/dukastock-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC     *auth.AuthUseCase
	BusinessUC *usecase.BusinessUseCase
	StoreUC    *usecase.StoreUseCase
	UserUC     *usecase.UserUseCase
	ItemUC     *inventory.ItemUseCase
	AuditUC    *inventory.AuditUseCase
	LendingUC  *lending.UseCase
	SalesUC    *sales.UseCase
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Businesses: el alta es pública porque precede al registro del dueño
	businesses := api.Group("/businesses")
	businessHandler := NewBusinessHandler(deps.BusinessUC)
	businesses.Post("/", businessHandler.Create)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	admins := RequireRole(entity.RoleAdmin)
	managers := RequireRole(entity.RoleAdmin, entity.RoleStaffAdmin)

	protected.Get("/businesses/:id", businessHandler.GetByID)

	stores := protected.Group("/stores")
	storeHandler := NewStoreHandler(deps.StoreUC)
	stores.Post("/", admins, storeHandler.Create)
	stores.Get("/", storeHandler.List)
	stores.Get("/:id", storeHandler.GetByID)

	users := protected.Group("/users")
	userHandler := NewUserHandler(deps.UserUC)
	users.Post("/", admins, userHandler.Create)
	users.Get("/", admins, userHandler.List)
	users.Get("/:id", userHandler.GetByID)

	// Inventory: /summary y /audit antes de /:id
	inv := protected.Group("/inventory")
	invHandler := NewInventoryHandler(deps.ItemUC, deps.AuditUC)
	inv.Post("/", managers, invHandler.Create)
	inv.Get("/", invHandler.List)
	inv.Get("/summary", invHandler.Summary)
	inv.Get("/audit", admins, invHandler.Audit)
	inv.Get("/:id", invHandler.GetByID)
	inv.Put("/:id", managers, invHandler.Update)
	inv.Delete("/:id", admins, invHandler.Delete)

	lends := protected.Group("/lends")
	lendHandler := NewLendHandler(deps.LendingUC)
	lends.Post("/", lendHandler.Create)
	lends.Get("/", lendHandler.List)
	lends.Get("/:id", lendHandler.GetByID)
	lends.Post("/:id/return", lendHandler.Return)
	lends.Post("/:id/mark-updated", lendHandler.MarkUpdated)

	saleGroup := protected.Group("/sales")
	saleHandler := NewSaleHandler(deps.SalesUC)
	saleGroup.Post("/", saleHandler.Create)
	saleGroup.Get("/", saleHandler.List)
	saleGroup.Get("/:id", saleHandler.GetByID)
	saleGroup.Post("/:id/return", managers, saleHandler.Return)

	protected.Get("/returns", saleHandler.ListReturns)
}
