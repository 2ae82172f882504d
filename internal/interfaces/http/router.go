package http

import (
	"os"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	appanalytics "github.com/stockeasy/stockeasy-api/internal/application/analytics"
	"github.com/stockeasy/stockeasy-api/internal/application/auth"
	"github.com/stockeasy/stockeasy-api/internal/application/checklist"
	"github.com/stockeasy/stockeasy-api/internal/application/inventory"
	"github.com/stockeasy/stockeasy-api/internal/application/usecase"
	"github.com/stockeasy/stockeasy-api/internal/domain/entity"
	"github.com/stockeasy/stockeasy-api/pkg/logger"
)

// Metrics contrato del exportador de métricas HTTP.
type Metrics interface {
	Middleware() fiber.Handler
	Handler() fiber.Handler
}

// RouterDeps dependencias para el router. Metrics, SwaggerFile y OpenAPIDoc son opcionales.
type RouterDeps struct {
	AppName     string
	Log         *logger.Logger
	Resolver    auth.PrincipalResolver
	Metrics     Metrics
	SwaggerFile string
	OpenAPIDoc  string

	AuthUC           *auth.AuthUseCase
	CompanyUC        *usecase.CompanyUseCase
	UserUC           *usecase.UserUseCase
	ProductUC        *usecase.ProductUseCase
	SupplierUC       *usecase.SupplierUseCase
	CategoryUC       *usecase.CategoryUseCase
	RegisterMovement *inventory.RegisterMovementUseCase
	Replenishment    *inventory.ReplenishmentUseCase
	Reports          *inventory.ReportUseCase
	TemplateUC       *checklist.TemplateUseCase
	ExecutionUC      *checklist.ExecutionUseCase
	DashboardUC      *appanalytics.DashboardUseCase
}

// NewApp crea la aplicación Fiber con middlewares comunes y todas las rutas.
func NewApp(deps RouterDeps) *fiber.App {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	app := fiber.New(fiber.Config{
		AppName:      deps.AppName,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: ErrorHandler(deps.Log.Component("http")),
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	if deps.Metrics != nil {
		// Antes de RequestLogger: ve el estado ya resuelto por el ErrorHandler.
		app.Use(deps.Metrics.Middleware())
		app.Get("/metrics", deps.Metrics.Handler())
	}
	app.Use(RequestLogger(deps.Log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	if deps.SwaggerFile != "" {
		if _, err := os.Stat(deps.SwaggerFile); err == nil {
			app.Use(swagger.New(swagger.Config{
				BasePath: "/",
				FilePath: deps.SwaggerFile,
				Path:     "docs",
				Title:    "StockEasy API",
			}))
		}
	}

	if deps.OpenAPIDoc != "" {
		app.Get("/openapi.json", func(c *fiber.Ctx) error {
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
			return c.SendString(deps.OpenAPIDoc)
		})
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})

	Router(app, deps)
	return app
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/signup", authHandler.Signup)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.Resolver))

	products := NewProductHandler(deps.ProductUC)
	protected.Get("/products", products.List)
	protected.Post("/products", products.Create)
	protected.Get("/products/:id", products.GetByID)
	protected.Put("/products/:id", products.Update)
	protected.Delete("/products/:id", products.Delete)

	suppliers := NewSupplierHandler(deps.SupplierUC)
	protected.Get("/suppliers", suppliers.List)
	protected.Post("/suppliers", suppliers.Create)
	protected.Get("/suppliers/:id", suppliers.GetByID)
	protected.Put("/suppliers/:id", suppliers.Update)
	protected.Delete("/suppliers/:id", suppliers.Delete)

	categories := NewCategoryHandler(deps.CategoryUC)
	protected.Get("/categories", categories.List)
	protected.Post("/categories", categories.Create)
	protected.Get("/categories/:id", categories.GetByID)
	protected.Put("/categories/:id", categories.Update)
	protected.Delete("/categories/:id", categories.Delete)

	inv := NewInventoryHandler(deps.RegisterMovement, deps.Replenishment, deps.Reports)
	protected.Get("/movements", inv.ListMovements)
	protected.Post("/movements", inv.RegisterMovement)
	protected.Get("/inventory/restock", inv.Restock)
	protected.Get("/reports/stock.pdf", inv.StockReport)

	cl := NewChecklistHandler(deps.TemplateUC, deps.ExecutionUC)
	protected.Get("/checklists/templates", cl.ListTemplates)
	protected.Post("/checklists/templates", cl.CreateTemplate)
	protected.Get("/checklists/templates/:id", cl.GetTemplate)
	protected.Put("/checklists/templates/:id", cl.UpdateTemplate)
	protected.Delete("/checklists/templates/:id", cl.DeleteTemplate)
	protected.Get("/checklists/templates/:id/items", cl.ListItems)
	protected.Post("/checklists/templates/:id/items", cl.AddItem)
	protected.Put("/checklists/templates/:id/items/:itemId", cl.UpdateItem)
	protected.Delete("/checklists/templates/:id/items/:itemId", cl.DeleteItem)
	protected.Get("/checklists/executions", cl.ListExecutions)
	protected.Post("/checklists/executions", cl.StartExecution)
	protected.Get("/checklists/executions/:id", cl.GetExecution)
	protected.Put("/checklists/executions/:id/items/:itemId", cl.ToggleItem)
	protected.Post("/checklists/executions/:id/complete", cl.CompleteExecution)

	users := NewUserHandler(deps.UserUC)
	protected.Get("/users/me", users.Me)
	protected.Get("/users", users.List)
	protected.Post("/users", RequireRole(entity.RoleAdmin), users.Create)
	protected.Get("/users/:id", users.GetByID)
	protected.Put("/users/:id", RequireRole(entity.RoleAdmin), users.Update)

	companies := NewCompanyHandler(deps.CompanyUC)
	protected.Get("/companies/me", companies.Mine)
	protected.Put("/companies/me", RequireRole(entity.RoleAdmin), companies.UpdateMine)

	dashboard := NewDashboardHandler(deps.DashboardUC)
	protected.Get("/dashboard/summary", dashboard.GetSummary)

	// Operador de plataforma
	master := protected.Group("/master", RequireMaster())
	master.Get("/companies", companies.List)
	master.Post("/companies", companies.Create)
	master.Get("/companies/:id", companies.GetByID)
	master.Put("/companies/:id", companies.Update)
	master.Delete("/companies/:id", companies.Deactivate)
	master.Put("/users/:id/company", users.AssignCompany)
	master.Get("/products/:id", products.GetAny)

	superAdmin := protected.Group("/super-admin", RequireMaster())
	superAdmin.Get("/overview", dashboard.Overview)
}
