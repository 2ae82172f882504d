package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stockeasy/stockeasy-api/docs"
	appanalytics "github.com/stockeasy/stockeasy-api/internal/application/analytics"
	"github.com/stockeasy/stockeasy-api/internal/application/auth"
	"github.com/stockeasy/stockeasy-api/internal/application/checklist"
	"github.com/stockeasy/stockeasy-api/internal/application/inventory"
	"github.com/stockeasy/stockeasy-api/internal/application/usecase"
	"github.com/stockeasy/stockeasy-api/internal/infrastructure/cache"
	"github.com/stockeasy/stockeasy-api/internal/infrastructure/identity"
	"github.com/stockeasy/stockeasy-api/internal/infrastructure/metrics"
	infrapdf "github.com/stockeasy/stockeasy-api/internal/infrastructure/pdf"
	"github.com/stockeasy/stockeasy-api/internal/infrastructure/postgres"
	httpRouter "github.com/stockeasy/stockeasy-api/internal/interfaces/http"
	"github.com/stockeasy/stockeasy-api/pkg/config"
	"github.com/stockeasy/stockeasy-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
		Name:  cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("auth_provider", cfg.Auth.Provider).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	companyRepo := postgres.NewCompanyRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	supplierRepo := postgres.NewSupplierRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	movementRepo := postgres.NewStockMovementRepository(pool)
	templateRepo := postgres.NewChecklistTemplateRepository(pool)
	executionRepo := postgres.NewChecklistExecutionRepository(pool)
	dashboardRepo := postgres.NewDashboardRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Verificación de credenciales: JWT propio (HS256) o proveedor OIDC.
	var verifier auth.IdentityVerifier = auth.NewJWTVerifier(cfg.JWT.Secret)
	if cfg.Auth.Provider == config.AuthProviderOIDC {
		oidcVerifier, err := identity.NewOIDCVerifier(ctx, cfg.Auth.OIDCIssuer, cfg.Auth.OIDCClientID)
		if err != nil {
			log.Fatal().Err(err).Str("issuer", cfg.Auth.OIDCIssuer).Msg("descubrimiento OIDC")
		}
		verifier = oidcVerifier
	}
	var resolver auth.PrincipalResolver = auth.NewTokenResolver(verifier, userRepo, companyRepo)
	var principalCache usecase.PrincipalCache
	if cfg.Auth.CacheTTL > 0 {
		cached := auth.NewCachedResolver(resolver, cfg.Auth.CacheSize, cfg.Auth.CacheTTL)
		resolver, principalCache = cached, cached
	}

	// Caché del dashboard en Redis: opcional.
	var summaryCache appanalytics.SummaryCache
	if cfg.Redis.Addr != "" {
		client, err := cache.NewClient(ctx, cfg.Redis.Addr)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no disponible, dashboard sin caché")
		} else {
			defer client.Close()
			summaryCache = cache.NewSummaryCache(client)
		}
	}

	m := metrics.New()

	// Swagger UI solo fuera de producción.
	swaggerFile := "./docs/swagger.json"
	if cfg.App.IsProduction() {
		swaggerFile = ""
	}

	app := httpRouter.NewApp(httpRouter.RouterDeps{
		AppName:     cfg.App.Name,
		Log:         log,
		Resolver:    resolver,
		Metrics:     m,
		SwaggerFile: swaggerFile,
		OpenAPIDoc:  docs.SwaggerInfo.ReadDoc(),

		AuthUC: auth.NewAuthUseCase(txRunner, userRepo, auth.JWTConfig{
			Secret:     cfg.JWT.Secret,
			ExpMinutes: cfg.JWT.Expiration,
			Issuer:     cfg.JWT.Issuer,
		}),
		CompanyUC:        usecase.NewCompanyUseCase(companyRepo, principalCache),
		UserUC:           usecase.NewUserUseCase(userRepo, companyRepo, principalCache),
		ProductUC:        usecase.NewProductUseCase(txRunner, productRepo, supplierRepo, categoryRepo, companyRepo),
		SupplierUC:       usecase.NewSupplierUseCase(supplierRepo, companyRepo),
		CategoryUC:       usecase.NewCategoryUseCase(categoryRepo, companyRepo),
		RegisterMovement: inventory.NewRegisterMovementUseCase(txRunner, movementRepo, m),
		Replenishment:    inventory.NewReplenishmentUseCase(productRepo, supplierRepo),
		Reports:          inventory.NewReportUseCase(productRepo, companyRepo, infrapdf.NewStockReportRenderer()),
		TemplateUC:       checklist.NewTemplateUseCase(txRunner, templateRepo, companyRepo),
		ExecutionUC:      checklist.NewExecutionUseCase(txRunner, templateRepo, executionRepo),
		DashboardUC:      appanalytics.NewDashboardUseCase(dashboardRepo, summaryCache, cfg.Dashboard.CacheTTL),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
