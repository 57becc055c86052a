package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/jhoicas/dukastock-api/docs"
	"github.com/jhoicas/dukastock-api/internal/application/access"
	"github.com/jhoicas/dukastock-api/internal/application/auth"
	"github.com/jhoicas/dukastock-api/internal/application/inventory"
	"github.com/jhoicas/dukastock-api/internal/application/lending"
	"github.com/jhoicas/dukastock-api/internal/application/sales"
	"github.com/jhoicas/dukastock-api/internal/application/usecase"
	"github.com/jhoicas/dukastock-api/internal/infrastructure/cache"
	"github.com/jhoicas/dukastock-api/internal/infrastructure/persistence"
	httpRouter "github.com/jhoicas/dukastock-api/internal/interfaces/http"
	"github.com/jhoicas/dukastock-api/internal/scheduler"
	"github.com/jhoicas/dukastock-api/pkg/config"
	"github.com/jhoicas/dukastock-api/pkg/logger"
)

// @title                       DukaStock API
// @version                     1.0
// @description                 Inventario por pares, préstamos entre dukas y punto de venta.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store_driver", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	be, err := persistence.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("persistencia")
	}
	defer be.Close()

	// Idempotency-Key del punto de venta: Redis si está configurado.
	var idem sales.IdempotencyStore = cache.NoopIdempotencyStore{}
	if cfg.Redis.Addr != "" {
		redisStore := cache.NewRedisIdempotencyStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.IdempotencyTTL)
		if err := redisStore.Ping(ctx); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		defer redisStore.Close()
		idem = redisStore
	} else {
		log.Warn().Msg("REDIS_ADDR vacío: Idempotency-Key deshabilitado")
	}

	guard := access.NewGuard(be.Users)
	authUC := auth.NewAuthUseCase(be.Users, be.Businesses, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	businessUC := usecase.NewBusinessUseCase(guard, be.Businesses)
	storeUC := usecase.NewStoreUseCase(guard, be.Stores)
	userUC := usecase.NewUserUseCase(guard, be.Users, be.Stores)
	itemUC := inventory.NewItemUseCase(guard, be.Items, be.Stores, be.Tx, log)
	auditUC := inventory.NewAuditUseCase(guard, be.Items, be.Lends, cfg.Audit.LendOverdueDays, log)
	lendingUC := lending.NewUseCase(guard, be.Tx, be.Items, be.Lends, be.Stores, be.Users, log)
	salesUC := sales.NewUseCase(guard, be.Tx, be.Sales, be.Returns, idem, log)

	sched := scheduler.New(cfg.Audit.Cron, auditUC, log)
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Str("cron", cfg.Audit.Cron).Msg("AUDIT_CRON inválido")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "DukaStock API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": cfg.Store.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:     authUC,
		BusinessUC: businessUC,
		StoreUC:    storeUC,
		UserUC:     userUC,
		ItemUC:     itemUC,
		AuditUC:    auditUC,
		LendingUC:  lendingUC,
		SalesUC:    salesUC,
		JWTSecret:  cfg.JWT.Secret,
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
	sched.Stop()

	log.Info().Msg("aplicación detenida")
}
