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
	"github.com/robfig/cron/v3"

	_ "github.com/stockerp/stockerp-api/docs"
	"github.com/stockerp/stockerp-api/internal/application/auth"
	appledger "github.com/stockerp/stockerp-api/internal/application/ledger"
	"github.com/stockerp/stockerp-api/internal/application/usecase"
	"github.com/stockerp/stockerp-api/internal/infrastructure/postgres"
	httpRouter "github.com/stockerp/stockerp-api/internal/interfaces/http"
	"github.com/stockerp/stockerp-api/pkg/config"
	"github.com/stockerp/stockerp-api/pkg/logger"
)

// @title           StockERP API
// @version         1.0
// @description     Backend de inventario con ledger de stock append-only y balances materializados.
// @BasePath        /
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	itemRepo := postgres.NewItemRepository(pool)
	locationRepo := postgres.NewLocationRepository(pool)
	balanceRepo := postgres.NewStockBalanceRepository(pool)
	ledgerRepo := postgres.NewStockLedgerRepository(pool)
	auditRepo := postgres.NewAuditLogRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	itemUC := usecase.NewItemUseCase(itemRepo, auditRepo, log)
	locationUC := usecase.NewLocationUseCase(locationRepo, auditRepo, log)
	userUC := usecase.NewUserUseCase(userRepo, auditRepo, log)
	auditUC := usecase.NewAuditUseCase(auditRepo)
	submitUC := appledger.NewSubmitMovementUseCase(
		txRunner, itemRepo, locationRepo, auditRepo, log,
		cfg.Inventory.AllowNegativeStock,
	)
	queryUC := appledger.NewStockQueryUseCase(balanceRepo, ledgerRepo, itemRepo, locationRepo)
	reconcileUC := appledger.NewReconcileUseCase(balanceRepo, txRunner, log)

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
		Title:    "StockERP API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		ItemUC:      itemUC,
		LocationUC:  locationUC,
		UserUC:      userUC,
		AuditUC:     auditUC,
		SubmitUC:    submitUC,
		QueryUC:     queryUC,
		ReconcileUC: reconcileUC,
		JWTSecret:   cfg.JWT.Secret,
		Log:         log,
	})

	// Reconciliación periódica de balances contra el ledger (solo verificación; la
	// reparación es una decisión de operador vía POST /api/inventory/stock/reconcile).
	var scheduler *cron.Cron
	if cfg.Inventory.ReconcileSchedule != "" {
		scheduler = cron.New()
		_, err := scheduler.AddFunc(cfg.Inventory.ReconcileSchedule, func() {
			reconcileUC.RunScheduled(context.Background())
		})
		if err != nil {
			log.Fatal().Err(err).Str("schedule", cfg.Inventory.ReconcileSchedule).Msg("programar reconciliación")
		}
		scheduler.Start()
		log.Info().Str("schedule", cfg.Inventory.ReconcileSchedule).Msg("reconciliación periódica programada")
	}

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	if scheduler != nil {
		scheduler.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
