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
	"github.com/jhoicas/Consignacion-api/internal/application/analytics"
	"github.com/jhoicas/Consignacion-api/internal/application/consignment"
	"github.com/jhoicas/Consignacion-api/internal/application/inventory"
	"github.com/jhoicas/Consignacion-api/internal/application/sales"
	"github.com/jhoicas/Consignacion-api/internal/infrastructure/cache"
	"github.com/jhoicas/Consignacion-api/internal/infrastructure/telemetry"
	httpRouter "github.com/jhoicas/Consignacion-api/internal/interfaces/http"
	"github.com/jhoicas/Consignacion-api/pkg/config"
	"github.com/jhoicas/Consignacion-api/pkg/logger"
)

const (
	version     = "0.1.0"
	swaggerFile = "./docs/swagger.json"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.StorageDriver).
		Msg("iniciando aplicación")
	if cfg.JWT.Secret == "" {
		log.Warn().Msg("JWT_SECRET vacío: todas las rutas /api responderán 401")
	}

	ctx := context.Background()
	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:       cfg.Telemetry.Enabled,
		Endpoint:      cfg.Telemetry.Endpoint,
		Insecure:      cfg.Telemetry.Insecure,
		SamplingRatio: cfg.Telemetry.SamplingRatio,
		ServiceName:   cfg.App.Name,
		Version:       version,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("telemetría")
	}
	closers = append(closers, func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Error().Err(err).Msg("cerrar telemetría")
		}
	})

	store, closeStore, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	closers = append(closers, closeStore)

	// Caché de reportes cerrados: Redis si responde, si no no-op.
	reportCache := analytics.ReportCache(cache.NoopReportCache{})
	if cfg.Redis.Enabled() {
		redisCache := cache.NewRedisReportCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := redisCache.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no disponible, caché desactivada")
			_ = redisCache.Close()
		} else {
			reportCache = redisCache
			closers = append(closers, func() { _ = redisCache.Close() })
			log.Info().Str("addr", cfg.Redis.Addr).Msg("caché de reportes: redis")
		}
	}

	ledgerUC := inventory.NewRegisterMovementUseCase(store.tx, store.variants, store.movements, log)
	reportUC := analytics.NewFinancialReportUseCase(store.reports, reportCache, cfg.Redis.ReportTTL(), time.UTC, log)
	salesUC := sales.NewSaleUseCase(store.tx, ledgerUC, store.sales, reportUC, log)
	balanceUC := consignment.NewBalanceUseCase(store.tx, store.owners, store.sales, store.adjustments, store.settlements, log)

	if store.seed != nil {
		if err := store.seed(ctx, ledgerUC); err != nil {
			log.Fatal().Err(err).Msg("datos de demostración")
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs (solo si se generó docs/swagger.json)
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Consignación API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		Ledger:      ledgerUC,
		Sales:       salesUC,
		Consignment: balanceUC,
		Reports:     reportUC,
		JWTSecret:   cfg.JWT.Secret,
		ServiceName: cfg.App.Name,
		Log:         log,
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
