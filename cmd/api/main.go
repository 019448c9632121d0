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
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/messaging"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// backend repositorios y transacciones del almacén elegido.
type backend struct {
	tx        inventory.TxRunner
	locations repository.StockLocationRepository
	movements repository.StockMovementRepository
	catalog   repository.CatalogRepository
	close     func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Stock.Store).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var store backend
	switch cfg.Stock.Store {
	case config.StoreMemory:
		log.Warn().Msg("almacén en memoria: los datos se pierden al reiniciar y el catálogo acepta cualquier id")
		mem := memory.NewStore(memory.Options{LockTimeout: cfg.Stock.LockTimeout, OpenCatalog: true})
		store = backend{tx: mem, locations: mem.Locations(), movements: mem.Movements(), catalog: mem.Catalog(), close: func() {}}
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		if cfg.DB.AutoMigrate {
			if err := postgres.EnsureSchema(ctx, pool); err != nil {
				log.Fatal().Err(err).Msg("aplicar esquema")
			}
			log.Info().Msg("esquema aplicado")
		}
		store = backend{
			tx:        postgres.NewTxRunner(pool, cfg.Stock.LockTimeout),
			locations: postgres.NewStockLocationRepository(pool),
			movements: postgres.NewStockMovementRepository(pool),
			catalog:   postgres.NewCatalogRepository(pool),
			close:     pool.Close,
		}
	}
	defer store.close()

	// Caché de saldos (opcional)
	var balanceCache inventory.BalanceCache
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no disponible, se continúa sin caché")
		} else {
			balanceCache = cache.NewRedisBalanceCache(rdb, cfg.Redis.TTL)
		}
	}

	// Publicación de movimientos confirmados (opcional)
	var publisher inventory.MovementPublisher
	if cfg.RabbitMQ.URL != "" {
		conn, ch, err := messaging.SetupConn(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, log.Component("rabbitmq"))
		if err != nil {
			log.Warn().Err(err).Msg("rabbitmq no disponible, se continúa sin publicar movimientos")
		} else {
			defer conn.Close()
			defer ch.Close()
			publisher = messaging.NewPublisher(ch, cfg.RabbitMQ.Exchange)
		}
	}

	registerMovementUC := inventory.NewRegisterMovementUseCase(
		store.tx, store.catalog, publisher, balanceCache, log.Component("inventory"),
	)
	queryUC := inventory.NewQueryUseCase(
		store.locations, store.movements, store.catalog, balanceCache, log.Component("inventory.queries"),
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Clinic Stock Ledger API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": cfg.Stock.Store})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		RegisterMovement: registerMovementUC,
		Queries:          queryUC,
		JWTSecret:        cfg.JWT.Secret,
		JWTIssuer:        cfg.JWT.Issuer,
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
