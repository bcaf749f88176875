// @title           POS API
// @version         1.0
// @description     API de punto de venta: catálogo, inventario y ventas.
// @BasePath        /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
// @description                 Bearer <token>
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.opentelemetry.io/otel/trace"

	_ "github.com/jhoicas/pos-api/docs"
	"github.com/jhoicas/pos-api/internal/application/auth"
	"github.com/jhoicas/pos-api/internal/application/events"
	"github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/application/sales"
	"github.com/jhoicas/pos-api/internal/application/usecase"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/internal/infrastructure/export"
	"github.com/jhoicas/pos-api/internal/infrastructure/memory"
	"github.com/jhoicas/pos-api/internal/infrastructure/messaging"
	infrapdf "github.com/jhoicas/pos-api/internal/infrastructure/pdf"
	"github.com/jhoicas/pos-api/internal/infrastructure/postgres"
	"github.com/jhoicas/pos-api/internal/infrastructure/ws"
	httpRouter "github.com/jhoicas/pos-api/internal/interfaces/http"
	"github.com/jhoicas/pos-api/pkg/config"
	"github.com/jhoicas/pos-api/pkg/logger"
	"github.com/jhoicas/pos-api/pkg/telemetry"
)

// storage repositorios y unidad de trabajo del driver elegido.
type storage struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	users      repository.UserRepository
	movements  repository.StockMovementRepository
	sales      repository.SaleRepository
	txRunner   inventory.TxRunner
	close      func()
}

func main() {
	os.Exit(run())
}

// run arranca la API y devuelve el código de salida. Los defer se ejecutan siempre antes de salir.
func run() int {
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Config{}).Error().Err(err).Msg("cargar configuración")
		return 1
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ── Telemetría ──
	tp, shutdownTracing, err := telemetry.SetupTracingSDK(ctx, telemetry.Config{
		ServiceName:    cfg.App.Name,
		ServiceVersion: cfg.App.Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		AuthHeader:     cfg.Telemetry.AuthHeader,
		Insecure:       cfg.Telemetry.Insecure,
	})
	if err != nil {
		log.Error().Err(err).Msg("configurar trazas")
		return 1
	}

	// ── Almacenamiento ──
	store, err := openStorage(ctx, cfg.DB, log.Component("storage"))
	if err != nil {
		log.Error().Err(err).Msg("almacenamiento")
		_ = shutdownTracing(context.Background())
		return 1
	}
	defer store.close()

	// ── Eventos: WebSocket + Kafka ──
	hub := ws.NewHub(log.Component("ws"))
	go hub.Run(ctx)

	publishers := []events.Publisher{hub}
	var kafkaPub *messaging.KafkaPublisher
	if cfg.Kafka.Enabled() {
		kafkaPub, err = newKafkaPublisher(cfg.Kafka, tp)
		if err != nil {
			log.Error().Err(err).Msg("kafka")
			_ = shutdownTracing(context.Background())
			return 1
		}
		publishers = append(publishers, kafkaPub)
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("publicando eventos en Kafka")
	}
	dispatcher := events.NewDispatcher(log.Component("events"), publishers...)

	// ── Casos de uso ──
	ledger := inventory.NewLedger(store.products)
	registerMovementUC := inventory.NewRegisterMovementUseCase(store.txRunner, ledger, store.movements, dispatcher)
	createSaleUC := sales.NewCreateSaleUseCase(store.txRunner, ledger, dispatcher, sales.Policy{
		AllowUnderpayment: cfg.Sales.AllowUnderpayment,
		ValidateCashier:   cfg.Sales.ValidateCashier,
	})
	salesQueryUC := sales.NewSalesQueryUseCase(
		store.sales, store.products, store.users,
		infrapdf.NewReceiptGenerator(), export.NewSalesXMLExporter(), cfg.App.StoreName,
	)
	productUC := usecase.NewProductUseCase(store.products, store.categories, store.txRunner, ledger, dispatcher)
	categoryUC := usecase.NewCategoryUseCase(store.categories, store.products)
	userUC := usecase.NewUserUseCase(store.users)
	authUC := auth.NewAuthUseCase(store.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	created, err := authUC.EnsureAdmin(ctx, cfg.Bootstrap.AdminUsername, cfg.Bootstrap.AdminPassword)
	if err != nil {
		log.Error().Err(err).Msg("crear administrador inicial")
		if kafkaPub != nil {
			_ = kafkaPub.Close()
		}
		_ = shutdownTracing(context.Background())
		return 1
	}
	if created {
		log.Info().Str("username", cfg.Bootstrap.AdminUsername).Msg("administrador inicial creado")
	}

	// ── HTTP ──
	httpLog := log.Component("http")
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler(httpLog),
	})
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "POS API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "ws_clients": hub.Clients()})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:           authUC,
		ProductUC:        productUC,
		CategoryUC:       categoryUC,
		UserUC:           userUC,
		RegisterMovement: registerMovementUC,
		CreateSale:       createSaleUC,
		SalesQuery:       salesQueryUC,
		Hub:              hub,
		JWTSecret:        cfg.JWT.Secret,
		Log:              httpLog,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if kafkaPub != nil {
		if err := kafkaPub.Close(); err != nil {
			log.Error().Err(err).Msg("cerrar writer de Kafka")
		}
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado de trazas")
	}

	log.Info().Msg("aplicación detenida")
	return 0
}

func openStorage(ctx context.Context, cfg config.DBConfig, log *logger.Logger) (*storage, error) {
	if cfg.Driver == config.DriverMemory {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		s := memory.NewStore()
		return &storage{
			products:   s.Products(),
			categories: s.Categories(),
			users:      s.Users(),
			movements:  s.Movements(),
			sales:      s.Sales(),
			txRunner:   s,
			close:      func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		applied, err := postgres.Migrate(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, err
		}
		if len(applied) > 0 {
			log.Info().Strs("migrations", applied).Msg("migraciones aplicadas")
		}
	}
	return &storage{
		products:   postgres.NewProductRepository(pool),
		categories: postgres.NewCategoryRepository(pool),
		users:      postgres.NewUserRepository(pool),
		movements:  postgres.NewStockMovementRepository(pool),
		sales:      postgres.NewSaleRepository(pool),
		txRunner:   postgres.NewTxRunner(pool),
		close:      pool.Close,
	}, nil
}

func newKafkaPublisher(cfg config.KafkaConfig, tp trace.TracerProvider) (*messaging.KafkaPublisher, error) {
	return messaging.NewKafkaPublisher(messaging.KafkaConfig{
		Brokers:      cfg.Brokers,
		Topic:        cfg.Topic,
		ClientID:     cfg.ClientID,
		WriteTimeout: time.Duration(cfg.WriteTimeoutMs) * time.Millisecond,
	}, tp)
}
