package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"

	"github.com/ladespensa/despensa-api/internal/application/analytics"
	"github.com/ladespensa/despensa-api/internal/application/auth"
	"github.com/ladespensa/despensa-api/internal/application/inventory"
	"github.com/ladespensa/despensa-api/internal/application/ports"
	"github.com/ladespensa/despensa-api/internal/application/usecase"
	"github.com/ladespensa/despensa-api/internal/domain/repository"
	infraai "github.com/ladespensa/despensa-api/internal/infrastructure/ai"
	"github.com/ladespensa/despensa-api/internal/infrastructure/cache"
	"github.com/ladespensa/despensa-api/internal/infrastructure/excel"
	"github.com/ladespensa/despensa-api/internal/infrastructure/memory"
	infrapdf "github.com/ladespensa/despensa-api/internal/infrastructure/pdf"
	"github.com/ladespensa/despensa-api/internal/infrastructure/postgres"
	"github.com/ladespensa/despensa-api/internal/infrastructure/storage"
	httpRouter "github.com/ladespensa/despensa-api/internal/interfaces/http"
	"github.com/ladespensa/despensa-api/pkg/config"
	"github.com/ladespensa/despensa-api/pkg/logger"
)

// repos repositorios del driver elegido (memoria o PostgreSQL).
type repos struct {
	users     repository.UserRepository
	products  repository.ProductRepository
	lots      repository.LotRepository
	tickets   repository.TicketRepository
	suppliers repository.SupplierRepository
	payables  repository.PayableRepository
	movements repository.StockMovementRepository
	prices    repository.PriceChangeRepository
	analytics repository.AnalyticsRepository
	tx        ports.TxRunner
	db        httpRouter.Pinger
}

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
		Str("storage", cfg.App.StorageDriver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var r repos
	switch cfg.App.StorageDriver {
	case "memory":
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		r = memoryRepos(memory.New())
	default:
		if cfg.DB.AutoMigrations {
			if err := postgres.Migrate(cfg.DB.ConnectionString()); err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
		}
		pool, err := postgres.NewPool(ctx, cfg.DB, log.Named("postgres"))
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		r = postgresRepos(postgres.NewStore(pool))
	}

	// Caché de recursos: sin REDIS_ADDR las lecturas van directo al repositorio.
	var resourceCache ports.Cache
	var cachePinger httpRouter.Pinger
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = rdb.Close() }()
		rc := cache.NewRedisCache(rdb, cfg.Redis.TTL, cfg.App.Name, log.Named("cache"))
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no responde; se sigue con carga directa")
		}
		resourceCache = rc
		cachePinger = rc
	}

	files, err := storage.NewLocalStorage(cfg.Upload.Dir, cfg.Upload.BaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("directorio de imágenes")
	}

	var llm ports.LLMService
	if cfg.AI.AnthropicAPIKey != "" {
		llm = infraai.NewAnthropicService(cfg.AI.AnthropicAPIKey, cfg.AI.AnthropicModel, cfg.AI.Timeout)
	} else {
		log.Warn().Msg("ANTHROPIC_API_KEY vacío: el asistente virtual queda deshabilitado")
	}

	days := cfg.Inventory.ExpiringSoonDays
	authUC := auth.NewAuthUseCase(r.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		AccessTTL:  time.Duration(cfg.JWT.Expiration) * time.Minute,
		RefreshTTL: time.Duration(cfg.JWT.RefreshExpiration) * time.Hour,
		Issuer:     cfg.JWT.Issuer,
	})
	productUC := usecase.NewProductUseCase(r.tx, r.products, r.prices, r.movements, files, resourceCache, days, cfg.Upload.MaxBytes)
	lotUC := inventory.NewLotUseCase(r.tx, r.products, r.lots, resourceCache, days)
	saleUC := inventory.NewSaleUseCase(r.tx, r.tickets, resourceCache)
	supplierUC := usecase.NewSupplierUseCase(r.suppliers, r.products, resourceCache)
	payableUC := usecase.NewPayableUseCase(r.payables, resourceCache)
	statsUC := analytics.NewStatsUseCase(r.analytics, lotUC, days)
	reportUC := usecase.NewReportUseCase(productUC, saleUC, supplierUC, payableUC, statsUC,
		infrapdf.NewMarotoReportRenderer(cfg.App.Name), excel.NewReportRenderer())
	assistantUC := usecase.NewAssistantUseCase(llm, productUC)

	if cfg.App.AdminEmail != "" {
		created, err := authUC.EnsureAdmin(ctx, cfg.App.AdminEmail, cfg.App.AdminPassword, "Administrador")
		if err != nil {
			log.Fatal().Err(err).Msg("usuario administrador inicial")
		}
		if created {
			log.Info().Str("email", cfg.App.AdminEmail).Msg("usuario administrador creado")
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    int(cfg.Upload.MaxBytes) + 1<<20,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.TrimSpace(cfg.HTTP.CORSOrigins),
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))
	app.Use(httpRouter.RequestLogger(log.Named("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat("./docs/swagger.json"); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "La Despensa API",
		}))
	}

	var metrics *httpRouter.Metrics
	if cfg.Metrics.Enabled {
		metrics = httpRouter.NewMetrics()
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:       authUC,
		ProductUC:    productUC,
		LotUC:        lotUC,
		SaleUC:       saleUC,
		SupplierUC:   supplierUC,
		PayableUC:    payableUC,
		StatsUC:      statsUC,
		ReportUC:     reportUC,
		AssistantUC:  assistantUC,
		Log:          log.Named("http"),
		Metrics:      metrics,
		Health:       httpRouter.NewHealthHandler(cfg.App.Name, r.db, cachePinger),
		JWTSecret:    cfg.JWT.Secret,
		SecureCookie: cfg.App.Env == "production",
		UploadDir:    cfg.Upload.Dir,
		UploadURL:    cfg.Upload.BaseURL,
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

func memoryRepos(st *memory.Store) repos {
	return repos{
		users:     st.Users(),
		products:  st.Products(),
		lots:      st.Lots(),
		tickets:   st.Tickets(),
		suppliers: st.Suppliers(),
		payables:  st.Payables(),
		movements: st.Movements(),
		prices:    st.PriceChanges(),
		analytics: st.Analytics(),
		tx:        st.TxRunner(),
		db:        st,
	}
}

func postgresRepos(st *postgres.Store) repos {
	return repos{
		users:     st.Users(),
		products:  st.Products(),
		lots:      st.Lots(),
		tickets:   st.Tickets(),
		suppliers: st.Suppliers(),
		payables:  st.Payables(),
		movements: st.Movements(),
		prices:    st.PriceChanges(),
		analytics: st.Analytics(),
		tx:        st.TxRunner(),
		db:        st,
	}
}
