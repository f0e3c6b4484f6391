package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"mqk-dashboard/internal/cache"
	"mqk-dashboard/internal/config"
	"mqk-dashboard/internal/handler"
	"mqk-dashboard/internal/metrics"
	"mqk-dashboard/internal/model"
	"mqk-dashboard/internal/repository"
	"mqk-dashboard/internal/seed"
	"mqk-dashboard/internal/service"
	"mqk-dashboard/internal/ws"
	"mqk-dashboard/pkg/database"
	"mqk-dashboard/pkg/jwt"
	"mqk-dashboard/pkg/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}
	cfg := config.Load()

	zlog, err := logger.New(cfg.Log.Level, cfg.Log.Format, "mqk-dashboard")
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zlog.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Setup Database
	db, err := database.Connect(&cfg.Database, zlog)
	if err != nil {
		zlog.Fatal("database connection failed", zap.Error(err))
	}
	if err := model.Migrate(db); err != nil {
		zlog.Fatal("migration failed", zap.Error(err))
	}

	// 3. Seed permissions, roles, regions and admin user
	if err := seed.Defaults(ctx, db, cfg, zlog); err != nil {
		zlog.Fatal("seeding failed", zap.Error(err))
	}

	// 4. Cache, revalidation bus and WebSocket hub
	m := metrics.New()
	tagCache := cache.NewTagCache(cfg.Cache.Size, cfg.Cache.TTL)
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		zlog.Warn("redis unavailable, revalidation stays local", zap.Error(err))
	}
	bus := cache.NewBus(tagCache, redisClient, cfg.Redis.Channel, zlog, m)

	wsHub := ws.NewHub(zlog)
	go wsHub.Run()
	bus.Subscribe(wsHub.OnRevalidate)
	go bus.Listen(ctx)

	// 5. Dependency Injection (Wiring Layers)
	permRepo := repository.NewPermissionRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	userRepo := repository.NewUserRepo(db)
	regionRepo := repository.NewRegionRepo(db)
	addressRepo := repository.NewAddressRepo(db)
	registrationRepo := repository.NewRegistrationRepo(db)
	statsRepo := repository.NewStatsRepo(db)

	tokens := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.TokenTTL(), cfg.JWT.Issuer)
	obs := service.NewObserver(zlog, m)

	authService := service.NewAuthService(userRepo, tokens, zlog)
	roleService := service.NewRoleService(db, roleRepo, permRepo, tagCache, bus, obs)
	userService := service.NewUserService(db, userRepo, roleRepo, regionRepo, cfg.Security.BcryptCost, bus, obs)
	regionService := service.NewRegionService(regionRepo, tagCache, bus, obs)
	addressService := service.NewAddressService(db, addressRepo, tagCache, bus, obs)
	registrationService := service.NewRegistrationService(registrationRepo, regionRepo, addressService, bus, obs)
	dashService := service.NewDashboardService(statsRepo, obs)

	if path := cfg.Seed.AddressWorkbook; path != "" {
		importAddressWorkbook(ctx, addressService, path, zlog)
	}

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: cfg.Server.AppName,
	})

	// Middleware
	app.Use(fiberlogger.New()) // Logging request
	app.Use(recover.New())     // Panic recovery
	app.Use(cors.New())        // CORS

	// 7. Routes
	handler.RegisterRoutes(app, handler.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		Role:         handler.NewRoleHandler(roleService),
		User:         handler.NewUserHandler(userService),
		Address:      handler.NewAddressHandler(addressService),
		Region:       handler.NewRegionHandler(regionService),
		Registration: handler.NewRegistrationHandler(registrationService),
		Dashboard:    handler.NewDashboardHandler(dashService),
	}, authService, m)

	app.Get("/metrics", m.Handler())

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			zlog.Panic("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down server")
	cancel()
	if err := app.Shutdown(); err != nil {
		zlog.Fatal("server forced to shutdown", zap.Error(err))
	}
	if redisClient != nil {
		redisClient.Close()
	}

	zlog.Info("server exited")
}

func importAddressWorkbook(ctx context.Context, addressService service.AddressService, path string, zlog *zap.Logger) {
	f, err := os.Open(path)
	if err != nil {
		zlog.Warn("address workbook not readable", zap.String("path", path), zap.Error(err))
		return
	}
	defer f.Close()

	res, err := addressService.ImportWorkbook(ctx, f)
	if err != nil {
		zlog.Warn("address workbook import failed", zap.String("path", path), zap.Error(err))
		return
	}
	zlog.Info("address workbook imported",
		zap.Int("provinces", res.Provinces),
		zap.Int("regencies", res.Regencies),
		zap.Int("districts", res.Districts),
		zap.Int("villages", res.Villages),
		zap.Int("skipped", len(res.Skipped)),
	)
}
