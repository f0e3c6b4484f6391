package main

import (
	"context"
	"flag"
	"log"
	"os"

	"mqk-dashboard/internal/cache"
	"mqk-dashboard/internal/config"
	"mqk-dashboard/internal/metrics"
	"mqk-dashboard/internal/model"
	"mqk-dashboard/internal/repository"
	"mqk-dashboard/internal/service"
	"mqk-dashboard/pkg/database"
	"mqk-dashboard/pkg/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// import-address loads a provinces/regencies/districts/villages workbook into
// the address hierarchy. Running it twice is safe.
func main() {
	path := flag.String("file", "", "path to the address xlsx workbook")
	flag.Parse()
	if *path == "" {
		log.Fatal("-file is required")
	}

	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}
	cfg := config.Load()

	zlog, err := logger.New(cfg.Log.Level, "console", "import-address")
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zlog.Sync()

	// 2. Setup Database
	db, err := database.Connect(&cfg.Database, zlog)
	if err != nil {
		zlog.Fatal("database connection failed", zap.Error(err))
	}
	if err := model.Migrate(db); err != nil {
		zlog.Fatal("migration failed", zap.Error(err))
	}

	// 3. Publish the revalidation to running API instances when Redis is configured
	ctx := context.Background()
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		zlog.Warn("redis unavailable, running instances keep cached addresses until TTL", zap.Error(err))
	}
	m := metrics.New()
	bus := cache.NewBus(nil, redisClient, cfg.Redis.Channel, zlog, m)

	addressService := service.NewAddressService(db, repository.NewAddressRepo(db), nil, bus, service.NewObserver(zlog, m))

	// 4. Import
	f, err := os.Open(*path)
	if err != nil {
		zlog.Fatal("cannot open workbook", zap.String("file", *path), zap.Error(err))
	}
	defer f.Close()

	res, err := addressService.ImportWorkbook(ctx, f)
	if err != nil {
		zlog.Fatal("import failed", zap.Error(err))
	}
	for _, row := range res.Skipped {
		zlog.Warn("row skipped", zap.String("row", row))
	}
	zlog.Info("address workbook imported",
		zap.Int("provinces", res.Provinces),
		zap.Int("regencies", res.Regencies),
		zap.Int("districts", res.Districts),
		zap.Int("villages", res.Villages),
	)
}
