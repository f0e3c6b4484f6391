package main

import (
	"context"
	"flag"
	"log"

	"mqk-dashboard/internal/config"
	"mqk-dashboard/internal/repository"
	"mqk-dashboard/pkg/database"
	"mqk-dashboard/pkg/logger"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	username := flag.String("username", "admin", "account to reset")
	password := flag.String("password", "", "new password (min 6 characters)")
	flag.Parse()

	if len(*password) < 6 || len(*password) > 72 {
		log.Fatal("-password must be between 6 and 72 characters")
	}

	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}
	cfg := config.Load()

	zlog, err := logger.New(cfg.Log.Level, "console", "reset-password")
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zlog.Sync()

	// 2. Setup Database
	db, err := database.Connect(&cfg.Database, zlog)
	if err != nil {
		zlog.Fatal("database connection failed", zap.Error(err))
	}
	ctx := context.Background()
	userRepo := repository.NewUserRepo(db)

	// 3. Find user
	user, err := userRepo.FindByUsername(ctx, *username)
	if err != nil {
		zlog.Fatal("user not found", zap.String("username", *username), zap.Error(err))
	}

	// 4. Hash new password
	hashed, err := bcrypt.GenerateFromPassword([]byte(*password), cfg.Security.BcryptCost)
	if err != nil {
		zlog.Fatal("failed to hash password", zap.Error(err))
	}

	// 5. Update and revoke existing sessions
	if err := userRepo.UpdatePassword(ctx, user.ID, string(hashed), uuid.NewString()); err != nil {
		zlog.Fatal("failed to update password", zap.Error(err))
	}

	zlog.Info("password reset, existing sessions revoked", zap.String("username", user.Username))
}
