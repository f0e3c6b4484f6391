package seed

import (
	"context"
	"errors"
	"fmt"

	"mqk-dashboard/internal/config"
	"mqk-dashboard/internal/model"
	"mqk-dashboard/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Defaults creates the permission catalog, the default roles, the operational
// regions and the initial admin account. Every step is idempotent.
func Defaults(ctx context.Context, db *gorm.DB, cfg *config.Config, log *zap.Logger) error {
	permRepo := repository.NewPermissionRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	regionRepo := repository.NewRegionRepo(db)
	userRepo := repository.NewUserRepo(db)

	// 1. Seed permissions first
	if err := permRepo.SeedDefaults(ctx); err != nil {
		return fmt.Errorf("seed permissions: %w", err)
	}

	// 2. Seed roles with their permission sets
	if err := roleRepo.SeedDefaults(ctx); err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}

	// 3. Seed operational regions
	if err := regionRepo.SeedDefaults(ctx); err != nil {
		return fmt.Errorf("seed regions: %w", err)
	}

	// 4. Create default admin user with the admin role
	_, err := userRepo.FindByUsername(ctx, cfg.Seed.AdminUsername)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("find admin: %w", err)
	}

	adminRole, err := roleRepo.FindByName(ctx, model.RoleAdmin)
	if err != nil {
		return fmt.Errorf("find admin role: %w", err)
	}

	admin := &model.User{
		Name:     "Administrator",
		Username: cfg.Seed.AdminUsername,
	}
	admin.CreatedBy = "system"
	admin.UpdatedBy = "system"
	admin.RotateTokenVersion()
	if err := admin.SetPassword(cfg.Seed.AdminPassword, cfg.Security.BcryptCost); err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := userRepo.WithTx(tx)
		if err := txRepo.Create(ctx, admin); err != nil {
			return err
		}
		return txRepo.ReplaceRole(ctx, admin.ID, adminRole.ID)
	})
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	log.Info("admin user created", zap.String("username", admin.Username), zap.String("role", model.RoleAdmin))
	return nil
}
