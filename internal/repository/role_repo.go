package repository

import (
	"context"
	"errors"

	"mqk-dashboard/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrStaleVersion = errors.New("row version changed")

type RoleRepository interface {
	WithTx(tx *gorm.DB) RoleRepository
	FindAll(ctx context.Context) ([]model.Role, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Role, error)
	FindByName(ctx context.Context, name string) (*model.Role, error)
	Create(ctx context.Context, role *model.Role) error
	Update(ctx context.Context, role *model.Role, expectedVersion int) error
	ReplacePermissions(ctx context.Context, roleID uuid.UUID, permissionIDs []uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountUsers(ctx context.Context, roleID uuid.UUID) (int64, error)
	Count(ctx context.Context) (int64, error)
	SeedDefaults(ctx context.Context) error
}

type roleRepo struct {
	db *gorm.DB
}

func NewRoleRepo(db *gorm.DB) RoleRepository {
	return &roleRepo{db: db}
}

func (r *roleRepo) WithTx(tx *gorm.DB) RoleRepository {
	return &roleRepo{db: tx}
}

func (r *roleRepo) FindAll(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	err := r.db.WithContext(ctx).Preload("Permissions", orderPermissions).Order("name ASC").Find(&roles).Error
	return roles, err
}

func (r *roleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Role, error) {
	var role model.Role
	err := r.db.WithContext(ctx).Preload("Permissions", orderPermissions).First(&role, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepo) FindByName(ctx context.Context, name string) (*model.Role, error) {
	var role model.Role
	err := r.db.WithContext(ctx).Preload("Permissions", orderPermissions).Where("name = ?", name).First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// Create inserts the role row only; links are written by ReplacePermissions.
func (r *roleRepo) Create(ctx context.Context, role *model.Role) error {
	return r.db.WithContext(ctx).Omit("Permissions").Create(role).Error
}

// Update writes name and version only if the stored version still equals
// expectedVersion; otherwise it returns ErrStaleVersion.
func (r *roleRepo) Update(ctx context.Context, role *model.Role, expectedVersion int) error {
	res := r.db.WithContext(ctx).Model(&model.Role{}).
		Where("id = ? AND version = ?", role.ID, expectedVersion).
		Updates(map[string]interface{}{
			"name":       role.Name,
			"version":    role.Version,
			"updated_by": role.UpdatedBy,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleVersion
	}
	return nil
}

// ReplacePermissions removes every link of the role and recreates the given set.
func (r *roleRepo) ReplacePermissions(ctx context.Context, roleID uuid.UUID, permissionIDs []uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("role_id = ?", roleID).Delete(&model.RolePermission{}).Error; err != nil {
		return err
	}
	if len(permissionIDs) == 0 {
		return nil
	}
	links := make([]model.RolePermission, len(permissionIDs))
	for i, id := range permissionIDs {
		links[i] = model.RolePermission{RoleID: roleID, PermissionID: id}
	}
	return db.Create(&links).Error
}

func (r *roleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("role_id = ?", id).Delete(&model.RolePermission{}).Error; err != nil {
		return err
	}
	return db.Delete(&model.Role{}, "id = ?", id).Error
}

func (r *roleRepo) CountUsers(ctx context.Context, roleID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.UserRole{}).Where("role_id = ?", roleID).Count(&count).Error
	return count, err
}

func (r *roleRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Role{}).Count(&count).Error
	return count, err
}

// SeedDefaults creates the default roles with their permission sets when missing.
func (r *roleRepo) SeedDefaults(ctx context.Context) error {
	db := r.db.WithContext(ctx)
	for name, permNames := range model.DefaultRolePermissions {
		var existing model.Role
		err := db.Where("name = ?", name).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var perms []model.Permission
		q := db.Model(&model.Permission{})
		if permNames != nil {
			q = q.Where("name IN ?", permNames)
		}
		if err := q.Find(&perms).Error; err != nil {
			return err
		}

		role := model.Role{Name: name, Version: 1}
		role.CreatedBy = "system"
		ids := make([]uuid.UUID, len(perms))
		for i, p := range perms {
			ids[i] = p.ID
		}
		err = db.Transaction(func(tx *gorm.DB) error {
			txRepo := r.WithTx(tx)
			if err := txRepo.Create(ctx, &role); err != nil {
				return err
			}
			return txRepo.ReplacePermissions(ctx, role.ID, ids)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func orderPermissions(db *gorm.DB) *gorm.DB {
	return db.Order("permissions.label ASC").Order("permissions.name ASC")
}
