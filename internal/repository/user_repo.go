package repository

import (
	"context"
	"strings"
	"time"

	"mqk-dashboard/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserFilter narrows the user listing. Zero values mean no constraint.
type UserFilter struct {
	RoleIDs []uuid.UUID
	Search  string
	Page    int
	Limit   int
}

type UserRepository interface {
	WithTx(tx *gorm.DB) UserRepository
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	ExistsByUsername(ctx context.Context, username string, exceptID uuid.UUID) (bool, error)
	Create(ctx context.Context, user *model.User) error
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	ReplaceRole(ctx context.Context, userID, roleID uuid.UUID) error
	ReplaceRegions(ctx context.Context, userID uuid.UUID, regionIDs []uuid.UUID) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, hashedPassword, tokenVersion string) error
	UpdateLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error
	GetTokenVersion(ctx context.Context, userID uuid.UUID) (string, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter UserFilter) ([]model.User, int64, error)
	Count(ctx context.Context) (int64, error)
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db}
}

func (r *userRepo) WithTx(tx *gorm.DB) UserRepository {
	return &userRepo{tx}
}

func (r *userRepo) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Roles").
		Preload("Roles.Permissions").
		Preload("Regions", func(db *gorm.DB) *gorm.DB { return db.Order("regions.name ASC") })
}

func (r *userRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := r.preloaded(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.preloaded(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) ExistsByUsername(ctx context.Context, username string, exceptID uuid.UUID) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&model.User{}).Where("username = ?", username)
	if exceptID != uuid.Nil {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts the user row only; links are written by ReplaceRole and ReplaceRegions.
func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Omit("Roles", "Regions").Create(user).Error
}

func (r *userRepo) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(fields).Error
}

func (r *userRepo) ReplaceRole(ctx context.Context, userID, roleID uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("user_id = ?", userID).Delete(&model.UserRole{}).Error; err != nil {
		return err
	}
	return db.Create(&model.UserRole{UserID: userID, RoleID: roleID}).Error
}

func (r *userRepo) ReplaceRegions(ctx context.Context, userID uuid.UUID, regionIDs []uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("user_id = ?", userID).Delete(&model.UserRegion{}).Error; err != nil {
		return err
	}
	if len(regionIDs) == 0 {
		return nil
	}
	links := make([]model.UserRegion, len(regionIDs))
	for i, id := range regionIDs {
		links[i] = model.UserRegion{UserID: userID, RegionID: id}
	}
	return db.Create(&links).Error
}

func (r *userRepo) UpdatePassword(ctx context.Context, userID uuid.UUID, hashedPassword, tokenVersion string) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{
			"password":      hashedPassword,
			"token_version": tokenVersion,
		}).Error
}

func (r *userRepo) UpdateLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Update("last_login_at", at).Error
}

func (r *userRepo) GetTokenVersion(ctx context.Context, userID uuid.UUID) (string, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Select("id", "token_version").First(&user, "id = ?", userID).Error; err != nil {
		return "", err
	}
	return user.TokenVersion, nil
}

func (r *userRepo) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("user_id = ?", id).Delete(&model.UserRole{}).Error; err != nil {
		return err
	}
	if err := db.Where("user_id = ?", id).Delete(&model.UserRegion{}).Error; err != nil {
		return err
	}
	return db.Delete(&model.User{}, "id = ?", id).Error
}

// List applies the same filter scope to the count and to the page query.
func (r *userRepo) List(ctx context.Context, filter UserFilter) ([]model.User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Scopes(userFilterScope(filter)).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []model.User
	err := r.preloaded(ctx).
		Scopes(userFilterScope(filter), Paginate(filter.Page, filter.Limit)).
		Order("users.created_at DESC").
		Order("users.id ASC").
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).Count(&count).Error
	return count, err
}

func userFilterScope(filter UserFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if search := strings.TrimSpace(filter.Search); search != "" {
			like := ContainsPattern(search)
			db = db.Where(`(LOWER(users.name) LIKE ? ESCAPE '\' OR LOWER(users.username) LIKE ? ESCAPE '\')`, like, like)
		}
		if len(filter.RoleIDs) > 0 {
			db = db.Where("users.id IN (SELECT user_id FROM user_roles WHERE role_id IN ?)", filter.RoleIDs)
		}
		return db
	}
}
