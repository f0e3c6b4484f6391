package repository

import (
	"context"
	"strings"

	"mqk-dashboard/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RegistrationFilter narrows registration listings. ScopeRegionIDs is the
// caller's region scope; nil means unrestricted.
type RegistrationFilter struct {
	Search         string
	RegionID       uuid.UUID
	ScopeRegionIDs []uuid.UUID
	Page           int
	Limit          int
}

type RegistrationRepository interface {
	Create(ctx context.Context, reg *model.Registration) error
	ExistsByNIK(ctx context.Context, nik string) (bool, error)
	List(ctx context.Context, filter RegistrationFilter) ([]model.Registration, int64, error)
	FindAll(ctx context.Context, filter RegistrationFilter) ([]model.Registration, error)
}

type registrationRepo struct {
	db *gorm.DB
}

func NewRegistrationRepo(db *gorm.DB) RegistrationRepository {
	return &registrationRepo{db}
}

func (r *registrationRepo) Create(ctx context.Context, reg *model.Registration) error {
	return r.db.WithContext(ctx).Omit("Region").Create(reg).Error
}

func (r *registrationRepo) ExistsByNIK(ctx context.Context, nik string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Registration{}).Where("nik = ?", nik).Count(&count).Error
	return count > 0, err
}

func (r *registrationRepo) List(ctx context.Context, filter RegistrationFilter) ([]model.Registration, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Registration{}).Scopes(registrationScope(filter)).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var regs []model.Registration
	err := r.db.WithContext(ctx).Preload("Region").
		Scopes(registrationScope(filter), Paginate(filter.Page, filter.Limit)).
		Order("registrations.created_at DESC").
		Find(&regs).Error
	if err != nil {
		return nil, 0, err
	}
	return regs, total, nil
}

// FindAll returns every matching row, ignoring pagination. Used by export.
func (r *registrationRepo) FindAll(ctx context.Context, filter RegistrationFilter) ([]model.Registration, error) {
	var regs []model.Registration
	err := r.db.WithContext(ctx).Preload("Region").
		Scopes(registrationScope(filter)).
		Order("registrations.created_at ASC").
		Find(&regs).Error
	return regs, err
}

func registrationScope(filter RegistrationFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if filter.ScopeRegionIDs != nil {
			db = db.Where("registrations.region_id IN ?", nonEmptyIDs(filter.ScopeRegionIDs))
		}
		if filter.RegionID != uuid.Nil {
			db = db.Where("registrations.region_id = ?", filter.RegionID)
		}
		if search := strings.TrimSpace(filter.Search); search != "" {
			like := ContainsPattern(search)
			db = db.Where(`(LOWER(registrations.name) LIKE ? ESCAPE '\' OR registrations.nik LIKE ? ESCAPE '\' OR LOWER(registrations.registration_no) LIKE ? ESCAPE '\')`, like, like, like)
		}
		return db
	}
}

// nonEmptyIDs keeps "IN ?" valid SQL when a restricted scope has no ids.
func nonEmptyIDs(ids []uuid.UUID) []uuid.UUID {
	if len(ids) == 0 {
		return []uuid.UUID{uuid.Nil}
	}
	return ids
}
