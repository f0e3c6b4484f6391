package repository

import (
	"context"
	"errors"

	"mqk-dashboard/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RegionRepository interface {
	FindAll(ctx context.Context) ([]model.Region, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Region, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Region, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, region *model.Region) error
	SeedDefaults(ctx context.Context) error
}

type regionRepo struct {
	db *gorm.DB
}

func NewRegionRepo(db *gorm.DB) RegionRepository {
	return &regionRepo{db}
}

func (r *regionRepo) FindAll(ctx context.Context) ([]model.Region, error) {
	var regions []model.Region
	err := r.db.WithContext(ctx).Order("name ASC").Find(&regions).Error
	return regions, err
}

func (r *regionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Region, error) {
	var region model.Region
	if err := r.db.WithContext(ctx).First(&region, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &region, nil
}

func (r *regionRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Region, error) {
	var regions []model.Region
	if len(ids) == 0 {
		return regions, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&regions).Error
	return regions, err
}

func (r *regionRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Region{}).Where("name = ?", name).Count(&count).Error
	return count > 0, err
}

func (r *regionRepo) Create(ctx context.Context, region *model.Region) error {
	return r.db.WithContext(ctx).Create(region).Error
}

// SeedDefaults inserts the operational territories that are not present yet.
func (r *regionRepo) SeedDefaults(ctx context.Context) error {
	db := r.db.WithContext(ctx)
	for _, region := range model.DefaultRegions {
		var existing model.Region
		err := db.Where("name = ?", region.Name).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			region.CreatedBy = "system"
			if err := db.Create(&region).Error; err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}
