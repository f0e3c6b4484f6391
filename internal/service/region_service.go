package service

import (
	"context"
	"errors"
	"strings"

	"mqk-dashboard/internal/authz"
	"mqk-dashboard/internal/cache"
	"mqk-dashboard/internal/model"
	"mqk-dashboard/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RegionService interface {
	CreateRegion(ctx context.Context, actor *authz.Session, req *CreateRegionRequest) (*model.Region, error)
	ListRegions(ctx context.Context) ([]model.Region, error)
}

// CreateRegionRequest accepts an optional client-chosen id.
type CreateRegionRequest struct {
	ID       *uuid.UUID `json:"id,omitempty" validate:"omitempty,uuid_required"`
	Name     string     `json:"name" validate:"required,notblank,max=100"`
	Coverage []string   `json:"coverage" validate:"dive,notblank"`
}

type regionService struct {
	regionRepo repository.RegionRepository
	cache      *cache.TagCache
	reval      cache.Revalidator
	obs        *Observer
}

func NewRegionService(regionRepo repository.RegionRepository, c *cache.TagCache, reval cache.Revalidator, obs *Observer) RegionService {
	return &regionService{
		regionRepo: regionRepo,
		cache:      c,
		reval:      reval,
		obs:        obs,
	}
}

func (s *regionService) CreateRegion(ctx context.Context, actor *authz.Session, req *CreateRegionRequest) (*model.Region, error) {
	const op = "createRegion"
	region, err := s.createRegion(ctx, actor, req)
	if err != nil {
		return nil, s.obs.fail(op, err, "region id or name already exists")
	}
	s.obs.ok(op)
	s.reval.Revalidate(ctx, TagRegions)
	return region, nil
}

func (s *regionService) createRegion(ctx context.Context, actor *authz.Session, req *CreateRegionRequest) (*model.Region, error) {
	if err := authz.Require(actor, model.PermRegionCreate); err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	region := &model.Region{Name: strings.TrimSpace(req.Name)}
	if req.ID != nil {
		if _, err := s.regionRepo.FindByID(ctx, *req.ID); err == nil {
			return nil, DuplicateError("a region with this id already exists")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		region.ID = *req.ID
	}

	exists, err := s.regionRepo.ExistsByName(ctx, region.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, DuplicateError("a region with this name already exists")
	}

	region.Coverage = make(model.StringList, 0, len(req.Coverage))
	for _, c := range req.Coverage {
		region.Coverage = append(region.Coverage, strings.TrimSpace(c))
	}
	region.CreatedBy = actor.Username
	region.UpdatedBy = actor.Username

	if err := s.regionRepo.Create(ctx, region); err != nil {
		return nil, err
	}
	return region, nil
}

// ListRegions is public: the registration form offers every korwil.
func (s *regionService) ListRegions(ctx context.Context) ([]model.Region, error) {
	regions, err := cache.Fetch(s.cache, s.obs.metrics, "regions:list", []string{TagRegions}, func() ([]model.Region, error) {
		return s.regionRepo.FindAll(ctx)
	})
	if err != nil {
		return nil, s.obs.fail("listRegions", err, "")
	}
	return regions, nil
}
