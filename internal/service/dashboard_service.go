package service

import (
	"context"

	"mqk-dashboard/internal/authz"
	"mqk-dashboard/internal/model"
	"mqk-dashboard/internal/repository"
)

type DashboardService interface {
	Stats(ctx context.Context, actor *authz.Session) (*DashboardStats, error)
}

type DashboardStats struct {
	repository.DashboardStats
	RegistrationsByRegion []repository.RegionCount `json:"registrations_by_region"`
}

type dashboardService struct {
	statsRepo repository.StatsRepository
	obs       *Observer
}

func NewDashboardService(statsRepo repository.StatsRepository, obs *Observer) DashboardService {
	return &dashboardService{statsRepo: statsRepo, obs: obs}
}

// Stats totals are restricted to the actor's region scope where they concern regions.
func (s *dashboardService) Stats(ctx context.Context, actor *authz.Session) (*DashboardStats, error) {
	const op = "dashboardStats"
	if err := authz.Require(actor, model.PermDashboardView); err != nil {
		return nil, s.obs.fail(op, err, "")
	}
	scope := authz.Scope(actor).IDs()

	totals, err := s.statsRepo.GetDashboardStats(ctx, scope)
	if err != nil {
		return nil, s.obs.fail(op, err, "")
	}
	byRegion, err := s.statsRepo.GetRegistrationsByRegion(ctx, scope)
	if err != nil {
		return nil, s.obs.fail(op, err, "")
	}
	return &DashboardStats{DashboardStats: *totals, RegistrationsByRegion: byRegion}, nil
}
