package repository

import (
	"context"

	"mqk-dashboard/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StatsRepository interface {
	GetDashboardStats(ctx context.Context, scopeRegionIDs []uuid.UUID) (*DashboardStats, error)
	GetRegistrationsByRegion(ctx context.Context, scopeRegionIDs []uuid.UUID) ([]RegionCount, error)
}

// RegionCount untuk chart data
type RegionCount struct {
	RegionID   uuid.UUID `json:"region_id"`
	RegionName string    `json:"region_name"`
	Total      int64     `json:"total"`
}

// DashboardStats untuk overview stats
type DashboardStats struct {
	TotalUsers         int64 `json:"total_users"`
	TotalRoles         int64 `json:"total_roles"`
	TotalRegions       int64 `json:"total_regions"`
	TotalRegistrations int64 `json:"total_registrations"`
}

type statsRepo struct {
	db *gorm.DB
}

func NewStatsRepo(db *gorm.DB) StatsRepository {
	return &statsRepo{db}
}

// GetDashboardStats counts entities. Registration and region totals honor the
// region scope; nil scope means every region.
func (r *statsRepo) GetDashboardStats(ctx context.Context, scopeRegionIDs []uuid.UUID) (*DashboardStats, error) {
	var stats DashboardStats
	db := r.db.WithContext(ctx)

	if err := db.Model(&model.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Role{}).Count(&stats.TotalRoles).Error; err != nil {
		return nil, err
	}

	regions := db.Model(&model.Region{})
	registrations := db.Model(&model.Registration{})
	if scopeRegionIDs != nil {
		regions = regions.Where("id IN ?", nonEmptyIDs(scopeRegionIDs))
		registrations = registrations.Where("region_id IN ?", nonEmptyIDs(scopeRegionIDs))
	}
	if err := regions.Count(&stats.TotalRegions).Error; err != nil {
		return nil, err
	}
	if err := registrations.Count(&stats.TotalRegistrations).Error; err != nil {
		return nil, err
	}

	return &stats, nil
}

func (r *statsRepo) GetRegistrationsByRegion(ctx context.Context, scopeRegionIDs []uuid.UUID) ([]RegionCount, error) {
	results := []RegionCount{}

	q := r.db.WithContext(ctx).Table("regions").
		Select("regions.id, regions.name, COUNT(registrations.id) AS total").
		Joins("LEFT JOIN registrations ON registrations.region_id = regions.id").
		Group("regions.id, regions.name").
		Order("regions.name ASC")
	if scopeRegionIDs != nil {
		q = q.Where("regions.id IN ?", nonEmptyIDs(scopeRegionIDs))
	}

	rows, err := q.Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data RegionCount
		if err := rows.Scan(&data.RegionID, &data.RegionName, &data.Total); err != nil {
			return nil, err
		}
		results = append(results, data)
	}

	return results, rows.Err()
}
