package repository

import (
	"context"

	"mqk-dashboard/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AddressRepository reads and bulk-loads the administrative hierarchy.
// Lookups by an unknown parent return an empty slice, not an error.
type AddressRepository interface {
	WithTx(tx *gorm.DB) AddressRepository
	ListProvinces(ctx context.Context) ([]model.AddressUnit, error)
	ListRegencies(ctx context.Context, provinceID uint) ([]model.AddressUnit, error)
	ListDistricts(ctx context.Context, regencyID uint) ([]model.AddressUnit, error)
	ListVillages(ctx context.Context, districtID uint) ([]model.AddressUnit, error)

	FindProvinceByCode(ctx context.Context, code string) (*model.Province, error)
	FindRegencyByFullCode(ctx context.Context, fullCode string) (*model.Regency, error)
	FindDistrictByFullCode(ctx context.Context, fullCode string) (*model.District, error)

	UpsertProvince(ctx context.Context, p *model.Province) error
	UpsertRegency(ctx context.Context, r *model.Regency) error
	UpsertDistrict(ctx context.Context, d *model.District) error
	UpsertVillage(ctx context.Context, v *model.Village) error
}

type addressRepo struct {
	db *gorm.DB
}

func NewAddressRepo(db *gorm.DB) AddressRepository {
	return &addressRepo{db}
}

func (r *addressRepo) WithTx(tx *gorm.DB) AddressRepository {
	return &addressRepo{tx}
}

func (r *addressRepo) ListProvinces(ctx context.Context) ([]model.AddressUnit, error) {
	units := []model.AddressUnit{}
	err := r.db.WithContext(ctx).Model(&model.Province{}).
		Select("id, code, code AS full_code, name").
		Order("name ASC").
		Scan(&units).Error
	return units, err
}

func (r *addressRepo) ListRegencies(ctx context.Context, provinceID uint) ([]model.AddressUnit, error) {
	units := []model.AddressUnit{}
	err := r.db.WithContext(ctx).Model(&model.Regency{}).
		Select("id, code, full_code, name").
		Where("province_id = ?", provinceID).
		Order("name ASC").
		Scan(&units).Error
	return units, err
}

func (r *addressRepo) ListDistricts(ctx context.Context, regencyID uint) ([]model.AddressUnit, error) {
	units := []model.AddressUnit{}
	err := r.db.WithContext(ctx).Model(&model.District{}).
		Select("id, code, full_code, name").
		Where("regency_id = ?", regencyID).
		Order("name ASC").
		Scan(&units).Error
	return units, err
}

func (r *addressRepo) ListVillages(ctx context.Context, districtID uint) ([]model.AddressUnit, error) {
	units := []model.AddressUnit{}
	err := r.db.WithContext(ctx).Model(&model.Village{}).
		Select("id, code, full_code, postal_code, name").
		Where("district_id = ?", districtID).
		Order("name ASC").
		Scan(&units).Error
	return units, err
}

func (r *addressRepo) FindProvinceByCode(ctx context.Context, code string) (*model.Province, error) {
	var p model.Province
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *addressRepo) FindRegencyByFullCode(ctx context.Context, fullCode string) (*model.Regency, error) {
	var reg model.Regency
	if err := r.db.WithContext(ctx).Where("full_code = ?", fullCode).First(&reg).Error; err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *addressRepo) FindDistrictByFullCode(ctx context.Context, fullCode string) (*model.District, error) {
	var d model.District
	if err := r.db.WithContext(ctx).Where("full_code = ?", fullCode).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *addressRepo) UpsertProvince(ctx context.Context, p *model.Province) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"name"}),
	}).Create(p).Error
}

func (r *addressRepo) UpsertRegency(ctx context.Context, reg *model.Regency) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "full_code"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "code", "province_id"}),
	}).Create(reg).Error
}

func (r *addressRepo) UpsertDistrict(ctx context.Context, d *model.District) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "full_code"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "code", "regency_id"}),
	}).Create(d).Error
}

func (r *addressRepo) UpsertVillage(ctx context.Context, v *model.Village) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "full_code"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "code", "postal_code", "district_id"}),
	}).Create(v).Error
}
