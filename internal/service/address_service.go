package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"mqk-dashboard/internal/cache"
	"mqk-dashboard/internal/cascade"
	"mqk-dashboard/internal/model"
	"mqk-dashboard/internal/repository"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// Workbook sheet names for ImportWorkbook
const (
	SheetProvinces = "provinces"
	SheetRegencies = "regencies"
	SheetDistricts = "districts"
	SheetVillages  = "villages"
)

type AddressService interface {
	cascade.Source
	ListProvinces(ctx context.Context) ([]model.AddressUnit, error)
	ListRegencies(ctx context.Context, provinceID uint) ([]model.AddressUnit, error)
	ListDistricts(ctx context.Context, regencyID uint) ([]model.AddressUnit, error)
	ListVillages(ctx context.Context, districtID uint) ([]model.AddressUnit, error)
	VerifyChain(ctx context.Context, addr model.Address) error
	ImportWorkbook(ctx context.Context, r io.Reader) (*ImportResult, error)
}

// ImportResult counts upserted rows per level and lists refused rows.
type ImportResult struct {
	Provinces int      `json:"provinces"`
	Regencies int      `json:"regencies"`
	Districts int      `json:"districts"`
	Villages  int      `json:"villages"`
	Skipped   []string `json:"skipped"`
}

type addressService struct {
	db    *gorm.DB
	repo  repository.AddressRepository
	cache *cache.TagCache
	reval cache.Revalidator
	obs   *Observer
}

func NewAddressService(db *gorm.DB, repo repository.AddressRepository, c *cache.TagCache, reval cache.Revalidator, obs *Observer) AddressService {
	return &addressService{
		db:    db,
		repo:  repo,
		cache: c,
		reval: reval,
		obs:   obs,
	}
}

func (s *addressService) ListProvinces(ctx context.Context) ([]model.AddressUnit, error) {
	return s.list(ctx, "address:provinces", func() ([]model.AddressUnit, error) {
		return s.repo.ListProvinces(ctx)
	})
}

func (s *addressService) ListRegencies(ctx context.Context, provinceID uint) ([]model.AddressUnit, error) {
	if provinceID == 0 {
		return []model.AddressUnit{}, nil
	}
	return s.list(ctx, fmt.Sprintf("address:regencies:%d", provinceID), func() ([]model.AddressUnit, error) {
		return s.repo.ListRegencies(ctx, provinceID)
	})
}

func (s *addressService) ListDistricts(ctx context.Context, regencyID uint) ([]model.AddressUnit, error) {
	if regencyID == 0 {
		return []model.AddressUnit{}, nil
	}
	return s.list(ctx, fmt.Sprintf("address:districts:%d", regencyID), func() ([]model.AddressUnit, error) {
		return s.repo.ListDistricts(ctx, regencyID)
	})
}

func (s *addressService) ListVillages(ctx context.Context, districtID uint) ([]model.AddressUnit, error) {
	if districtID == 0 {
		return []model.AddressUnit{}, nil
	}
	return s.list(ctx, fmt.Sprintf("address:villages:%d", districtID), func() ([]model.AddressUnit, error) {
		return s.repo.ListVillages(ctx, districtID)
	})
}

func (s *addressService) list(ctx context.Context, key string, load func() ([]model.AddressUnit, error)) ([]model.AddressUnit, error) {
	units, err := cache.Fetch(s.cache, s.obs.metrics, key, []string{TagAddress}, load)
	if err != nil {
		return nil, s.obs.fail("listAddress", err, "")
	}
	return units, nil
}

// Children lets a cascade.Controller walk the hierarchy through the cached listings.
func (s *addressService) Children(ctx context.Context, level cascade.Level, parentID uint) ([]cascade.Option, error) {
	var (
		units []model.AddressUnit
		err   error
	)
	switch level {
	case cascade.Province:
		units, err = s.ListProvinces(ctx)
	case cascade.Regency:
		units, err = s.ListRegencies(ctx, parentID)
	case cascade.District:
		units, err = s.ListDistricts(ctx, parentID)
	case cascade.Village:
		units, err = s.ListVillages(ctx, parentID)
	default:
		return nil, fmt.Errorf("unknown level %s", level)
	}
	if err != nil {
		return nil, err
	}
	opts := make([]cascade.Option, len(units))
	for i, u := range units {
		opts[i] = cascade.Option{ID: u.ID, Name: u.Name}
	}
	return opts, nil
}

// VerifyChain replays a submitted address through a fresh controller so a
// stale child id from a previous parent selection is rejected.
func (s *addressService) VerifyChain(ctx context.Context, addr model.Address) error {
	ctrl, err := cascade.NewController(ctx, s)
	if err != nil {
		return err
	}
	steps := []struct {
		level cascade.Level
		id    uint
	}{
		{cascade.Province, addr.ProvinceID},
		{cascade.Regency, addr.RegencyID},
		{cascade.District, addr.DistrictID},
		{cascade.Village, addr.VillageID},
	}
	for _, step := range steps {
		if step.id == 0 {
			return ValidationError(fmt.Sprintf("%s is required", step.level))
		}
		err := ctrl.Select(ctx, step.level, step.id)
		var notAnOption *cascade.NotAnOptionError
		if errors.As(err, &notAnOption) {
			if step.level == cascade.Province {
				return ValidationError("province does not exist")
			}
			return ValidationError(fmt.Sprintf("%s does not belong to the selected %s", step.level, step.level-1))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// ImportWorkbook upserts the hierarchy from an xlsx workbook with the sheets
// provinces(code, name), regencies(province_code, code, full_code, name),
// districts(regency_full_code, code, full_code, name) and
// villages(district_full_code, code, full_code, postal_code, name).
// The first row of each sheet is a header. Rows whose parent cannot be
// resolved are skipped and reported; reruns are idempotent on the codes.
func (s *addressService) ImportWorkbook(ctx context.Context, r io.Reader) (*ImportResult, error) {
	const op = "importAddressWorkbook"
	result, err := s.importWorkbook(ctx, r)
	if err != nil {
		return nil, s.obs.fail(op, err, "")
	}
	s.obs.ok(op)
	s.reval.Revalidate(ctx, TagAddress)
	return result, nil
}

func (s *addressService) importWorkbook(ctx context.Context, r io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, ValidationError("file is not a valid xlsx workbook")
	}
	defer f.Close()

	sheets := map[string][][]string{}
	for _, name := range []string{SheetProvinces, SheetRegencies, SheetDistricts, SheetVillages} {
		rows, err := f.GetRows(name)
		if err != nil {
			// Missing sheets are allowed so a workbook can carry a single level.
			continue
		}
		if len(rows) > 0 {
			rows = rows[1:]
		}
		sheets[name] = rows
	}

	result := &ImportResult{Skipped: []string{}}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		imp := &importer{ctx: ctx, repo: s.repo.WithTx(tx), result: result}
		return imp.run(sheets)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

type importer struct {
	ctx    context.Context
	repo   repository.AddressRepository
	result *ImportResult

	provinces map[string]uint
	regencies map[string]uint
	districts map[string]uint
}

func (imp *importer) run(sheets map[string][][]string) error {
	imp.provinces = map[string]uint{}
	imp.regencies = map[string]uint{}
	imp.districts = map[string]uint{}

	for i, row := range sheets[SheetProvinces] {
		code, name := cell(row, 0), cell(row, 1)
		if code == "" || name == "" {
			imp.skip(SheetProvinces, i, "code and name are required")
			continue
		}
		if err := imp.repo.UpsertProvince(imp.ctx, &model.Province{Code: code, Name: name}); err != nil {
			return err
		}
		imp.result.Provinces++
	}

	for i, row := range sheets[SheetRegencies] {
		parent, err := imp.provinceID(cell(row, 0))
		if err != nil {
			return err
		}
		code, fullCode, name := cell(row, 1), cell(row, 2), cell(row, 3)
		if parent == 0 || fullCode == "" || name == "" {
			imp.skip(SheetRegencies, i, "unknown province or missing fields")
			continue
		}
		if err := imp.repo.UpsertRegency(imp.ctx, &model.Regency{ProvinceID: parent, Code: code, FullCode: fullCode, Name: name}); err != nil {
			return err
		}
		imp.result.Regencies++
	}

	for i, row := range sheets[SheetDistricts] {
		parent, err := imp.regencyID(cell(row, 0))
		if err != nil {
			return err
		}
		code, fullCode, name := cell(row, 1), cell(row, 2), cell(row, 3)
		if parent == 0 || fullCode == "" || name == "" {
			imp.skip(SheetDistricts, i, "unknown regency or missing fields")
			continue
		}
		if err := imp.repo.UpsertDistrict(imp.ctx, &model.District{RegencyID: parent, Code: code, FullCode: fullCode, Name: name}); err != nil {
			return err
		}
		imp.result.Districts++
	}

	for i, row := range sheets[SheetVillages] {
		parent, err := imp.districtID(cell(row, 0))
		if err != nil {
			return err
		}
		code, fullCode, postal, name := cell(row, 1), cell(row, 2), cell(row, 3), cell(row, 4)
		if parent == 0 || fullCode == "" || name == "" {
			imp.skip(SheetVillages, i, "unknown district or missing fields")
			continue
		}
		v := &model.Village{DistrictID: parent, Code: code, FullCode: fullCode, PostalCode: postal, Name: name}
		if err := imp.repo.UpsertVillage(imp.ctx, v); err != nil {
			return err
		}
		imp.result.Villages++
	}
	return nil
}

func (imp *importer) provinceID(code string) (uint, error) {
	return memo(imp.provinces, code, func() (uint, error) {
		p, err := imp.repo.FindProvinceByCode(imp.ctx, code)
		if err != nil {
			return 0, err
		}
		return p.ID, nil
	})
}

func (imp *importer) regencyID(fullCode string) (uint, error) {
	return memo(imp.regencies, fullCode, func() (uint, error) {
		r, err := imp.repo.FindRegencyByFullCode(imp.ctx, fullCode)
		if err != nil {
			return 0, err
		}
		return r.ID, nil
	})
}

func (imp *importer) districtID(fullCode string) (uint, error) {
	return memo(imp.districts, fullCode, func() (uint, error) {
		d, err := imp.repo.FindDistrictByFullCode(imp.ctx, fullCode)
		if err != nil {
			return 0, err
		}
		return d.ID, nil
	})
}

func (imp *importer) skip(sheet string, index int, reason string) {
	// +2: header row and 1-based numbering
	imp.result.Skipped = append(imp.result.Skipped, fmt.Sprintf("%s row %d: %s", sheet, index+2, reason))
}

// memo resolves a code once; an unknown code resolves to 0 without error.
func memo(seen map[string]uint, code string, find func() (uint, error)) (uint, error) {
	if code == "" {
		return 0, nil
	}
	if id, ok := seen[code]; ok {
		return id, nil
	}
	id, err := find()
	if errors.Is(err, gorm.ErrRecordNotFound) {
		id, err = 0, nil
	}
	if err != nil {
		return 0, err
	}
	seen[code] = id
	return id, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
