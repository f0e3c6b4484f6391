package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"mqk-dashboard/internal/authz"
	"mqk-dashboard/internal/cache"
	"mqk-dashboard/internal/model"
	"mqk-dashboard/internal/repository"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const TagRegistrations = "registrations"

type RegistrationService interface {
	Register(ctx context.Context, req *RegisterRequest) (*model.Registration, error)
	List(ctx context.Context, actor *authz.Session, q RegistrationQuery) (*RegistrationPage, error)
	Export(ctx context.Context, actor *authz.Session, w io.Writer) error
}

type RegisterRequest struct {
	Name               string    `json:"name" validate:"required,notblank,max=255"`
	NIK                string    `json:"nik" validate:"required,numeric,len=16"`
	BirthPlace         string    `json:"birth_place" validate:"required,notblank,max=100"`
	BirthDate          string    `json:"birth_date" validate:"required,datetime=2006-01-02"`
	Gender             string    `json:"gender" validate:"required,oneof=L P"`
	Category           string    `json:"category" validate:"required,notblank,max=50"`
	ClassLevel         string    `json:"class_level" validate:"required,notblank,max=50"`
	InstitutionName    string    `json:"institution_name" validate:"required,notblank,max=255"`
	InstitutionAddress string    `json:"institution_address" validate:"required,notblank"`
	RegionID           uuid.UUID `json:"region_id" validate:"uuid_required"`
	ProvinceID         uint      `json:"province_id" validate:"required"`
	RegencyID          uint      `json:"regency_id" validate:"required"`
	DistrictID         uint      `json:"district_id" validate:"required"`
	VillageID          uint      `json:"village_id" validate:"required"`
	Address            string    `json:"address" validate:"required,notblank"`
	FatherName         string    `json:"father_name" validate:"required,notblank,max=255"`
	MotherName         string    `json:"mother_name" validate:"required,notblank,max=255"`
}

type RegistrationQuery struct {
	Search   string
	RegionID uuid.UUID
	Page     int
	Limit    int
}

type RegistrationPage struct {
	Registrations []model.Registration `json:"registrations"`
	Total         int64                `json:"total"`
	Page          int                  `json:"page"`
	Limit         int                  `json:"limit"`
	TotalPages    int                  `json:"total_pages"`
}

type registrationService struct {
	repo       repository.RegistrationRepository
	regionRepo repository.RegionRepository
	address    AddressService
	reval      cache.Revalidator
	obs        *Observer
	now        func() time.Time
}

func NewRegistrationService(repo repository.RegistrationRepository, regionRepo repository.RegionRepository, address AddressService, reval cache.Revalidator, obs *Observer) RegistrationService {
	return &registrationService{
		repo:       repo,
		regionRepo: regionRepo,
		address:    address,
		reval:      reval,
		obs:        obs,
		now:        time.Now,
	}
}

func (s *registrationService) Register(ctx context.Context, req *RegisterRequest) (*model.Registration, error) {
	const op = "register"
	reg, err := s.register(ctx, req)
	if err != nil {
		return nil, s.obs.fail(op, err, "this NIK is already registered")
	}
	s.obs.ok(op)
	s.reval.Revalidate(ctx, TagRegistrations)
	return reg, nil
}

func (s *registrationService) register(ctx context.Context, req *RegisterRequest) (*model.Registration, error) {
	// 1. Validate request
	if err := validate(req); err != nil {
		return nil, err
	}
	birthDate, _ := time.Parse("2006-01-02", req.BirthDate)

	// 2. Check if NIK already registered
	exists, err := s.repo.ExistsByNIK(ctx, req.NIK)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, DuplicateError("this NIK is already registered")
	}

	// 3. Korwil must exist
	if _, err := s.regionRepo.FindByID(ctx, req.RegionID); errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ValidationError("region does not exist")
	} else if err != nil {
		return nil, err
	}

	// 4. Re-derive the address chain server-side
	addr := model.Address{
		ProvinceID: req.ProvinceID,
		RegencyID:  req.RegencyID,
		DistrictID: req.DistrictID,
		VillageID:  req.VillageID,
	}
	if err := s.address.VerifyChain(ctx, addr); err != nil {
		return nil, err
	}

	// 5. Save
	no, err := s.registrationNo()
	if err != nil {
		return nil, err
	}
	reg := &model.Registration{
		RegistrationNo:     no,
		Name:               strings.TrimSpace(req.Name),
		NIK:                req.NIK,
		BirthPlace:         strings.TrimSpace(req.BirthPlace),
		BirthDate:          birthDate,
		Gender:             req.Gender,
		Category:           strings.TrimSpace(req.Category),
		ClassLevel:         strings.TrimSpace(req.ClassLevel),
		InstitutionName:    strings.TrimSpace(req.InstitutionName),
		InstitutionAddress: strings.TrimSpace(req.InstitutionAddress),
		RegionID:           req.RegionID,
		ProvinceID:         addr.ProvinceID,
		RegencyID:          addr.RegencyID,
		DistrictID:         addr.DistrictID,
		VillageID:          addr.VillageID,
		Address:            strings.TrimSpace(req.Address),
		FatherName:         strings.TrimSpace(req.FatherName),
		MotherName:         strings.TrimSpace(req.MotherName),
	}
	reg.CreatedBy = "public"
	if err := s.repo.Create(ctx, reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// registrationNo is MQK-<yyyymmdd>-<6 hex>.
func (s *registrationService) registrationNo() (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return fmt.Sprintf("MQK-%s-%s", s.now().Format("20060102"), strings.ToUpper(hex.EncodeToString(b))), nil
}

func (s *registrationService) List(ctx context.Context, actor *authz.Session, q RegistrationQuery) (*RegistrationPage, error) {
	const op = "listRegistrations"
	if err := authz.Require(actor, model.PermRegistrationView); err != nil {
		return nil, s.obs.fail(op, err, "")
	}

	page, limit := repository.NormalizePage(q.Page, q.Limit)
	regs, total, err := s.repo.List(ctx, repository.RegistrationFilter{
		Search:         q.Search,
		RegionID:       q.RegionID,
		ScopeRegionIDs: authz.Scope(actor).IDs(),
		Page:           page,
		Limit:          limit,
	})
	if err != nil {
		return nil, s.obs.fail(op, err, "")
	}
	if regs == nil {
		regs = []model.Registration{}
	}
	return &RegistrationPage{
		Registrations: regs,
		Total:         total,
		Page:          page,
		Limit:         limit,
		TotalPages:    repository.TotalPages(total, limit),
	}, nil
}

var registrationExportHeader = []string{
	"No. Pendaftaran", "Nama", "NIK", "Tempat Lahir", "Tanggal Lahir", "Jenis Kelamin",
	"Kategori", "Kelas", "Nama Lembaga", "Alamat Lembaga", "Korwil", "Alamat",
	"Nama Ayah", "Nama Ibu", "Tanggal Daftar",
}

// Export writes every registration within the actor's region scope as xlsx.
func (s *registrationService) Export(ctx context.Context, actor *authz.Session, w io.Writer) error {
	const op = "exportRegistrations"
	if err := s.export(ctx, actor, w); err != nil {
		return s.obs.fail(op, err, "")
	}
	s.obs.ok(op)
	return nil
}

func (s *registrationService) export(ctx context.Context, actor *authz.Session, w io.Writer) error {
	if err := authz.Require(actor, model.PermRegistrationExport); err != nil {
		return err
	}

	regs, err := s.repo.FindAll(ctx, repository.RegistrationFilter{ScopeRegionIDs: authz.Scope(actor).IDs()})
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Registrations"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetRow(sheet, "A1", &registrationExportHeader); err != nil {
		return err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(registrationExportHeader))
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}

	for i, r := range regs {
		region := ""
		if r.Region != nil {
			region = r.Region.Name
		}
		row := []interface{}{
			r.RegistrationNo, r.Name, r.NIK, r.BirthPlace, r.BirthDate.Format("2006-01-02"), r.Gender,
			r.Category, r.ClassLevel, r.InstitutionName, r.InstitutionAddress, region, r.Address,
			r.FatherName, r.MotherName, r.CreatedAt.Format("2006-01-02 15:04"),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	_, err = f.WriteTo(w)
	return err
}
