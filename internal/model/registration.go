package model

import (
	"time"

	"github.com/google/uuid"
)

// Registration is a participant enrolled through the public site.
type Registration struct {
	BaseModel
	RegistrationNo     string    `gorm:"type:varchar(32);uniqueIndex;not null" json:"registration_no"`
	Name               string    `gorm:"type:varchar(255);not null" json:"name"`
	NIK                string    `gorm:"column:nik;type:varchar(16);uniqueIndex;not null" json:"nik"`
	BirthPlace         string    `gorm:"type:varchar(100)" json:"birth_place"`
	BirthDate          time.Time `gorm:"type:date" json:"birth_date"`
	Gender             string    `gorm:"type:varchar(10)" json:"gender"`
	Category           string    `gorm:"type:varchar(50)" json:"category"`
	ClassLevel         string    `gorm:"type:varchar(50)" json:"class_level"`
	InstitutionName    string    `gorm:"type:varchar(255)" json:"institution_name"`
	InstitutionAddress string    `gorm:"type:text" json:"institution_address"`
	RegionID           uuid.UUID `gorm:"type:uuid;index;not null" json:"region_id"`
	Region             *Region   `gorm:"foreignKey:RegionID" json:"region,omitempty"`
	ProvinceID         uint      `gorm:"index;not null" json:"province_id"`
	RegencyID          uint      `gorm:"index;not null" json:"regency_id"`
	DistrictID         uint      `gorm:"index;not null" json:"district_id"`
	VillageID          uint      `gorm:"index;not null" json:"village_id"`
	Address            string    `gorm:"type:text" json:"address"`
	FatherName         string    `gorm:"type:varchar(255)" json:"father_name"`
	MotherName         string    `gorm:"type:varchar(255)" json:"mother_name"`
}

// Gender values accepted on the registration form.
const (
	GenderMale   = "L"
	GenderFemale = "P"
)
