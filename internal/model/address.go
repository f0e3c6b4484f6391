package model

// Administrative hierarchy: Province -> Regency -> District -> Village.
// Reference data, bulk-seeded once. FullCode is the dotted hierarchical code
// (e.g. "32.73.01.1001") and is unique per level.

type Province struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(10);uniqueIndex;not null" json:"code"`
	Name string `gorm:"type:varchar(100);index;not null" json:"name"`
}

type Regency struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ProvinceID uint      `gorm:"index;not null" json:"province_id"`
	Province   *Province `gorm:"foreignKey:ProvinceID;constraint:OnDelete:RESTRICT" json:"-"`
	Code       string    `gorm:"type:varchar(10);not null" json:"code"`
	FullCode   string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"full_code"`
	Name       string    `gorm:"type:varchar(100);index;not null" json:"name"`
}

type District struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	RegencyID uint     `gorm:"index;not null" json:"regency_id"`
	Regency   *Regency `gorm:"foreignKey:RegencyID;constraint:OnDelete:RESTRICT" json:"-"`
	Code      string   `gorm:"type:varchar(10);not null" json:"code"`
	FullCode  string   `gorm:"type:varchar(20);uniqueIndex;not null" json:"full_code"`
	Name      string   `gorm:"type:varchar(100);index;not null" json:"name"`
}

type Village struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	DistrictID uint      `gorm:"index;not null" json:"district_id"`
	District   *District `gorm:"foreignKey:DistrictID;constraint:OnDelete:RESTRICT" json:"-"`
	Code       string    `gorm:"type:varchar(10);not null" json:"code"`
	FullCode   string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"full_code"`
	PostalCode string    `gorm:"type:varchar(10)" json:"postal_code"`
	Name       string    `gorm:"type:varchar(100);index;not null" json:"name"`
}

// AddressUnit is the list item returned by hierarchy lookups.
type AddressUnit struct {
	ID         uint   `json:"id"`
	Code       string `json:"code"`
	FullCode   string `json:"full_code,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Name       string `json:"name"`
}

// Address is a fully selected chain.
type Address struct {
	ProvinceID uint `json:"province_id"`
	RegencyID  uint `json:"regency_id"`
	DistrictID uint `json:"district_id"`
	VillageID  uint `json:"village_id"`
}
