package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// Region is an operational territory (korwil). It is unrelated to the
// administrative Province/Regency/District/Village hierarchy.
type Region struct {
	BaseModel
	Name     string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Coverage StringList `gorm:"type:text" json:"coverage"`
}

// StringList is persisted as a JSON array in a text column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*l = StringList{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return errors.New("unsupported type for StringList")
	}
	if len(raw) == 0 {
		*l = StringList{}
		return nil
	}
	return json.Unmarshal(raw, (*[]string)(l))
}

// DefaultRegions are the operational territories seeded on first boot.
var DefaultRegions = []Region{
	{Name: "Jatim 1", Coverage: StringList{"Bojonegoro", "Mojokerto", "Jombang", "Nganjuk", "Kediri", "Ngawi"}},
	{Name: "Jatim 2", Coverage: StringList{"Seluruh daerah Madura"}},
	{Name: "Jatim 3", Coverage: StringList{"Banyuwangi", "Bondowoso", "Jember", "Lumajang", "Malang", "Probolinggo", "Pasuruan", "Situbondo"}},
	{Name: "Jatim 4", Coverage: StringList{"Madiun", "Ponorogo", "Trenggalek", "Tulung Agung", "Pacitan", "Magetan", "Blitar"}},
	{Name: "Jatim 5", Coverage: StringList{"Tuban", "Lamongan", "Gresik", "Sidoarjo", "Surabaya"}},
	{Name: "Jateng 1", Coverage: StringList{"Rembang", "Blora", "Pati", "Grobogan", "Kudus", "Demak", "Semarang", "Kendal", "Sragen"}},
	{Name: "Jateng 2", Coverage: StringList{"Magelang", "Temanggung", "Wonosobo", "Purworejo", "Banjarnegara", "Kebumen"}},
	{Name: "Jateng 3", Coverage: StringList{"Batang", "Pekalongan", "Pemalang", "Tegal", "Brebes", "Purbalingga", "Banyumas", "Cilacap"}},
	{Name: "Jateng 4", Coverage: StringList{"Karanganyar", "Wonogiri", "Sukoharjo", "Surakarta", "Boyolali", "Klaten"}},
	{Name: "Jabar 1", Coverage: StringList{"Subang", "Sukabumi", "Cianjur", "Cimahi", "Bandung", "Garut", "Purwakarta", "Karawang"}},
	{Name: "Jabar 2", Coverage: StringList{"Indramayu", "Cirebon", "Sumedang", "Majalengka", "Kuningan", "Ciamis", "Tasikmalaya", "Kota Banjar", "Kab. Pangandaran"}},
	{Name: "Jabar 3", Coverage: StringList{"Kab. Bekasi", "Kota Bekasi", "Kab. Depok", "Kota Depok", "Kab. Bogor", "Kota Bogor"}},
	{Name: "DKI Jakarta", Coverage: StringList{"Kota Tanggerang", "Tanggerang Selatan", "Prov. Jakarta"}},
	{Name: "Banten", Coverage: StringList{"Kota Banten", "Kab. Cilegon", "Kab. Serang", "Kota Lebak", "Kota Serang"}},
	{Name: "Yogyakarta", Coverage: StringList{"Yogyakarta"}},
	{Name: "Kalsel", Coverage: StringList{"Kalimantan Selatan"}},
	{Name: "Kaltim", Coverage: StringList{"Seluruh Daerah Kalimantan Barat"}},
	{Name: "Bali", Coverage: StringList{"Bali"}},
	{Name: "Lombok", Coverage: StringList{"NTB"}},
	{Name: "Lampung", Coverage: StringList{"Lampung"}},
	{Name: "Riau", Coverage: StringList{"Riau"}},
	{Name: "Jambi", Coverage: StringList{"Jambi"}},
	{Name: "Sumbar", Coverage: StringList{"Sumatra Barat"}},
	{Name: "Batam", Coverage: StringList{"Batam"}},
	{Name: "Sumsel", Coverage: StringList{"Sumatra Selatan"}},
	{Name: "D.I Jepara", Coverage: StringList{"Jepara"}},
	{Name: "Sulawesi", Coverage: StringList{"Sulawesi"}},
}
