package normalize

// Canonical field names. These are also the exact header names written by Canonical.
const (
	FieldProvince        = "province"
	FieldRegency         = "regency"
	FieldSubDistrict     = "sub_district"
	FieldVillage         = "village"
	FieldVillageCode     = "village_code"
	FieldSubDistrictCode = "sub_district_code"
	FieldWork            = "work"
	FieldSubActivity     = "sub_activity"
	FieldAllocation      = "allocation"
	FieldLatitude        = "latitude"
	FieldLongitude       = "longitude"
	FieldArea            = "area"
	FieldPopulation      = "population"
	FieldPoverty         = "poverty"
	FieldStunting        = "stunting"
	FieldTier            = "tier"
	FieldNotes           = "notes"
	FieldVersion         = "version"
)

// Rule maps a canonical field onto arbitrary headers.
//
// When no header equals Field exactly, Fragments are tried in order. For each
// fragment the first normalized header (lexicographic order) containing it and
// none of the Exclude fragments is taken. The first fragment with a hit wins.
type Rule struct {
	Field     string
	Fragments []string
	Exclude   []string
}

var codeExcludes = []string{"kode", "code", "kd_"}

// Rules is the header matching table, in canonical column order.
var Rules = []Rule{
	{Field: FieldProvince, Fragments: []string{"provinsi", "province", "prov"}, Exclude: codeExcludes},
	{Field: FieldRegency, Fragments: []string{"kabupaten", "kab_kota", "regency", "kota", "kab"}, Exclude: codeExcludes},
	{Field: FieldSubDistrict, Fragments: []string{"kecamatan", "sub_district", "subdistrict", "district", "kec"}, Exclude: codeExcludes},
	{Field: FieldVillage, Fragments: []string{"nama_desa", "desa", "kelurahan", "village"}, Exclude: []string{"kode", "code", "kd_", "id_", "status", "jumlah"}},
	{Field: FieldVillageCode, Fragments: []string{"kode_desa", "kd_desa", "village_code", "kode_kelurahan", "id_desa"}},
	{Field: FieldSubDistrictCode, Fragments: []string{"kode_kecamatan", "kode_kec", "kd_kec", "sub_district_code", "subdistrict_code", "district_code"}},
	{Field: FieldWork, Fragments: []string{"pekerjaan", "work", "nama_kegiatan", "kegiatan", "uraian", "program"}, Exclude: []string{"sub"}},
	{Field: FieldSubActivity, Fragments: []string{"sub_kegiatan", "subkegiatan", "sub_activity", "rincian", "detail"}},
	{Field: FieldAllocation, Fragments: []string{"anggaran", "pagu", "allocation", "budget", "nilai", "dana"}},
	{Field: FieldLatitude, Fragments: []string{"latitude", "lintang", "lat"}},
	{Field: FieldLongitude, Fragments: []string{"longitude", "bujur", "long", "lng", "lon"}},
	{Field: FieldArea, Fragments: []string{"luas_wilayah", "luas", "area"}},
	{Field: FieldPopulation, Fragments: []string{"jumlah_penduduk", "penduduk", "population", "jiwa"}, Exclude: []string{"miskin", "poor", "stunting"}},
	{Field: FieldPoverty, Fragments: []string{"penduduk_miskin", "miskin", "poverty", "poor"}},
	{Field: FieldStunting, Fragments: []string{"stunting"}},
	{Field: FieldTier, Fragments: []string{"status_idm", "idm", "status_desa", "tier", "klasifikasi"}},
	{Field: FieldNotes, Fragments: []string{"keterangan", "catatan", "notes", "note", "ket"}},
}
