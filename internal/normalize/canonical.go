package normalize

import (
	"strconv"

	"github.com/NomuraAI/SIGADES-sub000/internal/domain/project"
)

// Headers lists the canonical columns in export order.
func Headers() []string {
	headers := make([]string, 0, len(Rules)+1)
	headers = append(headers, FieldVersion)
	for _, r := range Rules {
		headers = append(headers, r.Field)
	}
	return headers
}

// Canonical renders a record as a row keyed by canonical headers.
// Normalizing the result yields the same record, apart from id and timestamps.
func Canonical(p project.Project) RawRow {
	row := RawRow{
		FieldVersion:         p.Version,
		FieldProvince:        p.Province,
		FieldRegency:         p.Regency,
		FieldSubDistrict:     p.SubDistrict,
		FieldVillage:         p.Village,
		FieldVillageCode:     p.VillageCode,
		FieldSubDistrictCode: p.SubDistrictCode,
		FieldWork:            p.Work,
		FieldSubActivity:     p.SubActivity,
		FieldAllocation:      strconv.FormatInt(p.Allocation, 10),
		FieldLatitude:        formatOptionalFloat(p.Latitude),
		FieldLongitude:       formatOptionalFloat(p.Longitude),
		FieldArea:            formatOptionalFloat(p.Area),
		FieldPopulation:      strconv.FormatInt(p.Population, 10),
		FieldPoverty:         strconv.FormatInt(p.Poverty, 10),
		FieldStunting:        strconv.FormatInt(p.Stunting, 10),
		FieldTier:            "",
		FieldNotes:           p.Notes,
	}
	if p.Tier != nil {
		row[FieldTier] = strconv.Itoa(int(*p.Tier))
	}
	return row
}

// Values returns the row's cells in the order of Headers.
func (r RawRow) Values() []string {
	headers := Headers()
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = r[h]
	}
	return out
}

func formatOptionalFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}
