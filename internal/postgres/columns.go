package postgres

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/NomuraAI/SIGADES-sub000/internal/domain/project"
)

// writableColumns are bound in writeArgs order; id comes first.
var writableColumns = []string{
	"id", "version",
	"province", "regency", "sub_district", "village",
	"village_code", "sub_district_code", "work", "sub_activity",
	"allocation", "latitude", "longitude", "area",
	"population", "poverty", "stunting", "tier", "notes",
}

var (
	insertColumns = strings.Join(writableColumns, ", ")
	selectColumns = insertColumns + ", created_at, updated_at"
)

func writeArgs(p project.Project) []any {
	var tier any
	if p.Tier != nil {
		tier = int64(*p.Tier)
	}
	return []any{
		p.ID, p.Version,
		p.Province, p.Regency, p.SubDistrict, p.Village,
		p.VillageCode, p.SubDistrictCode, p.Work, p.SubActivity,
		p.Allocation, nullFloat(p.Latitude), nullFloat(p.Longitude), nullFloat(p.Area),
		p.Population, p.Poverty, p.Stunting, tier, p.Notes,
	}
}

func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanRecord reads one row of selectColumns. Columns written by other
// clients may be NULL; those read as zero values.
func scanRecord(row rowScanner) (project.Project, error) {
	var (
		p                                         project.Project
		version, province, regency, subDistrict   sql.NullString
		village, villageCode, subDistrictCode     sql.NullString
		work, subActivity, notes                  sql.NullString
		allocation, population, poverty, stunting sql.NullInt64
		latitude, longitude, area                 sql.NullFloat64
		tier                                      sql.NullInt64
	)
	err := row.Scan(
		&p.ID, &version,
		&province, &regency, &subDistrict, &village,
		&villageCode, &subDistrictCode, &work, &subActivity,
		&allocation, &latitude, &longitude, &area,
		&population, &poverty, &stunting, &tier, &notes,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return project.Project{}, err
	}

	p.Version = project.EffectiveVersion(version.String)
	p.Province = province.String
	p.Regency = regency.String
	p.SubDistrict = subDistrict.String
	p.Village = village.String
	p.VillageCode = villageCode.String
	p.SubDistrictCode = subDistrictCode.String
	p.Work = work.String
	p.SubActivity = subActivity.String
	p.Allocation = allocation.Int64
	p.Population = population.Int64
	p.Poverty = poverty.Int64
	p.Stunting = stunting.Int64
	p.Notes = notes.String
	if latitude.Valid {
		p.Latitude = &latitude.Float64
	}
	if longitude.Valid {
		p.Longitude = &longitude.Float64
	}
	if area.Valid {
		p.Area = &area.Float64
	}
	if tier.Valid {
		t := project.Tier(tier.Int64)
		p.Tier = &t
	}
	return p, nil
}

func placeholders(first, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", first+i)
	}
	return strings.Join(parts, ", ")
}
