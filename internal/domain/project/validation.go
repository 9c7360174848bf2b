package project

import "strings"

// Validate checks a record before it is written and fills in the default version.
func Validate(rec *Project) error {
	if rec == nil {
		return ErrInvalidInput
	}
	rec.Version = EffectiveVersion(rec.Version)

	if rec.Allocation < 0 || rec.Population < 0 || rec.Poverty < 0 || rec.Stunting < 0 {
		return ErrInvalidInput
	}
	if rec.Tier != nil && !rec.Tier.Valid() {
		return ErrInvalidInput
	}
	if strings.TrimSpace(rec.VillageCode) == "" && strings.TrimSpace(rec.Village) == "" {
		return ErrInvalidInput
	}
	return nil
}
