// Package normalize maps raw spreadsheet rows with arbitrary headers onto
// canonical project records.
//
// Normalization never fails: malformed numbers degrade to zero and malformed
// optional floats or tiers degrade to unset.
package normalize

import (
	"maps"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/NomuraAI/SIGADES-sub000/internal/domain/project"
)

// RawRow is one spreadsheet row keyed by its header labels.
// It must not travel past this package; only normalized records flow downstream.
type RawRow map[string]string

var (
	keySeparators = regexp.MustCompile(`[\s/]+`)
	nonDigits     = regexp.MustCompile(`[^0-9]`)
	nonNumeric    = regexp.MustCompile(`[^0-9.\-]`)
)

var floatSentinels = map[string]bool{
	"#n/a": true,
	"-":    true,
	"nan":  true,
	"null": true,
}

// tierPhrases is checked in order so "sangat tertinggal" wins over "tertinggal".
var tierPhrases = []struct {
	phrase string
	tier   project.Tier
}{
	{"sangat tertinggal", project.TierSangatTertinggal},
	{"tertinggal", project.TierTertinggal},
	{"berkembang", project.TierBerkembang},
	{"maju", project.TierMaju},
	{"mandiri", project.TierMandiri},
}

// NormalizeKey lowercases and trims a header and collapses whitespace and slashes to "_".
func NormalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	return keySeparators.ReplaceAllString(key, "_")
}

// Row is a RawRow with normalized keys and a deterministic scan order.
type Row struct {
	values map[string]string
	keys   []string
}

// NewRow normalizes the headers of raw. When two headers normalize to the same
// key, the first non-empty value in raw header order wins.
func NewRow(raw RawRow) Row {
	values := make(map[string]string, len(raw))
	for _, k := range slices.Sorted(maps.Keys(raw)) {
		nk := NormalizeKey(k)
		if nk == "" {
			continue
		}
		if prev, ok := values[nk]; ok && strings.TrimSpace(prev) != "" {
			continue
		}
		values[nk] = raw[k]
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return Row{values: values, keys: keys}
}

// Lookup resolves a canonical field against the row using rule.
func (r Row) Lookup(rule Rule) (string, bool) {
	if v, ok := r.values[rule.Field]; ok {
		return strings.TrimSpace(v), true
	}
	for _, fragment := range rule.Fragments {
		for _, key := range r.keys {
			if !strings.Contains(key, fragment) || containsAny(key, rule.Exclude) {
				continue
			}
			return strings.TrimSpace(r.values[key]), true
		}
	}
	return "", false
}

func containsAny(s string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(s, f) {
			return true
		}
	}
	return false
}

// Normalize converts one raw row into a candidate record stamped with version.
// The result has no id.
func Normalize(raw RawRow, version string) project.Project {
	row := NewRow(raw)
	get := func(field string) string {
		v, _ := row.Lookup(ruleFor(field))
		return v
	}

	return project.Project{
		Version:         project.EffectiveVersion(version),
		Province:        get(FieldProvince),
		Regency:         get(FieldRegency),
		SubDistrict:     get(FieldSubDistrict),
		Village:         get(FieldVillage),
		VillageCode:     get(FieldVillageCode),
		SubDistrictCode: get(FieldSubDistrictCode),
		Work:            get(FieldWork),
		SubActivity:     get(FieldSubActivity),
		Allocation:      ParseInt(get(FieldAllocation)),
		Latitude:        ParseOptionalFloat(get(FieldLatitude)),
		Longitude:       ParseOptionalFloat(get(FieldLongitude)),
		Area:            ParseOptionalFloat(get(FieldArea)),
		Population:      ParseInt(get(FieldPopulation)),
		Poverty:         ParseInt(get(FieldPoverty)),
		Stunting:        ParseInt(get(FieldStunting)),
		Tier:            ParseTier(get(FieldTier)),
		Notes:           get(FieldNotes),
	}
}

// NormalizeAll converts rows in order. One input row yields one record.
func NormalizeAll(rows []RawRow, version string) []project.Project {
	out := make([]project.Project, 0, len(rows))
	for _, raw := range rows {
		out = append(out, Normalize(raw, version))
	}
	return out
}

var rulesByField = func() map[string]Rule {
	m := make(map[string]Rule, len(Rules))
	for _, r := range Rules {
		m[r.Field] = r
	}
	return m
}()

func ruleFor(field string) Rule {
	if r, ok := rulesByField[field]; ok {
		return r
	}
	return Rule{Field: field}
}

// ParseInt keeps only the digits of s. Empty or unparseable input yields 0.
func ParseInt(s string) int64 {
	digits := nonDigits.ReplaceAllString(s, "")
	if digits == "" {
		return 0
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// ParseOptionalFloat parses coordinates and areas. Sentinels, zero, NaN and
// unparseable input yield nil. A comma is read as the decimal separator.
func ParseOptionalFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" || floatSentinels[strings.ToLower(s)] {
		return nil
	}
	s = strings.ReplaceAll(s, ",", ".")
	s = nonNumeric.ReplaceAllString(s, "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f == 0 {
		return nil
	}
	return &f
}

// ParseTier accepts a numeral 0-4 or a tier name contained in s.
func ParseTier(s string) *project.Tier {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		t := project.Tier(n)
		if !t.Valid() {
			return nil
		}
		return &t
	}
	for _, tp := range tierPhrases {
		if strings.Contains(s, tp.phrase) {
			t := tp.tier
			return &t
		}
	}
	return nil
}
