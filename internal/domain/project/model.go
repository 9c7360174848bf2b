package project

import (
	"strings"
	"time"
)

// DefaultVersion is the scenario tag used when none is given.
const DefaultVersion = "Default"

// naturalKeySeparator joins the normalized natural key parts.
const naturalKeySeparator = "|"

// Tier is the village development tier (IDM status).
type Tier int

const (
	TierSangatTertinggal Tier = iota
	TierTertinggal
	TierBerkembang
	TierMaju
	TierMandiri
)

var tierNames = [...]string{"Sangat Tertinggal", "Tertinggal", "Berkembang", "Maju", "Mandiri"}

// Valid reports whether t is one of the five known tiers.
func (t Tier) Valid() bool {
	return t >= TierSangatTertinggal && t <= TierMandiri
}

func (t Tier) String() string {
	if !t.Valid() {
		return "Unknown"
	}
	return tierNames[t]
}

// Project is one funded work item tied to a village, stored under a scenario version.
type Project struct {
	ID              string    `json:"id"`
	Version         string    `json:"version"`
	Province        string    `json:"province"`
	Regency         string    `json:"regency"`
	SubDistrict     string    `json:"sub_district"`
	Village         string    `json:"village"`
	VillageCode     string    `json:"village_code"`
	SubDistrictCode string    `json:"sub_district_code"`
	Work            string    `json:"work"`
	SubActivity     string    `json:"sub_activity"`
	Allocation      int64     `json:"allocation"`
	Latitude        *float64  `json:"latitude,omitempty"`
	Longitude       *float64  `json:"longitude,omitempty"`
	Area            *float64  `json:"area,omitempty"`
	Population      int64     `json:"population"`
	Poverty         int64     `json:"poverty"`
	Stunting        int64     `json:"stunting"`
	Tier            *Tier     `json:"tier,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NaturalKey identifies "the same" work item across independent imports.
// It is never enforced as a uniqueness constraint by a backend.
func (p Project) NaturalKey() string {
	return NaturalKey(p.VillageCode, p.Work, p.SubActivity)
}

// NaturalKey builds the reconciliation key from its three business fields.
func NaturalKey(villageCode, work, subActivity string) string {
	return normalizeKeyPart(villageCode) + naturalKeySeparator +
		normalizeKeyPart(work) + naturalKeySeparator +
		normalizeKeyPart(subActivity)
}

func normalizeKeyPart(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// EffectiveVersion returns version, or DefaultVersion when it is blank.
func EffectiveVersion(version string) string {
	version = strings.TrimSpace(version)
	if version == "" {
		return DefaultVersion
	}
	return version
}

// ReplaceFrom overwrites every field except identity and creation time with src.
func (p *Project) ReplaceFrom(src Project) {
	id, createdAt := p.ID, p.CreatedAt
	*p = src
	p.ID = id
	p.CreatedAt = createdAt
}
