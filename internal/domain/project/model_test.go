package project_test

import (
	"testing"
	"time"

	"github.com/NomuraAI/SIGADES-sub000/internal/domain/project"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNaturalKey_NormalizesParts(t *testing.T) {
	a := project.Project{VillageCode: " 3301012001 ", Work: "Pembangunan  Jalan", SubActivity: "Rabat BETON"}
	b := project.Project{VillageCode: "3301012001", Work: "pembangunan jalan", SubActivity: "rabat beton "}

	require.Equal(t, a.NaturalKey(), b.NaturalKey())
	require.Equal(t, "3301012001|pembangunan jalan|rabat beton", a.NaturalKey())
	require.NotEqual(t, a.NaturalKey(), project.NaturalKey("3301012001", "pembangunan jalan", "drainase"))
}

func TestEffectiveVersion(t *testing.T) {
	assert.Equal(t, project.DefaultVersion, project.EffectiveVersion(""))
	assert.Equal(t, project.DefaultVersion, project.EffectiveVersion("   "))
	assert.Equal(t, "Skenario A", project.EffectiveVersion(" Skenario A "))
}

func TestTier_StringAndValid(t *testing.T) {
	assert.Equal(t, "Sangat Tertinggal", project.TierSangatTertinggal.String())
	assert.Equal(t, "Mandiri", project.TierMandiri.String())
	assert.False(t, project.Tier(5).Valid())
	assert.Equal(t, "Unknown", project.Tier(-1).String())
}

func TestReplaceFrom_KeepsIdentity(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	existing := project.Project{ID: "abc", Version: "2024", Work: "old", CreatedAt: created}

	existing.ReplaceFrom(project.Project{ID: "ignored", Version: "2024", Work: "new", Allocation: 10})

	require.Equal(t, "abc", existing.ID)
	require.Equal(t, created, existing.CreatedAt)
	require.Equal(t, "new", existing.Work)
	require.Equal(t, int64(10), existing.Allocation)
}
