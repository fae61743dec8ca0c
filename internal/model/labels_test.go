package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"dent", "dent"},
		{"Glass Shatter", "glass_shatter"},
		{"  lamp   broken ", "lamp_broken"},
		{"TIRE FLAT", "tire_flat"},
		{"glass_shatter", "glass_shatter"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeLabel(tt.in), "input %q", tt.in)
	}
}

func TestLabelSet_Map(t *testing.T) {
	s := NewLabelSet(nil)

	assert.Equal(t, "glass_shatter", s.Map("glass shatter"))
	assert.Equal(t, "dent", s.Map("Dent"))
	// Unmapped internal labels pass through verbatim.
	assert.Equal(t, "rust", s.Map("rust"))
}

func TestLabelSet_Coerce(t *testing.T) {
	s := NewLabelSet([]string{"ok", "chipped", "warped"})

	assert.Equal(t, "chipped", s.Coerce("chipped"))
	// Unknown labels coerce to the set's first entry.
	assert.Equal(t, "ok", s.Coerce("dent"))
	assert.Equal(t, "ok", s.Coerce(""))
}

func TestLabelSet_EmptyFallsBackToDefaults(t *testing.T) {
	s := NewLabelSet([]string{"  ", ""})

	assert.Equal(t, NoDefectLabel, s.Default())
	assert.True(t, s.Contains("scratch"))
}

func TestVerdict_WithNoFindingDefaults(t *testing.T) {
	v := Verdict{Label: NoDefectLabel, Tier: TierA, Zone: ZoneFront}
	v = v.WithNoFindingDefaults()
	assert.Equal(t, TierC, v.Tier)
	assert.Equal(t, ZoneNone, v.Zone)

	// A positive finding keeps its tier and zone.
	d := Verdict{Label: "dent", Tier: TierA, Zone: ZoneFront}.WithNoFindingDefaults()
	assert.Equal(t, TierA, d.Tier)
	assert.Equal(t, ZoneFront, d.Zone)
}
