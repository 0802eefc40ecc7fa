package parsing

import (
	"testing"

	"github.com/jonathan/cv-analyzer/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"ascii", "Senior GO Developer", "senior go developer"},
		{"accents", "EXPERIENCIA en GESTIÓN", "experiencia en gestión"},
		{"symbols untouched", "C++ / C#", "c++ / c#"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 66.67, round2(200.0/3))
	assert.Equal(t, 33.33, round2(100.0/3))
	assert.Equal(t, 12.5, round2(12.5))
	assert.Equal(t, 0.0, round2(0))
}

func TestScanSkills_DropsEmptyCategories(t *testing.T) {
	profile := scanSkills(testTaxonomy(), "git and vue")
	assert.Equal(t, []string{"frameworks_frontend", "version_control"}, profile.Categories())
}

func TestDetectLevel(t *testing.T) {
	tax := testTaxonomy()
	assert.Equal(t, types.LevelMid, detectLevel(tax, "mid-level engineer"))
	assert.Equal(t, types.LevelSenior, detectLevel(tax, "our tech lead"))
	assert.Equal(t, types.LevelUnknown, detectLevel(tax, "engineer"))
}
