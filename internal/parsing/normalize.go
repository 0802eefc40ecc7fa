package parsing

import (
	"math"
	"strings"

	"github.com/jonathan/cv-analyzer/internal/taxonomy"
	"github.com/jonathan/cv-analyzer/internal/types"
)

// Normalize returns the form of text used for keyword matching.
func Normalize(text string) string {
	return strings.ToLower(text)
}

// round2 rounds to two decimal places, half away from zero.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// scanSkills matches every canonical skill of the taxonomy against normalized
// text and groups hits by category. Categories without hits are dropped.
func scanSkills(tax *taxonomy.Taxonomy, normalized string) types.SkillProfile {
	profile := types.SkillProfile{}
	for _, cat := range tax.Categories() {
		found := matchWholeWords(normalized, cat.Skills)
		if len(found) == 0 {
			continue
		}
		profile = append(profile, types.CategorySkills{Category: cat.Name, Skills: found})
	}
	return profile
}

// detectLevel returns the first level, in taxonomy order, that has an indicator
// keyword contained in normalized text.
func detectLevel(tax *taxonomy.Taxonomy, normalized string) types.Level {
	for _, lvl := range tax.ExperienceLevels() {
		if len(matchSubstrings(normalized, lvl.Keywords)) > 0 {
			return lvl.Level
		}
	}
	return types.LevelUnknown
}
