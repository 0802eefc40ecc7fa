package parsing

import (
	"github.com/jonathan/cv-analyzer/internal/taxonomy"
	"github.com/jonathan/cv-analyzer/internal/types"
)

// ResumeAnalyzer extracts a structured profile from résumé text.
// It is safe for concurrent use.
type ResumeAnalyzer struct {
	tax *taxonomy.Taxonomy
}

// NewResumeAnalyzer returns an analyzer backed by tax. A nil taxonomy behaves as empty.
func NewResumeAnalyzer(tax *taxonomy.Taxonomy) *ResumeAnalyzer {
	if tax == nil {
		tax = taxonomy.Empty()
	}
	return &ResumeAnalyzer{tax: tax}
}

// Parse analyzes text. It never fails; text without recognizable content yields
// empty lists, level unknown and an all-zero context distribution.
func (a *ResumeAnalyzer) Parse(text string) types.ResumeProfile {
	normalized := Normalize(text)

	skills := scanSkills(a.tax, normalized)
	experience := a.experience(normalized, text)
	context := a.context(normalized)

	return types.ResumeProfile{
		TechnicalSkills: skills,
		SoftSkills:      matchSubstrings(normalized, a.tax.SoftSkills()),
		Experience:      experience,
		Context:         context,
		Roles:           matchWholeWords(normalized, a.tax.JobRoles()),
		Certifications:  matchSubstrings(normalized, a.tax.Certifications()),
		Methodologies:   matchWholeWords(normalized, a.tax.Methodologies()),
		Summary: types.ResumeSummary{
			TotalTechnicalSkills: skills.Total(),
			SkillsByCategory:     skills.Counts(),
			ExperienceLevel:      experience.Level,
			DominantContext:      context.Dominant,
			ContextDistribution:  context.Percentages,
		},
	}
}

// experience collects years mentions from normalized text and time periods
// from the original text.
func (a *ResumeAnalyzer) experience(normalized, original string) types.ExperienceSignal {
	signal := types.ExperienceSignal{
		Level:         detectLevel(a.tax, normalized),
		YearsDetected: []string{},
		Details:       []string{},
	}
	for _, re := range a.tax.YearsPatterns() {
		signal.YearsDetected = append(signal.YearsDetected, findAll(re, normalized)...)
	}
	for _, re := range a.tax.TimePeriodPatterns() {
		signal.Details = append(signal.Details, findAll(re, original)...)
	}
	return signal
}

func (a *ResumeAnalyzer) context(normalized string) types.ContextDistribution {
	var tally types.ContextTally
	for _, ck := range a.tax.ContextKeywords() {
		for _, kw := range ck.Keywords {
			tally.Add(ck.Type, countWholeWord(normalized, Normalize(kw), 0))
		}
	}
	return Distribute(tally)
}

// Distribute converts keyword counts into percentages rounded to two decimals
// and picks the dominant type: the first type, in declaration order, holding
// the largest share. With no hits every share is zero and the first type wins.
func Distribute(tally types.ContextTally) types.ContextDistribution {
	dist := types.ContextDistribution{Counts: tally}
	total := tally.Total()
	if total > 0 {
		for _, ct := range types.ContextTypes {
			dist.Percentages.Set(ct, round2(float64(tally.Get(ct))/float64(total)*100))
		}
	}

	dist.Dominant = types.ContextTypes[0]
	for _, ct := range types.ContextTypes[1:] {
		if dist.Percentages.Get(ct) > dist.Percentages.Get(dist.Dominant) {
			dist.Dominant = ct
		}
	}
	return dist
}
