package scoring

import (
	"testing"

	"github.com/jonathan/cv-analyzer/internal/messages"
	"github.com/jonathan/cv-analyzer/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

var (
	english = messages.NewPrinter(language.English)
	spanish = messages.NewPrinter(language.Spanish)
)

func profile(pairs ...types.CategorySkills) types.SkillProfile {
	return types.SkillProfile(pairs)
}

func cat(name string, skills ...string) types.CategorySkills {
	return types.CategorySkills{Category: name, Skills: skills}
}

func professionalContext(pro, acad, pers float64) types.ContextDistribution {
	return types.ContextDistribution{
		Percentages: types.ContextShares{Professional: pro, Academic: acad, Personal: pers},
		Dominant:    types.ContextProfessional,
	}
}

func TestScore_SeniorBackendScenario(t *testing.T) {
	cv := types.ResumeProfile{
		TechnicalSkills: profile(cat("programming_languages", "Python"), cat("frameworks_backend", "Django")),
		Experience:      types.ExperienceSignal{Level: types.LevelSenior, YearsDetected: []string{"5"}},
		Context:         professionalContext(100, 0, 0),
	}
	job := types.JobRequirements{
		RequiredSkills: profile(
			cat("programming_languages", "Python"),
			cat("frameworks_backend", "Django"),
			cat("frameworks_frontend", "React"),
		),
		RequiredExperience: types.RequiredExperience{LevelRequired: types.LevelSenior, YearsRequired: []string{"3"}},
		TotalRequirements:  3,
	}

	result := Score(cv, job, nil)

	assert.Equal(t, 66.67, result.Breakdown.Skills.Score)
	assert.Equal(t, "2/3", result.Breakdown.Skills.Details.MatchRate)
	assert.Equal(t, 1, result.Breakdown.Skills.Details.Missing)
	assert.Equal(t, 100.0, result.Breakdown.Experience.Score)
	assert.Equal(t, 100.0, result.Breakdown.Context.Score)
	assert.Equal(t, 80.0, result.TotalScore)

	assert.Equal(t, profile(cat("programming_languages", "Python"), cat("frameworks_backend", "Django")), result.SkillsFound)
	assert.Equal(t, profile(cat("frameworks_frontend", "React")), result.SkillsMissing)
	assert.Equal(t, 3, result.TotalRequired)
	assert.Equal(t, 2, result.TotalFound)

	require.NotNil(t, result.Breakdown.Experience.Details.YearsRequired)
	assert.Equal(t, 3, *result.Breakdown.Experience.Details.YearsRequired)
	assert.Equal(t, "Level suggests sufficient experience", result.Breakdown.Experience.Details.YearsNote)
}

func TestScore_WeightsAndContributions(t *testing.T) {
	result := Score(types.ResumeProfile{Context: professionalContext(0, 100, 0)}, types.JobRequirements{}, nil)

	b := result.Breakdown
	assert.Equal(t, 60.0, b.Skills.Weight)
	assert.Equal(t, 30.0, b.Experience.Weight)
	assert.Equal(t, 10.0, b.Context.Weight)

	assert.Equal(t, 60.0, b.Skills.Contribution)
	assert.Equal(t, 25.5, b.Experience.Contribution)
	assert.Equal(t, 30.0, b.Context.Score)
	assert.Equal(t, 3.0, b.Context.Contribution)
	assert.Equal(t, 88.5, result.TotalScore)
}

func TestComputeSkillsScore_NoRequirements(t *testing.T) {
	tests := []struct {
		name string
		cv   types.SkillProfile
	}{
		{"empty cv", nil},
		{"rich cv", profile(cat("programming_languages", "Go", "Rust"), cat("databases", "Redis"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, details := computeSkillsScore(english, tt.cv, types.SkillProfile{})
			assert.Equal(t, 100.0, score)
			assert.NotEmpty(t, details.Note)
		})
	}
}

func TestComputeSkillsScore_FlatCaseInsensitive(t *testing.T) {
	cv := profile(cat("other_tools", "docker"))
	required := profile(cat("devops_tools", "Docker"), cat("cloud_platforms", "AWS"))

	score, details := computeSkillsScore(english, cv, required)
	assert.Equal(t, 50.0, score)
	assert.Equal(t, types.SkillsDetails{Required: 2, Found: 1, Missing: 1, MatchRate: "1/2"}, details)
}

func TestComputeExperienceScore(t *testing.T) {
	tests := []struct {
		name     string
		cv       types.Level
		required types.Level
		want     float64
	}{
		{"senior meets senior", types.LevelSenior, types.LevelSenior, 100},
		{"senior exceeds junior", types.LevelSenior, types.LevelJunior, 100},
		{"mid one below senior", types.LevelMid, types.LevelSenior, 70},
		{"junior one below mid", types.LevelJunior, types.LevelMid, 70},
		{"junior far below senior", types.LevelJunior, types.LevelSenior, 40},
		{"unknown cv against junior", types.LevelUnknown, types.LevelJunior, 40},
		{"unknown cv against senior", types.LevelUnknown, types.LevelSenior, 40},
		{"no requirement", types.LevelJunior, types.LevelUnknown, 85},
		{"no requirement unknown cv", types.LevelUnknown, types.LevelUnknown, 85},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, details := computeExperienceScore(
				english,
				types.ExperienceSignal{Level: tt.cv},
				types.RequiredExperience{LevelRequired: tt.required},
			)
			assert.Equal(t, tt.want, score)
			assert.Nil(t, details.YearsRequired)
			if tt.required == types.LevelUnknown {
				assert.NotEmpty(t, details.Note)
				assert.Empty(t, details.Match)
			} else {
				assert.NotEmpty(t, details.Match)
			}
		})
	}
}

func TestComputeExperienceScore_YearsNote(t *testing.T) {
	t.Run("malformed value skipped", func(t *testing.T) {
		score, details := computeExperienceScore(
			english,
			types.ExperienceSignal{Level: types.LevelSenior},
			types.RequiredExperience{LevelRequired: types.LevelSenior, YearsRequired: []string{"five"}},
		)
		assert.Equal(t, 100.0, score)
		assert.Nil(t, details.YearsRequired)
		assert.Empty(t, details.YearsNote)
	})

	t.Run("below level", func(t *testing.T) {
		_, details := computeExperienceScore(
			english,
			types.ExperienceSignal{Level: types.LevelJunior},
			types.RequiredExperience{LevelRequired: types.LevelSenior, YearsRequired: []string{"8", "2"}},
		)
		require.NotNil(t, details.YearsRequired)
		assert.Equal(t, 8, *details.YearsRequired)
		assert.Equal(t, "May require more experience", details.YearsNote)
	})

	t.Run("no level requirement keeps years", func(t *testing.T) {
		score, details := computeExperienceScore(
			english,
			types.ExperienceSignal{Level: types.LevelJunior},
			types.RequiredExperience{LevelRequired: types.LevelUnknown, YearsRequired: []string{"4"}},
		)
		assert.Equal(t, 85.0, score)
		require.NotNil(t, details.YearsRequired)
		assert.Equal(t, 4, *details.YearsRequired)
		assert.Equal(t, "No level requirement to compare against", details.YearsNote)
	})
}

func TestComputeContextScore(t *testing.T) {
	tests := []struct {
		name             string
		pro, acad, pers  float64
		want             float64
		wantProfessional string
	}{
		{"all professional", 100, 0, 0, 100, "100.0%"},
		{"all academic", 0, 100, 0, 30, "0.0%"},
		{"all personal", 0, 0, 100, 60, "0.0%"},
		{"mixed", 50, 33.33, 16.67, 50 + 33.33*0.3 + 16.67*0.6, "50.0%"},
		{"nothing", 0, 0, 0, 0, "0.0%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, details := computeContextScore(professionalContext(tt.pro, tt.acad, tt.pers))
			assert.InDelta(t, tt.want, score, 1e-9)
			assert.LessOrEqual(t, score, 100.0)
			assert.Equal(t, tt.wantProfessional, details.Professional)
		})
	}
}

func TestCompareSkills_Partition(t *testing.T) {
	cv := profile(
		cat("programming_languages", "python", "Go"),
		cat("databases", "PostgreSQL"),
		cat("other_tools", "React"),
	)
	required := profile(
		cat("programming_languages", "Python", "Java"),
		cat("frameworks_frontend", "React"),
		cat("databases", "PostgreSQL"),
	)

	found, missing := compareSkills(cv, required)

	assert.Equal(t, profile(cat("programming_languages", "Python"), cat("databases", "PostgreSQL")), found)
	assert.Equal(t, profile(cat("programming_languages", "Java"), cat("frameworks_frontend", "React")), missing)

	// found ∪ missing == required and found ∩ missing == ∅, per category.
	for _, req := range required {
		union := append(append([]string{}, found.Get(req.Category)...), missing.Get(req.Category)...)
		assert.ElementsMatch(t, req.Skills, union, req.Category)
		for _, f := range found.Get(req.Category) {
			assert.NotContains(t, missing.Get(req.Category), f)
		}
	}
}

func TestScore_TotalIsRoundedWeightedSum(t *testing.T) {
	cases := []struct {
		cvLevel, reqLevel types.Level
		pro, acad, pers   float64
		cvSkills          types.SkillProfile
		required          types.SkillProfile
	}{
		{types.LevelMid, types.LevelSenior, 33.33, 33.33, 33.34, profile(cat("testing", "Jest")), profile(cat("testing", "Jest", "Cypress", "Mocha"))},
		{types.LevelJunior, types.LevelSenior, 0, 100, 0, nil, profile(cat("databases", "Redis"))},
		{types.LevelSenior, types.LevelUnknown, 70, 10, 20, profile(cat("databases", "Redis")), nil},
	}

	for _, c := range cases {
		result := Score(
			types.ResumeProfile{
				TechnicalSkills: c.cvSkills,
				Experience:      types.ExperienceSignal{Level: c.cvLevel},
				Context:         professionalContext(c.pro, c.acad, c.pers),
			},
			types.JobRequirements{
				RequiredSkills:     c.required,
				RequiredExperience: types.RequiredExperience{LevelRequired: c.reqLevel},
			},
			nil,
		)

		b := result.Breakdown
		weighted := b.Skills.Score*0.6 + b.Experience.Score*0.3 + b.Context.Score*0.1
		assert.InDelta(t, weighted, result.TotalScore, 0.011)
		assert.GreaterOrEqual(t, result.TotalScore, 0.0)
		assert.LessOrEqual(t, result.TotalScore, 100.0)
		assert.Equal(t, result.TotalScore, round2(result.TotalScore))
	}
}

func TestScore_SpanishNotes(t *testing.T) {
	cv := types.ResumeProfile{
		Experience: types.ExperienceSignal{Level: types.LevelJunior},
		Context:    professionalContext(100, 0, 0),
	}
	job := types.JobRequirements{
		RequiredExperience: types.RequiredExperience{LevelRequired: types.LevelSenior, YearsRequired: []string{"5"}},
	}

	result := Score(cv, job, spanish)

	assert.Equal(t, "No hay requisitos técnicos específicos en la oferta", result.Breakdown.Skills.Details.Note)
	assert.Equal(t, "El nivel junior está por debajo de senior", result.Breakdown.Experience.Details.Match)
	assert.Equal(t, "Puede requerir más experiencia", result.Breakdown.Experience.Details.YearsNote)
	assert.Equal(t, "100.0%", result.Breakdown.Context.Details.Professional)
	assert.Equal(t, 40.0, result.Breakdown.Experience.Score)
}

func TestComputeExperienceScore_MatchText(t *testing.T) {
	tests := []struct {
		cv, required types.Level
		want         string
	}{
		{types.LevelSenior, types.LevelMid, "Level senior meets the mid requirement"},
		{types.LevelMid, types.LevelSenior, "Level mid is one step below senior"},
		{types.LevelJunior, types.LevelSenior, "Level junior is below senior"},
		{types.LevelUnknown, types.LevelMid, "Level could not be determined; mid required"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			_, details := computeExperienceScore(english,
				types.ExperienceSignal{Level: tt.cv},
				types.RequiredExperience{LevelRequired: tt.required},
			)
			assert.Equal(t, tt.want, details.Match)
		})
	}
}
