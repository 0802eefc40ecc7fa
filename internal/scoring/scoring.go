// Package scoring computes the compatibility score between an analyzed résumé and
// analyzed job requirements.
package scoring

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"

	"github.com/jonathan/cv-analyzer/internal/messages"
	"github.com/jonathan/cv-analyzer/internal/types"
)

// Weights of the three sub-scores; they sum to 1.
const (
	skillsWeight     = 0.60
	experienceWeight = 0.30
	contextWeight    = 0.10
)

// Experience sub-scores by level gap.
const (
	experienceMeets       = 100.0
	experienceOneBelow    = 70.0
	experienceFarBelow    = 40.0
	experienceUnspecified = 85.0
)

// Context multipliers applied to each context share.
const (
	professionalFactor = 1.0
	personalFactor     = 0.6
	academicFactor     = 0.3
)

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// Score compares cv against job. It never fails; every sub-score lies in [0, 100].
// Breakdown notes are rendered with p, or in English when p is nil.
func Score(cv types.ResumeProfile, job types.JobRequirements, p *messages.Printer) types.MatchResult {
	if p == nil {
		p = messages.NewPrinter(language.English)
	}
	skillsScore, skillsDetails := computeSkillsScore(p, cv.TechnicalSkills, job.RequiredSkills)
	expScore, expDetails := computeExperienceScore(p, cv.Experience, job.RequiredExperience)
	ctxScore, ctxDetails := computeContextScore(cv.Context)

	total := skillsScore*skillsWeight + expScore*experienceWeight + ctxScore*contextWeight
	found, missing := compareSkills(cv.TechnicalSkills, job.RequiredSkills)

	return types.MatchResult{
		TotalScore: round2(total),
		Breakdown: types.Breakdown{
			Skills: types.SkillsFactor{
				Score:        round2(skillsScore),
				Weight:       round2(skillsWeight * 100),
				Contribution: round2(skillsScore * skillsWeight),
				Details:      skillsDetails,
			},
			Experience: types.ExperienceFactor{
				Score:        round2(expScore),
				Weight:       round2(experienceWeight * 100),
				Contribution: round2(expScore * experienceWeight),
				Details:      expDetails,
			},
			Context: types.ContextFactor{
				Score:        round2(ctxScore),
				Weight:       round2(contextWeight * 100),
				Contribution: round2(ctxScore * contextWeight),
				Details:      ctxDetails,
			},
		},
		SkillsFound:   found,
		SkillsMissing: missing,
		TotalRequired: job.RequiredSkills.Total(),
		TotalFound:    found.Total(),
	}
}

// computeSkillsScore compares flattened, case-folded skill sets; categories are ignored.
func computeSkillsScore(p *messages.Printer, cv, required types.SkillProfile) (float64, types.SkillsDetails) {
	if len(required) == 0 {
		return 100.0, types.SkillsDetails{Note: p.Sprintf(messages.ScoreNoSkillRequirements)}
	}

	cvSet := cv.LowerSet()
	requiredSet := required.LowerSet()
	if len(requiredSet) == 0 {
		return 100.0, types.SkillsDetails{MatchRate: "0/0"}
	}

	matched := 0
	for skill := range requiredSet {
		if _, ok := cvSet[skill]; ok {
			matched++
		}
	}

	return float64(matched) / float64(len(requiredSet)) * 100, types.SkillsDetails{
		Required:  len(requiredSet),
		Found:     matched,
		Missing:   len(requiredSet) - matched,
		MatchRate: fmt.Sprintf("%d/%d", matched, len(requiredSet)),
	}
}

// computeExperienceScore compares seniority ranks. The first minimum-years
// requirement is reported in the details but never changes the score.
func computeExperienceScore(p *messages.Printer, cv types.ExperienceSignal, required types.RequiredExperience) (float64, types.ExperienceDetails) {
	var (
		score   float64
		details types.ExperienceDetails
	)

	cvRank := cv.Level.Rank()
	reqRank := required.LevelRequired.Rank()
	levelKnown := required.LevelRequired.Known()

	switch {
	case !levelKnown:
		score = experienceUnspecified
		details.Note = p.Sprintf(messages.ScoreNoLevelRequirement)
	case !cv.Level.Known():
		score = experienceFarBelow
		details.Match = p.Sprintf(messages.ScoreLevelUnknown, string(required.LevelRequired))
	case cvRank >= reqRank:
		score = experienceMeets
		details.Match = p.Sprintf(messages.ScoreLevelMeets, string(cv.Level), string(required.LevelRequired))
	case cvRank == reqRank-1:
		score = experienceOneBelow
		details.Match = p.Sprintf(messages.ScoreLevelOneBelow, string(cv.Level), string(required.LevelRequired))
	default:
		score = experienceFarBelow
		details.Match = p.Sprintf(messages.ScoreLevelBelow, string(cv.Level), string(required.LevelRequired))
	}

	if years, ok := required.MinYears(); ok {
		details.YearsRequired = &years
		switch {
		case !levelKnown:
			details.YearsNote = p.Sprintf(messages.YearsNoLevel)
		case cv.Level.Known() && cvRank >= reqRank:
			details.YearsNote = p.Sprintf(messages.YearsSufficient)
		default:
			details.YearsNote = p.Sprintf(messages.YearsMoreNeeded)
		}
	}

	return score, details
}

// computeContextScore weighs professional experience above personal projects
// and personal projects above academic work.
func computeContextScore(ctx types.ContextDistribution) (float64, types.ContextDetails) {
	p := ctx.Percentages
	score := p.Professional*professionalFactor + p.Personal*personalFactor + p.Academic*academicFactor
	score = math.Min(score, 100)

	return score, types.ContextDetails{
		Professional: formatPercent(p.Professional),
		Academic:     formatPercent(p.Academic),
		Personal:     formatPercent(p.Personal),
		Dominant:     ctx.Dominant,
	}
}

func formatPercent(v float64) string {
	return messages.Percent(v) + "%"
}

// compareSkills partitions each required category into skills the résumé lists
// under the same category and skills it does not. Empty sides are omitted.
func compareSkills(cv, required types.SkillProfile) (found, missing types.SkillProfile) {
	found = types.SkillProfile{}
	missing = types.SkillProfile{}

	for _, cat := range required {
		have := make(map[string]struct{})
		for _, s := range cv.Get(cat.Category) {
			have[strings.ToLower(s)] = struct{}{}
		}

		var hit, miss []string
		for _, skill := range cat.Skills {
			if _, ok := have[strings.ToLower(skill)]; ok {
				hit = append(hit, skill)
			} else {
				miss = append(miss, skill)
			}
		}
		if len(hit) > 0 {
			found = append(found, types.CategorySkills{Category: cat.Category, Skills: hit})
		}
		if len(miss) > 0 {
			missing = append(missing, types.CategorySkills{Category: cat.Category, Skills: miss})
		}
	}
	return found, missing
}
