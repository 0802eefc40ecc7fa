// Package recommend turns an analysis and its match result into categorized advice.
//
// Advice is produced by an ordered list of independent rules. Each rule reads
// the same Input and returns tagged advice; the outputs are concatenated in
// rule order, so the result is deterministic.
package recommend

import (
	"strings"

	"github.com/jonathan/cv-analyzer/internal/messages"
	"github.com/jonathan/cv-analyzer/internal/types"
	"golang.org/x/text/language"
)

// Kind is the severity bucket of an advice item.
type Kind string

const (
	KindCritical    Kind = "critical"
	KindImprovement Kind = "improvement"
	KindStrength    Kind = "strength"
)

// Advice is one recommendation.
type Advice struct {
	Kind Kind
	Text string
}

// Input is everything a rule may read.
type Input struct {
	CV      types.ResumeProfile
	Job     types.JobRequirements
	Match   types.MatchResult
	Printer *messages.Printer
}

// Rule derives advice from an input. Rules must not modify the input.
type Rule func(in Input) []Advice

// DefaultRules is the fixed evaluation order.
var DefaultRules = []Rule{MissingSkills, Experience, Context, Strengths}

// criticalCategories are the categories whose missing skills block a match.
var criticalCategories = map[string]bool{
	"programming_languages": true,
	"frameworks_backend":    true,
	"frameworks_frontend":   true,
}

// foundationalSkills are expected of everyone; missing ones are usually just unlisted.
var foundationalSkills = map[string]bool{
	"git":    true,
	"github": true,
	"html":   true,
	"css":    true,
}

// missingAggregateThreshold is the number of missing skills that triggers a summary advice.
const missingAggregateThreshold = 5

// Generator applies rules in order and renders advice in one language.
type Generator struct {
	rules   []Rule
	printer *messages.Printer
}

// New returns a generator using DefaultRules in the language closest to tag.
func New(tag language.Tag) *Generator {
	return &Generator{rules: DefaultRules, printer: messages.NewPrinter(tag)}
}

// WithRules returns a copy of g that applies rules instead.
func (g *Generator) WithRules(rules ...Rule) *Generator {
	return &Generator{rules: rules, printer: g.printer}
}

// Language returns the language advice is rendered in.
func (g *Generator) Language() language.Tag {
	return g.printer.Tag()
}

// Generate evaluates every rule and groups the advice by kind.
func (g *Generator) Generate(cv types.ResumeProfile, job types.JobRequirements, match types.MatchResult) types.Recommendations {
	in := Input{CV: cv, Job: job, Match: match, Printer: g.printer}
	var advice []Advice
	for _, rule := range g.rules {
		advice = append(advice, rule(in)...)
	}
	return Collect(advice)
}

// Collect groups advice by kind, keeping order within each kind.
func Collect(advice []Advice) types.Recommendations {
	rec := types.Recommendations{
		Critical:     []string{},
		Improvements: []string{},
		Strengths:    []string{},
	}
	for _, a := range advice {
		switch a.Kind {
		case KindCritical:
			rec.Critical = append(rec.Critical, a.Text)
		case KindImprovement:
			rec.Improvements = append(rec.Improvements, a.Text)
		case KindStrength:
			rec.Strengths = append(rec.Strengths, a.Text)
		}
	}
	return rec
}

func (in Input) printer() *messages.Printer {
	if in.Printer != nil {
		return in.Printer
	}
	return messages.NewPrinter(language.English)
}

// MissingSkills flags every missing required skill and summarizes long gaps.
func MissingSkills(in Input) []Advice {
	p := in.printer()
	var out []Advice
	for _, cat := range in.Match.SkillsMissing {
		name := p.Category(cat.Category)
		for _, skill := range cat.Skills {
			switch {
			case foundationalSkills[strings.ToLower(skill)]:
				out = append(out, Advice{KindImprovement, p.Sprintf(messages.MissingFoundational, skill)})
			case criticalCategories[cat.Category]:
				out = append(out, Advice{KindCritical, p.Sprintf(messages.MissingCritical, skill, name)})
			default:
				out = append(out, Advice{KindImprovement, p.Sprintf(messages.MissingOther, skill, name)})
			}
		}
	}
	if n := in.Match.SkillsMissing.Total(); n >= missingAggregateThreshold {
		out = append(out, Advice{KindImprovement, p.Sprintf(messages.MissingMany, n)})
	}
	return out
}

// Experience compares seniority and surfaces any minimum-years requirement.
func Experience(in Input) []Advice {
	p := in.printer()
	var out []Advice

	score := in.Match.Breakdown.Experience.Score
	cvLevel := in.CV.Experience.Level
	required := in.Job.RequiredExperience.LevelRequired

	switch {
	case score < 70:
		if cvLevel == types.LevelJunior && (required == types.LevelMid || required == types.LevelSenior) {
			out = append(out, Advice{KindImprovement, p.Sprintf(messages.ExperienceGap, string(required), string(cvLevel))})
		}
	case score >= 90:
		out = append(out, Advice{KindStrength, p.Sprintf(messages.ExperienceMatch, string(cvLevel))})
	}

	if years, ok := in.Job.RequiredExperience.MinYears(); ok {
		out = append(out, Advice{KindImprovement, p.Sprintf(messages.YearsRequired, years)})
	}
	return out
}

// Context reacts to where the résumé's experience comes from.
func Context(in Input) []Advice {
	p := in.printer()
	var out []Advice
	shares := in.CV.Context.Percentages

	if shares.Academic > 60 {
		out = append(out, Advice{KindImprovement, p.Sprintf(messages.ContextAcademic)})
		if shares.Personal > 0 {
			out = append(out, Advice{KindImprovement, p.Sprintf(messages.ContextPersonalProjects)})
		}
	}
	if shares.Professional > 0 {
		out = append(out, Advice{KindStrength, p.Sprintf(messages.ContextProfessional, messages.Percent(shares.Professional))})
	}
	if shares.Academic == 100 {
		out = append(out, Advice{KindCritical, p.Sprintf(messages.ContextOnlyAcademic)})
	}
	return out
}

// Strengths lists matched categories, soft skills and methodologies.
func Strengths(in Input) []Advice {
	p := in.printer()
	var out []Advice
	for _, cat := range in.Match.SkillsFound {
		if len(cat.Skills) == 0 {
			continue
		}
		out = append(out, Advice{KindStrength, p.Sprintf(messages.StrengthCategory, p.Category(cat.Category), strings.Join(cat.Skills, ", "))})
	}
	if len(in.CV.SoftSkills) > 0 {
		out = append(out, Advice{KindStrength, p.Sprintf(messages.StrengthSoftSkills, strings.Join(in.CV.SoftSkills, ", "))})
	}
	if len(in.CV.Methodologies) > 0 {
		out = append(out, Advice{KindStrength, p.Sprintf(messages.StrengthMethodologies, strings.Join(in.CV.Methodologies, ", "))})
	}
	return out
}
