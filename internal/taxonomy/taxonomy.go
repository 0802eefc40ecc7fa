// Package taxonomy holds the lexicon that drives résumé and job analysis: skill
// categories, soft skills, experience-level indicators, context keywords and the
// regular expressions used to detect years of experience and time periods.
//
// A Taxonomy is built once and is read-only afterwards; it is safe for concurrent use.
package taxonomy

import (
	"log/slog"
	"regexp"
	"slices"

	"github.com/jonathan/cv-analyzer/internal/types"
)

// KnownCategories is the closed set of technical-skill categories, in default order.
var KnownCategories = []string{
	"programming_languages",
	"frameworks_backend",
	"frameworks_frontend",
	"mobile_development",
	"databases",
	"cloud_platforms",
	"devops_tools",
	"version_control",
	"testing",
	"data_science_ml",
	"other_tools",
}

// IsKnownCategory reports whether name belongs to KnownCategories.
func IsKnownCategory(name string) bool {
	return slices.Contains(KnownCategories, name)
}

// Category is an ordered list of canonical skills under one category name.
type Category struct {
	Name   string   `json:"name"`
	Skills []string `json:"skills"`
}

// LevelKeywords lists the indicator keywords for one experience level.
type LevelKeywords struct {
	Level    types.Level `json:"level"`
	Keywords []string    `json:"keywords"`
}

// ContextKeywords lists the indicator keywords for one context type.
type ContextKeywords struct {
	Type     types.ContextType `json:"type"`
	Keywords []string          `json:"keywords"`
}

// Spec is the plain-data form of a taxonomy. Order is significant in every list.
type Spec struct {
	TechnicalSkills    []Category        `json:"technical_skills"`
	SoftSkills         []string          `json:"soft_skills"`
	ExperienceLevels   []LevelKeywords   `json:"experience_levels"`
	ContextKeywords    []ContextKeywords `json:"context_keywords"`
	JobRoles           []string          `json:"job_roles"`
	Certifications     []string          `json:"certifications"`
	Methodologies      []string          `json:"methodologies"`
	YearsPatterns      []string          `json:"years_patterns"`
	TimePeriodPatterns []string          `json:"time_period_patterns"`
}

// Taxonomy is the compiled, immutable lexicon.
type Taxonomy struct {
	spec         Spec
	yearsRegexps []*regexp.Regexp
	timeRegexps  []*regexp.Regexp
}

// New builds a Taxonomy from spec. Patterns that fail to compile are skipped
// and logged; the rest of the taxonomy is kept.
func New(spec Spec) *Taxonomy {
	t := &Taxonomy{spec: cloneSpec(spec)}
	t.yearsRegexps = compilePatterns("years_experience", t.spec.YearsPatterns)
	t.timeRegexps = compilePatterns("time_periods", t.spec.TimePeriodPatterns)
	return t
}

// Empty returns a taxonomy with no entries. Analysis against it yields empty results.
func Empty() *Taxonomy {
	return New(Spec{})
}

func compilePatterns(kind string, patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			slog.Warn("skipping taxonomy pattern", "kind", kind, "pattern", p, "error", err)
			continue
		}
		out = append(out, re)
	}
	return out
}

func cloneSpec(s Spec) Spec {
	out := Spec{
		SoftSkills:         slices.Clone(s.SoftSkills),
		JobRoles:           slices.Clone(s.JobRoles),
		Certifications:     slices.Clone(s.Certifications),
		Methodologies:      slices.Clone(s.Methodologies),
		YearsPatterns:      slices.Clone(s.YearsPatterns),
		TimePeriodPatterns: slices.Clone(s.TimePeriodPatterns),
	}
	for _, c := range s.TechnicalSkills {
		out.TechnicalSkills = append(out.TechnicalSkills, Category{Name: c.Name, Skills: slices.Clone(c.Skills)})
	}
	for _, l := range s.ExperienceLevels {
		out.ExperienceLevels = append(out.ExperienceLevels, LevelKeywords{Level: l.Level, Keywords: slices.Clone(l.Keywords)})
	}
	for _, c := range s.ContextKeywords {
		out.ContextKeywords = append(out.ContextKeywords, ContextKeywords{Type: c.Type, Keywords: slices.Clone(c.Keywords)})
	}
	return out
}

// The accessors below return the taxonomy's own slices; callers must not modify them.

// Categories returns the technical-skill categories in taxonomy order.
func (t *Taxonomy) Categories() []Category { return t.spec.TechnicalSkills }

// SoftSkills returns the soft-skill phrases.
func (t *Taxonomy) SoftSkills() []string { return t.spec.SoftSkills }

// ExperienceLevels returns the level indicator lists in taxonomy order.
func (t *Taxonomy) ExperienceLevels() []LevelKeywords { return t.spec.ExperienceLevels }

// ContextKeywords returns the keyword lists per context type.
func (t *Taxonomy) ContextKeywords() []ContextKeywords { return t.spec.ContextKeywords }

// JobRoles returns the role names.
func (t *Taxonomy) JobRoles() []string { return t.spec.JobRoles }

// Certifications returns the certification phrases.
func (t *Taxonomy) Certifications() []string { return t.spec.Certifications }

// Methodologies returns the methodology names.
func (t *Taxonomy) Methodologies() []string { return t.spec.Methodologies }

// YearsPatterns returns the compiled years-of-experience expressions.
func (t *Taxonomy) YearsPatterns() []*regexp.Regexp { return t.yearsRegexps }

// TimePeriodPatterns returns the compiled time-period expressions.
func (t *Taxonomy) TimePeriodPatterns() []*regexp.Regexp { return t.timeRegexps }

// Spec returns a copy of the taxonomy's plain data.
func (t *Taxonomy) Spec() Spec { return cloneSpec(t.spec) }

// IsEmpty reports whether the taxonomy holds no skills, keywords or patterns.
func (t *Taxonomy) IsEmpty() bool {
	s := t.spec
	return len(s.TechnicalSkills) == 0 && len(s.SoftSkills) == 0 &&
		len(s.ExperienceLevels) == 0 && len(s.ContextKeywords) == 0 &&
		len(s.JobRoles) == 0 && len(s.Certifications) == 0 &&
		len(s.Methodologies) == 0 && len(t.yearsRegexps) == 0 && len(t.timeRegexps) == 0
}

// Stats counts entries per section.
type Stats struct {
	Categories     int
	Skills         int
	SoftSkills     int
	Levels         int
	ContextTypes   int
	JobRoles       int
	Certifications int
	Methodologies  int
	YearsPatterns  int
	TimePatterns   int
}

// Stats returns entry counts, for display.
func (t *Taxonomy) Stats() Stats {
	st := Stats{
		Categories:     len(t.spec.TechnicalSkills),
		SoftSkills:     len(t.spec.SoftSkills),
		Levels:         len(t.spec.ExperienceLevels),
		ContextTypes:   len(t.spec.ContextKeywords),
		JobRoles:       len(t.spec.JobRoles),
		Certifications: len(t.spec.Certifications),
		Methodologies:  len(t.spec.Methodologies),
		YearsPatterns:  len(t.yearsRegexps),
		TimePatterns:   len(t.timeRegexps),
	}
	for _, c := range t.spec.TechnicalSkills {
		st.Skills += len(c.Skills)
	}
	return st
}
