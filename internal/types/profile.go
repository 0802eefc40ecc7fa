// Package types provides type definitions for structured data used throughout the cv-analyzer system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"strconv"
)

// Level is a seniority level detected in a résumé or required by a job.
type Level string

const (
	LevelJunior  Level = "junior"
	LevelMid     Level = "mid"
	LevelSenior  Level = "senior"
	LevelUnknown Level = "unknown"
)

// Rank returns the ordinal position of the level (junior=1, mid=2, senior=3, unknown=0).
func (l Level) Rank() int {
	switch l {
	case LevelJunior:
		return 1
	case LevelMid:
		return 2
	case LevelSenior:
		return 3
	default:
		return 0
	}
}

// Known reports whether l is one of junior, mid or senior.
func (l Level) Known() bool {
	return l.Rank() > 0
}

// ExperienceSignal is the experience information extracted from a résumé.
type ExperienceSignal struct {
	Level         Level    `json:"level"`
	YearsDetected []string `json:"years_detected"`
	Details       []string `json:"details"`
}

// ContextType is a kind of experience context.
type ContextType string

const (
	ContextProfessional ContextType = "professional"
	ContextAcademic     ContextType = "academic"
	ContextPersonal     ContextType = "personal"
)

// ContextTypes lists the context types in declaration order.
// Ties for the dominant context resolve to the earliest entry.
var ContextTypes = []ContextType{ContextProfessional, ContextAcademic, ContextPersonal}

// ContextTally holds keyword occurrence counts per context type.
type ContextTally struct {
	Professional int `json:"professional"`
	Academic     int `json:"academic"`
	Personal     int `json:"personal"`
}

// Get returns the count for t.
func (c ContextTally) Get(t ContextType) int {
	switch t {
	case ContextProfessional:
		return c.Professional
	case ContextAcademic:
		return c.Academic
	case ContextPersonal:
		return c.Personal
	}
	return 0
}

// Add increments the count for t by n. Unknown types are ignored.
func (c *ContextTally) Add(t ContextType, n int) {
	switch t {
	case ContextProfessional:
		c.Professional += n
	case ContextAcademic:
		c.Academic += n
	case ContextPersonal:
		c.Personal += n
	}
}

// Total returns the sum across all types.
func (c ContextTally) Total() int {
	return c.Professional + c.Academic + c.Personal
}

// ContextShares holds percentages per context type.
type ContextShares struct {
	Professional float64 `json:"professional"`
	Academic     float64 `json:"academic"`
	Personal     float64 `json:"personal"`
}

// Get returns the percentage for t.
func (c ContextShares) Get(t ContextType) float64 {
	switch t {
	case ContextProfessional:
		return c.Professional
	case ContextAcademic:
		return c.Academic
	case ContextPersonal:
		return c.Personal
	}
	return 0
}

// Set stores the percentage for t. Unknown types are ignored.
func (c *ContextShares) Set(t ContextType, v float64) {
	switch t {
	case ContextProfessional:
		c.Professional = v
	case ContextAcademic:
		c.Academic = v
	case ContextPersonal:
		c.Personal = v
	}
}

// ContextDistribution describes where the résumé's experience comes from.
type ContextDistribution struct {
	Counts      ContextTally  `json:"counts"`
	Percentages ContextShares `json:"percentages"`
	Dominant    ContextType   `json:"dominant"`
}

// ResumeSummary is the condensed view of a résumé profile.
type ResumeSummary struct {
	TotalTechnicalSkills int            `json:"total_technical_skills"`
	SkillsByCategory     CategoryCounts `json:"skills_by_category"`
	ExperienceLevel      Level          `json:"experience_level"`
	DominantContext      ContextType    `json:"dominant_context"`
	ContextDistribution  ContextShares  `json:"context_distribution"`
}

// ResumeProfile is the structured result of analyzing a résumé.
type ResumeProfile struct {
	TechnicalSkills SkillProfile        `json:"technical_skills"`
	SoftSkills      []string            `json:"soft_skills"`
	Experience      ExperienceSignal    `json:"experience"`
	Context         ContextDistribution `json:"context"`
	Roles           []string            `json:"roles"`
	Certifications  []string            `json:"certifications"`
	Methodologies   []string            `json:"methodologies"`
	Summary         ResumeSummary       `json:"summary"`
}

// RequiredExperience is the experience a job posting asks for.
type RequiredExperience struct {
	YearsRequired []string `json:"years_required"`
	LevelRequired Level    `json:"level_required"`
	Details       []string `json:"details"`
}

// MinYears returns the first detected years requirement as an integer.
// Values that do not parse are skipped.
func (r RequiredExperience) MinYears() (int, bool) {
	if len(r.YearsRequired) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(r.YearsRequired[0])
	if err != nil {
		return 0, false
	}
	return n, true
}

// JobRequirements is the structured result of analyzing a job description.
type JobRequirements struct {
	RequiredSkills     SkillProfile       `json:"required_skills"`
	RequiredExperience RequiredExperience `json:"required_experience"`
	NiceToHaveSkills   []string           `json:"nice_to_have_skills"`
	TotalRequirements  int                `json:"total_requirements"`
}
