// Package types provides type definitions for structured data used throughout the cv-analyzer system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// SkillsDetails explains the skills sub-score.
type SkillsDetails struct {
	Note      string `json:"note,omitempty"`
	Required  int    `json:"required"`
	Found     int    `json:"found"`
	Missing   int    `json:"missing"`
	MatchRate string `json:"match_rate"`
}

// ExperienceDetails explains the experience sub-score.
type ExperienceDetails struct {
	Note          string `json:"note,omitempty"`
	Match         string `json:"match,omitempty"`
	YearsRequired *int   `json:"years_required,omitempty"`
	YearsNote     string `json:"years_note,omitempty"`
}

// ContextDetails explains the context sub-score.
type ContextDetails struct {
	Professional string      `json:"professional"`
	Academic     string      `json:"academic"`
	Personal     string      `json:"personal"`
	Dominant     ContextType `json:"dominant"`
}

// SkillsFactor is the skills entry of the score breakdown.
type SkillsFactor struct {
	Score        float64       `json:"score"`
	Weight       float64       `json:"weight"`
	Contribution float64       `json:"contribution"`
	Details      SkillsDetails `json:"details"`
}

// ExperienceFactor is the experience entry of the score breakdown.
type ExperienceFactor struct {
	Score        float64           `json:"score"`
	Weight       float64           `json:"weight"`
	Contribution float64           `json:"contribution"`
	Details      ExperienceDetails `json:"details"`
}

// ContextFactor is the context entry of the score breakdown.
type ContextFactor struct {
	Score        float64        `json:"score"`
	Weight       float64        `json:"weight"`
	Contribution float64        `json:"contribution"`
	Details      ContextDetails `json:"details"`
}

// Breakdown holds the three weighted sub-scores.
type Breakdown struct {
	Skills     SkillsFactor     `json:"skills"`
	Experience ExperienceFactor `json:"experience"`
	Context    ContextFactor    `json:"context"`
}

// MatchResult is the compatibility score between a résumé and a job.
type MatchResult struct {
	TotalScore    float64      `json:"total_score"`
	Breakdown     Breakdown    `json:"breakdown"`
	SkillsFound   SkillProfile `json:"skills_found"`
	SkillsMissing SkillProfile `json:"skills_missing"`
	TotalRequired int          `json:"total_required"`
	TotalFound    int          `json:"total_found"`
}

// Recommendations groups advice by severity. Order within each list is rule order.
type Recommendations struct {
	Critical     []string `json:"critical"`
	Improvements []string `json:"improvements"`
	Strengths    []string `json:"strengths"`
}

// DocumentInfo describes the uploaded résumé document. It is produced by ingestion
// and passed through to the report untouched.
type DocumentInfo struct {
	Filename      string            `json:"filename,omitempty"`
	SizeBytes     int               `json:"size_bytes"`
	NumPages      int               `json:"num_pages"`
	NumCharacters int               `json:"num_characters"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// Report is the aggregate result of one analysis.
type Report struct {
	CVInfo          *DocumentInfo   `json:"cv_info,omitempty"`
	CVAnalysis      ResumeProfile   `json:"cv_analysis"`
	JobAnalysis     JobRequirements `json:"job_analysis"`
	MatchResult     MatchResult     `json:"match_result"`
	Recommendations Recommendations `json:"recommendations"`
}
