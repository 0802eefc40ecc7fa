package parsing

import (
	"regexp"
	"strings"

	"github.com/jonathan/cv-analyzer/internal/taxonomy"
	"github.com/jonathan/cv-analyzer/internal/types"
)

// yearsRequiredPatterns detect minimum-years requirements in English and Spanish.
// Captures are collected in this order.
var yearsRequiredPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d+)\s*(?:\+|o más)?\s*años?\s+de\s+experiencia`),
	regexp.MustCompile(`(\d+)\s*(?:\+|or more)?\s*years?\s+(?:of\s+)?experience`),
	regexp.MustCompile(`mínimo\s+(\d+)\s+años?`),
	regexp.MustCompile(`minimum\s+(\d+)\s+years?`),
	regexp.MustCompile(`al menos\s+(\d+)\s+años?`),
	regexp.MustCompile(`at least\s+(\d+)\s+years?`),
}

// optionalSectionPatterns match a nice-to-have marker and the rest of its line.
var optionalSectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?im)(?:nice to have|desirable|deseable|valorable|se valorará|plus|bonus).*?(?:\n|$)`),
	regexp.MustCompile(`(?im)(?:opcionales?|optional).*?(?:\n|$)`),
}

// JobAnalyzer extracts requirements from a job description.
// It is safe for concurrent use.
type JobAnalyzer struct {
	tax *taxonomy.Taxonomy
}

// NewJobAnalyzer returns an analyzer backed by tax. A nil taxonomy behaves as empty.
func NewJobAnalyzer(tax *taxonomy.Taxonomy) *JobAnalyzer {
	if tax == nil {
		tax = taxonomy.Empty()
	}
	return &JobAnalyzer{tax: tax}
}

// Parse analyzes a job description. It never fails.
func (a *JobAnalyzer) Parse(text string) types.JobRequirements {
	normalized := Normalize(text)
	required := scanSkills(a.tax, normalized)

	return types.JobRequirements{
		RequiredSkills:     required,
		RequiredExperience: a.experience(normalized),
		NiceToHaveSkills:   a.niceToHave(normalized),
		TotalRequirements:  required.Total(),
	}
}

func (a *JobAnalyzer) experience(normalized string) types.RequiredExperience {
	req := types.RequiredExperience{
		YearsRequired: []string{},
		LevelRequired: detectLevel(a.tax, normalized),
		Details:       []string{},
	}
	for _, re := range yearsRequiredPatterns {
		req.YearsRequired = append(req.YearsRequired, findAll(re, normalized)...)
	}
	return req
}

// niceToHave scans only the optional sections of the posting. Hits are listed
// in taxonomy order without category grouping.
func (a *JobAnalyzer) niceToHave(normalized string) []string {
	var sections []string
	for _, re := range optionalSectionPatterns {
		sections = append(sections, re.FindAllString(normalized, -1)...)
	}
	if len(sections) == 0 {
		return []string{}
	}

	optional := strings.Join(sections, " ")
	out := []string{}
	for _, cat := range a.tax.Categories() {
		out = append(out, matchWholeWords(optional, cat.Skills)...)
	}
	return out
}
