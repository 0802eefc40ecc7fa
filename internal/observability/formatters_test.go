package observability

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"

	"github.com/jonathan/cv-analyzer/internal/pipeline"
	"github.com/jonathan/cv-analyzer/internal/types"
)

func sampleReport() *types.Report {
	return &types.Report{
		CVInfo: &types.DocumentInfo{
			Filename:      "ana.pdf",
			SizeBytes:     2048,
			NumPages:      2,
			NumCharacters: 1800,
			Metadata:      map[string]string{"title": "Ana García CV"},
		},
		CVAnalysis: types.ResumeProfile{
			TechnicalSkills: types.SkillProfile{
				{Category: "programming_languages", Skills: []string{"Python", "Go"}},
				{Category: "databases", Skills: []string{"PostgreSQL"}},
			},
			SoftSkills: []string{"teamwork"},
			Experience: types.ExperienceSignal{Level: types.LevelMid, YearsDetected: []string{"4"}},
			Context: types.ContextDistribution{
				Percentages: types.ContextShares{Professional: 75, Academic: 25},
				Dominant:    types.ContextProfessional,
			},
			Methodologies: []string{"scrum"},
			Summary:       types.ResumeSummary{TotalTechnicalSkills: 3},
		},
		JobAnalysis: types.JobRequirements{
			RequiredSkills: types.SkillProfile{
				{Category: "programming_languages", Skills: []string{"Python"}},
				{Category: "frameworks_frontend", Skills: []string{"React"}},
			},
			RequiredExperience: types.RequiredExperience{
				YearsRequired: []string{"3"},
				LevelRequired: types.LevelMid,
			},
			NiceToHaveSkills:  []string{"docker"},
			TotalRequirements: 2,
		},
		MatchResult: types.MatchResult{
			TotalScore: 70,
			Breakdown: types.Breakdown{
				Skills: types.SkillsFactor{
					Score: 50, Weight: 0.6, Contribution: 30,
					Details: types.SkillsDetails{Required: 2, Found: 1, Missing: 1, MatchRate: "1/2"},
				},
				Experience: types.ExperienceFactor{
					Score: 100, Weight: 0.25, Contribution: 25,
					Details: types.ExperienceDetails{Match: "exact match"},
				},
				Context: types.ContextFactor{Score: 100, Weight: 0.15, Contribution: 15},
			},
			SkillsFound:   types.SkillProfile{{Category: "programming_languages", Skills: []string{"Python"}}},
			SkillsMissing: types.SkillProfile{{Category: "frameworks_frontend", Skills: []string{"React"}}},
		},
		Recommendations: types.Recommendations{
			Critical:  []string{"Required technology: React (Frameworks frontend) - consider learning it or highlighting it if you already know it"},
			Strengths: []string{"Your experience level (mid) matches the requirement"},
		},
	}
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, language.English)

	p.PrintReport(sampleReport())
	output := buf.String()

	for _, want := range []string{
		"DOCUMENT", "ana.pdf", "Ana García CV",
		"RÉSUMÉ PROFILE", "Programming languages: Python, Go", "Experience level: mid",
		"JOB REQUIREMENTS", "Minimum years:  3", "Nice to have:   docker",
		"MATCH SCORE", "Total score: 70.00 / 100", "Skills: 1 of 2 required found (1/2)",
		"Experience: exact match",
		"RECOMMENDATIONS", "Critical (1)", "Improvements (0)", "Strengths (1)",
	} {
		assert.Contains(t, output, want)
	}
}

func TestPrintReport_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, language.English)

	p.PrintReport(nil)
	p.PrintDocumentInfo(nil)
	p.PrintResumeProfile(nil)
	p.PrintJobRequirements(nil)
	p.PrintMatchResult(nil)
	p.PrintRecommendations(nil)
	p.PrintRanking(nil)

	assert.Empty(t, buf.String())
}

func TestPrintReport_WithoutDocument(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, language.English)

	report := sampleReport()
	report.CVInfo = nil
	p.PrintReport(report)

	assert.NotContains(t, buf.String(), "DOCUMENT")
	assert.Contains(t, buf.String(), "MATCH SCORE")
}

func TestPrintResumeProfile_LocalizedCategories(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, language.Spanish)

	p.PrintResumeProfile(&sampleReport().CVAnalysis)

	assert.Contains(t, buf.String(), "Lenguajes de programación: Python, Go")
	assert.Contains(t, buf.String(), "Bases de datos: PostgreSQL")
}

func TestPrintBox_LinesFit(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, language.English)

	p.PrintRecommendations(&sampleReport().Recommendations)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	for _, line := range lines {
		assert.Equal(t, boxWidth, utf8.RuneCountInString(line), "line %q", line)
	}
	assert.Contains(t, buf.String(), "highlighting it if you already know it")
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		width int
		want  []string
	}{
		{name: "fits", line: "short line", width: 20, want: []string{"short line"}},
		{name: "splits at words", line: "one two three four", width: 9, want: []string{"one two", "  three", "  four"}},
		{name: "keeps indentation", line: "  • alpha beta gamma", width: 12, want: []string{"  • alpha", "    beta", "    gamma"}},
		{name: "long word kept", line: "a supercalifragilistic b", width: 10, want: []string{"a", "  supercalifragilistic", "  b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, wrap(tt.line, tt.width))
		})
	}
}

func TestPrintMatchResult_Notes(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, language.English)

	p.PrintMatchResult(&types.MatchResult{
		TotalScore: 80,
		Breakdown: types.Breakdown{
			Skills:     types.SkillsFactor{Details: types.SkillsDetails{Note: "No specific technologies required"}},
			Experience: types.ExperienceFactor{Details: types.ExperienceDetails{Note: "Level not specified", YearsNote: "3 years required"}},
		},
	})
	output := buf.String()

	assert.Contains(t, output, "Skills: No specific technologies required")
	assert.Contains(t, output, "Experience: Level not specified")
	assert.Contains(t, output, "Years: 3 years required")
	assert.NotContains(t, output, "Missing:")
}

func TestPrintRanking(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, language.English)

	p.PrintRanking([]pipeline.Ranked{
		{Name: "ana.pdf", Report: sampleReport()},
		{Name: strings.Repeat("x", 50) + ".pdf", Report: &types.Report{}},
		{Name: "broken.pdf", Err: errors.New("extract broken.pdf: bad xref")},
	})
	output := buf.String()

	assert.Contains(t, output, "CANDIDATE RANKING")
	assert.Contains(t, output, "ana.pdf")
	assert.Contains(t, output, "70.00")
	assert.Contains(t, output, strings.Repeat("x", 37)+"...")
	assert.Contains(t, output, "error")
	assert.Contains(t, output, "bad xref")
}

func TestPrintProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, language.English)

	p.PrintProgress(pipeline.ProgressEvent{Step: pipeline.StageScore, Message: "Scoring match"})

	assert.Equal(t, "["+pipeline.StageScore+"] Scoring match\n", buf.String())
}
