package parsing

import (
	"github.com/jonathan/cv-analyzer/internal/taxonomy"
	"github.com/jonathan/cv-analyzer/internal/types"
)

func testTaxonomy() *taxonomy.Taxonomy {
	return taxonomy.New(taxonomy.Spec{
		TechnicalSkills: []taxonomy.Category{
			{Name: "programming_languages", Skills: []string{"Python", "Java", "JavaScript", "C++", "Go"}},
			{Name: "frameworks_backend", Skills: []string{"Django", "Spring", ".NET"}},
			{Name: "frameworks_frontend", Skills: []string{"React", "Vue"}},
			{Name: "databases", Skills: []string{"PostgreSQL", "MongoDB"}},
			{Name: "version_control", Skills: []string{"Git", "GitHub"}},
		},
		SoftSkills: []string{"teamwork", "comunicación", "leadership"},
		ExperienceLevels: []taxonomy.LevelKeywords{
			{Level: types.LevelJunior, Keywords: []string{"junior", "trainee"}},
			{Level: types.LevelMid, Keywords: []string{"mid-level"}},
			{Level: types.LevelSenior, Keywords: []string{"senior", "tech lead"}},
		},
		ContextKeywords: []taxonomy.ContextKeywords{
			{Type: types.ContextProfessional, Keywords: []string{"company", "empresa"}},
			{Type: types.ContextAcademic, Keywords: []string{"university", "thesis"}},
			{Type: types.ContextPersonal, Keywords: []string{"side project"}},
		},
		JobRoles:       []string{"backend engineer", "developer"},
		Certifications: []string{"aws certified"},
		Methodologies:  []string{"Scrum", "Agile"},
		YearsPatterns:  []string{`(\d+)\+?\s*years?\s+of\s+experience`},
		TimePeriodPatterns: []string{
			`(?:19|20)\d{2}\s*-\s*(?:(?:19|20)\d{2}|Present)`,
		},
	})
}
