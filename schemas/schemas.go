// Package schemas embeds the JSON Schema documents for taxonomy datasets and analysis reports.
package schemas

import "embed"

// Schema file names.
const (
	SkillsDatabase = "skills_database.schema.json"
	Keywords       = "keywords.schema.json"
	Report         = "report.schema.json"
)

//go:embed *.schema.json
var files embed.FS

// Read returns the raw contents of the named schema.
func Read(name string) ([]byte, error) {
	return files.ReadFile(name)
}

// Names lists every embedded schema.
func Names() []string {
	return []string{SkillsDatabase, Keywords, Report}
}
