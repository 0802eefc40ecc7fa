package taxonomy

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/jonathan/cv-analyzer/internal/schemas"
	"github.com/jonathan/cv-analyzer/internal/types"
	schemafiles "github.com/jonathan/cv-analyzer/schemas"
	"gopkg.in/yaml.v3"
)

// Dataset names used in LoadError.
const (
	DatasetSkills   = "skills_database"
	DatasetKeywords = "keywords"
)

//go:embed data/skills_database.json
var defaultSkills []byte

//go:embed data/keywords.json
var defaultKeywords []byte

var loadDefault = sync.OnceValues(func() (*Taxonomy, error) {
	return Parse(defaultSkills, defaultKeywords)
})

// Default returns the taxonomy built from the embedded datasets. It is parsed once.
func Default() (*Taxonomy, error) {
	return loadDefault()
}

// Load reads and validates the two dataset files. An empty path selects the
// embedded default for that dataset. Files may be JSON or YAML.
func Load(skillsPath, keywordsPath string) (*Taxonomy, error) {
	var spec Spec
	if err := loadDataset(DatasetSkills, skillsPath, defaultSkills, decodeSkills, &spec); err != nil {
		return nil, err
	}
	if err := loadDataset(DatasetKeywords, keywordsPath, defaultKeywords, decodeKeywords, &spec); err != nil {
		return nil, err
	}
	return New(spec), nil
}

// LoadOrEmpty is Load with a non-fatal policy: a dataset that fails to load is
// logged and contributes nothing, so the result is never nil.
func LoadOrEmpty(skillsPath, keywordsPath string) *Taxonomy {
	var spec Spec
	if err := loadDataset(DatasetSkills, skillsPath, defaultSkills, decodeSkills, &spec); err != nil {
		slog.Warn("taxonomy dataset unavailable, continuing without it", "dataset", DatasetSkills, "error", err)
		spec = Spec{}
	}
	if err := loadDataset(DatasetKeywords, keywordsPath, defaultKeywords, decodeKeywords, &spec); err != nil {
		slog.Warn("taxonomy dataset unavailable, continuing without it", "dataset", DatasetKeywords, "error", err)
		spec.YearsPatterns = nil
		spec.TimePeriodPatterns = nil
	}
	return New(spec)
}

// Parse builds a taxonomy from raw dataset contents. A nil or empty slice
// leaves that dataset empty.
func Parse(skillsData, keywordsData []byte) (*Taxonomy, error) {
	var spec Spec
	if err := decodeSkills(skillsData, &spec); err != nil {
		return nil, &LoadError{Dataset: DatasetSkills, Cause: err}
	}
	if err := decodeKeywords(keywordsData, &spec); err != nil {
		return nil, &LoadError{Dataset: DatasetKeywords, Cause: err}
	}
	return New(spec), nil
}

type decodeFunc func(data []byte, spec *Spec) error

func loadDataset(dataset, path string, fallback []byte, decode decodeFunc, spec *Spec) error {
	data := fallback
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return &LoadError{Dataset: dataset, Path: path, Cause: err}
		}
		data = raw
	}
	if err := decode(data, spec); err != nil {
		return &LoadError{Dataset: dataset, Path: path, Cause: err}
	}
	return nil
}

// pair is one key/value entry of a YAML mapping node.
type pair struct {
	key   string
	value *yaml.Node
}

// documentRoot parses data and returns its root mapping, validated against
// the named schema. It returns nil for an empty document.
func documentRoot(data []byte, schemaName string) (*yaml.Node, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}
	root := resolve(doc.Content[0])

	var generic interface{}
	if err := root.Decode(&generic); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := schemas.ValidateDocument(schemaName, generic); err != nil {
		return nil, err
	}
	if root.Kind != yaml.MappingNode {
		return nil, errors.New("document root is not a mapping")
	}
	return root, nil
}

func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func pairs(n *yaml.Node) []pair {
	n = resolve(n)
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	out := make([]pair, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		out = append(out, pair{key: n.Content[i].Value, value: resolve(n.Content[i+1])})
	}
	return out
}

func stringList(n *yaml.Node, field string) ([]string, error) {
	var out []string
	if err := n.Decode(&out); err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return out, nil
}

func decodeSkills(data []byte, spec *Spec) error {
	root, err := documentRoot(data, schemafiles.SkillsDatabase)
	if err != nil || root == nil {
		return err
	}

	for _, section := range pairs(root) {
		switch section.key {
		case "technical_skills":
			for _, cat := range pairs(section.value) {
				skills, err := stringList(cat.value, "technical_skills."+cat.key)
				if err != nil {
					return err
				}
				spec.TechnicalSkills = append(spec.TechnicalSkills, Category{Name: cat.key, Skills: skills})
			}
		case "experience_keywords":
			for _, sub := range pairs(section.value) {
				if sub.key != "experience_levels" {
					continue
				}
				for _, lvl := range pairs(sub.value) {
					kws, err := stringList(lvl.value, "experience_levels."+lvl.key)
					if err != nil {
						return err
					}
					spec.ExperienceLevels = append(spec.ExperienceLevels, LevelKeywords{Level: types.Level(lvl.key), Keywords: kws})
				}
			}
		case "context_keywords":
			for _, ctx := range pairs(section.value) {
				kws, err := stringList(ctx.value, "context_keywords."+ctx.key)
				if err != nil {
					return err
				}
				spec.ContextKeywords = append(spec.ContextKeywords, ContextKeywords{Type: types.ContextType(ctx.key), Keywords: kws})
			}
		case "soft_skills":
			if spec.SoftSkills, err = stringList(section.value, section.key); err != nil {
				return err
			}
		case "job_roles":
			if spec.JobRoles, err = stringList(section.value, section.key); err != nil {
				return err
			}
		case "certifications":
			if spec.Certifications, err = stringList(section.value, section.key); err != nil {
				return err
			}
		case "methodologies":
			if spec.Methodologies, err = stringList(section.value, section.key); err != nil {
				return err
			}
		}
	}
	return nil
}

func decodeKeywords(data []byte, spec *Spec) error {
	root, err := documentRoot(data, schemafiles.Keywords)
	if err != nil || root == nil {
		return err
	}

	for _, section := range pairs(root) {
		if section.key != "experience_patterns" {
			continue
		}
		for _, p := range pairs(section.value) {
			switch p.key {
			case "years_experience":
				if spec.YearsPatterns, err = stringList(p.value, p.key); err != nil {
					return err
				}
			case "time_periods":
				if spec.TimePeriodPatterns, err = stringList(p.value, p.key); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
