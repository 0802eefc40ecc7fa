// Package messages provides the localized texts used in reports.
// Translations are stored as JSON files and embedded at compile time; English
// is the default and the fallback for any missing translation.
package messages

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys.
const (
	MissingFoundational     = "missing_foundational"
	MissingCritical         = "missing_critical"
	MissingOther            = "missing_other"
	MissingMany             = "missing_many"
	ExperienceGap           = "experience_gap"
	ExperienceMatch         = "experience_match"
	YearsRequired           = "years_required"
	ContextAcademic         = "context_academic"
	ContextPersonalProjects = "context_personal_projects"
	ContextProfessional     = "context_professional"
	ContextOnlyAcademic     = "context_only_academic"
	StrengthCategory        = "strength_category"
	StrengthSoftSkills      = "strength_soft_skills"
	StrengthMethodologies   = "strength_methodologies"
	AnalysisComplete        = "analysis_complete"
	FileMustBePDF           = "file_must_be_pdf"
	FileTooLarge            = "file_too_large"
	ExtractionFailed        = "extraction_failed"
	JobOfferRequired        = "job_offer_required"

	ScoreNoSkillRequirements = "score_no_skill_requirements"
	ScoreNoLevelRequirement  = "score_no_level_requirement"
	ScoreLevelUnknown        = "score_level_unknown"
	ScoreLevelMeets          = "score_level_meets"
	ScoreLevelOneBelow       = "score_level_one_below"
	ScoreLevelBelow          = "score_level_below"
	YearsNoLevel             = "years_no_level"
	YearsSufficient          = "years_sufficient"
	YearsMoreNeeded          = "years_more_needed"
)

// Supported lists the available languages; the first is the default.
var Supported = []language.Tag{language.English, language.Spanish}

var matcher = language.NewMatcher(Supported)

//go:embed locales/*.json
var localeFiles embed.FS

// Bundle is the content of one locale file.
type Bundle struct {
	Messages   map[string]string `json:"messages"`
	Categories map[string]string `json:"categories"`
}

// cache stores parsed locale files to avoid repeated JSON parsing
var (
	cache   = make(map[string]*Bundle)
	cacheMu sync.RWMutex
)

// LoadBundle returns the parsed locale file for tag's base language.
func LoadBundle(tag language.Tag) (*Bundle, error) {
	base, _ := tag.Base()
	filename := "locales/" + base.String() + ".json"

	cacheMu.RLock()
	if b, ok := cache[filename]; ok {
		cacheMu.RUnlock()
		return b, nil
	}
	cacheMu.RUnlock()

	data, err := localeFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read locale file %s: %w", filename, err)
	}

	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse locale file %s: %w", filename, err)
	}

	cacheMu.Lock()
	cache[filename] = &b
	cacheMu.Unlock()

	return &b, nil
}

// ClearCache clears the locale cache. Useful for testing.
func ClearCache() {
	cacheMu.Lock()
	cache = make(map[string]*Bundle)
	cacheMu.Unlock()
}

var buildCatalog = sync.OnceValues(func() (*catalog.Builder, error) {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for _, tag := range Supported {
		bundle, err := LoadBundle(tag)
		if err != nil {
			return nil, err
		}
		for key, msg := range bundle.Messages {
			if err := b.SetString(tag, key, msg); err != nil {
				return nil, fmt.Errorf("locale %s, key %s: %w", tag, key, err)
			}
		}
	}
	return b, nil
})

// Match picks the supported language that best fits the given preferences.
// Each preference may be a language tag or an Accept-Language header value.
// Unparseable or empty preferences are ignored; without a match English is used.
func Match(prefs ...string) language.Tag {
	var tags []language.Tag
	for _, p := range prefs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		parsed, _, err := language.ParseAcceptLanguage(p)
		if err != nil {
			continue
		}
		tags = append(tags, parsed...)
	}
	if len(tags) == 0 {
		return Supported[0]
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Supported[0]
	}
	return Supported[idx]
}

// Printer formats messages and category names in one language.
type Printer struct {
	tag        language.Tag
	printer    *message.Printer
	categories map[string]string
}

// NewPrinter returns a printer for the supported language closest to tag.
// It panics if the embedded locale files are unusable.
func NewPrinter(tag language.Tag) *Printer {
	tag = Match(tag.String())

	cat, err := buildCatalog()
	if err != nil {
		panic(fmt.Sprintf("failed to load messages: %v", err))
	}
	bundle, err := LoadBundle(tag)
	if err != nil {
		panic(fmt.Sprintf("failed to load messages: %v", err))
	}

	return &Printer{
		tag:        tag,
		printer:    message.NewPrinter(tag, message.Catalog(cat)),
		categories: bundle.Categories,
	}
}

// Tag returns the printer's language.
func (p *Printer) Tag() language.Tag {
	return p.tag
}

// Sprintf formats the message stored under key.
func (p *Printer) Sprintf(key string, args ...interface{}) string {
	return p.printer.Sprintf(key, args...)
}

// Category returns the display name of a skill category. Categories without a
// translation are title-cased with underscores replaced by spaces.
func (p *Printer) Category(name string) string {
	if display, ok := p.categories[name]; ok {
		return display
	}
	return cases.Title(p.tag).String(strings.ReplaceAll(name, "_", " "))
}

// Percent renders a percentage value without the sign, always with at least
// one decimal: 100 becomes "100.0" and 66.67 stays "66.67".
func Percent(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".nN") {
		s += ".0"
	}
	return s
}

// Keys returns the message keys defined for tag, sorted.
func Keys(tag language.Tag) ([]string, error) {
	bundle, err := LoadBundle(tag)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(bundle.Messages))
	for key := range bundle.Messages {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}
