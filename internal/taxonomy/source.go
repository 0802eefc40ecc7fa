package taxonomy

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/jonathan/cv-analyzer/internal/types"
)

// EntryKind identifies which taxonomy section an Entry belongs to.
type EntryKind string

const (
	KindTechnicalSkill    EntryKind = "technical_skill"
	KindSoftSkill         EntryKind = "soft_skill"
	KindExperienceLevel   EntryKind = "experience_level"
	KindContextKeyword    EntryKind = "context_keyword"
	KindJobRole           EntryKind = "job_role"
	KindCertification     EntryKind = "certification"
	KindMethodology       EntryKind = "methodology"
	KindYearsPattern      EntryKind = "years_pattern"
	KindTimePeriodPattern EntryKind = "time_period_pattern"
)

// Entry is one flattened taxonomy value. Group carries the category, level or
// context type for grouped kinds and is empty otherwise. Position orders entries
// across the whole taxonomy.
type Entry struct {
	Kind     EntryKind
	Group    string
	Value    string
	Position int
}

// EntrySource serves flattened taxonomy entries, e.g. from a database.
type EntrySource interface {
	ListEntries(ctx context.Context) ([]Entry, error)
}

// LoadFromSource builds a taxonomy from the entries served by src.
func LoadFromSource(ctx context.Context, src EntrySource) (*Taxonomy, error) {
	entries, err := src.ListEntries(ctx)
	if err != nil {
		return nil, &LoadError{Dataset: "source", Cause: err}
	}
	t, err := FromEntries(entries)
	if err != nil {
		return nil, &LoadError{Dataset: "source", Cause: err}
	}
	return t, nil
}

// FromEntries rebuilds a taxonomy from flattened entries. Entries are ordered by
// Position; groups appear in the order of their first entry. The same closed
// sets of categories, levels and context types as the dataset schema apply.
func FromEntries(entries []Entry) (*Taxonomy, error) {
	sorted := slices.Clone(entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })

	var spec Spec
	for _, e := range sorted {
		switch e.Kind {
		case KindTechnicalSkill:
			if !IsKnownCategory(e.Group) {
				return nil, fmt.Errorf("entry %d: unknown category %q", e.Position, e.Group)
			}
			i := slices.IndexFunc(spec.TechnicalSkills, func(c Category) bool { return c.Name == e.Group })
			if i < 0 {
				spec.TechnicalSkills = append(spec.TechnicalSkills, Category{Name: e.Group})
				i = len(spec.TechnicalSkills) - 1
			}
			spec.TechnicalSkills[i].Skills = append(spec.TechnicalSkills[i].Skills, e.Value)
		case KindExperienceLevel:
			level := types.Level(e.Group)
			if !level.Known() {
				return nil, fmt.Errorf("entry %d: unknown experience level %q", e.Position, e.Group)
			}
			i := slices.IndexFunc(spec.ExperienceLevels, func(l LevelKeywords) bool { return l.Level == level })
			if i < 0 {
				spec.ExperienceLevels = append(spec.ExperienceLevels, LevelKeywords{Level: level})
				i = len(spec.ExperienceLevels) - 1
			}
			spec.ExperienceLevels[i].Keywords = append(spec.ExperienceLevels[i].Keywords, e.Value)
		case KindContextKeyword:
			ct := types.ContextType(e.Group)
			if !slices.Contains(types.ContextTypes, ct) {
				return nil, fmt.Errorf("entry %d: unknown context type %q", e.Position, e.Group)
			}
			i := slices.IndexFunc(spec.ContextKeywords, func(c ContextKeywords) bool { return c.Type == ct })
			if i < 0 {
				spec.ContextKeywords = append(spec.ContextKeywords, ContextKeywords{Type: ct})
				i = len(spec.ContextKeywords) - 1
			}
			spec.ContextKeywords[i].Keywords = append(spec.ContextKeywords[i].Keywords, e.Value)
		case KindSoftSkill:
			spec.SoftSkills = append(spec.SoftSkills, e.Value)
		case KindJobRole:
			spec.JobRoles = append(spec.JobRoles, e.Value)
		case KindCertification:
			spec.Certifications = append(spec.Certifications, e.Value)
		case KindMethodology:
			spec.Methodologies = append(spec.Methodologies, e.Value)
		case KindYearsPattern:
			spec.YearsPatterns = append(spec.YearsPatterns, e.Value)
		case KindTimePeriodPattern:
			spec.TimePeriodPatterns = append(spec.TimePeriodPatterns, e.Value)
		default:
			return nil, fmt.Errorf("entry %d: unknown kind %q", e.Position, e.Kind)
		}
	}
	return New(spec), nil
}

// Entries flattens the taxonomy. Positions are assigned sequentially so that
// FromEntries(t.Entries()) reproduces t, except for groups with no values.
func (t *Taxonomy) Entries() []Entry {
	var out []Entry
	add := func(kind EntryKind, group string, values []string) {
		for _, v := range values {
			out = append(out, Entry{Kind: kind, Group: group, Value: v, Position: len(out)})
		}
	}

	s := t.spec
	for _, c := range s.TechnicalSkills {
		add(KindTechnicalSkill, c.Name, c.Skills)
	}
	add(KindSoftSkill, "", s.SoftSkills)
	for _, l := range s.ExperienceLevels {
		add(KindExperienceLevel, string(l.Level), l.Keywords)
	}
	for _, c := range s.ContextKeywords {
		add(KindContextKeyword, string(c.Type), c.Keywords)
	}
	add(KindJobRole, "", s.JobRoles)
	add(KindCertification, "", s.Certifications)
	add(KindMethodology, "", s.Methodologies)
	add(KindYearsPattern, "", s.YearsPatterns)
	add(KindTimePeriodPattern, "", s.TimePeriodPatterns)
	return out
}
