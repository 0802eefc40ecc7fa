// Package types provides type definitions for structured data used throughout the cv-analyzer system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// CategorySkills is one skill category with the canonical skills matched in it.
type CategorySkills struct {
	Category string
	Skills   []string
}

// SkillProfile maps skill categories to matched canonical skills.
// Entry order follows the taxonomy; it marshals to a JSON object with keys in that order.
type SkillProfile []CategorySkills

// Get returns the skills recorded for category, or nil.
func (p SkillProfile) Get(category string) []string {
	for _, c := range p {
		if c.Category == category {
			return c.Skills
		}
	}
	return nil
}

// Categories returns the category names in order.
func (p SkillProfile) Categories() []string {
	names := make([]string, 0, len(p))
	for _, c := range p {
		names = append(names, c.Category)
	}
	return names
}

// Total returns the number of skills across all categories.
func (p SkillProfile) Total() int {
	total := 0
	for _, c := range p {
		total += len(c.Skills)
	}
	return total
}

// Counts returns per-category skill counts in profile order.
func (p SkillProfile) Counts() CategoryCounts {
	counts := make(CategoryCounts, 0, len(p))
	for _, c := range p {
		counts = append(counts, CategoryCount{Category: c.Category, Count: len(c.Skills)})
	}
	return counts
}

// LowerSet flattens the profile into a set of lowercased skill names.
// Category information is discarded.
func (p SkillProfile) LowerSet() map[string]struct{} {
	set := make(map[string]struct{})
	for _, c := range p {
		for _, s := range c.Skills {
			set[strings.ToLower(s)] = struct{}{}
		}
	}
	return set
}

// MarshalJSON encodes the profile as an object keyed by category, preserving order.
func (p SkillProfile) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Category)
		if err != nil {
			return nil, err
		}
		skills := c.Skills
		if skills == nil {
			skills = []string{}
		}
		val, err := json.Marshal(skills)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object keyed by category, keeping document order.
func (p *SkillProfile) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*p = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("skill profile: expected object, got %v", tok)
	}

	out := SkillProfile{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("skill profile: expected string key, got %v", keyTok)
		}
		var skills []string
		if err := dec.Decode(&skills); err != nil {
			return fmt.Errorf("skill profile: category %s: %w", key, err)
		}
		out = append(out, CategorySkills{Category: key, Skills: skills})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*p = out
	return nil
}

// CategoryCount is the number of skills found in one category.
type CategoryCount struct {
	Category string
	Count    int
}

// CategoryCounts is an ordered list of category counts; it marshals to a JSON object.
type CategoryCounts []CategoryCount

// MarshalJSON encodes the counts as an object keyed by category, preserving order.
func (c CategoryCounts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, cc := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(cc.Category)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		fmt.Fprintf(&buf, ":%d", cc.Count)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object of category counts, keeping document order.
func (c *CategoryCounts) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*c = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("category counts: expected object, got %v", tok)
	}

	out := CategoryCounts{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("category counts: expected string key, got %v", keyTok)
		}
		var n int
		if err := dec.Decode(&n); err != nil {
			return fmt.Errorf("category counts: category %s: %w", key, err)
		}
		out = append(out, CategoryCount{Category: key, Count: n})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*c = out
	return nil
}
