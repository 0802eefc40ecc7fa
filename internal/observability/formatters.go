// Package observability provides formatted output utilities for the CLI text
// report and verbose mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"

	"github.com/jonathan/cv-analyzer/internal/messages"
	"github.com/jonathan/cv-analyzer/internal/pipeline"
	"github.com/jonathan/cv-analyzer/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for reports and verbose mode
type Printer struct {
	out  io.Writer
	text *messages.Printer
}

// NewPrinter creates a new Printer that writes to the given writer. Category
// names are shown in lang.
func NewPrinter(out io.Writer, lang language.Tag) *Printer {
	return &Printer{out: out, text: messages.NewPrinter(lang)}
}

// printBox prints a formatted box with a title and content. Long lines are
// wrapped at word boundaries.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	inner := boxWidth - 4
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", inner, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		for _, l := range wrap(line, inner) {
			fmt.Fprintf(p.out, "│ %-*s │\n", inner, l)
		}
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// wrap splits line at word boundaries into pieces of at most width runes.
// Continuation lines keep the original indentation plus two spaces. A single
// word longer than width is left intact.
func wrap(line string, width int) []string {
	if utf8.RuneCountInString(line) <= width {
		return []string{line}
	}

	lead := line[:len(line)-len(strings.TrimLeft(line, " "))]
	indent := lead + "  "

	var out []string
	cur, n, fresh := lead, len(lead), true
	for _, word := range strings.Fields(line) {
		wl := utf8.RuneCountInString(word)
		if !fresh && n+1+wl > width {
			out = append(out, cur)
			cur, n, fresh = indent, len(indent), true
		}
		if !fresh {
			cur += " "
			n++
		}
		cur += word
		n += wl
		fresh = false
	}
	return append(out, cur)
}

func joinLimited(items []string, limit int) string {
	if len(items) <= limit {
		return strings.Join(items, ", ")
	}
	return fmt.Sprintf("%s (+%d more)", strings.Join(items[:limit], ", "), len(items)-limit)
}

func (p *Printer) writeSkillProfile(sb *strings.Builder, profile types.SkillProfile) {
	if len(profile) == 0 {
		sb.WriteString("  (none)\n")
		return
	}
	for _, c := range profile {
		fmt.Fprintf(sb, "  • %s: %s\n", p.text.Category(c.Category), joinLimited(c.Skills, maxItemsToShow*2))
	}
}

// PrintResumeProfile outputs a human-readable summary of the parsed résumé.
func (p *Printer) PrintResumeProfile(profile *types.ResumeProfile) {
	if profile == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Technical skills: %d\n", profile.Summary.TotalTechnicalSkills)
	p.writeSkillProfile(&sb, profile.TechnicalSkills)
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "Experience level: %s\n", profile.Experience.Level)
	if len(profile.Experience.YearsDetected) > 0 {
		fmt.Fprintf(&sb, "Years mentioned:  %s\n", strings.Join(profile.Experience.YearsDetected, ", "))
	}

	shares := profile.Context.Percentages
	fmt.Fprintf(&sb, "Context:          %s (professional %.1f%%, academic %.1f%%, personal %.1f%%)\n",
		profile.Context.Dominant, shares.Professional, shares.Academic, shares.Personal)

	if len(profile.SoftSkills) > 0 {
		fmt.Fprintf(&sb, "Soft skills:      %s\n", joinLimited(profile.SoftSkills, maxItemsToShow))
	}
	if len(profile.Methodologies) > 0 {
		fmt.Fprintf(&sb, "Methodologies:    %s\n", joinLimited(profile.Methodologies, maxItemsToShow))
	}
	if len(profile.Roles) > 0 {
		fmt.Fprintf(&sb, "Roles:            %s\n", joinLimited(profile.Roles, maxItemsToShow))
	}
	if len(profile.Certifications) > 0 {
		fmt.Fprintf(&sb, "Certifications:   %s\n", joinLimited(profile.Certifications, maxItemsToShow))
	}

	p.printBox("RÉSUMÉ PROFILE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintJobRequirements outputs a human-readable summary of the parsed job description.
func (p *Printer) PrintJobRequirements(job *types.JobRequirements) {
	if job == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Required technologies: %d\n", job.TotalRequirements)
	p.writeSkillProfile(&sb, job.RequiredSkills)
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "Level required: %s\n", job.RequiredExperience.LevelRequired)
	if years, ok := job.RequiredExperience.MinYears(); ok {
		fmt.Fprintf(&sb, "Minimum years:  %d\n", years)
	}
	if len(job.NiceToHaveSkills) > 0 {
		fmt.Fprintf(&sb, "Nice to have:   %s\n", joinLimited(job.NiceToHaveSkills, maxItemsToShow))
	}

	p.printBox("JOB REQUIREMENTS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintMatchResult outputs the total score and the weighted breakdown.
func (p *Printer) PrintMatchResult(match *types.MatchResult) {
	if match == nil {
		return
	}

	b := match.Breakdown
	var sb strings.Builder
	fmt.Fprintf(&sb, "Total score: %.2f / 100\n\n", match.TotalScore)
	fmt.Fprintf(&sb, "%-12s %7s %7s %13s\n", "Factor", "Score", "Weight", "Contribution")
	fmt.Fprintf(&sb, "%-12s %7.2f %6.0f%% %13.2f\n", "Skills", b.Skills.Score, b.Skills.Weight*100, b.Skills.Contribution)
	fmt.Fprintf(&sb, "%-12s %7.2f %6.0f%% %13.2f\n", "Experience", b.Experience.Score, b.Experience.Weight*100, b.Experience.Contribution)
	fmt.Fprintf(&sb, "%-12s %7.2f %6.0f%% %13.2f\n", "Context", b.Context.Score, b.Context.Weight*100, b.Context.Contribution)
	sb.WriteString("\n")

	if d := b.Skills.Details; d.Note != "" {
		fmt.Fprintf(&sb, "Skills: %s\n", d.Note)
	} else {
		fmt.Fprintf(&sb, "Skills: %d of %d required found (%s)\n", d.Found, d.Required, d.MatchRate)
	}
	if d := b.Experience.Details; d.Match != "" {
		fmt.Fprintf(&sb, "Experience: %s\n", d.Match)
	} else if d.Note != "" {
		fmt.Fprintf(&sb, "Experience: %s\n", d.Note)
	}
	if note := b.Experience.Details.YearsNote; note != "" {
		fmt.Fprintf(&sb, "Years: %s\n", note)
	}

	if len(match.SkillsFound) > 0 {
		sb.WriteString("\nFound:\n")
		p.writeSkillProfile(&sb, match.SkillsFound)
	}
	if len(match.SkillsMissing) > 0 {
		sb.WriteString("\nMissing:\n")
		p.writeSkillProfile(&sb, match.SkillsMissing)
	}

	p.printBox("MATCH SCORE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRecommendations outputs every recommendation grouped by severity.
func (p *Printer) PrintRecommendations(recs *types.Recommendations) {
	if recs == nil {
		return
	}

	var sb strings.Builder
	groups := []struct {
		title string
		items []string
	}{
		{"Critical", recs.Critical},
		{"Improvements", recs.Improvements},
		{"Strengths", recs.Strengths},
	}
	for i, g := range groups {
		fmt.Fprintf(&sb, "%s (%d)\n", g.title, len(g.items))
		for _, item := range g.items {
			fmt.Fprintf(&sb, "  • %s\n", item)
		}
		if i < len(groups)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("RECOMMENDATIONS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDocumentInfo outputs the extracted document statistics.
func (p *Printer) PrintDocumentInfo(info *types.DocumentInfo) {
	if info == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "File:       %s\n", info.Filename)
	fmt.Fprintf(&sb, "Size:       %d bytes\n", info.SizeBytes)
	fmt.Fprintf(&sb, "Pages:      %d\n", info.NumPages)
	fmt.Fprintf(&sb, "Characters: %d", info.NumCharacters)
	if title := info.Metadata["title"]; title != "" {
		fmt.Fprintf(&sb, "\nTitle:      %s", title)
	}

	p.printBox("DOCUMENT", sb.String())
}

// PrintReport outputs a full analysis report.
func (p *Printer) PrintReport(report *types.Report) {
	if report == nil {
		return
	}
	p.PrintDocumentInfo(report.CVInfo)
	p.PrintResumeProfile(&report.CVAnalysis)
	p.PrintJobRequirements(&report.JobAnalysis)
	p.PrintMatchResult(&report.MatchResult)
	p.PrintRecommendations(&report.Recommendations)
}

// PrintRanking outputs batch results in rank order. Failed candidates are
// listed with their error.
func (p *Printer) PrintRanking(results []pipeline.Ranked) {
	if len(results) == 0 {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%-4s %-40s %8s\n", "#", "Candidate", "Score")
	for i, r := range results {
		name := r.Name
		if utf8.RuneCountInString(name) > 40 {
			name = string([]rune(name)[:37]) + "..."
		}
		if r.Err != nil {
			fmt.Fprintf(&sb, "%-4d %-40s %8s\n", i+1, name, "error")
			fmt.Fprintf(&sb, "     %s\n", r.Err)
			continue
		}
		fmt.Fprintf(&sb, "%-4d %-40s %8.2f\n", i+1, name, r.Score())
	}

	p.printBox("CANDIDATE RANKING", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintProgress outputs one pipeline progress event as a single line.
//
//nolint:errcheck // writing to stderr; errors are not recoverable
func (p *Printer) PrintProgress(ev pipeline.ProgressEvent) {
	fmt.Fprintf(p.out, "[%s] %s\n", ev.Step, ev.Message)
}
