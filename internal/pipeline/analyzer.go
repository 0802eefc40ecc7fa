// Package pipeline provides the high-level orchestration of an analysis:
// résumé parsing, job parsing, scoring and recommendations.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/jonathan/cv-analyzer/internal/messages"
	"github.com/jonathan/cv-analyzer/internal/parsing"
	"github.com/jonathan/cv-analyzer/internal/recommend"
	"github.com/jonathan/cv-analyzer/internal/scoring"
	"github.com/jonathan/cv-analyzer/internal/taxonomy"
	"github.com/jonathan/cv-analyzer/internal/types"
)

// Stage names reported in progress events.
const (
	StageParseCV   = "parse_cv"
	StageParseJob  = "parse_job"
	StageScore     = "score"
	StageRecommend = "recommend"
)

// ErrEmptyInput is returned when the résumé or job text is blank.
var ErrEmptyInput = errors.New("résumé and job texts are required")

// ProgressEvent represents a progress update during an analysis
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called when analysis progress occurs
type ProgressCallback func(event ProgressEvent)

// Options configures an Analyzer.
type Options struct {
	// Language is the default report language. Unsupported or empty means English.
	Language   language.Tag
	OnProgress ProgressCallback
}

// Input is one analysis request.
type Input struct {
	CVText  string
	JobText string
	// CVInfo is copied into the report as-is when set.
	CVInfo *types.DocumentInfo
	// Language overrides the analyzer default when not language.Und.
	Language language.Tag
	// OnProgress receives this request's events in addition to the
	// analyzer-wide callback.
	OnProgress ProgressCallback
}

// Analyzer runs analyses against one taxonomy. It holds no per-request state
// and is safe for concurrent use.
type Analyzer struct {
	tax        *taxonomy.Taxonomy
	resume     *parsing.ResumeAnalyzer
	job        *parsing.JobAnalyzer
	generators map[language.Tag]*recommend.Generator
	printers   map[language.Tag]*messages.Printer
	lang       language.Tag
	onProgress ProgressCallback
}

// New returns an analyzer backed by tax. A nil taxonomy behaves as empty.
func New(tax *taxonomy.Taxonomy, opts Options) *Analyzer {
	if tax == nil {
		tax = taxonomy.Empty()
	}
	a := &Analyzer{
		tax:        tax,
		resume:     parsing.NewResumeAnalyzer(tax),
		job:        parsing.NewJobAnalyzer(tax),
		generators: make(map[language.Tag]*recommend.Generator, len(messages.Supported)),
		printers:   make(map[language.Tag]*messages.Printer, len(messages.Supported)),
		lang:       messages.Match(opts.Language.String()),
		onProgress: opts.OnProgress,
	}
	for _, tag := range messages.Supported {
		a.generators[tag] = recommend.New(tag)
		a.printers[tag] = messages.NewPrinter(tag)
	}
	return a
}

// Taxonomy returns the taxonomy the analyzer was built with.
func (a *Analyzer) Taxonomy() *taxonomy.Taxonomy {
	return a.tax
}

// Language returns the default report language.
func (a *Analyzer) Language() language.Tag {
	return a.lang
}

// ParseResume runs only the résumé analyzer.
func (a *Analyzer) ParseResume(text string) types.ResumeProfile {
	return a.resume.Parse(text)
}

// ParseJob runs only the job analyzer.
func (a *Analyzer) ParseJob(text string) types.JobRequirements {
	return a.job.Parse(text)
}

func (a *Analyzer) emit(in Input, step, message string, content any) {
	ev := ProgressEvent{Step: step, Message: message, Content: content}
	if a.onProgress != nil {
		a.onProgress(ev)
	}
	if in.OnProgress != nil {
		in.OnProgress(ev)
	}
}

// reportLanguage resolves a request language to a supported one.
func (a *Analyzer) reportLanguage(tag language.Tag) language.Tag {
	if tag == language.Und {
		return a.lang
	}
	return messages.Match(tag.String())
}

// Analyze runs every stage in order. The context is checked between stages.
func (a *Analyzer) Analyze(ctx context.Context, in Input) (*types.Report, error) {
	if strings.TrimSpace(in.CVText) == "" {
		return nil, fmt.Errorf("%w: résumé text is empty", ErrEmptyInput)
	}
	if strings.TrimSpace(in.JobText) == "" {
		return nil, fmt.Errorf("%w: job text is empty", ErrEmptyInput)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cv := a.resume.Parse(in.CVText)
	a.emit(in, StageParseCV, fmt.Sprintf("found %d technical skills, level %s", cv.Summary.TotalTechnicalSkills, cv.Experience.Level), cv.Summary)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	job := a.job.Parse(in.JobText)
	a.emit(in, StageParseJob, fmt.Sprintf("found %d required skills, level %s", job.TotalRequirements, job.RequiredExperience.LevelRequired), nil)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	lang := a.reportLanguage(in.Language)
	match := scoring.Score(cv, job, a.printers[lang])
	a.emit(in, StageScore, fmt.Sprintf("total score %.2f", match.TotalScore), match.Breakdown)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	recs := a.generators[lang].Generate(cv, job, match)
	a.emit(in, StageRecommend, fmt.Sprintf("%d critical, %d improvements, %d strengths",
		len(recs.Critical), len(recs.Improvements), len(recs.Strengths)), nil)

	return &types.Report{
		CVInfo:          in.CVInfo,
		CVAnalysis:      cv,
		JobAnalysis:     job,
		MatchResult:     match,
		Recommendations: recs,
	}, nil
}
