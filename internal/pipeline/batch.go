package pipeline

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"github.com/jonathan/cv-analyzer/internal/types"
)

// Candidate is one résumé in a batch.
type Candidate struct {
	Name string
	Text string
	Info *types.DocumentInfo
}

// Ranked is the outcome for one candidate. Err is set when that candidate
// could not be analyzed; the rest of the batch is unaffected.
type Ranked struct {
	Name   string
	Report *types.Report
	Err    error
}

// Score returns the total score, or -1 for a failed candidate.
func (r Ranked) Score() float64 {
	if r.Err != nil || r.Report == nil {
		return -1
	}
	return r.Report.MatchResult.TotalScore
}

// Rank analyzes every candidate against one job description using up to
// workers goroutines, and returns results ordered by descending score. Ties
// keep input order and failed candidates come last. Only context cancellation
// aborts the batch.
func (a *Analyzer) Rank(ctx context.Context, jobText string, candidates []Candidate, workers int, lang language.Tag) ([]Ranked, error) {
	if workers < 1 {
		workers = 1
	}

	results := make([]Ranked, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, c := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			report, err := a.Analyze(gctx, Input{CVText: c.Text, JobText: jobText, CVInfo: c.Info, Language: lang})
			if err != nil && gctx.Err() != nil {
				return gctx.Err()
			}
			results[i] = Ranked{Name: c.Name, Report: report, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score() > results[j].Score()
	})
	return results, nil
}
