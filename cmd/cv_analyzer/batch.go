package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-analyzer/internal/config"
	"github.com/jonathan/cv-analyzer/internal/observability"
	"github.com/jonathan/cv-analyzer/internal/pipeline"
	"github.com/jonathan/cv-analyzer/internal/types"
)

// resumeExtensions are the files batch picks up from --cv-dir.
var resumeExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".txt":  true,
	".md":   true,
}

type batchOptions struct {
	cvDir      string
	job        string
	jobURL     string
	workers    int
	format     string
	out        string
	lang       string
	useBrowser bool
}

// batchEntry is one line of the JSON ranking.
type batchEntry struct {
	Rank       int           `json:"rank"`
	Name       string        `json:"name"`
	TotalScore *float64      `json:"total_score,omitempty"`
	Error      string        `json:"error,omitempty"`
	Report     *types.Report `json:"report,omitempty"`
}

func newBatchCmd(g *globalOptions) *cobra.Command {
	opts := &batchOptions{}

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Rank every résumé in a directory against one job description",
		Long: `Analyzes each PDF, DOCX, text or markdown résumé in --cv-dir against the same job description
in parallel and prints the candidates ordered by total score. Résumés that cannot be read are listed last.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBatch(cmd, g, opts)
		},
	}

	cmd.Flags().StringVar(&opts.cvDir, "cv-dir", "", "Directory of résumés")
	cmd.Flags().StringVarP(&opts.job, "job", "j", "", "Path to job posting text or HTML file (mutually exclusive with --job-url)")
	cmd.Flags().StringVar(&opts.jobURL, "job-url", "", "URL to fetch job posting from (mutually exclusive with --job)")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "Number of résumés analyzed in parallel (default: number of CPUs)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "Output format: json or text (default text)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Write the ranking to this file instead of stdout")
	cmd.Flags().StringVar(&opts.lang, "lang", "", "Report language, e.g. en or es (defaults to REPORT_LANGUAGE env var)")
	cmd.Flags().BoolVar(&opts.useBrowser, "use-browser", false, "Use headless browser for SPA sites (requires Chrome)")

	return cmd
}

func runBatch(cmd *cobra.Command, g *globalOptions, opts *batchOptions) error {
	if opts.cvDir == "" {
		return errors.New("--cv-dir is required")
	}

	fromFlags := config.Config{Format: opts.format, Language: opts.lang, Workers: opts.workers}
	cfg := fromFlags.MergeWithDefaults(g.cfg)
	cfg.Job, cfg.JobURL = jobSource(cmd, opts.job, opts.jobURL, g.cfg)
	cfg.CV = ""
	if cfg.Format == "" {
		cfg.Format = config.FormatText
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	lang, err := reportLanguage(cfg.Language)
	if err != nil {
		return err
	}

	candidates, failed, err := readResumeDir(opts.cvDir)
	if err != nil {
		return err
	}
	if len(candidates)+len(failed) == 0 {
		return fmt.Errorf("no résumés found in %s", opts.cvDir)
	}

	jobText, err := readJob(cmd.Context(), cfg.Job, cfg.JobURL, boolFlag(cmd, "use-browser", opts.useBrowser, g.cfg.UseBrowser))
	if err != nil {
		return err
	}

	analyzer, err := g.newAnalyzer(cmd, lang)
	if err != nil {
		return err
	}

	slog.Info("ranking candidates", "count", len(candidates), "unreadable", len(failed), "workers", cfg.Workers)
	results, err := analyzer.Rank(cmd.Context(), jobText, candidates, cfg.Workers, lang)
	if err != nil {
		return fmt.Errorf("batch analysis failed: %w", err)
	}
	results = append(results, failed...)

	out, closeOut, err := openOutput(cmd, opts.out)
	if err != nil {
		return err
	}

	if cfg.Format == config.FormatText {
		observability.NewPrinter(out, lang).PrintRanking(results)
		return closeOut()
	}

	entries := make([]batchEntry, 0, len(results))
	for i, r := range results {
		entry := batchEntry{Rank: i + 1, Name: r.Name, Report: r.Report}
		if r.Err != nil {
			entry.Error = r.Err.Error()
		} else {
			score := r.Score()
			entry.TotalScore = &score
		}
		entries = append(entries, entry)
	}
	if err := writeJSON(out, entries); err != nil {
		_ = closeOut()
		return err
	}
	return closeOut()
}

// readResumeDir extracts every résumé in dir, sorted by file name. Files that
// fail extraction are returned as failed results instead of aborting.
func readResumeDir(dir string) ([]pipeline.Candidate, []pipeline.Ranked, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read résumé directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !resumeExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var (
		candidates []pipeline.Candidate
		failed     []pipeline.Ranked
	)
	for _, name := range names {
		text, info, err := readResume(filepath.Join(dir, name))
		if err != nil {
			slog.Warn("skipping unreadable résumé", "file", name, "error", err)
			failed = append(failed, pipeline.Ranked{Name: name, Err: err})
			continue
		}
		candidates = append(candidates, pipeline.Candidate{Name: name, Text: text, Info: info})
	}
	return candidates, failed, nil
}
