package main

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-analyzer/internal/config"
	"github.com/jonathan/cv-analyzer/internal/observability"
	"github.com/jonathan/cv-analyzer/internal/pipeline"
	"github.com/jonathan/cv-analyzer/internal/schemas"
	schemafiles "github.com/jonathan/cv-analyzer/schemas"
)

type analyzeOptions struct {
	cv         string
	job        string
	jobURL     string
	format     string
	out        string
	lang       string
	useBrowser bool
}

func newAnalyzeCmd(g *globalOptions) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a résumé against a job description",
		Long: `Runs the full analysis: parse the résumé and the job description, score the match
and generate recommendations. The résumé may be a PDF, DOCX or plain-text file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalyze(cmd, g, opts)
		},
	}

	cmd.Flags().StringVar(&opts.cv, "cv", "", "Path to the résumé (PDF, DOCX or text)")
	cmd.Flags().StringVarP(&opts.job, "job", "j", "", "Path to job posting text or HTML file (mutually exclusive with --job-url)")
	cmd.Flags().StringVar(&opts.jobURL, "job-url", "", "URL to fetch job posting from (mutually exclusive with --job)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "Output format: json or text (default json)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Write the report to this file instead of stdout")
	cmd.Flags().StringVar(&opts.lang, "lang", "", "Report language, e.g. en or es (defaults to REPORT_LANGUAGE env var)")
	cmd.Flags().BoolVar(&opts.useBrowser, "use-browser", false, "Use headless browser for SPA sites (requires Chrome)")

	return cmd
}

func runAnalyze(cmd *cobra.Command, g *globalOptions, opts *analyzeOptions) error {
	fromFlags := config.Config{CV: opts.cv, Format: opts.format, Language: opts.lang}
	cfg := fromFlags.MergeWithDefaults(g.cfg)
	cfg.Job, cfg.JobURL = jobSource(cmd, opts.job, opts.jobURL, g.cfg)
	cfg.UseBrowser = boolFlag(cmd, "use-browser", opts.useBrowser, g.cfg.UseBrowser)
	if cfg.Format == "" {
		cfg.Format = config.FormatJSON
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	lang, err := reportLanguage(cfg.Language)
	if err != nil {
		return err
	}

	cvText, info, err := readResume(cfg.CV)
	if err != nil {
		return err
	}
	jobText, err := readJob(cmd.Context(), cfg.Job, cfg.JobURL, cfg.UseBrowser)
	if err != nil {
		return err
	}

	analyzer, err := g.newAnalyzer(cmd, lang)
	if err != nil {
		return err
	}
	report, err := analyzer.Analyze(cmd.Context(), pipeline.Input{
		CVText:   cvText,
		JobText:  jobText,
		CVInfo:   info,
		Language: lang,
	})
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	slog.Debug("analysis complete", "total_score", report.MatchResult.TotalScore)

	out, closeOut, err := openOutput(cmd, opts.out)
	if err != nil {
		return err
	}

	if cfg.Format == config.FormatText {
		observability.NewPrinter(out, lang).PrintReport(report)
		return closeOut()
	}

	var buf bytes.Buffer
	if err := writeJSON(&buf, report); err != nil {
		_ = closeOut()
		return err
	}
	if err := validateReport(buf.Bytes()); err != nil {
		_ = closeOut()
		return err
	}
	if _, err := out.Write(buf.Bytes()); err != nil {
		_ = closeOut()
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := closeOut(); err != nil {
		return err
	}

	if opts.out != "" {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", opts.out)
	}
	return nil
}

// validateReport checks the JSON report against the embedded schema. Only a
// real mismatch is an error; a schema that fails to load is logged.
func validateReport(data []byte) error {
	err := schemas.ValidateBytes(schemafiles.Report, data)
	if err == nil {
		return nil
	}

	var validationErr *schemas.ValidationError
	var schemaLoadErr *schemas.SchemaLoadError
	switch {
	case errors.As(err, &validationErr):
		return fmt.Errorf("generated JSON does not validate against schema: %w", err)
	case errors.As(err, &schemaLoadErr):
		slog.Warn("could not validate report against schema", "error", err)
	default:
		slog.Warn("could not validate report", "error", err)
	}
	return nil
}

// writeProfile writes a parse-only result as indented JSON.
func writeProfile(cmd *cobra.Command, path string, v any) error {
	out, closeOut, err := openOutput(cmd, path)
	if err != nil {
		return err
	}
	if err := writeJSON(out, v); err != nil {
		_ = closeOut()
		return err
	}
	return closeOut()
}
