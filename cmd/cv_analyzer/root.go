package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/jonathan/cv-analyzer/internal/config"
	"github.com/jonathan/cv-analyzer/internal/db"
	"github.com/jonathan/cv-analyzer/internal/ingestion"
	"github.com/jonathan/cv-analyzer/internal/observability"
	"github.com/jonathan/cv-analyzer/internal/pipeline"
	"github.com/jonathan/cv-analyzer/internal/taxonomy"
	"github.com/jonathan/cv-analyzer/internal/types"
)

// globalOptions holds the persistent flags and the config they resolve to.
type globalOptions struct {
	configPath   string
	skills       string
	keywords     string
	taxonomyDB   string
	taxonomyName string
	logLevel     string
	verbose      bool
	strict       bool

	// cfg is the config file merged under the flags above; subcommands merge
	// their own flags over it.
	cfg config.Config
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "cv_analyzer",
		Short: "CV Analyzer: résumé and job-offer compatibility analysis",
		Long: `CV Analyzer extracts technical skills, experience level and context from a résumé,
compares them with a job description and reports a weighted compatibility score with recommendations.

Configuration can be loaded from a JSON file using --config. Command-line flags override config file values.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return g.load(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&g.configPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	flags.StringVar(&g.skills, "skills", "", "Skills database file, JSON or YAML (default: embedded dataset)")
	flags.StringVar(&g.keywords, "keywords", "", "Keywords file, JSON or YAML (default: embedded dataset)")
	flags.StringVar(&g.taxonomyDB, "taxonomy-db", "", "PostgreSQL URL of a stored taxonomy (defaults to TAXONOMY_DATABASE_URL env var)")
	flags.StringVar(&g.taxonomyName, "taxonomy-name", "", "Name of the stored taxonomy (default \"default\")")
	flags.StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	flags.BoolVarP(&g.verbose, "verbose", "v", false, "Print progress and debug information")
	flags.BoolVar(&g.strict, "strict", false, "Fail when a taxonomy dataset cannot be loaded instead of continuing without it")

	rootCmd.AddCommand(
		newAnalyzeCmd(g),
		newParseCVCmd(g),
		newParseJobCmd(g),
		newBatchCmd(g),
		newServeCmd(g),
		newTaxonomyCmd(g),
		newTokenCmd(g),
	)
	return rootCmd
}

// load reads the config file, merges it under the persistent flags and
// configures logging.
func (g *globalOptions) load(cmd *cobra.Command) error {
	var file config.Config
	if g.configPath != "" {
		loaded, err := config.LoadConfig(g.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		file = *loaded
	}

	fromFlags := config.Config{
		SkillsPath:   g.skills,
		KeywordsPath: g.keywords,
		TaxonomyDB:   g.taxonomyDB,
		TaxonomyName: g.taxonomyName,
		LogLevel:     g.logLevel,
	}
	cfg := fromFlags.MergeWithDefaults(file)
	cfg.Verbose = boolFlag(cmd, "verbose", g.verbose, file.Verbose)
	cfg.StrictLoading = boolFlag(cmd, "strict", g.strict, file.StrictLoading)
	if cfg.TaxonomyDB == "" {
		cfg.TaxonomyDB = os.Getenv("TAXONOMY_DATABASE_URL")
	}
	if cfg.TaxonomyName == "" {
		cfg.TaxonomyName = os.Getenv("TAXONOMY_NAME")
	}

	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	if cfg.Verbose && cfg.LogLevel == "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))

	g.cfg = cfg
	return nil
}

// boolFlag returns the flag value when it was set explicitly, else the config file value.
func boolFlag(cmd *cobra.Command, name string, flagValue, fileValue bool) bool {
	if cmd.Flags().Changed(name) {
		return flagValue
	}
	return fileValue
}

// loadTaxonomy loads the stored taxonomy when a database is configured and
// the dataset files otherwise. Outside strict mode an unreachable database or
// a missing stored taxonomy falls back to the dataset files.
func (g *globalOptions) loadTaxonomy(ctx context.Context) (*taxonomy.Taxonomy, error) {
	if g.cfg.TaxonomyDB == "" {
		return g.loadTaxonomyFiles()
	}

	tax, err := g.loadStoredTaxonomy(ctx)
	if err == nil {
		return tax, nil
	}
	if g.cfg.StrictLoading {
		return nil, err
	}
	slog.Warn("stored taxonomy unavailable, using dataset files", "name", g.cfg.TaxonomyName, "error", err)
	return g.loadTaxonomyFiles()
}

func (g *globalOptions) loadStoredTaxonomy(ctx context.Context) (*taxonomy.Taxonomy, error) {
	database, err := db.Connect(ctx, g.cfg.TaxonomyDB)
	if err != nil {
		return nil, err
	}
	defer database.Close()
	return taxonomy.LoadFromSource(ctx, database.Taxonomy(g.cfg.TaxonomyName))
}

func (g *globalOptions) loadTaxonomyFiles() (*taxonomy.Taxonomy, error) {
	if g.cfg.StrictLoading {
		return taxonomy.Load(g.cfg.SkillsPath, g.cfg.KeywordsPath)
	}
	return taxonomy.LoadOrEmpty(g.cfg.SkillsPath, g.cfg.KeywordsPath), nil
}

// newAnalyzer builds an analyzer over the configured taxonomy. In verbose
// mode progress events are printed to stderr.
func (g *globalOptions) newAnalyzer(cmd *cobra.Command, lang language.Tag) (*pipeline.Analyzer, error) {
	tax, err := g.loadTaxonomy(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("failed to load taxonomy: %w", err)
	}

	opts := pipeline.Options{Language: lang}
	if g.cfg.Verbose {
		progress := observability.NewPrinter(cmd.ErrOrStderr(), lang)
		opts.OnProgress = progress.PrintProgress
	}
	return pipeline.New(tax, opts), nil
}

// reportLanguage parses name, falling back to REPORT_LANGUAGE and then English.
func reportLanguage(name string) (language.Tag, error) {
	if name == "" {
		name = os.Getenv("REPORT_LANGUAGE")
	}
	if name == "" {
		return language.English, nil
	}
	tag, err := language.Parse(name)
	if err != nil {
		return language.Und, fmt.Errorf("invalid language %q: %w", name, err)
	}
	return tag, nil
}

// readResume extracts the text of a PDF, DOCX or plain-text résumé.
func readResume(path string) (string, *types.DocumentInfo, error) {
	if path == "" {
		return "", nil, errors.New("--cv is required")
	}
	doc, size, err := ingestion.ReadDocument(path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read résumé: %w", err)
	}
	return doc.Text, doc.Info(filepath.Base(path), size), nil
}

// readJob loads the job description from a file or a URL.
func readJob(ctx context.Context, path, url string, useBrowser bool) (string, error) {
	switch {
	case path != "" && url != "":
		return "", errors.New("--job and --job-url are mutually exclusive")
	case url != "":
		text, meta, err := ingestion.IngestFromURL(ctx, url, ingestion.URLOptions{UseBrowser: useBrowser})
		if err != nil {
			return "", fmt.Errorf("failed to fetch job posting: %w", err)
		}
		slog.Debug("job posting fetched", "url", url, "platform", meta.Platform, "rendered", meta.Rendered, "hash", meta.Hash)
		return text, nil
	case path != "":
		text, _, err := ingestion.IngestFromFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read job posting: %w", err)
		}
		return text, nil
	}
	return "", errors.New("either --job or --job-url is required")
}

// jobSource applies config file inputs under the flags. A flag on either job
// input replaces both file inputs so the two never conflict.
func jobSource(cmd *cobra.Command, job, jobURL string, file config.Config) (string, string) {
	if cmd.Flags().Changed("job") || cmd.Flags().Changed("job-url") {
		return job, jobURL
	}
	return file.Job, file.JobURL
}

// openOutput returns stdout, or the named file when path is set.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}
