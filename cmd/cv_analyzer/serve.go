package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/jonathan/cv-analyzer/internal/config"
	"github.com/jonathan/cv-analyzer/internal/db"
	"github.com/jonathan/cv-analyzer/internal/pipeline"
	"github.com/jonathan/cv-analyzer/internal/server"
	"github.com/jonathan/cv-analyzer/internal/taxonomy"
)

func newServeCmd(g *globalOptions) *cobra.Command {
	var servePort int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long: `Start an HTTP server that exposes the analysis endpoints.

The server is configured from the environment (PORT, REPORT_LANGUAGE, MAX_UPLOAD_BYTES,
TAXONOMY_DATABASE_URL, STORE_ANALYSES, JWT_SECRET, RATE_LIMIT_*). Global flags override
the taxonomy settings.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return fmt.Errorf("invalid server configuration: %w", err)
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = servePort
			}
			applyTaxonomyOverrides(cfg, g.cfg)
			if g.cfg.LogLevel == "" && !g.cfg.Verbose {
				slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.LogLevel})))
			}
			return runServe(cmd.Context(), cfg, g.cfg.StrictLoading)
		},
	}

	cmd.Flags().IntVar(&servePort, "port", config.DefaultPort, "Port to listen on (overrides PORT env var)")
	return cmd
}

// applyTaxonomyOverrides copies the taxonomy settings given on the command
// line or config file over the environment.
func applyTaxonomyOverrides(cfg *config.ServerConfig, cli config.Config) {
	if cli.SkillsPath != "" {
		cfg.SkillsPath = cli.SkillsPath
	}
	if cli.KeywordsPath != "" {
		cfg.KeywordsPath = cli.KeywordsPath
	}
	if cli.TaxonomyDB != "" {
		cfg.TaxonomyDB = cli.TaxonomyDB
	}
	if cli.TaxonomyName != "" {
		cfg.TaxonomyName = cli.TaxonomyName
	}
	if cli.Language != "" {
		cfg.Language = cli.Language
	}
}

func runServe(ctx context.Context, cfg *config.ServerConfig, strict bool) error {
	database, err := openDatabase(ctx, cfg.TaxonomyDB, strict)
	if err != nil {
		return err
	}
	if database != nil {
		defer database.Close()
	}

	tax, err := serverTaxonomy(ctx, cfg, database, strict)
	if err != nil {
		return err
	}
	st := tax.Stats()
	slog.Info("taxonomy loaded", "categories", st.Categories, "skills", st.Skills, "empty", tax.IsEmpty())

	lang, err := language.Parse(cfg.Language)
	if err != nil {
		slog.Warn("invalid REPORT_LANGUAGE, using English", "language", cfg.Language)
		lang = language.English
	}
	analyzer := pipeline.New(tax, pipeline.Options{Language: lang})

	var jwtService *server.JWTService
	if config.AuthEnabled() {
		jwtCfg, err := config.NewJWTConfig()
		if err != nil {
			return fmt.Errorf("invalid JWT configuration: %w", err)
		}
		jwtService = server.NewJWTService(jwtCfg)
	}

	srv, err := server.New(cfg, server.Deps{
		Analyzer: analyzer,
		DB:       database,
		JWT:      jwtService,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start(ctx)
}

// openDatabase connects to and migrates the configured database. Outside strict
// mode a database that cannot be used is logged and the server runs without
// one, serving the dataset files and answering 503 on the history endpoints.
func openDatabase(ctx context.Context, url string, strict bool) (*db.DB, error) {
	if url == "" {
		return nil, nil
	}

	database, err := db.Connect(ctx, url)
	if err == nil {
		if err = database.Migrate(ctx); err != nil {
			database.Close()
		}
	}
	if err == nil {
		return database, nil
	}
	if strict {
		return nil, err
	}
	slog.Warn("database unavailable, running without it", "error", err)
	return nil, nil
}

// serverTaxonomy prefers the stored taxonomy. Outside strict mode a stored
// taxonomy that cannot be loaded falls back to the dataset files, and broken
// files leave the server running with what could be loaded.
func serverTaxonomy(ctx context.Context, cfg *config.ServerConfig, database *db.DB, strict bool) (*taxonomy.Taxonomy, error) {
	if database != nil {
		tax, err := taxonomy.LoadFromSource(ctx, database.Taxonomy(cfg.TaxonomyName))
		if err == nil {
			return tax, nil
		}
		if strict {
			return nil, err
		}
		slog.Warn("stored taxonomy unavailable, using dataset files", "name", cfg.TaxonomyName, "error", err)
	}

	if strict {
		return taxonomy.Load(cfg.SkillsPath, cfg.KeywordsPath)
	}
	return taxonomy.LoadOrEmpty(cfg.SkillsPath, cfg.KeywordsPath), nil
}
