package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-analyzer/internal/db"
	"github.com/jonathan/cv-analyzer/internal/taxonomy"
)

func newTaxonomyCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "taxonomy",
		Short: "Inspect, validate and store skill taxonomies",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "validate",
			Short: "Validate the skills and keywords datasets against their schemas",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				tax, err := taxonomy.Load(g.cfg.SkillsPath, g.cfg.KeywordsPath)
				if err != nil {
					return err
				}
				st := tax.Stats()
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Taxonomy is valid: %d categories, %d skills\n", st.Categories, st.Skills)
				return nil
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Print a summary of the active taxonomy",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				tax, err := g.loadTaxonomy(cmd.Context())
				if err != nil {
					return err
				}
				printTaxonomy(cmd.OutOrStdout(), tax)
				return nil
			},
		},
		newTaxonomyImportCmd(g),
		&cobra.Command{
			Use:   "list",
			Short: "List the taxonomies stored in the database",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				database, err := g.connectTaxonomyDB(cmd)
				if err != nil {
					return err
				}
				defer database.Close()

				summaries, err := database.ListTaxonomies(cmd.Context())
				if err != nil {
					return err
				}
				if len(summaries) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No stored taxonomies")
					return nil
				}
				for _, s := range summaries {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%-20s %6d entries  updated %s\n", s.Name, s.EntryCount, s.UpdatedAt.Format("2006-01-02 15:04"))
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete NAME",
			Short: "Delete a stored taxonomy",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				database, err := g.connectTaxonomyDB(cmd)
				if err != nil {
					return err
				}
				defer database.Close()

				if err := database.DeleteTaxonomy(cmd.Context(), args[0]); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted taxonomy %s\n", args[0])
				return nil
			},
		},
	)
	return cmd
}

func newTaxonomyImportCmd(g *globalOptions) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Store the dataset files in PostgreSQL under a name",
		Long: `Validates the skills and keywords datasets (--skills, --keywords, or the embedded defaults)
and replaces the named taxonomy in the database given by --taxonomy-db.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tax, err := taxonomy.Load(g.cfg.SkillsPath, g.cfg.KeywordsPath)
			if err != nil {
				return err
			}

			database, err := g.connectTaxonomyDB(cmd)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := database.Migrate(cmd.Context()); err != nil {
				return err
			}
			if name == "" {
				name = g.cfg.TaxonomyName
			}
			if name == "" {
				name = db.DefaultTaxonomyName
			}
			n, err := database.ImportTaxonomy(cmd.Context(), name, tax)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported taxonomy %s (%d entries)\n", name, n)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Name to store the taxonomy under (defaults to --taxonomy-name)")
	return cmd
}

func (g *globalOptions) connectTaxonomyDB(cmd *cobra.Command) (*db.DB, error) {
	if g.cfg.TaxonomyDB == "" {
		return nil, errors.New("--taxonomy-db or TAXONOMY_DATABASE_URL is required")
	}
	return db.Connect(cmd.Context(), g.cfg.TaxonomyDB)
}

//nolint:errcheck // writing to stdout; errors are not recoverable
func printTaxonomy(w io.Writer, tax *taxonomy.Taxonomy) {
	st := tax.Stats()
	fmt.Fprintf(w, "Technical skills: %d in %d categories\n", st.Skills, st.Categories)
	for _, c := range tax.Categories() {
		fmt.Fprintf(w, "  %-24s %d\n", c.Name, len(c.Skills))
	}
	fmt.Fprintf(w, "Soft skills:      %d\n", st.SoftSkills)
	fmt.Fprintf(w, "Levels:           %d\n", st.Levels)
	fmt.Fprintf(w, "Context types:    %d\n", st.ContextTypes)
	fmt.Fprintf(w, "Job roles:        %d\n", st.JobRoles)
	fmt.Fprintf(w, "Certifications:   %d\n", st.Certifications)
	fmt.Fprintf(w, "Methodologies:    %d\n", st.Methodologies)
	fmt.Fprintf(w, "Years patterns:   %d\n", st.YearsPatterns)
	fmt.Fprintf(w, "Period patterns:  %d\n", st.TimePatterns)
	if tax.IsEmpty() {
		fmt.Fprintln(w, "Warning: taxonomy is empty; analyses will find nothing")
	}
}
