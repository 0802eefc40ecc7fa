package main

import (
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
)

func newParseCVCmd(g *globalOptions) *cobra.Command {
	var cvPath, outPath string

	cmd := &cobra.Command{
		Use:   "parse-cv",
		Short: "Extract the structured profile of a résumé",
		Long:  "Parse a résumé (PDF, DOCX or text) into its technical skills, soft skills, experience level, context distribution, roles, certifications and methodologies.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cvPath == "" {
				cvPath = g.cfg.CV
			}
			text, _, err := readResume(cvPath)
			if err != nil {
				return err
			}

			analyzer, err := g.newAnalyzer(cmd, language.English)
			if err != nil {
				return err
			}
			return writeProfile(cmd, outPath, analyzer.ParseResume(text))
		},
	}

	cmd.Flags().StringVar(&cvPath, "cv", "", "Path to the résumé (PDF, DOCX or text)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the profile to this file instead of stdout")
	return cmd
}

func newParseJobCmd(g *globalOptions) *cobra.Command {
	var (
		jobPath, jobURL, outPath string
		useBrowser               bool
	)

	cmd := &cobra.Command{
		Use:   "parse-job",
		Short: "Extract the requirements of a job description",
		Long:  "Parse a job posting from a file or URL into its required technologies, required experience and nice-to-have skills.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			job, url := jobSource(cmd, jobPath, jobURL, g.cfg)
			text, err := readJob(cmd.Context(), job, url, boolFlag(cmd, "use-browser", useBrowser, g.cfg.UseBrowser))
			if err != nil {
				return err
			}

			analyzer, err := g.newAnalyzer(cmd, language.English)
			if err != nil {
				return err
			}
			return writeProfile(cmd, outPath, analyzer.ParseJob(text))
		},
	}

	cmd.Flags().StringVarP(&jobPath, "job", "j", "", "Path to job posting text or HTML file (mutually exclusive with --job-url)")
	cmd.Flags().StringVar(&jobURL, "job-url", "", "URL to fetch job posting from (mutually exclusive with --job)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the requirements to this file instead of stdout")
	cmd.Flags().BoolVar(&useBrowser, "use-browser", false, "Use headless browser for SPA sites (requires Chrome)")
	return cmd
}
