package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-analyzer/internal/config"
	"github.com/jonathan/cv-analyzer/internal/server"
)

func newTokenCmd(_ *globalOptions) *cobra.Command {
	var subject string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API bearer token",
		Long: `Signs a bearer token for the REST API with JWT_SECRET. The subject identifies the
caller and is recorded as the candidate of stored analyses when none is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if subject == "" {
				return errors.New("--subject is required")
			}
			jwtCfg, err := config.NewJWTConfig()
			if err != nil {
				return err
			}
			token, err := server.NewJWTService(jwtCfg).GenerateToken(subject)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "Token subject, e.g. a client or recruiter name")
	return cmd
}
