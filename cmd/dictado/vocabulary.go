package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/nadzzz/dictado/internal/taxonomy"
)

func vocabularyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vocabulary",
		Short: "Print the categories, priorities and date words the interpreter knows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(taxonomy.Default().Vocabulary())
		},
	}
}
