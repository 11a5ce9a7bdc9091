package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/erickai/companion/backend/internal/analysis/emotion"
)

func newClassifyCmd() *cobra.Command {
	var lexiconPath string

	cmd := &cobra.Command{
		Use:   "classify <text...>",
		Short: "Classify text and print the analysis as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lexicon := emotion.DefaultLexicon()
			if lexiconPath != "" {
				loaded, err := emotion.LoadLexicon(lexiconPath)
				if err != nil {
					return err
				}
				lexicon = loaded
			}

			result := emotion.NewAnalyzer(lexicon).Classify(strings.Join(args, " "))
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(result); err != nil {
				return fmt.Errorf("failed to encode analysis: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&lexiconPath, "lexicon", "", "YAML lexicon file replacing the built-in table")
	return cmd
}
