package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"liuren/internal/store"
)

// seedCmd installs the built-in knowledge snippet corpus.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Install the built-in knowledge snippet corpus",
	Long: `Replaces the snippet table with the built-in corpus of palace, beast
and kinship passages used to enrich explanations.`,
	RunE: runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := buildStack(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	snippets := store.DefaultSnippets()
	if err := s.db.SeedSnippets(ctx, snippets); err != nil {
		return err
	}
	fmt.Printf("seeded %d snippets\n", len(snippets))
	return nil
}
