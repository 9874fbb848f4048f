package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Wryz/bible-modules/internal/scripture"
	"github.com/Wryz/bible-modules/pkg/config"
)

func loadIndex(v *viper.Viper) (*scripture.Index, error) {
	cfg, err := config.LoadConfig(v)
	if err != nil {
		return nil, err
	}
	corpus, err := scripture.LoadCorpusFile(cfg.CorpusPath)
	if err != nil {
		return nil, err
	}
	return scripture.NewIndex(corpus), nil
}

func newLookupCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup <reference>",
		Short: "Print a verse, optionally expanded to its full sentence",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := loadIndex(v)
			if err != nil {
				return err
			}

			ref := strings.Join(args, " ")
			verse, ok := idx.ParseReference(ref)
			if !ok {
				return fmt.Errorf("verse not found: %q", ref)
			}
			if expand, _ := cmd.Flags().GetBool("expand"); expand {
				verse = scripture.NewExpander(idx).Expand(verse)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", verse.Reference, verse.Text)
			return nil
		},
	}
	cmd.Flags().Bool("expand", false, "expand to the surrounding complete sentence")
	return cmd
}

func newSearchCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <text>",
		Short: "Search verse text, optionally within one book",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := loadIndex(v)
			if err != nil {
				return err
			}

			book, _ := cmd.Flags().GetString("book")
			results := idx.Search(strings.Join(args, " "), book)
			out := cmd.OutOrStdout()
			for _, verse := range results {
				fmt.Fprintf(out, "%s  %s\n", verse.Reference, verse.Text)
			}
			fmt.Fprintf(out, "%d matches\n", len(results))
			return nil
		},
	}
	cmd.Flags().String("book", "", "restrict the search to one book")
	return cmd
}
