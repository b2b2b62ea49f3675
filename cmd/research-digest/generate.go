// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-digest/internal/config"
	"github.com/pdiddy/research-digest/internal/digest"
	"github.com/pdiddy/research-digest/pkg/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a digest once and print it",
	Long: `Generate fetches papers from the enabled sources, drops papers already
seen in earlier digests, ranks the rest with the configured LLM, and stores
the top results under the storage directory.

Flags override the config file and environment.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadDigest(viper.GetViper())
		if err != nil {
			return err
		}
		logger := newLogger(cfg, "")

		a, err := newApp(cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		res := a.gen.Generate(cmd.Context(), cfg.Digest)
		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(res); err != nil {
				return err
			}
		} else if res.Digest != nil {
			printDigest(os.Stdout, res.Digest)
		}

		if res.Status != digest.StatusCompleted {
			if len(res.Errors) > 0 {
				return fmt.Errorf("generation %s: %s", res.Status, strings.Join(res.Errors, "; "))
			}
			return fmt.Errorf("generation %s", res.Status)
		}
		return nil
	},
}

// printDigest writes a ranked table of d's papers.
func printDigest(w io.Writer, d *types.Digest) {
	fmt.Fprintf(w, "Digest %s: %d papers (from %d fetched)\n\n", d.Date, len(d.Papers), d.TotalPapersFetched)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tSCORE\tSOURCE\tID\tTITLE")
	for i, p := range d.Papers {
		fmt.Fprintf(tw, "%d\t%.1f\t%s\t%s\t%s\n", i+1, p.EffectiveScore(), p.Source, p.ID, truncate(p.Title, 80))
	}
	tw.Flush()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func init() {
	f := generateCmd.Flags()
	f.String("categories", "", "arXiv categories (comma-separated)")
	f.String("interests", "", "research interests used for ranking")
	f.Int("max-papers", types.DefaultMaxPapers, "papers fetched per source")
	f.Int("top-n", types.DefaultTopN, "papers kept in the digest")
	f.Int("days-back", 0, "only keep papers published in the last N days")
	f.String("sources", "", "sources to query: arxiv, arxiv_listing, semantic_scholar, huggingface")
	f.String("priority-authors", "", "authors whose papers get boosted (comma-separated)")
	f.Float64("author-boost", types.DefaultAuthorBoost, "score multiplier for priority authors")
	f.Bool("exclude-seen", true, "skip papers included in earlier digests")
	f.Bool("json", false, "output the result as JSON")

	for flag, key := range map[string]string{
		"categories":       config.KeyCategories,
		"interests":        config.KeyInterests,
		"max-papers":       config.KeyMaxPapers,
		"top-n":            config.KeyTopN,
		"days-back":        config.KeyDaysBack,
		"sources":          config.KeySources,
		"priority-authors": config.KeyPriorityAuthors,
		"author-boost":     config.KeyAuthorBoost,
		"exclude-seen":     config.KeyExcludeSeen,
	} {
		_ = viper.BindPFlag(key, f.Lookup(flag))
	}

	rootCmd.AddCommand(generateCmd)
}
