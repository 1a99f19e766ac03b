package prepcmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dialect-corpus/annoprep/internal/config"
	"github.com/dialect-corpus/annoprep/internal/corpus"
	"github.com/dialect-corpus/annoprep/internal/patterns"
	"github.com/spf13/cobra"
)

// NewPatternsCmd creates the patterns command for extracting match patterns
// from literary spelling annotations
func NewPatternsCmd(cfg *config.Settings) *cobra.Command {
	var inputPath string
	var outputPath string
	var minLength int
	var maxLength int
	var noStopwordFilter bool
	var dedupe bool

	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Extract Prodigy match patterns from an annotated literary corpus",
		Long: `Extract token match patterns from the word-level spelling annotations
of a literary corpus file.

Each annotated surface spelling yields up to two PHONETIC patterns: the
lowercased word and its punctuation-stripped form. Length bounds and the
stopword filter drop variants that would only produce noisy matches.`,
		Example: `  # Extract patterns with defaults
  annoprep patterns --input data/gb_data.jsonl --output patterns.jsonl

  # Looser length bounds, keep stopword-shaped variants
  annoprep patterns --input data/gb_data.jsonl --output patterns.jsonl \
    --min-length 2 --max-length 80 --no-stopword-filter

  # Re-run the refinement pass while extracting
  annoprep patterns --input data/gb_data.parquet --output patterns.jsonl --dedupe`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(inputPath); os.IsNotExist(err) {
				return fmt.Errorf("input file not found: %s", inputPath)
			}

			if !cmd.Flags().Changed("min-length") {
				minLength = cfg.Patterns.MinLength
			}
			if !cmd.Flags().Changed("max-length") {
				maxLength = cfg.Patterns.MaxLength
			}
			filterStopwords := cfg.Patterns.FilterStopwords
			if noStopwordFilter {
				filterStopwords = false
			}

			return executePatterns(inputPath, outputPath, minLength, maxLength, filterStopwords, dedupe)
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "Path to literary corpus file, jsonl or parquet (required)")
	cmd.Flags().StringVar(&outputPath, "output", "patterns.jsonl", "Output patterns file")
	cmd.Flags().IntVar(&minLength, "min-length", 3, "Pattern length floor in characters (exclusive)")
	cmd.Flags().IntVar(&maxLength, "max-length", 50, "Pattern length ceiling in characters")
	cmd.Flags().BoolVar(&noStopwordFilter, "no-stopword-filter", false, "Keep variants that collide with common stopwords")
	cmd.Flags().BoolVar(&dedupe, "dedupe", false, "Drop duplicate patterns and re-apply the length floor")

	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func executePatterns(inputPath, outputPath string, minLength, maxLength int, filterStopwords, dedupe bool) error {
	items, stats, err := corpus.NewLoader(inputPath).Literary()
	if err != nil {
		return fmt.Errorf("failed to load corpus: %w", err)
	}
	slog.Info("Loaded literary corpus", "path", inputPath, "loaded", stats.Loaded, "skipped", stats.Skipped)

	extractor := patterns.NewExtractor(minLength, maxLength, nil, filterStopwords)
	ps := extractor.Extract(items)

	if dedupe {
		before := len(ps)
		ps = patterns.Dedupe(ps)
		ps = patterns.FilterByLength(ps, minLength)
		slog.Info("Refined patterns", "before", before, "after", len(ps))
	}

	if err := patterns.Write(ps, outputPath); err != nil {
		return fmt.Errorf("failed to save patterns: %w", err)
	}

	fmt.Printf("Generated %d patterns from %d excerpts\n", len(ps), len(items))
	fmt.Printf("Patterns saved to: %s\n", outputPath)
	return nil
}
