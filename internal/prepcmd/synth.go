package prepcmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dialect-corpus/annoprep/internal/corpus"
	"github.com/dialect-corpus/annoprep/internal/synthesis"
	"github.com/spf13/cobra"
)

// NewSynthCmd creates the synth command for generating dialogue
// utterances from literary excerpts with an LLM
func NewSynthCmd() *cobra.Command {
	var inputPath string
	var outputPath string
	var providerName string
	var model string
	var perExcerpt int
	var limit int

	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Generate dialect dialogue utterances from literary excerpts",
		Long: `Generate standalone dialogue utterances in the voice of a literary
excerpt, using an LLM provider (ollama, openai, or gemini).

The output is a dialogue corpus file in the same shape as the curated
ones, ready for sampling. Excerpts whose generation fails are skipped
with a warning so a long run survives flaky responses.`,
		Example: `  # Generate with the local Ollama default
  annoprep synth --input data/gb_data.jsonl --output data/gemini/synthetic.jsonl

  # Three utterances per excerpt from the first 50 excerpts, via OpenAI
  annoprep synth --input data/gb_data.jsonl --output synth.jsonl \
    --provider openai --model gpt-4o --per-excerpt 3 --limit 50`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(inputPath); os.IsNotExist(err) {
				return fmt.Errorf("input file not found: %s", inputPath)
			}

			return executeSynth(cmd.Context(), inputPath, outputPath, providerName, model, perExcerpt, limit)
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "Literary corpus file to draw excerpts from (required)")
	cmd.Flags().StringVar(&outputPath, "output", "", "Output dialogue corpus file (required)")
	cmd.Flags().StringVar(&providerName, "provider", "", "LLM provider: ollama, openai, or gemini (defaults to ANNOPREP_PROVIDER or ollama)")
	cmd.Flags().StringVar(&model, "model", "", "Model name (defaults to the provider's default)")
	cmd.Flags().IntVar(&perExcerpt, "per-excerpt", 5, "Utterances to request per excerpt")
	cmd.Flags().IntVar(&limit, "limit", 0, "Number of excerpts to process (0 for all)")

	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func executeSynth(ctx context.Context, inputPath, outputPath, providerName, model string, perExcerpt, limit int) error {
	items, stats, err := corpus.NewLoader(inputPath).Items()
	if err != nil {
		return fmt.Errorf("failed to load corpus: %w", err)
	}
	slog.Info("Loaded corpus", "path", inputPath, "loaded", stats.Loaded, "skipped", stats.Skipped)

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	provider, name, err := synthesis.NewProvider(providerName)
	if err != nil {
		return err
	}
	if model == "" {
		model = synthesis.DefaultModel(name)
	}
	slog.Info("Generating dialogue", "provider", name, "model", model, "excerpts", len(items))

	service := synthesis.NewService(provider, model, perExcerpt)

	start := time.Now()
	result, err := service.Generate(ctx, items, outputPath)
	if err != nil {
		return fmt.Errorf("dialogue generation failed: %w", err)
	}

	fmt.Printf("Generated %d utterances (%d excerpts failed) in %s\n",
		result.Generated, result.Failed, time.Since(start).Round(time.Second))
	fmt.Printf("Dialogue saved to: %s\n", outputPath)
	return nil
}
