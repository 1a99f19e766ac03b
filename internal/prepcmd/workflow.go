package prepcmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/dialect-corpus/annoprep/internal/config"
	"github.com/dialect-corpus/annoprep/internal/prodigy"
	"github.com/spf13/cobra"
)

// NewWorkflowCmd creates the workflow command for running the full
// annotation pipeline in one invocation
func NewWorkflowCmd(cfg *config.Settings) *cobra.Command {
	var gbFile string
	var dialogueFiles []string
	var dialogueDir string

	var generatePatterns bool
	var patternsOutput string

	var sample bool
	var sampleOutput string
	var sampleSize int
	var dialogueRatio float64
	var randomSeed int64

	var annotate bool
	var binary string
	var dataset string
	var model string
	var labels []string
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "workflow",
		Short: "Run the pattern, sampling and annotation stages end to end",
		Long: `Run the selected stages of the annotation pipeline in order:
pattern generation, balanced sampling, and the Prodigy session.

Stages share their file arguments, so the sample stage picks up the
patterns the first stage wrote and the annotation stage serves the
sample the second stage saved.`,
		Example: `  # Everything, from a literary corpus and a dialogue directory
  annoprep workflow --gb-file data/gb_data.jsonl --dialogue-dir data/gemini \
    --generate-patterns --sample --annotate

  # Just refresh patterns and the sample
  annoprep workflow --gb-file data/gb_data.jsonl --generate-patterns --sample \
    --sample-size 500`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !generatePatterns && !sample && !annotate {
				return fmt.Errorf("nothing to do: pass at least one of --generate-patterns, --sample, --annotate")
			}

			if !cmd.Flags().Changed("sample-size") {
				sampleSize = cfg.Sampling.SampleSize
			}
			if !cmd.Flags().Changed("ratio") {
				dialogueRatio = cfg.Sampling.DialogueRatio
			}
			if cmd.Flags().Changed("random-seed") {
				cfg.Sampling.RandomSeed = randomSeed
			}
			if !cmd.Flags().Changed("binary") {
				binary = cfg.Prodigy.Binary
			}
			if !cmd.Flags().Changed("dataset") {
				dataset = cfg.Prodigy.Dataset
			}
			if !cmd.Flags().Changed("model") {
				model = cfg.Prodigy.Model
			}
			if !cmd.Flags().Changed("label") {
				labels = cfg.Prodigy.Labels
			}
			if !cmd.Flags().Changed("host") {
				host = cfg.Prodigy.Host
			}
			if !cmd.Flags().Changed("port") {
				port = cfg.Prodigy.Port
			}

			return executeWorkflow(cmd.Context(), workflowOptions{
				GBFile:           gbFile,
				DialogueFiles:    dialogueFiles,
				DialogueDir:      dialogueDir,
				GeneratePatterns: generatePatterns,
				PatternsOutput:   patternsOutput,
				MinLength:        cfg.Patterns.MinLength,
				MaxLength:        cfg.Patterns.MaxLength,
				FilterStopwords:  cfg.Patterns.FilterStopwords,
				Sample:           sample,
				SampleOutput:     sampleOutput,
				SampleSize:       sampleSize,
				DialogueRatio:    dialogueRatio,
				Seed:             cfg.Seed(),
				RandomSeed:       cfg.Sampling.RandomSeed,
				Annotate:         annotate,
				Binary:           binary,
				Dataset:          dataset,
				Model:            model,
				Labels:           labels,
				Host:             host,
				Port:             port,
			})
		},
	}

	cmd.Flags().StringVar(&gbFile, "gb-file", "", "Literary corpus file (non-dialogue source)")
	cmd.Flags().StringSliceVar(&dialogueFiles, "dialogue-files", nil, "Dialogue corpus files (comma separated or repeated)")
	cmd.Flags().StringVar(&dialogueDir, "dialogue-dir", "", "Directory of dialogue corpus files")

	cmd.Flags().BoolVar(&generatePatterns, "generate-patterns", false, "Generate patterns from the literary corpus")
	cmd.Flags().StringVar(&patternsOutput, "patterns-output", "data/processed/patterns/patterns.jsonl", "Output file for patterns")

	cmd.Flags().BoolVar(&sample, "sample", false, "Sample balanced data")
	cmd.Flags().StringVar(&sampleOutput, "sample-output", "data/processed/samples/balanced_sample.jsonl", "Output file for sampled data")
	cmd.Flags().IntVar(&sampleSize, "sample-size", 1000, "Total sample size")
	cmd.Flags().Float64Var(&dialogueRatio, "ratio", 0.5, "Ratio of dialogue samples")
	cmd.Flags().Int64Var(&randomSeed, "random-seed", 42, "Random seed for reproducibility (negative seeds from entropy)")

	cmd.Flags().BoolVar(&annotate, "annotate", false, "Run the Prodigy annotation interface")
	cmd.Flags().StringVar(&binary, "binary", "prodigy", "Prodigy executable to invoke")
	cmd.Flags().StringVar(&dataset, "dataset", "phonetics_anno", "Prodigy dataset to store annotations in")
	cmd.Flags().StringVar(&model, "model", "en_core_web_sm", "spaCy model for tokenization")
	cmd.Flags().StringSliceVar(&labels, "label", nil, "Annotation labels (comma separated or repeated)")
	cmd.Flags().StringVar(&host, "host", "localhost", "Host for the annotation web UI")
	cmd.Flags().IntVar(&port, "port", 8080, "Port for the annotation web UI")

	return cmd
}

type workflowOptions struct {
	GBFile        string
	DialogueFiles []string
	DialogueDir   string

	GeneratePatterns bool
	PatternsOutput   string
	MinLength        int
	MaxLength        int
	FilterStopwords  bool

	Sample        bool
	SampleOutput  string
	SampleSize    int
	DialogueRatio float64
	Seed          *uint64
	RandomSeed    int64

	Annotate bool
	Binary   string
	Dataset  string
	Model    string
	Labels   []string
	Host     string
	Port     int
}

func executeWorkflow(ctx context.Context, opts workflowOptions) error {
	slog.Info("Starting annotation workflow")

	if opts.GeneratePatterns {
		if opts.GBFile == "" {
			return fmt.Errorf("--gb-file is required for pattern generation")
		}
		if _, err := os.Stat(opts.GBFile); os.IsNotExist(err) {
			return fmt.Errorf("literary corpus file not found: %s", opts.GBFile)
		}

		slog.Info("Step 1: Generating patterns from the literary corpus")
		if err := executePatterns(opts.GBFile, opts.PatternsOutput, opts.MinLength, opts.MaxLength, opts.FilterStopwords, true); err != nil {
			return err
		}
	}

	if opts.Sample {
		if opts.GBFile == "" && len(opts.DialogueFiles) == 0 && opts.DialogueDir == "" {
			return fmt.Errorf("at least one of --gb-file, --dialogue-files or --dialogue-dir is required for sampling")
		}

		slog.Info("Step 2: Sampling balanced data")
		err := executeSample(sampleOptions{
			GBFile:        opts.GBFile,
			DialogueFiles: opts.DialogueFiles,
			DialogueDir:   opts.DialogueDir,
			Output:        opts.SampleOutput,
			SampleSize:    opts.SampleSize,
			DialogueRatio: opts.DialogueRatio,
			Seed:          opts.Seed,
			RandomSeed:    opts.RandomSeed,
			PatternsFile:  opts.PatternsOutput,
		})
		if err != nil {
			return err
		}
	}

	if opts.Annotate {
		if _, err := os.Stat(opts.SampleOutput); os.IsNotExist(err) {
			return fmt.Errorf("sample data file not found: %s", opts.SampleOutput)
		}

		slog.Info("Step 3: Starting the annotation session")
		err := executeAnnotate(ctx, annotateOptions{
			Binary:   opts.Binary,
			Recipe:   prodigy.RecipeSpansManual,
			Input:    opts.SampleOutput,
			Patterns: opts.PatternsOutput,
			Dataset:  opts.Dataset,
			Model:    opts.Model,
			Labels:   opts.Labels,
			Host:     opts.Host,
			Port:     opts.Port,
		})
		if err != nil {
			return err
		}

		// The session context is normally canceled by the time the server
		// exits, so the final stats read gets a fresh one.
		stats, err := prodigy.NewRunner(opts.Binary).Stats(context.Background(), opts.Dataset)
		if err != nil {
			slog.Warn("Could not read final annotation stats", "error", err)
		} else {
			slog.Info("Final annotation statistics",
				"total", stats.Total, "annotated", stats.Annotated, "pending", stats.Pending)
		}
	}

	slog.Info("Workflow completed")
	return nil
}
