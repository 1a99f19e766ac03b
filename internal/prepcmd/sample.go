package prepcmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dialect-corpus/annoprep/internal/config"
	"github.com/dialect-corpus/annoprep/internal/corpus"
	"github.com/dialect-corpus/annoprep/internal/patterns"
	"github.com/dialect-corpus/annoprep/internal/report"
	"github.com/dialect-corpus/annoprep/internal/sampling"
	"github.com/spf13/cobra"
)

// outputTimestampLayout names sampled files the way the annotation team
// expects them, e.g. balanced_sample_20251016_153416.jsonl.
const outputTimestampLayout = "20060102_150405"

// NewSampleCmd creates the sample command for drawing a balanced
// annotation sample from the corpora
func NewSampleCmd(cfg *config.Settings) *cobra.Command {
	var gbFile string
	var dialogueFiles []string
	var dialogueDir string
	var output string
	var sampleSize int
	var dialogueRatio float64
	var randomSeed int64
	var patternsFile string
	var exceptionsFile string
	var timestamp bool
	var usageReport string
	var reportJSON string
	var reportYAML string

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Draw a balanced annotation sample and write it as Prodigy JSONL",
		Long: `Sample corpus records with balanced dialogue/non-dialogue splits.

The mode follows the sources given: a literary file alone balances
dialogue against narration, dialogue files alone balance phonetized
against plain utterances, and both together split the sample across the
two corpora at the given ratio. Every record is formatted as a Prodigy
task document with source metadata.`,
		Example: `  # Mixed sample, half dialogue, with a timestamped filename
  annoprep sample --gb-file data/gb_data.jsonl --dialogue-dir data/gemini \
    --output data/samples/balanced_sample.jsonl --sample-size 1000 --timestamp

  # Literary corpus only, fixed seed, with reports
  annoprep sample --gb-file data/gb_data.jsonl --output sample.jsonl \
    --random-seed 7 --usage-report usage.txt --report-yaml report.yaml

  # Dialogue files only
  annoprep sample --dialogue-files a.jsonl,b.jsonl --output sample.jsonl --ratio 0.7`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if gbFile == "" && len(dialogueFiles) == 0 && dialogueDir == "" {
				return fmt.Errorf("at least one of --gb-file, --dialogue-files or --dialogue-dir is required")
			}
			if gbFile != "" {
				if _, err := os.Stat(gbFile); os.IsNotExist(err) {
					return fmt.Errorf("literary corpus file not found: %s", gbFile)
				}
			}
			for _, path := range dialogueFiles {
				if _, err := os.Stat(path); os.IsNotExist(err) {
					return fmt.Errorf("dialogue file not found: %s", path)
				}
			}
			if dialogueDir != "" {
				if _, err := os.Stat(dialogueDir); os.IsNotExist(err) {
					return fmt.Errorf("dialogue directory not found: %s", dialogueDir)
				}
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

			return executeSample(sampleOptions{
				GBFile:        gbFile,
				DialogueFiles: dialogueFiles,
				DialogueDir:   dialogueDir,
				Output:        output,
				SampleSize:    sampleSize,
				DialogueRatio: dialogueRatio,
				Seed:          cfg.Seed(),
				RandomSeed:    cfg.Sampling.RandomSeed,
				PatternsFile:  patternsFile,
				Exceptions:    exceptionsFile,
				Timestamp:     timestamp,
				UsageReport:   usageReport,
				ReportJSON:    reportJSON,
				ReportYAML:    reportYAML,
			})
		},
	}

	cmd.Flags().StringVar(&gbFile, "gb-file", "", "Literary corpus file (non-dialogue source)")
	cmd.Flags().StringSliceVar(&dialogueFiles, "dialogue-files", nil, "Dialogue corpus files (comma separated or repeated)")
	cmd.Flags().StringVar(&dialogueDir, "dialogue-dir", "", "Directory of dialogue corpus files")
	cmd.Flags().StringVar(&output, "output", "", "Output file for the sampled data (required)")
	cmd.Flags().IntVar(&sampleSize, "sample-size", 1000, "Total sample size")
	cmd.Flags().Float64Var(&dialogueRatio, "ratio", 0.5, "Ratio of dialogue (or phonetized) samples")
	cmd.Flags().Int64Var(&randomSeed, "random-seed", 42, "Random seed for reproducibility (negative seeds from entropy)")
	cmd.Flags().StringVar(&patternsFile, "patterns", "patterns.jsonl", "Pattern file backing the phonetic classifier")
	cmd.Flags().StringVar(&exceptionsFile, "exceptions", "", "Plain-text exception words excluded from the pattern set")
	cmd.Flags().BoolVar(&timestamp, "timestamp", false, "Append a timestamp to the output file name")
	cmd.Flags().StringVar(&usageReport, "usage-report", "", "Write pattern usage statistics to this file")
	cmd.Flags().StringVar(&reportJSON, "report-json", "", "Write the run report as JSON to this file")
	cmd.Flags().StringVar(&reportYAML, "report-yaml", "", "Write the run report as YAML to this file")

	_ = cmd.MarkFlagRequired("output")

	return cmd
}

type sampleOptions struct {
	GBFile        string
	DialogueFiles []string
	DialogueDir   string
	Output        string
	SampleSize    int
	DialogueRatio float64
	Seed          *uint64
	RandomSeed    int64
	PatternsFile  string
	Exceptions    string
	Timestamp     bool
	UsageReport   string
	ReportJSON    string
	ReportYAML    string
}

func executeSample(opts sampleOptions) error {
	start := time.Now()

	slog.Info("Starting data sampling",
		"sample_size", opts.SampleSize, "ratio", opts.DialogueRatio, "random_seed", opts.RandomSeed)

	dialogueFiles := opts.DialogueFiles
	if opts.DialogueDir != "" {
		found, err := filepath.Glob(filepath.Join(opts.DialogueDir, "*.jsonl"))
		if err != nil {
			return fmt.Errorf("failed to list dialogue directory: %w", err)
		}
		if len(found) == 0 {
			return fmt.Errorf("no .jsonl files in %s", opts.DialogueDir)
		}
		slog.Info("Found dialogue files", "dir", opts.DialogueDir, "count", len(found))
		dialogueFiles = append(dialogueFiles, found...)
	}

	classifier, patternCount, err := buildClassifier(opts.PatternsFile, opts.Exceptions)
	if err != nil {
		return err
	}

	balancer := sampling.NewBalancer(opts.Seed, classifier)

	var mode string
	var items []corpus.Item
	switch {
	case opts.GBFile != "" && len(dialogueFiles) > 0:
		mode = "mixed"
		slog.Info("Using mixed sources")
		literary, dialogue, err := balancer.BalanceMixed(opts.GBFile, dialogueFiles, opts.SampleSize, opts.DialogueRatio)
		if err != nil {
			return err
		}
		// Literary excerpts come first in the output, then dialogue.
		items = append(literary, dialogue...)
	case opts.GBFile != "":
		mode = "literary"
		slog.Info("Using literary source only")
		items, err = balancer.BalanceLiterary(opts.GBFile, opts.SampleSize, opts.DialogueRatio)
		if err != nil {
			return err
		}
	default:
		mode = "dialogue"
		slog.Info("Using dialogue sources only")
		items, err = balancer.BalanceDialogue(dialogueFiles, opts.SampleSize, opts.DialogueRatio)
		if err != nil {
			return err
		}
	}

	stats := balancer.Stats(items)

	output := opts.Output
	if opts.Timestamp {
		output = timestampedPath(output, time.Now())
	}

	if err := balancer.Save(items, output); err != nil {
		return err
	}

	run := report.Run{
		Mode:          mode,
		SampleSize:    opts.SampleSize,
		DialogueRatio: opts.DialogueRatio,
		RandomSeed:    int(opts.RandomSeed),
		Patterns:      patternCount,
		Output:        output,
		Stats:         stats,
		Duration:      time.Since(start),
		Timestamp:     time.Now().Format(report.TimestampLayout),
	}
	for _, src := range balancer.Sources() {
		run.Sources = append(run.Sources, report.Source(src.Path, src.Stats))
	}

	run.PrintSummary()
	fmt.Printf("Sampled data saved to: %s\n", output)

	if opts.UsageReport != "" {
		if err := report.WriteUsage(opts.UsageReport, balancer.Classifier().Usage(), stats.Phonetized, stats.NonPhonetized); err != nil {
			return err
		}
	}
	if opts.ReportJSON != "" {
		if err := run.SaveJSON(opts.ReportJSON); err != nil {
			return err
		}
	}
	if opts.ReportYAML != "" {
		if err := run.SaveYAML(opts.ReportYAML); err != nil {
			return err
		}
	}

	return nil
}

// buildClassifier loads the optional pattern set behind the phonetic
// classifier. A missing pattern file degrades to pattern-free
// classification with a warning, so sampling still works before any
// patterns have been generated.
func buildClassifier(patternsFile, exceptionsFile string) (*sampling.Classifier, int, error) {
	if patternsFile == "" {
		return sampling.NewClassifier(nil), 0, nil
	}
	if _, err := os.Stat(patternsFile); os.IsNotExist(err) {
		slog.Warn("Pattern file not found, sampling without phonetic patterns", "path", patternsFile)
		return sampling.NewClassifier(nil), 0, nil
	}

	exceptions := map[string]struct{}{}
	if exceptionsFile != "" {
		var err error
		exceptions, err = patterns.LoadExceptions(exceptionsFile)
		if err != nil {
			return nil, 0, err
		}
	}

	set, err := patterns.LoadSet(patternsFile, exceptions)
	if err != nil {
		return nil, 0, err
	}
	return sampling.NewClassifier(set), set.Len(), nil
}

// timestampedPath inserts a timestamp between the file stem and its
// extension.
func timestampedPath(path string, now time.Time) string {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	return fmt.Sprintf("%s_%s%s", stem, now.Format(outputTimestampLayout), ext)
}
