package prepcmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dialect-corpus/annoprep/internal/config"
	"github.com/dialect-corpus/annoprep/internal/prodigy"
	"github.com/spf13/cobra"
)

// readyTimeout bounds how long --wait-ready polls before giving up.
const readyTimeout = 30 * time.Second

// NewAnnotateCmd creates the annotate command for running a Prodigy
// annotation session over a sampled file
func NewAnnotateCmd(cfg *config.Settings) *cobra.Command {
	var binary string
	var recipe string
	var inputPath string
	var patternsFile string
	var dataset string
	var model string
	var labels []string
	var host string
	var port int
	var recipeArgs []string
	var waitReady bool

	cmd := &cobra.Command{
		Use:   "annotate",
		Short: "Start a Prodigy annotation session over a sampled file",
		Long: `Start the Prodigy annotation interface on a sampled JSONL file.

The Prodigy process runs in the foreground with its output attached to
the terminal. Ctrl+C stops the session; annotations already saved stay
in the Prodigy database.`,
		Example: `  # Annotate with defaults (spans.manual, PHONETIC/DIALECT/SLANG)
  annoprep annotate --input data/samples/balanced_sample.jsonl

  # Custom dataset and labels, wait for the web UI to come up
  annoprep annotate --input sample.jsonl --dataset dialect_pilot \
    --label PHONETIC,NOT_DIALOGUE,ERROR --port 8081 --wait-ready

  # Pass extra recipe flags through to Prodigy
  annoprep annotate --input sample.jsonl --recipe-arg batch-size=10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(inputPath); os.IsNotExist(err) {
				return fmt.Errorf("input file not found: %s", inputPath)
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

			extra, err := parseRecipeArgs(recipeArgs)
			if err != nil {
				return err
			}

			return executeAnnotate(cmd.Context(), annotateOptions{
				Binary:    binary,
				Recipe:    recipe,
				Input:     inputPath,
				Patterns:  patternsFile,
				Dataset:   dataset,
				Model:     model,
				Labels:    labels,
				Host:      host,
				Port:      port,
				Extra:     extra,
				WaitReady: waitReady,
			})
		},
	}

	cmd.Flags().StringVar(&binary, "binary", "prodigy", "Prodigy executable to invoke")
	cmd.Flags().StringVar(&recipe, "recipe", prodigy.RecipeSpansManual, "Prodigy recipe (spans.manual or ner.manual)")
	cmd.Flags().StringVar(&inputPath, "input", "", "Sampled JSONL file to annotate (required)")
	cmd.Flags().StringVar(&patternsFile, "patterns", "patterns.jsonl", "Pattern file for match highlighting (skipped when absent)")
	cmd.Flags().StringVar(&dataset, "dataset", "phonetics_anno", "Prodigy dataset to store annotations in")
	cmd.Flags().StringVar(&model, "model", "en_core_web_sm", "spaCy model for tokenization")
	cmd.Flags().StringSliceVar(&labels, "label", nil, "Annotation labels (comma separated or repeated)")
	cmd.Flags().StringVar(&host, "host", "localhost", "Host for the annotation web UI")
	cmd.Flags().IntVar(&port, "port", 8080, "Port for the annotation web UI")
	cmd.Flags().StringSliceVar(&recipeArgs, "recipe-arg", nil, "Extra recipe flags as key=value, passed to Prodigy as --key value")
	cmd.Flags().BoolVar(&waitReady, "wait-ready", false, "Block until the web UI answers before reporting the URL")

	_ = cmd.MarkFlagRequired("input")

	return cmd
}

type annotateOptions struct {
	Binary    string
	Recipe    string
	Input     string
	Patterns  string
	Dataset   string
	Model     string
	Labels    []string
	Host      string
	Port      int
	Extra     map[string]string
	WaitReady bool
}

func executeAnnotate(ctx context.Context, opts annotateOptions) error {
	runner := prodigy.NewRunner(opts.Binary)

	if !runner.Installed(ctx) {
		return fmt.Errorf("prodigy is not properly installed or not in PATH")
	}

	child, err := runner.Start(ctx, opts.Recipe, prodigy.Options{
		Dataset:      opts.Dataset,
		Model:        opts.Model,
		Input:        opts.Input,
		PatternsFile: opts.Patterns,
		Labels:       opts.Labels,
		Host:         opts.Host,
		Port:         opts.Port,
		Extra:        opts.Extra,
	})
	if err != nil {
		return err
	}

	// Collect the child's exit in the background
	childErr := make(chan error, 1)
	go func() {
		childErr <- child.Wait()
	}()

	url := fmt.Sprintf("http://%s:%d", opts.Host, opts.Port)
	if opts.WaitReady {
		if err := prodigy.WaitReady(ctx, opts.Host, opts.Port, readyTimeout); err != nil {
			_ = child.Process.Kill()
			<-childErr
			return err
		}
	}

	slog.Info("Annotation session started", "dataset", opts.Dataset, "url", url)
	fmt.Printf("Open your browser and go to: %s\n", url)
	fmt.Println("Press Ctrl+C to stop the annotation session")

	// Wait for context cancellation (Ctrl+C) or the child exiting on its own
	select {
	case <-ctx.Done():
		slog.Info("Stopping annotation session...")
		// The runner binds the child to ctx, so cancellation already
		// killed it; just collect the exit.
		<-childErr
		slog.Info("Annotation session stopped")
		return nil
	case err := <-childErr:
		if err != nil {
			return fmt.Errorf("prodigy exited: %w", err)
		}
		slog.Info("Annotation session finished")
		return nil
	}
}

// parseRecipeArgs turns repeated key=value flags into the runner's extra
// flag map.
func parseRecipeArgs(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	extra := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimPrefix(key, "--")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --recipe-arg %q, expected key=value", pair)
		}
		extra[key] = value
	}
	return extra, nil
}
