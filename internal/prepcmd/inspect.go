package prepcmd

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dialect-corpus/annoprep/internal/corpus"
	"github.com/spf13/cobra"
)

// NewInspectCmd creates the inspect command
func NewInspectCmd() *cobra.Command {
	var inputPath string
	var limit int
	var interactive bool
	var showWords bool

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Inspect corpus records (useful for checking spelling annotations)",
		Long: `Inspect records from a literary or dialogue corpus file.

This command is useful for eyeballing excerpt text, word-level spelling
annotations and utterance metadata before sampling. Given a directory it
loads every dialogue file in it.`,
		Example: `  # Inspect the first 5 records interactively
  annoprep inspect --input data/gb_data.jsonl --limit 5 --interactive

  # Dump a whole dialogue directory without the word table
  annoprep inspect --input data/gemini --limit 0 --words=false`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if inputPath == "" {
				return fmt.Errorf("--input is required")
			}

			// Create a context that gets canceled on an interrupt signal (Ctrl+C)
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return executeInspect(ctx, inputPath, limit, interactive, showWords)
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "Corpus file or dialogue directory (required)")
	cmd.Flags().IntVar(&limit, "limit", 10, "Number of records to inspect (0 for all)")
	cmd.Flags().BoolVar(&interactive, "interactive", false, "Pause after each record (press Enter to continue)")
	cmd.Flags().BoolVar(&showWords, "words", true, "Show annotated word variants for literary records")

	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func executeInspect(ctx context.Context, inputPath string, limit int, interactive, showWords bool) error {
	items, err := loadInspectItems(inputPath)
	if err != nil {
		return fmt.Errorf("failed to load corpus: %w", err)
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	fmt.Printf("Loaded %d records from %s\n", len(items), inputPath)
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)

	for i, item := range items {
		// Check for context cancellation (e.g., Ctrl+C) at the start of each iteration
		select {
		case <-ctx.Done():
			fmt.Println("\nInspection interrupted.")
			return nil
		default:
		}

		fmt.Printf("RECORD %d/%d\n", i+1, len(items))
		fmt.Println(strings.Repeat("-", 80))

		switch it := item.(type) {
		case *corpus.LiteraryItem:
			printLiterary(it, showWords)
		case *corpus.DialogueItem:
			printDialogue(it)
		}

		fmt.Println()

		if interactive {
			fmt.Print("Press Enter to continue to next record (or Ctrl+C to quit)...")

			// Channel to signal user input
			inputCh := make(chan struct{})
			go func() {
				_, _ = reader.ReadString('\n')
				close(inputCh)
			}()

			// Wait for either user input (Enter) or context cancellation (Ctrl+C)
			select {
			case <-ctx.Done():
				fmt.Println("\nInspection interrupted.")
				return nil
			case <-inputCh:
				fmt.Println()
			}
		} else {
			fmt.Println()
		}
	}

	return nil
}

// loadInspectItems loads a single corpus file, or every dialogue file in
// a directory.
func loadInspectItems(path string) ([]corpus.Item, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if info.IsDir() {
		dialogue, stats, err := corpus.LoadDialogueDir(path)
		if err != nil {
			return nil, err
		}
		slog.Info("Loaded dialogue directory", "path", path, "loaded", stats.Loaded, "skipped", stats.Skipped)
		items := make([]corpus.Item, len(dialogue))
		for i, it := range dialogue {
			items[i] = it
		}
		return items, nil
	}

	items, stats, err := corpus.NewLoader(path).Items()
	if err != nil {
		return nil, err
	}
	slog.Info("Loaded corpus", "path", path, "loaded", stats.Loaded, "skipped", stats.Skipped)
	return items, nil
}

func printLiterary(item *corpus.LiteraryItem, showWords bool) {
	fmt.Printf("Sample ID:      %d\n", item.ID)
	fmt.Printf("Source ID:      %s\n", item.SourceID)
	fmt.Printf("Author:         %s\n", item.Author)
	fmt.Printf("Title:          %s\n", item.Title)
	fmt.Printf("Length:         %d characters, %d words (approx)\n",
		len(item.Text), len(strings.Fields(item.Text)))
	fmt.Printf("Annotated:      %d words (%d phonetic)\n",
		item.Words.Len(), len(item.Words.PhoneticSurfaces()))
	fmt.Println()

	// Show the first 500 characters with an indicator if truncated
	displayText := item.Text
	truncated := false
	maxChars := 500
	if len(displayText) > maxChars {
		displayText = displayText[:maxChars]
		truncated = true
	}

	fmt.Println("EXCERPT PREVIEW:")
	fmt.Println(strings.Repeat("-", 80))
	fmt.Println(displayText)
	if truncated {
		fmt.Printf("\n[... truncated, showing first %d of %d characters ...]\n", maxChars, len(item.Text))
	}
	fmt.Println(strings.Repeat("-", 80))

	if showWords && item.Words.Len() > 0 {
		fmt.Println("ANNOTATED WORDS:")
		for _, surface := range item.Words.Surfaces() {
			variant, _ := item.Words.Get(surface)
			fmt.Printf("  %-20s -> %s\n", surface, variant.Standard)
		}
	}
}

func printDialogue(item *corpus.DialogueItem) {
	fmt.Printf("Utterance:      %s\n", item.Utterance)
	fmt.Printf("Speaker:        %s\n", stringOrDash(item.Speaker))
	fmt.Printf("Addressee:      %s\n", stringOrDash(item.Addressee))
	if item.SourceFile != "" {
		fmt.Printf("Source File:    %s\n", item.SourceFile)
	}
}

func stringOrDash(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
