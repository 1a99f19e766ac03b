package prepcmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/dialect-corpus/annoprep/internal/config"
	"github.com/dialect-corpus/annoprep/internal/prodigy"
	"github.com/spf13/cobra"
)

// NewStatsCmd creates the stats command for showing annotation progress
func NewStatsCmd(cfg *config.Settings) *cobra.Command {
	var binary string
	var dataset string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show annotation progress for a Prodigy dataset",
		Long: `Query the Prodigy database for the annotation progress of a dataset.

Runs prodigy db-stats under the hood and reports total, annotated and
pending example counts.`,
		Example: `  # Progress of the default dataset
  annoprep stats

  # A specific dataset
  annoprep stats --dataset dialect_pilot`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("binary") {
				binary = cfg.Prodigy.Binary
			}
			if !cmd.Flags().Changed("dataset") {
				dataset = cfg.Prodigy.Dataset
			}

			return executeStats(cmd.Context(), binary, dataset)
		},
	}

	cmd.Flags().StringVar(&binary, "binary", "prodigy", "Prodigy executable to invoke")
	cmd.Flags().StringVar(&dataset, "dataset", "phonetics_anno", "Prodigy dataset name")

	return cmd
}

func executeStats(ctx context.Context, binary, dataset string) error {
	stats, err := prodigy.NewRunner(binary).Stats(ctx, dataset)
	if err != nil {
		return err
	}

	fmt.Println("\n" + strings.Repeat("=", 70))
	fmt.Println("ANNOTATION PROGRESS")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Dataset:   %s\n", dataset)
	fmt.Printf("Total:     %d\n", stats.Total)
	fmt.Printf("Annotated: %d\n", stats.Annotated)
	fmt.Printf("Pending:   %d\n", stats.Pending)
	if stats.Total > 0 {
		fmt.Printf("Progress:  %.1f%%\n", float64(stats.Annotated)/float64(stats.Total)*100)
	}
	fmt.Println(strings.Repeat("=", 70))

	return nil
}
