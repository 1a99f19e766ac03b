package cmd

import (
	"log/slog"
	"os"

	"github.com/dialect-corpus/annoprep/internal/config"
	"github.com/dialect-corpus/annoprep/internal/prepcmd"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cfg := &config.Settings{}
	var cfgPath string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "annoprep",
		Short: "Annotation prep tool for dialect and phonetic spelling corpora",
		Long: `Annoprep prepares literary and dialogue corpora for span annotation.

It extracts phonetic spelling patterns from annotated literary excerpts,
draws balanced samples across dialogue and narration, and drives Prodigy
annotation sessions over the result.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			loaded, err := loadConfig(cfgPath)
			if err != nil {
				return err
			}
			*cfg = *loaded

			if verbose {
				cfg.Log.Level = "debug"
			}
			setupLogging(cfg.Log)

			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to a YAML config file (default ./annoprep.yaml when present)")
	cmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Debug logging")

	// Add subcommands
	cmd.AddCommand(prepcmd.NewPatternsCmd(cfg))
	cmd.AddCommand(prepcmd.NewSampleCmd(cfg))
	cmd.AddCommand(prepcmd.NewInspectCmd())
	cmd.AddCommand(prepcmd.NewSynthCmd())
	cmd.AddCommand(prepcmd.NewAnnotateCmd(cfg))
	cmd.AddCommand(prepcmd.NewStatsCmd(cfg))
	cmd.AddCommand(prepcmd.NewWorkflowCmd(cfg))

	return cmd
}

func loadConfig(path string) (*config.Settings, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func setupLogging(settings config.LogSettings) {
	var level slog.Level
	switch settings.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if settings.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
