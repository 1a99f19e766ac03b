// Package report renders sampling run summaries for the terminal and
// persists them as JSON or YAML.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dialect-corpus/annoprep/internal/corpus"
	"github.com/dialect-corpus/annoprep/internal/sampling"
	"gopkg.in/yaml.v3"
)

// TimestampLayout is the wall-clock format stamped on reports.
const TimestampLayout = "2006-01-02_15-04-05"

// SourceLoad records what one corpus file contributed to a run.
type SourceLoad struct {
	Path    string `json:"path" yaml:"path"`
	Lines   int    `json:"lines" yaml:"lines"`
	Loaded  int    `json:"loaded" yaml:"loaded"`
	Skipped int    `json:"skipped" yaml:"skipped"`
}

// Source pairs a corpus path with its loader stats.
func Source(path string, stats corpus.LoadStats) SourceLoad {
	return SourceLoad{Path: path, Lines: stats.Lines, Loaded: stats.Loaded, Skipped: stats.Skipped}
}

// Run captures one sampling invocation.
type Run struct {
	Mode          string         `json:"mode"`
	SampleSize    int            `json:"sample_size"`
	DialogueRatio float64        `json:"dialogue_ratio"`
	RandomSeed    int            `json:"random_seed"`
	Patterns      int            `json:"patterns"`
	Sources       []SourceLoad   `json:"sources"`
	Output        string         `json:"output"`
	Stats         sampling.Stats `json:"stats"`
	Duration      time.Duration  `json:"duration_ns"`
	Timestamp     string         `json:"timestamp"`
}

// PrintSummary prints a human-readable summary of the run
func (r *Run) PrintSummary() {
	fmt.Println("\n" + strings.Repeat("=", 70))
	fmt.Println("ANNOTATION SAMPLE SUMMARY")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Timestamp: %s\n", r.Timestamp)
	fmt.Printf("Mode: %s\n", r.Mode)
	fmt.Printf("Sample Size: %d\n", r.SampleSize)
	fmt.Printf("Dialogue Ratio: %.2f\n", r.DialogueRatio)
	fmt.Printf("Random Seed: %d\n", r.RandomSeed)
	fmt.Printf("Patterns Loaded: %d\n", r.Patterns)
	fmt.Println()

	fmt.Println("SOURCES")
	fmt.Println(strings.Repeat("-", 70))
	for _, src := range r.Sources {
		fmt.Printf("%s: %d lines, %d loaded, %d skipped\n", src.Path, src.Lines, src.Loaded, src.Skipped)
	}
	fmt.Println()

	fmt.Println("SAMPLE COMPOSITION")
	fmt.Println(strings.Repeat("-", 70))
	fmt.Printf("Total Samples: %d\n", r.Stats.Total)
	fmt.Printf("Phonetized: %d (%.1f%%)\n", r.Stats.Phonetized, r.Stats.PhonetizedRatio*100)
	fmt.Printf("Non-Phonetized: %d (%.1f%%)\n", r.Stats.NonPhonetized, r.Stats.NonPhonetizedRatio*100)
	fmt.Printf("Output: %s\n", r.Output)
	fmt.Printf("Duration: %s\n", r.Duration)
	fmt.Println(strings.Repeat("=", 70))
}

// SaveJSON saves the run to a JSON file
func (r *Run) SaveJSON(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report to JSON: %w", err)
	}

	return nil
}

// yamlConfig represents the configuration section of the report YAML
type yamlConfig struct {
	Mode          string  `yaml:"mode"`
	SampleSize    int     `yaml:"samplesize"`
	DialogueRatio float64 `yaml:"dialogueratio"`
	RandomSeed    int     `yaml:"randomseed"`
	Patterns      int     `yaml:"patterns"`
	Output        string  `yaml:"output"`
	Timestamp     string  `yaml:"timestamp"`
}

// yamlResults represents the results section of the report YAML
type yamlResults struct {
	Stats    sampling.Stats `yaml:"stats"`
	Sources  []SourceLoad   `yaml:"sources"`
	Duration string         `yaml:"duration"`
}

// yamlSpec represents the complete report specification
type yamlSpec struct {
	Config  yamlConfig  `yaml:"config"`
	Results yamlResults `yaml:"results"`
}

// SaveYAML saves the run to a YAML file, stamping the current time when
// the run carries no timestamp of its own.
func (r *Run) SaveYAML(path string) error {
	timestamp := r.Timestamp
	if timestamp == "" {
		timestamp = time.Now().Format(TimestampLayout)
	}

	spec := yamlSpec{
		Config: yamlConfig{
			Mode:          r.Mode,
			SampleSize:    r.SampleSize,
			DialogueRatio: r.DialogueRatio,
			RandomSeed:    r.RandomSeed,
			Patterns:      r.Patterns,
			Output:        r.Output,
			Timestamp:     timestamp,
		},
		Results: yamlResults{
			Stats:    r.Stats,
			Sources:  r.Sources,
			Duration: r.Duration.String(),
		},
	}

	data, err := yaml.Marshal(&spec)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write YAML file: %w", err)
	}

	absPath, _ := filepath.Abs(path)
	fmt.Printf("\n✅ Sampling report saved to: %s\n", absPath)

	return nil
}
