package report

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"sort"
)

// WriteUsage saves pattern usage counts as a commented text file, most
// used first. Ties break alphabetically so output is stable run to run.
// The sample-count block is written only when at least one sample was
// drawn.
func WriteUsage(path string, usage map[string]int, phonetized, nonPhonetized int) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create usage file: %w", err)
	}
	defer file.Close()

	var matches int
	for _, count := range usage {
		matches += count
	}

	w := bufio.NewWriter(file)
	fmt.Fprintf(w, "# Pattern Usage Statistics\n")
	fmt.Fprintf(w, "# Total patterns used: %d\n", len(usage))
	fmt.Fprintf(w, "# Total matches: %d\n", matches)

	total := phonetized + nonPhonetized
	if total > 0 {
		fmt.Fprintf(w, "# Phonetized samples: %d\n", phonetized)
		fmt.Fprintf(w, "# Non-phonetized samples: %d\n", nonPhonetized)
		fmt.Fprintf(w, "# Total samples: %d\n", total)
		fmt.Fprintf(w, "# Phonetized ratio: %.3f\n", float64(phonetized)/float64(total))
	}
	fmt.Fprintf(w, "\n")

	names := make([]string, 0, len(usage))
	for pattern := range usage {
		names = append(names, pattern)
	}
	sort.Slice(names, func(i, j int) bool {
		if usage[names[i]] != usage[names[j]] {
			return usage[names[i]] > usage[names[j]]
		}
		return names[i] < names[j]
	})
	for _, pattern := range names {
		fmt.Fprintf(w, "%s: %d\n", pattern, usage[pattern])
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write usage file: %w", err)
	}

	slog.Info("Pattern usage statistics saved", "path", path, "patterns", len(usage))
	return nil
}
