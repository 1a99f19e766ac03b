// Package patterns derives and manages Prodigy token-matching patterns
// for highlighting candidate phonetic spellings during annotation.
package patterns

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// LabelPhonetic is the annotation label attached to extracted patterns.
const LabelPhonetic = "PHONETIC"

// Token matches one token by its lowercase form.
type Token struct {
	Lower string `json:"lower"`
}

// Pattern is a Prodigy token-matching pattern.
type Pattern struct {
	Label  string  `json:"label"`
	Tokens []Token `json:"pattern"`
}

// Text returns the token texts joined with single spaces.
func (p Pattern) Text() string {
	parts := make([]string, len(p.Tokens))
	for i, tok := range p.Tokens {
		parts[i] = tok.Lower
	}
	return strings.Join(parts, " ")
}

// Write saves patterns as JSONL, creating parent directories as needed.
func Write(ps []Pattern, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create pattern file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, p := range ps {
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("failed to write pattern: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write pattern file: %w", err)
	}

	slog.Debug("Saved patterns", "path", path, "count", len(ps))
	return nil
}

// Read loads patterns from a JSONL file. Malformed lines are logged and
// skipped so a hand-edited file cannot abort a run.
func Read(path string) ([]Pattern, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pattern file: %w", err)
	}
	defer file.Close()

	var ps []Pattern
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var p Pattern
		if err := json.Unmarshal(line, &p); err != nil {
			slog.Warn("Skipping malformed pattern", "path", path, "line", lineNum, "error", err)
			continue
		}
		if p.Label == "" || len(p.Tokens) == 0 {
			slog.Warn("Skipping pattern without label or tokens", "path", path, "line", lineNum)
			continue
		}
		ps = append(ps, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading pattern file: %w", err)
	}

	return ps, nil
}
