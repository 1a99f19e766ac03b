package patterns

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Set is the lookup used to classify utterances: the distinct first-token
// texts of a pattern file, minus any exception words.
type Set struct {
	members map[string]struct{}
}

// Contains reports whether the word is a known phonetic pattern.
func (s *Set) Contains(word string) bool {
	if s == nil {
		return false
	}
	_, ok := s.members[word]
	return ok
}

// Len returns the number of distinct pattern words.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.members)
}

// Words returns the pattern words in unspecified order.
func (s *Set) Words() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.members))
	for w := range s.members {
		out = append(out, w)
	}
	return out
}

// NewSet builds a set directly from words, mainly for tests.
func NewSet(words ...string) *Set {
	members := make(map[string]struct{}, len(words))
	for _, w := range words {
		members[w] = struct{}{}
	}
	return &Set{members: members}
}

// LoadSet reads a pattern JSONL file and collects each pattern's first
// token text, dropping words present in exceptions. Patterns with empty
// token lists and malformed lines are logged and skipped.
func LoadSet(path string, exceptions map[string]struct{}) (*Set, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pattern file: %w", err)
	}
	defer file.Close()

	members := make(map[string]struct{})
	excluded := 0

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
		if len(p.Tokens) == 0 {
			continue
		}

		word := p.Tokens[0].Lower
		if word == "" {
			continue
		}
		if _, ok := exceptions[word]; ok {
			excluded++
			continue
		}
		members[word] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading pattern file: %w", err)
	}

	slog.Info("Loaded phonetic patterns", "path", path, "count", len(members), "excluded", excluded)

	return &Set{members: members}, nil
}

// LoadExceptions reads a plain-text exception file: one word per line,
// lowercased; blank lines and lines starting with # are ignored.
func LoadExceptions(path string) (map[string]struct{}, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open exceptions file: %w", err)
	}
	defer file.Close()

	exceptions := make(map[string]struct{})
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		exceptions[strings.ToLower(line)] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading exceptions file: %w", err)
	}

	slog.Info("Loaded exception words", "path", path, "count", len(exceptions))

	return exceptions, nil
}
