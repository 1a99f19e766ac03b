package patterns

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	return path
}

func TestWriteRead(t *testing.T) {
	ps := []Pattern{
		singleToken("PHONETIC", "gwine"),
		{Label: "PHONETIC", Tokens: []Token{{Lower: "mo"}, {Lower: "better"}}},
	}
	path := filepath.Join(t.TempDir(), "out", "patterns.jsonl")

	if err := Write(ps, path); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read back: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}
	if lines[0] != `{"label":"PHONETIC","pattern":[{"lower":"gwine"}]}` {
		t.Errorf("Unexpected first line: %s", lines[0])
	}

	back, err := Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(back) != 2 {
		t.Fatalf("Expected 2 patterns, got %d", len(back))
	}
	if back[1].Text() != "mo better" {
		t.Errorf("Expected 'mo better', got %q", back[1].Text())
	}
}

func TestReadSkipsMalformed(t *testing.T) {
	data := `{"label":"PHONETIC","pattern":[{"lower":"gwine"}]}
not json
{"label":"","pattern":[{"lower":"x"}]}
{"label":"PHONETIC","pattern":[]}
{"label":"PHONETIC","pattern":[{"lower":"yonder"}]}
`
	path := writeFile(t, "patterns.jsonl", data)

	ps, err := Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(ps) != 2 {
		t.Fatalf("Expected 2 patterns, got %d", len(ps))
	}
}

func TestLoadSet(t *testing.T) {
	data := `{"label":"PHONETIC","pattern":[{"lower":"gwine"}]}
{"label":"PHONETIC","pattern":[{"lower":"mo"},{"lower":"better"}]}
{"label":"PHONETIC","pattern":[]}
garbage line
{"label":"PHONETIC","pattern":[{"lower":"gwine"}]}
`
	path := writeFile(t, "patterns.jsonl", data)

	set, err := LoadSet(path, nil)
	if err != nil {
		t.Fatalf("LoadSet failed: %v", err)
	}

	if set.Len() != 2 {
		t.Fatalf("Expected 2 distinct words, got %d", set.Len())
	}
	if !set.Contains("gwine") {
		t.Error("Expected set to contain gwine")
	}
	// Only the first token of a multi-token pattern enters the set.
	if !set.Contains("mo") {
		t.Error("Expected set to contain mo")
	}
	if set.Contains("better") {
		t.Error("Expected set not to contain better")
	}
}

func TestLoadSetWithExceptions(t *testing.T) {
	data := `{"label":"PHONETIC","pattern":[{"lower":"gwine"}]}
{"label":"PHONETIC","pattern":[{"lower":"yonder"}]}
`
	path := writeFile(t, "patterns.jsonl", data)

	set, err := LoadSet(path, map[string]struct{}{"gwine": {}})
	if err != nil {
		t.Fatalf("LoadSet failed: %v", err)
	}

	if set.Contains("gwine") {
		t.Error("Expected exception word to be excluded")
	}
	if !set.Contains("yonder") {
		t.Error("Expected yonder to remain")
	}
}

func TestLoadSetMissingFile(t *testing.T) {
	if _, err := LoadSet("/nonexistent/patterns.jsonl", nil); err == nil {
		t.Error("Expected error for missing pattern file, got nil")
	}
}

func TestLoadExceptions(t *testing.T) {
	data := `# comment line
GWINE

yonder
  chile
`
	path := writeFile(t, "exceptions.txt", data)

	exceptions, err := LoadExceptions(path)
	if err != nil {
		t.Fatalf("LoadExceptions failed: %v", err)
	}

	if len(exceptions) != 3 {
		t.Fatalf("Expected 3 exceptions, got %d", len(exceptions))
	}
	for _, want := range []string{"gwine", "yonder", "chile"} {
		if _, ok := exceptions[want]; !ok {
			t.Errorf("Expected exception %q", want)
		}
	}
}

func TestNilSet(t *testing.T) {
	var set *Set
	if set.Contains("anything") {
		t.Error("Expected nil set to contain nothing")
	}
	if set.Len() != 0 {
		t.Error("Expected nil set length 0")
	}
}

func TestDefaultStopwords(t *testing.T) {
	stops := DefaultStopwords()

	for _, want := range []string{"the", "and", "n't", "'ve"} {
		if _, ok := stops[want]; !ok {
			t.Errorf("Expected stopword %q", want)
		}
	}
	if _, ok := stops["gwine"]; ok {
		t.Error("Did not expect gwine in stopwords")
	}

	// The returned set is a copy; mutating it must not affect later calls.
	delete(stops, "the")
	if _, ok := DefaultStopwords()["the"]; !ok {
		t.Error("Expected fresh copy to contain the")
	}
}
