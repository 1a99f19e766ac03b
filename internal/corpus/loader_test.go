package corpus

import (
	"os"
	"path/filepath"
	"testing"
)

const literaryLine = `{"sample_id":1,"g_id":"gb-001","author":"Mark Twain","title":"Huckleberry Finn","sample":"I hain't got no money.","words":{"hain't":{"Std":"haven't","Prov":"CM","OCR":0,"i":[1]}}}`

func writeCorpus(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	return path
}

func TestLoadLiterary(t *testing.T) {
	data := literaryLine + "\n" +
		`{"sample_id":2,"g_id":"gb-002","author":"A","title":"B","sample":"plain text","words":{}}` + "\n"
	path := writeCorpus(t, "gb.jsonl", data)

	items, stats, err := NewLoader(path).Literary()
	if err != nil {
		t.Fatalf("Literary failed: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}
	if stats.Loaded != 2 || stats.Skipped != 0 {
		t.Errorf("Expected stats loaded=2 skipped=0, got %+v", stats)
	}

	first := items[0]
	if first.ID != 1 {
		t.Errorf("Expected sample_id 1, got %d", first.ID)
	}
	if first.SourceID != "gb-001" {
		t.Errorf("Expected g_id gb-001, got %s", first.SourceID)
	}
	if first.Words.Len() != 1 {
		t.Errorf("Expected 1 annotated word, got %d", first.Words.Len())
	}
	v, ok := first.Words.Get("hain't")
	if !ok {
		t.Fatal("Expected variant for hain't")
	}
	if v.Standard != "haven't" {
		t.Errorf("Expected Std haven't, got %s", v.Standard)
	}

	if items[1].Words.Len() != 0 {
		t.Errorf("Expected empty words map, got %d entries", items[1].Words.Len())
	}
}

func TestLoadLiterarySkipsMalformed(t *testing.T) {
	data := literaryLine + "\n" +
		"not json at all\n" +
		"\n" +
		`{"sample_id":3,"g_id":"gb-003","author":"A","title":"B","sample":"x"}` + "\n" + // missing words
		`{"sample_id":4,"g_id":"gb-004","author":"A","title":"B","sample":"x","words":{"de":{"Std":"the"}}}` + "\n" // variant missing Prov/OCR/i
	path := writeCorpus(t, "gb.jsonl", data)

	items, stats, err := NewLoader(path).Literary()
	if err != nil {
		t.Fatalf("Literary failed: %v", err)
	}

	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}
	if stats.Loaded != 1 {
		t.Errorf("Expected 1 loaded, got %d", stats.Loaded)
	}
	if stats.Skipped != 3 {
		t.Errorf("Expected 3 skipped, got %d", stats.Skipped)
	}
	if stats.Lines != 5 {
		t.Errorf("Expected 5 lines, got %d", stats.Lines)
	}
}

func TestLoadDialogue(t *testing.T) {
	data := `{"utterance":"Ah'm gwine home.","speaker":"Jim","speaker_in_char_list":true,"addressee":"Huck","addressee_in_char_list":true}
{"utterance":"Sho' nuff?"}
{"utterance":"   "}
{"speaker":"nobody"}
`
	path := writeCorpus(t, "dialogue.jsonl", data)

	items, stats, err := NewLoader(path).Dialogue()
	if err != nil {
		t.Fatalf("Dialogue failed: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}
	if stats.Skipped != 2 {
		t.Errorf("Expected 2 skipped, got %d", stats.Skipped)
	}

	first := items[0]
	if first.Utterance != "Ah'm gwine home." {
		t.Errorf("Unexpected utterance: %s", first.Utterance)
	}
	if first.Speaker == nil || *first.Speaker != "Jim" {
		t.Errorf("Expected speaker Jim, got %v", first.Speaker)
	}

	second := items[1]
	if second.Speaker != nil {
		t.Errorf("Expected nil speaker, got %v", *second.Speaker)
	}
	if second.SpeakerInCharList != nil {
		t.Error("Expected nil speaker_in_char_list")
	}
}

func TestKindDetection(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     string
		expected Kind
	}{
		{
			name:     "literary keys",
			filename: "a.jsonl",
			data:     literaryLine + "\n",
			expected: KindLiterary,
		},
		{
			name:     "dialogue keys",
			filename: "b.jsonl",
			data:     `{"utterance":"hello"}` + "\n",
			expected: KindDialogue,
		},
		{
			name:     "empty file defaults to literary",
			filename: "c.jsonl",
			data:     "",
			expected: KindLiterary,
		},
		{
			name:     "unparsable first line defaults to literary",
			filename: "d.jsonl",
			data:     "garbage\n",
			expected: KindLiterary,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeCorpus(t, tt.filename, tt.data)
			kind, err := NewLoader(path).Kind()
			if err != nil {
				t.Fatalf("Kind failed: %v", err)
			}
			if kind != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, kind)
			}
		})
	}
}

func TestItemsDispatch(t *testing.T) {
	path := writeCorpus(t, "dialogue.jsonl", `{"utterance":"hello"}`+"\n")

	items, _, err := NewLoader(path).Items()
	if err != nil {
		t.Fatalf("Items failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}
	if _, ok := items[0].(*DialogueItem); !ok {
		t.Errorf("Expected *DialogueItem, got %T", items[0])
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	_, _, err := NewLoader("corpus.txt").Literary()
	if err == nil {
		t.Error("Expected error for unsupported format, got nil")
	}

	_, _, err = NewLoader("corpus.parquet").Dialogue()
	if err == nil {
		t.Error("Expected error for parquet dialogue, got nil")
	}
}

func TestLoadNonExistentFile(t *testing.T) {
	_, _, err := NewLoader("/nonexistent/path/corpus.jsonl").Literary()
	if err == nil {
		t.Error("Expected error for non-existent file, got nil")
	}

	_, _, err = NewLoader("/nonexistent/path/corpus.jsonl").Dialogue()
	if err == nil {
		t.Error("Expected error for non-existent file, got nil")
	}
}

func TestLoadDialogueDir(t *testing.T) {
	tmpDir := t.TempDir()

	fileA := `{"utterance":"first"}` + "\n"
	fileB := `{"utterance":"second"}` + "\n" + `{"utterance":"third"}` + "\n"
	if err := os.WriteFile(filepath.Join(tmpDir, "a.jsonl"), []byte(fileA), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "b.jsonl"), []byte(fileB), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	items, stats, err := LoadDialogueDir(tmpDir)
	if err != nil {
		t.Fatalf("LoadDialogueDir failed: %v", err)
	}

	if len(items) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(items))
	}
	if stats.Loaded != 3 {
		t.Errorf("Expected 3 loaded, got %d", stats.Loaded)
	}
	// Lexical filename order.
	if items[0].Utterance != "first" {
		t.Errorf("Expected first utterance from a.jsonl, got %s", items[0].Utterance)
	}
}

func TestLoadDialogueDirEmpty(t *testing.T) {
	_, _, err := LoadDialogueDir(t.TempDir())
	if err == nil {
		t.Error("Expected error for directory without .jsonl files, got nil")
	}
}
