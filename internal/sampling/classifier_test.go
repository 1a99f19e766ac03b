package sampling

import (
	"testing"

	"github.com/dialect-corpus/annoprep/internal/corpus"
	"github.com/dialect-corpus/annoprep/internal/patterns"
)

func literary(text string, words ...string) *corpus.LiteraryItem {
	item := &corpus.LiteraryItem{ID: 1, SourceID: "gb-001", Author: "A", Title: "T", Text: text}
	for i, w := range words {
		item.Words.Set(w, corpus.WordVariant{Standard: w + "_std", TokenIndices: []int32{int32(i)}})
	}
	return item
}

func dialogue(utterance string) *corpus.DialogueItem {
	return &corpus.DialogueItem{Utterance: utterance}
}

func TestIsDialogue(t *testing.T) {
	c := NewClassifier(nil)

	tests := []struct {
		name     string
		item     corpus.Item
		expected bool
	}{
		{
			name:     "quoted literary text",
			item:     literary(`Then he cried "wait for me!" and ran.`),
			expected: true,
		},
		{
			name:     "speech verb",
			item:     literary(`He said nothing would change.`),
			expected: true,
		},
		{
			name:     "speech verb case-insensitive",
			item:     literary(`REPLIED THE CAPTAIN AT ONCE`),
			expected: true,
		},
		{
			name:     "plain narration",
			item:     literary(`The river ran slow past the landing.`),
			expected: false,
		},
		{
			name:     "apostrophe counts as a marker",
			item:     literary(`It was the dog's bone.`),
			expected: true,
		},
		{
			name:     "dialogue item is always dialogue",
			item:     dialogue("anything"),
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.IsDialogue(tt.item); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestIsPhoneticLiterary(t *testing.T) {
	c := NewClassifier(nil)

	if !c.IsPhonetic(literary("text", "heben")) {
		t.Error("Expected item with annotated words to be phonetic")
	}
	if c.IsPhonetic(literary("text")) {
		t.Error("Expected item without annotated words to be non-phonetic")
	}
}

func TestIsPhoneticDialogue(t *testing.T) {
	c := NewClassifier(patterns.NewSet("heben"))

	if !c.IsPhonetic(dialogue("he said heben to me")) {
		t.Error("Expected utterance containing pattern word to be phonetic")
	}
	if c.IsPhonetic(dialogue("he said hello to me")) {
		t.Error("Expected utterance without pattern words to be non-phonetic")
	}
}

func TestIsPhoneticDialogueCleansTokens(t *testing.T) {
	c := NewClassifier(patterns.NewSet("heben", "hain't"))

	tests := []struct {
		name      string
		utterance string
		expected  bool
	}{
		{name: "trailing punctuation", utterance: "straight to heben!", expected: true},
		{name: "uppercase", utterance: "HEBEN above", expected: true},
		{name: "apostrophe survives cleaning", utterance: "I hain't seen it", expected: true},
		{name: "wrapped in quotes", utterance: `she whispered "heben"`, expected: true},
		{name: "substring is not a match", utterance: "hebenation", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.IsPhonetic(dialogue(tt.utterance)); got != tt.expected {
				t.Errorf("Expected %v for %q, got %v", tt.expected, tt.utterance, got)
			}
		})
	}
}

func TestIsPhoneticDialogueWithoutPatterns(t *testing.T) {
	c := NewClassifier(nil)

	if c.IsPhonetic(dialogue("he said heben to me")) {
		t.Error("Expected no phonetic matches without a pattern set")
	}
}

func TestUsageCounts(t *testing.T) {
	c := NewClassifier(patterns.NewSet("heben", "gwine"))

	c.IsPhonetic(dialogue("heben awaits"))
	c.IsPhonetic(dialogue("heben again"))
	c.IsPhonetic(dialogue("gwine home"))
	c.IsPhonetic(dialogue("nothing here"))

	usage := c.Usage()
	if usage["heben"] != 2 {
		t.Errorf("Expected heben used twice, got %d", usage["heben"])
	}
	if usage["gwine"] != 1 {
		t.Errorf("Expected gwine used once, got %d", usage["gwine"])
	}

	// The scan short-circuits on the first match: the second pattern in
	// the same utterance is not counted.
	c2 := NewClassifier(patterns.NewSet("heben", "gwine"))
	c2.IsPhonetic(dialogue("heben and gwine"))
	if got := c2.Usage(); got["heben"] != 1 || got["gwine"] != 0 {
		t.Errorf("Expected short-circuit counting, got %v", got)
	}
}

func TestUsageReturnsCopy(t *testing.T) {
	c := NewClassifier(patterns.NewSet("heben"))
	c.IsPhonetic(dialogue("heben"))

	usage := c.Usage()
	usage["heben"] = 99

	if c.Usage()["heben"] != 1 {
		t.Error("Expected Usage to return a copy")
	}
}
