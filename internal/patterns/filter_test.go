package patterns

import (
	"testing"
)

func singleToken(label, text string) Pattern {
	return Pattern{Label: label, Tokens: []Token{{Lower: text}}}
}

func TestDedupe(t *testing.T) {
	ps := []Pattern{
		singleToken("PHONETIC", "gwine"),
		singleToken("PHONETIC", "yonder"),
		singleToken("PHONETIC", "gwine"),
		singleToken("DIALECT", "gwine"),
	}

	out := Dedupe(ps)

	if len(out) != 3 {
		t.Fatalf("Expected 3 patterns, got %d", len(out))
	}
	if out[0].Text() != "gwine" || out[1].Text() != "yonder" {
		t.Errorf("Expected first-seen order, got %v", patternTexts(out))
	}
	if out[2].Label != "DIALECT" {
		t.Errorf("Expected same text under different label to survive, got %s", out[2].Label)
	}
}

func TestDedupeTokenSequences(t *testing.T) {
	ps := []Pattern{
		{Label: "PHONETIC", Tokens: []Token{{Lower: "mo"}, {Lower: "better"}}},
		{Label: "PHONETIC", Tokens: []Token{{Lower: "mo"}, {Lower: "better"}}},
		{Label: "PHONETIC", Tokens: []Token{{Lower: "mo better"}}},
	}

	out := Dedupe(ps)

	// The two-token and one-token forms join to the same text; the key is
	// the token sequence, so only the exact duplicate collapses.
	if len(out) != 2 {
		t.Fatalf("Expected 2 patterns, got %d", len(out))
	}
}

func TestFilterByLength(t *testing.T) {
	ps := []Pattern{
		singleToken("PHONETIC", "ab"),
		singleToken("PHONETIC", "abc"),
		singleToken("PHONETIC", "the"),
		singleToken("PHONETIC", "gwine"),
		singleToken("PHONETIC", "gwine"),
		{Label: "PHONETIC", Tokens: nil},
	}

	out := FilterByLength(ps, 3)

	texts := patternTexts(out)
	expected := []string{"abc", "gwine"}
	if len(texts) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, texts)
	}
	for i, want := range expected {
		if texts[i] != want {
			t.Errorf("Expected %s at %d, got %s", want, i, texts[i])
		}
	}
}

func TestFilterByLengthIdempotent(t *testing.T) {
	ps := []Pattern{
		singleToken("PHONETIC", "gwine"),
		singleToken("PHONETIC", "yonder"),
	}

	once := FilterByLength(ps, 3)
	twice := FilterByLength(once, 3)

	if len(once) != len(twice) {
		t.Fatalf("Expected idempotent filtering, got %d then %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].Text() != twice[i].Text() {
			t.Errorf("Expected stable order, got %v vs %v", patternTexts(once), patternTexts(twice))
		}
	}
}

func TestDedupeConsistency(t *testing.T) {
	// Dedupe keyed by token sequence, then FilterByLength keyed by joined
	// text; composing them must not reorder survivors.
	ps := []Pattern{
		singleToken("PHONETIC", "yonder"),
		singleToken("PHONETIC", "gwine"),
		singleToken("PHONETIC", "yonder"),
	}

	out := FilterByLength(Dedupe(ps), 3)

	texts := patternTexts(out)
	if len(texts) != 2 || texts[0] != "yonder" || texts[1] != "gwine" {
		t.Errorf("Expected [yonder gwine], got %v", texts)
	}
}
