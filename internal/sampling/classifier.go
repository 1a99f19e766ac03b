package sampling

import (
	"strings"
	"unicode"

	"github.com/dialect-corpus/annoprep/internal/corpus"
	"github.com/dialect-corpus/annoprep/internal/patterns"
)

// dialogueMarkers flag a literary excerpt as containing dialogue. Crude
// but deliberate: quotation marks plus common speech verbs.
var dialogueMarkers = []string{`"`, `'`, "said", "asked", "replied", "answered", "exclaimed"}

// Classifier decides the dialogue and phonetic status of corpus items.
// It also counts which pattern words actually fire during classification,
// for diagnostics.
type Classifier struct {
	patterns *patterns.Set
	usage    map[string]int
}

// NewClassifier creates a classifier backed by a pattern set. A nil set
// is allowed; dialogue utterances then never classify as phonetic.
func NewClassifier(set *patterns.Set) *Classifier {
	return &Classifier{
		patterns: set,
		usage:    make(map[string]int),
	}
}

// IsDialogue reports whether the item is (or contains) dialogue.
// Literary excerpts use the marker heuristic; dialogue utterances are
// dialogue by construction.
func (c *Classifier) IsDialogue(item corpus.Item) bool {
	switch it := item.(type) {
	case *corpus.LiteraryItem:
		text := strings.ToLower(it.Text)
		for _, marker := range dialogueMarkers {
			if strings.Contains(text, marker) {
				return true
			}
		}
		return false
	case *corpus.DialogueItem:
		return true
	default:
		return false
	}
}

// IsPhonetic reports whether the item carries phonetic spellings. A
// literary excerpt qualifies by having any annotated word at all; a
// dialogue utterance qualifies when one of its cleaned tokens is a known
// pattern word. The first matching token short-circuits the scan and is
// counted in Usage.
func (c *Classifier) IsPhonetic(item corpus.Item) bool {
	switch it := item.(type) {
	case *corpus.LiteraryItem:
		return it.Words.Len() > 0
	case *corpus.DialogueItem:
		utterance := strings.ToLower(it.Utterance)
		for _, word := range strings.Fields(utterance) {
			clean := cleanToken(word)
			if c.patterns.Contains(clean) {
				c.usage[clean]++
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Usage returns a copy of the per-pattern match counts recorded so far.
func (c *Classifier) Usage() map[string]int {
	out := make(map[string]int, len(c.usage))
	for word, count := range c.usage {
		out[word] = count
	}
	return out
}

// cleanToken strips a token down to letters, digits, apostrophes and
// hyphens, matching how pattern words were normalized.
func cleanToken(word string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '\'' || r == '-' {
			return r
		}
		return -1
	}, word)
}
