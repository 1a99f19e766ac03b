package patterns

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dialect-corpus/annoprep/internal/corpus"
)

// stripRe removes everything outside ASCII alphanumerics and whitespace,
// producing the cleaned spelling variant of an annotated word.
var stripRe = regexp.MustCompile(`[^a-zA-Z0-9\s]`)

// Extractor derives patterns from the annotated words of literary items.
// The seen set spans the extractor's lifetime, so repeated Extract calls
// within one run deduplicate against each other; build a fresh Extractor
// per run.
type Extractor struct {
	minLength       int
	maxLength       int
	stopwords       map[string]struct{}
	filterStopwords bool
	seen            map[string]struct{}
}

// NewExtractor creates an extractor. The length bounds apply to the
// normalized variant text: the lower bound is exclusive, the upper
// inclusive. Pass nil stopwords to use the built-in English set.
func NewExtractor(minLength, maxLength int, stopwords map[string]struct{}, filterStopwords bool) *Extractor {
	if stopwords == nil {
		stopwords = DefaultStopwords()
	}
	return &Extractor{
		minLength:       minLength,
		maxLength:       maxLength,
		stopwords:       stopwords,
		filterStopwords: filterStopwords,
		seen:            make(map[string]struct{}),
	}
}

// Extract emits patterns for every item in order. Output preserves the
// order in which variants were first accepted.
func (e *Extractor) Extract(items []*corpus.LiteraryItem) []Pattern {
	var out []Pattern
	for _, item := range items {
		out = append(out, e.ExtractItem(item)...)
	}
	slog.Debug("Extracted patterns", "count", len(out), "items", len(items))
	return out
}

// ExtractItem emits patterns for a single item's annotated words. Each
// surface spelling yields up to two variants: the lowercased word, and
// the lowercased word with punctuation stripped. Identical variants
// collapse to one candidate.
func (e *Extractor) ExtractItem(item *corpus.LiteraryItem) []Pattern {
	var out []Pattern
	for _, surface := range item.Words.Surfaces() {
		lowered := strings.ToLower(surface)
		cleaned := stripRe.ReplaceAllString(lowered, "")

		variants := []string{lowered}
		if cleaned != lowered {
			variants = append(variants, cleaned)
		}

		for _, variant := range variants {
			if !e.valid(variant) {
				continue
			}
			fields := strings.Fields(variant)
			if len(fields) == 0 {
				// All-whitespace variant: nothing a token pattern could match.
				continue
			}
			tokens := make([]Token, len(fields))
			for i, f := range fields {
				tokens[i] = Token{Lower: f}
			}
			out = append(out, Pattern{Label: LabelPhonetic, Tokens: tokens})
			e.seen[variant] = struct{}{}
		}
	}
	return out
}

func (e *Extractor) valid(variant string) bool {
	if variant == "" {
		return false
	}
	if _, ok := e.seen[variant]; ok {
		return false
	}
	length := utf8.RuneCountInString(variant)
	if length <= e.minLength {
		return false
	}
	if length > e.maxLength {
		return false
	}
	if e.filterStopwords {
		if _, ok := e.stopwords[variant]; ok {
			return false
		}
	}
	return true
}
