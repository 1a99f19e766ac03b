package patterns

import (
	"strings"
	"unicode/utf8"
)

// refinementStopwords is the compact closed-class list applied by the
// standalone refinement pass; deliberately smaller than the extractor's
// default set.
var refinementStopwords = func() map[string]struct{} {
	words := strings.Fields(`
the a an and or but in on at to for of with by is are was were be been being
have has had do does did will would could should may might must can this that
these those i you he she it we they me him her us them my your his its our
their`)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}()

// Dedupe removes exact duplicates, keyed by label plus token sequence,
// keeping the first occurrence.
func Dedupe(ps []Pattern) []Pattern {
	seen := make(map[string]struct{}, len(ps))
	var out []Pattern
	for _, p := range ps {
		key := dedupeKey(p)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}

// dedupeKey encodes the label and each token separately, so a two-token
// pattern and a one-token pattern with the same joined text stay
// distinct.
func dedupeKey(p Pattern) string {
	var b strings.Builder
	b.WriteString(p.Label)
	for _, tok := range p.Tokens {
		b.WriteByte(0)
		b.WriteString(tok.Lower)
	}
	return b.String()
}

// FilterByLength re-checks patterns against the joined token text:
// non-empty, not previously kept, at least minLength characters, and not
// a common stopword. Order-preserving and idempotent, usable standalone
// on a pattern set produced elsewhere. Unlike the extractor's bound, the
// lower bound here is inclusive.
func FilterByLength(ps []Pattern, minLength int) []Pattern {
	seen := make(map[string]struct{}, len(ps))
	var out []Pattern
	for _, p := range ps {
		text := p.Text()
		if text == "" {
			continue
		}
		if _, ok := seen[text]; ok {
			continue
		}
		if utf8.RuneCountInString(text) < minLength {
			continue
		}
		if _, ok := refinementStopwords[text]; ok {
			continue
		}
		seen[text] = struct{}{}
		out = append(out, p)
	}
	return out
}
