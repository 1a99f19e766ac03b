package sampling

import (
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/dialect-corpus/annoprep/internal/corpus"
)

// Random returns the items unchanged when the request covers them all,
// otherwise a uniform subset without replacement.
func Random[T any](rng *rand.Rand, items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return draw(rng, items, n)
}

// Weights scale the two per-item weight heuristics used by Weighted.
type Weights struct {
	PhoneticDensity float64
	UtteranceLength float64
}

// DefaultWeights applies both heuristics at full strength.
func DefaultWeights() Weights {
	return Weights{PhoneticDensity: 1, UtteranceLength: 1}
}

// Weighted draws up to n items with replacement, favoring literary items
// dense in nonstandard spellings and longer dialogue utterances. When no
// item carries weight the draw degrades to uniform without replacement.
func Weighted(rng *rand.Rand, items []corpus.Item, n int, w Weights) []corpus.Item {
	if len(items) == 0 {
		return nil
	}
	if n > len(items) {
		n = len(items)
	}
	if n <= 0 {
		return nil
	}

	weights := make([]float64, len(items))
	var total float64
	for i, item := range items {
		weights[i] = itemWeight(item, w)
		total += weights[i]
	}
	if total == 0 {
		return draw(rng, items, n)
	}

	cumulative := make([]float64, len(items))
	sum := 0.0
	for i, wt := range weights {
		sum += wt / total
		cumulative[i] = sum
	}

	out := make([]corpus.Item, n)
	for i := range out {
		idx := sort.SearchFloat64s(cumulative, rng.Float64())
		if idx >= len(items) {
			idx = len(items) - 1
		}
		out[i] = items[idx]
	}
	return out
}

func itemWeight(item corpus.Item, w Weights) float64 {
	switch it := item.(type) {
	case *corpus.LiteraryItem:
		phonetic := len(it.Words.PhoneticSurfaces())
		return w.PhoneticDensity * float64(phonetic+1)
	case *corpus.DialogueItem:
		return w.UtteranceLength * float64(len(strings.Fields(it.Utterance)))
	default:
		return 1.0
	}
}
