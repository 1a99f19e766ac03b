// Package sampling draws balanced annotation samples from corpus items.
package sampling

import (
	"log/slog"
	"math/rand/v2"
)

// NewRand returns a seedable random source. A nil seed draws from
// entropy; any other value makes runs bit-for-bit reproducible.
func NewRand(seed *uint64) *rand.Rand {
	if seed == nil {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(*seed, *seed))
}

// Stratify draws up to targetSize items, aiming for positiveRatio of them
// to classify true. Quotas start at floor(targetSize*positiveRatio) for
// the positive stratum and the remainder for the negative one; when a
// stratum cannot cover its quota the shortfall shifts to the other. The
// two shortfall checks run in sequence, positive first, so the second can
// re-inflate the positive quota past its supply; the draw then clamps to
// what the stratum holds and the result comes up short. The positive draw
// happens first, then the negative, then one shuffle of the combination.
func Stratify[T any](rng *rand.Rand, items []T, targetSize int, positiveRatio float64, classify func(T) bool) []T {
	if targetSize <= 0 || len(items) == 0 {
		return nil
	}

	var positive, negative []T
	for _, item := range items {
		if classify(item) {
			positive = append(positive, item)
		} else {
			negative = append(negative, item)
		}
	}

	slog.Debug("Partitioned items for sampling", "positive", len(positive), "negative", len(negative))

	positiveQuota := int(float64(targetSize) * positiveRatio)
	negativeQuota := targetSize - positiveQuota

	if len(positive) < positiveQuota {
		positiveQuota = len(positive)
		negativeQuota = targetSize - positiveQuota
		slog.Warn("Not enough positive items, shrinking quota", "quota", positiveQuota)
	}
	if len(negative) < negativeQuota {
		negativeQuota = len(negative)
		positiveQuota = targetSize - negativeQuota
		slog.Warn("Not enough negative items, shrinking quota", "quota", negativeQuota)
	}

	sampledPositive := draw(rng, positive, positiveQuota)
	sampledNegative := draw(rng, negative, negativeQuota)

	result := make([]T, 0, len(sampledPositive)+len(sampledNegative))
	result = append(result, sampledPositive...)
	result = append(result, sampledNegative...)

	rng.Shuffle(len(result), func(i, j int) {
		result[i], result[j] = result[j], result[i]
	})

	slog.Debug("Sampled items", "positive", len(sampledPositive), "negative", len(sampledNegative))

	return result
}

// draw picks k items uniformly without replacement. A quota larger than
// the supply is clamped with a warning; zero or negative quotas consume
// no randomness.
func draw[T any](rng *rand.Rand, items []T, k int) []T {
	if k <= 0 {
		return nil
	}
	if k > len(items) {
		slog.Warn("Quota exceeds stratum supply, clamping", "quota", k, "supply", len(items))
		k = len(items)
	}
	if k == 0 {
		return nil
	}

	perm := rng.Perm(len(items))
	out := make([]T, k)
	for i := 0; i < k; i++ {
		out[i] = items[perm[i]]
	}
	return out
}
