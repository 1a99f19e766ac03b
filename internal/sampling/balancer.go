package sampling

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/dialect-corpus/annoprep/internal/corpus"
	"github.com/dialect-corpus/annoprep/internal/prodigy"
)

// Balancer orchestrates loading, stratified sampling and Prodigy output
// for the three source modes: literary only, dialogue only, and mixed.
type Balancer struct {
	rng        *rand.Rand
	classifier *Classifier
	sources    []SourceLoad
}

// SourceLoad pairs a loaded corpus path with its loader stats.
type SourceLoad struct {
	Path  string
	Stats corpus.LoadStats
}

// NewBalancer creates a balancer. A nil seed samples from entropy.
func NewBalancer(seed *uint64, classifier *Classifier) *Balancer {
	return &Balancer{
		rng:        NewRand(seed),
		classifier: classifier,
	}
}

// Classifier exposes the balancer's classifier, whose pattern usage
// counts accumulate across balance calls.
func (b *Balancer) Classifier() *Classifier {
	return b.classifier
}

// Sources lists every corpus file loaded so far, in load order.
func (b *Balancer) Sources() []SourceLoad {
	return b.sources
}

// BalanceLiterary samples one corpus file, balancing dialogue against
// non-dialogue content at the given ratio.
func (b *Balancer) BalanceLiterary(path string, sampleSize int, dialogueRatio float64) ([]corpus.Item, error) {
	items, stats, err := corpus.NewLoader(path).Items()
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	b.sources = append(b.sources, SourceLoad{Path: path, Stats: stats})
	slog.Info("Loaded corpus", "path", path, "loaded", stats.Loaded, "skipped", stats.Skipped)

	balanced := Stratify(b.rng, items, sampleSize, dialogueRatio, b.classifier.IsDialogue)
	slog.Info("Balanced sample", "count", len(balanced))

	return balanced, nil
}

// BalanceDialogue concatenates dialogue files and samples them, balancing
// phonetized against non-phonetized utterances at the given ratio.
func (b *Balancer) BalanceDialogue(paths []string, sampleSize int, phonetizedRatio float64) ([]corpus.Item, error) {
	var all []corpus.Item
	for _, path := range paths {
		items, stats, err := corpus.NewLoader(path).Items()
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		b.sources = append(b.sources, SourceLoad{Path: path, Stats: stats})
		slog.Info("Loaded corpus", "path", path, "loaded", stats.Loaded, "skipped", stats.Skipped)
		all = append(all, items...)
	}

	balanced := Stratify(b.rng, all, sampleSize, phonetizedRatio, b.classifier.IsPhonetic)
	slog.Info("Balanced sample", "count", len(balanced))

	return balanced, nil
}

// BalanceMixed draws the dialogue share of the sample from the dialogue
// files and the rest from the literary file. The ratio splits the target
// across sources; within each source the stratifier runs with a fixed
// all-or-nothing ratio, so its shortfall handling still applies.
func (b *Balancer) BalanceMixed(literaryPath string, dialoguePaths []string, sampleSize int, dialogueRatio float64) ([]corpus.Item, []corpus.Item, error) {
	literary, litStats, err := corpus.NewLoader(literaryPath).Items()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load %s: %w", literaryPath, err)
	}
	b.sources = append(b.sources, SourceLoad{Path: literaryPath, Stats: litStats})

	var dialogue []corpus.Item
	for _, path := range dialoguePaths {
		items, stats, err := corpus.NewLoader(path).Items()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		b.sources = append(b.sources, SourceLoad{Path: path, Stats: stats})
		dialogue = append(dialogue, items...)
	}

	slog.Info("Loaded mixed sources",
		"literary", len(literary), "literary_skipped", litStats.Skipped, "dialogue", len(dialogue))

	dialogueQuota := int(float64(sampleSize) * dialogueRatio)
	literaryQuota := sampleSize - dialogueQuota

	sampledLiterary := Stratify(b.rng, literary, literaryQuota, 0.0, b.classifier.IsDialogue)
	sampledDialogue := Stratify(b.rng, dialogue, dialogueQuota, 1.0, b.classifier.IsDialogue)

	slog.Info("Sampled mixed sources", "literary", len(sampledLiterary), "dialogue", len(sampledDialogue))

	return sampledLiterary, sampledDialogue, nil
}

// Stats describes the phonetic balance of a sample.
type Stats struct {
	Total              int     `json:"total" yaml:"total"`
	Phonetized         int     `json:"phonetized" yaml:"phonetized"`
	NonPhonetized      int     `json:"non_phonetized" yaml:"non_phonetized"`
	PhonetizedRatio    float64 `json:"phonetized_ratio" yaml:"phonetized_ratio"`
	NonPhonetizedRatio float64 `json:"non_phonetized_ratio" yaml:"non_phonetized_ratio"`
}

// Stats classifies every item and reports the phonetized balance.
func (b *Balancer) Stats(items []corpus.Item) Stats {
	var phonetized int
	for _, item := range items {
		if b.classifier.IsPhonetic(item) {
			phonetized++
		}
	}

	total := len(items)
	ratio := 0.0
	if total > 0 {
		ratio = float64(phonetized) / float64(total)
	}

	return Stats{
		Total:              total,
		Phonetized:         phonetized,
		NonPhonetized:      total - phonetized,
		PhonetizedRatio:    ratio,
		NonPhonetizedRatio: 1 - ratio,
	}
}

// Save formats each item as a Prodigy document, classifying it for the
// meta flags, and writes the result as JSONL.
func (b *Balancer) Save(items []corpus.Item, path string) error {
	docs := make([]prodigy.Doc, 0, len(items))
	for _, item := range items {
		switch it := item.(type) {
		case *corpus.LiteraryItem:
			docs = append(docs, prodigy.FormatLiterary(it, b.classifier.IsDialogue(it)))
		case *corpus.DialogueItem:
			docs = append(docs, prodigy.FormatDialogue(it, b.classifier.IsPhonetic(it)))
		default:
			docs = append(docs, prodigy.FormatUnknown(item))
		}
	}

	if err := prodigy.WriteDocs(docs, path); err != nil {
		return fmt.Errorf("failed to save balanced sample: %w", err)
	}
	return nil
}
