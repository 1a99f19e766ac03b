// Package synthesis generates dialogue corpus records from literary
// excerpts with an LLM provider, replacing the upstream batch that
// originally produced the gemini_data files.
package synthesis

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dialect-corpus/annoprep/internal/corpus"
	"github.com/dialect-corpus/annoprep/internal/gemini"
	"github.com/dialect-corpus/annoprep/internal/ollama"
	"github.com/dialect-corpus/annoprep/internal/openai"
	"github.com/dialect-corpus/annoprep/internal/providers"
)

// Dialogue generation wants variety, not the near-greedy settings used
// for extraction tasks.
const dialogueTemperature = 0.7

// NewProvider picks a provider implementation by name, falling back to
// the ANNOPREP_PROVIDER environment variable and then to ollama.
func NewProvider(name string) (providers.Provider, string, error) {
	if name == "" {
		name = os.Getenv("ANNOPREP_PROVIDER")
		if name == "" {
			name = "ollama"
		}
	}

	switch name {
	case "gemini":
		return gemini.New(), name, nil
	case "ollama":
		return ollama.New(), name, nil
	case "openai":
		return openai.New(), name, nil
	default:
		return nil, "", fmt.Errorf("unsupported provider: %s", name)
	}
}

// DefaultModel returns the model for a provider, honoring the matching
// environment variable.
func DefaultModel(provider string) string {
	switch provider {
	case "gemini":
		model := os.Getenv("GEMINI_MODEL")
		if model == "" {
			return "gemini-1.5-flash"
		}
		return model
	case "openai":
		model := os.Getenv("OPENAI_MODEL")
		if model == "" {
			return "gpt-4o"
		}
		return model
	case "ollama":
		model := os.Getenv("OLLAMA_MODEL")
		if model == "" {
			return "mistral-small3.2:24b"
		}
		return model
	default:
		return ""
	}
}

// Service turns literary excerpts into dialogue utterances.
type Service struct {
	provider providers.Provider
	model    string
	count    int
}

// NewService creates a synthesis service requesting count utterances
// per excerpt.
func NewService(provider providers.Provider, model string, count int) *Service {
	if count <= 0 {
		count = 5
	}
	return &Service{provider: provider, model: model, count: count}
}

// Dialogue prompts the provider to rewrite one excerpt as dialogue and
// parses the utterances out of the response.
func (s *Service) Dialogue(ctx context.Context, excerpt string) ([]corpus.DialogueItem, error) {
	response, err := s.provider.GenerateText(ctx, providers.Config{
		Model:       s.model,
		Temperature: dialogueTemperature,
		Prompt:      buildDialoguePrompt(excerpt, s.count),
	})
	if err != nil {
		return nil, fmt.Errorf("provider request failed: %w", err)
	}
	return parseDialogueResponse(response)
}

// Result counts one synthesis run.
type Result struct {
	Generated int
	Failed    int
}

// Generate converts literary excerpts into dialogue records and writes
// them as JSONL in the dialogue corpus schema. Excerpts that fail are
// logged and skipped so one bad generation does not lose the batch.
func (s *Service) Generate(ctx context.Context, items []corpus.Item, path string) (Result, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return Result{}, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	var res Result
	for _, item := range items {
		lit, ok := item.(*corpus.LiteraryItem)
		if !ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}

		utterances, err := s.Dialogue(ctx, lit.Text)
		if err != nil {
			slog.Warn("Dialogue generation failed", "sample_id", lit.ID, "error", err)
			res.Failed++
			continue
		}
		for _, u := range utterances {
			if err := enc.Encode(u); err != nil {
				return res, fmt.Errorf("failed to write utterance: %w", err)
			}
		}
		res.Generated += len(utterances)
	}

	if err := w.Flush(); err != nil {
		return res, fmt.Errorf("failed to write output file: %w", err)
	}

	slog.Info("Dialogue synthesis finished", "path", path, "generated", res.Generated, "failed", res.Failed)
	return res, nil
}

// buildDialoguePrompt creates the generation prompt for one excerpt.
func buildDialoguePrompt(excerpt string, count int) string {
	return fmt.Sprintf(`You are a dialogue writer with deep knowledge of nonstandard and dialectal English spelling.

Your task is to write short dialogue utterances in the voice of the excerpt below, keeping its dialectal and phonetic spellings intact.

INSTRUCTIONS:
1. Read the excerpt carefully and identify its speech patterns, spellings, and vocabulary.
2. Write %d standalone dialogue utterances a character from this world could say.
3. Keep nonstandard spellings exactly as the excerpt spells them. Do not normalize them.
4. Guess a plausible speaker and addressee name for each utterance. Use null when you cannot tell.
5. Mark speaker_in_char_list and addressee_in_char_list true only when the name appears in the excerpt itself.

EXCERPT:
%s

OUTPUT FORMAT:
Respond with ONLY a JSON array:

[
  {
    "utterance": "...",
    "speaker": "..." or null,
    "speaker_in_char_list": true or false,
    "addressee": "..." or null,
    "addressee_in_char_list": true or false
  }
]

Do not add commentary before or after the array.`, count, excerpt)
}

// parseDialogueResponse extracts dialogue records from a model response.
// The prompt asks for a bare JSON array, but models wrap output in
// markdown fences or prose often enough that this falls back to
// scanning for the array brackets and then to line-by-line objects.
func parseDialogueResponse(response string) ([]corpus.DialogueItem, error) {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	response = strings.TrimSpace(response)

	if items, err := decodeItems([]byte(response)); err == nil {
		return items, nil
	}

	if start, end := strings.Index(response, "["), strings.LastIndex(response, "]"); start != -1 && end > start {
		if items, err := decodeItems([]byte(response[start : end+1])); err == nil {
			return items, nil
		}
	}

	var items []corpus.DialogueItem
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSuffix(strings.TrimSpace(line), ",")
		if !strings.HasPrefix(line, "{") {
			continue
		}
		var item corpus.DialogueItem
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			continue
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("no utterances found in response")
	}
	return items, nil
}

// decodeItems parses a JSON array of dialogue records, skipping entries
// that fail validation.
func decodeItems(data []byte) ([]corpus.DialogueItem, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, err
	}

	items := make([]corpus.DialogueItem, 0, len(raws))
	for _, raw := range raws {
		var item corpus.DialogueItem
		if err := json.Unmarshal(raw, &item); err != nil {
			slog.Warn("Skipping malformed generated utterance", "error", err)
			continue
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("no valid utterances in response array")
	}
	return items, nil
}
