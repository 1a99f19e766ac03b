// Package prodigy formats annotation documents for the Prodigy tool and
// drives the tool itself as a subprocess.
package prodigy

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dialect-corpus/annoprep/internal/corpus"
)

// Source tags recorded in document metadata.
const (
	SourceLiterary = "gb_data"
	SourceDialogue = "gemini_data"
	SourceUnknown  = "unknown"
)

// Doc is one line of Prodigy input: the text to annotate plus metadata
// shown in the annotation UI.
type Doc struct {
	Text string `json:"text"`
	Meta any    `json:"meta"`
}

// LiteraryMeta is the metadata attached to literary excerpts. The words
// mapping round-trips from the source record byte for byte, key order
// included.
type LiteraryMeta struct {
	Source        string              `json:"source"`
	SampleID      int                 `json:"sample_id"`
	SourceID      string              `json:"g_id"`
	Author        string              `json:"author"`
	Title         string              `json:"title"`
	Book          string              `json:"book"`
	Words         corpus.WordVariants `json:"words"`
	IsDialogue    bool                `json:"is_dialogue"`
	PhoneticWords []string            `json:"phonetic_words"`
}

// DialogueMeta is the metadata attached to dialogue utterances. Optional
// fields serialize as null when absent.
type DialogueMeta struct {
	Source              string  `json:"source"`
	SourceFile          *string `json:"source_file"`
	Speaker             *string `json:"speaker"`
	SpeakerInCharList   *bool   `json:"speaker_in_char_list"`
	Addressee           *string `json:"addressee"`
	AddresseeInCharList *bool   `json:"addressee_in_char_list"`
	IsDialogue          bool    `json:"is_dialogue"`
	IsPhonetized        bool    `json:"is_phonetized"`
}

// UnknownMeta is the fallback for item kinds the formatter does not know.
type UnknownMeta struct {
	Source     string `json:"source"`
	IsDialogue bool   `json:"is_dialogue"`
}

// FormatLiterary builds the Prodigy document for a literary excerpt.
// The book field repeats the title; phonetic_words lists the surfaces
// whose standard form differs.
func FormatLiterary(item *corpus.LiteraryItem, isDialogue bool) Doc {
	phonetic := item.Words.PhoneticSurfaces()
	if phonetic == nil {
		phonetic = []string{}
	}
	return Doc{
		Text: item.Text,
		Meta: LiteraryMeta{
			Source:        SourceLiterary,
			SampleID:      item.ID,
			SourceID:      item.SourceID,
			Author:        item.Author,
			Title:         item.Title,
			Book:          item.Title,
			Words:         item.Words,
			IsDialogue:    isDialogue,
			PhoneticWords: phonetic,
		},
	}
}

// FormatDialogue builds the Prodigy document for a dialogue utterance.
func FormatDialogue(item *corpus.DialogueItem, isPhonetized bool) Doc {
	var sourceFile *string
	if item.SourceFile != "" {
		sourceFile = &item.SourceFile
	}
	return Doc{
		Text: item.Utterance,
		Meta: DialogueMeta{
			Source:              SourceDialogue,
			SourceFile:          sourceFile,
			Speaker:             item.Speaker,
			SpeakerInCharList:   item.SpeakerInCharList,
			Addressee:           item.Addressee,
			AddresseeInCharList: item.AddresseeInCharList,
			IsDialogue:          true,
			IsPhonetized:        isPhonetized,
		},
	}
}

// FormatUnknown builds a minimal document for an unrecognized item kind.
func FormatUnknown(item any) Doc {
	return Doc{
		Text: fmt.Sprintf("%v", item),
		Meta: UnknownMeta{Source: SourceUnknown, IsDialogue: false},
	}
}

// WriteDocs saves documents as JSONL, creating parent directories as
// needed. Text passes through unescaped so the annotation tool sees the
// original characters.
func WriteDocs(docs []Doc, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, doc := range docs {
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to write document: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	slog.Info("Saved annotation documents", "path", path, "count", len(docs))
	return nil
}
