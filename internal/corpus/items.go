package corpus

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind identifies which corpus a file or record belongs to.
type Kind string

const (
	KindLiterary Kind = "literary"
	KindDialogue Kind = "dialogue"
)

// Item is a corpus record. Exactly two implementations exist,
// *LiteraryItem and *DialogueItem; consumers dispatch with a type switch.
type Item interface {
	isItem()
}

// LiteraryItem is an excerpt from the literary corpus with word-level
// spelling annotations.
type LiteraryItem struct {
	ID       int          `json:"sample_id"`
	SourceID string       `json:"g_id"`
	Author   string       `json:"author"`
	Title    string       `json:"title"`
	Text     string       `json:"sample"`
	Words    WordVariants `json:"words"`
}

func (it *LiteraryItem) isItem() {}

var requiredLiteraryFields = []string{"sample_id", "g_id", "author", "title", "sample", "words"}

// UnmarshalJSON rejects records missing any required field. Absent keys
// would otherwise be indistinguishable from zero values.
func (it *LiteraryItem) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, field := range requiredLiteraryFields {
		if _, ok := raw[field]; !ok {
			return fmt.Errorf("missing required field %q", field)
		}
	}

	type literaryAlias LiteraryItem
	var a literaryAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*it = LiteraryItem(a)
	return nil
}

// DialogueItem is a single utterance from the dialogue corpus. The
// speaker and addressee fields are optional in the wire format and stay
// nil when absent so they serialize back as JSON null.
type DialogueItem struct {
	Utterance           string  `json:"utterance"`
	Speaker             *string `json:"speaker"`
	SpeakerInCharList   *bool   `json:"speaker_in_char_list"`
	Addressee           *string `json:"addressee"`
	AddresseeInCharList *bool   `json:"addressee_in_char_list"`

	// SourceFile is the base name of the file the record came from,
	// stamped by the loader; not part of the wire format.
	SourceFile string `json:"-"`
}

func (it *DialogueItem) isItem() {}

// UnmarshalJSON rejects records whose utterance is missing or blank.
func (it *DialogueItem) UnmarshalJSON(data []byte) error {
	type dialogueAlias DialogueItem
	var a dialogueAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	if strings.TrimSpace(a.Utterance) == "" {
		return fmt.Errorf("utterance must be present and non-empty")
	}
	*it = DialogueItem(a)
	return nil
}
