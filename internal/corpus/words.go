package corpus

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// WordVariant is the annotation attached to one surface spelling.
// Records carry extra bookkeeping keys beyond these (dtag, multiword, ...);
// the original bytes are retained so serialization round-trips them.
type WordVariant struct {
	Standard     string  `json:"Std" parquet:"Std"`
	Provenance   string  `json:"Prov" parquet:"Prov"`
	OCRFlag      int32   `json:"OCR" parquet:"OCR"`
	TokenIndices []int32 `json:"i" parquet:"i"`

	raw json.RawMessage
}

var requiredVariantFields = []string{"Std", "Prov", "OCR", "i"}

// UnmarshalJSON rejects variant objects missing any required field.
func (v *WordVariant) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, field := range requiredVariantFields {
		if _, ok := raw[field]; !ok {
			return fmt.Errorf("missing required field %q", field)
		}
	}

	type variantAlias WordVariant
	var a variantAlias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*v = WordVariant(a)
	v.raw = append([]byte(nil), data...)
	return nil
}

// MarshalJSON re-emits the original object bytes when the variant came
// from JSON, preserving keys this struct does not model.
func (v WordVariant) MarshalJSON() ([]byte, error) {
	if len(v.raw) > 0 {
		return v.raw, nil
	}
	type variantAlias WordVariant
	return json.Marshal(variantAlias(v))
}

// WordVariants maps surface spellings to their annotations, preserving
// the key order of the source record so output is deterministic.
type WordVariants struct {
	surfaces []string
	entries  map[string]WordVariant
}

// NewWordVariants returns an empty ordered variant map.
func NewWordVariants() *WordVariants {
	return &WordVariants{entries: make(map[string]WordVariant)}
}

// Set adds or replaces the variant for a surface spelling. New surfaces
// append to the iteration order.
func (w *WordVariants) Set(surface string, v WordVariant) {
	if w.entries == nil {
		w.entries = make(map[string]WordVariant)
	}
	if _, ok := w.entries[surface]; !ok {
		w.surfaces = append(w.surfaces, surface)
	}
	w.entries[surface] = v
}

// Get returns the variant for a surface spelling.
func (w *WordVariants) Get(surface string) (WordVariant, bool) {
	v, ok := w.entries[surface]
	return v, ok
}

// Len returns the number of annotated surface spellings.
func (w *WordVariants) Len() int {
	return len(w.surfaces)
}

// Surfaces returns the surface spellings in record order.
func (w *WordVariants) Surfaces() []string {
	out := make([]string, len(w.surfaces))
	copy(out, w.surfaces)
	return out
}

// PhoneticSurfaces returns the surfaces whose standard form differs from
// the surface itself, i.e. the genuinely nonstandard spellings.
func (w *WordVariants) PhoneticSurfaces() []string {
	var out []string
	for _, surface := range w.surfaces {
		if w.entries[surface].Standard != surface {
			out = append(out, surface)
		}
	}
	return out
}

// UnmarshalJSON decodes the words object token by token so the key order
// of the record survives into Surfaces().
func (w *WordVariants) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("words must be an object, got %v", tok)
	}

	w.surfaces = nil
	w.entries = make(map[string]WordVariant)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		surface, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("words key must be a string, got %v", keyTok)
		}

		var v WordVariant
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("word %q: %w", surface, err)
		}
		w.Set(surface, v)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// MarshalJSON writes the words object in recorded surface order.
func (w WordVariants) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, surface := range w.surfaces {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(surface)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(w.entries[surface])
		if err != nil {
			return nil, fmt.Errorf("word %q: %w", surface, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
