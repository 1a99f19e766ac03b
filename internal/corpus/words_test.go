package corpus

import (
	"encoding/json"
	"testing"
)

func TestWordVariantsPreservesOrder(t *testing.T) {
	data := `{"zeb":{"Std":"zeb","Prov":"CM","OCR":0,"i":[0]},"apple":{"Std":"apple","Prov":"CM","OCR":0,"i":[1]},"mah":{"Std":"my","Prov":"CM","OCR":0,"i":[2]}}`

	var w WordVariants
	if err := json.Unmarshal([]byte(data), &w); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	expected := []string{"zeb", "apple", "mah"}
	surfaces := w.Surfaces()
	if len(surfaces) != len(expected) {
		t.Fatalf("Expected %d surfaces, got %d", len(expected), len(surfaces))
	}
	for i, surface := range expected {
		if surfaces[i] != surface {
			t.Errorf("Expected surface %s at %d, got %s", surface, i, surfaces[i])
		}
	}
}

func TestWordVariantsRoundTrip(t *testing.T) {
	// Extra keys beyond the modeled fields must survive re-serialization.
	data := `{"heben":{"Std":"heaven","Prov":"CM","OCR":0,"i":[1],"multiword":false,"dtag":"aa"},"test":{"Std":"test","Prov":"CM","OCR":0,"i":[2]}}`

	var w WordVariants
	if err := json.Unmarshal([]byte(data), &w); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	out, err := json.Marshal(w)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(out) != data {
		t.Errorf("Expected round-trip:\n%s\nGot:\n%s", data, out)
	}
}

func TestWordVariantMissingRequiredField(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "missing Std", data: `{"Prov":"CM","OCR":0,"i":[1]}`},
		{name: "missing Prov", data: `{"Std":"x","OCR":0,"i":[1]}`},
		{name: "missing OCR", data: `{"Std":"x","Prov":"CM","i":[1]}`},
		{name: "missing i", data: `{"Std":"x","Prov":"CM","OCR":0}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v WordVariant
			if err := json.Unmarshal([]byte(tt.data), &v); err == nil {
				t.Error("Expected error for missing field, got nil")
			}
		})
	}
}

func TestPhoneticSurfaces(t *testing.T) {
	w := NewWordVariants()
	w.Set("heben", WordVariant{Standard: "heaven"})
	w.Set("test", WordVariant{Standard: "test"})
	w.Set("gwine", WordVariant{Standard: "going"})

	phonetic := w.PhoneticSurfaces()
	if len(phonetic) != 2 {
		t.Fatalf("Expected 2 phonetic surfaces, got %d", len(phonetic))
	}
	if phonetic[0] != "heben" || phonetic[1] != "gwine" {
		t.Errorf("Expected [heben gwine], got %v", phonetic)
	}
}

func TestWordVariantsEmptyObject(t *testing.T) {
	var w WordVariants
	if err := json.Unmarshal([]byte(`{}`), &w); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if w.Len() != 0 {
		t.Errorf("Expected empty map, got %d entries", w.Len())
	}

	out, err := json.Marshal(w)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(out) != "{}" {
		t.Errorf("Expected {}, got %s", out)
	}
}

func TestWordVariantsRejectsNonObject(t *testing.T) {
	var w WordVariants
	if err := json.Unmarshal([]byte(`["not","an","object"]`), &w); err == nil {
		t.Error("Expected error for array words, got nil")
	}
}

func TestLiteraryItemMissingField(t *testing.T) {
	data := `{"sample_id":1,"g_id":"x","author":"a","title":"t","sample":"s"}`

	var item LiteraryItem
	if err := json.Unmarshal([]byte(data), &item); err == nil {
		t.Error("Expected error for missing words field, got nil")
	}
}

func TestDialogueItemBlankUtterance(t *testing.T) {
	var item DialogueItem
	if err := json.Unmarshal([]byte(`{"utterance":"  "}`), &item); err == nil {
		t.Error("Expected error for blank utterance, got nil")
	}
	if err := json.Unmarshal([]byte(`{"speaker":"x"}`), &item); err == nil {
		t.Error("Expected error for missing utterance, got nil")
	}
}
