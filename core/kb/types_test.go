package kb

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestOffset(t *testing.T) {
	o := Offset{5, 7}
	if o.Start() != 5 || o.End() != 7 || o.Len() != 2 {
		t.Errorf("Offset accessors = %d,%d,%d", o.Start(), o.End(), o.Len())
	}
	if !o.Valid() {
		t.Error("Offset{5,7} should be valid")
	}
	if (Offset{7, 5}).Valid() || (Offset{-1, 2}).Valid() {
		t.Error("inverted or negative offsets should be invalid")
	}
	if got := o.Shift(10); got != (Offset{15, 17}) {
		t.Errorf("Shift(10) = %v, want [15 17]", got)
	}
	if !(Offset{0, 10}).Contains(o) || o.Contains(Offset{0, 10}) {
		t.Error("Contains returned the wrong answer")
	}
}

func TestParseNormalization(t *testing.T) {
	tests := []struct {
		in, fallback string
		want         Normalization
	}{
		{"MESH:D001241", "", Normalization{DBName: "MESH", DBID: "D001241"}},
		{" 7157 ", "NCBIGene", Normalization{DBName: "NCBIGene", DBID: "7157"}},
		{"UMLS:", "UMLS", Normalization{DBName: "UMLS", DBID: "UMLS:"}},
	}
	for _, tt := range tests {
		if got := ParseNormalization(tt.in, tt.fallback); got != tt.want {
			t.Errorf("ParseNormalization(%q, %q) = %+v, want %+v", tt.in, tt.fallback, got, tt.want)
		}
	}
}

func TestDocumentText(t *testing.T) {
	doc := &Document{
		Passages: []Passage{
			{Text: []string{"Title."}},
			{Text: []string{"First", "second"}},
		},
	}
	if got, want := doc.Text(), "Title. First second"; got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
	doc.Joiner = "\n"
	if got, want := doc.Text(), "Title.\nFirst\nsecond"; got != want {
		t.Errorf("Text() with newline joiner = %q, want %q", got, want)
	}
}

func TestResolveJoiner(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", DefaultJoiner},
		{NoJoiner, ""},
		{"\n\n", "\n\n"},
	}
	for _, tt := range tests {
		if got := ResolveJoiner(tt.in); got != tt.want {
			t.Errorf("ResolveJoiner(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	doc := &Document{
		Joiner:   NoJoiner,
		Passages: []Passage{{Text: []string{"Ab"}}, {Text: []string{"cd"}}},
	}
	if got := doc.Text(); got != "Abcd" {
		t.Errorf("Text() with NoJoiner = %q, want Abcd", got)
	}
}

func TestFinalizeEmitsArrays(t *testing.T) {
	doc := (&Document{
		ID:       "1",
		Entities: []Entity{{ID: "e", Text: []string{"x"}, Offsets: []Offset{{0, 1}}}},
		Events:   []Event{{ID: "ev"}},
	}).Finalize()

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}
	s := string(data)
	for _, want := range []string{
		`"passages":[]`, `"relations":[]`, `"coreferences":[]`,
		`"normalized":[]`, `"arguments":[]`, `"offsets":[[0,1]]`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("JSON %s missing %s", s, want)
		}
	}
	if strings.Contains(s, "null") {
		t.Errorf("JSON should not contain null: %s", s)
	}
	if strings.Contains(s, "joiner") {
		t.Errorf("joiner must not be serialized: %s", s)
	}
}

func TestIDSets(t *testing.T) {
	doc := twoPassageDoc()
	doc.Events = []Event{{ID: "e1"}}
	if ids := doc.EntityIDs(); !ids["2"] || !ids["3"] || ids["5"] {
		t.Errorf("EntityIDs() = %v", ids)
	}
	if ids := doc.EventIDs(); !ids["e1"] || len(ids) != 1 {
		t.Errorf("EventIDs() = %v", ids)
	}
}

func TestRunesSlice(t *testing.T) {
	r := NewRunes("naïve café")
	if r.Len() != 10 {
		t.Errorf("Len() = %d, want 10", r.Len())
	}
	if got, ok := r.Slice(Offset{6, 10}); !ok || got != "café" {
		t.Errorf("Slice(6,10) = %q, %v", got, ok)
	}
	if _, ok := r.Slice(Offset{6, 11}); ok {
		t.Error("Slice past the end should fail")
	}
	if got, ok := SliceString("abc", Offset{1, 1}); !ok || got != "" {
		t.Errorf("empty slice = %q, %v", got, ok)
	}
	if RuneLen("ü") != 1 {
		t.Error("RuneLen should count code points")
	}
}
