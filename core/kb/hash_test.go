package kb

import (
	"errors"
	"testing"
)

func TestHashBytes(t *testing.T) {
	data := []byte("Aspirin relieves pain.")
	hash := HashBytes(data)
	if len(hash) != 64 {
		t.Errorf("hash length = %d, want 64", len(hash))
	}
	if hash != HashBytes(data) {
		t.Error("same data produced different hashes")
	}
	if hash == HashBytes([]byte("different")) {
		t.Error("different data produced same hash")
	}
	if len(Blake3Bytes(data)) != 64 {
		t.Errorf("blake3 length = %d, want 64", len(Blake3Bytes(data)))
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	a, err := Fingerprint(twoPassageDoc())
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	b, err := Fingerprint(twoPassageDoc())
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	if a != b {
		t.Errorf("fingerprints differ: %+v vs %+v", a, b)
	}

	changed := twoPassageDoc()
	changed.Entities[0].Offsets[0] = Offset{0, 6}
	c, err := Fingerprint(changed)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	if c.SHA256 == a.SHA256 || c.BLAKE3 == a.BLAKE3 {
		t.Error("changing an offset should change the fingerprint")
	}
}

func TestFingerprintMarshalError(t *testing.T) {
	orig := jsonMarshal
	defer func() { jsonMarshal = orig }()
	jsonMarshal = func(any) ([]byte, error) { return nil, errors.New("boom") }

	if _, err := Fingerprint(twoPassageDoc()); err == nil {
		t.Error("expected marshal error")
	}
	if err := NewFingerprinter().Add(twoPassageDoc()); err == nil {
		t.Error("expected marshal error from Fingerprinter.Add")
	}
}

func TestFingerprinterOrderSensitive(t *testing.T) {
	a := NewFingerprinter()
	b := NewFingerprinter()
	first, second := twoPassageDoc(), twoPassageDoc()
	second.ID = "2"

	for _, d := range []*Document{first, second} {
		if err := a.Add(d); err != nil {
			t.Fatal(err)
		}
	}
	for _, d := range []*Document{second, first} {
		if err := b.Add(d); err != nil {
			t.Fatal(err)
		}
	}
	if a.Count() != 2 {
		t.Errorf("Count() = %d, want 2", a.Count())
	}
	if a.Sum() == b.Sum() {
		t.Error("record order should affect the running fingerprint")
	}
}
