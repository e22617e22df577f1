package sink

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	cerrors "github.com/FocuswithJustin/biocorpus/core/errors"
	"github.com/FocuswithJustin/biocorpus/core/kb"
	"github.com/FocuswithJustin/biocorpus/core/schema"
)

func sampleRecords(t *testing.T) []schema.Record {
	t.Helper()
	docs := []*kb.Document{
		{
			ID: "1", DocumentID: "pmid1",
			Passages: []kb.Passage{{ID: "1", Type: "abstract", Text: []string{"Aspirin helps."}, Offsets: []kb.Offset{{0, 14}}}},
			Entities: []kb.Entity{{ID: "2", Type: "Chemical", Text: []string{"Aspirin"}, Offsets: []kb.Offset{{0, 7}}}},
		},
		{
			ID: "2", DocumentID: "pmid2",
			Passages: []kb.Passage{{ID: "1", Type: "title", Text: []string{"Pain fades"}, Offsets: []kb.Offset{{0, 10}}}},
		},
	}
	var recs []schema.Record
	for _, d := range docs {
		rec, err := schema.Normalize(d, schema.KB)
		if err != nil {
			t.Fatal(err)
		}
		recs = append(recs, rec)
	}
	return recs
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		path    string
		want    Kind
		wantErr bool
	}{
		{"out.jsonl", KindJSONL, false},
		{"OUT.NDJSON", KindJSONL, false},
		{"out.sqlite", KindSQLite, false},
		{"out.db", KindSQLite, false},
		{"out.csv", "", true},
	}
	for _, tt := range tests {
		got, err := KindOf(tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("KindOf(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("KindOf(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for _, ext := range []string{".jsonl", ".sqlite"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out"+ext)
			recs := sampleRecords(t)

			w, err := Create(path)
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			for _, r := range recs {
				if err := w.Write(r); err != nil {
					t.Fatalf("Write() error = %v", err)
				}
			}
			if err := w.Close(); err != nil {
				t.Fatalf("Close() error = %v", err)
			}

			var ids []string
			v := kb.NewValidator(kb.ValidateOptions{})
			err = Read(path, schema.KB, func(r schema.Record) error {
				ids = append(ids, r.RecordID())
				v.Check(r.(*schema.KBRecord).Document())
				return nil
			})
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if strings.Join(ids, ",") != "1,2" {
				t.Errorf("ids = %v, want [1 2]", ids)
			}
			if err := v.Report().Err(); err != nil {
				t.Errorf("re-validation: %v", err)
			}
		})
	}
}

func TestCreateReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.sqlite")
	recs := sampleRecords(t)
	for i := 0; i < 2; i++ {
		w, err := CreateSQLite(path)
		if err != nil {
			t.Fatal(err)
		}
		if err := w.Write(recs[0]); err != nil {
			t.Fatal(err)
		}
		if err := w.Close(); err != nil {
			t.Fatal(err)
		}
	}
	n := 0
	if err := ReadSQLite(path, schema.KB, func(schema.Record) error { n++; return nil }); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("records = %d, want 1", n)
	}
}

func TestSQLiteFiltersSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mixed.db")
	w, err := CreateSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	qa, err := schema.Normalize(&schema.QAItem{ID: "q1", QuestionID: "q1", DocumentID: "d1", Question: "?", Answer: []string{"yes"}}, schema.QA)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range append(sampleRecords(t), qa) {
		if err := w.Write(r); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	var got []string
	if err := ReadSQLite(path, schema.QA, func(r schema.Record) error {
		got = append(got, r.RecordID())
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "q1" {
		t.Errorf("qa records = %v, want [q1]", got)
	}
}

func TestReadJSONL(t *testing.T) {
	input := `{"id":"1","document_id":"d","passages":[],"entities":[],"events":[],"coreferences":[],"relations":[]}

{"id":"2","document_id":"d","passages":[],"entities":[],"events":[],"coreferences":[],"relations":[]}`
	n := 0
	if err := ReadJSONL(strings.NewReader(input), schema.KB, func(schema.Record) error { n++; return nil }); err != nil {
		t.Fatalf("ReadJSONL() error = %v", err)
	}
	if n != 2 {
		t.Errorf("records = %d, want 2", n)
	}

	err := ReadJSONL(strings.NewReader(strings.Split(input, "\n")[0]+"\n{broken\n"), schema.KB, func(schema.Record) error { return nil })
	if !errors.Is(err, cerrors.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error = %v, want line 2", err)
	}

	stop := errors.New("stop")
	if err := ReadJSONL(strings.NewReader(input), schema.KB, func(schema.Record) error { return stop }); err != stop {
		t.Errorf("callback error = %v, want %v", err, stop)
	}
}

func TestJSONLWriterToBuffer(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONLWriter(&buf)
	for _, r := range sampleRecords(t) {
		if err := w.Write(r); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if !strings.HasPrefix(lines[0], `{"id":"1","document_id":"pmid1"`) {
		t.Errorf("line 1 = %s", lines[0])
	}
}

func TestReadMissing(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"absent.jsonl", "absent.sqlite"} {
		err := Read(filepath.Join(dir, name), schema.KB, func(schema.Record) error { return nil })
		if !errors.Is(err, cerrors.ErrNotFound) {
			t.Errorf("Read(%s) error = %v, want ErrNotFound", name, err)
		}
	}
}

func TestDriver(t *testing.T) {
	if DriverName() == "" || DriverType() == "" {
		t.Errorf("driver = %q/%q", DriverName(), DriverType())
	}
}
