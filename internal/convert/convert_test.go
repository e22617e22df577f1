package convert

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	cerrors "github.com/FocuswithJustin/biocorpus/core/errors"
	"github.com/FocuswithJustin/biocorpus/core/kb"
	"github.com/FocuswithJustin/biocorpus/core/schema"
	"github.com/FocuswithJustin/biocorpus/internal/config"
	"github.com/FocuswithJustin/biocorpus/internal/metrics"
	"github.com/FocuswithJustin/biocorpus/internal/sink"
	"github.com/prometheus/client_golang/prometheus"
)

type memSource map[string]string

func (m memSource) List(context.Context) ([]string, error) {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

func (m memSource) Open(_ context.Context, name string) (io.ReadCloser, error) {
	data, ok := m[name]
	if !ok {
		return nil, cerrors.NewNotFound("member", name)
	}
	return io.NopCloser(strings.NewReader(data)), nil
}

type collector struct {
	recs []schema.Record
}

func (c *collector) Write(r schema.Record) error {
	c.recs = append(c.recs, r)
	return nil
}

func (c *collector) Close() error { return nil }

const bratText = "Aspirin relieves headache."

const bratAnn = "T1\tChemical 0 7\tAspirin\n" +
	"T2\tDisease 17 25\theadache\n" +
	"R1\tTreats Arg1:T1 Arg2:T2\n"

func bratCorpus(n int) memSource {
	src := memSource{}
	for i := 0; i < n; i++ {
		stem := "doc" + string(rune('a'+i))
		src["train/"+stem+".txt"] = bratText
		src["train/"+stem+".ann"] = bratAnn
	}
	return src
}

func run(t *testing.T, cfg Config, src memSource) (*Result, []schema.Record) {
	t.Helper()
	c, err := New(cfg, WithSource(src))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	out := &collector{}
	res, err := c.Run(context.Background(), out)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return res, out.recs
}

func TestNewRejectsBeforeIO(t *testing.T) {
	tests := []struct {
		name   string
		cfg    Config
		target error
	}{
		{"schema not produced by format", Config{Format: BRAT, Schema: schema.QA, Source: "/does/not/exist"}, cerrors.ErrUnsupported},
		{"unknown schema", Config{Format: Tabular, Schema: "ner", Source: "x"}, cerrors.ErrUnsupported},
		{"unknown format", Config{Format: "conll", Schema: schema.KB, Source: "x"}, cerrors.ErrUnsupported},
		{"negative workers", Config{Format: BRAT, Schema: schema.KB, Source: "x", Workers: -1}, cerrors.ErrInvalidInput},
		{"missing source", Config{Format: BRAT, Schema: schema.KB}, cerrors.ErrInvalidInput},
		{"long delimiter", Config{Format: Tabular, Schema: schema.Text, Source: "x", Delimiter: "||"}, cerrors.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			if !errors.Is(err, tt.target) {
				t.Errorf("New() error = %v, want %v", err, tt.target)
			}
		})
	}

	var mismatch *cerrors.SchemaMismatchError
	_, err := New(Config{Format: BRAT, Schema: schema.QA, Source: "x"})
	if !errors.As(err, &mismatch) || len(mismatch.Supported) != 1 || mismatch.Supported[0] != "kb" {
		t.Errorf("error = %#v, want supported [kb]", err)
	}
}

func TestConfigIsCopied(t *testing.T) {
	cfg := Config{
		Format:  Tabular,
		Schema:  schema.Text,
		Source:  "x",
		Files:   []string{"a.tsv"},
		Tabular: tabularOptions(map[string]string{"text": "0"}),
	}
	c, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Files[0] = "b.tsv"
	cfg.Tabular.Columns["text"] = "9"

	got := c.Config()
	if got.Files[0] != "a.tsv" || got.Tabular.Columns["text"] != "0" {
		t.Errorf("Config() = %v / %v, caller mutation leaked", got.Files, got.Tabular.Columns)
	}
	got.Files[0] = "c.tsv"
	if c.Config().Files[0] != "a.tsv" {
		t.Error("Config() returned shared slice")
	}
}

func TestRunBRATDeterministicAcrossWorkers(t *testing.T) {
	src := bratCorpus(6)
	var baseline string
	var baseRecs []byte
	for _, workers := range []int{1, 3, 8} {
		res, recs := run(t, Config{Format: BRAT, Schema: schema.KB, Source: "mem", Workers: workers}, src)
		if res.Units != 6 || res.Records != 6 || res.Skipped != 0 {
			t.Fatalf("workers=%d: result = %+v", workers, res)
		}
		data, err := json.Marshal(recs)
		if err != nil {
			t.Fatal(err)
		}
		if baseline == "" {
			baseline, baseRecs = res.Fingerprint, data
			continue
		}
		if res.Fingerprint != baseline {
			t.Errorf("workers=%d: fingerprint %s, want %s", workers, res.Fingerprint, baseline)
		}
		if string(data) != string(baseRecs) {
			t.Errorf("workers=%d: records differ", workers)
		}
	}

	_, recs := run(t, Config{Format: BRAT, Schema: schema.KB, Source: "mem", Workers: 2}, src)
	first := recs[0].(*schema.KBRecord)
	if first.ID != "doca" || first.DocumentID != "doca" {
		t.Errorf("first record = %s/%s, want doca", first.ID, first.DocumentID)
	}
	if len(first.Entities) != 2 || len(first.Relations) != 1 {
		t.Fatalf("entities = %d, relations = %d", len(first.Entities), len(first.Relations))
	}
	if r := first.Relations[0]; r.Arg1ID != first.Entities[0].ID || r.Arg2ID != first.Entities[1].ID {
		t.Errorf("relation = %+v, entities %s %s", r, first.Entities[0].ID, first.Entities[1].ID)
	}
}

func TestRunLenientAndStrict(t *testing.T) {
	src := bratCorpus(2)
	src["train/docb.ann"] = bratAnn + "T3\tDisease 0 500\twrong\n"
	src["train/orphan.ann"] = bratAnn

	res, recs := run(t, Config{Format: BRAT, Schema: schema.KB, Source: "mem"}, src)
	if res.Records != 2 {
		t.Errorf("records = %d, want 2", res.Records)
	}
	if res.Skipped != 2 {
		t.Errorf("skipped = %d, want 2 (one annotation, one orphan)", res.Skipped)
	}
	if n := len(recs[1].(*schema.KBRecord).Entities); n != 2 {
		t.Errorf("docb entities = %d, want 2", n)
	}

	delete(src, "train/orphan.ann")
	c, err := New(Config{Format: BRAT, Schema: schema.KB, Source: "mem", Strict: true}, WithSource(src))
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.Run(context.Background(), &collector{})
	var merr *cerrors.MalformedAnnotationError
	if !errors.As(err, &merr) {
		t.Fatalf("strict Run() error = %v, want MalformedAnnotationError", err)
	}
	if merr.DocumentID != "docb" || merr.AnnotationID != "T3" {
		t.Errorf("error names %s/%s, want docb/T3", merr.DocumentID, merr.AnnotationID)
	}
}

func TestRunSkipsUnparseableUnit(t *testing.T) {
	src := memSource{
		"a.xml": `<collection><document><id>1</id><passage><offset>0</offset><text>Hi</text></passage></document></collection>`,
		"b.xml": `<collection><document></passage></collection>`,
	}
	res, recs := run(t, Config{Format: BioCXML, Schema: schema.KB, Source: "mem"}, src)
	if res.Records != 1 || res.Skipped != 1 || len(recs) != 1 {
		t.Errorf("result = %+v", res)
	}

	c, _ := New(Config{Format: BioCXML, Schema: schema.KB, Source: "mem", Strict: true}, WithSource(src))
	if _, err := c.Run(context.Background(), &collector{}); !errors.Is(err, cerrors.ErrInvalidInput) {
		t.Errorf("strict Run() error = %v, want ErrInvalidInput", err)
	}
}

func TestRunAskAPatientPreset(t *testing.T) {
	d, err := config.Lookup("askapatient")
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := FromDataset(d, "", "test", "mem", "")
	if err != nil {
		t.Fatalf("FromDataset() error = %v", err)
	}
	src := memSource{
		"AskAPatient.fold-0.test.txt":  "CUI123\tankle pain\tmy ankle hurts\n",
		"AskAPatient.fold-0.train.txt": "CUI999\tfever\tburning up\n",
	}

	res, recs := run(t, cfg, src)
	if res.Records != 1 {
		t.Fatalf("records = %d, want 1", res.Records)
	}
	rec := recs[0].(*schema.KBRecord)
	if rec.ID == "" || rec.DocumentID != rec.ID {
		t.Errorf("ids = %q/%q, want generated id reused as document id", rec.ID, rec.DocumentID)
	}
	e := rec.Entities[0]
	if e.Type != "social_media_text" {
		t.Errorf("entity type = %q", e.Type)
	}
	if len(e.Offsets) != 1 || e.Offsets[0] != (kb.Offset{0, 14}) || e.Text[0] != "my ankle hurts" {
		t.Errorf("entity = %+v", e)
	}
	if len(e.Normalized) != 1 || e.Normalized[0] != (kb.Normalization{DBName: "SNOMED-CT|AMT", DBID: "CUI123"}) {
		t.Errorf("normalized = %+v", e.Normalized)
	}

	_, again := run(t, cfg, src)
	if again[0].RecordID() != rec.ID {
		t.Errorf("generated id not stable: %s vs %s", again[0].RecordID(), rec.ID)
	}
}

func TestRunJSONLQA(t *testing.T) {
	src := memSource{
		"dev.jsonl": `{"id":"q1","question":"Is aspirin an NSAID?","context":["Aspirin","is an NSAID."],"answer":"yes","choices":["yes","no"]}
{"id":"q2","question":"Empty?","context":"c","answer":[]}
`,
	}
	res, recs := run(t, Config{Format: JSONL, Schema: schema.QA, Source: "mem"}, src)
	if res.Records != 1 || res.Skipped != 1 {
		t.Fatalf("result = %+v", res)
	}
	qa := recs[0].(*schema.QARecord)
	if qa.Context != "Aspirin is an NSAID." || qa.Type != "yesno" || len(qa.Answer) != 1 || qa.Answer[0] != "yes" {
		t.Errorf("qa = %+v", qa)
	}
}

func TestRunNoMatchingFiles(t *testing.T) {
	c, err := New(Config{Format: UIMA, Schema: schema.KB, Source: "mem"}, WithSource(memSource{"notes.md": "x"}))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Run(context.Background(), &collector{}); !errors.Is(err, cerrors.ErrNotFound) {
		t.Errorf("Run() error = %v, want ErrNotFound", err)
	}
}

func TestRunMissingLocalCorpus(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "psytar")
	c, err := New(Config{
		Dataset: "psytar",
		Format:  Tabular,
		Schema:  schema.Text,
		Source:  missing,
		Hint:    "request the workbook",
	})
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.Run(context.Background(), &collector{})
	var mre *cerrors.MissingResourceError
	if !errors.As(err, &mre) || mre.ExpectedDir != missing {
		t.Errorf("Run() error = %v, want MissingResourceError for %s", err, missing)
	}
}

func TestRunRoundTripRevalidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	w, err := sink.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	c, err := New(Config{Format: BRAT, Schema: schema.KB, Source: "mem"}, WithSource(bratCorpus(3)))
	if err != nil {
		t.Fatal(err)
	}
	res, err := c.Run(context.Background(), w)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	v := kb.NewValidator(kb.ValidateOptions{})
	fp := kb.NewFingerprinter()
	err = sink.Read(path, schema.KB, func(r schema.Record) error {
		v.Check(r.(*schema.KBRecord).Document())
		return fp.Add(r)
	})
	if err != nil {
		t.Fatal(err)
	}
	report := v.Report()
	if report.Documents != 3 || len(report.Mismatches) != 0 || len(report.ReferenceErrors) != 0 {
		t.Errorf("report = %+v", report)
	}
	if fp.Sum() != res.Fingerprint {
		t.Errorf("fingerprint after round trip = %s, want %s", fp.Sum(), res.Fingerprint)
	}
}

func TestRunRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(Config{Format: BRAT, Schema: schema.KB, Source: "mem"},
		WithSource(bratCorpus(2)), WithMetrics(metrics.New(reg)))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Run(context.Background(), &collector{}); err != nil {
		t.Fatal(err)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	var records float64
	for _, mf := range families {
		if mf.GetName() == "biocorpus_records_total" {
			for _, m := range mf.GetMetric() {
				records += m.GetCounter().GetValue()
			}
		}
	}
	if records != 2 {
		t.Errorf("biocorpus_records_total = %v, want 2", records)
	}
}

func TestPresetsResolve(t *testing.T) {
	for _, d := range config.Datasets() {
		for _, s := range d.Schemas {
			cfg, err := FromDataset(d, s, "", "", "/data")
			if err != nil {
				t.Errorf("%s/%s: FromDataset() error = %v", d.Name, s, err)
				continue
			}
			if _, err := New(cfg); err != nil {
				t.Errorf("%s/%s: New() error = %v", d.Name, s, err)
			}
		}
	}

	d, _ := config.Lookup("bc5cdr")
	if _, err := FromDataset(d, "qa", "", "", "/data"); !errors.Is(err, cerrors.ErrUnsupported) {
		t.Errorf("FromDataset(qa) error = %v, want ErrUnsupported", err)
	}
}
