package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cerrors "github.com/FocuswithJustin/biocorpus/core/errors"
	"github.com/FocuswithJustin/biocorpus/core/kb"
)

func createTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), append([]string{"--log-level", "error"}, args...), &out)
	return out.String(), err
}

func bratCorpus(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	createTestFile(t, dir, "doc1.txt", "Aspirin relieves headache.")
	createTestFile(t, dir, "doc1.ann", "T1\tChemical 0 7\tAspirin\nT2\tDisease 17 25\theadache\nR1\tTreats Arg1:T1 Arg2:T2\n")
	createTestFile(t, dir, "doc2.txt", "Ibuprofen too.")
	createTestFile(t, dir, "doc2.ann", "T1\tChemical 0 9\tIbuprofen\n")
	return dir
}

func TestVersionAndListings(t *testing.T) {
	out, err := runCLI(t, "version")
	if err != nil || !strings.Contains(out, "biocorpus version "+version) {
		t.Errorf("version = %q, %v", out, err)
	}

	out, err = runCLI(t, "formats")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"brat", "bioc-xml", "tabular", "kb,qa,pairs,text,text2text,entailment"} {
		if !strings.Contains(out, want) {
			t.Errorf("formats output missing %q:\n%s", want, out)
		}
	}

	out, err = runCLI(t, "datasets")
	if err != nil || !strings.Contains(out, "askapatient") {
		t.Errorf("datasets = %q, %v", out, err)
	}
	out, err = runCLI(t, "datasets", "--json")
	if err != nil || !strings.Contains(out, `"name": "bc5cdr"`) {
		t.Errorf("datasets --json = %q, %v", out, err)
	}
}

func TestConvertThenValidate(t *testing.T) {
	src := bratCorpus(t)
	for _, ext := range []string{".jsonl", ".sqlite"} {
		t.Run(ext, func(t *testing.T) {
			dir := t.TempDir()
			outPath := filepath.Join(dir, "out"+ext)
			metricsPath := filepath.Join(dir, "convert.prom")

			out, err := runCLI(t, "convert", "--format", "brat", "--source", src, "--out", outPath,
				"--workers", "2", "--metrics-file", metricsPath)
			if err != nil {
				t.Fatalf("convert error = %v", err)
			}
			if !strings.Contains(out, "wrote 2 kb records from 2 units") || !strings.Contains(out, "fingerprint: ") {
				t.Errorf("convert output = %q", out)
			}
			prom, err := os.ReadFile(metricsPath)
			if err != nil || !strings.Contains(string(prom), "biocorpus_records_total") {
				t.Errorf("metrics file = %q, %v", prom, err)
			}

			out, err = runCLI(t, "validate", outPath, "--tolerance", "0")
			if err != nil {
				t.Fatalf("validate error = %v\n%s", err, out)
			}
			if !strings.Contains(out, "2 documents, 0 mismatches") {
				t.Errorf("validate output = %q", out)
			}
		})
	}
}

func TestValidateReportsMismatches(t *testing.T) {
	path := createTestFile(t, t.TempDir(), "bad.jsonl",
		`{"id":"1","document_id":"d","passages":[{"id":"1","type":"t","text":["Aspirin helps"],"offsets":[[0,13]]}],`+
			`"entities":[{"id":"2","type":"Chemical","text":["Aspirin"],"offsets":[[1,8]],"normalized":[]}],`+
			`"events":[],"coreferences":[{"id":"3","entity_ids":["2","99"]}],"relations":[]}`+"\n")

	out, err := runCLI(t, "validate", path)
	var fail *kb.FailureError
	if !errors.As(err, &fail) {
		t.Fatalf("validate error = %v, want FailureError", err)
	}
	if fail.Mismatches != 1 || fail.ReferenceErrors != 1 {
		t.Errorf("failure = %+v", fail)
	}
	if !strings.Contains(out, "mismatch: ") || !strings.Contains(out, `"99"`) {
		t.Errorf("output = %q", out)
	}
}

func TestValidateRejectsOtherRecords(t *testing.T) {
	dir := t.TempDir()
	qa := createTestFile(t, dir, "qa.jsonl",
		`{"id":"1","question_id":"q1","document_id":"d","question":"Why?","type":"factoid","choices":[],"context":"c","answer":["42"]}`+"\n")
	if _, err := runCLI(t, "validate", qa); !errors.Is(err, cerrors.ErrInvalidInput) {
		t.Errorf("validate qa records error = %v, want ErrInvalidInput", err)
	}

	empty := createTestFile(t, dir, "empty.jsonl", "\n")
	if _, err := runCLI(t, "validate", empty); !errors.Is(err, cerrors.ErrNotFound) {
		t.Errorf("validate empty file error = %v, want ErrNotFound", err)
	}
}

func TestValidateEmptyJoiner(t *testing.T) {
	dir := t.TempDir()
	record := `"id":"1","document_id":"d","passages":[` +
		`{"id":"1","type":"t","text":["Ab"],"offsets":[[0,2]]},` +
		`{"id":"2","type":"t","text":["cd"],"offsets":[[2,4]]}],` +
		`"entities":[{"id":"3","type":"X","text":["bc"],"offsets":[[1,3]],"normalized":[]}],` +
		`"events":[],"coreferences":[],"relations":[]`

	plain := createTestFile(t, dir, "plain.jsonl", "{"+record+"}\n")
	if _, err := runCLI(t, "validate", "--tolerance", "0", "--joiner", "none", plain); err != nil {
		t.Errorf("validate --joiner none error = %v", err)
	}
	if _, err := runCLI(t, "validate", "--tolerance", "0", plain); err == nil {
		t.Error("default joiner should misalign the second passage")
	}

	stored := createTestFile(t, dir, "stored.jsonl", `{"joiner":"none",`+record+"}\n")
	if _, err := runCLI(t, "validate", "--tolerance", "0", stored); err != nil {
		t.Errorf("validate with stored empty joiner error = %v", err)
	}
}

func TestConvertRejectsSchemaBeforeReading(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.jsonl")
	_, err := runCLI(t, "convert", "--format", "brat", "--schema", "qa", "--source", "/no/such/dir", "--out", out)
	if !errors.Is(err, cerrors.ErrUnsupported) {
		t.Errorf("error = %v, want ErrUnsupported", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Error("output file created despite configuration error")
	}
}

func TestConvertPresetFromDataDir(t *testing.T) {
	dataDir := t.TempDir()
	createTestFile(t, dataDir, "askapatient/AskAPatient.fold-0.test.txt", "CUI123\tankle pain\tmy ankle hurts\n")
	outPath := filepath.Join(t.TempDir(), "out.jsonl")

	out, err := runCLI(t, "convert", "--dataset", "askapatient", "--split", "test", "--data-dir", dataDir, "--out", outPath)
	if err != nil {
		t.Fatalf("convert error = %v", err)
	}
	if !strings.Contains(out, "wrote 1 kb records") {
		t.Errorf("output = %q", out)
	}
	data, _ := os.ReadFile(outPath)
	if !strings.Contains(string(data), `"db_name":"SNOMED-CT|AMT","db_id":"CUI123"`) {
		t.Errorf("record = %s", data)
	}
}

func TestConvertMissingLocalDataset(t *testing.T) {
	_, err := runCLI(t, "convert", "--dataset", "psytar", "--data-dir", t.TempDir(),
		"--out", filepath.Join(t.TempDir(), "out.jsonl"))
	var mre *cerrors.MissingResourceError
	if !errors.As(err, &mre) || mre.Hint == "" {
		t.Errorf("error = %v, want MissingResourceError with hint", err)
	}
}
