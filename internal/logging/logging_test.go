package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

// captureLogOutput points the global logger at a buffer for the duration of f.
func captureLogOutput(level Level, format Format, f func()) string {
	var buf bytes.Buffer
	InitLoggerTo(&buf, level, format)
	f()
	InitLogger(LevelInfo, FormatJSON)
	return buf.String()
}

func decodeLines(t *testing.T, out string) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid JSON log line %q: %v", line, err)
		}
		entries = append(entries, m)
	}
	return entries
}

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name   string
		level  Level
		format Format
	}{
		{"Debug level JSON format", LevelDebug, FormatJSON},
		{"Error level JSON format", LevelError, FormatJSON},
		{"Info level Text format", LevelInfo, FormatText},
		{"Default level (invalid value)", Level(999), FormatJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			InitLogger(tt.level, tt.format)
			if GetLogger() == nil {
				t.Error("Expected logger to be initialized, got nil")
			}
		})
	}
	InitLogger(LevelInfo, FormatJSON)
}

func TestLevelFiltering(t *testing.T) {
	out := captureLogOutput(LevelWarn, FormatJSON, func() {
		Debug("hidden")
		Info("hidden")
		Warn("shown")
		Error("shown")
	})
	entries := decodeLines(t, out)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2: %s", len(entries), out)
	}
	for _, e := range entries {
		if e["msg"] != "shown" {
			t.Errorf("unexpected entry %v", e)
		}
	}
}

func TestTimestampFormat(t *testing.T) {
	out := captureLogOutput(LevelInfo, FormatJSON, func() { Info("tick") })
	entries := decodeLines(t, out)
	ts, _ := entries[0]["time"].(string)
	if _, err := time.Parse(time.RFC3339, ts); err != nil {
		t.Errorf("time %q is not RFC3339: %v", ts, err)
	}
}

func TestTextFormat(t *testing.T) {
	out := captureLogOutput(LevelInfo, FormatText, func() {
		Info("converted", "records", 3)
	})
	if !strings.Contains(out, "converted") || !strings.Contains(out, "records=3") {
		t.Errorf("text output = %q", out)
	}
}

func TestParseLevelAndFormat(t *testing.T) {
	levels := map[string]Level{"debug": LevelDebug, "INFO": LevelInfo, "warning": LevelWarn, "error": LevelError, "": LevelInfo}
	for in, want := range levels {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Error("ParseLevel(loud) should fail")
	}
	if f, err := ParseFormat("text"); err != nil || f != FormatText {
		t.Errorf("ParseFormat(text) = %v, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) should fail")
	}
}

func TestRunID(t *testing.T) {
	tests := []struct {
		name     string
		ctx      context.Context
		expected string
	}{
		{"Context with run ID", WithRunID(context.Background(), "run-1"), "run-1"},
		{"Context without run ID", context.Background(), ""},
		{"Context with wrong type value", context.WithValue(context.Background(), RunIDKey, 12345), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetRunID(tt.ctx); got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}

	out := captureLogOutput(LevelInfo, FormatJSON, func() {
		InfoContext(WithRunID(context.Background(), "run-7"), "hello")
	})
	if !strings.Contains(out, `"run_id":"run-7"`) {
		t.Errorf("output = %s, want run_id", out)
	}
}

func TestDomainHelpers(t *testing.T) {
	ctx := context.Background()
	out := captureLogOutput(LevelDebug, FormatJSON, func() {
		AnnotationSkipped(ctx, "brat", "doc1", "T3", "offset outside text")
		DocumentSkipped(ctx, "bioc", "train.xml", errors.New("bad xml"))
		ConversionSummary(ctx, "brat", "kb", 10, 2, 1500*time.Millisecond)
		ValidationSummary(ctx, 10, 0, 0, 10)
		ValidationSummary(ctx, 10, 3, 0, 10)
		ValidationSummary(ctx, 10, 0, 1, 10)
	})
	entries := decodeLines(t, out)
	if len(entries) != 6 {
		t.Fatalf("got %d entries, want 6", len(entries))
	}

	want := []struct{ msg, level string }{
		{"annotation_skipped", "WARN"},
		{"document_skipped", "WARN"},
		{"conversion_summary", "INFO"},
		{"validation_summary", "INFO"},
		{"validation_summary", "WARN"},
		{"validation_summary", "ERROR"},
	}
	for i, w := range want {
		if entries[i]["msg"] != w.msg || entries[i]["level"] != w.level {
			t.Errorf("entry %d = %v, want %s at %s", i, entries[i], w.msg, w.level)
		}
	}
	if entries[0]["annotation_id"] != "T3" || entries[1]["error"] != "bad xml" {
		t.Errorf("missing fields: %v %v", entries[0], entries[1])
	}
	if entries[2]["duration_ms"] != float64(1500) {
		t.Errorf("duration_ms = %v, want 1500", entries[2]["duration_ms"])
	}
}
