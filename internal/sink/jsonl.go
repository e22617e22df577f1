package sink

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	cerrors "github.com/FocuswithJustin/biocorpus/core/errors"
	"github.com/FocuswithJustin/biocorpus/core/schema"
)

// JSONLWriter writes one JSON record per line.
type JSONLWriter struct {
	bw *bufio.Writer
	c  io.Closer
}

// NewJSONLWriter writes to w. Close flushes but does not close w.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	return &JSONLWriter{bw: bufio.NewWriter(w)}
}

// CreateJSONL creates (or truncates) path.
func CreateJSONL(path string) (*JSONLWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, cerrors.NewIO("create", path, err)
	}
	return &JSONLWriter{bw: bufio.NewWriter(f), c: f}, nil
}

func (w *JSONLWriter) Write(rec schema.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", rec.RecordID(), err)
	}
	if _, err := w.bw.Write(data); err != nil {
		return err
	}
	return w.bw.WriteByte('\n')
}

func (w *JSONLWriter) Close() error {
	err := w.bw.Flush()
	if w.c != nil {
		if cerr := w.c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// ReadJSONLFile reads path with ReadJSONL.
func ReadJSONLFile(path string, id schema.ID, fn func(schema.Record) error) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cerrors.NewNotFound("output file", path)
		}
		return cerrors.NewIO("open", path, err)
	}
	defer f.Close()
	return ReadJSONL(f, id, fn)
}

// ReadJSONL decodes each non-blank line of r as a record of schema id.
func ReadJSONL(r io.Reader, id schema.ID, fn func(schema.Record) error) error {
	br := bufio.NewReader(r)
	for lineNo := 1; ; lineNo++ {
		line, err := br.ReadBytes('\n')
		if len(bytes.TrimSpace(line)) > 0 {
			rec, derr := schema.Decode(id, line)
			if derr != nil {
				return cerrors.NewParse("JSONL", fmt.Sprintf("line %d", lineNo), derr.Error())
			}
			if ferr := fn(rec); ferr != nil {
				return ferr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
