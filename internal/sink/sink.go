// Package sink writes normalized records and reads them back.
//
// Two encodings are supported, chosen by file extension: JSON lines (one
// record per line, ".jsonl") and SQLite (".sqlite", ".db"), where records live
// in a single table:
//
//	records(seq INTEGER PRIMARY KEY, schema TEXT, id TEXT, document_id TEXT, body TEXT)
//
// body holds the same JSON a JSONL line would. Records keep emission order
// in both encodings.
package sink

import (
	"path/filepath"
	"strings"

	cerrors "github.com/FocuswithJustin/biocorpus/core/errors"
	"github.com/FocuswithJustin/biocorpus/core/schema"
)

// Writer receives records in emission order.
type Writer interface {
	Write(rec schema.Record) error
	Close() error
}

// Kind is an output encoding.
type Kind string

const (
	KindJSONL  Kind = "jsonl"
	KindSQLite Kind = "sqlite"
)

// KindOf picks the encoding for path.
func KindOf(path string) (Kind, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		return KindJSONL, nil
	case ".sqlite", ".sqlite3", ".db":
		return KindSQLite, nil
	}
	return "", cerrors.NewUnsupported("output", "unknown extension on "+path+" (use .jsonl or .sqlite)")
}

// Create opens a writer for path, replacing any existing file.
func Create(path string) (Writer, error) {
	kind, err := KindOf(path)
	if err != nil {
		return nil, err
	}
	if kind == KindSQLite {
		return CreateSQLite(path)
	}
	return CreateJSONL(path)
}

// Read calls fn for every record of schema id stored at path, in emission
// order. JSONL files carry no schema column, so every line is decoded as id.
func Read(path string, id schema.ID, fn func(schema.Record) error) error {
	kind, err := KindOf(path)
	if err != nil {
		return err
	}
	if kind == KindSQLite {
		return ReadSQLite(path, id, fn)
	}
	return ReadJSONLFile(path, id, fn)
}

// documentID extracts the source document id a record refers to.
func documentID(rec schema.Record) string {
	switch r := rec.(type) {
	case *schema.KBRecord:
		return r.DocumentID
	case *schema.QARecord:
		return r.DocumentID
	case *schema.PairsRecord:
		return r.DocumentID
	case *schema.TextRecord:
		return r.DocumentID
	case *schema.Text2TextRecord:
		return r.DocumentID
	}
	return ""
}
