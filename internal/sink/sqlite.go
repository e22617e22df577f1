package sink

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	cerrors "github.com/FocuswithJustin/biocorpus/core/errors"
	"github.com/FocuswithJustin/biocorpus/core/schema"
)

const createTable = `CREATE TABLE records (
	seq         INTEGER PRIMARY KEY,
	schema      TEXT NOT NULL,
	id          TEXT NOT NULL,
	document_id TEXT NOT NULL,
	body        TEXT NOT NULL
)`

// DriverName returns the database/sql driver selected at build time.
func DriverName() string { return driverName }

// DriverType is "purego" for modernc.org/sqlite or "cgo" for mattn/go-sqlite3.
func DriverType() string { return driverType }

// OpenDB opens a SQLite database with the build's driver.
func OpenDB(path string) (*sql.DB, error) {
	return sql.Open(driverName, path)
}

// OpenReadOnly opens an existing database without write access.
func OpenReadOnly(path string) (*sql.DB, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, cerrors.NewNotFound("output file", path)
		}
		return nil, cerrors.NewIO("stat", path, err)
	}
	return OpenDB("file:" + path + "?mode=ro")
}

// SQLiteWriter inserts records inside one transaction committed on Close.
type SQLiteWriter struct {
	db   *sql.DB
	tx   *sql.Tx
	stmt *sql.Stmt
	seq  int64
}

// CreateSQLite replaces path with a fresh database holding an empty records
// table.
func CreateSQLite(path string) (*SQLiteWriter, error) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, cerrors.NewIO("remove", path, err)
	}
	db, err := OpenDB(path)
	if err != nil {
		return nil, cerrors.NewIO("open", path, err)
	}
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create records table: %w", err)
	}
	tx, err := db.Begin()
	if err != nil {
		db.Close()
		return nil, err
	}
	stmt, err := tx.Prepare(`INSERT INTO records (seq, schema, id, document_id, body) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		db.Close()
		return nil, err
	}
	return &SQLiteWriter{db: db, tx: tx, stmt: stmt}, nil
}

func (w *SQLiteWriter) Write(rec schema.Record) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", rec.RecordID(), err)
	}
	w.seq++
	_, err = w.stmt.Exec(w.seq, string(rec.Schema()), rec.RecordID(), documentID(rec), string(body))
	return err
}

func (w *SQLiteWriter) Close() error {
	w.stmt.Close()
	err := w.tx.Commit()
	if cerr := w.db.Close(); err == nil {
		err = cerr
	}
	return err
}

// ReadSQLite calls fn for each stored record of schema id ordered by seq.
func ReadSQLite(path string, id schema.ID, fn func(schema.Record) error) error {
	db, err := OpenReadOnly(path)
	if err != nil {
		return err
	}
	defer db.Close()

	rows, err := db.Query(`SELECT seq, body FROM records WHERE schema = ? ORDER BY seq`, string(id))
	if err != nil {
		return fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var seq int64
		var body string
		if err := rows.Scan(&seq, &body); err != nil {
			return err
		}
		rec, err := schema.Decode(id, []byte(body))
		if err != nil {
			return cerrors.NewParse("SQLite record", fmt.Sprintf("seq %d", seq), err.Error())
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return rows.Err()
}
