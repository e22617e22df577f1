// Package schema defines the six output shapes every converted example is
// projected into, and the Normalize operation that performs the projection.
package schema

import (
	"encoding/json"

	cerrors "github.com/FocuswithJustin/biocorpus/core/errors"
)

// ID identifies an output schema.
type ID string

// Schema identifiers.
const (
	KB         ID = "kb"
	QA         ID = "qa"
	Pairs      ID = "pairs"
	Text       ID = "text"
	Text2Text  ID = "text2text"
	Entailment ID = "entailment"
)

var allIDs = []ID{KB, QA, Pairs, Text, Text2Text, Entailment}

// All returns every schema id in a stable order.
func All() []ID {
	out := make([]ID, len(allIDs))
	copy(out, allIDs)
	return out
}

func (id ID) String() string { return string(id) }

// Valid reports whether id names a known schema.
func (id ID) Valid() bool {
	for _, known := range allIDs {
		if id == known {
			return true
		}
	}
	return false
}

// ParseID validates a schema name. Unknown names yield a
// *errors.SchemaMismatchError so the mistake surfaces at configuration time.
func ParseID(s string) (ID, error) {
	id := ID(s)
	if !id.Valid() {
		return "", &cerrors.SchemaMismatchError{Schema: s}
	}
	return id, nil
}

// Strings converts ids to plain strings, for messages and flags.
func Strings(ids []ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

// identifying lists the fields that set each record shape apart. A record
// missing one of them was written for another schema.
var identifying = map[ID][]string{
	KB:         {"passages", "entities"},
	QA:         {"question", "answer"},
	Pairs:      {"text_1", "text_2", "label"},
	Text:       {"text", "labels"},
	Text2Text:  {"text_1", "text_2", "text_1_name"},
	Entailment: {"premise", "hypothesis"},
}

// Decode unmarshals a serialized record of the given schema. It fails when
// the record lacks a field every record of that schema carries.
func Decode(id ID, data []byte) (Record, error) {
	var rec Record
	switch id {
	case KB:
		rec = &KBRecord{}
	case QA:
		rec = &QARecord{}
	case Pairs:
		rec = &PairsRecord{}
	case Text:
		rec = &TextRecord{}
	case Text2Text:
		rec = &Text2TextRecord{}
	case Entailment:
		rec = &EntailmentRecord{}
	default:
		return nil, &cerrors.SchemaMismatchError{Schema: string(id)}
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, cerrors.Wrapf(err, "decoding %s record", id)
	}
	for _, f := range identifying[id] {
		if _, ok := fields[f]; !ok {
			return nil, cerrors.NewValidation(f, "missing from "+string(id)+" record")
		}
	}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, cerrors.Wrapf(err, "decoding %s record", id)
	}
	return rec, nil
}
