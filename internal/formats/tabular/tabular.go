// Package tabular maps rows of TSV, CSV and XLSX tables onto examples of
// any schema. One row is one example.
package tabular

import (
	"fmt"
	"strconv"
	"strings"

	cerrors "github.com/FocuswithJustin/biocorpus/core/errors"
	"github.com/FocuswithJustin/biocorpus/core/kb"
	"github.com/FocuswithJustin/biocorpus/core/schema"
	"github.com/FocuswithJustin/biocorpus/core/span"
)

// Field names addressable through Options.Columns.
const (
	FieldID         = "id"
	FieldDocumentID = "document_id"
	FieldText       = "text"
	FieldLabels     = "labels"
	FieldText1      = "text_1"
	FieldText2      = "text_2"
	FieldLabel      = "label"
	FieldQuestion   = "question"
	FieldContext    = "context"
	FieldAnswer     = "answer"
	FieldChoices    = "choices"
	FieldType       = "type"
	FieldPremise    = "premise"
	FieldHypothesis = "hypothesis"
)

// Options controls the row mapping.
type Options struct {
	// Columns maps a field name to a column, given either as a header name
	// or as a zero-based index. Unmapped fields use the column whose header
	// equals the field name, if any.
	Columns map[string]string

	// LabelSeparator splits the labels cell of text rows. Empty keeps the
	// cell as a single label.
	LabelSeparator string
	// ChoiceSeparator splits the choices cell of qa rows. Defaults to "|".
	ChoiceSeparator string

	// EntityType, PassageType and DBName shape kb rows: the text becomes a
	// passage and one entity spanning it, and the id cell becomes a link
	// into DBName.
	EntityType  string
	PassageType string
	DBName      string

	Text1Name string
	Text2Name string

	Policy span.Policy
}

// required lists the fields each schema cannot do without.
var required = map[schema.ID][]string{
	schema.KB:         {FieldText},
	schema.Text:       {FieldText},
	schema.Pairs:      {FieldText1, FieldText2},
	schema.QA:         {FieldQuestion, FieldAnswer},
	schema.Entailment: {FieldPremise, FieldHypothesis},
	schema.Text2Text:  {FieldText1, FieldText2},
}

var optional = map[schema.ID][]string{
	schema.KB:         {FieldID, FieldDocumentID},
	schema.Text:       {FieldID, FieldDocumentID, FieldLabels},
	schema.Pairs:      {FieldID, FieldDocumentID, FieldLabel},
	schema.QA:         {FieldID, FieldDocumentID, FieldContext, FieldChoices, FieldType},
	schema.Entailment: {FieldID, FieldLabel},
	schema.Text2Text:  {FieldID, FieldDocumentID},
}

// row gives field access to one table row.
type row struct {
	cells []string
	cols  map[string]int
}

func (r row) get(field string) string {
	i, ok := r.cols[field]
	if !ok || i >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[i])
}

// Parse converts every row of t to an example for schema id. Rows without an
// id column get an empty id; the caller assigns one.
func Parse(t *Table, id schema.ID, opts Options) ([]schema.Example, error) {
	if _, ok := required[id]; !ok {
		return nil, &cerrors.SchemaMismatchError{Schema: string(id)}
	}
	if opts.ChoiceSeparator == "" {
		opts.ChoiceSeparator = "|"
	}
	if opts.PassageType == "" {
		opts.PassageType = "document"
	}
	if opts.Policy.Format == "" {
		opts.Policy.Format = "tabular"
	}

	cols, err := resolveColumns(t.Header, id, opts.Columns)
	if err != nil {
		return nil, err
	}

	out := make([]schema.Example, 0, len(t.Rows))
	for n, cells := range t.Rows {
		r := row{cells: cells, cols: cols}
		ex, reason := mapRow(r, id, opts)
		if reason != "" {
			rowID := r.get(FieldID)
			if rowID == "" {
				rowID = "row " + strconv.Itoa(n+1)
			}
			if err := opts.Policy.Skip(r.get(FieldDocumentID), rowID, reason); err != nil {
				return nil, err
			}
			continue
		}
		out = append(out, ex)
	}
	return out, nil
}

func resolveColumns(header []string, id schema.ID, mapping map[string]string) (map[string]int, error) {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		byName[h] = i
	}
	cols := make(map[string]int)

	lookup := func(field string) (int, bool, error) {
		ref, explicit := mapping[field]
		if !explicit {
			ref = field
		}
		if i, ok := byName[ref]; ok {
			return i, true, nil
		}
		if i, err := strconv.Atoi(ref); err == nil && i >= 0 {
			if len(header) > 0 && i >= len(header) {
				return 0, false, cerrors.NewValidation("columns."+field, fmt.Sprintf("index %d beyond %d columns", i, len(header)))
			}
			return i, true, nil
		}
		if explicit {
			return 0, false, cerrors.NewValidation("columns."+field, fmt.Sprintf("no column %q", ref))
		}
		return 0, false, nil
	}

	for _, f := range required[id] {
		i, ok, err := lookup(f)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, cerrors.NewValidation("columns."+f, fmt.Sprintf("schema %s needs a %s column", id, f))
		}
		cols[f] = i
	}
	for _, f := range optional[id] {
		i, ok, err := lookup(f)
		if err != nil {
			return nil, err
		}
		if ok {
			cols[f] = i
		}
	}
	return cols, nil
}

func mapRow(r row, id schema.ID, opts Options) (schema.Example, string) {
	for _, f := range required[id] {
		if r.get(f) == "" {
			return nil, "empty " + f
		}
	}

	switch id {
	case schema.KB:
		return kbRow(r, opts)
	case schema.Text:
		return &schema.TextItem{
			ID:         r.get(FieldID),
			DocumentID: r.get(FieldDocumentID),
			Text:       r.get(FieldText),
			Labels:     split(r.get(FieldLabels), opts.LabelSeparator),
		}, ""
	case schema.Pairs:
		return &schema.PairItem{
			ID:         r.get(FieldID),
			DocumentID: r.get(FieldDocumentID),
			Text1:      r.get(FieldText1),
			Text2:      r.get(FieldText2),
			Label:      r.get(FieldLabel),
		}, ""
	case schema.QA:
		choices := split(r.get(FieldChoices), opts.ChoiceSeparator)
		typ := r.get(FieldType)
		if typ == "" {
			typ = schema.InferQAType(choices)
		}
		return &schema.QAItem{
			ID:         r.get(FieldID),
			QuestionID: r.get(FieldID),
			DocumentID: r.get(FieldDocumentID),
			Question:   r.get(FieldQuestion),
			Type:       typ,
			Choices:    choices,
			Context:    r.get(FieldContext),
			Answer:     schema.Answers(r.get(FieldAnswer)),
		}, ""
	case schema.Entailment:
		return &schema.EntailmentItem{
			ID:         r.get(FieldID),
			Premise:    r.get(FieldPremise),
			Hypothesis: r.get(FieldHypothesis),
			Label:      r.get(FieldLabel),
		}, ""
	case schema.Text2Text:
		return &schema.Text2TextItem{
			ID:         r.get(FieldID),
			DocumentID: r.get(FieldDocumentID),
			Text1:      r.get(FieldText1),
			Text2:      r.get(FieldText2),
			Text1Name:  opts.Text1Name,
			Text2Name:  opts.Text2Name,
		}, ""
	}
	return nil, "unsupported schema " + string(id)
}

// kbRow builds a one-passage document whose single entity spans the text.
func kbRow(r row, opts Options) (schema.Example, string) {
	text := r.get(FieldText)
	whole := kb.Offset{0, kb.RuneLen(text)}
	ids := span.NewIDs()
	docID := r.get(FieldDocumentID)

	doc := &kb.Document{ID: docID, DocumentID: docID}
	doc.Passages = []kb.Passage{{
		ID:      ids.Next(),
		Type:    opts.PassageType,
		Text:    []string{text},
		Offsets: []kb.Offset{whole},
	}}
	e := kb.Entity{
		ID:      ids.Next(),
		Type:    opts.EntityType,
		Text:    []string{text},
		Offsets: []kb.Offset{whole},
	}
	if ref := r.get(FieldID); ref != "" {
		link := kb.Normalization{DBName: opts.DBName, DBID: ref}
		if opts.DBName == "" {
			link = kb.ParseNormalization(ref, "")
		}
		if link.DBName == "" {
			return nil, fmt.Sprintf("identifier %q has no database", ref)
		}
		e.Normalized = []kb.Normalization{link}
	}
	doc.Entities = []kb.Entity{e}
	return doc.Finalize(), ""
}

func split(cell, sep string) []string {
	if cell == "" {
		return []string{}
	}
	if sep == "" {
		return []string{cell}
	}
	var out []string
	for _, part := range strings.Split(cell, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if out == nil {
		return []string{}
	}
	return out
}
