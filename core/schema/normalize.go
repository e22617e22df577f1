package schema

import (
	"fmt"

	cerrors "github.com/FocuswithJustin/biocorpus/core/errors"
	"github.com/FocuswithJustin/biocorpus/core/kb"
)

// Accepts reports whether examples of ex's variant can be projected to id.
func Accepts(id ID, ex Example) bool {
	switch ex.(type) {
	case *kb.Document:
		return id == KB
	case *QAItem:
		return id == QA
	case *PairItem:
		return id == Pairs
	case *TextItem:
		return id == Text
	case *Text2TextItem:
		return id == Text2Text
	case *EntailmentItem:
		return id == Entailment || id == Pairs
	}
	return false
}

// Normalize projects one example into exactly one schema.
func Normalize(ex Example, id ID) (Record, error) {
	if !id.Valid() {
		return nil, &cerrors.SchemaMismatchError{Schema: string(id)}
	}
	if !Accepts(id, ex) {
		return nil, &cerrors.SchemaMismatchError{
			Schema: string(id),
			Format: fmt.Sprintf("%T", ex),
		}
	}

	switch v := ex.(type) {
	case *kb.Document:
		d := v.Finalize()
		return &KBRecord{
			ID:           d.ID,
			DocumentID:   d.DocumentID,
			Passages:     d.Passages,
			Entities:     d.Entities,
			Events:       d.Events,
			Coreferences: d.Coreferences,
			Relations:    d.Relations,
			Joiner:       joinerField(d.Joiner),
		}, nil

	case *QAItem:
		if len(v.Answer) == 0 {
			return nil, cerrors.NewMalformed(v.DocumentID, v.QuestionID, "question has no answer")
		}
		return &QARecord{
			ID:         v.ID,
			QuestionID: v.QuestionID,
			DocumentID: v.DocumentID,
			Question:   v.Question,
			Type:       v.Type,
			Choices:    nonNil(v.Choices),
			Context:    v.Context,
			Answer:     append([]string(nil), v.Answer...),
		}, nil

	case *PairItem:
		return &PairsRecord{
			ID:         v.ID,
			DocumentID: v.DocumentID,
			Text1:      v.Text1,
			Text2:      v.Text2,
			Label:      v.Label,
		}, nil

	case *TextItem:
		return &TextRecord{
			ID:         v.ID,
			DocumentID: v.DocumentID,
			Text:       v.Text,
			Labels:     nonNil(v.Labels),
		}, nil

	case *Text2TextItem:
		return &Text2TextRecord{
			ID:         v.ID,
			DocumentID: v.DocumentID,
			Text1:      v.Text1,
			Text2:      v.Text2,
			Text1Name:  v.Text1Name,
			Text2Name:  v.Text2Name,
		}, nil

	case *EntailmentItem:
		if id == Pairs {
			return &PairsRecord{
				ID:         v.ID,
				DocumentID: v.ID,
				Text1:      v.Premise,
				Text2:      v.Hypothesis,
				Label:      v.Label,
			}, nil
		}
		return &EntailmentRecord{
			ID:         v.ID,
			Premise:    v.Premise,
			Hypothesis: v.Hypothesis,
			Label:      v.Label,
		}, nil
	}
	return nil, &cerrors.SchemaMismatchError{Schema: string(id), Format: fmt.Sprintf("%T", ex)}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return append([]string(nil), s...)
}

func joinerField(j string) string {
	if j == kb.DefaultJoiner {
		return ""
	}
	return j
}
