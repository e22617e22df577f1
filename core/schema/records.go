package schema

import "github.com/FocuswithJustin/biocorpus/core/kb"

// Record is a normalized example ready for serialization.
type Record interface {
	Schema() ID
	RecordID() string
}

// KBRecord is the knowledge-base shape.
type KBRecord struct {
	ID           string           `json:"id"`
	DocumentID   string           `json:"document_id"`
	Passages     []kb.Passage     `json:"passages"`
	Entities     []kb.Entity      `json:"entities"`
	Events       []kb.Event       `json:"events"`
	Coreferences []kb.Coreference `json:"coreferences"`
	Relations    []kb.Relation    `json:"relations"`

	// Joiner is only written when it differs from kb.DefaultJoiner.
	Joiner string `json:"joiner,omitempty"`
}

func (r *KBRecord) Schema() ID       { return KB }
func (r *KBRecord) RecordID() string { return r.ID }

// Document rebuilds the kb view of a record, e.g. after reading it back from
// disk for validation.
func (r *KBRecord) Document() *kb.Document {
	return (&kb.Document{
		ID:           r.ID,
		DocumentID:   r.DocumentID,
		Passages:     r.Passages,
		Entities:     r.Entities,
		Events:       r.Events,
		Coreferences: r.Coreferences,
		Relations:    r.Relations,
		Joiner:       r.Joiner,
	}).Finalize()
}

// QARecord is the question-answering shape. Answer is never empty.
type QARecord struct {
	ID         string   `json:"id"`
	QuestionID string   `json:"question_id"`
	DocumentID string   `json:"document_id"`
	Question   string   `json:"question"`
	Type       string   `json:"type"`
	Choices    []string `json:"choices"`
	Context    string   `json:"context"`
	Answer     []string `json:"answer"`
}

func (r *QARecord) Schema() ID       { return QA }
func (r *QARecord) RecordID() string { return r.ID }

// PairsRecord is the labelled text-pair shape.
type PairsRecord struct {
	ID         string `json:"id"`
	DocumentID string `json:"document_id"`
	Text1      string `json:"text_1"`
	Text2      string `json:"text_2"`
	Label      string `json:"label"`
}

func (r *PairsRecord) Schema() ID       { return Pairs }
func (r *PairsRecord) RecordID() string { return r.ID }

// TextRecord is the multi-label classification shape.
type TextRecord struct {
	ID         string   `json:"id"`
	DocumentID string   `json:"document_id"`
	Text       string   `json:"text"`
	Labels     []string `json:"labels"`
}

func (r *TextRecord) Schema() ID       { return Text }
func (r *TextRecord) RecordID() string { return r.ID }

// Text2TextRecord is the text-to-text shape.
type Text2TextRecord struct {
	ID         string `json:"id"`
	DocumentID string `json:"document_id"`
	Text1      string `json:"text_1"`
	Text2      string `json:"text_2"`
	Text1Name  string `json:"text_1_name"`
	Text2Name  string `json:"text_2_name"`
}

func (r *Text2TextRecord) Schema() ID       { return Text2Text }
func (r *Text2TextRecord) RecordID() string { return r.ID }

// EntailmentRecord is the textual entailment shape.
type EntailmentRecord struct {
	ID         string `json:"id"`
	Premise    string `json:"premise"`
	Hypothesis string `json:"hypothesis"`
	Label      string `json:"label"`
}

func (r *EntailmentRecord) Schema() ID       { return Entailment }
func (r *EntailmentRecord) RecordID() string { return r.ID }
