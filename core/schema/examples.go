package schema

import "strings"

// Example is one converted unit awaiting projection. The concrete variants
// are *kb.Document and the item types below.
type Example interface {
	ExampleID() string
}

// QAItem is a question with its context and one or more answers.
type QAItem struct {
	ID         string
	QuestionID string
	DocumentID string
	Question   string
	Type       string
	Choices    []string
	Context    string
	Answer     []string
}

// ExampleID implements Example.
func (q *QAItem) ExampleID() string { return q.ID }

// PairItem is a labelled pair of texts.
type PairItem struct {
	ID         string
	DocumentID string
	Text1      string
	Text2      string
	Label      string
}

// ExampleID implements Example.
func (p *PairItem) ExampleID() string { return p.ID }

// TextItem is a text with zero or more class labels.
type TextItem struct {
	ID         string
	DocumentID string
	Text       string
	Labels     []string
}

// ExampleID implements Example.
func (t *TextItem) ExampleID() string { return t.ID }

// Text2TextItem is a source text paired with a target text.
type Text2TextItem struct {
	ID         string
	DocumentID string
	Text1      string
	Text2      string
	Text1Name  string
	Text2Name  string
}

// ExampleID implements Example.
func (t *Text2TextItem) ExampleID() string { return t.ID }

// EntailmentItem is a premise/hypothesis pair with an inference label.
type EntailmentItem struct {
	ID         string
	Premise    string
	Hypothesis string
	Label      string
}

// ExampleID implements Example.
func (e *EntailmentItem) ExampleID() string { return e.ID }

// Answers returns a non-empty answer list for a single answer string. It is
// the one place a scalar answer becomes a sequence.
func Answers(single string) []string {
	return []string{single}
}

// InferQAType picks a question type from the answer choices: "yesno" when
// every choice is yes, no or maybe, "factoid" otherwise.
func InferQAType(choices []string) string {
	if len(choices) == 0 {
		return "factoid"
	}
	for _, c := range choices {
		switch strings.ToLower(strings.TrimSpace(c)) {
		case "yes", "no", "maybe":
		default:
			return "factoid"
		}
	}
	return "yesno"
}
