// Package jsonl reads question-answering corpora stored as one JSON object
// per line.
package jsonl

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/FocuswithJustin/biocorpus/core/kb"
	"github.com/FocuswithJustin/biocorpus/core/schema"
	"github.com/FocuswithJustin/biocorpus/core/span"
)

// Options controls the conversion.
type Options struct {
	// Joiner joins list-valued contexts. Defaults to " ".
	Joiner string

	Policy span.Policy
}

type line struct {
	ID         string          `json:"id"`
	QuestionID string          `json:"question_id"`
	DocumentID string          `json:"document_id"`
	Question   string          `json:"question"`
	Context    json.RawMessage `json:"context"`
	Answer     json.RawMessage `json:"answer"`
	Choices    []string        `json:"choices"`
	Type       string          `json:"type"`
}

// Parse converts every non-blank line of data into a QA item.
func Parse(data []byte, opts Options) ([]schema.Example, error) {
	if opts.Joiner == "" {
		opts.Joiner = kb.DefaultJoiner
	}
	p := opts.Policy
	if p.Format == "" {
		p.Format = "jsonl"
	}

	var out []schema.Example
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	n := 0
	for sc.Scan() {
		n++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		item, reason := parseLine(raw, kb.ResolveJoiner(opts.Joiner))
		if reason != "" {
			id := fmt.Sprintf("line %d", n)
			if item != nil && item.ID != "" {
				id = item.ID
			}
			if err := p.Skip("", id, reason); err != nil {
				return nil, err
			}
			continue
		}
		out = append(out, item)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading JSON lines: %w", err)
	}
	return out, nil
}

func parseLine(raw []byte, joiner string) (*schema.QAItem, string) {
	var l line
	if err := json.Unmarshal(raw, &l); err != nil {
		return nil, err.Error()
	}
	item := &schema.QAItem{
		ID:         l.ID,
		QuestionID: l.QuestionID,
		DocumentID: l.DocumentID,
		Question:   l.Question,
		Type:       l.Type,
		Choices:    l.Choices,
	}
	if item.QuestionID == "" {
		item.QuestionID = l.ID
	}
	if item.DocumentID == "" {
		item.DocumentID = l.ID
	}
	if item.Choices == nil {
		item.Choices = []string{}
	}
	if item.Type == "" {
		item.Type = schema.InferQAType(item.Choices)
	}

	context, err := stringOrList(l.Context)
	if err != nil {
		return item, "context: " + err.Error()
	}
	item.Context = strings.Join(context, joiner)

	answers, err := stringOrList(l.Answer)
	if err != nil {
		return item, "answer: " + err.Error()
	}
	if len(answers) == 0 {
		return item, "question has no answer"
	}
	item.Answer = answers
	if item.Question == "" {
		return item, "empty question"
	}
	return item, ""
}

// stringOrList accepts a JSON string, a list of strings, or null. A single
// string becomes a one-element list.
func stringOrList(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return nil, nil
		}
		return schema.Answers(s), nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("want string or list of strings, got %s", raw)
	}
	return list, nil
}
