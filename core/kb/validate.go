package kb

import (
	"fmt"
)

// DefaultTolerance is the number of offset mismatches a corpus may carry
// before validation fails. Some corpora ship entity text with inconsistent
// trailing punctuation, so a handful of mismatches is a known property of the
// data rather than a conversion bug.
const DefaultTolerance = 10

// MismatchKind names the record family a mismatch was found in.
type MismatchKind string

// Mismatch kinds.
const (
	KindPassage MismatchKind = "passage"
	KindEntity  MismatchKind = "entity"
	KindTrigger MismatchKind = "event_trigger"
)

// Mismatch is one offset whose slice of the canonical text differs from the
// stored text, or one offset that cannot be sliced at all.
type Mismatch struct {
	ExampleID    string       `json:"example_id"`
	AnnotationID string       `json:"annotation_id"`
	Kind         MismatchKind `json:"kind"`
	Offset       Offset       `json:"offset"`
	Expected     string       `json:"expected"`
	Actual       string       `json:"actual"`
	Message      string       `json:"message,omitempty"`
}

func (m Mismatch) String() string {
	if m.Message != "" {
		return fmt.Sprintf("%s: %s %s %v: %s", m.ExampleID, m.Kind, m.AnnotationID, m.Offset, m.Message)
	}
	return fmt.Sprintf("%s: %s %s %v: expected %q, got %q",
		m.ExampleID, m.Kind, m.AnnotationID, m.Offset, m.Expected, m.Actual)
}

// ReferenceKind names the record family holding an unresolved reference.
type ReferenceKind string

// Reference kinds.
const (
	RefRelation      ReferenceKind = "relation"
	RefCoreference   ReferenceKind = "coreference"
	RefEventArgument ReferenceKind = "event_argument"
	RefNormalization ReferenceKind = "normalization"
	RefDuplicateID   ReferenceKind = "duplicate_id"
)

// ReferenceError is a cross reference that does not resolve inside its
// document, or a structurally broken link.
type ReferenceError struct {
	ExampleID string        `json:"example_id"`
	Kind      ReferenceKind `json:"kind"`
	ID        string        `json:"id"`
	Ref       string        `json:"ref,omitempty"`
	Message   string        `json:"message"`
}

func (e *ReferenceError) Error() string {
	if e.Ref != "" {
		return fmt.Sprintf("%s: %s %s: %s %q", e.ExampleID, e.Kind, e.ID, e.Message, e.Ref)
	}
	return fmt.Sprintf("%s: %s %s: %s", e.ExampleID, e.Kind, e.ID, e.Message)
}

// ValidateOptions configures a Validator.
type ValidateOptions struct {
	// Joiner overrides the passage joiner used to rebuild canonical text.
	// Empty uses each document's own joiner; NoJoiner means no separator.
	Joiner string

	// Tolerance is the number of offset mismatches accepted before the
	// report fails. Zero makes every mismatch fatal.
	Tolerance int
}

// DefaultValidateOptions returns the options used by the test suites.
func DefaultValidateOptions() ValidateOptions {
	return ValidateOptions{Joiner: DefaultJoiner, Tolerance: DefaultTolerance}
}

// Report aggregates validation findings over any number of documents.
type Report struct {
	Documents       int              `json:"documents"`
	Tolerance       int              `json:"tolerance"`
	Mismatches      []Mismatch       `json:"mismatches"`
	ReferenceErrors []ReferenceError `json:"reference_errors"`
}

// OK reports whether the findings are within tolerance.
func (r *Report) OK() bool {
	return len(r.ReferenceErrors) == 0 && len(r.Mismatches) <= r.Tolerance
}

// Err returns a *FailureError when the report is not OK.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}
	return &FailureError{
		Mismatches:      len(r.Mismatches),
		ReferenceErrors: len(r.ReferenceErrors),
		Tolerance:       r.Tolerance,
	}
}

// FailureError summarizes a failed validation run.
type FailureError struct {
	Mismatches      int
	ReferenceErrors int
	Tolerance       int
}

func (e *FailureError) Error() string {
	return fmt.Sprintf("offset validation failed: %d mismatches (tolerance %d), %d unresolved references",
		e.Mismatches, e.Tolerance, e.ReferenceErrors)
}

// Validator checks documents against the offset and reference contracts. It
// never modifies a document. A Validator is not safe for concurrent use.
type Validator struct {
	opts   ValidateOptions
	report Report
}

// NewValidator creates a validator with the given options.
func NewValidator(opts ValidateOptions) *Validator {
	return &Validator{
		opts: opts,
		report: Report{
			Tolerance:       opts.Tolerance,
			Mismatches:      []Mismatch{},
			ReferenceErrors: []ReferenceError{},
		},
	}
}

// Report returns the findings accumulated so far.
func (v *Validator) Report() *Report {
	return &v.report
}

// Check validates one document and adds its findings to the report. It returns
// the number of findings contributed by this document.
func (v *Validator) Check(d *Document) int {
	before := len(v.report.Mismatches) + len(v.report.ReferenceErrors)
	v.report.Documents++

	joiner := d.JoinerOrDefault()
	if v.opts.Joiner != "" {
		joiner = ResolveJoiner(v.opts.Joiner)
	}
	text := NewRunes(JoinPassages(d.Passages, joiner))

	var passageSpans []Offset
	for _, p := range d.Passages {
		v.checkSpans(d.ID, p.ID, KindPassage, text, p.Text, p.Offsets)
		passageSpans = append(passageSpans, p.Offsets...)
	}

	entityIDs := make(map[string]bool, len(d.Entities))
	for _, e := range d.Entities {
		if entityIDs[e.ID] {
			v.addRef(d.ID, RefDuplicateID, e.ID, "", "entity id used more than once")
		}
		entityIDs[e.ID] = true

		v.checkSpans(d.ID, e.ID, KindEntity, text, e.Text, e.Offsets)
		for _, o := range e.Offsets {
			if o.Valid() && !insideAny(passageSpans, o) {
				v.report.Mismatches = append(v.report.Mismatches, Mismatch{
					ExampleID:    d.ID,
					AnnotationID: e.ID,
					Kind:         KindEntity,
					Offset:       o,
					Message:      "offset lies outside every passage",
				})
			}
		}
		v.checkNormalized(d.ID, e.ID, e.Normalized)
	}

	eventIDs := make(map[string]bool, len(d.Events))
	for _, ev := range d.Events {
		eventIDs[ev.ID] = true
	}
	for _, ev := range d.Events {
		v.checkSpans(d.ID, ev.ID, KindTrigger, text, ev.Trigger.Text, ev.Trigger.Offsets)
		for _, arg := range ev.Arguments {
			if !entityIDs[arg.RefID] && !eventIDs[arg.RefID] {
				v.addRef(d.ID, RefEventArgument, ev.ID, arg.RefID,
					fmt.Sprintf("argument %s references unknown id", arg.Role))
			}
		}
	}

	for _, r := range d.Relations {
		if !entityIDs[r.Arg1ID] {
			v.addRef(d.ID, RefRelation, r.ID, r.Arg1ID, "arg1 references unknown entity")
		}
		if !entityIDs[r.Arg2ID] {
			v.addRef(d.ID, RefRelation, r.ID, r.Arg2ID, "arg2 references unknown entity")
		}
		v.checkNormalized(d.ID, r.ID, r.Normalized)
	}

	for _, c := range d.Coreferences {
		for _, id := range c.EntityIDs {
			if !entityIDs[id] {
				v.addRef(d.ID, RefCoreference, c.ID, id, "references unknown entity")
			}
		}
	}

	return len(v.report.Mismatches) + len(v.report.ReferenceErrors) - before
}

func (v *Validator) checkSpans(exampleID, annID string, kind MismatchKind, text Runes, texts []string, offsets []Offset) {
	if len(texts) != len(offsets) {
		v.report.Mismatches = append(v.report.Mismatches, Mismatch{
			ExampleID:    exampleID,
			AnnotationID: annID,
			Kind:         kind,
			Message:      fmt.Sprintf("%d text pieces for %d offsets", len(texts), len(offsets)),
		})
	}
	n := min(len(texts), len(offsets))
	for i := 0; i < n; i++ {
		o := offsets[i]
		actual, ok := text.Slice(o)
		if !ok {
			v.report.Mismatches = append(v.report.Mismatches, Mismatch{
				ExampleID:    exampleID,
				AnnotationID: annID,
				Kind:         kind,
				Offset:       o,
				Expected:     texts[i],
				Message:      fmt.Sprintf("offset outside text of length %d", text.Len()),
			})
			continue
		}
		if actual != texts[i] {
			v.report.Mismatches = append(v.report.Mismatches, Mismatch{
				ExampleID:    exampleID,
				AnnotationID: annID,
				Kind:         kind,
				Offset:       o,
				Expected:     texts[i],
				Actual:       actual,
			})
		}
	}
}

func (v *Validator) checkNormalized(exampleID, id string, links []Normalization) {
	for _, n := range links {
		if n.DBName == "" || n.DBID == "" {
			v.addRef(exampleID, RefNormalization, id, n.DBName+":"+n.DBID, "incomplete ontology link")
		}
	}
}

func (v *Validator) addRef(exampleID string, kind ReferenceKind, id, ref, msg string) {
	v.report.ReferenceErrors = append(v.report.ReferenceErrors, ReferenceError{
		ExampleID: exampleID,
		Kind:      kind,
		ID:        id,
		Ref:       ref,
		Message:   msg,
	})
}

func insideAny(spans []Offset, o Offset) bool {
	for _, s := range spans {
		if s.Contains(o) {
			return true
		}
	}
	return false
}

// ValidateDocument checks a single document with the given options.
func ValidateDocument(d *Document, opts ValidateOptions) *Report {
	v := NewValidator(opts)
	v.Check(d)
	return v.Report()
}
