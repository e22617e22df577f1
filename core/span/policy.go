package span

import (
	"fmt"

	cerrors "github.com/FocuswithJustin/biocorpus/core/errors"
)

// Mode selects how malformed annotations are handled.
type Mode int

const (
	// Lenient skips malformed units and reports them, so one bad record does
	// not abort a whole corpus.
	Lenient Mode = iota
	// Strict turns the first malformed unit into an error.
	Strict
)

func (m Mode) String() string {
	if m == Strict {
		return "strict"
	}
	return "lenient"
}

// Issue describes one skipped unit.
type Issue struct {
	Format       string
	DocumentID   string
	AnnotationID string
	Reason       string
}

// Policy applies a Mode. OnSkip, when set, receives every issue raised in
// lenient mode.
type Policy struct {
	Mode   Mode
	Format string
	OnSkip func(Issue)
}

// Strict reports whether the policy aborts on malformed units.
func (p Policy) Strict() bool { return p.Mode == Strict }

// Skip records a malformed unit. In strict mode it returns a
// *errors.MalformedAnnotationError the caller must propagate; in lenient mode
// it reports the issue and returns nil, and the caller drops the unit.
func (p Policy) Skip(documentID, annotationID, reason string) error {
	if p.Mode == Strict {
		return cerrors.NewMalformed(documentID, annotationID, reason)
	}
	if p.OnSkip != nil {
		p.OnSkip(Issue{
			Format:       p.Format,
			DocumentID:   documentID,
			AnnotationID: annotationID,
			Reason:       reason,
		})
	}
	return nil
}

// Skipf is Skip with a formatted reason.
func (p Policy) Skipf(documentID, annotationID, format string, args ...any) error {
	return p.Skip(documentID, annotationID, fmt.Sprintf(format, args...))
}

// Collector gathers issues in memory. It is handy in tests and for callers
// that want a post-run summary.
type Collector struct {
	Issues []Issue
}

// Add appends an issue; its signature matches Policy.OnSkip.
func (c *Collector) Add(i Issue) {
	c.Issues = append(c.Issues, i)
}
