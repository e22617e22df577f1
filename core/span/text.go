package span

import (
	"strings"

	"github.com/FocuswithJustin/biocorpus/core/kb"
)

// TextBuilder concatenates textual units with a fixed joiner and reports the
// code point range each unit occupies in the result.
type TextBuilder struct {
	joiner    string
	joinerLen int
	b         strings.Builder
	n         int
	units     int
}

// NewTextBuilder returns a builder using joiner between units. An empty joiner
// concatenates units directly.
func NewTextBuilder(joiner string) *TextBuilder {
	return &TextBuilder{joiner: joiner, joinerLen: kb.RuneLen(joiner)}
}

// Append adds a unit and returns its range in the canonical text.
func (t *TextBuilder) Append(unit string) kb.Offset {
	if t.units > 0 {
		t.b.WriteString(t.joiner)
		t.n += t.joinerLen
	}
	start := t.n
	t.b.WriteString(unit)
	t.n += kb.RuneLen(unit)
	t.units++
	return kb.Offset{start, t.n}
}

// Next returns the start offset the next appended unit will receive.
func (t *TextBuilder) Next() int {
	if t.units == 0 {
		return 0
	}
	return t.n + t.joinerLen
}

// Len returns the canonical text length in code points.
func (t *TextBuilder) Len() int { return t.n }

// Units returns the number of appended units.
func (t *TextBuilder) Units() int { return t.units }

// Joiner returns the separator placed between units.
func (t *TextBuilder) Joiner() string { return t.joiner }

// String returns the canonical text built so far.
func (t *TextBuilder) String() string { return t.b.String() }

// Rebase maps an offset expressed relative to a source unit that started at
// sourceStart onto the canonical unit that starts at canonicalStart.
func Rebase(o kb.Offset, sourceStart, canonicalStart int) kb.Offset {
	return o.Shift(canonicalStart - sourceStart)
}
