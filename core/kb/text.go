package kb

import "unicode/utf8"

// RuneLen returns the length of s in code points.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// Runes is canonical text indexed by code point. Build it once per document
// and slice it many times.
type Runes []rune

// NewRunes converts text to a code point slice.
func NewRunes(text string) Runes {
	return Runes(text)
}

// Len returns the number of code points.
func (r Runes) Len() int { return len(r) }

// Slice returns the text covered by o. ok is false when o is invalid or falls
// outside the text.
func (r Runes) Slice(o Offset) (text string, ok bool) {
	if !o.Valid() || o.End() > len(r) {
		return "", false
	}
	return string(r[o.Start():o.End()]), true
}

// SliceString is a convenience for one-off slicing of a string.
func SliceString(text string, o Offset) (string, bool) {
	return NewRunes(text).Slice(o)
}
