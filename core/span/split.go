package span

import (
	"fmt"
	"unicode"

	"github.com/FocuswithJustin/biocorpus/core/kb"
)

// SplitMention cuts the stored mention text of a discontiguous annotation into
// one piece per offset pair. Each piece takes exactly as many code points as
// its offset covers; the whitespace run separating it from the next piece is
// consumed without being assigned to either.
//
//	SplitMention("is dummy", []kb.Offset{{5, 7}, {10, 15}}) // ["is", "dummy"]
func SplitMention(mention string, offsets []kb.Offset) ([]string, error) {
	if len(offsets) == 0 {
		return nil, fmt.Errorf("no offsets for mention %q", mention)
	}
	if len(offsets) == 1 {
		return []string{mention}, nil
	}

	runes := []rune(mention)
	pieces := make([]string, 0, len(offsets))
	i := 0
	for k, o := range offsets {
		if !o.Valid() {
			return nil, fmt.Errorf("invalid offset %v", o)
		}
		if i+o.Len() > len(runes) {
			return nil, fmt.Errorf("mention %q too short for offsets %v", mention, offsets)
		}
		pieces = append(pieces, string(runes[i:i+o.Len()]))
		i += o.Len()
		if k < len(offsets)-1 {
			for i < len(runes) && unicode.IsSpace(runes[i]) {
				i++
			}
		}
	}
	for ; i < len(runes); i++ {
		if !unicode.IsSpace(runes[i]) {
			return nil, fmt.Errorf("mention %q longer than offsets %v", mention, offsets)
		}
	}
	return pieces, nil
}

// SliceAll cuts every offset out of text. It is used when the source carries
// offsets but no reliable mention text.
func SliceAll(text kb.Runes, offsets []kb.Offset) ([]string, error) {
	pieces := make([]string, 0, len(offsets))
	for _, o := range offsets {
		s, ok := text.Slice(o)
		if !ok {
			return nil, fmt.Errorf("offset %v outside text of length %d", o, text.Len())
		}
		pieces = append(pieces, s)
	}
	return pieces, nil
}
