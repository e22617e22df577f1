// Package bioc converts BioC collections, in XML or JSON form, into
// knowledge-base documents.
//
// Each BioC passage becomes one passage of the canonical text. BioC offsets
// are document-global, so annotation locations are rebased: subtract the
// passage offset, then add the passage's start in the canonical text.
package bioc

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	cerrors "github.com/FocuswithJustin/biocorpus/core/errors"
	"github.com/FocuswithJustin/biocorpus/core/kb"
	"github.com/FocuswithJustin/biocorpus/core/span"
)

// DefaultIdentifierInfons lists the infon keys searched for ontology links.
var DefaultIdentifierInfons = []string{"identifier", "Identifier", "MESH", "NCBI Gene"}

// Options controls the conversion.
type Options struct {
	// Joiner separates passages in the canonical text. Defaults to " ".
	Joiner string

	// DefaultDB names the database for identifiers without a "DB:" prefix
	// found under a generic key such as "identifier".
	DefaultDB string

	// IdentifierInfons overrides DefaultIdentifierInfons.
	IdentifierInfons []string

	Policy span.Policy
}

// ParseXML converts a BioC XML collection.
func ParseXML(data []byte, opts Options) ([]*kb.Document, error) {
	c, err := readXML(data)
	if err != nil {
		return nil, cerrors.NewParse("BioC XML", "", err.Error())
	}
	return convert(c, opts)
}

// ParseJSON converts a BioC JSON collection.
func ParseJSON(data []byte, opts Options) ([]*kb.Document, error) {
	var c collection
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, cerrors.NewParse("BioC JSON", "", err.Error())
	}
	return convert(&c, opts)
}

func convert(c *collection, opts Options) ([]*kb.Document, error) {
	if opts.Joiner == "" {
		opts.Joiner = kb.DefaultJoiner
	}
	if len(opts.IdentifierInfons) == 0 {
		opts.IdentifierInfons = DefaultIdentifierInfons
	}
	if opts.Policy.Format == "" {
		opts.Policy.Format = "bioc"
	}

	docs := make([]*kb.Document, 0, len(c.Documents))
	for i := range c.Documents {
		if reason := c.Documents[i].bad; reason != "" {
			if err := opts.Policy.Skip(c.Documents[i].ID, "", reason); err != nil {
				return nil, err
			}
			continue
		}
		d, err := convertDocument(&c.Documents[i], opts)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, nil
}

func convertDocument(src *document, opts Options) (*kb.Document, error) {
	p := opts.Policy
	ids := span.NewIDs()
	tb := span.NewTextBuilder(kb.ResolveJoiner(opts.Joiner))
	doc := &kb.Document{ID: src.ID, DocumentID: src.ID, Joiner: opts.Joiner}
	seen := make(map[string]bool)

	for _, sp := range src.Passages {
		canonical := tb.Append(sp.Text)
		doc.Passages = append(doc.Passages, kb.Passage{
			ID:      ids.Next(),
			Type:    sp.Infons.first("type", "section_type"),
			Text:    []string{sp.Text},
			Offsets: []kb.Offset{canonical},
		})

		text := kb.NewRunes(sp.Text)
		for _, a := range sp.Annotations {
			if a.ID != "" && seen[a.ID] {
				if err := p.Skip(src.ID, a.ID, "duplicate annotation id"); err != nil {
					return nil, err
				}
				continue
			}
			e, reason := entityFor(a, sp.Offset, canonical.Start(), text)
			if reason != "" {
				if err := p.Skip(src.ID, a.ID, reason); err != nil {
					return nil, err
				}
				continue
			}
			links, err := normalizations(src.ID, a, opts)
			if err != nil {
				return nil, err
			}
			if a.ID != "" {
				seen[a.ID] = true
				e.ID = ids.Assign(a.ID)
			} else {
				e.ID = ids.Next()
			}
			e.Normalized = links
			doc.Entities = append(doc.Entities, e)
		}
	}

	// Relations may point at annotations of any passage, so they are
	// resolved after every entity has an id.
	var rels []relation
	for _, sp := range src.Passages {
		rels = append(rels, sp.Relations...)
	}
	rels = append(rels, src.Relations...)
	for _, r := range rels {
		rel, reason := relationFor(r, ids)
		if reason != "" {
			if err := p.Skip(src.ID, r.ID, reason); err != nil {
				return nil, err
			}
			continue
		}
		rel.ID = ids.Next()
		doc.Relations = append(doc.Relations, rel)
	}

	return doc.Finalize(), nil
}

// entityFor rebases an annotation's locations into the canonical text. A
// non-empty reason marks the annotation as malformed. Mention text that
// differs from the passage text is kept for the offset validator to report.
func entityFor(a annotation, passageOffset, canonicalStart int, text kb.Runes) (kb.Entity, string) {
	if a.bad != "" {
		return kb.Entity{}, a.bad
	}
	if len(a.Locations) == 0 {
		return kb.Entity{}, "annotation has no location"
	}
	locs := append([]location(nil), a.Locations...)
	sort.SliceStable(locs, func(i, j int) bool { return locs[i].Offset < locs[j].Offset })

	local := make([]kb.Offset, len(locs))
	for i, l := range locs {
		o := kb.Offset{l.Offset - passageOffset, l.Offset - passageOffset + l.Length}
		if !o.Valid() || o.End() > text.Len() {
			return kb.Entity{}, fmt.Sprintf("location %d+%d outside passage at %d", l.Offset, l.Length, passageOffset)
		}
		local[i] = o
	}

	pieces, err := span.SplitMention(a.Text, local)
	if err != nil {
		return kb.Entity{}, err.Error()
	}
	offsets := make([]kb.Offset, len(local))
	for i, o := range local {
		offsets[i] = span.Rebase(o, 0, canonicalStart)
	}
	return kb.Entity{
		Type:    a.Infons.get("type"),
		Text:    pieces,
		Offsets: offsets,
	}, ""
}

// normalizations collects links from identifier infons. Values may hold
// several identifiers separated by ',', '|' or ';'.
func normalizations(docID string, a annotation, opts Options) ([]kb.Normalization, error) {
	var out []kb.Normalization
	for _, key := range opts.IdentifierInfons {
		raw := a.Infons.get(key)
		if raw == "" {
			continue
		}
		fallback := opts.DefaultDB
		if !strings.EqualFold(key, "identifier") {
			fallback = key
		}
		for _, v := range strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == '|' || r == ';' }) {
			v = strings.TrimSpace(v)
			if v == "" || v == "-" {
				continue
			}
			link := kb.ParseNormalization(v, fallback)
			if link.DBName == "" {
				if err := opts.Policy.Skipf(docID, a.ID, "identifier %q has no database", v); err != nil {
					return nil, err
				}
				continue
			}
			out = append(out, link)
		}
	}
	return out, nil
}

func relationFor(r relation, ids *span.IDs) (kb.Relation, string) {
	if len(r.Nodes) != 2 {
		return kb.Relation{}, fmt.Sprintf("relation has %d nodes, want 2", len(r.Nodes))
	}
	arg1, ok := ids.Lookup(r.Nodes[0].RefID)
	if !ok {
		return kb.Relation{}, fmt.Sprintf("node %s not found", r.Nodes[0].RefID)
	}
	arg2, ok := ids.Lookup(r.Nodes[1].RefID)
	if !ok {
		return kb.Relation{}, fmt.Sprintf("node %s not found", r.Nodes[1].RefID)
	}
	return kb.Relation{
		Type:   r.Infons.first("type", "relation type", "relation"),
		Arg1ID: arg1,
		Arg2ID: arg2,
	}, ""
}
