// Package inlinexml converts corpora whose annotations are XML elements
// wrapped around the annotated text, such as
//
//	<sentence>Mutations in <entity type="Gene" id="e1">BRCA1</entity> ...</sentence>
//
// Offsets are recovered by walking the text nodes depth-first and counting
// code points.
package inlinexml

import (
	"fmt"

	cerrors "github.com/FocuswithJustin/biocorpus/core/errors"
	"github.com/FocuswithJustin/biocorpus/core/kb"
	"github.com/FocuswithJustin/biocorpus/core/span"
	"github.com/FocuswithJustin/biocorpus/core/xmltext"
)

// Options names the elements and attributes to read. Zero values take the
// defaults shown in brackets.
type Options struct {
	DocumentPath    string // XPath selecting documents [//document]
	DocumentIDAttr  string // [id]
	PassageElement  string // [sentence]; the document element itself when absent
	EntityElement   string // [entity]
	TypeAttr        string // [type]
	IDAttr          string // [id]
	DBAttr          string // [db]
	DBIDAttr        string // [dbid]
	RelationElement string // [relation]
	Arg1Attr        string // [arg1]
	Arg2Attr        string // [arg2]

	DefaultDB string
	Joiner    string

	Policy span.Policy
}

func (o *Options) defaults() {
	set := func(s *string, v string) {
		if *s == "" {
			*s = v
		}
	}
	set(&o.DocumentPath, "//document")
	set(&o.DocumentIDAttr, "id")
	set(&o.PassageElement, "sentence")
	set(&o.EntityElement, "entity")
	set(&o.TypeAttr, "type")
	set(&o.IDAttr, "id")
	set(&o.DBAttr, "db")
	set(&o.DBIDAttr, "dbid")
	set(&o.RelationElement, "relation")
	set(&o.Arg1Attr, "arg1")
	set(&o.Arg2Attr, "arg2")
	set(&o.Joiner, kb.DefaultJoiner)
	set(&o.Policy.Format, "inlinexml")
}

// Parse converts every document element in data.
func Parse(data []byte, opts Options) ([]*kb.Document, error) {
	opts.defaults()
	x, err := xmltext.Parse(data)
	if err != nil {
		return nil, cerrors.NewParse("inline XML", "", err.Error())
	}
	nodes, err := x.XPath(opts.DocumentPath)
	if err != nil {
		return nil, cerrors.NewValidation("document_path", err.Error())
	}

	docs := make([]*kb.Document, 0, len(nodes))
	for i, n := range nodes {
		docID := n.Attr(opts.DocumentIDAttr)
		if docID == "" {
			docID = fmt.Sprintf("%d", i)
		}
		doc, err := convertDocument(docID, n, opts)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func convertDocument(docID string, n *xmltext.Node, opts Options) (*kb.Document, error) {
	p := opts.Policy
	ids := span.NewIDs()
	tb := span.NewTextBuilder(kb.ResolveJoiner(opts.Joiner))
	doc := &kb.Document{ID: docID, DocumentID: docID, Joiner: opts.Joiner}

	units, err := n.XPath(".//" + opts.PassageElement)
	if err != nil {
		return nil, cerrors.NewValidation("passage_element", err.Error())
	}
	passageType := opts.PassageElement
	if len(units) == 0 {
		units = []*xmltext.Node{n}
		passageType = n.Name()
	}

	isEntity := func(x *xmltext.Node) bool { return x.Name() == opts.EntityElement }
	for _, u := range units {
		text, spans := xmltext.Walk(u, isEntity)
		canonical := tb.Append(text)
		doc.Passages = append(doc.Passages, kb.Passage{
			ID:      ids.Next(),
			Type:    passageType,
			Text:    []string{text},
			Offsets: []kb.Offset{canonical},
		})

		for _, s := range spans {
			srcID := s.Node.Attr(opts.IDAttr)
			mention := s.Text()
			if mention == "" {
				if err := p.Skip(docID, srcID, "empty entity element"); err != nil {
					return nil, err
				}
				continue
			}
			if _, dup := ids.Lookup(srcID); srcID != "" && dup {
				if err := p.Skip(docID, srcID, "duplicate entity id"); err != nil {
					return nil, err
				}
				continue
			}
			e := kb.Entity{
				Type:    s.Node.Attr(opts.TypeAttr),
				Text:    []string{mention},
				Offsets: []kb.Offset{span.Rebase(s.Offset, 0, canonical.Start())},
			}
			if dbid := s.Node.Attr(opts.DBIDAttr); dbid != "" {
				db := s.Node.Attr(opts.DBAttr)
				if db == "" {
					db = opts.DefaultDB
				}
				link := kb.ParseNormalization(dbid, db)
				if link.DBName == "" {
					if err := p.Skipf(docID, srcID, "identifier %q has no database", dbid); err != nil {
						return nil, err
					}
				} else {
					e.Normalized = []kb.Normalization{link}
				}
			}
			if srcID != "" {
				e.ID = ids.Assign(srcID)
			} else {
				e.ID = ids.Next()
			}
			doc.Entities = append(doc.Entities, e)
		}
	}

	rels, err := n.XPath(".//" + opts.RelationElement)
	if err != nil {
		return nil, cerrors.NewValidation("relation_element", err.Error())
	}
	for _, r := range rels {
		a1, a2 := r.Attr(opts.Arg1Attr), r.Attr(opts.Arg2Attr)
		arg1, ok1 := ids.Lookup(a1)
		arg2, ok2 := ids.Lookup(a2)
		if !ok1 || !ok2 {
			if err := p.Skipf(docID, r.Attr(opts.IDAttr), "relation arguments %q, %q not found", a1, a2); err != nil {
				return nil, err
			}
			continue
		}
		doc.Relations = append(doc.Relations, kb.Relation{
			ID:     ids.Next(),
			Type:   r.Attr(opts.TypeAttr),
			Arg1ID: arg1,
			Arg2ID: arg2,
		})
	}

	return doc.Finalize(), nil
}
