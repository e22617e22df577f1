// Package brat converts BRAT standoff annotation (a .txt file plus its .ann
// file) into knowledge-base documents.
//
// The .txt file becomes a single passage, so BRAT offsets are already
// canonical and need no rebasing.
package brat

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/FocuswithJustin/biocorpus/core/kb"
	"github.com/FocuswithJustin/biocorpus/core/span"
)

// DefaultPassageType is the passage type used when Options.PassageType is empty.
const DefaultPassageType = "document"

// Options controls the conversion.
type Options struct {
	// PassageType names the single passage. Defaults to "document".
	PassageType string

	// TriggersAsEntities keeps event triggers in the entity list. By default
	// a text-bound annotation used as a trigger only appears on its event.
	TriggersAsEntities bool

	// DefaultDB is used for normalization references without a "DB:" prefix.
	DefaultDB string

	Policy span.Policy
}

type textBound struct {
	id      string
	typ     string
	offsets []kb.Offset
	mention string
}

type event struct {
	id      string
	typ     string
	trigger string
	args    []*roleArg
}

type relation struct {
	id   string
	typ  string
	args []*roleArg
}

type equivalence struct {
	id  string
	ids []string
}

type normalization struct {
	id     string
	target string
	ref    string
}

type annotations struct {
	textBounds []textBound
	events     []event
	relations  []relation
	equivs     []equivalence
	norms      []normalization
}

// Parse converts one BRAT document. docID identifies the document, usually
// the file stem shared by the .txt and .ann files.
func Parse(docID string, txt, ann []byte, opts Options) (*kb.Document, error) {
	if opts.PassageType == "" {
		opts.PassageType = DefaultPassageType
	}
	p := opts.Policy
	if p.Format == "" {
		p.Format = "brat"
	}

	anns, err := readAnnotations(docID, ann, p)
	if err != nil {
		return nil, err
	}

	text := string(txt)
	runes := kb.NewRunes(text)
	ids := span.NewIDs()

	doc := &kb.Document{ID: docID, DocumentID: docID}
	doc.Passages = append(doc.Passages, kb.Passage{
		ID:      ids.Next(),
		Type:    opts.PassageType,
		Text:    []string{text},
		Offsets: []kb.Offset{{0, runes.Len()}},
	})

	triggers := make(map[string]bool)
	for _, ev := range anns.events {
		triggers[ev.trigger] = true
	}

	// Text-bound annotations, checked against the text. Triggers are resolved
	// separately so that events can find them even when they are not entities.
	spans := make(map[string]textBound)
	for _, tb := range anns.textBounds {
		if _, dup := spans[tb.id]; dup {
			if err := p.Skip(docID, tb.id, "duplicate annotation id"); err != nil {
				return nil, err
			}
			continue
		}
		pieces, reason := resolvePieces(runes, tb)
		if reason != "" {
			if err := p.Skip(docID, tb.id, reason); err != nil {
				return nil, err
			}
			continue
		}
		spans[tb.id] = tb
		if triggers[tb.id] && !opts.TriggersAsEntities {
			continue
		}
		doc.Entities = append(doc.Entities, kb.Entity{
			ID:      ids.Assign(tb.id),
			Type:    tb.typ,
			Text:    pieces,
			Offsets: tb.offsets,
		})
	}

	events, err := resolveEvents(docID, anns.events, spans, runes, ids, p)
	if err != nil {
		return nil, err
	}
	doc.Events = events

	for _, r := range anns.relations {
		rel, reason := resolveRelation(r, ids)
		if reason != "" {
			if err := p.Skip(docID, r.id, reason); err != nil {
				return nil, err
			}
			continue
		}
		doc.Relations = append(doc.Relations, rel)
	}

	for _, eq := range anns.equivs {
		var members []string
		var missing string
		for _, ref := range eq.ids {
			local, ok := ids.Lookup(ref)
			if !ok || !isTextBound(ref) {
				missing = ref
				break
			}
			members = append(members, local)
		}
		if missing != "" {
			if err := p.Skipf(docID, eq.id, "equivalence references unknown entity %s", missing); err != nil {
				return nil, err
			}
			continue
		}
		doc.Coreferences = append(doc.Coreferences, kb.Coreference{ID: ids.Next(), EntityIDs: members})
	}

	if err := attachNormalizations(doc, anns.norms, ids, opts.DefaultDB, p); err != nil {
		return nil, err
	}

	return doc.Finalize(), nil
}

func readAnnotations(docID string, ann []byte, p span.Policy) (*annotations, error) {
	anns := &annotations{}
	sc := bufio.NewScanner(bytes.NewReader(ann))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	equivN := 0
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.SplitN(line, "\t", 3)
		id := fields[0]
		if id == "" || len(fields) < 2 {
			if err := p.Skip(docID, id, "annotation line has no tab-separated body"); err != nil {
				return nil, err
			}
			continue
		}
		body := fields[1]

		var reason string
		switch id[0] {
		case 'T':
			if len(fields) < 3 {
				reason = "text-bound annotation has no mention text"
				break
			}
			h, err := parseSpanHeader(body)
			if err != nil {
				reason = err.Error()
				break
			}
			tb := textBound{id: id, typ: h.Type, mention: fields[2]}
			for _, f := range h.Fragments {
				tb.offsets = append(tb.offsets, kb.Offset{f.Start, f.End})
			}
			anns.textBounds = append(anns.textBounds, tb)
		case 'E':
			h, err := parseEventHeader(body)
			if err != nil {
				reason = err.Error()
				break
			}
			anns.events = append(anns.events, event{id: id, typ: h.Type, trigger: h.Trigger, args: h.Args})
		case 'R':
			h, err := parseRelationHeader(body)
			if err != nil {
				reason = err.Error()
				break
			}
			anns.relations = append(anns.relations, relation{id: id, typ: h.Type, args: h.Args})
		case '*':
			parts := strings.Fields(body)
			if len(parts) < 3 {
				reason = "equivalence needs at least two members"
				break
			}
			equivN++
			anns.equivs = append(anns.equivs, equivalence{id: fmt.Sprintf("*%d", equivN), ids: parts[1:]})
		case 'N':
			parts := strings.Fields(body)
			if len(parts) != 3 {
				reason = fmt.Sprintf("bad normalization %q", body)
				break
			}
			anns.norms = append(anns.norms, normalization{id: id, target: parts[1], ref: parts[2]})
		case 'A', 'M', '#':
			// attributes, modifications and notes carry no spans
		default:
			reason = fmt.Sprintf("unknown annotation kind %q", id)
		}
		if reason != "" {
			if err := p.Skip(docID, id, reason); err != nil {
				return nil, err
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading annotations of %s: %w", docID, err)
	}
	return anns, nil
}

// resolvePieces checks that a text-bound annotation fits the document text
// and returns one text piece per fragment. A non-empty reason means the
// annotation is malformed. A mention that differs from the text under its
// offsets is kept as stored; the offset validator reports it.
func resolvePieces(runes kb.Runes, tb textBound) ([]string, string) {
	if len(tb.offsets) == 0 {
		return nil, "no offsets"
	}
	for _, o := range tb.offsets {
		if !o.Valid() || o.End() > runes.Len() {
			return nil, fmt.Sprintf("offset %v outside text of length %d", o, runes.Len())
		}
	}
	pieces, err := span.SplitMention(tb.mention, tb.offsets)
	if err != nil {
		return nil, err.Error()
	}
	return pieces, ""
}

// resolveEvents assigns ids to events with a valid trigger, then drops events
// whose arguments do not resolve until the set is stable, since an event may
// take another event as argument.
func resolveEvents(docID string, evs []event, spans map[string]textBound, runes kb.Runes, ids *span.IDs, p span.Policy) ([]kb.Event, error) {
	var live []event
	for _, ev := range evs {
		if _, ok := spans[ev.trigger]; !ok {
			if err := p.Skipf(docID, ev.id, "trigger %s not found", ev.trigger); err != nil {
				return nil, err
			}
			continue
		}
		live = append(live, ev)
	}
	// Bind all event ids before resolving arguments so that forward
	// references between events work.
	local := make(map[string]string, len(live))
	for _, ev := range live {
		local[ev.id] = ids.Assign(ev.id)
	}

	for changed := true; changed; {
		changed = false
		kept := live[:0]
		for _, ev := range live {
			if ref := unresolvedArg(ev, ids); ref != "" {
				if err := p.Skipf(docID, ev.id, "argument %s not found", ref); err != nil {
					return nil, err
				}
				ids.Forget(ev.id)
				changed = true
				continue
			}
			kept = append(kept, ev)
		}
		live = kept
	}

	out := make([]kb.Event, 0, len(live))
	for _, ev := range live {
		tb := spans[ev.trigger]
		texts := make([]string, len(tb.offsets))
		for i, o := range tb.offsets {
			texts[i], _ = runes.Slice(o)
		}
		e := kb.Event{
			ID:      local[ev.id],
			Type:    ev.typ,
			Trigger: kb.Trigger{Text: texts, Offsets: tb.offsets},
		}
		for _, a := range ev.args {
			ref, _ := ids.Lookup(a.Ref)
			e.Arguments = append(e.Arguments, kb.EventArgument{Role: bareRole(a.Role), RefID: ref})
		}
		out = append(out, e)
	}
	return out, nil
}

func unresolvedArg(ev event, ids *span.IDs) string {
	for _, a := range ev.args {
		if _, ok := ids.Lookup(a.Ref); !ok {
			return a.Ref
		}
	}
	return ""
}

func resolveRelation(r relation, ids *span.IDs) (kb.Relation, string) {
	if len(r.args) < 2 {
		return kb.Relation{}, "relation needs two arguments"
	}
	arg1, ok1 := ids.Lookup(r.args[0].Ref)
	arg2, ok2 := ids.Lookup(r.args[1].Ref)
	switch {
	case !ok1 || !isTextBound(r.args[0].Ref):
		return kb.Relation{}, fmt.Sprintf("argument %s not found", r.args[0].Ref)
	case !ok2 || !isTextBound(r.args[1].Ref):
		return kb.Relation{}, fmt.Sprintf("argument %s not found", r.args[1].Ref)
	}
	return kb.Relation{
		ID:     ids.Assign(r.id),
		Type:   r.typ,
		Arg1ID: arg1,
		Arg2ID: arg2,
	}, ""
}

func attachNormalizations(doc *kb.Document, norms []normalization, ids *span.IDs, defaultDB string, p span.Policy) error {
	entities := make(map[string]*kb.Entity, len(doc.Entities))
	for i := range doc.Entities {
		entities[doc.Entities[i].ID] = &doc.Entities[i]
	}
	relations := make(map[string]*kb.Relation, len(doc.Relations))
	for i := range doc.Relations {
		relations[doc.Relations[i].ID] = &doc.Relations[i]
	}

	for _, n := range norms {
		link := kb.ParseNormalization(n.ref, defaultDB)
		if link.DBName == "" || link.DBID == "" {
			if err := p.Skipf(doc.DocumentID, n.id, "incomplete reference %q", n.ref); err != nil {
				return err
			}
			continue
		}
		local, ok := ids.Lookup(n.target)
		switch {
		case ok && entities[local] != nil:
			e := entities[local]
			e.Normalized = append(e.Normalized, link)
		case ok && relations[local] != nil:
			r := relations[local]
			r.Normalized = append(r.Normalized, link)
		default:
			if err := p.Skipf(doc.DocumentID, n.id, "normalization target %s not found", n.target); err != nil {
				return err
			}
		}
	}
	return nil
}

// bareRole strips the numeric suffix BRAT uses for repeated roles (Theme2).
func bareRole(role string) string {
	return strings.TrimRightFunc(role, func(r rune) bool { return r >= '0' && r <= '9' })
}

func isTextBound(id string) bool {
	return strings.HasPrefix(id, "T")
}
