package kb

import "strings"

// DefaultJoiner separates passage texts in the canonical text.
const DefaultJoiner = " "

// NoJoiner is the configuration value for concatenating passage texts with
// no separator. An empty joiner setting means DefaultJoiner.
const NoJoiner = "none"

// ResolveJoiner turns a joiner setting into the separator it stands for.
func ResolveJoiner(j string) string {
	switch j {
	case "":
		return DefaultJoiner
	case NoJoiner:
		return ""
	}
	return j
}

// Offset is a [start, end) code point range into the canonical text.
type Offset [2]int

// Start returns the inclusive start of the range.
func (o Offset) Start() int { return o[0] }

// End returns the exclusive end of the range.
func (o Offset) End() int { return o[1] }

// Len returns the number of code points covered.
func (o Offset) Len() int { return o[1] - o[0] }

// Valid reports whether the range is non-negative and not inverted.
func (o Offset) Valid() bool { return o[0] >= 0 && o[1] >= o[0] }

// Contains reports whether other lies entirely inside o.
func (o Offset) Contains(other Offset) bool {
	return other[0] >= o[0] && other[1] <= o[1]
}

// Shift returns the range moved by delta code points.
func (o Offset) Shift(delta int) Offset { return Offset{o[0] + delta, o[1] + delta} }

// Normalization links a mention to an entry in an external vocabulary.
type Normalization struct {
	DBName string `json:"db_name"`
	DBID   string `json:"db_id"`
}

// ParseNormalization splits "DB:ID" into a link. When the value has no prefix
// the fallback database name is used.
func ParseNormalization(value, fallbackDB string) Normalization {
	value = strings.TrimSpace(value)
	if db, id, ok := strings.Cut(value, ":"); ok && db != "" && id != "" {
		return Normalization{DBName: db, DBID: id}
	}
	return Normalization{DBName: fallbackDB, DBID: value}
}

// Passage is a textual unit of a document.
type Passage struct {
	ID      string   `json:"id"`
	Type    string   `json:"type"`
	Text    []string `json:"text"`
	Offsets []Offset `json:"offsets"`
}

// Entity is a typed mention, possibly discontiguous.
type Entity struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Text       []string        `json:"text"`
	Offsets    []Offset        `json:"offsets"`
	Normalized []Normalization `json:"normalized"`
}

// Relation links two entities by id.
type Relation struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Arg1ID     string          `json:"arg1_id"`
	Arg2ID     string          `json:"arg2_id"`
	Normalized []Normalization `json:"normalized"`
}

// Trigger is the text span that evokes an event.
type Trigger struct {
	Text    []string `json:"text"`
	Offsets []Offset `json:"offsets"`
}

// EventArgument points at an entity or another event.
type EventArgument struct {
	Role  string `json:"role"`
	RefID string `json:"ref_id"`
}

// Event is a typed trigger with role-labelled arguments.
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Trigger   Trigger         `json:"trigger"`
	Arguments []EventArgument `json:"arguments"`
}

// Coreference groups entity ids that denote the same referent.
type Coreference struct {
	ID        string   `json:"id"`
	EntityIDs []string `json:"entity_ids"`
}

// Document is the knowledge-base view of one converted source document.
type Document struct {
	// ID is the emitted example id.
	ID string `json:"id"`

	// DocumentID is the identifier the source corpus uses for the document.
	DocumentID string `json:"document_id"`

	Passages     []Passage     `json:"passages"`
	Entities     []Entity      `json:"entities"`
	Events       []Event       `json:"events"`
	Coreferences []Coreference `json:"coreferences"`
	Relations    []Relation    `json:"relations"`

	// Joiner is the joiner setting the canonical text was built with, as
	// understood by ResolveJoiner. Record shapes carry it separately.
	Joiner string `json:"-"`
}

// ExampleID returns the emitted example id.
func (d *Document) ExampleID() string { return d.ID }

// SourceID returns the source document identifier.
func (d *Document) SourceID() string { return d.DocumentID }

// JoinerOrDefault returns the separator used for the canonical text.
func (d *Document) JoinerOrDefault() string {
	return ResolveJoiner(d.Joiner)
}

// Text returns the canonical text: every passage text piece in order, joined
// with the document joiner.
func (d *Document) Text() string {
	return JoinPassages(d.Passages, d.JoinerOrDefault())
}

// JoinPassages joins all passage text pieces with joiner.
func JoinPassages(passages []Passage, joiner string) string {
	var parts []string
	for _, p := range passages {
		parts = append(parts, p.Text...)
	}
	return strings.Join(parts, joiner)
}

// Finalize replaces nil slices with empty ones so that JSON output always
// carries arrays. Adapters call it once, after which the document is treated
// as immutable.
func (d *Document) Finalize() *Document {
	if d.Passages == nil {
		d.Passages = []Passage{}
	}
	if d.Entities == nil {
		d.Entities = []Entity{}
	}
	if d.Events == nil {
		d.Events = []Event{}
	}
	if d.Coreferences == nil {
		d.Coreferences = []Coreference{}
	}
	if d.Relations == nil {
		d.Relations = []Relation{}
	}
	for i := range d.Passages {
		p := &d.Passages[i]
		if p.Text == nil {
			p.Text = []string{}
		}
		if p.Offsets == nil {
			p.Offsets = []Offset{}
		}
	}
	for i := range d.Entities {
		e := &d.Entities[i]
		if e.Normalized == nil {
			e.Normalized = []Normalization{}
		}
		if e.Text == nil {
			e.Text = []string{}
		}
		if e.Offsets == nil {
			e.Offsets = []Offset{}
		}
	}
	for i := range d.Relations {
		if d.Relations[i].Normalized == nil {
			d.Relations[i].Normalized = []Normalization{}
		}
	}
	for i := range d.Events {
		ev := &d.Events[i]
		if ev.Arguments == nil {
			ev.Arguments = []EventArgument{}
		}
		if ev.Trigger.Text == nil {
			ev.Trigger.Text = []string{}
		}
		if ev.Trigger.Offsets == nil {
			ev.Trigger.Offsets = []Offset{}
		}
	}
	for i := range d.Coreferences {
		if d.Coreferences[i].EntityIDs == nil {
			d.Coreferences[i].EntityIDs = []string{}
		}
	}
	return d
}

// EntityIDs returns the set of entity ids in the document.
func (d *Document) EntityIDs() map[string]bool {
	ids := make(map[string]bool, len(d.Entities))
	for _, e := range d.Entities {
		ids[e.ID] = true
	}
	return ids
}

// EventIDs returns the set of event ids in the document.
func (d *Document) EventIDs() map[string]bool {
	ids := make(map[string]bool, len(d.Events))
	for _, ev := range d.Events {
		ids[ev.ID] = true
	}
	return ids
}
