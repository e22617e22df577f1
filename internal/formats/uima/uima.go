// Package uima converts UIMA CAS documents in the JSON CAS serialization into
// knowledge-base documents.
package uima

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	cerrors "github.com/FocuswithJustin/biocorpus/core/errors"
	"github.com/FocuswithJustin/biocorpus/core/kb"
	"github.com/FocuswithJustin/biocorpus/core/span"
)

// Type names used when Options leaves them empty.
const (
	SofaType             = "uima.cas.Sofa"
	DefaultSentenceType  = "de.tudarmstadt.ukp.dkpro.core.api.segmentation.type.Sentence"
	DefaultEntityType    = "webanno.custom.Entity"
	DefaultRelationType  = "webanno.custom.Relation"
	DocumentMetaDataType = "de.tudarmstadt.ukp.dkpro.core.api.metadata.type.DocumentMetaData"
)

// Options names the CAS types and features to read.
type Options struct {
	SentenceType string
	EntityType   string
	RelationType string

	// LabelFeature holds the entity or relation type. Defaults to "label".
	LabelFeature string
	// IdentifierFeature, when set, holds an ontology id on entities.
	IdentifierFeature string
	// DBName is used for identifiers without a "DB:" prefix.
	DBName string

	GovernorFeature  string
	DependentFeature string

	// Joiner separates sentences in the canonical text. Defaults to " ".
	Joiner string

	Policy span.Policy
}

func (o *Options) defaults() {
	if o.SentenceType == "" {
		o.SentenceType = DefaultSentenceType
	}
	if o.EntityType == "" {
		o.EntityType = DefaultEntityType
	}
	if o.RelationType == "" {
		o.RelationType = DefaultRelationType
	}
	if o.LabelFeature == "" {
		o.LabelFeature = "label"
	}
	if o.GovernorFeature == "" {
		o.GovernorFeature = "Governor"
	}
	if o.DependentFeature == "" {
		o.DependentFeature = "Dependent"
	}
	if o.Joiner == "" {
		o.Joiner = kb.DefaultJoiner
	}
	if o.Policy.Format == "" {
		o.Policy.Format = "uima"
	}
}

type cas struct {
	FeatureStructures []featureStructure `json:"%FEATURE_STRUCTURES"`
}

type featureStructure map[string]any

func (fs featureStructure) typeName() string { return fs.str("%TYPE") }

func (fs featureStructure) id() string { return fs.str("%ID") }

func (fs featureStructure) str(key string) string {
	switch v := fs[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func (fs featureStructure) num(key string) int {
	if v, ok := fs[key].(float64); ok {
		return int(v)
	}
	return 0
}

// ref returns the id of the feature structure a reference feature points to.
// The JSON CAS marks references with an '@' prefix.
func (fs featureStructure) ref(feature string) string {
	if v := fs.str("@" + feature); v != "" {
		return v
	}
	return fs.str(feature)
}

type sentence struct {
	src       kb.Offset
	canonical int
}

// Parse converts one JSON CAS. docID is used unless the CAS carries
// DocumentMetaData with a documentId.
func Parse(docID string, data []byte, opts Options) (*kb.Document, error) {
	opts.defaults()
	p := opts.Policy

	var c cas
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, cerrors.NewParse("UIMA CAS JSON", docID, err.Error())
	}

	var sofa featureStructure
	var sentences, entities, relations []featureStructure
	for _, fs := range c.FeatureStructures {
		switch fs.typeName() {
		case SofaType:
			if sofa == nil {
				sofa = fs
			}
		case DocumentMetaDataType:
			if id := fs.str("documentId"); id != "" {
				docID = id
			}
		case opts.SentenceType:
			sentences = append(sentences, fs)
		case opts.EntityType:
			entities = append(entities, fs)
		case opts.RelationType:
			relations = append(relations, fs)
		}
	}
	if sofa == nil {
		return nil, cerrors.NewParse("UIMA CAS JSON", docID, "no "+SofaType+" feature structure")
	}
	text := kb.NewRunes(sofa.str("sofaString"))

	ids := span.NewIDs()
	doc := &kb.Document{ID: docID, DocumentID: docID, Joiner: opts.Joiner}
	var sents []sentence

	if len(sentences) == 0 {
		doc.Passages = append(doc.Passages, kb.Passage{
			ID:      ids.Next(),
			Type:    "document",
			Text:    []string{string(text)},
			Offsets: []kb.Offset{{0, text.Len()}},
		})
		sents = append(sents, sentence{src: kb.Offset{0, text.Len()}})
	} else {
		sort.SliceStable(sentences, func(i, j int) bool {
			return sentences[i].num("begin") < sentences[j].num("begin")
		})
		tb := span.NewTextBuilder(kb.ResolveJoiner(opts.Joiner))
		for _, fs := range sentences {
			o := kb.Offset{fs.num("begin"), fs.num("end")}
			s, ok := text.Slice(o)
			if !ok {
				if err := p.Skipf(docID, fs.id(), "sentence %v outside text of length %d", o, text.Len()); err != nil {
					return nil, err
				}
				continue
			}
			canonical := tb.Append(s)
			doc.Passages = append(doc.Passages, kb.Passage{
				ID:      ids.Next(),
				Type:    "sentence",
				Text:    []string{s},
				Offsets: []kb.Offset{canonical},
			})
			sents = append(sents, sentence{src: o, canonical: canonical.Start()})
		}
	}

	for _, fs := range entities {
		o := kb.Offset{fs.num("begin"), fs.num("end")}
		s, ok := text.Slice(o)
		if !ok {
			if err := p.Skipf(docID, fs.id(), "entity %v outside text of length %d", o, text.Len()); err != nil {
				return nil, err
			}
			continue
		}
		sent, found := containing(sents, o)
		if !found {
			if err := p.Skipf(docID, fs.id(), "entity %v crosses a sentence boundary", o); err != nil {
				return nil, err
			}
			continue
		}
		e := kb.Entity{
			Type:    fs.str(opts.LabelFeature),
			Text:    []string{s},
			Offsets: []kb.Offset{span.Rebase(o, sent.src.Start(), sent.canonical)},
		}
		if e.Type == "" {
			e.Type = shortName(fs.typeName())
		}
		if opts.IdentifierFeature != "" {
			for _, v := range strings.Fields(fs.str(opts.IdentifierFeature)) {
				link := kb.ParseNormalization(v, opts.DBName)
				if link.DBName == "" {
					if err := p.Skipf(docID, fs.id(), "identifier %q has no database", v); err != nil {
						return nil, err
					}
					continue
				}
				e.Normalized = append(e.Normalized, link)
			}
		}
		e.ID = ids.Assign(fs.id())
		doc.Entities = append(doc.Entities, e)
	}

	for _, fs := range relations {
		gov, dep := fs.ref(opts.GovernorFeature), fs.ref(opts.DependentFeature)
		arg1, ok1 := ids.Lookup(gov)
		arg2, ok2 := ids.Lookup(dep)
		if !ok1 || !ok2 {
			if err := p.Skipf(docID, fs.id(), "relation arguments %q, %q not found", gov, dep); err != nil {
				return nil, err
			}
			continue
		}
		doc.Relations = append(doc.Relations, kb.Relation{
			ID:     ids.Next(),
			Type:   fs.str(opts.LabelFeature),
			Arg1ID: arg1,
			Arg2ID: arg2,
		})
	}

	return doc.Finalize(), nil
}

func containing(sents []sentence, o kb.Offset) (sentence, bool) {
	for _, s := range sents {
		if s.src.Contains(o) {
			return s, true
		}
	}
	return sentence{}, false
}

func shortName(typeName string) string {
	if i := strings.LastIndex(typeName, "."); i >= 0 {
		return typeName[i+1:]
	}
	return typeName
}
