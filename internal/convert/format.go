package convert

import (
	"strings"

	cerrors "github.com/FocuswithJustin/biocorpus/core/errors"
	"github.com/FocuswithJustin/biocorpus/core/schema"
)

// Format tags a source layout. Each tag maps to exactly one adapter.
type Format string

const (
	BRAT      Format = "brat"
	BioCXML   Format = "bioc-xml"
	BioCJSON  Format = "bioc-json"
	UIMA      Format = "uima"
	Tabular   Format = "tabular"
	InlineXML Format = "inline-xml"
	JSONL     Format = "jsonl"
)

// Formats returns every format tag.
func Formats() []Format {
	return []Format{BRAT, BioCXML, BioCJSON, UIMA, Tabular, InlineXML, JSONL}
}

// ParseFormat validates a format tag.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(s))
	for _, known := range Formats() {
		if f == known {
			return f, nil
		}
	}
	return "", cerrors.NewUnsupported("format", s)
}

// Schemas lists the schemas an adapter can produce.
func (f Format) Schemas() []schema.ID {
	switch f {
	case BRAT, BioCXML, BioCJSON, UIMA, InlineXML:
		return []schema.ID{schema.KB}
	case Tabular:
		return schema.All()
	case JSONL:
		return []schema.ID{schema.QA}
	}
	return nil
}

// Supports reports whether f produces id.
func (f Format) Supports(id schema.ID) bool {
	for _, s := range f.Schemas() {
		if s == id {
			return true
		}
	}
	return false
}

// DefaultFiles returns the base-name patterns read when no file list is
// configured.
func (f Format) DefaultFiles() []string {
	switch f {
	case BRAT:
		return []string{"*.txt", "*.ann"}
	case BioCXML, InlineXML:
		return []string{"*.xml", "*.XML"}
	case BioCJSON:
		return []string{"*.json", "*.JSON"}
	case UIMA:
		return []string{"*.json"}
	case Tabular:
		return []string{"*.tsv", "*.tab", "*.csv", "*.xlsx", "*.xlsm"}
	case JSONL:
		return []string{"*.jsonl", "*.ndjson"}
	}
	return nil
}

func (f Format) String() string { return string(f) }
