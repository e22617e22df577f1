package config

import (
	"fmt"
	"path"
	"sort"
	"strings"

	cerrors "github.com/FocuswithJustin/biocorpus/core/errors"
	"github.com/FocuswithJustin/biocorpus/internal/formats/bioc"
	"github.com/FocuswithJustin/biocorpus/internal/formats/brat"
	"github.com/FocuswithJustin/biocorpus/internal/formats/inlinexml"
	"github.com/FocuswithJustin/biocorpus/internal/formats/tabular"
	"github.com/FocuswithJustin/biocorpus/internal/formats/uima"
	"github.com/go-playground/validator"
)

// Dataset describes one corpus: where its data comes from, which adapter
// reads it, and the adapter options that fit its layout.
type Dataset struct {
	Name     string `validate:"required"`
	Homepage string `validate:"omitempty,url"`
	License  string
	Citation string

	Format  string   `validate:"required"`
	Schemas []string `validate:"required,min=1,dive,oneof=kb qa pairs text text2text entailment"`

	// Local marks corpora that cannot be fetched automatically; Hint tells
	// the user how to obtain the data.
	Local bool
	Hint  string

	// Files selects source units by base-name glob. Splits narrows Files
	// per split name.
	Files  []string
	Splits map[string][]string

	// Tabular layout.
	Delimiter string `validate:"omitempty,len=1"`
	NoHeader  bool

	Joiner string

	BRAT      brat.Options
	BioC      bioc.Options
	UIMA      uima.Options
	Tabular   tabular.Options
	InlineXML inlinexml.Options
}

// SplitNames returns the configured split names in lexical order.
func (d *Dataset) SplitNames() []string {
	names := make([]string, 0, len(d.Splits))
	for name := range d.Splits {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Patterns returns the file patterns for split; an empty split means every
// file of the dataset.
func (d *Dataset) Patterns(split string) ([]string, error) {
	if split == "" {
		return d.Files, nil
	}
	p, ok := d.Splits[split]
	if !ok {
		return nil, cerrors.NewNotFound("split", fmt.Sprintf("%s/%s", d.Name, split))
	}
	return p, nil
}

// SourceURI returns the default location of the dataset under dataDir.
func (d *Dataset) SourceURI(dataDir string) string {
	if strings.HasPrefix(dataDir, "s3://") {
		return strings.TrimSuffix(dataDir, "/") + "/" + d.Name
	}
	return path.Join(dataDir, d.Name)
}

var validate = validator.New()

// Validate checks a preset's struct tags.
func Validate(d *Dataset) error {
	if err := validate.Struct(d); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			fe := verrs[0]
			return cerrors.NewValidation(d.Name+"."+fe.Field(), "failed on "+fe.Tag())
		}
		return cerrors.NewValidation(d.Name, err.Error())
	}
	return nil
}

var registry = map[string]*Dataset{}

// Register adds a preset. It panics on an invalid or duplicate preset, which
// is a programming error.
func Register(d *Dataset) {
	if err := Validate(d); err != nil {
		panic(err)
	}
	if _, dup := registry[d.Name]; dup {
		panic(fmt.Sprintf("config: dataset %q registered twice", d.Name))
	}
	registry[d.Name] = d
}

// Lookup returns a registered preset.
func Lookup(name string) (*Dataset, error) {
	d, ok := registry[name]
	if !ok {
		return nil, cerrors.NewNotFound("dataset", name)
	}
	return d, nil
}

// Datasets returns every registered preset sorted by name.
func Datasets() []*Dataset {
	out := make([]*Dataset, 0, len(registry))
	for _, d := range registry {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
