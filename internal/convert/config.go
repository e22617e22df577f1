package convert

import (
	"maps"
	"slices"

	cerrors "github.com/FocuswithJustin/biocorpus/core/errors"
	"github.com/FocuswithJustin/biocorpus/core/schema"
	"github.com/FocuswithJustin/biocorpus/internal/config"
	"github.com/FocuswithJustin/biocorpus/internal/formats/bioc"
	"github.com/FocuswithJustin/biocorpus/internal/formats/brat"
	"github.com/FocuswithJustin/biocorpus/internal/formats/inlinexml"
	"github.com/FocuswithJustin/biocorpus/internal/formats/tabular"
	"github.com/FocuswithJustin/biocorpus/internal/formats/uima"
	"github.com/FocuswithJustin/biocorpus/internal/source"
	"github.com/go-playground/validator"
)

// Config describes one conversion run. New copies it, so a Converter never
// observes later changes made by the caller.
type Config struct {
	Dataset string
	Format  Format    `validate:"required"`
	Schema  schema.ID `validate:"required"`

	// Source is a directory, a tar archive or an s3:// prefix.
	Source string `validate:"required"`
	// Files selects units by base-name glob; empty uses Format.DefaultFiles.
	Files []string
	// Hint is shown when a local corpus is missing.
	Hint string

	Strict  bool
	Workers int `validate:"min=0,max=512"`

	// Joiner separates passages in the canonical text. Empty means " ".
	Joiner string

	// Delimiter overrides the extension-based choice for tabular files.
	Delimiter string `validate:"omitempty,len=1"`
	NoHeader  bool

	BRAT      brat.Options
	BioC      bioc.Options
	UIMA      uima.Options
	Tabular   tabular.Options
	InlineXML inlinexml.Options

	S3 source.S3Config
}

// FromDataset builds a Config from a preset. split selects one of the
// preset's splits; empty reads every file. sourceURI overrides the preset's
// default location under dataDir.
func FromDataset(d *config.Dataset, schemaName, split, sourceURI, dataDir string) (Config, error) {
	f, err := ParseFormat(d.Format)
	if err != nil {
		return Config{}, err
	}
	if schemaName == "" {
		schemaName = d.Schemas[0]
	}
	id, err := schema.ParseID(schemaName)
	if err != nil {
		return Config{}, err
	}
	if !slices.Contains(d.Schemas, schemaName) {
		return Config{}, &cerrors.SchemaMismatchError{Schema: schemaName, Format: d.Name, Supported: d.Schemas}
	}
	files, err := d.Patterns(split)
	if err != nil {
		return Config{}, err
	}
	if sourceURI == "" {
		sourceURI = d.SourceURI(dataDir)
	}
	return Config{
		Dataset:   d.Name,
		Format:    f,
		Schema:    id,
		Source:    sourceURI,
		Files:     files,
		Hint:      d.Hint,
		Joiner:    d.Joiner,
		Delimiter: d.Delimiter,
		NoHeader:  d.NoHeader,
		BRAT:      d.BRAT,
		BioC:      d.BioC,
		UIMA:      d.UIMA,
		Tabular:   d.Tabular,
		InlineXML: d.InlineXML,
	}, nil
}

var validate = validator.New()

// Validate checks the configuration without touching any data.
func (c Config) Validate() error {
	if _, err := ParseFormat(string(c.Format)); err != nil {
		return err
	}
	if !c.Schema.Valid() {
		return &cerrors.SchemaMismatchError{Schema: string(c.Schema)}
	}
	if !c.Format.Supports(c.Schema) {
		return &cerrors.SchemaMismatchError{
			Schema:    string(c.Schema),
			Format:    string(c.Format),
			Supported: schema.Strings(c.Format.Schemas()),
		}
	}
	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			return cerrors.NewValidation(verrs[0].Field(), "failed on "+verrs[0].Tag())
		}
		return cerrors.NewValidation("", err.Error())
	}
	return nil
}

// clone deep-copies the slices and maps a caller could still mutate.
func (c Config) clone() Config {
	c.Files = slices.Clone(c.Files)
	c.BioC.IdentifierInfons = slices.Clone(c.BioC.IdentifierInfons)
	c.Tabular.Columns = maps.Clone(c.Tabular.Columns)
	return c
}

func (c Config) patterns() []string {
	if len(c.Files) > 0 {
		return c.Files
	}
	return c.Format.DefaultFiles()
}
