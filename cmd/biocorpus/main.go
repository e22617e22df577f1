// Command biocorpus converts annotated biomedical corpora into the shared
// schemas and checks the offsets of converted knowledge-base records.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	cerrors "github.com/FocuswithJustin/biocorpus/core/errors"
	"github.com/FocuswithJustin/biocorpus/core/kb"
	"github.com/FocuswithJustin/biocorpus/core/schema"
	"github.com/FocuswithJustin/biocorpus/internal/config"
	"github.com/FocuswithJustin/biocorpus/internal/convert"
	"github.com/FocuswithJustin/biocorpus/internal/logging"
	"github.com/FocuswithJustin/biocorpus/internal/metrics"
	"github.com/FocuswithJustin/biocorpus/internal/sink"
)

const version = "0.4.0"

// CLI defines the command-line interface for biocorpus.
type CLI struct {
	LogLevel  string `name:"log-level" help:"Log level" enum:"debug,info,warn,error" default:"info" env:"BIOCORPUS_LOG_LEVEL"`
	LogFormat string `name:"log-format" help:"Log format" enum:"text,json" default:"text" env:"BIOCORPUS_LOG_FORMAT"`

	Convert  ConvertCmd  `cmd:"" help:"Convert a corpus into one schema"`
	Validate ValidateCmd `cmd:"" help:"Check offsets and references of converted kb records"`
	Formats  FormatsCmd  `cmd:"" help:"List source formats and the schemas they produce"`
	Datasets DatasetsCmd `cmd:"" help:"List dataset presets"`
	Version  VersionCmd  `cmd:"" help:"Print version information"`
}

// ConvertCmd runs one conversion.
type ConvertCmd struct {
	Dataset string `short:"d" help:"Dataset preset (see 'datasets')" xor:"layout"`
	Format  string `short:"f" help:"Source format when no preset is used" xor:"layout"`
	Schema  string `short:"s" help:"Output schema (default: the preset's first schema)"`
	Source  string `help:"Corpus location: directory, .tar.gz/.tar.xz archive or s3://bucket/prefix"`
	DataDir string `name:"data-dir" help:"Root holding one directory per preset" default:"data" env:"BIOCORPUS_DATA_DIR"`
	Split   string `help:"Preset split to read (default: all files)"`
	Files   []string          `help:"Base-name globs selecting source files"`
	Columns map[string]string `help:"Tabular field to column mapping, e.g. 'id=0;text=2'"`
	Out     string            `short:"o" required:"" help:"Output file (.jsonl or .sqlite)"`

	Strict  bool   `help:"Abort on the first malformed annotation" env:"BIOCORPUS_STRICT"`
	Workers int    `help:"Parallel units (0 = GOMAXPROCS)" default:"0" env:"BIOCORPUS_WORKERS"`
	Joiner  string `help:"Passage joiner for the canonical text (default: a single space, 'none' for no separator)"`

	MetricsFile string `name:"metrics-file" help:"Write Prometheus metrics in textfile format to this path"`
}

func (c *ConvertCmd) config() (convert.Config, error) {
	var cfg convert.Config
	if c.Dataset != "" {
		d, err := config.Lookup(c.Dataset)
		if err != nil {
			return cfg, err
		}
		cfg, err = convert.FromDataset(d, c.Schema, c.Split, c.Source, c.DataDir)
		if err != nil {
			return cfg, err
		}
	} else {
		if c.Format == "" || c.Source == "" {
			return cfg, fmt.Errorf("either --dataset or both --format and --source are required")
		}
		f, err := convert.ParseFormat(c.Format)
		if err != nil {
			return cfg, err
		}
		name := c.Schema
		if name == "" {
			name = string(f.Schemas()[0])
		}
		id, err := schema.ParseID(name)
		if err != nil {
			return cfg, err
		}
		cfg = convert.Config{Format: f, Schema: id, Source: c.Source}
	}

	cfg.Strict = c.Strict
	cfg.Workers = c.Workers
	cfg.S3 = config.S3FromEnv()
	if c.Joiner != "" {
		cfg.Joiner = c.Joiner
	}
	if len(c.Files) > 0 {
		cfg.Files = c.Files
	}
	if len(c.Columns) > 0 {
		cfg.Tabular.Columns = c.Columns
	}
	return cfg, nil
}

func (c *ConvertCmd) Run(ctx context.Context, out io.Writer) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	reg := prometheus.NewRegistry()
	conv, err := convert.New(cfg, convert.WithMetrics(metrics.New(reg)))
	if err != nil {
		return err
	}

	w, err := sink.Create(c.Out)
	if err != nil {
		return err
	}
	ctx = logging.WithRunID(ctx, uuid.NewString())
	res, err := conv.Run(ctx, w)
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "wrote %d %s records from %d units to %s (%d skipped)\n",
		res.Records, cfg.Schema, res.Units, c.Out, res.Skipped)
	fmt.Fprintf(out, "fingerprint: %s\n", res.Fingerprint)

	if c.MetricsFile != "" {
		return metrics.WriteTextfile(c.MetricsFile, reg)
	}
	return nil
}

// ValidateCmd re-checks stored kb records.
type ValidateCmd struct {
	File      string `arg:"" help:"Converted kb records (.jsonl or .sqlite)" type:"existingfile"`
	Tolerance int    `help:"Offset mismatches accepted before failing (0 = none)" default:"${tolerance}"`
	Joiner    string `help:"Passage joiner override (default: the joiner stored with each record, 'none' for no separator)"`

	MetricsFile string `name:"metrics-file" help:"Write Prometheus metrics in textfile format to this path"`
}

func (c *ValidateCmd) Run(ctx context.Context, out io.Writer) error {
	v := kb.NewValidator(kb.ValidateOptions{Joiner: c.Joiner, Tolerance: c.Tolerance})
	err := sink.Read(c.File, schema.KB, func(rec schema.Record) error {
		v.Check(rec.(*schema.KBRecord).Document())
		return nil
	})
	if err != nil {
		return err
	}

	report := v.Report()
	if report.Documents == 0 {
		return cerrors.NewNotFound("kb records", c.File)
	}
	for _, m := range report.Mismatches {
		fmt.Fprintf(out, "mismatch: %s\n", m)
	}
	for _, r := range report.ReferenceErrors {
		fmt.Fprintf(out, "reference: %s\n", r.Error())
	}
	fmt.Fprintf(out, "%d documents, %d mismatches (tolerance %d), %d reference errors\n",
		report.Documents, len(report.Mismatches), report.Tolerance, len(report.ReferenceErrors))

	logging.ValidationSummary(ctx, report.Documents, len(report.Mismatches), len(report.ReferenceErrors), report.Tolerance,
		"file", c.File)
	if c.MetricsFile != "" {
		reg := prometheus.NewRegistry()
		metrics.New(reg).Validated(report.Documents, len(report.Mismatches), len(report.ReferenceErrors))
		if err := metrics.WriteTextfile(c.MetricsFile, reg); err != nil {
			return err
		}
	}
	return report.Err()
}

// FormatsCmd lists the adapters.
type FormatsCmd struct{}

func (c *FormatsCmd) Run(out io.Writer) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FORMAT\tSCHEMAS\tFILES")
	for _, f := range convert.Formats() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", f,
			strings.Join(schema.Strings(f.Schemas()), ","),
			strings.Join(f.DefaultFiles(), " "))
	}
	return tw.Flush()
}

// DatasetsCmd lists the presets.
type DatasetsCmd struct {
	JSON bool `help:"Print presets as JSON"`
}

type datasetInfo struct {
	Name     string   `json:"name"`
	Format   string   `json:"format"`
	Schemas  []string `json:"schemas"`
	Splits   []string `json:"splits"`
	Local    bool     `json:"local"`
	Homepage string   `json:"homepage,omitempty"`
	License  string   `json:"license,omitempty"`
	Citation string   `json:"citation,omitempty"`
	Hint     string   `json:"hint,omitempty"`
}

func (c *DatasetsCmd) Run(out io.Writer) error {
	var infos []datasetInfo
	for _, d := range config.Datasets() {
		infos = append(infos, datasetInfo{
			Name:     d.Name,
			Format:   d.Format,
			Schemas:  d.Schemas,
			Splits:   d.SplitNames(),
			Local:    d.Local,
			Homepage: d.Homepage,
			License:  d.License,
			Citation: d.Citation,
			Hint:     d.Hint,
		})
	}
	if c.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tFORMAT\tSCHEMAS\tSPLITS\tLOCAL")
	for _, d := range infos {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", d.Name, d.Format,
			strings.Join(d.Schemas, ","), strings.Join(d.Splits, ","), strconv.FormatBool(d.Local))
	}
	return tw.Flush()
}

// VersionCmd prints the version.
type VersionCmd struct{}

func (c *VersionCmd) Run(out io.Writer) error {
	fmt.Fprintf(out, "biocorpus version %s (sqlite: %s)\n", version, sink.DriverType())
	return nil
}

func newParser(ctx context.Context, cli *CLI, stdout io.Writer, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("biocorpus"),
		kong.Description("Biomedical corpus adapters with offset-checked output"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Vars{"tolerance": strconv.Itoa(kb.DefaultTolerance)},
		kong.BindTo(ctx, (*context.Context)(nil)),
		kong.BindTo(stdout, (*io.Writer)(nil)),
		kong.Writers(stdout, os.Stderr),
	}, options...)
	return kong.New(cli, options...)
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	var cli CLI
	parser, err := newParser(ctx, &cli, stdout)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level, err := logging.ParseLevel(cli.LogLevel)
	if err != nil {
		return err
	}
	format, err := logging.ParseFormat(cli.LogFormat)
	if err != nil {
		return err
	}
	logging.InitLogger(level, format)

	return kctx.Run()
}

func main() {
	config.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "biocorpus: %v\n", err)
		os.Exit(1)
	}
}
