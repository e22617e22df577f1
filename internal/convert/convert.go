// Package convert runs a configured adapter over a corpus: it enumerates the
// source units, parses them (optionally in parallel), projects every example
// into the configured schema and emits the records in source order.
package convert

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	cerrors "github.com/FocuswithJustin/biocorpus/core/errors"
	"github.com/FocuswithJustin/biocorpus/core/kb"
	"github.com/FocuswithJustin/biocorpus/core/schema"
	"github.com/FocuswithJustin/biocorpus/core/span"
	"github.com/FocuswithJustin/biocorpus/internal/formats/bioc"
	"github.com/FocuswithJustin/biocorpus/internal/formats/brat"
	"github.com/FocuswithJustin/biocorpus/internal/formats/inlinexml"
	"github.com/FocuswithJustin/biocorpus/internal/formats/jsonl"
	"github.com/FocuswithJustin/biocorpus/internal/formats/tabular"
	"github.com/FocuswithJustin/biocorpus/internal/formats/uima"
	"github.com/FocuswithJustin/biocorpus/internal/logging"
	"github.com/FocuswithJustin/biocorpus/internal/metrics"
	"github.com/FocuswithJustin/biocorpus/internal/sink"
	"github.com/FocuswithJustin/biocorpus/internal/source"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// idNamespace seeds the UUIDv5 ids given to examples the source leaves
// unnamed.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/FocuswithJustin/biocorpus"))

// Converter executes one Config. It holds no state between runs.
type Converter struct {
	cfg     Config
	metrics *metrics.Metrics
	src     source.Source
}

// Option customizes a Converter.
type Option func(*Converter)

// WithMetrics records counters on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Converter) { c.metrics = m }
}

// WithSource reads from src instead of opening Config.Source.
func WithSource(src source.Source) Option {
	return func(c *Converter) { c.src = src }
}

// New validates cfg and returns a Converter bound to a private copy of it.
// Schema and format mismatches are reported here, before any I/O.
func New(cfg Config, opts ...Option) (*Converter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Converter{cfg: cfg.clone()}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Config returns a copy of the run configuration.
func (c *Converter) Config() Config { return c.cfg.clone() }

// Result summarizes a run.
type Result struct {
	Units       int           `json:"units"`
	Records     int           `json:"records"`
	Skipped     int           `json:"skipped"`
	Fingerprint string        `json:"fingerprint"`
	Duration    time.Duration `json:"duration"`
}

// Run converts every unit and writes the records to w in source order. The
// output is identical for any worker count.
func (c *Converter) Run(ctx context.Context, w sink.Writer) (*Result, error) {
	start := time.Now()
	format := c.cfg.Format.String()

	src := c.src
	if src == nil {
		var err error
		src, err = source.Parse(ctx, c.cfg.Source, source.Options{
			Dataset: c.cfg.Dataset,
			Hint:    c.cfg.Hint,
			S3:      c.cfg.S3,
		})
		if err != nil {
			return nil, err
		}
	}

	names, err := src.List(ctx)
	if err != nil {
		return nil, err
	}
	patterns := c.cfg.patterns()
	work, orphans := units(c.cfg.Format, source.Match(names, patterns...))
	if len(work) == 0 {
		return nil, cerrors.NewNotFound("source files",
			fmt.Sprintf("%s in %s", strings.Join(patterns, ", "), c.cfg.Source))
	}

	var skipped atomic.Int64
	for _, name := range orphans {
		err := cerrors.NewMalformed(stem(name), "", "annotation file has no matching .txt")
		if c.cfg.Strict {
			return nil, err
		}
		skipped.Add(1)
		c.metrics.Skipped(format, "document")
		logging.DocumentSkipped(ctx, format, name, err)
	}

	results := make([][]schema.Record, len(work))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers())
	for i, u := range work {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			began := time.Now()
			recs, err := c.convertUnit(gctx, src, u, &skipped)
			c.metrics.UnitDone(format, time.Since(began))
			if err != nil {
				if c.cfg.Strict || !skippable(err) {
					return cerrors.Wrapf(err, "converting %s", u.label())
				}
				skipped.Add(1)
				c.metrics.Skipped(format, "document")
				logging.DocumentSkipped(gctx, format, u.label(), err)
				return nil
			}
			results[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fp := kb.NewFingerprinter()
	for _, recs := range results {
		for _, rec := range recs {
			if err := w.Write(rec); err != nil {
				return nil, cerrors.Wrapf(err, "writing record %s", rec.RecordID())
			}
			if err := fp.Add(rec); err != nil {
				return nil, err
			}
			c.metrics.RecordEmitted(format, string(c.cfg.Schema))
		}
	}

	res := &Result{
		Units:       len(work),
		Records:     fp.Count(),
		Skipped:     int(skipped.Load()),
		Fingerprint: fp.Sum(),
		Duration:    time.Since(start),
	}
	logging.ConversionSummary(ctx, format, string(c.cfg.Schema), res.Records, res.Skipped, res.Duration,
		"dataset", c.cfg.Dataset,
		"units", res.Units,
		"fingerprint", res.Fingerprint,
	)
	return res, nil
}

func (c *Converter) workers() int {
	if c.cfg.Workers > 0 {
		return c.cfg.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// skippable reports whether a unit-level error only invalidates that unit.
// Configuration problems abort the run even in lenient mode.
func skippable(err error) bool {
	var verr *cerrors.ValidationError
	if errors.As(err, &verr) {
		return false
	}
	return errors.Is(err, cerrors.ErrMalformed) || errors.Is(err, cerrors.ErrInvalidInput)
}

func (c *Converter) policy(ctx context.Context, u unit, skipped *atomic.Int64) span.Policy {
	mode := span.Lenient
	if c.cfg.Strict {
		mode = span.Strict
	}
	return span.Policy{
		Mode:   mode,
		Format: c.cfg.Format.String(),
		OnSkip: func(i span.Issue) {
			skipped.Add(1)
			c.metrics.Skipped(i.Format, "annotation")
			logging.AnnotationSkipped(ctx, i.Format, i.DocumentID, i.AnnotationID, i.Reason, "unit", u.label())
		},
	}
}

func (c *Converter) convertUnit(ctx context.Context, src source.Source, u unit, skipped *atomic.Int64) ([]schema.Record, error) {
	p := c.policy(ctx, u, skipped)
	examples, err := c.parse(ctx, src, u, p)
	if err != nil {
		return nil, err
	}

	recs := make([]schema.Record, 0, len(examples))
	for i, ex := range examples {
		c.assignIDs(ex, u, i)
		rec, err := schema.Normalize(ex, c.cfg.Schema)
		if err != nil {
			var merr *cerrors.MalformedAnnotationError
			if !errors.As(err, &merr) {
				return nil, err
			}
			if err := p.Skip(merr.DocumentID, merr.AnnotationID, merr.Reason); err != nil {
				return nil, err
			}
			continue
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// parse is the single place where a format tag selects its adapter.
func (c *Converter) parse(ctx context.Context, src source.Source, u unit, p span.Policy) ([]schema.Example, error) {
	data, err := source.ReadFile(ctx, src, u.name)
	if err != nil {
		return nil, err
	}

	switch c.cfg.Format {
	case BRAT:
		var ann []byte
		if u.extra != "" {
			if ann, err = source.ReadFile(ctx, src, u.extra); err != nil {
				return nil, err
			}
		}
		opts := c.cfg.BRAT
		opts.Policy = p
		doc, err := brat.Parse(u.id, data, ann, opts)
		if err != nil {
			return nil, err
		}
		return documents(doc), nil

	case BioCXML, BioCJSON:
		opts := c.cfg.BioC
		opts.Policy = p
		opts.Joiner = c.joiner(opts.Joiner)
		parse := bioc.ParseXML
		if c.cfg.Format == BioCJSON {
			parse = bioc.ParseJSON
		}
		docs, err := parse(data, opts)
		if err != nil {
			return nil, err
		}
		return documents(docs...), nil

	case UIMA:
		opts := c.cfg.UIMA
		opts.Policy = p
		opts.Joiner = c.joiner(opts.Joiner)
		doc, err := uima.Parse(u.id, data, opts)
		if err != nil {
			return nil, err
		}
		return documents(doc), nil

	case Tabular:
		t, err := c.readTable(u.name, data)
		if err != nil {
			return nil, err
		}
		opts := c.cfg.Tabular
		opts.Policy = p
		return tabular.Parse(t, c.cfg.Schema, opts)

	case InlineXML:
		opts := c.cfg.InlineXML
		opts.Policy = p
		opts.Joiner = c.joiner(opts.Joiner)
		docs, err := inlinexml.Parse(data, opts)
		if err != nil {
			return nil, err
		}
		return documents(docs...), nil

	case JSONL:
		return jsonl.Parse(data, jsonl.Options{Joiner: c.joiner(""), Policy: p})
	}
	return nil, cerrors.NewUnsupported("format", string(c.cfg.Format))
}

func (c *Converter) joiner(own string) string {
	if own != "" {
		return own
	}
	return c.cfg.Joiner
}

func (c *Converter) readTable(name string, data []byte) (*tabular.Table, error) {
	header := !c.cfg.NoHeader
	lower := strings.ToLower(name)
	if c.cfg.Delimiter != "" && !strings.HasSuffix(lower, ".xlsx") && !strings.HasSuffix(lower, ".xlsm") {
		return tabular.ReadDelimited(data, []rune(c.cfg.Delimiter)[0], header)
	}
	return tabular.Read(name, data, header)
}

func documents(docs ...*kb.Document) []schema.Example {
	out := make([]schema.Example, 0, len(docs))
	for _, d := range docs {
		out = append(out, d)
	}
	return out
}

// assignIDs names examples the source left without an id. The id depends
// only on the dataset, the unit and the example's position in it.
func (c *Converter) assignIDs(ex schema.Example, u unit, i int) {
	name := func() string {
		key := c.cfg.Dataset + "/" + u.name + "#" + strconv.Itoa(i)
		return uuid.NewSHA1(idNamespace, []byte(key)).String()
	}
	fill := func(s *string, v string) {
		if *s == "" {
			*s = v
		}
	}

	switch v := ex.(type) {
	case *kb.Document:
		fill(&v.ID, v.DocumentID)
		fill(&v.ID, name())
		fill(&v.DocumentID, v.ID)
	case *schema.QAItem:
		fill(&v.ID, v.QuestionID)
		fill(&v.ID, name())
		fill(&v.QuestionID, v.ID)
		fill(&v.DocumentID, v.ID)
	case *schema.PairItem:
		fill(&v.ID, name())
		fill(&v.DocumentID, v.ID)
	case *schema.TextItem:
		fill(&v.ID, name())
		fill(&v.DocumentID, v.ID)
	case *schema.Text2TextItem:
		fill(&v.ID, name())
		fill(&v.DocumentID, v.ID)
	case *schema.EntailmentItem:
		fill(&v.ID, name())
	}
}
