// Package source locates raw corpus files. A corpus may live in a local
// directory, in a compressed tar archive, or under an S3 prefix; converters
// see all three through the Source interface.
package source

import (
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
)

// Source lists and opens corpus members. Names are slash-separated paths
// relative to the corpus root.
type Source interface {
	// List returns every member name in lexical order.
	List(ctx context.Context) ([]string, error)
	// Open returns the content of one member.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// Options carries what Parse needs beyond the URI.
type Options struct {
	// Dataset and Hint make MissingResourceError messages actionable for
	// corpora that must be downloaded by hand.
	Dataset string
	Hint    string

	S3 S3Config
}

// Parse picks an implementation from uri: "s3://bucket/prefix" reads from
// S3, a path ending in .tar.gz, .tgz, .tar.xz or .tar is read as an archive,
// anything else is a local directory.
func Parse(ctx context.Context, uri string, opts Options) (Source, error) {
	switch {
	case strings.HasPrefix(uri, "s3://"):
		bucket, prefix, _ := strings.Cut(strings.TrimPrefix(uri, "s3://"), "/")
		if bucket == "" {
			return nil, fmt.Errorf("s3 uri %q has no bucket", uri)
		}
		return NewS3(ctx, bucket, prefix, opts.S3)
	case IsArchive(uri):
		return OpenArchive(uri, opts.Dataset, opts.Hint)
	default:
		return NewDir(uri, opts.Dataset, opts.Hint)
	}
}

// ReadFile reads a whole member.
func ReadFile(ctx context.Context, src Source, name string) ([]byte, error) {
	rc, err := src.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// Match returns the member names whose base name matches any of the glob
// patterns, in lexical order. An empty pattern list matches everything.
func Match(names []string, patterns ...string) []string {
	var out []string
	for _, n := range names {
		if matchAny(path.Base(n), patterns) {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}

func matchAny(base string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, p := range patterns {
		if ok, _ := path.Match(p, base); ok {
			return true
		}
	}
	return false
}
