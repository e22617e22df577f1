package source

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	cerrors "github.com/FocuswithJustin/biocorpus/core/errors"
	"github.com/ulikunitz/xz"
)

// IsArchive reports whether path names a tar archive Archive can read.
func IsArchive(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range []string{".tar.gz", ".tgz", ".tar.xz", ".tar"} {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// Archive is a tar archive read once into memory. Corpus archives are
// small enough that random access beats re-reading the stream per member.
type Archive struct {
	path    string
	names   []string
	members map[string][]byte
}

// OpenArchive reads every regular file of the archive at path.
func OpenArchive(path, dataset, hint string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &cerrors.MissingResourceError{Dataset: dataset, ExpectedDir: path, Hint: hint}
		}
		return nil, cerrors.NewIO("open archive", path, err)
	}
	defer f.Close()

	a, err := ReadArchive(path, f)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ReadArchive reads an archive stream. name selects the decompressor by
// extension.
func ReadArchive(name string, r io.Reader) (*Archive, error) {
	var reader io.Reader
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".tar.xz"):
		xzr, err := xz.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("xz reader: %w", err)
		}
		reader = xzr
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		gzr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		defer gzr.Close()
		reader = gzr
	case strings.HasSuffix(lower, ".tar"):
		reader = r
	default:
		return nil, cerrors.NewUnsupported("archive format", name)
	}

	a := &Archive{path: name, members: make(map[string][]byte)}
	err := iterate(tar.NewReader(reader), func(h *tar.Header, content io.Reader) error {
		if h.Typeflag != tar.TypeReg {
			return nil
		}
		member := strings.TrimPrefix(h.Name, "./")
		data, err := io.ReadAll(content)
		if err != nil {
			return fmt.Errorf("read %s: %w", h.Name, err)
		}
		if _, dup := a.members[member]; !dup {
			a.names = append(a.names, member)
		}
		a.members[member] = data
		return nil
	})
	if err != nil {
		return nil, cerrors.NewIO("read archive", name, err)
	}
	sort.Strings(a.names)
	return a, nil
}

// iterate calls visit for every entry of tr.
func iterate(tr *tar.Reader, visit func(*tar.Header, io.Reader) error) error {
	for {
		h, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read header: %w", err)
		}
		if err := visit(h, tr); err != nil {
			return err
		}
	}
}

// List implements Source.
func (a *Archive) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]string, len(a.names))
	copy(out, a.names)
	return out, nil
}

// Open implements Source.
func (a *Archive) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, ok := a.members[name]
	if !ok {
		return nil, cerrors.NewNotFound("member", name)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}
