package source

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	cerrors "github.com/FocuswithJustin/biocorpus/core/errors"
)

// Dir is a corpus unpacked in a local directory.
type Dir struct {
	root string
}

// NewDir checks that root exists. A missing directory yields a
// *errors.MissingResourceError naming it, since several corpora cannot be
// fetched automatically and must be placed there by hand.
func NewDir(root, dataset, hint string) (*Dir, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &cerrors.MissingResourceError{Dataset: dataset, ExpectedDir: root, Hint: hint}
		}
		return nil, cerrors.NewIO("stat", root, err)
	}
	if !info.IsDir() {
		return nil, cerrors.NewValidation("source", root+" is not a directory")
	}
	return &Dir{root: root}, nil
}

// Root returns the directory path.
func (d *Dir) Root() string { return d.root }

// List implements Source.
func (d *Dir) List(ctx context.Context) ([]string, error) {
	var names []string
	err := filepath.WalkDir(d.root, func(p string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if e.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(d.root, p)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, cerrors.NewIO("list", d.root, err)
	}
	sort.Strings(names)
	return names, nil
}

// Open implements Source.
func (d *Dir) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean, err := sanitizePath(d.root, name)
	if err != nil {
		return nil, cerrors.NewValidation("name", err.Error())
	}
	f, err := os.Open(filepath.Join(d.root, clean))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, cerrors.NewNotFound("member", name)
		}
		return nil, cerrors.NewIO("open", name, err)
	}
	return f, nil
}
