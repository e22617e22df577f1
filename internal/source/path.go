package source

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// MaxPathLength bounds member names accepted by Dir.Open.
const MaxPathLength = 4096

var (
	ErrPathTraversal = errors.New("path traversal detected")
	ErrEmptyPath     = errors.New("path cannot be empty")
	ErrPathTooLong   = errors.New("path too long")
)

// sanitizePath checks that name stays inside baseDir and returns the cleaned
// relative path.
func sanitizePath(baseDir, name string) (string, error) {
	if name == "" {
		return "", ErrEmptyPath
	}
	if len(name) > MaxPathLength {
		return "", ErrPathTooLong
	}

	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) {
		return "", fmt.Errorf("%w: absolute path not allowed", ErrPathTraversal)
	}
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", ErrPathTraversal
	}

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base directory: %w", err)
	}
	absPath, err := filepath.Abs(filepath.Join(baseDir, clean))
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	rel, err := filepath.Rel(absBase, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrPathTraversal
	}
	return clean, nil
}
