package cli

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/flowatlas/flowatlas/pkg/spec"
)

// loadDocuments reads behavior documents from the given paths. Each path
// may be a YAML file or a directory, which is walked recursively for
// .yaml and .yml files. Document order is deterministic: arguments in the
// given order, directory contents sorted by path.
func loadDocuments(paths []string) ([]spec.Document, error) {
	var docs []spec.Document
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if info.IsDir() {
			dirDocs, err := loadDir(path)
			if err != nil {
				return nil, err
			}
			docs = append(docs, dirDocs...)
			continue
		}
		doc, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no YAML documents found in %s", strings.Join(paths, ", "))
	}
	return docs, nil
}

func loadDir(dir string) ([]spec.Document, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if isYAML(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	sort.Strings(files)

	docs := make([]spec.Document, 0, len(files))
	for _, path := range files {
		doc, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func loadFile(path string) (spec.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return spec.Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	return spec.Document{Name: filepath.ToSlash(path), Data: data}, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// nopCloser wraps an io.Writer with a no-op Close method.
// It is used to make os.Stdout compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
