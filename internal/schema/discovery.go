package schema

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/vektah/gqlparser/v2/ast"
)

// Discover reads every .graphql and .graphqls file under root. Sources are
// ordered by relative path so extensions apply in a stable order.
func Discover(root string) ([]*ast.Source, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch filepath.Ext(d.Name()) {
		case ".graphql", ".graphqls":
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk schema directory %q: %w", root, err)
	}
	sort.Strings(paths)

	sources := make([]*ast.Source, 0, len(paths))
	for _, path := range paths {
		src, err := ReadSource(path)
		if err != nil {
			return nil, err
		}
		if rel, err := filepath.Rel(root, path); err == nil {
			src.Name = rel
		}
		sources = append(sources, src)
	}
	return sources, nil
}

// ReadSource reads a single schema file.
func ReadSource(path string) (*ast.Source, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema %q: %w", path, err)
	}
	return &ast.Source{Name: path, Input: string(content)}, nil
}

// Load builds a schema from files or directories. Directories are searched
// recursively.
func Load(paths ...string) (*Schema, error) {
	sources, err := Sources(paths...)
	if err != nil {
		return nil, err
	}
	return Build(sources...)
}

// Sources reads the schema files named by paths, expanding directories.
func Sources(paths ...string) ([]*ast.Source, error) {
	var sources []*ast.Source
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			srcs, err := Discover(path)
			if err != nil {
				return nil, err
			}
			sources = append(sources, srcs...)
			continue
		}
		src, err := ReadSource(path)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no schema files found in %v", paths)
	}
	return sources, nil
}
