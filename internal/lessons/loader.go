package lessons

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

type FSLoader struct{}

func NewLoader() *FSLoader { return &FSLoader{} }

// LoadCatalogs reads every *.yaml catalog directly under root. A missing
// or empty root is not an error; callers fall back to Builtin().
func (l *FSLoader) LoadCatalogs(ctx context.Context, root string) ([]Catalog, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	catalogs := make([]Catalog, 0)
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(root, entry.Name())
		catalog, err := readCatalog(path)
		if err != nil {
			return nil, fmt.Errorf("load catalog %s: %w", path, err)
		}
		catalog.Path = path
		applyDefaults(&catalog)
		catalogs = append(catalogs, catalog)
	}

	sort.Slice(catalogs, func(i, j int) bool { return catalogs[i].Name < catalogs[j].Name })
	return catalogs, nil
}

func readCatalog(path string) (Catalog, error) {
	var catalog Catalog
	b, err := os.ReadFile(path)
	if err != nil {
		return catalog, err
	}
	if err := yaml.Unmarshal(b, &catalog); err != nil {
		return catalog, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := catalog.Validate(); err != nil {
		return catalog, fmt.Errorf("validate %s: %w", path, err)
	}
	return catalog, nil
}

func applyDefaults(catalog *Catalog) {
	for i := range catalog.Lessons {
		l := &catalog.Lessons[i]
		if l.Icon == "" {
			l.Icon = "📚"
		}
		if l.Duration == "" {
			l.Duration = "2 min"
		}
		if l.MinLevel == 0 {
			l.MinLevel = 1
		}
	}
}

// Flatten merges catalogs into one lesson list, catalog order preserved.
func Flatten(catalogs []Catalog) []Lesson {
	var out []Lesson
	for _, c := range catalogs {
		out = append(out, c.Lessons...)
	}
	return out
}

func Find(lessons []Lesson, id string) (Lesson, bool) {
	for _, l := range lessons {
		if l.ID == id {
			return l, true
		}
	}
	return Lesson{}, false
}
