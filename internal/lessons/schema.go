package lessons

import (
	"fmt"
	"regexp"
)

const (
	CatalogKind            = "catalog"
	SupportedSchemaVersion = 1
)

var idPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{1,63}$`)

type Catalog struct {
	Kind          string   `yaml:"kind"`
	SchemaVersion int      `yaml:"schema_version"`
	Name          string   `yaml:"name"`
	Lessons       []Lesson `yaml:"lessons"`

	Path string `yaml:"-"`
}

type Lesson struct {
	ID        string `yaml:"lesson_id"`
	Title     string `yaml:"title"`
	Icon      string `yaml:"icon"`
	Duration  string `yaml:"duration"`
	XPReward  int    `yaml:"xp_reward"`
	MinLevel  int    `yaml:"min_level"`
	ContentMD string `yaml:"content_md"`
}

func (c Catalog) Validate() error {
	if c.Kind != CatalogKind {
		return fmt.Errorf("kind must be %q", CatalogKind)
	}
	if c.SchemaVersion == 0 {
		return fmt.Errorf("schema_version is required")
	}
	if c.SchemaVersion > SupportedSchemaVersion {
		return fmt.Errorf("unsupported catalog schema_version %d (max supported %d)", c.SchemaVersion, SupportedSchemaVersion)
	}
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(c.Lessons) == 0 {
		return fmt.Errorf("lessons must contain at least one item")
	}
	seen := map[string]struct{}{}
	for _, l := range c.Lessons {
		if err := l.Validate(); err != nil {
			return err
		}
		if _, ok := seen[l.ID]; ok {
			return fmt.Errorf("duplicate lesson_id %q", l.ID)
		}
		seen[l.ID] = struct{}{}
	}
	return nil
}

func (l Lesson) Validate() error {
	if !idPattern.MatchString(l.ID) {
		return fmt.Errorf("invalid lesson_id %q", l.ID)
	}
	if l.Title == "" {
		return fmt.Errorf("lesson %q: title is required", l.ID)
	}
	if l.XPReward <= 0 {
		return fmt.Errorf("lesson %q: xp_reward must be >0", l.ID)
	}
	if l.MinLevel < 0 {
		return fmt.Errorf("lesson %q: min_level must be >= 0", l.ID)
	}
	return nil
}
