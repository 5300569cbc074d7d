package lessons

import (
	"strings"
	"testing"
)

func validCatalog() Catalog {
	return Catalog{
		Kind:          CatalogKind,
		SchemaVersion: 1,
		Name:          "Viral School",
		Lessons: []Lesson{
			{ID: "l1", Title: "Hook Mastery", XPReward: 50, MinLevel: 1},
		},
	}
}

func TestCatalogValidateOK(t *testing.T) {
	if err := validCatalog().Validate(); err != nil {
		t.Fatalf("valid catalog rejected: %v", err)
	}
}

func TestCatalogValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Catalog)
		want   string
	}{
		{"wrong kind", func(c *Catalog) { c.Kind = "pack" }, "kind"},
		{"missing schema version", func(c *Catalog) { c.SchemaVersion = 0 }, "schema_version"},
		{"future schema version", func(c *Catalog) { c.SchemaVersion = 99 }, "unsupported"},
		{"missing name", func(c *Catalog) { c.Name = "" }, "name"},
		{"no lessons", func(c *Catalog) { c.Lessons = nil }, "lessons"},
		{"bad lesson id", func(c *Catalog) { c.Lessons[0].ID = "L1!" }, "lesson_id"},
		{"missing title", func(c *Catalog) { c.Lessons[0].Title = "" }, "title"},
		{"zero xp", func(c *Catalog) { c.Lessons[0].XPReward = 0 }, "xp_reward"},
		{"duplicate ids", func(c *Catalog) {
			c.Lessons = append(c.Lessons, c.Lessons[0])
		}, "duplicate"},
	}
	for _, tc := range cases {
		c := validCatalog()
		tc.mutate(&c)
		err := c.Validate()
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: err = %v, want substring %q", tc.name, err, tc.want)
		}
	}
}

func TestBuiltinCatalog(t *testing.T) {
	ls := Builtin()
	if len(ls) != 4 {
		t.Fatalf("builtin lessons = %d, want 4", len(ls))
	}
	for _, l := range ls {
		if err := l.Validate(); err != nil {
			t.Fatalf("builtin lesson %s invalid: %v", l.ID, err)
		}
	}
	hook, ok := Find(ls, "l1")
	if !ok || hook.Title != "Hook Mastery" || hook.XPReward != 50 || hook.MinLevel != 1 {
		t.Fatalf("l1 = %+v ok=%v", hook, ok)
	}
	camera, ok := Find(ls, "l3")
	if !ok || camera.MinLevel != 5 || camera.XPReward != 100 {
		t.Fatalf("l3 = %+v ok=%v", camera, ok)
	}
	money, ok := Find(ls, "l4")
	if !ok || money.MinLevel != 10 || money.XPReward != 150 {
		t.Fatalf("l4 = %+v ok=%v", money, ok)
	}
	if _, ok := Find(ls, "l9"); ok {
		t.Fatalf("found nonexistent lesson")
	}
}
