// Package progress owns the creator profile and its XP progression.
package progress

import (
	"errors"
	"fmt"
	"strings"
)

// XPPerLevel is the XP span of one level. Level is always derived from
// total XP, never stored independently of it.
const XPPerLevel = 100

var (
	ErrNameRequired     = errors.New("name is required")
	ErrUnknownNiche     = errors.New("unknown niche")
	ErrUnknownGoal      = errors.New("unknown goal")
	ErrAlreadyOnboarded = errors.New("onboarding already completed")
	ErrLessonLocked     = errors.New("lesson is locked")
)

// Niches and Goals are the closed catalogs the onboarding wizard offers.
var Niches = []string{
	"Comedy",
	"Education",
	"Lifestyle",
	"Finance",
	"Tech",
	"Fitness",
	"Food",
	"Dance",
}

var Goals = []string{
	"First Viral Video",
	"Grow Followers",
	"Improve Hooks",
	"Sell Products",
	"Consistency",
}

type Profile struct {
	Name      string
	Niche     string
	Goal      string
	Level     int
	XP        int
	Streak    int
	Badges    []string
	Onboarded bool

	// CompletedLessons only ever grows.
	CompletedLessons map[string]struct{}
}

func NewProfile() Profile {
	return Profile{
		Name:             "Creator",
		Level:            1,
		XP:               0,
		Streak:           1,
		CompletedLessons: make(map[string]struct{}),
	}
}

// LevelForXP derives the level from total XP: 0-99 is level 1, 100-199
// level 2, and so on.
func LevelForXP(xp int) int {
	if xp < 0 {
		return 1
	}
	return xp/XPPerLevel + 1
}

// Award describes one XP grant, for the transient overlay.
type Award struct {
	Amount    int
	XP        int
	Level     int
	LeveledUp bool
}

// Manager mutates a single Profile. It is not self-locking; the caller
// serializes access.
type Manager struct {
	profile Profile
}

func NewManager() *Manager {
	return &Manager{profile: NewProfile()}
}

// Profile returns a copy; the completed-lesson set and badges are cloned
// so callers cannot mutate manager state.
func (m *Manager) Profile() Profile {
	p := m.profile
	p.CompletedLessons = make(map[string]struct{}, len(m.profile.CompletedLessons))
	for id := range m.profile.CompletedLessons {
		p.CompletedLessons[id] = struct{}{}
	}
	p.Badges = append([]string(nil), m.profile.Badges...)
	return p
}

// CompleteOnboarding records identity once. The flag is one-way.
func (m *Manager) CompleteOnboarding(name, niche, goal string) error {
	if m.profile.Onboarded {
		return ErrAlreadyOnboarded
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameRequired
	}
	if !contains(Niches, niche) {
		return fmt.Errorf("%w: %q", ErrUnknownNiche, niche)
	}
	if !contains(Goals, goal) {
		return fmt.Errorf("%w: %q", ErrUnknownGoal, goal)
	}
	m.profile.Name = name
	m.profile.Niche = niche
	m.profile.Goal = goal
	m.profile.Onboarded = true
	return nil
}

func (m *Manager) AwardXP(amount int) Award {
	if amount < 0 {
		amount = 0
	}
	before := m.profile.Level
	m.profile.XP += amount
	m.profile.Level = LevelForXP(m.profile.XP)
	return Award{
		Amount:    amount,
		XP:        m.profile.XP,
		Level:     m.profile.Level,
		LeveledUp: m.profile.Level > before,
	}
}

// CompleteLesson awards XP on the first completion only. The bool
// reports whether this call completed the lesson.
func (m *Manager) CompleteLesson(id string, minLevel, xpReward int) (Award, bool, error) {
	if m.Locked(minLevel) {
		return Award{}, false, fmt.Errorf("%w: requires level %d", ErrLessonLocked, minLevel)
	}
	if _, done := m.profile.CompletedLessons[id]; done {
		return Award{}, false, nil
	}
	m.profile.CompletedLessons[id] = struct{}{}
	return m.AwardXP(xpReward), true, nil
}

func (m *Manager) Locked(minLevel int) bool {
	return m.profile.Level < minLevel
}

func contains(xs []string, v string) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
