package coach

import (
	"errors"
	"strings"
)

// MaxVideoBytes is the largest raw video payload accepted for analysis.
// Payloads above this are rejected before any request is made.
const MaxVideoBytes = 20 * 1024 * 1024

const snippetRunes = 30

var (
	ErrEmptyScript     = errors.New("script is empty")
	ErrPayloadTooLarge = errors.New("video payload exceeds 20 MiB")
)

type ScriptRequest struct {
	Script string
	Niche  string
	Goal   string
}

type Metric struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
	Color string `json:"color"`
}

type ScriptAnalysis struct {
	OverallScore int      `json:"overallScore"`
	Metrics      []Metric `json:"metrics"`
	WeakestArea  string   `json:"weakestArea"`
	Suggestion   string   `json:"suggestion"`
	ImprovedHook string   `json:"improvedHook"`

	// Fallback marks results substituted after a transport failure.
	Fallback bool `json:"-"`
}

type VideoAnalysis struct {
	OverallScore int    `json:"overallScore"`
	Feedback     string `json:"feedback"`
	PacingScore  int    `json:"pacingScore"`
	VisualScore  int    `json:"visualScore"`
	HookScore    int    `json:"hookScore"`
	Prediction   string `json:"prediction"`

	// Failed marks results substituted after a transport failure.
	Failed bool `json:"-"`
}

type ScoreBand int

const (
	BandLow ScoreBand = iota
	BandMid
	BandHigh
)

// Band maps a 0-100 score to its display band: <=50 low, 51-75 mid,
// >=76 high. All score coloring in the app goes through this.
func Band(score int) ScoreBand {
	switch {
	case score <= 50:
		return BandLow
	case score <= 75:
		return BandMid
	default:
		return BandHigh
	}
}

func (b ScoreBand) Color() string {
	switch b {
	case BandLow:
		return "#FF4D4D"
	case BandMid:
		return "#FFD84D"
	default:
		return "#58D68A"
	}
}

// Snippet shortens a script for history rows: the first 30 characters
// plus a trailing ellipsis, applied regardless of length.
func Snippet(script string) string {
	r := []rune(script)
	if len(r) > snippetRunes {
		r = r[:snippetRunes]
	}
	return string(r) + "..."
}

// FallbackScriptAnalysis is substituted for any script analysis that
// fails in transport or parsing, so the session keeps moving.
func FallbackScriptAnalysis() ScriptAnalysis {
	a := ScriptAnalysis{
		OverallScore: 45,
		Metrics: []Metric{
			{Name: "Hook", Score: 40},
			{Name: "Value", Score: 70},
			{Name: "Relatability", Score: 60},
		},
		WeakestArea:  "Hook",
		Suggestion:   "Script thoda slow start ho raha hai. Hook me direct benefit batao!",
		ImprovedHook: "Stop scrolling if you want to save money today!",
		Fallback:     true,
	}
	bandMetricColors(a.Metrics)
	return a
}

// FailedVideoAnalysis is the zero-score verdict shown when a video
// analysis fails in transport or parsing.
func FailedVideoAnalysis() VideoAnalysis {
	return VideoAnalysis{
		Feedback:   "Video load nahi hua. Try again or check connection.",
		Prediction: "Unknown",
		Failed:     true,
	}
}

// bandMetricColors overwrites any upstream color hints with the banded
// color for each score.
func bandMetricColors(metrics []Metric) {
	for i := range metrics {
		metrics[i].Color = Band(metrics[i].Score).Color()
	}
}

func emptyScript(script string) bool {
	return strings.TrimSpace(script) == ""
}
