package ui

import (
	lipgloss "charm.land/lipgloss/v2"

	"scout/internal/coach"
)

type Theme struct {
	Header       lipgloss.Style
	Status       lipgloss.Style
	PanelTitle   lipgloss.Style
	PanelBorder  lipgloss.Style
	PanelBody    lipgloss.Style
	Overlay      lipgloss.Style
	OverlayTitle lipgloss.Style
	Accent       lipgloss.Style
	Good         lipgloss.Style
	Bad          lipgloss.Style
	Pending      lipgloss.Style
	Muted        lipgloss.Style
	Info         lipgloss.Style
	ScoreLow     lipgloss.Style
	ScoreMid     lipgloss.Style
	ScoreHigh    lipgloss.Style
}

func DefaultTheme() Theme {
	return ThemeForVariant("modern_arcade")
}

func ThemeForVariant(variant string) Theme {
	switch variant {
	case "cozy_clean":
		return cozyCleanTheme()
	case "retro_terminal":
		return retroTerminalTheme()
	default:
		return modernArcadeTheme()
	}
}

// Score maps a 0-100 score to its banded style.
func (t Theme) Score(score int) lipgloss.Style {
	switch coach.Band(score) {
	case coach.BandLow:
		return t.ScoreLow
	case coach.BandMid:
		return t.ScoreMid
	default:
		return t.ScoreHigh
	}
}

func bandStyles() (low, mid, high lipgloss.Style) {
	low = lipgloss.NewStyle().Foreground(lipgloss.Color(coach.BandLow.Color())).Bold(true)
	mid = lipgloss.NewStyle().Foreground(lipgloss.Color(coach.BandMid.Color())).Bold(true)
	high = lipgloss.NewStyle().Foreground(lipgloss.Color(coach.BandHigh.Color())).Bold(true)
	return low, mid, high
}

func modernArcadeTheme() Theme {
	coral := lipgloss.Color("#FF6B6B")
	mint := lipgloss.Color("#58D68A")
	ink := lipgloss.Color("#141020")
	plum := lipgloss.Color("#2A2040")
	powder := lipgloss.Color("#F3EEFF")
	violet := lipgloss.Color("#B388FF")
	border := lipgloss.Color("#5C4E8A")
	amber := lipgloss.Color("#FFD84D")

	low, mid, high := bandStyles()
	return Theme{
		Header: lipgloss.NewStyle().
			Background(ink).
			Foreground(powder).
			Padding(0, 1),
		Status: lipgloss.NewStyle().
			Background(plum).
			Foreground(powder).
			Padding(0, 1),
		PanelTitle: lipgloss.NewStyle().
			Foreground(violet).
			Bold(true),
		PanelBorder: lipgloss.NewStyle().
			Foreground(border),
		PanelBody: lipgloss.NewStyle().
			Foreground(powder),
		Overlay: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(violet).
			Background(ink).
			Foreground(powder).
			Padding(1, 2),
		OverlayTitle: lipgloss.NewStyle().
			Foreground(violet).
			Bold(true),
		Accent: lipgloss.NewStyle().
			Foreground(violet).
			Bold(true),
		Good: lipgloss.NewStyle().
			Foreground(mint).
			Bold(true),
		Bad: lipgloss.NewStyle().
			Foreground(coral).
			Bold(true),
		Pending: lipgloss.NewStyle().
			Foreground(amber),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9D93BD")),
		Info: lipgloss.NewStyle().
			Foreground(violet),
		ScoreLow:  low,
		ScoreMid:  mid,
		ScoreHigh: high,
	}
}

func cozyCleanTheme() Theme {
	honey := lipgloss.Color("#F2B872")
	sage := lipgloss.Color("#80C4A3")
	rose := lipgloss.Color("#D17A86")
	night := lipgloss.Color("#1E2430")
	slate := lipgloss.Color("#30394A")
	paper := lipgloss.Color("#F4F6FA")
	sky := lipgloss.Color("#86B6F6")

	low, mid, high := bandStyles()
	return Theme{
		Header:      lipgloss.NewStyle().Background(night).Foreground(paper).Padding(0, 1),
		Status:      lipgloss.NewStyle().Background(slate).Foreground(paper).Padding(0, 1),
		PanelTitle:  lipgloss.NewStyle().Foreground(honey).Bold(true),
		PanelBorder: lipgloss.NewStyle().Foreground(slate),
		PanelBody:   lipgloss.NewStyle().Foreground(paper),
		Overlay: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(honey).
			Background(night).
			Foreground(paper).
			Padding(1, 2),
		OverlayTitle: lipgloss.NewStyle().Foreground(honey).Bold(true),
		Accent:       lipgloss.NewStyle().Foreground(sky).Bold(true),
		Good:         lipgloss.NewStyle().Foreground(sage).Bold(true),
		Bad:          lipgloss.NewStyle().Foreground(rose).Bold(true),
		Pending:      lipgloss.NewStyle().Foreground(honey),
		Muted:        lipgloss.NewStyle().Foreground(lipgloss.Color("#A3ACC2")),
		Info:         lipgloss.NewStyle().Foreground(sky),
		ScoreLow:     low,
		ScoreMid:     mid,
		ScoreHigh:    high,
	}
}

func retroTerminalTheme() Theme {
	lime := lipgloss.Color("#9CF5A2")
	amber := lipgloss.Color("#E5D47A")
	red := lipgloss.Color("#FF6B6B")
	deep := lipgloss.Color("#07150A")
	forest := lipgloss.Color("#12301A")
	glow := lipgloss.Color("#C5F7C4")

	low, mid, high := bandStyles()
	return Theme{
		Header:      lipgloss.NewStyle().Background(deep).Foreground(glow).Padding(0, 1),
		Status:      lipgloss.NewStyle().Background(forest).Foreground(glow).Padding(0, 1),
		PanelTitle:  lipgloss.NewStyle().Foreground(amber).Bold(true),
		PanelBorder: lipgloss.NewStyle().Foreground(forest),
		PanelBody:   lipgloss.NewStyle().Foreground(glow),
		Overlay: lipgloss.NewStyle().
			BorderStyle(lipgloss.DoubleBorder()).
			BorderForeground(amber).
			Background(deep).
			Foreground(glow).
			Padding(1, 2),
		OverlayTitle: lipgloss.NewStyle().Foreground(amber).Bold(true),
		Accent:       lipgloss.NewStyle().Foreground(lime).Bold(true),
		Good:         lipgloss.NewStyle().Foreground(lime).Bold(true),
		Bad:          lipgloss.NewStyle().Foreground(red).Bold(true),
		Pending:      lipgloss.NewStyle().Foreground(amber),
		Muted:        lipgloss.NewStyle().Foreground(lipgloss.Color("#73A17A")),
		Info:         lipgloss.NewStyle().Foreground(lime),
		ScoreLow:     low,
		ScoreMid:     mid,
		ScoreHigh:    high,
	}
}
