package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent = lipgloss.Color("#50B4E3")
	colorBorder = lipgloss.Color("#3A4A55")
	colorMuted  = lipgloss.Color("#8CA1AE")
	colorPass   = lipgloss.Color("#44E7AE")
	colorFail   = lipgloss.Color("#FF6B6B")
	colorWarn   = lipgloss.Color("#F6AE2D")
)

// styles is the style set the render layer draws with. newStyles(true) yields bare styles so every Render call degrades to plain text; layout styles
// (padding, borders) keep their metrics in both profiles so geometry never depends on color mode.
type styles struct {
	noColor bool

	title     lipgloss.Style
	statusBar lipgloss.Style
	stateOK   lipgloss.Style
	stateRun  lipgloss.Style
	stateFail lipgloss.Style
	notice    lipgloss.Style

	card      lipgloss.Style
	cardFocus lipgloss.Style
	cardTitle lipgloss.Style
	cardMeta  lipgloss.Style

	pass    lipgloss.Style
	fail    lipgloss.Style
	dim     lipgloss.Style
	spin    lipgloss.Style
	footer  lipgloss.Style
	helpBox lipgloss.Style
	helpHd  lipgloss.Style
	helpKey lipgloss.Style
}

func newStyles(noColor bool) styles {
	card := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)

	if noColor {
		plain := lipgloss.NewStyle()
		return styles{
			noColor:   true,
			title:     plain,
			statusBar: plain,
			stateOK:   plain,
			stateRun:  plain,
			stateFail: plain,
			notice:    plain,
			card:      card,
			cardFocus: card,
			cardTitle: plain,
			cardMeta:  plain,
			pass:      plain,
			fail:      plain,
			dim:       plain,
			spin:      plain,
			footer:    plain,
			helpBox:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 2),
			helpHd:    plain,
			helpKey:   plain,
		}
	}

	return styles{
		title:     lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
		statusBar: lipgloss.NewStyle().Foreground(colorMuted),
		stateOK:   lipgloss.NewStyle().Foreground(colorPass).Bold(true),
		stateRun:  lipgloss.NewStyle().Foreground(colorWarn).Bold(true),
		stateFail: lipgloss.NewStyle().Foreground(colorFail).Bold(true),
		notice:    lipgloss.NewStyle().Foreground(colorWarn),
		card:      card.BorderForeground(colorBorder),
		cardFocus: card.BorderForeground(colorAccent),
		cardTitle: lipgloss.NewStyle().Bold(true),
		cardMeta:  lipgloss.NewStyle().Foreground(colorMuted),
		pass:      lipgloss.NewStyle().Foreground(colorPass),
		fail:      lipgloss.NewStyle().Foreground(colorFail),
		dim:       lipgloss.NewStyle().Foreground(colorMuted),
		spin:      lipgloss.NewStyle().Foreground(colorWarn),
		footer:    lipgloss.NewStyle().Foreground(colorMuted).Italic(true),
		helpBox:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorAccent).Padding(1, 2),
		helpHd:    lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
		helpKey:   lipgloss.NewStyle().Foreground(colorWarn),
	}
}
