package tui

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha palette.
var (
	colorBase     = lipgloss.Color("#1E1E2E") // background
	colorSurface0 = lipgloss.Color("#313244") // card bg
	colorSurface1 = lipgloss.Color("#45475A") // gauge track
	colorText     = lipgloss.Color("#CDD6F4") // primary text
	colorSubtext  = lipgloss.Color("#A6ADC8") // secondary text
	colorDim      = lipgloss.Color("#585B70") // muted, borders

	colorAccent   = lipgloss.Color("#CBA6F7") // mauve – brand
	colorGreen    = lipgloss.Color("#A6E3A1") // healthy
	colorYellow   = lipgloss.Color("#F9E2AF") // warning
	colorRed      = lipgloss.Color("#F38BA8") // critical
	colorLavender = lipgloss.Color("#B4BEFE") // titles
	colorTeal     = lipgloss.Color("#94E2D5") // secondary highlight

	colorOK   = colorGreen
	colorWarn = colorYellow
	colorCrit = colorRed
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorLavender)

	brandStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorSubtext)

	valueStyle = lipgloss.NewStyle().
			Foreground(colorText)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	tealStyle = lipgloss.NewStyle().
			Foreground(colorTeal)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(1, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	sparklineStyle = lipgloss.NewStyle().
			Foreground(colorTeal)

	gaugeTrackStyle = lipgloss.NewStyle().
			Foreground(colorSurface1)
)
