package tui

import "github.com/charmbracelet/lipgloss"

// linkedMarker follows a hostname linked from the current page.
const linkedMarker = "(on this page)"

// Color palette.
var (
	colorRed       = lipgloss.Color("#ff5555")
	colorGreen     = lipgloss.Color("#50fa7b")
	colorYellow    = lipgloss.Color("#f1fa8c")
	colorBlue      = lipgloss.Color("#8be9fd")
	colorPurple    = lipgloss.Color("#bd93f9")
	colorDim       = lipgloss.Color("#6272a4")
	colorBgLight   = lipgloss.Color("#343746")
	colorFg        = lipgloss.Color("#f8f8f2")
	colorBorder    = lipgloss.Color("#44475a")
	colorHighlight = lipgloss.Color("#44475a")
)

// Style definitions.
var (
	// Dialog frame
	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPurple).
			Padding(0, 1)

	dialogTitleStyle = lipgloss.NewStyle().
				Foreground(colorPurple).
				Bold(true).
				Padding(0, 0, 1, 0)

	// Hostname rows
	rowStyle = lipgloss.NewStyle().
			Foreground(colorFg)

	rowSelectedStyle = lipgloss.NewStyle().
				Foreground(colorFg).
				Background(colorHighlight).
				Bold(true)

	goodBadgeStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	badBadgeStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	noBadgeStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	scoreStyle = lipgloss.NewStyle().
			Foreground(colorYellow).
			Width(5).
			Align(lipgloss.Right)

	// linkedStyle marks hostnames the current page links to.
	linkedStyle = lipgloss.NewStyle().
			Foreground(colorBlue).
			Underline(true)

	revisionStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			PaddingLeft(12)

	// Notices
	noticeStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	// Buttons
	buttonStyle = lipgloss.NewStyle().
			Foreground(colorFg).
			Background(colorBgLight).
			Padding(0, 2).
			MarginRight(1)

	primaryButtonStyle = lipgloss.NewStyle().
				Foreground(colorBgLight).
				Background(colorBlue).
				Bold(true).
				Padding(0, 2).
				MarginRight(1)

	// Launcher
	portletStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	portletHeaderStyle = lipgloss.NewStyle().
				Foreground(colorDim).
				Italic(true)

	// Help bar
	helpStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Padding(1, 0, 0, 0)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(colorYellow)
)
