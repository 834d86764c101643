package tui

import "github.com/charmbracelet/lipgloss"

// Theme holds the color palette used to render the transcript and input bar.
type Theme struct {
	Muted     lipgloss.Color
	Accent    lipgloss.Color
	Primary   lipgloss.Color
	AI        lipgloss.Color
	Separator lipgloss.Color

	Text    lipgloss.Color
	TextDim lipgloss.Color

	Success lipgloss.Color
	Error   lipgloss.Color
	Warning lipgloss.Color
}

// DarkTheme is the palette used on dark terminal backgrounds.
var DarkTheme = Theme{
	Muted:     lipgloss.Color("#6B7280"),
	Accent:    lipgloss.Color("#F59E0B"),
	Primary:   lipgloss.Color("#60A5FA"),
	AI:        lipgloss.Color("#A78BFA"),
	Separator: lipgloss.Color("#4B5563"),
	Text:      lipgloss.Color("#D1D5DB"),
	TextDim:   lipgloss.Color("#9CA3AF"),
	Success:   lipgloss.Color("#10B981"),
	Error:     lipgloss.Color("#EF4444"),
	Warning:   lipgloss.Color("#FBBF24"),
}

// LightTheme is the palette used on light terminal backgrounds.
var LightTheme = Theme{
	Muted:     lipgloss.Color("#6B7280"),
	Accent:    lipgloss.Color("#D97706"),
	Primary:   lipgloss.Color("#2563EB"),
	AI:        lipgloss.Color("#7C3AED"),
	Separator: lipgloss.Color("#D1D5DB"),
	Text:      lipgloss.Color("#1F2937"),
	TextDim:   lipgloss.Color("#4B5563"),
	Success:   lipgloss.Color("#059669"),
	Error:     lipgloss.Color("#DC2626"),
	Warning:   lipgloss.Color("#B45309"),
}

// CurrentTheme is the active palette, chosen once at startup from the
// terminal's detected background.
var CurrentTheme = pickTheme()

func pickTheme() Theme {
	if lipgloss.HasDarkBackground() {
		return DarkTheme
	}
	return LightTheme
}

var (
	userStyle      = lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(CurrentTheme.AI)
	noticeStyle    = lipgloss.NewStyle().Foreground(CurrentTheme.TextDim).Italic(true)
	toolStyle      = lipgloss.NewStyle().Foreground(CurrentTheme.Accent)
	errorStyle     = lipgloss.NewStyle().Foreground(CurrentTheme.Error)
	agentStyle     = lipgloss.NewStyle().Foreground(CurrentTheme.Warning)
	separatorStyle = lipgloss.NewStyle().Foreground(CurrentTheme.Separator)
	inputPromptStl = lipgloss.NewStyle().Foreground(CurrentTheme.Primary).Bold(true)
	statusStyle    = lipgloss.NewStyle().Foreground(CurrentTheme.Muted)
)
