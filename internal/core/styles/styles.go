// Package styles provides shared lipgloss styles for CLI and TUI components.
package styles

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// Palette defines a minimal semantic theme palette.
type Palette struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Surface    lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color

	// Glamour names the glamour style used for markdown bodies.
	Glamour string
}

// DefaultTheme is the name of the default theme.
const DefaultTheme = "tokyo-night"

// themes holds the built-in named palettes.
var themes = map[string]Palette{
	"tokyo-night": {
		Primary:    lipgloss.Color("#7aa2f7"),
		Secondary:  lipgloss.Color("#7dcfff"),
		Foreground: lipgloss.Color("#c0caf5"),
		Muted:      lipgloss.Color("#565f89"),
		Surface:    lipgloss.Color("#3b4261"),
		Success:    lipgloss.Color("#9ece6a"),
		Warning:    lipgloss.Color("#e0af68"),
		Error:      lipgloss.Color("#f7768e"),
		Glamour:    "tokyo-night",
	},
	"gruvbox": {
		Primary:    lipgloss.Color("#83a598"),
		Secondary:  lipgloss.Color("#8ec07c"),
		Foreground: lipgloss.Color("#ebdbb2"),
		Muted:      lipgloss.Color("#665c54"),
		Surface:    lipgloss.Color("#3c3836"),
		Success:    lipgloss.Color("#b8bb26"),
		Warning:    lipgloss.Color("#fabd2f"),
		Error:      lipgloss.Color("#fb4934"),
		Glamour:    "dark",
	},
	"light": {
		Primary:    lipgloss.Color("#2e7de9"),
		Secondary:  lipgloss.Color("#007197"),
		Foreground: lipgloss.Color("#3760bf"),
		Muted:      lipgloss.Color("#848cb5"),
		Surface:    lipgloss.Color("#c4c8da"),
		Success:    lipgloss.Color("#587539"),
		Warning:    lipgloss.Color("#8c6c3e"),
		Error:      lipgloss.Color("#f52a65"),
		Glamour:    "light",
	},
}

// ThemeNames returns sorted names of all built-in themes.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetPalette returns the palette for the given theme name.
func GetPalette(name string) (Palette, bool) {
	p, ok := themes[name]
	return p, ok
}

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

// Style exports.
var (
	// CLI styles.
	SuccessStyle lipgloss.Style
	InfoStyle    lipgloss.Style
	WarnStyle    lipgloss.Style
	ErrorStyle   lipgloss.Style
	MutedStyle   lipgloss.Style

	// TUI styles.
	TitleStyle          lipgloss.Style
	BadgeStyle          lipgloss.Style
	SelectedBorderStyle lipgloss.Style
	NormalStyle         lipgloss.Style
	SelectedStyle       lipgloss.Style
	UnreadStyle         lipgloss.Style
	KeyStyle            lipgloss.Style
	TimeStyle           lipgloss.Style
	BodyStyle           lipgloss.Style
	PendingStyle        lipgloss.Style
	RouteStyle          lipgloss.Style
	HelpStyle           lipgloss.Style
)

func init() {
	SetTheme(themes[DefaultTheme])
}

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	SuccessStyle = lipgloss.NewStyle().Foreground(p.Success)
	InfoStyle = lipgloss.NewStyle().Foreground(p.Primary)
	WarnStyle = lipgloss.NewStyle().Foreground(p.Warning)
	ErrorStyle = lipgloss.NewStyle().Foreground(p.Error).Bold(true)
	MutedStyle = lipgloss.NewStyle().Foreground(p.Muted)

	TitleStyle = lipgloss.NewStyle().
		Foreground(p.Primary).
		Bold(true)
	BadgeStyle = lipgloss.NewStyle().
		Foreground(p.Surface).
		Background(p.Warning).
		Bold(true).
		Padding(0, 1)
	SelectedBorderStyle = lipgloss.NewStyle().
		Foreground(p.Primary)
	NormalStyle = lipgloss.NewStyle().
		Foreground(p.Foreground)
	SelectedStyle = lipgloss.NewStyle().
		Foreground(p.Primary).
		Bold(true)
	UnreadStyle = lipgloss.NewStyle().
		Foreground(p.Warning)
	KeyStyle = lipgloss.NewStyle().
		Foreground(p.Secondary)
	TimeStyle = lipgloss.NewStyle().
		Foreground(p.Muted)
	BodyStyle = lipgloss.NewStyle().
		Foreground(p.Muted)
	PendingStyle = lipgloss.NewStyle().
		Foreground(p.Secondary).
		Italic(true)
	RouteStyle = lipgloss.NewStyle().
		Foreground(p.Success)
	HelpStyle = lipgloss.NewStyle().
		Foreground(p.Muted)
}
