package styles

import "github.com/charmbracelet/lipgloss"

// ThemedStyles contains all the lipgloss styles built from a color palette.
// This allows styles to be regenerated when the theme changes.
type ThemedStyles struct {
	// Colors from the palette
	PrimaryColor   lipgloss.Color
	SecondaryColor lipgloss.Color
	WarningColor   lipgloss.Color
	ErrorColor     lipgloss.Color
	MutedColor     lipgloss.Color
	SurfaceColor   lipgloss.Color
	TextColor      lipgloss.Color
	BorderColor    lipgloss.Color

	// Convenience styles for colors
	Primary   lipgloss.Style
	Secondary lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Muted     lipgloss.Style
	Text      lipgloss.Style

	// Header and status bar
	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	StatusBar   lipgloss.Style

	// Control state badges
	BadgeRunning  lipgloss.Style
	BadgePaused   lipgloss.Style
	BadgeStepping lipgloss.Style
	BadgeIdle     lipgloss.Style

	// Node glyphs by state
	NodeIdle    lipgloss.Style
	NodeActive  lipgloss.Style
	NodePending lipgloss.Style
	NodePaused  lipgloss.Style
	NodeError   lipgloss.Style
	NodeOffline lipgloss.Style
	NodeFocused lipgloss.Style

	// Node labels
	Label        lipgloss.Style
	LabelFocused lipgloss.Style

	// Edges and traveling tokens
	Edge          lipgloss.Style
	TokenRawFile  lipgloss.Style
	TokenMetadata lipgloss.Style
	TokenFragment lipgloss.Style
	TokenInsight  lipgloss.Style
	TokenDNA      lipgloss.Style
	TokenSecure   lipgloss.Style
	Pulse         lipgloss.Style

	// Sidebar
	Sidebar             lipgloss.Style
	SidebarTitle        lipgloss.Style
	SidebarSectionTitle lipgloss.Style
	SidebarEntry        lipgloss.Style
	SidebarEntryDone    lipgloss.Style

	// Help bar
	HelpBar  lipgloss.Style
	HelpKey  lipgloss.Style
	HelpDesc lipgloss.Style
}

// NewThemedStyles builds the full style set from a palette.
func NewThemedStyles(p *ColorPalette) *ThemedStyles {
	if p == nil {
		p = DefaultPalette()
	}

	badge := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	return &ThemedStyles{
		PrimaryColor:   p.Primary,
		SecondaryColor: p.Secondary,
		WarningColor:   p.Warning,
		ErrorColor:     p.Error,
		MutedColor:     p.Muted,
		SurfaceColor:   p.Surface,
		TextColor:      p.Text,
		BorderColor:    p.Border,

		Primary:   lipgloss.NewStyle().Foreground(p.Primary),
		Secondary: lipgloss.NewStyle().Foreground(p.Secondary),
		Warning:   lipgloss.NewStyle().Foreground(p.Warning),
		Error:     lipgloss.NewStyle().Foreground(p.Error),
		Muted:     lipgloss.NewStyle().Foreground(p.Muted),
		Text:      lipgloss.NewStyle().Foreground(p.Text),

		Header: lipgloss.NewStyle().
			Foreground(p.Text).
			Background(p.Surface).
			Padding(0, 1),
		HeaderTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Primary),
		StatusBar: lipgloss.NewStyle().
			Foreground(p.Muted).
			Background(p.Surface).
			Padding(0, 1),

		BadgeRunning:  badge.Foreground(p.Surface).Background(p.ControlRunning),
		BadgePaused:   badge.Foreground(p.Surface).Background(p.ControlPaused),
		BadgeStepping: badge.Foreground(p.Surface).Background(p.ControlStepping),
		BadgeIdle:     badge.Foreground(p.Surface).Background(p.ControlIdle),

		NodeIdle:    lipgloss.NewStyle().Foreground(p.NodeIdle),
		NodeActive:  lipgloss.NewStyle().Foreground(p.NodeActive).Bold(true),
		NodePending: lipgloss.NewStyle().Foreground(p.NodePending),
		NodePaused:  lipgloss.NewStyle().Foreground(p.NodePaused),
		NodeError:   lipgloss.NewStyle().Foreground(p.NodeError).Bold(true),
		NodeOffline: lipgloss.NewStyle().Foreground(p.NodeOffline).Faint(true),
		NodeFocused: lipgloss.NewStyle().Foreground(p.Primary).Bold(true).Underline(true),

		Label: lipgloss.NewStyle().Foreground(p.Muted),
		LabelFocused: lipgloss.NewStyle().
			Foreground(p.Text).
			Bold(true),

		Edge:          lipgloss.NewStyle().Foreground(p.Border),
		TokenRawFile:  lipgloss.NewStyle().Foreground(p.TokenRawFile).Bold(true),
		TokenMetadata: lipgloss.NewStyle().Foreground(p.TokenMetadata).Bold(true),
		TokenFragment: lipgloss.NewStyle().Foreground(p.TokenFragment).Bold(true),
		TokenInsight:  lipgloss.NewStyle().Foreground(p.TokenInsight).Bold(true),
		TokenDNA:      lipgloss.NewStyle().Foreground(p.TokenDNA).Bold(true),
		TokenSecure:   lipgloss.NewStyle().Foreground(p.TokenSecure).Bold(true),
		Pulse:         lipgloss.NewStyle().Foreground(p.Pulse).Bold(true),

		Sidebar: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Border).
			Padding(0, 1),
		SidebarTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Primary),
		SidebarSectionTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Muted),
		SidebarEntry:     lipgloss.NewStyle().Foreground(p.Text),
		SidebarEntryDone: lipgloss.NewStyle().Foreground(p.Muted).Strikethrough(true),

		HelpBar:  lipgloss.NewStyle().Foreground(p.Muted),
		HelpKey:  lipgloss.NewStyle().Foreground(p.Secondary).Bold(true),
		HelpDesc: lipgloss.NewStyle().Foreground(p.Muted),
	}
}
