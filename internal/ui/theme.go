// Package ui provides theme management for the application.
// Themes define the color palette used throughout the UI, allowing users
// to customize the visual appearance of Pintail.
package ui

import "charm.land/lipgloss/v2"

// Theme defines a complete color palette for the application.
// Each theme provides colors for all UI elements, ensuring visual consistency.
type Theme struct {
	// Name is the display name of the theme
	Name string

	// Primary is the main accent color (used for focus, highlights, headers)
	Primary string
	// Secondary is the secondary accent color (used for assistant messages, info)
	Secondary string

	// Background colors
	Bg         string // Main background
	BgSelected string // Selected item background (defaults to Primary if empty)

	// Text colors
	Text        string // Primary text
	TextMuted   string // Secondary/muted text
	TextInverse string // Text on colored backgrounds

	// Semantic colors
	User      string // User message labels
	Assistant string // Assistant message labels
	Reasoning string // Agent reasoning text
	Warning   string // Warnings, pending tools
	Error     string // Error messages
	Info      string // Information, stream status

	// Border colors
	Border      string // Default borders
	BorderFocus string // Focused element borders (defaults to Primary if empty)

	// Markdown colors
	MarkdownH1       string // H1 headers
	MarkdownH2       string // H2 headers
	MarkdownH3       string // H3 headers
	MarkdownCode     string // Inline code
	MarkdownCodeBg   string // Code background
	MarkdownLink     string // Links
	MarkdownListItem string // List bullets

	// ChromaStyle is the chroma syntax-highlighting style for code blocks
	ChromaStyle string
}

// GetBgSelected returns the selected background color, defaulting to Primary
func (t Theme) GetBgSelected() string {
	if t.BgSelected != "" {
		return t.BgSelected
	}
	return t.Primary
}

// GetBorderFocus returns the focused border color, defaulting to Primary
func (t Theme) GetBorderFocus() string {
	if t.BorderFocus != "" {
		return t.BorderFocus
	}
	return t.Primary
}

// GetChromaStyle returns the chroma style name, defaulting to monokai
func (t Theme) GetChromaStyle() string {
	if t.ChromaStyle != "" {
		return t.ChromaStyle
	}
	return "monokai"
}

// ThemeName is a type for theme identifiers
type ThemeName string

// Available theme names
const (
	ThemeTealDepth  ThemeName = "teal-depth"
	ThemeNord       ThemeName = "nord"
	ThemeDracula    ThemeName = "dracula"
	ThemeGruvbox    ThemeName = "gruvbox"
	ThemeTokyoNight ThemeName = "tokyo-night"
	ThemeLight      ThemeName = "light"
)

// DefaultTheme is the default theme name
const DefaultTheme = ThemeTealDepth

// BuiltinThemes contains all built-in themes
var BuiltinThemes = map[ThemeName]Theme{
	ThemeTealDepth: {
		Name:             "Teal Depth",
		Primary:          "#14B8A6",
		Secondary:        "#818CF8",
		Bg:               "#111827",
		Text:             "#F9FAFB",
		TextMuted:        "#9CA3AF",
		TextInverse:      "#111827",
		User:             "#5EEAD4",
		Assistant:        "#A5B4FC",
		Reasoning:        "#6B7280",
		Warning:          "#F59E0B",
		Error:            "#EF4444",
		Info:             "#818CF8",
		Border:           "#374151",
		MarkdownH1:       "#5EEAD4",
		MarkdownH2:       "#99F6E4",
		MarkdownH3:       "#A5B4FC",
		MarkdownCode:     "#67E8F9",
		MarkdownCodeBg:   "#1E1E2E",
		MarkdownLink:     "#67E8F9",
		MarkdownListItem: "#14B8A6",
		ChromaStyle:      "monokai",
	},
	ThemeNord: {
		Name:             "Nord",
		Primary:          "#88C0D0",
		Secondary:        "#81A1C1",
		Bg:               "#2E3440",
		Text:             "#ECEFF4",
		TextMuted:        "#D8DEE9",
		TextInverse:      "#2E3440",
		User:             "#A3BE8C",
		Assistant:        "#88C0D0",
		Reasoning:        "#4C566A",
		Warning:          "#EBCB8B",
		Error:            "#BF616A",
		Info:             "#81A1C1",
		Border:           "#4C566A",
		MarkdownH1:       "#88C0D0",
		MarkdownH2:       "#81A1C1",
		MarkdownH3:       "#5E81AC",
		MarkdownCode:     "#A3BE8C",
		MarkdownCodeBg:   "#242933",
		MarkdownLink:     "#88C0D0",
		MarkdownListItem: "#81A1C1",
		ChromaStyle:      "nord",
	},
	ThemeDracula: {
		Name:             "Dracula",
		Primary:          "#BD93F9",
		Secondary:        "#8BE9FD",
		Bg:               "#282A36",
		Text:             "#F8F8F2",
		TextMuted:        "#6272A4",
		TextInverse:      "#282A36",
		User:             "#FF79C6",
		Assistant:        "#8BE9FD",
		Reasoning:        "#6272A4",
		Warning:          "#FFB86C",
		Error:            "#FF5555",
		Info:             "#8BE9FD",
		Border:           "#44475A",
		MarkdownH1:       "#BD93F9",
		MarkdownH2:       "#FF79C6",
		MarkdownH3:       "#8BE9FD",
		MarkdownCode:     "#50FA7B",
		MarkdownCodeBg:   "#21222C",
		MarkdownLink:     "#8BE9FD",
		MarkdownListItem: "#BD93F9",
		ChromaStyle:      "dracula",
	},
	ThemeGruvbox: {
		Name:             "Gruvbox Dark",
		Primary:          "#FE8019",
		Secondary:        "#83A598",
		Bg:               "#282828",
		Text:             "#EBDBB2",
		TextMuted:        "#A89984",
		TextInverse:      "#282828",
		User:             "#FABD2F",
		Assistant:        "#83A598",
		Reasoning:        "#928374",
		Warning:          "#FE8019",
		Error:            "#FB4934",
		Info:             "#83A598",
		Border:           "#504945",
		MarkdownH1:       "#FE8019",
		MarkdownH2:       "#FABD2F",
		MarkdownH3:       "#83A598",
		MarkdownCode:     "#B8BB26",
		MarkdownCodeBg:   "#1D2021",
		MarkdownLink:     "#83A598",
		MarkdownListItem: "#FE8019",
		ChromaStyle:      "gruvbox",
	},
	ThemeTokyoNight: {
		Name:             "Tokyo Night",
		Primary:          "#7AA2F7",
		Secondary:        "#BB9AF7",
		Bg:               "#1A1B26",
		Text:             "#C0CAF5",
		TextMuted:        "#565F89",
		TextInverse:      "#1A1B26",
		User:             "#9ECE6A",
		Assistant:        "#7AA2F7",
		Reasoning:        "#565F89",
		Warning:          "#E0AF68",
		Error:            "#F7768E",
		Info:             "#7DCFFF",
		Border:           "#3B4261",
		MarkdownH1:       "#7AA2F7",
		MarkdownH2:       "#BB9AF7",
		MarkdownH3:       "#7DCFFF",
		MarkdownCode:     "#9ECE6A",
		MarkdownCodeBg:   "#16161E",
		MarkdownLink:     "#7DCFFF",
		MarkdownListItem: "#7AA2F7",
		ChromaStyle:      "tokyonight-night",
	},
	ThemeLight: {
		Name:             "Light",
		Primary:          "#0D9488",
		Secondary:        "#4F46E5",
		Bg:               "#FFFFFF",
		Text:             "#111827",
		TextMuted:        "#6B7280",
		TextInverse:      "#FFFFFF",
		User:             "#0F766E",
		Assistant:        "#4338CA",
		Reasoning:        "#9CA3AF",
		Warning:          "#D97706",
		Error:            "#DC2626",
		Info:             "#4F46E5",
		Border:           "#D1D5DB",
		MarkdownH1:       "#0F766E",
		MarkdownH2:       "#115E59",
		MarkdownH3:       "#4338CA",
		MarkdownCode:     "#0D9488",
		MarkdownCodeBg:   "#F3F4F6",
		MarkdownLink:     "#4F46E5",
		MarkdownListItem: "#0D9488",
		ChromaStyle:      "github",
	},
}

// currentTheme is the active theme
var currentTheme = BuiltinThemes[DefaultTheme]

// GetTheme returns a theme by name, falling back to the default
func GetTheme(name ThemeName) Theme {
	if theme, ok := BuiltinThemes[name]; ok {
		return theme
	}
	return BuiltinThemes[DefaultTheme]
}

// CurrentTheme returns the currently active theme
func CurrentTheme() Theme {
	return currentTheme
}

// SetTheme sets the active theme and regenerates all styles
func SetTheme(name ThemeName) {
	currentTheme = GetTheme(name)
	regenerateStyles()
}

// SetThemeByName sets the active theme by string name
func SetThemeByName(name string) {
	SetTheme(ThemeName(name))
}

// CurrentThemeName returns the name of the current theme
func CurrentThemeName() ThemeName {
	for name, theme := range BuiltinThemes {
		if theme.Name == currentTheme.Name {
			return name
		}
	}
	return DefaultTheme
}

// ThemeNames returns the built-in theme identifiers in a stable order
func ThemeNames() []ThemeName {
	return []ThemeName{
		ThemeTealDepth,
		ThemeNord,
		ThemeDracula,
		ThemeGruvbox,
		ThemeTokyoNight,
		ThemeLight,
	}
}

// regenerateStyles updates all style variables based on the current theme
func regenerateStyles() {
	t := currentTheme

	// Update color variables
	ColorPrimary = lipgloss.Color(t.Primary)
	ColorSecondary = lipgloss.Color(t.Secondary)
	ColorMuted = lipgloss.Color(t.TextMuted)
	ColorBorder = lipgloss.Color(t.Border)
	ColorBorderFocus = lipgloss.Color(t.GetBorderFocus())
	ColorBg = lipgloss.Color(t.Bg)
	ColorText = lipgloss.Color(t.Text)
	ColorTextMuted = lipgloss.Color(t.TextMuted)
	ColorTextInverse = lipgloss.Color(t.TextInverse)
	ColorUser = lipgloss.Color(t.User)
	ColorAssistant = lipgloss.Color(t.Assistant)
	ColorReasoning = lipgloss.Color(t.Reasoning)
	ColorWarning = lipgloss.Color(t.Warning)
	ColorInfo = lipgloss.Color(t.Info)
	ColorError = lipgloss.Color(t.Error)

	// Update header styles
	HeaderStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorText).
		Background(ColorPrimary).
		Padding(0, 1)

	// Update footer styles
	FooterStyle = lipgloss.NewStyle().
		Foreground(ColorTextMuted).
		Padding(0, 1)

	FooterKeyStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorSecondary)

	FooterDescStyle = lipgloss.NewStyle().
		Foreground(ColorTextMuted)

	// Update tab bar styles
	TabStyle = lipgloss.NewStyle().
		Foreground(ColorTextMuted).
		Padding(0, 1)

	TabActiveStyle = lipgloss.NewStyle().
		Background(lipgloss.Color(t.GetBgSelected())).
		Foreground(lipgloss.Color(t.TextInverse)).
		Bold(true).
		Padding(0, 1)

	TabStreamingStyle = lipgloss.NewStyle().
		Foreground(ColorInfo)

	TabBarStyle = lipgloss.NewStyle().
		BorderBottom(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorBorder)

	// Update panel styles
	PanelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder)

	PanelFocusedStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorderFocus)

	// Update chat styles
	ChatUserStyle = lipgloss.NewStyle().
		Foreground(ColorUser).
		Bold(true)

	ChatAssistantStyle = lipgloss.NewStyle().
		Foreground(ColorAssistant).
		Bold(true)

	ChatReasoningStyle = lipgloss.NewStyle().
		Foreground(ColorReasoning).
		Italic(true)

	ChatMessageStyle = lipgloss.NewStyle().
		Foreground(ColorText)

	ChatInputStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1)

	ChatInputFocusedStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorderFocus).
		Padding(0, 1)

	// Update modal styles
	ModalStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary).
		Padding(1, 2).
		Width(ModalWidth)

	ModalTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary).
		MarginBottom(1)

	ModalHelpStyle = lipgloss.NewStyle().
		Foreground(ColorTextMuted).
		Italic(true).
		MarginTop(1)

	ModalSelectedStyle = lipgloss.NewStyle().
		Background(lipgloss.Color(t.GetBgSelected())).
		Foreground(lipgloss.Color(t.Text)).
		Bold(true).
		Padding(0, 1)

	ModalItemStyle = lipgloss.NewStyle().
		Padding(0, 1)

	// Update status styles
	StatusLoadingStyle = lipgloss.NewStyle().
		Foreground(ColorSecondary).
		Italic(true)

	StatusErrorStyle = lipgloss.NewStyle().
		Foreground(ColorError).
		Bold(true)

	StatusStreamStyle = lipgloss.NewStyle().
		Foreground(ColorInfo).
		Italic(true)

	// Update tool marker styles
	ToolPendingStyle = lipgloss.NewStyle().
		Foreground(ColorWarning)

	ToolCompletedStyle = lipgloss.NewStyle().
		Foreground(ColorSecondary)

	ToolErrorStyle = lipgloss.NewStyle().
		Foreground(ColorError)

	ToolNameStyle = lipgloss.NewStyle().
		Foreground(ColorText).
		Bold(true)

	ToolDetailStyle = lipgloss.NewStyle().
		Foreground(ColorTextMuted)

	// Update markdown styles
	MarkdownH1Style = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(t.MarkdownH1)).
		MarginTop(1)

	MarkdownH2Style = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(t.MarkdownH2)).
		MarginTop(1)

	MarkdownH3Style = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(t.MarkdownH3))

	MarkdownInlineCodeStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.MarkdownCode)).
		Background(lipgloss.Color(t.MarkdownCodeBg))

	MarkdownCodeBlockStyle = lipgloss.NewStyle().
		Background(lipgloss.Color(t.MarkdownCodeBg))

	MarkdownListBulletStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.MarkdownListItem))

	MarkdownLinkStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(t.MarkdownLink)).
		Underline(true)
}
