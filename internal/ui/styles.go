package ui

import "charm.land/lipgloss/v2"

// Color palette - Teal + Indigo theme
var (
	ColorPrimary     = lipgloss.Color("#14B8A6") // Teal
	ColorSecondary   = lipgloss.Color("#818CF8") // Indigo
	ColorMuted       = lipgloss.Color("#6B7280") // Gray
	ColorBorder      = lipgloss.Color("#374151") // Dark gray
	ColorBorderFocus = lipgloss.Color("#14B8A6") // Teal when focused
	ColorBg          = lipgloss.Color("#111827") // Dark background
	ColorText        = lipgloss.Color("#F9FAFB") // Light text
	ColorTextMuted   = lipgloss.Color("#9CA3AF") // Muted text
	ColorTextInverse = lipgloss.Color("#111827") // Dark text for light backgrounds
	ColorUser        = lipgloss.Color("#5EEAD4") // Light teal for user messages
	ColorAssistant   = lipgloss.Color("#A5B4FC") // Light indigo for assistant messages
	ColorReasoning   = lipgloss.Color("#6B7280") // Dim gray for reasoning text
	ColorWarning     = lipgloss.Color("#F59E0B") // Amber for pending tools
	ColorInfo        = lipgloss.Color("#818CF8") // Indigo for stream status
	ColorError       = lipgloss.Color("#EF4444") // Red for errors
)

// Header styles
var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Background(ColorPrimary).
			Padding(0, 1)
)

// Footer styles
var (
	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	FooterKeyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSecondary)

	FooterDescStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)
)

// Tab bar styles
var (
	TabStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	TabActiveStyle = lipgloss.NewStyle().
			Background(ColorPrimary).
			Foreground(ColorTextInverse).
			Bold(true).
			Padding(0, 1)

	TabStreamingStyle = lipgloss.NewStyle().
				Foreground(ColorInfo)

	TabBarStyle = lipgloss.NewStyle().
			BorderBottom(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(ColorBorder)
)

// Panel styles
var (
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	PanelFocusedStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorBorderFocus)
)

// Chat styles
var (
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
)

// Modal styles
var (
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
				Background(ColorPrimary).
				Foreground(ColorText).
				Bold(true).
				Padding(0, 1)

	ModalItemStyle = lipgloss.NewStyle().
			Padding(0, 1)
)

// Status styles
var (
	StatusLoadingStyle = lipgloss.NewStyle().
				Foreground(ColorSecondary).
				Italic(true)

	StatusErrorStyle = lipgloss.NewStyle().
				Foreground(ColorError).
				Bold(true)

	StatusStreamStyle = lipgloss.NewStyle().
				Foreground(ColorInfo).
				Italic(true)
)

// Tool lifecycle marker styles
var (
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
)

// Markdown rendering styles (updated by regenerateStyles)
var (
	MarkdownH1Style = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(BuiltinThemes[DefaultTheme].MarkdownH1)).
			MarginTop(1)

	MarkdownH2Style = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(BuiltinThemes[DefaultTheme].MarkdownH2)).
			MarginTop(1)

	MarkdownH3Style = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(BuiltinThemes[DefaultTheme].MarkdownH3))

	MarkdownInlineCodeStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(BuiltinThemes[DefaultTheme].MarkdownCode)).
				Background(lipgloss.Color(BuiltinThemes[DefaultTheme].MarkdownCodeBg))

	MarkdownCodeBlockStyle = lipgloss.NewStyle().
				Background(lipgloss.Color(BuiltinThemes[DefaultTheme].MarkdownCodeBg))

	MarkdownListBulletStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(BuiltinThemes[DefaultTheme].MarkdownListItem))

	MarkdownLinkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(BuiltinThemes[DefaultTheme].MarkdownLink)).
			Underline(true)
)
