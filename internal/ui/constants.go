// Package ui provides constants for layout calculations and configuration.
package ui

// Layout constants for panel sizing
const (
	// HeaderHeight is the height of the header in lines
	HeaderHeight = 1

	// TabBarHeight is the height of the tab bar in lines
	TabBarHeight = 1

	// FooterHeight is the height of the footer in lines
	FooterHeight = 1

	// BorderSize is the total border width (1 on each side)
	BorderSize = 2

	// TextareaHeight is the number of lines for the prompt input textarea
	TextareaHeight = 3

	// TextareaBorderHeight is the border size around the textarea
	TextareaBorderHeight = 2

	// InputPaddingWidth is the horizontal padding inside the input area (Padding(0, 1) = 1 left + 1 right)
	InputPaddingWidth = 2

	// InputTotalHeight is the total height of the input area (textarea + borders)
	InputTotalHeight = TextareaHeight + TextareaBorderHeight

	// DefaultWrapWidth is the default width for text wrapping when viewport width is unknown
	DefaultWrapWidth = 80

	// MinTerminalWidth is the smallest width the layout is computed for
	MinTerminalWidth = 40

	// MinTerminalHeight is the smallest height the layout is computed for
	MinTerminalHeight = 12
)

// Tab bar rendering
const (
	// TabTitleWidth is the display width a tab title is truncated to in the bar
	TabTitleWidth = 18

	// TabSeparator separates tabs in the bar
	TabSeparator = " "
)

// Modal dimensions
const (
	// ModalWidth is the default width of modals
	ModalWidth = 60
)
