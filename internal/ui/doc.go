// Package ui provides the user interface components for the Pintail TUI.
//
// # Overview
//
// The ui package implements the visual components of Pintail using the
// Bubble Tea framework and Lipgloss styling library. It follows the
// Model-Update-View pattern established by Bubble Tea.
//
// # Layout System
//
// The layout is organized as follows:
//
//	┌─────────────────────────────────────────────────────┐
//	│ Header (1 line)                                     │
//	├─────────────────────────────────────────────────────┤
//	│ Tab bar (1 line)                                    │
//	├─────────────────────────────────────────────────────┤
//	│                                                     │
//	│                 Conversation Panel                  │
//	│                                                     │
//	├─────────────────────────────────────────────────────┤
//	│ Prompt input (3 lines + border)                     │
//	├─────────────────────────────────────────────────────┤
//	│ Footer (1 line)                                     │
//	└─────────────────────────────────────────────────────┘
//
// # Components
//
// ViewContext: Singleton that manages centralized layout calculations.
// All size calculations should go through ViewContext to ensure consistency.
//
// Header: Displays the application title and the active conversation title.
// Uses a gradient background with the primary color.
//
// TabBar: One line listing the open tabs in order, with the active tab
// highlighted and a streaming marker on tabs with a run in flight.
//
// Chat: The conversation panel showing reconciled turns and the prompt
// input. Includes a viewport for scrolling and a textarea for input.
//
// Footer: Shows context-aware keyboard shortcuts. The displayed shortcuts
// change based on streaming state and whether a modal is open.
//
// Modal: Popup dialogs for browsing the conversation directory and editing
// workspace settings.
//
// # Styles
//
// All styles are defined in styles.go using Lipgloss and regenerate when the
// theme changes (theme.go).
package ui
