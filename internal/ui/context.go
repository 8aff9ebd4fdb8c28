package ui

import (
	"sync"

	"github.com/pintaildata/pintail/internal/logger"
)

// ViewContext holds centralized layout calculations.
// All size calculations should go through this to avoid duplication.
type ViewContext struct {
	// Terminal dimensions
	TerminalWidth  int
	TerminalHeight int

	// Calculated dimensions
	HeaderHeight  int
	TabBarHeight  int
	FooterHeight  int
	ContentHeight int
	ChatWidth     int

	mu sync.Mutex
}

// Global view context instance
var ctx *ViewContext
var ctxOnce sync.Once

// GetViewContext returns the singleton ViewContext instance
func GetViewContext() *ViewContext {
	ctxOnce.Do(func() {
		ctx = &ViewContext{
			HeaderHeight: HeaderHeight,
			TabBarHeight: TabBarHeight,
			FooterHeight: FooterHeight,
		}
	})
	return ctx
}

// UpdateTerminalSize recalculates all dimensions when terminal size changes.
// Thread-safe; call from the main event loop on resize.
func (v *ViewContext) UpdateTerminalSize(width, height int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}
	if height < MinTerminalHeight {
		height = MinTerminalHeight
	}

	v.TerminalWidth = width
	v.TerminalHeight = height
	v.HeaderHeight = HeaderHeight
	v.TabBarHeight = TabBarHeight
	v.FooterHeight = FooterHeight

	// Content area is everything between the tab bar and the footer
	v.ContentHeight = height - v.HeaderHeight - v.TabBarHeight - v.FooterHeight
	v.ChatWidth = width

	logger.ComponentLogger("ui").Debug("terminal size updated",
		"width", width,
		"height", height,
		"contentHeight", v.ContentHeight,
	)
}

// InnerWidth returns the usable width inside a panel with borders
func (v *ViewContext) InnerWidth(panelWidth int) int {
	return panelWidth - BorderSize
}

// InnerHeight returns the usable height inside a panel with borders
func (v *ViewContext) InnerHeight(panelHeight int) int {
	return panelHeight - BorderSize
}
