package ui

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/mattn/go-runewidth"
)

// TabItem is one entry in the tab bar.
type TabItem struct {
	Title     string
	Active    bool
	Streaming bool // a run is in flight for this tab
	Loading   bool // detail fetch in flight
}

// TabBar renders the single-line strip of open tabs below the header.
type TabBar struct {
	width int
	tabs  []TabItem
}

// NewTabBar creates an empty tab bar.
func NewTabBar() *TabBar {
	return &TabBar{}
}

// SetWidth sets the bar width.
func (b *TabBar) SetWidth(width int) {
	b.width = width
}

// SetTabs replaces the displayed tabs.
func (b *TabBar) SetTabs(tabs []TabItem) {
	b.tabs = tabs
}

// View renders the tab bar.
func (b *TabBar) View() string {
	if len(b.tabs) == 0 {
		empty := TabStyle.Render("no open conversations, press ctrl+t")
		return TabBarStyle.Width(b.width).Render(empty)
	}

	parts := make([]string, 0, len(b.tabs))
	for i, tab := range b.tabs {
		parts = append(parts, b.renderTab(i+1, tab))
	}
	content := strings.Join(parts, TabSeparator)
	return TabBarStyle.Width(b.width).Render(content)
}

func (b *TabBar) renderTab(number int, tab TabItem) string {
	title := runewidth.Truncate(tab.Title, TabTitleWidth, "…")
	if title == "" {
		title = "untitled"
	}

	label := fmt.Sprintf("%d %s", number, title)
	switch {
	case tab.Streaming:
		label += " ●"
	case tab.Loading:
		label += " ◌"
	}

	if tab.Active {
		return TabActiveStyle.Render(label)
	}
	if tab.Streaming {
		return TabStreamingStyle.Padding(0, 1).Render(label)
	}
	return TabStyle.Render(label)
}

// Width reports the rendered width of the bar for layout checks.
func (b *TabBar) Width() int {
	return lipgloss.Width(b.View())
}
