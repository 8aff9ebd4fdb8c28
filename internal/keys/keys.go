// Package keys provides string constants for Bubble Tea v2 key press events.
//
// These constants are derived from tea.KeyPressMsg{Code: tea.KeyXxx}.String()
// and are guaranteed to match the actual runtime values. Using these constants
// instead of hardcoded strings prevents typo bugs (e.g., "escape" vs "esc").
//
// Single-character keys like "y" or "?" are not included here because they
// are unambiguous and cannot be misspelled in a meaningful way.
package keys

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
)

// Navigation keys
var (
	Up     = tea.KeyPressMsg{Code: tea.KeyUp}.String()     // "up"
	Down   = tea.KeyPressMsg{Code: tea.KeyDown}.String()   // "down"
	Left   = tea.KeyPressMsg{Code: tea.KeyLeft}.String()   // "left"
	Right  = tea.KeyPressMsg{Code: tea.KeyRight}.String()  // "right"
	Home   = tea.KeyPressMsg{Code: tea.KeyHome}.String()   // "home"
	End    = tea.KeyPressMsg{Code: tea.KeyEnd}.String()    // "end"
	PgUp   = tea.KeyPressMsg{Code: tea.KeyPgUp}.String()   // "pgup"
	PgDown = tea.KeyPressMsg{Code: tea.KeyPgDown}.String() // "pgdown"
)

// Action keys
var (
	Enter      = tea.KeyPressMsg{Code: tea.KeyEnter}.String()                      // "enter"
	ShiftEnter = (tea.KeyPressMsg{Code: tea.KeyEnter, Mod: tea.ModShift}).String() // "shift+enter"
	Tab        = tea.KeyPressMsg{Code: tea.KeyTab}.String()                        // "tab"
	ShiftTab   = (tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift}).String()   // "shift+tab"
	Escape     = tea.KeyPressMsg{Code: tea.KeyEscape}.String()                     // "esc"
)

// Ctrl combinations
var (
	CtrlC = (tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl}).String() // "ctrl+c"
	CtrlT = (tea.KeyPressMsg{Code: 't', Mod: tea.ModCtrl}).String() // "ctrl+t"
	CtrlW = (tea.KeyPressMsg{Code: 'w', Mod: tea.ModCtrl}).String() // "ctrl+w"
	CtrlO = (tea.KeyPressMsg{Code: 'o', Mod: tea.ModCtrl}).String() // "ctrl+o"
	CtrlP = (tea.KeyPressMsg{Code: 'p', Mod: tea.ModCtrl}).String() // "ctrl+p"
	CtrlY = (tea.KeyPressMsg{Code: 'y', Mod: tea.ModCtrl}).String() // "ctrl+y"
	CtrlU = (tea.KeyPressMsg{Code: 'u', Mod: tea.ModCtrl}).String() // "ctrl+u"
	CtrlD = (tea.KeyPressMsg{Code: 'd', Mod: tea.ModCtrl}).String() // "ctrl+d"
	CtrlR = (tea.KeyPressMsg{Code: 'r', Mod: tea.ModCtrl}).String() // "ctrl+r"
)

// AltDigit returns the key string for alt+<digit>, used for tab switching.
func AltDigit(n int) string {
	return (tea.KeyPressMsg{Code: rune('0' + n), Mod: tea.ModAlt}).String()
}

// IsAltDigit reports whether the key string is alt+1 through alt+9, returning
// the digit.
func IsAltDigit(key string) (int, bool) {
	for n := 1; n <= 9; n++ {
		if key == fmt.Sprintf("alt+%d", n) {
			return n, true
		}
	}
	return 0, false
}
