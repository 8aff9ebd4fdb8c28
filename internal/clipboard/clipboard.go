// Package clipboard wraps the system clipboard for copying answers out of a
// conversation and pasting text into the prompt.
package clipboard

import (
	"fmt"

	"golang.design/x/clipboard"

	"github.com/pintaildata/pintail/internal/logger"
)

var initialized bool

// Init initializes the clipboard. Must be called before other functions.
// Safe to call multiple times.
func Init() error {
	if initialized {
		return nil
	}
	if err := clipboard.Init(); err != nil {
		logger.ComponentLogger("Clipboard").Warn("failed to initialize", "error", err)
		return fmt.Errorf("failed to initialize clipboard: %w", err)
	}
	initialized = true
	return nil
}

// WriteText puts text on the clipboard.
func WriteText(text string) error {
	if !initialized {
		if err := Init(); err != nil {
			return err
		}
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
	logger.ComponentLogger("Clipboard").Debug("copied text", "bytes", len(text))
	return nil
}

// ReadText reads text from the clipboard. Returns "" when the clipboard
// holds no text.
func ReadText() (string, error) {
	if !initialized {
		if err := Init(); err != nil {
			return "", err
		}
	}
	data := clipboard.Read(clipboard.FmtText)
	if data == nil {
		return "", nil
	}
	return string(data), nil
}
