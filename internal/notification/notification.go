// Package notification provides cross-platform desktop notifications.
// It uses the beeep library to send notifications on macOS, Linux, and Windows.
package notification

import (
	"github.com/gen2brain/beeep"

	"github.com/pintaildata/pintail/internal/logger"
)

// Send sends a desktop notification with the given title and message.
// On macOS, it uses terminal-notifier or AppleScript.
// On Linux, it uses D-Bus or notify-send.
// On Windows, it uses the Windows Runtime COM API.
func Send(title, message string) error {
	log := logger.ComponentLogger("Notification")
	log.Debug("sending notification", "title", title, "message", message)
	// Empty icon path, beeep picks platform defaults.
	err := beeep.Notify(title, message, "")
	if err != nil {
		log.Warn("failed to send notification", "error", err)
	}
	return err
}

// RunCompleted notifies that an agent run finished for a conversation.
func RunCompleted(conversationTitle string) error {
	if conversationTitle == "" {
		conversationTitle = "Conversation"
	}
	return Send("Pintail", conversationTitle+" has an answer")
}

// RunFailed notifies that an agent run ended with an error.
func RunFailed(conversationTitle string) error {
	if conversationTitle == "" {
		conversationTitle = "Conversation"
	}
	return Send("Pintail", conversationTitle+" failed")
}
