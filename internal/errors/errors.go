// Package errors provides structured error types for pintail.
// These errors provide context about what operation failed and where.
package errors

import (
	"errors"
	"fmt"
)

// Op describes an operation, usually as "package.function".
type Op string

// Kind categorizes the type of error.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindInvalid
	KindCapacity
	KindFetch
	KindSubmission
	KindStream
	KindConfig
	KindNetwork
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindInvalid:
		return "invalid"
	case KindCapacity:
		return "capacity exceeded"
	case KindFetch:
		return "fetch failed"
	case KindSubmission:
		return "submission failed"
	case KindStream:
		return "stream error"
	case KindConfig:
		return "configuration error"
	case KindNetwork:
		return "network error"
	case KindIO:
		return "I/O error"
	default:
		return "unknown error"
	}
}

// Error is the structured error type for pintail.
type Error struct {
	Op      Op     // Operation that failed
	Kind    Kind   // Category of error
	Err     error  // Underlying error
	Context string // Additional context
}

// Error returns the error message.
func (e *Error) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Context, e.Err)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// E creates a new Error. Arguments can be:
// - Op: the operation name
// - Kind: the error kind
// - string: context message
// - error: the underlying error
func E(args ...interface{}) error {
	e := &Error{}
	for _, arg := range args {
		switch a := arg.(type) {
		case Op:
			e.Op = a
		case Kind:
			e.Kind = a
		case string:
			e.Context = a
		case error:
			e.Err = a
		}
	}
	if e.Err == nil {
		e.Err = errors.New(e.Context)
		e.Context = ""
	}
	return e
}

// Is reports whether err is of the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// GetKind returns the Kind of an error.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Tab errors

// TabLimitReached is returned by addTab when the registry is full.
// It is user-facing and non-fatal: the action is rejected, nothing changes.
func TabLimitReached(max int) error {
	return E(Op("chat.AddTab"), KindCapacity, fmt.Sprintf("tab limit of %d reached, close a tab first", max))
}

// Session errors

func SessionNotFound(id string) error {
	return E(Op("api.GetSessionDetail"), KindNotFound, fmt.Sprintf("session %s not found", id))
}

func SessionFetchFailed(id string, err error) error {
	return E(Op("api.GetSessionDetail"), KindFetch, fmt.Sprintf("failed to fetch session %s", id), err)
}

func SessionListFailed(err error) error {
	return E(Op("api.ListSessions"), KindFetch, "failed to list sessions", err)
}

// Submission errors

func EmptyPrompt() error {
	return E(Op("chat.Submit"), KindInvalid, "prompt is empty")
}

func CreateConversationFailed(err error) error {
	return E(Op("api.CreateConversation"), KindSubmission, "failed to create conversation", err)
}

func AppendMessageFailed(sessionID string, err error) error {
	return E(Op("api.AppendMessage"), KindSubmission, fmt.Sprintf("failed to append to session %s", sessionID), err)
}

// Stream errors

func StreamFailed(runID string, err error) error {
	return E(Op("stream.Attach"), KindStream, fmt.Sprintf("event stream for run %s failed", runID), err)
}

// Config errors

func ConfigLoadFailed(path string, err error) error {
	return E(Op("config.Load"), KindConfig, fmt.Sprintf("failed to load config from %s", path), err)
}

func ConfigSaveFailed(path string, err error) error {
	return E(Op("config.Save"), KindConfig, fmt.Sprintf("failed to save config to %s", path), err)
}
