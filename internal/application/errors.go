package application

import (
	"errors"
	"fmt"
)

// Kind classifies failures for the transport layer.
type Kind int

const (
	KindBadRequest Kind = iota + 1
	KindUnauthorized
	KindNotFound
	KindInternal
)

// Error is returned by every service operation. Message is safe to show to clients;
// Err carries the underlying cause for logs only.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindBadRequest:
		return "Bad request: " + e.Message
	case KindUnauthorized:
		return "Unauthorized: " + e.Message
	case KindNotFound:
		return "Not found: " + e.Message
	default:
		return "Internal server error"
	}
}

func (e *Error) Unwrap() error { return e.Err }

func BadRequest(msg string) *Error   { return &Error{Kind: KindBadRequest, Message: msg} }
func Unauthorized(msg string) *Error { return &Error{Kind: KindUnauthorized, Message: msg} }
func NotFound(msg string) *Error     { return &Error{Kind: KindNotFound, Message: msg} }

func Internal(err error) *Error {
	if err == nil {
		err = errors.New("internal error")
	}
	return &Error{Kind: KindInternal, Err: err}
}

// Client-facing messages shared by handlers and tests.
const (
	MsgEmailTaken         = "Email already registered"
	MsgInvalidCredentials = "Invalid credentials"
	MsgInvalidToken       = "Invalid or missing token"
	MsgNoFile             = "No file uploaded"
	MsgInvalidMultipart   = "Invalid multipart"
	MsgInvalidFileID      = "Invalid file id"
	MsgFileNotFound       = "File not found"
	MsgContentMissing     = "File missing on disk"
	MsgInvalidVisibility  = "visibility must be public|private"
)

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func internalf(format string, err error) *Error {
	return Internal(fmt.Errorf(format+": %w", err))
}
