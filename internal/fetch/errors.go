package fetch

import (
	"errors"
	"fmt"
)

// Kind is the closed set of failure categories the controller reports.
type Kind int

const (
	KindUnknown Kind = iota
	KindTransport
	KindTimeout
	KindServer
	KindClient
	KindNotFound
	KindMalformed
	KindOffline
	KindMaxRetries
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "network transport"
	case KindTimeout:
		return "timeout"
	case KindServer:
		return "server error"
	case KindClient:
		return "client error"
	case KindNotFound:
		return "not found"
	case KindMalformed:
		return "malformed response"
	case KindOffline:
		return "offline"
	case KindMaxRetries:
		return "max retries reached"
	default:
		return "unknown"
	}
}

// Retryable reports whether failures of this kind warrant an automatic retry.
func (k Kind) Retryable() bool {
	switch k {
	case KindTransport, KindTimeout, KindServer, KindOffline:
		return true
	default:
		return false
	}
}

// Reason maps the kind onto the category shown to the user.
func (k Kind) Reason() Reason {
	switch k {
	case KindTransport, KindOffline:
		return ReasonOffline
	case KindTimeout:
		return ReasonTimeout
	case KindServer:
		return ReasonServerError
	default:
		return ReasonTerminal
	}
}

// Reason is the user-facing failure category.
type Reason string

const (
	ReasonNone        Reason = ""
	ReasonOffline     Reason = "offline"
	ReasonServerError Reason = "server-error"
	ReasonTimeout     Reason = "timeout"
	ReasonTerminal    Reason = "terminal"
)

// Error is a classified failure. Err holds the underlying cause.
type Error struct {
	Kind     Kind
	Status   int // HTTP status, zero when unknown
	Attempts int // total tries, set for KindMaxRetries
	Err      error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindMaxRetries && e.Err != nil:
		return fmt.Sprintf("max retries reached after %d attempts: %v", e.Attempts, e.Err)
	case e.Kind == KindMaxRetries:
		return fmt.Sprintf("max retries reached after %d attempts", e.Attempts)
	case e.Status > 0 && e.Err != nil:
		return fmt.Sprintf("%s (status %d): %v", e.Kind, e.Status, e.Err)
	case e.Status > 0:
		return fmt.Sprintf("%s (status %d)", e.Kind, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrOffline is the cause recorded when a fetch is attempted while the
// connectivity monitor reports offline.
var ErrOffline = errors.New("network offline")

// KindOf returns the kind of a classified error, or KindUnknown.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// IsRetriesExhausted reports whether err is the terminal error raised when the
// retry budget ran out.
func IsRetriesExhausted(err error) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Kind == KindMaxRetries
}
