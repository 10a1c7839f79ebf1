package backend

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// KindTransport covers network failures and responses we could not read.
	KindTransport Kind = iota
	// KindRejected means the backend answered and said no.
	KindRejected
)

func (k Kind) String() string {
	if k == KindRejected {
		return "rejected"
	}
	return "transport"
}

// Error is returned by every Client call that does not succeed.
type Error struct {
	Op      string
	Kind    Kind
	Status  int
	Message string // server message, empty for most transport failures
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %s: %v", e.Op, e.Kind, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// ServerMessage returns the backend's message carried by err, if any.
func ServerMessage(err error) string {
	var be *Error
	if errors.As(err, &be) {
		return be.Message
	}
	return ""
}

// IsRejected reports whether err is a backend-reported failure.
func IsRejected(err error) bool {
	var be *Error
	return errors.As(err, &be) && be.Kind == KindRejected
}
