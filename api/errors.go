package api

import (
	"errors"
	"fmt"

	"github.com/deemkeen/postbox/request"
)

var (
	// ErrNotFound is returned when the backend has no such resource.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is the server-confirmed authorization mismatch.
	ErrForbidden = errors.New("forbidden")
)

// StatusError is any other non-2xx answer. Message is the trimmed body.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Message)
}

// Kind is the client-side error taxonomy.
type Kind int

const (
	KindNone Kind = iota
	KindCancelled
	KindNetwork
	KindNotFound
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindCancelled:
		return "cancelled"
	case KindNotFound:
		return "not-found"
	case KindForbidden:
		return "forbidden"
	default:
		return "network"
	}
}

// Classify maps an error returned by Client onto Kind.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case request.IsCancelled(err):
		return KindCancelled
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	default:
		return KindNetwork
	}
}
