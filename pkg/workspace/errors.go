package workspace

import (
	"errors"
	"fmt"
)

// Service-level sentinel errors.
var (
	// ErrInvalidProvider means no registered provider matches the ID.
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrInvalidHandle means the handle is nil, invalidated or failed.
	ErrInvalidHandle = errors.New("invalid handle")
)

// Provider-level sentinel errors. Providers wrap these; callers match them
// through *Error with errors.Is.
var (
	ErrWorkspaceNotFound  = errors.New("workspace not found")
	ErrCollectionNotFound = errors.New("collection not found")
	ErrRequestNotFound    = errors.New("request not found")
	ErrInvalidDestination = errors.New("invalid destination")
	ErrConflict           = errors.New("version conflict")
	ErrUnsupported        = errors.New("operation not supported by provider")
)

// Kind classifies an Error.
type Kind int

const (
	// KindInvalidProvider is a routing failure: the provider ID does not
	// match a registered provider.
	KindInvalidProvider Kind = iota + 1

	// KindInvalidHandle is a handle that cannot be dispatched.
	KindInvalidHandle

	// KindProvider wraps an error reported by the provider itself.
	KindProvider
)

func (k Kind) String() string {
	switch k {
	case KindInvalidProvider:
		return "INVALID_PROVIDER"
	case KindInvalidHandle:
		return "INVALID_HANDLE"
	case KindProvider:
		return "PROVIDER_ERROR"
	default:
		return "UNKNOWN"
	}
}

// Error is the uniform error returned by the workspace service.
type Error struct {
	Op         string // service operation, e.g. "CreateRESTRequest"
	Kind       Kind
	ProviderID string
	Msg        string
	Err        error
}

func (e *Error) Error() string {
	s := e.Op + ": "
	if e.ProviderID != "" {
		s += "provider " + e.ProviderID + ": "
	}
	if e.Msg != "" {
		s += e.Msg + ": "
	}
	if e.Err != nil {
		s += e.Err.Error()
	} else {
		s += e.Kind.String()
	}
	return s
}

func (e *Error) Unwrap() error {
	return e.Err
}

// InvalidProvider returns a KindInvalidProvider error.
func InvalidProvider(op, providerID string) *Error {
	return &Error{
		Op:         op,
		Kind:       KindInvalidProvider,
		ProviderID: providerID,
		Err:        ErrInvalidProvider,
	}
}

// InvalidHandle returns a KindInvalidHandle error. what names the handle,
// e.g. "workspace".
func InvalidHandle(op, what, detail string) *Error {
	msg := what + " handle"
	if detail != "" {
		msg += " " + detail
	}
	return &Error{
		Op:   op,
		Kind: KindInvalidHandle,
		Msg:  msg,
		Err:  ErrInvalidHandle,
	}
}

// ProviderError wraps err as a KindProvider error. Returns nil if err is nil.
func ProviderError(op, providerID string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{
		Op:         op,
		Kind:       KindProvider,
		ProviderID: providerID,
		Err:        err,
	}
}

// KindOf returns the Kind of err, or 0 if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsInvalidProvider reports whether err is a routing failure.
func IsInvalidProvider(err error) bool {
	return KindOf(err) == KindInvalidProvider
}

// IsInvalidHandle reports whether err was caused by an unusable handle.
func IsInvalidHandle(err error) bool {
	return KindOf(err) == KindInvalidHandle
}

// IsProviderError reports whether err came from a provider.
func IsProviderError(err error) bool {
	return KindOf(err) == KindProvider
}

// NotFoundf wraps a not-found sentinel with the missing ID.
func NotFoundf(sentinel error, id string) error {
	return fmt.Errorf("%w: %q", sentinel, id)
}
