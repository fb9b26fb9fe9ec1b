// Package norerr defines the error-kind taxonomy shared across norflash's
// core subsystems so that CLI reporting and internal retry logic can branch
// on what kind of failure occurred rather than matching error strings.
package norerr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure by the taxonomy: argument errors are the
// caller's fault, environment errors are the host's fault, and so on down
// to mismatches discovered by verification.
type Kind int

const (
	// KindArgument covers unknown options, missing files, contradictory flags.
	KindArgument Kind = iota
	// KindEnvironment covers lock/log-file/powerd failures.
	KindEnvironment
	// KindNotFound covers unknown chip/region names, no chip detected.
	KindNotFound
	// KindAmbiguous covers multiple matches, multiple FMAPs, overlapping regions.
	KindAmbiguous
	// KindUnsupported covers a chip lacking a requested capability.
	KindUnsupported
	// KindTransport covers underlying master read/write/command failures.
	KindTransport
	// KindMismatch covers verify failures and status-register read-back mismatches.
	KindMismatch
	// KindLayoutInvalid covers malformed layout files and out-of-range regions.
	KindLayoutInvalid
)

// String names the kind for error-message prefixes.
func (k Kind) String() string {
	switch k {
	case KindArgument:
		return "Argument"
	case KindEnvironment:
		return "Environment"
	case KindNotFound:
		return "NotFound"
	case KindAmbiguous:
		return "Ambiguous"
	case KindUnsupported:
		return "Unsupported"
	case KindTransport:
		return "Transport"
	case KindMismatch:
		return "Mismatch"
	case KindLayoutInvalid:
		return "LayoutInvalid"
	default:
		return "Unknown"
	}
}

// Error is a taxonomy-tagged, component-tagged error. Component is the
// short tag printed by the CLI ("WP:", "Layout:", "Probe:" ).
type Error struct {
	Kind      Kind
	Component string
	Msg       string
	Err       error
}

func (e *Error) Error() string {
	prefix := e.Component
	if prefix == "" {
		prefix = e.Kind.String()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a tagged error with no wrapped cause.
func New(kind Kind, component, msg string) *Error {
	return &Error{Kind: kind, Component: component, Msg: msg}
}

// Wrap creates a tagged error wrapping an existing cause.
func Wrap(kind Kind, component, msg string, err error) *Error {
	return &Error{Kind: kind, Component: component, Msg: msg, Err: err}
}

// Is reports whether the first *Error found in err's chain carries the
// given Kind; an *Error wrapped beneath that one is not consulted.
func Is(err error, kind Kind) bool {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind == kind
	}
	return false
}
