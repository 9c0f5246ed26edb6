// Package vortexerr defines the error taxonomy shared by the
// configuration-source, cache, and scheduler layers, along with the
// predicate retry/backoff logic uses to tell transient failures from
// permanent ones.
package vortexerr

import "fmt"

// Kind identifies one error category from the source-layer taxonomy.
type Kind int

const (
	KindApplicationNotFound Kind = iota
	KindProfileNotFound
	KindLabelNotFound
	KindSourceUnavailable
	KindTimeout
	KindRefreshing
	KindParse
	KindUnsupportedFormat
	KindInvalidConfig
	KindGit
	KindIo
)

func (k Kind) String() string {
	switch k {
	case KindApplicationNotFound:
		return "ApplicationNotFound"
	case KindProfileNotFound:
		return "ProfileNotFound"
	case KindLabelNotFound:
		return "LabelNotFound"
	case KindSourceUnavailable:
		return "SourceUnavailable"
	case KindTimeout:
		return "Timeout"
	case KindRefreshing:
		return "Refreshing"
	case KindParse:
		return "Parse"
	case KindUnsupportedFormat:
		return "UnsupportedFormat"
	case KindInvalidConfig:
		return "InvalidConfig"
	case KindGit:
		return "Git"
	case KindIo:
		return "Io"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type produced by the configuration
// pipeline. It wraps an optional underlying cause and exposes Kind for
// classification by callers (HTTP status mapping, retry/backoff).
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// IsTransient reports whether retry/backoff logic should treat this
// error as recoverable: SourceUnavailable, Timeout, and Refreshing are
// the transient kinds per the source-layer contract.
func (e *Error) IsTransient() bool {
	switch e.Kind {
	case KindSourceUnavailable, KindTimeout, KindRefreshing:
		return true
	default:
		return false
	}
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func ApplicationNotFound(app string) *Error {
	return New(KindApplicationNotFound, fmt.Sprintf("application %q not found", app))
}

func ProfileNotFound(app, profile string) *Error {
	return New(KindProfileNotFound, fmt.Sprintf("profile %q not found for application %q", profile, app))
}

func LabelNotFound(label string) *Error {
	return New(KindLabelNotFound, fmt.Sprintf("label %q not found", label))
}

func SourceUnavailable(reason string) *Error {
	return New(KindSourceUnavailable, reason)
}

func Timeout(seconds float64) *Error {
	return New(KindTimeout, fmt.Sprintf("operation exceeded %.1fs budget", seconds))
}

func Refreshing() *Error {
	return New(KindRefreshing, "repository is mid-transition")
}

func Parse(path, reason string) *Error {
	return New(KindParse, fmt.Sprintf("%s: %s", path, reason))
}

func UnsupportedFormat(ext string) *Error {
	return New(KindUnsupportedFormat, fmt.Sprintf("no codec for extension %q", ext))
}

func InvalidConfig(msg string) *Error {
	return New(KindInvalidConfig, msg)
}

func Git(msg string) *Error {
	return New(KindGit, msg)
}

func Io(err error) *Error {
	return Wrap(KindIo, "filesystem error", err)
}

// As reports whether err (or any error it wraps) is a *Error, returning
// it on success. It follows the single-error Unwrap chain by hand;
// errors that unwrap to a []error are not searched.
func As(err error) (*Error, bool) {
	for err != nil {
		if ve, ok := err.(*Error); ok {
			return ve, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = u.Unwrap()
	}
	return nil, false
}
