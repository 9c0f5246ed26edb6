// Package skerr wraps errors with the call site's file:line so logs and
// error messages carry enough context to find the origin without a
// full stack trace library.
package skerr

import (
	"fmt"
	"runtime"
)

type wrapped struct {
	msg string
	err error
}

func (w *wrapped) Error() string { return w.msg }
func (w *wrapped) Unwrap() error { return w.err }

func location(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "???:1"
	}
	return fmt.Sprintf("%s:%d", file, line)
}

// Wrap annotates err with the caller's location. Returns nil if err is nil.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	return &wrapped{msg: fmt.Sprintf("%s: %s", location(2), err.Error()), err: err}
}

// Wrapf annotates err with the caller's location and a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &wrapped{msg: fmt.Sprintf("%s: %s: %s", location(2), fmt.Sprintf(format, args...), err.Error()), err: err}
}

// Fmt builds a new error carrying the caller's location, for error
// origin sites that have no underlying error to wrap.
func Fmt(format string, args ...interface{}) error {
	return &wrapped{msg: fmt.Sprintf("%s: %s", location(2), fmt.Sprintf(format, args...))}
}

// CallStack returns up to height caller locations starting at startAt
// frames up, matching the depth-selection convention used elsewhere in
// this codebase's logging helpers.
func CallStack(height, startAt int) []string {
	out := make([]string, 0, height)
	for i := 0; i < height; i++ {
		out = append(out, location(startAt+i+1))
	}
	return out
}
