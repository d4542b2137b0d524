/*
Copyright (C) 2024  Carl-Philip Hänsch

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

// Package ptkerr defines the typed error taxonomy shared by every core
// (doc, textcodec, cache, vimage, legacy). Callers recover at well-defined
// boundaries by inspecting Kind rather than matching on message text.
package ptkerr

import "fmt"

// Kind classifies a failure the way a host UI needs to react to it.
type Kind string

const (
	KindInvalidArgument Kind = "generic.invalid_argument"
	KindInvalidState    Kind = "generic.invalid_state"
	KindOutOfMemory     Kind = "generic.out_of_memory"
	KindFail            Kind = "generic.fail"
	KindOS              Kind = "os"
	KindInvalidFormat   Kind = "anm2.invalid_format"
	KindNotLegacyScript Kind = "transcode.not_legacy_script"
)

// Well-known numeric codes surfaced to the host UI.
const (
	CodeInvalidFormat   = 3000
	CodeNotLegacyScript = 2000
)

// Error is the wire-format every fallible core operation returns on failure:
// a kind, an optional numeric code, a message, and an optional wrapped cause
// for developer diagnostics. Wrapping never collapses the original Kind.
type Error struct {
	Kind    Kind
	Code    int
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s (code %d): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WithCode builds an Error carrying a well-known numeric code, with the
// message built from a printf-style format.
func WithCode(kind Kind, code int, format string, a ...any) *Error {
	return &Error{Kind: kind, Code: code, Message: fmt.Sprintf(format, a...)}
}

// Wrap builds an Error around a lower-level cause; wrapping appends
// context but never collapses the error kind.
func Wrap(cause error, kind Kind, format string, a ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, a...), Cause: cause}
}

func InvalidArgument(format string, a ...any) *Error {
	return New(KindInvalidArgument, fmt.Sprintf(format, a...))
}

func InvalidState(format string, a ...any) *Error {
	return New(KindInvalidState, fmt.Sprintf(format, a...))
}

func Fail(format string, a ...any) *Error {
	return New(KindFail, fmt.Sprintf(format, a...))
}

func OS(cause error, format string, a ...any) *Error {
	return Wrap(cause, KindOS, format, a...)
}

// Is reports whether err (or anything it wraps) carries the given Kind.
func Is(err error, kind Kind) bool {
	for err != nil {
		if pe, ok := err.(*Error); ok {
			if pe.Kind == kind {
				return true
			}
			err = pe.Cause
			continue
		}
		return false
	}
	return false
}
