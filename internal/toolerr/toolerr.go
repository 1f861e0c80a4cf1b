// Package toolerr implements the error taxonomy used across every
// subsystem: a small closed set of Kinds, carried alongside the step index
// at which they occurred, wrapped around the underlying cause the way the
// teacher's tester package wraps filesystem and YAML errors.
package toolerr

import (
	"errors"
	"fmt"
)

// Kind is one of the taxonomy values from the error handling design.
type Kind string

const (
	ResolutionError                  Kind = "ResolutionError"
	StepUnresolved                   Kind = "StepUnresolved"
	StepTimeout                      Kind = "StepTimeout"
	PlaceholderMissing                Kind = "PlaceholderMissing"
	FileMissing                      Kind = "FileMissing"
	FileNotUtf8                      Kind = "FileNotUtf8"
	FileEscapesTempDir                Kind = "FileEscapesTempDir"
	ProcessSpawnFailed                Kind = "ProcessSpawnFailed"
	ProcessNonZeroExit                Kind = "ProcessNonZeroExit"
	ProcessZeroExitButFailureExpected Kind = "ProcessZeroExitButFailureExpected"
	ServeBindFailed                   Kind = "ServeBindFailed"
	BrowserUnavailable                Kind = "BrowserUnavailable"
	BrowserNavFailed                  Kind = "BrowserNavFailed"
	BrowserJsError                    Kind = "BrowserJsError"
	AssertionFailedInBrowser          Kind = "AssertionFailedInBrowser"
	ClickAmbiguous                    Kind = "ClickAmbiguous"
	ElementNotFound                   Kind = "ElementNotFound"
	TypeUnsupportedCharacter          Kind = "TypeUnsupportedCharacter"
	AssertionFailed                   Kind = "AssertionFailed"
	AssertionTypeMismatch             Kind = "AssertionTypeMismatch"
	SnapshotMismatch                  Kind = "SnapshotMismatch"
	VersionUnsupported                Kind = "VersionUnsupported"
	ReferenceCycle                    Kind = "ReferenceCycle"
)

// Error is a taxonomy error, optionally wrapping a cause. StepIx is -1 when
// the error predates step execution (resolution-time errors).
type Error struct {
	Kind   Kind
	StepIx int
	Detail string
	Err    error
}

func New(kind Kind, stepIx int, detail string) *Error {
	return &Error{Kind: kind, StepIx: stepIx, Detail: detail}
}

func Wrap(kind Kind, stepIx int, detail string, err error) *Error {
	return &Error{Kind: kind, StepIx: stepIx, Detail: detail, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		if e.Detail != "" {
			return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
		}
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// As extracts a *Error from err via errors.As semantics, convenience for
// callers that only need the Kind.
func As(err error) (*Error, bool) {
	var te *Error
	ok := errors.As(err, &te)
	return te, ok
}
