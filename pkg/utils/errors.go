package utils

import (
	"errors"
	"fmt"
)

// ErrorKind tags an engine error so callers branch on kind instead of
// matching message strings.
type ErrorKind int

const (
	// KindValidation is a recoverable per-step failure (the target page
	// rejected a required answer); retried in place up to a budget.
	KindValidation ErrorKind = iota
	// KindElementNotFound means a poll window elapsed before an expected
	// element appeared.
	KindElementNotFound
	// KindClassification means no rule could produce a widget match for a
	// form element; treated as a single validation retry.
	KindClassification
	// KindPageExhausted means a results page reported no more listings;
	// ends the current task's page loop, not an error for the run.
	KindPageExhausted
	// KindFatalNavigation means a results page was unreachable; aborts the
	// current search task only.
	KindFatalNavigation
	// KindAuth means sign-in failed; fatal for the whole run.
	KindAuth
	// KindChallenge means the target presented a captcha or lockout
	// challenge; fatal for the whole run, requires a human.
	KindChallenge
)

// String returns the string representation of the error kind
func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindElementNotFound:
		return "element_not_found"
	case KindClassification:
		return "classification"
	case KindPageExhausted:
		return "page_exhausted"
	case KindFatalNavigation:
		return "fatal_navigation"
	case KindAuth:
		return "auth"
	case KindChallenge:
		return "challenge"
	default:
		return "unknown"
	}
}

// EngineError is a tagged error
type EngineError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *EngineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err carries the given kind anywhere in its chain
func IsKind(err error, kind ErrorKind) bool {
	var ee *EngineError
	return errors.As(err, &ee) && ee.Kind == kind
}

// IsSessionFatal reports whether err must terminate the whole run
func IsSessionFatal(err error) bool {
	return IsKind(err, KindAuth) || IsKind(err, KindChallenge)
}

func NewValidationError(message string, err error) *EngineError {
	return &EngineError{Kind: KindValidation, Message: message, Err: err}
}

func NewElementNotFoundError(message string, err error) *EngineError {
	return &EngineError{Kind: KindElementNotFound, Message: message, Err: err}
}

func NewClassificationError(message string) *EngineError {
	return &EngineError{Kind: KindClassification, Message: message}
}

func NewPageExhaustedError(message string) *EngineError {
	return &EngineError{Kind: KindPageExhausted, Message: message}
}

func NewFatalNavigationError(message string, err error) *EngineError {
	return &EngineError{Kind: KindFatalNavigation, Message: message, Err: err}
}

func NewAuthError(message string, err error) *EngineError {
	return &EngineError{Kind: KindAuth, Message: message, Err: err}
}

func NewChallengeError(message string) *EngineError {
	return &EngineError{Kind: KindChallenge, Message: message}
}
