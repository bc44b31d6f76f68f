// Package apperr defines the error taxonomy shared by every router.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindUnexpected Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindConflict
)

var kindNames = map[Kind]string{
	KindUnexpected:     "unexpected",
	KindValidation:     "validation",
	KindAuthentication: "authentication",
	KindAuthorization:  "authorization",
	KindNotFound:       "not_found",
	KindConflict:       "conflict",
}

var kindStatus = map[Kind]int{
	KindUnexpected:     http.StatusInternalServerError,
	KindValidation:     http.StatusBadRequest,
	KindAuthentication: http.StatusUnauthorized,
	KindAuthorization:  http.StatusForbidden,
	KindNotFound:       http.StatusNotFound,
	KindConflict:       http.StatusConflict,
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindUnexpected]
}

// Status returns the HTTP status code a kind is rendered with.
func (k Kind) Status() int {
	if status, ok := kindStatus[k]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Error is a classified failure. Message is safe to show to clients; Err is
// the underlying cause and is only ever logged.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(message string, details ...string) *Error {
	return &Error{Kind: KindValidation, Code: "validation_failed", Message: message, Details: details}
}

// Authentication reports a "who are you" failure. code is a stable reason
// clients use to decide between prompting re-login and giving up.
func Authentication(code, message string) *Error {
	return &Error{Kind: KindAuthentication, Code: code, Message: message}
}

// Authorization reports a "what can you do" failure for a valid identity.
func Authorization(message string) *Error {
	return &Error{Kind: KindAuthorization, Code: "forbidden", Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Code: "not_found", Message: message}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Code: "conflict", Message: message}
}

func Unexpected(err error, message string) *Error {
	return &Error{Kind: KindUnexpected, Code: "internal_error", Message: message, Err: err}
}

// As extracts the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf classifies err; anything unclassified is unexpected.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindUnexpected
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
