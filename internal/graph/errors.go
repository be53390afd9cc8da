package graph

import (
	dErrors "printsettings/pkg/domain-errors"
)

// Extension codes reported under errors[].extensions.code.
const (
	codeUnauthenticated = "UNAUTHENTICATED"
	codeForbidden       = "FORBIDDEN"
	codeBadUserInput    = "BAD_USER_INPUT"
	codeConflict        = "CONFLICT"
	codeNotFound        = "NOT_FOUND"
	codeUnavailable     = "UNAVAILABLE"
	codeInternal        = "INTERNAL_SERVER_ERROR"
)

// fieldError is a resolver error that carries an extension code. graphql-go
// copies Extensions into the formatted error.
type fieldError struct {
	message string
	code    string
}

func (e *fieldError) Error() string {
	return e.message
}

func (e *fieldError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": e.code}
}

var (
	errNotAuthenticated   = &fieldError{message: "Not Authenticated", code: codeUnauthenticated}
	errNotAuthorized      = &fieldError{message: "Not Authorized", code: codeForbidden}
	errVerificationFailed = &fieldError{message: "Unable to verify user", code: codeUnauthenticated}
	errMissingUserKey     = &fieldError{message: "You must provide an ID or an email", code: codeBadUserInput}
)

// toFieldError translates a domain error into a coded field error. Internal
// errors lose their message.
func toFieldError(err error) error {
	if err == nil {
		return nil
	}
	code := codeInternal
	switch dErrors.CodeOf(err) {
	case dErrors.CodeBadRequest, dErrors.CodeInvalidInput:
		code = codeBadUserInput
	case dErrors.CodeConflict:
		code = codeConflict
	case dErrors.CodeUnauthorized:
		code = codeUnauthenticated
	case dErrors.CodeForbidden:
		code = codeForbidden
	case dErrors.CodeNotFound:
		code = codeNotFound
	case dErrors.CodeUnavailable:
		code = codeUnavailable
	}
	return &fieldError{message: dErrors.Message(err), code: code}
}
