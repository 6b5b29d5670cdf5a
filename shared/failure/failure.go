package failure

import (
	"errors"
	"net/http"
)

// Failure is an error a caller can act on. Code is the HTTP status it renders as; anything that
// is not a Failure renders as 500.
type Failure struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

var (
	ForbiddenError          = &Failure{Code: http.StatusForbidden, Message: "You don't have the required permissions"}
	ResourceRestrictedError = &Failure{Code: http.StatusForbidden, Message: "You don't have permission to access this resource"}
)

func (e *Failure) Error() string {
	return e.Message
}

func newFailure(code int, msg string) error {
	return &Failure{Code: code, Message: msg}
}

// BadRequest converts err into a 400. A nil err stays nil.
func BadRequest(err error) error {
	if err == nil {
		return nil
	}

	return newFailure(http.StatusBadRequest, err.Error())
}

// BadRequestFromString reports an invalid operation: bad input, a past date, a wrong state
// transition.
func BadRequestFromString(msg string) error {
	return newFailure(http.StatusBadRequest, msg)
}

func Unauthorized(msg string) error {
	return newFailure(http.StatusUnauthorized, msg)
}

func Forbidden(msg string) error {
	return newFailure(http.StatusForbidden, msg)
}

// NotFound takes the entity name as its message.
func NotFound(entityName string) error {
	return newFailure(http.StatusNotFound, entityName)
}

// Conflict reports a slot already taken by a confirmed reservation or by the caller's own
// calendar, or a duplicate catalog entry.
func Conflict(msg string) error {
	return newFailure(http.StatusConflict, msg)
}

// QuotaExceeded reports a per-user limit. It is kept apart from 400 so clients can show
// remaining quota.
func QuotaExceeded(msg string) error {
	return newFailure(http.StatusUnprocessableEntity, msg)
}

func GetCode(err error) int {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Code
	}

	return http.StatusInternalServerError
}

// Is reports whether err carries a Failure with the given code.
func Is(err error, code int) bool {
	var fail *Failure

	return errors.As(err, &fail) && fail.Code == code
}
