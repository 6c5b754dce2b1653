package failure

import (
	"errors"
	"net/http"
)

// Failure is an error that knows which HTTP status it maps to.
type Failure struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

var ErrMissingAPIKey = &Failure{Code: http.StatusForbidden, Message: "missing or invalid api key"}

func (e *Failure) Error() string {
	return e.Message
}

// BadRequest converts err into a 400. A nil err stays nil.
func BadRequest(err error) error {
	if err == nil {
		return nil
	}

	return newFailure(http.StatusBadRequest, err.Error())
}

func BadRequestFromString(msg string) error {
	return newFailure(http.StatusBadRequest, msg)
}

func NotFound(msg string) error {
	return newFailure(http.StatusNotFound, msg)
}

// Conflict is used when a slot or appointment changed underneath the caller.
func Conflict(msg string) error {
	return newFailure(http.StatusConflict, msg)
}

// InvalidStatus reports a status outside PENDING, APPROVED and REJECTED.
func InvalidStatus(msg string) error {
	return newFailure(http.StatusUnprocessableEntity, msg)
}

// GetCode returns the HTTP status carried by err, or 500 for anything else.
func GetCode(err error) int {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Code
	}

	return http.StatusInternalServerError
}

func Is(err error, code int) bool {
	var fail *Failure

	return errors.As(err, &fail) && fail.Code == code
}

func newFailure(code int, msg string) *Failure {
	return &Failure{Code: code, Message: msg}
}
