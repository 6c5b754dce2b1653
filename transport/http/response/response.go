package response

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"insurai/shared/constant"
	"insurai/shared/failure"
)

const internalErrorMessage = "internal server error"

type Data[T any] struct {
	Data T `json:"data"`
}

type Error struct {
	Code  int    `json:"code"`
	Error string `json:"error"`
}

type Message struct {
	Message string `json:"message"`
}

func WithMessage(w http.ResponseWriter, code int, message string) {
	write(w, code, Message{Message: message})
}

func WithJSON(w http.ResponseWriter, code int, payload any) {
	write(w, code, Data[any]{Data: payload})
}

// WithError maps err to its failure code. Errors without one are logged and
// reported as a generic 500 so driver messages never reach the client.
func WithError(w http.ResponseWriter, err error) {
	code := failure.GetCode(err)
	msg := err.Error()

	if code >= http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")

		msg = internalErrorMessage
	}

	write(w, code, Error{Code: code, Error: msg})
}

func WithRequestLimitExceeded(w http.ResponseWriter) {
	WithMessage(w, http.StatusTooManyRequests, constant.ResponseErrorRequestLimitExceeded)
}

func WithPreparingShutdown(w http.ResponseWriter) {
	WithMessage(w, http.StatusServiceUnavailable, constant.ResponseErrorPrepareShutdown)
}

func WithUnhealthy(w http.ResponseWriter) {
	WithMessage(w, http.StatusServiceUnavailable, constant.ResponseErrorUnhealthy)
}

func write(w http.ResponseWriter, code int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode response")
		w.WriteHeader(http.StatusInternalServerError)

		return
	}

	w.Header().Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)
	w.WriteHeader(code)

	if _, err = w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response")
	}
}
