package errors

import (
	stderrors "errors"
	"net/http"

	"zenstream/internal/ledger"
	"zenstream/internal/model"
	"zenstream/internal/timer"
)

type APIError struct {
	Status  int         `json:"-"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

func New(status int, code, message string) *APIError {
	return &APIError{
		Status:  status,
		Code:    code,
		Message: message,
	}
}

func Internal(message string) *APIError {
	if message == "" {
		message = "internal server error"
	}
	return New(http.StatusInternalServerError, "internal_error", message)
}

func BadRequest(code, message string) *APIError {
	return New(http.StatusBadRequest, code, message)
}

func NotFound(code, message string) *APIError {
	return New(http.StatusNotFound, code, message)
}

func Conflict(code, message string, details interface{}) *APIError {
	err := New(http.StatusConflict, code, message)
	err.Details = details
	return err
}

// FromDomain maps a rejected core operation to its API error. Errors that
// are not part of the core taxonomy become internal errors with fallback.
func FromDomain(err error, fallback string) *APIError {
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, model.ErrInvalidConfig):
		return BadRequest("invalid_config", err.Error())
	case stderrors.Is(err, timer.ErrAlreadyRunning):
		return Conflict("timer_running", "a run is already in progress", nil)
	case stderrors.Is(err, ledger.ErrUnknownItem):
		return NotFound("unknown_item", err.Error())
	case stderrors.Is(err, ledger.ErrAlreadyOwned):
		return Conflict("already_owned", err.Error(), nil)
	case stderrors.Is(err, ledger.ErrInsufficientBalance):
		return Conflict("insufficient_balance", err.Error(), nil)
	default:
		return Internal(fallback)
	}
}
