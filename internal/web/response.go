package web

import (
	"encoding/json"
	"net/http"

	"task-list/internal/errors"
	"task-list/internal/validation"
)

// errorResponse is the body of every non-2xx response
type errorResponse struct {
	Error     string                  `json:"error"`
	Message   string                  `json:"message"`
	Fields    []validation.FieldError `json:"fields,omitempty"`
	RequestID string                  `json:"request_id,omitempty"`
}

func responseWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

func responseWithError(w http.ResponseWriter, r *http.Request, err error) {
	code := mapErrorToHTTP(err)
	body := errorResponse{
		Error:     errors.GetErrorCode(err),
		Message:   errors.GetUserMessage(err),
		RequestID: GetRequestID(r.Context()),
	}
	if !errors.IsAppError(err) {
		body.Message = "An unexpected error occurred."
	}
	if appErr, ok := errors.AsAppError(err); ok {
		if ve, ok := appErr.Cause.(*validation.ValidationError); ok {
			body.Fields = ve.Errors
		}
	}
	responseWithJSON(w, code, body)
}

func mapErrorToHTTP(err error) int {
	switch {
	case errors.IsValidation(err):
		return http.StatusBadRequest
	case errors.IsErrorType(err, errors.ErrorTypeInvalidInput):
		return http.StatusBadRequest
	case errors.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
