package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/formpost/formpost/internal/handler/dto"
)

// Error codes returned in the "code" field of error bodies.
const (
	CodeInvalidJSON        = "INVALID_JSON"
	CodeValidation         = "VALIDATION_ERROR"
	CodeEmailExists        = "EMAIL_EXISTS"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInvalidSiteKey     = "INVALID_SITE_KEY"
	CodeOwnerNotFound      = "OWNER_NOT_FOUND"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeNotifyFailed       = "NOTIFY_FAILED"
	CodePayloadTooLarge    = "PAYLOAD_TOO_LARGE"
	CodeNotFound           = "NOT_FOUND"
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	CodeInternal           = "INTERNAL_ERROR"
)

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// writeInternal writes a 500 whose details carry the underlying error text.
func writeInternal(w http.ResponseWriter, message string, err error) {
	writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{
		Error:   message,
		Code:    CodeInternal,
		Details: err.Error(),
	})
}

// decodeJSON decodes a request body into v. An empty body leaves v untouched.
// It writes the error response itself and reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, CodePayloadTooLarge, "Request body too large")
		return false
	}
	writeError(w, http.StatusBadRequest, CodeInvalidJSON, "Invalid request body")
	return false
}
