package core

import (
	"encoding/json"
	"errors"
	"net/http"
)

// JSONResponse is the standard JSON response envelope.
type JSONResponse struct {
	Message string       `json:"message,omitempty"`
	Data    any          `json:"data,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// JSON writes a success envelope with the given status code.
func JSON(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, JSONResponse{Message: message, Data: data})
}

// Error writes an error envelope. HTTPError values map to their status code
// and key; anything else becomes a 500 with a generic code. The optional
// message overrides the default status text shown to the operator.
func Error(w http.ResponseWriter, err error, message ...string) {
	status := http.StatusInternalServerError
	code := "internal_error"

	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		status = httpErr.Code
		code = httpErr.Key
	}

	msg := http.StatusText(status)
	if len(message) > 0 && message[0] != "" {
		msg = message[0]
	}

	writeJSON(w, status, JSONResponse{
		Error: &ErrorDetail{Code: code, Message: msg},
	})
}

func writeJSON(w http.ResponseWriter, status int, body JSONResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	// Encoding a plain envelope cannot fail on valid inputs; a broken client
	// connection at this point is not recoverable anyway.
	_ = json.NewEncoder(w).Encode(body)
}

// DecodeJSON parses a request body into dst, mapping malformed input to
// ErrBadRequest so handlers can pass the result straight to Error.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return ErrBadRequest
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return ErrBadRequest
	}
	return nil
}
