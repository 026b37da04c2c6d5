package core

import "net/http"

// HTTPError represents an HTTP error with status code and stable error key.
// The Key field is machine-readable; response helpers pair it with a
// human-readable message at the boundary.
type HTTPError struct {
	Code int    // HTTP status code
	Key  string // Stable error key (e.g., "not_found", "unauthorized")
}

// Error implements the error interface.
func (e HTTPError) Error() string {
	return e.Key
}

var (
	// ErrBadRequest covers malformed bodies, missing required fields, and
	// unsubscribing a session with no active channel binding.
	ErrBadRequest = HTTPError{Code: http.StatusBadRequest, Key: "bad_request"}
	// ErrUnauthorized covers password mismatches on the subscribe and
	// announce paths, and unauthenticated admin API access.
	ErrUnauthorized = HTTPError{Code: http.StatusUnauthorized, Key: "unauthorized"}
	// ErrNotFound covers unknown channel names.
	ErrNotFound = HTTPError{Code: http.StatusNotFound, Key: "not_found"}
	// ErrConflict covers creating a channel whose name is already taken.
	ErrConflict = HTTPError{Code: http.StatusConflict, Key: "conflict"}
	// ErrBadGateway covers failures of the external speech engine.
	ErrBadGateway = HTTPError{Code: http.StatusBadGateway, Key: "bad_gateway"}
	// ErrInternalServerError is the fallback for unclassified failures.
	ErrInternalServerError = HTTPError{Code: http.StatusInternalServerError, Key: "internal_server_error"}
)

// NewHTTPError creates a custom HTTP error with the given status code and key.
func NewHTTPError(code int, key string) HTTPError {
	return HTTPError{Code: code, Key: key}
}
