package api

import (
	"errors"
	"fmt"
)

// ErrUnauthenticated is returned before any network call when no token is
// available at call time.
var ErrUnauthenticated = errors.New("not authenticated")

// ErrMalformedResponse wraps decode failures: the server answered with a
// success status but the body does not match the resource contract.
var ErrMalformedResponse = errors.New("malformed response")

// RequestError reports a non-success HTTP status. Message carries the
// server-provided error when the body was parseable, else a static
// per-operation fallback.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request failed (%d): %s", e.Status, e.Message)
}

// errorBody is the error envelope the backend uses for failures.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
