package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrNotFound is returned when the server reports a missing entity. Callers
// treat it as a terminal display state, not a transient failure.
var ErrNotFound = errors.New("api: not found")

// genericErrorMessage is used when the server did not supply an error payload.
const genericErrorMessage = "request failed"

// Error is a server-reported failure. Message is the server-supplied error
// string when one was present in the response body.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: server returned %d: %s", e.Status, e.Message)
}

// errorBody matches the server's error response shape.
type errorBody struct {
	Error string `json:"error"`
}

// responseError converts a non-2xx response into an error, preferring the
// server-supplied message over the generic fallback. 404 maps to ErrNotFound.
func responseError(resp *http.Response) error {
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}

	msg := genericErrorMessage
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err == nil && len(body) > 0 {
		var eb errorBody
		if jsonErr := json.Unmarshal(body, &eb); jsonErr == nil && eb.Error != "" {
			msg = eb.Error
		}
	}

	return &Error{Status: resp.StatusCode, Message: msg}
}

// UserMessage extracts the message suitable for display from any error coming
// out of this package, falling back to the generic string for transport-level
// failures.
func UserMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if errors.Is(err, ErrNotFound) {
		return "not found"
	}
	return genericErrorMessage
}
