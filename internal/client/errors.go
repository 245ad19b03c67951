package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrPreviewUnavailable is returned when the backend answered but could not
// extract metadata for the requested page.
var ErrPreviewUnavailable = errors.New("preview unavailable")

// TransportError is a network failure or a non-2xx response from the backend.
// It is terminal for the attempt; the caller decides whether to resubmit.
type TransportError struct {
	Op         string
	StatusCode int    // 0 when no response was received
	Message    string // the backend's {"error"} text, else the plain body
	Body       string // raw response text for non-2xx responses
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		if msg := e.message(); msg != "" {
			return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, msg)
		}
		return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) message() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Body
}

// errorMessage extracts the backend's {"error": "..."} text, falling back to
// the raw body when it is not that shape
func errorMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(body))
}
