package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrInvalidRequest is returned, wrapped, when a request fails local validation
// and was never sent.
var ErrInvalidRequest = errors.New("invalid request")

// ErrUnknownProvider is returned for an AI provider the backend does not proxy.
var ErrUnknownProvider = errors.New("unknown provider")

// BackendError is a non-2xx response from the backend. Message is the
// human-readable text extracted from the body.
type BackendError struct {
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	return e.Message
}

// HTTPError is a non-2xx initial response to a streaming request. The body is
// not inspected.
type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// IsStatus reports whether err is a BackendError or HTTPError with the given code.
func IsStatus(err error, code int) bool {
	var be *BackendError
	if errors.As(err, &be) {
		return be.StatusCode == code
	}
	var he *HTTPError
	if errors.As(err, &he) {
		return he.StatusCode == code
	}
	return false
}

const maxErrorBody = 64 << 10

// parseBackendError reads the error body: "message", then "error", then the
// status text.
func parseBackendError(resp *http.Response) *BackendError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	msg := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		msg = strings.TrimSpace(payload.Message)
		if msg == "" {
			msg = strings.TrimSpace(payload.Error)
		}
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	if msg == "" {
		msg = fmt.Sprintf("HTTP %d", resp.StatusCode)
	}

	return &BackendError{StatusCode: resp.StatusCode, Message: msg}
}
