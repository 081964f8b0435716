package summarizer

import (
	"errors"
	"fmt"
)

var (
	ErrMissingEndpoint = errors.New("summarization endpoint is empty")
	ErrMissingText     = errors.New("text is empty")
	ErrInvalidOptions  = errors.New("max tokens or temperature out of range")
	ErrEmptyResult     = errors.New("backend returned an empty summary")
)

// NetworkError means the backend could not be reached: connection, DNS or
// timeout failure.
type NetworkError struct {
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("request %s: %v", e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPError carries a non-2xx response, body included for diagnostics.
type HTTPError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("request %s: unexpected status: %d", e.Endpoint, e.StatusCode)
	}

	return fmt.Sprintf("request %s: unexpected status: %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// DecodeError means the backend answered 2xx with a body that is not the
// expected JSON document.
type DecodeError struct {
	Endpoint string
	Body     string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response from %s: %v", e.Endpoint, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
