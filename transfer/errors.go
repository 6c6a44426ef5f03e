package transfer

import (
	"errors"
	"fmt"
)

const (
	// NoResponseMessage is shown when the request left but nothing came back.
	NoResponseMessage = "No response received from server. Please check if the server is running."
	unknownDetail     = "Unknown error"
)

// ServerError means the parsing service answered with a non-success status.
type ServerError struct {
	StatusCode int
	Detail     string
}

func (e *ServerError) Error() string {
	detail := e.Detail
	if detail == "" {
		detail = unknownDetail
	}
	return fmt.Sprintf("Server error: %d - %s", e.StatusCode, detail)
}

// NoResponseError means the request was sent but no response arrived.
type NoResponseError struct {
	Err error
}

func (e *NoResponseError) Error() string {
	return fmt.Sprintf("no response: %v", e.Err)
}

func (e *NoResponseError) Unwrap() error { return e.Err }

// RequestError is any failure on our side before or around sending the request.
type RequestError struct {
	Err error
}

func (e *RequestError) Error() string {
	return e.Err.Error()
}

func (e *RequestError) Unwrap() error { return e.Err }

// Classify turns a transfer failure into the single message the upload view shows.
func Classify(err error) string {
	if err == nil {
		return ""
	}
	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		return serverErr.Error()
	}
	var noResp *NoResponseError
	if errors.As(err, &noResp) {
		return NoResponseMessage
	}
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return "Error: " + reqErr.Error()
	}
	return "Error: " + err.Error()
}
