package downloader

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrTimeout indicates the image request exceeded its timeout.
type ErrTimeout struct {
	URL string
	Err error
}

func (e ErrTimeout) Error() string {
	return fmt.Sprintf("timeout fetching %s: %v", e.URL, e.Err)
}

func (e ErrTimeout) Unwrap() error {
	return e.Err
}

// ErrConnection indicates the media host could not be reached.
type ErrConnection struct {
	URL string
	Err error
}

func (e ErrConnection) Error() string {
	return fmt.Sprintf("connection error fetching %s: %v", e.URL, e.Err)
}

func (e ErrConnection) Unwrap() error {
	return e.Err
}

// ErrStatus indicates a non-success HTTP response. The status code decides
// its label.
type ErrStatus struct {
	URL    string
	Status int
	Err    error
}

func (e ErrStatus) Error() string {
	return fmt.Sprintf("http %d fetching %s", e.Status, e.URL)
}

func (e ErrStatus) Unwrap() error {
	return e.Err
}

// ErrEmptyBody indicates the host answered without any image data.
type ErrEmptyBody struct {
	URL string
}

func (e ErrEmptyBody) Error() string {
	return fmt.Sprintf("empty response body for %s", e.URL)
}

// ErrorLabel maps err to a short label for logs, metrics and the run summary.
func ErrorLabel(err error) string {
	if err == nil {
		return "unknown"
	}
	var timeout ErrTimeout
	if errors.As(err, &timeout) {
		return "timeout"
	}
	var conn ErrConnection
	if errors.As(err, &conn) {
		return "connection"
	}
	var status ErrStatus
	if errors.As(err, &status) {
		switch status.Status {
		case http.StatusForbidden:
			return "forbidden"
		case http.StatusNotFound:
			return "not_found"
		case http.StatusTooManyRequests:
			return "rate_limited"
		}
		return "http_status"
	}
	var empty ErrEmptyBody
	if errors.As(err, &empty) {
		return "empty_body"
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	return "other"
}

func classifyError(rawURL string, err error, statusCode int) error {
	if err == nil && statusCode == 0 {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout{URL: rawURL, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout{URL: rawURL, Err: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ErrConnection{URL: rawURL, Err: err}
	}

	if statusCode >= http.StatusBadRequest || (statusCode != 0 && err != nil) {
		return ErrStatus{URL: rawURL, Status: statusCode, Err: err}
	}
	if err == nil {
		return nil
	}
	return fmt.Errorf("fetch %s: %w", rawURL, err)
}
