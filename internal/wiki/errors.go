package wiki

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidEndpoint is returned when the API endpoint is not an absolute URL.
	ErrInvalidEndpoint = errors.New("invalid API endpoint")

	// ErrInvalidProxyAddress is returned when the SOCKS5 proxy is not host:port.
	ErrInvalidProxyAddress = errors.New("invalid proxy address")

	// ErrNoToken is returned when the wiki does not hand out the requested token.
	ErrNoToken = errors.New("token not returned by wiki")

	// ErrLoginFailed is returned when action=login does not succeed.
	ErrLoginFailed = errors.New("login failed")

	// ErrUnexpectedResponse is returned when a response lacks a required member.
	ErrUnexpectedResponse = errors.New("unexpected API response")
)

// APIError is the "error" member of an Action API response.
type APIError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

// Error implements error.
func (e *APIError) Error() string {
	if e.Info == "" {
		return "wiki api error: " + e.Code
	}
	return fmt.Sprintf("wiki api error: %s: %s", e.Code, e.Info)
}

// HTTPError is returned for non-2xx responses.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       string
}

// Error implements error.
func (e *HTTPError) Error() string {
	if e.Body == "" {
		return "wiki http error: " + e.Status
	}
	return fmt.Sprintf("wiki http error: %s: %s", e.Status, e.Body)
}

// IsAPIErrorCode reports whether err is an *APIError with the given code.
func IsAPIErrorCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}
