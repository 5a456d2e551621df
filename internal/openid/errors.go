package openid

import (
	"errors"
	"fmt"
)

// Numeric error categories carried on the redirect back to the caller's end
// point. The calling application maps them to user-facing messages; no
// provider-internal detail crosses this boundary.
const (
	CodeInvalidRequest = 0
	CodeDiscovery      = 1
	CodeHandshake      = 2
)

var (
	// ErrInvalidRequest indicates caller input validation errors, such as a
	// disallowed end point or a missing identifier.
	ErrInvalidRequest = errors.New("openid: invalid request")
	// ErrDiscovery indicates the identifier could not be resolved to a
	// provider endpoint or no auth request could be constructed.
	ErrDiscovery = errors.New("openid: discovery failed")
	// ErrNoAttempt indicates the in-flight attempt record is missing at
	// process time, either expired or already consumed.
	ErrNoAttempt = errors.New("openid: no attempt in flight")
	// ErrHandshake indicates the provider handshake failed or was cancelled.
	ErrHandshake = errors.New("openid: handshake failed")
	// ErrNoSession indicates no caller session survived the redirect, so
	// there is no recorded end point to redirect back to.
	ErrNoSession = errors.New("openid: no session")
)

// FlowError categorizes a failed login or process invocation and carries the
// end point the caller should be redirected to.
type FlowError struct {
	Code     int
	EndPoint string
	Err      error
}

func (e *FlowError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("openid flow error %d: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("openid flow error %d", e.Code)
}

func (e *FlowError) Unwrap() error {
	return e.Err
}

func flowFail(code int, endPoint string, err error) *FlowError {
	return &FlowError{Code: code, EndPoint: endPoint, Err: err}
}
