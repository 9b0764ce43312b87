package errors

import "errors"

var (
	ErrAuthRejected      = errors.New("authentication rejected")
	ErrAuthRequired      = errors.New("authentication required")
	ErrUpstreamConnect   = errors.New("upstream connection failed")
	ErrUpstreamAuth      = errors.New("upstream authentication failed")
	ErrBootstrapDisabled = errors.New("bootstrap is disabled")
	ErrBootstrapConfig   = errors.New("bootstrap storage is not configured")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrNotFound          = errors.New("not found")
)
