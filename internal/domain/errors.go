package domain

import "errors"

// Sentinel errors used across layers.
var (
	// ErrSourceUnavailable means the backend could not be reached or
	// answered a read with a non-2xx. Polling loops recover by keeping
	// the previous state and retrying next tick.
	ErrSourceUnavailable = errors.New("order source unavailable")
	// ErrAuthFailed means the backend rejected the credentials or the
	// login call itself failed.
	ErrAuthFailed = errors.New("authentication failed")
	// ErrSubmissionFailed means an order creation or status update was
	// rejected. There is no automatic retry; the caller resubmits.
	ErrSubmissionFailed = errors.New("submission failed")
	// ErrMalformedResponse means the backend answered with a payload
	// shape the client does not understand.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrInvalidTransition means a status update was rejected by the
	// client-side transition guard.
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotFound          = errors.New("not found")
	ErrNotAuthenticated  = errors.New("not authenticated")
)
