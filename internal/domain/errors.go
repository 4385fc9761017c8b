package domain

import "errors"

// Fetch error kinds. Provider errors wrap exactly one of these so callers
// can classify failures with errors.Is without string matching.
var (
	ErrNetworkFailure   = errors.New("network failure")
	ErrNonSuccessStatus = errors.New("non-success status")
	ErrMalformedPayload = errors.New("malformed payload")
)
