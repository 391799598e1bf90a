package ai

import "errors"

// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("ai quota exceeded")

// ErrProvider indicates a transport-level provider failure (network error,
// timeout, non-success status).
var ErrProvider = errors.New("ai provider error")

// ErrBadResponse indicates the provider answered but the payload could not
// be decoded as the expected structure, even after fence stripping.
var ErrBadResponse = errors.New("ai response not decodable")
