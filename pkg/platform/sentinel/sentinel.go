package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores, schedulers and platform
// adapters return these (optionally wrapped) so the router can decide how to
// degrade without inspecting driver-specific errors.
//
//   - ErrNotFound: no pending query or row exists for the key
//   - ErrExpired: a pending query outlived its deadline
//   - ErrInvalidState: a record violates its invariants (payload without version)
//   - ErrUnavailable: platform service or broker temporarily unavailable
//   - ErrClosed: component already shut down
var (
	ErrNotFound     = errors.New("not found")
	ErrExpired      = errors.New("expired")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
	ErrClosed       = errors.New("closed")
)
