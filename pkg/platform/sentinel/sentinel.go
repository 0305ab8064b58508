package sentinel

import "errors"

// Sentinel errors for infrastructure facts. The file store returns these
// (optionally wrapped) so callers can translate them into domain errors
// without depending on store internals.
var (
	// ErrNotFound: no record backs the requested identifier.
	ErrNotFound = errors.New("not found")
)
