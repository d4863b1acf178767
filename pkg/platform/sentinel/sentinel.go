package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in the store
// - ErrAlreadyUsed: a uniqueness constraint was hit (duplicate application,
//   duplicate category name)
// - ErrConflict: concurrent modification detected
// - ErrUnavailable: backing service temporarily unreachable
//
// For validation and state-machine errors use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrAlreadyUsed = errors.New("already used")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
