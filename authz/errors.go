package authz

import "errors"

// Sentinel errors for the authorization layer. Handlers map these to HTTP
// statuses in exactly one place; everything below the HTTP surface wraps
// them with %w.
var (
	// ErrUnauthenticated: credential absent, malformed, expired or revoked.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrAuthorizationUnavailable: the permission store could not be
	// reached. Always treated as deny, surfaced as 5xx.
	ErrAuthorizationUnavailable = errors.New("authorization unavailable")

	// ErrForbidden: the coarse capability is missing from the effective
	// permission set.
	ErrForbidden = errors.New("permission denied")

	// ErrAccessDenied: the capability exists but row-level scope excludes
	// the record. Deliberately distinct from ErrForbidden; callers rely on
	// telling the two apart.
	ErrAccessDenied = errors.New("no access to this record")

	// ErrPartialBatchDenied: a bulk request's working set became empty
	// after scope filtering.
	ErrPartialBatchDenied = errors.New("no accessible records in batch")

	// ErrPersistenceFailure: the write transaction aborted and rolled back
	// fully. No partial effect exists.
	ErrPersistenceFailure = errors.New("persistence failure")

	// ErrNotFound: the referenced record does not exist.
	ErrNotFound = errors.New("record not found")
)
