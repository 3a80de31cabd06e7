package services

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAuditEntry      = errors.New("audit entry requires an organization and a non-empty action")
	ErrInvalidTrail           = errors.New("decision trail requires an organization, entity kind and entity id")
	ErrInvalidRollbackRequest = errors.New("rollback requires an organization and a trail id")
	ErrTrailNotFound          = errors.New("decision trail not found")
	ErrAlreadyRolledBack      = errors.New("decision trail has already been rolled back")
	ErrMissingEntityReference = errors.New("decision trail has no entity reference")
	ErrUnsupportedEntityKind  = errors.New("entity kind does not support rollback")
	ErrStaleTarget            = errors.New("entity no longer exists")
	ErrEntityNotFound         = errors.New("entity not found")
	ErrStorageUnavailable     = errors.New("storage unavailable")
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrAccountDisabled        = errors.New("account disabled")
	ErrInvalidUser            = errors.New("user requires an organization, a valid email, a known role and a password of at least 8 characters")
	ErrEmailTaken             = errors.New("email already in use")
)

// storageErr marks err as a storage fault the caller may retry.
func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
}

// Retryable reports whether an operation that failed with err may succeed
// when simply repeated.
func Retryable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}
