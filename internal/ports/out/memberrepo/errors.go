package memberrepo

import "errors"

var (
	// ErrNotFound indicates the requested member does not exist.
	ErrNotFound = errors.New("member not found")

	// ErrIntegrity indicates more than one row matched a lookup that must
	// return exactly one. It is never recoverable.
	ErrIntegrity = errors.New("multiple members share one id")

	// ErrDuplicateKey indicates an update would move a member onto a
	// natural key already held by a different member.
	ErrDuplicateKey = errors.New("member natural key already in use")
)
