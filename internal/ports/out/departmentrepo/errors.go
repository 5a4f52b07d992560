package departmentrepo

import "errors"

var (
	// ErrNotFound indicates the requested department does not exist.
	ErrNotFound = errors.New("department not found")

	// ErrIntegrity indicates more than one row matched a lookup that must
	// return exactly one.
	ErrIntegrity = errors.New("multiple departments share one id")

	// ErrAlreadyAssociated indicates the member-department link already
	// exists.
	ErrAlreadyAssociated = errors.New("member already associated with department")
)
