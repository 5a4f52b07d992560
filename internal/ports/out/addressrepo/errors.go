package addressrepo

import "errors"

var (
	// ErrNotFound indicates the requested address does not exist.
	ErrNotFound = errors.New("address not found")

	// ErrIntegrity indicates more than one row matched a lookup that must
	// return exactly one.
	ErrIntegrity = errors.New("multiple addresses share one id")

	// ErrAlreadyLinked indicates the member-address link already exists.
	ErrAlreadyLinked = errors.New("member already linked to address")
)
