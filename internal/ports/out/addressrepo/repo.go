package addressrepo

import (
	"context"

	"github.com/SV-Eichenlaub/club-roster-api/internal/domain"
)

// Address is the persistence shape used by the address repository.
type Address struct {
	ID domain.AddressID

	Street     string
	City       string
	PostalCode string
	Country    string
}

// Repository provides access to persisted addresses and the
// member-address link table.
type Repository interface {
	// FindOrCreate inserts a unless an address with the same
	// (street, city, postalCode, country) already exists, in which case
	// the existing row is returned and created is false.
	FindOrCreate(ctx context.Context, a Address) (out Address, created bool, err error)

	// GetByID returns ErrNotFound for zero matches and ErrIntegrity when
	// more than one row carries the id.
	GetByID(ctx context.Context, id domain.AddressID) (Address, error)

	// Delete removes the address row. Links must be removed first.
	Delete(ctx context.Context, id domain.AddressID) error

	// Link associates a member with an address. A duplicate link returns
	// ErrAlreadyLinked.
	Link(ctx context.Context, memberID domain.MemberID, addressID domain.AddressID) error

	// Unlink removes the member-address association. Removing a link that
	// does not exist is not an error.
	Unlink(ctx context.Context, memberID domain.MemberID, addressID domain.AddressID) error

	// CountMembers returns how many members currently link to the address.
	CountMembers(ctx context.Context, id domain.AddressID) (uint32, error)

	// ListForMember pages through a member's addresses ordered by id.
	// limit == 0 means no limit.
	ListForMember(ctx context.Context, memberID domain.MemberID, limit, offset uint32) ([]Address, error)
}
