package memberrepo

import (
	"context"
	"time"

	"github.com/SV-Eichenlaub/club-roster-api/internal/domain"
)

// Member is the persistence shape used by the member repository.
// It is an internal record, not an HTTP DTO.
type Member struct {
	ID domain.MemberID

	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string

	// BirthDate and CreateDate are calendar dates (midnight UTC).
	BirthDate  time.Time
	CreateDate time.Time

	Notes string

	Active bool
}

// NaturalKey returns the fields that identify a member for deduplication.
func (m Member) NaturalKey() Key {
	return Key{
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Email:     m.Email,
		BirthDate: m.BirthDate,
	}
}

// Key is the member natural key: two members never share all four fields.
type Key struct {
	FirstName string
	LastName  string
	Email     string
	BirthDate time.Time
}

// Filter selects a member subset for list and count queries.
type Filter string

const (
	FilterAll      Filter = "all"
	FilterActive   Filter = "active"
	FilterInactive Filter = "inactive"

	// FilterUpcomingBirthday selects members whose birthday falls within
	// the next 30 days. List-only.
	FilterUpcomingBirthday Filter = "birthday"
)

// Repository provides access to persisted members.
//
// Result ordering expectations:
// - List returns members ordered by last name, first name, then id, to keep
//   paging deterministic.
type Repository interface {
	// FindOrCreate inserts m unless a member with the same natural key
	// already exists, in which case the existing row is returned and
	// created is false. m.ID is ignored on input; the returned member
	// always carries its persisted id.
	FindOrCreate(ctx context.Context, m Member) (out Member, created bool, err error)

	// Update replaces all mutable fields of the member with m.ID.
	Update(ctx context.Context, m Member) error

	// SetActive flips the active flag without touching other fields.
	SetActive(ctx context.Context, id domain.MemberID, active bool) error

	// GetByID returns ErrNotFound for zero matches and ErrIntegrity when
	// more than one row carries the id.
	GetByID(ctx context.Context, id domain.MemberID) (Member, error)

	// List pages through members matching the filter. limit == 0 means
	// no limit.
	List(ctx context.Context, f Filter, limit, offset uint32) ([]Member, error)

	// Count returns the number of members matching the filter.
	// FilterUpcomingBirthday is not supported here.
	Count(ctx context.Context, f Filter) (uint32, error)
}
